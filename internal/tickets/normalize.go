package tickets

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

// RawItem is one incoming line item before normalization. Clients send either
// a structured record or a bare string (JSON, or a mangled fragment from the
// chat mini-app); exactly one of Record/Text is set.
type RawItem struct {
	Record *ItemRecord
	Text   string
}

type ItemRecord struct {
	CatalogRef string `json:"square_item_id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price"`
	Quantity   int    `json:"quantity"`
	Note       string `json:"note"`
}

// LineItem is a normalized, usable line item: a catalog reference or an
// ad-hoc name/price pair, with quantity defaulted to 1 and note to "".
type LineItem struct {
	CatalogRef string
	Name       string
	PriceCents int64
	Quantity   int
	Note       string
}

func (r *RawItem) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &r.Text)
	}
	var rec ItemRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return err
	}
	r.Record = &rec
	return nil
}

type NormalizationError struct {
	Index  int
	Reason string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("item %d: %s", e.Index, e.Reason)
}

// NormalizeItems partitions the input into usable line items and dropped
// entries. Missing optional fields never drop an item; only an item with
// neither a catalog reference nor a name/price pair is dropped.
func NormalizeItems(in []RawItem) ([]LineItem, []*NormalizationError) {
	var ok []LineItem
	var dropped []*NormalizationError
	for i, raw := range in {
		li, err := normalizeOne(raw)
		if err != "" {
			dropped = append(dropped, &NormalizationError{Index: i, Reason: err})
			continue
		}
		ok = append(ok, li)
	}
	return ok, dropped
}

var (
	refPattern = regexp.MustCompile(`square_item_id"?\s*:\s*"?([A-Za-z0-9_-]+)"?`)
	qtyPattern = regexp.MustCompile(`quantity"?\s*:\s*"?(\d+)"?`)
)

func normalizeOne(raw RawItem) (LineItem, string) {
	rec := raw.Record
	if rec == nil {
		rec = parseText(raw.Text)
	}
	if rec == nil {
		return LineItem{}, "unparseable item"
	}
	if rec.CatalogRef == "" && (rec.Name == "" || rec.PriceCents <= 0) {
		return LineItem{}, "no catalog reference and no name/price pair"
	}
	li := LineItem{
		CatalogRef: rec.CatalogRef,
		Name:       rec.Name,
		PriceCents: rec.PriceCents,
		Quantity:   rec.Quantity,
		Note:       rec.Note,
	}
	if li.Quantity <= 0 {
		li.Quantity = 1
	}
	return li, ""
}

// parseText tries strict JSON first, then falls back to pattern extraction of
// a catalog reference and quantity from the raw fragment.
func parseText(s string) *ItemRecord {
	if s == "" {
		return nil
	}
	var rec ItemRecord
	if err := json.Unmarshal([]byte(s), &rec); err == nil {
		return &rec
	}
	m := refPattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	rec = ItemRecord{CatalogRef: m[1]}
	if qm := qtyPattern.FindStringSubmatch(s); qm != nil {
		if q, err := strconv.Atoi(qm[1]); err == nil {
			rec.Quantity = q
		}
	}
	return &rec
}
