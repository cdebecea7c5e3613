package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/arielhotels/roomstock/internal/kafka"
	"github.com/arielhotels/roomstock/internal/pos"
	"github.com/arielhotels/roomstock/internal/redisx"
	"github.com/arielhotels/roomstock/internal/tickets"
)

type TicketsHandler struct {
	Manager           *tickets.Manager
	Redis             *redis.Client
	ProducerOpened    *kafkax.Producer
	ProducerItems     *kafkax.Producer
	ProducerCompleted *kafkax.Producer
	Service           string
}

type CreateTicketReq struct {
	GuestName string `json:"guest_name"`
}

type AddItemsReq struct {
	Items []tickets.RawItem `json:"items"`
}

func (h *TicketsHandler) Register(r *chi.Mux) {
	r.Get("/rooms/{room}/ticket", h.getTicket)
	r.Post("/rooms/{room}/ticket", h.createTicket)
	r.Post("/rooms/{room}/items", h.addItems)
	r.Post("/rooms/{room}/checkout", h.checkout)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeTicketErr(w http.ResponseWriter, err error) {
	var remote *pos.RemoteError
	switch {
	case errors.Is(err, tickets.ErrNoValidItems):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, tickets.ErrRoomBusy):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, pos.ErrUnavailable):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "pos unavailable"})
	case errors.As(err, &remote):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": remote.Message})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (h *TicketsHandler) getTicket(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")
	if room == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing room"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// cached view first, short TTL
	key := fmt.Sprintf(redisx.KeyTicketView, room)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	v, err := h.Manager.GetTicket(ctx, room)
	if err != nil {
		writeTicketErr(w, err)
		return
	}
	if v == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no ticket"})
		return
	}
	b, _ := json.Marshal(v)
	_ = h.Redis.Set(ctx, key, b, redisx.TTLTicketCache).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *TicketsHandler) createTicket(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")
	var req CreateTicketReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if room == "" || req.GuestName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	v, err := h.Manager.CreateTicket(ctx, room, req.GuestName)
	if err != nil {
		writeTicketErr(w, err)
		return
	}
	h.invalidate(ctx, room)

	h.publish(h.ProducerOpened, tickets.EventTicketOpened, room, v.ID,
		r.Header.Get("X-Request-Id"), tickets.TicketOpenedPayload{
			TicketID:        v.ID,
			RoomNumber:      v.RoomNumber,
			GuestName:       v.GuestName,
			ExternalOrderID: v.ExternalOrderID,
		})

	writeJSON(w, http.StatusOK, v)
}

func (h *TicketsHandler) addItems(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")
	var req AddItemsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if room == "" || len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	v, err := h.Manager.AddItems(ctx, room, req.Items)
	if err != nil {
		writeTicketErr(w, err)
		return
	}
	h.invalidate(ctx, room)
	if v == nil {
		// remote append failed and the recovery read found no ticket left
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no ticket"})
		return
	}

	payload := tickets.TicketItemsAddedPayload{TicketID: v.ID, RoomNumber: v.RoomNumber}
	if v.Remote != nil {
		payload.TotalCents = v.Remote.TotalCents
		for _, li := range v.Remote.LineItems {
			payload.Items = append(payload.Items, tickets.EventLineItem{
				CatalogRef: li.CatalogObjectID,
				Name:       li.Name,
				Quantity:   li.Quantity,
				Note:       li.Note,
			})
		}
	}
	h.publish(h.ProducerItems, tickets.EventTicketItemsAdded, room, v.ID,
		r.Header.Get("X-Request-Id"), payload)

	writeJSON(w, http.StatusOK, v)
}

func (h *TicketsHandler) checkout(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")
	if room == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing room"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ticketID, err := h.Manager.Checkout(ctx, room)
	if err != nil {
		writeTicketErr(w, err)
		return
	}
	h.invalidate(ctx, room)
	if ticketID != "" {
		h.publish(h.ProducerCompleted, tickets.EventTicketCompleted, room, ticketID,
			r.Header.Get("X-Request-Id"), tickets.TicketCompletedPayload{TicketID: ticketID, RoomNumber: room})
	}
	writeJSON(w, http.StatusOK, map[string]bool{"completed": ticketID != ""})
}

func (h *TicketsHandler) invalidate(ctx context.Context, room string) {
	_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyTicketView, room)).Err()
}

func (h *TicketsHandler) publish(p *kafkax.Producer, eventType, room, correlation, trace string, payload any) {
	if p == nil {
		return
	}
	ev := kafkax.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       trace,
		CorrelationID: correlation,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(tickets.PartitionKey(room), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
