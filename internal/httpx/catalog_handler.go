package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arielhotels/roomstock/internal/catalog"
	"github.com/arielhotels/roomstock/internal/syncstate"
)

type CatalogHandler struct {
	Store      catalog.Store
	Reconciler *catalog.Reconciler
	Status     syncstate.Recorder
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Get("/catalog", h.listCatalog)
	r.Post("/admin/catalog/sync", h.triggerSync)
	r.Get("/admin/catalog/sync", h.lastSync)
}

func (h *CatalogHandler) listCatalog(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := h.Store.ListActive(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *CatalogHandler) triggerSync(w http.ResponseWriter, r *http.Request) {
	// a full pass can outlive the default request timeout
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := h.Reconciler.Reconcile(ctx)
	if errors.Is(err, catalog.ErrSyncRunning) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": err.Error(), "result": res})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *CatalogHandler) lastSync(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rec, err := h.Status.Last(ctx, catalog.Provider, catalog.ResourceProducts)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "never synced"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
