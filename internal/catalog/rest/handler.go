package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dwikikusuma/shoping-cart/internal/catalog/app"
)

// Middleware wraps a named route, e.g. with request metrics.
type Middleware func(name string, next http.Handler) http.Handler

type Handler struct {
	svc *app.Service
	log *slog.Logger
}

func NewHandler(svc *app.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

// Register mounts the storefront routes on mux. wrap may be nil.
func (h *Handler) Register(mux *http.ServeMux, wrap Middleware) {
	if wrap == nil {
		wrap = func(_ string, next http.Handler) http.Handler { return next }
	}
	mux.Handle("GET /products", wrap("list_products", http.HandlerFunc(h.listProducts)))
	mux.Handle("GET /products/{id}", wrap("get_product", http.HandlerFunc(h.getProduct)))
	mux.Handle("GET /stock/{id}", wrap("get_stock", http.HandlerFunc(h.getStock)))
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.writeErr(w, r, app.ErrInvalidInput)
			return
		}
		limit = n
	}
	products, err := h.svc.ListProducts(r.Context(), limit)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	p, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) getStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	st, err := h.svc.GetStock(r.Context(), id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return 0, app.ErrInvalidInput
	}
	return id, nil
}

func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := httpStatusFromErr(err)
	if code == http.StatusInternalServerError {
		h.log.Error("request failed", slog.String("path", r.URL.Path), slog.Any("err", err))
	}
	writeJSON(w, code, map[string]string{"error": msg})
}

func httpStatusFromErr(err error) (int, string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, app.ErrNotFound):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
