package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pauljones0/offer-catalog/internal/catalog"
	"github.com/pauljones0/offer-catalog/internal/models"
)

// Server exposes the read-only query surface over the snapshot store.
type Server struct {
	store *catalog.Store
}

func New(store *catalog.Store) *Server {
	return &Server{store: store}
}

// Handler returns the route mux for the read API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/offers", s.handleOffers)
	mux.HandleFunc("/offers/filter", s.handleFilter)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

type offersResponse struct {
	Offers []models.Offer `json:"offers"`
	Reason string         `json:"reason,omitempty"`
}

func (s *Server) handleOffers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snapshot := s.store.GetAll()
	writeJSON(w, offersResponse{Offers: nonNil(snapshot.Offers)})
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	category := r.URL.Query().Get("category")
	location := r.URL.Query().Get("location")

	result := s.store.Filter(category, location)
	writeJSON(w, offersResponse{
		Offers: nonNil(result.Offers),
		Reason: string(result.Reason),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status": "ok",
		"offers": s.store.GetAll().Len(),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// nonNil keeps empty lists serializing as [] instead of null.
func nonNil(offers []models.Offer) []models.Offer {
	if offers == nil {
		return []models.Offer{}
	}
	return offers
}
