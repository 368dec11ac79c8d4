package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/Elfbjorn/HaHaWeather/internal/db"
	"github.com/Elfbjorn/HaHaWeather/internal/weather"
)

const sessionCookie = "haha_session"

// Database defines the database operations needed by handlers.
type Database interface {
	SearchPlaces(query string) ([]db.Place, error)
	SaveSessionSlot(token string, slotIndex int, label string) error
	SessionSlots(token string) (map[int]string, error)
	Ping() error
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db      Database
	weather *weather.Service
}

// New creates a new Handlers instance.
func New(database Database, wService *weather.Service) *Handlers {
	return &Handlers{
		db:      database,
		weather: wService,
	}
}

// Register wires the handler routes onto the router.
func (h *Handlers) Register(r *mux.Router) {
	r.HandleFunc("/health", h.HandleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/search", h.HandleSearch).Methods(http.MethodGet)
	r.HandleFunc("/api/grid", h.HandleGrid).Methods(http.MethodGet)
	r.HandleFunc("/api/session", h.HandleSession).Methods(http.MethodGet)
	r.HandleFunc("/api/slots/{index:[0-2]}", h.HandleSetSlot).Methods(http.MethodPut, http.MethodPost)
	r.HandleFunc("/api/slots/{index:[0-2]}", h.HandleClearSlot).Methods(http.MethodDelete)
}

// HandleHealth handles health check endpoint.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status := "ok"
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			status = "degraded"
		}
	} else {
		status = "no_database"
	}

	w.Write([]byte(`{"status":"` + status + `"}`))
}

// HandleSearch performs location autocomplete.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if h.db == nil || len(q) < 2 {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
		return
	}

	places, err := h.db.SearchPlaces(q)
	if err != nil {
		log.Printf("Search error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if places == nil {
		places = []db.Place{}
	}

	writeJSON(w, places)
}

// HandleGrid returns the current comparison grid.
func (h *Handlers) HandleGrid(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.weather.Grid())
}

// HandleSetSlot resolves a location and populates a comparison slot.
func (h *Handlers) HandleSetSlot(w http.ResponseWriter, r *http.Request) {
	index, _ := strconv.Atoi(mux.Vars(r)["index"])

	location := r.URL.Query().Get("location")
	if location == "" {
		http.Error(w, "Please provide a location", http.StatusBadRequest)
		return
	}

	slot, err := h.weather.SetLocation(r.Context(), index, location)
	if err != nil {
		log.Printf("Weather error for slot %d: %v", index, err)
		http.Error(w, "Failed to retrieve weather data", http.StatusBadGateway)
		return
	}

	if token := h.sessionToken(w, r); token != "" {
		if err := h.db.SaveSessionSlot(token, index, location); err != nil {
			log.Printf("Session save error: %v", err)
		}
	}

	writeJSON(w, slot)
}

// HandleClearSlot empties a comparison slot.
func (h *Handlers) HandleClearSlot(w http.ResponseWriter, r *http.Request) {
	index, _ := strconv.Atoi(mux.Vars(r)["index"])
	h.weather.ClearSlot(index)

	if token := h.sessionToken(w, r); token != "" {
		if err := h.db.SaveSessionSlot(token, index, ""); err != nil {
			log.Printf("Session clear error: %v", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleSession returns the saved slot labels for the caller's session so
// the client can repopulate its columns.
func (h *Handlers) HandleSession(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookie)
	if h.db == nil || err != nil || cookie.Value == "" {
		writeJSON(w, map[int]string{})
		return
	}

	slots, err := h.db.SessionSlots(cookie.Value)
	if err != nil {
		log.Printf("Session load error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, slots)
}

// sessionToken returns the caller's session token, minting a cookie when
// none exists. Returns "" when the database is unavailable.
func (h *Handlers) sessionToken(w http.ResponseWriter, r *http.Request) string {
	if h.db == nil {
		return ""
	}

	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	token := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("JSON encode error: %v", err)
	}
}
