package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/hexfray/hexfray/auth"
	"github.com/hexfray/hexfray/logger"
	"github.com/hexfray/hexfray/room"
	"github.com/hexfray/hexfray/store"
	"github.com/hexfray/hexfray/transport/websocket"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Server is the REST surface: registration, matchmaking, history and health.
// Gameplay itself happens over /ws.
type Server struct {
	st     *store.Store
	auth   *auth.Service
	mm     *room.Matchmaker
	hub    *websocket.Hub
	router *mux.Router
}

// NewServer creates the API server and wires its routes.
func NewServer(st *store.Store, authsvc *auth.Service, mm *room.Matchmaker, hub *websocket.Hub) *Server {
	s := &Server{
		st:     st,
		auth:   authsvc,
		mm:     mm,
		hub:    hub,
		router: mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/register", s.handleRegister).Methods("POST")
	api.HandleFunc("/player/color", s.handleSetColor).Methods("POST")
	api.HandleFunc("/lobby", s.handleJoinLobby).Methods("POST")
	api.HandleFunc("/history", s.handleHistory).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/ws/{roomID}", s.handleWebSocket)

	// Static files (game client)
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir("./static/")))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.auth.Register(r.Context(), req.Username)
	if errors.Is(err, auth.ErrInvalidUsername) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		logger.L().Error("registration failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSetColor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string `json:"playerId"`
		Token    string `json:"token"`
		Color    string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !s.auth.Verify(req.PlayerID, req.Token) {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	if !colorPattern.MatchString(req.Color) {
		respondError(w, http.StatusBadRequest, "color must be #rrggbb")
		return
	}

	if _, err := s.st.GetPlayer(r.Context(), req.PlayerID); err != nil {
		if errors.Is(err, store.ErrPlayerNotFound) {
			respondError(w, http.StatusGone, "player no longer exists")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.st.SetPlayerColor(r.Context(), req.PlayerID, req.Color); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleJoinLobby(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string `json:"playerId"`
		Token    string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !s.auth.Verify(req.PlayerID, req.Token) {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	roomID, err := s.mm.JoinLobby(r.Context())
	if err != nil {
		logger.L().Error("matchmaking failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "matchmaking failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"roomId": roomID})
}

// handleHistory returns a game's full event log. The lobbyId parameter names
// the game room whose history is wanted.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("lobbyId")
	if gameID == "" {
		respondError(w, http.StatusBadRequest, "lobbyId parameter required")
		return
	}
	events, err := s.st.GetGameEvents(r.Context(), gameID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"clicks": events})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.hub.ServeWS(w, r, vars["roomID"])
}

// handleHealth reports process liveness plus the store's availability flag
// and the hosted room count.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UnixMilli(),
		"redis":     s.st.KV().Available(),
		"rooms":     s.hub.RoomCount(),
	})
}
