package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/wricardo/mcp-training/ludo/game/engine"
	"github.com/wricardo/mcp-training/ludo/game/service"
	"github.com/wricardo/mcp-training/ludo/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.SimulationService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil, which disables the
// /ws endpoint and live broadcasts.
func NewServer(svc service.SimulationService, hub *websocket.Hub) *Server {
	s := &Server{
		service: svc,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Simulations
	api.HandleFunc("/simulate", s.handleSimulate).Methods("POST")
	api.HandleFunc("/simulations", s.handleListSimulations).Methods("GET")
	api.HandleFunc("/simulations/{id}", s.handleGetSimulation).Methods("GET")
	api.HandleFunc("/simulations/{id}", s.handleDeleteSimulation).Methods("DELETE")

	// Scenarios
	api.HandleFunc("/scenarios", s.handleListScenarios).Methods("GET")
	api.HandleFunc("/scenarios", s.handleCreateScenario).Methods("POST")
	api.HandleFunc("/scenarios/{name}", s.handleGetScenario).Methods("GET")
	api.HandleFunc("/scenarios/{name}/run", s.handleRunScenario).Methods("POST")

	api.HandleFunc("/rules", s.handleRules).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/ws", s.handleWebSocket)
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

// respondServiceError maps service errors to HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrScenariosDisabled):
		status = http.StatusServiceUnavailable
	}
	respondError(w, status, err.Error())
}

// publish streams a finished simulation to the live channel
func (s *Server) publish(sim *service.Simulation) {
	if s.hub == nil {
		return
	}
	if err := s.hub.BroadcastSimulation(websocket.LiveChannel, sim.ID, sim.History, sim.Positions); err != nil {
		log.Printf("Failed to broadcast simulation %s: %v", sim.ID, err)
	}
}

// Simulation Handlers

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req service.SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Turn decoding reports rule violations such as a roll of 9.
		if errors.Is(err, engine.ErrInvalidTurn) || errors.Is(err, engine.ErrInvalidRoll) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sim, err := s.service.Simulate(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.publish(sim)
	respondJSON(w, http.StatusCreated, sim)
}

func (s *Server) handleListSimulations(w http.ResponseWriter, r *http.Request) {
	simulations, err := s.service.ListSimulations(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default)
	limitStr := query.Get("limit") // number of simulations to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.SliceStable(simulations, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = simulations[i].CreatedAt, simulations[j].CreatedAt
		} else {
			ti, tj = simulations[i].LastAccessedAt, simulations[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(simulations)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < total {
			simulations = simulations[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":       len(simulations),
		"total":       total,
		"simulations": simulations,
		"sort":        sortBy,
		"order":       order,
	})
}

func (s *Server) handleGetSimulation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	sim, err := s.service.GetSimulation(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if r.URL.Query().Get("history") == "false" {
		sim.History = nil
	}
	respondJSON(w, http.StatusOK, sim)
}

func (s *Server) handleDeleteSimulation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.service.DeleteSimulation(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Simulation %s deleted", id),
	})
}

// Scenario Handlers

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := s.service.ListScenarios(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, scenarios)
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	scenario, err := s.service.LoadScenario(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, scenario)
}

func (s *Server) handleCreateScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string           `json:"name"`
		Scenario *engine.Scenario `json:"scenario"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Scenario name is required")
		return
	}
	if req.Scenario == nil {
		respondError(w, http.StatusBadRequest, "Scenario is required")
		return
	}

	if err := s.service.SaveScenario(r.Context(), req.Name, req.Scenario); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message":     fmt.Sprintf("Scenario %s saved", req.Name),
		"scenario_id": req.Name,
	})
}

func (s *Server) handleRunScenario(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	sim, err := s.service.RunScenario(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.publish(sim)
	respondJSON(w, http.StatusCreated, sim)
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.service.Rules(r.Context()))
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "WebSocket streaming is disabled", http.StatusServiceUnavailable)
		return
	}

	id := r.URL.Query().Get("simulation")
	if id == "" {
		s.hub.ServeWS(w, r, websocket.LiveChannel, nil)
		return
	}

	sim, err := s.service.GetSimulation(r.Context(), id)
	if err != nil {
		http.Error(w, "Invalid simulation", http.StatusNotFound)
		return
	}

	replay, err := websocket.EncodeSimulation(sim.ID, sim.History, sim.Positions)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.hub.ServeWS(w, r, sim.ID, replay)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
