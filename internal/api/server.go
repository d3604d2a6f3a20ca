// Package api serves the progression and economy engine over HTTP.
// Player endpoints are open (the game client identifies users by id).
// Admin endpoints additionally require a bearer token and name an
// administrator actor checked against the user table.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/talgya/aethel/internal/engine"
)

// Server serves the engine over HTTP.
type Server struct {
	Eng      *engine.Engine
	Port     int
	AdminKey string // Bearer token for admin endpoints. Empty = admin disabled.

	validate *validator.Validate
}

// Handler builds the route table. Split out from Start so tests can mount
// it on httptest servers.
func (s *Server) Handler() http.Handler {
	s.validate = validator.New(validator.WithRequiredStructEnabled())

	// Skill uses are the XP faucet; budget them per client.
	actionLimiter := NewRateLimiter(120, time.Hour)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/users", s.handleCreateUser)
	mux.HandleFunc("GET /api/v1/users/by-name/{username}", s.handleLookupUser)
	mux.HandleFunc("GET /api/v1/users/{id}", s.handleProfile)
	mux.HandleFunc("GET /api/v1/users/{id}/resources", s.handleResources)
	mux.HandleFunc("GET /api/v1/users/{id}/inventory", s.handleInventory)
	mux.HandleFunc("GET /api/v1/users/{id}/equipment", s.handleEquipped)
	mux.HandleFunc("POST /api/v1/users/{id}/equipment", s.handleEquip)
	mux.HandleFunc("POST /api/v1/users/{id}/actions", rateLimited(actionLimiter, s.handleAction))
	mux.HandleFunc("POST /api/v1/users/{id}/crafts", s.handleCraft)
	mux.HandleFunc("GET /api/v1/users/{id}/contracts", s.handleContractBoard)

	mux.HandleFunc("GET /api/v1/recipes", s.handleRecipes)

	mux.HandleFunc("POST /api/v1/contracts", s.handleCreateContract)
	mux.HandleFunc("POST /api/v1/contracts/{id}/accept", s.handleAcceptContract)
	mux.HandleFunc("POST /api/v1/contracts/{id}/complete", s.handleCompleteContract)

	mux.HandleFunc("GET /api/v1/admin/users", s.adminOnly(s.handleListUsers))
	mux.HandleFunc("DELETE /api/v1/admin/users/{id}", s.adminOnly(s.handleDeleteUser))
	mux.HandleFunc("POST /api/v1/admin/resources", s.adminOnly(s.handleGrantResources))
	mux.HandleFunc("GET /api/v1/admin/contracts", s.adminOnly(s.handleAllContracts))

	return corsMiddleware(mux)
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	handler := s.Handler()
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins. Set
// CORS_ORIGINS to a comma-separated list; localhost dev servers are
// always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// adminOnly requires the configured bearer token.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no AETHEL_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.AdminKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required,min=1,max=40"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	userID, err := s.Eng.CreateUser(req.Username)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]any{"user_id": userID, "username": req.Username})
}

func (s *Server) handleLookupUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.Eng.LookupUser(r.PathValue("username"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, user)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	profile, err := s.Eng.GetUserProfile(userID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, profile)
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	balances, err := s.Eng.GetResources(userID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]any{"resources": balances})
}

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	items, err := s.Eng.GetInventory(userID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]any{"items": items})
}

func (s *Server) handleEquipped(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	items, err := s.Eng.GetEquipped(userID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]any{"equipment": items})
}

func (s *Server) handleEquip(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		ItemID int64 `json:"item_id" validate:"required"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	item, err := s.Eng.EquipItem(userID, req.ItemID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, item)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		SkillName string `json:"skill_name" validate:"required"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.Eng.UseSkill(userID, req.SkillName)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, result)
}

func (s *Server) handleCraft(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		RecipeID int64 `json:"recipe_id" validate:"required"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	item, err := s.Eng.CraftItem(userID, req.RecipeID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, item)
}

func (s *Server) handleRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := s.Eng.ListRecipes()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]any{"recipes": recipes})
}

func (s *Server) handleContractBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	contracts, err := s.Eng.ListVisibleContracts(userID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]any{"contracts": contracts})
}

func (s *Server) handleCreateContract(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProposerID    int64  `json:"proposer_id" validate:"required"`
		Title         string `json:"title" validate:"required"`
		SkillName     string `json:"skill_name" validate:"required"`
		RequiredLevel int    `json:"required_level" validate:"gte=1"`
		Reward        int64  `json:"reward" validate:"gt=0"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	contract, err := s.Eng.CreateContract(req.ProposerID, req.Title, req.SkillName, req.RequiredLevel, req.Reward)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, contract)
}

func (s *Server) handleAcceptContract(w http.ResponseWriter, r *http.Request) {
	contractID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		UserID int64 `json:"user_id" validate:"required"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	contract, err := s.Eng.AcceptContract(contractID, req.UserID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, contract)
}

func (s *Server) handleCompleteContract(w http.ResponseWriter, r *http.Request) {
	contractID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		UserID    int64             `json:"user_id" validate:"required"`
		Delivered []engine.Delivery `json:"delivered" validate:"dive"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	contract, err := s.Eng.CompleteContract(contractID, req.UserID, req.Delivered)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, contract)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	actorID, ok := queryActor(w, r)
	if !ok {
		return
	}
	users, err := s.Eng.ListUsers(actorID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]any{"users": users})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	targetID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	actorID, ok := queryActor(w, r)
	if !ok {
		return
	}
	if err := s.Eng.DeleteUser(actorID, targetID); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGrantResources(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ActorID    int64 `json:"actor_id" validate:"required"`
		UserID     int64 `json:"user_id" validate:"required"`
		ResourceID int64 `json:"resource_id" validate:"required"`
		Quantity   int64 `json:"quantity" validate:"gt=0"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	balance, err := s.Eng.AddResources(req.ActorID, req.UserID, req.ResourceID, req.Quantity)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"user_id":     req.UserID,
		"resource_id": req.ResourceID,
		"quantity":    balance,
	})
}

func (s *Server) handleAllContracts(w http.ResponseWriter, r *http.Request) {
	actorID, ok := queryActor(w, r)
	if !ok {
		return
	}
	contracts, err := s.Eng.ListAllContracts(actorID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]any{"contracts": contracts})
}

// decode parses and validates a JSON request body. Writes the 400 itself
// and returns false when the body is unusable.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// pathID parses a numeric path segment, answering 400 on garbage.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// queryActor parses the acting administrator's user id from ?actor_id=.
func queryActor(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("actor_id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "missing or invalid actor_id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// writeEngineError maps engine error kinds to HTTP statuses. Unmapped
// errors are logged and reported as opaque 500s.
func writeEngineError(w http.ResponseWriter, err error) {
	var status int
	switch engine.Kind(err) {
	case engine.ErrNotFound:
		status = http.StatusNotFound
	case engine.ErrInvalidInput:
		status = http.StatusBadRequest
	case engine.ErrForbidden:
		status = http.StatusForbidden
	case engine.ErrDuplicateUsername, engine.ErrConflict:
		status = http.StatusConflict
	case engine.ErrInvalidOperation, engine.ErrInsufficientResources,
		engine.ErrInsufficientInventory, engine.ErrInsufficientSkill:
		status = http.StatusUnprocessableEntity
	default:
		slog.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}

func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
