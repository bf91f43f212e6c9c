package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/bra3n/bra3n/internal/database"
	"github.com/bra3n/bra3n/internal/middleware"
	"github.com/bra3n/bra3n/internal/models"
	"github.com/bra3n/bra3n/internal/services/connections"
)

// ConnectionHandler manages external workspace connections (Notion, Google Drive)
type ConnectionHandler struct {
	connRepo database.ConnectionRepositoryInterface
	clients  map[models.ConnectionProvider]*connections.OAuthClient
}

// NewConnectionHandler creates a new connection handler
func NewConnectionHandler(connRepo database.ConnectionRepositoryInterface, clients map[models.ConnectionProvider]*connections.OAuthClient) *ConnectionHandler {
	return &ConnectionHandler{connRepo: connRepo, clients: clients}
}

// RegisterRoutes registers connection routes on the given router
// The router should already have the /connections prefix
func (h *ConnectionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/{provider}", h.GetConnection).Methods("GET")
	r.HandleFunc("/{provider}/url", h.GetConnectURL).Methods("GET")
	r.HandleFunc("/{provider}/callback", h.Callback).Methods("POST")
	r.HandleFunc("/{provider}/disconnect", h.Disconnect).Methods("POST")
	r.HandleFunc("/{provider}/disconnect", h.Preflight).Methods("OPTIONS")
}

// CallbackRequest carries the OAuth authorization code
type CallbackRequest struct {
	Code string `json:"code" validate:"required"`
}

// Preflight answers CORS preflight requests with a bare 200
func (h *ConnectionHandler) Preflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// GetConnection reports whether the user has a connection to the provider
func (h *ConnectionHandler) GetConnection(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	provider, ok := h.pathProvider(w, r)
	if !ok {
		return
	}

	conn, err := h.connRepo.GetByUserAndProvider(r.Context(), user.ID, provider)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve connection")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"provider":  provider,
		"connected": conn != nil,
	})
}

// GetConnectURL returns the OAuth authorization URL for the connect flow
func (h *ConnectionHandler) GetConnectURL(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	provider, ok := h.pathProvider(w, r)
	if !ok {
		return
	}

	client, ok := h.clients[provider]
	if !ok {
		respondJSONError(w, http.StatusServiceUnavailable, "Unavailable", "Provider is not configured")
		return
	}

	// The user ID doubles as OAuth state; the callback is authenticated anyway
	respondJSON(w, http.StatusOK, map[string]string{
		"url": client.AuthCodeURL(user.ID.String()),
	})
}

// Callback exchanges the authorization code and stores the connection
func (h *ConnectionHandler) Callback(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	provider, ok := h.pathProvider(w, r)
	if !ok {
		return
	}

	client, ok := h.clients[provider]
	if !ok {
		respondJSONError(w, http.StatusServiceUnavailable, "Unavailable", "Provider is not configured")
		return
	}

	var req CallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Missing authorization code")
		return
	}

	token, err := client.ExchangeCode(r.Context(), req.Code)
	if err != nil {
		log.Printf("OAuth exchange failed for %s: %v", provider, err)
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Failed to complete authorization")
		return
	}

	conn := &models.Connection{
		ID:          uuid.New(),
		UserID:      user.ID,
		Provider:    provider,
		AccessToken: token.AccessToken,
	}
	if err := h.connRepo.Upsert(r.Context(), conn); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save connection")
		return
	}

	respondJSON(w, http.StatusOK, conn)
}

// Disconnect removes the user's connection to the provider. Unknown providers
// are a client error; disconnecting when nothing is connected still succeeds.
func (h *ConnectionHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		writeConnectionError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	raw := mux.Vars(r)["provider"]
	if !models.ValidConnectionProvider(raw) {
		writeConnectionError(w, http.StatusBadRequest, "Unknown provider: "+raw)
		return
	}
	provider := models.ConnectionProvider(raw)

	if err := h.connRepo.DeleteByUserAndProvider(r.Context(), user.ID, provider); err != nil {
		writeConnectionError(w, http.StatusInternalServerError, "Failed to disconnect")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"message": string(provider) + " disconnected successfully",
	})
}

// writeConnectionError writes the disconnect flow's flat error shape
func writeConnectionError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
	})
}

func (h *ConnectionHandler) pathProvider(w http.ResponseWriter, r *http.Request) (models.ConnectionProvider, bool) {
	raw := mux.Vars(r)["provider"]
	if !models.ValidConnectionProvider(raw) {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Unknown provider: "+raw)
		return "", false
	}
	return models.ConnectionProvider(raw), true
}
