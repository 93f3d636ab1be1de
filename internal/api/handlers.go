package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hyperengineering/stash/internal/actor"
	"github.com/hyperengineering/stash/internal/types"
)

// Handler implements the API handlers. Every per-user route resolves to an
// actor owned by the manager; the handler itself holds no user state.
type Handler struct {
	manager *actor.Manager
	schemas *SchemaSet
	apiKey  string
	version string
}

// NewHandler creates a Handler backed by the actor manager.
func NewHandler(m *actor.Manager, apiKey, version string) (*Handler, error) {
	schemas, err := LoadSchemas()
	if err != nil {
		return nil, fmt.Errorf("failed to load request schemas: %w", err)
	}
	return &Handler{
		manager: m,
		schemas: schemas,
		apiKey:  apiKey,
		version: version,
	}, nil
}

// Health returns the service status. No auth required.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := types.HealthResponse{
		Status:       "healthy",
		Version:      h.version,
		ActiveActors: h.manager.ActiveActors(),
	}
	writeJSON(w, http.StatusOK, resp)
}

// decodeValidated unmarshals raw into dst. Called only after schema
// validation has passed, so decode failures indicate a type mismatch the
// schema could not express.
func decodeValidated(raw []byte, dst any) error {
	return json.Unmarshal(raw, dst)
}
