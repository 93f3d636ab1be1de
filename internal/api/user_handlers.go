package api

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/hyperengineering/stash/internal/sync"
)

// maxRequestBody caps request payloads at 4 MiB. Ingest batches are the
// largest legitimate payload and stay well under this.
const maxRequestBody = 4 << 20

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
}

// requireClientGroupID rejects client group identifiers that are not UUIDs.
// Client groups are minted by the client library as UUIDv4, so anything else
// is a caller bug rather than a sync conflict.
func requireClientGroupID(w http.ResponseWriter, r *http.Request, id string) bool {
	if _, err := uuid.Parse(id); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "clientGroupId must be a UUID")
		return false
	}
	return true
}

// Init handles POST /api/v1/users/{user_id}/init.
// An empty body is valid and performs schema initialization only.
func (h *Handler) Init(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	raw, err := readBody(w, r)
	if err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var req sync.InitRequest
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := validateAndDecode(h.schemas.Init, raw, &req); err != nil {
			WriteProblem(w, r, http.StatusBadRequest, err.Error())
			return
		}
	}

	a, err := h.manager.Actor(r.Context(), userID)
	if err != nil {
		MapActorError(w, r, err)
		return
	}

	resp, err := a.Init(r.Context(), &req)
	if err != nil {
		slog.Error("init failed", "user_id", userID, "error", err)
		MapActorError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Push handles POST /api/v1/users/{user_id}/push.
func (h *Handler) Push(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	raw, err := readBody(w, r)
	if err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var req sync.PushRequest
	if err := validateAndDecode(h.schemas.Push, raw, &req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if !requireClientGroupID(w, r, req.ClientGroupID) {
		return
	}

	a, err := h.manager.Actor(r.Context(), userID)
	if err != nil {
		MapActorError(w, r, err)
		return
	}

	if err := a.Push(r.Context(), req); err != nil {
		slog.Error("push failed",
			"user_id", userID,
			"client_group_id", req.ClientGroupID,
			"error", err,
		)
		MapActorError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sync.PushResponse{})
}

// Pull handles POST /api/v1/users/{user_id}/pull.
func (h *Handler) Pull(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	raw, err := readBody(w, r)
	if err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var req sync.PullRequest
	if err := validateAndDecode(h.schemas.Pull, raw, &req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if !requireClientGroupID(w, r, req.ClientGroupID) {
		return
	}

	a, err := h.manager.Actor(r.Context(), userID)
	if err != nil {
		MapActorError(w, r, err)
		return
	}

	resp, err := a.Pull(r.Context(), req)
	if err != nil {
		slog.Error("pull failed",
			"user_id", userID,
			"client_group_id", req.ClientGroupID,
			"error", err,
		)
		MapActorError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Ingest handles POST /api/v1/users/{user_id}/ingest.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	raw, err := readBody(w, r)
	if err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var req sync.IngestRequest
	if err := validateAndDecode(h.schemas.Ingest, raw, &req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, err.Error())
		return
	}

	a, err := h.manager.Actor(r.Context(), userID)
	if err != nil {
		MapActorError(w, r, err)
		return
	}

	result, err := a.Ingest(r.Context(), req)
	if err != nil {
		slog.Error("ingest failed",
			"user_id", userID,
			"source_id", req.SourceID,
			"error", err,
		)
		MapActorError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Cleanup handles POST /api/v1/users/{user_id}/cleanup.
func (h *Handler) Cleanup(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	a, err := h.manager.Actor(r.Context(), userID)
	if err != nil {
		MapActorError(w, r, err)
		return
	}

	resp, err := a.Cleanup(r.Context())
	if err != nil {
		slog.Error("cleanup failed", "user_id", userID, "error", err)
		MapActorError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Profile handles GET /api/v1/users/{user_id}/profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	a, err := h.manager.Actor(r.Context(), userID)
	if err != nil {
		MapActorError(w, r, err)
		return
	}

	resp, err := a.Profile(r.Context())
	if err != nil {
		slog.Error("profile read failed", "user_id", userID, "error", err)
		MapActorError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
