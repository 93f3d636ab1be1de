package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/stash/internal/actor"
)

type contextKey string

const userIDKey contextKey = "userID"

// UserCtx validates the {user_id} URL parameter and stores it in the request
// context for downstream handlers. Invalid identifiers are rejected before
// any actor is provisioned.
func UserCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "user_id")
		if err := actor.ValidateUserID(userID); err != nil {
			WriteProblem(w, r, http.StatusBadRequest, err.Error())
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the user ID placed there by UserCtx.
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}
