// internal/app/features/userinfo/handler.go
package userinfo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	uierrors "github.com/bucketlabs/bucketshare/internal/app/features/errors"
	userstore "github.com/bucketlabs/bucketshare/internal/app/store/users"
	"github.com/bucketlabs/bucketshare/internal/app/system/auth"
	"github.com/bucketlabs/bucketshare/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the current user's profile and slot array. The record is
// fetched fresh on every call so slot changes made by other flows (invite
// accepts, removals) are visible immediately.
type Handler struct {
	Users  *userstore.Store
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:  userstore.New(db),
		ErrLog: errLog,
		Log:    logger,
	}
}

// HandleCurrentUser handles GET /me.
func (h *Handler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	su, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.Unauthorized(w)
		return
	}

	user, err := h.Users.GetByEmail(ctx, su.Email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			uierrors.NotFound(w, "User not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "userinfo: load user", err, "Failed to fetch user")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"user": user,
	})
}
