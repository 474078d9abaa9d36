// internal/app/features/login/handler.go
package login

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

// Handler authenticates users with email and password and establishes the
// session cookie.
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

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin handles POST /login. Unknown email and wrong password return
// the same 401 body so the endpoint does not confirm which emails exist.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "login: decode body", err, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		uierrors.BadRequest(w, "email and password are required")
		return
	}

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			uierrors.WriteJSON(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.ErrLog.LogServerError(w, r, "login: load user", err, "Login failed")
		return
	}

	if !h.Users.ValidatePassword(user, req.Password) {
		uierrors.WriteJSON(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if err := auth.SignIn(w, r, auth.SessionUser{
		ID:    user.ID.Hex(),
		Name:  user.FullName(),
		Email: user.Email,
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "login: save session", err, "Login failed")
		return
	}

	h.Log.Info("user logged in", zap.String("email", user.Email))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message": "Login successful",
		"user":    user,
	})
}
