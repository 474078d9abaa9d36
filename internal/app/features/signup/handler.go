// internal/app/features/signup/handler.go
package signup

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	uierrors "github.com/bucketlabs/bucketshare/internal/app/features/errors"
	userstore "github.com/bucketlabs/bucketshare/internal/app/store/users"
	"github.com/bucketlabs/bucketshare/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler creates new accounts. Creating an account also provisions the
// user's four bucket slots and their bucket records (in the user store).
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

type signupRequest struct {
	First    string `json:"first"`
	Last     string `json:"last"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleSignup handles POST /signup.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "signup: decode body", err, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		uierrors.BadRequest(w, "email and password are required")
		return
	}

	user, err := h.Users.Create(ctx, userstore.CreateInput{
		First:    req.First,
		Last:     req.Last,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			uierrors.WriteJSON(w, http.StatusConflict, "User already exists")
			return
		}
		h.ErrLog.LogServerError(w, r, "signup: create user", err, "Signup failed")
		return
	}

	h.Log.Info("user signed up", zap.String("email", user.Email))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message": "Signup successful",
		"user":    user,
	})
}
