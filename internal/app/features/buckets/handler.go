// internal/app/features/buckets/handler.go
package buckets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	uierrors "github.com/bucketlabs/bucketshare/internal/app/features/errors"
	bucketstore "github.com/bucketlabs/bucketshare/internal/app/store/buckets"
	collabstore "github.com/bucketlabs/bucketshare/internal/app/store/collab"
	userstore "github.com/bucketlabs/bucketshare/internal/app/store/users"
	"github.com/bucketlabs/bucketshare/internal/app/system/htmlsanitize"
	"github.com/bucketlabs/bucketshare/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the /bucket-action endpoints: single-title reads, the
// per-user ordered title view, and title updates.
type Handler struct {
	Engine *collabstore.Engine
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Engine: collabstore.NewEngine(db, logger),
		ErrLog: errLog,
		Log:    logger,
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

// HandleSingleTitle returns one bucket's title.
// GET /bucket-action/single?bucketId=...
func (h *Handler) HandleSingleTitle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	bucketID := r.URL.Query().Get("bucketId")
	if bucketID == "" {
		uierrors.BadRequest(w, "bucketId is required")
		return
	}

	b, err := h.Engine.Buckets().GetByBucketID(ctx, bucketID)
	if err != nil {
		if errors.Is(err, bucketstore.ErrNotFound) {
			uierrors.NotFound(w, "Bucket not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "bucket-action: load bucket", err, "Failed to fetch bucket title")
		return
	}

	writeJSON(w, map[string]any{"bucketTitle": b.BucketTitle})
}

// HandleOrderedTitles returns the caller's four slot titles in slot order.
// Empty slots yield "". The title is a property of the bucket, so two
// collaborators see the same title, just possibly in different slots.
// GET /bucket-action?email=...
func (h *Handler) HandleOrderedTitles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	email := r.URL.Query().Get("email")
	if email == "" {
		uierrors.BadRequest(w, "email is required")
		return
	}

	titles, err := h.Engine.OrderedTitles(ctx, email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			uierrors.NotFound(w, "User not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "bucket-action: ordered titles", err, "Failed to fetch bucket titles")
		return
	}

	writeJSON(w, map[string]any{"bucketTitles": titles})
}

type updateTitleRequest struct {
	BucketID    string  `json:"bucketId"`
	BucketTitle *string `json:"bucketTitle"`
}

// HandleUpdateTitle sets a bucket's title. Markup is stripped before the
// title is stored.
// POST /bucket-action
func (h *Handler) HandleUpdateTitle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var req updateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bucket-action: decode body", err, "Invalid request body")
		return
	}
	if req.BucketID == "" || req.BucketTitle == nil {
		uierrors.BadRequest(w, "bucketId and bucketTitle are required")
		return
	}

	title := htmlsanitize.Strip(*req.BucketTitle)

	b, err := h.Engine.Buckets().UpdateTitle(ctx, req.BucketID, title)
	if err != nil {
		if errors.Is(err, bucketstore.ErrNotFound) {
			uierrors.NotFound(w, "Bucket not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "bucket-action: update title", err, "Failed to save bucket title")
		return
	}

	writeJSON(w, map[string]any{
		"success":     true,
		"bucketTitle": b.BucketTitle,
	})
}
