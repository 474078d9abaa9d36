// internal/app/features/collab/handler.go
package collab

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	uierrors "github.com/bucketlabs/bucketshare/internal/app/features/errors"
	bucketstore "github.com/bucketlabs/bucketshare/internal/app/store/buckets"
	collabstore "github.com/bucketlabs/bucketshare/internal/app/store/collab"
	userstore "github.com/bucketlabs/bucketshare/internal/app/store/users"
	"github.com/bucketlabs/bucketshare/internal/app/system/auth"
	"github.com/bucketlabs/bucketshare/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the /collab endpoints: invite generation, invite
// acceptance (slot assignment), and roster management.
type Handler struct {
	Engine  *collabstore.Engine
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
	BaseURL string // used to build invite URLs, e.g. "https://bucketshare.app"
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Engine:  collabstore.NewEngine(db, logger),
		ErrLog:  errLog,
		Log:     logger,
		BaseURL: baseURL,
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

// currentUser resolves the session user's record, writing the 401/404
// responses itself when resolution fails.
func (h *Handler) currentUser(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, bool) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.Unauthorized(w)
		return "", false
	}
	u, err := h.Engine.Users().GetByEmail(ctx, su.Email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			uierrors.NotFound(w, "User not found")
			return "", false
		}
		h.ErrLog.LogServerError(w, r, "collab: load session user", err, "Failed to load user")
		return "", false
	}
	return u.Email, true
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /collab/generate-invite                                                |
*─────────────────────────────────────────────────────────────────────────────*/

type generateInviteRequest struct {
	BucketID string `json:"bucketId"`
}

// HandleGenerateInvite issues a new invite code for a bucket. Owner only;
// a fresh code overwrites any previous one.
func (h *Handler) HandleGenerateInvite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var req generateInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "generate-invite: decode body", err, "Invalid request body")
		return
	}
	if req.BucketID == "" {
		uierrors.BadRequest(w, "bucketId is required")
		return
	}

	email, ok := h.currentUser(ctx, w, r)
	if !ok {
		return
	}

	bucket, err := h.Engine.Buckets().GetByBucketID(ctx, req.BucketID)
	if err != nil {
		if errors.Is(err, bucketstore.ErrNotFound) {
			uierrors.NotFound(w, "Bucket not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "generate-invite: load bucket", err, "Failed to generate invite")
		return
	}

	if bucket.OwnerEmail != email {
		uierrors.Forbidden(w, "Only the owner can generate invites")
		return
	}

	inv, err := h.Engine.Buckets().GenerateInvite(ctx, bucket.BucketID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "generate-invite: persist invite", err, "Failed to generate invite")
		return
	}

	h.Log.Info("invite generated",
		zap.String("bucket_id", bucket.BucketID),
		zap.String("owner", email))

	writeJSON(w, map[string]any{
		"success":    true,
		"inviteCode": inv.Code,
		"inviteUrl":  h.BaseURL + "/join-bucket/" + inv.Code,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /collab/accept-invite                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

type acceptInviteRequest struct {
	InviteCode string `json:"inviteCode"`
	SlotIndex  *int   `json:"slotIndex"` // nil requests the selection payload
}

// HandleAcceptInvite runs the slot-reconciliation flow. Omitting slotIndex
// returns the side-effect-free selection payload (HTTP 200, success=false,
// requiresSelection=true); supplying it commits the assignment.
func (h *Handler) HandleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	var req acceptInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "accept-invite: decode body", err, "Invalid request body")
		return
	}
	if req.InviteCode == "" {
		uierrors.BadRequest(w, "inviteCode is required")
		return
	}

	email, ok := h.currentUser(ctx, w, r)
	if !ok {
		return
	}

	res, err := h.Engine.AcceptInvite(ctx, email, req.InviteCode, req.SlotIndex)
	if err != nil {
		switch {
		case errors.Is(err, bucketstore.ErrInviteInvalid):
			uierrors.NotFound(w, "Invalid or expired invite code")
		case errors.Is(err, collabstore.ErrInvalidSlot):
			uierrors.BadRequest(w, "Invalid slot index. Must be 0-3.")
		default:
			h.ErrLog.LogServerError(w, r, "accept-invite: engine", err, "Failed to accept invite")
		}
		return
	}

	switch {
	case res.AlreadyCollaborator:
		body := map[string]any{
			"success":             true,
			"message":             "You're already a collaborator on this bucket",
			"bucketId":            res.Bucket.BucketID,
			"bucketTitle":         res.Bucket.BucketTitle,
			"alreadyCollaborator": true,
			"slotIndex":           nil,
		}
		if res.HasSlot {
			body["slotIndex"] = res.SlotIndex
		}
		writeJSON(w, body)

	case res.RequiresSelection:
		writeJSON(w, map[string]any{
			"success":           false,
			"requiresSelection": true,
			"message":           "Please choose which bucket slot to use",
			"bucketId":          res.Bucket.BucketID,
			"bucketTitle":       res.Bucket.BucketTitle,
			"owner":             res.Bucket.OwnerEmail,
			"currentBuckets":    res.CurrentBuckets,
		})

	default:
		h.Log.Info("invite accepted",
			zap.String("bucket_id", res.Bucket.BucketID),
			zap.String("email", email),
			zap.Int("slot", res.SlotIndex),
			zap.Bool("replaced", res.Replaced))

		writeJSON(w, map[string]any{
			"success":     true,
			"message":     "Successfully joined bucket",
			"bucketId":    res.Bucket.BucketID,
			"bucketTitle": res.Bucket.BucketTitle,
			"owner":       res.Bucket.OwnerEmail,
			"slotIndex":   res.SlotIndex,
			"replaced":    res.Replaced,
		})
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /collab/collaborators/{bucketId}                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleListCollaborators returns the roster of a bucket the caller is a
// member of.
func (h *Handler) HandleListCollaborators(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	bucketID := pathBucketID(r)
	if bucketID == "" {
		uierrors.BadRequest(w, "bucketId is required")
		return
	}

	email, ok := h.currentUser(ctx, w, r)
	if !ok {
		return
	}

	bucket, err := h.Engine.Buckets().GetByBucketID(ctx, bucketID)
	if err != nil {
		if errors.Is(err, bucketstore.ErrNotFound) {
			uierrors.NotFound(w, "Bucket not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "collaborators: load bucket", err, "Failed to fetch collaborators")
		return
	}

	if !bucket.HasCollaborator(email) {
		uierrors.Forbidden(w, "Access denied")
		return
	}

	roster, err := h.Engine.ListCollaborators(ctx, bucket)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "collaborators: resolve profiles", err, "Failed to fetch collaborators")
		return
	}

	writeJSON(w, map[string]any{
		"success":       true,
		"collaborators": roster,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /collab/remove-collaborator                                          |
*─────────────────────────────────────────────────────────────────────────────*/

type removeCollaboratorRequest struct {
	BucketID          string `json:"bucketId"`
	CollaboratorEmail string `json:"collaboratorEmail"`
}

// HandleRemoveCollaborator removes a collaborator from a bucket and clears
// the removed user's slot referencing it. Owner only; the owner cannot
// remove themselves.
func (h *Handler) HandleRemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	var req removeCollaboratorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "remove-collaborator: decode body", err, "Invalid request body")
		return
	}
	if req.BucketID == "" || req.CollaboratorEmail == "" {
		uierrors.BadRequest(w, "bucketId and collaboratorEmail are required")
		return
	}

	email, ok := h.currentUser(ctx, w, r)
	if !ok {
		return
	}

	bucket, err := h.Engine.Buckets().GetByBucketID(ctx, req.BucketID)
	if err != nil {
		if errors.Is(err, bucketstore.ErrNotFound) {
			uierrors.NotFound(w, "Bucket not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "remove-collaborator: load bucket", err, "Failed to remove collaborator")
		return
	}

	if bucket.OwnerEmail != email {
		uierrors.Forbidden(w, "Only the owner can remove collaborators")
		return
	}
	if sameEmail(req.CollaboratorEmail, bucket.OwnerEmail) {
		uierrors.BadRequest(w, "Cannot remove the bucket owner")
		return
	}

	if err := h.Engine.RemoveCollaborator(ctx, bucket.BucketID, req.CollaboratorEmail); err != nil {
		h.ErrLog.LogServerError(w, r, "remove-collaborator: engine", err, "Failed to remove collaborator")
		return
	}

	h.Log.Info("collaborator removed",
		zap.String("bucket_id", bucket.BucketID),
		zap.String("removed", req.CollaboratorEmail),
		zap.String("by", email))

	writeJSON(w, map[string]any{
		"success": true,
		"message": "Collaborator removed",
	})
}
