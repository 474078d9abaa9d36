// Package collabstore implements the collaboration engine: accepting
// invites, assigning shared buckets into a user's four slots, and keeping
// the bucket collaborator sets consistent with the slot arrays.
package collabstore

import (
	"context"
	"errors"
	"fmt"

	bucketstore "github.com/bucketlabs/bucketshare/internal/app/store/buckets"
	userstore "github.com/bucketlabs/bucketshare/internal/app/store/users"
	"github.com/bucketlabs/bucketshare/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrInvalidSlot is returned when a supplied slot index is outside [0, 3].
var ErrInvalidSlot = errors.New("invalid slot index")

// Engine coordinates multi-record collaboration flows over the users and
// buckets stores. Individual steps are sequential and individually durable;
// there is no cross-record transaction (see AcceptInvite for the ordering
// that keeps partial failures recoverable).
type Engine struct {
	users   *userstore.Store
	buckets *bucketstore.Store
	log     *zap.Logger
}

func NewEngine(db *mongo.Database, logger *zap.Logger) *Engine {
	return &Engine{
		users:   userstore.New(db),
		buckets: bucketstore.New(db),
		log:     logger,
	}
}

// Users exposes the underlying user store.
func (e *Engine) Users() *userstore.Store { return e.users }

// Buckets exposes the underlying bucket store.
func (e *Engine) Buckets() *bucketstore.Store { return e.buckets }

// SlotView describes one of a user's four slots for the pre-commit
// selection step.
type SlotView struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	IsEmpty bool   `json:"isEmpty"`
	IsOwner bool   `json:"isOwner"`
}

// AcceptResult is the outcome of an AcceptInvite call.
//
// Exactly one of three shapes comes back on success:
//   - AlreadyCollaborator: the user was a member before the call; SlotIndex
//     is the 1-based slot referencing the bucket, or 0 (HasSlot=false) when
//     no slot does.
//   - RequiresSelection: no slot was supplied; CurrentBuckets describes the
//     user's slots and nothing was mutated.
//   - otherwise: the commit ran; SlotIndex is 1-based and Replaced reports
//     whether a previous bucket occupied the slot.
type AcceptResult struct {
	Bucket              *models.Bucket
	AlreadyCollaborator bool
	HasSlot             bool
	RequiresSelection   bool
	CurrentBuckets      []SlotView
	SlotIndex           int
	Replaced            bool
}

// AcceptInvite runs the slot-reconciliation state machine for userEmail and
// the given invite code. slot is the 0-based destination slot, or nil to
// request the side-effect-free selection payload.
//
// Commit ordering: the collaborator append is persisted before the slot
// write. If the process dies between the two, the user is a member without
// a slot mapping; a retried call short-circuits on membership and reports
// HasSlot=false, which the client resolves by re-requesting assignment.
// The cleanup of a replaced bucket's roster runs last and is best-effort:
// its failure is logged, not surfaced, because the join itself succeeded.
func (e *Engine) AcceptInvite(ctx context.Context, userEmail, code string, slot *int) (*AcceptResult, error) {
	user, err := e.users.GetByEmail(ctx, userEmail)
	if err != nil {
		return nil, err
	}

	bucket, err := e.buckets.ResolveInvite(ctx, code)
	if err != nil {
		return nil, err
	}

	// Already a member: report the existing mapping without mutating.
	if bucket.HasCollaborator(user.Email) {
		res := &AcceptResult{Bucket: bucket, AlreadyCollaborator: true}
		if idx := user.SlotOf(bucket.BucketID); idx >= 0 {
			res.SlotIndex = idx + 1
			res.HasSlot = true
		}
		return res, nil
	}

	// No destination chosen yet: describe the slots and stop. Slot
	// replacement is irreversible, so the choice must happen before any
	// write.
	if slot == nil {
		views, err := e.slotViews(ctx, user)
		if err != nil {
			return nil, err
		}
		return &AcceptResult{
			Bucket:            bucket,
			RequiresSelection: true,
			CurrentBuckets:    views,
		}, nil
	}

	if *slot < 0 || *slot >= models.SlotCount {
		return nil, ErrInvalidSlot
	}

	// Commit. Membership first, then the slot write.
	if err := e.buckets.AddCollaborator(ctx, bucket.BucketID, user.Email); err != nil {
		return nil, fmt.Errorf("add collaborator: %w", err)
	}

	oldBucketID := user.BucketOrder[*slot]

	if err := e.users.SetSlot(ctx, user.ID, *slot, bucket.BucketID); err != nil {
		return nil, fmt.Errorf("assign slot: %w", err)
	}

	// Leave the replaced bucket's roster if the user was only a guest there.
	// An owner keeps their membership even when the slot no longer points at
	// the bucket (the bucket stays alive, just unreachable from this slot).
	replaced := oldBucketID != ""
	if replaced {
		e.cleanupReplaced(ctx, oldBucketID, user.Email)
	}

	return &AcceptResult{
		Bucket:    bucket,
		SlotIndex: *slot + 1,
		Replaced:  replaced,
	}, nil
}

func (e *Engine) slotViews(ctx context.Context, user *models.User) ([]SlotView, error) {
	views := make([]SlotView, 0, models.SlotCount)
	for idx, bucketID := range user.BucketOrder {
		if bucketID == "" {
			views = append(views, SlotView{
				Index:   idx,
				Title:   fmt.Sprintf("Empty Slot %d", idx+1),
				IsEmpty: true,
			})
			continue
		}

		view := SlotView{Index: idx, Title: fmt.Sprintf("Bucket %d", idx+1)}
		b, err := e.buckets.GetByBucketID(ctx, bucketID)
		switch {
		case err == nil:
			if b.BucketTitle != "" {
				view.Title = b.BucketTitle
			}
			view.IsOwner = b.OwnerEmail == user.Email
		case errors.Is(err, bucketstore.ErrNotFound):
			// Slot points at an externally deleted bucket; keep the
			// placeholder title so the slot is still selectable.
		default:
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (e *Engine) cleanupReplaced(ctx context.Context, oldBucketID, userEmail string) {
	old, err := e.buckets.GetByBucketID(ctx, oldBucketID)
	if err != nil {
		if !errors.Is(err, bucketstore.ErrNotFound) {
			e.log.Error("replaced-bucket lookup failed; roster entry may dangle",
				zap.String("bucket_id", oldBucketID),
				zap.String("email", userEmail),
				zap.Error(err))
		}
		return
	}
	if old.OwnerEmail == userEmail {
		return
	}
	if err := e.buckets.RemoveCollaborator(ctx, oldBucketID, userEmail); err != nil {
		e.log.Error("failed to leave replaced bucket; roster entry dangles",
			zap.String("bucket_id", oldBucketID),
			zap.String("email", userEmail),
			zap.Error(err))
	}
}

// Collaborator is one roster entry with the profile fields the roster
// endpoint exposes.
type Collaborator struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsOwner bool   `json:"isOwner"`
}

// ListCollaborators resolves a bucket's collaborator emails to profiles.
// Emails without a user record (never the owner, in practice) are skipped.
func (e *Engine) ListCollaborators(ctx context.Context, bucket *models.Bucket) ([]Collaborator, error) {
	users, err := e.users.GetByEmails(ctx, bucket.Collaborators)
	if err != nil {
		return nil, err
	}
	out := make([]Collaborator, 0, len(users))
	for i := range users {
		u := &users[i]
		out = append(out, Collaborator{
			Email:   u.Email,
			Name:    u.FullName(),
			IsOwner: u.Email == bucket.OwnerEmail,
		})
	}
	return out, nil
}

// RemoveCollaborator pulls email from the bucket's roster and clears the
// removed user's slot that referenced the bucket. The slot clear is
// server-driven: the removed user did not ask for it, but a slot they can
// still see for a bucket they lost access to would be a dangling reference.
// Permission checks (owner-only, owner not removable) belong to the caller.
func (e *Engine) RemoveCollaborator(ctx context.Context, bucketID, email string) error {
	if err := e.buckets.RemoveCollaborator(ctx, bucketID, email); err != nil {
		return fmt.Errorf("remove from roster: %w", err)
	}
	if err := e.users.ClearSlotReferencing(ctx, email, bucketID); err != nil {
		return fmt.Errorf("clear slot: %w", err)
	}
	return nil
}

// OrderedTitles returns the user's four slot titles in slot order. Empty
// slots and slots referencing missing buckets yield "".
func (e *Engine) OrderedTitles(ctx context.Context, userEmail string) ([]string, error) {
	user, err := e.users.GetByEmail(ctx, userEmail)
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, models.SlotCount)
	for _, bucketID := range user.BucketOrder {
		if bucketID == "" {
			titles = append(titles, "")
			continue
		}
		b, err := e.buckets.GetByBucketID(ctx, bucketID)
		if err != nil {
			if errors.Is(err, bucketstore.ErrNotFound) {
				titles = append(titles, "")
				continue
			}
			return nil, err
		}
		titles = append(titles, b.BucketTitle)
	}
	return titles, nil
}
