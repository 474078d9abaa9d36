package bucketstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/bucketlabs/bucketshare/internal/app/system/normalize"
	"github.com/bucketlabs/bucketshare/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// InviteCodeBytes is the entropy of an invite code (hex-encoded on the wire).
	InviteCodeBytes = 16
	// InviteTTL is how long a generated invite stays valid.
	InviteTTL = 7 * 24 * time.Hour
)

var (
	// ErrNotFound is returned when no bucket matches the lookup.
	ErrNotFound = errors.New("bucket not found")
	// ErrInviteInvalid is returned for unknown and expired invite codes alike,
	// so callers cannot probe which codes once existed.
	ErrInviteInvalid = errors.New("invalid or expired invite code")
)

// Store persists bucket records: titles, the collaborator set, and the
// single active invite per bucket.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("buckets")}
}

// GetByBucketID loads a bucket by its stable bucket_id.
func (s *Store) GetByBucketID(ctx context.Context, bucketID string) (*models.Bucket, error) {
	var b models.Bucket
	if err := s.c.FindOne(ctx, bson.M{"bucket_id": bucketID}).Decode(&b); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// UpdateTitle sets the bucket's title and returns the updated record.
func (s *Store) UpdateTitle(ctx context.Context, bucketID, title string) (*models.Bucket, error) {
	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"bucket_id": bucketID},
		bson.M{"$set": bson.M{"bucket_title": title, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var b models.Bucket
	if err := res.Decode(&b); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Invite holds a freshly generated invite.
type Invite struct {
	Code      string
	ExpiresAt time.Time
}

// GenerateInvite writes a new cryptographically random invite code with a
// 7-day expiry onto the bucket, overwriting any previous invite. Supersession
// and expiry are the only ways a code stops working; there is no revocation.
func (s *Store) GenerateInvite(ctx context.Context, bucketID string) (*Invite, error) {
	buf := make([]byte, InviteCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	inv := &Invite{
		Code:      hex.EncodeToString(buf),
		ExpiresAt: time.Now().UTC().Add(InviteTTL),
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"bucket_id": bucketID},
		bson.M{"$set": bson.M{
			"invite_code":   inv.Code,
			"invite_expiry": inv.ExpiresAt,
			"updated_at":    time.Now().UTC(),
		}})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return inv, nil
}

// ResolveInvite returns the bucket whose active invite matches code. The
// expiry comparison is strictly-after: a code expiring exactly now is
// already invalid. Unknown and expired codes are indistinguishable.
func (s *Store) ResolveInvite(ctx context.Context, code string) (*models.Bucket, error) {
	var b models.Bucket
	err := s.c.FindOne(ctx, bson.M{
		"invite_code":   code,
		"invite_expiry": bson.M{"$gt": time.Now().UTC()},
	}).Decode(&b)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrInviteInvalid
		}
		return nil, err
	}
	return &b, nil
}

// AddCollaborator adds email to the bucket's collaborator set. $addToSet
// keeps the operation idempotent under concurrent accepts.
func (s *Store) AddCollaborator(ctx context.Context, bucketID, email string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"bucket_id": bucketID},
		bson.M{
			"$addToSet": bson.M{"collaborators": normalize.Email(email)},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveCollaborator pulls email from the bucket's collaborator set. The
// filter excludes the owner's email so the owner-membership invariant cannot
// be violated here: pulling the owner is silently a no-op.
func (s *Store) RemoveCollaborator(ctx context.Context, bucketID, email string) error {
	email = normalize.Email(email)
	_, err := s.c.UpdateOne(ctx,
		bson.M{"bucket_id": bucketID, "owner_email": bson.M{"$ne": email}},
		bson.M{
			"$pull": bson.M{"collaborators": email},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	return err
}

// SweepExpiredInvites unsets invite fields on buckets whose invite expired
// before the cutoff. Correctness never depends on this; ResolveInvite
// filters on expiry. It exists to keep long-dead codes out of the documents.
func (s *Store) SweepExpiredInvites(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"invite_expiry": bson.M{"$lt": cutoff}},
		bson.M{"$unset": bson.M{"invite_code": "", "invite_expiry": ""}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
