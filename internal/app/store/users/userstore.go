package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bucketlabs/bucketshare/internal/app/system/normalize"
	"github.com/bucketlabs/bucketshare/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost for hashing passwords at signup.
const BcryptCost = 10

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when creating a user whose email already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrSlotOutOfRange is returned for a slot index outside [0, SlotCount).
	ErrSlotOutOfRange = errors.New("slot index out of range")
)

// Store persists user records. It also holds the buckets collection because
// creating a user provisions one bucket document per slot; the two writes
// belong to one operation.
type Store struct {
	c       *mongo.Collection
	buckets *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:       db.Collection("users"),
		buckets: db.Collection("buckets"),
	}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmails loads every user whose email is in the given set.
func (s *Store) GetByEmails(ctx context.Context, emails []string) ([]models.User, error) {
	normalized := make([]string, 0, len(emails))
	for _, e := range emails {
		normalized = append(normalized, normalize.Email(e))
	}
	cur, err := s.c.Find(ctx, bson.M{"email": bson.M{"$in": normalized}})
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateInput holds the fields for a new user. Password is the plain text
// password; Create hashes it.
type CreateInput struct {
	First    string
	Last     string
	Email    string
	Password string
}

// Create inserts a new user after normalizing fields and provisioning the
// four bucket slots. Every empty slot gets a freshly generated bucket id,
// and a bucket document is ensured for each id (a no-op when it already
// exists), owned by the new user.
func (s *Store) Create(ctx context.Context, in CreateInput) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u := models.User{
		ID:          primitive.NewObjectID(),
		First:       normalize.Name(in.First),
		Last:        normalize.Name(in.Last),
		Email:       normalize.Email(in.Email),
		Password:    string(hash),
		BucketOrder: make([]string, models.SlotCount),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i := range u.BucketOrder {
		u.BucketOrder[i] = NewBucketID()
	}

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	for _, bucketID := range u.BucketOrder {
		if err := s.ensureBucket(ctx, bucketID, u.Email, now); err != nil {
			return nil, fmt.Errorf("provision bucket %s: %w", bucketID, err)
		}
	}

	return &u, nil
}

// ValidatePassword compares a candidate password against the stored hash.
func (s *Store) ValidatePassword(u *models.User, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate)) == nil
}

// SetSlot writes bucketID into the given 0-based slot of the user's
// bucket_order. It does not touch any other slot.
func (s *Store) SetSlot(ctx context.Context, userID primitive.ObjectID, slot int, bucketID string) error {
	if slot < 0 || slot >= models.SlotCount {
		return ErrSlotOutOfRange
	}
	field := fmt.Sprintf("bucket_order.%d", slot)
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{field: bucketID, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearSlotReferencing empties the slot of the given user that points at
// bucketID. It is a no-op when no slot references the bucket.
func (s *Store) ClearSlotReferencing(ctx context.Context, email, bucketID string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"email": normalize.Email(email), "bucket_order": bucketID},
		bson.M{"$set": bson.M{"bucket_order.$": "", "updated_at": time.Now().UTC()}})
	return err
}

// NewBucketID generates a slot bucket identifier. The "bucket-" prefix keeps
// bucket ids recognizably distinct from user ids in logs and slot arrays.
func NewBucketID() string {
	return "bucket-" + uuid.NewString()
}

// ensureBucket creates the bucket document for bucketID if it does not
// exist. Explicit check-then-insert keyed on the unique bucket_id index:
// a concurrent insert of the same id loses the race cleanly as a duplicate.
func (s *Store) ensureBucket(ctx context.Context, bucketID, ownerEmail string, now time.Time) error {
	err := s.buckets.FindOne(ctx, bson.M{"bucket_id": bucketID}).Err()
	if err == nil {
		return nil // already exists
	}
	if err != mongo.ErrNoDocuments {
		return err
	}

	doc := models.Bucket{
		ID:            primitive.NewObjectID(),
		BucketID:      bucketID,
		BucketTitle:   "",
		OwnerEmail:    ownerEmail,
		Collaborators: []string{ownerEmail},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := s.buckets.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return nil
		}
		return err
	}
	return nil
}
