package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/bucketlabs/bucketshare/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given slot layout. bucketOrder may
// hold fewer than four entries; the remainder is filled with empty slots.
// Bucket documents are NOT created for the listed ids; use CreateBucket
// when the test needs them to resolve.
func (f *Fixtures) CreateUser(ctx context.Context, first, last, email string, bucketOrder ...string) models.User {
	f.t.Helper()

	order := make([]string, models.SlotCount)
	copy(order, bucketOrder)

	now := time.Now().UTC()
	user := models.User{
		ID:          primitive.NewObjectID(),
		First:       first,
		Last:        last,
		Email:       email,
		Password:    "$2a$10$unusable.test.hash.not.a.real.password.value",
		BucketOrder: order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateBucket inserts a bucket owned by ownerEmail. The owner is always
// included in the collaborator set, plus any extra collaborators given.
func (f *Fixtures) CreateBucket(ctx context.Context, bucketID, title, ownerEmail string, collaborators ...string) models.Bucket {
	f.t.Helper()

	collab := []string{ownerEmail}
	for _, c := range collaborators {
		if c != ownerEmail {
			collab = append(collab, c)
		}
	}

	now := time.Now().UTC()
	bucket := models.Bucket{
		ID:            primitive.NewObjectID(),
		BucketID:      bucketID,
		BucketTitle:   title,
		OwnerEmail:    ownerEmail,
		Collaborators: collab,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := f.db.Collection("buckets").InsertOne(ctx, bucket); err != nil {
		f.t.Fatalf("failed to create test bucket: %v", err)
	}

	return bucket
}

// CreateBucketWithInvite inserts a bucket that already carries an invite
// code expiring at the given time.
func (f *Fixtures) CreateBucketWithInvite(ctx context.Context, bucketID, title, ownerEmail, code string, expiry time.Time) models.Bucket {
	f.t.Helper()

	bucket := f.CreateBucket(ctx, bucketID, title, ownerEmail)
	bucket.InviteCode = code
	bucket.InviteExpiry = &expiry

	_, err := f.db.Collection("buckets").UpdateOne(ctx,
		bson.M{"bucket_id": bucketID},
		bson.M{"$set": bson.M{
			"invite_code":   code,
			"invite_expiry": expiry,
		}})
	if err != nil {
		f.t.Fatalf("failed to set test invite: %v", err)
	}

	return bucket
}

// NewBucketID returns a fresh bucket id in the same format the user store
// provisions slots with.
func NewBucketID() string {
	return "bucket-" + uuid.NewString()
}
