// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so any problem is visible and startup can fail fast.

The unique indexes here back two store behaviors:
  - users.email unique: duplicate signups surface as IsDup → ErrDuplicateEmail.
  - buckets.bucket_id unique: concurrent slot provisioning of the same
    bucket id resolves as a clean duplicate insert.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureBuckets(ctx, db); err != nil {
		problems = append(problems, "buckets: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_users_email"),
		},
	})
	return err
}

func ensureBuckets(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("buckets").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "bucket_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_buckets_bucket_id"),
		},
		{
			// Sparse: most buckets have no active invite.
			Keys:    bson.D{{Key: "invite_code", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("idx_buckets_invite_code"),
		},
		{
			Keys:    bson.D{{Key: "owner_email", Value: 1}},
			Options: options.Index().SetName("idx_buckets_owner_email"),
		},
		{
			Keys:    bson.D{{Key: "collaborators", Value: 1}},
			Options: options.Index().SetName("idx_buckets_collaborators"),
		},
	})
	return err
}
