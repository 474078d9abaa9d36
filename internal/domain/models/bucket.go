// internal/domain/models/bucket.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bucket is one shared list. BucketID is the stable identifier users carry
// in their slot arrays; it is distinct from the Mongo _id. Collaborators is
// a set of emails with the owner always present.
//
// At most one invite is active per bucket: generating a new invite
// overwrites InviteCode/InviteExpiry. An invite is valid only while
// InviteExpiry is strictly in the future.
type Bucket struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	BucketID      string             `bson:"bucket_id" json:"bucketId"`
	BucketTitle   string             `bson:"bucket_title,omitempty" json:"bucketTitle"`
	OwnerEmail    string             `bson:"owner_email" json:"ownerEmail"`
	Collaborators []string           `bson:"collaborators" json:"collaborators"`

	InviteCode   string     `bson:"invite_code,omitempty" json:"-"`
	InviteExpiry *time.Time `bson:"invite_expiry,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasCollaborator reports whether email is in the collaborator set.
func (b *Bucket) HasCollaborator(email string) bool {
	for _, e := range b.Collaborators {
		if e == email {
			return true
		}
	}
	return false
}
