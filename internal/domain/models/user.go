// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SlotCount is the fixed number of bucket slots every user has.
const SlotCount = 4

// User is an account holder. BucketOrder always holds exactly SlotCount
// entries; an empty string marks an unused slot, anything else is the
// bucket_id of the bucket mapped into that slot. The same bucket id may
// appear in one slot of several users (owner plus collaborators) but at
// most once per user.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	First       string             `bson:"first" json:"first"`
	Last        string             `bson:"last" json:"last"`
	Email       string             `bson:"email" json:"email"` // lowercase, trimmed
	Password    string             `bson:"password" json:"-"`  // bcrypt hash
	BucketOrder []string           `bson:"bucket_order" json:"bucketOrder"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// FullName joins the first and last name for display.
func (u *User) FullName() string {
	if u.First == "" {
		return u.Last
	}
	if u.Last == "" {
		return u.First
	}
	return u.First + " " + u.Last
}

// SlotOf returns the 0-based slot holding bucketID, or -1 if no slot does.
func (u *User) SlotOf(bucketID string) int {
	for i, id := range u.BucketOrder {
		if id == bucketID {
			return i
		}
	}
	return -1
}
