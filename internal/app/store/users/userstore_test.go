package userstore_test

import (
	"errors"
	"strings"
	"testing"

	userstore "github.com/bucketlabs/bucketshare/internal/app/store/users"
	"github.com/bucketlabs/bucketshare/internal/app/system/indexes"
	"github.com/bucketlabs/bucketshare/internal/domain/models"
	"github.com/bucketlabs/bucketshare/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create_ProvisionsFourSlots(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user, err := store.Create(ctx, userstore.CreateInput{
		First:    "Ada",
		Last:     "Lovelace",
		Email:    "ada@example.com",
		Password: "correct horse battery staple",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if len(user.BucketOrder) != models.SlotCount {
		t.Fatalf("BucketOrder length: got %d, want %d", len(user.BucketOrder), models.SlotCount)
	}
	for i, id := range user.BucketOrder {
		if id == "" {
			t.Errorf("slot %d is empty, want a provisioned bucket id", i)
		}
		if !strings.HasPrefix(id, "bucket-") {
			t.Errorf("slot %d: got %q, want bucket- prefix", i, id)
		}
	}

	// Every provisioned slot must have a bucket document owned by the user,
	// with the owner in the collaborator set.
	for _, id := range user.BucketOrder {
		var b models.Bucket
		if err := db.Collection("buckets").FindOne(ctx, bson.M{"bucket_id": id}).Decode(&b); err != nil {
			t.Fatalf("bucket %s not provisioned: %v", id, err)
		}
		if b.OwnerEmail != "ada@example.com" {
			t.Errorf("bucket %s owner: got %q, want %q", id, b.OwnerEmail, "ada@example.com")
		}
		if !b.HasCollaborator("ada@example.com") {
			t.Errorf("bucket %s: owner missing from collaborators %v", id, b.Collaborators)
		}
	}
}

func TestStore_Create_NormalizesFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user, err := store.Create(ctx, userstore.CreateInput{
		First:    "  Grace ",
		Last:     " Hopper ",
		Email:    "  Grace.Hopper@Example.COM ",
		Password: "pw",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if user.Email != "grace.hopper@example.com" {
		t.Errorf("Email: got %q, want lowercase trimmed", user.Email)
	}
	if user.First != "Grace" || user.Last != "Hopper" {
		t.Errorf("Name: got %q %q, want trimmed", user.First, user.Last)
	}
	if user.Password == "pw" {
		t.Error("Password stored in plain text")
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Duplicate detection rides on the unique email index.
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	in := userstore.CreateInput{First: "A", Last: "B", Email: "dup@example.com", Password: "pw"}
	if _, err := store.Create(ctx, in); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := store.Create(ctx, in)
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Fatalf("second Create: got %v, want ErrDuplicateEmail", err)
	}
}

func TestStore_GetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "Alan", "Turing", "alan@example.com")

	// Lookup is case-insensitive on the caller side.
	user, err := store.GetByEmail(ctx, "Alan@Example.COM")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if user.Email != "alan@example.com" {
		t.Errorf("Email: got %q, want %q", user.Email, "alan@example.com")
	}

	_, err = store.GetByEmail(ctx, "nobody@example.com")
	if !errors.Is(err, userstore.ErrNotFound) {
		t.Fatalf("GetByEmail unknown: got %v, want ErrNotFound", err)
	}
}

func TestStore_ValidatePassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user, err := store.Create(ctx, userstore.CreateInput{
		First: "A", Last: "B", Email: "pw@example.com", Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !store.ValidatePassword(user, "s3cret") {
		t.Error("correct password rejected")
	}
	if store.ValidatePassword(user, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestStore_SetSlot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "A", "B", "slots@example.com", "keep-0", "replace-1")

	if err := store.SetSlot(ctx, user.ID, 1, "bucket-new"); err != nil {
		t.Fatalf("SetSlot failed: %v", err)
	}

	got, err := store.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	want := []string{"keep-0", "bucket-new", "", ""}
	for i, id := range got.BucketOrder {
		if id != want[i] {
			t.Errorf("slot %d: got %q, want %q", i, id, want[i])
		}
	}
}

func TestStore_SetSlot_OutOfRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, slot := range []int{-1, models.SlotCount, 99} {
		err := store.SetSlot(ctx, primitive.NewObjectID(), slot, "bucket-x")
		if !errors.Is(err, userstore.ErrSlotOutOfRange) {
			t.Errorf("SetSlot(%d): got %v, want ErrSlotOutOfRange", slot, err)
		}
	}
}

func TestStore_SetSlot_UnknownUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.SetSlot(ctx, primitive.NewObjectID(), 0, "bucket-x")
	if !errors.Is(err, userstore.ErrNotFound) {
		t.Fatalf("SetSlot unknown user: got %v, want ErrNotFound", err)
	}
}

func TestStore_ClearSlotReferencing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "A", "B", "clear@example.com", "bucket-a", "bucket-b")

	if err := store.ClearSlotReferencing(ctx, "clear@example.com", "bucket-b"); err != nil {
		t.Fatalf("ClearSlotReferencing failed: %v", err)
	}

	got, err := store.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.BucketOrder[0] != "bucket-a" {
		t.Errorf("slot 0: got %q, want untouched %q", got.BucketOrder[0], "bucket-a")
	}
	if got.BucketOrder[1] != "" {
		t.Errorf("slot 1: got %q, want cleared", got.BucketOrder[1])
	}

	// Clearing a bucket no slot references is a no-op, not an error.
	if err := store.ClearSlotReferencing(ctx, "clear@example.com", "bucket-gone"); err != nil {
		t.Fatalf("ClearSlotReferencing no-op failed: %v", err)
	}
}
