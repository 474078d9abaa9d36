package signup_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	uierrors "github.com/bucketlabs/bucketshare/internal/app/features/errors"
	"github.com/bucketlabs/bucketshare/internal/app/features/signup"
	"github.com/bucketlabs/bucketshare/internal/app/system/indexes"
	"github.com/bucketlabs/bucketshare/internal/domain/models"
	"github.com/bucketlabs/bucketshare/internal/testutil"
	"go.uber.org/zap"
)

func TestHandleSignup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	h := signup.NewHandler(db, uierrors.NewErrorLogger(logger), logger)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/signup", map[string]any{
		"first":    "Ada",
		"last":     "Lovelace",
		"email":    "ada@example.com",
		"password": "s3cret",
	})
	rec := httptest.NewRecorder()

	h.HandleSignup(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (%s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Message string `json:"message"`
		User    struct {
			Email       string   `json:"email"`
			BucketOrder []string `json:"bucketOrder"`
		} `json:"user"`
	}
	testutil.DecodeJSON(t, rec, &body)

	if body.Message != "Signup successful" {
		t.Errorf("message: got %q", body.Message)
	}
	if body.User.Email != "ada@example.com" {
		t.Errorf("email: got %q", body.User.Email)
	}
	if len(body.User.BucketOrder) != models.SlotCount {
		t.Errorf("bucketOrder: got %d slots, want %d", len(body.User.BucketOrder), models.SlotCount)
	}

	// The password hash must never appear in the response.
	if strings.Contains(rec.Body.String(), `"password"`) {
		t.Error("response leaks the password field")
	}
}

func TestHandleSignup_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	h := signup.NewHandler(db, uierrors.NewErrorLogger(logger), logger)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	payload := map[string]any{"first": "A", "last": "B", "email": "dup@example.com", "password": "pw"}

	rec := httptest.NewRecorder()
	h.HandleSignup(rec, testutil.NewJSONRequest(t, http.MethodPost, "/signup", payload))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first signup: got %d, want 201", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.HandleSignup(rec, testutil.NewJSONRequest(t, http.MethodPost, "/signup", payload))
	if rec.Code != http.StatusConflict {
		t.Fatalf("second signup: got %d, want 409", rec.Code)
	}

	var body struct {
		Message string `json:"message"`
	}
	testutil.DecodeJSON(t, rec, &body)
	if body.Message != "User already exists" {
		t.Errorf("message: got %q", body.Message)
	}
}

func TestHandleSignup_MissingFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	h := signup.NewHandler(db, uierrors.NewErrorLogger(logger), logger)

	rec := httptest.NewRecorder()
	h.HandleSignup(rec, testutil.NewJSONRequest(t, http.MethodPost, "/signup",
		map[string]any{"email": "x@example.com"}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
}
