package buckets_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bucketlabs/bucketshare/internal/app/features/buckets"
	uierrors "github.com/bucketlabs/bucketshare/internal/app/features/errors"
	"github.com/bucketlabs/bucketshare/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*buckets.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return buckets.NewHandler(db, uierrors.NewErrorLogger(logger), logger), testutil.NewFixtures(t, db)
}

func TestHandleSingleTitle(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateBucket(ctx, "bucket-1", "Road Trip", "owner@example.com")

	req := httptest.NewRequest(http.MethodGet, "/bucket-action/single?bucketId=bucket-1", nil)
	rec := httptest.NewRecorder()

	h.HandleSingleTitle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	var body struct {
		BucketTitle string `json:"bucketTitle"`
	}
	testutil.DecodeJSON(t, rec, &body)
	if body.BucketTitle != "Road Trip" {
		t.Errorf("bucketTitle: got %q, want %q", body.BucketTitle, "Road Trip")
	}
}

func TestHandleSingleTitle_NotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/bucket-action/single?bucketId=bucket-gone", nil)
	rec := httptest.NewRecorder()

	h.HandleSingleTitle(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", rec.Code)
	}
}

func TestHandleOrderedTitles(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "A", "B", "titles@example.com", "bucket-a", "", "bucket-b")
	fixtures.CreateBucket(ctx, "bucket-a", "Alpha", "titles@example.com")
	fixtures.CreateBucket(ctx, "bucket-b", "Beta", "other@example.com", "titles@example.com")

	req := httptest.NewRequest(http.MethodGet, "/bucket-action?email=titles@example.com", nil)
	rec := httptest.NewRecorder()

	h.HandleOrderedTitles(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var body struct {
		BucketTitles []string `json:"bucketTitles"`
	}
	testutil.DecodeJSON(t, rec, &body)

	want := []string{"Alpha", "", "Beta", ""}
	if len(body.BucketTitles) != len(want) {
		t.Fatalf("bucketTitles: got %d entries, want %d", len(body.BucketTitles), len(want))
	}
	for i := range want {
		if body.BucketTitles[i] != want[i] {
			t.Errorf("title %d: got %q, want %q", i, body.BucketTitles[i], want[i])
		}
	}
}

func TestHandleUpdateTitle_StripsMarkup(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateBucket(ctx, "bucket-1", "Old", "owner@example.com")

	req := testutil.NewJSONRequest(t, http.MethodPost, "/bucket-action",
		map[string]any{"bucketId": "bucket-1", "bucketTitle": `<script>alert(1)</script>Summer Plans`})
	rec := httptest.NewRecorder()

	h.HandleUpdateTitle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var body struct {
		Success     bool   `json:"success"`
		BucketTitle string `json:"bucketTitle"`
	}
	testutil.DecodeJSON(t, rec, &body)
	if !body.Success {
		t.Error("success: got false, want true")
	}
	if body.BucketTitle != "Summer Plans" {
		t.Errorf("bucketTitle: got %q, want markup stripped", body.BucketTitle)
	}
}

func TestHandleUpdateTitle_MissingFields(t *testing.T) {
	h, _ := newTestHandler(t)

	// bucketTitle must be present, though it may be empty.
	req := testutil.NewJSONRequest(t, http.MethodPost, "/bucket-action",
		map[string]any{"bucketId": "bucket-1"})
	rec := httptest.NewRecorder()

	h.HandleUpdateTitle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
}

func TestHandleUpdateTitle_EmptyTitleAllowed(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateBucket(ctx, "bucket-1", "Old", "owner@example.com")

	req := testutil.NewJSONRequest(t, http.MethodPost, "/bucket-action",
		map[string]any{"bucketId": "bucket-1", "bucketTitle": ""})
	rec := httptest.NewRecorder()

	h.HandleUpdateTitle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var body struct {
		BucketTitle string `json:"bucketTitle"`
	}
	testutil.DecodeJSON(t, rec, &body)
	if body.BucketTitle != "" {
		t.Errorf("bucketTitle: got %q, want cleared", body.BucketTitle)
	}
}
