package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bucketlabs/bucketshare/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func buildTestHandler(t *testing.T) (http.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	coreCfg := &config.CoreConfig{Env: "dev"}
	appCfg := AppConfig{
		SessionKey: "test-session-key-0123456789abcdef",
		BaseURL:    "https://bucketshare.test",
	}
	deps := DBDeps{
		BucketShareMongoClient:   db.Client(),
		BucketShareMongoDatabase: db,
	}

	h, err := BuildHandler(coreCfg, appCfg, deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler failed: %v", err)
	}
	return h, testutil.NewFixtures(t, db)
}

// TestBuildHandler_CollabPaths dispatches through the assembled router and
// checks each collaboration endpoint is reachable at its /collab/... path.
// Each request carries an authenticated user and an empty JSON body, so a
// routed request reaches its handler's field validation (400) rather than
// the router's 404.
func TestBuildHandler_CollabPaths(t *testing.T) {
	handler, fixtures := buildTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Olive", "Owner", "owner@example.com")
	sessionUser := testutil.UserFor("Olive Owner", user.Email)

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodPost, "/collab/generate-invite", http.StatusBadRequest},
		{http.MethodPost, "/collab/accept-invite", http.StatusBadRequest},
		{http.MethodDelete, "/collab/remove-collaborator", http.StatusBadRequest},
		{http.MethodGet, "/collab/collaborators/bucket-missing", http.StatusNotFound},
	}
	for _, tc := range cases {
		req := testutil.NewJSONRequest(t, tc.method, tc.path, map[string]any{})
		req = testutil.WithUser(req, sessionUser)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != tc.want {
			t.Errorf("%s %s: got %d, want %d (%s)", tc.method, tc.path, rec.Code, tc.want, rec.Body.String())
		}
		// A routed request always gets a JSON body; the router's own 404 is
		// plain text.
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("%s %s: Content-Type got %q, want application/json", tc.method, tc.path, ct)
		}
	}
}

func TestBuildHandler_CollabListCollaborators(t *testing.T) {
	handler, fixtures := buildTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Olive", "Owner", "owner@example.com", "bucket-1")
	fixtures.CreateBucket(ctx, "bucket-1", "Trips", user.Email)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/collab/collaborators/bucket-1",
		testutil.UserFor("Olive Owner", user.Email))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /collab/collaborators/bucket-1: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Success       bool `json:"success"`
		Collaborators []struct {
			Email string `json:"email"`
		} `json:"collaborators"`
	}
	testutil.DecodeJSON(t, rec, &body)
	if !body.Success || len(body.Collaborators) != 1 {
		t.Errorf("unexpected roster payload: %s", rec.Body.String())
	}
}

func TestBuildHandler_CollabPathsRequireAuth(t *testing.T) {
	handler, _ := buildTestHandler(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/collab/accept-invite", map[string]any{})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated: got %d, want 401", rec.Code)
	}
}

// TestBuildHandler_NoRootCollabPaths pins the collaboration endpoints to the
// /collab prefix: the same operations must not answer at the root.
func TestBuildHandler_NoRootCollabPaths(t *testing.T) {
	handler, fixtures := buildTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Olive", "Owner", "owner@example.com")
	sessionUser := testutil.UserFor("Olive Owner", user.Email)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/generate-invite"},
		{http.MethodPost, "/accept-invite"},
		{http.MethodDelete, "/remove-collaborator"},
	} {
		req := testutil.NewJSONRequest(t, tc.method, tc.path, map[string]any{})
		req = testutil.WithUser(req, sessionUser)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s: got %d, want 404", tc.method, tc.path, rec.Code)
		}
	}
}
