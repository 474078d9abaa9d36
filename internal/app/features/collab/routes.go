// internal/app/features/collab/routes.go
package collab

import (
	"net/http"

	"github.com/bucketlabs/bucketshare/internal/app/system/auth"
	"github.com/bucketlabs/bucketshare/internal/app/system/normalize"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the collaboration endpoints. Every route requires a
// signed-in session; per-bucket permissions are checked in the handlers.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Post("/generate-invite", h.HandleGenerateInvite)
	r.Post("/accept-invite", h.HandleAcceptInvite)
	r.Get("/collaborators/{bucketId}", h.HandleListCollaborators)
	r.Delete("/remove-collaborator", h.HandleRemoveCollaborator)

	return r
}

func pathBucketID(r *http.Request) string {
	return chi.URLParam(r, "bucketId")
}

func sameEmail(a, b string) bool {
	return normalize.Email(a) == normalize.Email(b)
}
