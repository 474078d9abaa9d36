// internal/app/features/buckets/routes.go
package buckets

import (
	"github.com/bucketlabs/bucketshare/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the bucket title endpoints under /bucket-action.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.HandleOrderedTitles)
	r.Get("/single", h.HandleSingleTitle)
	r.Post("/", h.HandleUpdateTitle)

	return r
}
