// internal/app/features/userinfo/routes.go
package userinfo

import "github.com/go-chi/chi/v5"

// MountRoutes registers GET /me on the supplied router. No auth middleware
// is attached because the handler itself distinguishes the signed-out case.
func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/me", h.HandleCurrentUser)
}
