// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authgooglefeature "github.com/bucketlabs/bucketshare/internal/app/features/authgoogle"
	bucketsfeature "github.com/bucketlabs/bucketshare/internal/app/features/buckets"
	collabfeature "github.com/bucketlabs/bucketshare/internal/app/features/collab"
	errorsfeature "github.com/bucketlabs/bucketshare/internal/app/features/errors"
	healthfeature "github.com/bucketlabs/bucketshare/internal/app/features/health"
	loginfeature "github.com/bucketlabs/bucketshare/internal/app/features/login"
	logoutfeature "github.com/bucketlabs/bucketshare/internal/app/features/logout"
	signupfeature "github.com/bucketlabs/bucketshare/internal/app/features/signup"
	userinfofeature "github.com/bucketlabs/bucketshare/internal/app/features/userinfo"
	"github.com/bucketlabs/bucketshare/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. BucketShare initializes the session
// store, applies session middleware, and mounts feature routers: auth
// (signup/login/logout/Google), bucket titles, and collaboration.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionDomain, secure, logger); err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return nil, err
	}

	db := deps.BucketShareMongoDatabase

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(auth.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.BucketShareMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Account creation and authentication
	signupHandler := signupfeature.NewHandler(db, errLog, logger)
	r.Mount("/signup", signupfeature.Routes(signupHandler))

	loginHandler := loginfeature.NewHandler(db, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Google sign-in is mounted only when credentials are configured.
	googleHandler := authgooglefeature.NewHandler(db, appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	if googleHandler.IsConfigured() {
		r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
	}

	// Current-user lookup
	userinfoHandler := userinfofeature.NewHandler(db, errLog, logger)
	userinfofeature.MountRoutes(r, userinfoHandler)

	// Bucket titles
	bucketsHandler := bucketsfeature.NewHandler(db, errLog, logger)
	r.Mount("/bucket-action", bucketsfeature.Routes(bucketsHandler))

	// Collaboration: invites, slot assignment, rosters
	collabHandler := collabfeature.NewHandler(db, errLog, appCfg.BaseURL, logger)
	r.Mount("/collab", collabfeature.Routes(collabHandler))

	return r, nil
}
