// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	bucketstore "github.com/bucketlabs/bucketshare/internal/app/store/buckets"
	"github.com/bucketlabs/bucketshare/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// inviteSweeper is the background worker that clears long-expired invite
// codes. It is started here and stopped in Shutdown.
var inviteSweeper *workers.InviteSweep

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	inviteSweeper = workers.NewInviteSweep(
		bucketstore.New(deps.BucketShareMongoDatabase),
		logger,
		appCfg.InviteSweepInterval,
		appCfg.InviteSweepGrace,
	)
	inviteSweeper.Start()
	return nil
}
