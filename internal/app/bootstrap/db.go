// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/bucketlabs/bucketshare/internal/app/store/oauthstate"
	"github.com/bucketlabs/bucketshare/internal/app/system/indexes"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// EnsureSchema creates the indexes the stores rely on.
//
// The unique indexes on users.email and buckets.bucket_id back the
// stores' duplicate detection, so they must exist before traffic.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.BucketShareMongoDatabase); err != nil {
		logger.Error("index creation failed", zap.Error(err))
		return err
	}

	if err := oauthstate.New(deps.BucketShareMongoDatabase).EnsureIndexes(ctx); err != nil {
		logger.Error("oauth state index creation failed", zap.Error(err))
		return err
	}

	logger.Info("database indexes ensured")
	return nil
}
