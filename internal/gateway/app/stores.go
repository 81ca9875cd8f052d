package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"codemorph/internal/gateway/config"
	artifactrepo "codemorph/internal/gateway/repository/artifact"
	"codemorph/internal/gateway/repository/usage"
)

// newExportStore uses S3 when it is fully configured and memory otherwise.
func newExportStore(cfg config.ArtifactConfig, logger zerolog.Logger) (artifactrepo.Store, error) {
	if !cfg.CanUseS3() {
		if cfg.Endpoint != "" {
			logger.Warn().Msg("artifact store: using in-memory fallback (s3 config incomplete)")
		}
		return artifactrepo.NewMemoryStore(), nil
	}
	s3Store, err := artifactrepo.NewS3Store(artifactrepo.S3Config{
		Endpoint:  cfg.Endpoint,
		Region:    cfg.Region,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Bucket:    cfg.Bucket,
		UseSSL:    cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize artifact s3 store: %w", err)
	}
	logger.Info().Str("bucket", cfg.Bucket).Str("endpoint", cfg.Endpoint).Msg("artifact store: s3")
	return s3Store, nil
}

// OpenUsageLedger returns nil when usage recording is disabled.
func OpenUsageLedger(ctx context.Context, cfg config.UsageConfig) (usage.Ledger, error) {
	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "file":
		return usage.NewFileLedger(cfg.Path), nil
	case "postgres":
		return usage.Open(ctx, usage.Postgres, cfg.DSN)
	case "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "tmp/llm_usage.db"
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("create usage db dir: %w", err)
			}
		}
		return usage.Open(ctx, usage.SQLite, dsn)
	default:
		return nil, fmt.Errorf("unknown usage driver %q", cfg.Driver)
	}
}
