// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/admissions/internal/app/resources"
	"github.com/dalemusser/admissions/internal/app/system/timeouts"
	"github.com/dalemusser/admissions/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		t := timeouts.Current()
		logger.Info("timeouts overridden from environment",
			zap.Int("count", n),
			zap.Duration("ping", t.Ping),
			zap.Duration("short", t.Short),
			zap.Duration("medium", t.Medium),
			zap.Duration("long", t.Long))
	}

	resources.LoadSharedTemplates()
	viewdata.SetSiteName(appCfg.SiteName)

	if appCfg.ScaleChanceOnStartup {
		if err := scaleEnrollmentChance(ctx, deps, appCfg.ScaleChanceDryRun, logger); err != nil {
			return err
		}
	}

	if deps.DraftCleanup != nil {
		deps.DraftCleanup.Start()
	}
	return nil
}

func scaleEnrollmentChance(ctx context.Context, deps DBDeps, dryRun bool, logger *zap.Logger) error {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), logger, "scale enrollment chance")
	defer cancel()

	rep, err := deps.Students.ScaleEnrollmentChance(ctx, dryRun)
	if err != nil {
		logger.Error("enrollment chance scaling failed", zap.Error(err))
		return err
	}
	for _, it := range rep.Items {
		logger.Info("enrollment chance",
			zap.String("id", it.ID.Hex()),
			zap.Float64("old", it.Old),
			zap.Float64("new", it.New),
			zap.Bool("dry_run", dryRun))
	}
	logger.Info("enrollment chance scaling done",
		zap.Int("found", rep.Found),
		zap.Int("changed", rep.Changed),
		zap.Bool("dry_run", dryRun))
	return nil
}
