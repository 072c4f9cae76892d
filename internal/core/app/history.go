package app

import (
	"log/slog"

	"utoipauto/internal/core/config"
	"utoipauto/internal/data/history"
	"utoipauto/internal/engine/discover"
	"utoipauto/internal/shared/observability"
)

// recordHistory stores the run and returns its difference to the previous
// run of the project. It returns nil when history is disabled or the store
// could not be used.
func (a *App) recordHistory(logger *slog.Logger, runID string, cfg *config.Config, res discover.Result) *history.RunDiff {
	if a.history == nil {
		return nil
	}
	projectKey := cfg.History.ProjectKey

	prev, err := a.history.LatestRun(projectKey)
	if err != nil {
		observability.HistoryWriteErrorsTotal.Inc()
		logger.Warn("failed to load previous run", "error", err, "path", a.history.Path())
		return nil
	}

	run := history.NewRun(projectKey, res)
	run.ID = runID
	if _, err := a.history.SaveRun(run); err != nil {
		observability.HistoryWriteErrorsTotal.Inc()
		if history.IsCorruptError(err) {
			logger.Error("history store is corrupt", "error", err, "path", a.history.Path())
		} else {
			logger.Warn("failed to save run", "error", err)
		}
		return nil
	}

	if deleted, err := a.history.Prune(projectKey, cfg.History.Retention); err != nil {
		logger.Warn("failed to prune history", "error", err)
	} else if deleted > 0 {
		logger.Debug("pruned history", "deleted", deleted)
	}

	diff := history.Diff(prev, run)
	if prev != nil && !diff.Empty() {
		logger.Info("discovery output changed", "added", len(diff.Added), "removed", len(diff.Removed))
	}
	return &diff
}
