package app

import (
	"context"
	"fmt"
	"time"

	"utoipauto/internal/shared/util"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	if s.app.Parser != nil {
		status.Components["parser"] = "ok"
	} else {
		status.Status = "degraded"
		status.Components["parser"] = "missing"
	}

	switch {
	case s.app.history != nil:
		status.Components["history"] = "ok (" + s.app.history.Path() + ")"
	case s.app.Config().History.Enabled:
		status.Status = "degraded"
		status.Components["history"] = "missing but enabled in config"
	default:
		status.Components["history"] = "disabled"
	}

	last, lastErr := s.app.LastReport()
	switch {
	case lastErr != nil:
		status.Status = "degraded"
		status.Components["last_run"] = "failed: " + lastErr.Error()
	case last != nil:
		res := last.Result
		status.Components["last_run"] = fmt.Sprintf("ok (%d paths, %d schemas, %d responses at %s)",
			len(res.Functions), len(res.Schemas), len(res.Responses), last.FinishedAt.Format(time.RFC3339))
	default:
		status.Components["last_run"] = "pending"
	}

	status.Components["heap"] = fmt.Sprintf("%d MB", util.GetHeapAllocMB())
	return status
}
