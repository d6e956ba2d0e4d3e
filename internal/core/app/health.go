package app

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"cppbind/internal/engine/binding"
	"cppbind/internal/shared/observability"
)

// Health reports the state of the last generation run. A failed last run
// marks the process degraded until a later run succeeds.
func (a *App) Health(ctx context.Context) observability.HealthStatus {
	status := observability.HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	last, err := a.LastResult()
	switch {
	case err != nil:
		status.Status = "degraded"
		status.Components["last_run"] = "failed: " + err.Error()
	case last == nil:
		status.Components["last_run"] = "pending"
	default:
		status.Components["last_run"] = fmt.Sprintf("ok (%d inputs, %d classes, %d warnings)",
			len(last.Inputs), last.Classes, binding.CountWarnings(last.Diagnostics))
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	status.Components["heap_alloc_mb"] = fmt.Sprintf("%d", mem.Alloc/1024/1024)
	return status
}
