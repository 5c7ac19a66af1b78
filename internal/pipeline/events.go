package pipeline

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Observer receives one-way progress notifications from the pipeline. The
// pipeline never depends on a response; implementations must not block.
type Observer interface {
	// Status replaces the current free-text status line.
	Status(msg string)
	// Log appends a timestamped diagnostic line.
	Log(msg string)
	// Progress reports run completion as a fraction in [0, 1].
	Progress(fraction float64)
}

// NopObserver discards all notifications.
type NopObserver struct{}

func (NopObserver) Status(string)    {}
func (NopObserver) Log(string)       {}
func (NopObserver) Progress(float64) {}

// LogObserver forwards notifications to the global zap logger.
type LogObserver struct{}

func (LogObserver) Status(msg string) {
	zap.L().Info("status", zap.String("msg", msg))
}

func (LogObserver) Log(msg string) {
	zap.L().Info("pipeline", zap.String("msg", msg), zap.String("at", time.Now().Format("15:04:05")))
}

func (LogObserver) Progress(fraction float64) {
	zap.L().Debug("progress", zap.String("pct", fmt.Sprintf("%.0f%%", fraction*100)))
}
