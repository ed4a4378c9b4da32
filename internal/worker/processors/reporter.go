package processors

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"preorder/internal/config"
	"preorder/internal/events"
	"preorder/internal/logger"
)

const reportFileName = "sync_report.csv"

// Reporter appends sync events to a run report CSV in the target directory,
// giving operators a durable trail of what each run did.
type Reporter struct {
	config *config.Config
	logger *logger.Logger
	path   string
}

func NewReporter(cfg *config.Config, logger *logger.Logger) *Reporter {
	return &Reporter{
		config: cfg,
		logger: logger,
		path:   filepath.Join(cfg.TargetCSVDir, reportFileName),
	}
}

func (r *Reporter) Process(event events.Event) error {
	newFile := false
	if _, err := os.Stat(r.path); os.IsNotExist(err) {
		newFile = true
	}

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open sync report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write([]string{"timestamp", "run_id", "step", "status", "detail"}); err != nil {
			return fmt.Errorf("failed to write report header: %w", err)
		}
	}
	row := []string{
		event.Timestamp.Format(time.RFC3339),
		event.RunID,
		event.Step,
		event.Status,
		event.Detail,
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write report row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}

	r.logger.Debug("Recorded %s/%s for run %s", event.Step, event.Status, event.RunID)
	return nil
}
