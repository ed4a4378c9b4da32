package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"preorder/internal/config"
	"preorder/internal/events"
	"preorder/internal/logger"
	"preorder/internal/services/shopify"
	"preorder/internal/services/stoq"
	"preorder/internal/source"
	"preorder/internal/store"
)

// Step is one restartable unit of the sync pipeline.
type Step struct {
	Name        string
	Description string
	Run         func(ctx context.Context) error
}

// Options controls one pipeline run.
type Options struct {
	DryRun        bool
	StopOnFailure bool
}

// Pipeline wires the source reader, the store, and the two API clients into
// an ordered list of steps.
type Pipeline struct {
	cfg       *config.Config
	logger    *logger.Logger
	store     *store.Store
	reader    *source.Reader
	shopify   *shopify.Client
	stoq      *stoq.Client
	publisher *events.Publisher

	runID string
}

func New(cfg *config.Config, st *store.Store, log *logger.Logger) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		logger:    log,
		store:     st,
		reader:    source.NewReader(cfg, log),
		shopify:   shopify.NewClient(cfg.ShopifyEndpoint, cfg.ShopifyAccessToken, log),
		stoq:      stoq.NewClient(cfg.StoqAPIBase, cfg.StoqAPIAccessKey, log),
		publisher: events.NewPublisher(cfg.KafkaBrokerList(), log),
	}
}

// Steps returns the ordered step registry. Selections index into this list
// one-based.
func (p *Pipeline) Steps() []Step {
	return []Step{
		{"build-csv", "parse source sheets into per-suffix offer/variant CSVs", p.buildCSV},
		{"load-batch", "load target CSVs into the daily batch tables", p.loadBatch},
		{"confirm-variants", "verify batch variant ids against Shopify", p.confirmVariants},
		{"mark-status", "diff batch offers against live offers and assign statuses", p.markStatus},
		{"create-plans", "create Stoq selling plans for inserted offers", p.createPlans},
		{"update-plans", "refresh Stoq selling plans for updated offers", p.updatePlans},
		{"disable-plans", "disable Stoq selling plans for deleted offers", p.disablePlans},
		{"delete-plans", "delete Stoq selling plans and purge completed rows", p.deletePlans},
		{"attach-variants", "attach variants to newly created plans", p.attachVariants},
		{"replace-variants", "rebuild live variants from the batch tables", p.replaceVariants},
		{"reconcile-variants", "reconcile updated plans' variants with the store", p.reconcileVariants},
		{"sync-profile", "sync the Shopify delivery profile membership", p.syncProfile},
	}
}

// Run executes the selected steps in order. Failures are collected and the
// run continues unless StopOnFailure is set; the returned error summarizes
// every failed step.
func (p *Pipeline) Run(ctx context.Context, selection string, opts Options) error {
	steps := p.Steps()
	indices, err := ParseSelection(selection, len(steps))
	if err != nil {
		return err
	}

	p.runID = uuid.New().String()
	p.logger.Info("Starting sync run %s (%d of %d steps)", p.runID, len(indices), len(steps))

	var failed []string
	for _, i := range indices {
		step := steps[i]
		if opts.DryRun {
			p.logger.Info("[dry-run] step %d: %s (%s)", i+1, step.Name, step.Description)
			continue
		}

		p.logger.Info("Running step %d: %s", i+1, step.Name)
		p.publish(ctx, step.Name, "started", "")
		if err := step.Run(ctx); err != nil {
			p.logger.Error("Step %s failed: %v", step.Name, err)
			p.publish(ctx, step.Name, "failed", err.Error())
			failed = append(failed, step.Name)
			if opts.StopOnFailure {
				return fmt.Errorf("step %s failed: %w", step.Name, err)
			}
			continue
		}
		p.publish(ctx, step.Name, "completed", "")
	}

	if len(failed) > 0 {
		return fmt.Errorf("run %s finished with failed steps: %s", p.runID, strings.Join(failed, ", "))
	}
	p.logger.Info("Sync run %s finished", p.runID)
	return nil
}

// Close releases the event publisher. The pipeline itself is reusable
// across runs.
func (p *Pipeline) Close() error {
	return p.publisher.Close()
}

func (p *Pipeline) publish(ctx context.Context, step, status, detail string) {
	p.publisher.Publish(ctx, events.Event{
		RunID:  p.runID,
		Step:   step,
		Status: status,
		Detail: detail,
	})
}
