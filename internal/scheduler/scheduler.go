// Package scheduler triggers the sync workflows on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/xelth-com/ongoingwms/internal/config"
	"github.com/xelth-com/ongoingwms/internal/models"
	"github.com/xelth-com/ongoingwms/internal/services/wmssync"
)

// requestLogRetention is how long stored SOAP envelopes are kept.
const requestLogRetention = 30 * 24 * time.Hour

// Worker is one scheduled job.
type Worker interface {
	Name() string
	Schedule() string
	Execute(ctx context.Context)
}

// WorkflowRunner runs one WMS workflow for one company.
type WorkflowRunner interface {
	ActiveCompanies(ctx context.Context) ([]models.Company, error)
	Run(ctx context.Context, workflow string, companyID int64) (*models.SyncHistory, error)
}

// MirrorRunner runs one ERP mirror pass.
type MirrorRunner interface {
	Run(ctx context.Context) (*models.SyncHistory, error)
}

// LogPurger drops stored envelopes older than a cutoff.
type LogPurger interface {
	PurgeRequestLogs(ctx context.Context, before time.Time) (int64, error)
}

// Orchestrator owns the cron instance and its workers.
type Orchestrator struct {
	workers []Worker
	log     *zap.Logger
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewOrchestrator creates an orchestrator for workers.
func NewOrchestrator(workers []Worker, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{workers: workers, log: logger.Named("scheduler")}
}

// Workers builds the standard job list from the schedule config. Jobs with
// an empty spec are left out; mirror may be nil when Odoo is not configured.
func Workers(cfg config.ScheduleConfig, runner WorkflowRunner, mirror MirrorRunner, purger LogPurger, logger *zap.Logger) []Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	specs := map[string]string{
		wmssync.WorkflowPush:     cfg.Push,
		wmssync.WorkflowInbound:  cfg.Inbound,
		wmssync.WorkflowTracking: cfg.Tracking,
		wmssync.WorkflowSerials:  cfg.Serials,
		wmssync.WorkflowReturns:  cfg.Returns,
	}
	var out []Worker
	for _, name := range wmssync.Workflows {
		if specs[name] == "" {
			continue
		}
		out = append(out, &workflowWorker{workflow: name, spec: specs[name], runner: runner, log: logger})
	}
	if mirror != nil && cfg.Odoo != "" {
		out = append(out, &mirrorWorker{spec: cfg.Odoo, mirror: mirror, log: logger})
	}
	if purger != nil {
		out = append(out, &purgeWorker{spec: "@daily", purger: purger, retention: requestLogRetention, log: logger})
	}
	return out
}

// Start registers every worker and starts the cron loop. A worker still
// running when its next tick arrives is skipped for that tick.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.ctx, o.cancel = context.WithCancel(ctx)
	logger := cronLogger{o.log.Sugar()}
	o.cron = cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	for _, w := range o.workers {
		w := w
		if _, err := o.cron.AddFunc(w.Schedule(), func() { w.Execute(o.ctx) }); err != nil {
			return fmt.Errorf("invalid schedule %q for %s: %w", w.Schedule(), w.Name(), err)
		}
		o.log.Info("job scheduled", zap.String("job", w.Name()), zap.String("spec", w.Schedule()))
	}

	o.cron.Start()
	return nil
}

// Stop cancels running jobs and waits for them to return.
func (o *Orchestrator) Stop() {
	if o.cron == nil {
		return
	}
	o.cancel()
	<-o.cron.Stop().Done()
	o.log.Info("scheduler stopped")
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}

// workflowWorker runs one workflow for every active company, one after another.
type workflowWorker struct {
	workflow string
	spec     string
	runner   WorkflowRunner
	log      *zap.Logger
}

func (w *workflowWorker) Name() string     { return "wms:" + w.workflow }
func (w *workflowWorker) Schedule() string { return w.spec }

func (w *workflowWorker) Execute(ctx context.Context) {
	companies, err := w.runner.ActiveCompanies(ctx)
	if err != nil {
		w.log.Error("failed to list companies", zap.String("job", w.Name()), zap.Error(err))
		return
	}
	for _, c := range companies {
		if ctx.Err() != nil {
			return
		}
		// Run records and logs its own outcome
		_, _ = w.runner.Run(ctx, w.workflow, c.ID)
	}
}

type mirrorWorker struct {
	spec   string
	mirror MirrorRunner
	log    *zap.Logger
}

func (w *mirrorWorker) Name() string     { return "odoo:mirror" }
func (w *mirrorWorker) Schedule() string { return w.spec }

func (w *mirrorWorker) Execute(ctx context.Context) {
	if _, err := w.mirror.Run(ctx); err != nil {
		w.log.Error("mirror run failed", zap.Error(err))
	}
}

type purgeWorker struct {
	spec      string
	purger    LogPurger
	retention time.Duration
	log       *zap.Logger
}

func (w *purgeWorker) Name() string     { return "purge:request-log" }
func (w *purgeWorker) Schedule() string { return w.spec }

func (w *purgeWorker) Execute(ctx context.Context) {
	n, err := w.purger.PurgeRequestLogs(ctx, time.Now().Add(-w.retention))
	if err != nil {
		w.log.Error("purge failed", zap.Error(err))
		return
	}
	if n > 0 {
		w.log.Info("request log purged", zap.Int64("rows", n))
	}
}
