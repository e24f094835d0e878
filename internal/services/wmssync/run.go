package wmssync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/xelth-com/ongoingwms/internal/models"
)

// Workflow names, used by the scheduler, the API and sync history.
const (
	WorkflowPush     = "push"
	WorkflowInbound  = "inbound"
	WorkflowTracking = "tracking"
	WorkflowSerials  = "serials"
	WorkflowReturns  = "returns"
	WorkflowArticles = "articles"
)

// ProviderOngoing tags sync history rows written by this package.
const ProviderOngoing = "ongoing"

// Workflows lists the scheduled workflows in the order a full run executes them.
var Workflows = []string{WorkflowPush, WorkflowInbound, WorkflowTracking, WorkflowSerials, WorkflowReturns}

// ErrUnknownWorkflow is returned by Run for names outside Workflows.
var ErrUnknownWorkflow = errors.New("unknown workflow")

// Run executes one scheduled workflow for a company and records it in the
// sync history.
func (s *Service) Run(ctx context.Context, workflow string, companyID int64) (*models.SyncHistory, error) {
	run, err := s.workflow(workflow)
	if err != nil {
		return nil, err
	}

	h := &models.SyncHistory{
		RunID:     uuid.New().String(),
		Provider:  ProviderOngoing,
		Workflow:  workflow,
		CompanyID: companyID,
		Status:    models.SyncStatusRunning,
		StartedAt: s.now(),
	}
	if err := s.store.SaveSyncHistory(ctx, h); err != nil {
		s.logger.Warn("failed to record sync start", zap.String("workflow", workflow), zap.Error(err))
	}

	log := s.logger.With(zap.String("workflow", workflow), zap.Int64("company", companyID), zap.String("run", h.RunID))
	log.Info("sync started")

	report, runErr := run(ctx, companyID)
	if report != nil {
		h.Created = report.Created
		h.Updated = report.Updated
		h.Skipped = report.Skipped
		h.Errors = report.Errors
		if len(report.Details) > 0 {
			if raw, err := json.Marshal(map[string]interface{}{"details": report.Details}); err == nil {
				h.DebugInfo = datatypes.JSON(raw)
			}
			if runErr == nil && report.Errors > 0 {
				h.ErrorDetail = strings.Join(report.Details, "\n")
			}
		}
	}
	h.Finish(s.now(), runErr)
	if err := s.store.SaveSyncHistory(ctx, h); err != nil {
		log.Warn("failed to record sync result", zap.Error(err))
	}

	if runErr != nil {
		log.Error("sync failed", zap.Error(runErr))
		return h, runErr
	}
	log.Info("sync finished",
		zap.String("status", h.Status),
		zap.Int("created", h.Created),
		zap.Int("updated", h.Updated),
		zap.Int("skipped", h.Skipped),
		zap.Int("errors", h.Errors),
		zap.Int("duration_ms", h.Duration))
	return h, nil
}

func (s *Service) workflow(name string) (func(context.Context, int64) (*Report, error), error) {
	switch name {
	case WorkflowPush:
		return s.PushOutbound, nil
	case WorkflowInbound:
		return s.PullInbound, nil
	case WorkflowTracking:
		return s.PullTracking, nil
	case WorkflowSerials:
		return s.PullSerials, nil
	case WorkflowReturns:
		return s.PullReturns, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownWorkflow, name)
}

// ActiveCompanies lists the companies with the integration enabled.
func (s *Service) ActiveCompanies(ctx context.Context) ([]models.Company, error) {
	return s.store.ActiveCompanies(ctx)
}
