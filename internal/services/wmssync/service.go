// Package wmssync runs the synchronization workflows between the local
// record store and the Ongoing WMS.
package wmssync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xelth-com/ongoingwms/internal/models"
	"github.com/xelth-com/ongoingwms/internal/wms"
)

// Service coordinates gateway calls, idempotency checks and local mutations.
// Workflows run sequentially; a Service holds no per-run state.
type Service struct {
	store    Store
	gateways GatewayFactory
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a sync service.
func NewService(store Store, gateways GatewayFactory, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		gateways: gateways,
		logger:   logger.Named("wmssync"),
		now:      time.Now,
	}
}

// Report counts what one workflow invocation did.
type Report struct {
	Workflow string
	Created  int
	Updated  int
	Skipped  int
	Errors   int
	Details  []string
}

func (r *Report) fail(format string, args ...interface{}) {
	r.Errors++
	r.Details = append(r.Details, fmt.Sprintf(format, args...))
}

func (r *Report) skip(format string, args ...interface{}) {
	r.Skipped++
	r.Details = append(r.Details, fmt.Sprintf(format, args...))
}

// session is the company and gateway of one workflow invocation.
type session struct {
	company *models.Company
	gateway Gateway
}

// open reads the company settings and builds its gateway. Settings are never
// cached between invocations.
func (s *Service) open(ctx context.Context, st Store, companyID int64) (*session, error) {
	company, err := st.Company(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company %d: %w", companyID, err)
	}
	if !company.WMSEnabled {
		return nil, &wms.ConfigurationError{Field: "wms integration (disabled for " + company.Name + ")"}
	}
	gw, err := s.gateways(company)
	if err != nil {
		return nil, err
	}
	return &session{company: company, gateway: gw}, nil
}

// note attaches a non-fatal message to a picking. Failing to write it is logged only.
func (s *Service) note(ctx context.Context, st Store, p *models.StockPicking, format string, args ...interface{}) {
	body := fmt.Sprintf(format, args...)
	if err := st.AddNote(ctx, p.ID, body); err != nil {
		s.logger.Warn("failed to add picking note", zap.String("picking", p.Name), zap.Error(err))
	}
}

// validate closes p and splits a backorder when the validation asks for one.
func (s *Service) validate(ctx context.Context, st Store, p *models.StockPicking) error {
	backorder, err := st.ValidatePicking(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to validate %s: %w", p.Name, err)
	}
	if !backorder {
		return nil
	}
	bo, err := st.ProcessBackorder(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to create backorder for %s: %w", p.Name, err)
	}
	s.logger.Info("backorder created", zap.String("picking", p.Name), zap.String("backorder", bo.Name))
	return nil
}

// isItemError reports whether err only concerns the item being processed.
// Anything else aborts the batch.
func isItemError(err error) bool {
	return wms.IsValidation(err) || errors.Is(err, models.ErrNothingToValidate)
}
