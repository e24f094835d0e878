package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xelth-com/ongoingwms/internal/models"
	"github.com/xelth-com/ongoingwms/internal/wms"
)

func (r *Repository) ProcessedLines(ctx context.Context, pickingID int64, lineNos []int) ([]int, error) {
	if len(lineNos) == 0 {
		return nil, nil
	}
	var out []int
	err := r.db.WithContext(ctx).Model(&models.ProcessedLine{}).
		Where("picking_id = ? AND line_no IN ?", pickingID, lineNos).
		Order("line_no").
		Pluck("line_no", &out).Error
	return out, err
}

// RecordProcessedLine relies on the unique (picking_id, line_no) index; the
// connection must be opened with TranslateError for the duplicate to be recognised.
func (r *Repository) RecordProcessedLine(ctx context.Context, pickingID int64, lineNo int) error {
	err := r.db.WithContext(ctx).Create(&models.ProcessedLine{PickingID: pickingID, LineNo: lineNo}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return wms.Validationf(wms.ErrDuplicateReturn, "line %d of picking %d is recorded already", lineNo, pickingID)
	}
	return err
}

// --- Sync history ---

func (r *Repository) SaveSyncHistory(ctx context.Context, h *models.SyncHistory) error {
	return r.db.WithContext(ctx).Save(h).Error
}

// HistoryFilter narrows SyncHistory listings. Zero values match everything.
type HistoryFilter struct {
	CompanyID int64
	Workflow  string
	Limit     int
}

// SyncHistory lists runs, newest first.
func (r *Repository) SyncHistory(ctx context.Context, f HistoryFilter) ([]models.SyncHistory, error) {
	q := r.db.WithContext(ctx).Order("started_at DESC")
	if f.CompanyID != 0 {
		q = q.Where("company_id = ?", f.CompanyID)
	}
	if f.Workflow != "" {
		q = q.Where("workflow = ?", f.Workflow)
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var out []models.SyncHistory
	err := q.Limit(limit).Find(&out).Error
	return out, err
}

// --- Envelope log ---

// EnvelopeLog writes raw SOAP envelopes of one company to wms_request_log.
// It uses the root connection so entries survive a rolled back workflow.
type EnvelopeLog struct {
	db        *gorm.DB
	companyID int64
	logger    *zap.Logger
}

// Envelopes returns a factory usable as wmssync.ClientOptions.Envelopes.
func (r *Repository) Envelopes(logger *zap.Logger) func(companyID int64) wms.EnvelopeLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(companyID int64) wms.EnvelopeLogger {
		return &EnvelopeLog{db: r.db, companyID: companyID, logger: logger}
	}
}

// LogEnvelope never fails the call it observes; write errors are only logged.
func (l *EnvelopeLog) LogEnvelope(ctx context.Context, envelope, operation string) {
	entry := &models.WMSRequestLog{CompanyID: l.companyID, Operation: operation, Envelope: envelope}
	if err := l.db.WithContext(context.WithoutCancel(ctx)).Create(entry).Error; err != nil {
		l.logger.Warn("failed to store envelope", zap.Int64("company_id", l.companyID), zap.Error(err))
	}
}

// RequestLogs lists stored envelopes of a company, newest first.
func (r *Repository) RequestLogs(ctx context.Context, companyID int64, limit int) ([]models.WMSRequestLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var out []models.WMSRequestLog
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// PurgeRequestLogs deletes envelopes older than before and reports how many went.
func (r *Repository) PurgeRequestLogs(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", before).Delete(&models.WMSRequestLog{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge request logs: %w", res.Error)
	}
	return res.RowsAffected, nil
}
