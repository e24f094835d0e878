// Package odoo mirrors the ERP records the WMS workflows need from Odoo and
// writes the WMS identifiers back.
package odoo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xelth-com/ongoingwms/internal/models"
)

// Provider names mirror runs in sync_history.
const Provider = "odoo"

const (
	defaultPageSize = 500
	batchSize       = 200
	epoch           = "2000-01-01 00:00:00"
)

var closedStates = []string{models.StateDone, models.StateCancel}

// Local WMS state is never overwritten by an import; only these columns follow Odoo.
var (
	pickingColumns = []string{
		"name", "company_id", "kind", "state", "origin", "scheduled_date", "partner_id",
		"sale_order_id", "purchase_id", "carrier_id", "location_id", "location_dest_id", "write_date",
	}
	moveColumns = []string{
		"picking_id", "company_id", "product_id", "product_qty", "reserved_qty", "state",
		"location_id", "location_dest_id",
	}
	moveLineColumns = []string{
		"move_id", "picking_id", "product_id", "location_id", "location_dest_id", "lot_id", "reserved_qty",
	}
)

// SyncService mirrors Odoo into the local database.
type SyncService struct {
	rpc      RPC
	db       *gorm.DB
	log      *zap.Logger
	now      func() time.Time
	pageSize int
}

// NewSyncService creates a new synchronization service
func NewSyncService(rpc RPC, db *gorm.DB, logger *zap.Logger) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		rpc:      rpc,
		db:       db,
		log:      logger.Named("odoo"),
		now:      func() time.Time { return time.Now().UTC() },
		pageSize: defaultPageSize,
	}
}

// Run imports, exports and records the run in sync_history.
func (s *SyncService) Run(ctx context.Context) (*models.SyncHistory, error) {
	h := &models.SyncHistory{
		RunID:     uuid.NewString(),
		Provider:  Provider,
		Workflow:  "mirror",
		Status:    models.SyncStatusRunning,
		StartedAt: s.now(),
	}
	if err := s.db.WithContext(ctx).Create(h).Error; err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	counts, err := s.Import(ctx)
	if err == nil {
		var exported, failed int
		exported, failed, err = s.Export(ctx)
		counts["exported"] = exported
		h.Errors = failed
	}
	for model, n := range counts {
		if model != "exported" {
			h.Updated += n
		}
	}
	if debug, jerr := datatypesJSON(counts); jerr == nil {
		h.DebugInfo = debug
	}
	h.Finish(s.now(), err)

	if serr := s.db.WithContext(context.WithoutCancel(ctx)).Save(h).Error; serr != nil {
		s.log.Error("failed to save run", zap.String("run_id", h.RunID), zap.Error(serr))
	}
	s.log.Info("mirror run finished",
		zap.String("run_id", h.RunID),
		zap.String("status", h.Status),
		zap.Int("updated", h.Updated),
		zap.Int("duration_ms", h.Duration))
	return h, err
}

// fetch pages through search_read until a short page comes back.
func (s *SyncService) fetch(ctx context.Context, model string, domain []interface{}, fields []string) ([]Record, error) {
	var out []Record
	for offset := 0; ; offset += s.pageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := s.rpc.SearchRead(model, domain, fields, s.pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", model, err)
		}
		out = append(out, page...)
		if len(page) < s.pageSize {
			return out, nil
		}
	}
}

// since returns the newest write_date of table in Odoo's datetime layout.
func (s *SyncService) since(ctx context.Context, table, column string) string {
	var last sql.NullTime
	err := s.db.WithContext(ctx).Table(table).Select("MAX(" + column + ")").Row().Scan(&last)
	if err != nil || !last.Valid || last.Time.IsZero() {
		return epoch
	}
	return last.Time.UTC().Format(odooDateTime)
}

func changedSince(column, since string) []interface{} {
	return []interface{}{[]interface{}{column, ">", since}}
}

func idsIn(column string, ids []int64) []interface{} {
	return []interface{}{[]interface{}{column, "in", ids}}
}

func upsertByID[T any](db *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).CreateInBatches(&rows, batchSize).Error
}

// upsertOpen updates rows matched on odoo_id unless the local row is closed.
func upsertOpen[T any](db *gorm.DB, table string, rows []T, columns []string) error {
	if len(rows) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "odoo_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: table + ".state NOT IN ?", Vars: []interface{}{closedStates}},
		}},
	}).CreateInBatches(&rows, batchSize).Error
}

// localIDs maps Odoo ids to local ids for a mirrored table.
func localIDs(ctx context.Context, db *gorm.DB, table string, odooIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(odooIDs))
	if len(odooIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		ID     int64
		OdooID int64
	}
	err := db.WithContext(ctx).Table(table).Select("id, odoo_id").Where("odoo_id IN ?", odooIDs).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.OdooID] = r.ID
	}
	return out, nil
}

func recordIDs(rs []Record) []int64 {
	ids := make([]int64, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.ID())
	}
	return ids
}

// Import pulls every model changed since the previous run. Order matters:
// referenced records come before the records pointing at them.
func (s *SyncService) Import(ctx context.Context) (map[string]int, error) {
	counts := map[string]int{}
	steps := []struct {
		name string
		fn   func(context.Context) (int, error)
	}{
		{"companies", s.importCompanies},
		{"partners", s.importPartners},
		{"carriers", s.importCarriers},
		{"products", s.importProducts},
		{"suppliers", s.importSuppliers},
		{"lots", s.importLots},
		{"sale_orders", s.importSaleOrders},
		{"purchase_orders", s.importPurchaseOrders},
		{"pickings", s.importPickings},
	}
	for _, step := range steps {
		n, err := step.fn(ctx)
		if err != nil {
			return counts, fmt.Errorf("import %s: %w", step.name, err)
		}
		counts[step.name] = n
		if n > 0 {
			s.log.Info("imported", zap.String("model", step.name), zap.Int("count", n))
		}
	}
	return counts, nil
}

// importCompanies only refreshes names; WMS settings are local.
func (s *SyncService) importCompanies(ctx context.Context) (int, error) {
	recs, err := s.fetch(ctx, "res.company", []interface{}{}, fieldsOf(models.Company{}))
	if err != nil || len(recs) == 0 {
		return 0, err
	}
	rows := make([]models.Company, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, models.Company{ID: r.ID(), Name: r.String("name")})
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(&rows).Error
	return len(rows), err
}

func (s *SyncService) importPartners(ctx context.Context) (int, error) {
	recs, err := s.fetch(ctx, "res.partner",
		changedSince("write_date", s.since(ctx, "res_partner", "write_date")),
		fieldsOf(models.ResPartner{}))
	if err != nil || len(recs) == 0 {
		return 0, err
	}
	codes, err := s.stateCodes(ctx, recs)
	if err != nil {
		return 0, err
	}
	rows := make([]models.ResPartner, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, partnerFrom(r, codes))
	}
	return len(rows), upsertByID(s.db.WithContext(ctx), rows)
}

// stateCodes resolves the state_id of partners to their region codes.
func (s *SyncService) stateCodes(ctx context.Context, partners []Record) (map[int64]string, error) {
	seen := map[int64]bool{}
	var ids []int64
	for _, r := range partners {
		if id := r.Int64("state_id"); id != 0 && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	codes := map[int64]string{}
	if len(ids) == 0 {
		return codes, nil
	}
	recs, err := s.fetch(ctx, "res.country.state", idsIn("id", ids), []string{"id", "code"})
	if err != nil {
		return nil, err
	}
	for _, r := range recs {
		codes[r.ID()] = r.String("code")
	}
	return codes, nil
}

func (s *SyncService) importCarriers(ctx context.Context) (int, error) {
	recs, err := s.fetch(ctx, "delivery.carrier", []interface{}{}, fieldsOf(models.DeliveryCarrier{}))
	if err != nil || len(recs) == 0 {
		return 0, err
	}
	rows := make([]models.DeliveryCarrier, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, carrierFrom(r))
	}
	return len(rows), upsertByID(s.db.WithContext(ctx), rows)
}

func (s *SyncService) importProducts(ctx context.Context) (int, error) {
	domain := append(changedSince("write_date", s.since(ctx, "product_product", "write_date")),
		"|", []interface{}{"active", "=", true}, []interface{}{"active", "=", false})
	recs, err := s.fetch(ctx, "product.product", domain, fieldsOf(models.ProductProduct{}))
	if err != nil || len(recs) == 0 {
		return 0, err
	}
	now := s.now()
	rows := make([]models.ProductProduct, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, productFrom(r, now))
	}
	return len(rows), upsertByID(s.db.WithContext(ctx), rows)
}

func (s *SyncService) importSuppliers(ctx context.Context) (int, error) {
	recs, err := s.fetch(ctx, "product.supplierinfo", []interface{}{}, fieldsOf(models.ProductSupplier{}))
	if err != nil || len(recs) == 0 {
		return 0, err
	}
	rows := make([]models.ProductSupplier, 0, len(recs))
	for _, r := range recs {
		if sup, ok := supplierFrom(r); ok {
			rows = append(rows, sup)
		}
	}
	return len(rows), upsertByID(s.db.WithContext(ctx), rows)
}

func (s *SyncService) importLots(ctx context.Context) (int, error) {
	recs, err := s.fetch(ctx, "stock.lot",
		changedSince("create_date", s.since(ctx, "stock_lot", "create_date")),
		fieldsOf(models.StockLot{}))
	if err != nil || len(recs) == 0 {
		return 0, err
	}
	rows := make([]models.StockLot, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, lotFrom(r))
	}
	return len(rows), upsertByID(s.db.WithContext(ctx), rows)
}

func (s *SyncService) importSaleOrders(ctx context.Context) (int, error) {
	recs, err := s.fetch(ctx, "sale.order",
		changedSince("write_date", s.since(ctx, "sale_order", "write_date")),
		fieldsOf(models.SaleOrder{}))
	if err != nil || len(recs) == 0 {
		return 0, err
	}
	orders := make([]models.SaleOrder, 0, len(recs))
	for _, r := range recs {
		orders = append(orders, saleFrom(r))
	}
	lineRecs, err := s.fetch(ctx, "sale.order.line", idsIn("order_id", recordIDs(recs)), fieldsOf(models.SaleOrderLine{}))
	if err != nil {
		return 0, err
	}
	lines := make([]models.SaleOrderLine, 0, len(lineRecs))
	for _, r := range lineRecs {
		lines = append(lines, saleLineFrom(r))
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertByID(tx.Omit(clause.Associations), orders); err != nil {
			return err
		}
		return upsertByID(tx.Omit(clause.Associations), lines)
	})
	return len(orders), err
}

func (s *SyncService) importPurchaseOrders(ctx context.Context) (int, error) {
	recs, err := s.fetch(ctx, "purchase.order",
		changedSince("write_date", s.since(ctx, "purchase_order", "write_date")),
		fieldsOf(models.PurchaseOrder{}))
	if err != nil || len(recs) == 0 {
		return 0, err
	}
	orders := make([]models.PurchaseOrder, 0, len(recs))
	for _, r := range recs {
		orders = append(orders, purchaseFrom(r))
	}
	lineRecs, err := s.fetch(ctx, "purchase.order.line", idsIn("order_id", recordIDs(recs)), fieldsOf(models.PurchaseOrderLine{}))
	if err != nil {
		return 0, err
	}
	lines := make([]models.PurchaseOrderLine, 0, len(lineRecs))
	for _, r := range lineRecs {
		lines = append(lines, purchaseLineFrom(r))
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertByID(tx.Omit(clause.Associations), orders); err != nil {
			return err
		}
		return upsertByID(tx.Omit(clause.Associations), lines)
	})
	return len(orders), err
}

// importPickings mirrors pickings with their moves and move lines. Pickings
// closed locally keep their state until exported.
func (s *SyncService) importPickings(ctx context.Context) (int, error) {
	recs, err := s.fetch(ctx, "stock.picking",
		changedSince("write_date", s.since(ctx, "stock_picking", "write_date")),
		fieldsOf(models.StockPicking{}))
	if err != nil || len(recs) == 0 {
		return 0, err
	}
	odooPickings := recordIDs(recs)
	moveRecs, err := s.fetch(ctx, "stock.move", idsIn("picking_id", odooPickings), fieldsOf(models.StockMove{}))
	if err != nil {
		return 0, err
	}
	lineRecs, err := s.fetch(ctx, "stock.move.line", idsIn("picking_id", odooPickings), fieldsOf(models.StockMoveLine{}))
	if err != nil {
		return 0, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pickings := make([]models.StockPicking, 0, len(recs))
		for _, r := range recs {
			pickings = append(pickings, pickingFrom(r))
		}
		if err := upsertOpen(tx.Omit(clause.Associations), "stock_picking", pickings, pickingColumns); err != nil {
			return err
		}
		pickingIDs, err := localIDs(ctx, tx, "stock_picking", odooPickings)
		if err != nil {
			return err
		}

		moves := make([]models.StockMove, 0, len(moveRecs))
		for _, r := range moveRecs {
			if m, ok := moveFrom(r, pickingIDs); ok {
				moves = append(moves, m)
			}
		}
		if err := upsertOpen(tx.Omit(clause.Associations), "stock_move", moves, moveColumns); err != nil {
			return err
		}

		// destination moves may live in pickings outside this batch
		odooMoves := recordIDs(moveRecs)
		for _, r := range moveRecs {
			if dest := r.FirstID("move_dest_ids"); dest != nil {
				odooMoves = append(odooMoves, *dest)
			}
		}
		moveIDs, err := localIDs(ctx, tx, "stock_move", odooMoves)
		if err != nil {
			return err
		}
		for _, r := range moveRecs {
			dest := r.FirstID("move_dest_ids")
			local, ok := moveIDs[r.ID()]
			if dest == nil || !ok {
				continue
			}
			if destLocal, ok := moveIDs[*dest]; ok {
				if err := tx.Model(&models.StockMove{}).Where("id = ?", local).
					UpdateColumn("dest_move_id", destLocal).Error; err != nil {
					return err
				}
			}
		}

		lines := make([]models.StockMoveLine, 0, len(lineRecs))
		for _, r := range lineRecs {
			if ml, ok := moveLineFrom(r, pickingIDs, moveIDs); ok {
				lines = append(lines, ml)
			}
		}
		if len(lines) == 0 {
			return nil
		}
		return tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "odoo_id"}},
			DoUpdates: clause.AssignmentColumns(moveLineColumns),
		}).CreateInBatches(&lines, batchSize).Error
	})
	return len(recs), err
}

// Export writes the remote order id and tracking reference of every picking
// changed since its last export back to Odoo. A failed picking is logged and
// retried on the next run.
func (s *SyncService) Export(ctx context.Context) (exported, failed int, err error) {
	var pickings []models.StockPicking
	err = s.db.WithContext(ctx).
		Where("odoo_id IS NOT NULL").
		Where("remote_order_id <> '' OR carrier_tracking_ref <> ''").
		Where("erp_exported_at IS NULL OR updated_at > erp_exported_at").
		Order("id").
		Find(&pickings).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load pickings to export: %w", err)
	}

	for _, p := range pickings {
		if err := ctx.Err(); err != nil {
			return exported, failed, err
		}
		values := exportValues(&p)
		if err := s.rpc.Write("stock.picking", []int64{*p.OdooID}, values); err != nil {
			failed++
			s.log.Warn("export failed", zap.String("picking", p.Name), zap.Error(err))
			continue
		}
		if err := s.db.WithContext(ctx).Model(&models.StockPicking{}).Where("id = ?", p.ID).
			UpdateColumn("erp_exported_at", s.now()).Error; err != nil {
			return exported, failed, fmt.Errorf("failed to mark %s exported: %w", p.Name, err)
		}
		exported++
	}
	return exported, failed, nil
}

func exportValues(p *models.StockPicking) map[string]interface{} {
	values := map[string]interface{}{
		"ongoing_order_id":     p.RemoteOrderID,
		"carrier_tracking_ref": p.CarrierTrackingRef,
	}
	if p.LastSyncOn != nil {
		values["last_sync_on"] = p.LastSyncOn.UTC().Format(odooDateTime)
	}
	if p.NumberOfPackages > 0 {
		values["number_of_packages"] = p.NumberOfPackages
	}
	if p.CarrierTrackingURL != "" {
		values["carrier_tracking_url"] = p.CarrierTrackingURL
	}
	return values
}

func datatypesJSON(counts map[string]int) (datatypes.JSON, error) {
	b, err := json.Marshal(counts)
	return datatypes.JSON(b), err
}
