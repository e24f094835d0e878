// Package store persists the local ERP mirror with gorm and serves it to the
// sync workflows.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xelth-com/ongoingwms/internal/models"
	"github.com/xelth-com/ongoingwms/internal/services/wmssync"
)

var closedStates = []string{models.StateDone, models.StateCancel}

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Repository implements wmssync.Store on top of gorm.
type Repository struct {
	db *gorm.DB
}

// NewRepository wraps db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ wmssync.Store = (*Repository)(nil)

// DB exposes the underlying handle for read-only admin queries.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// Transaction runs fn inside a transaction. gorm turns nested calls into savepoints.
func (r *Repository) Transaction(ctx context.Context, fn func(tx wmssync.Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func notFound(err error, what string, id int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("failed to load %s %d: %w", what, id, err)
}

// --- Companies ---

func (r *Repository) Company(ctx context.Context, id int64) (*models.Company, error) {
	var c models.Company
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err, "company", id)
	}
	return &c, nil
}

func (r *Repository) ActiveCompanies(ctx context.Context) ([]models.Company, error) {
	var out []models.Company
	err := r.db.WithContext(ctx).Where("wms_enabled = ?", true).Order("id").Find(&out).Error
	return out, err
}

// Companies lists every company, enabled or not.
func (r *Repository) Companies(ctx context.Context) ([]models.Company, error) {
	var out []models.Company
	err := r.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

func (r *Repository) SaveCompany(ctx context.Context, c *models.Company) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// --- Pickings ---

func orderByID(table string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(table + ".id")
	}
}

// pickings preloads everything the request builders read.
func (r *Repository) pickings(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Moves", orderByID("stock_move")).
		Preload("Moves.Product").
		Preload("Moves.MoveLines", orderByID("stock_move_line")).
		Preload("Moves.MoveLines.Product").
		Preload("Partner.Parent").
		Preload("SaleOrder.Partner.Parent").
		Preload("SaleOrder.ShippingPartner.Parent").
		Preload("SaleOrder.OrderedBy.Parent").
		Preload("SaleOrder.Carrier").
		Preload("Carrier").
		Preload("Purchase.Partner")
}

func (r *Repository) Picking(ctx context.Context, id int64) (*models.StockPicking, error) {
	var p models.StockPicking
	if err := r.pickings(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err, "picking", id)
	}
	return &p, nil
}

func (r *Repository) findPickings(q *gorm.DB) ([]*models.StockPicking, error) {
	var out []*models.StockPicking
	if err := q.Order("stock_picking.id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) openOutgoing(ctx context.Context, companyID int64) *gorm.DB {
	return r.pickings(ctx).
		Where("company_id = ? AND kind = ?", companyID, models.PickingKindOutgoing).
		Where("state NOT IN ?", closedStates).
		Where("sale_order_id IS NOT NULL")
}

func (r *Repository) PushablePickings(ctx context.Context, companyID int64) ([]*models.StockPicking, error) {
	return r.findPickings(r.openOutgoing(ctx, companyID).Where("remote_order_id = ''"))
}

func (r *Repository) ShippedPickings(ctx context.Context, companyID int64) ([]*models.StockPicking, error) {
	return r.findPickings(r.openOutgoing(ctx, companyID).Where("remote_order_id <> ''"))
}

func (r *Repository) InboundPickings(ctx context.Context, companyID int64, remoteOrderID string) ([]*models.StockPicking, error) {
	out, err := r.findPickings(r.pickings(ctx).
		Where("company_id = ? AND remote_order_id = ?", companyID, remoteOrderID).
		Where("kind IN ?", []string{models.PickingKindInternal, models.PickingKindIncoming}).
		Where("state NOT IN ?", closedStates))
	if err != nil {
		return nil, err
	}
	sortInbound(out)
	return out, nil
}

// sortInbound puts internal transfers ahead of receipts, keeping id order otherwise.
func sortInbound(ps []*models.StockPicking) {
	sort.SliceStable(ps, func(i, j int) bool {
		return ps[i].Kind == models.PickingKindInternal && ps[j].Kind != models.PickingKindInternal
	})
}

func (r *Repository) ReturnCandidates(ctx context.Context, companyID int64, remoteOrderID string) ([]*models.StockPicking, error) {
	return r.findPickings(r.pickings(ctx).
		Where("company_id = ? AND remote_order_id = ? AND kind = ?", companyID, remoteOrderID, models.PickingKindOutgoing))
}

func (r *Repository) DestinationPickings(ctx context.Context, p *models.StockPicking) ([]*models.StockPicking, error) {
	var moveIDs []int64
	for _, m := range p.Moves {
		if m.DestMoveID != nil {
			moveIDs = append(moveIDs, *m.DestMoveID)
		}
	}
	if len(moveIDs) == 0 {
		return nil, nil
	}
	sub := r.db.Model(&models.StockMove{}).Select("picking_id").Where("id IN ?", moveIDs)
	return r.findPickings(r.pickings(ctx).
		Where("id IN (?)", sub).
		Where("state NOT IN ?", closedStates))
}

// SavePicking writes the picking, its moves and their move lines. Related
// partners, products and orders are left alone.
func (r *Repository) SavePicking(ctx context.Context, p *models.StockPicking) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Save(p).Error; err != nil {
		return fmt.Errorf("failed to save picking %s: %w", p.Name, err)
	}
	for i := range p.Moves {
		m := &p.Moves[i]
		m.PickingID = p.ID
		if m.CompanyID == 0 {
			m.CompanyID = p.CompanyID
		}
		if err := db.Omit(clause.Associations).Save(m).Error; err != nil {
			return fmt.Errorf("failed to save move of %s: %w", p.Name, err)
		}
		for j := range m.MoveLines {
			ml := &m.MoveLines[j]
			ml.MoveID = m.ID
			ml.PickingID = p.ID
			if ml.CompanyID == 0 {
				ml.CompanyID = p.CompanyID
			}
			if err := db.Omit(clause.Associations).Save(ml).Error; err != nil {
				return fmt.Errorf("failed to save move line of %s: %w", p.Name, err)
			}
		}
	}
	return nil
}

func (r *Repository) AddNote(ctx context.Context, pickingID int64, body string) error {
	return r.db.WithContext(ctx).Create(&models.PickingNote{PickingID: pickingID, Body: body}).Error
}

// Notes lists the notes of a picking, oldest first.
func (r *Repository) Notes(ctx context.Context, pickingID int64) ([]models.PickingNote, error) {
	var out []models.PickingNote
	err := r.db.WithContext(ctx).Where("picking_id = ?", pickingID).Order("id").Find(&out).Error
	return out, err
}

func (r *Repository) ValidatePicking(ctx context.Context, p *models.StockPicking) (bool, error) {
	backorder, err := p.Validate()
	if err != nil {
		return false, err
	}
	// quantities may have been filled in even when a backorder decision is pending
	if err := r.SavePicking(ctx, p); err != nil {
		return false, err
	}
	return backorder, nil
}

func (r *Repository) ProcessBackorder(ctx context.Context, p *models.StockPicking) (*models.StockPicking, error) {
	backorder, err := p.SplitBackorder()
	if err != nil {
		return nil, err
	}
	if err := r.SavePicking(ctx, p); err != nil {
		return nil, err
	}
	if err := r.SavePicking(ctx, backorder); err != nil {
		return nil, err
	}
	return backorder, nil
}

func (r *Repository) HasReturn(ctx context.Context, pickingID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.StockPicking{}).
		Where("return_of_id = ? AND state <> ?", pickingID, models.StateCancel).
		Count(&n).Error
	return n > 0, err
}

func (r *Repository) FindLots(ctx context.Context, companyID int64, serials, codes []string) ([]models.StockLot, error) {
	if len(serials) == 0 || len(codes) == 0 {
		return nil, nil
	}
	var out []models.StockLot
	err := r.db.WithContext(ctx).
		Preload("Product").
		Joins("JOIN product_product ON product_product.id = stock_lot.product_id").
		Where("stock_lot.company_id = ?", companyID).
		Where("stock_lot.name IN ? AND product_product.default_code IN ?", serials, codes).
		Order("stock_lot.id").
		Find(&out).Error
	return out, err
}

// --- Orders and products ---

func (r *Repository) SaleOrder(ctx context.Context, id int64) (*models.SaleOrder, error) {
	var o models.SaleOrder
	err := r.db.WithContext(ctx).
		Preload("Lines", orderByID("sale_order_line")).
		Preload("Lines.Product").
		Preload("Partner").
		First(&o, id).Error
	if err != nil {
		return nil, notFound(err, "sale order", id)
	}
	return &o, nil
}

func (r *Repository) PurchaseOrder(ctx context.Context, id int64) (*models.PurchaseOrder, error) {
	var o models.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Lines", orderByID("purchase_order_line")).
		Preload("Lines.Product").
		Preload("Partner").
		First(&o, id).Error
	if err != nil {
		return nil, notFound(err, "purchase order", id)
	}
	return &o, nil
}

func (r *Repository) SaveSaleOrder(ctx context.Context, o *models.SaleOrder) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(o).Error
}

func (r *Repository) SavePurchaseOrder(ctx context.Context, o *models.PurchaseOrder) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(o).Error
}

func (r *Repository) ProductSuppliers(ctx context.Context, productID int64) ([]models.ProductSupplier, error) {
	var out []models.ProductSupplier
	err := r.db.WithContext(ctx).
		Preload("Partner").
		Where("product_id = ?", productID).
		Order("sequence, id").
		Find(&out).Error
	return out, err
}
