package models

import (
	"strings"
	"time"
)

// Picking kinds, mirroring 'stock.picking.type'.code
const (
	PickingKindIncoming = "incoming"
	PickingKindOutgoing = "outgoing"
	PickingKindInternal = "internal"
)

// Picking and move states
const (
	StateDraft     = "draft"
	StateWaiting   = "waiting"
	StateConfirmed = "confirmed"
	StateAssigned  = "assigned"
	StateDone      = "done"
	StateCancel    = "cancel"
)

// StockPicking mirrors 'stock.picking' (Transfer Orders).
// Locally created pickings (returns, backorders) have no OdooID until exported.
type StockPicking struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	OdooID         *int64    `gorm:"uniqueIndex" json:"odoo_id" xmlrpc:"id"`
	Name           string    `gorm:"index" json:"name" xmlrpc:"name"` // WH/OUT/00012
	CompanyID      int64     `gorm:"index" json:"company_id" xmlrpc:"company_id"`
	Kind           string    `gorm:"index" json:"kind" xmlrpc:"picking_type_code"` // incoming, outgoing, internal
	State          string    `gorm:"index" json:"state" xmlrpc:"state"`
	Origin         string    `json:"origin" xmlrpc:"origin"`
	ScheduledDate  time.Time `json:"scheduled_date" xmlrpc:"scheduled_date"`
	PartnerID      *int64    `json:"partner_id" xmlrpc:"partner_id"`
	SaleOrderID    *int64    `gorm:"index" json:"sale_id" xmlrpc:"sale_id"`
	PurchaseID     *int64    `gorm:"index" json:"purchase_id" xmlrpc:"purchase_id"`
	CarrierID      *int64    `json:"carrier_id" xmlrpc:"carrier_id"`
	LocationID     int64     `json:"location_id" xmlrpc:"location_id"`           // Source
	LocationDestID int64     `json:"location_dest_id" xmlrpc:"location_dest_id"` // Dest

	// WMS side
	RemoteOrderID      string     `gorm:"index" json:"remote_order_id" xmlrpc:"ongoing_order_id"`
	LastSyncOn         *time.Time `json:"last_sync_on" xmlrpc:"last_sync_on"`
	CarrierTrackingRef string     `json:"carrier_tracking_ref" xmlrpc:"carrier_tracking_ref"`
	CarrierTrackingURL string     `gorm:"type:text" json:"carrier_tracking_url"` // comma-joined, one per parcel
	NumberOfPackages   int        `json:"number_of_packages"`
	LineSequence       int        `json:"line_sequence"` // last remote line number handed out

	// Returns / backorders
	ReturnOfID    *int64 `gorm:"index" json:"return_of_id"`
	ReturnCause   string `json:"return_cause"`
	BackorderOfID *int64 `gorm:"index" json:"backorder_of_id"`

	WriteDate     time.Time  `json:"write_date" xmlrpc:"write_date"`
	ERPExportedAt *time.Time `json:"erp_exported_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Relations
	Moves     []StockMove      `gorm:"foreignKey:PickingID" json:"moves,omitempty"`
	Partner   *ResPartner      `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	SaleOrder *SaleOrder       `gorm:"foreignKey:SaleOrderID" json:"sale_order,omitempty"`
	Purchase  *PurchaseOrder   `gorm:"foreignKey:PurchaseID" json:"purchase,omitempty"`
	Carrier   *DeliveryCarrier `gorm:"foreignKey:CarrierID" json:"carrier,omitempty"`
}

func (StockPicking) TableName() string {
	return "stock_picking"
}

// IsClosed reports whether the picking can no longer be changed.
func (p *StockPicking) IsClosed() bool {
	return p.State == StateDone || p.State == StateCancel
}

// NameSuffix returns the last segment of the picking name ("WH/OUT/00012" -> "00012").
func (p *StockPicking) NameSuffix() string {
	parts := strings.Split(p.Name, "/")
	return parts[len(parts)-1]
}

// NextLineNumber hands out the next remote line number for this picking.
func (p *StockPicking) NextLineNumber() int {
	p.LineSequence++
	return p.LineSequence
}

// OpenMoves returns the moves that are neither done nor cancelled.
func (p *StockPicking) OpenMoves() []*StockMove {
	var open []*StockMove
	for i := range p.Moves {
		if !p.Moves[i].IsClosed() {
			open = append(open, &p.Moves[i])
		}
	}
	return open
}

// FullyReserved reports whether every open move has its whole demand reserved.
func (p *StockPicking) FullyReserved() bool {
	open := p.OpenMoves()
	if len(open) == 0 {
		return false
	}
	for _, m := range open {
		if m.ReservedQty < m.ProductQty {
			return false
		}
	}
	return true
}

// StockMove mirrors 'stock.move'
type StockMove struct {
	ID                   int64   `gorm:"primaryKey" json:"id"`
	OdooID               *int64  `gorm:"uniqueIndex" json:"odoo_id" xmlrpc:"id"`
	PickingID            int64   `gorm:"index" json:"picking_id" xmlrpc:"picking_id"`
	CompanyID            int64   `gorm:"index" json:"company_id" xmlrpc:"company_id"`
	ProductID            int64   `gorm:"index" json:"product_id" xmlrpc:"product_id"`
	ProductQty           float64 `json:"product_uom_qty" xmlrpc:"product_uom_qty"` // demand
	ReservedQty          float64 `json:"reserved_availability" xmlrpc:"reserved_availability"`
	QuantityDone         float64 `json:"quantity_done" xmlrpc:"quantity_done"`
	State                string  `gorm:"index" json:"state" xmlrpc:"state"`
	LocationID           int64   `json:"location_id" xmlrpc:"location_id"`
	LocationDestID       int64   `json:"location_dest_id" xmlrpc:"location_dest_id"`
	RemoteLineNumber     int     `gorm:"index" json:"remote_line_number" xmlrpc:"ongoing_line_number"` // 0 = not assigned
	OriginReturnedMoveID *int64  `gorm:"index" json:"origin_returned_move_id" xmlrpc:"origin_returned_move_id"`
	DestMoveID           *int64  `json:"dest_move_id" xmlrpc:"move_dest_ids"`

	Product   ProductProduct  `gorm:"foreignKey:ProductID" json:"product"`
	MoveLines []StockMoveLine `gorm:"foreignKey:MoveID" json:"move_lines,omitempty"`
}

func (StockMove) TableName() string {
	return "stock_move"
}

// IsClosed reports whether the move is done or cancelled.
func (m *StockMove) IsClosed() bool {
	return m.State == StateDone || m.State == StateCancel
}

// LotCount returns the number of distinct lots already attached to the move.
func (m *StockMove) LotCount() int {
	seen := map[int64]bool{}
	for _, ml := range m.MoveLines {
		if ml.LotID != nil {
			seen[*ml.LotID] = true
		}
	}
	return len(seen)
}

// HasLot reports whether the lot is already on one of the move lines.
func (m *StockMove) HasLot(lotID int64) bool {
	for _, ml := range m.MoveLines {
		if ml.LotID != nil && *ml.LotID == lotID {
			return true
		}
	}
	return false
}

// StockMoveLine mirrors 'stock.move.line' (Detailed Operations)
type StockMoveLine struct {
	ID               int64   `gorm:"primaryKey" json:"id"`
	OdooID           *int64  `gorm:"uniqueIndex" json:"odoo_id" xmlrpc:"id"`
	MoveID           int64   `gorm:"index" json:"move_id" xmlrpc:"move_id"`
	PickingID        int64   `gorm:"index" json:"picking_id" xmlrpc:"picking_id"`
	CompanyID        int64   `json:"company_id" xmlrpc:"company_id"`
	ProductID        int64   `gorm:"index" json:"product_id" xmlrpc:"product_id"`
	LocationID       int64   `json:"location_id" xmlrpc:"location_id"`
	LocationDestID   int64   `json:"location_dest_id" xmlrpc:"location_dest_id"`
	LotID            *int64  `json:"lot_id" xmlrpc:"lot_id"`
	ReservedQty      float64 `json:"reserved_qty" xmlrpc:"reserved_qty"`
	QtyDone          float64 `json:"qty_done" xmlrpc:"qty_done"`
	RemoteLineNumber int     `gorm:"index" json:"remote_line_number" xmlrpc:"ongoing_line_number"`

	Product ProductProduct `gorm:"foreignKey:ProductID" json:"product"`
}

func (StockMoveLine) TableName() string {
	return "stock_move_line"
}

// StockLot mirrors 'stock.lot' (Serial Numbers / Lots).
type StockLot struct {
	ID         int64     `gorm:"primaryKey;autoIncrement:false" json:"id" xmlrpc:"id"`
	Name       string    `gorm:"index" json:"name" xmlrpc:"name"` // Serial Number
	ProductID  int64     `gorm:"index" json:"product_id" xmlrpc:"product_id"`
	CompanyID  int64     `gorm:"index" json:"company_id" xmlrpc:"company_id"`
	Ref        string    `json:"ref" xmlrpc:"ref"`
	CreateDate time.Time `json:"create_date" xmlrpc:"create_date"`

	// Relations
	Product ProductProduct `gorm:"foreignKey:ProductID" json:"product"`
}

func (StockLot) TableName() string {
	return "stock_lot"
}

// PickingNote is a chatter-style message attached to a picking.
type PickingNote struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	PickingID int64     `gorm:"index" json:"picking_id"`
	Body      string    `gorm:"type:text" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func (PickingNote) TableName() string {
	return "stock_picking_note"
}
