package models

import "time"

// ProcessedLine marks a WMS return line as applied to a picking.
// The unique (picking_id, line_no) pair blocks the same return from being applied twice.
type ProcessedLine struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	PickingID int64     `gorm:"not null;uniqueIndex:idx_processed_picking_line" json:"picking_id"`
	LineNo    int       `gorm:"not null;uniqueIndex:idx_processed_picking_line" json:"line_no"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProcessedLine) TableName() string { return "wms_processed_line" }

// WMSRequestLog stores a raw SOAP envelope exchanged with the WMS.
type WMSRequestLog struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	CompanyID int64     `gorm:"index" json:"company_id"`
	Operation string    `gorm:"index" json:"operation"` // "ongoing_request"
	Envelope  string    `gorm:"type:text" json:"envelope"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (WMSRequestLog) TableName() string { return "wms_request_log" }

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Company{},
		&ResPartner{},
		&ProductProduct{},
		&ProductSupplier{},
		&DeliveryCarrier{},
		&SaleOrder{},
		&SaleOrderLine{},
		&PurchaseOrder{},
		&PurchaseOrderLine{},
		&StockLot{},
		&StockPicking{},
		&StockMove{},
		&StockMoveLine{},
		&PickingNote{},
		&ProcessedLine{},
		&WMSRequestLog{},
		&SyncHistory{},
	}
}
