package models

import (
	"time"

	"gorm.io/datatypes"
)

// Product tracking modes
const (
	TrackingNone   = "none"
	TrackingSerial = "serial"
	TrackingLot    = "lot"
)

// ProductProduct mirrors Odoo 'product.product'
type ProductProduct struct {
	ID            int64     `gorm:"primaryKey;autoIncrement:false" json:"id" xmlrpc:"id"`
	DefaultCode   string    `gorm:"index" json:"default_code" xmlrpc:"default_code"` // SKU, the WMS article number
	Barcode       string    `gorm:"index" json:"barcode" xmlrpc:"barcode"`           // EAN13
	Name          string    `json:"name" xmlrpc:"name"`
	Active        bool      `gorm:"default:true" json:"active" xmlrpc:"active"`
	Tracking      string    `gorm:"default:none" json:"tracking" xmlrpc:"tracking"` // none, serial, lot
	UomName       string    `json:"uom_name" xmlrpc:"uom_name"`
	ListPrice     float64   `json:"list_price" xmlrpc:"list_price"`
	StandardPrice float64   `json:"standard_price" xmlrpc:"standard_price"`
	WriteDate     time.Time `json:"write_date" xmlrpc:"write_date"`

	LastSyncedAt time.Time      `json:"last_synced_at"`
	RawData      datatypes.JSON `gorm:"type:jsonb" json:"raw_data"`

	Suppliers []ProductSupplier `gorm:"foreignKey:ProductID" json:"suppliers,omitempty"`
}

func (ProductProduct) TableName() string { return "product_product" }

// ProductSupplier mirrors 'product.supplierinfo' (vendor list of a product).
type ProductSupplier struct {
	ID        int64 `gorm:"primaryKey;autoIncrement:false" json:"id" xmlrpc:"id"`
	ProductID int64 `gorm:"index" json:"product_id" xmlrpc:"product_id"`
	PartnerID int64 `gorm:"index" json:"partner_id" xmlrpc:"partner_id"`
	Sequence  int   `json:"sequence" xmlrpc:"sequence"`

	Partner *ResPartner `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
}

func (ProductSupplier) TableName() string { return "product_supplierinfo" }
