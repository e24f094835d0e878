package models

import (
	"time"
)

// SaleOrder mirrors 'sale.order' with the delivery override fields used on shipping labels.
type SaleOrder struct {
	ID                int64  `gorm:"primaryKey;autoIncrement:false" json:"id" xmlrpc:"id"`
	Name              string `gorm:"index" json:"name" xmlrpc:"name"` // S00042
	CompanyID         int64  `gorm:"index" json:"company_id" xmlrpc:"company_id"`
	State             string `json:"state" xmlrpc:"state"`
	PartnerID         int64  `json:"partner_id" xmlrpc:"partner_id"`
	PartnerShippingID int64  `json:"partner_shipping_id" xmlrpc:"partner_shipping_id"`
	OrderedByID       *int64 `json:"ordered_by_id" xmlrpc:"flyt_so_ordered_by_contact"` // explicit "ordered by" contact
	ClientOrderRef    string `json:"client_order_ref" xmlrpc:"client_order_ref"`
	Reservation       string `json:"reservation" xmlrpc:"flyt_so_reservation"`
	CarrierID         *int64 `json:"carrier_id" xmlrpc:"carrier_id"`

	// Order-level address overrides, empty means "use the partner"
	ShippingStreet     string `json:"shipping_street" xmlrpc:"flyt_so_shipping_street"`
	ShippingCareOf     string `json:"shipping_care_of" xmlrpc:"flyt_so_shipping_co_or_company_name"`
	ShippingPostalCode string `json:"shipping_postal_code" xmlrpc:"flyt_so_shipping_postal_code"`
	ShippingCity       string `json:"shipping_city" xmlrpc:"flyt_so_shipping_city"`

	DateOrder  time.Time  `json:"date_order" xmlrpc:"date_order"`
	LastSyncOn *time.Time `json:"last_sync_on" xmlrpc:"last_sync_on"`
	WriteDate  time.Time  `json:"write_date" xmlrpc:"write_date"`

	// Relations
	Partner         *ResPartner      `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	ShippingPartner *ResPartner      `gorm:"foreignKey:PartnerShippingID" json:"shipping_partner,omitempty"`
	OrderedBy       *ResPartner      `gorm:"foreignKey:OrderedByID" json:"ordered_by,omitempty"`
	Carrier         *DeliveryCarrier `gorm:"foreignKey:CarrierID" json:"carrier,omitempty"`
	Lines           []SaleOrderLine  `gorm:"foreignKey:OrderID" json:"lines,omitempty"`
}

func (SaleOrder) TableName() string { return "sale_order" }

// SaleOrderLine mirrors 'sale.order.line'
type SaleOrderLine struct {
	ID        int64   `gorm:"primaryKey;autoIncrement:false" json:"id" xmlrpc:"id"`
	OrderID   int64   `gorm:"index" json:"order_id" xmlrpc:"order_id"`
	ProductID int64   `json:"product_id" xmlrpc:"product_id"`
	Quantity  float64 `json:"product_uom_qty" xmlrpc:"product_uom_qty"`
	PriceUnit float64 `json:"price_unit" xmlrpc:"price_unit"`

	Product ProductProduct `gorm:"foreignKey:ProductID" json:"product"`
}

func (SaleOrderLine) TableName() string { return "sale_order_line" }

// PurchaseOrder mirrors 'purchase.order'
type PurchaseOrder struct {
	ID          int64      `gorm:"primaryKey;autoIncrement:false" json:"id" xmlrpc:"id"`
	Name        string     `gorm:"index" json:"name" xmlrpc:"name"` // P00017
	CompanyID   int64      `gorm:"index" json:"company_id" xmlrpc:"company_id"`
	State       string     `json:"state" xmlrpc:"state"`
	PartnerID   int64      `json:"partner_id" xmlrpc:"partner_id"` // vendor
	DateApprove *time.Time `json:"date_approve" xmlrpc:"date_approve"`
	DestUsage   string     `json:"dest_address_usage" xmlrpc:"default_location_dest_id_usage"` // e.g. "customer" for dropship
	LastSyncOn  *time.Time `json:"last_sync_on" xmlrpc:"last_sync_on"`
	WriteDate   time.Time  `json:"write_date" xmlrpc:"write_date"`

	// Relations
	Partner *ResPartner         `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	Lines   []PurchaseOrderLine `gorm:"foreignKey:OrderID" json:"lines,omitempty"`
}

func (PurchaseOrder) TableName() string { return "purchase_order" }

// PurchaseOrderLine mirrors 'purchase.order.line'
type PurchaseOrderLine struct {
	ID        int64   `gorm:"primaryKey;autoIncrement:false" json:"id" xmlrpc:"id"`
	OrderID   int64   `gorm:"index" json:"order_id" xmlrpc:"order_id"`
	ProductID int64   `json:"product_id" xmlrpc:"product_id"`
	Quantity  float64 `json:"product_qty" xmlrpc:"product_qty"`
	PriceUnit float64 `json:"price_unit" xmlrpc:"price_unit"`

	Product ProductProduct `gorm:"foreignKey:ProductID" json:"product"`
}

func (PurchaseOrderLine) TableName() string { return "purchase_order_line" }
