package models

import "time"

// Company mirrors 'res.company' and carries the WMS connection settings.
// Credentials are read fresh on every workflow invocation.
type Company struct {
	ID                int64      `gorm:"primaryKey;autoIncrement:false" json:"id" xmlrpc:"id"`
	Name              string     `json:"name" xmlrpc:"name"`
	WMSEnabled        bool       `gorm:"column:wms_enabled;index" json:"wms_enabled"`
	WMSURL            string     `gorm:"column:wms_url" json:"wms_url"`
	WMSUsername       string     `gorm:"column:wms_username" json:"wms_username"`
	WMSPassword       string     `gorm:"column:wms_password" json:"-"`
	WMSGoodsOwnerCode string     `gorm:"column:wms_goods_owner_code" json:"wms_goods_owner_code"`
	SyncSerialNumbers bool       `gorm:"column:sync_serial_numbers" json:"sync_serial_numbers"`
	UseShippingName   bool       `gorm:"column:use_shipping_name" json:"use_shipping_name"`
	ValidateDelivery  bool       `gorm:"column:validate_delivery" json:"validate_delivery"`
	LastInboundSync   *time.Time `gorm:"column:last_inbound_sync" json:"last_inbound_sync"`
	LastReturnSync    *time.Time `gorm:"column:last_return_sync" json:"last_return_sync"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (Company) TableName() string { return "res_company" }
