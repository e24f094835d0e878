package models

// DeliveryCarrier mirrors Odoo's delivery.carrier.
// ServiceCode is the transporter service code the WMS knows the carrier by.
type DeliveryCarrier struct {
	ID          int64  `gorm:"primaryKey;autoIncrement:false" json:"id" xmlrpc:"id"`
	Name        string `gorm:"not null" json:"name" xmlrpc:"name"`                           // e.g., "Bring Pakke til bedrift"
	ServiceCode string `gorm:"index" json:"service_code" xmlrpc:"fh_transport_service_code"` // e.g., "PNL359"
	Prepaid     bool   `gorm:"default:true" json:"prepaid"`
	Active      bool   `gorm:"default:true" json:"active" xmlrpc:"active"`
}

func (DeliveryCarrier) TableName() string { return "delivery_carrier" }
