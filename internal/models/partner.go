package models

import "time"

// ResPartner represents a customer/supplier from Odoo (res.partner)
type ResPartner struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false" json:"id" xmlrpc:"id"`
	Name        string    `gorm:"index" json:"name" xmlrpc:"name"`
	Ref         string    `json:"ref" xmlrpc:"ref"` // customer number
	ParentID    *int64    `json:"parent_id" xmlrpc:"parent_id"`
	Street      string    `json:"street" xmlrpc:"street"`
	Street2     string    `json:"street2" xmlrpc:"street2"`
	Zip         string    `json:"zip" xmlrpc:"zip"`
	City        string    `json:"city" xmlrpc:"city"`
	StateCode   string    `json:"state_code" xmlrpc:"state_id"`       // Federal state/region code
	CountryCode string    `json:"country_code" xmlrpc:"country_code"` // ISO 3166 alpha-2
	Phone       string    `json:"phone" xmlrpc:"phone"`
	Mobile      string    `json:"mobile" xmlrpc:"mobile"`
	Email       string    `json:"email" xmlrpc:"email"`
	Comment     string    `gorm:"type:text" json:"comment" xmlrpc:"comment"`
	IsCompany   bool      `json:"is_company" xmlrpc:"is_company"`
	WriteDate   time.Time `json:"write_date" xmlrpc:"write_date"`

	Parent *ResPartner `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
}

func (ResPartner) TableName() string { return "res_partner" }
