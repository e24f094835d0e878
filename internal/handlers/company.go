package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/xelth-com/ongoingwms/internal/models"
)

// CompanyWMSRequest updates the WMS settings of a company. Nil fields are left
// unchanged; an empty password keeps the stored one.
type CompanyWMSRequest struct {
	Enabled           *bool   `json:"wms_enabled"`
	URL               *string `json:"wms_url"`
	Username          *string `json:"wms_username"`
	Password          *string `json:"wms_password"`
	GoodsOwnerCode    *string `json:"wms_goods_owner_code"`
	SyncSerialNumbers *bool   `json:"sync_serial_numbers"`
	UseShippingName   *bool   `json:"use_shipping_name"`
	ValidateDelivery  *bool   `json:"validate_delivery"`
}

func (c *CompanyWMSRequest) apply(company *models.Company) {
	if c.Enabled != nil {
		company.WMSEnabled = *c.Enabled
	}
	if c.URL != nil {
		company.WMSURL = strings.TrimSpace(*c.URL)
	}
	if c.Username != nil {
		company.WMSUsername = strings.TrimSpace(*c.Username)
	}
	if c.Password != nil && *c.Password != "" {
		company.WMSPassword = *c.Password
	}
	if c.GoodsOwnerCode != nil {
		company.WMSGoodsOwnerCode = strings.TrimSpace(*c.GoodsOwnerCode)
	}
	if c.SyncSerialNumbers != nil {
		company.SyncSerialNumbers = *c.SyncSerialNumbers
	}
	if c.UseShippingName != nil {
		company.UseShippingName = *c.UseShippingName
	}
	if c.ValidateDelivery != nil {
		company.ValidateDelivery = *c.ValidateDelivery
	}
}

// companyWMS is the settings view; the password is reported as set or not.
func companyWMS(c *models.Company) map[string]interface{} {
	return map[string]interface{}{
		"company":  c,
		"password": c.WMSPassword != "",
	}
}

func (r *Router) getCompanyWMS(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid company id")
		return
	}
	company, err := r.records.Company(req.Context(), id)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, companyWMS(company))
}

func (r *Router) updateCompanyWMS(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid company id")
		return
	}
	var body CompanyWMSRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	company, err := r.records.Company(req.Context(), id)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	body.apply(company)
	if err := r.records.SaveCompany(req.Context(), company); err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, companyWMS(company))
}

func (r *Router) listRequestLogs(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid company id")
		return
	}
	logs, err := r.records.RequestLogs(req.Context(), id, queryInt(req, "limit", 50))
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(logs),
		"requests": logs,
	})
}
