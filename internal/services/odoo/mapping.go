package odoo

import (
	"encoding/json"
	"reflect"
	"time"

	"gorm.io/datatypes"

	"github.com/xelth-com/ongoingwms/internal/models"
)

// fieldsOf lists the xmlrpc tags of a model struct, i.e. the Odoo fields it mirrors.
func fieldsOf(v interface{}) []string {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	var out []string
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("xmlrpc"); tag != "" && tag != "-" {
			out = append(out, tag)
		}
	}
	return out
}

func partnerFrom(r Record, stateCodes map[int64]string) models.ResPartner {
	return models.ResPartner{
		ID:          r.ID(),
		Name:        r.String("name"),
		Ref:         r.String("ref"),
		ParentID:    r.Ref("parent_id"),
		Street:      r.String("street"),
		Street2:     r.String("street2"),
		Zip:         r.String("zip"),
		City:        r.String("city"),
		StateCode:   stateCodes[r.Int64("state_id")],
		CountryCode: r.String("country_code"),
		Phone:       r.String("phone"),
		Mobile:      r.String("mobile"),
		Email:       r.String("email"),
		Comment:     r.String("comment"),
		IsCompany:   r.Bool("is_company"),
		WriteDate:   r.Time("write_date"),
	}
}

func carrierFrom(r Record) models.DeliveryCarrier {
	return models.DeliveryCarrier{
		ID:          r.ID(),
		Name:        r.String("name"),
		ServiceCode: r.String("fh_transport_service_code"),
		Prepaid:     true,
		Active:      r.Bool("active"),
	}
}

func productFrom(r Record, now time.Time) models.ProductProduct {
	raw, _ := json.Marshal(r)
	tracking := r.String("tracking")
	if tracking == "" {
		tracking = models.TrackingNone
	}
	return models.ProductProduct{
		ID:            r.ID(),
		DefaultCode:   r.String("default_code"),
		Barcode:       r.String("barcode"),
		Name:          r.String("name"),
		Active:        r.Bool("active"),
		Tracking:      tracking,
		UomName:       r.String("uom_name"),
		ListPrice:     r.Float("list_price"),
		StandardPrice: r.Float("standard_price"),
		WriteDate:     r.Time("write_date"),
		LastSyncedAt:  now,
		RawData:       datatypes.JSON(raw),
	}
}

// supplierFrom returns false for vendor rows bound to a template only.
func supplierFrom(r Record) (models.ProductSupplier, bool) {
	s := models.ProductSupplier{
		ID:        r.ID(),
		ProductID: r.Int64("product_id"),
		PartnerID: r.Int64("partner_id"),
		Sequence:  int(r.Int64("sequence")),
	}
	return s, s.ProductID != 0 && s.PartnerID != 0
}

func lotFrom(r Record) models.StockLot {
	return models.StockLot{
		ID:         r.ID(),
		Name:       r.String("name"),
		ProductID:  r.Int64("product_id"),
		CompanyID:  r.Int64("company_id"),
		Ref:        r.String("ref"),
		CreateDate: r.Time("create_date"),
	}
}

func saleFrom(r Record) models.SaleOrder {
	return models.SaleOrder{
		ID:                 r.ID(),
		Name:               r.String("name"),
		CompanyID:          r.Int64("company_id"),
		State:              r.String("state"),
		PartnerID:          r.Int64("partner_id"),
		PartnerShippingID:  r.Int64("partner_shipping_id"),
		OrderedByID:        r.Ref("flyt_so_ordered_by_contact"),
		ClientOrderRef:     r.String("client_order_ref"),
		Reservation:        r.String("flyt_so_reservation"),
		CarrierID:          r.Ref("carrier_id"),
		ShippingStreet:     r.String("flyt_so_shipping_street"),
		ShippingCareOf:     r.String("flyt_so_shipping_co_or_company_name"),
		ShippingPostalCode: r.String("flyt_so_shipping_postal_code"),
		ShippingCity:       r.String("flyt_so_shipping_city"),
		DateOrder:          r.Time("date_order"),
		LastSyncOn:         r.TimePtr("last_sync_on"),
		WriteDate:          r.Time("write_date"),
	}
}

func saleLineFrom(r Record) models.SaleOrderLine {
	return models.SaleOrderLine{
		ID:        r.ID(),
		OrderID:   r.Int64("order_id"),
		ProductID: r.Int64("product_id"),
		Quantity:  r.Float("product_uom_qty"),
		PriceUnit: r.Float("price_unit"),
	}
}

func purchaseFrom(r Record) models.PurchaseOrder {
	return models.PurchaseOrder{
		ID:          r.ID(),
		Name:        r.String("name"),
		CompanyID:   r.Int64("company_id"),
		State:       r.String("state"),
		PartnerID:   r.Int64("partner_id"),
		DateApprove: r.TimePtr("date_approve"),
		DestUsage:   r.String("default_location_dest_id_usage"),
		LastSyncOn:  r.TimePtr("last_sync_on"),
		WriteDate:   r.Time("write_date"),
	}
}

func purchaseLineFrom(r Record) models.PurchaseOrderLine {
	return models.PurchaseOrderLine{
		ID:        r.ID(),
		OrderID:   r.Int64("order_id"),
		ProductID: r.Int64("product_id"),
		Quantity:  r.Float("product_qty"),
		PriceUnit: r.Float("price_unit"),
	}
}

// pickingFrom maps a stock.picking row. The local id is resolved by the caller.
func pickingFrom(r Record) models.StockPicking {
	odooID := r.ID()
	return models.StockPicking{
		OdooID:             &odooID,
		Name:               r.String("name"),
		CompanyID:          r.Int64("company_id"),
		Kind:               r.String("picking_type_code"),
		State:              r.String("state"),
		Origin:             r.String("origin"),
		ScheduledDate:      r.Time("scheduled_date"),
		PartnerID:          r.Ref("partner_id"),
		SaleOrderID:        r.Ref("sale_id"),
		PurchaseID:         r.Ref("purchase_id"),
		CarrierID:          r.Ref("carrier_id"),
		LocationID:         r.Int64("location_id"),
		LocationDestID:     r.Int64("location_dest_id"),
		RemoteOrderID:      r.String("ongoing_order_id"),
		LastSyncOn:         r.TimePtr("last_sync_on"),
		CarrierTrackingRef: r.String("carrier_tracking_ref"),
		WriteDate:          r.Time("write_date"),
	}
}

// moveFrom maps a stock.move row; pickings translates Odoo picking ids to
// local ones. ok is false when the picking is not mirrored.
func moveFrom(r Record, pickings map[int64]int64) (m models.StockMove, ok bool) {
	pickingID, ok := pickings[r.Int64("picking_id")]
	if !ok {
		return m, false
	}
	odooID := r.ID()
	return models.StockMove{
		OdooID:           &odooID,
		PickingID:        pickingID,
		CompanyID:        r.Int64("company_id"),
		ProductID:        r.Int64("product_id"),
		ProductQty:       r.Float("product_uom_qty"),
		ReservedQty:      r.Float("reserved_availability"),
		QuantityDone:     r.Float("quantity_done"),
		State:            r.String("state"),
		LocationID:       r.Int64("location_id"),
		LocationDestID:   r.Int64("location_dest_id"),
		RemoteLineNumber: int(r.Int64("ongoing_line_number")),
	}, true
}

func moveLineFrom(r Record, pickings, moves map[int64]int64) (ml models.StockMoveLine, ok bool) {
	moveID, ok := moves[r.Int64("move_id")]
	if !ok {
		return ml, false
	}
	odooID := r.ID()
	return models.StockMoveLine{
		OdooID:           &odooID,
		MoveID:           moveID,
		PickingID:        pickings[r.Int64("picking_id")],
		CompanyID:        r.Int64("company_id"),
		ProductID:        r.Int64("product_id"),
		LocationID:       r.Int64("location_id"),
		LocationDestID:   r.Int64("location_dest_id"),
		LotID:            r.Ref("lot_id"),
		ReservedQty:      r.Float("reserved_qty"),
		QtyDone:          r.Float("qty_done"),
		RemoteLineNumber: int(r.Int64("ongoing_line_number")),
	}, true
}
