package builder

import (
	"github.com/xelth-com/ongoingwms/internal/models"
	"github.com/xelth-com/ongoingwms/internal/wms"
)

// StandardDelivery names the WMS default delivery method and terms.
const StandardDelivery = "Standard"

// WayOfDelivery upserts the carrier's delivery method keyed by service code.
// Without a carrier code the WMS standard method is looked up by name.
func WayOfDelivery(c *models.DeliveryCarrier) *wms.WayOfDeliveryType {
	if c == nil || c.ServiceCode == "" {
		return &wms.WayOfDeliveryType{
			WayOfDeliveryTypeOperation:      wms.OperationFind,
			WayOfDeliveryTypeIdentification: wms.IdentifyByName,
			Name:                            StandardDelivery,
		}
	}
	return &wms.WayOfDeliveryType{
		WayOfDeliveryTypeOperation:      wms.OperationCreateOrUpdate,
		WayOfDeliveryTypeIdentification: wms.IdentifyByCode,
		Code:                            c.ServiceCode,
		Name:                            orDefault(c.ServiceCode, value(c.Name)),
	}
}

// TermsOfDelivery always refers to the WMS standard terms.
func TermsOfDelivery() *wms.TermsOfDeliveryType {
	return &wms.TermsOfDeliveryType{
		TermsOfDeliveryTypeOperation:      wms.OperationFind,
		TermsOfDeliveryTypeIdentification: wms.IdentifyByName,
		Name:                              StandardDelivery,
	}
}

// TransporterContract is nil when the carrier has no service code.
func TransporterContract(c *models.DeliveryCarrier) *wms.TransporterContract {
	if c == nil || c.ServiceCode == "" {
		return nil
	}
	payment := "Prepaid"
	if !c.Prepaid {
		payment = "Collect"
	}
	return &wms.TransporterContract{
		TransporterContractIdentification: wms.IdentifyByServiceCode,
		TransporterContractOperation:      wms.OperationFind,
		TransportPayment:                  payment,
		TransporterServiceCode:            c.ServiceCode,
	}
}
