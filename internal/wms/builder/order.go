package builder

import (
	"fmt"

	"github.com/xelth-com/ongoingwms/internal/models"
	"github.com/xelth-com/ongoingwms/internal/wms"
)

// maxReferenceLength is the longest order remark the WMS accepts.
const maxReferenceLength = 35

// OrderNumber is the goods-owner order number of an outbound picking:
// "<sale order id>-<last segment of the picking name>".
func OrderNumber(p *models.StockPicking) string {
	var saleID int64
	if p.SaleOrderID != nil {
		saleID = *p.SaleOrderID
	}
	return fmt.Sprintf("%d-%s", saleID, p.NameSuffix())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// CustomerOrder builds the outbound order for a picking. The picking must have
// its sale order, partners, carrier and move products loaded. Missing line
// numbers are taken from next and written onto the picking's moves and move lines.
func CustomerOrder(p *models.StockPicking, useShippingName bool, next func() int) (*wms.CustomerOrder, error) {
	sale := p.SaleOrder
	if sale == nil {
		return nil, &wms.ValidationError{Reason: fmt.Sprintf("picking %s has no sale order", p.Name)}
	}

	partner := sale.ShippingPartner
	if partner == nil {
		partner = p.Partner
	}
	customer, err := Customer(CustomerInput{
		Order:           sale,
		ShippingPartner: partner,
		OrderedBy:       sale.OrderedBy,
		UseShippingName: useShippingName,
	})
	if err != nil {
		return nil, err
	}

	lines, err := OrderLines(PickingLines(p), next)
	if err != nil {
		return nil, err
	}
	SyncMoveNumbers(p)

	carrier := p.Carrier
	if carrier == nil {
		carrier = sale.Carrier
	}

	return &wms.CustomerOrder{
		OrderInfo: wms.OrderInfo{
			OrderIdentification:   wms.IdentifyByGoodsOwnerOrderNumber,
			OrderOperation:        wms.OperationCreateOrUpdate,
			GoodsOwnerOrderNumber: OrderNumber(p),
			DeliveryInstruction:   sale.ClientOrderRef,
			ConsigneeOrderNumber:  sale.ClientOrderRef,
			DeliveryDate:          wms.NewDateTime(p.ScheduledDate),
			OrderRemark:           truncate(sale.Reservation, maxReferenceLength),
			WayOfDeliveryType:     WayOfDelivery(carrier),
			TermsOfDeliveryType:   TermsOfDelivery(),
		},
		Customer:            customer,
		TransporterContract: TransporterContract(carrier),
		CustomerOrderLines:  wms.CustomerOrderLines{Line: lines},
	}, nil
}
