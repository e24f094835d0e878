package builder

import (
	"strings"
	"time"

	"github.com/xelth-com/ongoingwms/internal/models"
	"github.com/xelth-com/ongoingwms/internal/wms"
)

// InOrder builds the inbound order for a receipt. reference defaults to the
// picking name. supplier is optional: the WMS accepts an inbound order without
// supplier details.
func InOrder(p *models.StockPicking, reference string, orderDate *time.Time, supplier *models.ResPartner) (*wms.InOrder, error) {
	var lines []wms.InOrderLine
	index := map[string]int{}
	for _, m := range p.OpenMoves() {
		code := strings.TrimSpace(m.Product.DefaultCode)
		if code == "" {
			return nil, wms.Validationf(wms.ErrMissingProductCode, "product %d on %s", m.ProductID, p.Name)
		}
		if i, ok := index[code]; ok {
			lines[i].NumberOfItems += m.ProductQty
			continue
		}
		index[code] = len(lines)
		lines = append(lines, wms.InOrderLine{
			OrderLineIdentification: wms.IdentifyByArticleNumber,
			ArticleIdentification:   wms.IdentifyByArticleNumber,
			NumberOfItems:           m.ProductQty,
			ArticleNumber:           code,
		})
	}
	if len(lines) == 0 {
		return nil, &wms.ValidationError{Reason: "receipt " + p.Name + " has no open lines"}
	}

	order := &wms.InOrder{
		InOrderInfo: wms.InOrderInfo{
			InOrderIdentification: wms.IdentifyByGoodsOwnerOrderNumber,
			InOrderOperation:      wms.OperationCreateOrUpdate,
			ReferenceNumber:       orDefault(p.Name, value(reference)),
			GoodsOwnerOrderNumber: orDefault(p.Name, value(p.Origin)),
			InDate:                wms.NewDateTime(p.ScheduledDate),
		},
		InOrderLines: wms.InOrderLines{Line: lines},
	}
	if orderDate != nil {
		order.InOrderInfo.OrderDate = wms.NewDateTime(*orderDate)
	}
	if supplier != nil {
		s := Supplier(supplier)
		order.InOrderSupplier = &s
	}
	return order, nil
}
