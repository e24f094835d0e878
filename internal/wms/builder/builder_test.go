package builder

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/ongoingwms/internal/models"
	"github.com/xelth-com/ongoingwms/internal/wms"
)

func counter(start int) func() int {
	n := start
	return func() int {
		n++
		return n
	}
}

func TestOrderLinesMergesSameProduct(t *testing.T) {
	lines := []*Line{
		{ProductID: 1, ProductCode: "A", Quantity: 2},
		{ProductID: 2, ProductCode: "B", Quantity: 1},
		{ProductID: 1, ProductCode: "A", Quantity: 3},
	}

	out, err := OrderLines(lines, counter(0))
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "A", out[0].ArticleNumber)
	assert.Equal(t, 5.0, out[0].NumberOfItems)
	assert.Equal(t, "1", out[0].ExternalOrderLineCode)
	assert.Equal(t, "B", out[1].ArticleNumber)
	assert.Equal(t, 1.0, out[1].NumberOfItems)
	assert.Equal(t, DefaultVatPercent, out[0].VatCode.VatPercent)

	for _, l := range lines {
		assert.NotZero(t, *l.Number)
	}
}

func TestOrderLinesKeepsExistingNumbers(t *testing.T) {
	existing := 7
	lines := []*Line{
		{ProductID: 1, ProductCode: "A", Quantity: 1, Number: &existing},
		{ProductID: 2, ProductCode: "B", Quantity: 1},
	}

	_, err := OrderLines(lines, counter(7))
	require.NoError(t, err)
	assert.Equal(t, 7, *lines[0].Number)
	assert.Equal(t, 8, *lines[1].Number)

	// a resend hands out nothing new
	_, err = OrderLines(lines, func() int { t.Fatal("next called on resend"); return 0 })
	require.NoError(t, err)
	assert.Equal(t, 7, *lines[0].Number)
	assert.Equal(t, 8, *lines[1].Number)
}

func TestOrderLinesMissingCode(t *testing.T) {
	lines := []*Line{
		{ProductID: 1, ProductCode: "A", Quantity: 1},
		{ProductID: 2, ProductCode: "  ", Quantity: 1},
	}

	_, err := OrderLines(lines, counter(0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, wms.ErrMissingProductCode))
	assert.True(t, wms.IsValidation(err))
	assert.Nil(t, lines[0].Number, "numbers must not be assigned when the build fails")
}

func TestShippingAddressFallbacks(t *testing.T) {
	partner := &models.ResPartner{ID: 3, Name: "Kari", Street: "Storgata 1", Zip: "0155", City: "Oslo"}

	t.Run("empty street2 becomes a space", func(t *testing.T) {
		addr := ShippingAddress(nil, partner)
		assert.Equal(t, " ", addr.Street2)
		assert.Equal(t, "Storgata 1", addr.Street)
		assert.Equal(t, "NO", addr.Country)
	})

	t.Run("order overrides win", func(t *testing.T) {
		order := &models.SaleOrder{
			ShippingStreet:     "Kirkegata 5",
			ShippingCareOf:     "Acme AS",
			ShippingPostalCode: "5003",
			ShippingCity:       "Bergen",
		}
		addr := ShippingAddress(order, partner)
		assert.Equal(t, "Kirkegata 5", addr.Street)
		assert.Equal(t, "c/o Acme AS", addr.Street2)
		assert.Equal(t, "5003", addr.PostCode)
		assert.Equal(t, "Bergen", addr.City)
	})

	t.Run("nothing at all", func(t *testing.T) {
		addr := ShippingAddress(nil, &models.ResPartner{CountryCode: "SE"})
		assert.Equal(t, " ", addr.Street)
		assert.Equal(t, " ", addr.PostCode)
		assert.Equal(t, " ", addr.City)
		assert.Equal(t, "SE", addr.Country)
	})
}

func TestShippingNameChain(t *testing.T) {
	company := &models.ResPartner{ID: 1, Name: "Acme AS"}
	shipTo := &models.ResPartner{ID: 2, Name: "Lager Nord", Parent: company}
	contact := &models.ResPartner{ID: 4, Name: "Ola Nordmann", Parent: &models.ResPartner{Name: "Ola Holding"}}

	tests := []struct {
		name string
		in   CustomerInput
		want string
	}{
		{"ordered-by contact", CustomerInput{ShippingPartner: shipTo, OrderedBy: contact}, "Ola Nordmann"},
		{"contact parent when contact unnamed", CustomerInput{ShippingPartner: shipTo, OrderedBy: &models.ResPartner{Parent: company}}, "Acme AS"},
		{"shipping partner parent", CustomerInput{ShippingPartner: shipTo}, "Acme AS"},
		{"shipping partner", CustomerInput{ShippingPartner: &models.ResPartner{Name: "Kari"}}, "Kari"},
		{"company flag", CustomerInput{ShippingPartner: shipTo, OrderedBy: contact, UseShippingName: true}, "Lager Nord"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShippingName(tt.in))
		})
	}
}

func TestCustomerNotificationFlags(t *testing.T) {
	c, err := Customer(CustomerInput{ShippingPartner: &models.ResPartner{ID: 9, Name: "Kari", Mobile: "+4799999999"}})
	require.NoError(t, err)
	assert.True(t, c.NotifyBySMS)
	assert.False(t, c.NotifyByEmail)
	assert.False(t, c.NotifyByTelephone)
	assert.Equal(t, "9", c.ExternalCustomerCode)
	assert.Equal(t, "9", c.CustomerNumber)
	assert.Equal(t, wms.OperationCreateOrUpdate, c.CustomerOperation)

	_, err = Customer(CustomerInput{})
	assert.True(t, wms.IsValidation(err))
}

func TestWayOfDelivery(t *testing.T) {
	std := WayOfDelivery(nil)
	assert.Equal(t, wms.OperationFind, std.WayOfDeliveryTypeOperation)
	assert.Equal(t, StandardDelivery, std.Name)

	way := WayOfDelivery(&models.DeliveryCarrier{Name: "Bring", ServiceCode: "PNL359"})
	assert.Equal(t, wms.OperationCreateOrUpdate, way.WayOfDeliveryTypeOperation)
	assert.Equal(t, wms.IdentifyByCode, way.WayOfDeliveryTypeIdentification)
	assert.Equal(t, "PNL359", way.Code)
	assert.Equal(t, "Bring", way.Name)

	assert.Nil(t, TransporterContract(nil))
	tc := TransporterContract(&models.DeliveryCarrier{ServiceCode: "PNL359", Prepaid: true})
	require.NotNil(t, tc)
	assert.Equal(t, "Prepaid", tc.TransportPayment)
}

func outgoingPicking() *models.StockPicking {
	saleID := int64(42)
	partner := &models.ResPartner{ID: 5, Name: "Kari", Street: "Storgata 1", City: "Oslo", Zip: "0155"}
	return &models.StockPicking{
		ID:            1,
		Name:          "WH/OUT/00012",
		Kind:          models.PickingKindOutgoing,
		State:         models.StateAssigned,
		SaleOrderID:   &saleID,
		ScheduledDate: time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC),
		SaleOrder: &models.SaleOrder{
			ID:              42,
			ClientOrderRef:  "PO-778",
			Reservation:     "This reservation text is definitely longer than thirty-five characters",
			ShippingPartner: partner,
		},
		Moves: []models.StockMove{
			{ID: 10, ProductID: 1, ProductQty: 2, ReservedQty: 2, State: models.StateAssigned,
				Product: models.ProductProduct{ID: 1, DefaultCode: "A"}},
			{ID: 11, ProductID: 1, ProductQty: 1, ReservedQty: 1, State: models.StateAssigned,
				Product: models.ProductProduct{ID: 1, DefaultCode: "A"}},
			{ID: 12, ProductID: 2, ProductQty: 4, ReservedQty: 4, State: models.StateAssigned,
				Product: models.ProductProduct{ID: 2, DefaultCode: "B"},
				MoveLines: []models.StockMoveLine{
					{ID: 100, ProductID: 2, ReservedQty: 4, Product: models.ProductProduct{ID: 2, DefaultCode: "B"}},
				}},
		},
	}
}

func TestCustomerOrder(t *testing.T) {
	p := outgoingPicking()

	order, err := CustomerOrder(p, false, p.NextLineNumber)
	require.NoError(t, err)

	assert.Equal(t, "42-00012", order.OrderInfo.GoodsOwnerOrderNumber)
	assert.Equal(t, "PO-778", order.OrderInfo.ConsigneeOrderNumber)
	assert.Len(t, []rune(order.OrderInfo.OrderRemark), 35)
	assert.Equal(t, StandardDelivery, order.OrderInfo.WayOfDeliveryType.Name)
	assert.Nil(t, order.TransporterContract)
	assert.Equal(t, "Kari", order.Customer.Name)

	require.Len(t, order.CustomerOrderLines.Line, 2)
	assert.Equal(t, 3.0, order.CustomerOrderLines.Line[0].NumberOfItems)
	assert.Equal(t, 4.0, order.CustomerOrderLines.Line[1].NumberOfItems)

	assert.Equal(t, 1, p.Moves[0].RemoteLineNumber)
	assert.Equal(t, 2, p.Moves[1].RemoteLineNumber)
	assert.Equal(t, 3, p.Moves[2].MoveLines[0].RemoteLineNumber)
	assert.Equal(t, 3, p.Moves[2].RemoteLineNumber, "move inherits its move line number")
	assert.Equal(t, 3, p.LineSequence)
}

func TestCustomerOrderWithoutSale(t *testing.T) {
	p := outgoingPicking()
	p.SaleOrder = nil
	_, err := CustomerOrder(p, false, p.NextLineNumber)
	assert.True(t, wms.IsValidation(err))
}

func TestInOrder(t *testing.T) {
	approved := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	p := &models.StockPicking{
		Name:   "WH/IN/00003",
		Origin: "P00017",
		Moves: []models.StockMove{
			{ProductID: 1, ProductQty: 3, State: models.StateAssigned, Product: models.ProductProduct{DefaultCode: "A"}},
			{ProductID: 1, ProductQty: 4, State: models.StateAssigned, Product: models.ProductProduct{DefaultCode: "A"}},
			{ProductID: 2, ProductQty: 9, State: models.StateCancel, Product: models.ProductProduct{DefaultCode: "B"}},
		},
	}

	order, err := InOrder(p, "", &approved, nil)
	require.NoError(t, err)
	assert.Equal(t, "P00017", order.InOrderInfo.GoodsOwnerOrderNumber)
	assert.Equal(t, "WH/IN/00003", order.InOrderInfo.ReferenceNumber)
	require.NotNil(t, order.InOrderInfo.OrderDate)
	assert.Nil(t, order.InOrderSupplier)
	require.Len(t, order.InOrderLines.Line, 1)
	assert.Equal(t, 7.0, order.InOrderLines.Line[0].NumberOfItems)

	p.Moves[0].Product.DefaultCode = ""
	_, err = InOrder(p, "WH/INT/00001", nil, nil)
	assert.True(t, errors.Is(err, wms.ErrMissingProductCode))
}

func TestArticle(t *testing.T) {
	vendor := &models.ResPartner{ID: 20, Name: "Leverandør AS"}
	other := &models.ResPartner{ID: 21, Name: "Backup AS", CountryCode: "SE"}
	product := &models.ProductProduct{ID: 1, DefaultCode: "A-1", Name: "Widget", Barcode: "7070000000001", UomName: "Units"}

	art, err := Article(product, 12.5, vendor, []*models.ResPartner{vendor, other})
	require.NoError(t, err)
	assert.Equal(t, "A-1", art.ArticleNumber)
	assert.Equal(t, 12.5, art.PurchasePrice)
	require.NotNil(t, art.Supplier)
	assert.Equal(t, "20", art.Supplier.SupplierNumber)
	assert.Equal(t, "NO", art.Supplier.CountryCode)
	assert.Equal(t, " ", art.Supplier.Address)
	require.NotNil(t, art.AlternateSuppliers)
	require.Len(t, art.AlternateSuppliers.Supplier, 1)
	assert.Equal(t, "SE", art.AlternateSuppliers.Supplier[0].CountryCode)

	_, err = Article(&models.ProductProduct{ID: 2}, 0, nil, nil)
	assert.True(t, errors.Is(err, wms.ErrMissingProductCode))
}
