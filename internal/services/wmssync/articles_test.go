package wmssync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/ongoingwms/internal/models"
	"github.com/xelth-com/ongoingwms/internal/wms"
)

func TestSyncPurchaseArticlesAttachesSuppliers(t *testing.T) {
	f := newFixture()
	vendor := &models.ResPartner{ID: 30, Name: "Leverandør AS", City: "Bergen"}
	other := &models.ResPartner{ID: 31, Name: "Backup AS"}
	f.store.purchases[5] = &models.PurchaseOrder{
		ID: 5, Name: "P00005", CompanyID: 1, PartnerID: 30, Partner: vendor,
		Lines: []models.PurchaseOrderLine{{ID: 1, OrderID: 5, ProductID: 1, Product: f.productA, Quantity: 10, PriceUnit: 12.5}},
	}
	f.store.suppliers[1] = []models.ProductSupplier{
		{ID: 1, ProductID: 1, PartnerID: 30, Partner: vendor},
		{ID: 2, ProductID: 1, PartnerID: 31, Partner: other},
	}

	report, err := f.svc.SyncPurchaseArticles(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)

	require.Len(t, f.gateway.articles, 1)
	art := f.gateway.articles[0]
	assert.Equal(t, "A", art.ArticleNumber)
	assert.Equal(t, 12.5, art.PurchasePrice)
	require.NotNil(t, art.Supplier)
	assert.Equal(t, "Leverandør AS", art.Supplier.Name)
	require.NotNil(t, art.AlternateSuppliers)
	require.Len(t, art.AlternateSuppliers.Supplier, 1)
	assert.Equal(t, "Backup AS", art.AlternateSuppliers.Supplier[0].Name)

	require.NotNil(t, f.store.purchases[5].LastSyncOn)
}

func TestSyncSaleArticlesChecksCodesFirst(t *testing.T) {
	f := newFixture()
	nameless := models.ProductProduct{ID: 9, Name: "No code"}
	f.store.sales[42].Lines = []models.SaleOrderLine{
		{ID: 1, OrderID: 42, ProductID: 1, Product: f.productA, Quantity: 1},
		{ID: 2, OrderID: 42, ProductID: 9, Product: nameless, Quantity: 1},
	}

	_, err := f.svc.SyncSaleArticles(context.Background(), 42)
	assert.True(t, errors.Is(err, wms.ErrMissingProductCode))
	assert.Empty(t, f.gateway.calls)
}

func TestSyncSaleArticlesContinuesAfterFailure(t *testing.T) {
	f := newFixture()
	f.store.sales[42].Lines = []models.SaleOrderLine{
		{ID: 1, OrderID: 42, ProductID: 1, Product: f.productA, Quantity: 1},
		{ID: 2, OrderID: 42, ProductID: 2, Product: f.productB, Quantity: 1},
	}
	f.gateway.articleFail["A"] = true

	report, err := f.svc.SyncSaleArticles(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Errors)
	assert.Equal(t, 1, report.Updated)
	assert.Len(t, f.gateway.articles, 2)
	assert.Nil(t, f.store.sales[42].LastSyncOn)
	assert.Nil(t, f.gateway.articles[1].Supplier)
}

// withReceipt adds a purchase receipt feeding one internal transfer.
func (f *fixture) withReceipt() (*models.StockPicking, *models.StockPicking) {
	approved := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	vendor := &models.ResPartner{ID: 30, Name: "Leverandør AS"}
	purchase := &models.PurchaseOrder{ID: 5, Name: "P00005", CompanyID: 1, Partner: vendor, DateApprove: &approved}
	f.store.purchases[5] = purchase

	transfer := f.addTransfer(31, models.PickingKindInternal, "",
		models.StockMove{ID: 311, ProductID: 1, Product: f.productA, ProductQty: 4})
	transfer.Name = "WH/INT/00031"

	destMove := int64(311)
	purchaseID := int64(5)
	receipt := f.addTransfer(30, models.PickingKindIncoming, "",
		models.StockMove{ID: 301, ProductID: 1, Product: f.productA, ProductQty: 4, DestMoveID: &destMove})
	receipt.Name = "WH/IN/00030"
	receipt.Origin = "P00005"
	receipt.PurchaseID = &purchaseID
	receipt.Purchase = purchase
	return receipt, transfer
}

func TestSyncInOrderStoresIDOnTransfers(t *testing.T) {
	f := newFixture()
	receipt, transfer := f.withReceipt()
	f.gateway.results["ProcessInOrder"] = wms.Result{Success: true, IDs: wms.AssignedIDs{InOrderID: 300}}

	res, err := f.svc.SyncInOrder(context.Background(), receipt.ID)
	require.NoError(t, err)
	assert.True(t, res.Success)

	assert.Equal(t, "300", receipt.RemoteOrderID)
	assert.Equal(t, "300", transfer.RemoteOrderID)

	require.Len(t, f.gateway.inOrders, 1)
	info := f.gateway.inOrders[0].InOrderInfo
	assert.Equal(t, "P00005", info.GoodsOwnerOrderNumber)
	assert.Equal(t, "WH/INT/00031", info.ReferenceNumber)
	require.NotNil(t, info.OrderDate)
	assert.Equal(t, 1, info.OrderDate.Day())
}

func TestSyncInOrderSkipsDropship(t *testing.T) {
	f := newFixture()
	receipt, _ := f.withReceipt()
	receipt.Purchase.DestUsage = "customer"

	_, err := f.svc.SyncInOrder(context.Background(), receipt.ID)
	assert.True(t, errors.Is(err, ErrDropship))
	assert.Empty(t, f.gateway.calls)
}

func TestSyncInOrderRemoteFailure(t *testing.T) {
	f := newFixture()
	receipt, transfer := f.withReceipt()
	f.gateway.results["ProcessInOrder"] = wms.Result{Failure: wms.FailureRemoteFault, ErrorMessage: "Unknown article"}

	res, err := f.svc.SyncInOrder(context.Background(), receipt.ID)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, receipt.RemoteOrderID)
	assert.Empty(t, transfer.RemoteOrderID)
}

func TestRunRecordsHistory(t *testing.T) {
	f := newFixture()
	f.markSent("555")
	f.gateway.results["GetOrdersByQuery"] = wms.Result{Orders: []wms.Order{sentOrder(555, "X123")}}

	h, err := f.svc.Run(context.Background(), WorkflowTracking, f.company.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, h.RunID)
	assert.Equal(t, models.SyncStatusSuccess, h.Status)
	assert.Equal(t, 1, h.Updated)

	require.Len(t, f.store.history, 1)
	assert.Equal(t, models.SyncStatusSuccess, f.store.history[0].Status)
	assert.Equal(t, ProviderOngoing, f.store.history[0].Provider)
}

func TestRunRecordsFailure(t *testing.T) {
	f := newFixture()
	f.company.WMSUsername = ""

	h, err := f.svc.Run(context.Background(), WorkflowReturns, f.company.ID)
	require.Error(t, err)
	assert.True(t, wms.IsConfiguration(err))
	assert.Equal(t, models.SyncStatusError, h.Status)
	assert.Contains(t, h.ErrorDetail, "username")
}

func TestRunUnknownWorkflow(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Run(context.Background(), "inventory", f.company.ID)
	assert.True(t, errors.Is(err, ErrUnknownWorkflow))
}
