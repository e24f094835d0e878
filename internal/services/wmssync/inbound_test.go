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

func receiptTx(inOrderID int64, code string, qty float64) wms.InboundTransaction {
	return wms.InboundTransaction{
		InOrder:       wms.TransactionInOrder{InOrderID: inOrderID},
		Article:       wms.ArticleRef{ArticleNumber: code},
		NumberOfItems: qty,
	}
}

// addTransfer stores an open picking of kind waiting for the inbound order.
func (f *fixture) addTransfer(id int64, kind, remoteID string, moves ...models.StockMove) *models.StockPicking {
	p := &models.StockPicking{
		ID:            id,
		Name:          "WH/" + kind + "/" + remoteID,
		CompanyID:     f.company.ID,
		Kind:          kind,
		State:         models.StateAssigned,
		RemoteOrderID: remoteID,
		Moves:         moves,
	}
	for i := range p.Moves {
		p.Moves[i].PickingID = id
		p.Moves[i].State = models.StateAssigned
	}
	f.store.pickings = append(f.store.pickings, p)
	return p
}

func TestPullInboundNetsPartialReceipts(t *testing.T) {
	f := newFixture()
	receipt := f.addTransfer(20, models.PickingKindIncoming, "300",
		models.StockMove{ID: 201, ProductID: 1, Product: f.productA, ProductQty: 7})
	transfer := f.addTransfer(21, models.PickingKindInternal, "300",
		models.StockMove{ID: 211, ProductID: 1, Product: f.productA, ProductQty: 7},
		models.StockMove{ID: 212, ProductID: 2, Product: f.productB, ProductQty: 2})
	f.gateway.results["GetInboundTransactionsByQuery"] = wms.Result{Transactions: []wms.InboundTransaction{
		receiptTx(300, "A", 3),
		receiptTx(300, "A", 4),
		receiptTx(300, "B", 2),
	}}

	report, err := f.svc.PullInbound(context.Background(), f.company.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)

	assert.Equal(t, 7.0, transfer.Moves[0].QuantityDone)
	assert.Equal(t, 2.0, transfer.Moves[1].QuantityDone)
	assert.Equal(t, models.StateDone, transfer.State)
	assert.Equal(t, models.StateAssigned, receipt.State, "internal transfer is matched first")

	require.NotNil(t, f.company.LastInboundSync)
	assert.Equal(t, testNow, *f.company.LastInboundSync)

	require.Len(t, f.gateway.inbound, 1)
	q := f.gateway.inbound[0]
	assert.Nil(t, q.InDateFrom)
	assert.Equal(t, wms.TransactionReceivedOnInOrder, q.InboundTransactionTypesToGet)
}

func TestPullInboundNeverLowersQuantity(t *testing.T) {
	f := newFixture()
	last := testNow.Add(-time.Hour)
	f.company.LastInboundSync = &last
	transfer := f.addTransfer(21, models.PickingKindInternal, "300",
		models.StockMove{ID: 211, ProductID: 1, Product: f.productA, ProductQty: 10, QuantityDone: 9})
	f.gateway.results["GetInboundTransactionsByQuery"] = wms.Result{Transactions: []wms.InboundTransaction{
		receiptTx(300, "A", 3),
		receiptTx(300, "A", 4),
	}}

	_, err := f.svc.PullInbound(context.Background(), f.company.ID)
	require.NoError(t, err)

	assert.Equal(t, 9.0, transfer.Moves[0].QuantityDone)
	require.NotNil(t, f.gateway.inbound[0].InDateFrom)
	assert.Equal(t, last, f.gateway.inbound[0].InDateFrom.Time)
}

func TestPullInboundSplitsBackorder(t *testing.T) {
	f := newFixture()
	transfer := f.addTransfer(21, models.PickingKindInternal, "300",
		models.StockMove{ID: 211, ProductID: 1, Product: f.productA, ProductQty: 10})
	f.gateway.results["GetInboundTransactionsByQuery"] = wms.Result{Transactions: []wms.InboundTransaction{
		receiptTx(300, "A", 4),
	}}

	_, err := f.svc.PullInbound(context.Background(), f.company.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StateDone, transfer.State)
	assert.Equal(t, 4.0, transfer.Moves[0].ProductQty)

	var backorder *models.StockPicking
	for _, p := range f.store.pickings {
		if p.BackorderOfID != nil && *p.BackorderOfID == transfer.ID {
			backorder = p
		}
	}
	require.NotNil(t, backorder)
	require.Len(t, backorder.Moves, 1)
	assert.Equal(t, 6.0, backorder.Moves[0].ProductQty)
	assert.Equal(t, "300", backorder.RemoteOrderID)
	assert.False(t, backorder.IsClosed())
}

func TestPullInboundIgnoresTrackedProductsAndUnknownOrders(t *testing.T) {
	f := newFixture()
	serial := models.ProductProduct{ID: 3, DefaultCode: "S", Tracking: models.TrackingSerial}
	transfer := f.addTransfer(21, models.PickingKindInternal, "300",
		models.StockMove{ID: 211, ProductID: 3, Product: serial, ProductQty: 1})
	f.gateway.results["GetInboundTransactionsByQuery"] = wms.Result{Transactions: []wms.InboundTransaction{
		receiptTx(300, "S", 1),
		receiptTx(999, "A", 1),
	}}

	report, err := f.svc.PullInbound(context.Background(), f.company.ID)
	require.NoError(t, err)
	assert.Zero(t, transfer.Moves[0].QuantityDone)
	assert.Equal(t, models.StateAssigned, transfer.State)
	// the matched picking still advances the watermark
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, report.Skipped)
	require.NotNil(t, f.company.LastInboundSync)
}

func TestPullInboundRemoteFailureKeepsWatermark(t *testing.T) {
	f := newFixture()
	f.gateway.results["GetInboundTransactionsByQuery"] = wms.Result{Failure: wms.FailureTransport, ErrorMessage: wms.TransportErrorMessage}

	report, err := f.svc.PullInbound(context.Background(), f.company.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Errors)
	assert.Nil(t, f.company.LastInboundSync)
}

func TestAdvanceKeepsWatermarkWhenSaveFails(t *testing.T) {
	st := newMemStore()
	before := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	company := &models.Company{ID: 1, LastInboundSync: &before}
	to := before.Add(time.Hour)

	st.saveCompanyErr = errors.New("deadlock detected")
	err := advance(context.Background(), st, company, &company.LastInboundSync, to)
	require.Error(t, err)
	require.NotNil(t, company.LastInboundSync)
	assert.Equal(t, before, *company.LastInboundSync)

	st.saveCompanyErr = nil
	require.NoError(t, advance(context.Background(), st, company, &company.LastInboundSync, to))
	assert.Equal(t, to, *company.LastInboundSync)
	assert.Same(t, company, st.companies[1])
}
