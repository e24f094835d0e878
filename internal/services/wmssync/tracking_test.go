package wmssync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/ongoingwms/internal/models"
	"github.com/xelth-com/ongoingwms/internal/wms"
)

func sentOrder(id int64, labels ...string) wms.Order {
	o := wms.Order{Info: wms.OrderInfoResult{OrderID: id, OrderStatusText: wms.StatusShipped}}
	items := []wms.PalletItem{{LabelID: "PALLET", IsTransporterParcel: false}}
	for _, l := range labels {
		items = append(items, wms.PalletItem{LabelID: l, TrackingURL: "https://track.example/" + l, IsTransporterParcel: true})
	}
	o.PalletItems = &wms.PalletItems{Items: items}
	return o
}

func TestPullTrackingSetsReference(t *testing.T) {
	f := newFixture()
	f.markSent("555")
	f.gateway.results["GetOrdersByQuery"] = wms.Result{Orders: []wms.Order{sentOrder(555, "X123")}}

	report, err := f.svc.PullTracking(context.Background(), f.company.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)

	assert.Equal(t, "X123", f.delivery.CarrierTrackingRef)
	assert.Equal(t, 1, f.delivery.NumberOfPackages)
	assert.Equal(t, models.StateAssigned, f.delivery.State)

	require.Len(t, f.gateway.queries, 1)
	require.NotNil(t, f.gateway.queries[0].OrderIDs)
	assert.Equal(t, []int64{555}, f.gateway.queries[0].OrderIDs.Int)
}

func TestPullTrackingJoinsParcels(t *testing.T) {
	f := newFixture()
	f.markSent("555")
	f.gateway.results["GetOrdersByQuery"] = wms.Result{Orders: []wms.Order{sentOrder(555, "X1", "X2")}}

	_, err := f.svc.PullTracking(context.Background(), f.company.ID)
	require.NoError(t, err)
	assert.Equal(t, "X1,X2", f.delivery.CarrierTrackingRef)
	assert.Equal(t, "https://track.example/X1,https://track.example/X2", f.delivery.CarrierTrackingURL)
	assert.Equal(t, 2, f.delivery.NumberOfPackages)
}

func TestPullTrackingValidatesOnFirstReference(t *testing.T) {
	f := newFixture()
	f.company.ValidateDelivery = true
	f.markSent("555")
	f.gateway.results["GetOrdersByQuery"] = wms.Result{Orders: []wms.Order{sentOrder(555, "X123")}}

	_, err := f.svc.PullTracking(context.Background(), f.company.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateDone, f.delivery.State)
	assert.Equal(t, 2.0, f.delivery.Moves[0].QuantityDone)
}

func TestPullTrackingIgnoresUnsentOrders(t *testing.T) {
	f := newFixture()
	f.markSent("555")
	o := sentOrder(555, "X123")
	o.Info.OrderStatusText = "Plukket"
	f.gateway.results["GetOrdersByQuery"] = wms.Result{Orders: []wms.Order{o}}

	report, err := f.svc.PullTracking(context.Background(), f.company.ID)
	require.NoError(t, err)
	assert.Zero(t, report.Updated)
	assert.Empty(t, f.delivery.CarrierTrackingRef)
}

func TestPullTrackingWithoutSentPickingsMakesNoCall(t *testing.T) {
	f := newFixture()

	_, err := f.svc.PullTracking(context.Background(), f.company.ID)
	require.NoError(t, err)
	assert.Empty(t, f.gateway.calls)
}

// withSerialMove adds a serial-tracked move of 2 units and three known lots.
func (f *fixture) withSerialMove() models.ProductProduct {
	s := models.ProductProduct{ID: 3, DefaultCode: "S", Tracking: models.TrackingSerial}
	f.delivery.Moves = append(f.delivery.Moves, models.StockMove{
		ID: 103, PickingID: f.delivery.ID, CompanyID: 1, ProductID: 3, Product: s,
		ProductQty: 2, ReservedQty: 2, State: models.StateAssigned, RemoteLineNumber: 3,
	})
	for i, name := range []string{"SN1", "SN2", "SN3"} {
		f.store.lots = append(f.store.lots, models.StockLot{ID: int64(500 + i), Name: name, ProductID: 3, CompanyID: 1, Product: s})
	}
	return s
}

func pickedRows(o *wms.Order, rows ...wms.PickedArticleItem) {
	o.PickedArticleItems = &wms.PickedArticleItems{Items: rows}
}

func TestPullTrackingReconcilesSerials(t *testing.T) {
	f := newFixture()
	f.company.SyncSerialNumbers = true
	f.markSent("555")
	f.withSerialMove()

	o := sentOrder(555, "X123")
	pickedRows(&o,
		wms.PickedArticleItem{Article: wms.ArticleRef{ArticleNumber: "S"}, Serial: "SN1", NumberOfItems: 1},
		wms.PickedArticleItem{Article: wms.ArticleRef{ArticleNumber: "S"}, Serial: "SN2", NumberOfItems: 1},
		wms.PickedArticleItem{Article: wms.ArticleRef{ArticleNumber: "S"}, Serial: "SN3", NumberOfItems: 1},
		wms.PickedArticleItem{Article: wms.ArticleRef{ArticleNumber: "S"}, Serial: "SN9", NumberOfItems: 1},
		wms.PickedArticleItem{Article: wms.ArticleRef{ArticleNumber: "B"}, NumberOfItems: 1},
		wms.PickedArticleItem{Article: wms.ArticleRef{ArticleNumber: "A"}, NumberOfItems: 1},
		wms.PickedArticleItem{Article: wms.ArticleRef{ArticleNumber: "A"}, NumberOfItems: 1},
	)
	f.gateway.results["GetOrdersByQuery"] = wms.Result{Orders: []wms.Order{o}}

	_, err := f.svc.PullTracking(context.Background(), f.company.ID)
	require.NoError(t, err)

	serialMove := f.delivery.Moves[2]
	require.Len(t, serialMove.MoveLines, 2, "never more lots than the demand")
	assert.Equal(t, int64(500), *serialMove.MoveLines[0].LotID)
	assert.Equal(t, int64(501), *serialMove.MoveLines[1].LotID)
	assert.Equal(t, 2.0, serialMove.QuantityDone)

	assert.Equal(t, 2.0, f.delivery.Moves[0].QuantityDone)
	assert.Equal(t, 1.0, f.delivery.Moves[1].QuantityDone)

	notes := f.store.notes[f.delivery.ID]
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0], "SN9")
	assert.NotContains(t, notes[0], "SN3")

	// a second pull adds nothing
	_, err = f.svc.PullTracking(context.Background(), f.company.ID)
	require.NoError(t, err)
	assert.Len(t, f.delivery.Moves[2].MoveLines, 2)
}

func TestPullSerialsUsesGetOrder(t *testing.T) {
	f := newFixture()
	f.company.SyncSerialNumbers = true
	f.markSent("555")
	f.withSerialMove()

	o := wms.Order{Info: wms.OrderInfoResult{OrderID: 555}}
	pickedRows(&o, wms.PickedArticleItem{Article: wms.ArticleRef{ArticleNumber: "S"}, Serial: "SN2", NumberOfItems: 1})
	f.gateway.orderByID[555] = wms.Result{Order: &o}

	report, err := f.svc.PullSerials(context.Background(), f.company.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, []string{"GetOrder"}, f.gateway.calls)

	require.Len(t, f.delivery.Moves[2].MoveLines, 1)
	assert.Equal(t, int64(501), *f.delivery.Moves[2].MoveLines[0].LotID)
}

func TestPullSerialsDisabled(t *testing.T) {
	f := newFixture()
	f.markSent("555")

	_, err := f.svc.PullSerials(context.Background(), f.company.ID)
	require.NoError(t, err)
	assert.Empty(t, f.gateway.calls)
}

func TestRefreshRequiresRemoteOrder(t *testing.T) {
	f := newFixture()

	_, err := f.svc.RefreshTracking(context.Background(), f.delivery.ID)
	assert.True(t, errors.Is(err, wms.ErrNotShipped))
	_, err = f.svc.RefreshSerials(context.Background(), f.delivery.ID)
	assert.True(t, errors.Is(err, wms.ErrNotShipped))
	assert.Empty(t, f.gateway.calls)
}

func TestRefreshTrackingNotes(t *testing.T) {
	f := newFixture()
	f.markSent("555")
	f.gateway.results["GetOrdersByQuery"] = wms.Result{Orders: []wms.Order{sentOrder(555, "X123")}}

	res, err := f.svc.RefreshTracking(context.Background(), f.delivery.ID)
	require.NoError(t, err)
	assert.True(t, res.Reached())
	assert.Equal(t, "X123", f.delivery.CarrierTrackingRef)
	require.Len(t, f.store.notes[f.delivery.ID], 1)
	assert.Contains(t, f.store.notes[f.delivery.ID][0], "X123")
}
