package wmssync

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/xelth-com/ongoingwms/internal/models"
	"github.com/xelth-com/ongoingwms/internal/wms"
	"github.com/xelth-com/ongoingwms/internal/wms/builder"
)

// dropshipUsage is the destination usage of purchases delivered straight to a customer.
const dropshipUsage = "customer"

// ErrDropship is returned for receipts of drop-shipped purchases, which never
// pass through the warehouse.
var ErrDropship = &wms.ValidationError{Reason: "drop-ship receipts are not sent to the WMS"}

// SyncInOrder announces an incoming picking to the WMS. The returned inbound
// order id is stored on the picking and on the internal transfers it feeds,
// which is where Inbound Pull later looks for it.
func (s *Service) SyncInOrder(ctx context.Context, pickingID int64) (wms.Result, error) {
	var res wms.Result
	err := s.store.Transaction(ctx, func(st Store) error {
		p, err := st.Picking(ctx, pickingID)
		if err != nil {
			return fmt.Errorf("failed to load picking %d: %w", pickingID, err)
		}
		if p.Kind != models.PickingKindIncoming {
			return &wms.ValidationError{Reason: fmt.Sprintf("picking %s is not a receipt", p.Name)}
		}
		if p.Purchase != nil && p.Purchase.DestUsage == dropshipUsage {
			return wms.Validationf(ErrDropship, "picking %s", p.Name)
		}
		if p.RemoteOrderID != "" {
			return wms.Validationf(wms.ErrAlreadyShipped, "picking %s has in order %s", p.Name, p.RemoteOrderID)
		}
		sess, err := s.open(ctx, st, p.CompanyID)
		if err != nil {
			return err
		}

		// 1. Build
		dests, err := st.DestinationPickings(ctx, p)
		if err != nil {
			return fmt.Errorf("failed to load transfers fed by %s: %w", p.Name, err)
		}
		var reference string
		if len(dests) == 1 {
			reference = dests[0].Name
		}
		var orderDate *time.Time
		var supplier *models.ResPartner
		if p.Purchase != nil {
			orderDate = p.Purchase.DateApprove
			supplier = p.Purchase.Partner
		}
		order, err := builder.InOrder(p, reference, orderDate, supplier)
		if err != nil {
			return err
		}

		// 2. Send
		res = sess.gateway.ProcessInOrder(ctx, order)
		if !res.Success || res.IDs.InOrderID == 0 {
			s.logger.Warn("in order push failed",
				zap.String("picking", p.Name),
				zap.String("failure", res.Failure.String()),
				zap.String("error", res.ErrorMessage))
			res.Success = false
			return nil
		}

		// 3. Store the in order id where Inbound Pull will find it
		id := strconv.FormatInt(res.IDs.InOrderID, 10)
		now := s.now()
		for _, target := range append([]*models.StockPicking{p}, dests...) {
			target.RemoteOrderID = id
			target.LastSyncOn = &now
			if err := st.SavePicking(ctx, target); err != nil {
				return fmt.Errorf("failed to save in order id on %s: %w", target.Name, err)
			}
			s.note(ctx, st, target, "Synced with Ongoing WMS. In Order ID: %s. %s", id, res.Message)
		}
		s.logger.Info("in order pushed", zap.String("picking", p.Name), zap.Int64("in_order_id", res.IDs.InOrderID))
		return nil
	})
	return res, err
}
