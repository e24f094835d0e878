package wmssync

import (
	"context"
	"fmt"
	"strconv"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/xelth-com/ongoingwms/internal/models"
	"github.com/xelth-com/ongoingwms/internal/wms"
	"github.com/xelth-com/ongoingwms/internal/wms/builder"
)

// PushOutbound sends every fully reserved, unsent delivery of the company.
// Pickings that fail remotely stay unsent and are retried on the next run.
func (s *Service) PushOutbound(ctx context.Context, companyID int64) (*Report, error) {
	report := &Report{Workflow: WorkflowPush}
	err := s.store.Transaction(ctx, func(st Store) error {
		sess, err := s.open(ctx, st, companyID)
		if err != nil {
			return err
		}
		pickings, err := st.PushablePickings(ctx, companyID)
		if err != nil {
			return fmt.Errorf("failed to list pickings to push: %w", err)
		}

		for _, p := range pickings {
			if !p.FullyReserved() {
				continue
			}
			var res wms.Result
			err := st.Transaction(ctx, func(tx Store) error {
				var err error
				res, err = s.pushPicking(ctx, tx, sess, p)
				return err
			})
			switch {
			case err == nil && res.Success:
				report.Updated++
			case err == nil:
				report.fail("%s: %s", p.Name, res.ErrorMessage)
			case isItemError(err):
				s.logger.Warn("picking not pushed", zap.String("picking", p.Name), zap.Error(err))
				report.skip("%s: %v", p.Name, err)
			default:
				return err
			}
		}
		return nil
	})
	return report, err
}

// PushPicking sends one delivery on demand and surfaces every precondition
// failure. A remote failure is returned in the Result, not as an error.
func (s *Service) PushPicking(ctx context.Context, pickingID int64) (wms.Result, error) {
	var res wms.Result
	err := s.store.Transaction(ctx, func(st Store) error {
		p, err := st.Picking(ctx, pickingID)
		if err != nil {
			return fmt.Errorf("failed to load picking %d: %w", pickingID, err)
		}
		sess, err := s.open(ctx, st, p.CompanyID)
		if err != nil {
			return err
		}
		if p.RemoteOrderID == "" && !p.FullyReserved() {
			return wms.Validationf(wms.ErrNotReserved, "picking %s", p.Name)
		}
		res, err = s.pushPicking(ctx, st, sess, p)
		return err
	})
	return res, err
}

// pushPicking runs the unsent -> sent transition for one picking.
func (s *Service) pushPicking(ctx context.Context, st Store, sess *session, p *models.StockPicking) (wms.Result, error) {
	machine := newPushMachine(p.RemoteOrderID, func(_ context.Context, e *fsm.Event) {
		res := e.Args[0].(wms.Result)
		now := s.now()
		p.RemoteOrderID = strconv.FormatInt(res.IDs.OrderID, 10)
		p.LastSyncOn = &now
	})
	if machine.Cannot(eventSend) {
		return wms.Result{}, wms.Validationf(wms.ErrAlreadyShipped, "picking %s has remote order %s", p.Name, p.RemoteOrderID)
	}

	// 1. Build; new line numbers land on the picking
	order, err := builder.CustomerOrder(p, sess.company.UseShippingName, p.NextLineNumber)
	if err != nil {
		return wms.Result{}, err
	}
	if err := st.SavePicking(ctx, p); err != nil {
		return wms.Result{}, fmt.Errorf("failed to save line numbers of %s: %w", p.Name, err)
	}

	// 2. Send
	res := sess.gateway.ProcessOrder(ctx, order)
	if !res.Success || res.IDs.OrderID == 0 {
		if res.Success {
			res.Success = false
			res.ErrorMessage = "no order id returned"
		}
		s.logger.Warn("order push failed",
			zap.String("picking", p.Name),
			zap.String("failure", res.Failure.String()),
			zap.String("error", res.ErrorMessage))
		s.note(ctx, st, p, "Send to Ongoing failed: %s", res.ErrorMessage)
		return res, nil
	}

	// 3. Transition and persist the remote id
	if err := machine.Event(ctx, eventSend, res); err != nil {
		return res, fmt.Errorf("picking %s: %w", p.Name, err)
	}
	if err := st.SavePicking(ctx, p); err != nil {
		return res, fmt.Errorf("failed to save remote order id of %s: %w", p.Name, err)
	}
	s.note(ctx, st, p, "Sent to Ongoing. Order ID: %d. %s", res.IDs.OrderID, res.Message)
	s.logger.Info("order pushed", zap.String("picking", p.Name), zap.Int64("order_id", res.IDs.OrderID))
	return res, nil
}
