package wmssync

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/xelth-com/ongoingwms/internal/models"
	"github.com/xelth-com/ongoingwms/internal/wms"
	"github.com/xelth-com/ongoingwms/internal/wms/interpret"
)

// PullInbound applies the goods received in the WMS since the company's
// inbound watermark. Every picking commits on its own together with the
// watermark advance, so a failing picking leaves the others applied.
func (s *Service) PullInbound(ctx context.Context, companyID int64) (*Report, error) {
	report := &Report{Workflow: WorkflowInbound}
	sess, err := s.open(ctx, s.store, companyID)
	if err != nil {
		return report, err
	}

	to := s.now()
	query := wms.InboundQuery{
		InDateTo:                     wms.NewDateTime(to),
		InboundTransactionTypesToGet: wms.TransactionReceivedOnInOrder,
	}
	if sess.company.LastInboundSync != nil {
		query.InDateFrom = wms.NewDateTime(*sess.company.LastInboundSync)
	}

	res := sess.gateway.GetInboundTransactionsByQuery(ctx, query)
	if !answered(res) {
		s.logger.Warn("inbound transactions not fetched",
			zap.Int64("company", companyID),
			zap.String("failure", res.Failure.String()),
			zap.String("error", res.ErrorMessage))
		report.fail("query: %s", res.ErrorMessage)
		return report, nil
	}

	receipts := interpret.AggregateInbound(res.Transactions)
	for _, orderID := range receipts.OrderIDs() {
		var applied bool
		err := s.store.Transaction(ctx, func(tx Store) error {
			var err error
			applied, err = s.applyReceipt(ctx, tx, sess.company, orderID, receipts[orderID])
			if err != nil || !applied {
				return err
			}
			return advance(ctx, tx, sess.company, &sess.company.LastInboundSync, to)
		})
		switch {
		case err != nil:
			s.logger.Error("failed to apply inbound order", zap.Int64("in_order_id", orderID), zap.Error(err))
			report.fail("in order %d: %v", orderID, err)
		case applied:
			report.Updated++
		default:
			s.logger.Debug("no open picking for in order", zap.Int64("in_order_id", orderID))
			report.Skipped++
		}
	}
	return report, nil
}

// applyReceipt raises done quantities on the picking waiting for the inbound
// order and validates it. applied is false when no open picking carries the id.
func (s *Service) applyReceipt(ctx context.Context, st Store, company *models.Company, inOrderID int64, received map[string]float64) (applied bool, err error) {
	candidates, err := st.InboundPickings(ctx, company.ID, strconv.FormatInt(inOrderID, 10))
	if err != nil {
		return false, fmt.Errorf("failed to find picking for in order %d: %w", inOrderID, err)
	}
	if len(candidates) == 0 {
		return false, nil
	}
	p := candidates[0]

	var moves []*models.StockMove
	for _, m := range p.OpenMoves() {
		if m.Product.Tracking != models.TrackingNone && m.Product.Tracking != "" {
			continue
		}
		if received[m.Product.DefaultCode] > 0 {
			moves = append(moves, m)
		}
	}
	// received quantities only ever raise what is recorded
	for _, m := range moves {
		if qty := received[m.Product.DefaultCode]; m.QuantityDone < qty {
			m.QuantityDone = qty
		}
	}
	if len(moves) > 0 {
		if err := st.SavePicking(ctx, p); err != nil {
			return false, fmt.Errorf("failed to save %s: %w", p.Name, err)
		}
		if err := s.validate(ctx, st, p); err != nil {
			return false, err
		}
		s.logger.Info("inbound applied", zap.String("picking", p.Name), zap.Int64("in_order_id", inOrderID))
	}
	return true, nil
}

// advance moves a company watermark forward and saves the company.
func advance(ctx context.Context, st Store, company *models.Company, mark **time.Time, to time.Time) error {
	if *mark != nil && !to.After(**mark) {
		return nil
	}
	prev := *mark
	t := to
	*mark = &t
	if err := st.SaveCompany(ctx, company); err != nil {
		*mark = prev
		return fmt.Errorf("failed to save watermark of company %d: %w", company.ID, err)
	}
	return nil
}

// answered reports whether a query reached the WMS and reported no error.
func answered(res wms.Result) bool {
	return res.Reached() && res.ErrorMessage == ""
}
