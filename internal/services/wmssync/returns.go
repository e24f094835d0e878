package wmssync

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/xelth-com/ongoingwms/internal/models"
	"github.com/xelth-com/ongoingwms/internal/wms"
	"github.com/xelth-com/ongoingwms/internal/wms/interpret"
)

// defaultReturnWindowDays is how far back the first return pull of a company looks.
const defaultReturnWindowDays = 30

// returnItem is a returned line resolved to the move it reverses.
type returnItem struct {
	line interpret.ReturnLine
	move *models.StockMove
}

// returnBatch gathers the returned lines of one picking.
type returnBatch struct {
	picking *models.StockPicking
	items   []*returnItem
}

// PullReturns turns lines returned in the WMS since the company's return
// watermark into return pickings. Every returned line is applied at most once.
func (s *Service) PullReturns(ctx context.Context, companyID int64) (*Report, error) {
	report := &Report{Workflow: WorkflowReturns}
	err := s.store.Transaction(ctx, func(st Store) error {
		sess, err := s.open(ctx, st, companyID)
		if err != nil {
			return err
		}

		to := s.now()
		from := to.AddDate(0, 0, -defaultReturnWindowDays)
		if sess.company.LastReturnSync != nil {
			from = *sess.company.LastReturnSync
		}
		res := sess.gateway.GetOrdersByQuery(ctx, wms.OrderFilters{LastReturnDateFrom: wms.NewDateTime(from)})
		if !answered(res) {
			s.logger.Warn("returned orders not fetched",
				zap.Int64("company", companyID),
				zap.String("failure", res.Failure.String()),
				zap.String("error", res.ErrorMessage))
			report.fail("query: %s", res.ErrorMessage)
			return nil
		}

		lines, skipped := interpret.ReturnLines(res.Orders)
		for _, sk := range skipped {
			s.logger.Info("return line skipped",
				zap.Int64("order_id", sk.RemoteOrderID),
				zap.Int64("order_line_system_id", sk.OrderLineSystemID),
				zap.String("external_code", sk.ExternalCode),
				zap.String("reason", sk.Reason))
			report.skip("order %d line %d: %s", sk.RemoteOrderID, sk.OrderLineSystemID, sk.Reason)
		}

		batches, err := s.resolveReturns(ctx, st, companyID, lines, report)
		if err != nil {
			return err
		}
		for _, b := range batches {
			err := st.Transaction(ctx, func(tx Store) error {
				return s.applyReturn(ctx, tx, b)
			})
			switch {
			case err == nil:
				report.Created++
			case isItemError(err):
				s.logger.Error("return not applied", zap.String("picking", b.picking.Name), zap.Error(err))
				report.fail("%s: %v", b.picking.Name, err)
			default:
				return err
			}
		}
		return advance(ctx, st, sess.company, &sess.company.LastReturnSync, to)
	})
	return report, err
}

// resolveReturns matches every returned line to a local move by its remote
// line number, on the move itself or on one of its move lines, and groups the
// result per picking. Unmatched lines are noted on the pickings of the order.
func (s *Service) resolveReturns(ctx context.Context, st Store, companyID int64, lines []interpret.ReturnLine, report *Report) ([]*returnBatch, error) {
	var batches []*returnBatch
	byPicking := map[int64]*returnBatch{}
	candidates := map[int64][]*models.StockPicking{}

	for _, line := range lines {
		pickings, ok := candidates[line.RemoteOrderID]
		if !ok {
			var err error
			pickings, err = st.ReturnCandidates(ctx, companyID, strconv.FormatInt(line.RemoteOrderID, 10))
			if err != nil {
				return nil, fmt.Errorf("failed to find pickings of order %d: %w", line.RemoteOrderID, err)
			}
			candidates[line.RemoteOrderID] = pickings
		}
		if len(pickings) == 0 {
			s.logger.Warn("no picking for returned order", zap.Int64("order_id", line.RemoteOrderID))
			report.skip("order %d: no local picking", line.RemoteOrderID)
			continue
		}

		p, move := matchReturnLine(pickings, line.LineNumber)
		if move == nil {
			for _, p := range pickings {
				s.note(ctx, st, p, "Returned line %d (article %s) from Ongoing has no matching move.", line.LineNumber, line.ArticleNumber)
			}
			report.skip("order %d line %d: no matching move", line.RemoteOrderID, line.LineNumber)
			continue
		}

		b, ok := byPicking[p.ID]
		if !ok {
			b = &returnBatch{picking: p}
			byPicking[p.ID] = b
			batches = append(batches, b)
		}
		b.add(line, move)
	}
	return batches, nil
}

// matchReturnLine finds the move carrying the line number. Done moves win over
// open ones so a backorder sharing the number is never reversed.
func matchReturnLine(pickings []*models.StockPicking, lineNo int) (*models.StockPicking, *models.StockMove) {
	var fallbackPicking *models.StockPicking
	var fallback *models.StockMove
	for _, p := range pickings {
		for i := range p.Moves {
			m := &p.Moves[i]
			if !carriesLine(m, lineNo) {
				continue
			}
			if m.State == models.StateDone {
				return p, m
			}
			if fallback == nil {
				fallbackPicking, fallback = p, m
			}
		}
	}
	return fallbackPicking, fallback
}

func carriesLine(m *models.StockMove, lineNo int) bool {
	if m.RemoteLineNumber == lineNo {
		return true
	}
	for _, ml := range m.MoveLines {
		if ml.RemoteLineNumber == lineNo {
			return true
		}
	}
	return false
}

// add merges lines pointing at the same remote line number.
func (b *returnBatch) add(line interpret.ReturnLine, move *models.StockMove) {
	for _, it := range b.items {
		if it.line.LineNumber == line.LineNumber {
			it.line.Quantity += line.Quantity
			if it.line.Cause == "" {
				it.line.Cause = line.Cause
			}
			return
		}
	}
	b.items = append(b.items, &returnItem{line: line, move: move})
}

func (b *returnBatch) lineNumbers() []int {
	nos := make([]int, 0, len(b.items))
	for _, it := range b.items {
		nos = append(nos, it.line.LineNumber)
	}
	return nos
}

// cause returns the single return cause of the batch.
func (b *returnBatch) cause() (string, error) {
	var cause string
	for _, it := range b.items {
		c := it.line.Cause
		if c == "" || c == cause {
			continue
		}
		if cause != "" {
			return "", wms.Validationf(wms.ErrAmbiguousReturnCause, "picking %s: %q and %q", b.picking.Name, cause, c)
		}
		cause = c
	}
	return cause, nil
}

// applyReturn creates and validates the return picking of one batch and
// records its lines in the ledger once validated.
func (s *Service) applyReturn(ctx context.Context, st Store, b *returnBatch) error {
	p := b.picking

	// 1. Refuse anything already applied
	done, err := st.ProcessedLines(ctx, p.ID, b.lineNumbers())
	if err != nil {
		return fmt.Errorf("failed to check ledger of %s: %w", p.Name, err)
	}
	if len(done) > 0 {
		return wms.Validationf(wms.ErrDuplicateReturn, "picking %s lines %v", p.Name, done)
	}
	exists, err := st.HasReturn(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("failed to check returns of %s: %w", p.Name, err)
	}
	if exists {
		return wms.Validationf(wms.ErrReturnExists, "picking %s", p.Name)
	}
	cause, err := b.cause()
	if err != nil {
		return err
	}

	// 2. Move every line to returned, re-checking the ledger line by line
	var quantities []models.ReturnQuantity
	for _, it := range b.items {
		again, err := st.ProcessedLines(ctx, p.ID, []int{it.line.LineNumber})
		if err != nil {
			return fmt.Errorf("failed to check ledger of %s: %w", p.Name, err)
		}
		machine := newReturnLineMachine(len(again) > 0)
		if machine.Cannot(eventReturn) {
			return wms.Validationf(wms.ErrDuplicateReturn, "picking %s line %d", p.Name, it.line.LineNumber)
		}
		if err := machine.Event(ctx, eventReturn); err != nil {
			return fmt.Errorf("picking %s line %d: %w", p.Name, it.line.LineNumber, err)
		}
		quantities = append(quantities, models.ReturnQuantity{Move: it.move, Quantity: it.line.Quantity})
	}

	// 3. Create the return container
	ret, err := models.NewReturn(p, quantities, cause)
	if err != nil {
		return err
	}
	if err := st.SavePicking(ctx, ret); err != nil {
		return fmt.Errorf("failed to create return of %s: %w", p.Name, err)
	}
	s.note(ctx, st, p, "Return %s created from Ongoing. Cause: %s", ret.Name, cause)

	// 4. Validate; a failure leaves the return open and unrecorded
	err = st.Transaction(ctx, func(tx Store) error {
		return s.validate(ctx, tx, ret)
	})
	if err != nil {
		s.logger.Error("failed to validate return", zap.String("picking", ret.Name), zap.Error(err))
		s.note(ctx, st, ret, "Validation failed: %v", err)
		return nil
	}

	for _, it := range b.items {
		if err := st.RecordProcessedLine(ctx, p.ID, it.line.LineNumber); err != nil {
			return fmt.Errorf("failed to record line %d of %s: %w", it.line.LineNumber, p.Name, err)
		}
	}
	s.logger.Info("return applied", zap.String("picking", p.Name), zap.String("return", ret.Name), zap.Int("lines", len(b.items)))
	return nil
}
