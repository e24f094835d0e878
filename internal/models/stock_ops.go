package models

import (
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
)

// ErrNothingToValidate is returned when a picking has no open move left.
var ErrNothingToValidate = errors.New("nothing to validate")

// Validate closes the picking when every open move is complete. When nothing
// has been processed yet, the full demand is taken as done. backorder is true
// when some move is short; the picking is then left untouched so the caller can
// decide with SplitBackorder.
func (p *StockPicking) Validate() (backorder bool, err error) {
	open := p.OpenMoves()
	if len(open) == 0 {
		return false, fmt.Errorf("%s: %w", p.Name, ErrNothingToValidate)
	}

	processed := false
	for _, m := range open {
		if m.QuantityDone > 0 {
			processed = true
			break
		}
	}
	if !processed {
		for _, m := range open {
			m.QuantityDone = m.ProductQty
		}
	}

	for _, m := range open {
		if m.QuantityDone < m.ProductQty {
			return true, nil
		}
	}
	p.markDone()
	return false, nil
}

// markDone closes the picking. Moves with nothing done are cancelled.
func (p *StockPicking) markDone() {
	for _, m := range p.OpenMoves() {
		if m.QuantityDone <= 0 {
			m.State = StateCancel
			continue
		}
		m.State = StateDone
	}
	p.State = StateDone
}

// SplitBackorder moves the remaining quantities of short moves into a new
// picking and closes p. The returned picking is not persisted.
func (p *StockPicking) SplitBackorder() (*StockPicking, error) {
	backorder := &StockPicking{}
	if err := copier.Copy(backorder, p); err != nil {
		return nil, fmt.Errorf("failed to copy picking %s: %w", p.Name, err)
	}
	backorder.ID = 0
	backorder.OdooID = nil
	backorder.Moves = nil
	backorder.RemoteOrderID = p.RemoteOrderID
	backorder.BackorderOfID = &p.ID
	backorder.State = StateConfirmed
	backorder.CarrierTrackingRef = ""
	backorder.NumberOfPackages = 0
	backorder.ERPExportedAt = nil

	for _, m := range p.OpenMoves() {
		remaining := m.ProductQty - m.QuantityDone
		if remaining <= 0 {
			continue
		}
		var rest StockMove
		if err := copier.Copy(&rest, m); err != nil {
			return nil, fmt.Errorf("failed to copy move %d: %w", m.ID, err)
		}
		rest.ID = 0
		rest.OdooID = nil
		rest.PickingID = 0
		rest.MoveLines = nil
		rest.ProductQty = remaining
		rest.ReservedQty = 0
		rest.QuantityDone = 0
		rest.State = StateConfirmed
		backorder.Moves = append(backorder.Moves, rest)

		if m.QuantityDone > 0 {
			m.ProductQty = m.QuantityDone
		}
	}
	p.markDone()
	return backorder, nil
}

// ReturnQuantity is one move to send back with the quantity returned.
type ReturnQuantity struct {
	Move     *StockMove
	Quantity float64
}

// NewReturn builds the return container of origin: one move per returned
// move with source and destination swapped. It is not persisted.
func NewReturn(origin *StockPicking, lines []ReturnQuantity, cause string) (*StockPicking, error) {
	ret := &StockPicking{
		Name:           origin.Name + "/RET",
		CompanyID:      origin.CompanyID,
		Kind:           PickingKindIncoming,
		State:          StateAssigned,
		Origin:         "Return of " + origin.Name,
		ScheduledDate:  origin.ScheduledDate,
		PartnerID:      origin.PartnerID,
		SaleOrderID:    origin.SaleOrderID,
		LocationID:     origin.LocationDestID,
		LocationDestID: origin.LocationID,
		ReturnOfID:     &origin.ID,
		ReturnCause:    cause,
	}
	for _, l := range lines {
		var m StockMove
		if err := copier.Copy(&m, l.Move); err != nil {
			return nil, fmt.Errorf("failed to copy move %d: %w", l.Move.ID, err)
		}
		origMoveID := l.Move.ID
		m.ID = 0
		m.OdooID = nil
		m.PickingID = 0
		m.MoveLines = nil
		m.DestMoveID = nil
		m.RemoteLineNumber = 0
		m.OriginReturnedMoveID = &origMoveID
		m.LocationID, m.LocationDestID = l.Move.LocationDestID, l.Move.LocationID
		m.ProductQty = l.Quantity
		m.ReservedQty = l.Quantity
		m.QuantityDone = l.Quantity
		m.State = StateAssigned
		ret.Moves = append(ret.Moves, m)
	}
	return ret, nil
}
