package wmssync

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/xelth-com/ongoingwms/internal/models"
	"github.com/xelth-com/ongoingwms/internal/wms"
	"github.com/xelth-com/ongoingwms/internal/wms/interpret"
)

// remoteID parses the remote order id stored on a picking.
func remoteID(p *models.StockPicking) (int64, error) {
	if p.RemoteOrderID == "" {
		return 0, wms.Validationf(wms.ErrNotShipped, "picking %s", p.Name)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(p.RemoteOrderID), 10, 64)
	if err != nil {
		return 0, &wms.ValidationError{Reason: fmt.Sprintf("picking %s has invalid remote order id %q", p.Name, p.RemoteOrderID), Err: err}
	}
	return id, nil
}

// PullTracking fetches all sent deliveries of the company in one query and
// applies tracking references, parcel counts and, when enabled, serial numbers.
func (s *Service) PullTracking(ctx context.Context, companyID int64) (*Report, error) {
	report := &Report{Workflow: WorkflowTracking}
	err := s.store.Transaction(ctx, func(st Store) error {
		sess, err := s.open(ctx, st, companyID)
		if err != nil {
			return err
		}
		pickings, err := st.ShippedPickings(ctx, companyID)
		if err != nil {
			return fmt.Errorf("failed to list sent pickings: %w", err)
		}

		byID := map[int64][]*models.StockPicking{}
		var ids []int64
		for _, p := range pickings {
			id, err := remoteID(p)
			if err != nil {
				report.skip("%s: %v", p.Name, err)
				continue
			}
			if _, ok := byID[id]; !ok {
				ids = append(ids, id)
			}
			byID[id] = append(byID[id], p)
		}
		if len(ids) == 0 {
			return nil
		}

		res := sess.gateway.GetOrdersByQuery(ctx, wms.OrderIDs(ids...))
		if !answered(res) {
			s.logger.Warn("orders not fetched",
				zap.Int64("company", companyID),
				zap.String("failure", res.Failure.String()),
				zap.String("error", res.ErrorMessage))
			report.fail("query: %s", res.ErrorMessage)
			return nil
		}

		shipments := interpret.Shipments(res.Orders)
		for _, id := range ids {
			sh, ok := shipments[id]
			if !ok || !sh.Shipped() {
				continue
			}
			for _, p := range byID[id] {
				err := st.Transaction(ctx, func(tx Store) error {
					return s.applyShipment(ctx, tx, sess.company, p, sh, sess.company.SyncSerialNumbers)
				})
				switch {
				case err == nil:
					report.Updated++
				case isItemError(err):
					s.logger.Warn("shipment not applied", zap.String("picking", p.Name), zap.Error(err))
					report.skip("%s: %v", p.Name, err)
				default:
					return err
				}
			}
		}
		return nil
	})
	return report, err
}

// RefreshTracking pulls the tracking reference of one delivery on demand.
func (s *Service) RefreshTracking(ctx context.Context, pickingID int64) (wms.Result, error) {
	var res wms.Result
	err := s.store.Transaction(ctx, func(st Store) error {
		p, err := st.Picking(ctx, pickingID)
		if err != nil {
			return fmt.Errorf("failed to load picking %d: %w", pickingID, err)
		}
		id, err := remoteID(p)
		if err != nil {
			return err
		}
		sess, err := s.open(ctx, st, p.CompanyID)
		if err != nil {
			return err
		}

		res = sess.gateway.GetOrdersByQuery(ctx, wms.OrderIDs(id))
		if !answered(res) {
			return nil
		}
		if sh, ok := interpret.Shipments(res.Orders)[id]; ok && sh.Shipped() {
			if err := s.applyShipment(ctx, st, sess.company, p, sh, sess.company.SyncSerialNumbers); err != nil {
				return err
			}
		}
		s.note(ctx, st, p, "Get Tracking Number. Tracking Number: %s", p.CarrierTrackingRef)
		return nil
	})
	return res, err
}

// applyShipment records what the WMS reports for a sent order.
func (s *Service) applyShipment(ctx context.Context, st Store, company *models.Company, p *models.StockPicking, sh interpret.Shipment, serials bool) error {
	first := p.CarrierTrackingRef == ""
	if ref := sh.TrackingRef(); ref != "" {
		p.CarrierTrackingRef = ref
		p.CarrierTrackingURL = sh.TrackingURL()
		p.NumberOfPackages = sh.Parcels()
	}
	now := s.now()
	p.LastSyncOn = &now

	if serials && !p.IsClosed() {
		if err := s.reconcileSerials(ctx, st, company, p, sh.Picked); err != nil {
			return err
		}
	}
	if err := st.SavePicking(ctx, p); err != nil {
		return fmt.Errorf("failed to save %s: %w", p.Name, err)
	}

	if company.ValidateDelivery && first && p.CarrierTrackingRef != "" && !p.IsClosed() {
		if err := s.validate(ctx, st, p); err != nil {
			return err
		}
	}
	return nil
}

// PullSerials fetches the picked serial numbers of every sent delivery, one
// order at a time.
func (s *Service) PullSerials(ctx context.Context, companyID int64) (*Report, error) {
	report := &Report{Workflow: WorkflowSerials}
	err := s.store.Transaction(ctx, func(st Store) error {
		sess, err := s.open(ctx, st, companyID)
		if err != nil {
			return err
		}
		if !sess.company.SyncSerialNumbers {
			s.logger.Debug("serial sync disabled", zap.Int64("company", companyID))
			return nil
		}
		pickings, err := st.ShippedPickings(ctx, companyID)
		if err != nil {
			return fmt.Errorf("failed to list sent pickings: %w", err)
		}

		for _, p := range pickings {
			var res wms.Result
			err := st.Transaction(ctx, func(tx Store) error {
				var err error
				res, err = s.refreshSerials(ctx, tx, sess, p)
				return err
			})
			switch {
			case err == nil && answered(res):
				report.Updated++
			case err == nil:
				report.fail("%s: %s", p.Name, res.ErrorMessage)
			case isItemError(err):
				s.logger.Warn("serials not applied", zap.String("picking", p.Name), zap.Error(err))
				report.skip("%s: %v", p.Name, err)
			default:
				return err
			}
		}
		return nil
	})
	return report, err
}

// RefreshSerials pulls the picked serial numbers of one delivery on demand.
func (s *Service) RefreshSerials(ctx context.Context, pickingID int64) (wms.Result, error) {
	var res wms.Result
	err := s.store.Transaction(ctx, func(st Store) error {
		p, err := st.Picking(ctx, pickingID)
		if err != nil {
			return fmt.Errorf("failed to load picking %d: %w", pickingID, err)
		}
		if _, err := remoteID(p); err != nil {
			return err
		}
		sess, err := s.open(ctx, st, p.CompanyID)
		if err != nil {
			return err
		}
		res, err = s.refreshSerials(ctx, st, sess, p)
		return err
	})
	return res, err
}

func (s *Service) refreshSerials(ctx context.Context, st Store, sess *session, p *models.StockPicking) (wms.Result, error) {
	id, err := remoteID(p)
	if err != nil {
		return wms.Result{}, err
	}
	res := sess.gateway.GetOrder(ctx, id)
	if !answered(res) || res.Order == nil {
		s.logger.Info("order not synced with Ongoing",
			zap.String("picking", p.Name),
			zap.Int64("order_id", id),
			zap.String("error", res.ErrorMessage))
		return res, nil
	}
	picked := interpret.PickedArticles(*res.Order)
	if len(picked) == 0 || p.IsClosed() {
		return res, nil
	}
	if err := s.reconcileSerials(ctx, st, sess.company, p, picked); err != nil {
		return res, err
	}
	if err := st.SavePicking(ctx, p); err != nil {
		return res, fmt.Errorf("failed to save %s: %w", p.Name, err)
	}
	return res, nil
}

// reconcileSerials applies picked rows to the picking. Plain rows set the done
// quantity of the first open move with that product. Serial rows are matched
// to known lots and become move lines on serial-tracked moves, never more
// lots than the move demands. Unknown serials are noted on the picking.
func (s *Service) reconcileSerials(ctx context.Context, st Store, company *models.Company, p *models.StockPicking, picked []interpret.PickedSerial) error {
	serials, plain := interpret.SplitPicked(picked)

	for _, row := range plain {
		for _, m := range p.OpenMoves() {
			if m.Product.DefaultCode == row.ArticleNumber {
				m.QuantityDone = row.Quantity
				break
			}
		}
	}
	if len(serials) == 0 {
		return nil
	}

	var codes, names []string
	seenCode := map[string]bool{}
	for _, row := range picked {
		if !seenCode[row.ArticleNumber] {
			seenCode[row.ArticleNumber] = true
			codes = append(codes, row.ArticleNumber)
		}
	}
	for _, row := range serials {
		names = append(names, row.Serial)
	}

	lots, err := st.FindLots(ctx, company.ID, names, codes)
	if err != nil {
		return fmt.Errorf("failed to look up serial numbers: %w", err)
	}
	byName := map[string]models.StockLot{}
	for _, lot := range lots {
		if _, ok := byName[lot.Name]; !ok {
			byName[lot.Name] = lot
		}
	}

	var pool []models.StockLot
	var unknown []string
	pooled := map[int64]bool{}
	for _, name := range names {
		lot, ok := byName[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if !pooled[lot.ID] {
			pooled[lot.ID] = true
			pool = append(pool, lot)
		}
	}

	used := map[int64]bool{}
	for _, m := range p.OpenMoves() {
		if m.Product.Tracking != models.TrackingSerial {
			continue
		}
		added := false
		for _, lot := range pool {
			if used[lot.ID] || lot.ProductID != m.ProductID {
				continue
			}
			if m.HasLot(lot.ID) {
				used[lot.ID] = true
				continue
			}
			if float64(m.LotCount()) >= m.ProductQty {
				break
			}
			lotID := lot.ID
			m.MoveLines = append(m.MoveLines, models.StockMoveLine{
				MoveID:         m.ID,
				PickingID:      p.ID,
				CompanyID:      m.CompanyID,
				ProductID:      m.ProductID,
				LocationID:     m.LocationID,
				LocationDestID: m.LocationDestID,
				LotID:          &lotID,
				QtyDone:        1,
			})
			used[lot.ID] = true
			added = true
		}
		if added {
			var done float64
			for _, ml := range m.MoveLines {
				done += ml.QtyDone
			}
			m.QuantityDone = done
		}
	}

	if len(unknown) > 0 {
		s.note(ctx, st, p, "Serial numbers %s do not exist.", strings.Join(unknown, ", "))
	}
	return nil
}
