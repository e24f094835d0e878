package wmssync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xelth-com/ongoingwms/internal/models"
	"github.com/xelth-com/ongoingwms/internal/wms"
	"github.com/xelth-com/ongoingwms/internal/wms/builder"
)

// articleLine is one product to upsert with the price and supplier of its order line.
type articleLine struct {
	product  *models.ProductProduct
	price    float64
	supplier *models.ResPartner
}

// SyncSaleArticles upserts the products of a confirmed sale order.
func (s *Service) SyncSaleArticles(ctx context.Context, saleOrderID int64) (*Report, error) {
	report := &Report{Workflow: WorkflowArticles}
	err := s.store.Transaction(ctx, func(st Store) error {
		order, err := st.SaleOrder(ctx, saleOrderID)
		if err != nil {
			return fmt.Errorf("failed to load sale order %d: %w", saleOrderID, err)
		}
		sess, err := s.open(ctx, st, order.CompanyID)
		if err != nil {
			return err
		}

		lines := make([]articleLine, 0, len(order.Lines))
		for i := range order.Lines {
			l := &order.Lines[i]
			lines = append(lines, articleLine{product: &l.Product, price: l.PriceUnit})
		}
		if err := s.syncArticles(ctx, st, sess, lines, report); err != nil {
			return err
		}
		if report.Errors == 0 {
			now := s.now()
			order.LastSyncOn = &now
			return st.SaveSaleOrder(ctx, order)
		}
		return nil
	})
	return report, err
}

// SyncPurchaseArticles upserts the products of an approved purchase order with
// the vendor as primary supplier and the other product suppliers as alternates.
func (s *Service) SyncPurchaseArticles(ctx context.Context, purchaseID int64) (*Report, error) {
	report := &Report{Workflow: WorkflowArticles}
	err := s.store.Transaction(ctx, func(st Store) error {
		order, err := st.PurchaseOrder(ctx, purchaseID)
		if err != nil {
			return fmt.Errorf("failed to load purchase order %d: %w", purchaseID, err)
		}
		sess, err := s.open(ctx, st, order.CompanyID)
		if err != nil {
			return err
		}

		lines := make([]articleLine, 0, len(order.Lines))
		for i := range order.Lines {
			l := &order.Lines[i]
			lines = append(lines, articleLine{product: &l.Product, price: l.PriceUnit, supplier: order.Partner})
		}
		if err := s.syncArticles(ctx, st, sess, lines, report); err != nil {
			return err
		}
		if report.Errors == 0 {
			now := s.now()
			order.LastSyncOn = &now
			return st.SavePurchaseOrder(ctx, order)
		}
		return nil
	})
	return report, err
}

// syncArticles checks every product code first, then sends the products one
// by one. Remote failures are counted and do not stop the others.
func (s *Service) syncArticles(ctx context.Context, st Store, sess *session, lines []articleLine, report *Report) error {
	for _, l := range lines {
		if _, err := builder.Article(l.product, l.price, nil, nil); err != nil {
			return err
		}
	}

	for _, l := range lines {
		var alternates []*models.ResPartner
		if l.supplier != nil {
			suppliers, err := st.ProductSuppliers(ctx, l.product.ID)
			if err != nil {
				return fmt.Errorf("failed to load suppliers of product %d: %w", l.product.ID, err)
			}
			for i := range suppliers {
				if suppliers[i].Partner != nil {
					alternates = append(alternates, suppliers[i].Partner)
				}
			}
		}

		art, err := builder.Article(l.product, l.price, l.supplier, alternates)
		if err != nil {
			return err
		}
		res := sess.gateway.ProcessArticle(ctx, art)
		if !res.Success {
			s.logger.Error("failed to update article",
				zap.String("article", art.ArticleNumber),
				zap.String("failure", res.Failure.String()),
				zap.String("error", res.ErrorMessage))
			report.fail("%s: %s", art.ArticleNumber, joinMessages(res))
			continue
		}
		report.Updated++
	}
	return nil
}

// joinMessages combines the message and error message of a failed result.
func joinMessages(res wms.Result) string {
	switch {
	case res.Message == "":
		return res.ErrorMessage
	case res.ErrorMessage == "":
		return res.Message
	default:
		return res.Message + "\n" + res.ErrorMessage
	}
}
