package wmssync

import (
	"context"

	"github.com/xelth-com/ongoingwms/internal/models"
)

// Store is the local record store the workflows read and mutate.
// Implementations must load pickings with moves, move lines, products,
// partners, sale/purchase order and carrier.
type Store interface {
	// Transaction runs fn in a transaction. Nested calls open a savepoint.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	Company(ctx context.Context, id int64) (*models.Company, error)
	ActiveCompanies(ctx context.Context) ([]models.Company, error)
	SaveCompany(ctx context.Context, c *models.Company) error

	Picking(ctx context.Context, id int64) (*models.StockPicking, error)
	// PushablePickings lists open outgoing pickings with a sale order and no remote order id.
	PushablePickings(ctx context.Context, companyID int64) ([]*models.StockPicking, error)
	// ShippedPickings lists open outgoing pickings with a sale order and a remote order id.
	ShippedPickings(ctx context.Context, companyID int64) ([]*models.StockPicking, error)
	// InboundPickings lists open pickings carrying the remote inbound order id,
	// internal transfers first, then receipts.
	InboundPickings(ctx context.Context, companyID int64, remoteOrderID string) ([]*models.StockPicking, error)
	// ReturnCandidates lists outgoing pickings carrying the remote order id.
	ReturnCandidates(ctx context.Context, companyID int64, remoteOrderID string) ([]*models.StockPicking, error)
	// DestinationPickings lists the open pickings fed by the moves of p.
	DestinationPickings(ctx context.Context, p *models.StockPicking) ([]*models.StockPicking, error)
	// SavePicking creates or updates the picking with its moves and move lines.
	SavePicking(ctx context.Context, p *models.StockPicking) error
	AddNote(ctx context.Context, pickingID int64, body string) error

	// ValidatePicking closes p. It reports whether a backorder decision is needed.
	ValidatePicking(ctx context.Context, p *models.StockPicking) (backorder bool, err error)
	// ProcessBackorder splits the remaining quantities of p into a new picking.
	ProcessBackorder(ctx context.Context, p *models.StockPicking) (*models.StockPicking, error)
	HasReturn(ctx context.Context, pickingID int64) (bool, error)

	// FindLots returns the lots named by serials whose product code is one of codes.
	FindLots(ctx context.Context, companyID int64, serials, codes []string) ([]models.StockLot, error)

	SaleOrder(ctx context.Context, id int64) (*models.SaleOrder, error)
	PurchaseOrder(ctx context.Context, id int64) (*models.PurchaseOrder, error)
	SaveSaleOrder(ctx context.Context, o *models.SaleOrder) error
	SavePurchaseOrder(ctx context.Context, o *models.PurchaseOrder) error
	ProductSuppliers(ctx context.Context, productID int64) ([]models.ProductSupplier, error)

	Ledger
	SaveSyncHistory(ctx context.Context, h *models.SyncHistory) error
}

// Ledger remembers which returned lines were applied.
type Ledger interface {
	// ProcessedLines returns the subset of lineNos already recorded for the picking.
	ProcessedLines(ctx context.Context, pickingID int64, lineNos []int) ([]int, error)
	// RecordProcessedLine fails when the pair is already recorded.
	RecordProcessedLine(ctx context.Context, pickingID int64, lineNo int) error
}
