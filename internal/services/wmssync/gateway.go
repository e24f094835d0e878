package wmssync

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xelth-com/ongoingwms/internal/models"
	"github.com/xelth-com/ongoingwms/internal/wms"
)

// Gateway is the subset of *wms.Client the workflows call.
type Gateway interface {
	ProcessArticle(ctx context.Context, art *wms.ArticleDefinition) wms.Result
	ProcessInOrder(ctx context.Context, order *wms.InOrder) wms.Result
	ProcessOrder(ctx context.Context, order *wms.CustomerOrder) wms.Result
	GetInboundTransactionsByQuery(ctx context.Context, query wms.InboundQuery) wms.Result
	GetOrdersByQuery(ctx context.Context, filters wms.OrderFilters) wms.Result
	GetOrder(ctx context.Context, orderID int64) wms.Result
}

// GatewayFactory builds a gateway from the company settings read at the start
// of a workflow invocation.
type GatewayFactory func(c *models.Company) (Gateway, error)

// ClientOptions are the process-wide defaults for company gateways.
type ClientOptions struct {
	DefaultURL string
	Timeout    time.Duration
	// Envelopes returns the debug sink for a company. Nil disables envelope logging.
	Envelopes func(companyID int64) wms.EnvelopeLogger
}

// NewClientFactory returns a factory building *wms.Client gateways.
func NewClientFactory(opts ClientOptions, logger *zap.Logger) GatewayFactory {
	return func(c *models.Company) (Gateway, error) {
		url := c.WMSURL
		if url == "" {
			url = opts.DefaultURL
		}
		var envelopes wms.EnvelopeLogger
		if opts.Envelopes != nil {
			envelopes = opts.Envelopes(c.ID)
		}
		client, err := wms.NewClient(wms.Config{
			URL:            url,
			Username:       c.WMSUsername,
			Password:       c.WMSPassword,
			GoodsOwnerCode: c.WMSGoodsOwnerCode,
			Timeout:        opts.Timeout,
		}, envelopes, logger.With(zap.Int64("company", c.ID)))
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}
