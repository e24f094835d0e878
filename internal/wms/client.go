package wms

import (
	"context"
	"encoding/xml"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hooklift/gowsdl/soap"
	"go.uber.org/zap"
)

// DefaultURL is the public Ongoing WSI endpoint.
const DefaultURL = "https://api.ongoingsystems.se/colliflow/service.asmx"

// DefaultTimeout bounds a single SOAP round trip.
const DefaultTimeout = 60 * time.Second

// Config holds the endpoint and credentials of one goods owner.
type Config struct {
	URL            string
	Username       string
	Password       string
	GoodsOwnerCode string
	Timeout        time.Duration
}

// Validate checks that every field a call needs is present.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.URL) == "":
		return &ConfigurationError{Field: "endpoint url"}
	case c.Username == "":
		return &ConfigurationError{Field: "username"}
	case c.Password == "":
		return &ConfigurationError{Field: "password"}
	case c.GoodsOwnerCode == "":
		return &ConfigurationError{Field: "goods owner code"}
	}
	return nil
}

// EnvelopeLogger receives every raw SOAP envelope. It is best effort and must
// not fail the call it observes.
type EnvelopeLogger interface {
	LogEnvelope(ctx context.Context, envelope, operation string)
}

// Client is the Remote Gateway for one goods owner. Build one per workflow
// invocation so credential changes take effect on the next run.
type Client struct {
	cfg    Config
	soap   *soap.Client
	logger *zap.Logger
}

// NewClient validates cfg and prepares a SOAP client. envelopes may be nil.
func NewClient(cfg Config, envelopes EnvelopeLogger, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: newEnvelopeTransport(http.DefaultTransport, envelopes, logger),
	}

	return &Client{
		cfg:    cfg,
		soap:   soap.NewClient(endpoint(cfg.URL), soap.WithHTTPClient(httpClient)),
		logger: logger,
	}, nil
}

// endpoint strips a trailing "?WSDL" so a WSDL address can be configured as-is.
func endpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if u, err := url.Parse(raw); err == nil && strings.EqualFold(u.RawQuery, "wsdl") {
		u.RawQuery = ""
		return u.String()
	}
	return raw
}

func (c *Client) credentials() Credentials {
	return Credentials{
		GoodsOwnerCode: c.cfg.GoodsOwnerCode,
		UserName:       c.cfg.Username,
		Password:       c.cfg.Password,
	}
}

// call invokes op and reports false with a populated Result when the call did
// not produce a decoded response.
func (c *Client) call(ctx context.Context, op string, req, resp interface{}) (Result, bool) {
	err := c.soap.CallContext(ctx, Namespace+"/"+op, req, resp)
	if err == nil {
		return Result{}, true
	}

	res := classify(op, err)
	c.logger.Warn("WMS call failed",
		zap.String("operation", op),
		zap.String("failure", res.Failure.String()),
		zap.Error(err))
	return res, false
}

func classify(op string, err error) Result {
	var fault *soap.SOAPFault
	if errors.As(err, &fault) {
		return faultResult(op, FailureRemoteFault, fault.Error())
	}
	// ASMX answers faults with HTTP 500; the soap client hands back the raw body.
	var httpErr *soap.HTTPError
	if errors.As(err, &httpErr) {
		if msg := faultString(httpErr.ResponseBody); msg != "" {
			return faultResult(op, FailureRemoteFault, msg)
		}
	}
	if isTransport(err) {
		return faultResult(op, FailureTransport, TransportErrorMessage)
	}
	return faultResult(op, FailureRemoteFault, err.Error())
}

// faultEnvelope matches SOAP 1.1 and 1.2 faults by local name.
type faultEnvelope struct {
	Body struct {
		Fault struct {
			String string `xml:"faultstring"`
			Reason struct {
				Text string `xml:"Text"`
			} `xml:"Reason"`
		} `xml:"Fault"`
	} `xml:"Body"`
}

// faultString extracts the fault message from a SOAP envelope, or "".
func faultString(body []byte) string {
	var env faultEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(env.Body.Fault.String); msg != "" {
		return msg
	}
	return strings.TrimSpace(env.Body.Fault.Reason.Text)
}

func isTransport(err error) bool {
	var urlErr *url.Error
	var netErr net.Error
	return errors.As(err, &urlErr) ||
		errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded)
}

// ProcessArticle creates or updates an article.
func (c *Client) ProcessArticle(ctx context.Context, art *ArticleDefinition) Result {
	const op = "ProcessArticle"
	resp := &processArticleResponse{}
	if res, ok := c.call(ctx, op, &processArticleRequest{Credentials: c.credentials(), Art: art}, resp); !ok {
		return res
	}
	return normalize(op, resp.Result, resp)
}

// ProcessInOrder creates or updates an inbound order.
func (c *Client) ProcessInOrder(ctx context.Context, order *InOrder) Result {
	const op = "ProcessInOrder"
	resp := &processInOrderResponse{}
	if res, ok := c.call(ctx, op, &processInOrderRequest{Credentials: c.credentials(), Order: order}, resp); !ok {
		return res
	}
	return normalize(op, resp.Result, resp)
}

// ProcessOrder creates or updates a customer order.
func (c *Client) ProcessOrder(ctx context.Context, order *CustomerOrder) Result {
	const op = "ProcessOrder"
	resp := &processOrderResponse{}
	if res, ok := c.call(ctx, op, &processOrderRequest{Credentials: c.credentials(), Order: order}, resp); !ok {
		return res
	}
	return normalize(op, resp.Result, resp)
}

// GetInboundTransactionsByQuery lists receipt transactions matching query.
func (c *Client) GetInboundTransactionsByQuery(ctx context.Context, query InboundQuery) Result {
	const op = "GetInboundTransactionsByQuery"
	resp := &getInboundTransactionsResponse{}
	if res, ok := c.call(ctx, op, &getInboundTransactionsRequest{Credentials: c.credentials(), Query: query}, resp); !ok {
		return res
	}
	if resp.Result == nil {
		return normalize(op, nil, resp)
	}
	res := normalize(op, &resp.Result.ResponseClass, resp)
	if resp.Result.Transactions != nil {
		res.Transactions = resp.Result.Transactions.Items
	}
	return res
}

// GetOrdersByQuery lists orders matching filters.
func (c *Client) GetOrdersByQuery(ctx context.Context, filters OrderFilters) Result {
	const op = "GetOrdersByQuery"
	resp := &getOrdersByQueryResponse{}
	if res, ok := c.call(ctx, op, &getOrdersByQueryRequest{Credentials: c.credentials(), Query: filters}, resp); !ok {
		return res
	}
	if resp.Result == nil {
		return normalize(op, nil, resp)
	}
	res := normalize(op, &resp.Result.ResponseClass, resp)
	res.Orders = resp.Result.Orders
	return res
}

// GetOrder fetches a single order by its WMS id.
func (c *Client) GetOrder(ctx context.Context, orderID int64) Result {
	const op = "GetOrder"
	resp := &getOrderResponse{}
	if res, ok := c.call(ctx, op, &getOrderRequest{Credentials: c.credentials(), OrderID: orderID}, resp); !ok {
		return res
	}
	if resp.Result == nil {
		return normalize(op, nil, resp)
	}
	res := normalize(op, &resp.Result.ResponseClass, resp)
	order := resp.Result.Order
	res.Order = &order
	return res
}

// OrderIDs builds the id filter for GetOrdersByQuery.
func OrderIDs(ids ...int64) OrderFilters {
	return OrderFilters{OrderIDs: &ArrayOfInt{Int: ids}}
}
