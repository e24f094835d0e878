package wms

// TransportErrorMessage is the fixed message reported when the WMS cannot be reached.
const TransportErrorMessage = "WMS server not found"

// Failure classifies how a call ended.
type Failure int

const (
	FailureNone        Failure = iota
	FailureRemoteFault         // the WMS answered with a SOAP fault
	FailureTransport           // connection refused, DNS, timeout
)

func (f Failure) String() string {
	switch f {
	case FailureRemoteFault:
		return "remote_fault"
	case FailureTransport:
		return "transport"
	default:
		return "none"
	}
}

// AssignedIDs are the identifiers the WMS hands back. Zero means absent.
type AssignedIDs struct {
	OrderID      int64
	InOrderID    int64
	ArticleDefID int64
}

// Result is the normalized outcome of a Gateway call. Remote failures never
// surface as Go errors; callers inspect Success and ErrorMessage.
type Result struct {
	Operation             string
	Success               bool
	ErrorMessage          string
	Message               string
	GoodsOwnerOrderNumber string
	IDs                   AssignedIDs
	Failure               Failure

	// Query payloads
	Transactions []InboundTransaction
	Orders       []Order
	Order        *Order

	Raw interface{}
}

// Reached reports whether the WMS answered without a fault or transport error.
func (r Result) Reached() bool {
	return r.Failure == FailureNone
}

func faultResult(op string, failure Failure, msg string) Result {
	return Result{Operation: op, Failure: failure, ErrorMessage: msg}
}

// normalize maps the optional response block onto a Result with safe defaults.
func normalize(op string, rc *ResponseClass, raw interface{}) Result {
	res := Result{Operation: op, Raw: raw}
	if rc == nil {
		return res
	}
	if rc.Success != nil {
		res.Success = *rc.Success
	}
	if rc.ErrorMessage != nil {
		res.ErrorMessage = *rc.ErrorMessage
	}
	if rc.Message != nil {
		res.Message = *rc.Message
	}
	if rc.GoodsOwnerOrderNumber != nil {
		res.GoodsOwnerOrderNumber = *rc.GoodsOwnerOrderNumber
	}
	if rc.OrderID != nil {
		res.IDs.OrderID = *rc.OrderID
	}
	if rc.InOrderID != nil {
		res.IDs.InOrderID = *rc.InOrderID
	}
	if rc.ArticleDefID != nil {
		res.IDs.ArticleDefID = *rc.ArticleDefID
	}
	return res
}
