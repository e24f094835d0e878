package interpret

import (
	"strconv"
	"strings"

	"github.com/xelth-com/ongoingwms/internal/wms"
)

// ReturnLine is one returned order line matched back to its local line number.
type ReturnLine struct {
	RemoteOrderID     int64
	ArticleNumber     string
	LineNumber        int
	Quantity          float64
	OrderLineSystemID int64
	Cause             string
}

// SkippedLine is a returned line that could not be used.
type SkippedLine struct {
	RemoteOrderID     int64
	OrderLineSystemID int64
	ExternalCode      string
	Reason            string
}

// falsy external line codes. Older ERP versions sent the literal "False".
func falsy(code string) bool {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "", "false", "none", "null", "0":
		return true
	}
	return false
}

// ReturnLines extracts the returned lines of every order that has order lines.
// Lines with a falsy external code or nothing returned are skipped.
func ReturnLines(orders []wms.Order) ([]ReturnLine, []SkippedLine) {
	var lines []ReturnLine
	var skipped []SkippedLine
	for _, o := range orders {
		if o.OrderLines == nil || len(o.OrderLines.Items) == 0 {
			continue
		}
		causes, returned := returnCauses(o)

		for _, l := range o.OrderLines.Items {
			skip := SkippedLine{
				RemoteOrderID:     o.Info.OrderID,
				OrderLineSystemID: l.OrderLineSystemID,
				ExternalCode:      l.ExternalOrderLineCode,
			}
			qty := l.ReturnedNumberOfItems
			if qty == 0 {
				qty = returned[l.OrderLineSystemID]
			}
			if qty == 0 {
				continue
			}
			if falsy(l.ExternalOrderLineCode) {
				skip.Reason = "no external line code"
				skipped = append(skipped, skip)
				continue
			}
			number, err := strconv.Atoi(strings.TrimSpace(l.ExternalOrderLineCode))
			if err != nil || number <= 0 {
				skip.Reason = "external line code is not a line number"
				skipped = append(skipped, skip)
				continue
			}
			lines = append(lines, ReturnLine{
				RemoteOrderID:     o.Info.OrderID,
				ArticleNumber:     strings.TrimSpace(l.Article.ArticleNumber),
				LineNumber:        number,
				Quantity:          qty,
				OrderLineSystemID: l.OrderLineSystemID,
				Cause:             causes[l.OrderLineSystemID],
			})
		}
	}
	return lines, skipped
}

// returnCauses indexes cause and returned quantity by order line system id.
func returnCauses(o wms.Order) (map[int64]string, map[int64]float64) {
	causes := map[int64]string{}
	returned := map[int64]float64{}
	if o.ReturnedLines == nil {
		return causes, returned
	}
	for _, r := range o.ReturnedLines.Items {
		returned[r.OrderLineSystemID] += r.NumberOfItems
		if r.ReturnCause == nil {
			continue
		}
		cause := strings.TrimSpace(r.ReturnCause.Name)
		if cause == "" {
			cause = strings.TrimSpace(r.ReturnCause.Code)
		}
		if cause != "" {
			causes[r.OrderLineSystemID] = cause
		}
	}
	return causes, returned
}
