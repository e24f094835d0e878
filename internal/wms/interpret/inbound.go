package interpret

import (
	"sort"
	"strings"

	"github.com/xelth-com/ongoingwms/internal/wms"
)

// Receipts maps an inbound order id to the received quantity per article number.
type Receipts map[int64]map[string]float64

// AggregateInbound sums received quantities per order and article. Partial
// receipts of the same article add up.
func AggregateInbound(txs []wms.InboundTransaction) Receipts {
	out := Receipts{}
	for _, tx := range txs {
		code := strings.TrimSpace(tx.Article.ArticleNumber)
		if tx.InOrder.InOrderID == 0 || code == "" {
			continue
		}
		perArticle, ok := out[tx.InOrder.InOrderID]
		if !ok {
			perArticle = map[string]float64{}
			out[tx.InOrder.InOrderID] = perArticle
		}
		perArticle[code] += tx.NumberOfItems
	}
	return out
}

// OrderIDs returns the order ids in ascending order.
func (r Receipts) OrderIDs() []int64 {
	ids := make([]int64, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
