package builder

import (
	"strconv"
	"strings"

	"github.com/xelth-com/ongoingwms/internal/models"
	"github.com/xelth-com/ongoingwms/internal/wms"
)

// DefaultVatPercent is the VAT code looked up for every outbound line.
const DefaultVatPercent = "25"

// Line is one outbound line. Number points at the record field that stores
// the remote line number, so an assigned number lands on the record itself.
type Line struct {
	ProductID   int64
	ProductCode string
	Quantity    float64
	Number      *int
}

// PickingLines collects the open lines of a picking: move lines when a move
// has them, the move itself otherwise.
func PickingLines(p *models.StockPicking) []*Line {
	var lines []*Line
	for _, m := range p.OpenMoves() {
		if len(m.MoveLines) == 0 {
			lines = append(lines, &Line{
				ProductID:   m.ProductID,
				ProductCode: m.Product.DefaultCode,
				Quantity:    m.ProductQty,
				Number:      &m.RemoteLineNumber,
			})
			continue
		}
		for j := range m.MoveLines {
			ml := &m.MoveLines[j]
			code := ml.Product.DefaultCode
			if code == "" {
				code = m.Product.DefaultCode
			}
			lines = append(lines, &Line{
				ProductID:   ml.ProductID,
				ProductCode: code,
				Quantity:    ml.ReservedQty,
				Number:      &ml.RemoteLineNumber,
			})
		}
	}
	return lines
}

// checkCodes fails on the first line without a product code.
func checkCodes(lines []*Line) error {
	for _, l := range lines {
		if strings.TrimSpace(l.ProductCode) == "" {
			return wms.Validationf(wms.ErrMissingProductCode, "product %d", l.ProductID)
		}
	}
	return nil
}

// AssignLineNumbers gives every line without a number the next value of next.
// Lines that already carry a number keep it.
func AssignLineNumbers(lines []*Line, next func() int) {
	for _, l := range lines {
		if l.Number == nil {
			n := 0
			l.Number = &n
		}
		if *l.Number == 0 {
			*l.Number = next()
		}
	}
}

// OrderLines validates codes, assigns missing line numbers and merges lines of
// the same product into one remote line carrying the summed quantity and the
// number of the first line seen.
func OrderLines(lines []*Line, next func() int) ([]wms.CustomerOrderLine, error) {
	if err := checkCodes(lines); err != nil {
		return nil, err
	}
	AssignLineNumbers(lines, next)

	var out []wms.CustomerOrderLine
	index := map[int64]int{}
	for _, l := range lines {
		if i, ok := index[l.ProductID]; ok {
			out[i].NumberOfItems += l.Quantity
			continue
		}
		index[l.ProductID] = len(out)
		out = append(out, wms.CustomerOrderLine{
			OrderLineIdentification: wms.IdentifyByExternalOrderLineCode,
			ArticleIdentification:   wms.IdentifyByArticleNumber,
			ExternalOrderLineCode:   strconv.Itoa(*l.Number),
			ArticleNumber:           l.ProductCode,
			NumberOfItems:           l.Quantity,
			VatCode:                 DefaultVatCode(),
		})
	}
	return out, nil
}

// DefaultVatCode looks up the standard VAT rate on the WMS side.
func DefaultVatCode() *wms.VatCode {
	return &wms.VatCode{
		VatCodeOperation:      wms.OperationFind,
		VatCodeIdentification: wms.IdentifyByVatPercent,
		VatPercent:            DefaultVatPercent,
	}
}

// SyncMoveNumbers copies the first move line number onto moves that have none,
// so returns can match on either record.
func SyncMoveNumbers(p *models.StockPicking) {
	for i := range p.Moves {
		m := &p.Moves[i]
		if m.RemoteLineNumber != 0 {
			continue
		}
		for _, ml := range m.MoveLines {
			if ml.RemoteLineNumber != 0 {
				m.RemoteLineNumber = ml.RemoteLineNumber
				break
			}
		}
	}
}
