// Package interpret reads WMS responses into the shapes the sync workflows
// act on. Missing sub-structures are normal and yield empty results.
package interpret

import (
	"strings"

	"github.com/xelth-com/ongoingwms/internal/wms"
)

// PickedSerial is one picked article row, with or without a serial number.
type PickedSerial struct {
	ArticleNumber string
	Serial        string
	Quantity      float64
}

// Shipment is the state of one remote order.
type Shipment struct {
	OrderID         int64
	Status          string
	TrackingNumbers []string
	TrackingURLs    []string
	Picked          []PickedSerial
}

// Shipped reports whether the WMS has sent the order.
func (s Shipment) Shipped() bool {
	return s.Status == wms.StatusShipped
}

// TrackingRef joins all carrier parcel labels into one reference.
func (s Shipment) TrackingRef() string {
	return strings.Join(s.TrackingNumbers, ",")
}

// TrackingURL joins the carrier tracking links of all parcels.
func (s Shipment) TrackingURL() string {
	return strings.Join(s.TrackingURLs, ",")
}

// Parcels is the number of carrier parcels.
func (s Shipment) Parcels() int {
	return len(s.TrackingNumbers)
}

// ShipmentOf reads one order. Tracking and picked articles are only read for
// shipped orders.
func ShipmentOf(o wms.Order) Shipment {
	s := Shipment{
		OrderID: o.Info.OrderID,
		Status:  strings.TrimSpace(o.Info.OrderStatusText),
	}
	if !s.Shipped() {
		return s
	}

	if o.PalletItems != nil {
		for _, item := range o.PalletItems.Items {
			if !item.IsTransporterParcel || strings.TrimSpace(item.LabelID) == "" {
				continue
			}
			s.TrackingNumbers = append(s.TrackingNumbers, strings.TrimSpace(item.LabelID))
			if item.TrackingURL != "" {
				s.TrackingURLs = append(s.TrackingURLs, item.TrackingURL)
			}
		}
	}
	s.Picked = PickedArticles(o)
	return s
}

// PickedArticles lists the picked rows of an order.
func PickedArticles(o wms.Order) []PickedSerial {
	if o.PickedArticleItems == nil {
		return nil
	}
	var picked []PickedSerial
	for _, item := range o.PickedArticleItems.Items {
		code := strings.TrimSpace(item.Article.ArticleNumber)
		if code == "" {
			continue
		}
		picked = append(picked, PickedSerial{
			ArticleNumber: code,
			Serial:        strings.TrimSpace(item.Serial),
			Quantity:      item.NumberOfItems,
		})
	}
	return picked
}

// Shipments indexes a batch of orders by remote order id.
func Shipments(orders []wms.Order) map[int64]Shipment {
	out := make(map[int64]Shipment, len(orders))
	for _, o := range orders {
		if o.Info.OrderID == 0 {
			continue
		}
		out[o.Info.OrderID] = ShipmentOf(o)
	}
	return out
}

// SplitPicked separates serial rows from plain rows and sums the plain rows
// per article, keeping first-seen article order.
func SplitPicked(picked []PickedSerial) (serials []PickedSerial, plain []PickedSerial) {
	index := map[string]int{}
	for _, p := range picked {
		if p.Serial != "" {
			serials = append(serials, p)
			continue
		}
		if i, ok := index[p.ArticleNumber]; ok {
			plain[i].Quantity += p.Quantity
			continue
		}
		index[p.ArticleNumber] = len(plain)
		plain = append(plain, p)
	}
	return serials, plain
}
