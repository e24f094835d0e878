package wms

import (
	"encoding/xml"
	"fmt"
	"time"
)

// Namespace is the target namespace of the Ongoing WSI service.
const Namespace = "http://ongoingsystems.se/WSI"

// Operation and identification literals used across request payloads.
const (
	OperationCreateOrUpdate = "CreateOrUpdate"
	OperationFind           = "Find"

	IdentifyByArticleNumber         = "ArticleNumber"
	IdentifyByExternalOrderLineCode = "ExternalOrderLineCode"
	IdentifyByGoodsOwnerOrderNumber = "GoodsOwnerOrderNumber"
	IdentifyByExternalCustomerCode  = "ExternalCustomerCode"
	IdentifyBySupplierNumber        = "SupplierNumber"
	IdentifyByCode                  = "Code"
	IdentifyByName                  = "Name"
	IdentifyByServiceCode           = "ServiceCode"
	IdentifyByVatPercent            = "VatPercent"

	TransactionReceivedOnInOrder = "ReceivedOnInOrder"

	// StatusShipped is the WMS order status text for a shipped order.
	StatusShipped = "Sendt"
)

// Credentials are sent with every operation.
type Credentials struct {
	GoodsOwnerCode string `xml:"GoodsOwnerCode"`
	UserName       string `xml:"UserName"`
	Password       string `xml:"Password"`
}

// ResponseClass is the common result block of the Process* operations.
// Every field is optional on the wire.
type ResponseClass struct {
	Success               *bool   `xml:"Success"`
	ErrorMessage          *string `xml:"ErrorMessage"`
	Message               *string `xml:"Message"`
	GoodsOwnerOrderNumber *string `xml:"GoodsOwnerOrderNumber"`
	OrderID               *int64  `xml:"OrderId"`
	InOrderID             *int64  `xml:"InOrderId"`
	ArticleDefID          *int64  `xml:"ArticleDefId"`
}

// ---- ProcessArticle ----

type processArticleRequest struct {
	XMLName xml.Name `xml:"http://ongoingsystems.se/WSI ProcessArticle"`
	Credentials
	Art *ArticleDefinition `xml:"art"`
}

type processArticleResponse struct {
	XMLName xml.Name       `xml:"http://ongoingsystems.se/WSI ProcessArticleResponse"`
	Result  *ResponseClass `xml:"ProcessArticleResult"`
}

// ArticleDefinition upserts an article keyed by article number.
type ArticleDefinition struct {
	ArticleOperation      string              `xml:"ArticleOperation"`
	ArticleIdentification string              `xml:"ArticleIdentification"`
	ArticleNumber         string              `xml:"ArticleNumber"`
	ArticleName           string              `xml:"ArticleName,omitempty"`
	BarCode               string              `xml:"BarCode,omitempty"`
	PurchasePrice         float64             `xml:"PurchasePrice"`
	ArticleUnitCode       string              `xml:"ArticleUnitCode,omitempty"`
	Supplier              *Supplier           `xml:"SupplierInfo,omitempty"`
	AlternateSuppliers    *AlternateSuppliers `xml:"AlternateSuppliers,omitempty"`
}

// Supplier is a supplier block with its own address.
type Supplier struct {
	SupplierOperation      string `xml:"SupplierOperation"`
	SupplierIdentification string `xml:"SupplierIdentification"`
	SupplierNumber         string `xml:"SupplierNumber"`
	Name                   string `xml:"Name"`
	Address                string `xml:"Address"`
	Address2               string `xml:"Address2"`
	PostCode               string `xml:"PostCode"`
	City                   string `xml:"City"`
	CountryStateCode       string `xml:"CountryStateCode,omitempty"`
	CountryCode            string `xml:"CountryCode"`
	TelePhone              string `xml:"TelePhone,omitempty"`
	Email                  string `xml:"Email,omitempty"`
	MobilePhone            string `xml:"MobilePhone,omitempty"`
	Remark                 string `xml:"Remark,omitempty"`
}

type AlternateSuppliers struct {
	Supplier []Supplier `xml:"SupplierInfo"`
}

// ---- ProcessInOrder ----

type processInOrderRequest struct {
	XMLName xml.Name `xml:"http://ongoingsystems.se/WSI ProcessInOrder"`
	Credentials
	Order *InOrder `xml:"co"`
}

type processInOrderResponse struct {
	XMLName xml.Name       `xml:"http://ongoingsystems.se/WSI ProcessInOrderResponse"`
	Result  *ResponseClass `xml:"ProcessInOrderResult"`
}

// InOrder is an inbound (purchase receipt) order.
type InOrder struct {
	InOrderInfo     InOrderInfo  `xml:"InOrderInfo"`
	InOrderSupplier *Supplier    `xml:"InOrderSupplierInfo,omitempty"`
	InOrderLines    InOrderLines `xml:"InOrderLines"`
}

type InOrderInfo struct {
	InOrderIdentification string    `xml:"InOrderIdentification"`
	InOrderOperation      string    `xml:"InOrderOperation"`
	ReferenceNumber       string    `xml:"ReferenceNumber"`
	GoodsOwnerOrderNumber string    `xml:"GoodsOwnerOrderNumber"`
	OrderDate             *DateTime `xml:"OrderDate,omitempty"`
	InDate                *DateTime `xml:"InDate,omitempty"`
}

type InOrderLines struct {
	Line []InOrderLine `xml:"InOrderLine"`
}

type InOrderLine struct {
	OrderLineIdentification string  `xml:"OrderLineIdentification"`
	ArticleIdentification   string  `xml:"ArticleIdentification"`
	NumberOfItems           float64 `xml:"NumberOfItems"`
	ArticleNumber           string  `xml:"ArticleNumber"`
}

// ---- ProcessOrder ----

type processOrderRequest struct {
	XMLName xml.Name `xml:"http://ongoingsystems.se/WSI ProcessOrder"`
	Credentials
	Order *CustomerOrder `xml:"co"`
}

type processOrderResponse struct {
	XMLName xml.Name       `xml:"http://ongoingsystems.se/WSI ProcessOrderResponse"`
	Result  *ResponseClass `xml:"ProcessOrderResult"`
}

// CustomerOrder is the outbound order descriptor.
type CustomerOrder struct {
	OrderInfo           OrderInfo            `xml:"OrderInfo"`
	Customer            Customer             `xml:"Customer"`
	TransporterContract *TransporterContract `xml:"TransporterContract,omitempty"`
	CustomerOrderLines  CustomerOrderLines   `xml:"CustomerOrderLines"`
}

type OrderInfo struct {
	OrderIdentification   string               `xml:"OrderIdentification"`
	OrderOperation        string               `xml:"OrderOperation"`
	GoodsOwnerOrderNumber string               `xml:"GoodsOwnerOrderNumber"`
	DeliveryInstruction   string               `xml:"DeliveryInstruction,omitempty"`
	ConsigneeOrderNumber  string               `xml:"ConsigneeOrderNumber,omitempty"`
	DeliveryDate          *DateTime            `xml:"DeliveryDate,omitempty"`
	OrderRemark           string               `xml:"OrderRemark,omitempty"`
	WayOfDeliveryType     *WayOfDeliveryType   `xml:"WayOfDeliveryType,omitempty"`
	TermsOfDeliveryType   *TermsOfDeliveryType `xml:"TermsOfDeliveryType,omitempty"`
}

// WayOfDeliveryType is the remote delivery method.
type WayOfDeliveryType struct {
	WayOfDeliveryTypeOperation      string `xml:"WayOfDeliveryTypeOperation"`
	WayOfDeliveryTypeIdentification string `xml:"WayOfDeliveryTypeIdentification"`
	Code                            string `xml:"Code,omitempty"`
	Name                            string `xml:"Name"`
}

type TermsOfDeliveryType struct {
	TermsOfDeliveryTypeOperation      string `xml:"TermsOfDeliveryTypeOperation"`
	TermsOfDeliveryTypeIdentification string `xml:"TermsOfDeliveryTypeIdentification"`
	Name                              string `xml:"Name"`
}

type Customer struct {
	CustomerOperation      string `xml:"CustomerOperation"`
	CustomerIdentification string `xml:"CustomerIdentification"`
	ExternalCustomerCode   string `xml:"ExternalCustomerCode"`
	CustomerNumber         string `xml:"CustomerNumber"`
	Name                   string `xml:"Name"`
	Address                string `xml:"Address"`
	Address2               string `xml:"Address2"`
	Address3               string `xml:"Address3"`
	PostCode               string `xml:"PostCode"`
	City                   string `xml:"City"`
	TelePhone              string `xml:"TelePhone"`
	Remark                 string `xml:"Remark"`
	Email                  string `xml:"Email"`
	MobilePhone            string `xml:"MobilePhone"`
	CountryCode            string `xml:"CountryCode"`
	NotifyBySMS            bool   `xml:"NotifyBySMS"`
	NotifyByEmail          bool   `xml:"NotifyByEmail"`
	NotifyByTelephone      bool   `xml:"NotifyByTelephone"`
	IsVisible              bool   `xml:"IsVisible"`
}

type TransporterContract struct {
	TransporterContractIdentification string `xml:"TransporterContractIdentification"`
	TransporterContractOperation      string `xml:"TransporterContractOperation"`
	TransportPayment                  string `xml:"TransportPayment"`
	TransporterServiceCode            string `xml:"TransporterServiceCode"`
}

type CustomerOrderLines struct {
	Line []CustomerOrderLine `xml:"CustomerOrderLine"`
}

type CustomerOrderLine struct {
	OrderLineIdentification string   `xml:"OrderLineIdentification"`
	ArticleIdentification   string   `xml:"ArticleIdentification"`
	ExternalOrderLineCode   string   `xml:"ExternalOrderLineCode"`
	ArticleNumber           string   `xml:"ArticleNumber"`
	NumberOfItems           float64  `xml:"NumberOfItems"`
	VatCode                 *VatCode `xml:"VatCode,omitempty"`
}

type VatCode struct {
	VatCodeOperation      string `xml:"VatCodeOperation"`
	VatCodeIdentification string `xml:"VatCodeIdentification"`
	VatPercent            string `xml:"VatPercent"`
}

// ---- GetInboundTransactionsByQuery ----

type getInboundTransactionsRequest struct {
	XMLName xml.Name `xml:"http://ongoingsystems.se/WSI GetInboundTransactionsByQuery"`
	Credentials
	Query InboundQuery `xml:"Query"`
}

// InboundQuery selects inbound transactions received since InDateFrom.
type InboundQuery struct {
	InDateFrom                   *DateTime `xml:"InDateFrom,omitempty"`
	InDateTo                     *DateTime `xml:"InDateTo,omitempty"`
	InboundTransactionTypesToGet string    `xml:"InboundTransactionTypesToGet"`
}

type getInboundTransactionsResponse struct {
	XMLName xml.Name                   `xml:"http://ongoingsystems.se/WSI GetInboundTransactionsByQueryResponse"`
	Result  *inboundTransactionsResult `xml:"GetInboundTransactionsByQueryResult"`
}

type inboundTransactionsResult struct {
	ResponseClass
	Transactions *inboundTransactionList `xml:"InboundTransactions"`
}

type inboundTransactionList struct {
	Items []InboundTransaction `xml:"GoodsOwnerInboundTransaction"`
}

// InboundTransaction is one receipt event against an inbound order.
type InboundTransaction struct {
	InOrder       TransactionInOrder `xml:"InOrder"`
	Article       ArticleRef         `xml:"Article"`
	NumberOfItems float64            `xml:"NumberOfItems"`
	InDate        *DateTime          `xml:"InDate"`
}

type TransactionInOrder struct {
	InOrderID             int64  `xml:"InOrderId"`
	GoodsOwnerOrderNumber string `xml:"GoodsOwnerOrderNumber"`
}

// ArticleRef identifies an article inside a response record.
type ArticleRef struct {
	ArticleNumber string `xml:"ArticleNumber"`
	ArticleName   string `xml:"ArticleName"`
}

// ---- GetOrdersByQuery / GetOrder ----

type getOrdersByQueryRequest struct {
	XMLName xml.Name `xml:"http://ongoingsystems.se/WSI GetOrdersByQuery"`
	Credentials
	Query OrderFilters `xml:"query"`
}

// OrderFilters selects remote orders either by id or by return date.
type OrderFilters struct {
	OrderIDs           *ArrayOfInt `xml:"OrderIdsToGet,omitempty"`
	LastReturnDateFrom *DateTime   `xml:"LastReturnDateFrom,omitempty"`
}

type ArrayOfInt struct {
	Int []int64 `xml:"int"`
}

type getOrdersByQueryResponse struct {
	XMLName xml.Name      `xml:"http://ongoingsystems.se/WSI GetOrdersByQueryResponse"`
	Result  *ordersResult `xml:"GetOrdersByQueryResult"`
}

type ordersResult struct {
	ResponseClass
	Orders []Order `xml:"Order"`
}

type getOrderRequest struct {
	XMLName xml.Name `xml:"http://ongoingsystems.se/WSI GetOrder"`
	Credentials
	OrderID int64 `xml:"OrderId"`
}

type getOrderResponse struct {
	XMLName xml.Name     `xml:"http://ongoingsystems.se/WSI GetOrderResponse"`
	Result  *orderResult `xml:"GetOrderResult"`
}

type orderResult struct {
	ResponseClass
	Order
}

// Order is a remote order record as returned by the query operations.
// Any sub-structure may be missing.
type Order struct {
	Info               OrderInfoResult     `xml:"OrderInfo"`
	PalletItems        *PalletItems        `xml:"OrderPalletItems"`
	PickedArticleItems *PickedArticleItems `xml:"PickedArticleItems"`
	OrderLines         *OrderLineInfos     `xml:"CustomerOrderLines"`
	ReturnedLines      *ReturnedOrderLines `xml:"ReturnedOrderLines"`
}

type OrderInfoResult struct {
	OrderID               int64     `xml:"OrderId"`
	GoodsOwnerOrderNumber string    `xml:"GoodsOwnerOrderNumber"`
	OrderStatusText       string    `xml:"OrderStatusText"`
	OrderStatusNumber     int       `xml:"OrderStatusNumber"`
	ReturnDate            *DateTime `xml:"ReturnDate"`
}

type PalletItems struct {
	Items []PalletItem `xml:"OrderPalletItemInfo"`
}

// PalletItem is one parcel or pallet on a shipped order.
type PalletItem struct {
	LabelID             string `xml:"LabelId"`
	TrackingURL         string `xml:"TrackingUrl"`
	IsTransporterParcel bool   `xml:"IsTransporterParcel"`
}

type PickedArticleItems struct {
	Items []PickedArticleItem `xml:"PickedArticleItem"`
}

type PickedArticleItem struct {
	Article       ArticleRef `xml:"Article"`
	Serial        string     `xml:"Serial"`
	NumberOfItems float64    `xml:"NumberOfItems"`
}

type OrderLineInfos struct {
	Items []OrderLineInfo `xml:"CustomerOrderLineInfo"`
}

// OrderLineInfo is an order line as seen by the WMS.
type OrderLineInfo struct {
	OrderLineSystemID     int64      `xml:"OrderLineSystemId"`
	ExternalOrderLineCode string     `xml:"ExternalOrderLineCode"`
	Article               ArticleRef `xml:"Article"`
	OrderedNumberOfItems  float64    `xml:"OrderedNumberOfItems"`
	PickedNumberOfItems   float64    `xml:"PickedNumberOfItems"`
	ReturnedNumberOfItems float64    `xml:"ReturnedNumberOfItems"`
}

type ReturnedOrderLines struct {
	Items []ReturnedOrderLine `xml:"ReturnedOrderLine"`
}

type ReturnedOrderLine struct {
	OrderLineSystemID int64        `xml:"OrderLineSystemId"`
	NumberOfItems     float64      `xml:"NumberOfItems"`
	ReturnCause       *ReturnCause `xml:"ReturnCause"`
}

type ReturnCause struct {
	Code string `xml:"Code"`
	Name string `xml:"Name"`
}

// DateTime is an xsd:dateTime. The WMS sends local times without a zone offset.
type DateTime struct {
	time.Time
}

const dateTimeLayout = "2006-01-02T15:04:05"

// NewDateTime returns nil for the zero time so optional elements are omitted.
func NewDateTime(t time.Time) *DateTime {
	if t.IsZero() {
		return nil
	}
	return &DateTime{Time: t}
}

func (d DateTime) MarshalText() ([]byte, error) {
	return []byte(d.Time.Format(dateTimeLayout)), nil
}

func (d *DateTime) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, dateTimeLayout + ".999999999", dateTimeLayout, "2006-01-02"} {
		if t, err := time.Parse(layout, string(text)); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid dateTime %q", text)
}
