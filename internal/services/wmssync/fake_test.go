package wmssync

import (
	"context"
	"fmt"
	"time"

	"github.com/xelth-com/ongoingwms/internal/models"
	"github.com/xelth-com/ongoingwms/internal/wms"
)

// memStore keeps records in memory. Transactions do not roll back.
type memStore struct {
	nextID    int64
	companies map[int64]*models.Company
	pickings  []*models.StockPicking
	lots      []models.StockLot
	sales     map[int64]*models.SaleOrder
	purchases map[int64]*models.PurchaseOrder
	suppliers map[int64][]models.ProductSupplier
	ledger    map[[2]int64]bool
	notes     map[int64][]string
	history   []models.SyncHistory

	saveCompanyErr error
}

func newMemStore() *memStore {
	return &memStore{
		nextID:    1000,
		companies: map[int64]*models.Company{},
		sales:     map[int64]*models.SaleOrder{},
		purchases: map[int64]*models.PurchaseOrder{},
		suppliers: map[int64][]models.ProductSupplier{},
		ledger:    map[[2]int64]bool{},
		notes:     map[int64][]string{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return fn(m)
}

func (m *memStore) Company(ctx context.Context, id int64) (*models.Company, error) {
	c, ok := m.companies[id]
	if !ok {
		return nil, fmt.Errorf("company %d not found", id)
	}
	return c, nil
}

func (m *memStore) ActiveCompanies(ctx context.Context) ([]models.Company, error) {
	var out []models.Company
	for _, c := range m.companies {
		if c.WMSEnabled {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memStore) SaveCompany(ctx context.Context, c *models.Company) error {
	if m.saveCompanyErr != nil {
		return m.saveCompanyErr
	}
	m.companies[c.ID] = c
	return nil
}

func (m *memStore) Picking(ctx context.Context, id int64) (*models.StockPicking, error) {
	for _, p := range m.pickings {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("picking %d not found", id)
}

func (m *memStore) filter(keep func(p *models.StockPicking) bool) []*models.StockPicking {
	var out []*models.StockPicking
	for _, p := range m.pickings {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (m *memStore) PushablePickings(ctx context.Context, companyID int64) ([]*models.StockPicking, error) {
	return m.filter(func(p *models.StockPicking) bool {
		return p.CompanyID == companyID && p.Kind == models.PickingKindOutgoing && !p.IsClosed() &&
			p.SaleOrderID != nil && p.RemoteOrderID == ""
	}), nil
}

func (m *memStore) ShippedPickings(ctx context.Context, companyID int64) ([]*models.StockPicking, error) {
	return m.filter(func(p *models.StockPicking) bool {
		return p.CompanyID == companyID && p.Kind == models.PickingKindOutgoing && !p.IsClosed() &&
			p.SaleOrderID != nil && p.RemoteOrderID != ""
	}), nil
}

func (m *memStore) InboundPickings(ctx context.Context, companyID int64, remoteOrderID string) ([]*models.StockPicking, error) {
	match := func(kind string) func(p *models.StockPicking) bool {
		return func(p *models.StockPicking) bool {
			return p.CompanyID == companyID && p.Kind == kind && !p.IsClosed() && p.RemoteOrderID == remoteOrderID
		}
	}
	out := m.filter(match(models.PickingKindInternal))
	return append(out, m.filter(match(models.PickingKindIncoming))...), nil
}

func (m *memStore) ReturnCandidates(ctx context.Context, companyID int64, remoteOrderID string) ([]*models.StockPicking, error) {
	return m.filter(func(p *models.StockPicking) bool {
		return p.CompanyID == companyID && p.Kind == models.PickingKindOutgoing && p.RemoteOrderID == remoteOrderID
	}), nil
}

func (m *memStore) DestinationPickings(ctx context.Context, src *models.StockPicking) ([]*models.StockPicking, error) {
	dest := map[int64]bool{}
	for _, mv := range src.Moves {
		if mv.DestMoveID != nil {
			dest[*mv.DestMoveID] = true
		}
	}
	return m.filter(func(p *models.StockPicking) bool {
		if p.IsClosed() {
			return false
		}
		for _, mv := range p.Moves {
			if dest[mv.ID] {
				return true
			}
		}
		return false
	}), nil
}

func (m *memStore) SavePicking(ctx context.Context, p *models.StockPicking) error {
	if p.ID == 0 {
		p.ID = m.id()
		m.pickings = append(m.pickings, p)
	}
	for i := range p.Moves {
		mv := &p.Moves[i]
		if mv.ID == 0 {
			mv.ID = m.id()
		}
		mv.PickingID = p.ID
		for j := range mv.MoveLines {
			ml := &mv.MoveLines[j]
			if ml.ID == 0 {
				ml.ID = m.id()
			}
			ml.MoveID = mv.ID
			ml.PickingID = p.ID
		}
	}
	return nil
}

func (m *memStore) AddNote(ctx context.Context, pickingID int64, body string) error {
	m.notes[pickingID] = append(m.notes[pickingID], body)
	return nil
}

func (m *memStore) ValidatePicking(ctx context.Context, p *models.StockPicking) (bool, error) {
	backorder, err := p.Validate()
	if err != nil {
		return false, err
	}
	return backorder, m.SavePicking(ctx, p)
}

func (m *memStore) ProcessBackorder(ctx context.Context, p *models.StockPicking) (*models.StockPicking, error) {
	bo, err := p.SplitBackorder()
	if err != nil {
		return nil, err
	}
	if err := m.SavePicking(ctx, p); err != nil {
		return nil, err
	}
	return bo, m.SavePicking(ctx, bo)
}

func (m *memStore) HasReturn(ctx context.Context, pickingID int64) (bool, error) {
	return len(m.returnsOf(pickingID)) > 0, nil
}

func (m *memStore) returnsOf(pickingID int64) []*models.StockPicking {
	return m.filter(func(p *models.StockPicking) bool {
		return p.ReturnOfID != nil && *p.ReturnOfID == pickingID
	})
}

func (m *memStore) FindLots(ctx context.Context, companyID int64, serials, codes []string) ([]models.StockLot, error) {
	in := func(s string, list []string) bool {
		for _, v := range list {
			if v == s {
				return true
			}
		}
		return false
	}
	var out []models.StockLot
	for _, lot := range m.lots {
		if lot.CompanyID == companyID && in(lot.Name, serials) && in(lot.Product.DefaultCode, codes) {
			out = append(out, lot)
		}
	}
	return out, nil
}

func (m *memStore) SaleOrder(ctx context.Context, id int64) (*models.SaleOrder, error) {
	o, ok := m.sales[id]
	if !ok {
		return nil, fmt.Errorf("sale order %d not found", id)
	}
	return o, nil
}

func (m *memStore) PurchaseOrder(ctx context.Context, id int64) (*models.PurchaseOrder, error) {
	o, ok := m.purchases[id]
	if !ok {
		return nil, fmt.Errorf("purchase order %d not found", id)
	}
	return o, nil
}

func (m *memStore) SaveSaleOrder(ctx context.Context, o *models.SaleOrder) error {
	m.sales[o.ID] = o
	return nil
}

func (m *memStore) SavePurchaseOrder(ctx context.Context, o *models.PurchaseOrder) error {
	m.purchases[o.ID] = o
	return nil
}

func (m *memStore) ProductSuppliers(ctx context.Context, productID int64) ([]models.ProductSupplier, error) {
	return m.suppliers[productID], nil
}

func (m *memStore) ProcessedLines(ctx context.Context, pickingID int64, lineNos []int) ([]int, error) {
	var done []int
	for _, n := range lineNos {
		if m.ledger[[2]int64{pickingID, int64(n)}] {
			done = append(done, n)
		}
	}
	return done, nil
}

func (m *memStore) RecordProcessedLine(ctx context.Context, pickingID int64, lineNo int) error {
	key := [2]int64{pickingID, int64(lineNo)}
	if m.ledger[key] {
		return fmt.Errorf("line %d of picking %d already processed", lineNo, pickingID)
	}
	m.ledger[key] = true
	return nil
}

func (m *memStore) SaveSyncHistory(ctx context.Context, h *models.SyncHistory) error {
	if h.ID == 0 {
		h.ID = m.id()
		m.history = append(m.history, *h)
		return nil
	}
	for i := range m.history {
		if m.history[i].ID == h.ID {
			m.history[i] = *h
		}
	}
	return nil
}

// fakeGateway answers from canned results and records every call.
type fakeGateway struct {
	calls       []string
	orders      []*wms.CustomerOrder
	inOrders    []*wms.InOrder
	articles    []*wms.ArticleDefinition
	queries     []wms.OrderFilters
	inbound     []wms.InboundQuery
	results     map[string]wms.Result
	orderByID   map[int64]wms.Result
	articleFail map[string]bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{results: map[string]wms.Result{}, orderByID: map[int64]wms.Result{}, articleFail: map[string]bool{}}
}

func (g *fakeGateway) result(op string) wms.Result {
	res, ok := g.results[op]
	if !ok {
		return wms.Result{Operation: op, Success: true}
	}
	return res
}

func (g *fakeGateway) ProcessArticle(ctx context.Context, art *wms.ArticleDefinition) wms.Result {
	g.calls = append(g.calls, "ProcessArticle")
	g.articles = append(g.articles, art)
	if g.articleFail[art.ArticleNumber] {
		return wms.Result{Operation: "ProcessArticle", ErrorMessage: "article rejected"}
	}
	return g.result("ProcessArticle")
}

func (g *fakeGateway) ProcessInOrder(ctx context.Context, order *wms.InOrder) wms.Result {
	g.calls = append(g.calls, "ProcessInOrder")
	g.inOrders = append(g.inOrders, order)
	return g.result("ProcessInOrder")
}

func (g *fakeGateway) ProcessOrder(ctx context.Context, order *wms.CustomerOrder) wms.Result {
	g.calls = append(g.calls, "ProcessOrder")
	g.orders = append(g.orders, order)
	return g.result("ProcessOrder")
}

func (g *fakeGateway) GetInboundTransactionsByQuery(ctx context.Context, query wms.InboundQuery) wms.Result {
	g.calls = append(g.calls, "GetInboundTransactionsByQuery")
	g.inbound = append(g.inbound, query)
	return g.result("GetInboundTransactionsByQuery")
}

func (g *fakeGateway) GetOrdersByQuery(ctx context.Context, filters wms.OrderFilters) wms.Result {
	g.calls = append(g.calls, "GetOrdersByQuery")
	g.queries = append(g.queries, filters)
	return g.result("GetOrdersByQuery")
}

func (g *fakeGateway) GetOrder(ctx context.Context, orderID int64) wms.Result {
	g.calls = append(g.calls, "GetOrder")
	if res, ok := g.orderByID[orderID]; ok {
		return res
	}
	return wms.Result{Operation: "GetOrder", ErrorMessage: "order not found"}
}

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

// fixture is one enabled company with a customer, two products and a
// reserved delivery of 2 x A and 1 x B.
type fixture struct {
	store    *memStore
	gateway  *fakeGateway
	svc      *Service
	company  *models.Company
	delivery *models.StockPicking
	productA models.ProductProduct
	productB models.ProductProduct
}

func newFixture() *fixture {
	st := newMemStore()
	gw := newFakeGateway()
	company := &models.Company{
		ID:                1,
		Name:              "Flyt AS",
		WMSEnabled:        true,
		WMSURL:            "https://wms.example/service.asmx",
		WMSUsername:       "user",
		WMSPassword:       "secret",
		WMSGoodsOwnerCode: "GO1",
	}
	st.companies[1] = company

	customer := &models.ResPartner{ID: 7, Name: "Kari Nordmann", Street: "Storgata 1", Zip: "0155", City: "Oslo", CountryCode: "NO", Email: "kari@example.no"}
	saleID := int64(42)
	sale := &models.SaleOrder{ID: saleID, Name: "S00042", CompanyID: 1, PartnerID: 7, PartnerShippingID: 7, ShippingPartner: customer, Partner: customer}
	st.sales[saleID] = sale

	a := models.ProductProduct{ID: 1, DefaultCode: "A", Name: "Widget", Tracking: models.TrackingNone}
	b := models.ProductProduct{ID: 2, DefaultCode: "B", Name: "Gadget", Tracking: models.TrackingNone}

	delivery := &models.StockPicking{
		ID:             10,
		Name:           "WH/OUT/00010",
		CompanyID:      1,
		Kind:           models.PickingKindOutgoing,
		State:          models.StateAssigned,
		SaleOrderID:    &saleID,
		SaleOrder:      sale,
		Partner:        customer,
		LocationID:     8,
		LocationDestID: 5,
		Moves: []models.StockMove{
			{ID: 101, PickingID: 10, CompanyID: 1, ProductID: 1, Product: a, ProductQty: 2, ReservedQty: 2, State: models.StateAssigned, LocationID: 8, LocationDestID: 5},
			{ID: 102, PickingID: 10, CompanyID: 1, ProductID: 2, Product: b, ProductQty: 1, ReservedQty: 1, State: models.StateAssigned, LocationID: 8, LocationDestID: 5},
		},
	}
	st.pickings = append(st.pickings, delivery)

	svc := NewService(st, func(c *models.Company) (Gateway, error) {
		if err := (wms.Config{URL: c.WMSURL, Username: c.WMSUsername, Password: c.WMSPassword, GoodsOwnerCode: c.WMSGoodsOwnerCode}).Validate(); err != nil {
			return nil, err
		}
		return gw, nil
	}, nil)
	svc.now = func() time.Time { return testNow }

	return &fixture{store: st, gateway: gw, svc: svc, company: company, delivery: delivery, productA: a, productB: b}
}

// markSent puts the delivery in the state Outbound Push leaves it in.
func (f *fixture) markSent(remoteID string) {
	f.delivery.RemoteOrderID = remoteID
	f.delivery.LineSequence = 2
	f.delivery.Moves[0].RemoteLineNumber = 1
	f.delivery.Moves[1].RemoteLineNumber = 2
}

// ship closes the delivery as fully delivered.
func (f *fixture) ship() {
	for i := range f.delivery.Moves {
		f.delivery.Moves[i].QuantityDone = f.delivery.Moves[i].ProductQty
		f.delivery.Moves[i].State = models.StateDone
	}
	f.delivery.State = models.StateDone
}
