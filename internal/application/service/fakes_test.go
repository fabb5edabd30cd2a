package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/entity"
	"github.com/sangkips/hospitality-pos/internal/domain/enum"
	"github.com/sangkips/hospitality-pos/internal/domain/repository"
	"github.com/sangkips/hospitality-pos/pkg/hotel"
	"github.com/sangkips/hospitality-pos/pkg/printer"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// memDB is an in-memory store shared by the fake repositories. Its
// transactor snapshots the whole store and restores it when fn fails.
type memDB struct {
	mu sync.Mutex

	orders      map[uuid.UUID]entity.Order
	lines       []entity.OrderLine
	payments    []entity.Payment
	voidLogs    []entity.VoidLogEntry
	products    map[uuid.UUID]entity.Product
	recipes     map[uuid.UUID][]entity.RecipeComponent
	stock       map[stockKey]decimal.Decimal
	movements   []entity.StockMovement
	salesPoints map[uuid.UUID]entity.SalesPoint
	tables      map[uuid.UUID]entity.RestaurantTable
	clients     map[uuid.UUID]entity.ClientAccount
	sessions    map[uuid.UUID]entity.POSSession
	reports     []entity.SessionReport

	// fail makes the named operation return the error
	fail map[string]error
	// beforeSessionCreate runs just before a session insert
	beforeSessionCreate func()
}

type stockKey struct {
	product  uuid.UUID
	location uuid.UUID
}

type txMarker struct{}

func newMemDB() *memDB {
	return &memDB{
		orders:      make(map[uuid.UUID]entity.Order),
		products:    make(map[uuid.UUID]entity.Product),
		recipes:     make(map[uuid.UUID][]entity.RecipeComponent),
		stock:       make(map[stockKey]decimal.Decimal),
		salesPoints: make(map[uuid.UUID]entity.SalesPoint),
		tables:      make(map[uuid.UUID]entity.RestaurantTable),
		clients:     make(map[uuid.UUID]entity.ClientAccount),
		sessions:    make(map[uuid.UUID]entity.POSSession),
		fail:        make(map[string]error),
	}
}

func (db *memDB) failure(op string) error {
	return db.fail[op]
}

type memSnapshot struct {
	orders    map[uuid.UUID]entity.Order
	lines     []entity.OrderLine
	payments  []entity.Payment
	voidLogs  []entity.VoidLogEntry
	stock     map[stockKey]decimal.Decimal
	movements []entity.StockMovement
	tables    map[uuid.UUID]entity.RestaurantTable
	clients   map[uuid.UUID]entity.ClientAccount
	sessions  map[uuid.UUID]entity.POSSession
	reports   []entity.SessionReport
}

func (db *memDB) snapshot() memSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	return memSnapshot{
		orders:    copyMap(db.orders),
		lines:     append([]entity.OrderLine(nil), db.lines...),
		payments:  append([]entity.Payment(nil), db.payments...),
		voidLogs:  append([]entity.VoidLogEntry(nil), db.voidLogs...),
		stock:     copyMap(db.stock),
		movements: append([]entity.StockMovement(nil), db.movements...),
		tables:    copyMap(db.tables),
		clients:   copyMap(db.clients),
		sessions:  copyMap(db.sessions),
		reports:   append([]entity.SessionReport(nil), db.reports...),
	}
}

func (db *memDB) restore(s memSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.orders = s.orders
	db.lines = s.lines
	db.payments = s.payments
	db.voidLogs = s.voidLogs
	db.stock = s.stock
	db.movements = s.movements
	db.tables = s.tables
	db.clients = s.clients
	db.sessions = s.sessions
	db.reports = s.reports
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (db *memDB) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txMarker{}) != nil {
		return fn(ctx)
	}
	snap := db.snapshot()
	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		db.restore(snap)
		return err
	}
	return nil
}

// --- orders ---

type memOrderRepo struct{ db *memDB }

func (r memOrderRepo) Create(ctx context.Context, order *entity.Order) error {
	if err := r.db.failure("orders.create"); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	header := *order
	header.Lines = nil
	header.CreatedAt = time.Now()
	r.db.orders[order.ID] = header
	for i := range order.Lines {
		order.Lines[i].OrderID = order.ID
		r.db.lines = append(r.db.lines, order.Lines[i])
	}
	return nil
}

func (r memOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r memOrderRepo) GetWithLines(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.orders[id]
	if !ok {
		return nil, nil
	}
	o.Lines = nil
	for _, l := range r.db.lines {
		if l.OrderID == id {
			o.Lines = append(o.Lines, l)
		}
	}
	return &o, nil
}

func (r memOrderRepo) Update(ctx context.Context, order *entity.Order) error {
	if err := r.db.failure("orders.update"); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	header := *order
	header.Lines = nil
	r.db.orders[order.ID] = header
	return nil
}

func (r memOrderRepo) ListPaidBySession(ctx context.Context, sessionID uuid.UUID) ([]entity.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []entity.Order
	for _, o := range r.db.orders {
		if o.SessionID == sessionID && o.PaymentStatus == enum.PaymentStatusPaid {
			out = append(out, o)
		}
	}
	return out, nil
}

type memOrderLineRepo struct{ db *memDB }

func (r memOrderLineRepo) CreateBatch(ctx context.Context, lines []entity.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	if err := r.db.failure("lines.create"); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.lines = append(r.db.lines, lines...)
	return nil
}

func (r memOrderLineRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.OrderLine, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, l := range r.db.lines {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, nil
}

func (r memOrderLineRepo) MarkVoided(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range r.db.lines {
		if r.db.lines[i].ID == id && !r.db.lines[i].IsVoided {
			r.db.lines[i].IsVoided = true
			r.db.lines[i].VoidedAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (r memOrderLineRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.OrderLine, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []entity.OrderLine
	for _, l := range r.db.lines {
		if l.OrderID == orderID {
			out = append(out, l)
		}
	}
	return out, nil
}

type memPaymentRepo struct{ db *memDB }

func (r memPaymentRepo) CreateBatch(ctx context.Context, payments []entity.Payment) error {
	if err := r.db.failure("payments.create"); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range payments {
		payments[i].ID = uuid.New()
	}
	r.db.payments = append(r.db.payments, payments...)
	return nil
}

func (r memPaymentRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]entity.Payment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []entity.Payment
	for _, p := range r.db.payments {
		o := r.db.orders[p.OrderID]
		if p.SessionID == sessionID && o.PaymentStatus == enum.PaymentStatusPaid {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memPaymentRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.Payment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []entity.Payment
	for _, p := range r.db.payments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

type memVoidLogRepo struct{ db *memDB }

func (r memVoidLogRepo) Create(ctx context.Context, entry *entity.VoidLogEntry) error {
	if err := r.db.failure("voidlog.create"); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	entry.ID = uuid.New()
	r.db.voidLogs = append(r.db.voidLogs, *entry)
	return nil
}

func (r memVoidLogRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.VoidLogEntry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []entity.VoidLogEntry
	for _, e := range r.db.voidLogs {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

// --- catalogue and stock ---

type memProductRepo struct{ db *memDB }

func (r memProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memProductRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []entity.Product
	for _, id := range ids {
		if p, ok := r.db.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProductRepo) GetRecipes(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]entity.RecipeComponent, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make(map[uuid.UUID][]entity.RecipeComponent)
	for _, id := range ids {
		if rc, ok := r.db.recipes[id]; ok {
			out[id] = rc
		}
	}
	return out, nil
}

type memStockRepo struct{ db *memDB }

func (r memStockRepo) ApplyMovement(ctx context.Context, m *entity.StockMovement) error {
	if err := r.db.failure("stock.apply"); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	key := stockKey{product: m.ProductID, location: m.StorageLocationID}
	prev := r.db.stock[key]
	next := prev.Add(m.Quantity)
	r.db.stock[key] = next
	m.ID = uuid.New()
	m.PreviousQuantity = prev
	m.NewQuantity = next
	r.db.movements = append(r.db.movements, *m)
	return nil
}

func (r memStockRepo) GetQuantity(ctx context.Context, productID, locationID uuid.UUID) (decimal.Decimal, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.stock[stockKey{product: productID, location: locationID}], nil
}

func (r memStockRepo) ListMovements(ctx context.Context, reference string) ([]entity.StockMovement, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []entity.StockMovement
	for _, m := range r.db.movements {
		if m.Reference == reference {
			out = append(out, m)
		}
	}
	return out, nil
}

type memSalesPointRepo struct{ db *memDB }

func (r memSalesPointRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.SalesPoint, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	sp, ok := r.db.salesPoints[id]
	if !ok {
		return nil, nil
	}
	return &sp, nil
}

func (r memSalesPointRepo) GetTable(ctx context.Context, id uuid.UUID) (*entity.RestaurantTable, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tables[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r memSalesPointRepo) SetTableStatus(ctx context.Context, id uuid.UUID, status enum.TableStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tables[id]
	if !ok {
		return nil
	}
	t.Status = status
	r.db.tables[id] = t
	return nil
}

type memClientRepo struct{ db *memDB }

func (r memClientRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.ClientAccount, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.clients[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r memClientRepo) Debit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.clients[id]
	if !ok {
		return false, nil
	}
	next := c.Balance.Sub(amount)
	if next.LessThan(c.CreditLimit.Neg()) {
		return false, nil
	}
	c.Balance = next
	r.db.clients[id] = c
	return true, nil
}

// --- sessions ---

type memSessionRepo struct{ db *memDB }

func (r memSessionRepo) Create(ctx context.Context, s *entity.POSSession) error {
	if r.db.beforeSessionCreate != nil {
		hook := r.db.beforeSessionCreate
		r.db.beforeSessionCreate = nil
		hook()
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.sessions {
		if existing.Status == enum.SessionStatusActive &&
			existing.EmployeeID == s.EmployeeID &&
			existing.SalesPointID == s.SalesPointID &&
			existing.BusinessDay.Equal(s.BusinessDay) {
			return repository.ErrDuplicate
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.db.sessions[s.ID] = *s
	return nil
}

func (r memSessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.POSSession, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r memSessionRepo) FindActive(ctx context.Context, employeeID, salesPointID uuid.UUID, day time.Time) (*entity.POSSession, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range r.db.sessions {
		if s.Status == enum.SessionStatusActive && s.EmployeeID == employeeID &&
			s.SalesPointID == salesPointID && s.BusinessDay.Equal(day) {
			return &s, nil
		}
	}
	return nil, nil
}

func (r memSessionRepo) Close(ctx context.Context, id uuid.UUID, closedAt time.Time, closing decimal.Decimal) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.sessions[id]
	if !ok || s.Status != enum.SessionStatusActive {
		return false, nil
	}
	s.Status = enum.SessionStatusClosed
	s.ClosedAt = &closedAt
	s.ClosingBalance = &closing
	r.db.sessions[id] = s
	return true, nil
}

func (r memSessionRepo) CreateReport(ctx context.Context, report *entity.SessionReport) error {
	if err := r.db.failure("reports.create"); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	report.ID = uuid.New()
	r.db.reports = append(r.db.reports, *report)
	return nil
}

// --- collaborators ---

type printCall struct {
	kind     string
	template string
	orderID  uuid.UUID
	itemIDs  []uuid.UUID
	items    []printer.CancelledItem
}

type fakePrintClient struct {
	mu        sync.Mutex
	calls     []printCall
	err       error
	healthErr error
}

func (f *fakePrintClient) record(c printCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.err
}

func (f *fakePrintClient) Print(ctx context.Context, orderID, salesPointID uuid.UUID, template string) error {
	return f.record(printCall{kind: "print", template: template, orderID: orderID})
}

func (f *fakePrintClient) PrintCancellation(ctx context.Context, orderID, salesPointID uuid.UUID, orderNumber string, items []printer.CancelledItem) error {
	return f.record(printCall{kind: "cancellation", orderID: orderID, items: items})
}

func (f *fakePrintClient) PrintSpecificItems(ctx context.Context, orderID, salesPointID uuid.UUID, itemIDs []uuid.UUID, template string) error {
	return f.record(printCall{kind: "items", template: template, orderID: orderID, itemIDs: itemIDs})
}

func (f *fakePrintClient) Health(ctx context.Context) (json.RawMessage, error) {
	if f.healthErr != nil {
		return nil, f.healthErr
	}
	return json.RawMessage(`{"status":"ok"}`), nil
}

func (f *fakePrintClient) Printers(ctx context.Context) (json.RawMessage, error) {
	return json.RawMessage(`["kitchen"]`), nil
}

func (f *fakePrintClient) Mapping(ctx context.Context) (json.RawMessage, error) {
	return nil, errors.New("mapping unavailable")
}

func (f *fakePrintClient) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.kind
		if c.template != "" {
			out[i] += ":" + c.template
		}
	}
	return out
}

type fakeHotel struct {
	charges []hotel.Charge
	err     error
}

func (f *fakeHotel) PostRestaurantCharge(ctx context.Context, charge hotel.Charge) error {
	if f.err != nil {
		return f.err
	}
	f.charges = append(f.charges, charge)
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (f *fakePublisher) Publish(ctx context.Context, subject string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subjects = append(f.subjects, subject)
	return nil
}

func (f *fakePublisher) published() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.subjects...)
}

// --- harness ---

type harness struct {
	db        *memDB
	printer   *fakePrintClient
	hotel     *fakeHotel
	events    *fakePublisher
	stock     *StockService
	voids     *VoidService
	orders    *OrderService
	sessions  *SessionService
	tickets   *TicketService
	printSvc  *PrinterService
	ctx       context.Context
	employee  uuid.UUID
	point     entity.SalesPoint
	location  uuid.UUID
	session   entity.POSSession
	table     entity.RestaurantTable
	client    entity.ClientAccount
	burger    entity.Product
	soda      entity.Product
	fries     entity.Product
	pizza     entity.Product
	bun       uuid.UUID
	patty     uuid.UUID
	potato    uuid.UUID
	stockRepo memStockRepo
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := newMemDB()
	h := &harness{
		db:       db,
		printer:  &fakePrintClient{},
		hotel:    &fakeHotel{},
		events:   &fakePublisher{},
		ctx:      context.Background(),
		employee: uuid.New(),
		location: uuid.New(),
		bun:      uuid.New(),
		patty:    uuid.New(),
		potato:   uuid.New(),
	}

	h.point = entity.SalesPoint{ID: uuid.New(), Name: "Restaurant", Code: "RST", DefaultStorageLocationID: &h.location}
	db.salesPoints[h.point.ID] = h.point

	h.table = entity.RestaurantTable{ID: uuid.New(), SalesPointID: h.point.ID, Label: "T1", Status: enum.TableStatusAvailable}
	db.tables[h.table.ID] = h.table

	h.client = entity.ClientAccount{ID: uuid.New(), Name: "Acme", Balance: decimal.Zero, CreditLimit: decimal.NewFromInt(5000)}
	db.clients[h.client.ID] = h.client

	h.burger = h.addProduct("Burger", "3000", "18", true)
	h.soda = h.addProduct("Soda", "1000", "0", false)
	h.fries = h.addProduct("Fries", "1500", "18", true)
	h.pizza = h.addProduct("Pizza", "5000", "18", true)
	db.recipes[h.burger.ID] = []entity.RecipeComponent{
		{ID: uuid.New(), ProductID: h.burger.ID, IngredientID: h.bun, QuantityPerUnit: decimal.NewFromInt(1)},
		{ID: uuid.New(), ProductID: h.burger.ID, IngredientID: h.patty, QuantityPerUnit: decimal.NewFromInt(1)},
	}
	db.recipes[h.fries.ID] = []entity.RecipeComponent{
		{ID: uuid.New(), ProductID: h.fries.ID, IngredientID: h.potato, QuantityPerUnit: decimal.RequireFromString("0.25")},
	}

	h.session = entity.POSSession{
		ID:             uuid.New(),
		SalesPointID:   h.point.ID,
		EmployeeID:     h.employee,
		BusinessDay:    time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC),
		OpenedAt:       time.Now(),
		OpeningBalance: decimal.NewFromInt(20000),
		Status:         enum.SessionStatusActive,
	}
	db.sessions[h.session.ID] = h.session

	logger := zap.NewNop()
	h.stockRepo = memStockRepo{db: db}
	h.printSvc = NewPrinterService(h.printer, true, 0, logger)
	h.stock = NewStockService(memProductRepo{db: db}, h.stockRepo, memSalesPointRepo{db: db}, logger)
	h.voids = NewVoidService(db, memOrderRepo{db: db}, memOrderLineRepo{db: db}, memVoidLogRepo{db: db},
		memSalesPointRepo{db: db}, h.stock, h.printSvc, h.events, logger)
	h.orders = NewOrderService(OrderDeps{
		Tx:             db,
		OrderRepo:      memOrderRepo{db: db},
		OrderLineRepo:  memOrderLineRepo{db: db},
		PaymentRepo:    memPaymentRepo{db: db},
		ClientRepo:     memClientRepo{db: db},
		SalesPointRepo: memSalesPointRepo{db: db},
		SessionRepo:    memSessionRepo{db: db},
		Stock:          h.stock,
		Voids:          h.voids,
		Printer:        h.printSvc,
		Hotel:          h.hotel,
		Events:         h.events,
		Logger:         logger,
	})
	h.sessions = NewSessionService(db, memSessionRepo{db: db}, memOrderRepo{db: db}, memPaymentRepo{db: db},
		h.events, logger, time.UTC, decimal.NewFromInt(1000))
	h.tickets = NewTicketService(memProductRepo{db: db}, memSessionRepo{db: db}, memSalesPointRepo{db: db},
		memClientRepo{db: db}, h.orders, h.voids)
	h.sessions.OnClosed(func(id uuid.UUID) { h.tickets.DropSession(id) })
	return h
}

func (h *harness) addProduct(name, price, taxRate string, composed bool) entity.Product {
	p := entity.Product{
		ID:         uuid.New(),
		Name:       name,
		Code:       name,
		Price:      decimal.RequireFromString(price),
		TaxRate:    decimal.RequireFromString(taxRate),
		IsComposed: composed,
		IsActive:   true,
	}
	h.db.products[p.ID] = p
	return p
}

func (h *harness) stockOf(ingredient uuid.UUID) decimal.Decimal {
	q, _ := h.stockRepo.GetQuantity(h.ctx, ingredient, h.location)
	return q
}

func (h *harness) order(id uuid.UUID) *entity.Order {
	o, _ := memOrderRepo{db: h.db}.GetWithLines(h.ctx, id)
	return o
}

// sessionActive reads the stored row, not the harness copy taken at setup
func (h *harness) sessionActive(id uuid.UUID) bool {
	h.db.mu.Lock()
	defer h.db.mu.Unlock()
	session := h.db.sessions[id]
	return session.IsActive()
}

func (h *harness) movementsOf(ingredient uuid.UUID, kind enum.MovementType) []entity.StockMovement {
	h.db.mu.Lock()
	defer h.db.mu.Unlock()
	var out []entity.StockMovement
	for _, m := range h.db.movements {
		if m.ProductID == ingredient && m.MovementType == kind {
			out = append(out, m)
		}
	}
	return out
}

func sortedStrings(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
