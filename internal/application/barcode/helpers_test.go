package barcode

import (
	"context"
	"sync"

	"github.com/erp/barcode/internal/domain/barcode"
	"github.com/erp/barcode/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// spyHandler returns a fixed outcome and records every invocation
type spyHandler struct {
	name    string
	kind    barcode.HandlerKind
	outcome *barcode.Outcome
	err     error

	mu           sync.Mutex
	calls        int
	receiveCalls int
	lastContext  barcode.ReceiveContext
}

func newSpy(name string, kind barcode.HandlerKind, outcome *barcode.Outcome) *spyHandler {
	return &spyHandler{name: name, kind: kind, outcome: outcome}
}

func (h *spyHandler) Name() string              { return h.name }
func (h *spyHandler) Kind() barcode.HandlerKind { return h.kind }

func (h *spyHandler) Scan(ctx context.Context, data string) (*barcode.Outcome, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	return h.outcome, h.err
}

func (h *spyHandler) ScanReceive(ctx context.Context, data string, actor barcode.Actor, rc barcode.ReceiveContext) (*barcode.Outcome, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.receiveCalls++
	h.lastContext = rc
	return h.outcome, h.err
}

func (h *spyHandler) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

func (h *spyHandler) ReceiveCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.receiveCalls
}

// scanOnlyHandler implements Handler but not ReceiveHandler
type scanOnlyHandler struct {
	name string
}

func (h *scanOnlyHandler) Name() string              { return h.name }
func (h *scanOnlyHandler) Kind() barcode.HandlerKind { return barcode.HandlerKindThirdParty }
func (h *scanOnlyHandler) Scan(ctx context.Context, data string) (*barcode.Outcome, error) {
	return barcode.Match(nil), nil
}

// stubRegistry serves fixed handler chains per capability
type stubRegistry struct {
	chains map[barcode.Capability][]barcode.Handler
}

func newStubRegistry() *stubRegistry {
	return &stubRegistry{chains: make(map[barcode.Capability][]barcode.Handler)}
}

func (r *stubRegistry) with(capability barcode.Capability, handlers ...barcode.Handler) *stubRegistry {
	r.chains[capability] = append(r.chains[capability], handlers...)
	return r
}

func (r *stubRegistry) WithCapability(capability barcode.Capability, firstPartyOnly bool) []barcode.Handler {
	var result []barcode.Handler
	for _, h := range r.chains[capability] {
		if firstPartyOnly && !h.Kind().FirstParty() {
			continue
		}
		result = append(result, h)
	}
	return result
}

// stubHasher produces a readable, deterministic hash
type stubHasher struct{}

func (stubHasher) Hash(data string) barcode.Hash {
	return barcode.Hash("h:" + data)
}

// memTargets is an in-memory TargetRepository
type memTargets struct {
	mu      sync.Mutex
	targets map[barcode.EntityKind]map[uint64]*barcode.Target
	saves   int
}

func newMemTargets() *memTargets {
	return &memTargets{targets: make(map[barcode.EntityKind]map[uint64]*barcode.Target)}
}

func (m *memTargets) add(kind barcode.EntityKind, pk uint64) *memTargets {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.targets[kind] == nil {
		m.targets[kind] = make(map[uint64]*barcode.Target)
	}
	m.targets[kind][pk] = &barcode.Target{Kind: kind, PK: pk}
	return m
}

func (m *memTargets) FindByKey(ctx context.Context, kind barcode.EntityKind, pk uint64) (*barcode.Target, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.targets[kind][pk]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *memTargets) FindByBarcodeHash(ctx context.Context, hash barcode.Hash) (*barcode.Target, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, byPK := range m.targets {
		for _, t := range byPK {
			if t.BarcodeHash == hash {
				copied := *t
				return &copied, nil
			}
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memTargets) SaveBarcode(ctx context.Context, target *barcode.Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	stored, ok := m.targets[target.Kind][target.PK]
	if !ok {
		return shared.ErrNotFound
	}
	stored.BarcodeData = target.BarcodeData
	stored.BarcodeHash = target.BarcodeHash
	return nil
}

func (m *memTargets) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// hashLookupHandler is a first-party handler that recognizes custom bindings
type hashLookupHandler struct {
	targets barcode.TargetRepository
	hasher  barcode.Hasher
}

func (h *hashLookupHandler) Name() string              { return barcode.DefaultInternalHandlerName }
func (h *hashLookupHandler) Kind() barcode.HandlerKind { return barcode.HandlerKindInternal }

func (h *hashLookupHandler) Scan(ctx context.Context, data string) (*barcode.Outcome, error) {
	t, err := h.targets.FindByBarcodeHash(ctx, h.hasher.Hash(data))
	if err != nil {
		return nil, nil
	}
	return barcode.Match(map[string]any{t.Kind.Label(): barcode.EntityRef(t.PK)}), nil
}

// MockPermissionChecker is a mock implementation of barcode.PermissionChecker
type MockPermissionChecker struct {
	mock.Mock
}

func (m *MockPermissionChecker) CanChange(ctx context.Context, actor barcode.Actor, table string) bool {
	args := m.Called(ctx, actor, table)
	return args.Bool(0)
}

// allowAll grants every permission
type allowAll struct{}

func (allowAll) CanChange(ctx context.Context, actor barcode.Actor, table string) bool { return true }

// MockPurchaseOrderRepository is a mock implementation of barcode.PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, id uint64) (*barcode.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*barcode.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindOpenLine(ctx context.Context, supplierPartID uint64, orderID *uint64) (*barcode.PurchaseOrderLine, error) {
	args := m.Called(ctx, supplierPartID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*barcode.PurchaseOrderLine), args.Error(1)
}

// MockStockLocationRepository is a mock implementation of barcode.StockLocationRepository
type MockStockLocationRepository struct {
	mock.Mock
}

func (m *MockStockLocationRepository) FindByID(ctx context.Context, id uint64) (*barcode.StockLocation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*barcode.StockLocation), args.Error(1)
}

func ptr[T any](v T) *T {
	return &v
}
