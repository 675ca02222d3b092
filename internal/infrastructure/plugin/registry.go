package plugin

import (
	"fmt"
	"sort"
	"sync"

	"github.com/erp/barcode/internal/domain/barcode"
	"github.com/erp/barcode/internal/domain/shared"
	"github.com/samber/lo"
)

// Registry collects barcode handler registrations at startup.
// Request handling never reads it directly; it works on a Snapshot.
type Registry struct {
	mu      sync.RWMutex
	entries []registration
	names   map[string]struct{}
}

type registration struct {
	handler      barcode.Handler
	capabilities []barcode.Capability
}

// NewRegistry creates a new, empty handler registry
func NewRegistry() *Registry {
	return &Registry{
		names: make(map[string]struct{}),
	}
}

// Register adds a handler serving the given capabilities.
// Handlers advertising supplier-scan must implement barcode.ReceiveHandler.
func (r *Registry) Register(handler barcode.Handler, capabilities ...barcode.Capability) error {
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", shared.ErrInvalidInput)
	}

	name := handler.Name()
	if name == "" {
		return fmt.Errorf("%w: handler name cannot be empty", shared.ErrInvalidInput)
	}
	if len(capabilities) == 0 {
		return fmt.Errorf("%w: handler '%s' declares no capabilities", shared.ErrInvalidInput, name)
	}
	if lo.Contains(capabilities, barcode.CapabilitySupplierScan) {
		if _, ok := handler.(barcode.ReceiveHandler); !ok {
			return fmt.Errorf("%w: handler '%s' cannot serve %s without ScanReceive",
				shared.ErrInvalidInput, name, barcode.CapabilitySupplierScan)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.names[name]; exists {
		return fmt.Errorf("%w: handler '%s' already registered", shared.ErrAlreadyExists, name)
	}

	r.names[name] = struct{}{}
	r.entries = append(r.entries, registration{
		handler:      handler,
		capabilities: lo.Uniq(capabilities),
	})
	return nil
}

// ListHandlers returns all registered handler names
func (r *Registry) ListHandlers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := lo.Keys(r.names)
	sort.Strings(names)
	return names
}

// Count returns the number of registered handlers
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Snapshot freezes the current registrations into an ordered, read-only view.
// First-party handlers come ahead of all others; registration order is kept
// within each group.
func (r *Registry) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ordered := make([]registration, len(r.entries))
	copy(ordered, r.entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].handler.Kind().FirstParty() && !ordered[j].handler.Kind().FirstParty()
	})

	chains := make(map[barcode.Capability][]barcode.Handler)
	byName := make(map[string]barcode.Handler, len(ordered))
	for _, reg := range ordered {
		byName[reg.handler.Name()] = reg.handler
		for _, c := range reg.capabilities {
			chains[c] = append(chains[c], reg.handler)
		}
	}

	return &Snapshot{chains: chains, byName: byName}
}

// Snapshot is an immutable view of the registry used during request handling
type Snapshot struct {
	chains map[barcode.Capability][]barcode.Handler
	byName map[string]barcode.Handler
}

// WithCapability returns the ordered handlers serving the capability.
// The returned slice is a copy and may be modified by the caller.
func (s *Snapshot) WithCapability(capability barcode.Capability, firstPartyOnly bool) []barcode.Handler {
	chain := s.chains[capability]
	if !firstPartyOnly {
		return append([]barcode.Handler(nil), chain...)
	}
	return lo.Filter(chain, func(h barcode.Handler, _ int) bool {
		return h.Kind().FirstParty()
	})
}

// Handler returns a handler by name
func (s *Snapshot) Handler(name string) (barcode.Handler, bool) {
	h, ok := s.byName[name]
	return h, ok
}

// Names returns the handler names serving the capability, in chain order
func (s *Snapshot) Names(capability barcode.Capability) []string {
	return lo.Map(s.chains[capability], func(h barcode.Handler, _ int) string {
		return h.Name()
	})
}

var _ barcode.HandlerRegistry = (*Snapshot)(nil)
