// Package barcode holds the domain model for resolving scanned barcode data
// into system entities through an ordered chain of pluggable handlers.
package barcode

import "context"

// Capability selects which handlers take part in a dispatch
type Capability string

const (
	// CapabilityGenericScan is served by every handler that can recognize a payload
	CapabilityGenericScan Capability = "generic-scan"
	// CapabilitySupplierScan is served by handlers that understand supplier barcodes
	// and can resolve purchase order receiving actions from them
	CapabilitySupplierScan Capability = "supplier-scan"
)

// DefaultInternalHandlerName is the name of the built-in handler for the
// system's own barcode encoding
const DefaultInternalHandlerName = "InvenTreeBarcode"

// Hash is the deterministic digest of a raw barcode payload.
// It is used as the lookup key for custom bindings and never decoded.
type Hash string

// String returns the hash as text
func (h Hash) String() string {
	return string(h)
}

// Hasher computes the digest of raw barcode data
type Hasher interface {
	Hash(data string) Hash
}

// HandlerKind is the closed set of handler variants
type HandlerKind int

const (
	// HandlerKindInternal recognizes the system's own barcode encoding
	HandlerKindInternal HandlerKind = iota
	// HandlerKindThirdParty recognizes externally defined formats
	HandlerKindThirdParty
	// HandlerKindSupplier recognizes vendor formats and supports receiving
	HandlerKindSupplier
)

// String returns the handler kind label
func (k HandlerKind) String() string {
	switch k {
	case HandlerKindInternal:
		return "internal"
	case HandlerKindThirdParty:
		return "third-party"
	case HandlerKindSupplier:
		return "supplier"
	default:
		return "unknown"
	}
}

// FirstParty reports whether handlers of this kind are built into the system
func (k HandlerKind) FirstParty() bool {
	return k == HandlerKindInternal
}

// Handler recognizes barcode payloads of one format family.
// Scan returns a nil outcome when the payload is not recognized.
// A non-nil error is reserved for collaborator faults (storage, etc).
type Handler interface {
	Name() string
	Kind() HandlerKind
	Scan(ctx context.Context, data string) (*Outcome, error)
}

// ReceiveContext carries the optional purchase order and destination
// location of a receive request
type ReceiveContext struct {
	PurchaseOrder *PurchaseOrder
	Location      *StockLocation
}

// ReceiveHandler is a handler that can resolve purchase order receiving
// actions from supplier barcodes
type ReceiveHandler interface {
	Handler
	ScanReceive(ctx context.Context, data string, actor Actor, rc ReceiveContext) (*Outcome, error)
}

// HandlerRegistry yields the ordered handler chain for a capability.
// First-party handlers come ahead of third-party ones; callers never re-sort.
type HandlerRegistry interface {
	WithCapability(capability Capability, firstPartyOnly bool) []Handler
}
