package barcode

import "context"

// EntityKind enumerates the entity types that accept custom barcodes
type EntityKind string

const (
	EntityPart          EntityKind = "part"
	EntityStockItem     EntityKind = "stockitem"
	EntityStockLocation EntityKind = "stocklocation"
	EntitySupplierPart  EntityKind = "supplierpart"
)

// supportedKinds is the enumeration order used for label detection
var supportedKinds = []EntityKind{
	EntityPart,
	EntityStockItem,
	EntityStockLocation,
	EntitySupplierPart,
}

// SupportedKinds returns the bindable entity kinds in enumeration order
func SupportedKinds() []EntityKind {
	kinds := make([]EntityKind, len(supportedKinds))
	copy(kinds, supportedKinds)
	return kinds
}

// SupportedLabels returns the request labels of all bindable entity kinds
func SupportedLabels() []string {
	labels := make([]string, len(supportedKinds))
	for i, k := range supportedKinds {
		labels[i] = k.Label()
	}
	return labels
}

// ParseEntityKind returns the kind for a request label
func ParseEntityKind(label string) (EntityKind, bool) {
	for _, k := range supportedKinds {
		if string(k) == label {
			return k, true
		}
	}
	return "", false
}

// Label returns the stable per-type label ("model type")
func (k EntityKind) Label() string {
	return string(k)
}

// Table returns the underlying table the change permission is checked against
func (k EntityKind) Table() string {
	switch k {
	case EntityPart:
		return "part_part"
	case EntityStockItem:
		return "stock_stockitem"
	case EntityStockLocation:
		return "stock_stocklocation"
	case EntitySupplierPart:
		return "company_supplierpart"
	default:
		return ""
	}
}

// Target is a bindable entity instance. The barcode binding lives on the
// entity itself and is mutated only through AssignBarcode/UnassignBarcode.
type Target struct {
	Kind        EntityKind
	PK          uint64
	BarcodeData string
	BarcodeHash Hash
}

// AssignBarcode binds a custom barcode to the entity
func (t *Target) AssignBarcode(hash Hash, data string) {
	t.BarcodeHash = hash
	t.BarcodeData = data
}

// UnassignBarcode clears the custom barcode binding
func (t *Target) UnassignBarcode() {
	t.BarcodeHash = ""
	t.BarcodeData = ""
}

// HasBarcode reports whether a custom barcode is bound
func (t *Target) HasBarcode() bool {
	return t.BarcodeHash != ""
}

// TargetRepository loads and persists bindable entities.
// Lookups return shared.ErrNotFound when no row matches.
type TargetRepository interface {
	FindByKey(ctx context.Context, kind EntityKind, pk uint64) (*Target, error)
	FindByBarcodeHash(ctx context.Context, hash Hash) (*Target, error)
	// SaveBarcode persists the barcode columns of the target atomically
	SaveBarcode(ctx context.Context, target *Target) error
}

// Actor is the authenticated user issuing a request
type Actor struct {
	UserID      string
	Username    string
	Permissions []string
	Superuser   bool
}

// PermissionChecker answers table-level permission questions
type PermissionChecker interface {
	CanChange(ctx context.Context, actor Actor, table string) bool
}
