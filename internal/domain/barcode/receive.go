package barcode

import (
	"context"

	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus is the lifecycle state of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPending   PurchaseOrderStatus = "pending"
	PurchaseOrderStatusPlaced    PurchaseOrderStatus = "placed"
	PurchaseOrderStatusComplete  PurchaseOrderStatus = "complete"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
)

// PurchaseOrder is the order goods are received against
type PurchaseOrder struct {
	ID         uint64
	Reference  string
	SupplierID uint64
	Status     PurchaseOrderStatus
}

// IsOpen reports whether goods can still be received against the order
func (o *PurchaseOrder) IsOpen() bool {
	return o.Status == PurchaseOrderStatusPlaced
}

// PurchaseOrderLine is a single supplier part line of a purchase order
type PurchaseOrderLine struct {
	ID             uint64
	OrderID        uint64
	SupplierPartID uint64
	Quantity       decimal.Decimal
	Received       decimal.Decimal
}

// Outstanding returns the quantity still to be received
func (l *PurchaseOrderLine) Outstanding() decimal.Decimal {
	remaining := l.Quantity.Sub(l.Received)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// IsFullyReceived reports whether nothing is left to receive
func (l *PurchaseOrderLine) IsFullyReceived() bool {
	return !l.Outstanding().IsPositive()
}

// StockLocation is a destination for received stock
type StockLocation struct {
	ID         uint64
	Name       string
	Pathstring string
}

// SupplierPart is a part as sold by a specific supplier
type SupplierPart struct {
	ID         uint64
	SKU        string
	PartID     uint64
	SupplierID uint64
}

// PurchaseOrderRepository looks up purchase orders and their lines.
// Lookups return shared.ErrNotFound when no row matches.
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id uint64) (*PurchaseOrder, error)
	// FindOpenLine finds a line for the supplier part that still has quantity
	// outstanding on a placed order, optionally restricted to one order
	FindOpenLine(ctx context.Context, supplierPartID uint64, orderID *uint64) (*PurchaseOrderLine, error)
}

// StockLocationRepository looks up stock locations
type StockLocationRepository interface {
	FindByID(ctx context.Context, id uint64) (*StockLocation, error)
}

// SupplierPartRepository looks up supplier parts
type SupplierPartRepository interface {
	FindBySKU(ctx context.Context, sku string) (*SupplierPart, error)
}
