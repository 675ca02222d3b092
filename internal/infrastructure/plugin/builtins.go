package plugin

import (
	"fmt"

	"github.com/erp/barcode/internal/domain/barcode"
	"go.uber.org/zap"
)

// Builtins holds the collaborators of the built-in handlers
type Builtins struct {
	Targets       barcode.TargetRepository
	SupplierParts barcode.SupplierPartRepository
	Orders        barcode.PurchaseOrderRepository
	Hasher        barcode.Hasher
	Logger        *zap.Logger

	// EnableSupplier registers the SKU based supplier handler
	EnableSupplier bool
}

// RegisterBuiltins registers the handlers shipped with the service
func RegisterBuiltins(r *Registry, b Builtins) error {
	internal := NewInternalHandler(b.Targets, b.Hasher, b.Logger)
	if err := r.Register(internal, barcode.CapabilityGenericScan); err != nil {
		return fmt.Errorf("register internal handler: %w", err)
	}

	if !b.EnableSupplier {
		return nil
	}

	supplier := NewSupplierHandler(b.SupplierParts, b.Orders, b.Logger)
	if err := r.Register(supplier, barcode.CapabilityGenericScan, barcode.CapabilitySupplierScan); err != nil {
		return fmt.Errorf("register supplier handler: %w", err)
	}
	return nil
}
