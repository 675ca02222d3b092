package plugin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/barcode/internal/domain/barcode"
	"github.com/erp/barcode/internal/domain/shared"
	"go.uber.org/zap"
)

// SupplierHandlerName is the name of the built-in supplier barcode handler
const SupplierHandlerName = "SupplierBarcode"

// SupplierHandler treats the payload as a supplier SKU. On receive it locates
// the purchase order line the scanned item belongs to.
type SupplierHandler struct {
	parts  barcode.SupplierPartRepository
	orders barcode.PurchaseOrderRepository
	logger *zap.Logger
}

// NewSupplierHandler creates the built-in supplier barcode handler
func NewSupplierHandler(parts barcode.SupplierPartRepository, orders barcode.PurchaseOrderRepository, logger *zap.Logger) *SupplierHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupplierHandler{
		parts:  parts,
		orders: orders,
		logger: logger,
	}
}

// Name returns the handler name
func (h *SupplierHandler) Name() string {
	return SupplierHandlerName
}

// Kind returns HandlerKindSupplier
func (h *SupplierHandler) Kind() barcode.HandlerKind {
	return barcode.HandlerKindSupplier
}

// Scan matches a payload equal to a known supplier SKU
func (h *SupplierHandler) Scan(ctx context.Context, data string) (*barcode.Outcome, error) {
	part, err := h.supplierPart(ctx, data)
	if err != nil || part == nil {
		return nil, err
	}
	return barcode.Match(map[string]any{
		barcode.EntitySupplierPart.Label(): barcode.EntityRef(part.ID),
	}), nil
}

// ScanReceive resolves the purchase order line to receive the scanned item against
func (h *SupplierHandler) ScanReceive(ctx context.Context, data string, actor barcode.Actor, rc barcode.ReceiveContext) (*barcode.Outcome, error) {
	part, err := h.supplierPart(ctx, data)
	if err != nil || part == nil {
		return nil, err
	}

	partRef := map[string]any{
		barcode.EntitySupplierPart.Label(): barcode.EntityRef(part.ID),
	}

	var orderID *uint64
	if order := rc.PurchaseOrder; order != nil {
		if !order.IsOpen() {
			return barcode.Failure(fmt.Sprintf("Purchase order %s is not open", order.Reference), partRef), nil
		}
		if order.SupplierID != 0 && part.SupplierID != 0 && order.SupplierID != part.SupplierID {
			return barcode.Failure("Supplier part does not match purchase order supplier", partRef), nil
		}
		orderID = &order.ID
	}

	line, err := h.orders.FindOpenLine(ctx, part.ID, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return barcode.Failure(fmt.Sprintf("No pending purchase order line for '%s'", part.SKU), partRef), nil
		}
		return nil, err
	}

	fields := partRef
	fields["lineitem"] = map[string]any{
		"pk":             line.ID,
		"purchase_order": line.OrderID,
		"quantity":       line.Outstanding().String(),
		"received":       line.Received.String(),
	}
	if rc.Location != nil {
		fields["location"] = barcode.EntityRef(rc.Location.ID)
	}

	h.logger.Debug("supplier barcode resolved to purchase order line",
		zap.String("sku", part.SKU),
		zap.Uint64("line_id", line.ID),
		zap.String("user_id", actor.UserID),
	)
	return barcode.Match(fields), nil
}

// supplierPart returns nil without error when the SKU is unknown
func (h *SupplierHandler) supplierPart(ctx context.Context, data string) (*barcode.SupplierPart, error) {
	sku := strings.TrimSpace(data)
	if sku == "" {
		return nil, nil
	}
	part, err := h.parts.FindBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return part, nil
}

var _ barcode.ReceiveHandler = (*SupplierHandler)(nil)
