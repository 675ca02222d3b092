package barcode

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/barcode/internal/domain/barcode"
	"github.com/erp/barcode/internal/domain/shared"
	"github.com/erp/barcode/internal/infrastructure/telemetry"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ReceiveInput is a decoded purchase order receive request
type ReceiveInput struct {
	Barcode         string
	PurchaseOrderID *uint64
	LocationID      *uint64
}

// ReceiveResolver resolves purchase order receiving actions from supplier
// barcodes. Barcodes the internal handler already knows are rejected as
// received before any supplier handler runs.
type ReceiveResolver struct {
	registry       barcode.HandlerRegistry
	orders         barcode.PurchaseOrderRepository
	locations      barcode.StockLocationRepository
	hasher         barcode.Hasher
	internalPlugin string
	logger         *zap.Logger
}

// ReceiveResolverOption is a functional option for ReceiveResolver
type ReceiveResolverOption func(*ReceiveResolver)

// WithInternalPlugin overrides the name of the internal handler consulted in phase one
func WithInternalPlugin(name string) ReceiveResolverOption {
	return func(r *ReceiveResolver) {
		if name != "" {
			r.internalPlugin = name
		}
	}
}

// NewReceiveResolver creates a new ReceiveResolver
func NewReceiveResolver(
	registry barcode.HandlerRegistry,
	orders barcode.PurchaseOrderRepository,
	locations barcode.StockLocationRepository,
	hasher barcode.Hasher,
	logger *zap.Logger,
	opts ...ReceiveResolverOption,
) *ReceiveResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &ReceiveResolver{
		registry:       registry,
		orders:         orders,
		locations:      locations,
		hasher:         hasher,
		internalPlugin: barcode.DefaultInternalHandlerName,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve checks that the barcode is not an internal item and then offers it
// to the supplier-scan handlers with the purchase order and location context
func (r *ReceiveResolver) Resolve(ctx context.Context, input ReceiveInput, actor barcode.Actor) (*barcode.ResolvedScan, error) {
	if input.Barcode == "" {
		return nil, barcode.NewValidationError("barcode", msgMissingBarcode)
	}

	ctx, span := telemetry.StartOperation(ctx, "po_receive")
	defer span.End()

	r.logger.Debug("receive: scanned barcode", zap.String("barcode", input.Barcode))

	rc, err := r.receiveContext(ctx, input)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	internal, ok := lo.Find(r.registry.WithCapability(barcode.CapabilityGenericScan, false), func(h barcode.Handler) bool {
		return h.Name() == r.internalPlugin
	})
	if !ok {
		err := fmt.Errorf("internal barcode handler %q is not registered", r.internalPlugin)
		telemetry.RecordError(span, err)
		return nil, err
	}

	known, err := internal.Scan(ctx, input.Barcode)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("po_receive: handler %s failed: %w", internal.Name(), err)
	}
	if known != nil {
		err := barcode.NewValidationError("", msgAlreadyReceived)
		telemetry.RecordError(span, err)
		return nil, err
	}

	suppliers := r.registry.WithCapability(barcode.CapabilitySupplierScan, false)
	result, err := runChain(ctx, r.logger, "po_receive", suppliers, func(ctx context.Context, h barcode.Handler) (*barcode.Outcome, error) {
		receiver, ok := h.(barcode.ReceiveHandler)
		if !ok {
			r.logger.Debug("handler does not support receiving", zap.String("plugin", h.Name()))
			return nil, nil
		}
		return receiver.ScanReceive(ctx, input.Barcode, actor, rc)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	scan, err := finish(result, input.Barcode, r.hasher.Hash(input.Barcode), msgNoSupplierMatch)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.RecordScan(span, scan)
	return scan, nil
}

// receiveContext resolves the optional purchase order and location references
func (r *ReceiveResolver) receiveContext(ctx context.Context, input ReceiveInput) (barcode.ReceiveContext, error) {
	var rc barcode.ReceiveContext

	if input.PurchaseOrderID != nil {
		order, err := r.orders.FindByID(ctx, *input.PurchaseOrderID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return rc, barcode.NewValidationError("purchase_order", msgInvalidPurchaseOrder)
			}
			return rc, fmt.Errorf("load purchase order %d: %w", *input.PurchaseOrderID, err)
		}
		rc.PurchaseOrder = order
	}

	if input.LocationID != nil {
		location, err := r.locations.FindByID(ctx, *input.LocationID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return rc, barcode.NewValidationError("location", msgInvalidLocation)
			}
			return rc, fmt.Errorf("load stock location %d: %w", *input.LocationID, err)
		}
		rc.Location = location
	}

	return rc, nil
}
