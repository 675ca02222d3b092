package barcode

import (
	"context"

	"github.com/erp/barcode/internal/domain/barcode"
	"github.com/erp/barcode/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ScanResolver resolves raw barcode data through the generic handler chain
type ScanResolver struct {
	registry barcode.HandlerRegistry
	hasher   barcode.Hasher
	logger   *zap.Logger
}

// NewScanResolver creates a new ScanResolver
func NewScanResolver(registry barcode.HandlerRegistry, hasher barcode.Hasher, logger *zap.Logger) *ScanResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanResolver{
		registry: registry,
		hasher:   hasher,
		logger:   logger,
	}
}

// Resolve runs the payload through every generic-scan handler in registry
// order and returns the winning outcome.
//
// A handler match stops the pass. An error outcome is remembered (first one
// wins) while later handlers still get a chance to match. When nothing
// recognizes the payload a NoMatch error is returned with no plugin set.
func (r *ScanResolver) Resolve(ctx context.Context, data string) (*barcode.ResolvedScan, error) {
	if data == "" {
		return nil, barcode.NewValidationError("barcode", msgMissingBarcode)
	}

	ctx, span := telemetry.StartOperation(ctx, "scan")
	defer span.End()

	handlers := r.registry.WithCapability(barcode.CapabilityGenericScan, false)
	result, err := runChain(ctx, r.logger, "scan", handlers, func(ctx context.Context, h barcode.Handler) (*barcode.Outcome, error) {
		return h.Scan(ctx, data)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	scan, err := finish(result, data, r.hasher.Hash(data), msgNoMatch)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.RecordScan(span, scan)
	return scan, nil
}
