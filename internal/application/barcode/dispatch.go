package barcode

import (
	"context"
	"fmt"

	"github.com/erp/barcode/internal/domain/barcode"
	"go.uber.org/zap"
)

// User-facing messages
const (
	msgMissingBarcode       = "Missing barcode data"
	msgNoMatch              = "No match found for barcode data"
	msgMatchesExisting      = "Barcode matches existing item"
	msgMissingLabel         = "Missing data: provide one of '%s'"
	msgConflictingLabels    = "Multiple conflicting fields: '%s'"
	msgNoMatchingInstance   = "No matching %s instance found in database"
	msgNoMatchForValue      = "No match found for provided value"
	msgPermissionDenied     = "You do not have the required permissions for %s"
	msgAssigned             = "Assigned barcode to %s instance"
	msgUnassigned           = "Barcode unassigned from %s instance"
	msgInvalidPurchaseOrder = "Invalid purchase order"
	msgInvalidLocation      = "Invalid stock location"
	msgAlreadyReceived      = "Item has already been received"
	msgNoSupplierMatch      = "No match for supplier barcode"
)

// scanFunc invokes one handler of a chain
type scanFunc func(ctx context.Context, h barcode.Handler) (*barcode.Outcome, error)

// chainResult is what a pass over a handler chain settled on.
// A zero value means no handler produced an outcome.
type chainResult struct {
	handler barcode.Handler
	outcome *barcode.Outcome
}

func (r chainResult) found() bool {
	return r.outcome != nil
}

// resolved builds the result of the pass for the given payload
func (r chainResult) resolved(data string, hash barcode.Hash) *barcode.ResolvedScan {
	scan := &barcode.ResolvedScan{
		Status:      barcode.StatusError,
		BarcodeData: data,
		BarcodeHash: hash,
		Outcome:     r.outcome,
	}
	if r.handler != nil {
		scan.Plugin = r.handler.Name()
	}
	if r.outcome.IsMatch() {
		scan.Status = barcode.StatusSuccess
	}
	return scan
}

// runChain walks the handlers in order. The first match wins and stops the
// walk; the first error outcome is kept unless a later handler matches.
// Handler faults abort the pass.
func runChain(ctx context.Context, log *zap.Logger, op string, handlers []barcode.Handler, scan scanFunc) (chainResult, error) {
	var best chainResult

	for _, h := range handlers {
		outcome, err := scan(ctx, h)
		if err != nil {
			return chainResult{}, fmt.Errorf("%s: handler %s failed: %w", op, h.Name(), err)
		}
		if outcome == nil {
			continue
		}

		if outcome.IsMatch() {
			return chainResult{handler: h, outcome: outcome}, nil
		}

		log.Info("barcode handler returned an error",
			zap.String("operation", op),
			zap.String("plugin", h.Name()),
			zap.String("error", outcome.Message),
		)
		if !best.found() {
			best = chainResult{handler: h, outcome: outcome}
		}
	}

	return best, nil
}

// finish converts a chain result into the resolver response
func finish(result chainResult, data string, hash barcode.Hash, noMatchMessage string) (*barcode.ResolvedScan, error) {
	scan := result.resolved(data, hash)

	switch {
	case !result.found():
		scan.Outcome = barcode.Failure(noMatchMessage, nil)
		return nil, barcode.NewNoMatchError(noMatchMessage, scan)
	case !result.outcome.IsMatch():
		return nil, barcode.NewHandlerError(scan)
	}

	return scan, nil
}
