package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/erp/barcode/internal/domain/barcode"
	"github.com/erp/barcode/internal/domain/shared"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// InternalHandler recognizes the system's own barcodes: JSON objects of the
// form {"<label>": <pk>} and payloads bound to an entity as custom barcodes.
type InternalHandler struct {
	targets barcode.TargetRepository
	hasher  barcode.Hasher
	logger  *zap.Logger
}

// NewInternalHandler creates the built-in internal barcode handler
func NewInternalHandler(targets barcode.TargetRepository, hasher barcode.Hasher, logger *zap.Logger) *InternalHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InternalHandler{
		targets: targets,
		hasher:  hasher,
		logger:  logger,
	}
}

// Name returns the handler name
func (h *InternalHandler) Name() string {
	return barcode.DefaultInternalHandlerName
}

// Kind returns HandlerKindInternal
func (h *InternalHandler) Kind() barcode.HandlerKind {
	return barcode.HandlerKindInternal
}

// Scan matches the payload against internal references first and custom
// bindings second. It never reports an error outcome.
func (h *InternalHandler) Scan(ctx context.Context, data string) (*barcode.Outcome, error) {
	for _, ref := range decodeInternal(data) {
		target, err := h.targets.FindByKey(ctx, ref.kind, ref.pk)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return nil, err
		}
		return matched(target), nil
	}

	target, err := h.targets.FindByBarcodeHash(ctx, h.hasher.Hash(data))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	h.logger.Debug("custom barcode matched",
		zap.String("label", target.Kind.Label()),
		zap.Uint64("pk", target.PK),
	)
	return matched(target), nil
}

func matched(target *barcode.Target) *barcode.Outcome {
	return barcode.Match(map[string]any{
		target.Kind.Label(): barcode.EntityRef(target.PK),
	})
}

type internalRef struct {
	kind barcode.EntityKind
	pk   uint64
}

// decodeInternal extracts entity references from a JSON object payload,
// in entity kind order. Values may be numbers, numeric strings or {"pk": n}.
func decodeInternal(data string) []internalRef {
	trimmed := strings.TrimSpace(data)
	if !strings.HasPrefix(trimmed, "{") {
		return nil
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return nil
	}

	var refs []internalRef
	for _, kind := range barcode.SupportedKinds() {
		raw, ok := fields[kind.Label()]
		if !ok {
			continue
		}
		if nested, ok := raw.(map[string]any); ok {
			raw = nested["pk"]
		}
		if _, isBool := raw.(bool); isBool || raw == nil {
			continue
		}
		pk, err := cast.ToUint64E(raw)
		if err != nil || pk == 0 {
			continue
		}
		refs = append(refs, internalRef{kind: kind, pk: pk})
	}
	return refs
}

var _ barcode.Handler = (*InternalHandler)(nil)
