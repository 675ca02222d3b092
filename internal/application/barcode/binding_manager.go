package barcode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/barcode/internal/domain/barcode"
	"github.com/erp/barcode/internal/domain/shared"
	"github.com/erp/barcode/internal/infrastructure/telemetry"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// AssignInput is a decoded barcode link request
type AssignInput struct {
	Barcode string
	// Labels holds the decoded request fields keyed by entity label
	Labels map[string]any
}

// AssignResult describes a successful barcode assignment
type AssignResult struct {
	Kind        barcode.EntityKind
	PK          uint64
	BarcodeData string
	BarcodeHash barcode.Hash
	Message     string
}

// UnassignInput is a decoded barcode unlink request
type UnassignInput struct {
	Labels map[string]any
}

// UnassignResult describes a successful barcode removal
type UnassignResult struct {
	Kind    barcode.EntityKind
	PK      uint64
	Message string
}

// BindingManager owns custom barcode bindings: a barcode hash maps to at
// most one entity, and barcodes already meaningful to the first-party
// handlers can never be bound.
type BindingManager struct {
	registry    barcode.HandlerRegistry
	targets     barcode.TargetRepository
	permissions barcode.PermissionChecker
	hasher      barcode.Hasher
	logger      *zap.Logger
}

// NewBindingManager creates a new BindingManager
func NewBindingManager(
	registry barcode.HandlerRegistry,
	targets barcode.TargetRepository,
	permissions barcode.PermissionChecker,
	hasher barcode.Hasher,
	logger *zap.Logger,
) *BindingManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BindingManager{
		registry:    registry,
		targets:     targets,
		permissions: permissions,
		hasher:      hasher,
		logger:      logger,
	}
}

// Assign binds the barcode to the single entity named in the request
func (m *BindingManager) Assign(ctx context.Context, input AssignInput, actor barcode.Actor) (*AssignResult, error) {
	if input.Barcode == "" {
		return nil, barcode.NewValidationError("barcode", msgMissingBarcode)
	}

	ctx, span := telemetry.StartOperation(ctx, "assign")
	defer span.End()

	hash := m.hasher.Hash(input.Barcode)

	// Only the built-in handlers decide whether the data already means something
	for _, h := range m.registry.WithCapability(barcode.CapabilityGenericScan, true) {
		outcome, err := h.Scan(ctx, input.Barcode)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("assign: handler %s failed: %w", h.Name(), err)
		}
		if outcome.IsMatch() {
			scan := chainResult{handler: h, outcome: outcome}.resolved(input.Barcode, hash)
			err := barcode.NewValidationError("", msgMatchesExisting).WithScan(scan)
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	kind, err := singleLabel(input.Labels)
	if err != nil {
		return nil, err
	}

	if err := m.authorize(ctx, actor, kind); err != nil {
		return nil, err
	}

	target, err := m.lookup(ctx, kind, input.Labels[kind.Label()])
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, barcode.NewValidationError("", fmt.Sprintf(msgNoMatchingInstance, kind.Label()))
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	target.AssignBarcode(hash, input.Barcode)
	if err := m.targets.SaveBarcode(ctx, target); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("assign barcode to %s %d: %w", kind, target.PK, err)
	}

	telemetry.RecordTarget(span, kind, target.PK)
	m.logger.Info("barcode assigned",
		zap.String("label", kind.Label()),
		zap.Uint64("pk", target.PK),
		zap.String("barcode_hash", hash.String()),
		zap.String("user_id", actor.UserID),
	)

	return &AssignResult{
		Kind:        kind,
		PK:          target.PK,
		BarcodeData: input.Barcode,
		BarcodeHash: hash,
		Message:     fmt.Sprintf(msgAssigned, kind.Label()),
	}, nil
}

// Unassign clears the custom barcode of the single entity named in the request
func (m *BindingManager) Unassign(ctx context.Context, input UnassignInput, actor barcode.Actor) (*UnassignResult, error) {
	kind, err := singleLabel(input.Labels)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartOperation(ctx, "unassign")
	defer span.End()

	if err := m.authorize(ctx, actor, kind); err != nil {
		return nil, err
	}

	target, err := m.lookup(ctx, kind, input.Labels[kind.Label()])
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, barcode.NewValidationError(kind.Label(), msgNoMatchForValue)
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	target.UnassignBarcode()
	if err := m.targets.SaveBarcode(ctx, target); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("unassign barcode from %s %d: %w", kind, target.PK, err)
	}

	telemetry.RecordTarget(span, kind, target.PK)
	m.logger.Info("barcode unassigned",
		zap.String("label", kind.Label()),
		zap.Uint64("pk", target.PK),
		zap.String("user_id", actor.UserID),
	)

	return &UnassignResult{
		Kind:    kind,
		PK:      target.PK,
		Message: fmt.Sprintf(msgUnassigned, kind.Label()),
	}, nil
}

// authorize checks the table-level change permission for the entity kind
func (m *BindingManager) authorize(ctx context.Context, actor barcode.Actor, kind barcode.EntityKind) error {
	table := kind.Table()
	if !m.permissions.CanChange(ctx, actor, table) {
		return barcode.NewPermissionError(fmt.Sprintf(msgPermissionDenied, table))
	}
	return nil
}

// lookup loads the target; malformed keys are reported as not found
func (m *BindingManager) lookup(ctx context.Context, kind barcode.EntityKind, raw any) (*barcode.Target, error) {
	pk, ok := parseKey(raw)
	if !ok {
		return nil, shared.ErrNotFound
	}
	return m.targets.FindByKey(ctx, kind, pk)
}

// singleLabel returns the one supported entity label present in the request
func singleLabel(fields map[string]any) (barcode.EntityKind, error) {
	labels := strings.Join(barcode.SupportedLabels(), ", ")

	matched := lo.Filter(barcode.SupportedKinds(), func(k barcode.EntityKind, _ int) bool {
		_, ok := fields[k.Label()]
		return ok
	})

	switch len(matched) {
	case 0:
		return "", barcode.NewValidationError("", fmt.Sprintf(msgMissingLabel, labels))
	case 1:
		return matched[0], nil
	default:
		return "", barcode.NewValidationError("", fmt.Sprintf(msgConflictingLabels, labels))
	}
}

// parseKey coerces a decoded JSON value into a primary key
func parseKey(raw any) (uint64, bool) {
	switch v := raw.(type) {
	case bool, nil:
		return 0, false
	case string:
		raw = strings.TrimSpace(v)
	}
	pk, err := cast.ToUint64E(raw)
	if err != nil || pk == 0 {
		return 0, false
	}
	return pk, true
}
