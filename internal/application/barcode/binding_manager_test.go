package barcode

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/barcode/internal/domain/barcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testActor = barcode.Actor{UserID: "u-1", Username: "stocktaker"}

func newTestBindingManager(targets *memTargets, handlers ...barcode.Handler) *BindingManager {
	registry := newStubRegistry().with(barcode.CapabilityGenericScan, handlers...)
	return NewBindingManager(registry, targets, allowAll{}, stubHasher{}, nil)
}

func TestBindingManager_Assign_Success(t *testing.T) {
	targets := newMemTargets().add(barcode.EntityStockItem, 42)
	manager := newTestBindingManager(targets)

	result, err := manager.Assign(context.Background(), AssignInput{
		Barcode: "VENDOR-XYZ",
		Labels:  map[string]any{"stockitem": float64(42)},
	}, testActor)

	require.NoError(t, err)
	assert.Equal(t, barcode.EntityStockItem, result.Kind)
	assert.Equal(t, uint64(42), result.PK)
	assert.Equal(t, "VENDOR-XYZ", result.BarcodeData)
	assert.Equal(t, stubHasher{}.Hash("VENDOR-XYZ"), result.BarcodeHash)
	assert.Equal(t, "Assigned barcode to stockitem instance", result.Message)

	stored, err := targets.FindByKey(context.Background(), barcode.EntityStockItem, 42)
	require.NoError(t, err)
	assert.Equal(t, stubHasher{}.Hash("VENDOR-XYZ"), stored.BarcodeHash)
	assert.Equal(t, "VENDOR-XYZ", stored.BarcodeData)
}

func TestBindingManager_Assign_MissingBarcode(t *testing.T) {
	manager := newTestBindingManager(newMemTargets())

	_, err := manager.Assign(context.Background(), AssignInput{
		Labels: map[string]any{"part": 1},
	}, testActor)

	var be *barcode.Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, barcode.KindValidation, be.Kind)
	assert.Equal(t, "barcode", be.Field)
}

func TestBindingManager_Assign_BarcodeMatchesExistingItem(t *testing.T) {
	targets := newMemTargets().add(barcode.EntityStockItem, 42)
	internal := newSpy("InvenTreeBarcode", barcode.HandlerKindInternal, barcode.Match(map[string]any{
		"part": barcode.EntityRef(5),
	}))
	manager := newTestBindingManager(targets, internal)

	_, err := manager.Assign(context.Background(), AssignInput{
		Barcode: "{\"part\": 5}",
		Labels:  map[string]any{"stockitem": 42},
	}, testActor)

	var be *barcode.Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, barcode.KindValidation, be.Kind)
	assert.Equal(t, "Barcode matches existing item", be.Message)
	require.NotNil(t, be.Scan)
	assert.Equal(t, "InvenTreeBarcode", be.Scan.Plugin)
	assert.Equal(t, "{\"part\": 5}", be.Scan.BarcodeData)
	assert.Equal(t, 0, targets.Saves())
}

func TestBindingManager_Assign_IgnoresThirdPartyHandlers(t *testing.T) {
	targets := newMemTargets().add(barcode.EntityPart, 3)
	thirdParty := newSpy("DigiKeyBarcode", barcode.HandlerKindSupplier, barcode.Match(nil))
	manager := newTestBindingManager(targets, thirdParty)

	result, err := manager.Assign(context.Background(), AssignInput{
		Barcode: "DK-1234",
		Labels:  map[string]any{"part": "3"},
	}, testActor)

	require.NoError(t, err)
	assert.Equal(t, uint64(3), result.PK)
	assert.Equal(t, 0, thirdParty.Calls())
}

func TestBindingManager_Assign_LabelErrors(t *testing.T) {
	tests := []struct {
		name    string
		labels  map[string]any
		message string
	}{
		{
			name:    "no label",
			labels:  map[string]any{"salesorder": 1},
			message: "Missing data: provide one of 'part, stockitem, stocklocation, supplierpart'",
		},
		{
			name:    "conflicting labels",
			labels:  map[string]any{"part": 1, "stockitem": 2},
			message: "Multiple conflicting fields: 'part, stockitem, stocklocation, supplierpart'",
		},
		{
			name:    "unknown key",
			labels:  map[string]any{"part": 99},
			message: "No matching part instance found in database",
		},
		{
			name:    "malformed key",
			labels:  map[string]any{"part": "abc"},
			message: "No matching part instance found in database",
		},
		{
			name:    "negative key",
			labels:  map[string]any{"part": -1},
			message: "No matching part instance found in database",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			targets := newMemTargets().add(barcode.EntityPart, 1).add(barcode.EntityStockItem, 2)
			manager := newTestBindingManager(targets)

			_, err := manager.Assign(context.Background(), AssignInput{Barcode: "NEW", Labels: tt.labels}, testActor)

			var be *barcode.Error
			require.True(t, errors.As(err, &be))
			assert.Equal(t, barcode.KindValidation, be.Kind)
			assert.Equal(t, tt.message, be.Message)
			assert.Equal(t, 0, targets.Saves())
		})
	}
}

func TestBindingManager_Assign_PermissionDenied(t *testing.T) {
	targets := newMemTargets().add(barcode.EntityStockItem, 42)
	permissions := new(MockPermissionChecker)
	permissions.On("CanChange", mock.Anything, testActor, "stock_stockitem").Return(false)

	manager := NewBindingManager(newStubRegistry(), targets, permissions, stubHasher{}, nil)

	_, err := manager.Assign(context.Background(), AssignInput{
		Barcode: "VENDOR-XYZ",
		Labels:  map[string]any{"stockitem": 42},
	}, testActor)

	assert.ErrorIs(t, err, barcode.ErrPermission)
	assert.EqualError(t, err, "You do not have the required permissions for stock_stockitem")
	assert.Equal(t, 0, targets.Saves())
	permissions.AssertExpectations(t)
}

func TestBindingManager_Assign_StorageFault(t *testing.T) {
	targets := newMemTargets()
	manager := newTestBindingManager(targets)
	failing := &failingTargets{err: errors.New("deadlock detected")}
	manager.targets = failing

	_, err := manager.Assign(context.Background(), AssignInput{
		Barcode: "VENDOR-XYZ",
		Labels:  map[string]any{"stockitem": 42},
	}, testActor)

	require.Error(t, err)
	assert.ErrorIs(t, err, failing.err)
	var be *barcode.Error
	assert.False(t, errors.As(err, &be))
}

// Assigning an unknown payload makes it resolvable by the first-party chain,
// so binding it a second time to another entity is refused.
func TestBindingManager_Assign_SecondBindingRefused(t *testing.T) {
	targets := newMemTargets().add(barcode.EntityStockItem, 42).add(barcode.EntityPart, 8)
	internal := &hashLookupHandler{targets: targets, hasher: stubHasher{}}
	manager := newTestBindingManager(targets, internal)

	result, err := manager.Assign(context.Background(), AssignInput{
		Barcode: "ABC-UNKNOWN",
		Labels:  map[string]any{"stockitem": 42},
	}, testActor)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), result.PK)

	_, err = manager.Assign(context.Background(), AssignInput{
		Barcode: "ABC-UNKNOWN",
		Labels:  map[string]any{"part": 8},
	}, testActor)

	var be *barcode.Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "Barcode matches existing item", be.Message)
	assert.Equal(t, map[string]any{"stockitem": barcode.EntityRef(42)}, be.Scan.Fields())

	part, err := targets.FindByKey(context.Background(), barcode.EntityPart, 8)
	require.NoError(t, err)
	assert.False(t, part.HasBarcode())
}

func TestBindingManager_Unassign_Success(t *testing.T) {
	targets := newMemTargets().add(barcode.EntityStockLocation, 4)
	manager := newTestBindingManager(targets)
	_, err := manager.Assign(context.Background(), AssignInput{
		Barcode: "SHELF-A",
		Labels:  map[string]any{"stocklocation": 4},
	}, testActor)
	require.NoError(t, err)

	result, err := manager.Unassign(context.Background(), UnassignInput{
		Labels: map[string]any{"stocklocation": 4},
	}, testActor)

	require.NoError(t, err)
	assert.Equal(t, "Barcode unassigned from stocklocation instance", result.Message)
	stored, err := targets.FindByKey(context.Background(), barcode.EntityStockLocation, 4)
	require.NoError(t, err)
	assert.False(t, stored.HasBarcode())
}

func TestBindingManager_Unassign_Errors(t *testing.T) {
	tests := []struct {
		name    string
		labels  map[string]any
		field   string
		message string
	}{
		{
			name:    "no label",
			labels:  map[string]any{},
			message: "Missing data: provide one of 'part, stockitem, stocklocation, supplierpart'",
		},
		{
			name:    "multiple labels",
			labels:  map[string]any{"part": 1, "supplierpart": 1},
			message: "Multiple conflicting fields: 'part, stockitem, stocklocation, supplierpart'",
		},
		{
			name:    "no match",
			labels:  map[string]any{"supplierpart": 77},
			field:   "supplierpart",
			message: "No match found for provided value",
		},
		{
			name:    "malformed key",
			labels:  map[string]any{"supplierpart": "x1"},
			field:   "supplierpart",
			message: "No match found for provided value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			targets := newMemTargets().add(barcode.EntityPart, 1).add(barcode.EntitySupplierPart, 1)
			manager := newTestBindingManager(targets)

			_, err := manager.Unassign(context.Background(), UnassignInput{Labels: tt.labels}, testActor)

			var be *barcode.Error
			require.True(t, errors.As(err, &be))
			assert.Equal(t, barcode.KindValidation, be.Kind)
			assert.Equal(t, tt.field, be.Field)
			assert.Equal(t, tt.message, be.Message)
			assert.Equal(t, 0, targets.Saves(), "no mutation may be attempted")
		})
	}
}

func TestBindingManager_Unassign_PermissionDenied(t *testing.T) {
	targets := newMemTargets().add(barcode.EntityPart, 1)
	permissions := new(MockPermissionChecker)
	permissions.On("CanChange", mock.Anything, testActor, "part_part").Return(false)
	manager := NewBindingManager(newStubRegistry(), targets, permissions, stubHasher{}, nil)

	_, err := manager.Unassign(context.Background(), UnassignInput{
		Labels: map[string]any{"part": 1},
	}, testActor)

	assert.ErrorIs(t, err, barcode.ErrPermission)
	assert.Equal(t, 0, targets.Saves())
	permissions.AssertExpectations(t)
}

// failingTargets fails every call with the same error
type failingTargets struct {
	err error
}

func (f *failingTargets) FindByKey(ctx context.Context, kind barcode.EntityKind, pk uint64) (*barcode.Target, error) {
	return nil, f.err
}

func (f *failingTargets) FindByBarcodeHash(ctx context.Context, hash barcode.Hash) (*barcode.Target, error) {
	return nil, f.err
}

func (f *failingTargets) SaveBarcode(ctx context.Context, target *barcode.Target) error {
	return f.err
}
