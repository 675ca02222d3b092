package barcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := NewPermissionError("You do not have the required permissions for stock_stockitem")
	wrapped := fmt.Errorf("assign: %w", err)

	assert.True(t, errors.Is(wrapped, ErrPermission))
	assert.False(t, errors.Is(wrapped, ErrValidation))

	var be *Error
	assert.True(t, errors.As(wrapped, &be))
	assert.Equal(t, KindPermission, be.Kind)
}

func TestNewHandlerError_UsesOutcomeMessage(t *testing.T) {
	scan := &ResolvedScan{
		Status:  StatusError,
		Plugin:  "SupplierBarcode",
		Outcome: Failure("Malformed supplier barcode", nil),
	}

	err := NewHandlerError(scan)

	assert.Equal(t, "Malformed supplier barcode", err.Error())
	assert.Same(t, scan, err.Scan)
	assert.ErrorIs(t, err, ErrHandler)
}

func TestOutcome_Tags(t *testing.T) {
	assert.True(t, Match(nil).IsMatch())
	assert.NotNil(t, Match(nil).Fields)
	assert.False(t, Failure("nope", nil).IsMatch())

	var none *Outcome
	assert.False(t, none.IsMatch())
}

func TestResolvedScan_FieldsNeverNil(t *testing.T) {
	var scan *ResolvedScan
	assert.NotNil(t, scan.Fields())
	assert.False(t, scan.Succeeded())

	scan = &ResolvedScan{Status: StatusSuccess, Outcome: Match(map[string]any{"part": EntityRef(3)})}
	assert.True(t, scan.Succeeded())
	assert.Equal(t, map[string]any{"pk": uint64(3)}, scan.Fields()["part"])
}

func TestEntityKind(t *testing.T) {
	kind, ok := ParseEntityKind("stockitem")
	assert.True(t, ok)
	assert.Equal(t, EntityStockItem, kind)
	assert.Equal(t, "stock_stockitem", kind.Table())

	_, ok = ParseEntityKind("salesorder")
	assert.False(t, ok)

	assert.Equal(t, []string{"part", "stockitem", "stocklocation", "supplierpart"}, SupportedLabels())
}

func TestTarget_AssignUnassign(t *testing.T) {
	target := &Target{Kind: EntityPart, PK: 1}
	assert.False(t, target.HasBarcode())

	target.AssignBarcode("abc", "RAW")
	assert.True(t, target.HasBarcode())
	assert.Equal(t, "RAW", target.BarcodeData)

	target.UnassignBarcode()
	assert.False(t, target.HasBarcode())
	assert.Empty(t, target.BarcodeData)
}

func TestPurchaseOrderLine_Outstanding(t *testing.T) {
	line := &PurchaseOrderLine{
		Quantity: decimal.NewFromInt(10),
		Received: decimal.NewFromInt(4),
	}
	assert.True(t, line.Outstanding().Equal(decimal.NewFromInt(6)))
	assert.False(t, line.IsFullyReceived())

	line.Received = decimal.NewFromInt(12)
	assert.True(t, line.Outstanding().IsZero())
	assert.True(t, line.IsFullyReceived())
}

func TestHandlerKind(t *testing.T) {
	assert.True(t, HandlerKindInternal.FirstParty())
	assert.False(t, HandlerKindSupplier.FirstParty())
	assert.Equal(t, "third-party", HandlerKindThirdParty.String())
}
