package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/barcode/internal/domain/barcode"
	"github.com/erp/barcode/internal/domain/shared"
	"github.com/erp/barcode/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBarcodeTargetRepository implements barcode.TargetRepository over the
// bindable inventory tables using GORM
type GormBarcodeTargetRepository struct {
	db *gorm.DB
}

// NewGormBarcodeTargetRepository creates a new GormBarcodeTargetRepository
func NewGormBarcodeTargetRepository(db *gorm.DB) *GormBarcodeTargetRepository {
	return &GormBarcodeTargetRepository{db: db}
}

// FindByKey finds an entity of the given kind by primary key
func (r *GormBarcodeTargetRepository) FindByKey(ctx context.Context, kind barcode.EntityKind, pk uint64) (*barcode.Target, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	var row models.BarcodeRow
	if err := r.db.WithContext(ctx).
		Table(table).
		Select("id", "barcode_data", "barcode_hash").
		Where("id = ?", pk).
		Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToTarget(kind), nil
}

// FindByBarcodeHash finds the entity a custom barcode is bound to. Tables are
// searched in the enumeration order of barcode.SupportedKinds.
func (r *GormBarcodeTargetRepository) FindByBarcodeHash(ctx context.Context, hash barcode.Hash) (*barcode.Target, error) {
	if hash == "" {
		return nil, shared.ErrNotFound
	}

	for _, kind := range barcode.SupportedKinds() {
		var row models.BarcodeRow
		err := r.db.WithContext(ctx).
			Table(kind.Table()).
			Select("id", "barcode_data", "barcode_hash").
			Where("barcode_hash = ?", hash.String()).
			Take(&row).Error
		if err == nil {
			return row.ToTarget(kind), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to search %s by barcode hash: %w", kind.Table(), err)
		}
	}
	return nil, shared.ErrNotFound
}

// SaveBarcode writes the barcode columns of the target in a single UPDATE
func (r *GormBarcodeTargetRepository) SaveBarcode(ctx context.Context, target *barcode.Target) error {
	if target == nil {
		return shared.ErrInvalidInput
	}
	table, err := tableFor(target.Kind)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Table(table).
		Where("id = ?", target.PK).
		Updates(map[string]any{
			"barcode_data": target.BarcodeData,
			"barcode_hash": target.BarcodeHash.String(),
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save barcode for %s %d: %w", target.Kind, target.PK, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func tableFor(kind barcode.EntityKind) (string, error) {
	table := kind.Table()
	if table == "" {
		return "", fmt.Errorf("%w: unsupported entity kind %q", shared.ErrInvalidInput, kind)
	}
	return table, nil
}

var _ barcode.TargetRepository = (*GormBarcodeTargetRepository)(nil)
