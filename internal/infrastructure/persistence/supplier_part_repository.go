package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/barcode/internal/domain/barcode"
	"github.com/erp/barcode/internal/domain/shared"
	"github.com/erp/barcode/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSupplierPartRepository implements barcode.SupplierPartRepository using GORM
type GormSupplierPartRepository struct {
	db *gorm.DB
}

// NewGormSupplierPartRepository creates a new GormSupplierPartRepository
func NewGormSupplierPartRepository(db *gorm.DB) *GormSupplierPartRepository {
	return &GormSupplierPartRepository{db: db}
}

// FindBySKU finds a supplier part by its exact SKU
func (r *GormSupplierPartRepository) FindBySKU(ctx context.Context, sku string) (*barcode.SupplierPart, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, shared.ErrNotFound
	}

	var model models.SupplierPartModel
	if err := r.db.WithContext(ctx).
		Where("sku = ?", sku).
		Order("id ASC").
		Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

var _ barcode.SupplierPartRepository = (*GormSupplierPartRepository)(nil)
