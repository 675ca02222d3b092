package persistence

import (
	"context"
	"errors"

	"github.com/erp/barcode/internal/domain/barcode"
	"github.com/erp/barcode/internal/domain/shared"
	"github.com/erp/barcode/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStockLocationRepository implements barcode.StockLocationRepository using GORM
type GormStockLocationRepository struct {
	db *gorm.DB
}

// NewGormStockLocationRepository creates a new GormStockLocationRepository
func NewGormStockLocationRepository(db *gorm.DB) *GormStockLocationRepository {
	return &GormStockLocationRepository{db: db}
}

// FindByID finds a stock location by its ID
func (r *GormStockLocationRepository) FindByID(ctx context.Context, id uint64) (*barcode.StockLocation, error) {
	var model models.StockLocationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

var _ barcode.StockLocationRepository = (*GormStockLocationRepository)(nil)
