package persistence

import (
	"context"
	"errors"

	"github.com/erp/barcode/internal/domain/barcode"
	"github.com/erp/barcode/internal/domain/shared"
	"github.com/erp/barcode/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements barcode.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order by its ID
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uint64) (*barcode.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOpenLine finds the oldest line for a supplier part on a placed order
// that still has quantity outstanding. When orderID is set only lines of
// that order are considered.
func (r *GormPurchaseOrderRepository) FindOpenLine(ctx context.Context, supplierPartID uint64, orderID *uint64) (*barcode.PurchaseOrderLine, error) {
	query := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderLineModel{}).
		Joins("JOIN order_purchaseorder ON order_purchaseorder.id = order_purchaseorderlineitem.order_id").
		Where("order_purchaseorderlineitem.supplier_part_id = ?", supplierPartID).
		Where("order_purchaseorder.status = ?", barcode.PurchaseOrderStatusPlaced).
		Where("order_purchaseorderlineitem.received < order_purchaseorderlineitem.quantity")
	if orderID != nil {
		query = query.Where("order_purchaseorderlineitem.order_id = ?", *orderID)
	}

	var model models.PurchaseOrderLineModel
	if err := query.Order("order_purchaseorderlineitem.id ASC").Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

var _ barcode.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
