package models

import (
	"time"

	"github.com/erp/barcode/internal/domain/barcode"
	"github.com/shopspring/decimal"
)

// BaseModel provides common persistence fields for all models
type BaseModel struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BarcodeColumns are the custom barcode columns shared by every bindable table.
// An empty hash means no binding.
type BarcodeColumns struct {
	BarcodeData string `gorm:"type:text;not null;default:''"`
	BarcodeHash string `gorm:"type:varchar(128);not null;default:'';index"`
}

// BarcodeRow is the projection read from any bindable table
type BarcodeRow struct {
	ID uint64
	BarcodeColumns
}

// ToTarget converts the projection to a domain target of the given kind
func (r *BarcodeRow) ToTarget(kind barcode.EntityKind) *barcode.Target {
	return &barcode.Target{
		Kind:        kind,
		PK:          r.ID,
		BarcodeData: r.BarcodeData,
		BarcodeHash: barcode.Hash(r.BarcodeHash),
	}
}

// PartModel is the persistence model for parts
type PartModel struct {
	BaseModel
	BarcodeColumns
	Name        string `gorm:"type:varchar(100);not null"`
	Description string `gorm:"type:varchar(250)"`
}

// TableName returns the table name for GORM
func (PartModel) TableName() string {
	return barcode.EntityPart.Table()
}

// StockItemModel is the persistence model for stock items
type StockItemModel struct {
	BaseModel
	BarcodeColumns
	PartID     uint64          `gorm:"not null;index"`
	LocationID *uint64         `gorm:"index"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (StockItemModel) TableName() string {
	return barcode.EntityStockItem.Table()
}

// StockLocationModel is the persistence model for stock locations
type StockLocationModel struct {
	BaseModel
	BarcodeColumns
	Name       string `gorm:"type:varchar(100);not null"`
	Pathstring string `gorm:"type:varchar(250)"`
}

// TableName returns the table name for GORM
func (StockLocationModel) TableName() string {
	return barcode.EntityStockLocation.Table()
}

// ToDomain converts the model to a domain stock location
func (m *StockLocationModel) ToDomain() *barcode.StockLocation {
	return &barcode.StockLocation{
		ID:         m.ID,
		Name:       m.Name,
		Pathstring: m.Pathstring,
	}
}

// SupplierPartModel is the persistence model for supplier parts
type SupplierPartModel struct {
	BaseModel
	BarcodeColumns
	PartID     uint64 `gorm:"not null;index"`
	SupplierID uint64 `gorm:"not null;index"`
	SKU        string `gorm:"column:sku;type:varchar(100);not null;index"`
}

// TableName returns the table name for GORM
func (SupplierPartModel) TableName() string {
	return barcode.EntitySupplierPart.Table()
}

// ToDomain converts the model to a domain supplier part
func (m *SupplierPartModel) ToDomain() *barcode.SupplierPart {
	return &barcode.SupplierPart{
		ID:         m.ID,
		SKU:        m.SKU,
		PartID:     m.PartID,
		SupplierID: m.SupplierID,
	}
}

// PurchaseOrderModel is the persistence model for purchase orders
type PurchaseOrderModel struct {
	BaseModel
	Reference  string                      `gorm:"type:varchar(64);not null;uniqueIndex"`
	SupplierID uint64                      `gorm:"not null;index"`
	Status     barcode.PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'pending'"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "order_purchaseorder"
}

// ToDomain converts the model to a domain purchase order
func (m *PurchaseOrderModel) ToDomain() *barcode.PurchaseOrder {
	return &barcode.PurchaseOrder{
		ID:         m.ID,
		Reference:  m.Reference,
		SupplierID: m.SupplierID,
		Status:     m.Status,
	}
}

// PurchaseOrderLineModel is the persistence model for purchase order lines
type PurchaseOrderLineModel struct {
	BaseModel
	OrderID        uint64          `gorm:"not null;index"`
	SupplierPartID uint64          `gorm:"not null;index"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Received       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (PurchaseOrderLineModel) TableName() string {
	return "order_purchaseorderlineitem"
}

// ToDomain converts the model to a domain purchase order line
func (m *PurchaseOrderLineModel) ToDomain() *barcode.PurchaseOrderLine {
	return &barcode.PurchaseOrderLine{
		ID:             m.ID,
		OrderID:        m.OrderID,
		SupplierPartID: m.SupplierPartID,
		Quantity:       m.Quantity,
		Received:       m.Received,
	}
}

// All returns every model, in dependency order, for schema creation on
// databases not managed by SQL migrations
func All() []any {
	return []any{
		&PartModel{},
		&StockLocationModel{},
		&StockItemModel{},
		&SupplierPartModel{},
		&PurchaseOrderModel{},
		&PurchaseOrderLineModel{},
	}
}
