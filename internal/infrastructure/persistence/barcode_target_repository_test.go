package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/barcode/internal/domain/barcode"
	"github.com/erp/barcode/internal/domain/shared"
	"github.com/erp/barcode/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var barcodeRowColumns = []string{"id", "barcode_data", "barcode_hash"}

func TestGormBarcodeTargetRepository_FindByKey(t *testing.T) {
	t.Run("finds part by primary key", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormBarcodeTargetRepository(gormDB)

		mock.ExpectQuery(`SELECT .* FROM "part_part" WHERE id = \$1 LIMIT .*`).
			WithArgs(uint64(7), 1).
			WillReturnRows(sqlmock.NewRows(barcodeRowColumns).AddRow(7, "ABC-123", "hash-abc"))

		target, err := repo.FindByKey(context.Background(), barcode.EntityPart, 7)

		require.NoError(t, err)
		assert.Equal(t, barcode.EntityPart, target.Kind)
		assert.Equal(t, uint64(7), target.PK)
		assert.Equal(t, "ABC-123", target.BarcodeData)
		assert.Equal(t, barcode.Hash("hash-abc"), target.BarcodeHash)
		assert.True(t, target.HasBarcode())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing row to ErrNotFound", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormBarcodeTargetRepository(gormDB)

		mock.ExpectQuery(`SELECT .* FROM "stock_stocklocation" WHERE id = \$1 LIMIT .*`).
			WithArgs(uint64(99), 1).
			WillReturnError(gorm.ErrRecordNotFound)

		target, err := repo.FindByKey(context.Background(), barcode.EntityStockLocation, 99)

		assert.Nil(t, target)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates storage faults", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormBarcodeTargetRepository(gormDB)

		mock.ExpectQuery(`SELECT .* FROM "stock_stockitem"`).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.FindByKey(context.Background(), barcode.EntityStockItem, 1)

		require.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("rejects unknown kind without querying", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormBarcodeTargetRepository(gormDB)

		_, err := repo.FindByKey(context.Background(), barcode.EntityKind("salesorder"), 1)

		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBarcodeTargetRepository_FindByBarcodeHash(t *testing.T) {
	t.Run("searches tables in kind order until a match", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormBarcodeTargetRepository(gormDB)

		mock.ExpectQuery(`SELECT .* FROM "part_part" WHERE barcode_hash = \$1`).
			WithArgs("h1", 1).
			WillReturnRows(sqlmock.NewRows(barcodeRowColumns))
		mock.ExpectQuery(`SELECT .* FROM "stock_stockitem" WHERE barcode_hash = \$1`).
			WithArgs("h1", 1).
			WillReturnRows(sqlmock.NewRows(barcodeRowColumns).AddRow(12, "XYZ", "h1"))

		target, err := repo.FindByBarcodeHash(context.Background(), barcode.Hash("h1"))

		require.NoError(t, err)
		assert.Equal(t, barcode.EntityStockItem, target.Kind)
		assert.Equal(t, uint64(12), target.PK)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when no table matches", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormBarcodeTargetRepository(gormDB)

		for _, kind := range barcode.SupportedKinds() {
			mock.ExpectQuery(`SELECT .* FROM "` + kind.Table() + `" WHERE barcode_hash = \$1`).
				WillReturnRows(sqlmock.NewRows(barcodeRowColumns))
		}

		_, err := repo.FindByBarcodeHash(context.Background(), barcode.Hash("unknown"))

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty hash never matches", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormBarcodeTargetRepository(gormDB)

		_, err := repo.FindByBarcodeHash(context.Background(), "")

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stops on storage fault", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormBarcodeTargetRepository(gormDB)

		mock.ExpectQuery(`SELECT .* FROM "part_part"`).
			WillReturnError(errors.New("deadlock detected"))

		_, err := repo.FindByBarcodeHash(context.Background(), barcode.Hash("h1"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "part_part")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBarcodeTargetRepository_SaveBarcode(t *testing.T) {
	t.Run("updates barcode columns", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormBarcodeTargetRepository(gormDB)

		mock.ExpectExec(`UPDATE "company_supplierpart" SET .* WHERE id = \$4`).
			WithArgs("SKU-1", "h-sku", sqlmock.AnyArg(), uint64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		target := &barcode.Target{Kind: barcode.EntitySupplierPart, PK: 3}
		target.AssignBarcode("h-sku", "SKU-1")

		require.NoError(t, repo.SaveBarcode(context.Background(), target))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when the row is gone", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormBarcodeTargetRepository(gormDB)

		mock.ExpectExec(`UPDATE "part_part" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveBarcode(context.Background(), &barcode.Target{Kind: barcode.EntityPart, PK: 4})

		assert.Equal(t, shared.ErrNotFound, err)
	})

	t.Run("wraps storage faults", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormBarcodeTargetRepository(gormDB)

		fault := errors.New("disk full")
		mock.ExpectExec(`UPDATE "part_part" SET`).WillReturnError(fault)

		err := repo.SaveBarcode(context.Background(), &barcode.Target{Kind: barcode.EntityPart, PK: 4})

		assert.ErrorIs(t, err, fault)
	})

	t.Run("rejects nil target", func(t *testing.T) {
		repo := NewGormBarcodeTargetRepository(nil)
		assert.Equal(t, shared.ErrInvalidInput, repo.SaveBarcode(context.Background(), nil))
	})
}

func TestGormBarcodeTargetRepository_SQLiteRoundTrip(t *testing.T) {
	db := newSQLiteDatabase(t)
	repo := NewGormBarcodeTargetRepository(db.DB)
	ctx := context.Background()

	location := &models.StockLocationModel{Name: "Shelf A", Pathstring: "Warehouse/Shelf A"}
	require.NoError(t, db.DB.Create(location).Error)

	target, err := repo.FindByKey(ctx, barcode.EntityStockLocation, location.ID)
	require.NoError(t, err)
	assert.False(t, target.HasBarcode())

	target.AssignBarcode("loc-hash", "LOC-A")
	require.NoError(t, repo.SaveBarcode(ctx, target))

	found, err := repo.FindByBarcodeHash(ctx, "loc-hash")
	require.NoError(t, err)
	assert.Equal(t, barcode.EntityStockLocation, found.Kind)
	assert.Equal(t, location.ID, found.PK)
	assert.Equal(t, "LOC-A", found.BarcodeData)

	found.UnassignBarcode()
	require.NoError(t, repo.SaveBarcode(ctx, found))

	_, err = repo.FindByBarcodeHash(ctx, "loc-hash")
	assert.Equal(t, shared.ErrNotFound, err)
}
