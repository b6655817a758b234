package service

import (
	"context"
	"errors"
	"sort"

	"github.com/flower-vendor/internal/logger"
	"github.com/flower-vendor/internal/metrics"
	"github.com/flower-vendor/internal/models"
	"github.com/flower-vendor/internal/repository"

	"gorm.io/gorm"
)

// RecomputeGlobalQuantity 根据台账快照计算商品全局库存，只统计属于该商品的行，结果不小于 0
func RecomputeGlobalQuantity(productID uint, snapshot []models.NurseryInventory) int {
	total := 0
	for _, row := range snapshot {
		if row.ProductID != productID {
			continue
		}
		total += row.Quantity
	}
	if total < 0 {
		return 0
	}
	return total
}

// InventoryService 库存台账服务
type InventoryService struct {
	db            *gorm.DB
	nurseryRepo   repository.NurseryRepository
	productRepo   repository.ProductRepository
	ledgerRepo    repository.NurseryInventoryRepository
	inventoryRepo repository.InventoryRepository
	metrics       *metrics.FulfillmentMetrics
}

// NewInventoryService 创建库存台账服务
func NewInventoryService(
	db *gorm.DB,
	nurseryRepo repository.NurseryRepository,
	productRepo repository.ProductRepository,
	ledgerRepo repository.NurseryInventoryRepository,
	inventoryRepo repository.InventoryRepository,
	m *metrics.FulfillmentMetrics,
) *InventoryService {
	return &InventoryService{
		db:            db,
		nurseryRepo:   nurseryRepo,
		productRepo:   productRepo,
		ledgerRepo:    ledgerRepo,
		inventoryRepo: inventoryRepo,
		metrics:       m,
	}
}

// UpsertNurseryStock 设置苗圃商品库存为指定数量，并在同一事务内重算全局库存
func (s *InventoryService) UpsertNurseryStock(ctx context.Context, nurseryID, productID uint, quantity int) (*models.NurseryInventory, error) {
	if quantity < 0 {
		return nil, ErrStockQuantityInvalid
	}
	nursery, err := s.nurseryRepo.GetByID(nurseryID)
	if err != nil {
		return nil, err
	}
	if nursery == nil {
		return nil, ErrNurseryNotFound
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	var row *models.NurseryInventory
	var global int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		row, txErr = s.ledgerRepo.WithTx(tx).Upsert(nurseryID, productID, quantity)
		if txErr != nil {
			return txErr
		}
		global, txErr = s.RecomputeGlobalInventory(tx, productID)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	row.ProductName = product.Name
	s.metrics.IncStockUpsert()
	logger.Infow("nursery_stock_upserted",
		"nursery_id", nurseryID,
		"product_id", productID,
		"quantity", quantity,
		"global_quantity", global,
	)
	return row, nil
}

// RecomputeGlobalInventory 在给定事务内按台账重算并写入商品全局库存
func (s *InventoryService) RecomputeGlobalInventory(tx *gorm.DB, productID uint) (int, error) {
	if tx == nil {
		return 0, errors.New("recompute requires a transaction")
	}
	snapshot, err := s.ledgerRepo.WithTx(tx).ListByProduct(productID)
	if err != nil {
		return 0, err
	}
	quantity := RecomputeGlobalQuantity(productID, snapshot)
	if _, _, err := s.inventoryRepo.WithTx(tx).SetQuantity(productID, quantity); err != nil {
		return 0, err
	}
	return quantity, nil
}

// ListNurseryStock 列出苗圃库存（附带商品名称）
func (s *InventoryService) ListNurseryStock(ctx context.Context, nurseryID uint) ([]models.NurseryInventory, error) {
	nursery, err := s.nurseryRepo.GetByID(nurseryID)
	if err != nil {
		return nil, err
	}
	if nursery == nil {
		return nil, ErrNurseryNotFound
	}
	rows, err := s.ledgerRepo.WithTx(s.db.WithContext(ctx)).ListByNursery(nurseryID)
	if err != nil {
		return nil, err
	}
	productIDs := make([]uint, 0, len(rows))
	for _, row := range rows {
		productIDs = append(productIDs, row.ProductID)
	}
	products, err := s.productRepo.ListByIDs(productIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(products))
	for _, product := range products {
		names[product.ID] = product.Name
	}
	for i := range rows {
		rows[i].ProductName = names[rows[i].ProductID]
	}
	return rows, nil
}

// GetGlobalQuantity 获取商品全局库存，无记录时为 0
func (s *InventoryService) GetGlobalQuantity(productID uint) (int, error) {
	inv, err := s.inventoryRepo.GetByProductID(productID)
	if err != nil {
		return 0, err
	}
	if inv == nil {
		return 0, nil
	}
	return inv.Quantity, nil
}

// ReconcileAll 重算全部商品的全局库存，返回被修正的行数
func (s *InventoryService) ReconcileAll(ctx context.Context) (int, error) {
	ledgerProductIDs, err := s.ledgerRepo.ListProductIDs()
	if err != nil {
		return 0, err
	}
	globals, err := s.inventoryRepo.List()
	if err != nil {
		return 0, err
	}
	productIDs := append([]uint{}, ledgerProductIDs...)
	for _, row := range globals {
		productIDs = append(productIDs, row.ProductID)
	}
	return s.ReconcileProducts(ctx, productIDs)
}

// ReconcileProducts 按台账重算指定商品的全局库存，返回被修正的行数
func (s *InventoryService) ReconcileProducts(ctx context.Context, productIDs []uint) (int, error) {
	ids := make([]uint, 0, len(productIDs))
	seen := make(map[uint]struct{}, len(productIDs))
	for _, id := range productIDs {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	corrected := 0
	for _, productID := range ids {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			snapshot, err := s.ledgerRepo.WithTx(tx).ListByProduct(productID)
			if err != nil {
				return err
			}
			_, changed, err := s.inventoryRepo.WithTx(tx).SetQuantity(productID, RecomputeGlobalQuantity(productID, snapshot))
			if err != nil {
				return err
			}
			if changed {
				corrected++
			}
			return nil
		})
		if err != nil {
			return corrected, err
		}
	}
	s.metrics.AddReconcileCorrections(corrected)
	if corrected > 0 {
		logger.Warnw("global_inventory_reconciled", "products", len(ids), "corrected", corrected)
	}
	return corrected, nil
}
