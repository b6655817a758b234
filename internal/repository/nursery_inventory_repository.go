package repository

import (
	"errors"
	"sort"

	"github.com/flower-vendor/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NurseryInventoryRepository 苗圃库存台账数据访问接口
type NurseryInventoryRepository interface {
	Get(nurseryID, productID uint) (*models.NurseryInventory, error)
	Upsert(nurseryID, productID uint, quantity int) (*models.NurseryInventory, error)
	ListByNursery(nurseryID uint) ([]models.NurseryInventory, error)
	ListByProduct(productID uint) ([]models.NurseryInventory, error)
	ListAvailable(productIDs []uint) ([]models.NurseryInventory, error)
	ListProductIDs() ([]uint, error)
	LockForUpdate(keys []StockKey) (map[StockKey]models.NurseryInventory, error)
	DecrementIfAvailable(id uint, quantity int) (int64, error)
	DeleteByNursery(nurseryID uint) ([]uint, error)
	WithTx(tx *gorm.DB) *GormNurseryInventoryRepository
}

// GormNurseryInventoryRepository GORM 实现
type GormNurseryInventoryRepository struct {
	db *gorm.DB
}

// NewNurseryInventoryRepository 创建苗圃库存仓库
func NewNurseryInventoryRepository(db *gorm.DB) *GormNurseryInventoryRepository {
	return &GormNurseryInventoryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormNurseryInventoryRepository) WithTx(tx *gorm.DB) *GormNurseryInventoryRepository {
	if tx == nil {
		return r
	}
	return &GormNurseryInventoryRepository{db: tx}
}

// Get 获取苗圃某商品库存
func (r *GormNurseryInventoryRepository) Get(nurseryID, productID uint) (*models.NurseryInventory, error) {
	var row models.NurseryInventory
	result := r.db.Where("nursery_id = ? AND product_id = ?", nurseryID, productID).Limit(1).Find(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}

// Upsert 将苗圃某商品库存设置为指定数量（绝对值）
func (r *GormNurseryInventoryRepository) Upsert(nurseryID, productID uint, quantity int) (*models.NurseryInventory, error) {
	row, err := r.Get(nurseryID, productID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		row = &models.NurseryInventory{
			NurseryID: nurseryID,
			ProductID: productID,
			Quantity:  quantity,
		}
		if err := r.db.Create(row).Error; err != nil {
			return nil, err
		}
		return row, nil
	}
	row.Quantity = quantity
	if err := r.db.Model(row).Select("quantity", "updated_at").Updates(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// ListByNursery 列出苗圃全部库存，最近更新在前
func (r *GormNurseryInventoryRepository) ListByNursery(nurseryID uint) ([]models.NurseryInventory, error) {
	var rows []models.NurseryInventory
	if err := r.db.Where("nursery_id = ?", nurseryID).Order("updated_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByProduct 列出某商品在所有苗圃的库存（台账快照）
func (r *GormNurseryInventoryRepository) ListByProduct(productID uint) ([]models.NurseryInventory, error) {
	var rows []models.NurseryInventory
	if err := r.db.Where("product_id = ?", productID).Order("nursery_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAvailable 列出指定商品中有正库存的苗圃库存行
func (r *GormNurseryInventoryRepository) ListAvailable(productIDs []uint) ([]models.NurseryInventory, error) {
	rows := make([]models.NurseryInventory, 0)
	if len(productIDs) == 0 {
		return rows, nil
	}
	if err := r.db.Where("product_id IN ? AND quantity > 0", productIDs).
		Order("nursery_id ASC").Order("product_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListProductIDs 列出台账中出现过的商品 ID
func (r *GormNurseryInventoryRepository) ListProductIDs() ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&models.NurseryInventory{}).Distinct().Order("product_id ASC").Pluck("product_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// LockForUpdate 按固定顺序锁定库存行，缺失的行不出现在结果中
func (r *GormNurseryInventoryRepository) LockForUpdate(keys []StockKey) (map[StockKey]models.NurseryInventory, error) {
	ordered := make([]StockKey, len(keys))
	copy(ordered, keys)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].NurseryID != ordered[j].NurseryID {
			return ordered[i].NurseryID < ordered[j].NurseryID
		}
		return ordered[i].ProductID < ordered[j].ProductID
	})

	locked := make(map[StockKey]models.NurseryInventory, len(ordered))
	for _, key := range ordered {
		var row models.NurseryInventory
		result := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("nursery_id = ? AND product_id = ?", key.NurseryID, key.ProductID).
			Limit(1).
			Find(&row)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			continue
		}
		locked[key] = row
	}
	return locked, nil
}

// DecrementIfAvailable 条件扣减库存，库存不足时不更新并返回 0 行
func (r *GormNurseryInventoryRepository) DecrementIfAvailable(id uint, quantity int) (int64, error) {
	if id == 0 || quantity <= 0 {
		return 0, errors.New("invalid nursery stock decrement params")
	}
	result := r.db.Model(&models.NurseryInventory{}).
		Where("id = ? AND quantity >= ?", id, quantity).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", quantity),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteByNursery 删除苗圃全部库存行，返回受影响的商品 ID
func (r *GormNurseryInventoryRepository) DeleteByNursery(nurseryID uint) ([]uint, error) {
	var productIDs []uint
	if err := r.db.Model(&models.NurseryInventory{}).
		Where("nursery_id = ?", nurseryID).
		Order("product_id ASC").
		Pluck("product_id", &productIDs).Error; err != nil {
		return nil, err
	}
	if err := r.db.Where("nursery_id = ?", nurseryID).Delete(&models.NurseryInventory{}).Error; err != nil {
		return nil, err
	}
	return productIDs, nil
}
