package repository

import (
	"github.com/flower-vendor/internal/models"

	"gorm.io/gorm"
)

// InventoryRepository 全局库存数据访问接口
type InventoryRepository interface {
	GetByProductID(productID uint) (*models.Inventory, error)
	SetQuantity(productID uint, quantity int) (*models.Inventory, bool, error)
	List() ([]models.Inventory, error)
	WithTx(tx *gorm.DB) *GormInventoryRepository
}

// GormInventoryRepository GORM 实现
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository 创建全局库存仓库
func NewInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormInventoryRepository) WithTx(tx *gorm.DB) *GormInventoryRepository {
	if tx == nil {
		return r
	}
	return &GormInventoryRepository{db: tx}
}

// GetByProductID 获取商品全局库存
func (r *GormInventoryRepository) GetByProductID(productID uint) (*models.Inventory, error) {
	var inv models.Inventory
	result := r.db.Where("product_id = ?", productID).Limit(1).Find(&inv)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &inv, nil
}

// SetQuantity 写入或创建全局库存行，返回值 changed 表示数量是否发生变化
func (r *GormInventoryRepository) SetQuantity(productID uint, quantity int) (*models.Inventory, bool, error) {
	inv, err := r.GetByProductID(productID)
	if err != nil {
		return nil, false, err
	}
	if inv == nil {
		inv = &models.Inventory{ProductID: productID, Quantity: quantity}
		if err := r.db.Create(inv).Error; err != nil {
			return nil, false, err
		}
		return inv, true, nil
	}
	if inv.Quantity == quantity {
		return inv, false, nil
	}
	inv.Quantity = quantity
	if err := r.db.Model(inv).Select("quantity", "updated_at").Updates(inv).Error; err != nil {
		return nil, false, err
	}
	return inv, true, nil
}

// List 列出全部全局库存行
func (r *GormInventoryRepository) List() ([]models.Inventory, error) {
	var rows []models.Inventory
	if err := r.db.Order("product_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
