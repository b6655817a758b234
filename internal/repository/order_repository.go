package repository

import (
	"errors"
	"strings"

	"github.com/flower-vendor/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem, address *models.Address) error
	GetByID(id uint) (*models.Order, error)
	GetDetail(id uint) (*models.Order, error)
	ListItems(orderID uint) ([]models.OrderItem, error)
	GetAddress(orderID uint) (*models.Address, error)
	ListItemsByIDs(ids []uint) ([]models.OrderItem, error)
	List(filter OrderListFilter) ([]models.Order, int64, error)
	UpdateStatus(id uint, status string) error
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单、订单项与收货地址
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem, address *models.Address) error {
	if err := r.db.Omit("Items", "ShippingAddress", "Fulfillments").Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	if address != nil {
		address.OrderID = order.ID
		if err := r.db.Create(address).Error; err != nil {
			return err
		}
	}
	order.Items = items
	order.ShippingAddress = address
	return nil
}

// GetByID 根据 ID 获取订单（不含关联）
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetDetail 获取订单详情（订单项、地址、履约单及明细）
func (r *GormOrderRepository) GetDetail(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("ShippingAddress").
		Preload("Fulfillments", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Fulfillments.Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ListItems 获取订单项，按 ID 升序
func (r *GormOrderRepository) ListItems(orderID uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	if err := r.db.Where("order_id = ?", orderID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetAddress 获取订单收货地址
func (r *GormOrderRepository) GetAddress(orderID uint) (*models.Address, error) {
	var address models.Address
	if err := r.db.Where("order_id = ?", orderID).First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

// ListItemsByIDs 批量获取订单项
func (r *GormOrderRepository) ListItemsByIDs(ids []uint) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// List 订单列表，最新在前
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var orders []models.Order
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Preload("Items").Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus 更新订单状态
func (r *GormOrderRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).Update("status", status).Error
}
