package repository

import (
	"errors"

	"github.com/flower-vendor/internal/models"

	"gorm.io/gorm"
)

// FulfillmentRepository 履约单数据访问接口
type FulfillmentRepository interface {
	Create(fulfillment *models.OrderFulfillment, items []models.OrderFulfillmentItem) error
	GetByID(id uint) (*models.OrderFulfillment, error)
	ListByOrder(orderID uint, status string) ([]models.OrderFulfillment, error)
	DeleteByOrderAndStatus(orderID uint, status string) (int64, error)
	TransitionStatus(ids []uint, from, to string) (int64, error)
	UpdateDeliveryContact(id uint, name, phone string, notes *string) error
	DetachNursery(nurseryID uint) error
	WithTx(tx *gorm.DB) *GormFulfillmentRepository
}

// GormFulfillmentRepository GORM 实现
type GormFulfillmentRepository struct {
	db *gorm.DB
}

// NewFulfillmentRepository 创建履约单仓库
func NewFulfillmentRepository(db *gorm.DB) *GormFulfillmentRepository {
	return &GormFulfillmentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormFulfillmentRepository) WithTx(tx *gorm.DB) *GormFulfillmentRepository {
	if tx == nil {
		return r
	}
	return &GormFulfillmentRepository{db: tx}
}

// Create 创建履约单及明细
func (r *GormFulfillmentRepository) Create(fulfillment *models.OrderFulfillment, items []models.OrderFulfillmentItem) error {
	if err := r.db.Omit("Items").Create(fulfillment).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].FulfillmentID = fulfillment.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	fulfillment.Items = items
	return nil
}

// GetByID 根据 ID 获取履约单（含明细）
func (r *GormFulfillmentRepository) GetByID(id uint) (*models.OrderFulfillment, error) {
	var fulfillment models.OrderFulfillment
	if err := r.db.Preload("Items").First(&fulfillment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &fulfillment, nil
}

// ListByOrder 获取订单履约单（含明细），status 为空时返回全部
func (r *GormFulfillmentRepository) ListByOrder(orderID uint, status string) ([]models.OrderFulfillment, error) {
	query := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("order_id = ?", orderID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var fulfillments []models.OrderFulfillment
	if err := query.Order("id ASC").Find(&fulfillments).Error; err != nil {
		return nil, err
	}
	return fulfillments, nil
}

// DeleteByOrderAndStatus 级联删除订单指定状态的履约单及其明细
func (r *GormFulfillmentRepository) DeleteByOrderAndStatus(orderID uint, status string) (int64, error) {
	var ids []uint
	if err := r.db.Model(&models.OrderFulfillment{}).
		Where("order_id = ? AND status = ?", orderID, status).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := r.db.Where("fulfillment_id IN ?", ids).Delete(&models.OrderFulfillmentItem{}).Error; err != nil {
		return 0, err
	}
	result := r.db.Where("id IN ?", ids).Delete(&models.OrderFulfillment{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// TransitionStatus 仅当履约单处于 from 状态时更新为 to，返回受影响行数
func (r *GormFulfillmentRepository) TransitionStatus(ids []uint, from, to string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.OrderFulfillment{}).
		Where("id IN ? AND status = ?", ids, from).
		Update("status", to)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// UpdateDeliveryContact 更新配送联系人
func (r *GormFulfillmentRepository) UpdateDeliveryContact(id uint, name, phone string, notes *string) error {
	return r.db.Model(&models.OrderFulfillment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"delivery_name":  name,
		"delivery_phone": phone,
		"delivery_notes": notes,
	}).Error
}

// DetachNursery 苗圃删除时将其履约单的苗圃置空
func (r *GormFulfillmentRepository) DetachNursery(nurseryID uint) error {
	return r.db.Model(&models.OrderFulfillment{}).Where("nursery_id = ?", nurseryID).Update("nursery_id", nil).Error
}
