package repository

import (
	"errors"
	"strings"

	"github.com/flower-vendor/internal/models"

	"gorm.io/gorm"
)

// NurseryRepository 苗圃数据访问接口
type NurseryRepository interface {
	Create(nursery *models.Nursery) error
	Update(nursery *models.Nursery) error
	Delete(id uint) error
	GetByID(id uint) (*models.Nursery, error)
	ListByIDs(ids []uint) ([]models.Nursery, error)
	List(filter NurseryListFilter) ([]models.Nursery, error)
	WithTx(tx *gorm.DB) *GormNurseryRepository
}

// GormNurseryRepository GORM 实现
type GormNurseryRepository struct {
	db *gorm.DB
}

// NewNurseryRepository 创建苗圃仓库
func NewNurseryRepository(db *gorm.DB) *GormNurseryRepository {
	return &GormNurseryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormNurseryRepository) WithTx(tx *gorm.DB) *GormNurseryRepository {
	if tx == nil {
		return r
	}
	return &GormNurseryRepository{db: tx}
}

// Create 创建苗圃
func (r *GormNurseryRepository) Create(nursery *models.Nursery) error {
	return r.db.Create(nursery).Error
}

// Update 更新苗圃
func (r *GormNurseryRepository) Update(nursery *models.Nursery) error {
	return r.db.Save(nursery).Error
}

// Delete 删除苗圃行（关联数据由调用方先行处理）
func (r *GormNurseryRepository) Delete(id uint) error {
	return r.db.Delete(&models.Nursery{}, id).Error
}

// GetByID 根据 ID 获取苗圃
func (r *GormNurseryRepository) GetByID(id uint) (*models.Nursery, error) {
	var nursery models.Nursery
	if err := r.db.First(&nursery, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &nursery, nil
}

// ListByIDs 批量获取苗圃，按 ID 升序
func (r *GormNurseryRepository) ListByIDs(ids []uint) ([]models.Nursery, error) {
	nurseries := make([]models.Nursery, 0, len(ids))
	if len(ids) == 0 {
		return nurseries, nil
	}
	if err := r.db.Where("id IN ?", ids).Order("id ASC").Find(&nurseries).Error; err != nil {
		return nil, err
	}
	return nurseries, nil
}

// List 苗圃列表
func (r *GormNurseryRepository) List(filter NurseryListFilter) ([]models.Nursery, error) {
	query := r.db.Model(&models.Nursery{})
	if city := strings.TrimSpace(filter.City); city != "" {
		query = query.Where("LOWER(city) = ?", strings.ToLower(city))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := escapeLikePattern(search)
		query = query.Where(buildLikeCondition(r.db, "internal_name", "city", "commune"), pattern, pattern, pattern)
	}
	var nurseries []models.Nursery
	if err := query.Order("id ASC").Find(&nurseries).Error; err != nil {
		return nil, err
	}
	return nurseries, nil
}
