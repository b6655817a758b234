package repository

import (
	"errors"
	"strings"

	"github.com/flower-vendor/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	Create(product *models.Product) error
	Update(product *models.Product) error
	SaveAttributes(attrs *models.ProductAttributes) error
	GetByID(id uint) (*models.Product, error)
	GetBySlug(slug string, onlyActive bool) (*models.Product, error)
	ListByIDs(ids []uint) ([]models.Product, error)
	List(filter ProductListFilter) ([]models.Product, int64, error)
	WithTx(tx *gorm.DB) *GormProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) *GormProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// Create 创建商品
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Omit("Attributes", "Inventory").Create(product).Error
}

// Update 更新商品基础字段
func (r *GormProductRepository) Update(product *models.Product) error {
	return r.db.Omit("Attributes", "Inventory").Save(product).Error
}

// SaveAttributes 创建或更新商品属性
func (r *GormProductRepository) SaveAttributes(attrs *models.ProductAttributes) error {
	if attrs == nil || attrs.ProductID == 0 {
		return errors.New("invalid product attributes")
	}
	var existing models.ProductAttributes
	result := r.db.Where("product_id = ?", attrs.ProductID).Limit(1).Find(&existing)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		attrs.ID = existing.ID
	}
	return r.db.Save(attrs).Error
}

// GetByID 根据 ID 获取商品
func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Attributes").Preload("Inventory").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetBySlug 根据 slug 获取商品
func (r *GormProductRepository) GetBySlug(slug string, onlyActive bool) (*models.Product, error) {
	var product models.Product
	query := r.db.Preload("Attributes").Preload("Inventory").Where("slug = ?", strings.TrimSpace(slug))
	if onlyActive {
		query = query.Where("active = ?", true)
	}
	if err := query.First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// ListByIDs 批量获取商品
func (r *GormProductRepository) ListByIDs(ids []uint) ([]models.Product, error) {
	products := make([]models.Product, 0, len(ids))
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// List 商品列表
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	query := r.db.Model(&models.Product{})
	if filter.OnlyActive {
		query = query.Where("products.active = ?", true)
	}
	if kind := strings.TrimSpace(filter.Kind); kind != "" {
		query = query.Where("products.kind = ?", kind)
	}
	if env := strings.TrimSpace(filter.PlantEnvironment); env != "" {
		query = query.Joins("JOIN product_attributes ON product_attributes.product_id = products.id").
			Where("product_attributes.plant_environment IN ?", []string{env, "both"})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := escapeLikePattern(search)
		query = query.Where(buildLikeCondition(r.db, "products.name", "products.description"), pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Preload("Attributes").Preload("Inventory").Order("products.id DESC").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}
