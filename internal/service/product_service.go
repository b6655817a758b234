package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/flower-vendor/internal/constants"
	"github.com/flower-vendor/internal/logger"
	"github.com/flower-vendor/internal/models"
	"github.com/flower-vendor/internal/repository"

	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ProductAttributesInput 商品属性输入
type ProductAttributesInput struct {
	PlantEnvironment *string
	Size             *string
	Color            *string
	CareInstructions *string
}

// ProductInput 商品创建/更新输入，更新时 nil 字段保持不变
type ProductInput struct {
	Slug        *string
	Name        *string
	Description *string
	PriceCents  *int64
	Currency    *string
	Kind        *string
	Active      *bool
	Attributes  *ProductAttributesInput
}

// ProductService 商品服务
type ProductService struct {
	db            *gorm.DB
	productRepo   repository.ProductRepository
	inventoryRepo repository.InventoryRepository
}

// NewProductService 创建商品服务
func NewProductService(db *gorm.DB, productRepo repository.ProductRepository, inventoryRepo repository.InventoryRepository) *ProductService {
	return &ProductService{
		db:            db,
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
	}
}

// Create 创建商品，同时创建数量为 0 的全局库存行；未指定 active 时默认下架
func (s *ProductService) Create(ctx context.Context, input ProductInput) (*models.Product, error) {
	product := &models.Product{Currency: constants.DefaultCurrency}
	applyProductInput(product, input)
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	existing, err := s.productRepo.WithTx(s.db.WithContext(ctx)).GetBySlug(product.Slug, false)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrProductSlugExists
	}
	attrs, err := buildProductAttributes(nil, input.Attributes)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		if err := productRepo.Create(product); err != nil {
			return err
		}
		if attrs != nil {
			attrs.ProductID = product.ID
			if err := productRepo.SaveAttributes(attrs); err != nil {
				return err
			}
		}
		_, _, err := s.inventoryRepo.WithTx(tx).SetQuantity(product.ID, 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("product_created", "product_id", product.ID, "slug", product.Slug, "kind", product.Kind)
	return s.GetByID(ctx, product.ID)
}

// Update 更新商品
func (s *ProductService) Update(ctx context.Context, id uint, input ProductInput) (*models.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldSlug := product.Slug
	applyProductInput(product, input)
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if product.Slug != oldSlug {
		existing, err := s.productRepo.WithTx(s.db.WithContext(ctx)).GetBySlug(product.Slug, false)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != product.ID {
			return nil, ErrProductSlugExists
		}
	}
	attrs, err := buildProductAttributes(product.Attributes, input.Attributes)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		if err := productRepo.Update(product); err != nil {
			return err
		}
		if attrs != nil {
			attrs.ProductID = product.ID
			return productRepo.SaveAttributes(attrs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, product.ID)
}

// GetByID 获取商品（含属性与全局库存）
func (s *ProductService) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.productRepo.WithTx(s.db.WithContext(ctx)).GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// GetPublicBySlug 获取上架商品
func (s *ProductService) GetPublicBySlug(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.productRepo.WithTx(s.db.WithContext(ctx)).GetBySlug(slug, true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// List 商品列表
func (s *ProductService) List(ctx context.Context, filter repository.ProductListFilter) ([]models.Product, int64, error) {
	if kind := strings.TrimSpace(filter.Kind); kind != "" && !isValidProductKind(kind) {
		return nil, 0, ErrProductInvalid
	}
	if env := strings.TrimSpace(filter.PlantEnvironment); env != "" && !isValidPlantEnvironment(env) {
		return nil, 0, ErrProductInvalid
	}
	return s.productRepo.WithTx(s.db.WithContext(ctx)).List(filter)
}

func applyProductInput(product *models.Product, input ProductInput) {
	if input.Slug != nil {
		product.Slug = strings.ToLower(strings.TrimSpace(*input.Slug))
	}
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.PriceCents != nil {
		product.PriceCents = *input.PriceCents
	}
	if input.Currency != nil {
		product.Currency = strings.ToUpper(strings.TrimSpace(*input.Currency))
	}
	if input.Kind != nil {
		product.Kind = strings.TrimSpace(*input.Kind)
	}
	if input.Active != nil {
		product.Active = *input.Active
	}
}

func validateProduct(product *models.Product) error {
	if !slugPattern.MatchString(product.Slug) || product.Name == "" {
		return ErrProductInvalid
	}
	if product.PriceCents < 0 || len(product.Currency) != 3 {
		return ErrProductInvalid
	}
	if !isValidProductKind(product.Kind) {
		return ErrProductInvalid
	}
	return nil
}

func buildProductAttributes(current *models.ProductAttributes, input *ProductAttributesInput) (*models.ProductAttributes, error) {
	if input == nil {
		return nil, nil
	}
	attrs := &models.ProductAttributes{}
	if current != nil {
		copied := *current
		attrs = &copied
	}
	if input.PlantEnvironment != nil {
		env := strings.TrimSpace(*input.PlantEnvironment)
		if env != "" && !isValidPlantEnvironment(env) {
			return nil, ErrProductInvalid
		}
		attrs.PlantEnvironment = env
	}
	if input.Size != nil {
		attrs.Size = strings.TrimSpace(*input.Size)
	}
	if input.Color != nil {
		attrs.Color = strings.TrimSpace(*input.Color)
	}
	if input.CareInstructions != nil {
		attrs.CareInstructions = strings.TrimSpace(*input.CareInstructions)
	}
	return attrs, nil
}

func isValidProductKind(kind string) bool {
	switch kind {
	case constants.ProductKindPlant, constants.ProductKindBouquet, constants.ProductKindVase, constants.ProductKindDigitalService:
		return true
	}
	return false
}

func isValidPlantEnvironment(env string) bool {
	switch env {
	case constants.PlantEnvironmentIndoor, constants.PlantEnvironmentOutdoor, constants.PlantEnvironmentBoth:
		return true
	}
	return false
}
