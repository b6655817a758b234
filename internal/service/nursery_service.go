package service

import (
	"context"
	"strings"

	"github.com/flower-vendor/internal/logger"
	"github.com/flower-vendor/internal/models"
	"github.com/flower-vendor/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NurseryInput 苗圃创建/更新输入，更新时 nil 字段保持不变
type NurseryInput struct {
	InternalName *string
	City         *string
	Commune      *string
	Latitude     *decimal.Decimal
	Longitude    *decimal.Decimal
}

// NurseryService 苗圃管理服务
type NurseryService struct {
	db              *gorm.DB
	nurseryRepo     repository.NurseryRepository
	ledgerRepo      repository.NurseryInventoryRepository
	fulfillmentRepo repository.FulfillmentRepository
	inventory       *InventoryService
}

// NewNurseryService 创建苗圃管理服务
func NewNurseryService(
	db *gorm.DB,
	nurseryRepo repository.NurseryRepository,
	ledgerRepo repository.NurseryInventoryRepository,
	fulfillmentRepo repository.FulfillmentRepository,
	inventory *InventoryService,
) *NurseryService {
	return &NurseryService{
		db:              db,
		nurseryRepo:     nurseryRepo,
		ledgerRepo:      ledgerRepo,
		fulfillmentRepo: fulfillmentRepo,
		inventory:       inventory,
	}
}

// Create 创建苗圃
func (s *NurseryService) Create(ctx context.Context, input NurseryInput) (*models.Nursery, error) {
	nursery := &models.Nursery{}
	if err := applyNurseryInput(nursery, input); err != nil {
		return nil, err
	}
	if nursery.InternalName == "" || nursery.City == "" {
		return nil, ErrNurseryInvalid
	}
	if err := s.nurseryRepo.WithTx(s.db.WithContext(ctx)).Create(nursery); err != nil {
		return nil, err
	}
	logger.Infow("nursery_created", "nursery_id", nursery.ID, "city", nursery.City)
	return nursery, nil
}

// Get 获取苗圃
func (s *NurseryService) Get(ctx context.Context, id uint) (*models.Nursery, error) {
	nursery, err := s.nurseryRepo.WithTx(s.db.WithContext(ctx)).GetByID(id)
	if err != nil {
		return nil, err
	}
	if nursery == nil {
		return nil, ErrNurseryNotFound
	}
	return nursery, nil
}

// List 苗圃列表
func (s *NurseryService) List(ctx context.Context, filter repository.NurseryListFilter) ([]models.Nursery, error) {
	return s.nurseryRepo.WithTx(s.db.WithContext(ctx)).List(filter)
}

// Update 更新苗圃
func (s *NurseryService) Update(ctx context.Context, id uint, input NurseryInput) (*models.Nursery, error) {
	nursery, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyNurseryInput(nursery, input); err != nil {
		return nil, err
	}
	if nursery.InternalName == "" || nursery.City == "" {
		return nil, ErrNurseryInvalid
	}
	if err := s.nurseryRepo.WithTx(s.db.WithContext(ctx)).Update(nursery); err != nil {
		return nil, err
	}
	return nursery, nil
}

// Delete 删除苗圃：清理其库存、解除履约单关联并重算受影响商品的全局库存
func (s *NurseryService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	var productIDs []uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		productIDs, txErr = s.ledgerRepo.WithTx(tx).DeleteByNursery(id)
		if txErr != nil {
			return txErr
		}
		if txErr = s.fulfillmentRepo.WithTx(tx).DetachNursery(id); txErr != nil {
			return txErr
		}
		if txErr = s.nurseryRepo.WithTx(tx).Delete(id); txErr != nil {
			return txErr
		}
		for _, productID := range productIDs {
			if _, txErr = s.inventory.RecomputeGlobalInventory(tx, productID); txErr != nil {
				return txErr
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Infow("nursery_deleted", "nursery_id", id, "recomputed_products", len(productIDs))
	return nil
}

func applyNurseryInput(nursery *models.Nursery, input NurseryInput) error {
	if input.InternalName != nil {
		nursery.InternalName = strings.TrimSpace(*input.InternalName)
	}
	if input.City != nil {
		nursery.City = strings.TrimSpace(*input.City)
	}
	if input.Commune != nil {
		commune := strings.TrimSpace(*input.Commune)
		if commune == "" {
			nursery.Commune = nil
		} else {
			nursery.Commune = &commune
		}
	}
	if input.Latitude != nil {
		if input.Latitude.Abs().GreaterThan(decimal.NewFromInt(90)) {
			return ErrNurseryCoordinatesInvalid
		}
		nursery.Latitude = decimal.NewNullDecimal(*input.Latitude)
	}
	if input.Longitude != nil {
		if input.Longitude.Abs().GreaterThan(decimal.NewFromInt(180)) {
			return ErrNurseryCoordinatesInvalid
		}
		nursery.Longitude = decimal.NewNullDecimal(*input.Longitude)
	}
	return nil
}
