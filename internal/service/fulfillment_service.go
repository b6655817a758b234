package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/flower-vendor/internal/constants"
	"github.com/flower-vendor/internal/logger"
	"github.com/flower-vendor/internal/metrics"
	"github.com/flower-vendor/internal/models"
	"github.com/flower-vendor/internal/queue"
	"github.com/flower-vendor/internal/repository"

	"gorm.io/gorm"
)

// FulfillmentService 履约确认服务
type FulfillmentService struct {
	db              *gorm.DB
	orderRepo       repository.OrderRepository
	nurseryRepo     repository.NurseryRepository
	ledgerRepo      repository.NurseryInventoryRepository
	fulfillmentRepo repository.FulfillmentRepository
	inventory       *InventoryService
	queueClient     *queue.Client
	metrics         *metrics.FulfillmentMetrics
}

// NewFulfillmentService 创建履约确认服务
func NewFulfillmentService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	nurseryRepo repository.NurseryRepository,
	ledgerRepo repository.NurseryInventoryRepository,
	fulfillmentRepo repository.FulfillmentRepository,
	inventory *InventoryService,
	queueClient *queue.Client,
	m *metrics.FulfillmentMetrics,
) *FulfillmentService {
	return &FulfillmentService{
		db:              db,
		orderRepo:       orderRepo,
		nurseryRepo:     nurseryRepo,
		ledgerRepo:      ledgerRepo,
		fulfillmentRepo: fulfillmentRepo,
		inventory:       inventory,
		queueClient:     queueClient,
		metrics:         m,
	}
}

// aggregateDemand 汇总待确认履约单对每个 (苗圃, 商品) 的需求量
// 订单项缺失或未关联商品的明细跳过；履约单苗圃已删除时视为库存不足
func aggregateDemand(fulfillments []models.OrderFulfillment, orderItems map[uint]models.OrderItem) (map[repository.StockKey]int, error) {
	demand := make(map[repository.StockKey]int)
	for _, f := range fulfillments {
		for _, item := range f.Items {
			orderItem, ok := orderItems[item.OrderItemID]
			if !ok || orderItem.ProductID == nil {
				continue
			}
			if f.NurseryID == nil {
				return nil, fmt.Errorf("%w: fulfillment %d has no nursery", ErrInsufficientInventory, f.ID)
			}
			key := repository.StockKey{NurseryID: *f.NurseryID, ProductID: *orderItem.ProductID}
			demand[key] += item.Quantity
		}
	}
	return demand, nil
}

// sortedStockKeys 按 (nursery_id, product_id) 排序
func sortedStockKeys(demand map[repository.StockKey]int) []repository.StockKey {
	keys := make([]repository.StockKey, 0, len(demand))
	for key := range demand {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].NurseryID != keys[j].NurseryID {
			return keys[i].NurseryID < keys[j].NurseryID
		}
		return keys[i].ProductID < keys[j].ProductID
	})
	return keys
}

// checkAvailability 全量校验库存，任一不足即失败
func checkAvailability(keys []repository.StockKey, demand map[repository.StockKey]int, stock map[repository.StockKey]models.NurseryInventory) error {
	for _, key := range keys {
		row, ok := stock[key]
		if !ok {
			return fmt.Errorf("%w: nursery %d has no stock for product %d", ErrInsufficientInventory, key.NurseryID, key.ProductID)
		}
		if row.Quantity < demand[key] {
			return fmt.Errorf("%w: nursery %d has %d of product %d, requested %d",
				ErrInsufficientInventory, key.NurseryID, row.Quantity, key.ProductID, demand[key])
		}
	}
	return nil
}

// Confirm 确认订单全部待确认履约单：校验并扣减苗圃库存、标记确认、重算全局库存、订单置为已确认
func (s *FulfillmentService) Confirm(ctx context.Context, orderID uint) (*OrderDetail, error) {
	start := time.Now()
	payload, err := s.confirm(ctx, orderID)
	switch {
	case err == nil:
		s.metrics.ObserveConfirmation(metrics.ResultSuccess, time.Since(start))
	case errors.Is(err, ErrInsufficientInventory):
		s.metrics.ObserveConfirmation(metrics.ResultInsufficient, time.Since(start))
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidState):
		s.metrics.ObserveConfirmation(metrics.ResultRejected, time.Since(start))
	default:
		s.metrics.ObserveConfirmation(metrics.ResultError, time.Since(start))
	}
	if err != nil {
		return nil, err
	}

	if err := s.queueClient.EnqueueOrderConfirmed(payload); err != nil {
		logger.Warnw("order_confirmed_enqueue_failed", "order_id", orderID, "error", err)
	}
	return loadOrderDetail(s.db.WithContext(ctx), s.orderRepo, s.nurseryRepo, orderID)
}

func (s *FulfillmentService) confirm(ctx context.Context, orderID uint) (queue.OrderConfirmedPayload, error) {
	payload := queue.OrderConfirmedPayload{OrderID: orderID}
	db := s.db.WithContext(ctx)
	order, err := s.orderRepo.WithTx(db).GetByID(orderID)
	if err != nil {
		return payload, err
	}
	if order == nil {
		return payload, ErrOrderNotFound
	}
	if order.Status == constants.OrderStatusCancelled {
		return payload, ErrOrderCancelled
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		// 事务内重读，防止校验后被并发取消
		current, err := s.orderRepo.WithTx(tx).GetByID(orderID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrOrderNotFound
		}
		if current.Status == constants.OrderStatusCancelled {
			return ErrOrderCancelled
		}

		fulfillmentRepo := s.fulfillmentRepo.WithTx(tx)
		proposed, err := fulfillmentRepo.ListByOrder(orderID, constants.FulfillmentStatusProposed)
		if err != nil {
			return err
		}
		if len(proposed) == 0 {
			return ErrNoProposedFulfillments
		}

		itemIDs := make([]uint, 0)
		for _, f := range proposed {
			for _, item := range f.Items {
				itemIDs = append(itemIDs, item.OrderItemID)
			}
		}
		items, err := s.orderRepo.WithTx(tx).ListItemsByIDs(itemIDs)
		if err != nil {
			return err
		}
		itemByID := make(map[uint]models.OrderItem, len(items))
		for _, item := range items {
			itemByID[item.ID] = item
		}

		demand, err := aggregateDemand(proposed, itemByID)
		if err != nil {
			return err
		}
		keys := sortedStockKeys(demand)
		ledgerRepo := s.ledgerRepo.WithTx(tx)
		stock, err := ledgerRepo.LockForUpdate(keys)
		if err != nil {
			return err
		}
		if err := checkAvailability(keys, demand, stock); err != nil {
			return err
		}

		productSet := make(map[uint]struct{}, len(keys))
		for _, key := range keys {
			affected, err := ledgerRepo.DecrementIfAvailable(stock[key].ID, demand[key])
			if err != nil {
				return err
			}
			if affected == 0 {
				return fmt.Errorf("%w: nursery %d stock for product %d changed concurrently",
					ErrInsufficientInventory, key.NurseryID, key.ProductID)
			}
			productSet[key.ProductID] = struct{}{}
		}

		fulfillmentIDs := make([]uint, 0, len(proposed))
		for _, f := range proposed {
			fulfillmentIDs = append(fulfillmentIDs, f.ID)
		}
		confirmed, err := fulfillmentRepo.TransitionStatus(fulfillmentIDs, constants.FulfillmentStatusProposed, constants.FulfillmentStatusConfirmed)
		if err != nil {
			return err
		}
		if confirmed != int64(len(fulfillmentIDs)) {
			return ErrNoProposedFulfillments
		}

		productIDs := make([]uint, 0, len(productSet))
		for id := range productSet {
			productIDs = append(productIDs, id)
		}
		sort.Slice(productIDs, func(i, j int) bool { return productIDs[i] < productIDs[j] })
		for _, productID := range productIDs {
			if _, err := s.inventory.RecomputeGlobalInventory(tx, productID); err != nil {
				return err
			}
		}
		if err := s.orderRepo.WithTx(tx).UpdateStatus(orderID, constants.OrderStatusConfirmed); err != nil {
			return err
		}
		payload.FulfillmentIDs = fulfillmentIDs
		payload.ProductIDs = productIDs
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientInventory) {
			logger.Warnw("allocation_confirm_insufficient", "order_id", orderID, "error", err)
		}
		return payload, err
	}

	logger.Infow("allocation_confirmed",
		"order_id", orderID,
		"fulfillments", len(payload.FulfillmentIDs),
		"products", len(payload.ProductIDs),
	)
	return payload, nil
}

// DeliveryContactInput 配送联系人输入
type DeliveryContactInput struct {
	Name  string
	Phone string
	Notes *string
}

// SetDeliveryContact 设置履约单配送联系人
func (s *FulfillmentService) SetDeliveryContact(ctx context.Context, fulfillmentID uint, input DeliveryContactInput) (*FulfillmentView, error) {
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	if name == "" || phone == "" {
		return nil, ErrDeliveryContactInvalid
	}
	db := s.db.WithContext(ctx)
	fulfillmentRepo := s.fulfillmentRepo.WithTx(db)
	fulfillment, err := fulfillmentRepo.GetByID(fulfillmentID)
	if err != nil {
		return nil, err
	}
	if fulfillment == nil {
		return nil, ErrFulfillmentNotFound
	}
	var notes *string
	if input.Notes != nil {
		trimmed := strings.TrimSpace(*input.Notes)
		if trimmed != "" {
			notes = &trimmed
		}
	}
	if err := fulfillmentRepo.UpdateDeliveryContact(fulfillmentID, name, phone, notes); err != nil {
		return nil, err
	}
	fulfillment.DeliveryName = &name
	fulfillment.DeliveryPhone = &phone
	fulfillment.DeliveryNotes = notes

	return s.buildView(db, *fulfillment)
}

// ListByOrder 获取订单全部履约单
func (s *FulfillmentService) ListByOrder(ctx context.Context, orderID uint) ([]FulfillmentView, error) {
	db := s.db.WithContext(ctx)
	order, err := s.orderRepo.WithTx(db).GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	fulfillments, err := s.fulfillmentRepo.WithTx(db).ListByOrder(orderID, "")
	if err != nil {
		return nil, err
	}
	nurseries, err := s.nurseryRepo.WithTx(db).ListByIDs(collectFulfillmentNurseryIDs(fulfillments))
	if err != nil {
		return nil, err
	}
	items, err := s.orderRepo.WithTx(db).ListItems(orderID)
	if err != nil {
		return nil, err
	}
	return buildFulfillmentViews(fulfillments, nurseries, items), nil
}

func (s *FulfillmentService) buildView(db *gorm.DB, fulfillment models.OrderFulfillment) (*FulfillmentView, error) {
	nurseries, err := s.nurseryRepo.WithTx(db).ListByIDs(collectFulfillmentNurseryIDs([]models.OrderFulfillment{fulfillment}))
	if err != nil {
		return nil, err
	}
	items, err := s.orderRepo.WithTx(db).ListItems(fulfillment.OrderID)
	if err != nil {
		return nil, err
	}
	views := buildFulfillmentViews([]models.OrderFulfillment{fulfillment}, nurseries, items)
	return &views[0], nil
}
