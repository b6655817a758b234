package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/flower-vendor/internal/constants"
	"github.com/flower-vendor/internal/logger"
	"github.com/flower-vendor/internal/metrics"
	"github.com/flower-vendor/internal/models"
	"github.com/flower-vendor/internal/repository"

	"gorm.io/gorm"
)

// SuggestedItem 苗圃可供应的订单项
type SuggestedItem struct {
	OrderItemID  uint   `json:"order_item_id"`
	ProductName  string `json:"product_name"`
	RequestedQty int    `json:"requested_qty"`
	AvailableQty int    `json:"available_qty"`
}

// NurserySuggestion 单个苗圃的分配建议
type NurserySuggestion struct {
	NurseryID      uint            `json:"nursery_id"`
	NurseryName    string          `json:"nursery_name"`
	City           string          `json:"city"`
	Commune        *string         `json:"commune"`
	MatchTier      int             `json:"match_tier"`
	AvailableItems []SuggestedItem `json:"available_items"`
}

// AllocationSuggestions 订单分配建议
type AllocationSuggestions struct {
	OrderID     uint                `json:"order_id"`
	Suggestions []NurserySuggestion `json:"suggestions"`
}

// AllocationItemInput 分配明细输入
type AllocationItemInput struct {
	OrderItemID uint `json:"order_item_id"`
	Quantity    int  `json:"quantity"`
}

// AllocationInput 单个苗圃的分配输入
type AllocationInput struct {
	NurseryID uint                  `json:"nursery_id"`
	Items     []AllocationItemInput `json:"items"`
}

// MatchTier 计算苗圃与收货地址的匹配层级：1 同区，2 同城，3 其他
func MatchTier(address models.Address, nursery models.Nursery) int {
	if address.Commune != nil && nursery.Commune != nil {
		addrCommune := strings.TrimSpace(*address.Commune)
		nurseryCommune := strings.TrimSpace(*nursery.Commune)
		if addrCommune != "" && nurseryCommune != "" && strings.EqualFold(addrCommune, nurseryCommune) {
			return constants.MatchTierCommune
		}
	}
	if strings.EqualFold(strings.TrimSpace(address.City), strings.TrimSpace(nursery.City)) {
		return constants.MatchTierCity
	}
	return constants.MatchTierOther
}

// RankSuggestions 按匹配层级升序、可供应项数量降序稳定排序
func RankSuggestions(suggestions []NurserySuggestion) {
	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].MatchTier != suggestions[j].MatchTier {
			return suggestions[i].MatchTier < suggestions[j].MatchTier
		}
		return len(suggestions[i].AvailableItems) > len(suggestions[j].AvailableItems)
	})
}

// BuildSuggestions 根据订单项、候选苗圃与可用库存生成建议（苗圃按传入顺序访问）
func BuildSuggestions(address models.Address, items []models.OrderItem, nurseries []models.Nursery, stock []models.NurseryInventory) []NurserySuggestion {
	available := make(map[repository.StockKey]int, len(stock))
	for _, row := range stock {
		if row.Quantity > 0 {
			available[repository.StockKey{NurseryID: row.NurseryID, ProductID: row.ProductID}] = row.Quantity
		}
	}

	suggestions := make([]NurserySuggestion, 0, len(nurseries))
	for _, nursery := range nurseries {
		suggested := make([]SuggestedItem, 0, len(items))
		for _, item := range items {
			if item.ProductID == nil {
				continue
			}
			qty := available[repository.StockKey{NurseryID: nursery.ID, ProductID: *item.ProductID}]
			if qty <= 0 {
				continue
			}
			availableQty := qty
			if item.Quantity < availableQty {
				availableQty = item.Quantity
			}
			suggested = append(suggested, SuggestedItem{
				OrderItemID:  item.ID,
				ProductName:  item.ProductName,
				RequestedQty: item.Quantity,
				AvailableQty: availableQty,
			})
		}
		if len(suggested) == 0 {
			continue
		}
		suggestions = append(suggestions, NurserySuggestion{
			NurseryID:      nursery.ID,
			NurseryName:    nursery.InternalName,
			City:           nursery.City,
			Commune:        nursery.Commune,
			MatchTier:      MatchTier(address, nursery),
			AvailableItems: suggested,
		})
	}
	RankSuggestions(suggestions)
	return suggestions
}

// AllocationService 订单分配服务（建议与提交）
type AllocationService struct {
	db              *gorm.DB
	orderRepo       repository.OrderRepository
	nurseryRepo     repository.NurseryRepository
	ledgerRepo      repository.NurseryInventoryRepository
	fulfillmentRepo repository.FulfillmentRepository
	metrics         *metrics.FulfillmentMetrics
}

// NewAllocationService 创建订单分配服务
func NewAllocationService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	nurseryRepo repository.NurseryRepository,
	ledgerRepo repository.NurseryInventoryRepository,
	fulfillmentRepo repository.FulfillmentRepository,
	m *metrics.FulfillmentMetrics,
) *AllocationService {
	return &AllocationService{
		db:              db,
		orderRepo:       orderRepo,
		nurseryRepo:     nurseryRepo,
		ledgerRepo:      ledgerRepo,
		fulfillmentRepo: fulfillmentRepo,
		metrics:         m,
	}
}

// Suggest 为订单生成按地理接近度排序的苗圃分配建议（只读）
func (s *AllocationService) Suggest(ctx context.Context, orderID uint) (*AllocationSuggestions, error) {
	db := s.db.WithContext(ctx)
	orderRepo := s.orderRepo.WithTx(db)
	order, err := orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	address, err := orderRepo.GetAddress(orderID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, ErrOrderNoShippingAddress
	}
	items, err := orderRepo.ListItems(orderID)
	if err != nil {
		return nil, err
	}

	result := &AllocationSuggestions{OrderID: orderID, Suggestions: []NurserySuggestion{}}
	productIDs := make([]uint, 0, len(items))
	for _, item := range items {
		if item.ProductID != nil {
			productIDs = append(productIDs, *item.ProductID)
		}
	}
	if len(productIDs) == 0 {
		return result, nil
	}

	stock, err := s.ledgerRepo.WithTx(db).ListAvailable(productIDs)
	if err != nil {
		return nil, err
	}
	nurseryIDs := make([]uint, 0, len(stock))
	seen := make(map[uint]struct{}, len(stock))
	for _, row := range stock {
		if _, ok := seen[row.NurseryID]; ok {
			continue
		}
		seen[row.NurseryID] = struct{}{}
		nurseryIDs = append(nurseryIDs, row.NurseryID)
	}
	nurseries, err := s.nurseryRepo.WithTx(db).ListByIDs(nurseryIDs)
	if err != nil {
		return nil, err
	}

	result.Suggestions = BuildSuggestions(*address, items, nurseries, stock)
	logger.Debugw("allocation_suggestions_built", "order_id", orderID, "suggestions", len(result.Suggestions))
	return result, nil
}

// Commit 以替换语义提交分配：删除订单全部待确认履约单并按输入重建，不触碰库存
func (s *AllocationService) Commit(ctx context.Context, orderID uint, allocations []AllocationInput) ([]FulfillmentView, error) {
	views, err := s.commit(ctx, orderID, allocations)
	switch {
	case err == nil:
		s.metrics.IncAllocation(metrics.ResultSuccess)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrInvalidState):
		s.metrics.IncAllocation(metrics.ResultRejected)
	default:
		s.metrics.IncAllocation(metrics.ResultError)
	}
	return views, err
}

func (s *AllocationService) commit(ctx context.Context, orderID uint, allocations []AllocationInput) ([]FulfillmentView, error) {
	db := s.db.WithContext(ctx)
	orderRepo := s.orderRepo.WithTx(db)
	order, err := orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status == constants.OrderStatusCancelled {
		return nil, ErrOrderCancelled
	}

	nurseryIDs := make([]uint, 0, len(allocations))
	seenNursery := make(map[uint]struct{}, len(allocations))
	for _, allocation := range allocations {
		if _, ok := seenNursery[allocation.NurseryID]; ok {
			continue
		}
		seenNursery[allocation.NurseryID] = struct{}{}
		nurseryIDs = append(nurseryIDs, allocation.NurseryID)
	}
	nurseries, err := s.nurseryRepo.WithTx(db).ListByIDs(nurseryIDs)
	if err != nil {
		return nil, err
	}
	if len(nurseries) != len(nurseryIDs) {
		return nil, ErrNurseryNotFound
	}

	items, err := orderRepo.ListItems(orderID)
	if err != nil {
		return nil, err
	}
	itemByID := make(map[uint]models.OrderItem, len(items))
	for _, item := range items {
		itemByID[item.ID] = item
	}
	for _, allocation := range allocations {
		if len(allocation.Items) == 0 {
			return nil, ErrAllocationItemsEmpty
		}
		for _, input := range allocation.Items {
			if _, ok := itemByID[input.OrderItemID]; !ok {
				return nil, ErrOrderItemNotInOrder
			}
		}
	}
	for _, allocation := range allocations {
		for _, input := range allocation.Items {
			if input.Quantity < 1 {
				return nil, ErrAllocationQuantityInvalid
			}
			if input.Quantity > itemByID[input.OrderItemID].Quantity {
				return nil, ErrAllocationQuantityExceeded
			}
		}
	}

	created := make([]models.OrderFulfillment, 0, len(allocations))
	var removed int64
	err = db.Transaction(func(tx *gorm.DB) error {
		fulfillmentRepo := s.fulfillmentRepo.WithTx(tx)
		var txErr error
		removed, txErr = fulfillmentRepo.DeleteByOrderAndStatus(orderID, constants.FulfillmentStatusProposed)
		if txErr != nil {
			return txErr
		}
		for _, allocation := range allocations {
			nurseryID := allocation.NurseryID
			fulfillment := models.OrderFulfillment{
				OrderID:   orderID,
				NurseryID: &nurseryID,
				Status:    constants.FulfillmentStatusProposed,
			}
			rows := make([]models.OrderFulfillmentItem, 0, len(allocation.Items))
			for _, input := range allocation.Items {
				rows = append(rows, models.OrderFulfillmentItem{
					OrderItemID: input.OrderItemID,
					Quantity:    input.Quantity,
				})
			}
			if txErr := fulfillmentRepo.Create(&fulfillment, rows); txErr != nil {
				return txErr
			}
			created = append(created, fulfillment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("allocation_committed",
		"order_id", orderID,
		"replaced", removed,
		"fulfillments", len(created),
	)
	return buildFulfillmentViews(created, nurseries, items), nil
}
