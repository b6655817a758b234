package service

import (
	"context"
	"strings"

	"github.com/flower-vendor/internal/config"
	"github.com/flower-vendor/internal/constants"
	"github.com/flower-vendor/internal/logger"
	"github.com/flower-vendor/internal/models"
	"github.com/flower-vendor/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateOrderItem 下单商品项
type CreateOrderItem struct {
	ProductID uint
	Quantity  int
}

// AddressInput 收货地址输入
type AddressInput struct {
	FullName      string
	StreetAddress string
	City          string
	Commune       *string
	State         *string
	PostalCode    string
	Country       string
	Phone         *string
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	UserID          *uint
	CustomerEmail   string
	Items           []CreateOrderItem
	ShippingAddress AddressInput
}

// OrderTotals 订单金额（最小货币单位）
type OrderTotals struct {
	SubtotalCents int64
	ShippingCents int64
	TaxCents      int64
	TotalCents    int64
}

// ComputeOrderTotals 计算订单金额，税额向下取整
func ComputeOrderTotals(subtotalCents, shippingCents int64, taxRate float64) OrderTotals {
	tax := decimal.NewFromInt(subtotalCents).Mul(decimal.NewFromFloat(taxRate)).Floor().IntPart()
	if tax < 0 {
		tax = 0
	}
	return OrderTotals{
		SubtotalCents: subtotalCents,
		ShippingCents: shippingCents,
		TaxCents:      tax,
		TotalCents:    subtotalCents + shippingCents + tax,
	}
}

// OrderService 订单服务
type OrderService struct {
	db          *gorm.DB
	cfg         config.OrderConfig
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	nurseryRepo repository.NurseryRepository
}

// NewOrderService 创建订单服务
func NewOrderService(
	db *gorm.DB,
	cfg config.OrderConfig,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	nurseryRepo repository.NurseryRepository,
) *OrderService {
	return &OrderService{
		db:          db,
		cfg:         cfg,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		nurseryRepo: nurseryRepo,
	}
}

// Create 创建订单：快照商品名称与价格，计算运费与税额，状态为 placed
func (s *OrderService) Create(ctx context.Context, input CreateOrderInput) (*OrderDetail, error) {
	if len(input.Items) == 0 {
		return nil, ErrOrderItemsEmpty
	}
	address, err := buildAddress(input.ShippingAddress)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	productIDs := make([]uint, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return nil, ErrOrderItemQuantityInvalid
		}
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := s.productRepo.WithTx(db).ListByIDs(productIDs)
	if err != nil {
		return nil, err
	}
	productByID := make(map[uint]models.Product, len(products))
	for _, product := range products {
		productByID[product.ID] = product
	}

	currency := strings.ToUpper(strings.TrimSpace(s.cfg.Currency))
	if currency == "" {
		currency = constants.DefaultCurrency
	}
	items := make([]models.OrderItem, 0, len(input.Items))
	var subtotal int64
	for _, line := range input.Items {
		product, ok := productByID[line.ProductID]
		if !ok || !product.Active {
			return nil, ErrProductNotFound
		}
		productID := product.ID
		items = append(items, models.OrderItem{
			ProductID:      &productID,
			Quantity:       line.Quantity,
			UnitPriceCents: product.PriceCents,
			ProductName:    product.Name,
		})
		subtotal += product.PriceCents * int64(line.Quantity)
	}

	totals := ComputeOrderTotals(subtotal, s.cfg.ShippingCents, s.cfg.TaxRate)
	order := &models.Order{
		UserID:        input.UserID,
		CustomerEmail: strings.TrimSpace(input.CustomerEmail),
		Status:        constants.OrderStatusPlaced,
		SubtotalCents: totals.SubtotalCents,
		ShippingCents: totals.ShippingCents,
		TaxCents:      totals.TaxCents,
		TotalCents:    totals.TotalCents,
		Currency:      currency,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		return s.orderRepo.WithTx(tx).Create(order, items, address)
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("order_created",
		"order_id", order.ID,
		"items", len(items),
		"total_cents", order.TotalCents,
	)
	return s.Get(ctx, order.ID)
}

// Get 获取订单详情
func (s *OrderService) Get(ctx context.Context, id uint) (*OrderDetail, error) {
	return loadOrderDetail(s.db.WithContext(ctx), s.orderRepo, s.nurseryRepo, id)
}

// List 订单列表
func (s *OrderService) List(ctx context.Context, filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if status := strings.TrimSpace(filter.Status); status != "" && !isValidOrderStatus(status) {
		return nil, 0, ErrOrderStatusInvalid
	}
	return s.orderRepo.WithTx(s.db.WithContext(ctx)).List(filter)
}

// UpdateStatus 管理员直接修改订单状态
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status string) (*OrderDetail, error) {
	status = strings.TrimSpace(status)
	if !isValidOrderStatus(status) {
		return nil, ErrOrderStatusInvalid
	}
	orderRepo := s.orderRepo.WithTx(s.db.WithContext(ctx))
	order, err := orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if err := orderRepo.UpdateStatus(id, status); err != nil {
		return nil, err
	}
	logger.Infow("order_status_updated", "order_id", id, "from", order.Status, "to", status)
	return s.Get(ctx, id)
}

func buildAddress(input AddressInput) (*models.Address, error) {
	address := &models.Address{
		FullName:      strings.TrimSpace(input.FullName),
		StreetAddress: strings.TrimSpace(input.StreetAddress),
		City:          strings.TrimSpace(input.City),
		Commune:       trimOptional(input.Commune),
		State:         trimOptional(input.State),
		PostalCode:    strings.TrimSpace(input.PostalCode),
		Country:       strings.TrimSpace(input.Country),
		Phone:         trimOptional(input.Phone),
	}
	if address.FullName == "" || address.StreetAddress == "" || address.City == "" ||
		address.PostalCode == "" || address.Country == "" {
		return nil, ErrShippingAddressInvalid
	}
	return address, nil
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func isValidOrderStatus(status string) bool {
	switch status {
	case constants.OrderStatusDraft,
		constants.OrderStatusPlaced,
		constants.OrderStatusPendingPayment,
		constants.OrderStatusConfirmed,
		constants.OrderStatusCancelled:
		return true
	}
	return false
}
