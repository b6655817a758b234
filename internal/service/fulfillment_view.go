package service

import (
	"time"

	"github.com/flower-vendor/internal/models"
	"github.com/flower-vendor/internal/repository"

	"gorm.io/gorm"
)

// FulfillmentItemView 履约单明细展示
type FulfillmentItemView struct {
	ID                   uint    `json:"id"`
	FulfillmentID        uint    `json:"fulfillment_id"`
	OrderItemID          uint    `json:"order_item_id"`
	Quantity             int     `json:"quantity"`
	OrderItemProductName *string `json:"order_item_product_name"`
}

// FulfillmentView 履约单展示（附带苗圃名称与订单项商品名）
type FulfillmentView struct {
	ID            uint                  `json:"id"`
	OrderID       uint                  `json:"order_id"`
	NurseryID     *uint                 `json:"nursery_id"`
	NurseryName   *string               `json:"nursery_name"`
	Status        string                `json:"status"`
	DeliveryName  *string               `json:"delivery_name"`
	DeliveryPhone *string               `json:"delivery_phone"`
	DeliveryNotes *string               `json:"delivery_notes"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	Items         []FulfillmentItemView `json:"items"`
}

func buildFulfillmentView(f models.OrderFulfillment, nurseries map[uint]models.Nursery, orderItems map[uint]models.OrderItem) FulfillmentView {
	view := FulfillmentView{
		ID:            f.ID,
		OrderID:       f.OrderID,
		NurseryID:     f.NurseryID,
		Status:        f.Status,
		DeliveryName:  f.DeliveryName,
		DeliveryPhone: f.DeliveryPhone,
		DeliveryNotes: f.DeliveryNotes,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
		Items:         make([]FulfillmentItemView, 0, len(f.Items)),
	}
	if f.NurseryID != nil {
		if nursery, ok := nurseries[*f.NurseryID]; ok {
			name := nursery.InternalName
			view.NurseryName = &name
		}
	}
	for _, item := range f.Items {
		itemView := FulfillmentItemView{
			ID:            item.ID,
			FulfillmentID: item.FulfillmentID,
			OrderItemID:   item.OrderItemID,
			Quantity:      item.Quantity,
		}
		if orderItem, ok := orderItems[item.OrderItemID]; ok {
			name := orderItem.ProductName
			itemView.OrderItemProductName = &name
		}
		view.Items = append(view.Items, itemView)
	}
	return view
}

func buildFulfillmentViews(fulfillments []models.OrderFulfillment, nurseries []models.Nursery, orderItems []models.OrderItem) []FulfillmentView {
	nurseryMap := make(map[uint]models.Nursery, len(nurseries))
	for _, nursery := range nurseries {
		nurseryMap[nursery.ID] = nursery
	}
	itemMap := make(map[uint]models.OrderItem, len(orderItems))
	for _, item := range orderItems {
		itemMap[item.ID] = item
	}
	views := make([]FulfillmentView, 0, len(fulfillments))
	for _, f := range fulfillments {
		views = append(views, buildFulfillmentView(f, nurseryMap, itemMap))
	}
	return views
}

func collectFulfillmentNurseryIDs(fulfillments []models.OrderFulfillment) []uint {
	seen := make(map[uint]struct{})
	ids := make([]uint, 0, len(fulfillments))
	for _, f := range fulfillments {
		if f.NurseryID == nil {
			continue
		}
		if _, ok := seen[*f.NurseryID]; ok {
			continue
		}
		seen[*f.NurseryID] = struct{}{}
		ids = append(ids, *f.NurseryID)
	}
	return ids
}

// OrderDetail 订单详情（履约单附带苗圃名称与商品名）
type OrderDetail struct {
	models.Order
	Fulfillments []FulfillmentView `json:"fulfillments"`
}

func loadOrderDetail(db *gorm.DB, orderRepo repository.OrderRepository, nurseryRepo repository.NurseryRepository, orderID uint) (*OrderDetail, error) {
	order, err := orderRepo.WithTx(db).GetDetail(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	nurseries, err := nurseryRepo.WithTx(db).ListByIDs(collectFulfillmentNurseryIDs(order.Fulfillments))
	if err != nil {
		return nil, err
	}
	detail := &OrderDetail{
		Order:        *order,
		Fulfillments: buildFulfillmentViews(order.Fulfillments, nurseries, order.Items),
	}
	detail.Order.Fulfillments = nil
	return detail, nil
}
