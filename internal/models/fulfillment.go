package models

import "time"

// OrderFulfillment 订单履约单，将订单项分配至某个苗圃
type OrderFulfillment struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	OrderID       uint      `gorm:"not null;index:idx_fulfillment_order_status" json:"order_id"`
	NurseryID     *uint     `gorm:"index" json:"nursery_id"` // 苗圃删除后置空
	Status        string    `gorm:"size:16;not null;default:'proposed';index:idx_fulfillment_order_status" json:"status"`
	DeliveryName  *string   `gorm:"size:255" json:"delivery_name"`
	DeliveryPhone *string   `gorm:"size:50" json:"delivery_phone"`
	DeliveryNotes *string   `gorm:"type:text" json:"delivery_notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Items []OrderFulfillmentItem `gorm:"foreignKey:FulfillmentID" json:"items"`
}

// TableName 指定表名
func (OrderFulfillment) TableName() string {
	return "order_fulfillments"
}

// OrderFulfillmentItem 履约单明细
type OrderFulfillmentItem struct {
	ID            uint `gorm:"primarykey" json:"id"`
	FulfillmentID uint `gorm:"not null;index" json:"fulfillment_id"`
	OrderItemID   uint `gorm:"not null;index" json:"order_item_id"`
	Quantity      int  `gorm:"not null" json:"quantity"`
}

// TableName 指定表名
func (OrderFulfillmentItem) TableName() string {
	return "order_fulfillment_items"
}
