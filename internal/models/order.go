package models

import "time"

// Order 订单表
type Order struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	UserID        *uint     `gorm:"index" json:"user_id"`                              // 下单用户（可为空）
	CustomerEmail string    `gorm:"size:255;index" json:"customer_email"`              // 联系邮箱
	Status        string    `gorm:"size:32;not null;index;default:'draft'" json:"status"` // 订单状态
	SubtotalCents int64     `gorm:"not null" json:"subtotal_cents"`
	ShippingCents int64     `gorm:"not null;default:0" json:"shipping_cents"`
	TaxCents      int64     `gorm:"not null;default:0" json:"tax_cents"`
	TotalCents    int64     `gorm:"not null" json:"total_cents"`
	Currency      string    `gorm:"size:3;not null;default:'USD'" json:"currency"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Items           []OrderItem        `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	ShippingAddress *Address           `gorm:"foreignKey:OrderID" json:"shipping_address,omitempty"`
	Fulfillments    []OrderFulfillment `gorm:"foreignKey:OrderID" json:"fulfillments,omitempty"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单项（下单时的价格与名称快照，创建后不可变）
type OrderItem struct {
	ID             uint   `gorm:"primarykey" json:"id"`
	OrderID        uint   `gorm:"not null;index" json:"order_id"`
	ProductID      *uint  `gorm:"index" json:"product_id"` // 商品删除后置空
	Quantity       int    `gorm:"not null" json:"quantity"`
	UnitPriceCents int64  `gorm:"not null" json:"unit_price_cents"`
	ProductName    string `gorm:"size:255;not null" json:"product_name"`
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

// Address 订单收货地址（每个订单一条）
type Address struct {
	ID            uint    `gorm:"primarykey" json:"id"`
	OrderID       uint    `gorm:"uniqueIndex;not null" json:"order_id"`
	FullName      string  `gorm:"size:255;not null" json:"full_name"`
	StreetAddress string  `gorm:"size:255;not null" json:"street_address"`
	City          string  `gorm:"size:100;not null" json:"city"`
	Commune       *string `gorm:"size:100" json:"commune"`
	State         *string `gorm:"size:100" json:"state"`
	PostalCode    string  `gorm:"size:20;not null" json:"postal_code"`
	Country       string  `gorm:"size:100;not null" json:"country"`
	Phone         *string `gorm:"size:50" json:"phone"`
}

// TableName 指定表名
func (Address) TableName() string {
	return "addresses"
}
