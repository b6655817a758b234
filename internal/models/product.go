package models

import "time"

// Product 商品表
type Product struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Slug        string    `gorm:"uniqueIndex;size:255;not null" json:"slug"`     // 唯一路径标识
	Name        string    `gorm:"size:255;not null" json:"name"`                 // 商品名称
	Description string    `gorm:"type:text" json:"description"`                  // 描述
	PriceCents  int64     `gorm:"not null" json:"price_cents"`                   // 价格（最小货币单位）
	Currency    string    `gorm:"size:3;not null;default:'USD'" json:"currency"` // 币种
	Kind        string    `gorm:"size:32;not null;index" json:"kind"`            // 商品类型
	Active      bool      `gorm:"not null;index" json:"active"`                  // 是否上架
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Attributes *ProductAttributes `gorm:"foreignKey:ProductID" json:"attributes,omitempty"`
	Inventory  *Inventory         `gorm:"foreignKey:ProductID" json:"inventory,omitempty"`
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// ProductAttributes 商品属性表（每个商品至多一条）
type ProductAttributes struct {
	ID               uint   `gorm:"primarykey" json:"id"`
	ProductID        uint   `gorm:"uniqueIndex;not null" json:"product_id"`
	PlantEnvironment string `gorm:"size:16" json:"plant_environment,omitempty"`
	Size             string `gorm:"size:100" json:"size,omitempty"`
	Color            string `gorm:"size:100" json:"color,omitempty"`
	CareInstructions string `gorm:"type:text" json:"care_instructions,omitempty"`
}

// TableName 指定表名
func (ProductAttributes) TableName() string {
	return "product_attributes"
}

// Inventory 全局库存表，由苗圃库存汇总得出
type Inventory struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ProductID uint      `gorm:"uniqueIndex;not null" json:"product_id"`
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Inventory) TableName() string {
	return "inventory"
}
