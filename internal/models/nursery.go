package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Nursery 苗圃（实体备货点）
type Nursery struct {
	ID           uint                `gorm:"primarykey" json:"id"`
	InternalName string              `gorm:"size:255;not null" json:"internal_name"` // 内部名称
	City         string              `gorm:"size:100;not null;index" json:"city"`    // 城市
	Commune      *string             `gorm:"size:100" json:"commune"`                // 区（可选）
	Latitude     decimal.NullDecimal `gorm:"type:decimal(10,8)" json:"latitude"`
	Longitude    decimal.NullDecimal `gorm:"type:decimal(11,8)" json:"longitude"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// TableName 指定表名
func (Nursery) TableName() string {
	return "nurseries"
}

// NurseryInventory 苗圃库存（权威库存台账）
type NurseryInventory struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	NurseryID   uint      `gorm:"not null;uniqueIndex:idx_nursery_product" json:"nursery_id"`
	ProductID   uint      `gorm:"not null;uniqueIndex:idx_nursery_product;index" json:"product_id"`
	Quantity    int       `gorm:"not null;default:0" json:"quantity"`
	UpdatedAt   time.Time `gorm:"index" json:"updated_at"`
	ProductName string    `gorm:"-" json:"product_name,omitempty"`
}

// TableName 指定表名
func (NurseryInventory) TableName() string {
	return "nursery_inventories"
}
