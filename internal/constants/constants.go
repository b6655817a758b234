package constants

// 订单状态常量
const (
	OrderStatusDraft          = "draft"
	OrderStatusPlaced         = "placed"
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusCancelled      = "cancelled"
)

// 履约单状态常量
const (
	FulfillmentStatusProposed  = "proposed"
	FulfillmentStatusConfirmed = "confirmed"
	FulfillmentStatusCancelled = "cancelled"
)

// 商品类型常量
const (
	ProductKindPlant          = "plant"
	ProductKindBouquet        = "bouquet"
	ProductKindVase           = "vase"
	ProductKindDigitalService = "digital_service"
)

// 植物环境常量
const (
	PlantEnvironmentIndoor  = "indoor"
	PlantEnvironmentOutdoor = "outdoor"
	PlantEnvironmentBoth    = "both"
)

// 苗圃匹配等级
const (
	MatchTierCommune = 1
	MatchTierCity    = 2
	MatchTierOther   = 3
)

// 默认币种
const DefaultCurrency = "USD"

// 队列名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 队列任务类型
const (
	TaskOrderConfirmed     = "order:confirmed"
	TaskInventoryReconcile = "inventory:reconcile"
)

// 上下文键
const (
	ContextKeyRequestID = "request_id"
	ContextKeyAdminID   = "admin_id"
	ContextKeyUsername  = "username"
	ContextKeyIsSuper   = "admin_is_super"
)
