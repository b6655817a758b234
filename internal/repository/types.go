package repository

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page             int
	PageSize         int
	Kind             string
	PlantEnvironment string
	Search           string
	OnlyActive       bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page     int
	PageSize int
	Status   string
	UserID   uint
}

// NurseryListFilter 查询苗圃列表的过滤条件
type NurseryListFilter struct {
	City   string
	Search string
}

// StockKey 苗圃库存定位键
type StockKey struct {
	NurseryID uint
	ProductID uint
}
