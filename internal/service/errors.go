package service

import (
	"errors"
	"fmt"
)

// 错误分类，handler 依据分类映射 HTTP 状态
var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrInvalidState          = errors.New("invalid state")
	ErrInsufficientInventory = errors.New("insufficient inventory")
)

// 资源不存在
var (
	ErrOrderNotFound       = fmt.Errorf("%w: order", ErrNotFound)
	ErrNurseryNotFound     = fmt.Errorf("%w: nursery", ErrNotFound)
	ErrProductNotFound     = fmt.Errorf("%w: product", ErrNotFound)
	ErrFulfillmentNotFound = fmt.Errorf("%w: fulfillment", ErrNotFound)
)

// 参数错误
var (
	ErrOrderItemNotInOrder        = fmt.Errorf("%w: order item does not belong to order", ErrInvalidArgument)
	ErrAllocationQuantityExceeded = fmt.Errorf("%w: allocated quantity exceeds ordered quantity", ErrInvalidArgument)
	ErrAllocationQuantityInvalid  = fmt.Errorf("%w: allocated quantity must be positive", ErrInvalidArgument)
	ErrAllocationItemsEmpty       = fmt.Errorf("%w: allocation items are required", ErrInvalidArgument)
	ErrStockQuantityInvalid       = fmt.Errorf("%w: stock quantity must not be negative", ErrInvalidArgument)
	ErrOrderStatusInvalid         = fmt.Errorf("%w: unknown order status", ErrInvalidArgument)
	ErrOrderItemsEmpty            = fmt.Errorf("%w: order items are required", ErrInvalidArgument)
	ErrOrderItemQuantityInvalid   = fmt.Errorf("%w: order item quantity must be positive", ErrInvalidArgument)
	ErrShippingAddressInvalid     = fmt.Errorf("%w: shipping address is incomplete", ErrInvalidArgument)
	ErrDeliveryContactInvalid     = fmt.Errorf("%w: delivery name and phone are required", ErrInvalidArgument)
	ErrProductInvalid             = fmt.Errorf("%w: product fields are invalid", ErrInvalidArgument)
	ErrProductSlugExists          = fmt.Errorf("%w: product slug already exists", ErrInvalidArgument)
	ErrNurseryInvalid             = fmt.Errorf("%w: nursery name and city are required", ErrInvalidArgument)
	ErrNurseryCoordinatesInvalid  = fmt.Errorf("%w: nursery coordinates are out of range", ErrInvalidArgument)
)

// 状态错误
var (
	ErrOrderNoShippingAddress = fmt.Errorf("%w: order has no shipping address", ErrInvalidState)
	ErrNoProposedFulfillments = fmt.Errorf("%w: no proposed fulfillments found for this order", ErrInvalidState)
	ErrOrderCancelled         = fmt.Errorf("%w: order is cancelled", ErrInvalidState)
)

// 认证错误
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenRevoked       = errors.New("token revoked")
)
