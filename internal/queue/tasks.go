package queue

import (
	"encoding/json"

	"github.com/flower-vendor/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderConfirmed 订单分配确认后的通知任务
	TaskOrderConfirmed = constants.TaskOrderConfirmed
	// TaskInventoryReconcile 全局库存对账任务
	TaskInventoryReconcile = constants.TaskInventoryReconcile
)

// OrderConfirmedPayload 订单确认任务载荷
type OrderConfirmedPayload struct {
	OrderID        uint   `json:"order_id"`
	FulfillmentIDs []uint `json:"fulfillment_ids"`
	ProductIDs     []uint `json:"product_ids"`
}

// InventoryReconcilePayload 对账任务载荷，ProductIDs 为空表示全量
type InventoryReconcilePayload struct {
	ProductIDs []uint `json:"product_ids,omitempty"`
}

// NewOrderConfirmedTask 创建订单确认任务
func NewOrderConfirmedTask(payload OrderConfirmedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderConfirmed, body), nil
}

// NewInventoryReconcileTask 创建库存对账任务
func NewInventoryReconcileTask(payload InventoryReconcilePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInventoryReconcile, body), nil
}

// ParseOrderConfirmedPayload 解析订单确认任务载荷
func ParseOrderConfirmedPayload(task *asynq.Task) (OrderConfirmedPayload, error) {
	var payload OrderConfirmedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	return payload, nil
}

// ParseInventoryReconcilePayload 解析对账任务载荷
func ParseInventoryReconcilePayload(task *asynq.Task) (InventoryReconcilePayload, error) {
	var payload InventoryReconcilePayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	return payload, nil
}
