package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/flower-vendor/internal/logger"
	"github.com/flower-vendor/internal/provider"
	"github.com/flower-vendor/internal/queue"
	"github.com/flower-vendor/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderConfirmed, c.handleOrderConfirmed)
	mux.HandleFunc(queue.TaskInventoryReconcile, c.handleInventoryReconcile)
}

func (c *Consumer) handleOrderConfirmed(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_confirmed_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseOrderConfirmedPayload(task)
	if err != nil {
		logger.Warnw("worker_order_confirmed_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_confirmed_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.OrderService == nil {
		logger.Warnw("worker_order_confirmed_skip_order_service_nil", "order_id", payload.OrderID)
		return nil
	}
	detail, err := c.OrderService.Get(ctx, payload.OrderID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			logger.Debugw("worker_order_confirmed_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		}
		logger.Warnw("worker_order_confirmed_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}

	logger.Infow("worker_order_dispatch_ready",
		"order_id", detail.ID,
		"customer_email", detail.CustomerEmail,
		"fulfillments", len(detail.Fulfillments),
		"summary", buildOrderDispatchSummary(detail),
	)

	// 确认后的商品做一次增量对账
	if c.InventoryService != nil && len(payload.ProductIDs) > 0 {
		if _, err := c.InventoryService.ReconcileProducts(ctx, payload.ProductIDs); err != nil {
			logger.Warnw("worker_order_confirmed_reconcile_failed", "order_id", payload.OrderID, "error", err)
			return err
		}
	}
	return nil
}

func (c *Consumer) handleInventoryReconcile(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.InventoryService == nil {
		logger.Debugw("worker_inventory_reconcile_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseInventoryReconcilePayload(task)
	if err != nil {
		logger.Warnw("worker_inventory_reconcile_unmarshal_failed", "error", err)
		return err
	}
	var corrected int
	if len(payload.ProductIDs) > 0 {
		corrected, err = c.InventoryService.ReconcileProducts(ctx, payload.ProductIDs)
	} else {
		corrected, err = c.InventoryService.ReconcileAll(ctx)
	}
	if err != nil {
		logger.Warnw("worker_inventory_reconcile_failed", "products", len(payload.ProductIDs), "error", err)
		return err
	}
	logger.Debugw("worker_inventory_reconcile_done", "products", len(payload.ProductIDs), "corrected", corrected)
	return nil
}

// buildOrderDispatchSummary 生成按苗圃分组的发货摘要
func buildOrderDispatchSummary(detail *service.OrderDetail) string {
	if detail == nil {
		return ""
	}
	blocks := make([]string, 0, len(detail.Fulfillments))
	for _, f := range detail.Fulfillments {
		if len(f.Items) == 0 {
			continue
		}
		nursery := "unassigned"
		if f.NurseryName != nil && strings.TrimSpace(*f.NurseryName) != "" {
			nursery = strings.TrimSpace(*f.NurseryName)
		}
		lines := make([]string, 0, len(f.Items)+1)
		lines = append(lines, fmt.Sprintf("[%s]", nursery))
		for _, item := range f.Items {
			name := fmt.Sprintf("item#%d", item.OrderItemID)
			if item.OrderItemProductName != nil {
				name = *item.OrderItemProductName
			}
			lines = append(lines, fmt.Sprintf("%s x%d", name, item.Quantity))
		}
		if contact := formatDeliveryContact(f); contact != "" {
			lines = append(lines, "contact: "+contact)
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

func formatDeliveryContact(f service.FulfillmentView) string {
	parts := make([]string, 0, 2)
	if f.DeliveryName != nil && strings.TrimSpace(*f.DeliveryName) != "" {
		parts = append(parts, strings.TrimSpace(*f.DeliveryName))
	}
	if f.DeliveryPhone != nil && strings.TrimSpace(*f.DeliveryPhone) != "" {
		parts = append(parts, strings.TrimSpace(*f.DeliveryPhone))
	}
	return strings.Join(parts, " ")
}
