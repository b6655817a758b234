package worker

import (
	"context"
	"errors"
	"time"

	"github.com/flower-vendor/internal/config"
	"github.com/flower-vendor/internal/logger"
	"github.com/flower-vendor/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务
type Service struct {
	name              string
	server            *asynq.Server
	mux               *asynq.ServeMux
	consumer          *Consumer
	reconcileInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer, reconcileInterval time.Duration) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:              "worker",
		server:            server,
		mux:               mux,
		consumer:          consumer,
		reconcileInterval: reconcileInterval,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.reconcileInterval > 0 && s.consumer != nil {
		go runReconcileLoop(ctx, s.reconcileInterval, s.consumer.scheduleReconcile)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// scheduleReconcile 优先投递对账任务，队列不可用时直接执行
func (c *Consumer) scheduleReconcile(ctx context.Context, interval time.Duration) {
	if c == nil || c.Container == nil {
		return
	}
	if c.QueueClient.Enabled() {
		if err := c.QueueClient.EnqueueInventoryReconcile(queue.InventoryReconcilePayload{}, interval); err != nil {
			logger.Warnw("worker_inventory_reconcile_enqueue_failed", "error", err)
		}
		return
	}
	if c.InventoryService == nil {
		return
	}
	if _, err := c.InventoryService.ReconcileAll(ctx); err != nil {
		logger.Warnw("worker_inventory_reconcile_failed", "error", err)
	}
}

func runReconcileLoop(ctx context.Context, interval time.Duration, runOnce func(context.Context, time.Duration)) {
	if interval <= 0 || runOnce == nil {
		return
	}
	runOnce(ctx, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce(ctx, interval)
		}
	}
}

// ReconcileService 队列未启用时的进程内定时对账
type ReconcileService struct {
	consumer *Consumer
	interval time.Duration
}

// NewReconcileService 创建进程内定时对账服务
func NewReconcileService(consumer *Consumer, interval time.Duration) *ReconcileService {
	return &ReconcileService{consumer: consumer, interval: interval}
}

// Name 服务名称
func (s *ReconcileService) Name() string {
	return "reconcile"
}

// Start 阻塞运行直至 ctx 结束
func (s *ReconcileService) Start(ctx context.Context) error {
	if s == nil || s.consumer == nil {
		return errors.New("reconcile service not initialized")
	}
	if s.interval <= 0 {
		<-ctx.Done()
		return nil
	}
	runReconcileLoop(ctx, s.interval, s.consumer.scheduleReconcile)
	return nil
}

// Stop 停止服务
func (s *ReconcileService) Stop(ctx context.Context) error {
	return nil
}
