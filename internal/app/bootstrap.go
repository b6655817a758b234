package app

import (
	"errors"
	"time"

	"github.com/flower-vendor/internal/config"
	"github.com/flower-vendor/internal/logger"
	"github.com/flower-vendor/internal/provider"
	"github.com/flower-vendor/internal/router"
	"github.com/flower-vendor/internal/worker"

	"gorm.io/gorm"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, db *gorm.DB, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if mode != ModeAll && mode != ModeAPI && mode != ModeWorker {
		return nil, errors.New("unknown mode: " + mode)
	}

	container, err := provider.NewContainer(cfg, db)
	if err != nil {
		return nil, err
	}

	var services []Service

	// 初始化 HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(cfg.Server.Addr(), engine))
	}

	// 初始化 Worker 服务，队列未启用时退化为进程内定时对账
	if mode == ModeAll || mode == ModeWorker {
		consumer := worker.NewConsumer(container)
		interval := time.Duration(cfg.Inventory.ReconcileIntervalSeconds) * time.Second
		if cfg.Queue.Enabled {
			workerService, err := worker.NewService(&cfg.Queue, consumer, interval)
			if err != nil {
				container.Close()
				return nil, err
			}
			services = append(services, workerService)
		} else if mode == ModeWorker {
			container.Close()
			return nil, errors.New("worker mode requires queue.enabled")
		} else {
			logger.Warnw("app_queue_disabled", "fallback", "in_process_reconcile", "interval_seconds", cfg.Inventory.ReconcileIntervalSeconds)
			services = append(services, worker.NewReconcileService(consumer, interval))
		}
	}

	return NewRunner(services...).withCloser(container.Close), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.DB, opts.Mode)
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start", "addr", opts.Config.Server.Addr(), "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
