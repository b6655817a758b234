package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 确认结果标签
const (
	ResultSuccess      = "success"
	ResultInsufficient = "insufficient_inventory"
	ResultRejected     = "rejected"
	ResultError        = "error"
)

// FulfillmentMetrics 履约分配相关指标
type FulfillmentMetrics struct {
	allocations     *prometheus.CounterVec
	confirmations   *prometheus.CounterVec
	confirmDuration prometheus.Histogram
	stockUpserts    prometheus.Counter
	reconciled      prometheus.Counter
}

// NewFulfillmentMetrics 在给定 registerer 上注册指标，reg 为空时返回空实现
func NewFulfillmentMetrics(reg prometheus.Registerer) *FulfillmentMetrics {
	if reg == nil {
		return &FulfillmentMetrics{}
	}
	m := &FulfillmentMetrics{
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fulfillment_allocations_total",
			Help: "Allocation commits by result.",
		}, []string{"result"}),
		confirmations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fulfillment_confirmations_total",
			Help: "Allocation confirmations by result.",
		}, []string{"result"}),
		confirmDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fulfillment_confirm_duration_seconds",
			Help:    "Duration of allocation confirmation transactions.",
			Buckets: prometheus.DefBuckets,
		}),
		stockUpserts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nursery_stock_upserts_total",
			Help: "Nursery stock upserts.",
		}),
		reconciled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "global_inventory_reconciled_total",
			Help: "Global inventory rows corrected by reconciliation.",
		}),
	}
	reg.MustRegister(m.allocations, m.confirmations, m.confirmDuration, m.stockUpserts, m.reconciled)
	return m
}

// IncAllocation 记录一次分配提交
func (m *FulfillmentMetrics) IncAllocation(result string) {
	if m == nil || m.allocations == nil {
		return
	}
	m.allocations.WithLabelValues(normalizeLabel(result)).Inc()
}

// ObserveConfirmation 记录一次确认及耗时
func (m *FulfillmentMetrics) ObserveConfirmation(result string, duration time.Duration) {
	if m == nil || m.confirmations == nil {
		return
	}
	m.confirmations.WithLabelValues(normalizeLabel(result)).Inc()
	m.confirmDuration.Observe(duration.Seconds())
}

// IncStockUpsert 记录一次库存设置
func (m *FulfillmentMetrics) IncStockUpsert() {
	if m == nil || m.stockUpserts == nil {
		return
	}
	m.stockUpserts.Inc()
}

// AddReconcileCorrections 记录对账修正行数
func (m *FulfillmentMetrics) AddReconcileCorrections(n int) {
	if m == nil || m.reconciled == nil || n <= 0 {
		return
	}
	m.reconciled.Add(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
