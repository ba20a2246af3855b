package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CartActionsTotal counts dispatched card clicks by action.
	CartActionsTotal *prometheus.CounterVec
	// CartStoreErrorsTotal counts failed reads and writes of the persisted cart.
	CartStoreErrorsTotal *prometheus.CounterVec
	// CartSessionsTotal counts sessions created by the widget host.
	CartSessionsTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers cart collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CartActionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_actions_total",
			Help:      "Count of dispatched cart clicks by action.",
		}, []string{"action"})
		CartStoreErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_store_errors_total",
			Help:      "Count of failed cart store operations.",
		}, []string{"op"})
		CartSessionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_sessions_total",
			Help:      "Number of cart sessions issued.",
		})

		mustRegisterCollector(reg, CartActionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CartActionsTotal = v
			}
		})
		mustRegisterCollector(reg, CartStoreErrorsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CartStoreErrorsTotal = v
			}
		})
		mustRegisterCollector(reg, CartSessionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				CartSessionsTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
