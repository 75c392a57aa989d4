package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg                *prometheus.Registry
	Evaluations        prometheus.Counter
	EvaluatedOrders    prometheus.Counter
	EvaluationDuration prometheus.Histogram
	BestOfferScore     prometheus.Gauge
	OrderDecisions     *prometheus.CounterVec
	DemandDecisions    *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	evaluations := prometheus.NewCounter(prometheus.CounterOpts{Name: "procurement_evaluations_total"})
	evaluated := prometheus.NewCounter(prometheus.CounterOpts{Name: "procurement_evaluated_orders_total"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "procurement_evaluation_duration_seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
	})
	best := prometheus.NewGauge(prometheus.GaugeOpts{Name: "procurement_best_offer_score"})
	orderDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "procurement_order_decisions_total"}, []string{"decision"})
	demandDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "procurement_demand_decisions_total"}, []string{"role", "decision"})

	r.MustRegister(evaluations, evaluated, duration, best, orderDecisions, demandDecisions)
	return &Registry{
		reg:                r,
		Evaluations:        evaluations,
		EvaluatedOrders:    evaluated,
		EvaluationDuration: duration,
		BestOfferScore:     best,
		OrderDecisions:     orderDecisions,
		DemandDecisions:    demandDecisions,
	}
}

// ObserveEvaluation is safe to call on a nil registry.
func (r *Registry) ObserveEvaluation(orders int, took time.Duration, best *float64) {
	if r == nil {
		return
	}
	r.Evaluations.Inc()
	r.EvaluatedOrders.Add(float64(orders))
	r.EvaluationDuration.Observe(took.Seconds())
	if best != nil {
		r.BestOfferScore.Set(*best)
	}
}

func (r *Registry) ObserveOrderDecision(decision string) {
	if r == nil {
		return
	}
	r.OrderDecisions.WithLabelValues(decision).Inc()
}

func (r *Registry) ObserveDemandDecision(role, decision string) {
	if r == nil {
		return
	}
	r.DemandDecisions.WithLabelValues(role, decision).Inc()
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
