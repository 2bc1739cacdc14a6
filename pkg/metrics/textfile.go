// Package metrics exports projections in the Prometheus text format for
// the node_exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pario-ai/costplan/pkg/estimator"
	"github.com/pario-ai/costplan/pkg/models"
)

const namespace = "costplan"

// Projection holds the gauges for one projection run.
//
// Metrics:
//   - costplan_projected_cost_usd{model,component}: input, output and total cost over the period
//   - costplan_projected_tokens{model,direction}: input and output tokens over the period
//   - costplan_period_days{model}: billing period length
//   - costplan_reduction_savings_usd{model}: saving under the token reduction scenario
type Projection struct {
	registry *prometheus.Registry
	cost     *prometheus.GaugeVec
	tokens   *prometheus.GaugeVec
	days     *prometheus.GaugeVec
	savings  *prometheus.GaugeVec
}

// NewProjection creates and registers projection gauges on a private registry.
func NewProjection() *Projection {
	p := &Projection{
		registry: prometheus.NewRegistry(),
		cost: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "projected_cost_usd",
				Help:      "Projected cost in USD over the billing period",
			},
			[]string{"model", "component"},
		),
		tokens: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "projected_tokens",
				Help:      "Projected tokens over the billing period",
			},
			[]string{"model", "direction"},
		),
		days: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "period_days",
				Help:      "Billing period length in days",
			},
			[]string{"model"},
		),
		savings: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "reduction_savings_usd",
				Help:      "Projected saving in USD under the token reduction scenario",
			},
			[]string{"model"},
		),
	}
	p.registry.MustRegister(p.cost, p.tokens, p.days, p.savings)
	return p
}

// SetBreakdown records a projection for model.
func (p *Projection) SetBreakdown(model string, params models.UsageParams, b models.CostBreakdown) {
	p.cost.WithLabelValues(model, "input").Set(b.InputCost)
	p.cost.WithLabelValues(model, "output").Set(b.OutputCost)
	p.cost.WithLabelValues(model, "total").Set(b.TotalCost)
	p.tokens.WithLabelValues(model, "input").Set(b.InputTokens)
	p.tokens.WithLabelValues(model, "output").Set(b.OutputTokens)
	p.days.WithLabelValues(model).Set(float64(params.Days))
}

// SetSavings records the reduction scenario saving for model.
func (p *Projection) SetSavings(model string, s estimator.Savings) {
	p.savings.WithLabelValues(model).Set(s.Amount())
}

// Gatherer exposes the registry.
func (p *Projection) Gatherer() prometheus.Gatherer {
	return p.registry
}

// WriteTextfile atomically writes all gauges to path.
func (p *Projection) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
