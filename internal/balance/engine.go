// Package balance computes the site water balance over enabled flows.
package balance

import (
	"github.com/minesite-tools/water-balance/internal/catalog"
	"github.com/minesite-tools/water-balance/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MeasuredFlow is one measured volume for a calculation run, supplied by an
// external loader. It is read-only input for the duration of one calculation.
type MeasuredFlow struct {
	Code  string
	Value float64 // m³
}

// Result holds the aggregate balance for one calculation run. It is derived
// output only and never persisted by this package.
type Result struct {
	TotalInflow        float64
	TotalOutflow       float64
	TotalRecirculation float64

	// Delta is TotalInflow - TotalOutflow - TotalRecirculation, the
	// recirculation total standing in for the storage change.
	Delta float64

	// ErrorPercent is |Delta| / TotalInflow * 100. It is only meaningful
	// when ErrorPercentDefined is true; with zero inflow it is left at
	// zero and flagged undefined so a real imbalance is not masked.
	ErrorPercent        float64
	ErrorPercentDefined bool

	// ExcludedFlows lists measured codes skipped because they are
	// disabled in the configuration, in input order.
	ExcludedFlows []string

	// UnknownFlows lists measured codes skipped because the catalog has
	// no definition for them, in input order.
	UnknownFlows []string
}

// Engine filters measured flows against the catalog and configuration and
// aggregates per-category totals.
type Engine struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// NewEngine creates a balance engine for the given catalog.
func NewEngine(logger *zap.Logger, cat *catalog.Catalog) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{catalog: cat, logger: logger}
}

// Calculate computes the balance over the measured flows. Inclusion of each
// flow is decided by the configuration mapping, defaulting to enabled for
// codes the mapping does not mention. Measured codes with no catalog entry
// are logged and skipped; the calculation always runs to completion.
func (e *Engine) Calculate(measured []MeasuredFlow, config map[string]bool) Result {
	var result Result
	totals := map[catalog.Category]decimal.Decimal{
		catalog.CategoryInflow:        decimal.Zero,
		catalog.CategoryRecirculation: decimal.Zero,
		catalog.CategoryOutflow:       decimal.Zero,
	}

	for _, flow := range measured {
		def, ok := e.catalog.Lookup(flow.Code)
		if !ok {
			e.logger.Warn("measured flow has no catalog entry, skipping",
				zap.String("op", "balance.Calculate"),
				zap.String("code", flow.Code),
			)
			result.UnknownFlows = append(result.UnknownFlows, flow.Code)
			continue
		}

		enabled, configured := config[flow.Code]
		if configured && !enabled {
			e.logger.Debug("flow disabled in configuration, excluding from totals",
				zap.String("op", "balance.Calculate"),
				zap.String("code", flow.Code),
			)
			result.ExcludedFlows = append(result.ExcludedFlows, flow.Code)
			continue
		}

		totals[def.Category] = totals[def.Category].Add(decimal.NewFromFloat(flow.Value))
	}

	result.TotalInflow = mathutil.Round(totals[catalog.CategoryInflow].InexactFloat64())
	result.TotalRecirculation = mathutil.Round(totals[catalog.CategoryRecirculation].InexactFloat64())
	result.TotalOutflow = mathutil.Round(totals[catalog.CategoryOutflow].InexactFloat64())

	delta := totals[catalog.CategoryInflow].
		Sub(totals[catalog.CategoryOutflow]).
		Sub(totals[catalog.CategoryRecirculation])
	result.Delta = mathutil.Round(delta.InexactFloat64())

	if mathutil.IsPositive(result.TotalInflow) {
		result.ErrorPercent = mathutil.CalculatePercentage(delta.Abs().InexactFloat64(), result.TotalInflow)
		result.ErrorPercentDefined = true
	}

	return result
}
