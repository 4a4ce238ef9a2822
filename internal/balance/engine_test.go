package balance

import (
	"reflect"
	"testing"

	"github.com/minesite-tools/water-balance/internal/catalog"
	"github.com/minesite-tools/water-balance/pkg/mathutil"
	"go.uber.org/zap"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.NewCatalog([]catalog.FlowDefinition{
		{Code: "PIT-DEWATER", Name: "Pit dewatering", Category: catalog.CategoryInflow, NominalVolume: 1200},
		{Code: "RAIN-RUNOFF", Name: "Rainfall runoff", Category: catalog.CategoryInflow, NominalVolume: 450},
		{Code: "PLANT-RETURN", Name: "Process plant return water", Category: catalog.CategoryRecirculation, NominalVolume: 800},
		{Code: "OUT-A", Name: "Discharge A", Category: catalog.CategoryOutflow, NominalVolume: 100},
		{Code: "OUT-B", Name: "Discharge B", Category: catalog.CategoryOutflow, NominalVolume: 200},
		{Code: "OUT-C", Name: "Discharge C", Category: catalog.CategoryOutflow, NominalVolume: 50},
	})
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return cat
}

func TestCalculateEmptyConfigIncludesEverything(t *testing.T) {
	engine := NewEngine(zap.NewNop(), testCatalog(t))

	measured := []MeasuredFlow{
		{Code: "PIT-DEWATER", Value: 1000},
		{Code: "RAIN-RUNOFF", Value: 500},
		{Code: "PLANT-RETURN", Value: 300},
		{Code: "OUT-A", Value: 700},
	}

	result := engine.Calculate(measured, map[string]bool{})

	if result.TotalInflow != 1500 {
		t.Errorf("TotalInflow = %v, want 1500", result.TotalInflow)
	}
	if result.TotalRecirculation != 300 {
		t.Errorf("TotalRecirculation = %v, want 300", result.TotalRecirculation)
	}
	if result.TotalOutflow != 700 {
		t.Errorf("TotalOutflow = %v, want 700", result.TotalOutflow)
	}
	if result.Delta != 500 {
		t.Errorf("Delta = %v, want 500", result.Delta)
	}
	if !result.ErrorPercentDefined {
		t.Fatal("expected error percent defined with positive inflow")
	}
	if !mathutil.WithinTolerance(result.ErrorPercent, 33.333333, 0.001) {
		t.Errorf("ErrorPercent = %v, want ~33.33", result.ErrorPercent)
	}
}

func TestCalculateDisabledFlowExcluded(t *testing.T) {
	// Catalog has outflows A(100), B(200), C(50); config disables B.
	engine := NewEngine(zap.NewNop(), testCatalog(t))

	measured := []MeasuredFlow{
		{Code: "OUT-A", Value: 100},
		{Code: "OUT-B", Value: 200},
		{Code: "OUT-C", Value: 50},
	}
	config := map[string]bool{"OUT-B": false}

	result := engine.Calculate(measured, config)

	if result.TotalOutflow != 150 {
		t.Errorf("TotalOutflow = %v, want 150", result.TotalOutflow)
	}
	if result.TotalInflow != 0 {
		t.Errorf("TotalInflow = %v, want 0 (other categories unaffected)", result.TotalInflow)
	}
	if result.TotalRecirculation != 0 {
		t.Errorf("TotalRecirculation = %v, want 0 (other categories unaffected)", result.TotalRecirculation)
	}
	if !reflect.DeepEqual(result.ExcludedFlows, []string{"OUT-B"}) {
		t.Errorf("ExcludedFlows = %v, want [OUT-B]", result.ExcludedFlows)
	}
}

func TestCalculateConfigWithUnknownCodeIgnored(t *testing.T) {
	engine := NewEngine(zap.NewNop(), testCatalog(t))

	measured := []MeasuredFlow{
		{Code: "OUT-A", Value: 100},
	}

	baseline := engine.Calculate(measured, map[string]bool{})
	// Config references code D which is neither measured nor in the catalog.
	withStale := engine.Calculate(measured, map[string]bool{"OUT-D": false})

	if !reflect.DeepEqual(baseline, withStale) {
		t.Errorf("stale config entry changed the result: %+v vs %+v", baseline, withStale)
	}
}

func TestCalculateUnknownMeasuredCodeSkipped(t *testing.T) {
	engine := NewEngine(zap.NewNop(), testCatalog(t))

	measured := []MeasuredFlow{
		{Code: "PIT-DEWATER", Value: 1000},
		{Code: "GHOST-FLOW", Value: 9999},
	}

	result := engine.Calculate(measured, map[string]bool{})

	if result.TotalInflow != 1000 {
		t.Errorf("TotalInflow = %v, want 1000 (unknown flow must not contribute)", result.TotalInflow)
	}
	if !reflect.DeepEqual(result.UnknownFlows, []string{"GHOST-FLOW"}) {
		t.Errorf("UnknownFlows = %v, want [GHOST-FLOW]", result.UnknownFlows)
	}
}

func TestCalculateZeroInflowErrorUndefined(t *testing.T) {
	engine := NewEngine(zap.NewNop(), testCatalog(t))

	measured := []MeasuredFlow{
		{Code: "OUT-A", Value: 50},
	}

	result := engine.Calculate(measured, map[string]bool{})

	if result.TotalOutflow != 50 {
		t.Errorf("TotalOutflow = %v, want 50", result.TotalOutflow)
	}
	if result.Delta != -50 {
		t.Errorf("Delta = %v, want -50", result.Delta)
	}
	if result.ErrorPercentDefined {
		t.Error("expected error percent undefined with zero inflow")
	}
	if result.ErrorPercent != 0 {
		t.Errorf("ErrorPercent = %v, want 0 sentinel", result.ErrorPercent)
	}
}

func TestCalculateIdempotent(t *testing.T) {
	engine := NewEngine(zap.NewNop(), testCatalog(t))

	measured := []MeasuredFlow{
		{Code: "PIT-DEWATER", Value: 1000.125},
		{Code: "PLANT-RETURN", Value: 300.5},
		{Code: "OUT-B", Value: 200},
		{Code: "GHOST-FLOW", Value: 1},
	}
	config := map[string]bool{"OUT-B": false}

	first := engine.Calculate(measured, config)
	second := engine.Calculate(measured, config)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Calculate() not idempotent: %+v vs %+v", first, second)
	}
}

func TestCalculateExactSummation(t *testing.T) {
	// 0.1 + 0.2 style float drift must not leak into totals.
	engine := NewEngine(zap.NewNop(), testCatalog(t))

	measured := []MeasuredFlow{
		{Code: "PIT-DEWATER", Value: 0.1},
		{Code: "RAIN-RUNOFF", Value: 0.2},
	}

	result := engine.Calculate(measured, map[string]bool{})

	if result.TotalInflow != 0.3 {
		t.Errorf("TotalInflow = %v, want exactly 0.3", result.TotalInflow)
	}
}

func TestCalculateNilLoggerDefaultsToNop(t *testing.T) {
	engine := NewEngine(nil, testCatalog(t))

	result := engine.Calculate([]MeasuredFlow{{Code: "GHOST-FLOW", Value: 1}}, nil)
	if len(result.UnknownFlows) != 1 {
		t.Errorf("UnknownFlows = %v, want one entry", result.UnknownFlows)
	}
}
