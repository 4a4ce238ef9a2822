// Package output provides utilities for formatting and displaying balance results.
package output

import (
	"fmt"
	"strings"

	"github.com/minesite-tools/water-balance/internal/balance"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrorPercentString renders the balance error for display, using N/A when
// the inflow total was zero and the percentage is undefined.
func ErrorPercentString(result balance.Result) string {
	if !result.ErrorPercentDefined {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", result.ErrorPercent)
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(result balance.Result) {
	p := message.NewPrinter(language.English)
	fmt.Printf("--- Water balance ---\n")
	_, _ = p.Printf("Total inflow        | %.3f m³\n", result.TotalInflow)
	_, _ = p.Printf("Total recirculation | %.3f m³\n", result.TotalRecirculation)
	_, _ = p.Printf("Total outflow       | %.3f m³\n", result.TotalOutflow)
	_, _ = p.Printf("Delta               | %.3f m³\n", result.Delta)
	fmt.Printf("Balance error       | %s\n", ErrorPercentString(result))
	if len(result.ExcludedFlows) > 0 {
		fmt.Printf("Disabled flows excluded: %s\n", strings.Join(result.ExcludedFlows, ","))
	}
	if len(result.UnknownFlows) > 0 {
		fmt.Printf("Unknown flows skipped: %s\n", strings.Join(result.UnknownFlows, ","))
	}
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(result balance.Result) {
	fmt.Printf(`"total inflow","total recirculation","total outflow","delta","error percent","excluded flows","unknown flows"`)
	fmt.Printf("\n")
	errorPercent := ""
	if result.ErrorPercentDefined {
		errorPercent = fmt.Sprintf("%.2f", result.ErrorPercent)
	}
	fmt.Printf(`"%.3f","%.3f","%.3f","%.3f","%s","%s","%s"`,
		result.TotalInflow,
		result.TotalRecirculation,
		result.TotalOutflow,
		result.Delta,
		errorPercent,
		strings.Join(result.ExcludedFlows, ","),
		strings.Join(result.UnknownFlows, ","),
	)
	fmt.Printf("\n")
}
