// Package constants provides shared constants for the water-balance application.
package constants

// Volume constants
const (
	// VolumePrecision is the precision for volume rounding (3 decimal places, 1 litre)
	VolumePrecision = 1000

	// VolumeTolerance is the tolerance for volume comparisons (1 litre)
	VolumeTolerance = 0.001

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultCatalogFile is the default flow catalog template file name
	DefaultCatalogFile = "catalog.yaml"

	// DefaultFlowConfigFile is the default flow enable/disable config file name
	DefaultFlowConfigFile = "flow-config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for measurement files (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)
