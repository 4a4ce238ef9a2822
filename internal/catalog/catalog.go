// Package catalog defines the static flow catalog template and includes
// functions for loading and querying it.
package catalog

import (
	"fmt"

	"github.com/minesite-tools/water-balance/pkg/validation"
	"github.com/spf13/viper"
)

// Category classifies a flow within the site water system.
type Category int

const (
	// CategoryInflow is water entering the site system.
	CategoryInflow Category = iota

	// CategoryRecirculation is water cycled back within the site system.
	CategoryRecirculation

	// CategoryOutflow is water leaving the site system.
	CategoryOutflow
)

// Categories lists all categories in presentation order.
var Categories = []Category{CategoryInflow, CategoryRecirculation, CategoryOutflow}

// String returns the configuration-file spelling of the category.
func (c Category) String() string {
	switch c {
	case CategoryInflow:
		return "inflow"
	case CategoryRecirculation:
		return "recirculation"
	case CategoryOutflow:
		return "outflow"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// ParseCategory converts a configuration-file category string into a Category.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "inflow":
		return CategoryInflow, nil
	case "recirculation":
		return CategoryRecirculation, nil
	case "outflow":
		return CategoryOutflow, nil
	}
	return CategoryInflow, fmt.Errorf("unknown flow category %q, expected inflow, recirculation, or outflow", s)
}

// FlowDefinition describes one named flow from the catalog template. It is
// immutable once loaded.
type FlowDefinition struct {
	Code          string
	Name          string
	Category      Category
	NominalVolume float64 // m³
}

// Catalog is the authoritative, ordered list of all flows the application
// knows about, indexed by code.
type Catalog struct {
	definitions []FlowDefinition
	byCode      map[string]int
}

// NewCatalog builds a catalog from flow definitions, preserving declaration
// order. Duplicate or invalid codes are rejected.
func NewCatalog(definitions []FlowDefinition) (*Catalog, error) {
	cat := &Catalog{
		definitions: make([]FlowDefinition, 0, len(definitions)),
		byCode:      make(map[string]int, len(definitions)),
	}
	for _, def := range definitions {
		if err := validation.ValidateFlowCode(def.Code); err != nil {
			return nil, err
		}
		if _, exists := cat.byCode[def.Code]; exists {
			return nil, fmt.Errorf("duplicate flow code %s in catalog", def.Code)
		}
		cat.byCode[def.Code] = len(cat.definitions)
		cat.definitions = append(cat.definitions, def)
	}
	return cat, nil
}

// Lookup returns the definition for the given code.
func (c *Catalog) Lookup(code string) (FlowDefinition, bool) {
	i, ok := c.byCode[code]
	if !ok {
		return FlowDefinition{}, false
	}
	return c.definitions[i], true
}

// Definitions returns all flow definitions in declaration order.
func (c *Catalog) Definitions() []FlowDefinition {
	out := make([]FlowDefinition, len(c.definitions))
	copy(out, c.definitions)
	return out
}

// ByCategory returns the definitions for one category in declaration order.
func (c *Catalog) ByCategory(category Category) []FlowDefinition {
	var out []FlowDefinition
	for _, def := range c.definitions {
		if def.Category == category {
			out = append(out, def)
		}
	}
	return out
}

// Len returns the number of flows in the catalog.
func (c *Catalog) Len() int {
	return len(c.definitions)
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level"`      // debug, info, warn, error
	Format     string `mapstructure:"format"`     // json, console
	OutputFile string `mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format"` // pretty, csv
}

// Template is the decoded catalog template file: the flow universe plus the
// application-level logging and output settings it carries.
type Template struct {
	Catalog *Catalog
	Logging LoggingConfig
	Output  OutputConfig
}

// templateFile mirrors the YAML layout of the catalog template before the
// category strings are validated into Category values.
type templateFile struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
	Flows   []flowEntry   `mapstructure:"flows"`
}

type flowEntry struct {
	Code          string  `mapstructure:"code"`
	Name          string  `mapstructure:"name"`
	Category      string  `mapstructure:"category"`
	NominalVolume float64 `mapstructure:"nominalVolume"`
}

// Load takes a file path as input and loads the YAML-formatted catalog
// template there.
func Load(path string) (*Template, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading catalog file, %s", err)
	}

	var file templateFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("unable to decode catalog into struct, %s", err)
	}

	if len(file.Flows) == 0 {
		return nil, fmt.Errorf("catalog %s defines no flows", path)
	}

	definitions := make([]FlowDefinition, 0, len(file.Flows))
	for _, entry := range file.Flows {
		category, err := ParseCategory(entry.Category)
		if err != nil {
			return nil, fmt.Errorf("flow %s: %w", entry.Code, err)
		}
		definitions = append(definitions, FlowDefinition{
			Code:          entry.Code,
			Name:          entry.Name,
			Category:      category,
			NominalVolume: entry.NominalVolume,
		})
	}

	cat, err := NewCatalog(definitions)
	if err != nil {
		return nil, err
	}

	return &Template{
		Catalog: cat,
		Logging: file.Logging,
		Output:  file.Output,
	}, nil
}
