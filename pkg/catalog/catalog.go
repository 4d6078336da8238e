package catalog

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Model is a single priced model offered by a provider.
type Model struct {
	Name            string  `yaml:"name" json:"name"`
	PricePerMillion float64 `yaml:"price_per_million_tokens" json:"price_per_million_tokens"`
	Reasoning       bool    `yaml:"reasoning" json:"is_reasoning"`
}

// Provider groups the models of one vendor. Model order is display order.
type Provider struct {
	Name   string  `yaml:"name"`
	Models []Model `yaml:"models"`
}

// Catalog is an ordered collection of providers.
type Catalog struct {
	Providers []Provider `yaml:"providers"`
}

// Default returns the compiled-in reference catalog.
func Default() Catalog {
	return Catalog{
		Providers: []Provider{
			{
				Name: "openai",
				Models: []Model{
					{Name: "gpt-4o", PricePerMillion: 2.50},
					{Name: "o1-preview", PricePerMillion: 15.00, Reasoning: true},
					{Name: "o1", PricePerMillion: 20.00, Reasoning: true},
				},
			},
			{
				Name: "anthropic",
				Models: []Model{
					{Name: "claude-3.5-sonnet", PricePerMillion: 3.00},
					{Name: "claude-opus", PricePerMillion: 15.00},
				},
			},
			{
				Name: "deepseek",
				Models: []Model{
					{Name: "deepseek-v3", PricePerMillion: 6.00, Reasoning: true},
				},
			},
		},
	}
}

// ModelCount returns the total number of models across all providers.
func (c Catalog) ModelCount() int {
	n := 0
	for _, p := range c.Providers {
		n += len(p.Models)
	}
	return n
}

// Load reads and parses a YAML catalog file at the given path.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("reading catalog file %s: %w", path, err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parsing catalog file %s: %w", path, err)
	}
	return c, nil
}

// Validate checks provider and model fields and returns every problem found.
func (c Catalog) Validate() error {
	var errs []error

	seen := make(map[string]bool, len(c.Providers))
	for i, p := range c.Providers {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("providers[%d]: name is required", i))
		} else if seen[p.Name] {
			errs = append(errs, fmt.Errorf("provider %q: duplicate name", p.Name))
		}
		seen[p.Name] = true

		for j, m := range p.Models {
			if m.Name == "" {
				errs = append(errs, fmt.Errorf("provider %q: models[%d]: name is required", p.Name, j))
			}
			if !(m.PricePerMillion >= 0) || math.IsInf(m.PricePerMillion, 0) {
				errs = append(errs, fmt.Errorf("provider %q: model %q: price must be a finite number >= 0, got %.2f",
					p.Name, m.Name, m.PricePerMillion))
			}
		}
	}

	return errors.Join(errs...)
}
