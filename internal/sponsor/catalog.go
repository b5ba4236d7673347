package sponsor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"axees/internal/model"
)

// Catalog looks up products by id.
type Catalog interface {
	Product(id string) (model.Product, bool)
}

// StaticCatalog is an in-memory catalog.
type StaticCatalog map[string]model.Product

// Product implements Catalog.
func (c StaticCatalog) Product(id string) (model.Product, bool) {
	p, ok := c[id]
	return p, ok
}

type catalogFile struct {
	Products []model.Product `yaml:"products"`
}

// LoadCatalog reads a YAML file of the form `products: [...]`.
func LoadCatalog(path string) (StaticCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog document.
func ParseCatalog(data []byte) (StaticCatalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c := make(StaticCatalog, len(f.Products))
	for _, p := range f.Products {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog product without id")
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("product %s: negative price", p.ID)
		}
		c[p.ID] = p
	}
	return c, nil
}
