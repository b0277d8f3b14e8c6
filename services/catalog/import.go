package catalog

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type productFile struct {
	Products []Product `yaml:"products"`
}

// DecodeProducts reads a product list in YAML (or JSON, which YAML accepts)
// of the form {products: [...]}.
func DecodeProducts(r io.Reader) ([]Product, error) {
	var file productFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	seen := make(map[string]bool, len(file.Products))
	for i, product := range file.Products {
		if product.Ref == "" || product.Name == "" {
			return nil, fmt.Errorf("product %d: ref and name are required", i)
		}
		if product.Price < 0 {
			return nil, fmt.Errorf("product %s: price cannot be negative", product.Ref)
		}
		if seen[product.Ref] {
			return nil, fmt.Errorf("product %s: duplicate ref", product.Ref)
		}
		seen[product.Ref] = true
	}
	return file.Products, nil
}
