package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeProducts(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		products, err := DecodeProducts(strings.NewReader(`
products:
  - ref: TS-001
    name: Tee
    price: 2499
    color: blue
    image: /img/ts-001.jpg
`))

		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "TS-001", products[0].Ref)
		assert.Equal(t, int64(2499), products[0].Price)
		assert.Equal(t, "/img/ts-001.jpg", products[0].Image)
	})

	t.Run("json", func(t *testing.T) {
		products, err := DecodeProducts(strings.NewReader(`{"products": [{"ref": "HD-002", "name": "Hoodie", "price": 5999}]}`))

		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Hoodie", products[0].Name)
	})

	t.Run("empty input", func(t *testing.T) {
		products, err := DecodeProducts(strings.NewReader(""))

		require.NoError(t, err)
		assert.Empty(t, products)
	})

	tests := []struct {
		name  string
		input string
	}{
		{name: "missing name", input: "products:\n  - ref: TS-001\n    price: 1\n"},
		{name: "negative price", input: "products:\n  - ref: TS-001\n    name: Tee\n    price: -1\n"},
		{name: "duplicate ref", input: "products:\n  - ref: TS-001\n    name: Tee\n  - ref: TS-001\n    name: Tee\n"},
		{name: "malformed", input: "products: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeProducts(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}
