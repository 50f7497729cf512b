package model

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Product mirrors the backend wire format. Sizes is a comma separated list
// ("S,M,L") and SizePrices a JSON object of per-size overrides ({"S":100}),
// both stored as opaque strings the way the backend keeps them.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory,omitempty"`
	Details     string          `json:"details,omitempty"`
	Sizes       string          `json:"sizes,omitempty"`
	SizePrices  string          `json:"sizePrices,omitempty"`
	Deleted     bool            `json:"deleted"`
}

// SizeList splits the comma separated size field, dropping blanks.
func (p *Product) SizeList() []string {
	if p.Sizes == "" {
		return nil
	}
	parts := strings.Split(p.Sizes, ",")
	sizes := make([]string, 0, len(parts))
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			sizes = append(sizes, s)
		}
	}
	return sizes
}

// SizeOverrides decodes the per-size price map. A missing or malformed field
// yields an empty map.
func (p *Product) SizeOverrides() map[string]decimal.Decimal {
	overrides := map[string]decimal.Decimal{}
	if p.SizePrices == "" {
		return overrides
	}
	if err := json.Unmarshal([]byte(p.SizePrices), &overrides); err != nil {
		return map[string]decimal.Decimal{}
	}
	return overrides
}

// PriceForSize resolves the price charged for a size: the explicit override
// when one exists, the base price otherwise.
func (p *Product) PriceForSize(size string) decimal.Decimal {
	if size == "" {
		return p.Price
	}
	if v, ok := p.SizeOverrides()[size]; ok {
		return v
	}
	return p.Price
}
