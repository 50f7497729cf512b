// Package admin holds the dashboard's form state machines.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"shopscript-storefront/internal/model"
)

var (
	ErrSizeExists   = errors.New("size already added")
	ErrSizeNotFound = errors.New("size not present")
)

// Draft is the working copy of the product fields under edit.
type Draft struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
	Details     string          `json:"details"`
}

// ProductWriter is the slice of the backend client the form needs.
type ProductWriter interface {
	CreateProduct(ctx context.Context, p *model.Product) (*model.Product, error)
	UpdateProduct(ctx context.Context, id int64, p *model.Product) (*model.Product, error)
}

// ProductForm creates or updates a product. Sizes are kept as an ordered list
// parallel to a size-to-price override map; a size without an override falls
// back to the draft's base price.
type ProductForm struct {
	mu        sync.Mutex
	draft     Draft
	editingID int64
	sizes     []string
	overrides map[string]decimal.Decimal
}

func NewProductForm() *ProductForm {
	return &ProductForm{overrides: map[string]decimal.Decimal{}}
}

func (f *ProductForm) Draft() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

func (f *ProductForm) SetDraft(d Draft) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = d
}

// Editing reports the remembered product id, 0 when the form will create.
func (f *ProductForm) Editing() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.editingID
}

// BeginEdit populates the draft from an existing product and remembers its
// identifier, switching the form into update mode.
func (f *ProductForm) BeginEdit(p model.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.draft = Draft{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
		Category:    p.Category,
		Subcategory: p.Subcategory,
		Details:     p.Details,
	}
	f.editingID = p.ID
	f.sizes = p.SizeList()
	f.overrides = p.SizeOverrides()
}

// AddSize appends a size, optionally with a price override. A size already on
// the list is rejected.
func (f *ProductForm) AddSize(size string, override *decimal.Decimal) error {
	size = strings.TrimSpace(size)
	if size == "" {
		return errors.New("size must not be empty")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, s := range f.sizes {
		if s == size {
			return ErrSizeExists
		}
	}
	f.sizes = append(f.sizes, size)
	if override != nil {
		f.overrides[size] = *override
	}
	return nil
}

// RemoveSize drops the size from the list and its override from the map.
func (f *ProductForm) RemoveSize(size string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, s := range f.sizes {
		if s == size {
			f.sizes = append(f.sizes[:i], f.sizes[i+1:]...)
			delete(f.overrides, size)
			return nil
		}
	}
	return ErrSizeNotFound
}

func (f *ProductForm) Sizes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	sizes := make([]string, len(f.sizes))
	copy(sizes, f.sizes)
	return sizes
}

// PriceForSize is the display price: the override when set, the draft's base
// price otherwise.
func (f *ProductForm) PriceForSize(size string) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.overrides[size]; ok {
		return v
	}
	return f.draft.Price
}

// Submit creates or updates depending on whether an id is remembered, then
// resets the draft. Category is retained for faster repeated entry into the
// same bucket.
func (f *ProductForm) Submit(ctx context.Context, products ProductWriter) (*model.Product, error) {
	f.mu.Lock()
	product, editingID, err := f.assemble()
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var saved *model.Product
	if editingID != 0 {
		saved, err = products.UpdateProduct(ctx, editingID, product)
	} else {
		saved, err = products.CreateProduct(ctx, product)
	}
	if err != nil {
		return nil, fmt.Errorf("submit product: %w", err)
	}

	f.reset()
	return saved, nil
}

func (f *ProductForm) assemble() (*model.Product, int64, error) {
	product := &model.Product{
		ID:          f.editingID,
		Name:        f.draft.Name,
		Description: f.draft.Description,
		Price:       f.draft.Price,
		ImageURL:    f.draft.ImageURL,
		Stock:       f.draft.Stock,
		Category:    f.draft.Category,
		Subcategory: f.draft.Subcategory,
		Details:     f.draft.Details,
		Sizes:       strings.Join(f.sizes, ","),
	}

	if len(f.overrides) > 0 {
		raw, err := json.Marshal(f.overrides)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal size prices: %w", err)
		}
		product.SizePrices = string(raw)
	}
	return product, f.editingID, nil
}

func (f *ProductForm) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	category := f.draft.Category
	f.draft = Draft{Category: category}
	f.editingID = 0
	f.sizes = nil
	f.overrides = map[string]decimal.Decimal{}
}
