package catalog

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryCatalogRepo struct {
	nextID       int64
	products     map[int64]Product
	components   map[string]Component
	units        map[int64]Unit
	requirements []Requirement
	sizes        []ProductSize
}

func newMemoryCatalogRepo() *memoryCatalogRepo {
	return &memoryCatalogRepo{
		products:   make(map[int64]Product),
		components: make(map[string]Component),
		units:      make(map[int64]Unit),
	}
}

func (m *memoryCatalogRepo) id() int64 {
	m.nextID++
	return m.nextID
}

func componentKey(kind ComponentKind, id int64) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

func (m *memoryCatalogRepo) CreateProduct(_ context.Context, product Product) (int64, error) {
	for _, existing := range m.products {
		if existing.BusinessID == product.BusinessID && strings.EqualFold(existing.Name, product.Name) {
			return 0, ErrDuplicateName
		}
	}
	product.ID = m.id()
	m.products[product.ID] = product
	return product.ID, nil
}

func (m *memoryCatalogRepo) GetProduct(_ context.Context, businessID, id int64) (Product, error) {
	product, ok := m.products[id]
	if !ok || product.BusinessID != businessID {
		return Product{}, ErrNotFound
	}
	return product, nil
}

func (m *memoryCatalogRepo) ListProducts(_ context.Context, businessID int64, filter ListFilter) ([]Product, error) {
	var out []Product
	for _, product := range m.products {
		if product.BusinessID != businessID {
			continue
		}
		if filter.Search != "" && !strings.Contains(searchKey(product.Name), searchKey(filter.Search)) {
			continue
		}
		out = append(out, product)
	}
	return out, nil
}

func (m *memoryCatalogRepo) UpdateProduct(_ context.Context, product Product) error {
	existing, ok := m.products[product.ID]
	if !ok || existing.BusinessID != product.BusinessID {
		return ErrNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *memoryCatalogRepo) DeleteProduct(_ context.Context, businessID, id int64) error {
	existing, ok := m.products[id]
	if !ok || existing.BusinessID != businessID {
		return ErrNotFound
	}
	delete(m.products, id)
	kept := m.requirements[:0]
	for _, req := range m.requirements {
		if req.ProductID != id {
			kept = append(kept, req)
		}
	}
	m.requirements = kept
	return nil
}

func (m *memoryCatalogRepo) CreateComponent(_ context.Context, component Component) (int64, error) {
	for _, existing := range m.components {
		if existing.BusinessID == component.BusinessID && existing.Kind == component.Kind &&
			strings.EqualFold(existing.Name, component.Name) {
			return 0, ErrDuplicateName
		}
	}
	component.ID = m.id()
	m.components[componentKey(component.Kind, component.ID)] = component
	return component.ID, nil
}

func (m *memoryCatalogRepo) GetComponent(_ context.Context, businessID int64, kind ComponentKind, id int64) (Component, error) {
	component, ok := m.components[componentKey(kind, id)]
	if !ok || component.BusinessID != businessID {
		return Component{}, ErrNotFound
	}
	return component, nil
}

func (m *memoryCatalogRepo) ListComponents(_ context.Context, businessID int64, kind ComponentKind, filter ListFilter) ([]Component, error) {
	var out []Component
	for _, component := range m.components {
		if component.BusinessID != businessID || component.Kind != kind {
			continue
		}
		if filter.Search != "" && !strings.Contains(searchKey(component.Name), searchKey(filter.Search)) {
			continue
		}
		out = append(out, component)
	}
	return out, nil
}

func (m *memoryCatalogRepo) UpdateComponent(_ context.Context, component Component) error {
	key := componentKey(component.Kind, component.ID)
	existing, ok := m.components[key]
	if !ok || existing.BusinessID != component.BusinessID {
		return ErrNotFound
	}
	m.components[key] = component
	return nil
}

func (m *memoryCatalogRepo) DeleteComponent(_ context.Context, businessID int64, kind ComponentKind, id int64) error {
	key := componentKey(kind, id)
	existing, ok := m.components[key]
	if !ok || existing.BusinessID != businessID {
		return ErrNotFound
	}
	delete(m.components, key)
	return nil
}

func (m *memoryCatalogRepo) CreateUnit(_ context.Context, unit Unit) (int64, error) {
	unit.ID = m.id()
	m.units[unit.ID] = unit
	return unit.ID, nil
}

func (m *memoryCatalogRepo) ListUnits(_ context.Context, businessID int64) ([]Unit, error) {
	var out []Unit
	for _, unit := range m.units {
		if unit.BusinessID == businessID {
			out = append(out, unit)
		}
	}
	return out, nil
}

func (m *memoryCatalogRepo) DeleteUnit(_ context.Context, businessID, id int64) error {
	existing, ok := m.units[id]
	if !ok || existing.BusinessID != businessID {
		return ErrNotFound
	}
	delete(m.units, id)
	return nil
}

func (m *memoryCatalogRepo) ListRequirements(_ context.Context, businessID, productID int64, kind ComponentKind) ([]Requirement, error) {
	var out []Requirement
	for _, req := range m.requirements {
		if req.BusinessID == businessID && req.ProductID == productID && req.Kind == kind {
			out = append(out, req)
		}
	}
	return out, nil
}

func (m *memoryCatalogRepo) ReplaceRequirements(_ context.Context, businessID, productID int64, kind ComponentKind, inputs []RequirementInput) error {
	kept := m.requirements[:0]
	for _, req := range m.requirements {
		if req.BusinessID == businessID && req.ProductID == productID && req.Kind == kind {
			continue
		}
		kept = append(kept, req)
	}
	m.requirements = kept
	for _, input := range inputs {
		m.requirements = append(m.requirements, Requirement{
			ID:          m.id(),
			BusinessID:  businessID,
			ProductID:   productID,
			Kind:        kind,
			ComponentID: input.ComponentID,
			Quantity:    input.Quantity,
			UnitID:      input.UnitID,
		})
	}
	return nil
}

func (m *memoryCatalogRepo) ListSizes(_ context.Context, businessID, productID int64) ([]ProductSize, error) {
	var out []ProductSize
	for _, size := range m.sizes {
		if size.BusinessID == businessID && size.ProductID == productID {
			out = append(out, size)
		}
	}
	return out, nil
}

func (m *memoryCatalogRepo) ReplaceSizes(_ context.Context, businessID, productID int64, inputs []ProductSizeInput) error {
	kept := m.sizes[:0]
	for _, size := range m.sizes {
		if size.BusinessID == businessID && size.ProductID == productID {
			continue
		}
		kept = append(kept, size)
	}
	m.sizes = kept
	for _, input := range inputs {
		m.sizes = append(m.sizes, ProductSize{
			ID:           m.id(),
			BusinessID:   businessID,
			ProductID:    productID,
			Name:         input.Name,
			CostPrice:    input.CostPrice,
			SellingPrice: input.SellingPrice,
		})
	}
	return nil
}

type countingCatalogInvalidator struct {
	calls map[int64]int
}

func (c *countingCatalogInvalidator) Invalidate(_ context.Context, businessID int64) error {
	if c.calls == nil {
		c.calls = make(map[int64]int)
	}
	c.calls[businessID]++
	return nil
}

func TestCreateProductTrimsAndRejectsBlankName(t *testing.T) {
	repo := newMemoryCatalogRepo()
	svc := NewService(repo, nil)

	_, err := svc.CreateProduct(context.Background(), Product{BusinessID: 1, Name: "   "})
	require.ErrorIs(t, err, ErrNameRequired)

	product, err := svc.CreateProduct(context.Background(), Product{BusinessID: 1, Name: "  Latte  "})
	require.NoError(t, err)
	require.Equal(t, "Latte", product.Name)
	require.NotZero(t, product.ID)
}

func TestCreateProductDuplicateName(t *testing.T) {
	repo := newMemoryCatalogRepo()
	svc := NewService(repo, nil)

	_, err := svc.CreateProduct(context.Background(), Product{BusinessID: 1, Name: "Latte"})
	require.NoError(t, err)

	_, err = svc.CreateProduct(context.Background(), Product{BusinessID: 1, Name: "latte"})
	require.ErrorIs(t, err, ErrDuplicateName)

	// Same name under another business is fine.
	_, err = svc.CreateProduct(context.Background(), Product{BusinessID: 2, Name: "Latte"})
	require.NoError(t, err)
}

func TestReplaceRecipeSwapsWholesale(t *testing.T) {
	repo := newMemoryCatalogRepo()
	svc := NewService(repo, nil)

	product, err := svc.CreateProduct(context.Background(), Product{BusinessID: 1, Name: "Croissant", HasIngredients: true})
	require.NoError(t, err)

	err = svc.ReplaceRecipe(context.Background(), 1, product.ID, KindIngredient, []RequirementInput{
		{ComponentID: 10, Quantity: 0.2, UnitID: 1},
		{ComponentID: 11, Quantity: 0.05, UnitID: 1},
	})
	require.NoError(t, err)

	err = svc.ReplaceRecipe(context.Background(), 1, product.ID, KindIngredient, []RequirementInput{
		{ComponentID: 12, Quantity: 1, UnitID: 2},
	})
	require.NoError(t, err)

	recipe, err := svc.Recipe(context.Background(), 1, product.ID, KindIngredient)
	require.NoError(t, err)
	require.Len(t, recipe, 1)
	require.Equal(t, int64(12), recipe[0].ComponentID)
}

func TestReplaceRecipeKindScoped(t *testing.T) {
	repo := newMemoryCatalogRepo()
	svc := NewService(repo, nil)

	product, err := svc.CreateProduct(context.Background(), Product{
		BusinessID: 1, Name: "Box Lunch", HasIngredients: true, HasConsumables: true,
	})
	require.NoError(t, err)

	require.NoError(t, svc.ReplaceRecipe(context.Background(), 1, product.ID, KindIngredient, []RequirementInput{
		{ComponentID: 10, Quantity: 2},
	}))
	require.NoError(t, svc.ReplaceRecipe(context.Background(), 1, product.ID, KindConsumable, []RequirementInput{
		{ComponentID: 20, Quantity: 1},
	}))

	// Replacing ingredients leaves the consumable recipe untouched.
	require.NoError(t, svc.ReplaceRecipe(context.Background(), 1, product.ID, KindIngredient, nil))

	ingredients, err := svc.Recipe(context.Background(), 1, product.ID, KindIngredient)
	require.NoError(t, err)
	require.Empty(t, ingredients)

	consumables, err := svc.Recipe(context.Background(), 1, product.ID, KindConsumable)
	require.NoError(t, err)
	require.Len(t, consumables, 1)
}

func TestReplaceRecipeRejectsAddonsAndMissingProduct(t *testing.T) {
	repo := newMemoryCatalogRepo()
	svc := NewService(repo, nil)

	product, err := svc.CreateProduct(context.Background(), Product{BusinessID: 1, Name: "Latte"})
	require.NoError(t, err)

	err = svc.ReplaceRecipe(context.Background(), 1, product.ID, KindAddon, nil)
	require.Error(t, err)

	err = svc.ReplaceRecipe(context.Background(), 1, 9999, KindIngredient, nil)
	require.ErrorIs(t, err, ErrNotFound)

	// A product from another business is invisible.
	err = svc.ReplaceRecipe(context.Background(), 2, product.ID, KindIngredient, nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogWritesInvalidateViews(t *testing.T) {
	repo := newMemoryCatalogRepo()
	inv := &countingCatalogInvalidator{}
	svc := NewService(repo, inv)

	product, err := svc.CreateProduct(context.Background(), Product{BusinessID: 7, Name: "Latte"})
	require.NoError(t, err)
	require.Equal(t, 1, inv.calls[7])

	product.SellingPrice = 4.50
	_, err = svc.UpdateProduct(context.Background(), product)
	require.NoError(t, err)
	require.Equal(t, 2, inv.calls[7])

	require.NoError(t, svc.ReplaceRecipe(context.Background(), 7, product.ID, KindIngredient, nil))
	require.Equal(t, 3, inv.calls[7])

	require.NoError(t, svc.DeleteProduct(context.Background(), 7, product.ID))
	require.Equal(t, 4, inv.calls[7])

	// Reads never invalidate.
	_, err = svc.ListProducts(context.Background(), 7, ListFilter{})
	require.NoError(t, err)
	require.Equal(t, 4, inv.calls[7])
}

func TestComponentCRUDByKind(t *testing.T) {
	repo := newMemoryCatalogRepo()
	svc := NewService(repo, nil)

	flour, err := svc.CreateComponent(context.Background(), Component{
		BusinessID: 1, Kind: KindIngredient, Name: "Flour", UnitID: 1, Price: 2,
	})
	require.NoError(t, err)

	cup, err := svc.CreateComponent(context.Background(), Component{
		BusinessID: 1, Kind: KindConsumable, Name: "Cup", UnitID: 2, Price: 0.1,
	})
	require.NoError(t, err)

	_, err = svc.CreateComponent(context.Background(), Component{BusinessID: 1, Kind: "widget", Name: "Bad"})
	require.Error(t, err)

	// Kind scopes lookups: the ingredient id is not visible as a consumable.
	_, err = svc.GetComponent(context.Background(), 1, KindConsumable, flour.ID)
	require.ErrorIs(t, err, ErrNotFound)

	got, err := svc.GetComponent(context.Background(), 1, KindIngredient, flour.ID)
	require.NoError(t, err)
	require.Equal(t, "Flour", got.Name)

	got.Price = 2.5
	_, err = svc.UpdateComponent(context.Background(), got)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteComponent(context.Background(), 1, KindConsumable, cup.ID))
	_, err = svc.GetComponent(context.Background(), 1, KindConsumable, cup.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSearchKeyNormalizesDiacritics(t *testing.T) {
	require.Equal(t, "cafe au lait", searchKey("Café au Lait"))
	require.Equal(t, "creme brulee", searchKey("Crème Brûlée"))

	repo := newMemoryCatalogRepo()
	svc := NewService(repo, nil)
	_, err := svc.CreateProduct(context.Background(), Product{BusinessID: 1, Name: "Crème Brûlée"})
	require.NoError(t, err)

	found, err := svc.ListProducts(context.Background(), 1, ListFilter{Search: "brulee"})
	require.NoError(t, err)
	require.Len(t, found, 1)
}

func TestReplaceSizesSwapsWholesale(t *testing.T) {
	repo := newMemoryCatalogRepo()
	svc := NewService(repo, nil)

	product, err := svc.CreateProduct(context.Background(), Product{BusinessID: 1, Name: "Latte", HasSizes: true})
	require.NoError(t, err)

	err = svc.ReplaceSizes(context.Background(), 1, product.ID, []ProductSizeInput{
		{Name: "Small", CostPrice: 8000, SellingPrice: 18000},
		{Name: "Large", CostPrice: 11000, SellingPrice: 25000},
	})
	require.NoError(t, err)

	err = svc.ReplaceSizes(context.Background(), 1, product.ID, []ProductSizeInput{
		{Name: "Regular", CostPrice: 9000, SellingPrice: 20000},
	})
	require.NoError(t, err)

	sizes, err := svc.Sizes(context.Background(), 1, product.ID)
	require.NoError(t, err)
	require.Len(t, sizes, 1)
	require.Equal(t, "Regular", sizes[0].Name)
}

func TestReplaceSizesRequiresFlagAndName(t *testing.T) {
	repo := newMemoryCatalogRepo()
	svc := NewService(repo, nil)

	plain, err := svc.CreateProduct(context.Background(), Product{BusinessID: 1, Name: "Croissant"})
	require.NoError(t, err)

	err = svc.ReplaceSizes(context.Background(), 1, plain.ID, []ProductSizeInput{{Name: "Small"}})
	require.ErrorIs(t, err, ErrSizesDisabled)

	sized, err := svc.CreateProduct(context.Background(), Product{BusinessID: 1, Name: "Latte", HasSizes: true})
	require.NoError(t, err)

	err = svc.ReplaceSizes(context.Background(), 1, sized.ID, []ProductSizeInput{{Name: "   "}})
	require.ErrorIs(t, err, ErrNameRequired)

	err = svc.ReplaceSizes(context.Background(), 2, sized.ID, nil)
	require.ErrorIs(t, err, ErrNotFound)
}
