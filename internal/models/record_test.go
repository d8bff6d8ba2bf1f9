package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/reconcile"
)

func float64Ptr(v float64) *float64 { return &v }
func intPtr(v int) *int             { return &v }
func int64Ptr(v int64) *int64       { return &v }
func strPtr(v string) *string       { return &v }

func variableProductFixture() *Product {
	productID := uuid.New()
	optionID := uuid.New()

	colorAttr := &Attribute{ID: 3, Slug: "color", Name: "Color"}

	return &Product{
		ID:          productID,
		TenantID:    "tenant-1",
		Name:        "Hoodie",
		SKU:         "HOOD-1",
		Slug:        strPtr("hoodie"),
		ProductType: ProductTypeTagVariable,
		MinPrice:    float64Ptr(25),
		MaxPrice:    float64Ptr(40),
		Quantity:    intPtr(12),
		InStock:     true,
		Status:      ProductStatusPublish,
		TypeID:      int64Ptr(7),
		Type:        &Type{ID: 7, Name: "Clothing", Slug: "clothing"},
		AttributeValues: []*ProductAttributeValue{
			{
				ProductID:        productID,
				AttributeValueID: 21,
				AttributeValue:   &AttributeValue{ID: 21, AttributeID: 3, Value: "Red", Attribute: colorAttr},
			},
			{
				ProductID:        productID,
				AttributeValueID: 22,
				AttributeValue:   &AttributeValue{ID: 22, AttributeID: 3, Value: "Blue", Attribute: colorAttr},
			},
		},
		VariationOptions: []*VariationOption{
			{
				ID:        optionID,
				ProductID: productID,
				Title:     "Red",
				SKU:       strPtr("HOOD-1-R"),
				Price:     float64Ptr(25),
				Quantity:  intPtr(12),
				Options:   &JSONArray{map[string]interface{}{"name": "Color", "value": "Red"}},
			},
		},
		Categories: []*ProductCategory{
			{
				ProductID:        productID,
				CategoriesID:     4,
				SousCategoriesID: &JSONArray{float64(7), float64(8)},
			},
		},
		Tags: []*ProductTag{
			{ProductID: productID, TagID: 5, Tag: &Tag{ID: 5, Name: "Winter", Slug: "winter"}},
		},
	}
}

func TestFormRecord_VariableProduct(t *testing.T) {
	product := variableProductFixture()

	rec, err := product.FormRecord()
	require.NoError(t, err)

	assert.Equal(t, reconcile.FlexString(product.ID.String()), rec.ID)
	assert.Equal(t, "Hoodie", rec.Name)
	assert.Equal(t, reconcile.ProductTypeVariable, rec.ProductType)
	require.NotNil(t, rec.Type)
	assert.Equal(t, reconcile.FlexString("7"), rec.Type.ID)

	require.Len(t, rec.Variations, 2)
	assert.Equal(t, "color", rec.Variations[0].Attribute.Slug)

	require.Len(t, rec.VariationOpts, 1)
	assert.Equal(t, "Red", rec.VariationOpts[0].Title)
	pairs := rec.VariationOpts[0].Options.Pairs
	require.Len(t, pairs, 1)
	assert.Equal(t, "Color", pairs[0].Name)
	assert.Equal(t, "Red", pairs[0].Value)
}

func TestFormRecord_FeedsFormValues(t *testing.T) {
	product := variableProductFixture()

	rec, err := product.FormRecord()
	require.NoError(t, err)

	values := reconcile.ProductToFormValues(rec, false)

	// one group keyed by the attribute slug, both values in input order
	require.Len(t, values.Variations, 1)
	assert.Equal(t, "color", values.Variations[0].Attribute.Slug)
	require.Len(t, values.Variations[0].Values, 2)
	assert.Equal(t, "Red", values.Variations[0].Values[0].Value)
	assert.Equal(t, "Blue", values.Variations[0].Values[1].Value)

	// category pivot rows survive with their sous id list intact
	require.Len(t, values.Categories, 1)
	assert.Equal(t, int64(4), values.Categories[0].CategoriesID)
	assert.Equal(t, []int64{7, 8}, values.Categories[0].SousCategoriesID)

	require.Len(t, values.Tags, 1)
	assert.Equal(t, "Winter", values.Tags[0].Name)

	assert.Equal(t, 25.0, *values.MinPrice)
	assert.Equal(t, 40.0, *values.MaxPrice)
}

func TestFormRecord_SimpleProductOmitsVariantFields(t *testing.T) {
	product := &Product{
		ID:          uuid.New(),
		TenantID:    "tenant-1",
		Name:        "Mug",
		SKU:         "MUG-1",
		ProductType: ProductTypeTagSimple,
		Price:       float64Ptr(9.5),
		Quantity:    intPtr(3),
		InStock:     true,
		Status:      ProductStatusDraft,
	}

	rec, err := product.FormRecord()
	require.NoError(t, err)

	assert.Equal(t, reconcile.ProductTypeSimple, rec.ProductType)
	assert.Empty(t, rec.Variations)
	assert.Empty(t, rec.VariationOpts)
	require.NotNil(t, rec.Price)
	assert.Equal(t, 9.5, *rec.Price)

	values := reconcile.ProductToFormValues(rec, false)
	assert.Empty(t, values.Variations)
	assert.Empty(t, values.VariationOpts)
	require.NotNil(t, values.Price)
	assert.Equal(t, 9.5, *values.Price)
}
