package reconcile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRecord(t *testing.T, doc string) *ProductRecord {
	t.Helper()
	var rec ProductRecord
	require.NoError(t, json.Unmarshal([]byte(doc), &rec))
	return &rec
}

func TestProductToFormValues_CreateModeDefaults(t *testing.T) {
	values := ProductToFormValues(nil, false)

	assert.Equal(t, &ProductTypeOptions[0], values.ProductType)
	assert.Equal(t, 0.0, *values.MinPrice)
	assert.Equal(t, 0.0, *values.MaxPrice)
	assert.True(t, values.InStock)
	assert.False(t, values.IsTaxable)
	assert.Nil(t, values.Type)
	assert.Empty(t, values.Categories)
	assert.Empty(t, values.Tags)
	assert.Empty(t, values.Variations)
	assert.Empty(t, values.VariationOpts)
}

func TestProductToFormValues_TypeSelector(t *testing.T) {
	rec := decodeRecord(t, `{"name": "Mug", "type": {"id": 7, "name": "Grocery"}}`)
	values := ProductToFormValues(rec, false)
	require.NotNil(t, values.Type)
	assert.Equal(t, FlexString("7"), values.Type.ID)
	assert.Equal(t, "Grocery", values.Type.Name)

	rec = decodeRecord(t, `{"name": "Mug", "type_id": "9"}`)
	values = ProductToFormValues(rec, false)
	require.NotNil(t, values.Type)
	assert.Equal(t, FlexString("9"), values.Type.ID)
	assert.Equal(t, "", values.Type.Name)

	rec = decodeRecord(t, `{"name": "Mug"}`)
	assert.Nil(t, ProductToFormValues(rec, false).Type)
}

func TestProductToFormValues_SimpleDigitalFile(t *testing.T) {
	rec := decodeRecord(t, `{
		"product_type": "simple",
		"is_digital": true,
		"digital_file": {"attachment_id": 44, "url": "https://cdn/x.pdf"}
	}`)
	values := ProductToFormValues(rec, false)
	require.NotNil(t, values.DigitalFileInput)
	assert.Equal(t, FlexString("44"), values.DigitalFileInput.ID)
	assert.Equal(t, "https://cdn/x.pdf", values.DigitalFileInput.Thumbnail)
	assert.Equal(t, "https://cdn/x.pdf", values.DigitalFileInput.Original)
}

func TestProductToFormValues_VariableProduct(t *testing.T) {
	rec := decodeRecord(t, `{
		"product_type": "variable",
		"variations": [
			{"id": 10, "value": "Red", "attribute": {"id": 1, "slug": "color", "name": "Color"}},
			{"id": 11, "value": "Blue", "attribute": {"id": 1, "slug": "color", "name": "Color"}}
		],
		"variation_options": {"data": [
			{"id": "77", "price": 100, "image": {}, "digital_file": {"attachment_id": 5, "file_name": "f.zip"}}
		]},
		"tags": [{"id": 3, "name": "sale"}],
		"categories": [{"id": 5, "sous_categories_id": [10, 11]}]
	}`)

	values := ProductToFormValues(rec, false)

	require.Len(t, values.Variations, 1)
	assert.Equal(t, "color", values.Variations[0].Attribute.Slug)
	assert.Len(t, values.Variations[0].Values, 2)

	require.Len(t, values.VariationOpts, 1)
	opt := values.VariationOpts[0]
	assert.Nil(t, opt.Image, "empty image is not carried into the form")
	require.NotNil(t, opt.DigitalFileInput)
	assert.Equal(t, FlexString("5"), opt.DigitalFileInput.ID)
	assert.Equal(t, "f.zip", opt.DigitalFileInput.FileName)

	assert.Equal(t, []EntityRef{{ID: "3", Name: "sale"}}, values.Tags)
	require.Len(t, values.Categories, 1)
	assert.Equal(t, int64(5), values.Categories[0].CategoriesID)
	assert.Equal(t, []int64{10, 11}, values.Categories[0].SousCategoriesID)
}

func TestProductToFormValues_NewTranslationReset(t *testing.T) {
	rec := decodeRecord(t, `{
		"product_type": "variable",
		"quantity": 12,
		"author_id": 8,
		"type": {"id": 7, "name": "Grocery"},
		"variations": [{"id": 10, "value": "Red", "attribute": {"id": 1, "slug": "color", "name": "Color"}}],
		"variation_options": [{"id": "77", "price": 100}],
		"tags": [{"id": 3, "name": "sale"}],
		"categories": [{"id": 5}]
	}`)

	values := ProductToFormValues(rec, true)

	assert.Nil(t, values.Type)
	assert.Empty(t, values.Categories)
	assert.Empty(t, values.Tags)
	assert.Empty(t, values.Variations)
	assert.Empty(t, values.VariationOpts)
	assert.Equal(t, FlexString(""), values.AuthorID)
	assert.Nil(t, values.DigitalFileInput)
	assert.Nil(t, values.Quantity, "variable product quantity is re-derived, not copied")
}

func TestFormValuesToProductInput_SimpleDefaults(t *testing.T) {
	original := decodeRecord(t, `{
		"variation_options": [{"id": "1"}, {"id": "2"}]
	}`)
	values := &ProductFormValues{
		Name:        "Mug",
		ProductType: &ProductTypeOptions[0],
		Type:        &EntityRef{ID: "7"},
		Categories: []CategoryAssignmentRow{
			{CategoriesID: 5}, {CategoriesID: 0},
		},
		Tags: []EntityRef{{ID: "3"}},
	}

	input, err := FormValuesToProductInput(values, original, false)
	require.NoError(t, err)

	assert.True(t, input.IsDigital, "is_digital is forced on every save")
	assert.Equal(t, "simple", input.ProductType)
	assert.Equal(t, FlexString("7"), input.TypeID)
	assert.Equal(t, []string{"5"}, input.Categories, "falsy category ids are dropped")
	assert.Equal(t, []FlexString{"3"}, input.Tags)

	// Non-variable save: the skeleton defaults to deleting everything the
	// server had.
	assert.Empty(t, input.VariationOpts.Upsert)
	assert.Equal(t, []FlexString{"1", "2"}, input.VariationOpts.Delete)
}

func TestFormValuesToProductInput_DeleteDiff(t *testing.T) {
	original := decodeRecord(t, `{
		"variation_options": [{"id": "1"}, {"id": "2"}, {"id": "3"}]
	}`)
	variable := matchProductType(ProductTypeVariable)
	values := &ProductFormValues{
		ProductType: variable,
		VariationOpts: []VariationOptionValues{
			{ID: "2", Price: fp(10), Quantity: ip(1)},
			{ID: "3", Price: fp(20), Quantity: ip(2)},
			{ID: "", Price: fp(30), Quantity: ip(3)}, // not yet persisted
		},
	}

	input, err := FormValuesToProductInput(values, original, false)
	require.NoError(t, err)

	require.Len(t, input.VariationOpts.Upsert, 3)
	assert.Equal(t, FlexString("2"), input.VariationOpts.Upsert[0].ID)
	assert.Equal(t, FlexString("3"), input.VariationOpts.Upsert[1].ID)
	assert.Equal(t, FlexString(""), input.VariationOpts.Upsert[2].ID, "backend assigns ids for new options")
	assert.Equal(t, []FlexString{"1"}, input.VariationOpts.Delete)

	assert.Equal(t, 6, *input.Quantity)
	assert.Equal(t, 10.0, *input.MinPrice)
	assert.Equal(t, 30.0, *input.MaxPrice)
}

func TestFormValuesToProductInput_VariableAttributeLinkage(t *testing.T) {
	variable := matchProductType(ProductTypeVariable)
	values := &ProductFormValues{
		ProductType: variable,
		Variations: []VariationGroup{
			{Attribute: colorAttr, Values: []AttributeValueRef{{ID: "10"}, {ID: "11"}}},
			{Attribute: sizeAttr, Values: []AttributeValueRef{{ID: "20"}}},
		},
	}

	input, err := FormValuesToProductInput(values, nil, false)
	require.NoError(t, err)
	assert.Equal(t, []AttributeValueLink{
		{AttributeValueID: "10"}, {AttributeValueID: "11"}, {AttributeValueID: "20"},
	}, input.Variations)
}

func TestFormValuesToProductInput_UpsertShaping(t *testing.T) {
	variable := matchProductType(ProductTypeVariable)
	values := &ProductFormValues{
		ProductType: variable,
		VariationOpts: []VariationOptionValues{{
			ID:    "9",
			Price: fp(15),
			Options: OptionsPayload{Pairs: []VariantCombinationEntry{
				{Name: "Color", Value: "Red", ID: "10"},
			}},
			Image:            &Attachment{ID: "img1", Original: "https://cdn/i.png"},
			IsDigital:        true,
			DigitalFile:      &DigitalFile{ID: "df1"},
			DigitalFileInput: &Attachment{ID: "att1", Original: "https://cdn/f.zip", FileName: "f.zip"},
		}},
	}

	input, err := FormValuesToProductInput(values, nil, false)
	require.NoError(t, err)
	require.Len(t, input.VariationOpts.Upsert, 1)
	up := input.VariationOpts.Upsert[0]

	assert.Equal(t, []VariantCombinationEntry{{Name: "Color", Value: "Red"}}, up.Options.Pairs,
		"ui-keying ids are stripped from options pairs")
	require.NotNil(t, up.Image)
	assert.Equal(t, FlexString("img1"), up.Image.ID)
	require.NotNil(t, up.DigitalFile)
	assert.Equal(t, FlexString("df1"), up.DigitalFile.ID)
	assert.Equal(t, FlexString("att1"), up.DigitalFile.AttachmentID)
	assert.Equal(t, "f.zip", up.DigitalFile.FileName)
}

func TestFormValuesToProductInput_NonDigitalOptionDropsFile(t *testing.T) {
	variable := matchProductType(ProductTypeVariable)
	values := &ProductFormValues{
		ProductType: variable,
		VariationOpts: []VariationOptionValues{{
			ID:               "9",
			DigitalFileInput: &Attachment{ID: "att1"},
		}},
	}
	input, err := FormValuesToProductInput(values, nil, false)
	require.NoError(t, err)
	assert.Nil(t, input.VariationOpts.Upsert[0].DigitalFile)
}

func TestFormValuesToProductInput_OptionsFromJSONString(t *testing.T) {
	var opt VariationOptionValues
	require.NoError(t, json.Unmarshal(
		[]byte(`{"id": "9", "options": "[{\"name\":\"Size\",\"value\":\"M\",\"id\":3}]"}`), &opt))

	variable := matchProductType(ProductTypeVariable)
	input, err := FormValuesToProductInput(&ProductFormValues{
		ProductType:   variable,
		VariationOpts: []VariationOptionValues{opt},
	}, nil, false)
	require.NoError(t, err)
	assert.Equal(t, []VariantCombinationEntry{{Name: "Size", Value: "M"}},
		input.VariationOpts.Upsert[0].Options.Pairs)
}

func TestFormValuesToProductInput_MalformedOptionsKeptVerbatim(t *testing.T) {
	var opt VariationOptionValues
	require.NoError(t, json.Unmarshal([]byte(`{"id": "9", "options": "{broken"}`), &opt))

	variable := matchProductType(ProductTypeVariable)
	input, err := FormValuesToProductInput(&ProductFormValues{
		ProductType:   variable,
		VariationOpts: []VariationOptionValues{opt},
	}, nil, false)
	require.NoError(t, err)

	out, err := json.Marshal(input.VariationOpts.Upsert[0].Options)
	require.NoError(t, err)
	assert.JSONEq(t, `"{broken"`, string(out), "unparseable options pass through for downstream validation")
}

func TestFormValuesToProductInput_DigitalFileKeepsRelationID(t *testing.T) {
	original := decodeRecord(t, `{"digital_file": {"id": 55}}`)
	values := &ProductFormValues{
		DigitalFileInput: &Attachment{ID: "att9", Original: "https://cdn/a.zip", FileName: "a.zip"},
	}

	input, err := FormValuesToProductInput(values, original, false)
	require.NoError(t, err)
	assert.Equal(t, FlexString("55"), input.DigitalFile.ID)
	assert.Equal(t, FlexString("att9"), input.DigitalFile.AttachmentID)

	// A new translation copy must not adopt the source locale's relation row.
	input, err = FormValuesToProductInput(values, original, true)
	require.NoError(t, err)
	assert.Equal(t, FlexString(""), input.DigitalFile.ID)
}

func TestFormValuesToProductInput_NilValues(t *testing.T) {
	_, err := FormValuesToProductInput(nil, nil, false)
	assert.Error(t, err)
}

func TestFormValuesToProductInput_WirePayloadShape(t *testing.T) {
	input, err := FormValuesToProductInput(&ProductFormValues{Name: "Mug"}, nil, false)
	require.NoError(t, err)

	out, errM := json.Marshal(input)
	require.NoError(t, errM)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &decoded))

	// The write side relies on both diff arrays always being present.
	var diff map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(decoded["variation_options"], &diff))
	assert.JSONEq(t, `[]`, string(diff["upsert"]))
	assert.JSONEq(t, `[]`, string(diff["delete"]))
	assert.JSONEq(t, `[]`, string(decoded["categories"]))
	assert.JSONEq(t, `[]`, string(decoded["tags"]))
}
