package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	colorAttr = Attribute{ID: "1", Slug: "color", Name: "Color"}
	sizeAttr  = Attribute{ID: "2", Slug: "size", Name: "Size"}
	fitAttr   = Attribute{ID: "3", Slug: "fit", Name: "Fit"}
)

func TestGroupVariations(t *testing.T) {
	flat := []AttributeValue{
		{ID: "10", Value: "Red", Attribute: colorAttr},
		{ID: "20", Value: "M", Attribute: sizeAttr},
		{ID: "11", Value: "Blue", Attribute: colorAttr},
		{ID: "21", Value: "L", Attribute: sizeAttr},
	}

	groups := GroupVariations(flat)

	assert.Len(t, groups, 2)
	assert.Equal(t, colorAttr, groups[0].Attribute)
	assert.Equal(t, []AttributeValueRef{{ID: "10", Value: "Red"}, {ID: "11", Value: "Blue"}}, groups[0].Values)
	assert.Equal(t, sizeAttr, groups[1].Attribute)
	assert.Equal(t, []AttributeValueRef{{ID: "20", Value: "M"}, {ID: "21", Value: "L"}}, groups[1].Values)
}

func TestGroupVariations_FirstAttributeWinsOnDivergence(t *testing.T) {
	renamed := Attribute{ID: "1", Slug: "color", Name: "Colour"}
	flat := []AttributeValue{
		{ID: "10", Value: "Red", Attribute: colorAttr},
		{ID: "11", Value: "Blue", Attribute: renamed},
	}

	groups := GroupVariations(flat)

	assert.Len(t, groups, 1)
	assert.Equal(t, "Color", groups[0].Attribute.Name)
	assert.Len(t, groups[0].Values, 2)
}

func TestGroupVariations_Empty(t *testing.T) {
	assert.Empty(t, GroupVariations(nil))
	assert.Empty(t, GroupVariations([]AttributeValue{}))
}

func TestFilterAttributes(t *testing.T) {
	groups := []VariationGroup{{Attribute: colorAttr}}
	left := FilterAttributes([]Attribute{colorAttr, sizeAttr, fitAttr}, groups)
	assert.Equal(t, []Attribute{sizeAttr, fitAttr}, left)
}

func TestExpandVariations_Completeness(t *testing.T) {
	groups := []VariationGroup{
		{Attribute: colorAttr, Values: []AttributeValueRef{{ID: "10", Value: "Red"}, {ID: "11", Value: "Blue"}}},
		{Attribute: sizeAttr, Values: []AttributeValueRef{{ID: "20", Value: "M"}, {ID: "21", Value: "L"}, {ID: "22", Value: "XL"}}},
	}

	combos := ExpandVariations(groups)

	assert.Len(t, combos, 6) // 2 * 3
	seen := make(map[string]struct{})
	for _, combo := range combos {
		assert.Len(t, combo, 2)
		assert.Equal(t, "Color", combo[0].Name)
		assert.Equal(t, "Size", combo[1].Name)
		seen[combo[0].Value+"/"+combo[1].Value] = struct{}{}
	}
	assert.Len(t, seen, 6, "every combination is distinct")

	// First group varies slowest.
	assert.Equal(t, "Red", combos[0][0].Value)
	assert.Equal(t, "M", combos[0][1].Value)
	assert.Equal(t, "Red", combos[2][0].Value)
	assert.Equal(t, "XL", combos[2][1].Value)
	assert.Equal(t, "Blue", combos[3][0].Value)
	assert.Equal(t, "M", combos[3][1].Value)
}

func TestExpandVariations_EmptyGroupYieldsNothing(t *testing.T) {
	groups := []VariationGroup{
		{Attribute: colorAttr, Values: []AttributeValueRef{{ID: "10", Value: "Red"}}},
		{Attribute: sizeAttr, Values: []AttributeValueRef{}},
	}
	assert.Empty(t, ExpandVariations(groups))
	assert.Empty(t, ExpandVariations(nil))
	assert.Empty(t, ExpandVariations([]VariationGroup{}))
}

func TestExpandVariations_CarriesValueIDs(t *testing.T) {
	groups := []VariationGroup{
		{Attribute: colorAttr, Values: []AttributeValueRef{{ID: "10", Value: "Red"}}},
	}
	combos := ExpandVariations(groups)
	assert.Equal(t, [][]VariantCombinationEntry{
		{{Name: "Color", Value: "Red", ID: "10"}},
	}, combos)
}
