package reconcile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCategoryAssignments_AllWireShapes(t *testing.T) {
	// The same logical assignment (category 5, sous-categories [10, 11])
	// expressed in every shape a backend version has shipped.
	docs := map[string]string{
		"object array": `{
			"categories": [{"id": 5, "sous_categories_id": [10, 11]}]
		}`,
		"pivot embedded": `{
			"categories": [{"id": 99, "pivot": {"categories_id": 5, "sous_categories_id": [10, 11]}}]
		}`,
		"data envelope": `{
			"categories": {"data": [{"categories_id": 5, "sous_categories_id": [10, 11]}]}
		}`,
		"single object": `{
			"category": {"id": 5, "sous_categories_id": "10,11"}
		}`,
		"flat id list": `{
			"category_ids": [5],
			"sous_categories_id": [10, 11]
		}`,
		"single id": `{
			"categories_id": 5,
			"sous_categories_id": "10,11"
		}`,
	}

	want := []CategoryAssignmentRow{
		{CategoriesID: 5, SousCategoriesID: []int64{10, 11}, SubCategoriesID: []int64{}},
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			rows := NormalizeCategoryAssignments(json.RawMessage(doc))
			assert.Equal(t, want, rows)
		})
	}
}

func TestNormalizeCategoryAssignments_EmbeddedRelations(t *testing.T) {
	doc := `{
		"categories": [{
			"id": 3,
			"sous_categories": [{"id": 7}, {"sous_category_id": 8}],
			"sub_categories": [{"id": 21}]
		}]
	}`
	rows := NormalizeCategoryAssignments(json.RawMessage(doc))
	assert.Equal(t, []CategoryAssignmentRow{
		{CategoriesID: 3, SousCategoriesID: []int64{7, 8}, SubCategoriesID: []int64{21}},
	}, rows)
}

func TestNormalizeCategoryAssignments_ExplicitIDsWinOverRelations(t *testing.T) {
	doc := `{
		"categories": [{
			"id": 3,
			"sous_categories_id": [40],
			"sous_categories": [{"id": 7}]
		}]
	}`
	rows := NormalizeCategoryAssignments(json.RawMessage(doc))
	assert.Equal(t, []int64{40}, rows[0].SousCategoriesID)
}

func TestNormalizeCategoryAssignments_CSVIsLossy(t *testing.T) {
	doc := `{"categories": [{"id": 2, "sous_categories_id": "4, oops, 5 ,x"}]}`
	rows := NormalizeCategoryAssignments(json.RawMessage(doc))
	assert.Equal(t, []int64{4, 5}, rows[0].SousCategoriesID)
}

func TestNormalizeCategoryAssignments_DiscardsNonPositiveRows(t *testing.T) {
	doc := `{"categories": [{"id": 0}, {"id": -3}, {"id": 6}, {"name": "no id"}]}`
	rows := NormalizeCategoryAssignments(json.RawMessage(doc))
	assert.Len(t, rows, 1)
	assert.Equal(t, int64(6), rows[0].CategoriesID)
}

func TestNormalizeCategoryAssignments_TopLevelMergeFirstRowOnly(t *testing.T) {
	doc := `{
		"categories": [{"id": 1}, {"id": 2}],
		"sous_categories_id": [10],
		"sub_categories_id": "20"
	}`
	rows := NormalizeCategoryAssignments(json.RawMessage(doc))
	assert.Equal(t, []int64{10}, rows[0].SousCategoriesID)
	assert.Equal(t, []int64{20}, rows[0].SubCategoriesID)
	assert.Empty(t, rows[1].SousCategoriesID)
	assert.Empty(t, rows[1].SubCategoriesID)
}

func TestNormalizeCategoryAssignments_TopLevelDoesNotOverride(t *testing.T) {
	doc := `{
		"categories": [{"id": 1, "sous_categories_id": [99]}],
		"sous_categories_id": [10]
	}`
	rows := NormalizeCategoryAssignments(json.RawMessage(doc))
	assert.Equal(t, []int64{99}, rows[0].SousCategoriesID)
}

func TestNormalizeCategoryAssignments_AbsentAndMalformed(t *testing.T) {
	assert.Empty(t, NormalizeCategoryAssignments(nil))
	assert.Empty(t, NormalizeCategoryAssignments(json.RawMessage(`{}`)))
	assert.Empty(t, NormalizeCategoryAssignments(json.RawMessage(`{"categories": "garbage"}`)))
	assert.Empty(t, NormalizeCategoryAssignments(json.RawMessage(`not json`)))
	assert.Empty(t, NormalizeCategoryAssignments(json.RawMessage(`{"categories": []}`)))
}

func TestNormalizeCategoryAssignments_PreservesOrderNoDedupe(t *testing.T) {
	doc := `{"categories": [{"id": 2}, {"id": 1}, {"id": 2}]}`
	rows := NormalizeCategoryAssignments(json.RawMessage(doc))
	ids := []int64{rows[0].CategoriesID, rows[1].CategoriesID, rows[2].CategoriesID}
	assert.Equal(t, []int64{2, 1, 2}, ids)
}

func TestNormalizeCategoryAssignments_Idempotent(t *testing.T) {
	doc := `{
		"categories": [
			{"id": 9, "pivot": {"categories_id": 9, "sous_categories_id": "1,2"}},
			{"id": 4, "sub_categories": [{"id": 12}]}
		]
	}`
	first := NormalizeCategoryAssignments(json.RawMessage(doc))
	second := NormalizeCategoryAssignments(CategoryAssignmentsToDocument(first))
	assert.Equal(t, first, second)
}
