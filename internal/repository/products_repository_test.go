package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/reconcile"
)

func TestGenerateSlug(t *testing.T) {
	assert.Equal(t, "blue-cotton-t-shirt", generateSlug("Blue Cotton T-Shirt"))
	assert.Equal(t, "caf-premium", generateSlug("Café! Premium?"))
	assert.Equal(t, "100-wool", generateSlug("100% Wool"))
	assert.Equal(t, "", generateSlug("!!!"))
}

func TestFlexID(t *testing.T) {
	require.NotNil(t, flexID("42"))
	assert.Equal(t, int64(42), *flexID("42"))

	// uuids, blanks, zero and negatives are not usable numeric ids
	assert.Nil(t, flexID(""))
	assert.Nil(t, flexID("2f5a"))
	assert.Nil(t, flexID("0"))
	assert.Nil(t, flexID("-3"))
}

func TestAttachmentJSON(t *testing.T) {
	assert.Nil(t, attachmentJSON(nil))
	assert.Nil(t, attachmentJSON(&reconcile.Attachment{}))

	obj := attachmentJSON(&reconcile.Attachment{
		ID:        "9",
		Original:  "https://cdn.example.com/a.png",
		Thumbnail: "https://cdn.example.com/a_t.png",
	})
	require.NotNil(t, obj)
	assert.Equal(t, "9", (*obj)["id"])
	assert.Equal(t, "https://cdn.example.com/a.png", (*obj)["original"])
	_, hasFileName := (*obj)["file_name"]
	assert.False(t, hasFileName)
}

func TestAttachmentArray_SkipsEmptyEntries(t *testing.T) {
	assert.Nil(t, attachmentArray(nil))

	arr := attachmentArray([]reconcile.Attachment{
		{Original: "https://cdn.example.com/a.png"},
		{},
		{Original: "https://cdn.example.com/b.png"},
	})
	require.NotNil(t, arr)
	assert.Len(t, *arr, 2)
}

func TestGenerateListCacheKey_StableAcrossEqualParams(t *testing.T) {
	type params struct {
		Page  int
		Limit int
	}

	a := generateListCacheKey("tenant-1", "products", params{Page: 1, Limit: 20})
	b := generateListCacheKey("tenant-1", "products", params{Page: 1, Limit: 20})
	c := generateListCacheKey("tenant-1", "products", params{Page: 2, Limit: 20})
	d := generateListCacheKey("tenant-2", "products", params{Page: 1, Limit: 20})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
}
