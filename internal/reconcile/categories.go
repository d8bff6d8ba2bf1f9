package reconcile

import (
	"bytes"
	"encoding/json"
	"strings"
)

// NormalizeCategoryAssignments canonicalizes the "categories assigned to a
// product" portion of a product document into CategoryAssignmentRow form.
//
// Backend versions have shipped the assignment as, in priority order:
//  1. an array of category objects (optionally pivot-wrapped, optionally
//     carrying embedded sous_categories / sub_categories relations),
//  2. a {data: [...]} envelope around the same,
//  3. a single category object,
//  4. a flat id list (category_ids) or a single id (categories_id /
//     category_id),
//  5. nothing at all.
//
// This is best-effort reconciliation over an unstable wire format, not a
// validator: it never fails, malformed id tokens are dropped silently, and a
// row whose top-level category id cannot be resolved to a positive integer is
// discarded. Input order is preserved and rows are not de-duplicated.
func NormalizeCategoryAssignments(doc json.RawMessage) []CategoryAssignmentRow {
	rows := []CategoryAssignmentRow{}
	if len(doc) == 0 {
		return rows
	}

	var env categoryEnvelope
	if err := json.Unmarshal(doc, &env); err != nil {
		return rows
	}

	if nodes, ok := env.categoryNodes(); ok {
		for _, node := range nodes {
			row, ok := node.toRow()
			if !ok {
				continue
			}
			rows = append(rows, row)
		}
	} else {
		// No object-shaped payload anywhere; fall back to bare ids.
		for _, id := range parseIDList(env.CategoryIDs) {
			rows = append(rows, CategoryAssignmentRow{
				CategoriesID:     id,
				SousCategoriesID: []int64{},
				SubCategoriesID:  []int64{},
			})
		}
		if len(rows) == 0 {
			if id := parseID(firstPresent(env.CategoriesID, env.CategoryID)); id > 0 {
				rows = append(rows, CategoryAssignmentRow{
					CategoriesID:     id,
					SousCategoriesID: []int64{},
					SubCategoriesID:  []int64{},
				})
			}
		}
	}

	// Historical single-category compatibility: standalone sous/sub id fields
	// on the product itself backfill the first row when it carries none.
	if len(rows) > 0 {
		if sous := parseIDList(firstPresent(env.SousCategoriesID, env.SousCategoryIDs, env.SousCategoryID)); len(sous) > 0 && len(rows[0].SousCategoriesID) == 0 {
			rows[0].SousCategoriesID = sous
		}
		if sub := parseIDList(firstPresent(env.SubCategoriesID, env.SubCategoryIDs, env.SubCategoryID)); len(sub) > 0 && len(rows[0].SubCategoriesID) == 0 {
			rows[0].SubCategoriesID = sub
		}
	}

	return rows
}

// CategoryAssignmentsToDocument wraps canonical rows back into a product-like
// document, the shape a fresh backend would persist. Normalizing the result
// yields the same rows (the round-trip the sync path relies on).
func CategoryAssignmentsToDocument(rows []CategoryAssignmentRow) json.RawMessage {
	doc, _ := json.Marshal(map[string]interface{}{"categories": rows})
	return doc
}

// categoryEnvelope is the superset of every top-level field any backend
// version has used to carry the assignment. Raw fields keep presence
// information: an explicit empty value must win over a fallback field.
type categoryEnvelope struct {
	Categories        json.RawMessage `json:"categories"`
	ProductCategories json.RawMessage `json:"product_categories"`
	CategoriesList    json.RawMessage `json:"categories_list"`
	Category          json.RawMessage `json:"category"`
	ProductCategory   json.RawMessage `json:"product_category"`
	CategoryIDs       json.RawMessage `json:"category_ids"`
	CategoriesID      json.RawMessage `json:"categories_id"`
	CategoryID        json.RawMessage `json:"category_id"`
	SousCategoriesID json.RawMessage `json:"sous_categories_id"`
	SousCategoryIDs   json.RawMessage `json:"sous_category_ids"`
	SousCategoryID    json.RawMessage `json:"sous_category_id"`
	SubCategoriesID   json.RawMessage `json:"sub_categories_id"`
	SubCategoryIDs    json.RawMessage `json:"sub_category_ids"`
	SubCategoryID     json.RawMessage `json:"sub_category_id"`
}

// categoryNodes resolves shapes 1-3: returns the category object list and
// whether any object-shaped payload was present and non-empty.
func (e *categoryEnvelope) categoryNodes() ([]categoryNode, bool) {
	raw := firstPresent(e.Categories, e.ProductCategories, e.CategoriesList)
	nodes := decodeCategoryNodes(raw)
	if len(nodes) == 0 {
		single := firstPresent(e.Category, e.ProductCategory)
		nodes = decodeCategoryNodes(single)
	}
	return nodes, len(nodes) > 0
}

// decodeCategoryNodes unwraps a {data: [...]} envelope, coerces a single
// object to a one-element list, and decodes. Undecodable input yields nil.
func decodeCategoryNodes(raw json.RawMessage) []categoryNode {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if raw[0] == '{' {
		var wrapped struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil
		}
		if inner := bytes.TrimSpace(wrapped.Data); len(inner) > 0 && string(inner) != "null" {
			raw = inner
		}
	}
	if raw[0] == '{' {
		var node categoryNode
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil
		}
		return []categoryNode{node}
	}
	if raw[0] != '[' {
		return nil
	}
	var nodes []categoryNode
	if err := json.Unmarshal(raw, &nodes); err != nil {
		return nil
	}
	return nodes
}

// categoryNode is one element of the object-shaped payload. The same field
// set doubles as the pivot shape: when no pivot is present, the element is
// its own pivot.
type categoryNode struct {
	ID               json.RawMessage `json:"id"`
	CategoriesID     json.RawMessage `json:"categories_id"`
	Pivot            json.RawMessage `json:"pivot"`
	SousCategoriesID json.RawMessage `json:"sous_categories_id"`
	SousCategoryIDs  json.RawMessage `json:"sous_category_ids"`
	SousCategoryID   json.RawMessage `json:"sous_category_id"`
	SubCategoriesID  json.RawMessage `json:"sub_categories_id"`
	SubCategoryIDs   json.RawMessage `json:"sub_category_ids"`
	SubCategoryID    json.RawMessage `json:"sub_category_id"`
	SousCategories   []categoryRef   `json:"sous_categories"`
	SubCategories    []categoryRef   `json:"sub_categories"`
}

// categoryRef is an embedded relation row; only its id matters here.
type categoryRef struct {
	ID             json.RawMessage `json:"id"`
	SousCategoryID json.RawMessage `json:"sous_category_id"`
	SubCategoryID  json.RawMessage `json:"sub_category_id"`
}

func (c categoryRef) id() int64 {
	return parseID(firstPresent(c.ID, c.SousCategoryID, c.SubCategoryID))
}

func (n categoryNode) toRow() (CategoryAssignmentRow, bool) {
	pivot := n
	if p := bytes.TrimSpace(n.Pivot); len(p) > 0 && string(p) != "null" {
		// A broken pivot leaves the zero value; fields then resolve off the
		// element itself, which is the lossy-fallback behavior we want.
		var decoded categoryNode
		if json.Unmarshal(p, &decoded) == nil {
			pivot = decoded
		}
	}

	catID := parseID(firstPresent(pivot.CategoriesID, n.CategoriesID, n.ID))
	if catID <= 0 {
		return CategoryAssignmentRow{}, false
	}

	sous := parseIDList(firstPresent(
		pivot.SousCategoriesID, pivot.SousCategoryIDs, pivot.SousCategoryID,
		n.SousCategoriesID, n.SousCategoryIDs, n.SousCategoryID,
	))
	if len(sous) == 0 {
		sous = refIDs(n.SousCategories)
	}
	if len(sous) == 0 {
		sous = refIDs(pivot.SousCategories)
	}

	sub := parseIDList(firstPresent(
		pivot.SubCategoriesID, pivot.SubCategoryIDs, pivot.SubCategoryID,
		n.SubCategoriesID, n.SubCategoryIDs, n.SubCategoryID,
	))
	if len(sub) == 0 {
		sub = refIDs(n.SubCategories)
	}
	if len(sub) == 0 {
		sub = refIDs(pivot.SubCategories)
	}

	return CategoryAssignmentRow{
		CategoriesID:     catID,
		SousCategoriesID: sous,
		SubCategoriesID:  sub,
	}, true
}

func refIDs(refs []categoryRef) []int64 {
	ids := []int64{}
	for _, ref := range refs {
		if id := ref.id(); id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// firstPresent returns the first raw field that is present and not JSON null.
// Presence matters: an explicitly empty value on a higher-priority field must
// shadow lower-priority fields, exactly as the legacy reads did.
func firstPresent(raws ...json.RawMessage) json.RawMessage {
	for _, raw := range raws {
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && string(raw) != "null" {
			return raw
		}
	}
	return nil
}

// parseIDList reads an id list from any of the shapes backends have used:
// a JSON array (numbers, numeric strings, or objects carrying an id field),
// a CSV string, or a single scalar. Non-numeric and non-positive tokens are
// dropped silently; this is lossy by design.
// SplitIDList parses a comma-separated list of numeric ids. Tokens that are
// not positive integers are dropped, matching how id lists embedded in
// category documents are read.
func SplitIDList(s string) []int64 {
	ids := []int64{}
	for _, token := range strings.Split(s, ",") {
		if id := parseIDToken(token); id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

func parseIDList(raw json.RawMessage) []int64 {
	raw = bytes.TrimSpace(raw)
	ids := []int64{}
	if len(raw) == 0 || string(raw) == "null" {
		return ids
	}
	switch raw[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return ids
		}
		for _, elem := range elems {
			elem = bytes.TrimSpace(elem)
			var id int64
			if len(elem) > 0 && elem[0] == '{' {
				var ref categoryRef
				if json.Unmarshal(elem, &ref) != nil {
					continue
				}
				id = ref.id()
			} else {
				id = parseID(elem)
			}
			if id > 0 {
				ids = append(ids, id)
			}
		}
	case '"':
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return ids
		}
		ids = append(ids, SplitIDList(s)...)
	default:
		if id := parseID(raw); id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
