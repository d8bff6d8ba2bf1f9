package reconcile

// GroupVariations groups a flat attribute-value list into per-attribute
// groups for the editor. The grouping key is the attribute slug; the group
// carries the attribute object of the first member seen for that slug (a
// later member with a divergent attribute object is ignored). Group order is
// insertion order of first occurrence, value order follows input order.
func GroupVariations(values []AttributeValue) []VariationGroup {
	groups := []VariationGroup{}
	index := make(map[string]int)

	for _, v := range values {
		slug := v.Attribute.Slug
		i, ok := index[slug]
		if !ok {
			i = len(groups)
			index[slug] = i
			groups = append(groups, VariationGroup{Attribute: v.Attribute, Values: []AttributeValueRef{}})
		}
		groups[i].Values = append(groups[i].Values, AttributeValueRef{ID: v.ID, Value: v.Value})
	}

	return groups
}

// FilterAttributes returns the attributes not yet used by any group, i.e.
// the ones the editor can still add as a new variation axis.
func FilterAttributes(attributes []Attribute, groups []VariationGroup) []Attribute {
	used := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		used[g.Attribute.Slug] = struct{}{}
	}
	out := []Attribute{}
	for _, a := range attributes {
		if _, ok := used[a.Slug]; !ok {
			out = append(out, a)
		}
	}
	return out
}

// ExpandVariations generates every concrete variant combination from the
// grouped selections: the n-ary cartesian product over each group's value
// list. Group order determines entry order within a combination, and the
// first group varies slowest. An empty input or any empty group yields no
// combinations at all — never a single phantom all-empty variant.
func ExpandVariations(groups []VariationGroup) [][]VariantCombinationEntry {
	if len(groups) == 0 {
		return [][]VariantCombinationEntry{}
	}

	total := 1
	for _, g := range groups {
		total *= len(g.Values)
	}
	if total == 0 {
		return [][]VariantCombinationEntry{}
	}

	combos := make([][]VariantCombinationEntry, 0, total)
	current := make([]VariantCombinationEntry, len(groups))

	var walk func(depth int)
	walk = func(depth int) {
		if depth == len(groups) {
			combo := make([]VariantCombinationEntry, len(current))
			copy(combo, current)
			combos = append(combos, combo)
			return
		}
		g := groups[depth]
		for _, v := range g.Values {
			current[depth] = VariantCombinationEntry{
				Name:  g.Attribute.Name,
				Value: v.Value,
				ID:    v.ID,
			}
			walk(depth + 1)
		}
	}
	walk(0)

	return combos
}
