package reconcile

import (
	"fmt"
	"strconv"
)

// ProductToFormValues converts a persisted product record into the editable
// form model. A nil record yields create-mode defaults. When
// isNewTranslationCopy is set (the product is being duplicated into a new
// locale), every relation-valued field is reset so the copy starts with only
// non-relational fields inherited.
func ProductToFormValues(rec *ProductRecord, isNewTranslationCopy bool) *ProductFormValues {
	if rec == nil {
		zero := 0.0
		return &ProductFormValues{
			ProductType:   &ProductTypeOptions[0],
			MinPrice:      &zero,
			MaxPrice:      &zero,
			Categories:    []CategoryAssignmentRow{},
			Tags:          []EntityRef{},
			Type:          nil,
			InStock:       true,
			IsTaxable:     false,
			Gallery:       []Attachment{},
			Video:         []VideoLink{},
			Variations:    []VariationGroup{},
			VariationOpts: []VariationOptionValues{},
		}
	}

	values := &ProductFormValues{
		Name:           rec.Name,
		Slug:           rec.Slug,
		Description:    rec.Description,
		Price:          rec.Price,
		SalePrice:      rec.SalePrice,
		MinPrice:       rec.MinPrice,
		MaxPrice:       rec.MaxPrice,
		Quantity:       rec.Quantity,
		SKU:            rec.SKU,
		Unit:           rec.Unit,
		Status:         rec.Status,
		InStock:        rec.InStock,
		IsTaxable:      rec.IsTaxable,
		IsDigital:      rec.IsDigital,
		InFlashSale:    rec.InFlashSale,
		Image:          rec.Image,
		Gallery:        emptyIfNilAttachments(rec.Gallery),
		Video:          emptyIfNilVideos(rec.Video),
		AuthorID:       rec.AuthorID,
		ManufacturerID: rec.ManufacturerID,
		Variations:     []VariationGroup{},
		VariationOpts:  []VariationOptionValues{},
	}

	values.Type = typeSelector(rec)
	values.ProductType = matchProductType(rec.ProductType)

	if rec.ProductType == ProductTypeSimple && rec.IsDigital && rec.DigitalFile != nil {
		values.DigitalFileInput = &Attachment{
			ID:        rec.DigitalFile.AttachmentID,
			Thumbnail: rec.DigitalFile.URL,
			Original:  rec.DigitalFile.URL,
		}
	}

	if rec.ProductType == ProductTypeVariable {
		values.Variations = GroupVariations(rec.Variations)
		values.VariationOpts = formVariationOptions(rec.VariationOpts)
	}

	values.Categories = NormalizeCategoryAssignments(rec.Raw())
	values.Tags = make([]EntityRef, 0, len(rec.Tags))
	for _, t := range rec.Tags {
		values.Tags = append(values.Tags, EntityRef{ID: t.ID, Name: t.Name})
	}

	if isNewTranslationCopy {
		values.Type = nil
		values.Categories = []CategoryAssignmentRow{}
		values.Tags = []EntityRef{}
		values.AuthorID = ""
		values.ManufacturerID = ""
		values.Variations = []VariationGroup{}
		values.VariationOpts = []VariationOptionValues{}
		values.DigitalFileInput = nil
		if rec.ProductType == ProductTypeVariable {
			values.Quantity = nil
		}
	}

	return values
}

// typeSelector maps the type relation (or a bare type_id) to selector shape.
func typeSelector(rec *ProductRecord) *EntityRef {
	if rec.Type != nil {
		id := rec.Type.ID
		if id == "" {
			id = rec.TypeID
		}
		return &EntityRef{ID: id, Name: rec.Type.Name}
	}
	if rec.TypeID != "" {
		return &EntityRef{ID: rec.TypeID, Name: ""}
	}
	return nil
}

func matchProductType(pt ProductType) *ProductTypeOption {
	for i := range ProductTypeOptions {
		if ProductTypeOptions[i].Value == pt {
			return &ProductTypeOptions[i]
		}
	}
	return nil
}

// formVariationOptions maps server-shaped options into editable shape: the
// image is kept only when it carries something, and a variant's digital file
// relation is flattened into the editor's attachment shape.
func formVariationOptions(opts VariationOptionList) []VariationOptionValues {
	out := make([]VariationOptionValues, 0, len(opts))
	for _, opt := range opts {
		mapped := opt
		if mapped.Image.IsZero() {
			mapped.Image = nil
		}
		if opt.DigitalFile != nil {
			mapped.DigitalFileInput = &Attachment{
				ID:       opt.DigitalFile.AttachmentID,
				FileName: opt.DigitalFile.FileName,
			}
		}
		out = append(out, mapped)
	}
	return out
}

// FormValuesToProductInput converts the edited form model into the backend
// write payload, expressing variation options as an incremental diff against
// the original server snapshot rather than a full replacement.
//
// Two rules here are fixed business behavior, not derived state: is_digital
// is forced true on every save, and the top-level product_type field always
// writes the literal "simple" tag. The latter is independent of the
// product_type enum check that gates variant expansion below — an inherited
// asymmetry that is preserved deliberately (see DESIGN.md).
func FormValuesToProductInput(values *ProductFormValues, original *ProductRecord, isNewTranslationCopy bool) (*ProductInput, error) {
	if values == nil {
		return nil, fmt.Errorf("reconcile: form values are required")
	}

	input := &ProductInput{
		Name:           values.Name,
		Slug:           values.Slug,
		Description:    values.Description,
		ProductType:    string(ProductTypeSimple),
		Price:          values.Price,
		SalePrice:      values.SalePrice,
		Quantity:       values.Quantity,
		SKU:            values.SKU,
		Unit:           values.Unit,
		Status:         values.Status,
		InStock:        values.InStock,
		IsTaxable:      values.IsTaxable,
		IsDigital:      true,
		InFlashSale:    values.InFlashSale,
		Image:          values.Image,
		Gallery:        emptyIfNilAttachments(values.Gallery),
		AuthorID:       values.AuthorID,
		ManufacturerID: values.ManufacturerID,
		Variations:     []AttributeValueLink{},
	}

	if values.Type != nil {
		input.TypeID = values.Type.ID
	}

	input.Categories = categoryIDStrings(values.Categories)
	input.Tags = make([]FlexString, 0, len(values.Tags))
	for _, tag := range values.Tags {
		input.Tags = append(input.Tags, tag.ID)
	}

	input.DigitalFile = digitalFilePayload(values.DigitalFileInput, original, isNewTranslationCopy)

	// Default posture: nothing upserted, everything the server had deleted.
	// The variable-product branch below replaces this with the real diff.
	input.VariationOpts = VariationOptionsDiff{
		Upsert: []VariationOptionUpsert{},
		Delete: originalOptionIDs(original),
	}

	if values.ProductType != nil && values.ProductType.Value == ProductTypeVariable {
		summary := AggregatePriceQuantity(values.VariationOpts)
		qty := summary.Quantity
		input.Quantity = &qty

		for _, group := range values.Variations {
			for _, v := range group.Values {
				input.Variations = append(input.Variations, AttributeValueLink{AttributeValueID: v.ID})
			}
		}

		edited := make(map[FlexString]struct{}, len(values.VariationOpts))
		upserts := make([]VariationOptionUpsert, 0, len(values.VariationOpts))
		for _, opt := range values.VariationOpts {
			if opt.ID != "" {
				edited[opt.ID] = struct{}{}
			}
			upserts = append(upserts, upsertFromOption(opt))
		}

		deletes := []FlexString{}
		for _, id := range originalOptionIDs(original) {
			if _, ok := edited[id]; !ok {
				deletes = append(deletes, id)
			}
		}

		input.VariationOpts = VariationOptionsDiff{Upsert: upserts, Delete: deletes}
	}

	priced := AggregatePriceQuantity(values.VariationOpts)
	input.MinPrice = priced.MinPrice
	input.MaxPrice = priced.MaxPrice

	return input, nil
}

// categoryIDStrings flattens assignment rows to the flat stringified id list
// the write side expects; rows without a usable id are dropped.
func categoryIDStrings(rows []CategoryAssignmentRow) []string {
	ids := []string{}
	for _, row := range rows {
		if row.CategoriesID > 0 {
			ids = append(ids, strconv.FormatInt(row.CategoriesID, 10))
		}
	}
	return ids
}

// digitalFilePayload rebuilds the digital file write shape from the editor's
// attachment, preserving the persisted relation id except on a new
// translation copy, which must not adopt the source locale's relation row.
func digitalFilePayload(in *Attachment, original *ProductRecord, isNewTranslationCopy bool) *DigitalFile {
	payload := &DigitalFile{}
	if in != nil {
		payload.AttachmentID = in.ID
		payload.URL = in.Original
		payload.FileName = in.FileName
	}
	if !isNewTranslationCopy && original != nil && original.DigitalFile != nil {
		payload.ID = original.DigitalFile.ID
	}
	return payload
}

// upsertFromOption maps one edited option to write shape: the id is kept
// only when the backend already assigned one, editor-only fields are
// stripped, the image is re-attached only when non-empty, the digital file
// sub-object only when the option is flagged digital, and the options
// identity pairs are reduced to bare {name, value}.
func upsertFromOption(opt VariationOptionValues) VariationOptionUpsert {
	up := VariationOptionUpsert{
		ID:        opt.ID,
		Title:     opt.Title,
		Price:     opt.Price,
		SalePrice: opt.SalePrice,
		Quantity:  opt.Quantity,
		SKU:       opt.SKU,
		IsDisable: opt.IsDisable,
		IsDigital: opt.IsDigital,
		Options:   opt.Options.Bare(),
	}
	if !opt.Image.IsZero() {
		up.Image = opt.Image
	}
	if opt.IsDigital {
		df := &DigitalFile{}
		if opt.DigitalFile != nil {
			df.ID = opt.DigitalFile.ID
		}
		if opt.DigitalFileInput != nil {
			df.AttachmentID = opt.DigitalFileInput.ID
			df.URL = opt.DigitalFileInput.Original
			df.FileName = opt.DigitalFileInput.FileName
		}
		up.DigitalFile = df
	}
	return up
}

func originalOptionIDs(original *ProductRecord) []FlexString {
	ids := []FlexString{}
	if original == nil {
		return ids
	}
	for _, opt := range original.VariationOpts {
		if opt.ID != "" {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

func emptyIfNilAttachments(in []Attachment) []Attachment {
	if in == nil {
		return []Attachment{}
	}
	return in
}

func emptyIfNilVideos(in []VideoLink) []VideoLink {
	if in == nil {
		return []VideoLink{}
	}
	return in
}
