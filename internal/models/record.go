package models

import (
	"encoding/json"

	"catalog-service/internal/reconcile"
)

// FormDocument renders the product with its preloaded relations as the wire
// document the form pipeline consumes. Category assignments are emitted as
// pivot rows so reconcile.NormalizeCategoryAssignments sees the same shape
// the legacy backend produced.
func (p *Product) FormDocument() ([]byte, error) {
	doc := map[string]interface{}{
		"id":            p.ID.String(),
		"name":          p.Name,
		"sku":           p.SKU,
		"product_type":  string(p.ProductType),
		"in_stock":      p.InStock,
		"is_taxable":    p.IsTaxable,
		"is_digital":    p.IsDigital,
		"in_flash_sale": p.InFlashSale,
		"status":        string(p.Status),
	}
	if p.Slug != nil {
		doc["slug"] = *p.Slug
	}
	if p.Description != nil {
		doc["description"] = *p.Description
	}
	if p.Price != nil {
		doc["price"] = *p.Price
	}
	if p.SalePrice != nil {
		doc["sale_price"] = *p.SalePrice
	}
	if p.MinPrice != nil {
		doc["min_price"] = *p.MinPrice
	}
	if p.MaxPrice != nil {
		doc["max_price"] = *p.MaxPrice
	}
	if p.Quantity != nil {
		doc["quantity"] = *p.Quantity
	}
	if p.Unit != nil {
		doc["unit"] = *p.Unit
	}
	if p.Language != nil {
		doc["language"] = *p.Language
	}
	if p.Image != nil {
		doc["image"] = *p.Image
	}
	if p.Gallery != nil {
		doc["gallery"] = *p.Gallery
	}
	if p.Video != nil {
		doc["video"] = *p.Video
	}
	if p.DigitalFile != nil {
		doc["digital_file"] = *p.DigitalFile
	}
	if p.AuthorID != nil {
		doc["author_id"] = *p.AuthorID
	}
	if p.ManufacturerID != nil {
		doc["manufacturer_id"] = *p.ManufacturerID
	}

	if p.Type != nil {
		doc["type_id"] = p.Type.ID
		doc["type"] = map[string]interface{}{
			"id":   p.Type.ID,
			"name": p.Type.Name,
			"slug": p.Type.Slug,
		}
	} else if p.TypeID != nil {
		doc["type_id"] = *p.TypeID
	}

	variations := make([]map[string]interface{}, 0, len(p.AttributeValues))
	for _, link := range p.AttributeValues {
		if link == nil || link.AttributeValue == nil {
			continue
		}
		av := link.AttributeValue
		entry := map[string]interface{}{
			"id":           av.ID,
			"attribute_id": av.AttributeID,
			"value":        av.Value,
		}
		if av.Meta != nil {
			entry["meta"] = *av.Meta
		}
		if av.Attribute != nil {
			entry["attribute"] = map[string]interface{}{
				"id":   av.Attribute.ID,
				"slug": av.Attribute.Slug,
				"name": av.Attribute.Name,
			}
		}
		variations = append(variations, entry)
	}
	doc["variations"] = variations

	options := make([]map[string]interface{}, 0, len(p.VariationOptions))
	for _, opt := range p.VariationOptions {
		if opt == nil {
			continue
		}
		entry := map[string]interface{}{
			"id":         opt.ID.String(),
			"title":      opt.Title,
			"is_disable": opt.IsDisable,
			"is_digital": opt.IsDigital,
		}
		if opt.SKU != nil {
			entry["sku"] = *opt.SKU
		}
		if opt.Price != nil {
			entry["price"] = *opt.Price
		}
		if opt.SalePrice != nil {
			entry["sale_price"] = *opt.SalePrice
		}
		if opt.Quantity != nil {
			entry["quantity"] = *opt.Quantity
		}
		if opt.Options != nil {
			entry["options"] = *opt.Options
		}
		if opt.Image != nil {
			entry["image"] = *opt.Image
		}
		if opt.DigitalFile != nil {
			entry["digital_file"] = *opt.DigitalFile
		}
		options = append(options, entry)
	}
	doc["variation_options"] = options

	categories := make([]map[string]interface{}, 0, len(p.Categories))
	for _, pc := range p.Categories {
		if pc == nil {
			continue
		}
		row := map[string]interface{}{
			"categories_id": pc.CategoriesID,
		}
		if pc.SousCategoriesID != nil {
			row["sous_categories_id"] = *pc.SousCategoriesID
		}
		if pc.SubCategoriesID != nil {
			row["sub_categories_id"] = *pc.SubCategoriesID
		}
		categories = append(categories, row)
	}
	doc["categories"] = categories

	tags := make([]map[string]interface{}, 0, len(p.Tags))
	for _, pt := range p.Tags {
		if pt == nil || pt.Tag == nil {
			continue
		}
		tags = append(tags, map[string]interface{}{
			"id":   pt.Tag.ID,
			"name": pt.Tag.Name,
			"slug": pt.Tag.Slug,
		})
	}
	doc["tags"] = tags

	return json.Marshal(doc)
}

// FormRecord decodes the product's form document into the pipeline's record
// type.
func (p *Product) FormRecord() (*reconcile.ProductRecord, error) {
	doc, err := p.FormDocument()
	if err != nil {
		return nil, err
	}
	var rec reconcile.ProductRecord
	if err := json.Unmarshal(doc, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
