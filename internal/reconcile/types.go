package reconcile

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ProductType distinguishes a single-SKU product from one sold as a set of
// attribute-value combinations.
type ProductType string

const (
	ProductTypeSimple   ProductType = "simple"
	ProductTypeVariable ProductType = "variable"
)

// ProductTypeOption is the {name, value} pair the form's type selector binds to.
type ProductTypeOption struct {
	Name  string      `json:"name"`
	Value ProductType `json:"value"`
}

// ProductTypeOptions is the known tag list; the first entry is the create-mode default.
var ProductTypeOptions = []ProductTypeOption{
	{Name: "Simple", Value: ProductTypeSimple},
	{Name: "Variable", Value: ProductTypeVariable},
}

// FlexString is an identifier that older backends emit as a JSON number and
// newer ones as a string. It decodes from either and always marshals as the
// string it decoded to.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		// Not a scalar we understand; treat as absent rather than failing
		// the whole document decode.
		*f = ""
		return nil
	}
	*f = FlexString(n.String())
	return nil
}

// EntityRef is the {id, name} pair used by the form's selector widgets.
type EntityRef struct {
	ID   FlexString `json:"id"`
	Name string     `json:"name"`
}

// Attribute is a classification axis for variants (e.g. Color). Read-only
// catalog entity as far as this package is concerned.
type Attribute struct {
	ID   FlexString `json:"id"`
	Slug string     `json:"slug"`
	Name string     `json:"name"`
}

// AttributeValue is one concrete value of an attribute (e.g. Red), carrying
// its parent attribute for grouping.
type AttributeValue struct {
	ID        FlexString `json:"id"`
	Value     string     `json:"value"`
	Attribute Attribute  `json:"attribute"`
}

// AttributeValueRef is the slimmed {id, value} pair kept inside a group.
type AttributeValueRef struct {
	ID    FlexString `json:"id"`
	Value string     `json:"value"`
}

// VariationGroup is the attribute-centric view the editor works with: one
// attribute plus the values selected for it. The wire key for the value list
// is "value", singular, for compatibility with the form contract.
type VariationGroup struct {
	Attribute Attribute           `json:"attribute"`
	Values    []AttributeValueRef `json:"value"`
}

// VariantCombinationEntry is one (attribute name, value) cell of a generated
// combination. The id is the attribute value id, carried for UI keying and
// stripped again before the payload is written.
type VariantCombinationEntry struct {
	Name  string     `json:"name"`
	Value string     `json:"value"`
	ID    FlexString `json:"id,omitempty"`
}

// AttributeValueLink is the write-side attribute linkage row.
type AttributeValueLink struct {
	AttributeValueID FlexString `json:"attribute_value_id"`
}

// Attachment is an uploaded file reference in editor shape.
type Attachment struct {
	ID        FlexString `json:"id,omitempty"`
	Thumbnail string     `json:"thumbnail,omitempty"`
	Original  string     `json:"original,omitempty"`
	FileName  string     `json:"file_name,omitempty"`
}

// IsZero reports whether the attachment carries nothing worth writing back.
func (a *Attachment) IsZero() bool {
	return a == nil || (a.ID == "" && a.Thumbnail == "" && a.Original == "" && a.FileName == "")
}

// DigitalFile is the persisted shape of a downloadable asset relation.
type DigitalFile struct {
	ID           FlexString `json:"id,omitempty"`
	AttachmentID FlexString `json:"attachment_id,omitempty"`
	URL          string     `json:"url,omitempty"`
	FileName     string     `json:"file_name,omitempty"`
}

// OptionsPayload is the identity of a variation option: its ordered
// (name, value) pairs. Backends have emitted this both as a JSON array and as
// a JSON string containing the array. A string that does not parse is kept
// verbatim and re-emitted unchanged, so a downstream validator sees exactly
// what arrived rather than a silent default.
type OptionsPayload struct {
	Pairs []VariantCombinationEntry
	Raw   string // set only when a string payload failed to parse
}

func (o *OptionsPayload) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		o.Pairs, o.Raw = nil, ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		var pairs []VariantCombinationEntry
		if err := json.Unmarshal([]byte(s), &pairs); err != nil {
			o.Pairs, o.Raw = nil, s
			return nil
		}
		o.Pairs, o.Raw = pairs, ""
		return nil
	}
	var pairs []VariantCombinationEntry
	if err := json.Unmarshal(b, &pairs); err != nil {
		return err
	}
	o.Pairs, o.Raw = pairs, ""
	return nil
}

func (o OptionsPayload) MarshalJSON() ([]byte, error) {
	if o.Raw != "" {
		return json.Marshal(o.Raw)
	}
	if o.Pairs == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(o.Pairs)
}

// Bare returns the pairs reduced to {name, value}, dropping the UI-keying id.
func (o OptionsPayload) Bare() OptionsPayload {
	if o.Raw != "" {
		return o
	}
	bare := make([]VariantCombinationEntry, len(o.Pairs))
	for i, p := range o.Pairs {
		bare[i] = VariantCombinationEntry{Name: p.Name, Value: p.Value}
	}
	return OptionsPayload{Pairs: bare}
}

// VariationOptionValues is one concrete sellable SKU in editable form shape.
// An empty ID means the option has not been persisted yet.
type VariationOptionValues struct {
	ID               FlexString     `json:"id,omitempty"`
	Title            string         `json:"title,omitempty"`
	Options          OptionsPayload `json:"options,omitempty"`
	Price            *float64       `json:"price,omitempty"`
	SalePrice        *float64       `json:"sale_price,omitempty"`
	Quantity         *int           `json:"quantity,omitempty"`
	SKU              string         `json:"sku,omitempty"`
	IsDisable        bool           `json:"is_disable,omitempty"`
	IsDigital        bool           `json:"is_digital,omitempty"`
	Image            *Attachment    `json:"image,omitempty"`
	DigitalFile      *DigitalFile   `json:"digital_file,omitempty"`
	DigitalFileInput *Attachment    `json:"digital_file_input,omitempty"`
}

// VariationOptionList decodes from either a bare array or a {data: [...]}
// envelope; anything else yields an empty list.
type VariationOptionList []VariationOptionValues

func (l *VariationOptionList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*l = nil
		return nil
	}
	if b[0] == '[' {
		var opts []VariationOptionValues
		if err := json.Unmarshal(b, &opts); err != nil {
			return err
		}
		*l = opts
		return nil
	}
	var wrapped struct {
		Data []VariationOptionValues `json:"data"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		*l = nil
		return nil
	}
	*l = wrapped.Data
	return nil
}

// CategoryAssignmentRow is the canonical category-tree selection: a required
// top-level category plus the selected second-level (sous) and third-level
// (sub) ids. Slices are always non-nil so the row round-trips through JSON
// as the canonical shape.
type CategoryAssignmentRow struct {
	CategoriesID     int64   `json:"categories_id"`
	SousCategoriesID []int64 `json:"sous_categories_id"`
	SubCategoriesID  []int64 `json:"sub_categories_id"`
}

// PriceQuantitySummary is derived from the current variation-option set on
// every save; it is never stored independently of that set.
type PriceQuantitySummary struct {
	MinPrice *float64 `json:"min_price"`
	MaxPrice *float64 `json:"max_price"`
	Quantity int      `json:"quantity"`
}

// ProductRecord is a persisted product as some version of the backend shipped
// it. Stable fields are typed; the category assignment is left raw because
// its shape varies across backend versions (see NormalizeCategoryAssignments).
type ProductRecord struct {
	ID             FlexString          `json:"id,omitempty"`
	Name           string              `json:"name,omitempty"`
	Slug           string              `json:"slug,omitempty"`
	Description    string              `json:"description,omitempty"`
	TypeID         FlexString          `json:"type_id,omitempty"`
	Type           *EntityRef          `json:"type,omitempty"`
	ProductType    ProductType         `json:"product_type,omitempty"`
	Price          *float64            `json:"price,omitempty"`
	SalePrice      *float64            `json:"sale_price,omitempty"`
	MinPrice       *float64            `json:"min_price,omitempty"`
	MaxPrice       *float64            `json:"max_price,omitempty"`
	Quantity       *int                `json:"quantity,omitempty"`
	SKU            string              `json:"sku,omitempty"`
	Unit           string              `json:"unit,omitempty"`
	Status         string              `json:"status,omitempty"`
	InStock        bool                `json:"in_stock,omitempty"`
	IsTaxable      bool                `json:"is_taxable,omitempty"`
	IsDigital      bool                `json:"is_digital,omitempty"`
	InFlashSale    bool                `json:"in_flash_sale,omitempty"`
	Image          *Attachment         `json:"image,omitempty"`
	Gallery        []Attachment        `json:"gallery,omitempty"`
	Video          []VideoLink         `json:"video,omitempty"`
	DigitalFile    *DigitalFile        `json:"digital_file,omitempty"`
	AuthorID       FlexString          `json:"author_id,omitempty"`
	ManufacturerID FlexString          `json:"manufacturer_id,omitempty"`
	Variations     []AttributeValue    `json:"variations,omitempty"`
	VariationOpts  VariationOptionList `json:"variation_options,omitempty"`
	Tags           []EntityRef         `json:"tags,omitempty"`

	// raw keeps the full document for the shape-variant category fields.
	raw json.RawMessage
}

// VideoLink is a promotional video reference.
type VideoLink struct {
	URL string `json:"url"`
}

func (r *ProductRecord) UnmarshalJSON(b []byte) error {
	type alias ProductRecord
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*r = ProductRecord(a)
	r.raw = append(json.RawMessage(nil), b...)
	return nil
}

// Raw returns the original document bytes this record was decoded from, or
// nil when the record was built in memory.
func (r *ProductRecord) Raw() json.RawMessage {
	return r.raw
}

// SetRaw attaches a source document to a record built in memory (used when a
// record is assembled from storage rather than decoded off the wire).
func (r *ProductRecord) SetRaw(doc json.RawMessage) {
	r.raw = append(json.RawMessage(nil), doc...)
}

// ProductFormValues is the transient, form-local superset of a product:
// relations replaced with selector-friendly shapes, variation options in
// editable shape. Owned by a single editing session and discarded on
// navigation; it never persists independently of an explicit save.
type ProductFormValues struct {
	Name             string                  `json:"name,omitempty"`
	Slug             string                  `json:"slug,omitempty"`
	Description      string                  `json:"description,omitempty"`
	Type             *EntityRef              `json:"type"`
	ProductType      *ProductTypeOption      `json:"product_type,omitempty"`
	Categories       []CategoryAssignmentRow `json:"categories"`
	Tags             []EntityRef             `json:"tags"`
	Price            *float64                `json:"price,omitempty"`
	SalePrice        *float64                `json:"sale_price,omitempty"`
	MinPrice         *float64                `json:"min_price,omitempty"`
	MaxPrice         *float64                `json:"max_price,omitempty"`
	Quantity         *int                    `json:"quantity,omitempty"`
	SKU              string                  `json:"sku,omitempty"`
	Unit             string                  `json:"unit,omitempty"`
	Status           string                  `json:"status,omitempty"`
	InStock          bool                    `json:"in_stock"`
	IsTaxable        bool                    `json:"is_taxable"`
	IsDigital        bool                    `json:"is_digital"`
	InFlashSale      bool                    `json:"in_flash_sale"`
	Image            *Attachment             `json:"image,omitempty"`
	Gallery          []Attachment            `json:"gallery"`
	Video            []VideoLink             `json:"video"`
	DigitalFileInput *Attachment             `json:"digital_file_input,omitempty"`
	AuthorID         FlexString              `json:"author_id,omitempty"`
	ManufacturerID   FlexString              `json:"manufacturer_id,omitempty"`
	Variations       []VariationGroup        `json:"variations"`
	VariationOpts    []VariationOptionValues `json:"variation_options"`
}

// VariationOptionUpsert is one option as written back to the backend:
// internal-only editor fields stripped, options reduced to bare pairs, id
// present only for options the backend already knows.
type VariationOptionUpsert struct {
	ID          FlexString     `json:"id,omitempty"`
	Title       string         `json:"title,omitempty"`
	Price       *float64       `json:"price,omitempty"`
	SalePrice   *float64       `json:"sale_price,omitempty"`
	Quantity    *int           `json:"quantity,omitempty"`
	SKU         string         `json:"sku,omitempty"`
	IsDisable   bool           `json:"is_disable,omitempty"`
	IsDigital   bool           `json:"is_digital,omitempty"`
	Image       *Attachment    `json:"image,omitempty"`
	DigitalFile *DigitalFile   `json:"digital_file,omitempty"`
	Options     OptionsPayload `json:"options"`
}

// VariationOptionsDiff expresses the incremental write: options to
// create-or-update and option ids to remove. Both slices are always present
// on the wire, possibly empty.
type VariationOptionsDiff struct {
	Upsert []VariationOptionUpsert `json:"upsert"`
	Delete []FlexString            `json:"delete"`
}

// ProductInput is the backend write payload produced on save.
type ProductInput struct {
	Name           string               `json:"name,omitempty"`
	Slug           string               `json:"slug,omitempty"`
	Description    string               `json:"description,omitempty"`
	TypeID         FlexString           `json:"type_id,omitempty"`
	ProductType    string               `json:"product_type"`
	Categories     []string             `json:"categories"`
	Tags           []FlexString         `json:"tags"`
	Price          *float64             `json:"price,omitempty"`
	SalePrice      *float64             `json:"sale_price,omitempty"`
	MinPrice       *float64             `json:"min_price"`
	MaxPrice       *float64             `json:"max_price"`
	Quantity       *int                 `json:"quantity,omitempty"`
	SKU            string               `json:"sku,omitempty"`
	Unit           string               `json:"unit,omitempty"`
	Status         string               `json:"status,omitempty"`
	InStock        bool                 `json:"in_stock"`
	IsTaxable      bool                 `json:"is_taxable"`
	IsDigital      bool                 `json:"is_digital"`
	InFlashSale    bool                 `json:"in_flash_sale"`
	Image          *Attachment          `json:"image,omitempty"`
	Gallery        []Attachment         `json:"gallery"`
	DigitalFile    *DigitalFile         `json:"digital_file,omitempty"`
	AuthorID       FlexString           `json:"author_id,omitempty"`
	ManufacturerID FlexString           `json:"manufacturer_id,omitempty"`
	Variations     []AttributeValueLink `json:"variations"`
	VariationOpts  VariationOptionsDiff `json:"variation_options"`
}

// parseID reads a single id from a raw JSON scalar (number or numeric
// string). Returns 0 for anything else.
func parseID(raw json.RawMessage) int64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}
	if raw[0] == '"' {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return 0
		}
		return parseIDToken(s)
	}
	var f float64
	if json.Unmarshal(raw, &f) != nil {
		return 0
	}
	return int64(f)
}

func parseIDToken(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}
