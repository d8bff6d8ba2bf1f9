package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductStatus represents the lifecycle status of a product
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "DRAFT"
	ProductStatusPublish  ProductStatus = "PUBLISH"
	ProductStatusInactive ProductStatus = "INACTIVE"
	ProductStatusArchived ProductStatus = "ARCHIVED"
)

// ProductTypeTag distinguishes a single-SKU product from a variable one
type ProductTypeTag string

const (
	ProductTypeTagSimple   ProductTypeTag = "simple"
	ProductTypeTagVariable ProductTypeTag = "variable"
)

// JSON type for PostgreSQL JSONB (object/map)
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// JSONArray type for PostgreSQL JSONB (array)
type JSONArray []interface{}

func (j JSONArray) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONArray, 0)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// Product represents a catalog product. Products and their variation options
// carry uuid ids assigned here; catalog entities (categories, attributes,
// tags, types) keep the numeric ids the legacy backend assigned, since those
// ids travel through form payloads and import files.
type Product struct {
	ID               uuid.UUID                `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID         string                   `json:"tenantId" gorm:"not null;index:idx_products_tenant_id;index:idx_products_tenant_status;index:idx_products_tenant_sku,unique;index:idx_products_tenant_slug,unique"`
	Name             string                   `json:"name" gorm:"not null"`
	Slug             *string                  `json:"slug,omitempty" gorm:"index:idx_products_tenant_slug,unique"`
	SKU              string                   `json:"sku" gorm:"not null;index:idx_products_tenant_sku,unique"`
	Description      *string                  `json:"description,omitempty"`
	ProductType      ProductTypeTag           `json:"product_type" gorm:"not null;default:'simple'"`
	TypeID           *int64                   `json:"type_id,omitempty" gorm:"index"`
	Type             *Type                    `json:"type,omitempty" gorm:"foreignKey:TypeID"`
	Price            *float64                 `json:"price,omitempty"`
	SalePrice        *float64                 `json:"sale_price,omitempty"`
	MinPrice         *float64                 `json:"min_price,omitempty"`
	MaxPrice         *float64                 `json:"max_price,omitempty"`
	Quantity         *int                     `json:"quantity,omitempty"`
	Unit             *string                  `json:"unit,omitempty"`
	InStock          bool                     `json:"in_stock" gorm:"default:true"`
	IsTaxable        bool                     `json:"is_taxable" gorm:"default:false"`
	IsDigital        bool                     `json:"is_digital" gorm:"default:false"`
	InFlashSale      bool                     `json:"in_flash_sale" gorm:"default:false"`
	Status           ProductStatus            `json:"status" gorm:"not null;default:'DRAFT';index:idx_products_tenant_status"`
	Language         *string                  `json:"language,omitempty" gorm:"index"`
	Image            *JSON                    `json:"image,omitempty" gorm:"type:jsonb"`
	Gallery          *JSONArray               `json:"gallery,omitempty" gorm:"type:jsonb"`
	Video            *JSONArray               `json:"video,omitempty" gorm:"type:jsonb"`
	DigitalFile      *JSON                    `json:"digital_file,omitempty" gorm:"type:jsonb"`
	AuthorID         *int64                   `json:"author_id,omitempty"`
	ManufacturerID   *int64                   `json:"manufacturer_id,omitempty"`
	VariationOptions []*VariationOption       `json:"variation_options,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	AttributeValues  []*ProductAttributeValue `json:"attribute_values,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Categories       []*ProductCategory       `json:"categories,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Tags             []*ProductTag            `json:"tags,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time                `json:"createdAt"`
	UpdatedAt        time.Time                `json:"updatedAt"`
	DeletedAt        *gorm.DeletedAt          `json:"deletedAt,omitempty" gorm:"index"`
	CreatedBy        *string                  `json:"createdBy,omitempty"`
	UpdatedBy        *string                  `json:"updatedBy,omitempty"`
	Metadata         *JSON                    `json:"metadata,omitempty" gorm:"type:jsonb"`
}

// VariationOption represents one concrete sellable SKU of a variable product.
// Its identity is the set of (attribute name, value) pairs stored in Options.
type VariationOption struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID   uuid.UUID       `json:"productId" gorm:"type:uuid;not null;index"`
	Title       string          `json:"title"`
	SKU         *string         `json:"sku,omitempty"`
	Price       *float64        `json:"price,omitempty"`
	SalePrice   *float64        `json:"sale_price,omitempty"`
	Quantity    *int            `json:"quantity,omitempty"`
	Options     *JSONArray      `json:"options,omitempty" gorm:"type:jsonb"`
	Image       *JSON           `json:"image,omitempty" gorm:"type:jsonb"`
	IsDisable   bool            `json:"is_disable" gorm:"default:false"`
	IsDigital   bool            `json:"is_digital" gorm:"default:false"`
	DigitalFile *JSON           `json:"digital_file,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// Attribute represents a variant classification axis (e.g. Color)
type Attribute struct {
	ID        int64             `json:"id" gorm:"primary_key;autoIncrement"`
	TenantID  string            `json:"tenantId" gorm:"not null;index:idx_attributes_tenant_slug,unique"`
	Slug      string            `json:"slug" gorm:"not null;index:idx_attributes_tenant_slug,unique"`
	Name      string            `json:"name" gorm:"not null"`
	Values    []*AttributeValue `json:"values,omitempty" gorm:"foreignKey:AttributeID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// AttributeValue represents one concrete value of an attribute (e.g. Red)
type AttributeValue struct {
	ID          int64      `json:"id" gorm:"primary_key;autoIncrement"`
	AttributeID int64      `json:"attribute_id" gorm:"not null;index"`
	Attribute   *Attribute `json:"attribute,omitempty" gorm:"foreignKey:AttributeID"`
	Value       string     `json:"value" gorm:"not null"`
	Meta        *string    `json:"meta,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ProductAttributeValue links a variable product to one selected attribute
// value. The whole linkage set is rebuilt on every save.
type ProductAttributeValue struct {
	ID               int64           `json:"id" gorm:"primary_key;autoIncrement"`
	ProductID        uuid.UUID       `json:"productId" gorm:"type:uuid;not null;index"`
	AttributeValueID int64           `json:"attribute_value_id" gorm:"not null;index"`
	AttributeValue   *AttributeValue `json:"attribute_value,omitempty" gorm:"foreignKey:AttributeValueID"`
}

// Category represents one node of the three-level category tree:
// level 0 = category, level 1 = sous-category, level 2 = sub-category
type Category struct {
	ID        int64           `json:"id" gorm:"primary_key;autoIncrement"`
	TenantID  string          `json:"tenantId" gorm:"not null;index"`
	Name      string          `json:"name" gorm:"not null"`
	Slug      string          `json:"slug" gorm:"not null"`
	ParentID  *int64          `json:"parentId,omitempty" gorm:"index"`
	Level     int             `json:"level" gorm:"not null;default:0"`
	Icon      *string         `json:"icon,omitempty"`
	IsActive  bool            `json:"isActive" gorm:"default:true"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// ProductCategory is the persisted form of one category assignment row:
// a top-level category plus the selected sous/sub-category id lists
type ProductCategory struct {
	ID               int64      `json:"id" gorm:"primary_key;autoIncrement"`
	ProductID        uuid.UUID  `json:"productId" gorm:"type:uuid;not null;index"`
	CategoriesID     int64      `json:"categories_id" gorm:"not null"`
	SousCategoriesID *JSONArray `json:"sous_categories_id,omitempty" gorm:"type:jsonb"`
	SubCategoriesID  *JSONArray `json:"sub_categories_id,omitempty" gorm:"type:jsonb"`
}

// Tag represents a flat product tag
type Tag struct {
	ID        int64     `json:"id" gorm:"primary_key;autoIncrement"`
	TenantID  string    `json:"tenantId" gorm:"not null;index:idx_tags_tenant_slug,unique"`
	Name      string    `json:"name" gorm:"not null"`
	Slug      string    `json:"slug" gorm:"not null;index:idx_tags_tenant_slug,unique"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductTag links a product to a tag
type ProductTag struct {
	ID        int64     `json:"id" gorm:"primary_key;autoIncrement"`
	ProductID uuid.UUID `json:"productId" gorm:"type:uuid;not null;index"`
	TagID     int64     `json:"tag_id" gorm:"not null;index"`
	Tag       *Tag      `json:"tag,omitempty" gorm:"foreignKey:TagID"`
}

// Type represents a storefront layout type (the form's type selector)
type Type struct {
	ID        int64     `json:"id" gorm:"primary_key;autoIncrement"`
	TenantID  string    `json:"tenantId" gorm:"not null;index:idx_types_tenant_slug,unique"`
	Name      string    `json:"name" gorm:"not null"`
	Slug      string    `json:"slug" gorm:"not null;index:idx_types_tenant_slug,unique"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateCategoryRequest represents a request to create a category node
type CreateCategoryRequest struct {
	Name     string  `json:"name" binding:"required"`
	Slug     *string `json:"slug,omitempty"`
	ParentID *int64  `json:"parentId,omitempty"`
	Icon     *string `json:"icon,omitempty"`
}

// UpdateCategoryRequest represents a request to update a category node
type UpdateCategoryRequest struct {
	Name     *string `json:"name,omitempty"`
	Slug     *string `json:"slug,omitempty"`
	Icon     *string `json:"icon,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// CreateAttributeRequest represents a request to create an attribute with values
type CreateAttributeRequest struct {
	Name   string   `json:"name" binding:"required"`
	Slug   *string  `json:"slug,omitempty"`
	Values []string `json:"values,omitempty"`
}

// CreateTagRequest represents a request to create a tag
type CreateTagRequest struct {
	Name string  `json:"name" binding:"required"`
	Slug *string `json:"slug,omitempty"`
}

// CreateTypeRequest represents a request to create a layout type
type CreateTypeRequest struct {
	Name string  `json:"name" binding:"required"`
	Slug *string `json:"slug,omitempty"`
}

// UpdateProductStatusRequest represents a request to update product status
type UpdateProductStatusRequest struct {
	Status ProductStatus `json:"status" binding:"required"`
	Notes  *string       `json:"notes,omitempty"`
}

// SearchProductsRequest represents a product list/search request
type SearchProductsRequest struct {
	Query       *string         `json:"query,omitempty"`
	CategoryID  *int64          `json:"categoryId,omitempty"`
	ProductType *ProductTypeTag `json:"productType,omitempty"`
	Status      []ProductStatus `json:"status,omitempty"`
	MinPrice    *float64        `json:"minPrice,omitempty"`
	MaxPrice    *float64        `json:"maxPrice,omitempty"`
	InStock     *bool           `json:"inStock,omitempty"`
	SortBy      *string         `json:"sortBy,omitempty"`
	SortOrder   *string         `json:"sortOrder,omitempty"`
	Page        int             `json:"page"`
	Limit       int             `json:"limit"`
}

// Response types
type PaginationInfo struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

type ProductResponse struct {
	Success bool     `json:"success"`
	Data    *Product `json:"data"`
	Message *string  `json:"message,omitempty"`
}

type ProductListResponse struct {
	Success    bool            `json:"success"`
	Data       []Product       `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}

type CategoryResponse struct {
	Success bool      `json:"success"`
	Data    *Category `json:"data"`
	Message *string   `json:"message,omitempty"`
}

type CategoryListResponse struct {
	Success    bool            `json:"success"`
	Data       []Category      `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}

type AttributeListResponse struct {
	Success bool        `json:"success"`
	Data    []Attribute `json:"data"`
}

type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     Error  `json:"error"`
	Timestamp string `json:"timestamp,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details *JSON  `json:"details,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// TableName returns the table name for the VariationOption model
func (VariationOption) TableName() string {
	return "variation_options"
}

// TableName returns the table name for the Attribute model
func (Attribute) TableName() string {
	return "attributes"
}

// TableName returns the table name for the AttributeValue model
func (AttributeValue) TableName() string {
	return "attribute_values"
}

// TableName returns the table name for the ProductAttributeValue model
func (ProductAttributeValue) TableName() string {
	return "product_attribute_values"
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}

// TableName returns the table name for the ProductCategory model
func (ProductCategory) TableName() string {
	return "product_categories"
}

// TableName returns the table name for the Tag model
func (Tag) TableName() string {
	return "tags"
}

// TableName returns the table name for the ProductTag model
func (ProductTag) TableName() string {
	return "product_tags"
}

// TableName returns the table name for the Type model
func (Type) TableName() string {
	return "types"
}
