package repository

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"catalog-service/internal/models"
	"catalog-service/internal/reconcile"
)

// Cache TTL constants
const (
	ProductCacheTTL     = 5 * time.Minute  // Single product cache
	ProductListCacheTTL = 2 * time.Minute  // Product list cache (shorter due to frequent changes)
	CatalogCacheTTL     = 30 * time.Minute // Categories/attributes/tags/types rarely change
)

type ProductsRepository struct {
	db    *gorm.DB
	redis *redis.Client
	cache *cache.CacheLayer
}

func NewProductsRepository(db *gorm.DB, redis *redis.Client) *ProductsRepository {
	repo := &ProductsRepository{
		db:    db,
		redis: redis,
	}

	// Initialize CacheLayer with the existing Redis client
	if redis != nil {
		cacheConfig := cache.CacheConfig{
			L1Enabled:  true,
			L1MaxItems: 5000,
			L1TTL:      30 * time.Second,
			DefaultTTL: ProductCacheTTL,
			KeyPrefix:  "tesseract:catalog:",
		}
		repo.cache = cache.NewCacheLayerFromClient(redis, cacheConfig)
	}

	return repo
}

// generateListCacheKey creates a deterministic cache key for list queries
func generateListCacheKey(tenantID string, prefix string, params interface{}) string {
	data, _ := json.Marshal(params)
	hash := md5.Sum(data)
	return fmt.Sprintf("%s:%s:%s", prefix, tenantID, hex.EncodeToString(hash[:]))
}

// invalidateProductCaches invalidates all caches related to a product
func (r *ProductsRepository) invalidateProductCaches(ctx context.Context, tenantID string, productID uuid.UUID) {
	if r.cache == nil {
		return
	}

	productKey := fmt.Sprintf("product:%s:%s", tenantID, productID.String())
	_ = r.cache.Delete(ctx, productKey+":true", productKey+":false")
	_ = r.cache.DeletePattern(ctx, fmt.Sprintf("products:list:%s:*", tenantID))
}

// invalidateTenantProductListCaches invalidates all product list caches for a tenant
func (r *ProductsRepository) invalidateTenantProductListCaches(ctx context.Context, tenantID string) {
	if r.cache == nil {
		return
	}
	_ = r.cache.DeletePattern(ctx, fmt.Sprintf("products:list:%s:*", tenantID))
}

// invalidateCatalogCaches invalidates category/attribute/tag/type caches for a tenant
func (r *ProductsRepository) invalidateCatalogCaches(ctx context.Context, tenantID string) {
	if r.cache == nil {
		return
	}
	_ = r.cache.DeletePattern(ctx, fmt.Sprintf("catalog:*:%s:*", tenantID))
}

// formPreloads attaches every relation the form pipeline reads
func formPreloads(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Type").
		Preload("VariationOptions").
		Preload("AttributeValues.AttributeValue.Attribute").
		Preload("Categories").
		Preload("Tags.Tag")
}

// Product CRUD Operations

// CreateProduct creates a new product
func (r *ProductsRepository) CreateProduct(tenantID string, product *models.Product) error {
	product.TenantID = tenantID
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	// Ensure product has an ID before generating slug (for uniqueness)
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	if product.Slug == nil || *product.Slug == "" {
		baseSlug := generateSlug(product.Name)
		uniqueSlug := fmt.Sprintf("%s-%s", baseSlug, product.ID.String()[:8])
		product.Slug = &uniqueSlug
	}

	err := r.db.Create(product).Error
	if err == nil {
		r.invalidateTenantProductListCaches(context.Background(), tenantID)
	}
	return err
}

// GetProductByID retrieves a product by ID with caching
func (r *ProductsRepository) GetProductByID(tenantID string, productID uuid.UUID, includeRelations bool) (*models.Product, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("product:%s:%s:%v", tenantID, productID.String(), includeRelations)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var product models.Product
			if err := json.Unmarshal([]byte(val), &product); err == nil {
				return &product, nil
			}
		}
	}

	var product models.Product
	query := r.db.Where("tenant_id = ? AND id = ?", tenantID, productID)
	if includeRelations {
		query = formPreloads(query)
	}
	if err := query.First(&product).Error; err != nil {
		return nil, err
	}

	if r.redis != nil {
		data, err := json.Marshal(product)
		if err == nil {
			r.redis.Set(ctx, cacheKey, data, ProductCacheTTL)
		}
	}

	return &product, nil
}

// GetProductForForm loads a product with every relation the form pipeline
// needs. Always reads from the database: the form is an editing surface and
// must not serve a stale snapshot.
func (r *ProductsRepository) GetProductForForm(tenantID string, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	query := formPreloads(r.db.Where("tenant_id = ? AND id = ?", tenantID, productID))
	if err := query.First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct updates a product and invalidates cache
func (r *ProductsRepository) UpdateProduct(tenantID string, productID uuid.UUID, updates *models.Product) error {
	updates.UpdatedAt = time.Now()
	err := r.db.Model(&models.Product{}).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		Updates(updates).Error

	if err == nil {
		r.invalidateProductCaches(context.Background(), tenantID, productID)
	}

	return err
}

// UpdateProductStatus updates product status
func (r *ProductsRepository) UpdateProductStatus(tenantID string, productID uuid.UUID, status models.ProductStatus) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}

	err := r.db.Model(&models.Product{}).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		Updates(updates).Error

	if err == nil {
		r.invalidateProductCaches(context.Background(), tenantID, productID)
	}
	return err
}

// DeleteProduct soft deletes a product
func (r *ProductsRepository) DeleteProduct(tenantID string, productID uuid.UUID) error {
	err := r.db.Where("tenant_id = ? AND id = ?", tenantID, productID).
		Delete(&models.Product{}).Error

	if err == nil {
		r.invalidateProductCaches(context.Background(), tenantID, productID)
	}
	return err
}

// GetProducts retrieves products with filters and pagination
func (r *ProductsRepository) GetProducts(tenantID string, req *models.SearchProductsRequest) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.Model(&models.Product{}).Where("tenant_id = ?", tenantID)
	query = r.applyProductFilters(query, req)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if req.SortBy != nil && *req.SortBy != "" {
		sortOrder := "DESC"
		if req.SortOrder != nil && strings.ToUpper(*req.SortOrder) == "ASC" {
			sortOrder = "ASC"
		}
		query = query.Order(fmt.Sprintf("%s %s", *req.SortBy, sortOrder))
	} else {
		query = query.Order("created_at DESC")
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Preload("Type").Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *ProductsRepository) applyProductFilters(query *gorm.DB, req *models.SearchProductsRequest) *gorm.DB {
	if req.Query != nil && *req.Query != "" {
		like := "%" + strings.ToLower(*req.Query) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", like, like)
	}

	if req.CategoryID != nil {
		sub := r.db.Model(&models.ProductCategory{}).
			Select("product_id").
			Where("categories_id = ?", *req.CategoryID)
		query = query.Where("id IN (?)", sub)
	}

	if req.ProductType != nil {
		query = query.Where("product_type = ?", *req.ProductType)
	}

	if len(req.Status) > 0 {
		query = query.Where("status IN ?", req.Status)
	}

	// Price range covers both simple prices and variable min/max bands
	if req.MinPrice != nil {
		query = query.Where("COALESCE(max_price, price) >= ?", *req.MinPrice)
	}

	if req.MaxPrice != nil {
		query = query.Where("COALESCE(min_price, price) <= ?", *req.MaxPrice)
	}

	if req.InStock != nil {
		query = query.Where("in_stock = ?", *req.InStock)
	}

	return query
}

// UpdateStockSnapshot applies an externally observed stock level: quantity
// plus the derived in_stock flag
func (r *ProductsRepository) UpdateStockSnapshot(tenantID string, productID uuid.UUID, quantity int) error {
	updates := map[string]interface{}{
		"quantity":   quantity,
		"in_stock":   quantity > 0,
		"updated_at": time.Now(),
	}

	err := r.db.Model(&models.Product{}).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		Updates(updates).Error

	if err == nil {
		r.invalidateProductCaches(context.Background(), tenantID, productID)
	}
	return err
}

// SKUExistsForTenant reports whether a SKU is already taken within a tenant
func (r *ProductsRepository) SKUExistsForTenant(tenantID, sku string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Product{}).
		Where("tenant_id = ? AND sku = ?", tenantID, sku).
		Count(&count).Error
	return count > 0, err
}

// Form save

// ApplyFormInput persists one reconciled form submission inside a single
// transaction: product scalars, category assignment rows, attribute value
// linkage, tag linkage, and the variation option upsert/delete sets. A nil
// productID creates the product. Category rows come from the form values
// rather than input.Categories because the rows carry the sous/sub id lists
// the flat id list drops.
func (r *ProductsRepository) ApplyFormInput(tenantID string, productID *uuid.UUID, input *reconcile.ProductInput, categoryRows []reconcile.CategoryAssignmentRow, actor string) (*models.Product, error) {
	var saved *models.Product

	err := r.db.Transaction(func(tx *gorm.DB) error {
		product, err := r.loadOrCreateForSave(tx, tenantID, productID, actor)
		if err != nil {
			return err
		}

		applyInputScalars(product, input, actor)
		if err := tx.Save(product).Error; err != nil {
			return err
		}

		if err := r.rebuildCategoryRows(tx, product.ID, categoryRows); err != nil {
			return err
		}
		if err := r.rebuildAttributeLinks(tx, product.ID, input.Variations); err != nil {
			return err
		}
		if err := r.rebuildTagLinks(tx, product.ID, input.Tags); err != nil {
			return err
		}
		if err := r.applyVariationDiff(tx, product.ID, &input.VariationOpts); err != nil {
			return err
		}

		saved = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.invalidateProductCaches(context.Background(), tenantID, saved.ID)
	return r.GetProductForForm(tenantID, saved.ID)
}

func (r *ProductsRepository) loadOrCreateForSave(tx *gorm.DB, tenantID string, productID *uuid.UUID, actor string) (*models.Product, error) {
	if productID == nil {
		now := time.Now()
		product := &models.Product{
			ID:        uuid.New(),
			TenantID:  tenantID,
			Status:    models.ProductStatusDraft,
			CreatedAt: now,
			UpdatedAt: now,
			CreatedBy: &actor,
		}
		return product, nil
	}

	var product models.Product
	if err := tx.Where("tenant_id = ? AND id = ?", tenantID, *productID).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func applyInputScalars(product *models.Product, input *reconcile.ProductInput, actor string) {
	product.Name = input.Name
	product.ProductType = models.ProductTypeTag(input.ProductType)
	product.InStock = input.InStock
	product.IsTaxable = input.IsTaxable
	product.IsDigital = input.IsDigital
	product.InFlashSale = input.InFlashSale
	product.Price = input.Price
	product.SalePrice = input.SalePrice
	product.MinPrice = input.MinPrice
	product.MaxPrice = input.MaxPrice
	product.Quantity = input.Quantity
	product.UpdatedAt = time.Now()
	product.UpdatedBy = &actor

	if input.SKU != "" {
		product.SKU = input.SKU
	}
	if input.Slug != "" {
		slug := input.Slug
		product.Slug = &slug
	} else if product.Slug == nil || *product.Slug == "" {
		baseSlug := generateSlug(product.Name)
		uniqueSlug := fmt.Sprintf("%s-%s", baseSlug, product.ID.String()[:8])
		product.Slug = &uniqueSlug
	}
	if input.Description != "" {
		description := input.Description
		product.Description = &description
	} else {
		product.Description = nil
	}
	if input.Unit != "" {
		unit := input.Unit
		product.Unit = &unit
	}
	if input.Status != "" {
		product.Status = models.ProductStatus(input.Status)
	}
	product.TypeID = flexID(input.TypeID)
	product.AuthorID = flexID(input.AuthorID)
	product.ManufacturerID = flexID(input.ManufacturerID)

	product.Image = attachmentJSON(input.Image)
	product.Gallery = attachmentArray(input.Gallery)
	if input.IsDigital && input.DigitalFile != nil {
		product.DigitalFile = digitalFileJSON(input.DigitalFile)
	} else {
		product.DigitalFile = nil
	}
}

// flexID reads a numeric id out of a flexible wire id, nil when absent or
// non-numeric
func flexID(raw reconcile.FlexString) *int64 {
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

func attachmentJSON(att *reconcile.Attachment) *models.JSON {
	if att == nil || att.IsZero() {
		return nil
	}
	obj := models.JSON{}
	if att.ID != "" {
		obj["id"] = string(att.ID)
	}
	if att.Thumbnail != "" {
		obj["thumbnail"] = att.Thumbnail
	}
	if att.Original != "" {
		obj["original"] = att.Original
	}
	if att.FileName != "" {
		obj["file_name"] = att.FileName
	}
	return &obj
}

func attachmentArray(atts []reconcile.Attachment) *models.JSONArray {
	if len(atts) == 0 {
		return nil
	}
	arr := make(models.JSONArray, 0, len(atts))
	for i := range atts {
		if obj := attachmentJSON(&atts[i]); obj != nil {
			arr = append(arr, map[string]interface{}(*obj))
		}
	}
	return &arr
}

func (r *ProductsRepository) rebuildCategoryRows(tx *gorm.DB, productID uuid.UUID, rows []reconcile.CategoryAssignmentRow) error {
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductCategory{}).Error; err != nil {
		return err
	}
	for _, row := range rows {
		if row.CategoriesID <= 0 {
			continue
		}
		pc := models.ProductCategory{
			ProductID:        productID,
			CategoriesID:     row.CategoriesID,
			SousCategoriesID: int64Array(row.SousCategoriesID),
			SubCategoriesID:  int64Array(row.SubCategoriesID),
		}
		if err := tx.Create(&pc).Error; err != nil {
			return err
		}
	}
	return nil
}

func int64Array(ids []int64) *models.JSONArray {
	arr := make(models.JSONArray, 0, len(ids))
	for _, id := range ids {
		arr = append(arr, id)
	}
	return &arr
}

func (r *ProductsRepository) rebuildAttributeLinks(tx *gorm.DB, productID uuid.UUID, links []reconcile.AttributeValueLink) error {
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductAttributeValue{}).Error; err != nil {
		return err
	}
	for _, link := range links {
		valueID, err := strconv.ParseInt(string(link.AttributeValueID), 10, 64)
		if err != nil || valueID <= 0 {
			continue
		}
		pav := models.ProductAttributeValue{
			ProductID:        productID,
			AttributeValueID: valueID,
		}
		if err := tx.Create(&pav).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *ProductsRepository) rebuildTagLinks(tx *gorm.DB, productID uuid.UUID, tags []reconcile.FlexString) error {
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductTag{}).Error; err != nil {
		return err
	}
	for _, raw := range tags {
		tagID, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil || tagID <= 0 {
			continue
		}
		pt := models.ProductTag{
			ProductID: productID,
			TagID:     tagID,
		}
		if err := tx.Create(&pt).Error; err != nil {
			return err
		}
	}
	return nil
}

// applyVariationDiff executes the diff the form pipeline computed: upsert
// entries with a parseable id update in place, entries without one insert,
// and every id in the delete set is soft-deleted.
func (r *ProductsRepository) applyVariationDiff(tx *gorm.DB, productID uuid.UUID, diff *reconcile.VariationOptionsDiff) error {
	for i := range diff.Upsert {
		entry := &diff.Upsert[i]
		option, err := r.variationRowForUpsert(tx, productID, entry.ID)
		if err != nil {
			return err
		}
		applyVariationScalars(option, entry)
		if err := tx.Save(option).Error; err != nil {
			return err
		}
	}

	for _, raw := range diff.Delete {
		optionID, err := uuid.Parse(string(raw))
		if err != nil {
			continue
		}
		if err := tx.Where("product_id = ? AND id = ?", productID, optionID).
			Delete(&models.VariationOption{}).Error; err != nil {
			return err
		}
	}

	return nil
}

func (r *ProductsRepository) variationRowForUpsert(tx *gorm.DB, productID uuid.UUID, rawID reconcile.FlexString) (*models.VariationOption, error) {
	if optionID, err := uuid.Parse(string(rawID)); err == nil {
		var option models.VariationOption
		err := tx.Where("product_id = ? AND id = ?", productID, optionID).First(&option).Error
		if err == nil {
			return &option, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}

	now := time.Now()
	return &models.VariationOption{
		ID:        uuid.New(),
		ProductID: productID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func applyVariationScalars(option *models.VariationOption, entry *reconcile.VariationOptionUpsert) {
	option.Title = entry.Title
	option.Price = entry.Price
	option.SalePrice = entry.SalePrice
	option.Quantity = entry.Quantity
	option.IsDisable = entry.IsDisable
	option.IsDigital = entry.IsDigital
	option.UpdatedAt = time.Now()

	if entry.SKU != "" {
		sku := entry.SKU
		option.SKU = &sku
	} else {
		option.SKU = nil
	}

	if raw, err := json.Marshal(entry.Options); err == nil {
		var arr models.JSONArray
		if err := json.Unmarshal(raw, &arr); err == nil {
			option.Options = &arr
		}
	}

	option.Image = attachmentJSON(entry.Image)
	if entry.IsDigital && entry.DigitalFile != nil {
		option.DigitalFile = digitalFileJSON(entry.DigitalFile)
	} else {
		option.DigitalFile = nil
	}
}

func digitalFileJSON(file *reconcile.DigitalFile) *models.JSON {
	obj := models.JSON{}
	if file.ID != "" {
		obj["id"] = string(file.ID)
	}
	if file.AttachmentID != "" {
		obj["attachment_id"] = string(file.AttachmentID)
	}
	if file.URL != "" {
		obj["url"] = file.URL
	}
	if file.FileName != "" {
		obj["file_name"] = file.FileName
	}
	if len(obj) == 0 {
		return nil
	}
	return &obj
}

// Bulk operations (import pipeline)

// BulkUpsertResult summarizes a bulk upsert
type BulkUpsertResult struct {
	Created int
	Updated int
	Errors  []string
}

// BulkUpsertProducts inserts or updates products by tenant-scoped SKU
func (r *ProductsRepository) BulkUpsertProducts(tenantID string, products []*models.Product) (*BulkUpsertResult, error) {
	result := &BulkUpsertResult{Errors: []string{}}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, product := range products {
			var existing models.Product
			err := tx.Where("tenant_id = ? AND sku = ?", tenantID, product.SKU).First(&existing).Error
			switch {
			case err == gorm.ErrRecordNotFound:
				product.TenantID = tenantID
				if product.ID == uuid.Nil {
					product.ID = uuid.New()
				}
				if product.Slug == nil || *product.Slug == "" {
					uniqueSlug := fmt.Sprintf("%s-%s", generateSlug(product.Name), product.ID.String()[:8])
					product.Slug = &uniqueSlug
				}
				if createErr := tx.Create(product).Error; createErr != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("sku %s: %v", product.SKU, createErr))
					continue
				}
				result.Created++
			case err != nil:
				return err
			default:
				product.ID = existing.ID
				product.TenantID = tenantID
				product.CreatedAt = existing.CreatedAt
				product.UpdatedAt = time.Now()
				if saveErr := tx.Save(product).Error; saveErr != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("sku %s: %v", product.SKU, saveErr))
					continue
				}
				result.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.invalidateTenantProductListCaches(context.Background(), tenantID)
	return result, nil
}

// Category Operations

// CreateCategory creates a category node. Level is derived from the parent.
func (r *ProductsRepository) CreateCategory(tenantID string, category *models.Category) error {
	category.TenantID = tenantID
	category.CreatedAt = time.Now()
	category.UpdatedAt = time.Now()

	if category.ParentID != nil {
		var parent models.Category
		if err := r.db.Where("tenant_id = ? AND id = ?", tenantID, *category.ParentID).First(&parent).Error; err != nil {
			return fmt.Errorf("parent category: %w", err)
		}
		if parent.Level >= 2 {
			return fmt.Errorf("category tree is limited to three levels")
		}
		category.Level = parent.Level + 1
	}

	if category.Slug == "" {
		category.Slug = generateSlug(category.Name)
	}

	err := r.db.Create(category).Error
	if err == nil {
		r.invalidateCatalogCaches(context.Background(), tenantID)
	}
	return err
}

// GetCategories retrieves category nodes with pagination, cached
func (r *ProductsRepository) GetCategories(tenantID string, page, limit int) ([]models.Category, int64, error) {
	ctx := context.Background()
	cacheKey := generateListCacheKey(tenantID, "catalog:categories", map[string]int{"page": page, "limit": limit})

	fetch := func() ([]models.Category, int64, error) {
		var categories []models.Category
		var total int64
		query := r.db.Model(&models.Category{}).Where("tenant_id = ?", tenantID)
		if err := query.Count(&total).Error; err != nil {
			return nil, 0, err
		}
		offset := (page - 1) * limit
		if err := query.Order("level ASC, name ASC").Offset(offset).Limit(limit).Find(&categories).Error; err != nil {
			return nil, 0, err
		}
		return categories, total, nil
	}

	if r.cache != nil {
		type categoriesResult struct {
			Categories []models.Category `json:"categories"`
			Total      int64             `json:"total"`
		}
		var result categoriesResult
		err := r.cache.GetOrSetJSON(ctx, cacheKey, &result, CatalogCacheTTL, func() (any, error) {
			categories, total, err := fetch()
			if err != nil {
				return nil, err
			}
			return &categoriesResult{Categories: categories, Total: total}, nil
		})
		if err != nil {
			return nil, 0, err
		}
		return result.Categories, result.Total, nil
	}

	return fetch()
}

// GetCategoryByID retrieves a single category node
func (r *ProductsRepository) GetCategoryByID(tenantID string, categoryID int64) (*models.Category, error) {
	var category models.Category
	err := r.db.Where("tenant_id = ? AND id = ?", tenantID, categoryID).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// GetCategoryChildren retrieves the direct children of a category node
func (r *ProductsRepository) GetCategoryChildren(tenantID string, parentID int64) ([]models.Category, error) {
	var children []models.Category
	err := r.db.Where("tenant_id = ? AND parent_id = ?", tenantID, parentID).
		Order("name ASC").Find(&children).Error
	return children, err
}

// UpdateCategory updates a category node
func (r *ProductsRepository) UpdateCategory(tenantID string, categoryID int64, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	err := r.db.Model(&models.Category{}).
		Where("tenant_id = ? AND id = ?", tenantID, categoryID).
		Updates(updates).Error
	if err == nil {
		r.invalidateCatalogCaches(context.Background(), tenantID)
	}
	return err
}

// DeleteCategory soft deletes a category node and its descendants
func (r *ProductsRepository) DeleteCategory(tenantID string, categoryID int64) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		ids := []int64{categoryID}
		frontier := []int64{categoryID}
		for len(frontier) > 0 {
			var children []int64
			if err := tx.Model(&models.Category{}).
				Where("tenant_id = ? AND parent_id IN ?", tenantID, frontier).
				Pluck("id", &children).Error; err != nil {
				return err
			}
			ids = append(ids, children...)
			frontier = children
		}
		return tx.Where("tenant_id = ? AND id IN ?", tenantID, ids).
			Delete(&models.Category{}).Error
	})
	if err == nil {
		r.invalidateCatalogCaches(context.Background(), tenantID)
	}
	return err
}

// GetOrCreateCategoryByName finds a category by name or creates it (import path)
func (r *ProductsRepository) GetOrCreateCategoryByName(tenantID string, name string) (*models.Category, bool, error) {
	var category models.Category
	err := r.db.Where("tenant_id = ? AND LOWER(name) = LOWER(?)", tenantID, name).First(&category).Error
	if err == nil {
		return &category, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}

	category = models.Category{
		Name:     name,
		Slug:     generateSlug(name),
		IsActive: true,
	}
	if err := r.CreateCategory(tenantID, &category); err != nil {
		return nil, false, err
	}
	return &category, true, nil
}

// Attribute Operations

// GetAttributes retrieves all attributes with their values, cached
func (r *ProductsRepository) GetAttributes(tenantID string) ([]models.Attribute, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("catalog:attributes:%s:all", tenantID)

	fetch := func() ([]models.Attribute, error) {
		var attributes []models.Attribute
		err := r.db.Where("tenant_id = ?", tenantID).
			Preload("Values").
			Order("name ASC").
			Find(&attributes).Error
		return attributes, err
	}

	if r.cache != nil {
		var attributes []models.Attribute
		err := r.cache.GetOrSetJSON(ctx, cacheKey, &attributes, CatalogCacheTTL, func() (any, error) {
			fetched, err := fetch()
			if err != nil {
				return nil, err
			}
			return fetched, nil
		})
		if err != nil {
			return nil, err
		}
		return attributes, nil
	}

	return fetch()
}

// CreateAttribute creates an attribute with its values
func (r *ProductsRepository) CreateAttribute(tenantID string, attribute *models.Attribute) error {
	attribute.TenantID = tenantID
	attribute.CreatedAt = time.Now()
	attribute.UpdatedAt = time.Now()
	if attribute.Slug == "" {
		attribute.Slug = generateSlug(attribute.Name)
	}

	err := r.db.Create(attribute).Error
	if err == nil {
		r.invalidateCatalogCaches(context.Background(), tenantID)
	}
	return err
}

// GetAttributeValuesByIDs loads attribute values (with their attributes) by id
func (r *ProductsRepository) GetAttributeValuesByIDs(ids []int64) ([]models.AttributeValue, error) {
	if len(ids) == 0 {
		return []models.AttributeValue{}, nil
	}
	var values []models.AttributeValue
	err := r.db.Where("id IN ?", ids).Preload("Attribute").Find(&values).Error
	return values, err
}

// Tag Operations

// GetTags retrieves all tags for a tenant, cached
func (r *ProductsRepository) GetTags(tenantID string) ([]models.Tag, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("catalog:tags:%s:all", tenantID)

	fetch := func() ([]models.Tag, error) {
		var tags []models.Tag
		err := r.db.Where("tenant_id = ?", tenantID).Order("name ASC").Find(&tags).Error
		return tags, err
	}

	if r.cache != nil {
		var tags []models.Tag
		err := r.cache.GetOrSetJSON(ctx, cacheKey, &tags, CatalogCacheTTL, func() (any, error) {
			fetched, err := fetch()
			if err != nil {
				return nil, err
			}
			return fetched, nil
		})
		if err != nil {
			return nil, err
		}
		return tags, nil
	}

	return fetch()
}

// CreateTag creates a tag
func (r *ProductsRepository) CreateTag(tenantID string, tag *models.Tag) error {
	tag.TenantID = tenantID
	tag.CreatedAt = time.Now()
	tag.UpdatedAt = time.Now()
	if tag.Slug == "" {
		tag.Slug = generateSlug(tag.Name)
	}

	err := r.db.Create(tag).Error
	if err == nil {
		r.invalidateCatalogCaches(context.Background(), tenantID)
	}
	return err
}

// Type Operations

// GetTypes retrieves all layout types for a tenant, cached
func (r *ProductsRepository) GetTypes(tenantID string) ([]models.Type, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("catalog:types:%s:all", tenantID)

	fetch := func() ([]models.Type, error) {
		var types []models.Type
		err := r.db.Where("tenant_id = ?", tenantID).Order("name ASC").Find(&types).Error
		return types, err
	}

	if r.cache != nil {
		var types []models.Type
		err := r.cache.GetOrSetJSON(ctx, cacheKey, &types, CatalogCacheTTL, func() (any, error) {
			fetched, err := fetch()
			if err != nil {
				return nil, err
			}
			return fetched, nil
		})
		if err != nil {
			return nil, err
		}
		return types, nil
	}

	return fetch()
}

// CreateType creates a layout type
func (r *ProductsRepository) CreateType(tenantID string, t *models.Type) error {
	t.TenantID = tenantID
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
	if t.Slug == "" {
		t.Slug = generateSlug(t.Name)
	}

	err := r.db.Create(t).Error
	if err == nil {
		r.invalidateCatalogCaches(context.Background(), tenantID)
	}
	return err
}

// generateSlug creates a URL-friendly slug from a name
func generateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	var result strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}
	return result.String()
}
