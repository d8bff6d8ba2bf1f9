package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"catalog-service/internal/clients"
	"catalog-service/internal/events"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
)

type ProductsHandler struct {
	repo            *repository.ProductsRepository
	inventoryClient *clients.InventoryClient
	eventsPublisher *events.Publisher
}

func NewProductsHandler(repo *repository.ProductsRepository, eventsPublisher *events.Publisher) *ProductsHandler {
	return &ProductsHandler{
		repo:            repo,
		inventoryClient: clients.NewInventoryClient(),
		eventsPublisher: eventsPublisher,
	}
}

// GetProducts retrieves products list with filtering and pagination
// @Summary List products
// @Description Get products for the tenant with filters and pagination
// @Tags Products
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} models.ProductListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /products [get]
func (h *ProductsHandler) GetProducts(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	req := &models.SearchProductsRequest{
		Page:  1,
		Limit: 20,
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		req.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil && limit > 0 && limit <= 100 {
		req.Limit = limit
	}
	if query := c.Query("search"); query != "" {
		req.Query = &query
	}
	if categoryID, err := strconv.ParseInt(c.Query("categoryId"), 10, 64); err == nil && categoryID > 0 {
		req.CategoryID = &categoryID
	}
	if productType := c.Query("productType"); productType != "" {
		pt := models.ProductTypeTag(productType)
		req.ProductType = &pt
	}
	if status := c.Query("status"); status != "" {
		req.Status = []models.ProductStatus{models.ProductStatus(status)}
	}
	if minPrice, err := strconv.ParseFloat(c.Query("minPrice"), 64); err == nil {
		req.MinPrice = &minPrice
	}
	if maxPrice, err := strconv.ParseFloat(c.Query("maxPrice"), 64); err == nil {
		req.MaxPrice = &maxPrice
	}
	if inStock := c.Query("inStock"); inStock != "" {
		value := inStock == "true"
		req.InStock = &value
	}
	if sortBy := c.Query("sortBy"); sortBy != "" {
		req.SortBy = &sortBy
	}
	if sortOrder := c.Query("sortOrder"); sortOrder != "" {
		req.SortOrder = &sortOrder
	}

	products, total, err := h.repo.GetProducts(tenantID.(string), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: "Failed to fetch products",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.ProductListResponse{
		Success:    true,
		Data:       products,
		Pagination: buildPagination(req.Page, req.Limit, total),
	})
}

// GetProduct retrieves a single product
// @Summary Get product
// @Description Get a product by ID with its relations
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.ProductResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [get]
func (h *ProductsHandler) GetProduct(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_ID",
				Message: "Invalid product ID format",
			},
		})
		return
	}

	includeRelations := c.DefaultQuery("includeRelations", "true") == "true"

	product, err := h.repo.GetProductByID(tenantID.(string), productID, includeRelations)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "NOT_FOUND",
				Message: "Product not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{
		Success: true,
		Data:    product,
	})
}

// DeleteProduct soft deletes a product
// @Summary Delete product
// @Description Soft delete a product and its variation options
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [delete]
func (h *ProductsHandler) DeleteProduct(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_ID",
				Message: "Invalid product ID format",
			},
		})
		return
	}

	product, err := h.repo.GetProductByID(tenantID.(string), productID, false)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "NOT_FOUND",
				Message: "Product not found",
			},
		})
		return
	}

	if err := h.repo.DeleteProduct(tenantID.(string), productID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "DELETE_FAILED",
				Message: "Failed to delete product",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	if h.eventsPublisher != nil {
		actor := gosharedmw.GetActorInfo(c)
		_ = h.eventsPublisher.PublishProductDeleted(c.Request.Context(), product, tenantID.(string),
			actor.ActorID, actor.ActorName, actor.ActorEmail, c.ClientIP(), c.Request.UserAgent())
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: stringPtr("Product deleted successfully"),
	})
}

// UpdateProductStatus updates the lifecycle status of a product
// @Summary Update product status
// @Description Change a product's lifecycle status
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param status body models.UpdateProductStatusRequest true "Status update"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /products/{id}/status [patch]
func (h *ProductsHandler) UpdateProductStatus(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_ID",
				Message: "Invalid product ID format",
			},
		})
		return
	}

	var req models.UpdateProductStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	product, err := h.repo.GetProductByID(tenantID.(string), productID, false)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "NOT_FOUND",
				Message: "Product not found",
			},
		})
		return
	}
	oldStatus := string(product.Status)

	if err := h.repo.UpdateProductStatus(tenantID.(string), productID, req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "UPDATE_FAILED",
				Message: "Failed to update product status",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}
	product.Status = req.Status

	if h.eventsPublisher != nil {
		actor := gosharedmw.GetActorInfo(c)
		_ = h.eventsPublisher.PublishProductStatusChanged(c.Request.Context(), product, oldStatus, string(req.Status),
			tenantID.(string), actor.ActorID, actor.ActorName, actor.ActorEmail, c.ClientIP(), c.Request.UserAgent())
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: stringPtr("Product status updated successfully"),
	})
}

// Categories

// @Summary Get categories
// @Description Get all category nodes for the tenant with pagination
// @Tags Categories
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(50)
// @Success 200 {object} models.CategoryListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /categories [get]
func (h *ProductsHandler) GetCategories(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	categories, total, err := h.repo.GetCategories(tenantID.(string), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: "Failed to fetch categories",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.CategoryListResponse{
		Success:    true,
		Data:       categories,
		Pagination: buildPagination(page, limit, total),
	})
}

// @Summary Create category
// @Description Create a new category node; level is derived from the parent
// @Tags Categories
// @Accept json
// @Produce json
// @Param category body models.CreateCategoryRequest true "Category data"
// @Success 201 {object} models.CategoryResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /categories [post]
func (h *ProductsHandler) CreateCategory(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	category := models.Category{
		Name:     req.Name,
		ParentID: req.ParentID,
		Icon:     req.Icon,
		IsActive: true,
	}
	if req.Slug != nil {
		category.Slug = *req.Slug
	}

	if err := h.repo.CreateCategory(tenantID.(string), &category); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "CREATE_FAILED",
				Message: "Failed to create category",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	c.JSON(http.StatusCreated, models.CategoryResponse{
		Success: true,
		Data:    &category,
		Message: stringPtr("Category created successfully"),
	})
}

// @Summary Get category
// @Description Get a category node by ID, with its direct children
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /categories/{id} [get]
func (h *ProductsHandler) GetCategory(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	categoryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || categoryID <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_ID",
				Message: "Invalid category ID format",
			},
		})
		return
	}

	category, err := h.repo.GetCategoryByID(tenantID.(string), categoryID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "NOT_FOUND",
				Message: "Category not found",
			},
		})
		return
	}

	children, err := h.repo.GetCategoryChildren(tenantID.(string), categoryID)
	if err != nil {
		children = []models.Category{}
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data: gin.H{
			"category": category,
			"children": children,
		},
	})
}

// @Summary Update category
// @Description Update an existing category node
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param category body models.UpdateCategoryRequest true "Category data"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /categories/{id} [put]
func (h *ProductsHandler) UpdateCategory(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	categoryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || categoryID <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_ID",
				Message: "Invalid category ID format",
			},
		})
		return
	}

	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Slug != nil {
		updates["slug"] = *req.Slug
	}
	if req.Icon != nil {
		updates["icon"] = *req.Icon
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := h.repo.UpdateCategory(tenantID.(string), categoryID, updates); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "UPDATE_FAILED",
				Message: "Failed to update category",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: stringPtr("Category updated successfully"),
	})
}

// @Summary Delete category
// @Description Soft delete a category node and all of its descendants
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /categories/{id} [delete]
func (h *ProductsHandler) DeleteCategory(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	categoryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || categoryID <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_ID",
				Message: "Invalid category ID format",
			},
		})
		return
	}

	if err := h.repo.DeleteCategory(tenantID.(string), categoryID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "DELETE_FAILED",
				Message: "Failed to delete category",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: stringPtr("Category deleted successfully"),
	})
}

// Attributes

// @Summary Get attributes
// @Description Get all attributes with their values
// @Tags Attributes
// @Accept json
// @Produce json
// @Success 200 {object} models.AttributeListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /attributes [get]
func (h *ProductsHandler) GetAttributes(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	attributes, err := h.repo.GetAttributes(tenantID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: "Failed to fetch attributes",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.AttributeListResponse{
		Success: true,
		Data:    attributes,
	})
}

// @Summary Create attribute
// @Description Create an attribute with its values
// @Tags Attributes
// @Accept json
// @Produce json
// @Param attribute body models.CreateAttributeRequest true "Attribute data"
// @Success 201 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /attributes [post]
func (h *ProductsHandler) CreateAttribute(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	var req models.CreateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	attribute := models.Attribute{
		Name: req.Name,
	}
	if req.Slug != nil {
		attribute.Slug = *req.Slug
	}
	for _, value := range req.Values {
		attribute.Values = append(attribute.Values, &models.AttributeValue{Value: value})
	}

	if err := h.repo.CreateAttribute(tenantID.(string), &attribute); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "CREATE_FAILED",
				Message: "Failed to create attribute",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	c.JSON(http.StatusCreated, models.SuccessResponse{
		Success: true,
		Data:    attribute,
		Message: stringPtr("Attribute created successfully"),
	})
}

// Tags

// @Summary Get tags
// @Description Get all tags for the tenant
// @Tags Tags
// @Accept json
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /tags [get]
func (h *ProductsHandler) GetTags(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	tags, err := h.repo.GetTags(tenantID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: "Failed to fetch tags",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    tags,
	})
}

// @Summary Create tag
// @Description Create a tag
// @Tags Tags
// @Accept json
// @Produce json
// @Param tag body models.CreateTagRequest true "Tag data"
// @Success 201 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /tags [post]
func (h *ProductsHandler) CreateTag(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	var req models.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	tag := models.Tag{Name: req.Name}
	if req.Slug != nil {
		tag.Slug = *req.Slug
	}

	if err := h.repo.CreateTag(tenantID.(string), &tag); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "CREATE_FAILED",
				Message: "Failed to create tag",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	c.JSON(http.StatusCreated, models.SuccessResponse{
		Success: true,
		Data:    tag,
		Message: stringPtr("Tag created successfully"),
	})
}

// Types

// @Summary Get types
// @Description Get all storefront layout types for the tenant
// @Tags Types
// @Accept json
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /types [get]
func (h *ProductsHandler) GetTypes(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	types, err := h.repo.GetTypes(tenantID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: "Failed to fetch types",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    types,
	})
}

// @Summary Create type
// @Description Create a storefront layout type
// @Tags Types
// @Accept json
// @Produce json
// @Param type body models.CreateTypeRequest true "Type data"
// @Success 201 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /types [post]
func (h *ProductsHandler) CreateType(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	var req models.CreateTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	t := models.Type{Name: req.Name}
	if req.Slug != nil {
		t.Slug = *req.Slug
	}

	if err := h.repo.CreateType(tenantID.(string), &t); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "CREATE_FAILED",
				Message: "Failed to create type",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	c.JSON(http.StatusCreated, models.SuccessResponse{
		Success: true,
		Data:    t,
		Message: stringPtr("Type created successfully"),
	})
}

func buildPagination(page, limit int, total int64) *models.PaginationInfo {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &models.PaginationInfo{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

func stringPtr(s string) *string {
	return &s
}
