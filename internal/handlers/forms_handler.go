package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/clients"
	"catalog-service/internal/events"
	"catalog-service/internal/models"
	"catalog-service/internal/reconcile"
	"catalog-service/internal/repository"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
)

// FormsHandler serves the product editing surface: it translates between
// persisted products and editor form values, and applies saved form values
// back as an incremental write.
type FormsHandler struct {
	repo            *repository.ProductsRepository
	inventoryClient *clients.InventoryClient
	eventsPublisher *events.Publisher
	logger          *logrus.Entry
}

func NewFormsHandler(repo *repository.ProductsRepository, eventsPublisher *events.Publisher, logger *logrus.Logger) *FormsHandler {
	return &FormsHandler{
		repo:            repo,
		inventoryClient: clients.NewInventoryClient(),
		eventsPublisher: eventsPublisher,
		logger:          logger.WithField("component", "forms-handler"),
	}
}

// GetProductForm returns a product rendered as editor form values
// @Summary Get product form values
// @Description Load a product and map it into the shape the editing form binds to
// @Tags Forms
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param newTranslation query bool false "Reset relational fields for a new translation copy"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id}/form [get]
func (h *FormsHandler) GetProductForm(c *gin.Context) {
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

	product, err := h.repo.GetProductForForm(tenantID.(string), productID)
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

	record, err := product.FormRecord()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "MAPPING_FAILED",
				Message: "Failed to map product for editing",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	newTranslation := c.DefaultQuery("newTranslation", "false") == "true"
	values := reconcile.ProductToFormValues(record, newTranslation)

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    values,
	})
}

// GetProductFormDefaults returns the form values for a product that does not
// exist yet
// @Summary Get create-mode form defaults
// @Description Default form values used when creating a new product
// @Tags Forms
// @Accept json
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /products/form/defaults [get]
func (h *FormsHandler) GetProductFormDefaults(c *gin.Context) {
	values := reconcile.ProductToFormValues(nil, false)

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    values,
	})
}

// CreateProductFromForm creates a product from submitted form values
// @Summary Create product from form
// @Description Reconcile submitted form values into a backend write and create the product
// @Tags Forms
// @Accept json
// @Produce json
// @Param values body reconcile.ProductFormValues true "Form values"
// @Success 201 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /products/form [post]
func (h *FormsHandler) CreateProductFromForm(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	var values reconcile.ProductFormValues
	if err := c.ShouldBindJSON(&values); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	input, err := reconcile.FormValuesToProductInput(&values, nil, false)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "RECONCILE_FAILED",
				Message: err.Error(),
			},
		})
		return
	}

	actor := gosharedmw.GetActorInfo(c)
	product, err := h.repo.ApplyFormInput(tenantID.(string), nil, input, values.Categories, actor.ActorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "CREATE_FAILED",
				Message: "Failed to create product",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	if h.eventsPublisher != nil {
		_ = h.eventsPublisher.PublishProductCreated(c.Request.Context(), product, tenantID.(string),
			actor.ActorID, actor.ActorName, actor.ActorEmail, c.ClientIP(), c.Request.UserAgent())
	}
	h.pushStock(tenantID.(string), product)

	c.JSON(http.StatusCreated, models.ProductResponse{
		Success: true,
		Data:    product,
		Message: stringPtr("Product created successfully"),
	})
}

// SaveProductForm applies submitted form values to an existing product
// @Summary Save product form
// @Description Reconcile submitted form values against the stored product and apply the incremental write
// @Tags Forms
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param values body reconcile.ProductFormValues true "Form values"
// @Param newTranslation query bool false "Treat the save as a new translation copy"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id}/form [put]
func (h *FormsHandler) SaveProductForm(c *gin.Context) {
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

	var values reconcile.ProductFormValues
	if err := c.ShouldBindJSON(&values); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	// The delete set is computed against the stored product, not against
	// whatever snapshot the client loaded. Stale ids in the edit are dropped
	// rather than resurrected.
	product, err := h.repo.GetProductForForm(tenantID.(string), productID)
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

	original, err := product.FormRecord()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "MAPPING_FAILED",
				Message: "Failed to map stored product",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	newTranslation := c.DefaultQuery("newTranslation", "false") == "true"
	input, err := reconcile.FormValuesToProductInput(&values, original, newTranslation)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "RECONCILE_FAILED",
				Message: err.Error(),
			},
		})
		return
	}

	actor := gosharedmw.GetActorInfo(c)
	saved, err := h.repo.ApplyFormInput(tenantID.(string), &productID, input, values.Categories, actor.ActorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "SAVE_FAILED",
				Message: "Failed to save product",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	if h.eventsPublisher != nil {
		_ = h.eventsPublisher.PublishProductUpdated(c.Request.Context(), saved, product, changedFormFields(input),
			tenantID.(string), actor.ActorID, actor.ActorName, actor.ActorEmail, c.ClientIP(), c.Request.UserAgent())
		_ = h.eventsPublisher.PublishVariationsReconciled(c.Request.Context(), saved,
			len(input.VariationOpts.Upsert), len(input.VariationOpts.Delete),
			tenantID.(string), actor.ActorID, actor.ActorName, actor.ActorEmail, c.ClientIP(), c.Request.UserAgent())
	}
	h.pushStock(tenantID.(string), saved)

	record, err := saved.FormRecord()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "MAPPING_FAILED",
				Message: "Failed to map saved product",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    reconcile.ProductToFormValues(record, false),
		Message: stringPtr("Product saved successfully"),
	})
}

// SyncProduct ingests a product document in any historical wire shape,
// normalizes it through the form pipeline, and persists the result
// @Summary Sync legacy product document
// @Description Accept a product document from an older backend, normalize its category and variation shapes, and upsert it
// @Tags Forms
// @Accept json
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /products/sync [post]
func (h *FormsHandler) SyncProduct(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Request body is required",
			},
		})
		return
	}

	var record reconcile.ProductRecord
	if err := json.Unmarshal(body, &record); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Invalid product document",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	values := reconcile.ProductToFormValues(&record, false)

	// An existing product is matched by its uuid; anything else creates.
	var existingID *uuid.UUID
	var original *reconcile.ProductRecord
	var previous *models.Product
	if parsed, parseErr := uuid.Parse(string(record.ID)); parseErr == nil {
		if product, loadErr := h.repo.GetProductForForm(tenantID.(string), parsed); loadErr == nil {
			if rec, recErr := product.FormRecord(); recErr == nil {
				existingID = &parsed
				original = rec
				previous = product
			}
		}
	}

	input, err := reconcile.FormValuesToProductInput(values, original, false)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "RECONCILE_FAILED",
				Message: err.Error(),
			},
		})
		return
	}

	actor := gosharedmw.GetActorInfo(c)
	saved, err := h.repo.ApplyFormInput(tenantID.(string), existingID, input, values.Categories, actor.ActorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "SYNC_FAILED",
				Message: "Failed to sync product",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	if h.eventsPublisher != nil {
		if existingID != nil {
			_ = h.eventsPublisher.PublishProductUpdated(c.Request.Context(), saved, previous, changedFormFields(input),
				tenantID.(string), actor.ActorID, actor.ActorName, actor.ActorEmail, c.ClientIP(), c.Request.UserAgent())
		} else {
			_ = h.eventsPublisher.PublishProductCreated(c.Request.Context(), saved, tenantID.(string),
				actor.ActorID, actor.ActorName, actor.ActorEmail, c.ClientIP(), c.Request.UserAgent())
		}
	}

	h.logger.WithFields(logrus.Fields{
		"productId": saved.ID.String(),
		"tenantId":  tenantID.(string),
		"created":   existingID == nil,
	}).Info("Product document synced")

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data: gin.H{
			"product": saved,
			"input":   input,
		},
		Message: stringPtr("Product synced successfully"),
	})
}

// pushStock mirrors the saved quantity into the inventory service.
// Best-effort: a failed push is logged, not surfaced.
func (h *FormsHandler) pushStock(tenantID string, product *models.Product) {
	if h.inventoryClient == nil || product.Quantity == nil {
		return
	}
	go func() {
		if err := h.inventoryClient.PushStockLevel(tenantID, product.ID.String(), product.SKU, *product.Quantity); err != nil {
			h.logger.WithFields(logrus.Fields{
				"productId": product.ID.String(),
				"tenantId":  tenantID,
			}).WithError(err).Warn("Failed to push stock level to inventory service")
		}
	}()
}

// changedFormFields lists the write surface of a form save for the audit event
func changedFormFields(input *reconcile.ProductInput) []string {
	fields := []string{"name", "description", "product_type", "categories", "tags", "price"}
	if len(input.Variations) > 0 || len(input.VariationOpts.Upsert) > 0 || len(input.VariationOpts.Delete) > 0 {
		fields = append(fields, "variations", "variation_options")
	}
	return fields
}
