package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"catalog-service/internal/models"
	"catalog-service/internal/reconcile"
)

// MediaHandler proxies attachment uploads to the document service and
// translates its responses into the attachment shape the product form
// consumes (image, gallery entries, digital files).
type MediaHandler struct {
	documentServiceURL string
	serviceName        string
	httpClient         *http.Client
}

type MediaUploadRequest struct {
	ProductID string `form:"product_id" binding:"required"`
	IsPublic  bool   `form:"isPublic"`
	Kind      string `form:"kind"` // image, gallery, digital_file
	Bucket    string `form:"bucket"`
}

func NewMediaHandler(documentServiceURL, serviceName string) *MediaHandler {
	if serviceName == "" {
		serviceName = "catalog-service"
	}
	return &MediaHandler{
		documentServiceURL: strings.TrimSuffix(documentServiceURL, "/"),
		serviceName:        serviceName,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// UploadAttachment uploads a media file and returns it as a form attachment
// @Summary Upload product media
// @Description Upload an image or digital file and get back the attachment value the product form stores
// @Tags product-media
// @Accept multipart/form-data
// @Produce json
// @Param product_id formData string true "Product ID"
// @Param file formData file true "Media file"
// @Param kind formData string false "Attachment kind (image, gallery, digital_file)"
// @Param isPublic formData bool false "Is file public"
// @Param bucket formData string false "Storage bucket name"
// @Success 201 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products/media/upload [post]
func (h *MediaHandler) UploadAttachment(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	if tenantID == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "MISSING_TENANT",
				Message: "Tenant ID is required",
			},
		})
		return
	}

	var req MediaUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_INPUT",
				Message: err.Error(),
			},
		})
		return
	}

	if _, err := uuid.Parse(req.ProductID); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_PRODUCT_ID",
				Message: "Invalid product ID format",
			},
		})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "NO_FILE",
				Message: "No file uploaded",
			},
		})
		return
	}
	defer file.Close()

	kind := req.Kind
	if kind == "" {
		kind = "gallery"
	}

	// Digital files may be any type; visual attachments must be images
	if kind != "digital_file" {
		contentType := header.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "INVALID_FILE_TYPE",
					Message: "Only image files are allowed for image and gallery attachments",
				},
			})
			return
		}
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if req.Bucket == "" {
		req.Bucket = "product-media"
	}
	writer.WriteField("bucket", req.Bucket)
	writer.WriteField("isPublic", fmt.Sprintf("%t", req.IsPublic))
	writer.WriteField("tags", fmt.Sprintf("product_id:%s,tenant_id:%s,kind:%s", req.ProductID, tenantID, kind))

	part, err := writer.CreateFormFile("file", header.Filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FORM_CREATE_FAILED",
				Message: "Failed to create form",
			},
		})
		return
	}
	if _, err := io.Copy(part, file); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FILE_COPY_FAILED",
				Message: "Failed to copy file",
			},
		})
		return
	}
	writer.Close()

	respBody, status, err := h.forward(c, "POST", "/api/v1/documents/upload", &body, writer.FormDataContentType(), tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "DOCUMENT_SERVICE_ERROR",
				Message: "Failed to communicate with document service",
			},
		})
		return
	}
	if status < 200 || status >= 300 {
		c.Data(status, "application/json", respBody)
		return
	}

	attachment, err := attachmentFromDocument(respBody, header.Filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "RESPONSE_READ_FAILED",
				Message: "Unexpected document service response",
			},
		})
		return
	}

	if kind == "digital_file" {
		c.JSON(http.StatusCreated, models.SuccessResponse{
			Success: true,
			Data: reconcile.DigitalFile{
				AttachmentID: attachment.ID,
				URL:          attachment.Original,
				FileName:     header.Filename,
			},
		})
		return
	}

	c.JSON(http.StatusCreated, models.SuccessResponse{
		Success: true,
		Data:    attachment,
	})
}

// ListAttachments lists media stored for a product
// @Summary List product media
// @Description List attachments stored for a product, optionally filtered by kind
// @Tags product-media
// @Produce json
// @Param id path string true "Product ID"
// @Param kind query string false "Attachment kind filter"
// @Param bucket query string false "Storage bucket name"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products/{id}/media [get]
func (h *MediaHandler) ListAttachments(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	productID := c.Param("id")

	if _, err := uuid.Parse(productID); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_PRODUCT_ID",
				Message: "Invalid product ID format",
			},
		})
		return
	}

	bucket := c.DefaultQuery("bucket", "product-media")
	tags := fmt.Sprintf("product_id:%s,tenant_id:%s", productID, tenantID)
	if kind := c.Query("kind"); kind != "" {
		tags += fmt.Sprintf(",kind:%s", kind)
	}

	path := fmt.Sprintf("/api/v1/documents?bucket=%s&tags=%s", bucket, tags)
	respBody, status, err := h.forward(c, "GET", path, nil, "", tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "DOCUMENT_SERVICE_ERROR",
				Message: "Failed to communicate with document service",
			},
		})
		return
	}

	c.Data(status, "application/json", respBody)
}

// DeleteAttachment removes a stored media file
// @Summary Delete product media
// @Description Delete an attachment stored for a product
// @Tags product-media
// @Produce json
// @Param id path string true "Product ID"
// @Param bucket path string true "Storage bucket name"
// @Param path path string true "File path"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products/{id}/media/{bucket}/*path [delete]
func (h *MediaHandler) DeleteAttachment(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	productID := c.Param("id")
	bucket := c.Param("bucket")
	filePath := c.Param("path")

	if _, err := uuid.Parse(productID); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_PRODUCT_ID",
				Message: "Invalid product ID format",
			},
		})
		return
	}

	respBody, status, err := h.forward(c, "DELETE", "/api/v1/documents/"+bucket+"/"+filePath, nil, "", tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "DOCUMENT_SERVICE_ERROR",
				Message: "Failed to communicate with document service",
			},
		})
		return
	}

	c.Data(status, "application/json", respBody)
}

// forward sends a request to the document service and returns the raw response
func (h *MediaHandler) forward(c *gin.Context, method, path string, body io.Reader, contentType, tenantID string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(c.Request.Context(), method, h.documentServiceURL+path, body)
	if err != nil {
		return nil, 0, err
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Tenant-ID", tenantID)
	req.Header.Set("X-Service-Name", h.serviceName)
	if auth := c.GetHeader("Authorization"); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return respBody, resp.StatusCode, nil
}

// attachmentFromDocument maps a document service upload response onto the
// attachment value the form stores against image, gallery and digital_file
func attachmentFromDocument(respBody []byte, fileName string) (*reconcile.Attachment, error) {
	var doc struct {
		Data struct {
			ID           string `json:"id"`
			URL          string `json:"url"`
			ThumbnailURL string `json:"thumbnailUrl"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &doc); err != nil {
		return nil, err
	}

	thumbnail := doc.Data.ThumbnailURL
	if thumbnail == "" {
		thumbnail = doc.Data.URL
	}

	return &reconcile.Attachment{
		ID:        reconcile.FlexString(doc.Data.ID),
		Original:  doc.Data.URL,
		Thumbnail: thumbnail,
		FileName:  fileName,
	}, nil
}
