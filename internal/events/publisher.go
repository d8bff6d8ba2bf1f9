package events

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/models"
)

// Publisher wraps the go-shared events publisher for catalog events
type Publisher struct {
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewPublisher creates a new catalog events publisher
func NewPublisher(logger *logrus.Logger) (*Publisher, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		// Default to GKE internal NATS service URL
		natsURL = "nats://nats.nats.svc.cluster.local:4222"
	}

	config := events.DefaultPublisherConfig(natsURL)
	config.Name = "catalog-service"

	publisher, err := events.NewPublisher(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create events publisher: %w", err)
	}

	// Ensure the products stream exists
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := publisher.EnsureStream(ctx, events.StreamProducts, []string{"product.>"}); err != nil {
		logger.WithError(err).Warn("Failed to ensure products stream (may already exist)")
	}

	return &Publisher{
		publisher: publisher,
		logger:    logger.WithField("component", "catalog-events"),
	}, nil
}

// Close closes the NATS connection
func (p *Publisher) Close() {
	if p.publisher != nil {
		p.publisher.Close()
	}
}

// PublishProductCreated publishes a product.created event
func (p *Publisher) PublishProductCreated(ctx context.Context, product *models.Product, tenantID, actorID, actorName, actorEmail, clientIP, userAgent string) error {
	event := p.buildProductEvent(events.ProductCreated, product, tenantID)
	event.ActorID = actorID
	event.ActorName = actorName
	event.ActorEmail = actorEmail
	event.ClientIP = clientIP
	event.UserAgent = userAgent
	event.ChangeType = "created"
	return p.publish(ctx, event)
}

// PublishProductUpdated publishes a product.updated event
func (p *Publisher) PublishProductUpdated(ctx context.Context, product *models.Product, oldProduct *models.Product, changedFields []string, tenantID, actorID, actorName, actorEmail, clientIP, userAgent string) error {
	event := p.buildProductEvent(events.ProductUpdated, product, tenantID)
	event.ActorID = actorID
	event.ActorName = actorName
	event.ActorEmail = actorEmail
	event.ClientIP = clientIP
	event.UserAgent = userAgent
	event.ChangeType = "updated"
	event.ChangedFields = changedFields

	if oldProduct != nil {
		event.OldValue = productSnapshot(oldProduct)
	}
	event.NewValue = productSnapshot(product)

	return p.publish(ctx, event)
}

// PublishProductDeleted publishes a product.deleted event
func (p *Publisher) PublishProductDeleted(ctx context.Context, product *models.Product, tenantID, actorID, actorName, actorEmail, clientIP, userAgent string) error {
	event := p.buildProductEvent(events.ProductDeleted, product, tenantID)
	event.ActorID = actorID
	event.ActorName = actorName
	event.ActorEmail = actorEmail
	event.ClientIP = clientIP
	event.UserAgent = userAgent
	event.ChangeType = "deleted"
	return p.publish(ctx, event)
}

// PublishProductStatusChanged publishes a product status change event
func (p *Publisher) PublishProductStatusChanged(ctx context.Context, product *models.Product, oldStatus, newStatus string, tenantID, actorID, actorName, actorEmail, clientIP, userAgent string) error {
	event := p.buildProductEvent("product.status_changed", product, tenantID)
	event.ActorID = actorID
	event.ActorName = actorName
	event.ActorEmail = actorEmail
	event.ClientIP = clientIP
	event.UserAgent = userAgent
	event.ChangeType = "status_changed"
	event.OldValue = map[string]interface{}{"status": oldStatus}
	event.NewValue = map[string]interface{}{"status": newStatus}
	event.ChangedFields = []string{"status"}
	return p.publish(ctx, event)
}

// PublishVariationsReconciled publishes a summary of a variation save:
// how many options were written and how many were removed
func (p *Publisher) PublishVariationsReconciled(ctx context.Context, product *models.Product, upserted, deleted int, tenantID, actorID, actorName, actorEmail, clientIP, userAgent string) error {
	event := p.buildProductEvent("product.variations_reconciled", product, tenantID)
	event.ActorID = actorID
	event.ActorName = actorName
	event.ActorEmail = actorEmail
	event.ClientIP = clientIP
	event.UserAgent = userAgent
	event.ChangeType = "variations_reconciled"
	event.NewValue = map[string]interface{}{
		"upserted": upserted,
		"deleted":  deleted,
	}
	event.ChangedFields = []string{"variation_options"}
	return p.publish(ctx, event)
}

// productSnapshot captures the fields auditors care about
func productSnapshot(product *models.Product) map[string]interface{} {
	description := ""
	if product.Description != nil {
		description = *product.Description
	}
	return map[string]interface{}{
		"name":         product.Name,
		"description":  description,
		"product_type": product.ProductType,
		"price":        product.Price,
		"min_price":    product.MinPrice,
		"max_price":    product.MaxPrice,
		"quantity":     product.Quantity,
		"status":       product.Status,
	}
}

// buildProductEvent creates a ProductEvent from a product model
func (p *Publisher) buildProductEvent(eventType string, product *models.Product, tenantID string) *events.ProductEvent {
	event := events.NewProductEvent(eventType, tenantID)
	event.SourceID = uuid.New().String()
	event.ProductID = product.ID.String()
	event.ProductName = product.Name
	event.SKU = product.SKU
	event.Status = string(product.Status)

	if product.Price != nil {
		event.Price = *product.Price
	}

	return event
}

// publish is a helper that logs and publishes events asynchronously
func (p *Publisher) publish(ctx context.Context, event *events.ProductEvent) error {
	// Publish asynchronously to not block the main flow
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := p.publisher.PublishProduct(pubCtx, event); err != nil {
			p.logger.WithFields(logrus.Fields{
				"eventType": event.EventType,
				"productID": event.ProductID,
				"tenantID":  event.TenantID,
			}).WithError(err).Error("Failed to publish product event")
		} else {
			p.logger.WithFields(logrus.Fields{
				"eventType":   event.EventType,
				"productID":   event.ProductID,
				"productName": event.ProductName,
				"tenantID":    event.TenantID,
			}).Info("Product event published successfully")
		}
	}()

	return nil
}
