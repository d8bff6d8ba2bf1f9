package subscribers

import (
	"context"
	"encoding/json"
	"os"
	"time"

	gosharedevents "github.com/Tesseract-Nexus/go-shared/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/repository"
)

// StockLevelEvent is the payload inventory-service publishes when a stock
// level changes outside the catalog (orders, manual adjustments, imports)
type StockLevelEvent struct {
	EventType string `json:"event_type"`
	TenantID  string `json:"tenant_id"`
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
}

// StockSubscriber keeps the catalog's quantity and in_stock flags aligned
// with inventory-service when stock moves without a form save
type StockSubscriber struct {
	subscriber *gosharedevents.Subscriber
	repo       *repository.ProductsRepository
	logger     *logrus.Entry
	cancel     context.CancelFunc
}

// NewStockSubscriber creates a new stock event subscriber
func NewStockSubscriber(
	repo *repository.ProductsRepository,
	logger *logrus.Logger,
) (*StockSubscriber, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://nats.nats.svc.cluster.local:4222"
	}

	config := gosharedevents.DefaultSubscriberConfig(natsURL, "catalog-service-stock")
	config.Name = "catalog-service-stock-subscriber"
	config.DeliverPolicy = "new"
	config.MaxDeliver = 3
	config.AckWait = 30 * time.Second

	subscriber, err := gosharedevents.NewSubscriber(config, logger)
	if err != nil {
		return nil, err
	}

	return &StockSubscriber{
		subscriber: subscriber,
		repo:       repo,
		logger:     logger.WithField("component", "stock-subscriber"),
	}, nil
}

// Start starts listening for stock level events
func (s *StockSubscriber) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	subjects := []string{"inventory.stock.updated"}

	s.logger.Info("Starting stock level event subscription...")

	// Note: The stream is created by the inventory-service publisher
	err := s.subscriber.Subscribe(ctx, "INVENTORY", subjects, s.handleStockMessage)
	if err != nil {
		return err
	}

	s.logger.WithField("subjects", subjects).Info("Stock subscriber started successfully")
	return nil
}

// handleStockMessage processes stock level messages from NATS
func (s *StockSubscriber) handleStockMessage(ctx context.Context, msg *gosharedevents.Message) error {
	var event StockLevelEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		s.logger.WithError(err).Error("Failed to unmarshal stock level event")
		return nil // Don't retry for invalid data
	}

	s.logger.WithFields(logrus.Fields{
		"event_type": event.EventType,
		"tenant_id":  event.TenantID,
		"product_id": event.ProductID,
		"quantity":   event.Quantity,
	}).Info("Received stock level event")

	productID, err := uuid.Parse(event.ProductID)
	if err != nil {
		s.logger.WithError(err).Error("Invalid product ID in stock level event")
		return nil // Don't retry for invalid IDs
	}

	if err := s.repo.UpdateStockSnapshot(event.TenantID, productID, event.Quantity); err != nil {
		s.logger.WithError(err).Error("Failed to apply stock level update")
		return err
	}

	return nil
}

// Stop stops the stock subscriber
func (s *StockSubscriber) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.subscriber != nil {
		s.subscriber.Close()
	}
	s.logger.Info("Stock subscriber stopped")
}
