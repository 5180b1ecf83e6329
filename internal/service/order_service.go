package service

import (
	"context"
	"math"
	"time"

	"ordering-service/internal/apperr"
	"ordering-service/internal/broker"
	"ordering-service/internal/models"
	"ordering-service/internal/util"
	"ordering-service/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderStore is the slice of the store the order service depends on
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
}

// OrderService handles order validation and persistence
type OrderService struct {
	store  OrderStore
	events *broker.EventPublisher
	logger *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store OrderStore, events *broker.EventPublisher) *OrderService {
	return &OrderService{
		store:  store,
		events: events,
		logger: util.GetLogger(),
	}
}

// SubmitOrderResponse is the confirmation returned after a successful write
type SubmitOrderResponse struct {
	OrderID     string    `json:"orderId"`
	TotalAmount float64   `json:"totalAmount"`
	OrderDate   time.Time `json:"orderDate"`
}

// SubmitOrder validates a submission authoritatively, recomputes the total
// from the line items, and persists the order atomically. Any client-supplied
// total is discarded. An empty idempotencyKey disables deduplication.
func (s *OrderService) SubmitOrder(ctx context.Context, sub *models.OrderSubmission, idempotencyKey string) (*SubmitOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.SubmitOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.OrderSubmitLatency.Observe(time.Since(start).Seconds())
	}()

	validation.NormalizeSubmission(sub)
	if violations := validation.ValidateOrder(sub); len(violations) > 0 {
		util.OrdersFailedTotal.WithLabelValues("validation").Inc()
		return nil, &apperr.ValidationError{Violations: violations}
	}

	if idempotencyKey != "" {
		existing, err := s.store.GetOrderByIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			s.logger.Info("Duplicate order submission detected",
				zap.String("idempotency_key", idempotencyKey),
				zap.String("order_id", existing.ID))
			util.OrdersDuplicateTotal.Inc()
			return &SubmitOrderResponse{
				OrderID:     existing.ID,
				TotalAmount: existing.TotalAmount,
				OrderDate:   existing.OrderDate,
			}, nil
		}
	}

	order := &models.Order{
		ID:             uuid.New().String(),
		UserDetails:    sub.UserDetails,
		Items:          itemsFromSubmission(sub.SelectedProducts),
		TotalAmount:    recomputeTotal(sub.SelectedProducts),
		OrderDate:      time.Now().UTC(),
		Status:         models.OrderStatusPending,
		IdempotencyKey: idempotencyKey,
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		util.OrdersFailedTotal.WithLabelValues("storage").Inc()
		return nil, err
	}

	util.OrdersSubmittedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.Float64("total_amount", order.TotalAmount))

	s.publishSubmitted(ctx, order)

	return &SubmitOrderResponse{
		OrderID:     order.ID,
		TotalAmount: order.TotalAmount,
		OrderDate:   order.OrderDate,
	}, nil
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.store.GetOrderByID(ctx, id)
}

// ListOrders retrieves all orders, newest first
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.store.ListOrders(ctx)
}

func (s *OrderService) publishSubmitted(ctx context.Context, order *models.Order) {
	if s.events == nil {
		return
	}

	items := make([]models.OrderItemData, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, models.OrderItemData{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
		})
	}

	event := &models.OrderSubmittedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderSubmitted,
			Timestamp: time.Now(),
		},
		OrderID:     order.ID,
		Email:       order.UserDetails.Email,
		TotalAmount: order.TotalAmount,
		Items:       items,
	}

	if err := s.events.PublishOrderSubmitted(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderSubmitted event", zap.Error(err))
	}
}

func itemsFromSubmission(items []models.SubmittedItem) []models.OrderItem {
	out := make([]models.OrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, models.OrderItem{
			ProductID:   it.ID,
			Name:        it.Name,
			Category:    it.Category,
			Price:       it.Price,
			Description: it.Description,
			Quantity:    it.Quantity,
			IsCustom:    it.IsCustom,
		})
	}
	return out
}

// recomputeTotal derives the authoritative order total from the line items.
// An unset or garbage price counts as zero.
func recomputeTotal(items []models.SubmittedItem) float64 {
	var total float64
	for _, it := range items {
		price := it.Price
		if math.IsNaN(price) || price < 0 {
			price = 0
		}
		total += price * float64(it.Quantity)
	}
	return total
}
