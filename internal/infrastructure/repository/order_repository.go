package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/entity"
	"github.com/sangkips/hospitality-pos/internal/domain/enum"
	domainRepo "github.com/sangkips/hospitality-pos/internal/domain/repository"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) domainRepo.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	return translate(conn(ctx, r.db).Create(order).Error)
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	err := conn(ctx, r.db).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func (r *orderRepository) GetWithLines(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	err := conn(ctx, r.db).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func (r *orderRepository) Update(ctx context.Context, order *entity.Order) error {
	return conn(ctx, r.db).Model(&entity.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"session_id":      order.SessionID,
			"table_id":        order.TableID,
			"client_id":       order.ClientID,
			"subtotal":        order.Subtotal,
			"tax_amount":      order.TaxAmount,
			"total_amount":    order.TotalAmount,
			"status":          order.Status,
			"payment_status":  order.PaymentStatus,
			"is_on_hold":      order.IsOnHold,
			"held_at":         order.HeldAt,
			"print_count":     order.PrintCount,
			"last_printed_at": order.LastPrintedAt,
			"updated_at":      time.Now(),
		}).Error
}

func (r *orderRepository) ListPaidBySession(ctx context.Context, sessionID uuid.UUID) ([]entity.Order, error) {
	var orders []entity.Order
	err := conn(ctx, r.db).
		Where("session_id = ? AND payment_status = ?", sessionID, enum.PaymentStatusPaid).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

type orderLineRepository struct {
	db *gorm.DB
}

// NewOrderLineRepository creates a new order line repository
func NewOrderLineRepository(db *gorm.DB) domainRepo.OrderLineRepository {
	return &orderLineRepository{db: db}
}

func (r *orderLineRepository) CreateBatch(ctx context.Context, lines []entity.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return conn(ctx, r.db).Create(&lines).Error
}

func (r *orderLineRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.OrderLine, error) {
	var line entity.OrderLine
	err := conn(ctx, r.db).First(&line, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &line, err
}

func (r *orderLineRepository) MarkVoided(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := conn(ctx, r.db).Model(&entity.OrderLine{}).
		Where("id = ? AND is_voided = ?", id, false).
		Updates(map[string]interface{}{
			"is_voided":  true,
			"voided_at":  at,
			"updated_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *orderLineRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.OrderLine, error) {
	var lines []entity.OrderLine
	err := conn(ctx, r.db).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&lines).Error
	return lines, err
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) domainRepo.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) CreateBatch(ctx context.Context, payments []entity.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	return conn(ctx, r.db).Create(&payments).Error
}

func (r *paymentRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := conn(ctx, r.db).
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("payments.session_id = ? AND orders.payment_status = ?", sessionID, enum.PaymentStatusPaid).
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := conn(ctx, r.db).Where("order_id = ?", orderID).Find(&payments).Error
	return payments, err
}

type voidLogRepository struct {
	db *gorm.DB
}

// NewVoidLogRepository creates a new void log repository
func NewVoidLogRepository(db *gorm.DB) domainRepo.VoidLogRepository {
	return &voidLogRepository{db: db}
}

func (r *voidLogRepository) Create(ctx context.Context, entry *entity.VoidLogEntry) error {
	return conn(ctx, r.db).Create(entry).Error
}

func (r *voidLogRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.VoidLogEntry, error) {
	var entries []entity.VoidLogEntry
	err := conn(ctx, r.db).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
