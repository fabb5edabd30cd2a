package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/entity"
	"github.com/sangkips/hospitality-pos/internal/domain/enum"
	domainRepo "github.com/sangkips/hospitality-pos/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new cashier session repository
func NewSessionRepository(db *gorm.DB) domainRepo.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *entity.POSSession) error {
	return translate(conn(ctx, r.db).Create(session).Error)
}

func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.POSSession, error) {
	var session entity.POSSession
	err := conn(ctx, r.db).First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &session, err
}

func (r *sessionRepository) FindActive(ctx context.Context, employeeID, salesPointID uuid.UUID, businessDay time.Time) (*entity.POSSession, error) {
	var session entity.POSSession
	err := conn(ctx, r.db).
		Where("employee_id = ? AND sales_point_id = ? AND business_day = ? AND status = ?",
			employeeID, salesPointID, businessDay.Format("2006-01-02"), enum.SessionStatusActive).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &session, err
}

// Close only matches an active row so a session is closed exactly once
func (r *sessionRepository) Close(ctx context.Context, id uuid.UUID, closedAt time.Time, closingBalance decimal.Decimal) (bool, error) {
	result := conn(ctx, r.db).Model(&entity.POSSession{}).
		Where("id = ? AND status = ?", id, enum.SessionStatusActive).
		Updates(map[string]interface{}{
			"status":          enum.SessionStatusClosed,
			"closed_at":       closedAt,
			"closing_balance": closingBalance,
			"updated_at":      closedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *sessionRepository) CreateReport(ctx context.Context, report *entity.SessionReport) error {
	return conn(ctx, r.db).Create(report).Error
}
