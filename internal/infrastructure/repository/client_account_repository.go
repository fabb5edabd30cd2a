package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/hospitality-pos/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type clientAccountRepository struct {
	db *gorm.DB
}

// NewClientAccountRepository creates a new client account repository
func NewClientAccountRepository(db *gorm.DB) domainRepo.ClientAccountRepository {
	return &clientAccountRepository{db: db}
}

func (r *clientAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ClientAccount, error) {
	var account entity.ClientAccount
	err := conn(ctx, r.db).First(&account, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &account, err
}

// Debit lowers the balance only if it stays within the credit limit
func (r *clientAccountRepository) Debit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	result := conn(ctx, r.db).Model(&entity.ClientAccount{}).
		Where("id = ? AND balance - ? >= -credit_limit", id, amount).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance - ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
