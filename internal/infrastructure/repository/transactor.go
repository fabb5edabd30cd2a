package repository

import (
	"context"
	"errors"

	domainRepo "github.com/sangkips/hospitality-pos/internal/domain/repository"
	"gorm.io/gorm"
)

type ctxKey string

// TxKey is the context key carrying the active *gorm.DB transaction
const TxKey ctxKey = "gorm_tx"

type transactor struct {
	db *gorm.DB
}

// NewTransactor creates a gorm-backed unit of work
func NewTransactor(db *gorm.DB) domainRepo.Transactor {
	return &transactor{db: db}
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(TxKey).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, TxKey, tx))
	})
}

// conn returns the transaction bound to ctx, or db when there is none
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(TxKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainRepo.ErrDuplicate
	}
	return err
}
