// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"loyalty/config"
	domainerrors "loyalty/internal/domain/errors"
	"loyalty/internal/domain/repository"

	"gorm.io/gorm"
)

// gormTransactionManager implements the domain's TransactionManager interface using GORM.
// Every transaction runs SERIALIZABLE, bounded by the configured timeout.
type gormTransactionManager struct {
	db      *gorm.DB
	timeout time.Duration
}

// gormRepositoryFactory implements the domain's RepositoryFactory interface.
// It holds a specific GORM transaction object (*gorm.Tx) and uses it to create
// repository instances that are bound to that single transaction.
type gormRepositoryFactory struct {
	tx *gorm.DB // In GORM, a transaction object *gorm.Tx is also a *gorm.DB
}

func (f *gormRepositoryFactory) NewClientRepository() repository.ClientRepository {
	return NewClientRepository(f.tx)
}

func (f *gormRepositoryFactory) NewRuleRepository() repository.RuleRepository {
	return NewRuleRepository(f.tx)
}

func (f *gormRepositoryFactory) NewClientVoucherRepository() repository.ClientVoucherRepository {
	return NewClientVoucherRepository(f.tx)
}

func (f *gormRepositoryFactory) NewVoucherUsageRepository() repository.VoucherUsageRepository {
	return NewVoucherUsageRepository(f.tx)
}

func (f *gormRepositoryFactory) NewCoinHistoryRepository() repository.CoinHistoryRepository {
	return NewCoinHistoryRepository(f.tx)
}

func (f *gormRepositoryFactory) NewOrderRepository() repository.OrderRepository {
	return NewOrderRepository(f.tx)
}

func (f *gormRepositoryFactory) NewStaffRepository() repository.StaffRepository {
	return NewStaffRepository(f.tx)
}

func (f *gormRepositoryFactory) NewRatingRepository() repository.RatingRepository {
	return NewRatingRepository(f.tx)
}

// NewTransactionManager is the constructor for gormTransactionManager.
// This function will be used as an Fx provider.
func NewTransactionManager(db *gorm.DB, cfg *config.Config) repository.TransactionManager {
	timeout := config.DefaultLoyaltyConfig().TxTimeout
	if cfg != nil && cfg.Loyalty != nil && cfg.Loyalty.TxTimeout > 0 {
		timeout = cfg.Loyalty.TxTimeout
	}

	return &gormTransactionManager{db: db, timeout: timeout}
}

// Execute runs the given function within a single database transaction.
func (tm *gormTransactionManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	ctx, cancel := context.WithTimeout(ctx, tm.timeout)
	defer cancel()

	// Begin a new transaction
	tx := tm.db.WithContext(ctx).Begin(&sql.TxOptions{Isolation: sql.LevelSerializable})
	if tx.Error != nil {
		if isTransactionConflict(tx.Error) {
			return domainerrors.ErrTransactionConflict.WithDetails(tx.Error.Error())
		}

		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	// This defer block ensures that if a panic occurs within the callback function,
	// the transaction is always rolled back. This is a critical safety measure.
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			// Re-panic to allow Fx or other middleware to handle the panic.
			panic(r)
		}
	}()

	// Row locks must not wait longer than the transaction itself may live.
	if err := tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", tm.timeout.Milliseconds())).Error; err != nil {
		tx.Rollback()

		return fmt.Errorf("failed to set lock timeout: %w", err)
	}

	// Create a repository factory that is bound to this specific transaction.
	factory := &gormRepositoryFactory{tx: tx}

	// Execute the application logic (the use case's core work)
	err := fn(factory)
	if err != nil {
		// If the business logic returns an error, roll back the transaction.
		if rbErr := tx.Rollback().Error; rbErr != nil && !isTransactionConflict(rbErr) {
			// Log the rollback error, but return the original, more meaningful business error.
			return fmt.Errorf("transaction rollback failed: %v (original error: %w)", rbErr, err)
		}
		if isTransactionConflict(err) {
			return domainerrors.ErrTransactionConflict.WithDetails(err.Error())
		}

		return err // Return the original business error.
	}

	// If the business logic completes without error, commit the transaction.
	if err := tx.Commit().Error; err != nil {
		if isTransactionConflict(err) {
			return domainerrors.ErrTransactionConflict.WithDetails(err.Error())
		}

		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
