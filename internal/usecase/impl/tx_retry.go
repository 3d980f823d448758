package impl

import (
	"context"
	"log/slog"
	"time"

	"loyalty/config"
	domainerrors "loyalty/internal/domain/errors"
	"loyalty/internal/domain/repository"

	"github.com/sethvargo/go-retry"
)

// txRunner executes a unit of work in one transaction and replays it when the database
// reports a serialization failure, deadlock or lock timeout.
type txRunner struct {
	txManager  repository.TransactionManager
	maxRetries uint64
	backoff    time.Duration
}

func newTxRunner(txManager repository.TransactionManager, cfg *config.Config) *txRunner {
	loyaltyCfg := config.DefaultLoyaltyConfig()
	if cfg != nil && cfg.Loyalty != nil {
		loyaltyCfg = cfg.Loyalty
	}

	return &txRunner{
		txManager:  txManager,
		maxRetries: uint64(max(loyaltyCfg.TxMaxRetries, 0)),
		backoff:    loyaltyCfg.RetryBackoff,
	}
}

// run calls fn in a fresh transaction per attempt. fn must not leak state between attempts.
func (r *txRunner) run(ctx context.Context, logger *slog.Logger, op string, fn func(repos repository.RepositoryFactory) error) error {
	backoff := retry.WithMaxRetries(r.maxRetries, retry.NewConstant(max(r.backoff, time.Millisecond)))
	attempt := 0

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := r.txManager.Execute(ctx, fn)
		if err != nil && domainerrors.IsRetryable(err) {
			logger.Warn("Transaction conflict, retrying",
				slog.String("operation", op),
				slog.Int("attempt", attempt),
				slog.Any("error", err),
			)

			return retry.RetryableError(err)
		}

		return err
	})
}
