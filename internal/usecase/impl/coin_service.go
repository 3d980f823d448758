// Package impl contains the implementation of the loyalty use cases.
package impl

import (
	"context"
	"log/slog"

	"loyalty/config"
	deliverycontext "loyalty/internal/delivery/context"
	"loyalty/internal/domain/entity"
	domainerrors "loyalty/internal/domain/errors"
	"loyalty/internal/domain/repository"
	"loyalty/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type coinService struct {
	clientRepo       repository.ClientRepository
	ruleRepo         repository.RuleRepository
	historyRepo      repository.CoinHistoryRepository
	defaultCoinValue int64
	historyPageLimit int
	logger           *slog.Logger
}

// CoinServiceParams holds dependencies for CoinService, injected by Fx.
type CoinServiceParams struct {
	fx.In

	ClientRepo  repository.ClientRepository
	RuleRepo    repository.RuleRepository
	HistoryRepo repository.CoinHistoryRepository
	Config      *config.Config
	Logger      *slog.Logger
}

// NewCoinService creates the read side of the coin ledger.
func NewCoinService(params CoinServiceParams) usecase.CoinUsecase {
	loyaltyCfg := config.DefaultLoyaltyConfig()
	if params.Config != nil && params.Config.Loyalty != nil {
		loyaltyCfg = params.Config.Loyalty
	}

	return &coinService{
		clientRepo:       params.ClientRepo,
		ruleRepo:         params.RuleRepo,
		historyRepo:      params.HistoryRepo,
		defaultCoinValue: loyaltyCfg.DefaultCoinValue,
		historyPageLimit: loyaltyCfg.HistoryPageLimit,
		logger:           params.Logger,
	}
}

func (srv *coinService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetBalance returns the client's balance with its rupiah value.
func (srv *coinService) GetBalance(ctx context.Context, clientID uuid.UUID) (*entity.CoinBalance, error) {
	client, err := srv.findClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	rule, err := loadCoinRule(ctx, srv.ruleRepo, srv.defaultCoinValue)
	if err != nil {
		return nil, err
	}

	return &entity.CoinBalance{
		ClientID:      client.ID,
		ClientName:    client.FullName,
		Level:         client.Level,
		Balance:       client.CoinBalance,
		CoinValue:     rule.CoinValue,
		CurrencyValue: rule.CurrencyValue(client.CoinBalance),
	}, nil
}

// PreviewDiscount quotes a coin spend without mutating anything.
func (srv *coinService) PreviewDiscount(ctx context.Context, clientID uuid.UUID, coinsToUse, orderTotal int64) (*entity.CoinDiscountQuote, error) {
	client, err := srv.findClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	rule, err := loadCoinRule(ctx, srv.ruleRepo, srv.defaultCoinValue)
	if err != nil {
		return nil, err
	}

	quote, err := quoteCoinDiscount(rule, client.CoinBalance, coinsToUse, orderTotal)
	if err != nil {
		srv.log(ctx).Debug("Coin preview rejected",
			slog.String("clientID", clientID.String()),
			slog.Int64("coins", coinsToUse),
			slog.Int64("orderTotal", orderTotal),
			slog.Any("error", err),
		)

		return nil, err
	}

	return quote, nil
}

// GetHistory lists coin movements. The page size is clamped to the configured limit.
func (srv *coinService) GetHistory(ctx context.Context, clientID uuid.UUID, limit, offset int) (*usecase.CoinHistoryPage, error) {
	if limit <= 0 || limit > srv.historyPageLimit {
		limit = srv.historyPageLimit
	}
	offset = max(offset, 0)

	if _, err := srv.findClient(ctx, clientID); err != nil {
		return nil, err
	}

	items, total, err := srv.historyRepo.FindCoinHistoryByClient(ctx, clientID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find coin history")
	}

	return &usecase.CoinHistoryPage{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func (srv *coinService) findClient(ctx context.Context, clientID uuid.UUID) (*entity.Client, error) {
	client, err := srv.clientRepo.FindClientByID(ctx, clientID)
	if errors.Is(err, repository.ErrClientNotFound) {
		return nil, domainerrors.ErrClientNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find client")
	}

	return client, nil
}
