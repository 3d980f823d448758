package impl

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"loyalty/config"
	deliverycontext "loyalty/internal/delivery/context"
	"loyalty/internal/domain/entity"
	domainerrors "loyalty/internal/domain/errors"
	"loyalty/internal/domain/repository"
	"loyalty/internal/domain/service"
	"loyalty/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type ratingService struct {
	tx         *txRunner
	orderRepo  repository.OrderRepository
	ratingRepo repository.RatingRepository
	events     *eventEmitter
	logger     *slog.Logger
	now        func() time.Time
}

// RatingServiceParams holds dependencies for RatingService, injected by Fx.
type RatingServiceParams struct {
	fx.In

	TxManager  repository.TransactionManager
	OrderRepo  repository.OrderRepository
	RatingRepo repository.RatingRepository
	Publisher  service.EventPublisher `optional:"true"`
	Config     *config.Config
	Logger     *slog.Logger
	Clock      func() time.Time `optional:"true"`
}

// NewRatingService creates the rating aggregator.
func NewRatingService(params RatingServiceParams) usecase.RatingUsecase {
	now := clockOrDefault(params.Clock)

	return &ratingService{
		tx:         newTxRunner(params.TxManager, params.Config),
		orderRepo:  params.OrderRepo,
		ratingRepo: params.RatingRepo,
		events:     &eventEmitter{publisher: params.Publisher, now: now},
		logger:     params.Logger,
		now:        now,
	}
}

func (srv *ratingService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// SubmitRating creates or replaces the client's rating for the staff member holding a role on
// an order. The staff row stays locked while the aggregate is recomputed, so concurrent
// submissions never lose an update.
func (srv *ratingService) SubmitRating(ctx context.Context, input *usecase.SubmitRatingInput) (*entity.RatingResult, error) {
	role, ok := entity.ParseStaffRole(input.UserType)
	if !ok {
		return nil, domainerrors.ErrInvalidUserType
	}
	if !entity.IsValidRatingScore(input.Rating) {
		return nil, domainerrors.ErrInvalidRating
	}
	comment := strings.TrimSpace(input.Comment)

	var result *entity.RatingResult
	err := srv.tx.run(ctx, srv.log(ctx), "submit_rating", func(repos repository.RepositoryFactory) error {
		now := srv.now()

		if _, err := repos.NewOrderRepository().FindOrderForClient(ctx, input.OrderID, input.ClientID); err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return domainerrors.ErrOrderNotFound
			}

			return errors.Wrap(err, "failed to find order")
		}

		staff, err := staffResolvers[role](ctx, repos, input.OrderID, role)
		if err != nil {
			return err
		}

		ratingRepo := repos.NewRatingRepository()
		existing, err := ratingRepo.FindRating(ctx, input.OrderID, staff.ID, input.ClientID)
		if err != nil && !errors.Is(err, repository.ErrRatingNotFound) {
			return errors.Wrap(err, "failed to find rating")
		}

		var rating *entity.Rating
		if existing == nil {
			rating = &entity.Rating{
				OrderID:   input.OrderID,
				StaffID:   staff.ID,
				ClientID:  input.ClientID,
				UserType:  role,
				Score:     input.Rating,
				Comment:   comment,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := ratingRepo.CreateRating(ctx, rating); err != nil {
				if errors.Is(err, repository.ErrDuplicateRating) {
					// Lost a race with a first submission; the retry takes the update path.
					return domainerrors.ErrTransactionConflict.WithDetails("rating already exists")
				}

				return errors.Wrap(err, "failed to create rating")
			}
			staff.ApplyRating(nil, input.Rating)
		} else {
			previous := existing.Score
			rating = existing
			rating.Score = input.Rating
			rating.Comment = comment
			rating.UpdatedAt = now
			if err := ratingRepo.UpdateRating(ctx, rating); err != nil {
				return errors.Wrap(err, "failed to update rating")
			}
			staff.ApplyRating(&previous, input.Rating)
		}

		if err := repos.NewStaffRepository().UpdateStaffRating(ctx, staff.ID, staff.RatingCount, staff.RatingTotal, staff.Rating); err != nil {
			return errors.Wrap(err, "failed to update staff rating")
		}

		result = &entity.RatingResult{
			Rating:      rating,
			Updated:     existing != nil,
			StaffID:     staff.ID,
			StaffName:   staff.FullName,
			RatingCount: staff.RatingCount,
			RatingTotal: staff.RatingTotal,
			Average:     staff.Rating,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Rating submitted",
		slog.String("orderID", input.OrderID.String()),
		slog.String("staffID", result.StaffID.String()),
		slog.String("userType", role.String()),
		slog.Int("rating", input.Rating),
		slog.Bool("updated", result.Updated),
	)
	srv.events.emit(ctx, srv.log(ctx), service.EventRatingSubmitted, input.ClientID, map[string]string{
		"order_id":  input.OrderID.String(),
		"staff_id":  result.StaffID.String(),
		"user_type": role.String(),
		"rating":    strconv.Itoa(input.Rating),
	})

	return result, nil
}

// GetOrdersNeedingRating lists completed orders where the client has not yet rated every
// order-scoped role. Ratings for shop-wide roles do not count.
func (srv *ratingService) GetOrdersNeedingRating(ctx context.Context, clientID uuid.UUID) ([]*entity.PendingRatingOrder, error) {
	orders, err := srv.orderRepo.FindOrdersByClientAndStatus(ctx, clientID, entity.OrderStatusCompleted)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find completed orders")
	}
	if len(orders) == 0 {
		return []*entity.PendingRatingOrder{}, nil
	}

	orderIDs := make([]uuid.UUID, 0, len(orders))
	for _, order := range orders {
		orderIDs = append(orderIDs, order.ID)
	}

	scoped := entity.OrderScopedRoles()
	rated, err := srv.ratingRepo.FindRatedRoles(ctx, clientID, orderIDs, scoped)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find rated roles")
	}

	pending := make([]*entity.PendingRatingOrder, 0, len(orders))
	for _, order := range orders {
		ratedRoles := rated[order.ID]
		if len(ratedRoles) >= len(scoped) {
			continue
		}

		needed := make([]entity.StaffRole, 0, len(scoped)-len(ratedRoles))
		for _, role := range scoped {
			if !slices.Contains(ratedRoles, role) {
				needed = append(needed, role)
			}
		}
		pending = append(pending, &entity.PendingRatingOrder{
			Order:       order,
			RatedRoles:  len(ratedRoles),
			RolesNeeded: needed,
		})
	}

	return pending, nil
}

// GetOrderRatings lists the client's ratings on one of their orders.
func (srv *ratingService) GetOrderRatings(ctx context.Context, orderID, clientID uuid.UUID) ([]*entity.OrderRating, error) {
	if _, err := srv.orderRepo.FindOrderForClient(ctx, orderID, clientID); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, domainerrors.ErrOrderNotFound
		}

		return nil, errors.Wrap(err, "failed to find order")
	}

	ratings, err := srv.ratingRepo.FindRatingsByOrder(ctx, orderID, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find order ratings")
	}

	return ratings, nil
}
