package impl

import (
	"context"
	"sync"
	"testing"

	"loyalty/internal/domain/entity"
	domainerrors "loyalty/internal/domain/errors"
	"loyalty/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ratingFixture struct {
	*loyaltyFixtures
	client   entity.Client
	order    entity.Order
	admin    entity.Staff
	desainer entity.Staff
	operator entity.Staff
	owner    entity.Staff
}

func createRatingFixture(t *testing.T) *ratingFixture {
	t.Helper()

	fx := &ratingFixture{loyaltyFixtures: createTestLoyalty(t)}
	fx.client = fx.seedClient(0)
	fx.admin = fx.store.SeedStaff(entity.Staff{FullName: "Sari", Role: entity.StaffRoleAdmin})
	fx.desainer = fx.store.SeedStaff(entity.Staff{FullName: "Dewi", Role: entity.StaffRoleDesainer})
	fx.operator = fx.store.SeedStaff(entity.Staff{FullName: "Agus", Role: entity.StaffRoleOperator})
	fx.owner = fx.store.SeedStaff(entity.Staff{FullName: "Pak Hendra", Role: entity.StaffRoleOwner})
	fx.order = fx.seedOrder(fx.client.ID, entity.OrderStatusCompleted, &fx.admin.ID, &fx.desainer.ID, &fx.operator.ID)

	return fx
}

func (fx *ratingFixture) seedOrder(clientID uuid.UUID, status string, admin, desainer, operator *uuid.UUID) entity.Order {
	return fx.store.SeedOrder(entity.Order{
		ClientID:  clientID,
		OrderCode: "ORD-" + uuid.NewString()[:8],
		Total:     75000,
		Status:    status,
		Items: []*entity.OrderItem{
			{ProductName: "Banner 2x1", AdminID: admin, DesainerID: desainer, OperatorID: operator},
		},
	})
}

func (fx *ratingFixture) submit(role string, score int) (*entity.RatingResult, error) {
	return fx.rating.SubmitRating(context.Background(), &usecase.SubmitRatingInput{
		OrderID:  fx.order.ID,
		ClientID: fx.client.ID,
		UserType: role,
		Rating:   score,
	})
}

func TestRatingService_SubmitRating_RunningAverage(t *testing.T) {
	fx := createRatingFixture(t)
	other := fx.seedClient(0)
	otherOrder := fx.seedOrder(other.ID, entity.OrderStatusCompleted, &fx.admin.ID, nil, nil)

	result, err := fx.submit("admin", 4)
	require.NoError(t, err)
	assert.False(t, result.Updated)
	assert.Equal(t, fx.admin.ID, result.StaffID)
	assert.Equal(t, "Sari", result.StaffName)
	assert.Equal(t, int64(1), result.RatingCount)
	assert.InDelta(t, 4.0, result.Average, 1e-9)

	result, err = fx.rating.SubmitRating(context.Background(), &usecase.SubmitRatingInput{
		OrderID:  otherOrder.ID,
		ClientID: other.ID,
		UserType: "ADMIN",
		Rating:   5,
		Comment:  "  cepat  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "cepat", result.Rating.Comment)
	assert.Equal(t, int64(2), result.RatingCount)
	assert.Equal(t, int64(9), result.RatingTotal)
	assert.InDelta(t, 4.5, result.Average, 1e-9)

	staff := fx.store.Staff(fx.admin.ID)
	assert.Equal(t, int64(2), staff.RatingCount)
	assert.InDelta(t, 4.5, staff.Rating, 1e-9)
}

func TestRatingService_SubmitRating_ResubmissionReplacesScore(t *testing.T) {
	fx := createRatingFixture(t)

	_, err := fx.submit("desainer", 2)
	require.NoError(t, err)

	result, err := fx.submit("desainer", 5)
	require.NoError(t, err)
	assert.True(t, result.Updated)
	assert.Equal(t, int64(1), result.RatingCount)
	assert.Equal(t, int64(5), result.RatingTotal)
	assert.InDelta(t, 5.0, result.Average, 1e-9)

	ratings := fx.store.Ratings()
	require.Len(t, ratings, 1)
	assert.Equal(t, 5, ratings[0].Score)
}

func TestRatingService_SubmitRating_Rejections(t *testing.T) {
	fx := createRatingFixture(t)
	unassigned := fx.seedOrder(fx.client.ID, entity.OrderStatusCompleted, &fx.admin.ID, nil, nil)
	stranger := fx.seedClient(0)

	tests := []struct {
		name    string
		input   *usecase.SubmitRatingInput
		wantErr error
	}{
		{
			name:    "unknown role",
			input:   &usecase.SubmitRatingInput{OrderID: fx.order.ID, ClientID: fx.client.ID, UserType: "satpam", Rating: 5},
			wantErr: domainerrors.ErrInvalidUserType,
		},
		{
			name:    "score too low",
			input:   &usecase.SubmitRatingInput{OrderID: fx.order.ID, ClientID: fx.client.ID, UserType: "admin", Rating: 0},
			wantErr: domainerrors.ErrInvalidRating,
		},
		{
			name:    "score too high",
			input:   &usecase.SubmitRatingInput{OrderID: fx.order.ID, ClientID: fx.client.ID, UserType: "admin", Rating: 6},
			wantErr: domainerrors.ErrInvalidRating,
		},
		{
			name:    "order of another client",
			input:   &usecase.SubmitRatingInput{OrderID: fx.order.ID, ClientID: stranger.ID, UserType: "admin", Rating: 5},
			wantErr: domainerrors.ErrOrderNotFound,
		},
		{
			name:    "role not assigned on order",
			input:   &usecase.SubmitRatingInput{OrderID: unassigned.ID, ClientID: fx.client.ID, UserType: "operator", Rating: 5},
			wantErr: domainerrors.ErrNotAssigned,
		},
		{
			name:    "no staff holds shop-wide role",
			input:   &usecase.SubmitRatingInput{OrderID: fx.order.ID, ClientID: fx.client.ID, UserType: "kasir", Rating: 5},
			wantErr: domainerrors.ErrStaffNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.rating.SubmitRating(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Empty(t, fx.store.Ratings())
}

func TestRatingService_SubmitRating_AssigneeWithOtherRole(t *testing.T) {
	fx := createRatingFixture(t)
	misassigned := fx.seedOrder(fx.client.ID, entity.OrderStatusCompleted, &fx.operator.ID, nil, nil)

	_, err := fx.rating.SubmitRating(context.Background(), &usecase.SubmitRatingInput{
		OrderID:  misassigned.ID,
		ClientID: fx.client.ID,
		UserType: "admin",
		Rating:   5,
	})
	require.ErrorIs(t, err, domainerrors.ErrNotAssigned)
	requirePayload(t, err, map[string]any{"user_type": entity.StaffRoleAdmin})

	staff := fx.store.Staff(fx.operator.ID)
	assert.Equal(t, int64(0), staff.RatingCount)
	assert.Equal(t, int64(0), staff.RatingTotal)
	assert.Empty(t, fx.store.Ratings())
}

func TestRatingService_SubmitRating_ResubmissionKeepsRole(t *testing.T) {
	fx := createRatingFixture(t)
	fx.store.SeedRating(entity.Rating{
		OrderID:  fx.order.ID,
		StaffID:  fx.admin.ID,
		ClientID: fx.client.ID,
		UserType: entity.StaffRoleDesainer,
		Score:    3,
	})

	result, err := fx.submit("admin", 5)
	require.NoError(t, err)
	assert.True(t, result.Updated)
	assert.Equal(t, entity.StaffRoleDesainer, result.Rating.UserType)

	ratings := fx.store.Ratings()
	require.Len(t, ratings, 1)
	assert.Equal(t, entity.StaffRoleDesainer, ratings[0].UserType)
	assert.Equal(t, 5, ratings[0].Score)
}

func TestRatingService_SubmitRating_ShopWideRole(t *testing.T) {
	fx := createRatingFixture(t)

	result, err := fx.submit("owner", 5)
	require.NoError(t, err)
	assert.Equal(t, fx.owner.ID, result.StaffID)
	assert.Equal(t, entity.StaffRoleOwner, result.Rating.UserType)
}

func TestRatingService_SubmitRating_Concurrent(t *testing.T) {
	fx := createRatingFixture(t)

	const clients = 6
	var wg sync.WaitGroup
	for i := range clients {
		client := fx.seedClient(0)
		order := fx.seedOrder(client.ID, entity.OrderStatusCompleted, nil, nil, &fx.operator.ID)
		score := i%5 + 1
		wg.Go(func() {
			_, err := fx.rating.SubmitRating(context.Background(), &usecase.SubmitRatingInput{
				OrderID:  order.ID,
				ClientID: client.ID,
				UserType: "operator",
				Rating:   score,
			})
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	// Scores 1..5 then 1 again.
	staff := fx.store.Staff(fx.operator.ID)
	assert.Equal(t, int64(clients), staff.RatingCount)
	assert.Equal(t, int64(16), staff.RatingTotal)
	assert.InDelta(t, 16.0/6.0, staff.Rating, 1e-9)
}

func TestRatingService_SubmitRating_ConcurrentResubmissions(t *testing.T) {
	fx := createRatingFixture(t)

	var wg sync.WaitGroup
	for _, score := range []int{1, 2, 3, 4, 5} {
		wg.Go(func() {
			_, err := fx.submit("admin", score)
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	// One client on one order counts once, whatever order the writes landed in.
	staff := fx.store.Staff(fx.admin.ID)
	require.Len(t, fx.store.Ratings(), 1)
	assert.Equal(t, int64(1), staff.RatingCount)
	assert.Equal(t, int64(fx.store.Ratings()[0].Score), staff.RatingTotal)
}

func TestRatingService_GetOrdersNeedingRating(t *testing.T) {
	fx := createRatingFixture(t)
	fullyRated := fx.seedOrder(fx.client.ID, entity.OrderStatusCompleted, &fx.admin.ID, &fx.desainer.ID, &fx.operator.ID)
	fx.seedOrder(fx.client.ID, "Diproses", &fx.admin.ID, nil, nil)

	for _, role := range []string{"admin", "desainer", "operator"} {
		_, err := fx.rating.SubmitRating(context.Background(), &usecase.SubmitRatingInput{
			OrderID:  fullyRated.ID,
			ClientID: fx.client.ID,
			UserType: role,
			Rating:   5,
		})
		require.NoError(t, err)
	}

	// Shop-wide roles never complete an order's ratings.
	for _, role := range []string{"admin", "owner"} {
		_, err := fx.submit(role, 4)
		require.NoError(t, err)
	}

	pending, err := fx.rating.GetOrdersNeedingRating(context.Background(), fx.client.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, fx.order.ID, pending[0].Order.ID)
	assert.Equal(t, 1, pending[0].RatedRoles)
	assert.Equal(t, []entity.StaffRole{entity.StaffRoleDesainer, entity.StaffRoleOperator}, pending[0].RolesNeeded)
}

func TestRatingService_GetOrdersNeedingRating_NoOrders(t *testing.T) {
	fx := createTestLoyalty(t)
	client := fx.seedClient(0)

	pending, err := fx.rating.GetOrdersNeedingRating(context.Background(), client.ID)
	require.NoError(t, err)
	assert.NotNil(t, pending)
	assert.Empty(t, pending)
}

func TestRatingService_GetOrderRatings(t *testing.T) {
	fx := createRatingFixture(t)
	for _, role := range []string{"admin", "operator"} {
		_, err := fx.submit(role, 3)
		require.NoError(t, err)
	}

	ratings, err := fx.rating.GetOrderRatings(context.Background(), fx.order.ID, fx.client.ID)
	require.NoError(t, err)
	require.Len(t, ratings, 2)

	names := []string{ratings[0].StaffName, ratings[1].StaffName}
	assert.ElementsMatch(t, []string{"Sari", "Agus"}, names)

	_, err = fx.rating.GetOrderRatings(context.Background(), fx.order.ID, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrOrderNotFound)
}
