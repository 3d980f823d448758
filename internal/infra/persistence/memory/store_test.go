package memory

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"loyalty/internal/domain/entity"
	domainerrors "loyalty/internal/domain/errors"
	"loyalty/internal/domain/repository"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteCommitsOnSuccess(t *testing.T) {
	t.Parallel()

	store := NewStore()
	client := store.SeedClient(entity.Client{FullName: "Budi", CoinBalance: 100})

	err := store.Execute(context.Background(), func(f repository.RepositoryFactory) error {
		if _, err := f.NewClientRepository().AdjustCoinBalance(context.Background(), client.ID, -40); err != nil {
			return err
		}

		return f.NewCoinHistoryRepository().CreateCoinHistory(context.Background(), &entity.CoinHistory{
			ClientID: client.ID,
			Amount:   -40,
			Kind:     entity.CoinHistoryUse,
		})
	})
	require.NoError(t, err)

	assert.Equal(t, int64(60), store.Client(client.ID).CoinBalance)
	assert.Len(t, store.CoinHistories(), 1)
}

func TestExecuteRollsBackOnError(t *testing.T) {
	t.Parallel()

	store := NewStore()
	client := store.SeedClient(entity.Client{FullName: "Budi", CoinBalance: 100})
	store.InjectFault("CreateCoinHistory", errors.New("disk full"))

	err := store.Execute(context.Background(), func(f repository.RepositoryFactory) error {
		if _, err := f.NewClientRepository().AdjustCoinBalance(context.Background(), client.ID, -40); err != nil {
			return err
		}

		return f.NewCoinHistoryRepository().CreateCoinHistory(context.Background(), &entity.CoinHistory{ClientID: client.ID, Amount: -40})
	})
	require.EqualError(t, err, "disk full")

	assert.Equal(t, int64(100), store.Client(client.ID).CoinBalance)
	assert.Empty(t, store.CoinHistories())
}

func TestInjectFaultIsConsumedOnce(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.SeedCoinRule(entity.DefaultCoinRule(800))
	store.InjectFault("FindCoinRule", errors.New("boom"))

	repo := store.Repositories().NewRuleRepository()
	_, err := repo.FindCoinRule(context.Background())
	require.Error(t, err)

	rule, err := repo.FindCoinRule(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(800), rule.CoinValue)
}

func TestExecuteTimesOutWithConflict(t *testing.T) {
	t.Parallel()

	store := NewStore(WithTxTimeout(20 * time.Millisecond))
	entered := make(chan struct{})
	done := make(chan struct{})

	go func() {
		_ = store.Execute(context.Background(), func(repository.RepositoryFactory) error {
			close(entered)
			<-done

			return nil
		})
	}()
	<-entered

	err := store.Execute(context.Background(), func(repository.RepositoryFactory) error { return nil })
	close(done)

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrTransactionConflict)
}

func TestAdjustCoinBalanceRejectsOverdraft(t *testing.T) {
	t.Parallel()

	store := NewStore()
	client := store.SeedClient(entity.Client{CoinBalance: 10})

	_, err := store.Repositories().NewClientRepository().AdjustCoinBalance(context.Background(), client.ID, -11)
	require.ErrorIs(t, err, repository.ErrInsufficientCoins)
	assert.Equal(t, int64(10), store.Client(client.ID).CoinBalance)
}

func TestCreateClientVoucherIsUniquePerClientAndCode(t *testing.T) {
	t.Parallel()

	store := NewStore()
	client := store.SeedClient(entity.Client{})
	repo := store.Repositories().NewClientVoucherRepository()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var created, duplicates int
	for range 10 {
		wg.Go(func() {
			err := repo.CreateClientVoucher(context.Background(), &entity.ClientVoucher{
				ClientID:     client.ID,
				VoucherCode:  "HEMAT20",
				ObtainedFrom: entity.VoucherObtainedFromClaim,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, repository.ErrDuplicateClientVoucher):
				duplicates++
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 9, duplicates)
	assert.Len(t, store.ClientVouchers(), 1)
}

func TestFindCoinHistoryByClientPaginatesNewestFirst(t *testing.T) {
	t.Parallel()

	store := NewStore()
	client := store.SeedClient(entity.Client{})
	repo := store.Repositories().NewCoinHistoryRepository()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 5 {
		require.NoError(t, repo.CreateCoinHistory(context.Background(), &entity.CoinHistory{
			ClientID:  client.ID,
			Amount:    int64(i + 1),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	page, total, err := repo.FindCoinHistoryByClient(context.Background(), client.ID, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	assert.Equal(t, int64(4), page[0].Amount)
	assert.Equal(t, int64(3), page[1].Amount)

	page, _, err = repo.FindCoinHistoryByClient(context.Background(), client.ID, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestFindAssignedStaffIDUsesFirstAssignedItem(t *testing.T) {
	t.Parallel()

	store := NewStore()
	client := store.SeedClient(entity.Client{})
	operator := store.SeedStaff(entity.Staff{FullName: "Sari", Role: entity.StaffRoleOperator})
	order := store.SeedOrder(entity.Order{
		ClientID: client.ID,
		Status:   entity.OrderStatusCompleted,
		Items: []*entity.OrderItem{
			{ProductName: "Banner"},
			{ProductName: "Stiker", OperatorID: &operator.ID},
		},
	})
	repo := store.Repositories().NewOrderRepository()

	staffID, err := repo.FindAssignedStaffID(context.Background(), order.ID, entity.StaffRoleOperator)
	require.NoError(t, err)
	assert.Equal(t, operator.ID, staffID)

	_, err = repo.FindAssignedStaffID(context.Background(), order.ID, entity.StaffRoleDesainer)
	assert.ErrorIs(t, err, repository.ErrStaffNotAssigned)
}

func TestFindAssignedStaffIDPrefersEarlierItem(t *testing.T) {
	t.Parallel()

	store := NewStore()
	client := store.SeedClient(entity.Client{})
	first := store.SeedStaff(entity.Staff{FullName: "Agus", Role: entity.StaffRoleOperator})
	second := store.SeedStaff(entity.Staff{FullName: "Rudi", Role: entity.StaffRoleOperator})
	order := store.SeedOrder(entity.Order{
		ClientID: client.ID,
		Status:   entity.OrderStatusCompleted,
		Items: []*entity.OrderItem{
			{ProductName: "Banner", OperatorID: &first.ID},
			{ProductName: "Stiker", OperatorID: &second.ID},
		},
	})

	for range 10 {
		staffID, err := store.Repositories().NewOrderRepository().FindAssignedStaffID(context.Background(), order.ID, entity.StaffRoleOperator)
		require.NoError(t, err)
		assert.Equal(t, first.ID, staffID)
	}
}

func TestFindOrdersByClientAndStatusNewestFirst(t *testing.T) {
	t.Parallel()

	store := NewStore()
	client := store.SeedClient(entity.Client{})
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	for _, offset := range []int{2, 0, 3, 1} {
		store.SeedOrder(entity.Order{
			ClientID:  client.ID,
			OrderCode: "ORD-" + strconv.Itoa(offset),
			Status:    entity.OrderStatusCompleted,
			CreatedAt: base.Add(time.Duration(offset) * time.Hour),
		})
	}
	store.SeedOrder(entity.Order{ClientID: client.ID, OrderCode: "ORD-X", Status: "Diproses", CreatedAt: base.Add(5 * time.Hour)})

	orders, err := store.Repositories().NewOrderRepository().FindOrdersByClientAndStatus(context.Background(), client.ID, entity.OrderStatusCompleted)
	require.NoError(t, err)

	codes := make([]string, 0, len(orders))
	for _, order := range orders {
		codes = append(codes, order.OrderCode)
	}
	assert.Equal(t, []string{"ORD-3", "ORD-2", "ORD-1", "ORD-0"}, codes)
}

func TestFindOrdersByClientAndStatusStableOnEqualTimes(t *testing.T) {
	t.Parallel()

	store := NewStore()
	client := store.SeedClient(entity.Client{})
	createdAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	for i := range 5 {
		store.SeedOrder(entity.Order{ClientID: client.ID, OrderCode: "ORD-" + strconv.Itoa(i), Status: entity.OrderStatusCompleted, CreatedAt: createdAt})
	}
	repo := store.Repositories().NewOrderRepository()

	first, err := repo.FindOrdersByClientAndStatus(context.Background(), client.ID, entity.OrderStatusCompleted)
	require.NoError(t, err)
	for range 10 {
		again, err := repo.FindOrdersByClientAndStatus(context.Background(), client.ID, entity.OrderStatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestUpdateRatingKeepsRole(t *testing.T) {
	t.Parallel()

	store := NewStore()
	rating := store.SeedRating(entity.Rating{UserType: entity.StaffRoleDesainer, Score: 2, Comment: "lama"})

	err := store.Repositories().NewRatingRepository().UpdateRating(context.Background(), &entity.Rating{
		ID:       rating.ID,
		UserType: entity.StaffRoleAdmin,
		Score:    5,
		Comment:  "baru",
	})
	require.NoError(t, err)

	ratings := store.Ratings()
	require.Len(t, ratings, 1)
	assert.Equal(t, entity.StaffRoleDesainer, ratings[0].UserType)
	assert.Equal(t, 5, ratings[0].Score)
	assert.Equal(t, "baru", ratings[0].Comment)
}
