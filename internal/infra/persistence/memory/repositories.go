package memory

import (
	"bytes"
	"cmp"
	"context"
	"slices"
	"time"

	"loyalty/internal/domain/entity"
	"loyalty/internal/domain/repository"

	"github.com/google/uuid"
)

type base struct {
	store *Store
	view  view
}

func (b *base) read(ctx context.Context, method string, fn func(st *state) error) error {
	if err := b.store.takeFault(method); err != nil {
		return err
	}

	return b.view.read(ctx, fn)
}

func (b *base) write(ctx context.Context, method string, fn func(st *state) error) error {
	if err := b.store.takeFault(method); err != nil {
		return err
	}

	return b.view.write(ctx, fn)
}

func newIDIfNil(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}

	return id
}

func nowIfZero(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}

	return t
}

type clientRepository base

func (repo *clientRepository) FindClientByID(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	var found *entity.Client
	err := (*base)(repo).read(ctx, "FindClientByID", func(st *state) error {
		client, ok := st.clients[id]
		if !ok {
			return repository.ErrClientNotFound
		}
		c := *client
		found = &c

		return nil
	})

	return found, err
}

func (repo *clientRepository) FindClientByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	return repo.FindClientByID(ctx, id)
}

func (repo *clientRepository) AdjustCoinBalance(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	var balance int64
	err := (*base)(repo).write(ctx, "AdjustCoinBalance", func(st *state) error {
		client, ok := st.clients[id]
		if !ok {
			return repository.ErrClientNotFound
		}
		if client.CoinBalance+delta < 0 {
			return repository.ErrInsufficientCoins
		}
		c := *client
		c.CoinBalance += delta
		c.UpdatedAt = time.Now()
		st.clients[id] = &c
		balance = c.CoinBalance

		return nil
	})

	return balance, err
}

type ruleRepository base

func (repo *ruleRepository) FindCoinRule(ctx context.Context) (*entity.CoinRule, error) {
	var found *entity.CoinRule
	err := (*base)(repo).read(ctx, "FindCoinRule", func(st *state) error {
		if st.coinRule == nil {
			return repository.ErrCoinRuleNotFound
		}
		r := *st.coinRule
		found = &r

		return nil
	})

	return found, err
}

func (repo *ruleRepository) FindVoucherRule(ctx context.Context, code string) (*entity.VoucherRule, error) {
	var found *entity.VoucherRule
	err := (*base)(repo).read(ctx, "FindVoucherRule", func(st *state) error {
		rule, ok := st.voucherRules[code]
		if !ok {
			return repository.ErrVoucherRuleNotFound
		}
		r := *rule
		found = &r

		return nil
	})

	return found, err
}

func (repo *ruleRepository) FindVoucherRuleForUpdate(ctx context.Context, code string) (*entity.VoucherRule, error) {
	return repo.FindVoucherRule(ctx, code)
}

func (repo *ruleRepository) FindActiveVoucherRules(ctx context.Context, now time.Time) ([]*entity.VoucherRule, error) {
	var rules []*entity.VoucherRule
	err := (*base)(repo).read(ctx, "FindActiveVoucherRules", func(st *state) error {
		for _, rule := range st.voucherRules {
			if rule.IsUsableAt(now) {
				r := *rule
				rules = append(rules, &r)
			}
		}

		return nil
	})
	slices.SortFunc(rules, func(a, b *entity.VoucherRule) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}

		return cmp.Compare(a.Code, b.Code)
	})

	return rules, err
}

type clientVoucherRepository base

func (repo *clientVoucherRepository) CreateClientVoucher(ctx context.Context, cv *entity.ClientVoucher) error {
	return (*base)(repo).write(ctx, "CreateClientVoucher", func(st *state) error {
		for _, existing := range st.clientVouchers {
			if existing.ClientID == cv.ClientID && existing.VoucherCode == cv.VoucherCode {
				return repository.ErrDuplicateClientVoucher
			}
		}
		cv.ID = newIDIfNil(cv.ID)
		cv.ObtainedAt = nowIfZero(cv.ObtainedAt)
		stored := *cv
		st.clientVouchers[stored.ID] = &stored

		return nil
	})
}

func (repo *clientVoucherRepository) FindClientVoucher(ctx context.Context, clientID uuid.UUID, code string) (*entity.ClientVoucher, error) {
	var found *entity.ClientVoucher
	err := (*base)(repo).read(ctx, "FindClientVoucher", func(st *state) error {
		for _, cv := range st.clientVouchers {
			if cv.ClientID == clientID && cv.VoucherCode == code {
				c := *cv
				found = &c

				return nil
			}
		}

		return repository.ErrClientVoucherNotFound
	})

	return found, err
}

func (repo *clientVoucherRepository) FindClientVoucherForUpdate(ctx context.Context, clientID uuid.UUID, code string) (*entity.ClientVoucher, error) {
	return repo.FindClientVoucher(ctx, clientID, code)
}

func (repo *clientVoucherRepository) FindUnusedClientVouchers(ctx context.Context, clientID uuid.UUID) ([]*entity.ClientVoucher, error) {
	var vouchers []*entity.ClientVoucher
	err := (*base)(repo).read(ctx, "FindUnusedClientVouchers", func(st *state) error {
		for _, cv := range st.clientVouchers {
			if cv.ClientID == clientID && !cv.IsUsed {
				c := *cv
				vouchers = append(vouchers, &c)
			}
		}

		return nil
	})
	slices.SortFunc(vouchers, func(a, b *entity.ClientVoucher) int {
		return b.ObtainedAt.Compare(a.ObtainedAt)
	})

	return vouchers, err
}

func (repo *clientVoucherRepository) FindClaimedCodes(ctx context.Context, clientID uuid.UUID) (map[string]bool, error) {
	claimed := make(map[string]bool)
	err := (*base)(repo).read(ctx, "FindClaimedCodes", func(st *state) error {
		for _, cv := range st.clientVouchers {
			if cv.ClientID == clientID {
				claimed[cv.VoucherCode] = true
			}
		}

		return nil
	})

	return claimed, err
}

func (repo *clientVoucherRepository) CountClaimants(ctx context.Context, code string) (int64, error) {
	var count int64
	err := (*base)(repo).read(ctx, "CountClaimants", func(st *state) error {
		clients := make(map[uuid.UUID]struct{})
		for _, cv := range st.clientVouchers {
			if cv.VoucherCode == code {
				clients[cv.ClientID] = struct{}{}
			}
		}
		count = int64(len(clients))

		return nil
	})

	return count, err
}

func (repo *clientVoucherRepository) MarkClientVoucherUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	return (*base)(repo).write(ctx, "MarkClientVoucherUsed", func(st *state) error {
		cv, ok := st.clientVouchers[id]
		if !ok || cv.IsUsed {
			return repository.ErrClientVoucherNotFound
		}
		c := *cv
		c.IsUsed = true
		c.UsedAt = &usedAt
		st.clientVouchers[id] = &c

		return nil
	})
}

type voucherUsageRepository base

func (repo *voucherUsageRepository) CreateVoucherHistory(ctx context.Context, history *entity.VoucherHistory) error {
	return (*base)(repo).write(ctx, "CreateVoucherHistory", func(st *state) error {
		history.ID = newIDIfNil(history.ID)
		history.UsedAt = nowIfZero(history.UsedAt)
		stored := *history
		st.voucherHistories = append(st.voucherHistories, &stored)

		return nil
	})
}

func (repo *voucherUsageRepository) CountVoucherUsage(ctx context.Context, clientID uuid.UUID, code string) (int64, error) {
	var count int64
	err := (*base)(repo).read(ctx, "CountVoucherUsage", func(st *state) error {
		for _, history := range st.voucherHistories {
			if history.ClientID == clientID && history.VoucherCode == code {
				count++
			}
		}

		return nil
	})

	return count, err
}

func (repo *voucherUsageRepository) CreateReservation(ctx context.Context, reservation *entity.VoucherReservation) error {
	return (*base)(repo).write(ctx, "CreateReservation", func(st *state) error {
		reservation.Token = newIDIfNil(reservation.Token)
		reservation.CreatedAt = nowIfZero(reservation.CreatedAt)
		stored := *reservation
		st.reservations[stored.Token] = &stored

		return nil
	})
}

func (repo *voucherUsageRepository) FindReservation(ctx context.Context, token uuid.UUID) (*entity.VoucherReservation, error) {
	return repo.findReservation(ctx, "FindReservation", token)
}

func (repo *voucherUsageRepository) FindReservationForUpdate(ctx context.Context, token uuid.UUID) (*entity.VoucherReservation, error) {
	return repo.findReservation(ctx, "FindReservationForUpdate", token)
}

func (repo *voucherUsageRepository) findReservation(ctx context.Context, method string, token uuid.UUID) (*entity.VoucherReservation, error) {
	var found *entity.VoucherReservation
	err := (*base)(repo).read(ctx, method, func(st *state) error {
		reservation, ok := st.reservations[token]
		if !ok {
			return repository.ErrReservationNotFound
		}
		r := *reservation
		found = &r

		return nil
	})

	return found, err
}

func (repo *voucherUsageRepository) MarkReservationConsumed(ctx context.Context, token uuid.UUID, orderID uuid.UUID, consumedAt time.Time) error {
	return (*base)(repo).write(ctx, "MarkReservationConsumed", func(st *state) error {
		reservation, ok := st.reservations[token]
		if !ok || reservation.IsConsumed() {
			return repository.ErrReservationNotFound
		}
		r := *reservation
		r.ConsumedAt = &consumedAt
		r.OrderID = &orderID
		st.reservations[token] = &r

		return nil
	})
}

type coinHistoryRepository base

func (repo *coinHistoryRepository) CreateCoinHistory(ctx context.Context, history *entity.CoinHistory) error {
	return (*base)(repo).write(ctx, "CreateCoinHistory", func(st *state) error {
		history.ID = newIDIfNil(history.ID)
		history.CreatedAt = nowIfZero(history.CreatedAt)
		stored := *history
		st.coinHistories = append(st.coinHistories, &stored)

		return nil
	})
}

func (repo *coinHistoryRepository) FindCoinHistoryByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*entity.CoinHistory, int64, error) {
	var all []*entity.CoinHistory
	err := (*base)(repo).read(ctx, "FindCoinHistoryByClient", func(st *state) error {
		for _, history := range st.coinHistories {
			if history.ClientID == clientID {
				h := *history
				all = append(all, &h)
			}
		}

		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	// Newest first; insertion order breaks ties between equal timestamps.
	slices.Reverse(all)
	slices.SortStableFunc(all, func(a, b *entity.CoinHistory) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	total := int64(len(all))
	if offset >= len(all) {
		return []*entity.CoinHistory{}, total, nil
	}
	end := min(offset+limit, len(all))

	return all[offset:end], total, nil
}

type orderRepository base

func (repo *orderRepository) FindOrderForClient(ctx context.Context, orderID, clientID uuid.UUID) (*entity.Order, error) {
	var found *entity.Order
	err := (*base)(repo).read(ctx, "FindOrderForClient", func(st *state) error {
		order, ok := st.orders[orderID]
		if !ok || order.ClientID != clientID {
			return repository.ErrOrderNotFound
		}
		o := *order
		found = &o

		return nil
	})

	return found, err
}

func (repo *orderRepository) FindAssignedStaffID(ctx context.Context, orderID uuid.UUID, role entity.StaffRole) (uuid.UUID, error) {
	staffID := uuid.Nil
	err := (*base)(repo).read(ctx, "FindAssignedStaffID", func(st *state) error {
		order, ok := st.orders[orderID]
		if !ok {
			return repository.ErrStaffNotAssigned
		}
		for _, item := range order.Items {
			if assignee := item.AssigneeFor(role); assignee != nil {
				staffID = *assignee

				return nil
			}
		}

		return repository.ErrStaffNotAssigned
	})

	return staffID, err
}

func (repo *orderRepository) FindOrdersByClientAndStatus(ctx context.Context, clientID uuid.UUID, status string) ([]*entity.Order, error) {
	var orders []*entity.Order
	err := (*base)(repo).read(ctx, "FindOrdersByClientAndStatus", func(st *state) error {
		for _, order := range st.orders {
			if order.ClientID == clientID && order.Status == status {
				o := *order
				orders = append(orders, &o)
			}
		}

		return nil
	})
	slices.SortFunc(orders, func(a, b *entity.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}

		return bytes.Compare(b.ID[:], a.ID[:])
	})

	return orders, err
}

type staffRepository base

func (repo *staffRepository) FindStaffByID(ctx context.Context, id uuid.UUID) (*entity.Staff, error) {
	var found *entity.Staff
	err := (*base)(repo).read(ctx, "FindStaffByID", func(st *state) error {
		staff, ok := st.staff[id]
		if !ok {
			return repository.ErrStaffNotFound
		}
		s := *staff
		found = &s

		return nil
	})

	return found, err
}

func (repo *staffRepository) FindStaffByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Staff, error) {
	return repo.FindStaffByID(ctx, id)
}

func (repo *staffRepository) FindStaffByRole(ctx context.Context, role entity.StaffRole) (*entity.Staff, error) {
	var found *entity.Staff
	err := (*base)(repo).read(ctx, "FindStaffByRole", func(st *state) error {
		for _, staff := range st.staff {
			if staff.Role != role {
				continue
			}
			// Lowest ID wins so the choice is stable across calls.
			if found == nil || staff.ID.String() < found.ID.String() {
				s := *staff
				found = &s
			}
		}
		if found == nil {
			return repository.ErrStaffNotFound
		}

		return nil
	})

	return found, err
}

func (repo *staffRepository) UpdateStaffRating(ctx context.Context, id uuid.UUID, count, total int64, average float64) error {
	return (*base)(repo).write(ctx, "UpdateStaffRating", func(st *state) error {
		staff, ok := st.staff[id]
		if !ok {
			return repository.ErrStaffNotFound
		}
		s := *staff
		s.RatingCount = count
		s.RatingTotal = total
		s.Rating = average
		s.UpdatedAt = time.Now()
		st.staff[id] = &s

		return nil
	})
}

type ratingRepository base

func (repo *ratingRepository) FindRating(ctx context.Context, orderID, staffID, clientID uuid.UUID) (*entity.Rating, error) {
	var found *entity.Rating
	err := (*base)(repo).read(ctx, "FindRating", func(st *state) error {
		for _, rating := range st.ratings {
			if rating.OrderID == orderID && rating.StaffID == staffID && rating.ClientID == clientID {
				r := *rating
				found = &r

				return nil
			}
		}

		return repository.ErrRatingNotFound
	})

	return found, err
}

func (repo *ratingRepository) CreateRating(ctx context.Context, rating *entity.Rating) error {
	return (*base)(repo).write(ctx, "CreateRating", func(st *state) error {
		for _, existing := range st.ratings {
			if existing.OrderID == rating.OrderID && existing.StaffID == rating.StaffID && existing.ClientID == rating.ClientID {
				return repository.ErrDuplicateRating
			}
		}
		rating.ID = newIDIfNil(rating.ID)
		rating.CreatedAt = nowIfZero(rating.CreatedAt)
		rating.UpdatedAt = nowIfZero(rating.UpdatedAt)
		stored := *rating
		st.ratings = append(st.ratings, &stored)

		return nil
	})
}

func (repo *ratingRepository) UpdateRating(ctx context.Context, rating *entity.Rating) error {
	return (*base)(repo).write(ctx, "UpdateRating", func(st *state) error {
		for i, existing := range st.ratings {
			if existing.ID != rating.ID {
				continue
			}
			r := *existing
			r.Score = rating.Score
			r.Comment = rating.Comment
			r.UpdatedAt = nowIfZero(rating.UpdatedAt)
			st.ratings[i] = &r

			return nil
		}

		return repository.ErrRatingNotFound
	})
}

func (repo *ratingRepository) FindRatingsByOrder(ctx context.Context, orderID, clientID uuid.UUID) ([]*entity.OrderRating, error) {
	var ratings []*entity.OrderRating
	err := (*base)(repo).read(ctx, "FindRatingsByOrder", func(st *state) error {
		for _, rating := range st.ratings {
			if rating.OrderID != orderID || rating.ClientID != clientID {
				continue
			}
			orderRating := &entity.OrderRating{Rating: *rating}
			if staff, ok := st.staff[rating.StaffID]; ok {
				orderRating.StaffName = staff.FullName
			}
			ratings = append(ratings, orderRating)
		}

		return nil
	})

	return ratings, err
}

func (repo *ratingRepository) FindRatedRoles(ctx context.Context, clientID uuid.UUID, orderIDs []uuid.UUID, roles []entity.StaffRole) (map[uuid.UUID][]entity.StaffRole, error) {
	rated := make(map[uuid.UUID][]entity.StaffRole, len(orderIDs))
	err := (*base)(repo).read(ctx, "FindRatedRoles", func(st *state) error {
		for _, rating := range st.ratings {
			if rating.ClientID != clientID || !slices.Contains(orderIDs, rating.OrderID) || !slices.Contains(roles, rating.UserType) {
				continue
			}
			if !slices.Contains(rated[rating.OrderID], rating.UserType) {
				rated[rating.OrderID] = append(rated[rating.OrderID], rating.UserType)
			}
		}

		return nil
	})

	return rated, err
}
