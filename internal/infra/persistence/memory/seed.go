package memory

import (
	"slices"

	"loyalty/internal/domain/entity"

	"github.com/google/uuid"
)

// Seed helpers write collaborator and rule data straight into the committed state.
// They stand in for the CRUD surfaces that own those tables.

func (s *Store) seed(fn func(st *state)) {
	s.gate <- struct{}{}
	defer s.release()

	s.mu.Lock()
	defer s.mu.Unlock()

	fn(s.committed)
}

// SeedClient stores a client, assigning an ID when none is set.
func (s *Store) SeedClient(client entity.Client) entity.Client {
	client.ID = newIDIfNil(client.ID)
	client.CreatedAt = nowIfZero(client.CreatedAt)
	s.seed(func(st *state) {
		st.clients[client.ID] = &client
	})

	return client
}

// SeedCoinRule replaces the coin rule row.
func (s *Store) SeedCoinRule(rule entity.CoinRule) {
	s.seed(func(st *state) {
		st.coinRule = &rule
	})
}

// SeedVoucherRule stores a voucher rule keyed by its code.
func (s *Store) SeedVoucherRule(rule entity.VoucherRule) entity.VoucherRule {
	rule.CreatedAt = nowIfZero(rule.CreatedAt)
	s.seed(func(st *state) {
		st.voucherRules[rule.Code] = &rule
	})

	return rule
}

// SeedOrder stores an order with its items.
func (s *Store) SeedOrder(order entity.Order) entity.Order {
	order.ID = newIDIfNil(order.ID)
	order.CreatedAt = nowIfZero(order.CreatedAt)
	for _, item := range order.Items {
		item.ID = newIDIfNil(item.ID)
		item.OrderID = order.ID
	}
	s.seed(func(st *state) {
		st.orders[order.ID] = &order
	})

	return order
}

// SeedStaff stores a staff member.
func (s *Store) SeedStaff(staff entity.Staff) entity.Staff {
	staff.ID = newIDIfNil(staff.ID)
	s.seed(func(st *state) {
		st.staff[staff.ID] = &staff
	})

	return staff
}

// SeedRating stores a rating without touching the staff aggregates.
func (s *Store) SeedRating(rating entity.Rating) entity.Rating {
	rating.ID = newIDIfNil(rating.ID)
	rating.CreatedAt = nowIfZero(rating.CreatedAt)
	rating.UpdatedAt = nowIfZero(rating.UpdatedAt)
	s.seed(func(st *state) {
		st.ratings = append(st.ratings, &rating)
	})

	return rating
}

// Client returns the committed client, or nil.
func (s *Store) Client(id uuid.UUID) *entity.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, ok := s.committed.clients[id]
	if !ok {
		return nil
	}
	c := *client

	return &c
}

// Staff returns the committed staff member, or nil.
func (s *Store) Staff(id uuid.UUID) *entity.Staff {
	s.mu.RLock()
	defer s.mu.RUnlock()

	staff, ok := s.committed.staff[id]
	if !ok {
		return nil
	}
	c := *staff

	return &c
}

// Reservation returns the committed reservation, or nil.
func (s *Store) Reservation(token uuid.UUID) *entity.VoucherReservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reservation, ok := s.committed.reservations[token]
	if !ok {
		return nil
	}
	c := *reservation

	return &c
}

// ClientVouchers returns every committed claim.
func (s *Store) ClientVouchers() []entity.ClientVoucher {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.ClientVoucher, 0, len(s.committed.clientVouchers))
	for _, cv := range s.committed.clientVouchers {
		out = append(out, *cv)
	}
	slices.SortFunc(out, func(a, b entity.ClientVoucher) int {
		return a.ObtainedAt.Compare(b.ObtainedAt)
	})

	return out
}

// VoucherHistories returns the committed voucher usage log in insertion order.
func (s *Store) VoucherHistories() []entity.VoucherHistory {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return derefAll(s.committed.voucherHistories)
}

// CoinHistories returns the committed coin movements in insertion order.
func (s *Store) CoinHistories() []entity.CoinHistory {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return derefAll(s.committed.coinHistories)
}

// Ratings returns the committed ratings in insertion order.
func (s *Store) Ratings() []entity.Rating {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return derefAll(s.committed.ratings)
}

func derefAll[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}

	return out
}

