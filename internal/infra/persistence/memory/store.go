// Package memory is an in-process implementation of the persistence layer. It keeps the
// transactional contract of the PostgreSQL driver (all-or-nothing commits, serialized
// writers, bounded waits that fail with a transaction conflict) and backs the use case
// and handler tests.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"loyalty/internal/domain/entity"
	domainerrors "loyalty/internal/domain/errors"
	"loyalty/internal/domain/repository"

	"github.com/google/uuid"
)

const defaultTxTimeout = 5 * time.Second

// state is one consistent snapshot of every table. Entities stored here are never
// mutated in place; writers store a modified copy, so cloning the maps is enough to
// isolate a transaction.
type state struct {
	clients          map[uuid.UUID]*entity.Client
	coinRule         *entity.CoinRule
	voucherRules     map[string]*entity.VoucherRule
	clientVouchers   map[uuid.UUID]*entity.ClientVoucher
	voucherHistories []*entity.VoucherHistory
	reservations     map[uuid.UUID]*entity.VoucherReservation
	coinHistories    []*entity.CoinHistory
	orders           map[uuid.UUID]*entity.Order
	staff            map[uuid.UUID]*entity.Staff
	ratings          []*entity.Rating
}

func newState() *state {
	return &state{
		clients:        make(map[uuid.UUID]*entity.Client),
		voucherRules:   make(map[string]*entity.VoucherRule),
		clientVouchers: make(map[uuid.UUID]*entity.ClientVoucher),
		reservations:   make(map[uuid.UUID]*entity.VoucherReservation),
		orders:         make(map[uuid.UUID]*entity.Order),
		staff:          make(map[uuid.UUID]*entity.Staff),
	}
}

func (s *state) clone() *state {
	return &state{
		clients:          maps.Clone(s.clients),
		coinRule:         s.coinRule,
		voucherRules:     maps.Clone(s.voucherRules),
		clientVouchers:   maps.Clone(s.clientVouchers),
		voucherHistories: slices.Clone(s.voucherHistories),
		reservations:     maps.Clone(s.reservations),
		coinHistories:    slices.Clone(s.coinHistories),
		orders:           maps.Clone(s.orders),
		staff:            maps.Clone(s.staff),
		ratings:          slices.Clone(s.ratings),
	}
}

// Store holds the committed state. Only one transaction runs at a time; a transaction
// that cannot start before its deadline fails with ErrTransactionConflict.
type Store struct {
	gate      chan struct{}
	mu        sync.RWMutex
	committed *state
	txTimeout time.Duration

	faultMu sync.Mutex
	faults  map[string]error
}

// Option configures a Store.
type Option func(*Store)

// WithTxTimeout bounds how long a transaction waits for the writer slot.
func WithTxTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		s.txTimeout = timeout
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		gate:      make(chan struct{}, 1),
		committed: newState(),
		txTimeout: defaultTxTimeout,
		faults:    make(map[string]error),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// InjectFault makes the next call to the named repository method (e.g. "CreateCoinHistory")
// fail with err. It is consumed by the first matching call.
func (s *Store) InjectFault(method string, err error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()

	s.faults[method] = err
}

func (s *Store) takeFault(method string) error {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()

	err, ok := s.faults[method]
	if !ok {
		return nil
	}
	delete(s.faults, method)

	return err
}

func (s *Store) acquire(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	select {
	case s.gate <- struct{}{}:
		return nil
	case <-ctx.Done():
		return domainerrors.ErrTransactionConflict.WithDetails(ctx.Err().Error())
	}
}

func (s *Store) release() {
	<-s.gate
}

// Execute implements repository.TransactionManager.
func (s *Store) Execute(ctx context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	return s.apply(ctx, func(st *state) error {
		return fn(&factory{store: s, view: &txView{st: st}})
	})
}

// apply runs fn against a private copy of the committed state and publishes the copy
// only when fn succeeds.
func (s *Store) apply(ctx context.Context, fn func(st *state) error) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	s.mu.RLock()
	working := s.committed.clone()
	s.mu.RUnlock()

	if err := fn(working); err != nil {
		return err
	}

	s.mu.Lock()
	s.committed = working
	s.mu.Unlock()

	return nil
}

// Repositories returns a factory whose repositories run outside any transaction.
// Each write is committed on its own.
func (s *Store) Repositories() repository.RepositoryFactory {
	return &factory{store: s, view: &storeView{store: s}}
}

// view abstracts access to a state: directly inside a transaction, or through the
// store's locks outside of one.
type view interface {
	read(ctx context.Context, fn func(st *state) error) error
	write(ctx context.Context, fn func(st *state) error) error
}

type txView struct {
	st *state
}

func (v *txView) read(_ context.Context, fn func(st *state) error) error {
	return fn(v.st)
}

func (v *txView) write(_ context.Context, fn func(st *state) error) error {
	return fn(v.st)
}

type storeView struct {
	store *Store
}

func (v *storeView) read(_ context.Context, fn func(st *state) error) error {
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()

	return fn(v.store.committed)
}

func (v *storeView) write(ctx context.Context, fn func(st *state) error) error {
	return v.store.apply(ctx, fn)
}

// factory implements repository.RepositoryFactory over a view.
type factory struct {
	store *Store
	view  view
}

func (f *factory) NewClientRepository() repository.ClientRepository {
	return &clientRepository{store: f.store, view: f.view}
}

func (f *factory) NewRuleRepository() repository.RuleRepository {
	return &ruleRepository{store: f.store, view: f.view}
}

func (f *factory) NewClientVoucherRepository() repository.ClientVoucherRepository {
	return &clientVoucherRepository{store: f.store, view: f.view}
}

func (f *factory) NewVoucherUsageRepository() repository.VoucherUsageRepository {
	return &voucherUsageRepository{store: f.store, view: f.view}
}

func (f *factory) NewCoinHistoryRepository() repository.CoinHistoryRepository {
	return &coinHistoryRepository{store: f.store, view: f.view}
}

func (f *factory) NewOrderRepository() repository.OrderRepository {
	return &orderRepository{store: f.store, view: f.view}
}

func (f *factory) NewStaffRepository() repository.StaffRepository {
	return &staffRepository{store: f.store, view: f.view}
}

func (f *factory) NewRatingRepository() repository.RatingRepository {
	return &ratingRepository{store: f.store, view: f.view}
}
