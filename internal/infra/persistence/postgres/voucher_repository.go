package postgres

import (
	"context"
	"time"

	"loyalty/internal/domain/entity"
	domainerrors "loyalty/internal/domain/errors"
	"loyalty/internal/domain/repository"
	"loyalty/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

// clientVoucherRepository implements the repository.ClientVoucherRepository interface.
type clientVoucherRepository struct {
	db *gorm.DB
}

// NewClientVoucherRepository is the constructor for clientVoucherRepository.
func NewClientVoucherRepository(db *gorm.DB) repository.ClientVoucherRepository {
	return &clientVoucherRepository{
		db: db,
	}
}

// CreateClientVoucher persists a claim; the unique index turns a concurrent duplicate into ErrDuplicateClientVoucher.
func (repo *clientVoucherRepository) CreateClientVoucher(ctx context.Context, cv *entity.ClientVoucher) error {
	cvM := fromClientVoucherDomain(cv)

	if err := repo.db.WithContext(ctx).Create(cvM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateClientVoucher
		}
		if isTransactionConflict(err) {
			return errors.WithStack(err)
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create client voucher")
	}

	cv.ID = cvM.ID

	return nil
}

// FindClientVoucher retrieves a client's claim of a code.
func (repo *clientVoucherRepository) FindClientVoucher(ctx context.Context, clientID uuid.UUID, code string) (*entity.ClientVoucher, error) {
	return repo.findClientVoucher(repo.db.WithContext(ctx), clientID, code)
}

// FindClientVoucherForUpdate retrieves a client's claim of a code and locks it.
func (repo *clientVoucherRepository) FindClientVoucherForUpdate(ctx context.Context, clientID uuid.UUID, code string) (*entity.ClientVoucher, error) {
	return repo.findClientVoucher(repo.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), clientID, code)
}

func (repo *clientVoucherRepository) findClientVoucher(db *gorm.DB, clientID uuid.UUID, code string) (*entity.ClientVoucher, error) {
	var cvM model.ClientVoucherModel

	if err := db.
		Where("client_id = ? AND voucher_code = ?", clientID, code).
		First(&cvM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrClientVoucherNotFound
		}

		return nil, errors.Wrap(err, "failed to find client voucher")
	}

	return toClientVoucherDomain(&cvM), nil
}

// FindUnusedClientVouchers lists a client's unused claims.
func (repo *clientVoucherRepository) FindUnusedClientVouchers(ctx context.Context, clientID uuid.UUID) ([]*entity.ClientVoucher, error) {
	var cvModels []*model.ClientVoucherModel

	if err := repo.db.WithContext(ctx).
		Where("client_id = ? AND is_used = ?", clientID, false).
		Order("obtained_at DESC").
		Find(&cvModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find unused client vouchers")
	}

	vouchers := make([]*entity.ClientVoucher, 0, len(cvModels))
	for _, cvM := range cvModels {
		vouchers = append(vouchers, toClientVoucherDomain(cvM))
	}

	return vouchers, nil
}

// FindClaimedCodes returns every code the client has claimed.
func (repo *clientVoucherRepository) FindClaimedCodes(ctx context.Context, clientID uuid.UUID) (map[string]bool, error) {
	var codes []string

	if err := repo.db.WithContext(ctx).
		Model(&model.ClientVoucherModel{}).
		Where("client_id = ?", clientID).
		Pluck("voucher_code", &codes).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find claimed voucher codes")
	}

	claimed := make(map[string]bool, len(codes))
	for _, code := range codes {
		claimed[code] = true
	}

	return claimed, nil
}

// CountClaimants counts distinct clients holding the code.
func (repo *clientVoucherRepository) CountClaimants(ctx context.Context, code string) (int64, error) {
	var count int64

	if err := repo.db.WithContext(ctx).
		Model(&model.ClientVoucherModel{}).
		Where("voucher_code = ?", code).
		Distinct("client_id").
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count voucher claimants")
	}

	return count, nil
}

// MarkClientVoucherUsed flags a claim as used.
func (repo *clientVoucherRepository) MarkClientVoucherUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ClientVoucherModel{}).
		Where("id = ? AND is_used = ?", id, false).
		Updates(map[string]any{
			"is_used": true,
			"used_at": usedAt,
		})

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to mark client voucher used")
	}

	if result.RowsAffected == 0 {
		return repository.ErrClientVoucherNotFound
	}

	return nil
}

// voucherUsageRepository implements the repository.VoucherUsageRepository interface.
type voucherUsageRepository struct {
	db *gorm.DB
}

// NewVoucherUsageRepository is the constructor for voucherUsageRepository.
func NewVoucherUsageRepository(db *gorm.DB) repository.VoucherUsageRepository {
	return &voucherUsageRepository{
		db: db,
	}
}

// CreateVoucherHistory records a voucher application.
func (repo *voucherUsageRepository) CreateVoucherHistory(ctx context.Context, history *entity.VoucherHistory) error {
	historyM := &model.VoucherHistoryModel{
		ID:             history.ID,
		ClientID:       history.ClientID,
		VoucherCode:    history.VoucherCode,
		OrderID:        history.OrderID,
		DiscountAmount: history.DiscountAmount,
		UsedAt:         history.UsedAt,
	}

	if err := repo.db.WithContext(ctx).Create(historyM).Error; err != nil {
		if isTransactionConflict(err) {
			return errors.WithStack(err)
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create voucher history")
	}

	history.ID = historyM.ID

	return nil
}

// CountVoucherUsage counts how many times the client applied the code.
func (repo *voucherUsageRepository) CountVoucherUsage(ctx context.Context, clientID uuid.UUID, code string) (int64, error) {
	var count int64

	if err := repo.db.WithContext(ctx).
		Model(&model.VoucherHistoryModel{}).
		Where("client_id = ? AND voucher_code = ?", clientID, code).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count voucher usage")
	}

	return count, nil
}

// CreateReservation persists a validated reservation.
func (repo *voucherUsageRepository) CreateReservation(ctx context.Context, reservation *entity.VoucherReservation) error {
	reservationM := fromReservationDomain(reservation)

	if err := repo.db.WithContext(ctx).Create(reservationM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create voucher reservation")
	}

	reservation.CreatedAt = reservationM.CreatedAt

	return nil
}

// FindReservation retrieves a reservation from the primary without locking it.
func (repo *voucherUsageRepository) FindReservation(ctx context.Context, token uuid.UUID) (*entity.VoucherReservation, error) {
	return repo.findReservation(repo.db.WithContext(ctx).Clauses(dbresolver.Write), token)
}

// FindReservationForUpdate retrieves a reservation and locks it.
func (repo *voucherUsageRepository) FindReservationForUpdate(ctx context.Context, token uuid.UUID) (*entity.VoucherReservation, error) {
	return repo.findReservation(repo.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), token)
}

func (repo *voucherUsageRepository) findReservation(db *gorm.DB, token uuid.UUID) (*entity.VoucherReservation, error) {
	var reservationM model.VoucherReservationModel

	if err := db.Where("token = ?", token).First(&reservationM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrReservationNotFound
		}

		return nil, errors.Wrap(err, "failed to find voucher reservation")
	}

	return toReservationDomain(&reservationM), nil
}

// MarkReservationConsumed binds the reservation to an order.
func (repo *voucherUsageRepository) MarkReservationConsumed(ctx context.Context, token uuid.UUID, orderID uuid.UUID, consumedAt time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.VoucherReservationModel{}).
		Where("token = ? AND consumed_at IS NULL", token).
		Updates(map[string]any{
			"consumed_at": consumedAt,
			"order_id":    orderID,
		})

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to consume voucher reservation")
	}

	if result.RowsAffected == 0 {
		return repository.ErrReservationNotFound
	}

	return nil
}

// toClientVoucherDomain converts a GORM ClientVoucherModel to a domain ClientVoucher entity.
func toClientVoucherDomain(data *model.ClientVoucherModel) *entity.ClientVoucher {
	if data == nil {
		return nil
	}

	return &entity.ClientVoucher{
		ID:           data.ID,
		ClientID:     data.ClientID,
		VoucherCode:  data.VoucherCode,
		ObtainedFrom: data.ObtainedFrom,
		ObtainedAt:   data.ObtainedAt,
		IsUsed:       data.IsUsed,
		UsedAt:       data.UsedAt,
	}
}

// fromClientVoucherDomain converts a domain ClientVoucher entity to a GORM ClientVoucherModel.
func fromClientVoucherDomain(data *entity.ClientVoucher) *model.ClientVoucherModel {
	if data == nil {
		return nil
	}

	return &model.ClientVoucherModel{
		ID:           data.ID,
		ClientID:     data.ClientID,
		VoucherCode:  data.VoucherCode,
		ObtainedFrom: data.ObtainedFrom,
		ObtainedAt:   data.ObtainedAt,
		IsUsed:       data.IsUsed,
		UsedAt:       data.UsedAt,
	}
}

func toReservationDomain(data *model.VoucherReservationModel) *entity.VoucherReservation {
	if data == nil {
		return nil
	}

	return &entity.VoucherReservation{
		Token:          data.Token,
		ClientID:       data.ClientID,
		VoucherCode:    data.VoucherCode,
		OrderTotal:     data.OrderTotal,
		PaymentMethod:  data.PaymentMethod,
		DiscountAmount: data.DiscountAmount,
		FinalTotal:     data.FinalTotal,
		ExpiresAt:      data.ExpiresAt,
		ConsumedAt:     data.ConsumedAt,
		OrderID:        data.OrderID,
		CreatedAt:      data.CreatedAt,
	}
}

func fromReservationDomain(data *entity.VoucherReservation) *model.VoucherReservationModel {
	if data == nil {
		return nil
	}

	return &model.VoucherReservationModel{
		Token:          data.Token,
		ClientID:       data.ClientID,
		VoucherCode:    data.VoucherCode,
		OrderTotal:     data.OrderTotal,
		PaymentMethod:  data.PaymentMethod,
		DiscountAmount: data.DiscountAmount,
		FinalTotal:     data.FinalTotal,
		ExpiresAt:      data.ExpiresAt,
		ConsumedAt:     data.ConsumedAt,
		OrderID:        data.OrderID,
		CreatedAt:      data.CreatedAt,
	}
}
