package postgres

import (
	"context"

	"loyalty/internal/domain/entity"
	"loyalty/internal/domain/repository"
	"loyalty/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// assigneeColumns maps order-scoped roles to their order_items column.
var assigneeColumns = map[entity.StaffRole]string{
	entity.StaffRoleAdmin:    "admin_id",
	entity.StaffRoleDesainer: "desainer_id",
	entity.StaffRoleOperator: "operator_id",
}

func itemsInInsertOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// orderRepository implements the repository.OrderRepository interface.
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository is the constructor for orderRepository.
func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepository{
		db: db,
	}
}

// FindOrderForClient retrieves an order with its items if it belongs to the client.
func (repo *orderRepository) FindOrderForClient(ctx context.Context, orderID, clientID uuid.UUID) (*entity.Order, error) {
	var orderM model.OrderModel

	if err := repo.db.WithContext(ctx).
		Preload("Items", itemsInInsertOrder).
		Where("id = ? AND client_id = ?", orderID, clientID).
		First(&orderM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOrderNotFound
		}

		return nil, errors.Wrap(err, "failed to find order")
	}

	return toOrderDomain(&orderM), nil
}

// FindAssignedStaffID returns the role assignment of the earliest inserted item that has one.
func (repo *orderRepository) FindAssignedStaffID(ctx context.Context, orderID uuid.UUID, role entity.StaffRole) (uuid.UUID, error) {
	column, ok := assigneeColumns[role]
	if !ok {
		return uuid.Nil, errors.Errorf("role %s is not assigned per order item", role)
	}

	var staffIDs []uuid.UUID
	if err := repo.db.WithContext(ctx).
		Model(&model.OrderItemModel{}).
		Where("order_id = ?", orderID).
		Where(column + " IS NOT NULL").
		Order("position ASC").
		Limit(1).
		Pluck(column, &staffIDs).Error; err != nil {
		return uuid.Nil, errors.Wrap(err, "failed to find assigned staff")
	}

	if len(staffIDs) == 0 {
		return uuid.Nil, repository.ErrStaffNotAssigned
	}

	return staffIDs[0], nil
}

// FindOrdersByClientAndStatus lists a client's orders in a status.
func (repo *orderRepository) FindOrdersByClientAndStatus(ctx context.Context, clientID uuid.UUID, status string) ([]*entity.Order, error) {
	var orderModels []*model.OrderModel

	if err := repo.db.WithContext(ctx).
		Where("client_id = ? AND status = ?", clientID, status).
		Order("created_at DESC, id DESC").
		Find(&orderModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find orders by status")
	}

	orders := make([]*entity.Order, 0, len(orderModels))
	for _, orderM := range orderModels {
		orders = append(orders, toOrderDomain(orderM))
	}

	return orders, nil
}

// toOrderDomain converts a GORM OrderModel to a domain Order entity.
func toOrderDomain(data *model.OrderModel) *entity.Order {
	if data == nil {
		return nil
	}

	order := &entity.Order{
		ID:        data.ID,
		ClientID:  data.ClientID,
		OrderCode: data.OrderCode,
		Total:     data.Total,
		Status:    data.Status,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
	for _, itemM := range data.Items {
		order.Items = append(order.Items, &entity.OrderItem{
			ID:          itemM.ID,
			OrderID:     itemM.OrderID,
			ProductName: itemM.ProductName,
			AdminID:     itemM.AdminID,
			DesainerID:  itemM.DesainerID,
			OperatorID:  itemM.OperatorID,
		})
	}

	return order
}
