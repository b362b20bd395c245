package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ovenlight/bakeshop-backend/internal/notifications"
	"github.com/ovenlight/bakeshop-backend/pkg/db/models"
	"github.com/ovenlight/bakeshop-backend/pkg/enums"
	pkgerrors "github.com/ovenlight/bakeshop-backend/pkg/errors"
	"github.com/ovenlight/bakeshop-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Notifier fans a dispatched event out to the live channels. The order
// service treats it as best-effort: a failed dispatch never reverts a
// committed transition.
type Notifier interface {
	Dispatch(ctx context.Context, event notifications.Event) error
}

// Actor identifies the caller for ownership and role gating.
type Actor struct {
	UserID   uuid.UUID
	Username string
	Role     enums.Role
}

// IsAdmin reports whether the actor may run elevated operations.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.RoleAdmin
}

// Service exposes order reads, the status machine and deletion.
type Service interface {
	GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*Detail, error)
	GetByOrderNumber(ctx context.Context, actor Actor, orderNumber string) (*Detail, error)
	ListForUser(ctx context.Context, actor Actor, status *enums.OrderStatus) ([]models.Order, error)
	ListByStatus(ctx context.Context, actor Actor, status enums.OrderStatus) ([]models.Order, error)
	ListByDateRange(ctx context.Context, actor Actor, from, to time.Time) ([]models.Order, error)
	UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, target enums.OrderStatus) (*models.Order, error)
	Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type service struct {
	repo     Repository
	tx       txRunner
	notifier Notifier
	logg     *logger.Logger
}

// NewService builds the order service.
func NewService(repo Repository, tx txRunner, notifier Notifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, notifier: notifier, logg: logg}, nil
}

func (s *service) GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*Detail, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwnerOrAdmin(actor, order); err != nil {
		return nil, err
	}
	return s.assembleDetail(ctx, order)
}

func (s *service) GetByOrderNumber(ctx context.Context, actor Actor, orderNumber string) (*Detail, error) {
	if orderNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number required")
	}
	order, err := s.repo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order by number")
	}
	if err := requireOwnerOrAdmin(actor, order); err != nil {
		return nil, err
	}
	return s.assembleDetail(ctx, order)
}

func (s *service) ListForUser(ctx context.Context, actor Actor, status *enums.OrderStatus) ([]models.Order, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	var (
		list []models.Order
		err  error
	)
	if status != nil {
		if !status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
		}
		list, err = s.repo.ListByUserAndStatus(ctx, actor.UserID, *status)
	} else {
		list, err = s.repo.ListByUser(ctx, actor.UserID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) ListByStatus(ctx context.Context, actor Actor, status enums.OrderStatus) ([]models.Order, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	list, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders by status")
	}
	return list, nil
}

func (s *service) ListByDateRange(ctx context.Context, actor Actor, from, to time.Time) ([]models.Order, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid date range")
	}
	list, err := s.repo.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders by date range")
	}
	return list, nil
}

func (s *service) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, target enums.OrderStatus) (*models.Order, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, order, target)
}

func (s *service) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to caller")
	}
	// Owners may only bail out before the kitchen starts; later cancellation
	// is an elevated operation.
	if !actor.IsAdmin() && order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending orders can be cancelled").
			WithDetails(map[string]any{"status": order.Status})
	}
	return s.transition(ctx, order, enums.OrderStatusCancelled)
}

func (s *service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if _, err := s.loadOrder(ctx, id); err != nil {
		return err
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteInvoiceByOrder(ctx, id); err != nil {
			return err
		}
		if err := repo.DeleteLineItemsByOrder(ctx, id); err != nil {
			return err
		}
		return repo.DeleteOrder(ctx, id)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	return nil
}

func (s *service) transition(ctx context.Context, order *models.Order, target enums.OrderStatus) (*models.Order, error) {
	if !order.Status.CanTransitionTo(target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "status transition disallowed").
			WithDetails(map[string]any{"from": order.Status, "to": target})
	}

	updated, err := s.repo.UpdateStatusGuarded(ctx, order.ID, order.Status, target)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently").
			WithDetails(map[string]any{"expected": order.Status, "to": target})
	}

	from := order.Status
	order.Status = target
	s.dispatchStatusChange(ctx, order, from, target)
	return order, nil
}

func (s *service) dispatchStatusChange(ctx context.Context, order *models.Order, from, to enums.OrderStatus) {
	ctx = s.logg.WithOrderNumber(ctx, order.OrderNumber)
	event := notifications.Event{
		ExternalID:  fmt.Sprintf("%s:%s:%s", order.OrderNumber, from, to),
		Type:        enums.NotificationTypeOrderUpdate,
		Title:       "Order update",
		Message:     fmt.Sprintf("Order %s is now %s.", order.OrderNumber, to),
		OrderNumber: order.OrderNumber,
		OrderStatus: to.String(),
		UserID:      order.UserID,
	}
	if err := s.notifier.Dispatch(ctx, event); err != nil {
		s.logg.Error(ctx, "dispatch status notification", err)
	}
}

func (s *service) loadOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) assembleDetail(ctx context.Context, order *models.Order) (*Detail, error) {
	items, err := s.repo.FindLineItems(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load line items")
	}
	detail := &Detail{Order: order, Items: items}

	invoice, err := s.repo.FindInvoice(ctx, order.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
		}
	} else {
		detail.Invoice = invoice
	}
	return detail, nil
}

func requireOwnerOrAdmin(actor Actor, order *models.Order) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if order.UserID != actor.UserID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to caller")
	}
	return nil
}
