package checkout

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ovenlight/bakeshop-backend/internal/cart"
	"github.com/ovenlight/bakeshop-backend/internal/inventory"
	"github.com/ovenlight/bakeshop-backend/internal/mailer"
	"github.com/ovenlight/bakeshop-backend/internal/notifications"
	"github.com/ovenlight/bakeshop-backend/internal/orders"
	"github.com/ovenlight/bakeshop-backend/internal/payments"
	"github.com/ovenlight/bakeshop-backend/internal/users"
	"github.com/ovenlight/bakeshop-backend/pkg/db/models"
	"github.com/ovenlight/bakeshop-backend/pkg/enums"
	pkgerrors "github.com/ovenlight/bakeshop-backend/pkg/errors"
	"github.com/ovenlight/bakeshop-backend/pkg/logger"
)

// Database is the slice of db.Client checkout needs: a root handle for the
// advisory availability check and the transaction boundary for the build.
type Database interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Notifier mirrors the dispatcher surface; checkout treats it best-effort.
type Notifier interface {
	Dispatch(ctx context.Context, event notifications.Event) error
}

// ItemRequest is one requested product line.
type ItemRequest struct {
	ProductID string
	Qty       int
}

// Request is the direct checkout input after transport validation.
type Request struct {
	Items          []orders.BuildItem
	PaymentMethod  string
	PaymentDetails payments.Details
	ClientTotal    *decimal.Decimal
	Shipping       orders.ShippingSnapshot
}

// CartRequest converts the caller's stored cart instead of explicit items.
type CartRequest struct {
	PaymentMethod  string
	PaymentDetails payments.Details
	Shipping       orders.ShippingSnapshot
}

// Service orchestrates the checkout pipeline end to end.
type Service interface {
	Checkout(ctx context.Context, actor orders.Actor, req Request) (*orders.Detail, error)
	CheckoutFromCart(ctx context.Context, actor orders.Actor, req CartRequest) (*orders.Detail, error)
}

type service struct {
	database  Database
	directory users.Directory
	gate      inventory.Gate
	registry  *payments.Registry
	builder   *orders.Builder
	repo      orders.Repository
	carts     cart.Repository
	notifier  Notifier
	mail      mailer.OrderMailer
	logg      *logger.Logger
}

// NewService wires the checkout orchestrator.
func NewService(
	database Database,
	directory users.Directory,
	gate inventory.Gate,
	registry *payments.Registry,
	builder *orders.Builder,
	repo orders.Repository,
	carts cart.Repository,
	notifier Notifier,
	mail mailer.OrderMailer,
	logg *logger.Logger,
) (Service, error) {
	if database == nil {
		return nil, fmt.Errorf("database required")
	}
	if directory == nil {
		return nil, fmt.Errorf("user directory required")
	}
	if gate == nil {
		return nil, fmt.Errorf("inventory gate required")
	}
	if registry == nil {
		return nil, fmt.Errorf("payment registry required")
	}
	if builder == nil {
		return nil, fmt.Errorf("order builder required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if mail == nil {
		return nil, fmt.Errorf("order mailer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		database:  database,
		directory: directory,
		gate:      gate,
		registry:  registry,
		builder:   builder,
		repo:      repo,
		carts:     carts,
		notifier:  notifier,
		mail:      mail,
		logg:      logg,
	}, nil
}

func (s *service) Checkout(ctx context.Context, actor orders.Actor, req Request) (*orders.Detail, error) {
	owner, err := s.directory.FindByID(ctx, actor.UserID)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown caller identity")
		}
		return nil, err
	}
	return s.run(ctx, owner, orders.BuildInput{
		Items:         req.Items,
		PaymentMethod: req.PaymentMethod,
		ClientTotal:   req.ClientTotal,
		Shipping:      req.Shipping,
	}, req.PaymentDetails)
}

func (s *service) CheckoutFromCart(ctx context.Context, actor orders.Actor, req CartRequest) (*orders.Detail, error) {
	owner, err := s.directory.FindByID(ctx, actor.UserID)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown caller identity")
		}
		return nil, err
	}

	stored, err := s.carts.FindByUser(ctx, owner.ID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	lines, err := s.carts.FindItems(ctx, stored.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart items")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	items := make([]orders.BuildItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, orders.BuildItem{ProductID: line.ProductID, Qty: line.Quantity})
	}
	cartID := stored.ID
	return s.run(ctx, owner, orders.BuildInput{
		Items:         items,
		PaymentMethod: req.PaymentMethod,
		Shipping:      req.Shipping,
		CartID:        &cartID,
	}, req.PaymentDetails)
}

// run executes the pipeline: advisory availability check, method validation,
// transactional build, post-commit payment processing, then best-effort
// email and notification.
func (s *service) run(ctx context.Context, owner *models.User, input orders.BuildInput, details payments.Details) (*orders.Detail, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}

	demands := make([]inventory.Demand, 0, len(input.Items))
	for _, item := range input.Items {
		demands = append(demands, inventory.Demand{ProductID: item.ProductID, Qty: item.Qty})
	}
	if err := s.gate.CheckAvailability(ctx, s.database.DB(), demands); err != nil {
		return nil, err
	}

	strategy, err := s.registry.Resolve(input.PaymentMethod)
	if err != nil {
		return nil, err
	}

	var result *orders.BuildResult
	err = s.database.WithTx(ctx, func(tx *gorm.DB) error {
		var terr error
		result, terr = s.builder.Build(ctx, tx, owner, input)
		return terr
	})
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithOrderNumber(ctx, result.Order.OrderNumber)

	// The order is committed from here on. A payment processing failure
	// surfaces to the caller but never unwinds the order.
	if err := strategy.Process(ctx, result.Order, details); err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePayment(ctx, result.Order.ID, result.Order.PaymentStatus, result.Order.PaymentReference); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store payment outcome")
	}

	s.sendConfirmation(ctx, owner, result)
	s.dispatchCreated(ctx, owner, result.Order)

	return &orders.Detail{Order: result.Order, Items: result.Items, Invoice: result.Invoice}, nil
}

func (s *service) sendConfirmation(ctx context.Context, owner *models.User, result *orders.BuildResult) {
	items := make([]mailer.ConfirmationItem, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, mailer.ConfirmationItem{
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal(),
		})
	}
	err := s.mail.SendOrderConfirmation(ctx, owner.Email, mailer.Confirmation{
		RecipientName: owner.Name,
		OrderNumber:   result.Order.OrderNumber,
		OrderDate:     result.Order.OrderDate.Format("2006-01-02"),
		Total:         result.Order.TotalAmount,
		Items:         items,
	})
	if err != nil {
		s.logg.Error(ctx, "send confirmation email", err)
	}
}

func (s *service) dispatchCreated(ctx context.Context, owner *models.User, order *models.Order) {
	event := notifications.Event{
		ExternalID:  fmt.Sprintf("%s:created", order.OrderNumber),
		Type:        enums.NotificationTypeOrderCreated,
		Title:       "Order received",
		Message:     fmt.Sprintf("Order %s was received and is pending confirmation.", order.OrderNumber),
		OrderNumber: order.OrderNumber,
		OrderStatus: order.Status.String(),
		Username:    owner.Username,
	}
	if err := s.notifier.Dispatch(ctx, event); err != nil {
		s.logg.Error(ctx, "dispatch order created notification", err)
	}
}
