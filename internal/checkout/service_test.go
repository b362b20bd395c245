package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
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

type testDatabase struct {
	db *gorm.DB
}

func (d *testDatabase) DB() *gorm.DB { return d.db }

func (d *testDatabase) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return d.db.Transaction(fn)
}

type stubNotifier struct {
	events []notifications.Event
	err    error
}

func (n *stubNotifier) Dispatch(_ context.Context, event notifications.Event) error {
	n.events = append(n.events, event)
	return n.err
}

type stubMailer struct {
	sent []mailer.Confirmation
	to   []string
	err  error
}

func (m *stubMailer) SendOrderConfirmation(_ context.Context, to string, data mailer.Confirmation) error {
	m.to = append(m.to, to)
	m.sent = append(m.sent, data)
	return m.err
}

type fixture struct {
	db       *gorm.DB
	svc      Service
	notifier *stubNotifier
	mailer   *stubMailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.LineItem{},
		&models.Order{},
		&models.Invoice{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "test"})
	gate := inventory.NewGate()
	repo := orders.NewRepository(db)
	builder, err := orders.NewBuilder(repo, gate, logg)
	if err != nil {
		t.Fatalf("builder: %v", err)
	}
	registry, err := payments.NewDefaultRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	notifier := &stubNotifier{}
	mail := &stubMailer{}
	svc, err := NewService(
		&testDatabase{db: db},
		users.NewDirectory(db),
		gate,
		registry,
		builder,
		repo,
		cart.NewRepository(db),
		notifier,
		mail,
		logg,
	)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	return &fixture{db: db, svc: svc, notifier: notifier, mailer: mail}
}

func (f *fixture) seedUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		ID:       uuid.New(),
		Username: username,
		Name:     "Test Customer",
		Email:    username + "@example.com",
	}
	if err := f.db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (f *fixture) seedProduct(t *testing.T, name, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:    uuid.New(),
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
	if err := f.db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func shippingFixture() orders.ShippingSnapshot {
	return orders.ShippingSnapshot{
		FirstName: "Lena",
		LastName:  "Ferrer",
		Phone:     "555-0119",
		Address:   "8 Yeast Way",
		City:      "Springfield",
		State:     "IL",
		ZipCode:   "62702",
	}
}

func actorFor(user *models.User) orders.Actor {
	return orders.Actor{UserID: user.ID, Username: user.Username, Role: enums.RoleCustomer}
}

func TestCheckoutHappyPathCash(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.seedUser(t, "lena")
	croissant := f.seedProduct(t, "Croissant", "3.50", 10)

	detail, err := f.svc.Checkout(context.Background(), actorFor(user), Request{
		Items:         []orders.BuildItem{{ProductID: croissant.ID, Qty: 4}},
		PaymentMethod: payments.MethodCash,
		Shipping:      shippingFixture(),
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if detail.Order.Status != enums.OrderStatusPending {
		t.Fatalf("expected PENDING, got %s", detail.Order.Status)
	}
	if !detail.Order.TotalAmount.Equal(decimal.RequireFromString("14.00")) {
		t.Fatalf("expected total 14.00, got %s", detail.Order.TotalAmount)
	}
	if detail.Invoice == nil || detail.Invoice.InvoiceNumber != "INV-"+detail.Order.OrderNumber {
		t.Fatalf("unexpected invoice %+v", detail.Invoice)
	}

	var persisted models.Order
	if err := f.db.First(&persisted, "id = ?", detail.Order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if persisted.PaymentStatus == nil || *persisted.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("expected persisted pending payment, got %v", persisted.PaymentStatus)
	}

	var product models.Product
	if err := f.db.First(&product, "id = ?", croissant.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if product.Stock != 6 {
		t.Fatalf("expected stock 6, got %d", product.Stock)
	}

	if len(f.mailer.to) != 1 || f.mailer.to[0] != "lena@example.com" {
		t.Fatalf("expected confirmation email to lena, got %v", f.mailer.to)
	}
	if len(f.notifier.events) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(f.notifier.events))
	}
	if f.notifier.events[0].Type != enums.NotificationTypeOrderCreated {
		t.Fatalf("expected ORDER_CREATED, got %s", f.notifier.events[0].Type)
	}
}

func TestCheckoutCreditCardPersistsMaskedReference(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.seedUser(t, "marc")
	tarte := f.seedProduct(t, "Tarte Tatin", "15.00", 3)

	detail, err := f.svc.Checkout(context.Background(), actorFor(user), Request{
		Items:          []orders.BuildItem{{ProductID: tarte.ID, Qty: 1}},
		PaymentMethod:  payments.MethodCreditCard,
		PaymentDetails: payments.Details{CardNumber: "4111111111111234"},
		Shipping:       shippingFixture(),
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	var persisted models.Order
	if err := f.db.First(&persisted, "id = ?", detail.Order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if persisted.PaymentStatus == nil || *persisted.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("expected PAID, got %v", persisted.PaymentStatus)
	}
	if persisted.PaymentReference == nil || *persisted.PaymentReference != "CARD-****1234" {
		t.Fatalf("unexpected reference %v", persisted.PaymentReference)
	}
}

func TestCheckoutUnsupportedMethodLeavesNothingBehind(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.seedUser(t, "nina")
	scone := f.seedProduct(t, "Scone", "2.75", 5)

	_, err := f.svc.Checkout(context.Background(), actorFor(user), Request{
		Items:         []orders.BuildItem{{ProductID: scone.ID, Qty: 1}},
		PaymentMethod: "crypto",
		Shipping:      shippingFixture(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation, got %v", err)
	}

	var count int64
	if err := f.db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no orders, got %d", count)
	}
	var product models.Product
	if err := f.db.First(&product, "id = ?", scone.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if product.Stock != 5 {
		t.Fatalf("expected stock untouched, got %d", product.Stock)
	}
}

func TestCheckoutInsufficientStockFailsFast(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.seedUser(t, "omar")
	eclair := f.seedProduct(t, "Eclair", "4.00", 2)

	_, err := f.svc.Checkout(context.Background(), actorFor(user), Request{
		Items:         []orders.BuildItem{{ProductID: eclair.ID, Qty: 3}},
		PaymentMethod: payments.MethodCash,
		Shipping:      shippingFixture(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(f.notifier.events) != 0 || len(f.mailer.sent) != 0 {
		t.Fatal("failed checkout must not notify or email")
	}
}

func TestCheckoutSurvivesEmailAndNotifyFailures(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.mailer.err = errors.New("smtp refused")
	f.notifier.err = errors.New("redis refused")
	user := f.seedUser(t, "pia")
	loaf := f.seedProduct(t, "Country Loaf", "8.00", 4)

	detail, err := f.svc.Checkout(context.Background(), actorFor(user), Request{
		Items:         []orders.BuildItem{{ProductID: loaf.ID, Qty: 1}},
		PaymentMethod: payments.MethodCash,
		Shipping:      shippingFixture(),
	})
	if err != nil {
		t.Fatalf("side-channel failures must not fail checkout: %v", err)
	}
	if detail.Order == nil {
		t.Fatal("expected committed order")
	}
}

func TestCheckoutFromCartConvertsAndClears(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.seedUser(t, "rosa")
	brioche := f.seedProduct(t, "Brioche", "5.25", 10)
	madeleine := f.seedProduct(t, "Madeleine", "1.75", 20)

	stored := &models.Cart{ID: uuid.New(), UserID: user.ID}
	if err := f.db.Create(stored).Error; err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	cartID := stored.ID
	for _, item := range []models.LineItem{
		{ID: uuid.New(), CartID: &cartID, Quantity: 2, ProductID: brioche.ID, ProductName: brioche.Name, UnitPrice: brioche.Price},
		{ID: uuid.New(), CartID: &cartID, Quantity: 4, ProductID: madeleine.ID, ProductName: madeleine.Name, UnitPrice: madeleine.Price},
	} {
		rec := item
		if err := f.db.Create(&rec).Error; err != nil {
			t.Fatalf("seed cart item: %v", err)
		}
	}

	detail, err := f.svc.CheckoutFromCart(context.Background(), actorFor(user), CartRequest{
		PaymentMethod: payments.MethodBankTransfer,
		Shipping:      shippingFixture(),
	})
	if err != nil {
		t.Fatalf("checkout from cart: %v", err)
	}

	// 2*5.25 + 4*1.75
	if !detail.Order.TotalAmount.Equal(decimal.RequireFromString("17.50")) {
		t.Fatalf("expected total 17.50, got %s", detail.Order.TotalAmount)
	}
	if len(detail.Items) != 2 {
		t.Fatalf("expected 2 order lines, got %d", len(detail.Items))
	}

	var remaining int64
	if err := f.db.Model(&models.LineItem{}).Where("cart_id = ?", cartID).Count(&remaining).Error; err != nil {
		t.Fatalf("count cart items: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected cart cleared, got %d items", remaining)
	}

	var persisted models.Order
	if err := f.db.First(&persisted, "id = ?", detail.Order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if persisted.PaymentReference == nil || *persisted.PaymentReference != "BT-"+persisted.OrderNumber {
		t.Fatalf("unexpected transfer reference %v", persisted.PaymentReference)
	}
}

func TestCheckoutFromCartEmptyCart(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.seedUser(t, "sol")

	_, err := f.svc.CheckoutFromCart(context.Background(), actorFor(user), CartRequest{
		PaymentMethod: payments.MethodCash,
		Shipping:      shippingFixture(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation for empty cart, got %v", err)
	}
}
