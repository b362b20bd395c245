package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ovenlight/bakeshop-backend/internal/users"
	"github.com/ovenlight/bakeshop-backend/pkg/db/models"
	"github.com/ovenlight/bakeshop-backend/pkg/enums"
	"github.com/ovenlight/bakeshop-backend/pkg/logger"
	"github.com/ovenlight/bakeshop-backend/pkg/redis"
)

type stubPublisher struct {
	published map[string][][]byte
	fail      bool
}

func (p *stubPublisher) Publish(_ context.Context, channel string, body []byte) error {
	if p.fail {
		return errors.New("redis unavailable")
	}
	if p.published == nil {
		p.published = map[string][][]byte{}
	}
	p.published[channel] = append(p.published[channel], body)
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:notifications_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Notification{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		ID:       uuid.New(),
		Username: username,
		Name:     "Test Customer",
		Email:    username + "@example.com",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func newDispatcher(t *testing.T, db *gorm.DB, pub redis.Publisher) *Dispatcher {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test"})
	d, err := NewDispatcher(NewRepository(db), users.NewDirectory(db), pub, logg)
	if err != nil {
		t.Fatalf("build dispatcher: %v", err)
	}
	return d
}

func TestDispatchPersistsAndPublishes(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	user := seedUser(t, db, "paloma")
	pub := &stubPublisher{}
	d := newDispatcher(t, db, pub)

	event := Event{
		Type:        enums.NotificationTypeOrderCreated,
		Title:       "Order received",
		Message:     "Your order ORD-20250812-K4XQ was received.",
		OrderNumber: "ORD-20250812-K4XQ",
		OrderStatus: "PENDING",
		Username:    "paloma",
	}
	if err := d.Dispatch(context.Background(), event); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	var stored models.Notification
	if err := db.First(&stored, "user_id = ?", user.ID).Error; err != nil {
		t.Fatalf("load stored notification: %v", err)
	}
	if stored.ExternalID == "" {
		t.Fatal("expected external id assigned")
	}
	if stored.Type != enums.NotificationTypeOrderCreated {
		t.Fatalf("unexpected type %s", stored.Type)
	}

	userChannel := redis.UserNotificationChannel("paloma")
	if len(pub.published[userChannel]) != 1 {
		t.Fatalf("expected 1 user publish, got %d", len(pub.published[userChannel]))
	}
	if len(pub.published[redis.AdminNotificationChannel()]) != 1 {
		t.Fatalf("expected 1 admin publish")
	}

	var decoded map[string]any
	if err := json.Unmarshal(pub.published[userChannel][0], &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded["order_number"] != "ORD-20250812-K4XQ" {
		t.Fatalf("payload missing order number: %v", decoded)
	}
}

func TestDispatchIsIdempotentPerExternalID(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	seedUser(t, db, "paloma")
	pub := &stubPublisher{}
	d := newDispatcher(t, db, pub)

	event := Event{
		ExternalID: "evt-123",
		Type:       enums.NotificationTypeOrderUpdate,
		Title:      "Order update",
		Message:    "Status changed.",
		Username:   "paloma",
	}
	if err := d.Dispatch(context.Background(), event); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	if err := d.Dispatch(context.Background(), event); err != nil {
		t.Fatalf("second dispatch: %v", err)
	}

	var count int64
	if err := db.Model(&models.Notification{}).Where("external_id = ?", "evt-123").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected single persisted row, got %d", count)
	}
	userChannel := redis.UserNotificationChannel("paloma")
	if len(pub.published[userChannel]) != 1 {
		t.Fatalf("duplicate dispatch must not republish, got %d", len(pub.published[userChannel]))
	}
}

func TestDispatchUnknownRecipientIsSkipped(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	pub := &stubPublisher{}
	d := newDispatcher(t, db, pub)

	event := Event{
		Type:     enums.NotificationTypeOrderUpdate,
		Title:    "Order update",
		Message:  "Status changed.",
		Username: "nobody",
	}
	if err := d.Dispatch(context.Background(), event); err != nil {
		t.Fatalf("dispatch should swallow unknown recipient: %v", err)
	}

	var count int64
	if err := db.Model(&models.Notification{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no rows, got %d", count)
	}
	if len(pub.published) != 0 {
		t.Fatalf("expected no publishes")
	}
}

func TestDispatchSurvivesPublishFailure(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	seedUser(t, db, "paloma")
	d := newDispatcher(t, db, &stubPublisher{fail: true})

	event := Event{
		Type:     enums.NotificationTypeOrderUpdate,
		Title:    "Order update",
		Message:  "Status changed.",
		Username: "paloma",
	}
	if err := d.Dispatch(context.Background(), event); err != nil {
		t.Fatalf("publish failure must not propagate: %v", err)
	}

	var count int64
	if err := db.Model(&models.Notification{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected persisted row despite publish failure, got %d", count)
	}
}

func TestDispatchResolvesUsernameFromUserID(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	user := seedUser(t, db, "tomas")
	pub := &stubPublisher{}
	d := newDispatcher(t, db, pub)

	event := Event{
		Type:    enums.NotificationTypeOrderUpdate,
		Title:   "Order update",
		Message: "Status changed.",
		UserID:  user.ID,
	}
	if err := d.Dispatch(context.Background(), event); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(pub.published[redis.UserNotificationChannel("tomas")]) != 1 {
		t.Fatal("expected publish on the resolved username channel")
	}
}
