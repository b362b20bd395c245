package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ovenlight/bakeshop-backend/internal/users"
	"github.com/ovenlight/bakeshop-backend/pkg/db"
	"github.com/ovenlight/bakeshop-backend/pkg/db/models"
	"github.com/ovenlight/bakeshop-backend/pkg/enums"
	pkgerrors "github.com/ovenlight/bakeshop-backend/pkg/errors"
	"github.com/ovenlight/bakeshop-backend/pkg/logger"
	"github.com/ovenlight/bakeshop-backend/pkg/redis"
)

const externalIDConstraint = "ux_notifications_external_id"

// Event is the order-facing input to the dispatcher. Either UserID or
// Username identifies the recipient; the dispatcher resolves the other half.
type Event struct {
	ExternalID  string
	Type        enums.NotificationType
	Title       string
	Message     string
	OrderNumber string
	OrderStatus string
	UserID      uuid.UUID
	Username    string
}

// payload is the JSON shape published on the live channels.
type payload struct {
	ID          uuid.UUID              `json:"id"`
	ExternalID  string                 `json:"external_id"`
	Type        enums.NotificationType `json:"type"`
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
	OrderNumber string                 `json:"order_number,omitempty"`
	OrderStatus string                 `json:"order_status,omitempty"`
	Username    string                 `json:"username"`
	CreatedAt   time.Time              `json:"created_at"`
}

// Dispatcher persists a notification once per external id and fans it out to
// the recipient's channel plus the admin broadcast. Publish failures are
// logged, never propagated: the durable row is the source of truth.
type Dispatcher struct {
	repo      Repository
	directory users.Directory
	publisher redis.Publisher
	logg      *logger.Logger
	now       func() time.Time
}

// NewDispatcher wires the dispatcher.
func NewDispatcher(repo Repository, directory users.Directory, publisher redis.Publisher, logg *logger.Logger) (*Dispatcher, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if directory == nil {
		return nil, fmt.Errorf("user directory required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Dispatcher{
		repo:      repo,
		directory: directory,
		publisher: publisher,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// Dispatch runs the persist-then-publish sequence. A duplicate external id is
// treated as already delivered and returns nil without publishing again.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) error {
	if !event.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification type required")
	}
	if event.ExternalID == "" {
		event.ExternalID = uuid.NewString()
	}
	ctx = d.logg.WithField(ctx, "notification_external_id", event.ExternalID)

	recipient, err := d.resolveRecipient(ctx, event)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			d.logg.Warn(ctx, "notification recipient unknown, skipping")
			return nil
		}
		return err
	}

	stored := &models.Notification{
		ID:          uuid.New(),
		ExternalID:  event.ExternalID,
		Type:        event.Type,
		Title:       event.Title,
		Message:     event.Message,
		OrderNumber: event.OrderNumber,
		OrderStatus: event.OrderStatus,
		UserID:      recipient.ID,
		CreatedAt:   d.now().UTC(),
	}
	if err := d.repo.Create(ctx, stored); err != nil {
		if db.IsUniqueViolation(err, externalIDConstraint) {
			d.logg.Debug(ctx, "notification already dispatched")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist notification")
	}

	d.publish(ctx, stored, recipient.Username)
	return nil
}

func (d *Dispatcher) resolveRecipient(ctx context.Context, event Event) (*models.User, error) {
	if event.UserID != uuid.Nil {
		return d.directory.FindByID(ctx, event.UserID)
	}
	if event.Username != "" {
		return d.directory.FindByUsername(ctx, event.Username)
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "notification recipient required")
}

func (d *Dispatcher) publish(ctx context.Context, stored *models.Notification, username string) {
	if d.publisher == nil {
		return
	}

	body, err := json.Marshal(payload{
		ID:          stored.ID,
		ExternalID:  stored.ExternalID,
		Type:        stored.Type,
		Title:       stored.Title,
		Message:     stored.Message,
		OrderNumber: stored.OrderNumber,
		OrderStatus: stored.OrderStatus,
		Username:    username,
		CreatedAt:   stored.CreatedAt,
	})
	if err != nil {
		d.logg.Error(ctx, "encode notification payload", err)
		return
	}

	if err := d.publisher.Publish(ctx, redis.UserNotificationChannel(username), body); err != nil {
		d.logg.Error(ctx, "publish user notification", err)
	}
	if err := d.publisher.Publish(ctx, redis.AdminNotificationChannel(), body); err != nil {
		d.logg.Error(ctx, "publish admin notification", err)
	}
}
