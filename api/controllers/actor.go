package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ovenlight/bakeshop-backend/api/middleware"
	"github.com/ovenlight/bakeshop-backend/internal/orders"
	"github.com/ovenlight/bakeshop-backend/pkg/enums"
	pkgerrors "github.com/ovenlight/bakeshop-backend/pkg/errors"
)

// actorFromRequest reconstructs the authenticated actor seeded by the auth
// middleware.
func actorFromRequest(r *http.Request) (orders.Actor, error) {
	ctx := r.Context()

	rawID := middleware.UserIDFromContext(ctx)
	if rawID == "" {
		return orders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return orders.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}

	role, err := enums.ParseRole(middleware.RoleFromContext(ctx))
	if err != nil {
		return orders.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid role")
	}

	return orders.Actor{
		UserID:   userID,
		Username: middleware.UsernameFromContext(ctx),
		Role:     role,
	}, nil
}
