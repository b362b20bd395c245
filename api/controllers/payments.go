package controllers

import (
	"net/http"

	"github.com/ovenlight/bakeshop-backend/api/responses"
	"github.com/ovenlight/bakeshop-backend/internal/payments"
	pkgerrors "github.com/ovenlight/bakeshop-backend/pkg/errors"
	"github.com/ovenlight/bakeshop-backend/pkg/logger"
)

// ListPaymentMethods is public; it advertises the supported methods.
func ListPaymentMethods(registry *payments.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if registry == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment registry unavailable"))
			return
		}
		responses.WriteSuccess(w, registry.Methods())
	}
}
