package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ovenlight/bakeshop-backend/api/responses"
	"github.com/ovenlight/bakeshop-backend/api/validators"
	checkoutsvc "github.com/ovenlight/bakeshop-backend/internal/checkout"
	"github.com/ovenlight/bakeshop-backend/internal/orders"
	"github.com/ovenlight/bakeshop-backend/internal/payments"
	"github.com/ovenlight/bakeshop-backend/pkg/db/models"
	pkgerrors "github.com/ovenlight/bakeshop-backend/pkg/errors"
	"github.com/ovenlight/bakeshop-backend/pkg/logger"
)

// Checkout places an order from an explicit item list.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]orders.BuildItem, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, orders.BuildItem{ProductID: item.ProductID, Qty: item.Qty})
		}

		detail, err := svc.Checkout(r.Context(), actor, checkoutsvc.Request{
			Items:          items,
			PaymentMethod:  payload.PaymentMethod,
			PaymentDetails: payload.PaymentDetails.toDomain(),
			ClientTotal:    payload.Total,
			Shipping:       payload.Shipping.toDomain(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderDetailResponse(detail))
	}
}

// CheckoutFromCart converts the caller's stored cart into an order.
func CheckoutFromCart(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartCheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.CheckoutFromCart(r.Context(), actor, checkoutsvc.CartRequest{
			PaymentMethod:  payload.PaymentMethod,
			PaymentDetails: payload.PaymentDetails.toDomain(),
			Shipping:       payload.Shipping.toDomain(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderDetailResponse(detail))
	}
}

type checkoutRequest struct {
	Items          []checkoutItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod  string                `json:"payment_method" validate:"required"`
	PaymentDetails paymentDetailsRequest `json:"payment_details"`
	Total          *decimal.Decimal      `json:"total,omitempty"`
	Shipping       shippingRequest       `json:"shipping" validate:"required"`
}

type cartCheckoutRequest struct {
	PaymentMethod  string                `json:"payment_method" validate:"required"`
	PaymentDetails paymentDetailsRequest `json:"payment_details"`
	Shipping       shippingRequest       `json:"shipping" validate:"required"`
}

type checkoutItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Qty       int       `json:"qty" validate:"required,gt=0"`
}

type paymentDetailsRequest struct {
	CardNumber     string `json:"card_number,omitempty"`
	CardHolderName string `json:"card_holder_name,omitempty"`
}

func (p paymentDetailsRequest) toDomain() payments.Details {
	return payments.Details{
		CardNumber:     p.CardNumber,
		CardHolderName: p.CardHolderName,
	}
}

type shippingRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	ZipCode   string `json:"zip_code" validate:"required"`
}

func (s shippingRequest) toDomain() orders.ShippingSnapshot {
	return orders.ShippingSnapshot{
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Phone:     s.Phone,
		Address:   s.Address,
		City:      s.City,
		State:     s.State,
		ZipCode:   s.ZipCode,
	}
}

type orderDetailResponse struct {
	Order   orderResponse      `json:"order"`
	Items   []lineItemResponse `json:"items"`
	Invoice *invoiceResponse   `json:"invoice,omitempty"`
}

type orderResponse struct {
	ID               uuid.UUID       `json:"id"`
	OrderNumber      string          `json:"order_number"`
	OrderDate        string          `json:"order_date"`
	Status           string          `json:"status"`
	PaymentMethod    string          `json:"payment_method"`
	PaymentStatus    *string         `json:"payment_status,omitempty"`
	PaymentReference *string         `json:"payment_reference,omitempty"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Shipping         shippingRequest `json:"shipping"`
}

type lineItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Qty         int             `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
	ImageURL    *string         `json:"image_url,omitempty"`
}

type invoiceResponse struct {
	ID            uuid.UUID `json:"id"`
	InvoiceNumber string    `json:"invoice_number"`
	DateCreated   string    `json:"date_created"`
}

func newOrderDetailResponse(detail *orders.Detail) orderDetailResponse {
	if detail == nil || detail.Order == nil {
		return orderDetailResponse{}
	}
	resp := orderDetailResponse{
		Order: newOrderResponse(*detail.Order),
		Items: make([]lineItemResponse, 0, len(detail.Items)),
	}
	for _, item := range detail.Items {
		resp.Items = append(resp.Items, newLineItemResponse(item))
	}
	if detail.Invoice != nil {
		resp.Invoice = &invoiceResponse{
			ID:            detail.Invoice.ID,
			InvoiceNumber: detail.Invoice.InvoiceNumber,
			DateCreated:   detail.Invoice.DateCreated.UTC().Format(time.RFC3339),
		}
	}
	return resp
}

func newOrderResponse(order models.Order) orderResponse {
	resp := orderResponse{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		OrderDate:     order.OrderDate.UTC().Format(time.RFC3339),
		Status:        string(order.Status),
		PaymentMethod: order.PaymentMethod,
		TotalAmount:   order.TotalAmount,
		Shipping: shippingRequest{
			FirstName: order.ShippingFirstName,
			LastName:  order.ShippingLastName,
			Phone:     order.ShippingPhone,
			Address:   order.ShippingAddress,
			City:      order.ShippingCity,
			State:     order.ShippingState,
			ZipCode:   order.ShippingZipCode,
		},
	}
	if order.PaymentStatus != nil {
		status := string(*order.PaymentStatus)
		resp.PaymentStatus = &status
	}
	resp.PaymentReference = order.PaymentReference
	return resp
}

func newLineItemResponse(item models.LineItem) lineItemResponse {
	return lineItemResponse{
		ID:          item.ID,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		Qty:         item.Quantity,
		UnitPrice:   item.UnitPrice,
		Total:       item.LineTotal(),
		ImageURL:    item.ImageURL,
	}
}
