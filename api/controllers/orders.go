package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/koxixo/orders-backend/api/middleware"
	"github.com/koxixo/orders-backend/api/responses"
	"github.com/koxixo/orders-backend/api/validators"
	internalorders "github.com/koxixo/orders-backend/internal/orders"
	"github.com/koxixo/orders-backend/pkg/enums"
	pkgerrors "github.com/koxixo/orders-backend/pkg/errors"
	"github.com/koxixo/orders-backend/pkg/logger"
	"github.com/koxixo/orders-backend/pkg/pagination"
)

const maxSearchLen = 120

type createOrderRequest struct {
	Title       string           `json:"title" validate:"required,min=1,max=200"`
	Description string           `json:"description" validate:"max=2000"`
	Value       *decimal.Decimal `json:"value"`
	Priority    string           `json:"priority" validate:"omitempty,oneof=low medium high"`
	Dimensions  *string          `json:"dimensions" validate:"omitempty,max=200"`
	Finish      *string          `json:"finish" validate:"omitempty,max=200"`
	Material    *string          `json:"material" validate:"omitempty,max=200"`
}

type editOrderRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Value       *decimal.Decimal `json:"value"`
	Priority    *string          `json:"priority" validate:"omitempty,oneof=low medium high"`
	Dimensions  *string          `json:"dimensions" validate:"omitempty,max=200"`
	Finish      *string          `json:"finish" validate:"omitempty,max=200"`
	Material    *string          `json:"material" validate:"omitempty,max=200"`
}

type transitionRequest struct {
	Action string  `json:"action" validate:"required"`
	Reason *string `json:"reason" validate:"omitempty,max=500"`
}

// CreateOrder opens a new order in pending state.
func CreateOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateOrder(r.Context(), actor, internalorders.CreateOrderInput{
			Title:       req.Title,
			Description: req.Description,
			Value:       req.Value,
			Priority:    enums.OrderPriority(req.Priority),
			Dimensions:  req.Dimensions,
			Finish:      req.Finish,
			Material:    req.Material,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ListOrders returns a filtered, sorted page of orders.
func ListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := buildListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sort := internalorders.Sort{
			Field: strings.TrimSpace(r.URL.Query().Get("sort")),
			Desc:  strings.EqualFold(r.URL.Query().Get("order"), "desc"),
		}

		list, err := svc.ListOrders(r.Context(), filters, sort, pagination.Params{Limit: limit, Offset: offset})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// ExportOrders streams orders in ascending-ID pages via an opaque cursor.
func ExportOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.MaxLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		page, err := svc.StreamOrders(r.Context(), cursor, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// GetOrder returns a single order by ID.
func GetOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// EditOrder applies a partial update while the order is still editable.
func EditOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req editOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalorders.EditOrderInput{
			Title:       req.Title,
			Description: req.Description,
			Value:       req.Value,
			Dimensions:  req.Dimensions,
			Finish:      req.Finish,
			Material:    req.Material,
		}
		if req.Priority != nil {
			priority := enums.OrderPriority(*req.Priority)
			input.Priority = &priority
		}

		order, err := svc.EditOrder(r.Context(), actor, orderID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// TransitionOrder moves an order through its lifecycle.
func TransitionOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req transitionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.TransitionOrder(
			r.Context(),
			actor,
			orderID,
			enums.OrderAction(strings.TrimSpace(req.Action)),
			internalorders.TransitionPayload{Reason: req.Reason},
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

func actorFromContext(r *http.Request) (internalorders.Actor, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID <= 0 {
		return internalorders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return internalorders.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid role")
	}
	return internalorders.Actor{UserID: userID, Role: role}, nil
}

func parseOrderID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if raw == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || orderID <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id").WithDetails(map[string]any{"order_id": raw})
	}
	return orderID, nil
}

func buildListFilters(r *http.Request) (internalorders.ListFilters, error) {
	filters := internalorders.ListFilters{
		Search:      validators.SanitizeString(r.URL.Query().Get("q"), maxSearchLen),
		CreatorName: validators.SanitizeString(r.URL.Query().Get("creator"), maxSearchLen),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("priority")); raw != "" {
		priority, err := enums.ParseOrderPriority(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priority filter")
		}
		filters.Priority = &priority
	}

	from, err := validators.ParseQueryTime(r, "created_from")
	if err != nil {
		return filters, err
	}
	filters.CreatedFrom = from

	to, err := validators.ParseQueryTime(r, "created_to")
	if err != nil {
		return filters, err
	}
	filters.CreatedTo = to

	return filters, nil
}
