package middleware

import (
	"net/http"

	"github.com/koxixo/orders-backend/api/responses"
	"github.com/koxixo/orders-backend/pkg/enums"
	pkgerrors "github.com/koxixo/orders-backend/pkg/errors"
	"github.com/koxixo/orders-backend/pkg/logger"
)

// RequireRole gates a subtree to the named roles. Admin always passes.
func RequireRole(logg *logger.Logger, roles ...enums.UserRole) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles)+1)
	allowed[string(enums.UserRoleAdmin)] = true
	for _, role := range roles {
		allowed[string(role)] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allowed[RoleFromContext(r.Context())] {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
