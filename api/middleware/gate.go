package middleware

import (
	"context"
	"net/http"

	"github.com/shopora-app/shopora-backend/internal/authgate"
	"github.com/shopora-app/shopora-backend/pkg/enums"
	"github.com/shopora-app/shopora-backend/pkg/logger"
)

// Gate guards page routes with the auth gate. Requests that are not
// authenticated, or not authorized for the required role, are redirected
// instead of receiving a JSON error. Authorized requests proceed with the
// actor seeded into the context.
func Gate(gate *authgate.Gate, required enums.UserRole, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if gate == nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			decision := gate.Evaluate(r.Context(), bearerToken(r), r.URL.RequestURI(), required)
			if decision.State != authgate.StateAuthorized {
				http.Redirect(w, r, decision.RedirectURL, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, decision.UserID.String())
			ctx = context.WithValue(ctx, ctxRole, string(decision.Role))
			ctx = context.WithValue(ctx, ctxAccessID, decision.AccessID)

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    decision.UserID.String(),
					"actor_role": string(decision.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
