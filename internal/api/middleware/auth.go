package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/catalina-labs/usuarios-api/internal/common"
	"github.com/catalina-labs/usuarios-api/internal/domain/model"
)

type contextKey string

const userCtxKey contextKey = "currentUser"

// TokenResolver maps a bearer token to its active owner. A nil user with a
// nil error means "no identity" regardless of the underlying reason.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*model.User, error)
}

// BearerToken extracts the credential from the Authorization header. Both
// "Bearer <token>" and a bare token are accepted.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	if len(header) > 6 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// Authenticator resolves the bearer token and puts the user in the request
// context. The 401 body is identical whether the token is missing, unknown,
// or its owner is inactive or deleted.
func Authenticator(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				common.RespondWithError(w, http.StatusUnauthorized, "Token de autenticación requerido")
				return
			}

			user, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				common.RespondWithDomainError(w, err)
				return
			}
			if user == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Token inválido o sesión expirada")
				return
			}

			ctx := context.WithValue(r.Context(), userCtxKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireMinRole gates a route on privilege level. It assumes Authenticator
// already ran; a valid identity with an insufficient role gets 403, never 401.
func RequireMinRole(minRol string) func(http.Handler) http.Handler {
	minLevel := model.RoleLevel(minRol)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := CurrentUser(r.Context())
			if !ok {
				common.RespondWithError(w, http.StatusUnauthorized, "Token de autenticación requerido")
				return
			}
			if model.RoleLevel(user.Rol) < minLevel {
				common.RespondWithError(w, http.StatusForbidden, "Se requieren privilegios de administrador")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminOnly restricts a route to administrators.
func AdminOnly(next http.Handler) http.Handler {
	return RequireMinRole(model.RoleAdministrador)(next)
}

// CurrentUser returns the authenticated user stored by Authenticator.
func CurrentUser(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userCtxKey).(*model.User)
	return user, ok
}

// ClientIP returns the best-available network-origin signal for the request.
// chi's RealIP middleware already folded proxy headers into RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
