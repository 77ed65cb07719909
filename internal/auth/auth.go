// internal/auth/auth.go
package auth

import (
	"context"
	"net/http"
	"strconv"

	"github.com/brightpost/mailing-backend/internal/apperrors"
	"github.com/brightpost/mailing-backend/internal/model"
	"github.com/brightpost/mailing-backend/internal/repository"
)

type contextKey int

const actorKey contextKey = iota

// Middleware resolves the acting account from the X-Account-ID header.
// Real session machinery is out of scope here; the upstream proxy is
// trusted to have authenticated the id. Inactive accounts are rejected.
func Middleware(accounts repository.AccountRepositoryInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idStr := r.Header.Get("X-Account-ID")
			if idStr == "" {
				http.Error(w, "missing X-Account-ID", http.StatusUnauthorized)
				return
			}
			id, err := strconv.Atoi(idStr)
			if err != nil {
				http.Error(w, "invalid X-Account-ID", http.StatusUnauthorized)
				return
			}

			account, err := accounts.GetByID(id)
			if err != nil {
				if apperrors.IsNotFound(err) {
					http.Error(w, "unknown account", http.StatusUnauthorized)
					return
				}
				http.Error(w, "failed to load account", http.StatusInternalServerError)
				return
			}
			if !account.Active {
				http.Error(w, "account is inactive", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), account)))
		})
	}
}

func WithActor(ctx context.Context, account *model.Account) context.Context {
	return context.WithValue(ctx, actorKey, account)
}

// ActorFromContext returns the acting account, or nil outside the
// middleware.
func ActorFromContext(ctx context.Context) *model.Account {
	account, _ := ctx.Value(actorKey).(*model.Account)
	return account
}
