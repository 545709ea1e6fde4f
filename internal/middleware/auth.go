package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	commonHttp "github.com/Alturino/storefront/internal/common/http"
	"github.com/Alturino/storefront/internal/common/token"
	"github.com/Alturino/storefront/internal/log"
)

// Auth rejects requests without a valid bearer token and attaches the parsed
// token to the request context.
func Auth(secretKey string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).With().Str(log.KeyTag, "middleware Auth").Logger()
			c := logger.WithContext(r.Context())

			authorization := r.Header.Get(commonHttp.HeaderAuthorization)
			if len(authorization) <= len(commonHttp.BearerPrefix) ||
				!strings.EqualFold(authorization[:len(commonHttp.BearerPrefix)], commonHttp.BearerPrefix) {
				logger.Error().
					Err(commonErrors.ErrEmptyAuth).
					Msg(commonErrors.ErrEmptyAuth.Error())
				commonHttp.WriteFailed(c, w, http.StatusUnauthorized, commonErrors.ErrEmptyAuth)
				return
			}

			raw := authorization[len(commonHttp.BearerPrefix):]
			jwtToken, err := token.Verify(c, secretKey, raw)
			if err != nil {
				logger.Error().Err(err).Msg(err.Error())
				commonHttp.WriteFailed(c, w, http.StatusUnauthorized, commonErrors.ErrTokenInvalid)
				return
			}

			c = token.AttachJwtToken(c, raw, jwtToken)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
