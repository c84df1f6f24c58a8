package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dcode-github/realestate_console/controllers"
	"github.com/dcode-github/realestate_console/utils"
)

func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := utils.Logger.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path})

		tokenHeader := r.Header.Get("Authorization")
		if tokenHeader == "" {
			logger.Warn("Missing Authorization header")
			utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing Authorization header", nil)
			return
		}

		tokenParts := strings.Split(tokenHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			logger.Warn("Invalid Authorization header format")
			utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid Authorization header format", nil)
			return
		}

		claims, err := utils.ValidateJWT(tokenParts[1])
		if err != nil {
			utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid or expired token", nil, err)
			return
		}

		ctx := context.WithValue(r.Context(), controllers.ClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
