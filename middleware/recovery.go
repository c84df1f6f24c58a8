package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/dcode-github/realestate_console/utils"
)

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				utils.Logger.WithField("stack", string(debug.Stack())).Errorf("Panic recovered: %v", rec)
				utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal,
					"Internal server error", nil, fmt.Errorf("panic: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
