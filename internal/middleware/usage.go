package middleware

import (
	"log"
	"net/http"

	"github.com/bra3n/bra3n/internal/database"
)

// UsageTracking counts authenticated API requests against the user's plan period
func UsageTracking(usageRepo database.UsageRepositoryInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Only count requests with an authenticated user
			user := UserFromContext(r)
			if user != nil {
				if err := usageRepo.RecordAPICall(r.Context(), user.ID); err != nil {
					log.Printf("Failed to record api usage: %v", err)
					// Don't fail the request if usage tracking fails
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
