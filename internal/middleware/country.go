package middleware

import (
	"context"
	"net/http"
	"strings"
)

type countryContextKey struct{}

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// Country tags each request context with the caller's ISO country code so
// request logs can attribute contributions by origin. Lookup failures are
// ignored; the tag is best effort.
func Country(lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if lookup != nil {
				ip := clientIPForRateLimit(r)
				if code, err := lookup(ip); err == nil && code != "" {
					ctx := context.WithValue(r.Context(), countryContextKey{}, strings.ToUpper(code))
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CountryFromContext returns the tagged country code, or "".
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(countryContextKey{}).(string); ok {
		return v
	}
	return ""
}
