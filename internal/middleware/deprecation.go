package middleware

import (
	"net/http"
	"time"
)

// Deprecation returns middleware that marks a route as deprecated with RFC 8594
// headers. The Sunset header uses the HTTP-date format; when successor is set,
// a Link header points clients at the replacement route.
func Deprecation(sunset time.Time, successor string) func(http.Handler) http.Handler {
	sunsetStr := sunset.UTC().Format(http.TimeFormat)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Deprecation", "true")
			w.Header().Set("Sunset", sunsetStr)
			if successor != "" {
				w.Header().Set("Link", "<"+successor+`>; rel="successor-version"`)
			}
			next.ServeHTTP(w, r)
		})
	}
}
