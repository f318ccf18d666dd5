// internal/app/system/limits/limits.go
package limits

import "net/http"

// Request body size limits for form posts.
const (
	// MaxRegistrationFormSize bounds one wizard post. The whole form
	// travels with every step, so this covers all sections at once.
	MaxRegistrationFormSize = 256 << 10 // 256 KB

	// MaxLoginFormSize bounds the admin login post.
	MaxLoginFormSize = 8 << 10 // 8 KB
)

// Body caps the request body at n bytes. Reads past the cap fail, so
// ParseForm reports an error and handlers answer 400.
func Body(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}
