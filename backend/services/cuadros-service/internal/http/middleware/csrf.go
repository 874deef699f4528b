package middleware

import (
	"net/http"

	"github.com/gorilla/csrf"
)

// CSRFOptions configure form protection.
type CSRFOptions struct {
	Key            []byte
	Secure         bool
	TrustedOrigins []string
	ErrorHandler   http.Handler
}

// CSRF protects every unsafe method with a token embedded in the forms.
// Over plain HTTP requests are marked as such so the origin check does not
// demand an HTTPS referer.
func CSRF(opts CSRFOptions) func(http.Handler) http.Handler {
	csrfOpts := []csrf.Option{
		csrf.Secure(opts.Secure),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.FieldName("csrf_token"),
		csrf.CookieName("cuadros_csrf"),
	}
	if len(opts.TrustedOrigins) > 0 {
		csrfOpts = append(csrfOpts, csrf.TrustedOrigins(opts.TrustedOrigins))
	}
	if opts.ErrorHandler != nil {
		csrfOpts = append(csrfOpts, csrf.ErrorHandler(opts.ErrorHandler))
	}
	protect := csrf.Protect(opts.Key, csrfOpts...)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		if opts.Secure {
			return protected
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			protected.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}
