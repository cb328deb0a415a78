package activity

import (
	"net/http"

	"github.com/npezzotti/go-roomreg/internal/auth"
)

// Middleware records the request before handing it to next. It never blocks
// or rejects a request; the identity, if any, must already be in the context.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		actor, ok := auth.Identity(req.Context())
		if !ok {
			actor = Anonymous
		}

		r.Record(req.Context(), actor, req.Method, req.URL.Path)
		next.ServeHTTP(w, req)
	})
}
