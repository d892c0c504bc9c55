package http

import (
	"net/http"
	"strings"
)

// MethodOverride lets HTML forms reach PUT, PATCH and DELETE routes through a _method field.
// It must wrap the engine because gin picks the route before any middleware runs.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && isForm(r.Header.Get("Content-Type")) {
			if errParse := r.ParseForm(); errParse == nil {
				switch method := strings.ToUpper(strings.TrimSpace(r.PostForm.Get("_method"))); method {
				case http.MethodPut, http.MethodPatch, http.MethodDelete:
					r.Method = method
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

func isForm(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.EqualFold(strings.TrimSpace(mediaType), "application/x-www-form-urlencoded")
}
