package util

import "net/http"

// LimitBody rejects requests declaring a body larger than size upfront,
// and caps the reader for the ones that do not declare it
func LimitBody(size int64) func(h http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > size {
				http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, size)
			h.ServeHTTP(w, r)
		})
	}
}
