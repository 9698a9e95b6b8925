package httpclient

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/vraj-wappnet/go-hms-client/session"
)

// RequestTransform mutates an outbound request before it is sent. Transforms
// run in registration order on the original request and again on the single
// refresh-triggered replay, so the replay always sees fresh headers.
type RequestTransform func(*http.Request) error

// AuthHeaderTransform injects the bearer authorization header derived from
// the store's snapshot at send time.
func AuthHeaderTransform(store *session.Store) RequestTransform {
	return func(req *http.Request) error {
		for k, values := range BuildHeaders(store.Snapshot(), req.Header) {
			req.Header[k] = values
		}
		return nil
	}
}

// RequestIDTransform tags each outbound request with a unique X-Request-ID
// so client and backend logs can be correlated.
func RequestIDTransform() RequestTransform {
	return func(req *http.Request) error {
		if req.Header.Get("X-Request-ID") == "" {
			req.Header.Set("X-Request-ID", uuid.New().String())
		}
		return nil
	}
}
