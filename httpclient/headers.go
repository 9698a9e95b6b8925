package httpclient

import (
	"net/http"

	"github.com/vraj-wappnet/go-hms-client/session"
)

// BuildHeaders merges caller-supplied headers with the authorization header
// derived from the session snapshot. Pure: same snapshot and extra headers
// always produce the same result, and neither input is modified.
func BuildHeaders(snap session.Session, extra http.Header) http.Header {
	headers := make(http.Header, len(extra)+1)
	for k, values := range extra {
		for _, v := range values {
			headers.Add(k, v)
		}
	}
	if snap.AccessToken != "" {
		headers.Set("Authorization", "Bearer "+snap.AccessToken)
	}
	return headers
}
