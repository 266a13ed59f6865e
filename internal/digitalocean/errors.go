package digitalocean

import "fmt"

// Error is a failure reported by the DigitalOcean API itself. The API
// identifies failures with a short id ("unauthorized", "not_found") and a
// human readable message; both are kept verbatim. An *Error means the
// provider understood the request and rejected it, so retrying is pointless.
type Error struct {
	ID      string `json:"id"`
	Message string `json:"message"`

	// StatusCode is the HTTP status of the response that carried the error.
	StatusCode int `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s - %s", e.ID, e.Message)
}
