package httpclient

import (
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

// New returns the client used for upstream warehouse API calls. The
// timeout bounds the whole exchange; a login attempt that exceeds it is
// classified as network-unreachable by the caller.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
