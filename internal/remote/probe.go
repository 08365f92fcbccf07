package remote

import (
	"context"
	"net/http"
	"time"
)

const probeTimeout = 3 * time.Second

// Probe returns a connectivity check against baseURL. The check is a
// side channel distinct from any failed data request: it only decides
// whether a missing credential means "redirect to login" or "offline,
// keep the local cache".
func Probe(baseURL string) func() bool {
	client := &http.Client{Timeout: probeTimeout}

	return func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodHead, baseURL, nil)
		if err != nil {
			return false
		}

		resp, err := client.Do(req)
		if err != nil {
			return false
		}
		resp.Body.Close()

		// Any response at all means the backend is reachable.
		return true
	}
}
