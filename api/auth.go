/*
auth.go - Shared-secret authentication for the device webhook

PURPOSE:
  Devices and push agents cannot hold user sessions, so the webhook is
  protected by a shared secret configured on the server. The key arrives
  either in the x-auth-key header or, for agents that can only set URLs,
  the authKey query parameter.

  The comparison is constant-time and always enforced. An unset server key
  fails closed: the webhook rejects everything rather than silently
  becoming public.
*/
package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/warp/attendance-engine/attendance"
)

// AuthKeyHeader is the shared-secret request header.
const AuthKeyHeader = "x-auth-key"

// AuthKeyQueryParam is the fallback for senders that can only set URLs.
const AuthKeyQueryParam = "authKey"

// RequireAuthKey rejects requests whose shared secret does not match the
// configured key. Authentication failures are request-level: nothing in the
// body is processed.
func RequireAuthKey(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expected == "" {
				writeError(w, http.StatusServiceUnavailable, "Webhook auth key not configured", nil)
				return
			}

			presented := r.Header.Get(AuthKeyHeader)
			if presented == "" {
				presented = r.URL.Query().Get(AuthKeyQueryParam)
			}

			if subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) != 1 {
				writeError(w, http.StatusUnauthorized, "Invalid or missing auth key", attendance.ErrAuthenticationFailed)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
