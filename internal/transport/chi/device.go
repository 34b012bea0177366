package chi

import (
	"net/http"

	"github.com/cityhealth/directory/internal/domain"
)

// DeviceHeader carries the anonymous device identity that keys history,
// interactions and dismissals.
const DeviceHeader = "X-Device-ID"

const maxDeviceIDLength = 64

// DeviceMiddleware validates X-Device-ID and stores it in the request context.
// Requests without the header proceed anonymously.
func DeviceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(DeviceHeader)
		if id == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !validDeviceID(id) {
			writeError(w, http.StatusBadRequest, CodeBadRequest,
				"X-Device-ID must be 1-64 characters of letters, digits, '-' or '_'")
			return
		}
		next.ServeHTTP(w, r.WithContext(domain.ContextWithDevice(r.Context(), id)))
	})
}

func validDeviceID(id string) bool {
	if len(id) > maxDeviceIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
