package proxy

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"bookproxy/pkg/proxy/types"
	"bookproxy/pkg/telemetry/logging"
)

// WriteJSONResponse writes a JSON response to the HTTP response writer.
// It sets the appropriate content-type header and handles marshaling errors.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteErrorResponse writes the error envelope, filling in the request ID
// from r's context and the Retry-After header when set.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, errResp *types.ErrorResponse) error {
	if errResp.RequestID == "" {
		errResp.RequestID = logging.GetRequestID(r.Context())
	}
	if errResp.RetryAfter > 0 {
		w.Header().Set(types.HeaderRetryAfter, strconv.Itoa(RetryAfterSeconds(errResp.RetryAfter)))
	}
	return WriteJSONResponse(w, errResp.HTTPStatusCode(), errResp)
}

// RetryAfterSeconds rounds d up to whole seconds, minimum 1.
func RetryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// MethodNotAllowed writes a 405 with the Allow header.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	_ = WriteErrorResponse(w, r, types.NewMethodNotAllowedError())
}

// NotFound writes the 404 envelope for an unknown path.
func NotFound(w http.ResponseWriter, r *http.Request) {
	_ = WriteErrorResponse(w, r, types.NewRouteNotFoundError())
}
