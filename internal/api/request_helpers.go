package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/api/shared"
)

// TimezoneHeader names the IANA zone of the client, used for day boundaries.
const TimezoneHeader = "X-Timezone"

// requireUserID extracts the authenticated user's UUID from the request
// context and writes a 401 response if it is missing.
func requireUserID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return uuid.Nil, false
	}
	return userID, true
}

// requestTimezone returns the client's time zone: the tz query parameter if
// set, otherwise the X-Timezone header. Empty means the server default.
func requestTimezone(r *http.Request) string {
	if tz := r.URL.Query().Get("tz"); tz != "" {
		return tz
	}
	return r.Header.Get(TimezoneHeader)
}

// decodeBody decodes a JSON body into v, writing a 400 response on failure.
// With optional set an empty body is accepted.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}, optional bool) bool {
	var err error
	if optional {
		err = shared.DecodeOptionalJSON(r, v)
	} else {
		err = shared.DecodeJSON(r, v)
	}
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	return true
}
