package handler

import (
	"contest_hub/internal/api/middleware"
	"contest_hub/internal/common"
	"net/http"
)

// Middleware is the shape of chi middleware; handlers receive the authenticator this way.
type Middleware = func(http.Handler) http.Handler

// callerEmail reads the authenticated email, answering 401 itself when it is missing.
func callerEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, ok := middleware.GetEmailFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return "", false
	}
	return email, true
}
