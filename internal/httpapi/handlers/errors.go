package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/chat-dashboard/internal/analytics"
	"github.com/suPer8Hu/chat-dashboard/internal/auth"
	"github.com/suPer8Hu/chat-dashboard/internal/common"
	"github.com/suPer8Hu/chat-dashboard/internal/httpapi/middleware"
	"github.com/suPer8Hu/chat-dashboard/internal/settings"
	"github.com/suPer8Hu/chat-dashboard/internal/storage"
	"github.com/suPer8Hu/chat-dashboard/internal/users"
)

type errMapping struct {
	target error
	status int
	code   int
}

// Domain errors whose message is safe to show to the caller.
var errMappings = []errMapping{
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, common.CodeInvalidCredentials},

	{users.ErrNotFound, http.StatusNotFound, common.CodeNotFound},
	{users.ErrDuplicateUsername, http.StatusConflict, common.CodeDuplicateUsername},
	{users.ErrInvalidRole, http.StatusBadRequest, common.CodeInvalidRole},
	{users.ErrMissingField, http.StatusBadRequest, common.CodeMissingField},
	{users.ErrPasswordRequired, http.StatusBadRequest, common.CodeMissingField},
	{users.ErrSelfDeletion, http.StatusBadRequest, common.CodeSelfDeletion},
	{users.ErrSelfPasswordReset, http.StatusBadRequest, common.CodeSelfPasswordReset},

	{settings.ErrForbidden, http.StatusForbidden, common.CodeForbidden},
	{settings.ErrConfigurationMissing, http.StatusServiceUnavailable, common.CodeConfigurationMissing},
	{settings.ErrInvalidPatch, http.StatusBadRequest, common.CodeInvalidPatch},
	{settings.ErrUnknownField, http.StatusBadRequest, common.CodeUnknownField},
	{settings.ErrEmptyField, http.StatusBadRequest, common.CodeEmptyField},
	{settings.ErrInvalidTheme, http.StatusBadRequest, common.CodeInvalidTheme},

	{storage.ErrNotImage, http.StatusBadRequest, common.CodeInvalidLogo},
	{storage.ErrEmptyUpload, http.StatusBadRequest, common.CodeInvalidLogo},

	{analytics.ErrInvalidRange, http.StatusBadRequest, common.CodeInvalidRange},
	{analytics.ErrInvalidTimeRange, http.StatusBadRequest, common.CodeInvalidTimeRange},
}

// respondError writes the envelope for err. Unknown errors are logged and
// reported as a generic 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	for _, m := range errMappings {
		if errors.Is(err, m.target) {
			common.Fail(c, m.status, m.code, err.Error())
			return
		}
	}
	h.logger.Error("request failed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"request_id", c.GetString(middleware.RequestIDKey),
		"error", err,
	)
	common.Fail(c, http.StatusInternalServerError, common.CodeInternal, "internal error")
}
