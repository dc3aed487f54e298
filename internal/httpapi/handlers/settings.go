package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/chat-dashboard/internal/common"
	"github.com/suPer8Hu/chat-dashboard/internal/httpapi/middleware"
	"github.com/suPer8Hu/chat-dashboard/internal/metrics"
	"github.com/suPer8Hu/chat-dashboard/internal/settings"
)

// multipartOverhead is the room left for the settings field and multipart
// framing on top of the logo ceiling.
const multipartOverhead = 64 << 10

func (h *Handler) GetSettings(c *gin.Context) {
	s, err := h.Settings.Current(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	common.OK(c, s)
}

func (h *Handler) SettingsHistory(c *gin.Context) {
	list, err := h.Settings.History(c.Request.Context(), 20)
	if err != nil {
		h.respondError(c, err)
		return
	}
	common.OK(c, list)
}

// UpdateSettings accepts either a JSON patch body or multipart/form-data
// with a "settings" JSON field and an optional "logo" image.
func (h *Handler) UpdateSettings(c *gin.Context) {
	caller, _ := middleware.CurrentIdentity(c)

	patch, logo, ok := h.readSettingsUpdate(c)
	if !ok {
		return
	}

	s, err := h.Settings.Update(c.Request.Context(), caller.Role, patch, logo)
	metrics.SettingsUpdated(patch.IsThemeOnly(), err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	common.OK(c, s)
}

func (h *Handler) readSettingsUpdate(c *gin.Context) (settings.Patch, *settings.LogoUpload, bool) {
	maxLogo := h.Cfg.MaxLogoBytes

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, multipartOverhead))
		if err != nil {
			common.Fail(c, http.StatusBadRequest, common.CodeInvalidJSON, "cannot read body")
			return nil, nil, false
		}
		patch, err := settings.ParsePatch(body)
		if err != nil {
			h.respondError(c, err)
			return nil, nil, false
		}
		return patch, nil, true
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxLogo+multipartOverhead)
	if err := c.Request.ParseMultipartForm(maxLogo + multipartOverhead); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			common.Fail(c, http.StatusRequestEntityTooLarge, common.CodeLogoTooLarge, logoTooLargeMsg(maxLogo))
			return nil, nil, false
		}
		common.Fail(c, http.StatusBadRequest, common.CodeInvalidPatch, "invalid multipart form")
		return nil, nil, false
	}

	patch, err := settings.ParsePatch([]byte(c.Request.FormValue("settings")))
	if err != nil {
		h.respondError(c, err)
		return nil, nil, false
	}

	fh, err := c.FormFile("logo")
	if errors.Is(err, http.ErrMissingFile) {
		return patch, nil, true
	}
	if err != nil {
		common.Fail(c, http.StatusBadRequest, common.CodeInvalidLogo, "invalid logo upload")
		return nil, nil, false
	}
	if fh.Size > maxLogo {
		common.Fail(c, http.StatusRequestEntityTooLarge, common.CodeLogoTooLarge, logoTooLargeMsg(maxLogo))
		return nil, nil, false
	}

	f, err := fh.Open()
	if err != nil {
		h.respondError(c, err)
		return nil, nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxLogo+1))
	if err != nil {
		h.respondError(c, err)
		return nil, nil, false
	}
	if int64(len(data)) > maxLogo {
		common.Fail(c, http.StatusRequestEntityTooLarge, common.CodeLogoTooLarge, logoTooLargeMsg(maxLogo))
		return nil, nil, false
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		common.Fail(c, http.StatusBadRequest, common.CodeInvalidLogo, "logo must be an image")
		return nil, nil, false
	}

	return patch, &settings.LogoUpload{Data: data}, true
}

func logoTooLargeMsg(limit int64) string {
	return fmt.Sprintf("logo exceeds %d bytes", limit)
}

func (h *Handler) Branding(c *gin.Context) {
	s, err := h.Settings.Current(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	common.OK(c, s.Branding())
}

func (h *Handler) Themes(c *gin.Context) {
	common.OK(c, settings.Themes)
}
