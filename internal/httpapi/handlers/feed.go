package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/chat-dashboard/internal/analytics"
	"github.com/suPer8Hu/chat-dashboard/internal/chatfeed"
	"github.com/suPer8Hu/chat-dashboard/internal/common"
	"github.com/suPer8Hu/chat-dashboard/internal/settings"
)

// feed loads the chat records from the configured webhook. Missing settings
// behave like an unconfigured webhook.
func (h *Handler) feed(ctx context.Context) (chatfeed.Result, error) {
	url := ""
	s, err := h.Settings.Current(ctx)
	switch {
	case err == nil:
		url = s.WebhookURL
	case errors.Is(err, settings.ErrConfigurationMissing):
	default:
		return chatfeed.Result{}, err
	}
	return h.Feed.Fetch(ctx, url), nil
}

// ChatSessions returns the raw records, live or sample.
func (h *Handler) ChatSessions(c *gin.Context) {
	res, err := h.feed(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("X-Feed-Origin", res.Origin)
	common.OK(c, res.Records)
}

// Sessions returns grouped conversations filtered by first-message date.
func (h *Handler) Sessions(c *gin.Context) {
	f := analytics.SessionFilter{Order: analytics.OrderDesc}
	switch o := strings.ToLower(c.Query("order")); o {
	case "", string(analytics.OrderDesc):
	case string(analytics.OrderAsc):
		f.Order = analytics.OrderAsc
	default:
		common.Fail(c, http.StatusBadRequest, common.CodeInvalidRange, "order must be asc or desc")
		return
	}
	if s := c.Query("start"); s != "" {
		t, err := h.Analytics.ParseDate(s)
		if err != nil {
			h.respondError(c, err)
			return
		}
		f.After = t
	}
	if s := c.Query("end"); s != "" {
		t, err := h.Analytics.ParseDate(s)
		if err != nil {
			h.respondError(c, err)
			return
		}
		f.Before = t
	}

	res, err := h.feed(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("X-Feed-Origin", res.Origin)
	common.OK(c, analytics.ListSessions(res.Records, f))
}

func (h *Handler) AnalyticsReport(c *gin.Context) {
	q := analytics.ReportQuery{
		Range: c.Query("range"),
		Start: c.Query("start"),
		End:   c.Query("end"),
	}
	if _, _, _, err := h.Analytics.Window(q); err != nil {
		h.respondError(c, err)
		return
	}

	res, err := h.feed(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	rep, err := h.Analytics.Report(res.Records, q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("X-Feed-Origin", res.Origin)
	common.OK(c, rep)
}
