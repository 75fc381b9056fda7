package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/valentinpelus/survey-crm/pkg/audit"
)

type clientLog struct {
	Level   string                 `json:"level"`
	Message string                 `json:"message"`
	User    string                 `json:"user"`
	Details map[string]interface{} `json:"details"`
}

// ClientLog stores a log line posted by the browser client. It always answers ok.
func (h *Handler) ClientLog(c *gin.Context) {
	var in clientLog
	if err := c.ShouldBindJSON(&in); err == nil && (in.Message != "" || in.Level != "") {
		h.record(c, audit.Entry{
			Action:  audit.ActionClientLog,
			Actor:   in.User,
			Level:   in.Level,
			Message: in.Message,
			Details: in.Details,
		})
	}
	c.String(http.StatusOK, "ok")
}

// RecentLogs lists the newest audit entries
func (h *Handler) RecentLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.audit.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
