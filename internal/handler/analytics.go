package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/valentinpelus/survey-crm/pkg/analytics"
)

// Dashboard runs a dashboard query over the final records
func (h *Handler) Dashboard(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	settings, err := h.settings.Get(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	records, err := h.feedback.ListFinal(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	questions := analytics.SortQuestions(settings.Questions)
	dash, err := analytics.Run(records, questions, h.processor.Policy(), q, h.now(), h.loc)
	if err != nil {
		respondError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	c.JSON(http.StatusOK, dash)
}

// PatientHistory returns every visit of one patient, newest first
func (h *Handler) PatientHistory(c *gin.Context) {
	nationalID := strings.TrimSpace(c.Param("nationalId"))
	records, err := h.feedback.ByNationalID(c.Request.Context(), nationalID)
	if err != nil {
		respondError(c, err)
		return
	}

	groups := analytics.GroupByNationalID(records)
	visits := records[:0:0]
	if len(groups) > 0 {
		visits = groups[0].Records
	}
	c.JSON(http.StatusOK, gin.H{"nationalId": nationalID, "count": len(visits), "visits": visits})
}

func parseQuery(c *gin.Context) (analytics.Query, error) {
	q := analytics.Query{
		Range:   analytics.TimeRange(c.DefaultQuery("range", string(analytics.RangeAll))),
		Source:  c.DefaultQuery("source", "all"),
		Search:  c.Query("search"),
		SortKey: c.Query("sort"),
		View:    c.DefaultQuery("view", analytics.ViewDefault),
	}

	switch strings.ToLower(c.DefaultQuery("order", "desc")) {
	case "asc":
	case "desc":
		q.SortDesc = true
	default:
		return q, fmt.Errorf("%w: order must be asc or desc", errBadRequest)
	}

	switch q.Range {
	case analytics.RangeToday, analytics.RangeWeekly, analytics.RangeMonthly, analytics.RangeAll:
	case analytics.RangeCustom:
		from, err := analytics.ParseJalali(c.Query("from"))
		if err != nil {
			return q, fmt.Errorf("%w: from: %v", errBadRequest, err)
		}
		to, err := analytics.ParseJalali(c.Query("to"))
		if err != nil {
			return q, fmt.Errorf("%w: to: %v", errBadRequest, err)
		}
		q.From, q.To = from, to
	default:
		return q, fmt.Errorf("%w: unknown range %q", errBadRequest, q.Range)
	}

	if q.View != analytics.ViewDefault && q.View != analytics.ViewUrgent {
		return q, fmt.Errorf("%w: unknown view %q", errBadRequest, q.View)
	}

	var err error
	if q.Page, err = intParam(c, "page"); err != nil {
		return q, err
	}
	if q.PageSize, err = intParam(c, "pageSize"); err != nil {
		return q, err
	}
	return q, nil
}

func intParam(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", errBadRequest, name)
	}
	return n, nil
}
