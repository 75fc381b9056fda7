package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/valentinpelus/survey-crm/internal/middleware"
	"github.com/valentinpelus/survey-crm/pkg/audit"
	"github.com/valentinpelus/survey-crm/pkg/types"
)

// ListFeedback returns every record, newest first
func (h *Handler) ListFeedback(c *gin.Context) {
	records, err := h.feedback.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetFeedback returns one record by business id
func (h *Handler) GetFeedback(c *gin.Context) {
	f, err := h.feedback.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// SaveFeedback creates or updates a record. New records answer 201.
func (h *Handler) SaveFeedback(c *gin.Context) {
	var in types.Feedback
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid feedback: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	saved, created, err := h.feedback.Upsert(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}

	log.Info().
		Str("id", saved.ID).
		Int64("trackingId", saved.TrackingID).
		Str("status", saved.Status).
		Bool("created", created).
		Msg("Feedback saved")

	if saved.IsFinal() {
		if settings, err := h.settings.Get(ctx); err != nil {
			log.Warn().Err(err).Msg("Could not load questions for urgency check")
		} else {
			h.processor.ProcessSaved(saved, created, settings.Questions)
		}
	} else {
		h.processor.ProcessSaved(saved, created, nil)
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	c.JSON(code, saved)
}

// DeleteFeedback removes a record
func (h *Handler) DeleteFeedback(c *gin.Context) {
	id := c.Param("id")
	if err := h.feedback.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.record(c, audit.Entry{Action: audit.ActionFeedbackDeleted, Actor: middleware.Actor(c), Target: id})
	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}
