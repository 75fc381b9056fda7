package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/valentinpelus/survey-crm/internal/middleware"
	"github.com/valentinpelus/survey-crm/pkg/access"
	"github.com/valentinpelus/survey-crm/pkg/audit"
	"github.com/valentinpelus/survey-crm/pkg/backup"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FullBackup downloads settings and every feedback record as one JSON file
func (h *Handler) FullBackup(c *gin.Context) {
	ctx := c.Request.Context()
	settings, err := h.settings.Get(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	records, err := h.feedback.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	now := h.now()
	body, err := json.MarshalIndent(backup.NewFull(settings, records, now), "", "  ")
	if err != nil {
		respondError(c, fmt.Errorf("failed to encode backup: %w", err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, backup.FullFileName(now)))
	c.Data(http.StatusOK, "application/json", body)
}

// FullRestore wipes settings and feedback and re-inserts the uploaded backup
func (h *Handler) FullRestore(c *gin.Context) {
	var in backup.Full
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, backup.ErrEmptyBackup.Error())
		return
	}
	if err := in.Validate(); err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if in.Settings != nil {
		prepared, err := access.PrepareSettings(*in.Settings, nil)
		if err != nil {
			respondError(c, err)
			return
		}
		in.Settings = &prepared
	}
	if err := h.settings.Replace(ctx, in.Settings); err != nil {
		respondError(c, err)
		return
	}
	if err := h.feedback.ReplaceAll(ctx, in.Feedback); err != nil {
		respondError(c, err)
		return
	}

	log.Warn().Bool("settings", in.Settings != nil).Int("feedback", len(in.Feedback)).Msg("Full system restore completed")
	h.record(c, audit.Entry{
		Action:  audit.ActionFullRestore,
		Actor:   middleware.Actor(c),
		Details: map[string]interface{}{"feedback": len(in.Feedback), "settings": in.Settings != nil},
	})
	c.JSON(http.StatusOK, gin.H{"message": "Full system restore successful"})
}

// ExcelBackup downloads every feedback record as a flattened workbook
func (h *Handler) ExcelBackup(c *gin.Context) {
	ctx := c.Request.Context()
	settings, err := h.settings.Get(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	records, err := h.feedback.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := backup.WriteExcel(&buf, records, settings.Questions); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, backup.ExcelFileName))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExcelRestore upserts the rows of an uploaded workbook by feedback id
func (h *Handler) ExcelRestore(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "Missing Excel file")
		return
	}
	file, err := fh.Open()
	if err != nil {
		respondError(c, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	settings, err := h.settings.Get(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	records, err := backup.ReadExcel(file, settings.Questions)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	n, err := h.feedback.UpsertMany(ctx, records)
	if err != nil {
		respondError(c, err)
		return
	}

	log.Info().Int("rows", len(records)).Int("restored", n).Msg("Excel restore completed")
	h.record(c, audit.Entry{
		Action:  audit.ActionExcelRestore,
		Actor:   middleware.Actor(c),
		Details: map[string]interface{}{"rows": len(records), "restored": n},
	})
	c.JSON(http.StatusOK, gin.H{"message": "Restore successful", "count": n})
}
