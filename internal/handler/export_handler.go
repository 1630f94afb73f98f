package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/course-scheduler-api/internal/dto"
	"github.com/campushq/course-scheduler-api/internal/service"
	appErrors "github.com/campushq/course-scheduler-api/pkg/errors"
	"github.com/campushq/course-scheduler-api/pkg/response"
)

// scheduleExporter renders schedules and resolves signed download tokens.
type scheduleExporter interface {
	Export(ctx context.Context, req dto.ExportScheduleRequest) (*dto.ExportScheduleResponse, error)
	ResolveDownload(token string) (*service.ScheduleDownload, error)
}

// ExportHandler manages schedule export endpoints.
type ExportHandler struct {
	exports scheduleExporter
}

// NewExportHandler constructs handler.
func NewExportHandler(exports scheduleExporter) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Export godoc
// @Summary Render a schedule option to PDF or CSV
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body dto.ExportScheduleRequest true "Schedule option and format"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedules/export [post]
func (h *ExportHandler) Export(c *gin.Context) {
	var req dto.ExportScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}

	result, err := h.exports.Export(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, requestMeta(c))
}

// Download godoc
// @Summary Stream a previously exported schedule artifact
// @Tags Exports
// @Produce application/octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /schedules/export/{token}/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	download, err := h.exports.ResolveDownload(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	info, err := download.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to stat export artifact"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	c.DataFromReader(http.StatusOK, info.Size(), download.Format.ContentType(), download.File, nil)
}
