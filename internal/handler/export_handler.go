package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/perf-review-api/internal/service"
	"github.com/noah-isme/perf-review-api/pkg/response"
)

// ExportHandler serves rendered review reports.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// CycleReport godoc
// @Summary Download a cycle's review report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Review cycle ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /review-cycles/{id}/report [get]
func (h *ExportHandler) CycleReport(c *gin.Context) {
	format := service.ReportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.service.CycleReport(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
