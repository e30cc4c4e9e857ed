package handlers

import (
	"net/http"

	"osvillage/internal/observability"
	"osvillage/internal/services"

	"github.com/gin-gonic/gin"
)

// GenerateReportRequest is the body of POST /api/report/generate
type GenerateReportRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
}

// ReportHandler serves /api/report
type ReportHandler struct {
	reportService services.ReportServiceInterface
	logger        *observability.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService services.ReportServiceInterface, logger *observability.Logger) *ReportHandler {
	return &ReportHandler{reportService: reportService, logger: logger}
}

// GenerateReport handles POST /api/report/generate
func (h *ReportHandler) GenerateReport(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "generate_report")
	defer observability.FinishSpan(span, nil)

	var req GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}

	report, err := h.reportService.GenerateReport(ctx, req.PlayerID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetReport handles GET /api/report/:report_id
func (h *ReportHandler) GetReport(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_report")
	defer observability.FinishSpan(span, nil)

	c.JSON(http.StatusOK, h.reportService.GetReport(ctx, c.Param("report_id")))
}
