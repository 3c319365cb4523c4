package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolsync/lms-service/internal/services"
	"github.com/schoolsync/lms-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ProgressHandler struct {
	BaseHandler
	progress services.ProgressService
	export   services.ExportService
}

func NewProgressHandler(progress services.ProgressService, export services.ExportService, logger utils.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler: NewBaseHandler(logger),
		progress:    progress,
		export:      export,
	}
}

// GetMyProgress returns per-subject progress for the authenticated student
// @Summary Get own progress
// @Tags progress
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.SubjectProgress}
// @Failure 401 {object} ErrorResponse
// @Router /students/me/progress [get]
func (h *ProgressHandler) GetMyProgress(c *gin.Context) {
	studentID := h.requireUserID(c)
	if studentID == "" {
		return
	}

	h.LogRequest(c, "Getting student progress")

	progress, err := h.progress.StudentProgress(c.Request.Context(), studentID, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: progress})
}

// GetStudentProgress returns per-subject progress for any student;
// teacher and admin only.
func (h *ProgressHandler) GetStudentProgress(c *gin.Context) {
	actorID := h.requireUserID(c)
	if actorID == "" {
		return
	}
	studentID := c.Param("student_id")
	if studentID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid student_id parameter",
		})
		return
	}

	progress, err := h.progress.StudentProgress(c.Request.Context(), actorID, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: progress})
}

// GetClassPerformance returns the roll-up for one subject
// @Summary Get class performance
// @Tags progress
// @Produce json
// @Param id path uint true "Subject ID"
// @Success 200 {object} models.ClassPerformance
// @Failure 404 {object} ErrorResponse
// @Router /subjects/{id}/performance [get]
func (h *ProgressHandler) GetClassPerformance(c *gin.Context) {
	actorID := h.requireUserID(c)
	if actorID == "" {
		return
	}
	subjectID := h.parseIDParam(c, "id")
	if subjectID == 0 {
		return
	}

	h.LogRequest(c, "Getting class performance", "subject_id", subjectID)

	performance, err := h.progress.ClassPerformance(c.Request.Context(), actorID, subjectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, performance)
}

// ExportClassPerformance streams the per-student table as a file
// attachment. Format defaults to xlsx; ?format=csv selects CSV.
func (h *ProgressHandler) ExportClassPerformance(c *gin.Context) {
	actorID := h.requireUserID(c)
	if actorID == "" {
		return
	}
	subjectID := h.parseIDParam(c, "id")
	if subjectID == 0 {
		return
	}

	format := c.DefaultQuery("format", "xlsx")
	h.LogRequest(c, "Exporting class performance", "subject_id", subjectID, "format", format)

	var (
		data        []byte
		fileName    string
		contentType string
		err         error
	)
	switch format {
	case "csv":
		data, fileName, err = h.export.ExportClassPerformanceCSV(c.Request.Context(), actorID, subjectID)
		contentType = "text/csv"
	case "xlsx":
		data, fileName, err = h.export.ExportClassPerformanceXLSX(c.Request.Context(), actorID, subjectID)
		contentType = xlsxContentType
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Unsupported export format",
		})
		return
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, contentType, data)
}

// GetDashboardSummary returns the admin landing counters.
func (h *ProgressHandler) GetDashboardSummary(c *gin.Context) {
	actorID := h.requireUserID(c)
	if actorID == "" {
		return
	}

	h.LogRequest(c, "Getting dashboard summary")

	summary, err := h.progress.DashboardSummary(c.Request.Context(), actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
