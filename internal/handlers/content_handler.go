package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolsync/lms-service/internal/models"
	"github.com/schoolsync/lms-service/internal/services"
	"github.com/schoolsync/lms-service/internal/utils"
)

type ContentHandler struct {
	BaseHandler
	contentService services.ContentService
}

func NewContentHandler(contentService services.ContentService, logger utils.Logger) *ContentHandler {
	return &ContentHandler{
		BaseHandler:    NewBaseHandler(logger),
		contentService: contentService,
	}
}

// UploadContent creates a content item from a multipart form. The "file"
// part is optional; without it the form must carry an external url.
// @Summary Upload content
// @Tags content
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} models.ContentItem
// @Failure 400 {object} ErrorResponse
// @Router /content [post]
func (h *ContentHandler) UploadContent(c *gin.Context) {
	actorID := h.requireUserID(c)
	if actorID == "" {
		return
	}

	var req models.ContentCreateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	h.LogRequest(c, "Uploading content", "chapter_id", req.ChapterID, "type", req.Type)

	item, err := h.contentService.Upload(c.Request.Context(), actorID, &req, file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *ContentHandler) GetContent(c *gin.Context) {
	contentID := h.parseIDParam(c, "id")
	if contentID == 0 {
		return
	}

	item, err := h.contentService.GetContent(c.Request.Context(), contentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// GetDownloadURL returns a short-lived link for the stored file.
func (h *ContentHandler) GetDownloadURL(c *gin.Context) {
	contentID := h.parseIDParam(c, "id")
	if contentID == 0 {
		return
	}

	url, err := h.contentService.GetDownloadURL(c.Request.Context(), contentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *ContentHandler) ListByChapter(c *gin.Context) {
	chapterID := h.parseIDParam(c, "chapter_id")
	if chapterID == 0 {
		return
	}

	items, err := h.contentService.ListByChapter(c.Request.Context(), chapterID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: items})
}

func (h *ContentHandler) DeleteContent(c *gin.Context) {
	contentID := h.parseIDParam(c, "id")
	if contentID == 0 {
		return
	}
	actorID := h.requireUserID(c)
	if actorID == "" {
		return
	}

	h.LogRequest(c, "Deleting content", "content_id", contentID)

	if err := h.contentService.DeleteContent(c.Request.Context(), actorID, contentID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RecordView ingests one analytics ping for the authenticated student.
func (h *ContentHandler) RecordView(c *gin.Context) {
	contentID := h.parseIDParam(c, "id")
	if contentID == 0 {
		return
	}
	studentID := h.requireUserID(c)
	if studentID == "" {
		return
	}

	var req models.ContentViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.contentService.RecordView(c.Request.Context(), studentID, contentID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}
