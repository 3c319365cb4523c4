package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/schoolsync/lms-service/internal/models"
	"github.com/schoolsync/lms-service/internal/repositories"
	"github.com/schoolsync/lms-service/internal/services"
	"github.com/schoolsync/lms-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	users services.UserService
}

func NewUserHandler(users services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		users:       users,
	}
}

// Login authenticates by roll number and password
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} SuccessResponse{data=models.User}
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	user, err := h.users.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: user})
}

// CreateUser provisions an account; admin only
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.UserCreateRequest true "User"
// @Success 201 {object} models.User
// @Failure 409 {object} ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	actorID := h.requireUserID(c)
	if actorID == "" {
		return
	}

	var req models.UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating user", "roll_number", req.RollNumber, "role", req.Role)

	user, err := h.users.CreateUser(c.Request.Context(), actorID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid id parameter",
		})
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	actorID := h.requireUserID(c)
	if actorID == "" {
		return
	}

	var req models.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	user, err := h.users.UpdateUser(c.Request.Context(), actorID, c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	actorID := h.requireUserID(c)
	if actorID == "" {
		return
	}

	h.LogRequest(c, "Deleting user", "target", c.Param("id"))

	if err := h.users.DeleteUser(c.Request.Context(), actorID, c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListUsers lists users with optional filtering
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Param q query string false "Search query (name, email or roll number)"
// @Param role query string false "Filter by role (student, teacher, admin)"
// @Param class_id query int false "Filter by class"
// @Success 200 {object} map[string]interface{} "User list response"
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	h.LogRequest(c, "Listing users")

	filters := h.parseUserFilters(c)

	users, total, err := h.users.ListUsers(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	page := (filters.Offset / max(filters.Limit, 1)) + 1

	c.JSON(http.StatusOK, map[string]interface{}{
		"users": users,
		"total": total,
		"page":  page,
		"size":  filters.Limit,
	})
}

// CreateClass adds a class to the directory; admin only.
func (h *UserHandler) CreateClass(c *gin.Context) {
	actorID := h.requireUserID(c)
	if actorID == "" {
		return
	}

	var req models.ClassCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	class, err := h.users.CreateClass(c.Request.Context(), actorID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, class)
}

func (h *UserHandler) ListClasses(c *gin.Context) {
	classes, err := h.users.ListClasses(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: classes})
}

// CreateSubject adds a subject to a class; admin only.
func (h *UserHandler) CreateSubject(c *gin.Context) {
	actorID := h.requireUserID(c)
	if actorID == "" {
		return
	}

	var req models.SubjectCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	subject, err := h.users.CreateSubject(c.Request.Context(), actorID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, subject)
}

// ListSubjects lists the subjects of one class (?class_id=N).
func (h *UserHandler) ListSubjects(c *gin.Context) {
	classID, err := strconv.ParseUint(c.Query("class_id"), 10, 32)
	if err != nil || classID == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid class_id parameter",
		})
		return
	}

	subjects, err := h.users.ListSubjects(c.Request.Context(), uint(classID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: subjects})
}

// AssignTeacher links a teacher to a subject; admin only.
func (h *UserHandler) AssignTeacher(c *gin.Context) {
	actorID := h.requireUserID(c)
	if actorID == "" {
		return
	}
	subjectID := h.parseIDParam(c, "id")
	if subjectID == 0 {
		return
	}

	var req models.TeacherAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Assigning teacher", "teacher_id", req.TeacherID, "subject_id", subjectID)

	if err := h.users.AssignTeacher(c.Request.Context(), actorID, req.TeacherID, subjectID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "assigned"})
}

// CreateChapter adds a chapter to a subject.
func (h *UserHandler) CreateChapter(c *gin.Context) {
	actorID := h.requireUserID(c)
	if actorID == "" {
		return
	}

	var req models.ChapterCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	chapter, err := h.users.CreateChapter(c.Request.Context(), actorID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, chapter)
}

// ListChapters lists the chapters of one subject in position order.
func (h *UserHandler) ListChapters(c *gin.Context) {
	subjectID := h.parseIDParam(c, "id")
	if subjectID == 0 {
		return
	}

	chapters, err := h.users.ListChapters(c.Request.Context(), subjectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: chapters})
}

func (h *UserHandler) parseUserFilters(c *gin.Context) *repositories.UserFilters {
	filters := &repositories.UserFilters{
		Limit:  20,
		Offset: 0,
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		if size, err := strconv.Atoi(c.DefaultQuery("size", "20")); err == nil && size > 0 && size <= 100 {
			filters.Limit = size
		}
		filters.Offset = (page - 1) * filters.Limit
	}

	if q := c.Query("q"); q != "" {
		filters.Search = &q
	}
	if roleStr := c.Query("role"); roleStr != "" {
		role := models.UserRole(roleStr)
		filters.Role = &role
	}
	if classStr := c.Query("class_id"); classStr != "" {
		if classID, err := strconv.ParseUint(classStr, 10, 32); err == nil {
			id := uint(classID)
			filters.ClassID = &id
		}
	}

	return filters
}
