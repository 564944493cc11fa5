package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/courserate-backend/internal/http/response"
	"github.com/yungbote/courserate-backend/internal/platform/logger"
	"github.com/yungbote/courserate-backend/internal/services"
)

type CourseHandler struct {
	log           *logger.Logger
	courseService services.CourseService
}

func NewCourseHandler(log *logger.Logger, courseService services.CourseService) *CourseHandler {
	return &CourseHandler{
		log:           log.With("handler", "CourseHandler"),
		courseService: courseService,
	}
}

// GET /api/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseService.List(c.Request.Context())
	if err != nil {
		h.log.Error("ListCourses failed", "error", err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"courses": courses})
}

// POST /api/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req services.CreateCourseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	course, err := h.courseService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"course": course})
}

// GET /api/courses/:slug
func (h *CourseHandler) GetCourse(c *gin.Context) {
	detail, err := h.courseService.GetDetail(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": detail.Course, "reviews": detail.Reviews})
}
