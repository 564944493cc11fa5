package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/yungbote/courserate-backend/internal/domain/aggregates"
	"github.com/yungbote/courserate-backend/internal/http/response"
	"github.com/yungbote/courserate-backend/internal/platform/logger"
	"github.com/yungbote/courserate-backend/internal/services"
)

type ReviewHandler struct {
	log           *logger.Logger
	reviewService services.ReviewService
}

func NewReviewHandler(log *logger.Logger, reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		log:           log.With("handler", "ReviewHandler"),
		reviewService: reviewService,
	}
}

type createReviewRequest struct {
	CourseRef string `json:"courseRef"`
	domainagg.ReviewFields
}

// POST /api/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	h.create(c, req.CourseRef, req.ReviewFields)
}

// POST /api/courses/:slug/reviews
func (h *ReviewHandler) CreateCourseReview(c *gin.Context) {
	var fields domainagg.ReviewFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	h.create(c, c.Param("slug"), fields)
}

func (h *ReviewHandler) create(c *gin.Context, courseRef string, fields domainagg.ReviewFields) {
	review, err := h.reviewService.Create(c.Request.Context(), courseRef, fields)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"review": review})
}

// GET /api/reviews/:id
func (h *ReviewHandler) GetReview(c *gin.Context) {
	id, ok := reviewIDParam(c)
	if !ok {
		return
	}
	review, err := h.reviewService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"review": review})
}

// PUT /api/reviews/:id
// Omitted fields keep their stored value.
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	id, ok := reviewIDParam(c)
	if !ok {
		return
	}
	var fields domainagg.ReviewFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	review, err := h.reviewService.Update(c.Request.Context(), id, fields)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"review": review})
}

// DELETE /api/reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	id, ok := reviewIDParam(c)
	if !ok {
		return
	}
	if err := h.reviewService.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "review deleted", "id": id})
}

// GET /api/me/reviews
func (h *ReviewHandler) ListMyReviews(c *gin.Context) {
	reviews, err := h.reviewService.ListMine(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reviews": reviews})
}

// GET /api/courses/:slug/reviews
func (h *ReviewHandler) ListCourseReviews(c *gin.Context) {
	reviews, err := h.reviewService.ListByCourse(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reviews": reviews})
}

var errReviewNotFound = errors.New("review not found")

// reviewIDParam treats a malformed id like an unknown one.
func reviewIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusNotFound, string(domainagg.CodeNotFound), errReviewNotFound)
		return uuid.Nil, false
	}
	return id, true
}
