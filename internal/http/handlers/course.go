package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/yanxue-backend/internal/http/response"
	"github.com/yungbote/yanxue-backend/internal/platform/logger"
	"github.com/yungbote/yanxue-backend/internal/services"
)

type CourseHandler struct {
	log               *logger.Logger
	courseService     services.CourseService
	generationService services.GenerationService
}

func NewCourseHandler(log *logger.Logger, courseService services.CourseService, generationService services.GenerationService) *CourseHandler {
	return &CourseHandler{
		log:               log.With("handler", "CourseHandler"),
		courseService:     courseService,
		generationService: generationService,
	}
}

func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courseService.List(c.Request.Context())
	if err != nil {
		h.log.Error("List courses failed", "error", err)
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, courses)
}

func (h *CourseHandler) Create(c *gin.Context) {
	var in services.CourseInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondError(c, err)
		return
	}
	course, err := h.courseService.Create(c.Request.Context(), in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, course)
}

func (h *CourseHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	course, err := h.courseService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, course)
}

// Update also accepts the framework/content/itinerary/assessment snapshots.
func (h *CourseHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var in services.CourseInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondError(c, err)
		return
	}
	course, err := h.courseService.Update(c.Request.Context(), id, in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, course)
}

func (h *CourseHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if err := h.courseService.Delete(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{})
}

// Generations lists the records tagged with this course, oldest first.
func (h *CourseHandler) Generations(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if _, err := h.courseService.Get(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	recs, err := h.generationService.ListByCourse(c.Request.Context(), id.String())
	if err != nil {
		h.log.Error("List course generations failed", "error", err, "course_id", id)
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, recs)
}
