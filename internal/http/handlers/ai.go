package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/yanxue-backend/internal/coursegen"
	"github.com/yungbote/yanxue-backend/internal/http/response"
	"github.com/yungbote/yanxue-backend/internal/platform/apierr"
	"github.com/yungbote/yanxue-backend/internal/platform/logger"
	"github.com/yungbote/yanxue-backend/internal/services"
)

const HeaderGenerationRecordID = "X-Generation-Record-Id"

// AIRoutes maps each generation endpoint under /api/ai to its kind.
var AIRoutes = map[string]coursegen.Kind{
	"analyze-demand":     coursegen.KindDemandAnalysis,
	"generate-framework": coursegen.KindCourseFramework,
	"recommend-content":  coursegen.KindTeachingContent,
	"optimize-itinerary": coursegen.KindItinerary,
	"build-assessment":   coursegen.KindAssessment,
}

type AIHandler struct {
	log               *logger.Logger
	generationService services.GenerationService
}

func NewAIHandler(log *logger.Logger, generationService services.GenerationService) *AIHandler {
	return &AIHandler{
		log:               log.With("handler", "AIHandler"),
		generationService: generationService,
	}
}

// Generate returns a handler running the pipeline for kind. The validated
// output is the response data; the stored record id goes in a header.
func (h *AIHandler) Generate(kind coursegen.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		in := coursegen.Input{}
		if err := bindJSON(c, &in); err != nil {
			response.RespondError(c, err)
			return
		}
		if in == nil {
			in = coursegen.Input{}
		}
		rec, out, err := h.generationService.Run(c.Request.Context(), kind, in)
		if err != nil {
			h.log.Warn("Generation failed", "kind", kind, "code", coursegen.CodeOf(err), "error", err)
			response.RespondError(c, err)
			return
		}
		c.Header(HeaderGenerationRecordID, rec.ID.String())
		response.RespondOK(c, out)
	}
}

// ListRecords filters by ?courseId=; without it the most recent records are returned.
func (h *AIHandler) ListRecords(c *gin.Context) {
	ctx := c.Request.Context()
	if courseID := strings.TrimSpace(c.Query("courseId")); courseID != "" {
		recs, err := h.generationService.ListByCourse(ctx, courseID)
		if err != nil {
			response.RespondError(c, err)
			return
		}
		response.RespondOK(c, recs)
		return
	}
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.RespondError(c, apierr.BadRequest("invalid_limit", "limit must be a positive integer"))
			return
		}
		limit = n
	}
	recs, err := h.generationService.ListRecent(ctx, limit)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, recs)
}

func (h *AIHandler) GetRecord(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, coursegen.Errorf(coursegen.CodeNotFound, "", "Generation record not found"))
		return
	}
	rec, err := h.generationService.GetRecord(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, rec)
}

func (h *AIHandler) Schema(c *gin.Context) {
	kind, err := coursegen.ParseKind(c.Param("kind"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	sch, err := h.generationService.Schema(kind)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, sch)
}
