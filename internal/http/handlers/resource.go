package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/yanxue-backend/internal/http/response"
	"github.com/yungbote/yanxue-backend/internal/platform/logger"
	"github.com/yungbote/yanxue-backend/internal/services"
)

type ResourceHandler struct {
	log             *logger.Logger
	resourceService services.ResourceService
}

func NewResourceHandler(log *logger.Logger, resourceService services.ResourceService) *ResourceHandler {
	return &ResourceHandler{
		log:             log.With("handler", "ResourceHandler"),
		resourceService: resourceService,
	}
}

// List accepts an optional ?type= filter.
func (h *ResourceHandler) List(c *gin.Context) {
	list, err := h.resourceService.List(c.Request.Context(), c.Query("type"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, list)
}

func (h *ResourceHandler) Create(c *gin.Context) {
	var in services.ResourceInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondError(c, err)
		return
	}
	res, err := h.resourceService.Create(c.Request.Context(), in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, res)
}

func (h *ResourceHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	res, err := h.resourceService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, res)
}

func (h *ResourceHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var in services.ResourceInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondError(c, err)
		return
	}
	res, err := h.resourceService.Update(c.Request.Context(), id, in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, res)
}

func (h *ResourceHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if err := h.resourceService.Delete(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{})
}
