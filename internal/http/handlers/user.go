package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/yanxue-backend/internal/http/response"
	"github.com/yungbote/yanxue-backend/internal/platform/logger"
	"github.com/yungbote/yanxue-backend/internal/services"
)

type UserHandler struct {
	log         *logger.Logger
	userService services.UserService
}

func NewUserHandler(log *logger.Logger, userService services.UserService) *UserHandler {
	return &UserHandler{
		log:         log.With("handler", "UserHandler"),
		userService: userService,
	}
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		h.log.Error("List users failed", "error", err)
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, users)
}

func (h *UserHandler) Create(c *gin.Context) {
	var in services.UserInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondError(c, err)
		return
	}
	user, err := h.userService.Create(c.Request.Context(), in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, user)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var in services.UserInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondError(c, err)
		return
	}
	user, err := h.userService.Update(c.Request.Context(), id, in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{})
}
