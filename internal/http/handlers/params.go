package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/yanxue-backend/internal/platform/apierr"
)

func pathID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apierr.BadRequest("invalid_id", "Invalid id")
	}
	return id, nil
}

// bindJSON decodes the request body into dst. An empty body leaves dst as is.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apierr.BadRequest("invalid_request", "Invalid JSON body")
	}
	return nil
}
