package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/yanxue-backend/internal/coursegen"
	"github.com/yungbote/yanxue-backend/internal/platform/apierr"
)

type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

const (
	internalMessage = "Internal server error"
	storageMessage  = "Failed to save generation record"
)

func RespondOK(c *gin.Context, data any) {
	respondData(c, http.StatusOK, data)
}

func RespondCreated(c *gin.Context, data any) {
	respondData(c, http.StatusCreated, data)
}

func respondData(c *gin.Context, status int, data any) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(status, Envelope{Success: true, Data: data})
}

// RespondError writes the failure envelope with the status StatusFor picks.
// Unclassified errors are reported without their text.
func RespondError(c *gin.Context, err error) {
	status, msg := Classify(err)
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, Envelope{Success: false, Error: msg})
}

func RespondStatus(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Error: msg})
}

// Classify maps err to an HTTP status and the message shown to clients.
func Classify(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, internalMessage
	}
	var ae *apierr.Error
	if errors.As(err, &ae) && ae != nil {
		status := ae.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		if status >= 500 {
			return status, internalMessage
		}
		return status, ae.Error()
	}
	if code := coursegen.CodeOf(err); code != "" {
		if code == coursegen.CodeStorage {
			return StatusFor(code), storageMessage
		}
		return StatusFor(code), err.Error()
	}
	return http.StatusInternalServerError, internalMessage
}

func StatusFor(code coursegen.Code) int {
	switch code {
	case coursegen.CodeMissingRequiredField, coursegen.CodeInvalidInput, coursegen.CodeUnknownKind:
		return http.StatusBadRequest
	case coursegen.CodeTransport, coursegen.CodeQuota:
		return http.StatusBadGateway
	case coursegen.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
