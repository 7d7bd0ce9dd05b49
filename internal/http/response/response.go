package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/odnalezione/odnalezione-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope is the error body of the review draft routes.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// MessageEnvelope is the flat error body of the processing endpoint.
type MessageEnvelope struct {
	Error string `json:"error"`
}

// record attaches err to the gin context for the access log and returns the
// message shown to the client.
func record(c *gin.Context, err error) string {
	if err == nil {
		return "unknown error"
	}
	_ = c.Error(err)
	return err.Error()
}

func RespondError(c *gin.Context, status int, code string, err error) {
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: record(c, err), Code: code}})
}

// RespondAPIError writes err with the status and code it carries.
func RespondAPIError(c *gin.Context, err error) {
	RespondError(c, apierr.StatusOf(err), apierr.CodeOf(err), err)
}

// RespondMessage writes {"error": "..."} with the status carried by err.
func RespondMessage(c *gin.Context, err error) {
	c.JSON(apierr.StatusOf(err), MessageEnvelope{Error: record(c, err)})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
