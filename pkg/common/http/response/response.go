package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response codes carried in the JSON envelope.
const (
	CodeSuccess        = 20000
	CodeNotFound       = 40400
	CodeInternalServer = 50000
	CodeUnavailable    = 50300
)

var codeMessages = map[int]string{
	CodeSuccess:        "success",
	CodeNotFound:       "not found",
	CodeInternalServer: "internal server error",
	CodeUnavailable:    "service unavailable",
}

var codeStatus = map[int]int{
	CodeSuccess:        http.StatusOK,
	CodeNotFound:       http.StatusNotFound,
	CodeInternalServer: http.StatusInternalServerError,
	CodeUnavailable:    http.StatusServiceUnavailable,
}

// Envelope is the JSON body written for every response.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Message returns the text for code.
func Message(code int) string {
	if msg, ok := codeMessages[code]; ok {
		return msg
	}
	return "unknown"
}

func status(code int) int {
	if s, ok := codeStatus[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// SuccessResponse writes data with the given code.
func SuccessResponse(c *gin.Context, code int, data any) {
	c.JSON(status(code), Envelope{Code: code, Message: Message(code), Data: data})
}

// ErrorResponse writes err with the given code and aborts the chain.
func ErrorResponse(c *gin.Context, code int, err error) {
	msg := Message(code)
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status(code), Envelope{Code: code, Message: msg})
}
