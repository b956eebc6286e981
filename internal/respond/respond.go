package respond

import "github.com/gin-gonic/gin"

// Envelope is the uniform response shape every endpoint returns. Either Data
// or ErrorData is populated, never both.
type Envelope struct {
	Code      int         `json:"code"`
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	ErrorData interface{} `json:"errorData,omitempty"`
}

// OK builds a success envelope with the given HTTP code.
func OK(code int, message string, data interface{}) *Envelope {
	return &Envelope{
		Code:    code,
		Success: true,
		Message: message,
		Data:    data,
	}
}

// Fail builds a failure envelope. errorData may be nil, in which case an
// empty object is emitted so clients always see the key.
func Fail(code int, message string, errorData interface{}) *Envelope {
	if errorData == nil {
		errorData = gin.H{}
	}
	return &Envelope{
		Code:      code,
		Success:   false,
		Message:   message,
		ErrorData: errorData,
	}
}

// JSON writes the envelope using its own code as the HTTP status.
func JSON(c *gin.Context, e *Envelope) {
	c.JSON(e.Code, e)
}

// AbortJSON writes the envelope and aborts the gin handler chain.
func AbortJSON(c *gin.Context, e *Envelope) {
	c.AbortWithStatusJSON(e.Code, e)
}
