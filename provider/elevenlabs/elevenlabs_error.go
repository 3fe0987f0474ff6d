package elevenlabs

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/lemon-mint/vorleser/tts"
	"github.com/valyala/fastjson"
)

var (
	ErrAPIKeyRequired error = errors.New("api key is required")
	ErrTextRequired   error = errors.New("text is required")
	ErrUnauthorized   error = errors.New("invalid api key")
	ErrVoiceNotFound  error = errors.New("voice not found")
)

// APIError is a non-200 response from the ElevenLabs API.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("elevenlabs: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("elevenlabs: %d %s: %s", e.StatusCode, e.Status, e.Message)
}

// parseError reads the "detail" field of an error body. It is either an
// object {status, message} or a list of validation errors {msg}. Bodies
// without it, such as rate limit responses, may carry a top-level message.
func parseError(statusCode int, body []byte) *APIError {
	e := &APIError{StatusCode: statusCode, Message: http.StatusText(statusCode)}

	var parser fastjson.Parser
	v, err := parser.ParseBytes(body)
	if err != nil {
		return e
	}

	detail := v.Get("detail")
	if detail == nil {
		if msg := v.GetStringBytes("message"); len(msg) > 0 {
			e.Message = string(msg)
		}
		return e
	}

	switch detail.Type() {
	case fastjson.TypeObject:
		e.Status = string(detail.GetStringBytes("status"))
		if msg := detail.GetStringBytes("message"); len(msg) > 0 {
			e.Message = string(msg)
		}
	case fastjson.TypeArray:
		items := detail.GetArray()
		if len(items) > 0 {
			if msg := items[0].GetStringBytes("msg"); len(msg) > 0 {
				e.Message = string(msg)
			}
		}
	case fastjson.TypeString:
		e.Message = string(detail.GetStringBytes())
	}

	return e
}

func getErrorByStatus(statusCode int, body []byte) error {
	apiErr := parseError(statusCode, body)

	switch {
	case statusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %w", tts.ErrUnprocessableContent, apiErr)
	case statusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", ErrUnauthorized, apiErr)
	case apiErr.Status == "voice_not_found":
		return fmt.Errorf("%w: %w", ErrVoiceNotFound, apiErr)
	}

	return apiErr
}
