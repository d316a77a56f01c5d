package postgrest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Error is the error object returned by the REST endpoint.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
	Status  int    `json:"status"`
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s (code %s, status %d)", msg, e.Code, e.Status)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.Status)
}

// DecodeError builds an Error from a non successful response body.
// Bodies which are not error objects end up in the message.
func DecodeError(status int, body []byte) *Error {
	var raw struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
		Hint    any    `json:"hint"`
	}

	e := &Error{Status: status}
	if err := json.Unmarshal(body, &raw); err != nil || (raw.Message == "" && raw.Code == "") {
		e.Message = strings.TrimSpace(string(body))
		return e
	}

	e.Code = raw.Code
	e.Message = raw.Message
	e.Details = stringOrEmpty(raw.Details)
	e.Hint = stringOrEmpty(raw.Hint)
	return e
}

func stringOrEmpty(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
