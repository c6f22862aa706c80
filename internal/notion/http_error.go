package notion

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/yapa-dev/techwatch/internal/util"
)

// errorEnvelope is the standard Notion API error body. Extra fields are
// intentionally ignored.
type errorEnvelope struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HTTPError is a sanitized summary of a non-2xx Notion API response.
//
// Important: do not include raw response bodies here (can leak tokens or
// record contents).
type HTTPError struct {
	Op         string
	StatusCode int
	Status     string
	Code       string
	Message    string

	// Snippet is a redacted, truncated hint for non-envelope responses.
	Snippet string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "notion http error"
	}
	parts := []string{
		fmt.Sprintf("notion api error: op=%s status=%s", strings.TrimSpace(e.Op), strings.TrimSpace(e.Status)),
	}
	if strings.TrimSpace(e.Code) != "" {
		parts = append(parts, "code="+strings.TrimSpace(e.Code))
	}
	if strings.TrimSpace(e.Message) != "" {
		parts = append(parts, "message="+strings.TrimSpace(e.Message))
	}
	if strings.TrimSpace(e.Snippet) != "" {
		parts = append(parts, "body="+strings.TrimSpace(e.Snippet))
	}
	return strings.Join(parts, " ")
}

func newHTTPError(op string, resp *http.Response, body []byte) error {
	h := &HTTPError{Op: op}
	if resp != nil {
		h.StatusCode = resp.StatusCode
		h.Status = resp.Status
	}

	// Best effort: parse the Notion error envelope.
	var env errorEnvelope
	if len(body) > 0 && json.Unmarshal(body, &env) == nil && env.Object == "error" {
		h.Code = strings.TrimSpace(env.Code)
		h.Message = util.RedactSecrets(env.Message)
		if h.Code != "" || h.Message != "" {
			return h
		}
	}

	h.Snippet = redactAndTruncate(body)
	return h
}

func redactAndTruncate(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	// Keep this small: response bodies can contain record text.
	const max = 256
	b := body
	if len(b) > max {
		b = b[:max]
	}
	s := util.RedactSecrets(string(b))
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if len(body) > max {
		return s + "..."
	}
	return s
}
