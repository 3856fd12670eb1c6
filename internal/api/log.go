package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

const (
	redacted = "[REDACTED]"

	// maxLoggedBody caps how much of a body ends up in a log line
	maxLoggedBody = 2048
)

// secretFields are never written to the log, not even in debug mode
var secretFields = map[string]bool{
	"password":      true,
	"client_secret": true,
	"refresh_token": true,
	"access_token":  true,
	"code":          true,
}

// logRequest emits one structured line per request when debug logging is enabled
func (c *Client) logRequest(req *http.Request, reqBody, respBody []byte, status, size int, elapsed time.Duration, err error) {
	if !c.debug {
		return
	}

	event := c.logger.Debug()
	if err != nil {
		event = c.logger.Warn().Err(err)
	}

	event.
		Str("method", req.Method).
		Str("host", req.URL.Host).
		Str("path", req.URL.Path).
		Str("request_id", req.Header.Get(RequestIDHeader)).
		Dur("elapsed", elapsed).
		Int("status", status).
		Int("bytes", size)

	if len(reqBody) > 0 {
		event.Str("request_body", redactBody(reqBody, req.Header.Get("Content-Type")))
	}
	if len(respBody) > 0 {
		event.Str("response_body", redactBody(respBody, "application/json"))
	}

	event.Msg("http request")
}

// redactBody masks secret fields of a JSON or form encoded body
func redactBody(body []byte, contentType string) string {
	if contentType == "application/x-www-form-urlencoded" {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return redacted
		}
		for name := range values {
			if secretFields[name] {
				values.Set(name, redacted)
			}
		}
		return truncate(values.Encode())
	}

	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return truncate(string(body))
	}
	data, err := json.Marshal(redactValue(value))
	if err != nil {
		return redacted
	}
	return truncate(string(data))
}

// redactValue masks secret fields at any depth of a decoded JSON value
func redactValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for name, field := range v {
			if secretFields[name] {
				v[name] = redacted
				continue
			}
			v[name] = redactValue(field)
		}
	case []any:
		for i, item := range v {
			v[i] = redactValue(item)
		}
	}
	return value
}

func truncate(s string) string {
	if len(s) <= maxLoggedBody {
		return s
	}
	return s[:maxLoggedBody] + "..."
}
