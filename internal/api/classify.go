package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

// classify normalizes a transport outcome into a payload or an error.
// It also reports the status, body size and raw body for the request log.
func classify(resp *http.Response, err error) (*Payload, int, int, []byte, error) {
	if err != nil {
		if isTimeout(err) {
			return nil, 0, 0, nil, &NetworkError{Kind: KindTimeout, Err: err}
		}
		return nil, 0, 0, nil, &NetworkError{Kind: KindResponseNotHTTP, Err: err}
	}
	if resp == nil {
		return nil, 0, 0, nil, &NetworkError{Kind: KindResponseNotHTTP}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, resp.StatusCode, len(body), nil, &NetworkError{Kind: KindTimeout, Err: err}
		}
		return nil, resp.StatusCode, len(body), nil, &NetworkError{Kind: KindNoData, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, len(body), body, NewStatusError(resp.StatusCode, parseErrorBody(body))
	}

	object, err := decodeBody(body)
	if err != nil {
		return nil, resp.StatusCode, len(body), body, err
	}
	return &Payload{Body: object, Header: resp.Header}, resp.StatusCode, len(body), body, nil
}

// decodeBody parses a successful response body.
// An empty body is an empty object and a top-level array is wrapped as {"data": [...]}.
func decodeBody(body []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}, nil
	}

	// Numbers stay json.Number so 64-bit ids survive
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTypeMismatch, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after JSON value", ErrTypeMismatch)
	}

	switch v := value.(type) {
	case map[string]any:
		return v, nil
	case []any:
		return map[string]any{"data": v}, nil
	default:
		return nil, fmt.Errorf("%w: expected a JSON object or array, got %T", ErrTypeMismatch, value)
	}
}

// parseErrorBody is a best-effort parse of an error response; nil when unparseable
func parseErrorBody(body []byte) map[string]any {
	var object map[string]any
	if err := json.Unmarshal(body, &object); err != nil {
		return nil
	}
	return object
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
