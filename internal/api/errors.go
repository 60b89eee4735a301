package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// FailureKind separates calls that never completed from calls the server refused.
type FailureKind string

const (
	// KindTransport covers timeouts, refused connections and unreadable responses.
	KindTransport FailureKind = "transport"
	// KindRejection covers non-2xx statuses and payload-level failures.
	KindRejection FailureKind = "rejection"
)

// CallFailure is the only error shape the gateway returns. Message is safe to
// show to the operator.
type CallFailure struct {
	Op      string
	Kind    FailureKind
	Status  int
	Message string
}

func (e *CallFailure) Error() string {
	return e.Message
}

// Rejection builds a server rejection for a response that decoded fine but
// reported failure in its payload. fallback is used when message is empty.
func Rejection(op, message, fallback string) *CallFailure {
	message = strings.TrimSpace(message)
	if message == "" {
		message = fallback
	}
	return &CallFailure{Op: op, Kind: KindRejection, Message: message}
}

// AsFailure extracts a CallFailure from err.
func AsFailure(err error) (*CallFailure, bool) {
	var failure *CallFailure
	if errors.As(err, &failure) {
		return failure, true
	}
	return nil, false
}

// Message returns the display string for err, preferring a CallFailure's message.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if failure, ok := AsFailure(err); ok {
		return failure.Message
	}
	return err.Error()
}

// serverMessage pulls a display string out of an error body. It prefers
// detail, then error, then message. FastAPI validation errors carry a list of
// {msg} objects under detail.
func serverMessage(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "error", "message"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if msg := rawMessage(raw); msg != "" {
			return msg
		}
	}
	return ""
}

func rawMessage(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				parts = append(parts, item.Msg)
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

func statusMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("request failed: %d %s", status, text)
	}
	return fmt.Sprintf("request failed with status %d", status)
}
