package common

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/schedulr/internal/scheduling"
)

// Result statuses of the JSON payloads returned by tools.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// JSONResult returns v as indented JSON text.
func JSONResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// JSONErrorResult returns v as indented JSON text in an error result. It
// is used for failures whose payload carries more than a message.
func JSONErrorResult(v interface{}) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultError(string(data))
}

// ErrorPayload is the JSON body of a failed tool call.
type ErrorPayload struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

// ErrorResult converts err into an error result carrying a JSON payload.
// The reason names the scheduling error class when err has one.
func ErrorResult(msg string, err error) *mcp.CallToolResult {
	payload := ErrorPayload{Status: StatusError, Message: msg, Reason: Reason(err)}
	if err != nil {
		payload.Message = fmt.Sprintf("%s: %v", msg, err)
	}
	data, mErr := json.Marshal(payload)
	if mErr != nil {
		return mcp.NewToolResultError(payload.Message)
	}
	return mcp.NewToolResultError(string(data))
}

// Reason classifies err by the scheduling sentinel errors.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, scheduling.ErrNotFound):
		return "not_found"
	case errors.Is(err, scheduling.ErrInvalidIndex):
		return "invalid_index"
	case errors.Is(err, scheduling.ErrAlreadyScheduled):
		return "already_scheduled"
	case errors.Is(err, scheduling.ErrRequestFailed):
		return "request_failed"
	case errors.Is(err, scheduling.ErrDelivery):
		return "delivery_failed"
	case errors.Is(err, scheduling.ErrUpstream):
		return "upstream"
	case errors.Is(err, scheduling.ErrNotConfigured):
		return "not_configured"
	default:
		return "invalid_request"
	}
}
