package responses

import (
	"agenthub/services/channel-api/internal/domain/dispatch"
	"agenthub/services/channel-api/internal/domain/process"
)

// WebhookAckResponse acknowledges a platform delivery
type WebhookAckResponse struct {
	OK bool `json:"ok"`
}

// DispatchRunResponse summarizes one outbound drain pass
type DispatchRunResponse struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// BuildDispatchRunResponse creates response from a dispatcher run result
func BuildDispatchRunResponse(result *dispatch.Result) *DispatchRunResponse {
	return &DispatchRunResponse{
		Sent:    result.Sent,
		Failed:  result.Failed,
		Skipped: result.Skipped,
	}
}

// ProcessRunResponse summarizes one inbound processor pass
type ProcessRunResponse struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// BuildProcessRunResponse creates response from a processor run result
func BuildProcessRunResponse(result *process.Result) *ProcessRunResponse {
	return &ProcessRunResponse{
		Processed: result.Processed,
		Failed:    result.Failed,
	}
}

// GenerateResponse carries the generated reply text
type GenerateResponse struct {
	Text string `json:"text"`
}

// RequeueResponse confirms a failed message was returned to the queue
type RequeueResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}
