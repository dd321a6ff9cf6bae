package transport

import "encoding/json"

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// Message is the body of acknowledgements that carry no record.
type Message struct {
	Message string `json:"message"`
}

// StatusInfo answers the root probe.
type StatusInfo struct {
	Status   string `json:"status"`
	System   string `json:"system"`
	Database string `json:"database"`
}

// CheckResult answers a manual report check.
type CheckResult struct {
	Status  string `json:"status"`
	Preview string `json:"preview"`
}

// SweepResult answers the cron trigger.
type SweepResult struct {
	Scanned  int  `json:"scanned"`
	Updated  int  `json:"updated"`
	Failures int  `json:"failures"`
	Skipped  bool `json:"skipped"`
	Notified bool `json:"notified"`
}

// WebhookAck is returned to the bot platform for every update.
type WebhookAck struct {
	Status string `json:"status"`
}
