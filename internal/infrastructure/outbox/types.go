package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Job kinds executed by the outbox processor.
const (
	KindActivityLog     = "activity_log"
	KindTelegramMessage = "telegram_message"
	KindEmail           = "email"
)

// Job is a side effect recorded during a request and executed after the response.
type Job struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	Priority  int             `json:"priority"`
	Attempts  int             `json:"attempts"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

// NewJob marshals payload into a job of the given kind.
func NewJob(kind string, payload interface{}) (Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Job{}, err
	}
	return Job{Kind: kind, Payload: raw}, nil
}

// Decode unmarshals the payload into dst.
func (j Job) Decode(dst interface{}) error {
	return json.Unmarshal(j.Payload, dst)
}

func (j *Job) normalize() {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.Priority <= 0 || j.Priority > 5 {
		j.Priority = 3
	}
	if j.Timestamp.IsZero() {
		j.Timestamp = time.Now()
	}
}

// TelegramPayload is the body of a KindTelegramMessage job.
type TelegramPayload struct {
	ChatID string `json:"chat_id,omitempty"`
	Text   string `json:"text"`
}

// EmailPayload is the body of a KindEmail job.
type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}
