package monitor

import "time"

type Status struct {
	Database   bool      `json:"database"`
	Redis      bool      `json:"redis"`
	RedisUsed  bool      `json:"redis_enabled"`
	Outbox     bool      `json:"outbox"`
	OutboxSize int       `json:"outbox_size"`
	LastCheck  time.Time `json:"last_check"`
}

// DatabaseState renders the database flag the way the root endpoint reports it.
func (s Status) DatabaseState() string {
	if s.Database {
		return "Connected"
	}
	return "Disconnected"
}
