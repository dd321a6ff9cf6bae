package domain

import "time"

// Action tags recorded in the activity log.
const (
	ActionCreate        = "CREATE"
	ActionUpdate        = "UPDATE"
	ActionSoftDelete    = "SOFT_DELETE"
	ActionAutoUpdate    = "AUTO_UPDATE"
	ActionUpdateStatus  = "UPDATE_STATUS"
	ActionUpdateDetails = "UPDATE_DETAILS"
)

const SystemActor = "System"

// ActivityEntry is an append-only audit record.
type ActivityEntry struct {
	ID        int64     `json:"id"`
	Actor     string    `json:"user_email"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	AssetID   *string   `json:"asset_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ActorOrDefault returns actor, or the system placeholder when blank.
func ActorOrDefault(actor string) string {
	if actor == "" {
		return SystemActor
	}
	return actor
}
