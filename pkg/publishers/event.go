package publishers

import (
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/samvad-hq/jsonfetch/internal/domain"
)

// Actions carried by an Event.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event describes one change to an example. ID is unique per event and is used
// by sinks that deduplicate.
type Event struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	Example    domain.Example `json:"example"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func NewEvent(action string, example domain.Example) Event {
	return Event{
		ID:         uuid.NewString(),
		Action:     action,
		Example:    example,
		OccurredAt: time.Now().UTC(),
	}
}

// Attributes are the routing hints sent next to the payload (message
// attributes, Pub/Sub attributes, HTTP headers).
func (e Event) Attributes() map[string]string {
	return map[string]string{
		"event_id":   e.ID,
		"action":     e.Action,
		"example_id": strconv.FormatUint(e.Example.ID, 10),
	}
}

// groupKey keeps events of one example in order on FIFO sinks.
func (e Event) groupKey() string {
	return "example-" + strconv.FormatUint(e.Example.ID, 10)
}

func (e Event) payload() ([]byte, error) {
	return json.Marshal(e)
}
