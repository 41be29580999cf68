/*
Package messaging publishes run events to RabbitMQ.

PURPOSE:
  Lets downstream consumers (payroll import, benefit vendor upload) react
  to a finished month without polling the API. Publishing is optional: with
  no broker URL configured the batch runner uses a no-op notifier.

KEY CONCEPTS:
  - Event: JSON envelope {id, type, source, timestamp, correlation_id, data}
  - Exchange "vr.events" (topic), routing key = event type
  - RunCompleted: payload of "vr.run.completed"

SEE ALSO:
  - batch/runner.go: Publishes after a run is stored
*/
package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventRunCompleted = "vr.run.completed"
)

// ExchangeRunEvents is the default exchange name.
const ExchangeRunEvents = "vr.events"

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data any) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v any) error {
	return json.Unmarshal(e.Data, v)
}

// RunCompleted is published when a run has been written and stored.
type RunCompleted struct {
	RunID         string `json:"run_id"`
	Competencia   string `json:"competencia"`
	Employees     int    `json:"employees"`
	Gross         string `json:"gross"`
	EmployerShare string `json:"employer_share"`
	EmployeeShare string `json:"employee_share"`
	TechnicalPath string `json:"technical_path,omitempty"`
	ExportPath    string `json:"export_path,omitempty"`
}
