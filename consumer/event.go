// Package consumer implements the event stream consumer: a NATS
// JetStream pull consumer over the `sql-audit-events` durable
// partitioned topic, with exponential-backoff retry, dead-lettering, and
// a latency/failure-driven backpressure controller.
package consumer

import (
	"encoding/json"
	"time"
)

// Event is the wire schema of one `sql-audit-events` message.
type Event struct {
	Sql             string  `json:"sql"`
	SqlType         string  `json:"sqlType"`
	MapperID        string  `json:"mapperId"`
	DataSource      string  `json:"datasource"`
	ExecutionTimeMs int64   `json:"executionTimeMs"`
	RowsAffected    int32   `json:"rowsAffected"`
	ErrorMessage    *string `json:"errorMessage"`
	Timestamp       time.Time `json:"timestamp"`
}

// DeadLetterEvent is the Event payload plus the fields added when
// publishing to the dead-letter topic.
type DeadLetterEvent struct {
	Event
	FailureReason string `json:"failureReason"`
	Attempt       int    `json:"attempt"`
}

func parseEvent(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}
