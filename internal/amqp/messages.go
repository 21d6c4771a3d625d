package amqp

import (
	"encoding/json"
	"time"

	"notas/internal/core"
)

// Message types carried in the AMQP Type property.
const (
	TypeRecordSync   = "record.sync"
	TypeRecordDelete = "record.delete"
)

// RecordSyncMessage asks the worker to mirror a record. It carries only the
// id; the worker fetches the current row from the database so a burst of
// updates collapses into one write of the latest state.
type RecordSyncMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordSyncMessage(id int64) *RecordSyncMessage {
	return &RecordSyncMessage{ID: id, Timestamp: time.Now()}
}

func (m *RecordSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordSyncMessageFromJSON(data []byte) (*RecordSyncMessage, error) {
	var msg RecordSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// RecordDeleteMessage carries the full deleted row, since by the time the
// worker runs there is nothing left to fetch.
type RecordDeleteMessage struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Date      string    `json:"data"`
	Company   string    `json:"empresa"`
	Number    string    `json:"numero"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordDeleteMessage(rec core.Record) *RecordDeleteMessage {
	return &RecordDeleteMessage{
		ID:        rec.ID,
		UserID:    rec.UserID,
		Date:      rec.Date,
		Company:   rec.Company,
		Number:    rec.Number,
		Timestamp: time.Now(),
	}
}

func (m *RecordDeleteMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordDeleteMessageFromJSON(data []byte) (*RecordDeleteMessage, error) {
	var msg RecordDeleteMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
