package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// TypeLedgerSync asks the worker to mirror a transaction to the
	// external ledger. The worker fetches the current row by id, so a
	// burst of edits collapses into whatever is stored when it runs.
	TypeLedgerSync = "ledger.sync"

	// TypeLedgerDelete asks the worker to remove a transaction from the
	// external ledger.
	TypeLedgerDelete = "ledger.delete"
)

// LedgerMessage is the envelope for ledger mirror events. It carries only
// the transaction id; the worker reads the full row from the database.
type LedgerMessage struct {
	EventID       string    `json:"event_id"`
	Type          string    `json:"type"`
	TransactionID int64     `json:"transaction_id"`
	ProjectID     int64     `json:"project_id"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewLedgerSyncMessage(transactionID, projectID int64) *LedgerMessage {
	return newLedgerMessage(TypeLedgerSync, transactionID, projectID)
}

func NewLedgerDeleteMessage(transactionID, projectID int64) *LedgerMessage {
	return newLedgerMessage(TypeLedgerDelete, transactionID, projectID)
}

func newLedgerMessage(msgType string, transactionID, projectID int64) *LedgerMessage {
	return &LedgerMessage{
		EventID:       uuid.NewString(),
		Type:          msgType,
		TransactionID: transactionID,
		ProjectID:     projectID,
		Timestamp:     time.Now(),
	}
}

func (m *LedgerMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerMessageFromJSON(data []byte) (*LedgerMessage, error) {
	var msg LedgerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type != TypeLedgerSync && msg.Type != TypeLedgerDelete {
		return nil, fmt.Errorf("unknown message type %q", msg.Type)
	}
	return &msg, nil
}
