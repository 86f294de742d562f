package amqp

import (
	"testing"
)

func TestLedgerMessageRoundTrip(t *testing.T) {
	msg := NewLedgerSyncMessage(42, 7)
	if msg.EventID == "" {
		t.Fatal("EventID is empty")
	}
	if msg.Type != TypeLedgerSync {
		t.Errorf("Type = %q, want %q", msg.Type, TypeLedgerSync)
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := LedgerMessageFromJSON(body)
	if err != nil {
		t.Fatalf("LedgerMessageFromJSON: %v", err)
	}
	if got.EventID != msg.EventID || got.TransactionID != 42 || got.ProjectID != 7 {
		t.Errorf("round trip changed message: %+v", got)
	}
}

func TestLedgerMessageFromJSON_Rejects(t *testing.T) {
	if _, err := LedgerMessageFromJSON([]byte("not json")); err == nil {
		t.Error("malformed body accepted")
	}
	if _, err := LedgerMessageFromJSON([]byte(`{"type":"ledger.truncate","transaction_id":1}`)); err == nil {
		t.Error("unknown type accepted")
	}
}

func TestEventIDsAreUnique(t *testing.T) {
	a := NewLedgerDeleteMessage(1, 1)
	b := NewLedgerDeleteMessage(1, 1)
	if a.EventID == b.EventID {
		t.Error("two messages share an event id")
	}
	if a.Type != TypeLedgerDelete {
		t.Errorf("Type = %q, want %q", a.Type, TypeLedgerDelete)
	}
}
