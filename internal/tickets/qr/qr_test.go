package qr

import (
	"encoding/json"
	"testing"

	"ms-boleteria/internal/models"
)

func testTicket() models.Ticket {
	return models.Ticket{
		TicketID:   "ticket-1",
		EventID:    "event-1",
		UserID:     "user-1",
		TicketType: "general",
	}
}

func TestSignAndVerify(t *testing.T) {
	gen := NewGenerator("test-secret")

	data, err := json.Marshal(Claim{TicketID: "ticket-1", EventID: "event-1", UserID: "user-1", TicketType: "general"})
	if err != nil {
		t.Fatalf("Failed to marshal claim: %v", err)
	}

	claim, err := gen.Verify(gen.sign(data))
	if err != nil {
		t.Fatalf("Expected valid payload to verify, got %v", err)
	}
	if claim.TicketID != "ticket-1" || claim.UserID != "user-1" {
		t.Errorf("Unexpected claim: %+v", claim)
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	gen := NewGenerator("test-secret")

	data, _ := json.Marshal(Claim{TicketID: "ticket-1"})
	payload := gen.sign(data)

	// Flip a byte in the signed portion.
	tampered := "x" + payload[1:]
	if _, err := gen.Verify(tampered); err == nil {
		t.Error("Expected tampered payload to be rejected")
	}

	// A payload signed with a different secret must not verify.
	other := NewGenerator("other-secret")
	if _, err := gen.Verify(other.sign(data)); err == nil {
		t.Error("Expected foreign signature to be rejected")
	}
}

func TestVerifyMalformedPayloads(t *testing.T) {
	gen := NewGenerator("test-secret")

	for _, payload := range []string{"", "no-dot", "a.b.c", "!!!.???"} {
		if _, err := gen.Verify(payload); err == nil {
			t.Errorf("Expected malformed payload %q to be rejected", payload)
		}
	}
}

func TestGenerateProducesPNG(t *testing.T) {
	gen := NewGenerator("test-secret")

	png, err := gen.Generate(testTicket())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(png) == 0 {
		t.Fatal("Expected non-empty QR image")
	}
	// PNG magic bytes.
	if png[0] != 0x89 || string(png[1:4]) != "PNG" {
		t.Error("Expected a PNG image")
	}
}
