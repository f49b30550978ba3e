package qr

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	"github.com/skip2/go-qrcode"

	"ms-boleteria/internal/models"
)

// Claim is the ticket identity embedded in a QR code.
type Claim struct {
	TicketID   string `json:"ticket_id"`
	EventID    string `json:"event_id"`
	UserID     string `json:"user_id"`
	TicketType string `json:"ticket_type"`
}

// Generator produces HMAC-signed QR payloads so a scanned code can be
// verified without a database round trip.
type Generator struct {
	secret []byte
}

func NewGenerator(secret string) *Generator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &Generator{secret: hashed[:]}
}

func (g *Generator) Generate(ticket models.Ticket) ([]byte, error) {
	claim := Claim{
		TicketID:   ticket.TicketID,
		EventID:    ticket.EventID,
		UserID:     ticket.UserID,
		TicketType: ticket.TicketType,
	}
	data, err := json.Marshal(claim)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(g.sign(data), qrcode.Medium, 256)
}

// Verify checks a scanned payload's signature and returns the embedded claim.
func (g *Generator) Verify(payload string) (*Claim, error) {
	parts := strings.Split(payload, ".")
	if len(parts) != 2 {
		return nil, errors.New("malformed QR payload")
	}
	data, err := base64.URLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, errors.New("malformed QR payload")
	}
	sig, err := base64.URLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, errors.New("malformed QR payload")
	}
	if !hmac.Equal(sig, g.mac(data)) {
		return nil, errors.New("QR signature mismatch")
	}
	var claim Claim
	if err := json.Unmarshal(data, &claim); err != nil {
		return nil, err
	}
	return &claim, nil
}

func (g *Generator) sign(data []byte) string {
	return base64.URLEncoding.EncodeToString(data) + "." + base64.URLEncoding.EncodeToString(g.mac(data))
}

func (g *Generator) mac(data []byte) []byte {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write(data)
	return mac.Sum(nil)
}
