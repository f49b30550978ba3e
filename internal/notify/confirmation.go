package notify

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"ms-boleteria/internal/logger"
	"ms-boleteria/internal/models"
)

type EventGetter interface {
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(
	`Hola {{.UserName}},

Tu compra para "{{.EventName}}" está confirmada.

{{range .Lines}}  - {{.}}
{{end}}
Total: {{printf "%.2f" .Total}} EUR

¡Nos vemos en el evento!
`))

// ConfirmationSender emails a purchase confirmation. Callers treat it as
// best-effort: an error here never fails the purchase.
type ConfirmationSender struct {
	Events    EventGetter
	Directory Directory
	Mailer    Mailer
	Logger    *logger.Logger
}

func NewConfirmationSender(events EventGetter, directory Directory, mailer Mailer, log *logger.Logger) *ConfirmationSender {
	return &ConfirmationSender{Events: events, Directory: directory, Mailer: mailer, Logger: log}
}

func (c *ConfirmationSender) SendPurchaseConfirmation(ctx context.Context, userID string, tickets []models.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}

	user, err := c.Directory.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve user %s: %w", userID, err)
	}

	eventName := tickets[0].EventID
	if event, err := c.Events.GetEventByID(ctx, tickets[0].EventID); err == nil {
		eventName = event.Name
	}

	var total float64
	lines := make([]string, 0, len(tickets))
	for _, t := range tickets {
		total += t.PriceAtPurchase
		lines = append(lines, fmt.Sprintf("%s (%s): %.2f EUR", t.TicketType, t.TicketID, t.PriceAtPurchase))
	}

	data := struct {
		UserName  string
		EventName string
		Lines     []string
		Total     float64
	}{
		UserName:  user.Name,
		EventName: eventName,
		Lines:     lines,
		Total:     total,
	}
	if data.UserName == "" {
		data.UserName = user.Email
	}

	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, data); err != nil {
		return err
	}

	subject := fmt.Sprintf("Confirmación de compra: %s", eventName)
	return c.Mailer.Send(ctx, user.Email, subject, buf.String())
}
