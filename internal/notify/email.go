package notify

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"ms-boleteria/internal/models"
)

var changeLabels = map[models.ChangeKind]string{
	models.ChangeLocation: "Lugar",
	models.ChangeDate:     "Fecha",
	models.ChangeTime:     "Hora",
	models.ChangeDateTime: "Fecha y hora",
}

var modificationTmpl = template.Must(template.New("modification").Parse(
	`Hola {{.UserName}},

El evento "{{.EventName}}" ha cambiado.

{{.Label}}:
  Antes: {{.OldValue}}
  Ahora: {{.NewValue}}

Tienes {{.TicketCount}} entrada(s) ({{.Types}}) para este evento.
Tus entradas siguen siendo válidas.
`))

var cancellationTmpl = template.Must(template.New("cancellation").Parse(
	`Hola {{.UserName}},

Lamentamos informarte que el evento "{{.EventName}}" ha sido cancelado.

Tienes {{.TicketCount}} entrada(s) ({{.Types}}) afectadas por esta cancelación.
Nos pondremos en contacto contigo con los siguientes pasos.
`))

var activationTmpl = template.Must(template.New("activation").Parse(
	`Hola {{.UserName}},

¡Buenas noticias! El evento "{{.EventName}}" vuelve a estar activo.

Tus {{.TicketCount}} entrada(s) ({{.Types}}) siguen siendo válidas.
`))

type emailData struct {
	UserName    string
	EventName   string
	Label       string
	OldValue    string
	NewValue    string
	TicketCount int
	Types       string
}

// BuildChangeEmail renders the email variant keyed by the job's change kind.
func BuildChangeEmail(job models.ChangeJob, holder models.Holder, user *models.User) (subject, body string, err error) {
	data := emailData{
		UserName:    user.Name,
		EventName:   job.Event.Name,
		OldValue:    job.OldValue,
		NewValue:    job.NewValue,
		TicketCount: holder.TicketCount,
		Types:       strings.Join(holder.TicketTypes, ", "),
	}
	if data.UserName == "" {
		data.UserName = user.Email
	}

	var tmpl *template.Template
	switch job.ChangeType {
	case models.ChangeCancellation:
		subject = fmt.Sprintf("Evento cancelado: %s", job.Event.Name)
		tmpl = cancellationTmpl
	case models.ChangeActivation:
		subject = fmt.Sprintf("Evento reactivado: %s", job.Event.Name)
		tmpl = activationTmpl
	case models.ChangeLocation, models.ChangeDate, models.ChangeTime, models.ChangeDateTime:
		subject = fmt.Sprintf("Cambio en el evento: %s", job.Event.Name)
		data.Label = changeLabels[job.ChangeType]
		tmpl = modificationTmpl
	default:
		return "", "", fmt.Errorf("no email variant for change kind %q", job.ChangeType)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}
