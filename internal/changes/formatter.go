package changes

import (
	"fmt"

	"ms-boleteria/internal/models"
)

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatValues renders the human-readable (old, new) pair for a change kind.
// It must never panic: malformed dates render as "Fecha inválida (<raw>)".
func FormatValues(original, proposed models.EventSnapshot, kind models.ChangeKind) (string, string) {
	switch kind {
	case models.ChangeLocation:
		return venueOrNA(original.VenueName), venueOrNA(proposed.VenueName)
	case models.ChangeDate:
		return formatDate(original.Date), formatDate(proposed.Date)
	case models.ChangeDateTime:
		return formatDateTime(original.Date, original.Time), formatDateTime(proposed.Date, proposed.Time)
	case models.ChangeTime:
		return timeOrNA(original.Time), timeOrNA(proposed.Time)
	case models.ChangeActivation, models.ChangeCancellation:
		return statusLabel(original.IsActive), statusLabel(proposed.IsActive)
	default:
		return "N/A", "N/A"
	}
}

func formatDate(raw string) string {
	t, err := parseDate(raw)
	if err != nil {
		return fmt.Sprintf("Fecha inválida (%s)", raw)
	}
	return fmt.Sprintf("%d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}

func formatDateTime(rawDate, rawTime string) string {
	if rawTime == "" {
		return formatDate(rawDate)
	}
	return fmt.Sprintf("%s a las %s", formatDate(rawDate), rawTime)
}

func timeOrNA(raw string) string {
	if raw == "" {
		return "N/A"
	}
	return raw
}

func venueOrNA(name string) string {
	if name == "" {
		return "N/A"
	}
	return name
}

// statusLabel is chosen from the boolean flag, not from the change kind name.
func statusLabel(active bool) string {
	if active {
		return "Activo"
	}
	return "Inactivo"
}
