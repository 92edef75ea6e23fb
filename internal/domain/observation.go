package domain

import "strings"

// ObservationKind classifies one poll of the personal queue status endpoint.
type ObservationKind int

const (
	// ObservationEmpty: the operator's queue has no waiting entries.
	ObservationEmpty ObservationKind = iota
	// ObservationNextEntry: somebody is waiting; RawText carries the
	// head-of-queue cell text.
	ObservationNextEntry
	// ObservationBusy: the operator is on their way to, or already with, a
	// student.
	ObservationBusy
	// ObservationNotActive: the operator is not active on any list.
	ObservationNotActive
	// ObservationSessionInvalid: the service answered with its login page, so
	// the session token is dead.
	ObservationSessionInvalid
	// ObservationUnrecognized: none of the known markers matched; RawText
	// carries the full body for diagnosis.
	ObservationUnrecognized
)

func (k ObservationKind) String() string {
	switch k {
	case ObservationEmpty:
		return "empty"
	case ObservationNextEntry:
		return "next_entry"
	case ObservationBusy:
		return "busy"
	case ObservationNotActive:
		return "not_active"
	case ObservationSessionInvalid:
		return "session_invalid"
	default:
		return "unrecognized"
	}
}

// Observation is the classified result of one status poll.
type Observation struct {
	Kind    ObservationKind
	RawText string
}

// Marker phrases the status endpoint embeds in its response body. The
// endpoint has no structured contract; these literals are the whole wire
// format and must match the service byte for byte.
const (
	markerNotActive     = "Du är inte aktiv på någon lista."
	markerLoginRedirect = "Log in"
	markerEmpty         = "Kön är just nu tom"
	markerNextEntry     = "Nästa i kön"
	markerBusyEnRoute   = "Du är på väg till"
	markerBusyHelping   = "Du är hos"
)

// Classify maps a raw status body onto exactly one observation. An
// unextractable next-entry cell and any unknown body both land in
// ObservationUnrecognized rather than being dropped silently.
func Classify(body string) Observation {
	switch {
	case strings.Contains(body, markerNotActive):
		return Observation{Kind: ObservationNotActive}
	case strings.Contains(body, markerLoginRedirect):
		return Observation{Kind: ObservationSessionInvalid}
	case strings.Contains(body, markerEmpty):
		return Observation{Kind: ObservationEmpty}
	case strings.Contains(body, markerNextEntry):
		text, ok := extractNextEntry(body)
		if !ok {
			return Observation{Kind: ObservationUnrecognized, RawText: body}
		}
		return Observation{Kind: ObservationNextEntry, RawText: text}
	case strings.Contains(body, markerBusyEnRoute), strings.Contains(body, markerBusyHelping):
		return Observation{Kind: ObservationBusy}
	default:
		return Observation{Kind: ObservationUnrecognized, RawText: body}
	}
}

// extractNextEntry pulls the head-of-queue text out of the status markup: the
// table cell after the "Nästa i kön" heading, past its line break, with
// whitespace collapsed.
func extractNextEntry(body string) (string, bool) {
	_, rest, ok := strings.Cut(body, markerNextEntry)
	if !ok {
		return "", false
	}
	cell, _, _ := strings.Cut(rest, "</td>")
	_, after, ok := strings.Cut(cell, "<br />")
	if !ok {
		return "", false
	}

	text := strings.Join(strings.Fields(after), " ")
	if text == "" {
		return "", false
	}
	return text, true
}

// locationSeparator joins a student name and their seat in the queue cell,
// e.g. "Anna Ek i Rum 511".
const locationSeparator = " i "

// SplitNameLocation splits a next-entry cell into the student name and their
// location. Location is empty when the cell carries no separator.
func SplitNameLocation(text string) (name, location string) {
	if n, loc, ok := strings.Cut(text, locationSeparator); ok {
		return strings.TrimSpace(n), strings.TrimSpace(loc)
	}
	return strings.TrimSpace(text), ""
}
