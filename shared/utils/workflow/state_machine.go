package workflow

import (
	"fmt"

	"sinpd-backend/shared/database/models"
	"sinpd-backend/shared/database/models/npd"
)

// Status is the NPD document status. Forward-only except Reject,
// which returns the document to an editable state.
type Status string

const (
	StatusDraft        Status = "draft"
	StatusDiajukan     Status = "diajukan"     // submitted
	StatusDiverifikasi Status = "diverifikasi" // verified
	StatusFinal        Status = "final"
	StatusDitolak      Status = "ditolak" // rejected, edit-equivalent to draft
)

// Event is a workflow transition trigger.
type Event string

const (
	EventSubmit   Event = "submit"
	EventVerify   Event = "verify"
	EventFinalize Event = "finalize"
	EventReject   Event = "reject"
)

// transitions is the single transition table: (status, event) → next
// status. Every status guard in the system goes through this table,
// not through per-handler conditionals.
var transitions = map[Status]map[Event]Status{
	StatusDraft: {
		EventSubmit: StatusDiajukan,
	},
	StatusDitolak: {
		EventSubmit: StatusDiajukan,
	},
	StatusDiajukan: {
		EventVerify: StatusDiverifikasi,
		EventReject: StatusDitolak,
	},
	StatusDiverifikasi: {
		EventFinalize: StatusFinal,
		EventReject:   StatusDitolak,
	},
	// StatusFinal is terminal: no events.
}

// eventRoles maps each event to the roles allowed to trigger it.
// Admin passes every guard.
var eventRoles = map[Event][]models.Role{
	EventSubmit:   {models.RoleAdmin, models.RolePPTK},
	EventVerify:   {models.RoleAdmin, models.RoleVerifikator, models.RoleBendahara},
	EventFinalize: {models.RoleAdmin, models.RoleBendahara},
	EventReject:   {models.RoleAdmin, models.RoleVerifikator, models.RoleBendahara},
}

// TransitionError describes a refused transition.
type TransitionError struct {
	From  Status
	Event Event
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transisi %s tidak diizinkan dari status %s", e.Event, e.From)
}

// Transition returns the status reached by applying event to current,
// or a *TransitionError when no edge exists.
func Transition(current Status, event Event) (Status, error) {
	if next, ok := transitions[current][event]; ok {
		return next, nil
	}
	return current, &TransitionError{From: current, Event: event}
}

// CanTrigger reports whether role may trigger event at all,
// independent of the current status.
func CanTrigger(role models.Role, event Event) bool {
	for _, r := range eventRoles[event] {
		if r == role {
			return true
		}
	}
	return false
}

// CanEdit reports whether line items and document fields may still be
// mutated. Checked at the top of every NPD mutation handler; once a
// document reaches final no mutation path may alter it.
func CanEdit(s Status) bool {
	return s == StatusDraft || s == StatusDitolak
}

// UncheckedRequired returns the labels of required checklist items not
// yet checked, in checklist order. Verification may proceed only when
// the result is empty; the labels go into the refusal message so the
// verifier sees exactly what is missing.
func UncheckedRequired(items []npd.ChecklistItem) []string {
	var labels []string
	for _, item := range items {
		if item.Required && !item.Checked {
			labels = append(labels, item.Label)
		}
	}
	return labels
}

// ValidStatus reports whether s is a known status value.
func ValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusDiajukan, StatusDiverifikasi, StatusFinal, StatusDitolak:
		return true
	}
	return false
}

// AllowedEvents lists the events available from a status, useful for
// response payloads driving UI state.
func AllowedEvents(s Status) []Event {
	edges := transitions[s]
	events := make([]Event, 0, len(edges))
	for _, ev := range []Event{EventSubmit, EventVerify, EventFinalize, EventReject} {
		if _, ok := edges[ev]; ok {
			events = append(events, ev)
		}
	}
	return events
}
