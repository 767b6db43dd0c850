// Package activity reports changes to stored settings: values written or
// removed, options locked by the resolver and confirmations settled by the
// operator.
package activity

import (
	"strings"
	"time"
)

// Verbs emitted by the store and the panel.
const (
	VerbOptionUpdated        = "settings.option.updated"
	VerbOptionRemoved        = "settings.option.removed"
	VerbOptionLocked         = "settings.option.locked"
	VerbConfirmationAccepted = "settings.confirmation.accepted"
	VerbConfirmationDeclined = "settings.confirmation.declined"
)

// Object types emitted by the store and the panel.
const (
	ObjectTypeOption       = "settings.option"
	ObjectTypeConfirmation = "settings.confirmation"
)

// Sources describing who caused a change.
const (
	SourceOperator = "operator"
	SourceResolver = "resolver"
	SourceRollback = "rollback"
)

// SessionContext is the operating context a change happened in.
type SessionContext struct {
	VehicleID  string
	Parked     *bool
	Generation uint64
	SnapshotID string
}

// Event is one change to the settings of a vehicle. OldValue is nil when the
// key was absent; NewValue is nil for removals and locks.
type Event struct {
	Verb       string
	ObjectType string
	OptionID   string
	OldValue   *string
	NewValue   *string
	Source     string
	Reason     string
	Session    SessionContext
	ActorID    string
	UserID     string
	TenantID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// OptionUpdated reports raw stored under id. old is nil when id was absent.
func OptionUpdated(id string, old *string, raw string) Event {
	return Event{
		Verb:       VerbOptionUpdated,
		ObjectType: ObjectTypeOption,
		OptionID:   id,
		OldValue:   old,
		NewValue:   &raw,
	}
}

// OptionRemoved reports id deleted from the store.
func OptionRemoved(id string, old *string) Event {
	return Event{
		Verb:       VerbOptionRemoved,
		ObjectType: ObjectTypeOption,
		OptionID:   id,
		OldValue:   old,
	}
}

// OptionLocked reports id locked against operator writes.
func OptionLocked(id, reason string) Event {
	return Event{
		Verb:       VerbOptionLocked,
		ObjectType: ObjectTypeOption,
		OptionID:   id,
		Source:     SourceResolver,
		Reason:     reason,
	}
}

// ConfirmationSettled reports the operator's answer to a confirmation on id.
func ConfirmationSettled(id string, accepted bool) Event {
	e := Event{
		Verb:       VerbConfirmationDeclined,
		ObjectType: ObjectTypeConfirmation,
		OptionID:   id,
		Source:     SourceRollback,
	}
	if accepted {
		e.Verb = VerbConfirmationAccepted
		e.Source = SourceOperator
	}
	return e
}

// WithSource returns a copy of e attributed to source.
func (e Event) WithSource(source string) Event {
	e.Source = source
	return e
}

// WithSession returns a copy of e carrying session.
func (e Event) WithSession(session SessionContext) Event {
	e.Session = session
	return e
}

// WithActor returns a copy of e attributed to actorID.
func (e Event) WithActor(actorID string) Event {
	e.ActorID = actorID
	return e
}

// WithMetadata returns a copy of e with key set in its metadata.
func (e Event) WithMetadata(key string, value any) Event {
	meta := cloneMap(e.Metadata)
	if meta == nil {
		meta = map[string]any{}
	}
	meta[key] = value
	e.Metadata = meta
	return e
}

// ObjectID is the option id, or the snapshot id for events about no single
// option, or the object type as a last resort.
func (e Event) ObjectID() string {
	if id := strings.TrimSpace(e.OptionID); id != "" {
		return id
	}
	if id := strings.TrimSpace(e.Session.SnapshotID); id != "" {
		return id
	}
	return e.ObjectType
}

// Data flattens the settings fields and metadata into one map for sinks that
// store free-form payloads. Metadata never overrides the settings fields.
func (e Event) Data() map[string]any {
	data := cloneMap(e.Metadata)
	if data == nil {
		data = map[string]any{}
	}
	if e.OptionID != "" {
		data["option_id"] = e.OptionID
	}
	if e.OldValue != nil {
		data["old_value"] = *e.OldValue
	}
	if e.NewValue != nil {
		data["new_value"] = *e.NewValue
	}
	if e.Source != "" {
		data["source"] = e.Source
	}
	if e.Reason != "" {
		data["reason"] = e.Reason
	}
	if e.Session.VehicleID != "" {
		data["vehicle_id"] = e.Session.VehicleID
	}
	if e.Session.Parked != nil {
		data["parked"] = *e.Session.Parked
	}
	if e.Session.Generation > 0 {
		data["generation"] = e.Session.Generation
	}
	if e.Session.SnapshotID != "" {
		data["snapshot_id"] = e.Session.SnapshotID
	}
	return data
}

// NormalizeEvent trims identifiers, copies pointers and metadata so hooks may
// keep the event, and stamps OccurredAt.
func NormalizeEvent(event Event) Event {
	n := event
	n.Verb = strings.TrimSpace(event.Verb)
	n.ObjectType = strings.TrimSpace(event.ObjectType)
	n.OptionID = strings.TrimSpace(event.OptionID)
	n.Source = strings.TrimSpace(event.Source)
	n.ActorID = strings.TrimSpace(event.ActorID)
	n.UserID = strings.TrimSpace(event.UserID)
	n.TenantID = strings.TrimSpace(event.TenantID)
	n.Channel = strings.TrimSpace(event.Channel)
	n.OldValue = copyString(event.OldValue)
	n.NewValue = copyString(event.NewValue)
	if event.Session.Parked != nil {
		parked := *event.Session.Parked
		n.Session.Parked = &parked
	}
	n.Metadata = cloneMap(event.Metadata)
	if n.OccurredAt.IsZero() {
		n.OccurredAt = time.Now()
	}
	return n
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
