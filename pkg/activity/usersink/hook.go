// Package usersink forwards settings activity to a go-users ActivitySink.
package usersink

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-settings/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook adapts settings events to a go-users ActivitySink. Device-originated
// changes carry no actor, so DeviceID stands in as the actor when the event
// does not name one.
type Hook struct {
	Sink     usertypes.ActivitySink
	DeviceID uuid.UUID
}

// Notify maps the event into an ActivityRecord and forwards it to the sink.
// The option id is the record's object; values, source and session travel in
// Data.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	e := activity.NormalizeEvent(event)
	if e.Verb == "" || e.ObjectType == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	record := usertypes.ActivityRecord{
		ActorID:    parseUUID(e.ActorID),
		UserID:     parseUUID(e.UserID),
		TenantID:   parseUUID(e.TenantID),
		Verb:       e.Verb,
		ObjectType: e.ObjectType,
		ObjectID:   e.ObjectID(),
		Channel:    e.Channel,
		Data:       e.Data(),
		OccurredAt: e.OccurredAt,
	}
	if record.ActorID == uuid.Nil {
		record.ActorID = h.DeviceID
	}
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now()
	}
	return h.Sink.Log(ctx, record)
}

func parseUUID(input string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(input))
	if err != nil {
		return uuid.Nil
	}
	return id
}
