package activity

import (
	"testing"
)

func TestOptionUpdatedCarriesValues(t *testing.T) {
	old := "0"
	event := OptionUpdated("EnforceTorqueLateral", &old, "1").WithSource(SourceOperator)
	if event.Verb != VerbOptionUpdated || event.ObjectType != ObjectTypeOption || event.ObjectID() != "EnforceTorqueLateral" {
		t.Fatalf("unexpected event %+v", event)
	}
	if *event.OldValue != "0" || *event.NewValue != "1" || event.Source != SourceOperator {
		t.Fatalf("unexpected values %+v", event)
	}
}

func TestOptionRemovedHasNoNewValue(t *testing.T) {
	event := OptionRemoved("OsmLocalDb", nil)
	if event.Verb != VerbOptionRemoved || event.NewValue != nil || event.OldValue != nil {
		t.Fatalf("unexpected event %+v", event)
	}
	if _, ok := event.Data()["new_value"]; ok {
		t.Fatalf("expected no new_value, got %+v", event.Data())
	}
}

func TestOptionLockedIsResolverSourced(t *testing.T) {
	event := OptionLocked("EnforceTorqueLateral", "unsupported by selected vehicle")
	if event.Source != SourceResolver || event.Reason != "unsupported by selected vehicle" {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestConfirmationSettledVerbAndSource(t *testing.T) {
	cases := []struct {
		accepted bool
		verb     string
		source   string
	}{
		{accepted: true, verb: VerbConfirmationAccepted, source: SourceOperator},
		{accepted: false, verb: VerbConfirmationDeclined, source: SourceRollback},
	}
	for _, tc := range cases {
		event := ConfirmationSettled("EnableMads", tc.accepted)
		if event.Verb != tc.verb || event.Source != tc.source || event.ObjectType != ObjectTypeConfirmation {
			t.Fatalf("accepted=%v: unexpected event %+v", tc.accepted, event)
		}
	}
}

func TestEventObjectIDFallbacks(t *testing.T) {
	event := Event{ObjectType: ObjectTypeOption}
	if event.ObjectID() != ObjectTypeOption {
		t.Fatalf("expected object type fallback, got %q", event.ObjectID())
	}
	event = event.WithSession(SessionContext{SnapshotID: "snap-9"})
	if event.ObjectID() != "snap-9" {
		t.Fatalf("expected snapshot fallback, got %q", event.ObjectID())
	}
}

func TestEventDataFlattensSession(t *testing.T) {
	parked := false
	event := OptionUpdated("QuietDrive", nil, "1").
		WithSource(SourceResolver).
		WithSession(SessionContext{VehicleID: "TOYOTA_MIRAI", Parked: &parked, Generation: 7, SnapshotID: "snap-1"}).
		WithMetadata("option_id", "spoofed").
		WithMetadata("token", "abc")

	data := event.Data()
	want := map[string]any{
		"option_id":   "QuietDrive",
		"new_value":   "1",
		"source":      SourceResolver,
		"vehicle_id":  "TOYOTA_MIRAI",
		"parked":      false,
		"generation":  uint64(7),
		"snapshot_id": "snap-1",
		"token":       "abc",
	}
	if len(data) != len(want) {
		t.Fatalf("expected %d keys, got %+v", len(want), data)
	}
	for key, value := range want {
		if data[key] != value {
			t.Fatalf("%s: expected %v, got %v", key, value, data[key])
		}
	}
}

func TestWithMetadataLeavesOriginalUntouched(t *testing.T) {
	base := OptionUpdated("QuietDrive", nil, "1").WithMetadata("a", 1)
	derived := base.WithMetadata("b", 2)
	if _, ok := base.Metadata["b"]; ok {
		t.Fatalf("expected base metadata untouched, got %+v", base.Metadata)
	}
	if derived.Metadata["a"] != 1 || derived.Metadata["b"] != 2 {
		t.Fatalf("unexpected derived metadata %+v", derived.Metadata)
	}
}

func TestNormalizeEventCopiesAndDefaults(t *testing.T) {
	old := "10"
	parked := true
	event := OptionUpdated(" TorqueFriction ", &old, "20").
		WithSource(" operator ").
		WithSession(SessionContext{Parked: &parked}).
		WithMetadata("k", "v")
	event.Channel = " settings "

	got := NormalizeEvent(event)
	if got.OptionID != "TorqueFriction" || got.Source != SourceOperator || got.Channel != "settings" {
		t.Fatalf("unexpected trimming %+v", got)
	}
	if got.OccurredAt.IsZero() {
		t.Fatalf("expected OccurredAt stamped")
	}
	*got.OldValue = "changed"
	*got.Session.Parked = false
	got.Metadata["k"] = "changed"
	if old != "10" || !parked || event.Metadata["k"] != "v" {
		t.Fatalf("expected original event untouched")
	}
}
