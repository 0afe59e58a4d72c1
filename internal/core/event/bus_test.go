package event

import "testing"

func TestBusDeliversAfterFlush(t *testing.T) {
	b := NewBus()
	var got []HostileKilled
	Subscribe(b, func(e HostileKilled) { got = append(got, e) })

	Emit(b, HostileKilled{})
	Emit(b, HostileKilled{})
	if len(got) != 0 {
		t.Fatalf("delivered before flush: %d", len(got))
	}

	b.Flush()
	if len(got) != 2 {
		t.Fatalf("delivered %d, want 2", len(got))
	}

	b.Flush()
	if len(got) != 2 {
		t.Fatalf("redelivered: %d", len(got))
	}
}

func TestBusResetAndClear(t *testing.T) {
	b := NewBus()
	calls := 0
	Subscribe(b, func(PlayerLeveledUp) { calls++ })

	Emit(b, PlayerLeveledUp{Level: 1})
	b.Reset()
	b.Flush()
	if calls != 0 {
		t.Fatalf("reset event delivered")
	}

	b.Clear()
	Emit(b, PlayerLeveledUp{Level: 2})
	b.Flush()
	if calls != 0 {
		t.Fatalf("cleared handler called")
	}
}
