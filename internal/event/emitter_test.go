package event

import "testing"

func TestChannel_NonBlocking(t *testing.T) {
	ch := make(chan Event, 1)
	em := &Channel{Ch: ch, Source: "run"}
	em.Log(SeverityInfo, "first")
	em.Log(SeverityInfo, "dropped") // buffer full, must not block

	got := <-ch
	if got.Type != TypeLog || got.Message != "first" || got.Source != "run" {
		t.Fatalf("unexpected event: %+v", got)
	}
	select {
	case ev := <-ch:
		t.Fatalf("expected second event to be dropped, got %+v", ev)
	default:
	}
}

func TestMulti_FansOut(t *testing.T) {
	a := make(chan Event, 4)
	b := make(chan Event, 4)
	m := Multi{&Channel{Ch: a}, nil, &Channel{Ch: b}}
	m.Progress("main.py", 1, 3)
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("fan-out failed: a=%d b=%d", len(a), len(b))
	}
	ev := <-a
	if ev.Filename != "main.py" || ev.Completed != 1 || ev.Total != 3 {
		t.Fatalf("unexpected progress event: %+v", ev)
	}
}
