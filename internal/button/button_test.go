package button

import (
	"testing"
	"time"
)

var t0 = time.Date(2024, time.March, 8, 20, 0, 0, 0, time.UTC)

const window = time.Second

func TestDebouncer_LonePressIsNoise(t *testing.T) {
	d := NewDebouncer(window)

	if e := d.Sample(true, t0); e != EdgeNone {
		t.Fatalf("first press emitted %s", e)
	}
	if s := d.State(t0.Add(500 * time.Millisecond)); s != StateArmed {
		t.Fatalf("state = %s, want armed inside the window", s)
	}

	// Window passes with no second press: back to idle, no edge ever.
	if s := d.State(t0.Add(2 * time.Second)); s != StateIdle {
		t.Fatalf("state = %s, want idle after the window expired", s)
	}
	if d.Active(t0.Add(2 * time.Second)) {
		t.Fatal("a lone pulse activated the display")
	}
}

func TestDebouncer_DoublePressActivates(t *testing.T) {
	d := NewDebouncer(window)

	d.Sample(true, t0)
	e := d.Sample(true, t0.Add(300*time.Millisecond))
	if e != EdgeActivate {
		t.Fatalf("confirmed pair emitted %s, want activate", e)
	}
	if !d.Active(t0.Add(400 * time.Millisecond)) {
		t.Fatal("debouncer not active after a confirmed pair")
	}

	// Exactly one edge per pair: a third press alone changes nothing.
	if e := d.Sample(true, t0.Add(10*time.Second)); e != EdgeNone {
		t.Fatalf("third press emitted %s", e)
	}
}

func TestDebouncer_SpacedPressesResetWindow(t *testing.T) {
	d := NewDebouncer(window)

	d.Sample(true, t0)
	// The second press is too late; it becomes a new first press.
	if e := d.Sample(true, t0.Add(3*time.Second)); e != EdgeNone {
		t.Fatalf("late press emitted %s", e)
	}
	if s := d.State(t0.Add(3 * time.Second)); s != StateArmed {
		t.Fatalf("state = %s, want re-armed", s)
	}

	// And a prompt follow-up confirms from the new window.
	if e := d.Sample(true, t0.Add(3*time.Second+500*time.Millisecond)); e != EdgeActivate {
		t.Fatalf("follow-up emitted %s, want activate", e)
	}
}

func TestDebouncer_DoublePressWhileActiveDeactivates(t *testing.T) {
	d := NewDebouncer(window)

	d.Sample(true, t0)
	d.Sample(true, t0.Add(200*time.Millisecond))

	at := t0.Add(time.Minute)
	if e := d.Sample(true, at); e != EdgeNone {
		t.Fatalf("first press while active emitted %s", e)
	}
	if e := d.Sample(true, at.Add(400*time.Millisecond)); e != EdgeDeactivate {
		t.Fatalf("confirmed pair while active emitted %s, want deactivate", e)
	}
	if d.Active(at.Add(time.Second)) {
		t.Fatal("still active after deactivate edge")
	}
}

func TestDebouncer_LonePressWhileActiveIsNoise(t *testing.T) {
	d := NewDebouncer(window)

	d.Sample(true, t0)
	d.Sample(true, t0.Add(100*time.Millisecond))

	at := t0.Add(time.Minute)
	d.Sample(true, at)
	if s := d.State(at.Add(5 * time.Second)); s != StateActive {
		t.Fatalf("state = %s, want active after the pending press expired", s)
	}
}

func TestDebouncer_MalformedSamplesIgnored(t *testing.T) {
	d := NewDebouncer(window)

	d.Sample(true, t0)
	// Empty samples between the two presses must not break the pair.
	d.Sample(false, t0.Add(100*time.Millisecond))
	d.Sample(false, t0.Add(200*time.Millisecond))

	if e := d.Sample(true, t0.Add(300*time.Millisecond)); e != EdgeActivate {
		t.Fatalf("pair with interleaved noise emitted %s, want activate", e)
	}
}

func TestDebouncer_Reset(t *testing.T) {
	d := NewDebouncer(window)

	d.Sample(true, t0)
	d.Sample(true, t0.Add(100*time.Millisecond))
	d.Reset()

	if d.Active(t0.Add(200 * time.Millisecond)) {
		t.Fatal("active after reset")
	}
	// After a reset the next pair activates again.
	d.Sample(true, t0.Add(time.Second))
	if e := d.Sample(true, t0.Add(1500*time.Millisecond)); e != EdgeActivate {
		t.Fatalf("pair after reset emitted %s, want activate", e)
	}
}
