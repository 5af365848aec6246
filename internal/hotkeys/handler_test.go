package hotkeys

import (
	"testing"
)

type recorder struct {
	calls []string
	delta float64
}

func (r *recorder) Toggle() error { r.calls = append(r.calls, "toggle"); return nil }

func (r *recorder) ApplyPreset(name string) error {
	r.calls = append(r.calls, "preset:"+name)
	return nil
}

func (r *recorder) AdjustIntensity(delta float64) error {
	r.calls = append(r.calls, "intensity")
	r.delta += delta
	return nil
}

func TestBindingsSkipsUnbound(t *testing.T) {
	got := Bindings(Keys{Toggle: "Mod4-Mod1-r", Cool: "Mod4-Mod1-c"}, 0.05)
	if len(got) != 2 || got[0].Name != "toggle" || got[1].Name != "cool" {
		t.Fatalf("Bindings() = %+v", got)
	}
	if len(Bindings(Keys{}, 0.05)) != 0 {
		t.Fatalf("empty keys should bind nothing")
	}
}

func TestBindingActions(t *testing.T) {
	keys := Keys{
		Toggle:   "a",
		Warm:     "b",
		Neutral:  "c",
		Cool:     "d",
		Brighter: "e",
		Dimmer:   "f",
	}
	r := &recorder{}
	for _, b := range Bindings(keys, 0.05) {
		if err := b.Run(r); err != nil {
			t.Fatalf("%s: %v", b.Name, err)
		}
	}

	want := []string{"toggle", "preset:warm", "preset:neutral", "preset:cool", "intensity", "intensity"}
	if len(r.calls) != len(want) {
		t.Fatalf("calls = %v", r.calls)
	}
	for i := range want {
		if r.calls[i] != want[i] {
			t.Fatalf("call %d = %q, want %q", i, r.calls[i], want[i])
		}
	}
	if r.delta != 0 {
		t.Fatalf("brighter and dimmer should cancel, delta %v", r.delta)
	}
}

func TestIgnoreMasks(t *testing.T) {
	got := ignoreMasks([]uint16{2, 16})
	want := []uint16{0, 2, 16, 18}
	if len(got) != len(want) {
		t.Fatalf("ignoreMasks() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ignoreMasks() = %v, want %v", got, want)
		}
	}
	if got := ignoreMasks(nil); len(got) != 1 || got[0] != 0 {
		t.Fatalf("ignoreMasks(nil) = %v", got)
	}
}
