package plugin

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDispatcher_RunsSubscribers(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "calls")
	writePlugin(t, root, "recorder", []string{ActionRecognized},
		"cat >> '"+out+"'\necho >> '"+out+"'\necho '{\"success\":true}'\n")
	writePlugin(t, root, "ignored", []string{"other"},
		"echo ignored >> '"+out+"'\necho '{\"success\":true}'\n")

	m := NewManager(root)
	if err := m.Discover(); err != nil {
		t.Fatal(err)
	}
	d := NewDispatcher(m, NewExecutor(5000), 4)

	for _, label := range []string{"A", "B"} {
		if !d.Dispatch(Request{Action: ActionRecognized, Label: label}) {
			t.Fatalf("Dispatch(%s) dropped", label)
		}
	}
	d.Close(context.Background())

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("plugin did not run: %v", err)
	}
	got := string(data)
	if strings.Contains(got, "ignored") {
		t.Error("plugin without the recognized action should not run")
	}
	a, b := strings.Index(got, `"label":"A"`), strings.Index(got, `"label":"B"`)
	if a < 0 || b < 0 || a > b {
		t.Errorf("requests not delivered in order: %s", got)
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "slow", []string{ActionRecognized}, "sleep 1\necho '{\"success\":true}'\n")

	m := NewManager(root)
	m.Discover()
	d := NewDispatcher(m, NewExecutor(5000), 1)

	accepted := 0
	for i := 0; i < 10; i++ {
		if d.Dispatch(Request{Action: ActionRecognized, Label: "A"}) {
			accepted++
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	d.Close(ctx)

	if accepted >= 10 {
		t.Errorf("expected some requests to be dropped, accepted %d", accepted)
	}
	if d.Dropped() != 10-accepted {
		t.Errorf("Dropped() = %d, want %d", d.Dropped(), 10-accepted)
	}
}

func TestDispatcher_DispatchAfterClose(t *testing.T) {
	d := NewDispatcher(NewManager(""), NewExecutor(1000), 1)
	d.Close(context.Background())

	if d.Dispatch(Request{Action: ActionRecognized}) {
		t.Error("Dispatch after Close should be rejected")
	}
	d.Close(context.Background())
}
