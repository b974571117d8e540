package compile

import (
	"strings"
	"testing"

	"github.com/kwinctl/kwinctl/internal/args"
	"github.com/kwinctl/kwinctl/internal/script"
)

func compileChain(t *testing.T, tokens ...string) (string, error) {
	t.Helper()
	r, err := script.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	base := script.SessionContext{
		DBusAddr: ":1.42",
		Cmdline:  "kwinctl " + strings.Join(tokens, " "),
		Marker:   "kwinctl-test.js",
	}.Bindings()
	cur := args.NewCursor(tokens[1:])
	return Pipeline(r, base, cur, tokens[0])
}

func mustCompile(t *testing.T, tokens ...string) string {
	t.Helper()
	out, err := compileChain(t, tokens...)
	if err != nil {
		t.Fatalf("compile %v: %v", tokens, err)
	}
	return out
}

func stepCount(s string) int {
	return strings.Count(s, "// step: ")
}

func TestPipelineStepCounts(t *testing.T) {
	tests := []struct {
		tokens []string
		steps  int // including the trailing output fragment
	}{
		{[]string{"getactivewindow"}, 2},
		{[]string{"search", "konsole"}, 2},
		{[]string{"search", "konsole", "windowactivate"}, 2},
		{[]string{"getactivewindow", "windowclose"}, 2},
		{[]string{"search", "konsole", "windowactivate", "getactivewindow"}, 4},
		{[]string{"get_desktop", "set_desktop", "2"}, 2},
	}
	for _, tt := range tests {
		out := mustCompile(t, tt.tokens...)
		if got := stepCount(out); got != tt.steps {
			t.Errorf("%v: %d step fragments, want %d\n%s", tt.tokens, got, tt.steps, out)
		}
	}
}

func TestPipelineLastOutputOnlyForQueries(t *testing.T) {
	out := mustCompile(t, "search", "konsole")
	if !strings.Contains(out, "// step: output") {
		t.Error("query chain missing output fragment")
	}
	out = mustCompile(t, "search", "konsole", "windowactivate")
	if strings.Contains(out, "// step: output") {
		t.Error("action-final chain has an output fragment")
	}
}

func TestPipelinePushbackChainsCommands(t *testing.T) {
	// "windowactivate" is not a window reference, so search pushes it
	// back as the next command.
	out := mustCompile(t, "search", "konsole", "windowactivate")
	if !strings.Contains(out, "// step: search konsole") {
		t.Error("missing search fragment")
	}
	if !strings.Contains(out, "// step: windowactivate %1") {
		t.Error("missing windowactivate fragment")
	}
}

func TestPipelineUnknownCommand(t *testing.T) {
	_, err := compileChain(t, "frobnicate")
	if err == nil {
		t.Fatal("expected error")
	}
	want := "in command 'frobnicate': unknown command 'frobnicate'"
	if err.Error() != want {
		t.Errorf("err = %q, want %q", err, want)
	}
}

func TestPipelineUnexpectedOptionBetweenCommands(t *testing.T) {
	_, err := compileChain(t, "getactivewindow", "--debug")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "unexpected argument '--debug'") {
		t.Errorf("err = %q", err)
	}
}

func TestWindowReferences(t *testing.T) {
	out := mustCompile(t, "windowactivate")
	if !strings.Contains(out, "window_stack[1 - 1]") {
		t.Error("default reference is not the first stack item")
	}

	out = mustCompile(t, "windowactivate", "%2")
	if !strings.Contains(out, "window_stack[2 - 1]") {
		t.Error("%2 does not address stack item 2")
	}

	out = mustCompile(t, "windowminimize", "%@")
	if !strings.Contains(out, "// step: windowminimize %@") {
		t.Error("%@ does not use the whole-stack wrapper")
	}

	out = mustCompile(t, "windowactivate", "0xdeadbeef")
	if !strings.Contains(out, `find_window("0xdeadbeef")`) {
		t.Error("explicit id does not go through find_window")
	}

	out = mustCompile(t, "windowactivate", "{12345678-1234-1234-1234-123456789abc}")
	if !strings.Contains(out, `find_window("{12345678-1234-1234-1234-123456789abc}")`) {
		t.Error("UUID id does not go through find_window")
	}
}

func TestWindowMove(t *testing.T) {
	// A bare decimal in a coordinate slot is a coordinate, never a
	// window id.
	out := mustCompile(t, "windowmove", "100", "200")
	if !strings.Contains(out, "nx = 100;") || !strings.Contains(out, "ny = 200;") {
		t.Errorf("absolute move wrong:\n%s", out)
	}
	if strings.Contains(out, `find_window("100")`) {
		t.Errorf("x coordinate taken as a window id:\n%s", out)
	}
	if !strings.Contains(out, "window_stack[1 - 1]") {
		t.Errorf("move without a reference does not target %%1:\n%s", out)
	}

	// Hex and stack references still work as a leading reference.
	out = mustCompile(t, "windowmove", "0xdeadbeef", "10", "20")
	if !strings.Contains(out, `find_window("0xdeadbeef")`) ||
		!strings.Contains(out, "nx = 10;") || !strings.Contains(out, "ny = 20;") {
		t.Errorf("hex-addressed move wrong:\n%s", out)
	}

	// The axis keyword leaves that axis unchanged; a % suffix makes
	// the value a workspace percentage.
	out = mustCompile(t, "windowmove", "x", "50%")
	if strings.Contains(out, "nx = x") {
		t.Error("axis keyword leaked into the fragment")
	}
	if !strings.Contains(out, "workspace.workspaceHeight * 50 / 100") {
		t.Errorf("percent move wrong:\n%s", out)
	}

	out = mustCompile(t, "windowmove", "--relative", "-5", "10")
	if !strings.Contains(out, "nx = g.x + -5;") || !strings.Contains(out, "ny = g.y + 10;") {
		t.Errorf("relative move wrong:\n%s", out)
	}

	_, err := compileChain(t, "windowmove", "abc", "5")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "invalid integer 'abc'") {
		t.Errorf("err = %q", err)
	}

	_, err = compileChain(t, "windowmove", "100")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "missing argument 'y'") {
		t.Errorf("err = %q", err)
	}
}

func TestWindowSize(t *testing.T) {
	out := mustCompile(t, "windowsize", "%1", "800", "600")
	if !strings.Contains(out, "nw = 800;") || !strings.Contains(out, "nh = 600;") {
		t.Errorf("windowsize wrong:\n%s", out)
	}
	out = mustCompile(t, "windowsize", "50%", "y")
	if !strings.Contains(out, "workspace.workspaceWidth * 50 / 100") {
		t.Errorf("percent size wrong:\n%s", out)
	}
}

func TestWindowState(t *testing.T) {
	out := mustCompile(t, "windowstate", "--add", "above", "--toggle", "minimized")
	above := strings.Index(out, "w.keepAbove = true;")
	toggle := strings.Index(out, "w.minimized = !w.minimized;")
	if above < 0 || toggle < 0 || above > toggle {
		t.Errorf("state ops wrong or out of order:\n%s", out)
	}

	out = mustCompile(t, "windowstate", "--add", "maximized")
	if !strings.Contains(out, "w.setMaximize(true, true);") {
		t.Errorf("maximize wrong:\n%s", out)
	}
	out = mustCompile(t, "windowstate", "--remove", "maximized")
	if !strings.Contains(out, "w.setMaximize(false, false);") {
		t.Errorf("unmaximize wrong:\n%s", out)
	}

	out = mustCompile(t, "windowstate", "%@", "--add", "sticky")
	if !strings.Contains(out, "// step: windowstate %@") || !strings.Contains(out, "w.onAllDesktops = true;") {
		t.Errorf("stack-wide state wrong:\n%s", out)
	}

	_, err := compileChain(t, "windowstate", "--add", "bogus")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "unsupported property 'bogus'") {
		t.Errorf("err = %q", err)
	}
}

func TestSearch(t *testing.T) {
	// No attribute flags matches on every attribute.
	out := mustCompile(t, "search", "konsole")
	for _, want := range []string{"w.resourceClass", "w.resourceName", "w.windowRole", "w.caption"} {
		if !strings.Contains(out, want) {
			t.Errorf("default search missing %q", want)
		}
	}

	out = mustCompile(t, "search", "--class", "konsole")
	if !strings.Contains(out, "w.resourceClass") {
		t.Error("--class search missing resourceClass")
	}
	if strings.Contains(out, "w.windowRole") {
		t.Error("--class search still matches windowRole")
	}

	out = mustCompile(t, "search", "--pid", "42", "konsole")
	if !strings.Contains(out, "w.pid != 42") {
		t.Errorf("--pid search wrong:\n%s", out)
	}

	out = mustCompile(t, "search", "--limit", "2", "konsole")
	if !strings.Contains(out, "window_stack.length >= 2") {
		t.Errorf("--limit search wrong:\n%s", out)
	}

	_, err := compileChain(t, "search", "--pid", "abc", "konsole")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "invalid integer 'abc' for option '--pid'") {
		t.Errorf("err = %q", err)
	}
}

func TestDesktopCommands(t *testing.T) {
	out := mustCompile(t, "set_desktop", "3")
	if !strings.Contains(out, "kwinctl_set_current_desktop(3);") {
		t.Errorf("set_desktop wrong:\n%s", out)
	}

	_, err := compileChain(t, "set_desktop")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "missing argument 'desktop_id'") {
		t.Errorf("err = %q", err)
	}

	_, err = compileChain(t, "set_num_desktops")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "missing argument 'num'") {
		t.Errorf("err = %q", err)
	}

	_, err = compileChain(t, "set_desktop_for_window", "%2")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "missing argument 'desktop_id'") {
		t.Errorf("err = %q", err)
	}

	out = mustCompile(t, "set_desktop_for_window", "%2", "4")
	if !strings.Contains(out, "kwinctl_set_window_desktop(w, 4);") {
		t.Errorf("set_desktop_for_window wrong:\n%s", out)
	}
}

func TestWindowStacks(t *testing.T) {
	out := mustCompile(t, "search", "konsole", "savewindowstack", "term", "search", "editor", "loadwindowstack", "term")
	if !strings.Contains(out, `saved_stacks["term"] = window_stack;`) {
		t.Error("savewindowstack fragment wrong")
	}
	if !strings.Contains(out, `window_stack = saved_stacks["term"];`) {
		t.Error("loadwindowstack fragment wrong")
	}
	// loadwindowstack is a query, so the chain surfaces its stack.
	if !strings.Contains(out, "// step: output") {
		t.Error("missing output fragment after loadwindowstack")
	}

	_, err := compileChain(t, "savewindowstack")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "missing argument 'name'") {
		t.Errorf("err = %q", err)
	}
}
