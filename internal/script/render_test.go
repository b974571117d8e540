package script

import (
	"strings"
	"testing"
)

func testContext() SessionContext {
	return SessionContext{
		DBusAddr: ":1.42",
		Cmdline:  "kwinctl getactivewindow",
		Marker:   "kwinctl-test.js",
	}
}

func TestBindingsWithDoesNotMutate(t *testing.T) {
	base := Bindings{"a": 1}
	next := base.With("b", 2)

	if _, ok := base["b"]; ok {
		t.Fatal("With mutated the receiver")
	}
	if next["a"] != 1 || next["b"] != 2 {
		t.Fatalf("next = %v, want both keys", next)
	}

	over := next.With("a", 9)
	if next["a"] != 1 {
		t.Fatal("overriding a key mutated the source")
	}
	if over["a"] != 9 {
		t.Fatalf("over[a] = %v, want 9", over["a"])
	}
}

func TestNewRendererParsesCatalog(t *testing.T) {
	if _, err := NewRenderer(); err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
}

func TestRenderMissingKeyIsError(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatal(err)
	}
	_, err = r.Render(FragmentSaveWindowStack, Bindings{})
	if err == nil {
		t.Fatal("expected error for missing binding key")
	}
	if !strings.Contains(err.Error(), FragmentSaveWindowStack) {
		t.Errorf("err = %q, want fragment name in it", err)
	}
}

func TestRenderUnknownFragment(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Render("no_such_fragment", Bindings{}); err == nil {
		t.Fatal("expected error for unknown fragment")
	}
}

func TestRenderHeader(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatal(err)
	}
	out, err := r.Render(FragmentHeader, testContext().Bindings())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"kwinctl-test.js",
		"kwinctl getactivewindow",
		`callDBus(":1.42"`,
		"workspace.windowList()",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("header missing %q", want)
		}
	}
	if strings.Contains(out, "registerShortcut") {
		t.Error("header registers a shortcut without one being set")
	}
}

func TestRenderHeaderKDE5(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatal(err)
	}
	ctx := testContext()
	ctx.KDE5 = true
	out, err := r.Render(FragmentHeader, ctx.Bindings())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "workspace.clientList()") {
		t.Error("KDE5 header does not use clientList")
	}
	if strings.Contains(out, "workspace.windowList()") {
		t.Error("KDE5 header still uses windowList")
	}
}

func TestRenderHeaderShortcut(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatal(err)
	}
	ctx := testContext()
	ctx.Shortcut = "Meta+F1"
	ctx.ScriptName = "focus-editor"
	out, err := r.Render(FragmentHeader, ctx.Bindings())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `registerShortcut("focus-editor", "focus-editor", "Meta+F1"`) {
		t.Errorf("shortcut header wrong:\n%s", out)
	}

	footer, err := r.Render(FragmentFooter, ctx.Bindings())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(footer, "});") {
		t.Error("footer does not close the shortcut wrapper")
	}
}

func TestDebugCallbacksCompiledOut(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatal(err)
	}
	ctx := testContext()

	out, err := r.Render(FragmentHeader, ctx.Bindings())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, `"debug"`) {
		t.Error("debug callback present without debug enabled")
	}

	ctx.Debug = true
	out, err = r.Render(FragmentHeader, ctx.Bindings())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"debug"`) {
		t.Error("debug callback missing with debug enabled")
	}
}

func TestActionNameLists(t *testing.T) {
	windows := WindowActionNames()
	globals := GlobalActionNames()
	if len(windows) != len(windowActionFragments) {
		t.Errorf("WindowActionNames: %d names, want %d", len(windows), len(windowActionFragments))
	}
	if len(globals) != len(globalActionFragments) {
		t.Errorf("GlobalActionNames: %d names, want %d", len(globals), len(globalActionFragments))
	}
	for _, name := range []string{"windowactivate", "windowstate", "getwindowgeometry"} {
		if _, ok := windowActionFragments[name]; !ok {
			t.Errorf("window action %q missing from catalog", name)
		}
	}
	for _, name := range []string{"get_desktop", "getmouselocation"} {
		if _, ok := globalActionFragments[name]; !ok {
			t.Errorf("global action %q missing from catalog", name)
		}
	}
}
