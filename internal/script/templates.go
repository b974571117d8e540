package script

// The fragment catalog. Every generated script is the header, one
// fragment per directive, an optional last-output fragment, and the
// footer. Fragments operating on a single window receive it as `w`
// from one of the wrapper fragments.
//
// The kwinctl_* shims paper over the KDE 5 / KDE 6 scripting API
// rename (clientList/activeClient vs windowList/activeWindow) so the
// action bodies stay version-neutral.

const fragmentHeader = `// kwinctl script {{.marker}}
// {{.cmdline}}
{{if .kde5}}function kwinctl_window_list() { return workspace.clientList(); }
function kwinctl_active_window() { return workspace.activeClient; }
function kwinctl_activate(w) { workspace.activeClient = w; }
function kwinctl_window_id(w) { return w.windowId; }
function kwinctl_window_screen(w) { return w.screen; }
function kwinctl_current_desktop() { return workspace.currentDesktop; }
function kwinctl_set_current_desktop(n) { workspace.currentDesktop = n; }
function kwinctl_window_desktop(w) { return w.desktop; }
function kwinctl_set_window_desktop(w, n) { w.desktop = n; }
{{else}}function kwinctl_window_list() { return workspace.windowList(); }
function kwinctl_active_window() { return workspace.activeWindow; }
function kwinctl_activate(w) { workspace.activeWindow = w; }
function kwinctl_window_id(w) { return w.internalId; }
function kwinctl_window_screen(w) { return workspace.screens.indexOf(w.output); }
function kwinctl_current_desktop() { return workspace.currentDesktop.x11DesktopNumber; }
function kwinctl_set_current_desktop(n) {
    var all = workspace.desktops;
    if (n >= 1 && n <= all.length) { workspace.currentDesktop = all[n - 1]; }
}
function kwinctl_window_desktop(w) {
    if (w.onAllDesktops || w.desktops.length == 0) { return -1; }
    return w.desktops[0].x11DesktopNumber;
}
function kwinctl_set_window_desktop(w, n) {
    var all = workspace.desktops;
    if (n >= 1 && n <= all.length) { w.desktops = [all[n - 1]]; }
}
{{end}}function result(what) { callDBus("{{.dbus_addr}}", "/", "", "result", "" + what); }
function error(what) { callDBus("{{.dbus_addr}}", "/", "", "error", "" + what); }
function debug(what) {
{{if .debug}}    callDBus("{{.dbus_addr}}", "/", "", "debug", "" + what);
{{end}}}
function find_window(id) {
    var list = kwinctl_window_list();
    for (var i = 0; i < list.length; i++) {
        if ("" + kwinctl_window_id(list[i]) == id) { return list[i]; }
    }
    return null;
}
var window_stack = [];
var saved_stacks = {};
debug("{{.marker}} start");
{{if .shortcut}}registerShortcut("{{if .script_name}}{{.script_name}}{{else}}{{.marker}}{{end}}", "{{if .script_name}}{{.script_name}}{{else}}{{.marker}}{{end}}", "{{.shortcut}}", function() {
{{end}}`

const fragmentFooter = `{{if .shortcut}}});
{{end}}debug("{{.marker}} finish");
`

const fragmentLastOutput = `// step: output
for (var i = 0; i < window_stack.length; i++) {
    result(kwinctl_window_id(window_stack[i]));
}
`

// Wrappers. Each binds the rendered action body as {{.action}} and a
// target window as w.

const fragmentActionWindowID = `// step: {{.step_name}} {{.window_id}}
(function() {
    var w = find_window("{{.window_id}}");
    if (w === null) { error("window not found: {{.window_id}}"); return; }
    {{.action}}
})();
`

const fragmentActionStackItem = `// step: {{.step_name}} %{{.item_index}}
(function() {
    var w = window_stack[{{.item_index}} - 1];
    if (w === undefined) { error("window stack has no item {{.item_index}}"); return; }
    {{.action}}
})();
`

const fragmentActionStackAll = `// step: {{.step_name}} %@
(function() {
    for (var i = 0; i < window_stack.length; i++) {
        var w = window_stack[i];
        {{.action}}
    }
})();
`

const fragmentGlobalAction = `// step: {{.step_name}}
(function() {
    {{.action}}
})();
`

// Query bodies.

const fragmentSearch = `// step: search {{.search_term}}
window_stack = [];
(function() {
    var re = new RegExp("{{.search_term}}");
    var list = kwinctl_window_list();
    for (var i = 0; i < list.length; i++) {
        var w = list[i];
        var attr = [];
        {{if .match_class}}attr.push(re.test(w.resourceClass));
        {{end}}{{if .match_classname}}attr.push(re.test(w.resourceName));
        {{end}}{{if .match_role}}attr.push(re.test(w.windowRole));
        {{end}}{{if .match_name}}attr.push(re.test(w.caption));
        {{end}}var ok;
        {{if .match_all}}ok = attr.length > 0 && attr.every(function(m) { return m; });
        {{else}}ok = attr.some(function(m) { return m; });
        {{end}}{{if .match_pid}}if (w.pid != {{.pid}}) { ok = false; }
        {{end}}{{if .match_desktop}}if (kwinctl_window_desktop(w) != {{.desktop}}) { ok = false; }
        {{end}}{{if .match_screen}}if (kwinctl_window_screen(w) != {{.screen}}) { ok = false; }
        {{end}}if (ok) {
            debug("search match: " + w.caption);
            window_stack.push(w);
            {{if .limit}}if (window_stack.length >= {{.limit}}) { break; }
            {{end}}}
    }
})();
`

const fragmentGetActiveWindow = `// step: getactivewindow
window_stack = [kwinctl_active_window()];
`

const fragmentSaveWindowStack = `// step: savewindowstack {{.name}}
saved_stacks["{{.name}}"] = window_stack;
`

const fragmentLoadWindowStack = `// step: loadwindowstack {{.name}}
if (saved_stacks["{{.name}}"] !== undefined) {
    window_stack = saved_stacks["{{.name}}"];
} else {
    error("no saved window stack '{{.name}}'");
    window_stack = [];
}
`

// Window action bodies, one per command. All operate on w.

var windowActionFragments = map[string]string{
	"getwindowname":      `result(w.caption);`,
	"getwindowclassname": `result(w.resourceClass);`,
	"getwindowpid":       `result(w.pid);`,
	"getwindowid":        `result(kwinctl_window_id(w));`,
	"getwindowgeometry": `var g = w.frameGeometry;
    result("Window " + kwinctl_window_id(w));
    result("  Position: " + g.x + "," + g.y + " (screen: " + kwinctl_window_screen(w) + ")");
    result("  Geometry: " + g.width + "x" + g.height);`,
	"windowactivate": `kwinctl_activate(w);`,
	// KWin 5 exposes no raise call from scripts; activation raises.
	"windowraise":    `{{if .kde5}}workspace.activeClient = w;{{else}}workspace.raiseWindow(w);{{end}}`,
	"windowminimize": `w.minimized = true;`,
	"windowclose":    `w.closeWindow();`,
	"windowstate":    `{{.windowstate}}`,
	"windowmove": `var g = w.frameGeometry;
    var nx = g.x, ny = g.y;
    {{if .relative}}{{if .x}}nx = g.x + {{.x}};
    {{end}}{{if .y}}ny = g.y + {{.y}};
    {{end}}{{if .x_percent}}nx = g.x + Math.round(workspace.workspaceWidth * {{.x_percent}} / 100);
    {{end}}{{if .y_percent}}ny = g.y + Math.round(workspace.workspaceHeight * {{.y_percent}} / 100);
    {{end}}{{else}}{{if .x}}nx = {{.x}};
    {{end}}{{if .y}}ny = {{.y}};
    {{end}}{{if .x_percent}}nx = Math.round(workspace.workspaceWidth * {{.x_percent}} / 100);
    {{end}}{{if .y_percent}}ny = Math.round(workspace.workspaceHeight * {{.y_percent}} / 100);
    {{end}}{{end}}w.frameGeometry = { x: nx, y: ny, width: g.width, height: g.height };`,
	"windowsize": `var g = w.frameGeometry;
    var nw = g.width, nh = g.height;
    {{if .x}}nw = {{.x}};
    {{end}}{{if .y}}nh = {{.y}};
    {{end}}{{if .x_percent}}nw = Math.round(workspace.workspaceWidth * {{.x_percent}} / 100);
    {{end}}{{if .y_percent}}nh = Math.round(workspace.workspaceHeight * {{.y_percent}} / 100);
    {{end}}w.frameGeometry = { x: g.x, y: g.y, width: nw, height: nh };`,
	"set_desktop_for_window": `kwinctl_set_window_desktop(w, {{.desktop_id}});`,
	"get_desktop_for_window": `result(kwinctl_window_desktop(w));`,
}

// Global action bodies.

var globalActionFragments = map[string]string{
	"get_desktop":      `result(kwinctl_current_desktop());`,
	"set_desktop":      `kwinctl_set_current_desktop({{.n}});`,
	"get_num_desktops": `result({{if .kde5}}workspace.desktops{{else}}workspace.desktops.length{{end}});`,
	"set_num_desktops": `{{if .kde5}}workspace.desktops = {{.n}};
    {{else}}while (workspace.desktops.length < {{.n}}) { workspace.createDesktop(workspace.desktops.length, ""); }
    while (workspace.desktops.length > {{.n}}) { workspace.removeDesktop(workspace.desktops[workspace.desktops.length - 1]); }
    {{end}}`,
	"getmouselocation": `var p = workspace.cursorPos;
    result("x:" + p.x + " y:" + p.y);`,
}

// Fragment names used by the compiler for the structural pieces.
const (
	FragmentHeader          = "header"
	FragmentFooter          = "footer"
	FragmentLastOutput      = "last_output"
	FragmentActionWindowID  = "action_window_id"
	FragmentActionStackItem = "action_stack_item"
	FragmentActionStackAll  = "action_stack_all"
	FragmentGlobalAction    = "global_action"
	FragmentSearch          = "search"
	FragmentGetActiveWindow = "getactivewindow"
	FragmentSaveWindowStack = "savewindowstack"
	FragmentLoadWindowStack = "loadwindowstack"
)

func catalog() map[string]string {
	frags := map[string]string{
		FragmentHeader:          fragmentHeader,
		FragmentFooter:          fragmentFooter,
		FragmentLastOutput:      fragmentLastOutput,
		FragmentActionWindowID:  fragmentActionWindowID,
		FragmentActionStackItem: fragmentActionStackItem,
		FragmentActionStackAll:  fragmentActionStackAll,
		FragmentGlobalAction:    fragmentGlobalAction,
		FragmentSearch:          fragmentSearch,
		FragmentGetActiveWindow: fragmentGetActiveWindow,
		FragmentSaveWindowStack: fragmentSaveWindowStack,
		FragmentLoadWindowStack: fragmentLoadWindowStack,
	}
	for name, text := range windowActionFragments {
		frags[name] = text
	}
	for name, text := range globalActionFragments {
		frags[name] = text
	}
	return frags
}

// WindowActionNames returns the window action command names, unsorted.
func WindowActionNames() []string {
	names := make([]string, 0, len(windowActionFragments))
	for name := range windowActionFragments {
		names = append(names, name)
	}
	return names
}

// GlobalActionNames returns the global action command names, unsorted.
func GlobalActionNames() []string {
	names := make([]string, 0, len(globalActionFragments))
	for name := range globalActionFragments {
		names = append(names, name)
	}
	return names
}
