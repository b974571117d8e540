package compile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kwinctl/kwinctl/internal/args"
	"github.com/kwinctl/kwinctl/internal/script"
)

// Step is one compiled directive: its script fragment, whether running
// it produces a window-set result, and the pushed-back token naming
// the next directive when this one stopped at a value it could not
// consume.
type Step struct {
	Script   string
	IsQuery  bool
	Pushback string
}

type kind int

const (
	kindSearch kind = iota
	kindGetActiveWindow
	kindSaveStack
	kindLoadStack
	kindWindowState
	kindWindowMove
	kindWindowSize
	kindWindowDesktop
	kindWindowSimple
	kindGlobalCount
	kindGlobalSimple
)

// commandKinds maps every command name to its grammar. Built once at
// init; the action name lists come from the fragment catalog so a
// catalog entry can never miss its grammar.
var commandKinds = buildCommandKinds()

func buildCommandKinds() map[string]kind {
	kinds := map[string]kind{
		"search":          kindSearch,
		"getactivewindow": kindGetActiveWindow,
		"savewindowstack": kindSaveStack,
		"loadwindowstack": kindLoadStack,
	}
	for _, name := range script.WindowActionNames() {
		switch name {
		case "windowstate":
			kinds[name] = kindWindowState
		case "windowmove":
			kinds[name] = kindWindowMove
		case "windowsize":
			kinds[name] = kindWindowSize
		case "set_desktop_for_window":
			kinds[name] = kindWindowDesktop
		default:
			kinds[name] = kindWindowSimple
		}
	}
	for _, name := range script.GlobalActionNames() {
		switch name {
		case "set_desktop", "set_num_desktops":
			kinds[name] = kindGlobalCount
		default:
			kinds[name] = kindGlobalSimple
		}
	}
	return kinds
}

// windowStateProperties maps the CLI property names accepted by
// windowstate --add/--remove/--toggle to KWin window properties.
var windowStateProperties = map[string]string{
	"above":             "keepAbove",
	"below":             "keepBelow",
	"demands_attention": "demandsAttention",
	"fullscreen":        "fullScreen",
	"minimized":         "minimized",
	"no_border":         "noBorder",
	"shaded":            "shade",
	"skip_pager":        "skipPager",
	"skip_taskbar":      "skipTaskbar",
	"sticky":            "onAllDesktops",
}

// emitStateOp appends the JS for one --add/--remove/--toggle pair.
// Maximization is a KWin slot rather than a writable property, so it
// does not go through the property table.
func emitStateOp(ops *strings.Builder, op, name string) error {
	if name == "maximized" {
		switch op {
		case "add":
			ops.WriteString("w.setMaximize(true, true); ")
		case "remove":
			ops.WriteString("w.setMaximize(false, false); ")
		case "toggle":
			ops.WriteString("if (w.maximizeMode == 3) { w.setMaximize(false, false); } else { w.setMaximize(true, true); } ")
		}
		return nil
	}
	prop, ok := windowStateProperties[name]
	if !ok {
		return fmt.Errorf("unsupported property '%s'", name)
	}
	switch op {
	case "add":
		fmt.Fprintf(ops, "w.%s = true; ", prop)
	case "remove":
		fmt.Fprintf(ops, "w.%s = false; ", prop)
	case "toggle":
		fmt.Fprintf(ops, "w.%s = !w.%s; ", prop, prop)
	}
	return nil
}

// parseStep compiles the directive named command, consuming its
// arguments from cur.
func parseStep(r *script.Renderer, base script.Bindings, cur *args.Cursor, command string) (Step, error) {
	k, ok := commandKinds[command]
	if !ok {
		return Step{}, fmt.Errorf("unknown command '%s'", command)
	}
	bind := base.With("step_name", command)

	switch k {
	case kindSearch:
		return parseSearch(r, base, cur)
	case kindGetActiveWindow:
		s, err := r.Render(script.FragmentGetActiveWindow, bind)
		if err != nil {
			return Step{}, err
		}
		return Step{Script: s, IsQuery: true}, nil
	case kindSaveStack, kindLoadStack:
		return parseStack(r, bind, cur, k)
	case kindGlobalCount, kindGlobalSimple:
		return parseGlobal(r, bind, cur, command, k)
	default:
		return parseWindowAction(r, bind, cur, command, k)
	}
}

func parseStack(r *script.Renderer, bind script.Bindings, cur *args.Cursor, k kind) (Step, error) {
	var name, pushback string
	haveName := false
loop:
	for {
		tok, ok, err := cur.Next()
		if err != nil {
			return Step{}, err
		}
		if !ok {
			break
		}
		switch {
		case tok.Kind == args.KindValue && !haveName:
			name = tok.Text
			haveName = true
		case tok.Kind == args.KindValue:
			pushback = tok.Text
			break loop
		default:
			return Step{}, fmt.Errorf("unexpected argument '%s'", tok)
		}
	}
	if !haveName {
		return Step{}, errors.New("missing argument 'name'")
	}

	frag := script.FragmentSaveWindowStack
	query := false
	if k == kindLoadStack {
		frag = script.FragmentLoadWindowStack
		query = true
	}
	s, err := r.Render(frag, bind.With("name", name))
	if err != nil {
		return Step{}, err
	}
	return Step{Script: s, IsQuery: query, Pushback: pushback}, nil
}

func parseGlobal(r *script.Renderer, bind script.Bindings, cur *args.Cursor, command string, k kind) (Step, error) {
	var pushback string
	actionBind := bind

	if k == kindGlobalCount {
		var n *int
	loop:
		for {
			tok, ok, err := cur.Next()
			if err != nil {
				return Step{}, err
			}
			if !ok {
				break
			}
			switch {
			case tok.Kind == args.KindValue && n == nil:
				v, err := strconv.Atoi(tok.Text)
				if err != nil {
					return Step{}, fmt.Errorf("invalid integer '%s'", tok.Text)
				}
				n = &v
			case tok.Kind == args.KindValue:
				pushback = tok.Text
				break loop
			default:
				return Step{}, fmt.Errorf("unexpected argument '%s'", tok)
			}
		}
		if n == nil {
			if command == "set_desktop" {
				return Step{}, errors.New("missing argument 'desktop_id'")
			}
			return Step{}, errors.New("missing argument 'num'")
		}
		actionBind = bind.With("n", *n)
	}

	action, err := r.Render(command, actionBind)
	if err != nil {
		return Step{}, err
	}
	s, err := r.Render(script.FragmentGlobalAction, bind.With("action", action))
	if err != nil {
		return Step{}, err
	}
	return Step{Script: s, Pushback: pushback}, nil
}

func parseWindowAction(r *script.Renderer, bind script.Bindings, cur *args.Cursor, command string, k kind) (Step, error) {
	var windowTok, pushback string
	actionBind := bind

	switch k {
	case kindWindowState:
		var ops strings.Builder
	stateLoop:
		for {
			tok, ok, err := cur.Next()
			if err != nil {
				return Step{}, err
			}
			if !ok {
				break
			}
			switch {
			case tok.Kind == args.KindLong && (tok.Text == "add" || tok.Text == "remove" || tok.Text == "toggle"):
				name, err := cur.FlagValue()
				if err != nil {
					return Step{}, err
				}
				if err := emitStateOp(&ops, tok.Text, strings.ToLower(name)); err != nil {
					return Step{}, err
				}
			case tok.Kind == args.KindValue && windowTok == "" && isWindowToken(tok.Text):
				windowTok = tok.Text
			case tok.Kind == args.KindValue:
				pushback = tok.Text
				break stateLoop
			default:
				return Step{}, fmt.Errorf("unexpected argument '%s'", tok)
			}
		}
		actionBind = bind.With("windowstate", strings.TrimSpace(ops.String()))

	case kindWindowMove, kindWindowSize:
		relative := false
		var xRaw, yRaw *string
	moveLoop:
		for {
			tok, ok, err := cur.Next()
			if err != nil {
				return Step{}, err
			}
			if !ok {
				break
			}
			switch {
			case tok.Kind == args.KindLong && tok.Text == "relative" && k == kindWindowMove:
				relative = true
			case tok.Kind == args.KindValue && windowTok == "" && xRaw == nil && isNonDecimalWindowToken(tok.Text):
				windowTok = tok.Text
			case tok.Kind == args.KindValue && xRaw == nil:
				v := tok.Text
				xRaw = &v
			case tok.Kind == args.KindValue && yRaw == nil:
				v := tok.Text
				yRaw = &v
			case tok.Kind == args.KindValue:
				pushback = tok.Text
				break moveLoop
			default:
				return Step{}, fmt.Errorf("unexpected argument '%s'", tok)
			}
		}
		x, xPercent, err := parseAxis(xRaw, "x")
		if err != nil {
			return Step{}, err
		}
		y, yPercent, err := parseAxis(yRaw, "y")
		if err != nil {
			return Step{}, err
		}
		actionBind = bind.
			With("relative", relative).
			With("x", x).
			With("y", y).
			With("x_percent", xPercent).
			With("y_percent", yPercent)

	case kindWindowDesktop:
		var desktop *int
	desktopLoop:
		for {
			tok, ok, err := cur.Next()
			if err != nil {
				return Step{}, err
			}
			if !ok {
				break
			}
			switch {
			case tok.Kind == args.KindValue && windowTok == "" && desktop == nil && isWindowToken(tok.Text):
				windowTok = tok.Text
			case tok.Kind == args.KindValue && desktop == nil:
				v, err := strconv.Atoi(tok.Text)
				if err != nil {
					return Step{}, fmt.Errorf("invalid integer '%s'", tok.Text)
				}
				desktop = &v
			case tok.Kind == args.KindValue:
				pushback = tok.Text
				break desktopLoop
			default:
				return Step{}, fmt.Errorf("unexpected argument '%s'", tok)
			}
		}
		if desktop == nil {
			return Step{}, errors.New("missing argument 'desktop_id'")
		}
		actionBind = bind.With("desktop_id", *desktop)

	default: // kindWindowSimple
	simpleLoop:
		for {
			tok, ok, err := cur.Next()
			if err != nil {
				return Step{}, err
			}
			if !ok {
				break
			}
			switch {
			case tok.Kind == args.KindValue && windowTok == "" && isWindowToken(tok.Text):
				windowTok = tok.Text
			case tok.Kind == args.KindValue:
				pushback = tok.Text
				break simpleLoop
			default:
				return Step{}, fmt.Errorf("unexpected argument '%s'", tok)
			}
		}
	}

	action, err := r.Render(command, actionBind)
	if err != nil {
		return Step{}, err
	}

	if windowTok == "" {
		windowTok = "%1"
	}
	wrapBind := bind.With("action", action)

	var s string
	switch {
	case windowTok == "%@":
		s, err = r.Render(script.FragmentActionStackAll, wrapBind)
	case strings.HasPrefix(windowTok, "%"):
		index, convErr := strconv.Atoi(windowTok[1:])
		if convErr != nil {
			return Step{}, fmt.Errorf("invalid window stack reference '%s'", windowTok)
		}
		s, err = r.Render(script.FragmentActionStackItem, wrapBind.With("item_index", index))
	default:
		s, err = r.Render(script.FragmentActionWindowID, wrapBind.With("window_id", windowTok))
	}
	if err != nil {
		return Step{}, err
	}
	return Step{Script: s, Pushback: pushback}, nil
}

// parseAxis interprets one windowmove/windowsize positional: the axis
// keyword leaves the axis unset, a trailing % makes it a percentage,
// anything else must be a plain integer.
func parseAxis(raw *string, axis string) (abs, percent string, err error) {
	if raw == nil {
		return "", "", fmt.Errorf("missing argument '%s'", axis)
	}
	v := *raw
	if v == axis {
		return "", "", nil
	}
	if p, ok := strings.CutSuffix(v, "%"); ok {
		if _, err := strconv.Atoi(p); err != nil {
			return "", "", fmt.Errorf("invalid integer '%s'", p)
		}
		return "", p, nil
	}
	if _, err := strconv.Atoi(v); err != nil {
		return "", "", fmt.Errorf("invalid integer '%s'", v)
	}
	return v, "", nil
}

func parseSearch(r *script.Renderer, base script.Bindings, cur *args.Cursor) (Step, error) {
	var (
		matchClass, matchClassname, matchRole, matchName bool
		matchPid, matchDesktop, matchScreen, matchAll    bool
		pid, desktop, screen, limit                      int
		term, pushback                                   string
		haveTerm                                         bool
	)

	intFlag := func(name string) (int, error) {
		v, err := cur.FlagValue()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid integer '%s' for option '--%s'", v, name)
		}
		return n, nil
	}

loop:
	for {
		tok, ok, err := cur.Next()
		if err != nil {
			return Step{}, err
		}
		if !ok {
			break
		}
		switch {
		case tok.Kind == args.KindLong:
			switch tok.Text {
			case "class":
				matchClass = true
			case "classname":
				matchClassname = true
			case "role":
				matchRole = true
			case "name":
				matchName = true
			case "pid":
				matchPid = true
				if pid, err = intFlag("pid"); err != nil {
					return Step{}, err
				}
			case "desktop":
				matchDesktop = true
				if desktop, err = intFlag("desktop"); err != nil {
					return Step{}, err
				}
			case "screen":
				matchScreen = true
				if screen, err = intFlag("screen"); err != nil {
					return Step{}, err
				}
			case "limit":
				if limit, err = intFlag("limit"); err != nil {
					return Step{}, err
				}
			case "all":
				matchAll = true
			case "any":
				matchAll = false
			default:
				return Step{}, fmt.Errorf("unexpected argument '%s'", tok)
			}
		case tok.Kind == args.KindValue && !haveTerm:
			term = tok.Text
			haveTerm = true
		case tok.Kind == args.KindValue:
			pushback = tok.Text
			break loop
		default:
			return Step{}, fmt.Errorf("unexpected argument '%s'", tok)
		}
	}

	// With no attribute flags given, match on every attribute.
	if !matchClass && !matchClassname && !matchRole && !matchName {
		matchClass = true
		matchClassname = true
		matchRole = true
		matchName = true
	}

	bind := script.Bindings{
		"step_name":       "search",
		"debug":           base["debug"],
		"kde5":            base["kde5"],
		"match_class":     matchClass,
		"match_classname": matchClassname,
		"match_role":      matchRole,
		"match_name":      matchName,
		"match_pid":       matchPid,
		"pid":             pid,
		"match_desktop":   matchDesktop,
		"desktop":         desktop,
		"match_screen":    matchScreen,
		"screen":          screen,
		"limit":           limit,
		"match_all":       matchAll,
		"search_term":     term,
	}
	s, err := r.Render(script.FragmentSearch, bind)
	if err != nil {
		return Step{}, err
	}
	return Step{Script: s, IsQuery: true, Pushback: pushback}, nil
}
