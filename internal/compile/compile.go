// Package compile turns a flat directive token stream into one
// runnable KWin script.
//
// Directives chain without separators: each grammar consumes the
// tokens it recognizes and hands the first token it cannot place back
// to the pipeline loop as the name of the next directive. The loop
// appends one fragment per directive between the script header and
// footer, and surfaces the final directive's window stack when that
// directive is a query.
package compile

import (
	"fmt"
	"strings"

	"github.com/kwinctl/kwinctl/internal/args"
	"github.com/kwinctl/kwinctl/internal/script"
)

// Pipeline compiles the directive chain starting at command, consuming
// the remaining tokens of cur. base must carry the session bindings
// (dbus_addr, cmdline, debug, kde5, marker, script_name, shortcut).
func Pipeline(r *script.Renderer, base script.Bindings, cur *args.Cursor, command string) (string, error) {
	var out strings.Builder

	header, err := r.Render(script.FragmentHeader, base)
	if err != nil {
		return "", err
	}
	out.WriteString(header)

	lastIsQuery := false
	for {
		step, err := parseStep(r, base, cur, command)
		if err != nil {
			return "", fmt.Errorf("in command '%s': %w", command, err)
		}
		out.WriteString(step.Script)
		lastIsQuery = step.IsQuery

		if step.Pushback != "" {
			command = step.Pushback
			continue
		}
		tok, ok, err := cur.Next()
		if err != nil {
			return "", err
		}
		if !ok {
			break
		}
		if tok.Kind != args.KindValue {
			return "", fmt.Errorf("unexpected argument '%s'", tok)
		}
		command = tok.Text
	}

	// Only the final directive's result set is surfaced; intermediate
	// queries feed the window stack consumed by later fragments.
	if lastIsQuery {
		last, err := r.Render(script.FragmentLastOutput, base)
		if err != nil {
			return "", err
		}
		out.WriteString(last)
	}

	footer, err := r.Render(script.FragmentFooter, base)
	if err != nil {
		return "", err
	}
	out.WriteString(footer)
	return out.String(), nil
}
