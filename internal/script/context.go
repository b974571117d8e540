package script

// SessionContext carries the process-wide fields every fragment can
// reference. It is fixed once argv parsing is done; steps extend its
// bindings per directive without mutating them.
type SessionContext struct {
	// DBusAddr is the unique bus name callbacks are addressed to.
	DBusAddr string
	// Cmdline is the full invocation, embedded as a script comment.
	Cmdline string
	Debug   bool
	// KDE5 selects the legacy scripting API names.
	KDE5 bool
	// Marker is the script file's base name, the host-side identifier.
	Marker     string
	ScriptName string
	// Shortcut, when set, wraps the script body in a global shortcut
	// registration instead of running it once.
	Shortcut string
}

// Bindings returns the base rendering context.
func (c SessionContext) Bindings() Bindings {
	return Bindings{
		"dbus_addr":   c.DBusAddr,
		"cmdline":     c.Cmdline,
		"debug":       c.Debug,
		"kde5":        c.KDE5,
		"marker":      c.Marker,
		"script_name": c.ScriptName,
		"shortcut":    c.Shortcut,
	}
}
