package session

import (
	"os/exec"
	"strings"
	"time"
)

// FetchJournal returns KWin scripting log lines from the systemd user
// journal since the given time. Purely a debugging aid: any failure
// (no journalctl, no systemd, no permissions) yields an empty string
// and is never an error.
func FetchJournal(since time.Time) string {
	out, err := exec.Command("journalctl",
		"--since="+since.Format("2006-01-02 15:04:05"),
		"--user",
		"--user-unit=plasma-kwin_wayland.service",
		"--user-unit=plasma-kwin_x11.service",
		"QT_CATEGORY=js",
		"QT_CATEGORY=kwin_scripting",
		"--output=cat",
	).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
