package session

import "os"

// DetectKDE5 reports whether the environment announces a KDE 5
// session. KWin 5 exposes scripts at a different object path and uses
// the older scripting API names.
func DetectKDE5() bool {
	return os.Getenv("KDE_SESSION_VERSION") == "5"
}
