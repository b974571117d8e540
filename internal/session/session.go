// Package session ships a compiled script to the KWin scripting host
// over the session bus and collects the callbacks it emits.
//
// The protocol is load, run, optionally stop, drain: loadScript on the
// scripting object returns a script-instance id, run starts it, and
// the script reports back by calling arbitrary members on this
// process's private callback connection. All remote calls share one
// fixed reply timeout and nothing is retried.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	kwinService        = "org.kde.KWin"
	scriptingPath      = dbus.ObjectPath("/Scripting")
	scriptingInterface = "org.kde.kwin.Scripting"
	scriptInterface    = "org.kde.kwin.Script"
)

// Options configure a session.
type Options struct {
	// Timeout bounds every remote call's reply. Defaults to 5s.
	Timeout time.Duration
	// KDE5 selects the legacy per-instance object path scheme.
	KDE5 bool
	// ScriptName is the name the script is registered under in KWin.
	// May be empty.
	ScriptName string
	Logger     *slog.Logger
}

// Session owns the control connection to KWin and the private
// callback connection the generated script reports to.
type Session struct {
	kwin       *dbus.Conn
	self       *dbus.Conn
	log        *MessageLog
	timeout    time.Duration
	kde5       bool
	scriptName string
	scriptPath string
	logger     *slog.Logger
}

// DialControl opens the control connection only. Enough for unloading
// a registered script; running one needs Dial.
func DialControl(opts Options) (*Session, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	kwin, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	return &Session{
		kwin:       kwin,
		log:        &MessageLog{},
		timeout:    opts.Timeout,
		kde5:       opts.KDE5,
		scriptName: opts.ScriptName,
		logger:     logger,
	}, nil
}

// Dial opens both bus connections. The callback connection installs
// the catch-all handler; godbus services it on its own goroutine, so
// the listener lives exactly as long as the connection and is torn
// down by Close.
func Dial(opts Options) (*Session, error) {
	s, err := DialControl(opts)
	if err != nil {
		return nil, err
	}

	self, err := dbus.ConnectSessionBus(dbus.WithHandler(&callbackHandler{log: s.log, logger: s.logger}))
	if err != nil {
		s.kwin.Close()
		return nil, fmt.Errorf("connect callback bus: %w", err)
	}
	s.self = self
	return s, nil
}

// Address returns the callback connection's unique bus name. It is
// embedded into the script bindings so callbacks reach this process
// instance and no other.
func (s *Session) Address() string {
	return s.self.Names()[0]
}

// CreateScriptFile creates the uniquely named script file and returns
// its base name, the marker identifying this script on the host side.
func (s *Session) CreateScriptFile() (marker string, err error) {
	f, err := os.CreateTemp("", "kwinctl-*.js")
	if err != nil {
		return "", fmt.Errorf("create script file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("create script file: %w", err)
	}
	s.scriptPath = f.Name()
	return filepath.Base(s.scriptPath), nil
}

// WriteScript writes the compiled script text. The file must stay in
// place until Load returns: KWin reads it synchronously during the
// loadScript call.
func (s *Session) WriteScript(text string) error {
	if s.scriptPath == "" {
		return errors.New("no script file created")
	}
	if err := os.WriteFile(s.scriptPath, []byte(text), 0o600); err != nil {
		return fmt.Errorf("write script file: %w", err)
	}
	return nil
}

// Load registers the script with KWin and returns its instance id.
func (s *Session) Load() (int32, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var id int32
	obj := s.kwin.Object(kwinService, scriptingPath)
	err := obj.CallWithContext(ctx, scriptingInterface+".loadScript", 0, s.scriptPath, s.scriptName).Store(&id)
	if err != nil {
		return 0, fmt.Errorf("loadScript: %w", err)
	}
	s.logger.Debug("script loaded", "id", id, "path", s.scriptPath)
	return id, nil
}

// Run starts the loaded script instance.
func (s *Session) Run(id int32) error {
	if err := s.scriptCall(id, "run"); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

// Stop ends the script instance's running state. Callbacks already
// queued by the script are still delivered.
func (s *Session) Stop(id int32) error {
	if err := s.scriptCall(id, "stop"); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	return nil
}

// Remove unloads a previously registered script by name.
func (s *Session) Remove(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	obj := s.kwin.Object(kwinService, scriptingPath)
	if err := obj.CallWithContext(ctx, scriptingInterface+".unloadScript", 0, name).Err; err != nil {
		return fmt.Errorf("unloadScript: %w", err)
	}
	return nil
}

// Messages returns the callbacks collected so far, in arrival order.
// Call only after Run and Stop have returned.
func (s *Session) Messages() []Message {
	return s.log.Snapshot()
}

// Close removes the script file and closes the open connections,
// ending the callback listener.
func (s *Session) Close() error {
	var errs []error
	if s.scriptPath != "" {
		if err := os.Remove(s.scriptPath); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
		s.scriptPath = ""
	}
	if s.self != nil {
		if err := s.self.Close(); err != nil {
			errs = append(errs, err)
		}
		s.self = nil
	}
	if s.kwin != nil {
		if err := s.kwin.Close(); err != nil {
			errs = append(errs, err)
		}
		s.kwin = nil
	}
	return errors.Join(errs...)
}

// scriptCall invokes a method on the per-instance script object. The
// two object path schemes are observed host behavior: KDE 5 exposes
// scripts at /<id>, current KWin at /Scripting/Script<id>.
func (s *Session) scriptCall(id int32, method string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	path := dbus.ObjectPath(fmt.Sprintf("/Scripting/Script%d", id))
	if s.kde5 {
		path = dbus.ObjectPath(fmt.Sprintf("/%d", id))
	}
	obj := s.kwin.Object(kwinService, path)
	return obj.CallWithContext(ctx, scriptInterface+"."+method, 0).Err
}
