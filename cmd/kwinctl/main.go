package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/kwinctl/kwinctl/internal/args"
	"github.com/kwinctl/kwinctl/internal/compile"
	"github.com/kwinctl/kwinctl/internal/config"
	"github.com/kwinctl/kwinctl/internal/script"
	"github.com/kwinctl/kwinctl/internal/session"
)

const version = "0.2.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	if len(argv) > 0 && argv[0] == "mcp" {
		return runMCP(argv[1:])
	}

	var (
		optHelp    bool
		optVersion bool
		optDebug   bool
		optDryRun  bool
		optRemove  bool
		shortcut   string
		scriptName string
	)

	cur := args.NewCursor(argv)
	var first string
scan:
	for {
		tok, ok, err := cur.Next()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if !ok {
			break
		}
		switch {
		case tok.Kind == args.KindShort && tok.Text == "h",
			tok.Kind == args.KindLong && tok.Text == "help":
			optHelp = true
		case tok.Kind == args.KindShort && tok.Text == "v",
			tok.Kind == args.KindLong && tok.Text == "version":
			optVersion = true
		case tok.Kind == args.KindShort && tok.Text == "d",
			tok.Kind == args.KindLong && tok.Text == "debug":
			optDebug = true
		case tok.Kind == args.KindShort && tok.Text == "n",
			tok.Kind == args.KindLong && tok.Text == "dry-run":
			optDryRun = true
		case tok.Kind == args.KindLong && tok.Text == "shortcut":
			v, err := cur.FlagValue()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			shortcut = v
		case tok.Kind == args.KindLong && tok.Text == "name":
			v, err := cur.FlagValue()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			scriptName = v
		case tok.Kind == args.KindLong && tok.Text == "remove":
			v, err := cur.FlagValue()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			optRemove = true
			scriptName = v
		case tok.Kind == args.KindValue:
			first = tok.Text
			break scan
		default:
			fmt.Fprintf(os.Stderr, "unexpected argument '%s'\n", tok)
			return 1
		}
	}

	if optVersion {
		fmt.Printf("kwinctl v%s\n", version)
		return 0
	}
	if optHelp || (first == "" && !optRemove) {
		printUsage(os.Stdout)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	debug := optDebug || cfg.Debug

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	kde5 := session.DetectKDE5()
	opts := session.Options{
		Timeout:    time.Duration(cfg.TimeoutMS) * time.Millisecond,
		KDE5:       kde5,
		ScriptName: scriptName,
		Logger:     logger,
	}

	// Removal is a single control call; no callback channel needed.
	if optRemove {
		sess, err := session.DialControl(opts)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer sess.Close()
		if err := sess.Remove(scriptName); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	sess, err := session.Dial(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer sess.Close()

	marker, err := sess.CreateScriptFile()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	renderer, err := script.NewRenderer()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	sctx := script.SessionContext{
		DBusAddr:   sess.Address(),
		Cmdline:    strings.Join(os.Args, " "),
		Debug:      debug,
		KDE5:       kde5,
		Marker:     marker,
		ScriptName: scriptName,
		Shortcut:   shortcut,
	}
	text, err := compile.Pipeline(renderer, sctx.Bindings(), cur, first)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger.Debug("script generated", "marker", marker, "bytes", len(text))

	if optDryRun {
		fmt.Println(strings.TrimSpace(text))
		return 0
	}

	if err := sess.WriteScript(text); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	start := time.Now()
	id, err := sess.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := sess.Run(id); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if shortcut == "" {
		// The script still completes asynchronously; stop only ends
		// the running state, callbacks already queued are delivered.
		if err := sess.Stop(id); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	if debug && cfg.Journal {
		if out := session.FetchJournal(start); out != "" {
			logger.Debug("kwin journal", "log", out)
		}
	}

	session.WriteMessages(os.Stdout, os.Stderr, sess.Messages())

	if shortcut != "" {
		fmt.Printf("Shortcut registered: %s\n", shortcut)
		fmt.Printf("Script ID: %d\n", id)
		if scriptName != "" {
			fmt.Printf("Script name: %s\n", scriptName)
		}
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: kwinctl [options] <command> [args...] [<command> [args...] ...]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -h, --help             Show this help")
	fmt.Fprintln(w, "  -v, --version          Show program version")
	fmt.Fprintln(w, "  -d, --debug            Enable debug output")
	fmt.Fprintln(w, "  -n, --dry-run          Don't run the script, print it to stdout")
	fmt.Fprintln(w, "  --shortcut <key>       Register a global shortcut that runs the script")
	fmt.Fprintln(w, "    --name <name>        Name the registered script so it can be removed later")
	fmt.Fprintln(w, "  --remove <name>        Remove a previously registered script")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  search [options] <term>")
	fmt.Fprintln(w, "  getactivewindow")
	fmt.Fprintln(w, "  savewindowstack <name>")
	fmt.Fprintln(w, "  loadwindowstack <name>")

	windows := script.WindowActionNames()
	sort.Strings(windows)
	for _, name := range windows {
		fmt.Fprintf(w, "  %s [window]\n", name)
	}
	globals := script.GlobalActionNames()
	sort.Strings(globals)
	for _, name := range globals {
		fmt.Fprintf(w, "  %s\n", name)
	}

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve              Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Windows can be specified as:")
	fmt.Fprintln(w, "  %1           the first window in the stack (default)")
	fmt.Fprintln(w, "  %N           the Nth window in the stack")
	fmt.Fprintln(w, "  %@           all windows in the stack")
	fmt.Fprintln(w, "  <window id>  the window with the given id")
}
