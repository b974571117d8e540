package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kwinctl/kwinctl/internal/args"
	"github.com/kwinctl/kwinctl/internal/compile"
	"github.com/kwinctl/kwinctl/internal/script"
	"github.com/kwinctl/kwinctl/internal/session"
)

type RunCommandInput struct {
	Args []string `json:"args" jsonschema:"directive chain, one token per element"`
}

type RunCommandOutput struct {
	Results     []string `json:"results"`
	Errors      []string `json:"errors,omitempty"`
	Passthrough []string `json:"passthrough,omitempty"`
}

type RenderScriptInput struct {
	Args []string `json:"args" jsonschema:"directive chain, one token per element"`
}

type RenderScriptOutput struct {
	Script string `json:"script"`
}

type ListCommandsInput struct{}

type ListCommandsOutput struct {
	Queries       []string `json:"queries"`
	WindowActions []string `json:"window_actions"`
	GlobalActions []string `json:"global_actions"`
}

func (s *Server) handleRunCommand(_ context.Context, _ *mcpsdk.CallToolRequest, in RunCommandInput) (*mcpsdk.CallToolResult, RunCommandOutput, error) {
	sess, text, err := s.prepare(in.Args)
	if err != nil {
		return nil, RunCommandOutput{}, err
	}
	defer sess.Close()

	if err := sess.WriteScript(text); err != nil {
		return nil, RunCommandOutput{}, err
	}
	id, err := sess.Load()
	if err != nil {
		return nil, RunCommandOutput{}, err
	}
	if err := sess.Run(id); err != nil {
		return nil, RunCommandOutput{}, err
	}
	if err := sess.Stop(id); err != nil {
		return nil, RunCommandOutput{}, err
	}

	out := RunCommandOutput{Results: []string{}}
	for _, m := range sess.Messages() {
		switch m.Tag {
		case "result":
			out.Results = append(out.Results, m.Payload)
		case "error":
			out.Errors = append(out.Errors, m.Payload)
		default:
			out.Passthrough = append(out.Passthrough, m.Tag+": "+m.Payload)
		}
	}
	return nil, out, nil
}

func (s *Server) handleRenderScript(_ context.Context, _ *mcpsdk.CallToolRequest, in RenderScriptInput) (*mcpsdk.CallToolResult, RenderScriptOutput, error) {
	sess, text, err := s.prepare(in.Args)
	if err != nil {
		return nil, RenderScriptOutput{}, err
	}
	// Rendering only; no remote calls are made.
	sess.Close()
	return nil, RenderScriptOutput{Script: text}, nil
}

func (s *Server) handleListCommands(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListCommandsInput) (*mcpsdk.CallToolResult, ListCommandsOutput, error) {
	windows := script.WindowActionNames()
	globals := script.GlobalActionNames()
	sort.Strings(windows)
	sort.Strings(globals)
	return nil, ListCommandsOutput{
		Queries:       []string{"search", "getactivewindow", "savewindowstack", "loadwindowstack"},
		WindowActions: windows,
		GlobalActions: globals,
	}, nil
}

// prepare dials a session and compiles tokens into a script. On
// success the caller owns the session.
func (s *Server) prepare(tokens []string) (*session.Session, string, error) {
	if len(tokens) == 0 {
		return nil, "", fmt.Errorf("args is required")
	}

	sess, err := session.Dial(session.Options{
		Timeout: time.Duration(s.config.TimeoutMS) * time.Millisecond,
		KDE5:    s.kde5,
		Logger:  s.logger,
	})
	if err != nil {
		return nil, "", err
	}

	marker, err := sess.CreateScriptFile()
	if err != nil {
		sess.Close()
		return nil, "", err
	}

	renderer, err := script.NewRenderer()
	if err != nil {
		sess.Close()
		return nil, "", err
	}
	ctx := script.SessionContext{
		DBusAddr: sess.Address(),
		Cmdline:  "kwinctl " + strings.Join(tokens, " "),
		Debug:    s.config.Debug,
		KDE5:     s.kde5,
		Marker:   marker,
	}
	cur := args.NewCursor(tokens[1:])
	text, err := compile.Pipeline(renderer, ctx.Bindings(), cur, tokens[0])
	if err != nil {
		sess.Close()
		return nil, "", err
	}
	return sess, text, nil
}
