// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/peterh/liner"

	"github.com/jeranaias/helix-tui/internal/config"
	"github.com/jeranaias/helix-tui/internal/conversation"
	"github.com/jeranaias/helix-tui/internal/export"
	"github.com/jeranaias/helix-tui/internal/model"
	"github.com/jeranaias/helix-tui/internal/offline"
	"github.com/jeranaias/helix-tui/internal/workspace"
)

// ChatPrompt is the line-mode input prompt.
const ChatPrompt = "helix> "

// =============================================================================
// INPUT
// =============================================================================

// LineReader reads one line of input. *liner.State satisfies it.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// historyFile is where line-mode input history persists between runs.
func historyFile() string {
	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "chat_history")
}

func loadInputHistory(line *liner.State, path string) {
	if f, err := os.Open(path); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
}

func saveInputHistory(line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = line.WriteHistory(f)
}

// =============================================================================
// SESSION
// =============================================================================

// ChatSession is a line-mode chat over an Env.
type ChatSession struct {
	env   *Env
	in    LineReader
	out   io.Writer
	md    *MarkdownRenderer
	quiet bool
}

// NewChatSession creates a session reading from in and writing to out.
func NewChatSession(env *Env, in LineReader, out io.Writer, md *MarkdownRenderer) *ChatSession {
	return &ChatSession{env: env, in: in, out: out, md: md}
}

// HandleChat runs line-mode chat on the terminal until /quit or EOF.
func HandleChat(ctx context.Context, env *Env, args Args) error {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	path := historyFile()
	loadInputHistory(line, path)
	defer func() {
		saveInputHistory(line, path)
		line.Close()
	}()

	md := NewMarkdownRenderer(env.Config.UI.RenderMarkdown && ColorsEnabled(), TerminalWidth())
	s := NewChatSession(env, line, os.Stdout, md)
	s.quiet = args.Quiet
	return s.Run(ctx)
}

// Run signs in, prints the conversation so far and reads lines until
// /quit, EOF or Ctrl+C. Pending step saves are flushed before it returns.
func (s *ChatSession) Run(ctx context.Context) error {
	s.signIn(ctx)
	if !s.quiet {
		s.printWelcome()
	}
	s.printMessages()

	for {
		input, err := s.in.Prompt(PromptStyle.Render(ChatPrompt))
		if err != nil {
			// liner.ErrPromptAborted on Ctrl+C, io.EOF on Ctrl+D.
			fmt.Fprintln(s.out)
			s.quit()
			return nil
		}

		line := strings.TrimLeftFunc(input, unicode.IsSpace)
		input = strings.TrimSpace(line)
		if input == "" {
			continue
		}
		s.in.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			cont, err := s.handleSlashCommand(ctx, line)
			if err != nil {
				fmt.Fprintf(s.out, "%s %v\n", ErrorStyle.Render("[Error]"), err)
			}
			if !cont {
				s.quit()
				return nil
			}
			continue
		}
		s.send(ctx, input)
	}
}

func (s *ChatSession) signIn(ctx context.Context) {
	u, err := s.env.SignIn(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "%s %v (use /signin to retry)\n", WarningStyle.Render("[Signed out]"), err)
		return
	}
	fmt.Fprintf(s.out, "%s %s\n", DimStyle.Render("Signed in as"), ValueStyle.Render(userLabel(u)))
}

// send runs one send cycle, showing the intent status while the reply is
// awaited.
func (s *ChatSession) send(ctx context.Context, text string) {
	conv := s.env.Conversation
	cy, err := conv.Submit(text)
	switch {
	case errors.Is(err, conversation.ErrNoIdentity):
		fmt.Fprintln(s.out, WarningStyle.Render("Not signed in. Use /signin."))
		return
	case err != nil:
		s.env.Logger.Debug("submit ignored", "reason", err)
		return
	}

	conv.AwaitReply(cy, conv.Classify(ctx, cy))
	fmt.Fprintln(s.out, DimStyle.Render(s.env.State.Status()))

	reply, err := conv.Fetch(ctx, cy)
	out := conv.Resolve(cy, reply, err)
	if out.Dropped {
		return
	}

	s.printMessage(model.NewAssistantMessage(out.Reply))
	if out.SequenceApplied && !s.env.State.Sequence().IsEmpty() {
		s.printSequence()
	}
}

func (s *ChatSession) quit() {
	if n := s.env.Workspace.Flush(); n > 0 {
		fmt.Fprintf(s.out, "%s\n", DimStyle.Render(fmt.Sprintf("Saved %d pending edit(s).", n)))
	}
	fmt.Fprintln(s.out, DimStyle.Render("Goodbye."))
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand runs one slash command. It returns false to end the
// session.
func (s *ChatSession) handleSlashCommand(ctx context.Context, input string) (bool, error) {
	parts := strings.Fields(input)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/help", "/h", "/?", "/":
		s.printHelp()

	case "/quit", "/q", "/exit":
		return false, nil

	case "/seq", "/sequence", "/s":
		s.printSequence()

	case "/history":
		s.printMessages()

	case "/edit", "/e":
		return true, s.editStep(input)

	case "/delete":
		return true, s.deleteHistory(ctx)

	case "/export":
		return true, s.exportTranscript(args)

	case "/signout":
		if s.env.State.UserID() == "" {
			fmt.Fprintln(s.out, DimStyle.Render("Already signed out."))
			return true, nil
		}
		s.env.SignOut()
		fmt.Fprintln(s.out, SuccessStyle.Render("Signed out."))

	case "/signin":
		if s.env.State.UserID() != "" {
			fmt.Fprintln(s.out, DimStyle.Render("Already signed in."))
			return true, nil
		}
		s.signIn(ctx)
		s.printMessages()

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
	return true, nil
}

// editStep handles /edit <n> title|content <text>. The text is the rest of
// the line as typed.
func (s *ChatSession) editStep(line string) error {
	const usage = "/edit <step> title|content <text>"
	args, value := cutFields(line, 3)
	if len(args) < 3 || value == "" {
		return &UsageError{Usage: usage}
	}
	args = args[1:]
	n, err := ParseStepNumber(args[0])
	if err != nil {
		return err
	}
	field, err := model.ParseStepField(args[1])
	if err != nil {
		return NewValidationErrorWithExample("field", args[1], "must be title or content", "/edit 2 title Preheat the oven")
	}
	if err := s.env.Workspace.Edit(n, field, value); err != nil {
		if errors.Is(err, workspace.ErrUnknownStep) {
			return NewValidationError("step number", args[0], "no such step in the current sequence")
		}
		return err
	}

	msg := fmt.Sprintf("Step %d %s updated.", n, field.Label())
	if s.env.State.Unsynced() {
		msg += " " + strings.TrimSpace(workspace.NotSavedSuffix)
	}
	fmt.Fprintln(s.out, SuccessStyle.Render(msg))
	return nil
}

// cutFields splits the first n whitespace-separated fields off s and returns
// them with the remainder, leading whitespace removed.
func cutFields(s string, n int) ([]string, string) {
	var fields []string
	rest := s
	for len(fields) < n {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		if rest == "" {
			break
		}
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			end = len(rest)
		}
		fields = append(fields, rest[:end])
		rest = rest[end:]
	}
	return fields, strings.TrimLeftFunc(rest, unicode.IsSpace)
}

// deleteHistory asks for confirmation on the input line, then deletes.
func (s *ChatSession) deleteHistory(ctx context.Context) error {
	if s.env.State.UserID() == "" {
		fmt.Fprintln(s.out, WarningStyle.Render("Not signed in. Use /signin."))
		return nil
	}
	answer, err := s.in.Prompt("Delete all chat history? [y/N]: ")
	if err != nil || !isYes(answer) {
		fmt.Fprintln(s.out, DimStyle.Render("Cancelled."))
		return nil
	}

	ack := s.env.Bootstrap.DeleteHistory(ctx)
	if !ack.OK {
		fmt.Fprintln(s.out, ErrorStyle.Render(ack.Message))
		return nil
	}
	fmt.Fprintln(s.out, SuccessStyle.Render(ack.Message))
	return nil
}

// exportTranscript handles /export [md|json] [dir].
func (s *ChatSession) exportTranscript(args []string) error {
	format, opts := "md", export.DefaultOptions()
	if len(args) > 0 {
		format = args[0]
	}
	if len(args) > 1 {
		opts.OutputDir = args[1]
	}
	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		return NewValidationErrorWithExample("format", format, "must be md or json", "/export json")
	}

	path, err := export.ToFile(export.FromSnapshot(s.env.State.Snapshot(), time.Now()), exporter, opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, SuccessStyle.Render("Exported to "+path))
	return nil
}

// =============================================================================
// OUTPUT
// =============================================================================

func (s *ChatSession) printWelcome() {
	title := TitleStyle.Render("Helix Chat")
	if badge := offline.StatusBadge(s.env.Config.Backend.LocalOnly); badge != "" {
		title += " " + WarningStyle.Render(badge)
	}
	fmt.Fprintln(s.out, title)
	fmt.Fprintln(s.out, DimStyle.Render("Type a message, /help for commands, /quit to exit."))
	fmt.Fprintln(s.out, RenderSeparator())
}

func (s *ChatSession) printHelp() {
	fmt.Fprintln(s.out, TitleStyle.Render("Commands"))
	rows := [][2]string{
		{"/seq", "Show the current sequence"},
		{"/edit <n> title|content <text>", "Change a step field"},
		{"/history", "Show the conversation"},
		{"/delete", "Delete your stored chat history"},
		{"/export [md|json] [dir]", "Write the conversation and sequence to a file"},
		{"/signin, /signout", "Switch identity"},
		{"/help", "Show this help"},
		{"/quit", "Save pending edits and exit"},
	}
	for _, r := range rows {
		fmt.Fprintf(s.out, "  %s%s\n", RenderLabel(r[0]), r[1])
	}
}

func (s *ChatSession) printMessages() {
	for _, m := range s.env.State.Messages() {
		s.printMessage(m)
	}
}

func (s *ChatSession) printMessage(m model.Message) {
	if m.IsUser() {
		fmt.Fprintf(s.out, "%s %s\n", UserLabelStyle.Render(m.Sender.DisplayName()+":"), m.Text)
		return
	}
	fmt.Fprintln(s.out, AssistantLabelStyle.Render(m.Sender.DisplayName()+":"))
	fmt.Fprintln(s.out, s.md.Render(m.Text))
}

func (s *ChatSession) printSequence() {
	snap := s.env.State.Snapshot()
	PrintSequence(s.out, workspace.PanelTitle(snap), snap.Sequence.Steps, workspace.Placeholder)
}
