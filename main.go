package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/afittestide/chatpane/storage"
	"github.com/alecthomas/kong"
	"github.com/blang/semver"
	tea "github.com/charmbracelet/bubbletea"
	isatty "github.com/mattn/go-isatty"
	"go.uber.org/fx"
)

type runCmd struct{}

type versionCmd struct{}

type apiKeyCmd struct {
	Provider string `arg:"" enum:"openai,anthropic,googleai" help:"Provider the key belongs to"`
	Delete   bool   `help:"Remove the stored key instead of setting it"`
}

type exportCmd struct {
	SessionID string `arg:"" help:"ID of the conversation to export"`
	Type      string `default:"conversation" enum:"full,conversation" help:"Export type (full or conversation)"`
	Out       string `short:"o" help:"Directory to write into (defaults to the temp dir)"`
}

var cli struct {
	Version versionCmd `cmd:"version" help:"Print version information"`
	Export  exportCmd  `cmd:"export" help:"Export a stored conversation as markdown"`
	APIKey  apiKeyCmd  `cmd:"apikey" name:"apikey" help:"Store a provider API key in the OS keyring (read from stdin)"`
	Prompt  string     `short:"p" help:"Prompt to send to the model"`
	Session string     `help:"ID of the conversation to open"`
	Debug   bool       `help:"Enable debug logging"`
	Run     runCmd     `cmd:"" default:"1" help:"Run the interactive application"`
}

// Update the version as part of the version release process
var version = "0.1.0"

// parseVersion parses a version string, handling "v" prefix
func parseVersion(v string) (semver.Version, error) {
	return semver.Parse(strings.TrimPrefix(v, "v"))
}

func (v versionCmd) Run() error {
	parsed, err := parseVersion(version)
	if err != nil {
		return fmt.Errorf("invalid build version %q: %w", version, err)
	}
	fmt.Printf("chatpane v%s\n", parsed)
	return nil
}

func (r *runCmd) Run() error {
	startTime := time.Now()

	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsTerminal(os.Stdin.Fd()) {
		fmt.Println("This program requires a terminal to run.")
		fmt.Println("Please run it in a terminal emulator.")
		return nil
	}

	var prog *tea.Program
	app := fx.New(
		coreOptions(),
		fx.Provide(ProvideChatView, ProvideTUIModel, StartTUI),
		fx.Populate(&prog),
	)
	if err := app.Err(); err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}
	slog.Debug("[TIMING] About to start program.Run()", "duration_from_start", time.Since(startTime))

	_, runErr := prog.Run()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		slog.Error("failed to stop application", "error", err)
	}

	if runErr != nil {
		return fmt.Errorf("alas, there's been an error: %w", runErr)
	}
	return nil
}

func (e *exportCmd) Run() error {
	var sessions *storage.SessionStore
	var config *Config
	app := fx.New(
		coreOptions(),
		fx.Populate(&sessions, &config),
	)
	if err := app.Err(); err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}
	defer func() {
		if err := app.Stop(ctx); err != nil {
			slog.Error("failed to stop application", "error", err)
		}
	}()

	if sessions == nil {
		return errors.New("session persistence is disabled (session.enabled = false)")
	}

	exportType, err := ParseExportType(e.Type)
	if err != nil {
		return err
	}

	data, err := sessions.LoadSession(e.SessionID)
	if err != nil {
		return fmt.Errorf("failed to load session %s: %w", e.SessionID, err)
	}
	session, messages := fromSessionData(data)

	path, err := exportSession(e.Out, session, messages, exportType, LocaleFor(config.UI.Language))
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func (a *apiKeyCmd) Run() error {
	if a.Delete {
		if err := DeleteAPIKeyFromKeyring(a.Provider); err != nil {
			return err
		}
		fmt.Printf("Removed %s API key\n", a.Provider)
		return nil
	}

	if isatty.IsTerminal(os.Stdin.Fd()) {
		fmt.Printf("Paste the %s API key and press Enter: ", a.Provider)
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read API key: %w", err)
	}
	apiKey := strings.TrimSpace(line)
	if apiKey == "" {
		return errors.New("empty API key")
	}
	if err := SaveAPIKeyToKeyring(a.Provider, apiKey); err != nil {
		return err
	}
	fmt.Printf("Stored %s API key\n", a.Provider)
	return nil
}

// runPrompt sends one prompt through the store and prints the answer as it
// streams in.
func runPrompt(prompt string) error {
	var store *AppStore
	app := fx.New(
		coreOptions(),
		fx.Populate(&store),
	)
	if err := app.Err(); err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}
	defer func() {
		if err := app.Stop(ctx); err != nil {
			slog.Error("failed to stop application", "error", err)
		}
	}()

	var mu sync.Mutex
	printed := 0
	flush := func() {
		mu.Lock()
		defer mu.Unlock()
		msgs := store.Messages()
		if len(msgs) == 0 {
			return
		}
		last := msgs[len(msgs)-1]
		if last.IsUser() || len(last.Content) <= printed {
			return
		}
		fmt.Print(last.Content[printed:])
		printed = len(last.Content)
	}
	store.Subscribe(flush)

	store.RequestChat(prompt)
	store.Wait()
	flush()
	fmt.Println()
	return nil
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name(appName),
		kong.Description("A terminal chat client."),
	)

	if cli.Prompt != "" {
		if err := runPrompt(cli.Prompt); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if err := ctx.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
