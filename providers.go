package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/afittestide/chatpane/storage"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/fx"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// LoggerResult holds the configured logger
type LoggerResult struct {
	fx.Out
	Logger *slog.Logger
	Level  *slog.LevelVar
}

func getLogFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	logDir := filepath.Join(homeDir, ".local", "share", appName)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}
	return filepath.Join(logDir, appName+".log"), nil
}

// ProvideLogger creates and returns a logger instance
func ProvideLogger() (LoggerResult, error) {
	logPath, err := getLogFilePath()
	if err != nil {
		return LoggerResult{}, err
	}

	logFile := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)
	if cli.Debug {
		level.Set(slog.LevelDebug)
	}

	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return LoggerResult{
		Logger: logger,
		Level:  level,
	}, nil
}

// ProvideConfig loads and returns the application configuration
func ProvideConfig(logger *slog.Logger, level *slog.LevelVar) *Config {
	logger.Info("loading configuration")
	config, err := LoadConfig()
	if err != nil {
		logger.Warn("using default configuration due to load failure", "error", err)
		cfg := defaultConfig()
		config = &cfg
	}
	if strings.EqualFold(config.Logging.Level, "debug") {
		level.Set(slog.LevelDebug)
	}
	logger.Info("configuration loaded", "provider", config.LLM.Provider, "submit_key", config.UI.SubmitKey)
	return config
}

// StorageParams holds parameters for storage initialization
type StorageParams struct {
	fx.In
	Lifecycle fx.Lifecycle
	Config    *Config
	Logger    *slog.Logger
}

// ProvideStorage initializes the SQLite storage database. It returns nil
// when session persistence is disabled.
func ProvideStorage(params StorageParams) (*storage.DB, error) {
	if !params.Config.Session.Enabled {
		params.Logger.Info("session persistence disabled")
		return nil, nil
	}

	params.Logger.Info("initializing storage", "database_path", params.Config.Storage.DatabasePath)
	db, err := storage.InitDB(params.Config.Storage.DatabasePath)
	if err != nil {
		params.Logger.Error("failed to initialize storage", "error", err)
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if stats, err := db.Stats(); err != nil {
		params.Logger.Warn("failed to read storage stats", "error", err)
	} else {
		params.Logger.Info("storage ready", "sessions", stats["sessions"], "messages", stats["messages"])
	}

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			params.Logger.Info("closing storage")
			if err := db.Close(); err != nil {
				params.Logger.Error("failed to close storage", "error", err)
				return err
			}
			return nil
		},
	})

	return db, nil
}

// ProvideSessionStore wraps the database, nil when persistence is off
func ProvideSessionStore(db *storage.DB) *storage.SessionStore {
	if db == nil {
		return nil
	}
	return storage.NewSessionStore(db)
}

// ProvideModelClient connects to the configured LLM. A failure is logged
// and leaves the store without a model.
func ProvideModelClient(config *Config, logger *slog.Logger) llms.Model {
	logger.Info("connecting to LLM", "provider", config.LLM.Provider, "model", config.LLM.Model)
	start := time.Now()
	llm, err := getModelClient(config)
	if err != nil {
		logger.Warn("failed to connect to LLM, running without a model", "error", err)
		return nil
	}
	logger.Debug("[TIMING] getModelClient() completed", "duration", time.Since(start))
	return llm
}

// StoreParams holds parameters for store creation
type StoreParams struct {
	fx.In
	Lifecycle    fx.Lifecycle
	Config       *Config
	LLM          llms.Model `optional:"true"`
	SessionStore *storage.SessionStore
	Logger       *slog.Logger
}

// ProvideStore creates the application state store
func ProvideStore(params StoreParams) *AppStore {
	cfg := params.Config
	store := NewAppStore(StoreOptions{
		LLM:          params.LLM,
		ModelID:      cfg.LLM.Model,
		SystemPrompt: cfg.LLM.SystemPrompt,
		Locale:       LocaleFor(cfg.UI.Language),
		Persist:      params.SessionStore,
		MaxSessions:  cfg.Session.MaxSessions,
		ListLimit:    cfg.Session.ListLimit,
		SubmitKey:    cfg.SubmitKeyPolicy(),
		ShowSideBar:  cfg.UI.ShowSidebar,
	})
	if cli.Session != "" {
		params.Logger.Info("opening session", "id", cli.Session)
		store.UpdateSessionID(cli.Session)
	}

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			params.Logger.Info("stopping store")
			store.Close()
			return nil
		},
	})
	return store
}

// ProvideChatView creates the conversation view bound to the store
func ProvideChatView(config *Config, store *AppStore) *ChatView {
	return NewChatView(store, ChatViewOptions{
		Locale:      LocaleFor(config.UI.Language),
		Clipboard:   systemClipboard{},
		Platform:    detectPlatform(),
		Renderer:    NewMarkdownRenderer(config.UI.MarkdownEnabled),
		ScrollDelay: time.Duration(config.UI.AutoScrollDelayMs) * time.Millisecond,
		ContextMenu: config.UI.ContextMenu,
	})
}

// TUIModelParams holds parameters for TUI model creation
type TUIModelParams struct {
	fx.In
	Config *Config
	Store  *AppStore
	Chat   *ChatView
	LLM    llms.Model `optional:"true"`
}

// ProvideTUIModel creates and returns the TUI model
func ProvideTUIModel(params TUIModelParams) *TUIModel {
	return NewTUIModel(params.Config, params.Store, params.Chat, params.LLM != nil)
}

// TUIProgramParams holds parameters for TUI program initialization
type TUIProgramParams struct {
	fx.In
	Model  *TUIModel
	Store  *AppStore
	Logger *slog.Logger
}

// StartTUI creates the TUI program and forwards store changes to it
func StartTUI(params TUIProgramParams) *tea.Program {
	params.Logger.Info("creating TUI program")

	prog := tea.NewProgram(params.Model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Send blocks until the event loop reads it and store changes are also
	// made from inside Update.
	params.Store.Subscribe(func() {
		go prog.Send(storeChangedMsg{})
	})
	return prog
}

// coreOptions provides everything below the user interface
func coreOptions() fx.Option {
	return fx.Options(
		fx.NopLogger,
		fx.Provide(
			ProvideLogger,
			ProvideConfig,
			ProvideStorage,
			ProvideSessionStore,
			ProvideModelClient,
			ProvideStore,
		),
	)
}
