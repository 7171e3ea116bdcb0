package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"loqui/command"
	"loqui/config"
	"loqui/list"
	"loqui/mcpserver"
	"loqui/model"
	"loqui/provider"
	"loqui/speech"
	"loqui/storage"
	"loqui/ui"
)

const Version = "v0.1.0"

// app bundles everything main needs after wiring.
type app struct {
	cfg       *config.Config
	store     storage.Store
	dataModel *model.Model
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case "sqlite":
		return storage.NewSQLiteStore(filepath.Join(cfg.DataDir(), "loqui.db"))
	default:
		return storage.NewFileStore(filepath.Join(cfg.DataDir(), "store"))
	}
}

func wire(cfg *config.Config) (*app, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	lists := storage.NewListStore(store, config.DebugLog)
	chats := storage.NewChatStore(store, config.DebugLog)
	memory := storage.NewMemoryStore(store, config.DebugLog)

	engine := list.NewEngine(lists)

	notify := command.NotifierFunc(func(message string) {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[dispatch] %s", message)
		}
	})
	dispatcher := command.NewDispatcher(memory, lists, engine, notify, config.DebugLog)

	prov, err := provider.New(provider.Config{
		Type:    provider.Type(cfg.ProviderID),
		BaseURL: cfg.ProviderHost,
		Model:   cfg.DefaultModel,
		APIKey:  cfg.APIKey(),
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	// The app-settings TTS command wins over the TOML one, so the
	// assistant can switch voices at runtime.
	ttsCommand := cfg.TTSCommand
	if cmd := memory.Settings().TTSCommand; cmd != "" {
		ttsCommand = cmd
	}
	player := speech.NewPlayer(speech.NewExecSynthesizer(ttsCommand))

	dataModel := model.New(cfg, prov, lists, chats, memory, engine, dispatcher, player)

	return &app{cfg: cfg, store: store, dataModel: dataModel}, nil
}

func runTUI(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	config.InitDebugLog(cfg.DataDir())

	a, err := wire(cfg)
	if err != nil {
		return err
	}
	defer a.store.Close()

	// On the file backend, pick up external writes (e.g. a sync tool)
	// while running.
	if fileStore, ok := a.store.(*storage.FileStore); ok {
		watcher, err := storage.NewWatcher(fileStore, func(key string) {
			if config.DebugLog != nil {
				config.DebugLog.Printf("external change: %s", key)
			}
		}, config.DebugLog)
		if err == nil {
			defer watcher.Close()
		}
	}

	p := tea.NewProgram(
		ui.NewApp(cfg, a.dataModel),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	config.InitDebugLog(cfg.DataDir())

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	lists := storage.NewListStore(store, config.DebugLog)
	memory := storage.NewMemoryStore(store, config.DebugLog)
	engine := list.NewEngine(lists)

	return mcpserver.New(memory, lists, engine).ServeStdio()
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	path := cmd.String("output")
	if err := storage.Export(store, path, cmd.String("passphrase")); err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}

func runImport(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := storage.Import(store, cmd.String("input"), cmd.String("passphrase")); err != nil {
		return err
	}
	fmt.Println("Import complete")
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "loqui",
		Usage:   "Speech-friendly chat assistant with shared memory, notes and nested lists",
		Version: Version,
		Action:  runTUI,
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Serve the memory, note and list tools over MCP stdio",
				Action: runMCP,
			},
			{
				Name:   "export",
				Usage:  "Export all data to a passphrase-encrypted bundle",
				Action: runExport,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Path of the bundle to write",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "passphrase",
						Aliases:  []string{"p"},
						Usage:    "Passphrase protecting the bundle",
						Required: true,
						Sources:  cli.EnvVars("LOQUI_EXPORT_PASSPHRASE"),
					},
				},
			},
			{
				Name:   "import",
				Usage:  "Import a previously exported bundle",
				Action: runImport,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path of the bundle to read",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "passphrase",
						Aliases:  []string{"p"},
						Usage:    "Passphrase protecting the bundle",
						Required: true,
						Sources:  cli.EnvVars("LOQUI_EXPORT_PASSPHRASE"),
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
