package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"aide/chat"
	"aide/config"
	"aide/mcp"
	"aide/ollama"
	"aide/provider"
	"aide/registry"
	"aide/server"
	"aide/storage"
	"aide/tools"
)

const (
	Version = "v0.01.00"
	License = "Apache-2.0"
)

func main() {
	serve := flag.Bool("serve", false, "run the HTTP API instead of the console")
	addr := flag.String("addr", ":8080", "listen address for -serve")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("aide %s (%s)\n", Version, License)
		return
	}

	// Validate environment variables first
	if config.HasAnyEnvVar() && !config.HasAllEnvVars() {
		fmt.Fprintf(os.Stderr, "Missing environment variable: %s\n\n"+
			"When using environment variables, all 3 must be set:\n"+
			"  AIDE_OLLAMA_HOST\n"+
			"  AIDE_MODEL\n"+
			"  AIDE_DATA_DIR\n\n"+
			"Set the missing variable(s) before launching aide.\n",
			config.GetMissingEnvVar())
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	config.InitDebugLog(cfg.DataDir())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *serve, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run wires the registry, tools, plugins and backend into an engine and
// hands it to the chosen front end. Resources are released when the
// front end returns.
func run(ctx context.Context, cfg *config.Config, serve bool, addr string) error {
	backend, err := buildBackend(cfg)
	if err != nil {
		return err
	}

	workspace, err := tools.NewWorkspace(cfg.WorkspaceDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: workspace unavailable: %v\n", err)
	}

	memoryStore := buildMemoryStore(cfg)
	var memory *tools.Memory
	if memoryStore != nil {
		defer memoryStore.Close()
		memory = tools.NewMemory(memoryStore)
	}

	creds := cfg.CredentialStore
	reg := registry.New()
	deps := tools.Deps{
		Workspace: workspace,
		Search:    tools.NewWebSearch(creds.Get("google_search_key"), creds.Get("google_search_cx")),
		Email:     tools.NewEmailSender(cfg.SMTP, creds.Get("smtp"), workspace),
		Memory:    memory,
	}
	if err := tools.RegisterDefaults(reg, deps); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	if cfg.PluginsEnabled {
		mgr := mcp.NewManager(cfg.DataDir(), creds)
		if err := mgr.Start(ctx, reg); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: plugin startup failed: %v\n", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mgr.Shutdown(shutdownCtx); err != nil && config.DebugLog != nil {
				config.DebugLog.Printf("[Main] Plugin shutdown: %v", err)
			}
		}()
	}

	// The system prompt is built after plugin registration so plugin
	// tools are announced to the model.
	engine := chat.NewEngine(chat.EngineConfig{
		Backend:             backend,
		Extractor:           registry.NewExtractor(cfg.Tools.Protocol, reg),
		Dispatcher:          registry.NewDispatcher(reg),
		SystemPrompt:        chat.BuildSystemPrompt(reg, cfg.Tools.Protocol, cfg.DefaultSystemPrompt),
		ToolResultRole:      cfg.ToolResultRole(cfg.Provider),
		MaxConsecutiveCalls: cfg.Tools.MaxConsecutiveCalls,
	})

	if serve {
		fmt.Printf("aide %s listening on %s\n", Version, addr)
		return server.New(engine).Run(ctx, addr)
	}
	return runConsole(ctx, engine, backend)
}

// buildBackend constructs the configured provider backend. Cloud
// providers pull their API key from the credential store under the
// provider ID.
func buildBackend(cfg *config.Config) (chat.Backend, error) {
	providerType := provider.MapProviderIDToType(cfg.Provider)
	pcfg := provider.Config{Type: providerType}

	switch providerType {
	case provider.ProviderTypeOllama:
		pcfg.BaseURL = cfg.OllamaHost
		pcfg.Model = cfg.DefaultModel
	default:
		pcfg.BaseURL = cfg.ProviderBaseURL(cfg.Provider)
		pcfg.Model = cfg.ProviderModel(cfg.Provider)
		pcfg.APIKey = cfg.CredentialStore.Get(cfg.Provider)
		if pcfg.APIKey == "" {
			return nil, fmt.Errorf("no API key stored for provider %q", cfg.Provider)
		}
	}

	backend, err := provider.NewProvider(pcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s backend: %w", cfg.Provider, err)
	}
	return backend, nil
}

// buildMemoryStore wires the vector memory store over the ollama
// embedder. Memory is optional: on failure the memory tools report
// themselves unavailable and everything else keeps working.
func buildMemoryStore(cfg *config.Config) *storage.MemoryStore {
	client, err := ollama.NewClient(cfg.OllamaHost, cfg.Tools.EmbedModel)
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Main] Memory embedder unavailable: %v", err)
		}
		return nil
	}

	store, err := storage.NewMemoryStore(cfg.DataDir(), storage.NewOllamaEmbedder(client, cfg.Tools.EmbedModel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: memory store unavailable: %v\n", err)
		return nil
	}
	return store
}

// runConsole drives the default interactive mode: read a line, run the
// turn, stream the response. Tool progress and results print as they
// happen.
func runConsole(ctx context.Context, engine *chat.Engine, backend chat.Backend) error {
	if err := backend.Ping(ctx); err != nil {
		fmt.Printf("Warning: backend not reachable: %v\n", err)
	}
	fmt.Printf("aide %s connected to %s. Type 'exit' or 'quit' to leave.\n", Version, backend.GetDisplayName())

	sess := chat.NewSession()
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Println("Exiting gracefully...")
			return nil
		}

		streaming := false
		engine.RunTurn(ctx, sess, input, chat.Callbacks{
			OnDelta: func(chunk string) {
				if !streaming {
					fmt.Print("AI: ")
					streaming = true
				}
				fmt.Print(chunk)
			},
			OnStep: func(step chat.Step) {
				switch step.Role {
				case chat.RoleUser:
					// the echo of our own input
				case chat.RoleAssistant:
					if streaming {
						fmt.Println()
						streaming = false
					}
				default:
					fmt.Println(step.Content)
				}
			},
		})

		if ctx.Err() != nil {
			fmt.Println("Exiting gracefully...")
			return nil
		}
	}
}
