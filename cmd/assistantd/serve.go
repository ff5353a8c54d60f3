package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/tlum/assistant-backend/agent"
	"github.com/tlum/assistant-backend/bus"
	"github.com/tlum/assistant-backend/completion"
	"github.com/tlum/assistant-backend/config"
	"github.com/tlum/assistant-backend/logging"
	"github.com/tlum/assistant-backend/model"
	anthropicmodel "github.com/tlum/assistant-backend/model/anthropic"
	openaimodel "github.com/tlum/assistant-backend/model/openai"
	"github.com/tlum/assistant-backend/server"
	"github.com/tlum/assistant-backend/tool"
	"github.com/tlum/assistant-backend/trace"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the assistant HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(parent context.Context, cfg *config.Config) error {
	logger := logging.New(logging.Config{
		Level:  logLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
	})

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stream := bus.NewRedisStream(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, func(o *bus.RedisStreamOptions) {
		o.Channel = cfg.Redis.Channel
		o.Logger = logger
	})
	defer stream.Close()

	collector := bus.NewCollector(stream, func(o *bus.CollectorOptions) {
		o.Logger = logger
	})
	if err := collector.Start(ctx); err != nil {
		return fmt.Errorf("start note collector: %w", err)
	}

	m, err := buildModel(cfg)
	if err != nil {
		return err
	}
	logger.Info("model.selected", "provider", cfg.Model.Provider, "name", m.Info().Name)

	agents := agent.NewRegistry([]agent.Agent{
		agent.NewPlannerAgent(m),
		agent.NewExecutionAgent(m),
		agent.NewMediatorAgent(),
	}, func(o *agent.RegistryOptions) {
		o.Logger = logger
	})
	dispatcher := agent.NewDispatcher(stream, agents, func(o *agent.DispatcherOptions) {
		o.Logger = logger
	})
	if err := dispatcher.Start(ctx); err != nil {
		return fmt.Errorf("start agent dispatcher: %w", err)
	}

	orch := completion.NewOrchestrator(stream, collector, tool.NewRegistry(nil), m,
		func(o *completion.OrchestratorOptions) {
			o.GatherWindow = cfg.GatherWindow
			o.DefaultTemperature = cfg.DefaultTemperature
			o.Traces = trace.NewInMemoryStore()
			o.Logger = logger
		},
	)

	srv := server.New(cfg.ListenAddr, cfg.ServiceKey, orch, func(o *server.Options) {
		o.ChunkSize = cfg.ChunkSize
		o.Logger = logger
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server.shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildModel(cfg *config.Config) (model.Model, error) {
	switch cfg.Model.Provider {
	case "openai":
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			if cfg.Model.Name != "" {
				o.Model = cfg.Model.Name
			}
			if cfg.Model.MaxCompletionTokens > 0 {
				o.MaxCompletionTokens = int64(cfg.Model.MaxCompletionTokens)
			}
			o.APIKey = cfg.Model.OpenAIAPIKey
		}), nil
	case "anthropic":
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			if cfg.Model.Name != "" {
				o.Model = anthropicsdk.Model(cfg.Model.Name)
			}
			if cfg.Model.MaxCompletionTokens > 0 {
				o.MaxTokens = int64(cfg.Model.MaxCompletionTokens)
			}
			o.APIKey = cfg.Model.AnthropicAPIKey
		}), nil
	case "mock":
		return model.NewMockModel("mock-model"), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Model.Provider)
	}
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
