package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"genforge/internal/config"
	"genforge/internal/coordinator"
	"genforge/internal/event"
	"genforge/internal/fsguard"
	"genforge/internal/genctx"
	"genforge/internal/llm"
	"genforge/internal/plan"
	"genforge/internal/runstore"
	"genforge/internal/symbol"
)

var (
	planPath      string
	retrievalPath string
	projectRoot   string
	outDir        string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate every file of a plan into an output directory",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&planPath, "plan", "", "path to the generation plan JSON (required)")
	generateCmd.Flags().StringVar(&retrievalPath, "retrieval", "", "path to a retrieval context text file")
	generateCmd.Flags().StringVar(&projectRoot, "project-root", "", "existing project to revise in place")
	generateCmd.Flags().StringVar(&outDir, "out", "out", "directory the generated files are written to")
	_ = generateCmd.MarkFlagRequired("plan")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Env)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	planData, err := os.ReadFile(planPath)
	if err != nil {
		return fmt.Errorf("read plan: %w", err)
	}
	p, err := plan.Parse(planData)
	if err != nil {
		return err
	}

	retrieval := ""
	if retrievalPath != "" {
		data, err := os.ReadFile(retrievalPath)
		if err != nil {
			return fmt.Errorf("read retrieval context: %w", err)
		}
		retrieval = string(data)
	}

	existing, err := loadExisting(projectRoot, p)
	if err != nil {
		return err
	}

	models, err := buildModels(cmd, cfg)
	if err != nil {
		return err
	}

	c := newCoordinator(cfg, models)
	c.Emitter = event.NewZap(logger, "generate")

	files, err := c.Generate(cmd.Context(), coordinator.Request{
		Plan:        p,
		Retrieval:   retrieval,
		Existing:    existing,
		ProjectRoot: projectRoot,
	})
	if err != nil {
		return err
	}

	out, err := fsguard.New(outDir)
	if err != nil {
		return err
	}
	for name, content := range files {
		if err := out.WriteFile(name, []byte(content)); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	logger.Info("generation finished",
		zap.Int("files", len(files)), zap.String("out", outDir))

	return persistRun(cmd, cfg, p, files, logger)
}

// loadExisting reads the planned files that already exist under the
// project root, so a revision run can show the model the original code.
func loadExisting(root string, p plan.GenerationPlan) (map[string]string, error) {
	if root == "" {
		return nil, nil
	}
	existing := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return walkErr
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !symbol.IsSourceFile(rel) {
			if _, planned := p.Find(rel); !planned {
				return nil
			}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		existing[rel] = string(data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan project root: %w", err)
	}
	return existing, nil
}

func buildModels(cmd *cobra.Command, cfg *config.Config) (llm.Client, error) {
	registry := llm.NewRegistry()
	switch cfg.Models.Provider {
	case "gemini":
		streamer, err := llm.NewGeminiStreamer(cmd.Context())
		if err != nil {
			return nil, fmt.Errorf("init gemini: %w", err)
		}
		if err := registry.RegisterProvider(streamer); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Models.Provider)
	}
	if cfg.Models.Coder != "" {
		if err := registry.SetDefault(llm.RoleCoder,
			llm.ModelRef{Provider: cfg.Models.Provider, Model: cfg.Models.Coder}); err != nil {
			return nil, err
		}
	}
	if cfg.Models.Architect != "" {
		if err := registry.SetDefault(llm.RoleArchitect,
			llm.ModelRef{Provider: cfg.Models.Provider, Model: cfg.Models.Architect}); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func newCoordinator(cfg *config.Config, models llm.Client) *coordinator.Coordinator {
	builder := genctx.NewBuilder(symbol.NewScanIndexer(0))
	builder.Rules = cfg.Rules
	c := coordinator.New(models, builder)
	c.Templates = cfg.Templates
	c.FilteredPrompts = cfg.FilteredPrompts
	return c
}

// persistRun records the finished run in the configured store backend.
func persistRun(cmd *cobra.Command, cfg *config.Config, p plan.GenerationPlan, files map[string]string, logger *zap.Logger) error {
	runs, artifacts, err := newStores(cfg)
	if err != nil {
		return err
	}
	if runs == nil && artifacts == nil {
		return nil
	}

	runID := runstore.NewRunID()
	if runs != nil {
		defer func() { _ = runs.Close() }()
		now := time.Now().UTC()
		run := runstore.Run{
			ID:        runID,
			Status:    runstore.RunCompleted,
			Plan:      p,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := runs.Save(cmd.Context(), run); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
	}
	if artifacts != nil {
		for name, content := range files {
			if err := artifacts.Put(cmd.Context(), runID, name, []byte(content)); err != nil {
				logger.Warn("failed to persist artifact",
					zap.String("path", name), zap.Error(err))
			}
		}
	}
	logger.Info("run persisted", zap.String("run_id", runID))
	return nil
}

// newStores builds the persistence backends for the configured store.
// The memory backend returns nils for the CLI: persisting to process
// memory that dies with the command is pointless.
func newStores(cfg *config.Config) (runstore.Store, runstore.ArtifactStore, error) {
	switch cfg.Store.Backend {
	case "memory":
		return nil, nil, nil
	case "postgres":
		pg, err := runstore.NewPostgres(cfg.Store.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return pg, runstore.PostgresArtifacts{Postgres: pg}, nil
	case "s3":
		s3, err := runstore.NewS3(cfg.Store.S3)
		if err != nil {
			return nil, nil, err
		}
		return nil, s3, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
