// Package cmd implements the adpulse CLI.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adpulse/adpulse/internal/agent"
	"github.com/adpulse/adpulse/internal/analysis"
	"github.com/adpulse/adpulse/internal/collector"
	"github.com/adpulse/adpulse/internal/config"
	"github.com/adpulse/adpulse/internal/dataquery"
	"github.com/adpulse/adpulse/internal/llm"
	"github.com/adpulse/adpulse/internal/modules"
	"github.com/adpulse/adpulse/internal/store"
)

var (
	cfgFile string
	verbose bool

	version = "0.3.0"
)

var rootCmd = &cobra.Command{
	Use:   "adpulse",
	Short: "AdPulse analyzes advertising-campaign data and answers questions about it.",
	Long: `AdPulse is an analytics service over advertising-campaign data.
It runs packaged analysis modules, collects stats from an external tracker
and exposes both through an HTTP API and a tool-calling LLM agent.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Execute runs the CLI. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ./.adpulse.yaml or $HOME/.adpulse.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// app bundles the wired application for the subcommands.
type app struct {
	cfg     *config.AppConfig
	log     *zap.Logger
	st      *store.Store
	svc     *modules.Service
	queries *dataquery.Service
	catalog *agent.Catalog
	orch    *agent.Orchestrator
}

// buildApp loads configuration and constructs every collaborator with
// explicit dependency injection; nothing here is a package-level singleton.
func buildApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Verbose = true
	}

	log, err := newLogger(cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	reg := modules.NewRegistry()
	if err := analysis.RegisterAll(reg, st); err != nil {
		_ = st.Close()
		return nil, err
	}

	svc := modules.NewService(reg, modules.NewEngine(log), log)
	queries := dataquery.NewService(st, log)
	catalog := agent.NewCatalog(reg)

	provider, err := llm.ValidateProvider(cfg.LLM.Provider)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	model := cfg.LLM.Model
	if model == "" {
		model = llm.DefaultModelForProvider(provider)
	}
	llmCfg := llm.Config{
		Provider: provider,
		Model:    model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
	}

	orch := agent.NewOrchestrator(catalog, svc, queries, llmCfg, log)
	orch.SetMaxTurns(cfg.Agent.MaxTurns)
	orch.SetTemplatesDir(cfg.Agent.TemplatesDir)

	return &app{
		cfg:     cfg,
		log:     log,
		st:      st,
		svc:     svc,
		queries: queries,
		catalog: catalog,
		orch:    orch,
	}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
	_ = a.st.Close()
}

// newCollector returns a collector, with a tracker client only when one is
// configured.
func (a *app) newCollector() *collector.Collector {
	var client *collector.Client
	if a.cfg.Tracker.BaseURL != "" {
		client = collector.NewClient(a.cfg.Tracker.BaseURL, a.cfg.Tracker.APIKey)
	}
	return collector.New(client, a.st, a.log)
}

func newLogger(debug bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if debug {
		zcfg = zap.NewDevelopmentConfig()
	}
	return zcfg.Build()
}
