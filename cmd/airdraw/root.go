package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	app "github.com/kode4food/airdraw"
	"github.com/kode4food/airdraw/internal/config"
)

type rootOptions struct {
	envFile  string
	logLevel string
	cfg      *config.Config
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "airdraw",
		Short: "Discover Airflow operators and save DAGs drawn in AirDraw",
		Long: `airdraw serves the AirDraw editor backend.

It scans the installed Airflow provider packages for operator classes,
describes their constructor parameters, and turns the graphs drawn in the
editor into DAG documents stored under $AIRFLOW_HOME/.airdraw/dags.

Examples:
  airdraw serve
  airdraw scan
  airdraw params airflow.providers.http.operators.http HttpOperator
  airdraw normalize graph.json --save`,
		Version:       app.Version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file",
		config.DefaultEnvFile, "optional env file read before the environment")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"log level: debug, info, warn, or error (overrides LOG_LEVEL)")

	cmd.AddCommand(
		newServeCommand(opts),
		newScanCommand(opts),
		newParamsCommand(opts),
		newNormalizeCommand(opts),
	)
	return cmd
}

func (o *rootOptions) load() error {
	cfg := config.NewDefaultConfig()
	if err := cfg.Load(o.envFile); err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	o.cfg = cfg
	return nil
}

// cliApp builds an app whose logs go to stderr, keeping stdout for results
func (o *rootOptions) cliApp(cmd *cobra.Command) *airdraw {
	s := newApp(o.cfg, cmd.OutOrStdout())
	s.setupLogging(cmd.ErrOrStderr())
	return s
}

func (o *rootOptions) serverApp() *airdraw {
	s := newApp(o.cfg, os.Stdout)
	s.setupLogging(os.Stdout)
	return s
}
