package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	app "github.com/kode4food/airdraw"
	"github.com/kode4food/airdraw/internal/dag"
	"github.com/kode4food/airdraw/internal/operator"
	"github.com/kode4food/airdraw/internal/server"
	"github.com/kode4food/airdraw/pkg/api"
)

const stdinArg = "-"

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Scan the provider namespace and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := opts.serverApp()
			slog.Info("AirDraw server starting",
				slog.String("service", app.Name),
				slog.String("log_level", s.cfg.LogLevel))
			return s.run(cmd.Context())
		},
	}
}

func newScanCommand(opts *rootOptions) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the provider namespace and print operator availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := opts.cliApp(cmd)
			ctx := cmd.Context()
			s.initializeDiscovery(ctx)
			snap, err := s.catalog.Refresh(ctx)
			if err != nil {
				return err
			}
			if full {
				return s.print(api.AllOperatorsResponse{
					Operators: snap.Catalog,
					Errors:    snap.Errors,
				})
			}
			return s.print(
				api.NewOperatorsStatusResponse(snap.Catalog, snap.Errors),
			)
		},
	}

	cmd.Flags().BoolVar(&full, "all", false,
		"print the catalog and errors instead of the status summary")
	return cmd
}

func newParamsCommand(opts *rootOptions) *cobra.Command {
	var strategy string

	cmd := &cobra.Command{
		Use:   "params <module> <operator>",
		Short: "Describe the constructor parameters of an operator",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := operator.ParseStrategy(strategy)
			if err != nil {
				return err
			}
			s := opts.cliApp(cmd)
			ctx := cmd.Context()
			s.initializeDiscovery(ctx)
			if s.cfg.ReflectTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, s.cfg.ReflectTimeout)
				defer cancel()
			}

			sig := s.describers.Describe(ctx, st, args[0], args[1])
			if sig.IsEmpty() {
				return fmt.Errorf("%s: %s.%s",
					server.OperatorNotFound, args[0], args[1])
			}
			return s.print(sig)
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", string(operator.DefaultStrategy),
		"describe strategy: static, live, static-live, or live-static")
	return cmd
}

func newNormalizeCommand(opts *rootOptions) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "normalize [graph.json|-]",
		Short: "Normalize an editor graph into a DAG document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := opts.cliApp(cmd)
			data, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			w, err := dag.NormalizeJSON(data)
			if err != nil {
				return err
			}

			if save {
				ctx := cmd.Context()
				if err := s.initializeStore(ctx); err != nil {
					return err
				}
				defer func() { _ = s.store.Close() }()
				if err := s.store.Save(ctx, w); err != nil {
					return err
				}
				slog.Info("DAG saved", slog.String("dag_id", string(w.ID)))
			}

			doc, err := w.Encode()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(s.out, string(doc))
			return err
		},
	}

	cmd.Flags().BoolVar(&save, "save", false,
		"also store the document in the configured DAG store")
	return cmd
}

func (s *airdraw) print(v any) error {
	enc := json.NewEncoder(s.out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", dag.Indent)
	return enc.Encode(v)
}

func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == stdinArg {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(args[0])
}
