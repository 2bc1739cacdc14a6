package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pario-ai/costplan/pkg/mcp"
	"github.com/pario-ai/costplan/pkg/usage"
)

func newMCPCmd(opts *rootOptions) *cobra.Command {
	var withUsage bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the estimator as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			var src usage.Source
			if withUsage {
				s, err := usage.Open(cfg.Usage.DBPath)
				if err != nil {
					return fmt.Errorf("init usage source: %w", err)
				}
				defer func() { _ = s.Close() }()
				src = s
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Info("starting costplan MCP server", "usage", withUsage)
			return mcp.New(cfg, src, logger, version).Run(ctx, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().BoolVar(&withUsage, "usage", false, "expose the baseline tool backed by usage.db_path")
	return cmd
}
