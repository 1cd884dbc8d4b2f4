package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/theimaginaryfoundation/cha2hatena/applog"
	"github.com/theimaginaryfoundation/cha2hatena/config"
)

var version = "dev"

func main() {
	if err := fang.Execute(
		context.Background(),
		rootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	envFile    string
	debug      bool
}

func rootCmd() *cobra.Command {
	g := &globalOptions{}
	var ro runOptions

	cmd := &cobra.Command{
		Use:   "cha2hatena [flags] <export.json>...",
		Short: "Summarize exported AI chat logs into blog posts and track what they cost",
		Long: heredoc.Doc(`
			Reads conversation exports, keeps the latest session of each, asks Gemini or
			DeepSeek for a blog post, and records token usage and fees in a CSV ledger
			and a SQLite history. Files are processed one after another.
		`),
		Example: heredoc.Doc(`
			# Summarize one export with the settings in config.yaml
			cha2hatena "Claude-Git LF CRLF.json"

			# Use DeepSeek for this run and publish the result as a Hatena draft
			cha2hatena --provider deepseek --publish export1.json export2.json

			# Only rebuild and print the transcript
			cha2hatena --debug export.json
		`),
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(g, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()
			return a.run(cmd.Context(), args, ro)
		},
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", config.DefaultPath, "Config file (.yaml or .toml)")
	cmd.PersistentFlags().StringVar(&g.envFile, "env", ".env", "Env file with API keys")
	cmd.PersistentFlags().BoolVarP(&g.debug, "debug", "d", false, "Rebuild transcripts without calling the provider; debug logging")

	cmd.Flags().StringVarP(&ro.provider, "provider", "p", "", "Override ai.provider (gemini or deepseek)")
	cmd.Flags().StringVarP(&ro.model, "model", "m", "", "Override ai.model")
	cmd.Flags().BoolVar(&ro.publish, "publish", false, "Post the summary to Hatena Blog")

	cmd.AddCommand(transcriptCmd(g))
	cmd.AddCommand(feeCmd())
	cmd.AddCommand(historyCmd(g))
	return cmd
}

// app is the per-invocation state built from flags, config and secrets.
type app struct {
	cfg     *config.Config
	secrets config.Secrets
	logger  *slog.Logger
	closer  io.Closer
	out     io.Writer
	errOut  io.Writer

	// Replaced in tests.
	newClient    clientFactory
	newPublisher publisherFactory
}

func loadApp(g *globalOptions, out, errOut io.Writer) (*app, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.debug {
		cfg.Other.Debug = true
	}
	secrets, err := config.LoadSecrets(g.envFile)
	if err != nil {
		return nil, err
	}
	logger, closer := applog.Setup(cfg.Paths.LogFile, cfg.Other.Debug)
	return &app{
		cfg:          cfg,
		secrets:      secrets,
		logger:       logger,
		closer:       closer,
		out:          out,
		errOut:       errOut,
		newClient:    defaultClientFactory,
		newPublisher: defaultPublisherFactory,
	}, nil
}

func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func (a *app) progressf(format string, args ...any) {
	fmt.Fprintf(a.errOut, format+"\n", args...)
}
