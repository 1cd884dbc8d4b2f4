package main

import (
	"fmt"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/theimaginaryfoundation/cha2hatena/chatlog"
)

func transcriptCmd(g *globalOptions) *cobra.Command {
	var gap time.Duration
	var all bool

	cmd := &cobra.Command{
		Use:   "transcript <export.json>...",
		Short: "Print the reconstructed transcript of each export",
		Example: heredoc.Doc(`
			# Same session filter as a real run
			cha2hatena transcript export.json

			# Widen the idle gap, or keep every message
			cha2hatena transcript --gap 6h export.json
			cha2hatena transcript --all export.json
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(g, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			threshold, err := a.cfg.Gap()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("gap") {
				threshold = gap
			}
			if all {
				threshold = 0
			}

			for _, path := range args {
				exp, err := chatlog.LoadExport(path)
				if err != nil {
					return err
				}
				text, err := chatlog.Reconstruct(exp, chatlog.Options{
					AgentName: chatlog.ResolveAgentName(path, exp.Metadata.PoweredBy),
					Gap:       threshold,
					Logger:    a.logger,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, text)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&gap, "gap", chatlog.DefaultGap, "Idle gap that separates sessions across dates")
	cmd.Flags().BoolVar(&all, "all", false, "Keep every message")
	return cmd
}
