package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/theimaginaryfoundation/cha2hatena/fileutils"
	"github.com/theimaginaryfoundation/cha2hatena/ledger"
)

func historyCmd(g *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs and total spend per model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(g, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if !fileutils.FileExists(a.cfg.Paths.History) {
				fmt.Fprintf(a.out, "no history yet at %s\n", a.cfg.Paths.History)
				return nil
			}
			h, err := ledger.OpenHistory(a.cfg.Paths.History)
			if err != nil {
				return err
			}
			defer h.Close()

			ctx := cmd.Context()
			runs, err := h.Recent(ctx, limit)
			if err != nil {
				return err
			}
			totals, err := h.Totals(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tMODEL\tSOURCE\tTITLE\tFEE")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t$%.6f\n",
					r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Model,
					fileutils.Truncate(r.SourceFile, 40), fileutils.Truncate(r.Title, 40), r.TotalFee)
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "PROVIDER\tMODEL\tRUNS\tTOKENS IN/OUT\tTOTAL")
			for _, t := range totals {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d/%d\t$%.6f\n", t.Provider, t.Model, t.Runs, t.InputTokens, t.OutputTokens, t.TotalFee)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of recent runs to list")
	return cmd
}
