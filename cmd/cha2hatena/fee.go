package main

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/theimaginaryfoundation/cha2hatena/pricing"
	"github.com/theimaginaryfoundation/cha2hatena/summary/provider"
)

func feeCmd() *cobra.Command {
	var (
		providerName string
		model        string
		usage        provider.Usage
	)

	cmd := &cobra.Command{
		Use:   "fee",
		Short: "Price a token count without calling any provider",
		Example: heredoc.Doc(`
			cha2hatena fee --provider gemini --model gemini-2.5-pro --input 250000 --output 4000
			cha2hatena fee --provider deepseek --input 12000 --output 900 --thoughts 1500
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := provider.ParseID(providerName)
			if err != nil {
				return err
			}
			if model == "" {
				model = provider.DefaultModel(id)
			}
			if usage.InputTokens < 0 || usage.OutputTokens < 0 || usage.ThoughtsTokens < 0 {
				return fmt.Errorf("token counts must be >= 0")
			}

			f := pricing.Breakdown(id, model, usage)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s / %s\n", id, model)
			fmt.Fprintf(out, "  input:    %10d tokens  $%.6f\n", usage.InputTokens, f.Input)
			fmt.Fprintf(out, "  output:   %10d tokens  $%.6f\n", usage.OutputTokens+usage.ThoughtsTokens, f.Output)
			fmt.Fprintf(out, "  total:    %17s $%.6f\n", "", f.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&providerName, "provider", string(provider.Gemini), "gemini or deepseek")
	cmd.Flags().StringVar(&model, "model", "", "Model id (default: the provider's default model)")
	cmd.Flags().Int64Var(&usage.InputTokens, "input", 0, "Input tokens")
	cmd.Flags().Int64Var(&usage.OutputTokens, "output", 0, "Output tokens")
	cmd.Flags().Int64Var(&usage.ThoughtsTokens, "thoughts", 0, "Thoughts (reasoning) tokens")
	return cmd
}
