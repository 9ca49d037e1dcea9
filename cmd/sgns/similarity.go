package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	sgns "github.com/n0madic/go-sgns"
	"github.com/n0madic/go-sgns/internal/export"
)

func NewSimilarityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "similarity",
		Short: "Score word pairs with a trained model",
		Long: `Read a tab-delimited file with a "word_1 word_2 [similarity]" header and
write the cosine similarity of every pair. Results go to stdout as CSV unless
--results names a .csv or .xlsx file.`,
		Args: cobra.NoArgs,
		RunE: runSimilarity,
	}

	cmd.Flags().String("pairs", "", "Tab-delimited word pairs file")
	cmd.Flags().String("results", "", "Output file (.csv or .xlsx); stdout when empty")
	addModelSourceFlags(cmd)
	_ = cmd.MarkFlagRequired("pairs")

	return cmd
}

func runSimilarity(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	pairsPath, _ := cmd.Flags().GetString("pairs")
	resultsPath, _ := cmd.Flags().GetString("results")

	f, err := os.Open(pairsPath)
	if err != nil {
		return fmt.Errorf("failed to open pairs file: %w", err)
	}
	pairs, err := sgns.ReadWordPairs(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", pairsPath, err)
	}

	model, err := e.loadModel(cmd)
	if err != nil {
		return err
	}

	results, err := model.ScorePairs(pairs)
	if err != nil {
		return err
	}

	if resultsPath == "" {
		return sgns.WriteSimilarities(cmd.OutOrStdout(), results)
	}
	if err := export.WriteFile(resultsPath, results); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Scored %d pairs, results written to %s\n", len(results), resultsPath)
	return nil
}
