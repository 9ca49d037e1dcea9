package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func NewNeighborsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "neighbors <word>",
		Short: "Show the words most similar to a word",
		Args:  cobra.ExactArgs(1),
		RunE:  runNeighbors,
	}

	cmd.Flags().IntP("k", "k", 0, "Number of similar words to show (default similarity.top_k)")
	addModelSourceFlags(cmd)

	return cmd
}

func runNeighbors(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	k, _ := cmd.Flags().GetInt("k")
	if k <= 0 {
		k = e.cfg.Similarity.TopK
	}

	model, err := e.loadModel(cmd)
	if err != nil {
		return err
	}

	word := strings.ToLower(args[0])
	words, scores, err := model.FindKMostSimilar(word, k)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if _, ok := model.Vector(word); !ok {
		fmt.Fprintf(out, "Word '%s' not found in vocabulary, ranking against the OOV vector\n", word)
	}
	fmt.Fprintf(out, "Most similar words to '%s':\n", word)
	for i, w := range words {
		fmt.Fprintf(out, "%d. %s (%.4f)\n", i+1, w, scores[w])
	}
	return nil
}
