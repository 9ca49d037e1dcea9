package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	sgns "github.com/n0madic/go-sgns"
)

func NewTokenizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokenize",
		Short: "Tokenize a corpus the way training does",
		Long: `Lowercase, strip punctuation and keep alphabetic tokens, one sentence per line.
Tokens seen --min-freq times or fewer are pruned.`,
		Args: cobra.NoArgs,
		RunE: runTokenize,
	}

	cmd.Flags().String("input", "", "Input text file to tokenize (use - for stdin)")
	cmd.Flags().String("output", "", "Output file (stdout when empty or -)")
	cmd.Flags().Bool("show-freqs", false, "Output word frequencies instead of tokens")
	cmd.Flags().Int("min-freq", 0, "Prune tokens occurring this many times or fewer")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runTokenize(cmd *cobra.Command, _ []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	showFreqs, _ := cmd.Flags().GetBool("show-freqs")
	minFreq, _ := cmd.Flags().GetInt("min-freq")

	sentences, err := readSentences(cmd, inputPath)
	if err != nil {
		return err
	}
	sentences = sgns.PruneRareWords(sentences, minFreq)

	var output io.Writer = cmd.OutOrStdout()
	if outputPath != "" && outputPath != "-" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	if showFreqs {
		for _, wf := range sgns.CountWords(sentences) {
			fmt.Fprintf(output, "%s %d\n", wf.Word, wf.Freq)
		}
		return nil
	}

	for _, sentence := range sentences {
		fmt.Fprintln(output, strings.Join(sentence, " "))
	}
	return nil
}
