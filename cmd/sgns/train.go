package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	sgns "github.com/n0madic/go-sgns"
	"github.com/n0madic/go-sgns/internal/logging"
)

func NewTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train embeddings on a corpus",
		Long: `Tokenize a corpus (one sentence per line), train skip-gram embeddings and
store the resulting model. With --checkpoint an existing checkpoint is resumed
and an interrupted run is saved to it.`,
		Args: cobra.NoArgs,
		RunE: runTrain,
	}

	cmd.Flags().String("corpus", "", "Text corpus, one sentence per line (use - for stdin)")
	cmd.Flags().String("model", "default", "Name to store the trained model under")
	cmd.Flags().String("checkpoint", "", "Checkpoint file to resume from and save interrupted runs to")
	cmd.Flags().Int("save-interval", 0, "Also save the checkpoint every N epochs (0 = only when interrupted)")
	cmd.Flags().String("vectors", "", "Also write the vectors in text format to this file")
	cmd.Flags().Bool("save-header", false, "Include header (vocab_size vector_size) in the vectors file")
	cmd.Flags().Int("epochs", 0, "Override training.epochs")
	cmd.Flags().Int("dim", 0, "Override training.embedding_dim")
	cmd.Flags().Bool("quiet", false, "Disable training progress output")

	return cmd
}

func runTrain(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	name, _ := cmd.Flags().GetString("model")
	checkpoint, _ := cmd.Flags().GetString("checkpoint")
	saveInterval, _ := cmd.Flags().GetInt("save-interval")
	quiet, _ := cmd.Flags().GetBool("quiet")

	logger := logging.Named(e.logger, "trainer")

	var sg *sgns.SkipGram
	if checkpoint != "" && fileExists(checkpoint) {
		sg, err = sgns.LoadCheckpoint(checkpoint, sgns.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("load checkpoint: %w", err)
		}
		fmt.Fprintf(out, "Resuming from checkpoint %s (%d words, %d positive pairs)\n",
			checkpoint, sg.WordVocab().Len(), len(sg.Positives()))
	} else {
		if sg, err = newTrainer(cmd, e, logger); err != nil {
			return err
		}
	}

	callback := func(p sgns.TrainingProgress) {
		if !quiet {
			fmt.Fprintf(out, "Epoch %d/%d, Log-likelihood: %.6f, Time: %v\n",
				p.Epoch, p.Epochs, p.LogLikelihood, p.TimeElapsed.Truncate(time.Millisecond))
		}
		if checkpoint != "" && saveInterval > 0 && p.Epoch%saveInterval == 0 && p.Epoch < p.Epochs {
			if err := sg.SaveCheckpoint(checkpoint); err != nil {
				logger.Warn("periodic checkpoint failed", zap.String("path", checkpoint), zap.Error(err))
			}
		}
	}

	if err := sg.TrainWithCallback(ctx, callback); err != nil {
		if checkpoint != "" && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			if saveErr := sg.SaveCheckpoint(checkpoint); saveErr != nil {
				return fmt.Errorf("save checkpoint after %v: %w", err, saveErr)
			}
			fmt.Fprintf(out, "Training interrupted, state saved to %s\n", checkpoint)
		}
		return fmt.Errorf("train: %w", err)
	}

	model, err := sg.Model()
	if err != nil {
		return err
	}

	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	// The stored copy is independent of the run's context
	id, err := st.Save(context.WithoutCancel(ctx), name, model)
	if err != nil {
		return fmt.Errorf("store model: %w", err)
	}

	if vectors, _ := cmd.Flags().GetString("vectors"); vectors != "" {
		header, _ := cmd.Flags().GetBool("save-header")
		if err := writeVectors(vectors, model, header); err != nil {
			return err
		}
		fmt.Fprintf(out, "Vectors written to %s\n", vectors)
	}

	if checkpoint != "" {
		if err := os.Remove(checkpoint); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("failed to remove checkpoint", zap.String("path", checkpoint), zap.Error(err))
		}
	}

	fmt.Fprintf(out, "Training completed successfully! Stored model %q (id %s)\n", name, id)
	return nil
}

func newTrainer(cmd *cobra.Command, e *env, logger *zap.Logger) (*sgns.SkipGram, error) {
	corpus, _ := cmd.Flags().GetString("corpus")
	if corpus == "" {
		return nil, errors.New("--corpus is required unless resuming from a checkpoint")
	}

	cfg := e.cfg.Training.ToSGNS()
	if cmd.Flags().Changed("epochs") {
		cfg.Epochs, _ = cmd.Flags().GetInt("epochs")
	}
	if cmd.Flags().Changed("dim") {
		cfg.EmbeddingDim, _ = cmd.Flags().GetInt("dim")
	}

	sentences, err := readSentences(cmd, corpus)
	if err != nil {
		return nil, err
	}

	sg, err := sgns.NewSkipGram(cfg, sgns.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := sg.Initialize(sentences); err != nil {
		return nil, err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Training SGNS model with the following parameters:\n")
	fmt.Fprintf(out, "  Corpus: %s (%d sentences)\n", corpus, len(sentences))
	fmt.Fprintf(out, "  Embedding dim: %d\n", cfg.EmbeddingDim)
	fmt.Fprintf(out, "  Window size: %d\n", cfg.WindowSize)
	fmt.Fprintf(out, "  Negative rate: %d\n", cfg.NegativeRate)
	fmt.Fprintf(out, "  Epochs: %d\n", cfg.Epochs)
	fmt.Fprintf(out, "  Vocabulary: %d words, %d contexts\n", sg.WordVocab().Len(), sg.ContextVocab().Len())
	fmt.Fprintf(out, "  Pairs: %d positive, %d negative\n", len(sg.Positives()), len(sg.Negatives()))
	return sg, nil
}

// readSentences tokenizes path, or standard input when path is "-".
func readSentences(cmd *cobra.Command, path string) ([][]string, error) {
	var input io.Reader
	if path == "-" {
		input = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open corpus: %w", err)
		}
		defer f.Close()
		input = f
	}
	return sgns.TokenizeSentences(input)
}

func writeVectors(path string, model *sgns.Model, header bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create vectors file: %w", err)
	}
	if err := model.SaveVectors(f, header); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
