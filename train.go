package sgns

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// TrainingProgress contains information about the current training progress
type TrainingProgress struct {
	Epoch         int           // Completed epoch (1-based)
	Epochs        int           // Total number of epochs
	Batches       int           // Gradient steps per epoch
	LogLikelihood float64       // Objective summed over the epoch's batches
	TimeElapsed   time.Duration // Time elapsed since training started
}

// ProgressCallback is a function type for receiving training progress updates
type ProgressCallback func(progress TrainingProgress)

// Train runs the configured number of epochs.
func (s *SkipGram) Train(ctx context.Context) error {
	return s.TrainWithCallback(ctx, nil)
}

// TrainWithCallback runs the epoch and batch loop, calling callback after every
// epoch. Cancellation is observed between batches, so theta always reflects a
// whole number of batch updates; a cancelled run resumes from the next batch.
func (s *SkipGram) TrainWithCallback(ctx context.Context, callback ProgressCallback) error {
	switch s.state {
	case StateUninitialized:
		return fmt.Errorf("%w: Initialize must be called before training", ErrInvalidConfiguration)
	case StateTrained:
		return nil
	}

	if s.theta == nil {
		if err := s.InitializeParameters(); err != nil {
			return err
		}
	}

	l, err := newLayout(len(s.theta), s.config.EmbeddingDim, s.words.Len(), s.contexts.Len())
	if err != nil {
		return err
	}

	s.state = StateTraining

	var (
		size    = s.config.BatchSize
		rate    = s.config.NegativeRate
		lr      = s.config.LearningRate
		batches = s.batchCount(len(s.positive))
		grad    = make([]float64, len(s.theta))
		start   = time.Now()
	)

	s.logger.Info("start training",
		zap.Int("epochs", s.config.Epochs),
		zap.Float64("learning_rate", lr),
		zap.Int("batch_size", size),
		zap.Int("batches", batches),
	)

	for epoch := s.epochsDone; epoch < s.config.Epochs; epoch++ {
		logLik := 0.0

		for b := s.batchesDone; b < batches; b++ {
			if err := ctx.Err(); err != nil {
				s.logger.Warn("training interrupted",
					zap.Int("epoch", epoch+1),
					zap.Int("batch", b),
					zap.Error(err),
				)
				return err
			}

			begin := b * size
			end := min(begin+size, len(s.positive))

			clear(grad)
			logLik += accumulateGradient(grad, s.theta, l,
				s.positive[begin:end], s.negative[rate*begin:rate*end])

			// Ascent: the objective is maximized
			floats.AddScaled(s.theta, lr, grad)
			s.batchesDone = b + 1
		}

		s.epochsDone = epoch + 1
		s.batchesDone = 0

		s.logger.Info("epoch finished",
			zap.Int("epoch", epoch+1),
			zap.Int("epochs", s.config.Epochs),
			zap.Float64("log_likelihood", logLik),
		)

		if callback != nil {
			callback(TrainingProgress{
				Epoch:         epoch + 1,
				Epochs:        s.config.Epochs,
				Batches:       batches,
				LogLikelihood: logLik,
				TimeElapsed:   time.Since(start),
			})
		}
	}

	s.finish(l)
	return nil
}

// finish exposes the word block of theta as the embedding matrix and hands
// ownership of that block to the model.
func (s *SkipGram) finish(l layout) {
	matrix := mat.NewDense(l.numWords, l.dim, s.theta[:l.numWords*l.dim])
	s.model = newModel(matrix, s.words, s.logger)
	s.theta = nil
	s.state = StateTrained
	s.logger.Info("training completed", zap.Int("words", l.numWords), zap.Int("dim", l.dim))
}

// Model returns the trained embeddings with the word vocabulary.
func (s *SkipGram) Model() (*Model, error) {
	if s.state != StateTrained {
		return nil, fmt.Errorf("%w: model is %s", ErrNotTrained, s.state)
	}
	return s.model, nil
}
