// Package sgns trains word embeddings with skip-gram negative sampling.
// It builds word and context vocabularies from tokenized sentences, derives
// positive and negative pairs, optimizes a flat parameter vector by mini-batch
// gradient ascent and answers cosine-similarity queries over the result.
package sgns

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Default hyperparameters
const (
	EMBEDDING_DIM = 100  // Vector dimensionality
	WINDOW_SIZE   = 7    // Context width, window/2 tokens on each side
	NEGATIVE_RATE = 5    // Negative pairs drawn per positive pair
	MIN_COUNT     = 5    // Tokens seen at most this often are pruned
	BATCH_SIZE    = 500  // Positive pairs per gradient step
	EPOCHS        = 5    // Passes over the positive pairs
	LEARNING_RATE = 0.01 // Gradient ascent step
	EPSILON       = 1e-5 // Scale of the initial random parameters
	OOV_VALUE     = 0.01 // Component value of the out-of-vocabulary vector
)

// Config holds the training hyperparameters.
type Config struct {
	EmbeddingDim int
	WindowSize   int
	NegativeRate int
	MinCount     int
	BatchSize    int
	Epochs       int
	LearningRate float64
	Epsilon      float64

	// KeepPartialBatch trains on the trailing batch when the number of positive
	// pairs is not a multiple of BatchSize. It is dropped otherwise.
	KeepPartialBatch bool

	// Seed for negative sampling and parameter initialization; 0 seeds from the clock.
	Seed int64
}

// DefaultConfig returns the default hyperparameters.
func DefaultConfig() Config {
	return Config{
		EmbeddingDim: EMBEDDING_DIM,
		WindowSize:   WINDOW_SIZE,
		NegativeRate: NEGATIVE_RATE,
		MinCount:     MIN_COUNT,
		BatchSize:    BATCH_SIZE,
		Epochs:       EPOCHS,
		LearningRate: LEARNING_RATE,
		Epsilon:      EPSILON,
	}
}

// Validate reports hyperparameters that cannot be trained with.
func (c Config) Validate() error {
	switch {
	case c.EmbeddingDim <= 0:
		return fmt.Errorf("%w: embedding dimension must be positive, got %d", ErrInvalidConfiguration, c.EmbeddingDim)
	case c.WindowSize < 0:
		return fmt.Errorf("%w: window size must not be negative, got %d", ErrInvalidConfiguration, c.WindowSize)
	case c.NegativeRate <= 0:
		return fmt.Errorf("%w: negative rate must be positive, got %d", ErrInvalidConfiguration, c.NegativeRate)
	case c.MinCount < 0:
		return fmt.Errorf("%w: min count must not be negative, got %d", ErrInvalidConfiguration, c.MinCount)
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidConfiguration, c.BatchSize)
	case c.Epochs <= 0:
		return fmt.Errorf("%w: epochs must be positive, got %d", ErrInvalidConfiguration, c.Epochs)
	case c.LearningRate <= 0:
		return fmt.Errorf("%w: learning rate must be positive, got %g", ErrInvalidConfiguration, c.LearningRate)
	case c.Epsilon <= 0:
		return fmt.Errorf("%w: epsilon must be positive, got %g", ErrInvalidConfiguration, c.Epsilon)
	}
	return nil
}

// State is the lifecycle stage of a SkipGram.
type State int

const (
	StateUninitialized State = iota
	StateInitialized         // vocabularies and pairs built
	StateTraining            // epoch loop started, theta owned by the trainer
	StateTrained             // embedding matrix available
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateTraining:
		return "training"
	case StateTrained:
		return "trained"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// RandSource drives negative sampling and parameter initialization.
type RandSource interface {
	Sampler
	Float64() float64
}

// SkipGram model
type SkipGram struct {
	config Config
	logger *zap.Logger
	rng    RandSource
	state  State

	// Data
	words    *Vocabulary // Word vocabulary
	contexts *Vocabulary // Context vocabulary
	positive []Pair
	negative []Pair

	// Parameters: word rows followed by context rows, EmbeddingDim values each
	theta []float64

	// Progress, in completed units, for resuming an interrupted run
	epochsDone  int
	batchesDone int

	model *Model
}

// Option configures a SkipGram.
type Option func(*SkipGram)

// WithLogger sets the logger used for progress events.
func WithLogger(logger *zap.Logger) Option {
	return func(s *SkipGram) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRandSource overrides the seeded random source.
func WithRandSource(src RandSource) Option {
	return func(s *SkipGram) {
		if src != nil {
			s.rng = src
		}
	}
}

// NewSkipGram creates an uninitialized model after validating cfg.
func NewSkipGram(cfg Config, opts ...Option) (*SkipGram, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &SkipGram{
		config: cfg,
		logger: zap.NewNop(),
		rng:    rand.New(rand.NewSource(seed)),
		state:  StateUninitialized,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the hyperparameters.
func (s *SkipGram) Config() Config { return s.config }

// State returns the current lifecycle stage.
func (s *SkipGram) State() State { return s.state }

// WordVocab returns the word vocabulary, nil before Initialize.
func (s *SkipGram) WordVocab() *Vocabulary { return s.words }

// ContextVocab returns the context vocabulary, nil before Initialize.
func (s *SkipGram) ContextVocab() *Vocabulary { return s.contexts }

// Positives returns the positive pairs.
func (s *SkipGram) Positives() []Pair { return s.positive }

// Negatives returns the negative pairs.
func (s *SkipGram) Negatives() []Pair { return s.negative }

// Theta returns a copy of the parameter vector, nil when none is allocated.
func (s *SkipGram) Theta() []float64 {
	if s.theta == nil {
		return nil
	}
	out := make([]float64, len(s.theta))
	copy(out, s.theta)
	return out
}

// batchCount returns the number of gradient steps per epoch for n positive pairs.
func (s *SkipGram) batchCount(n int) int {
	if s.config.KeepPartialBatch {
		return (n + s.config.BatchSize - 1) / s.config.BatchSize
	}
	return n / s.config.BatchSize
}

// Initialize prunes rare words, then builds both vocabularies and the positive
// and negative pairs. It fails before any parameters are allocated when the
// corpus cannot fill a single batch.
func (s *SkipGram) Initialize(sentences [][]string) error {
	if s.state != StateUninitialized {
		return fmt.Errorf("%w: model is already %s", ErrInvalidConfiguration, s.state)
	}
	s.logger.Info("start initialization", zap.Int("sentences", len(sentences)))

	pruned := PruneRareWords(sentences, s.config.MinCount)
	s.logger.Info("data processing ended", zap.Int("min_count", s.config.MinCount))

	positive, words, contexts := PositivePairs(pruned, s.config.WindowSize)
	if len(positive) == 0 {
		return fmt.Errorf("%w: corpus yields no positive pairs", ErrInvalidConfiguration)
	}
	if s.batchCount(len(positive)) == 0 {
		return fmt.Errorf("%w: %d positive pairs do not fill one batch of %d",
			ErrInvalidConfiguration, len(positive), s.config.BatchSize)
	}
	s.logger.Info("positive pairs generated",
		zap.Int("pairs", len(positive)),
		zap.Int("words", words.Len()),
		zap.Int("contexts", contexts.Len()),
	)

	negative := NegativePairs(positive, s.config.NegativeRate, s.rng)
	s.logger.Info("negative pairs generated", zap.Int("pairs", len(negative)))

	s.words = words
	s.contexts = contexts
	s.positive = positive
	s.negative = negative
	s.state = StateInitialized
	s.logger.Info("end of initialization")
	return nil
}

// InitializeParameters allocates theta with small positive random values.
func (s *SkipGram) InitializeParameters() error {
	if s.state != StateInitialized {
		return fmt.Errorf("%w: parameters can only be allocated once initialized, model is %s",
			ErrInvalidConfiguration, s.state)
	}

	l := layout{dim: s.config.EmbeddingDim, numWords: s.words.Len(), numContexts: s.contexts.Len()}
	s.theta = make([]float64, l.size())
	for i := range s.theta {
		s.theta[i] = s.rng.Float64() * s.config.Epsilon
	}
	s.epochsDone = 0
	s.batchesDone = 0
	return nil
}
