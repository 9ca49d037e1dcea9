package sgns

import "errors"

var (
	// ErrInvalidConfiguration is returned when hyperparameters or corpus-derived
	// sizes cannot produce a trainable model.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrCorruptModelState is returned when an embedding matrix and a word
	// vocabulary do not form a consistent model.
	ErrCorruptModelState = errors.New("corrupt model state")

	// ErrDivisionByZero is returned by cosine similarity for zero-norm vectors.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrNotTrained is returned when embeddings are requested before training finished.
	ErrNotTrained = errors.New("model is not trained")
)
