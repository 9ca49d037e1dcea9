package sgns

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Sigmoid computes 1/(1+exp(-x)) without overflowing for large |x|.
func Sigmoid(x float64) float64 {
	if x >= 0 {
		return 1.0 / (1.0 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1.0 + e)
}

// LogSigmoid computes log(Sigmoid(x)) without underflow to -Inf.
func LogSigmoid(x float64) float64 {
	if x >= 0 {
		return -math.Log1p(math.Exp(-x))
	}
	return x - math.Log1p(math.Exp(x))
}

// layout describes how theta is split into word rows followed by context rows.
type layout struct {
	dim         int
	numWords    int
	numContexts int
}

func newLayout(thetaLen, dim, numWords, numContexts int) (layout, error) {
	if dim <= 0 || numWords <= 0 || numContexts <= 0 {
		return layout{}, fmt.Errorf("%w: dim=%d words=%d contexts=%d must be positive",
			ErrInvalidConfiguration, dim, numWords, numContexts)
	}
	l := layout{dim: dim, numWords: numWords, numContexts: numContexts}
	if thetaLen != l.size() {
		return layout{}, fmt.Errorf("%w: theta has %d values, want %d",
			ErrInvalidConfiguration, thetaLen, l.size())
	}
	return l, nil
}

func (l layout) size() int {
	return l.dim * (l.numWords + l.numContexts)
}

// wordRow returns the slice of buf holding word row i.
func (l layout) wordRow(buf []float64, i int) []float64 {
	return buf[i*l.dim : (i+1)*l.dim]
}

// contextRow returns the slice of buf holding context row j, stored after all word rows.
func (l layout) contextRow(buf []float64, j int) []float64 {
	off := (l.numWords + j) * l.dim
	return buf[off : off+l.dim]
}

func (l layout) checkPairs(pairs []Pair) error {
	for k, p := range pairs {
		if p.Word < 0 || p.Word >= l.numWords {
			return fmt.Errorf("pair %d: word index %d out of range [0,%d)", k, p.Word, l.numWords)
		}
		if p.Context < 0 || p.Context >= l.numContexts {
			return fmt.Errorf("pair %d: context index %d out of range [0,%d)", k, p.Context, l.numContexts)
		}
	}
	return nil
}

// ComputeGradient returns the ascent gradient of the SGNS log-likelihood
// sum(log σ(w·c)) over positive pairs plus sum(log σ(-w·c)) over negative pairs,
// taken at theta. theta is not modified.
func ComputeGradient(theta []float64, dim int, positive, negative []Pair, numWords, numContexts int) ([]float64, error) {
	l, err := newLayout(len(theta), dim, numWords, numContexts)
	if err != nil {
		return nil, err
	}
	if err := l.checkPairs(positive); err != nil {
		return nil, fmt.Errorf("positive %w", err)
	}
	if err := l.checkPairs(negative); err != nil {
		return nil, fmt.Errorf("negative %w", err)
	}

	grad := make([]float64, len(theta))
	accumulateGradient(grad, theta, l, positive, negative)
	return grad, nil
}

// accumulateGradient adds the batch gradient into grad and returns the batch
// log-likelihood. Pair indices must already be validated.
func accumulateGradient(grad, theta []float64, l layout, positive, negative []Pair) float64 {
	logLik := 0.0

	for _, p := range positive {
		word := l.wordRow(theta, p.Word)
		context := l.contextRow(theta, p.Context)

		dot := floats.Dot(word, context)
		s := Sigmoid(-dot)
		logLik += LogSigmoid(dot)

		floats.AddScaled(l.wordRow(grad, p.Word), s, context)
		floats.AddScaled(l.contextRow(grad, p.Context), s, word)
	}

	for _, p := range negative {
		word := l.wordRow(theta, p.Word)
		context := l.contextRow(theta, p.Context)

		dot := floats.Dot(word, context)
		s := Sigmoid(dot)
		logLik += LogSigmoid(-dot)

		floats.AddScaled(l.wordRow(grad, p.Word), -s, context)
		floats.AddScaled(l.contextRow(grad, p.Context), -s, word)
	}

	return logLik
}
