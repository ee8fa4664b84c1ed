package repo

import (
	"context"
	"errors"
)

// ErrClassifierUnavailable means the classifier produced no usable result
var ErrClassifierUnavailable = errors.New("classifier unavailable")

// Classification is the classifier's top guess
type Classification struct {
	Label      string
	Confidence float64 // in [0,1]
}

// Classifier guesses the language of a text blob
type Classifier interface {
	Classify(ctx context.Context, text string) (Classification, error)
}
