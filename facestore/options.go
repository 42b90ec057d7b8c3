package facestore

import (
	"fmt"
	"math"

	"github.com/viant/facevec/logging"
)

// DefaultThreshold is the match threshold for 128-dimension face
// descriptors produced by dlib-style recognition networks.
const DefaultThreshold = 0.6

// Option configures a Store.
type Option func(*options)

type options struct {
	threshold float64
	dimension int
	logger    *logging.Logger
}

func defaultOptions() options {
	return options{
		threshold: DefaultThreshold,
		logger:    logging.NoopLogger(),
	}
}

func (o options) validate() error {
	if math.IsNaN(o.threshold) || math.IsInf(o.threshold, 0) || o.threshold <= 0 {
		return fmt.Errorf("facestore: invalid threshold %v", o.threshold)
	}
	if o.dimension < 0 {
		return fmt.Errorf("facestore: invalid dimension %d", o.dimension)
	}
	return nil
}

// WithThreshold sets the maximum Euclidean distance at which a stored
// descriptor matches a query.
func WithThreshold(t float64) Option {
	return func(o *options) { o.threshold = t }
}

// WithDimension pins the descriptor length before the first Add. Zero lets
// the first Add establish it.
func WithDimension(dim int) Option {
	return func(o *options) { o.dimension = dim }
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = logging.NoopLogger()
		}
		o.logger = l
	}
}
