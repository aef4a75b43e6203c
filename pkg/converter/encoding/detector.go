// Package encoding turns raw file bytes into a detection result: which codec the bytes
// are in and how sure we are. It also decides whether content is binary at all.
package encoding

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stackvity/utf-converter/pkg/converter/codec"
)

// Chain step names that are not codecs.
const (
	StepASCII = "ascii"
	StepGuess = "guess"
)

// DefaultThreshold is the minimum guesser confidence accepted as a detection.
const DefaultThreshold = 0.8

// DefaultChain is tried in order until a step produces a codec.
var DefaultChain = []string{StepASCII, codec.NameUTF8BOM, StepGuess}

// ErrInvalidDetector reports a bad threshold or chain.
var ErrInvalidDetector = errors.New("invalid detector configuration")

// DetectionResult is the outcome of Detect. The zero value means "unknown".
type DetectionResult struct {
	Codec      codec.Codec
	Confidence float64
	Raw        string // Name as produced by the step that answered
	ASCII      bool   // Every byte is below 0x80
}

// IsUnknown reports whether no usable codec was found.
func (r DetectionResult) IsUnknown() bool { return r.Codec.IsUnknown() }

type stepKind int

const (
	stepASCII stepKind = iota
	stepDecode
	stepGuess
)

type step struct {
	kind  stepKind
	name  string
	codec codec.Codec
}

// Detector runs the detect chain over a file's bytes.
type Detector struct {
	guesser   Guesser
	threshold float64
	chain     []step
	logger    *slog.Logger
}

// NewDetector builds a detector. A nil guesser means chardet, an empty chain means
// DefaultChain. Codec steps must name a codec the registry can decode.
func NewDetector(guesser Guesser, threshold float64, chain []string, handler slog.Handler) (*Detector, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: confidence threshold %v outside [0,1]", ErrInvalidDetector, threshold)
	}
	if guesser == nil {
		guesser = NewChardetGuesser()
	}
	if len(chain) == 0 {
		chain = DefaultChain
	}
	if handler == nil {
		handler = slog.Default().Handler()
	}

	steps := make([]step, 0, len(chain))
	for _, raw := range chain {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch name {
		case StepASCII:
			steps = append(steps, step{kind: stepASCII, name: name})
		case StepGuess, "chardet":
			steps = append(steps, step{kind: stepGuess, name: StepGuess})
		case "":
			return nil, fmt.Errorf("%w: empty detect chain entry", ErrInvalidDetector)
		default:
			c := codec.Normalize(raw)
			if _, err := codec.Lookup(c); err != nil {
				return nil, fmt.Errorf("%w: detect chain entry %q: %w", ErrInvalidDetector, raw, err)
			}
			steps = append(steps, step{kind: stepDecode, name: c.String(), codec: c})
		}
	}

	return &Detector{
		guesser:   guesser,
		threshold: threshold,
		chain:     steps,
		logger:    slog.New(handler).With(slog.String("component", "detector")),
	}, nil
}

// Threshold returns the configured confidence threshold.
func (d *Detector) Threshold() float64 { return d.threshold }

// Detect never fails: every problem collapses into an unknown result, which still
// carries the rejected guess for reporting.
func (d *Detector) Detect(data []byte) DetectionResult {
	var last DetectionResult
	for _, s := range d.chain {
		switch s.kind {
		case stepASCII:
			if isASCII(data) {
				return DetectionResult{Codec: codec.UTF8, Confidence: 1, Raw: StepASCII, ASCII: true}
			}
		case stepDecode:
			if _, err := codec.Decode(s.codec, data); err == nil {
				return DetectionResult{Codec: s.codec, Confidence: 1, Raw: s.name}
			}
		case stepGuess:
			last = d.guess(data)
			if !last.IsUnknown() {
				return last
			}
		}
	}
	return last
}

func (d *Detector) guess(data []byte) DetectionResult {
	g, err := d.guesser.Guess(data)
	if err != nil {
		d.logger.Debug("Guesser failed", "error", err)
		return DetectionResult{}
	}
	if strings.TrimSpace(g.Charset) == "" {
		return DetectionResult{Confidence: g.Confidence}
	}
	if g.Confidence < d.threshold {
		d.logger.Debug("Guess below confidence threshold", "charset", g.Charset, "confidence", g.Confidence, "threshold", d.threshold)
		return DetectionResult{Confidence: g.Confidence, Raw: g.Charset}
	}
	return DetectionResult{
		Codec:      codec.Normalize(g.Charset),
		Confidence: g.Confidence,
		Raw:        g.Charset,
		ASCII:      strings.EqualFold(g.Charset, StepASCII),
	}
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}
