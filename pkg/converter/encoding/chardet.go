package encoding

import (
	"bytes"
	"errors"
	"strings"

	"github.com/saintfish/chardet"
	"github.com/stackvity/utf-converter/pkg/converter/codec"
)

// Guess is a raw detector answer: a charset name as the detector spells it and a
// confidence in [0,1].
type Guess struct {
	Charset    string
	Confidence float64
}

// Guesser is the statistical detector behind the "guess" chain step.
type Guesser interface {
	Guess(data []byte) (Guess, error)
}

// chardetAliases rewrites saintfish/chardet spellings onto the names the codec table knows.
var chardetAliases = map[string]string{
	"GB-18030": "GB18030",
}

// ChardetGuesser implements Guesser with github.com/saintfish/chardet.
type ChardetGuesser struct {
	detector *chardet.Detector
}

// NewChardetGuesser creates a guesser backed by the chardet text detector.
func NewChardetGuesser() *ChardetGuesser {
	return &ChardetGuesser{detector: chardet.NewTextDetector()}
}

// Guess implements the Guesser interface. "Nothing detected" is not an error, it yields
// an empty guess.
func (g *ChardetGuesser) Guess(data []byte) (Guess, error) {
	res, err := g.detector.DetectBest(data)
	if err != nil {
		if errors.Is(err, chardet.NotDetectedError) {
			return Guess{}, nil
		}
		return Guess{}, err
	}
	if res == nil {
		return Guess{}, nil
	}

	name := res.Charset
	if alias, ok := chardetAliases[strings.ToUpper(name)]; ok {
		name = alias
	}
	// chardet reports plain UTF-8 for content that starts with a mark.
	if strings.EqualFold(name, "UTF-8") && bytes.HasPrefix(data, codec.BOM) {
		name = "UTF-8-SIG"
	}
	return Guess{Charset: name, Confidence: float64(res.Confidence) / 100}, nil
}
