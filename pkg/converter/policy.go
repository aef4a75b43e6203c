package converter

import (
	"fmt"

	"github.com/stackvity/utf-converter/pkg/converter/codec"
	"github.com/stackvity/utf-converter/pkg/converter/encoding"
)

// Action is what happens to a single file.
type Action int

const (
	ActionSkip Action = iota
	ActionConvert
	ActionFail
)

func (a Action) String() string {
	switch a {
	case ActionSkip:
		return "skip"
	case ActionConvert:
		return "convert"
	case ActionFail:
		return "fail"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Reason explains a Skip or Fail decision. Reasons appear verbatim in reports.
type Reason string

const (
	ReasonOutOfBounds   Reason = "out-of-bounds"
	ReasonUndetectable  Reason = "undetectable"
	ReasonASCII         Reason = "ascii"
	ReasonAlreadyUTF    Reason = "already-utf"
	ReasonAlreadyTarget Reason = "already-target"
	ReasonBinary        Reason = "binary"
	ReasonDecodeError   Reason = "decode-error"
)

// Decision is the per-file verdict of the Policy. Build it with Skip, Convert or Fail.
type Decision struct {
	Action Action
	Reason Reason
	From   codec.Codec
	To     codec.Codec
	Err    error
}

// Skip leaves the file untouched.
func Skip(reason Reason) Decision { return Decision{Action: ActionSkip, Reason: reason} }

// ConvertTo re-encodes the file from one codec to another.
func ConvertTo(from, to codec.Codec) Decision {
	return Decision{Action: ActionConvert, From: from, To: to}
}

// Fail records a per-file failure. It never aborts a batch.
func Fail(reason Reason, err error) Decision {
	return Decision{Action: ActionFail, Reason: reason, Err: err}
}

func (d Decision) String() string {
	switch d.Action {
	case ActionConvert:
		return fmt.Sprintf("convert(%s -> %s)", d.From, d.To)
	case ActionFail:
		return fmt.Sprintf("fail(%s): %v", d.Reason, d.Err)
	}
	return fmt.Sprintf("skip(%s)", d.Reason)
}

// Policy decides, per file, whether to skip, convert or fail. It is a plain value and
// never changes during a run.
type Policy struct {
	Target    codec.Codec
	SkipUTF   bool
	SkipASCII bool
	SizeLimit int64 // Bytes
}

// Bounds applies the size rule alone so a caller can skip a file before reading it.
// ok is false when the file is empty or larger than the limit.
func (p Policy) Bounds(size int64) (d Decision, ok bool) {
	if size <= 0 || size > p.SizeLimit {
		return Skip(ReasonOutOfBounds), false
	}
	return Decision{}, true
}

// Decide applies the rules in order, first match wins:
//  1. empty or oversized file: skip(out-of-bounds)
//  2. no detection: skip(undetectable)
//  3. ASCII counts as the target codec (or skip(ascii) when SkipASCII is set)
//  4. skipUTF and a UTF codec: skip(already-utf)
//  5. exactly the target, BOM-sensitive: skip(already-target)
//  6. convert(detected, target)
func (p Policy) Decide(result encoding.DetectionResult, size int64) Decision {
	if d, ok := p.Bounds(size); !ok {
		return d
	}
	if result.IsUnknown() {
		return Skip(ReasonUndetectable)
	}

	detected := result.Codec
	if result.ASCII {
		if p.SkipASCII {
			return Skip(ReasonASCII)
		}
		detected = p.Target
	}

	if p.SkipUTF && detected.IsUTF() {
		return Skip(ReasonAlreadyUTF)
	}
	if detected.Equal(p.Target) {
		return Skip(ReasonAlreadyTarget)
	}
	return ConvertTo(detected, p.Target)
}

// Resolve performs the strict decode for a Convert decision. A decode error means the
// detector guessed wrong and escalates the file to Fail(decode-error). Other decisions
// are returned unchanged with empty text.
func (p Policy) Resolve(d Decision, data []byte) (Decision, string) {
	if d.Action != ActionConvert {
		return d, ""
	}
	text, err := codec.Decode(d.From, data)
	if err != nil {
		return Fail(ReasonDecodeError, err), ""
	}
	return d, text
}
