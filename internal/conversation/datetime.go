package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// DateTimeParser finds a date/time expression in free text. Implementations
// must return an absolute instant; relative expressions resolve against ref
// in ref's location. found is false when the text holds no expression.
type DateTimeParser interface {
	Parse(text string, ref time.Time) (at time.Time, found bool, err error)
}

// DateTimeParserFunc adapts a plain function to DateTimeParser.
type DateTimeParserFunc func(text string, ref time.Time) (time.Time, bool, error)

func (f DateTimeParserFunc) Parse(text string, ref time.Time) (time.Time, bool, error) {
	return f(text, ref)
}

// WhenParser resolves English expressions ("tomorrow 3pm", "next friday at 10:30").
type WhenParser struct {
	parser *when.Parser
}

// NewWhenParser builds a parser with the English and common rule sets.
func NewWhenParser() *WhenParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &WhenParser{parser: w}
}

func (p *WhenParser) Parse(text string, ref time.Time) (time.Time, bool, error) {
	if strings.TrimSpace(text) == "" {
		return time.Time{}, false, nil
	}
	res, err := p.parser.Parse(text, ref)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("conversation: parse date: %w", err)
	}
	if res == nil || !p.hasClock(text, ref, res.Time) {
		return time.Time{}, false, nil
	}
	return res.Time, true, nil
}

// clockProbeShift moves the reference clock without leaving its day.
const clockProbeShift = 97*time.Minute + 13*time.Second

// hasClock reports whether the expression names a time of day. A date-only
// expression ("tomorrow") inherits the reference clock, so it follows the
// reference when that clock moves.
func (p *WhenParser) hasClock(text string, ref, at time.Time) bool {
	if !sameClock(at, ref) {
		return true
	}
	alt := ref.Add(clockProbeShift)
	if alt.Day() != ref.Day() {
		alt = ref.Add(-clockProbeShift)
	}
	res, err := p.parser.Parse(text, alt)
	if err != nil || res == nil {
		return true
	}
	return !sameClock(res.Time, alt)
}

func sameClock(a, b time.Time) bool {
	a = a.In(b.Location())
	return a.Hour() == b.Hour() && a.Minute() == b.Minute() && a.Second() == b.Second()
}

// safeParse absorbs parser errors and panics; malformed input is a data
// quality signal, not a system failure.
func safeParse(parser DateTimeParser, text string, ref time.Time) (at time.Time, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			at, ok = time.Time{}, false
		}
	}()
	parsed, found, err := parser.Parse(text, ref)
	if err != nil || !found || parsed.IsZero() {
		return time.Time{}, false
	}
	return parsed, true
}
