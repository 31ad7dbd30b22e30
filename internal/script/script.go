// Package script parses generated dialogue scripts into ordered utterances.
package script

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Speaker identifies which voice track an utterance belongs to.
type Speaker string

const (
	Host  Speaker = "host"
	Guest Speaker = "guest"
)

// Utterance is one spoken line of the script, in conversational order.
type Utterance struct {
	Speaker Speaker
	Text    string
}

// ErrNoUtterances indicates the script contained no parseable dialogue lines.
var ErrNoUtterances = errors.New("script contains no utterances")

var (
	timestampPrefix = regexp.MustCompile(`^\s*\[\d{2}:\d{2}:\d{2}\]\s*`)
	speakerLine     = regexp.MustCompile(`^「([^」]+)」\s*:?\s*(.*)$`)
)

// Parser converts script text into utterances. Labels are matched after NFC
// normalization; lines that carry no recognized speaker tag are skipped.
type Parser struct {
	HostLabels  []string
	GuestLabels []string
}

// NewParser returns a parser accepting the default Korean speaker labels.
func NewParser() *Parser {
	return &Parser{
		HostLabels:  []string{"진행자", "선생님"},
		GuestLabels: []string{"게스트", "학생"},
	}
}

// Parse extracts the ordered utterances from text. It returns
// ErrNoUtterances when no line matches a known speaker label.
func (p *Parser) Parse(text string) ([]Utterance, error) {
	text = norm.NFC.String(text)

	var utterances []Utterance
	for _, line := range strings.Split(text, "\n") {
		line = timestampPrefix.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := speakerLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		speaker, ok := p.speakerFor(m[1])
		if !ok {
			continue
		}
		body := SanitizeTTSText(m[2])
		if body == "" {
			continue
		}
		utterances = append(utterances, Utterance{Speaker: speaker, Text: body})
	}
	if len(utterances) == 0 {
		return nil, fmt.Errorf("parse script: %w", ErrNoUtterances)
	}
	return utterances, nil
}

func (p *Parser) speakerFor(label string) (Speaker, bool) {
	label = strings.TrimSpace(label)
	for _, l := range p.HostLabels {
		if label == l {
			return Host, true
		}
	}
	for _, l := range p.GuestLabels {
		if label == l {
			return Guest, true
		}
	}
	return "", false
}

// TextsFor returns the texts of utterances spoken by speaker, in order.
func TextsFor(utterances []Utterance, speaker Speaker) []string {
	var texts []string
	for _, u := range utterances {
		if u.Speaker == speaker {
			texts = append(texts, u.Text)
		}
	}
	return texts
}
