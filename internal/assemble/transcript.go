package assemble

import (
	"fmt"
	"os"
	"strings"

	"castline/internal/script"
)

// SpeakerLabels maps speakers to their display names in the transcript.
type SpeakerLabels map[script.Speaker]string

// DefaultSpeakerLabels returns the Korean display labels.
func DefaultSpeakerLabels() SpeakerLabels {
	return SpeakerLabels{script.Host: "진행자", script.Guest: "게스트"}
}

// WriteTranscript renders the timeline as "[HH:MM:SS] 「label」: text" lines
// at path.
func WriteTranscript(path string, entries []Entry, labels SpeakerLabels) error {
	if labels == nil {
		labels = DefaultSpeakerLabels()
	}
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		label := labels[e.Speaker]
		if label == "" {
			label = string(e.Speaker)
		}
		fmt.Fprintf(&b, "%s 「%s」: %s", formatTimestamp(e.StartTime), label, e.Text)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

func formatTimestamp(seconds float64) string {
	s := int(seconds)
	return fmt.Sprintf("[%02d:%02d:%02d]", s/3600, (s%3600)/60, s%60)
}
