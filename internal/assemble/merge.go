// Package assemble cuts per-speaker voice tracks into utterance segments,
// splices them back into conversational order, and derives the per-utterance
// timeline for the final episode.
package assemble

import (
	"errors"
	"fmt"

	"castline/internal/align"
	"castline/internal/media/wav"
	"castline/internal/script"
)

// Track pairs a speaker's synthesized audio with its aligned segments.
type Track struct {
	File       *wav.File
	Segments   []align.Segment
	SourcePath string
}

// Merge extracts each utterance's segment from its speaker track and
// concatenates the audio in script order into dest. Speakers whose segment
// queue runs out are skipped; the remaining utterances still assemble. The
// output format is taken from the first track used.
func Merge(utterances []script.Utterance, tracks map[script.Speaker]*Track, dest string) error {
	if len(utterances) == 0 {
		return errors.New("merge: no utterances")
	}

	next := make(map[script.Speaker]int, len(tracks))
	var format wav.Format
	haveFormat := false
	var data []byte

	for _, u := range utterances {
		track, ok := tracks[u.Speaker]
		if !ok || track == nil {
			continue
		}
		idx := next[u.Speaker]
		if idx >= len(track.Segments) {
			continue
		}
		next[u.Speaker] = idx + 1
		seg := track.Segments[idx]

		if !haveFormat {
			format = track.File.Format
			haveFormat = true
		} else if track.File.Format != format {
			return fmt.Errorf("merge: track format mismatch: %+v != %+v", track.File.Format, format)
		}
		part := track.File.ExtractRange(seg.Start, seg.End)
		data = append(data, part.Data...)
	}
	if !haveFormat {
		return errors.New("merge: no segments extracted")
	}
	return wav.WriteFile(dest, &wav.File{Format: format, Data: data})
}
