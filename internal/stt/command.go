package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// CommandBackend recognizes speech through an external bridge program. The
// chunk's raw PCM is written to the program's stdin; stdout must carry a JSON
// array of word objects with "word", "start" and "end" fields, timestamps in
// seconds relative to the chunk. {rate} and {lang} placeholders in the
// argument list are substituted per call.
type CommandBackend struct {
	Argv []string
}

// Recognize implements Backend.
func (b CommandBackend) Recognize(ctx context.Context, pcm []byte, sampleRate int, language string) ([]Word, error) {
	if len(b.Argv) == 0 {
		return nil, errors.New("stt: no recognition command configured")
	}

	args := make([]string, 0, len(b.Argv)-1)
	for _, arg := range b.Argv[1:] {
		arg = strings.ReplaceAll(arg, "{rate}", strconv.Itoa(sampleRate))
		arg = strings.ReplaceAll(arg, "{lang}", language)
		args = append(args, arg)
	}

	cmd := exec.CommandContext(ctx, b.Argv[0], args...)
	cmd.Stdin = bytes.NewReader(pcm)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			return nil, fmt.Errorf("stt command %s: %w", b.Argv[0], err)
		}
		return nil, fmt.Errorf("stt command %s: %s: %w", b.Argv[0], detail, err)
	}

	var words []Word
	if err := json.Unmarshal(stdout.Bytes(), &words); err != nil {
		return nil, fmt.Errorf("stt command %s: decode transcript: %w", b.Argv[0], err)
	}
	return words, nil
}
