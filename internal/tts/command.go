package tts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// CommandBackend synthesizes speech through an external bridge program. The
// batch text is written to the program's stdin and raw 16-bit little-endian
// mono PCM is read from its stdout. Occurrences of {voice} and {rate} in the
// argument list are substituted per call.
//
// This keeps network credentials and vendor SDKs out of the pipeline binary;
// any program honoring the stdin/stdout contract can serve.
type CommandBackend struct {
	Argv       []string
	SampleRate int
}

// Synthesize implements Backend.
func (b CommandBackend) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if len(b.Argv) == 0 {
		return nil, errors.New("tts: no synthesis command configured")
	}

	args := make([]string, 0, len(b.Argv)-1)
	for _, arg := range b.Argv[1:] {
		arg = strings.ReplaceAll(arg, "{voice}", voice)
		arg = strings.ReplaceAll(arg, "{rate}", strconv.Itoa(b.SampleRate))
		args = append(args, arg)
	}

	cmd := exec.CommandContext(ctx, b.Argv[0], args...)
	cmd.Stdin = strings.NewReader(text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			return nil, fmt.Errorf("tts command %s: %w", b.Argv[0], err)
		}
		if isRateLimitMessage(detail) {
			return nil, fmt.Errorf("tts command %s: %s: %w", b.Argv[0], detail, ErrRateLimited)
		}
		return nil, fmt.Errorf("tts command %s: %s: %w", b.Argv[0], detail, err)
	}
	return stdout.Bytes(), nil
}

func isRateLimitMessage(detail string) bool {
	lower := strings.ToLower(detail)
	return strings.Contains(lower, "429") || strings.Contains(lower, "rate limit") || strings.Contains(lower, "resource exhausted")
}
