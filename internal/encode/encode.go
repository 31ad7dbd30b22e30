// Package encode shells out to ffmpeg to produce the distributable MP3.
package encode

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// MP3Bitrate is the libmp3lame target bitrate for episodes.
const MP3Bitrate = "192k"

// ToMP3 encodes the WAV at wavPath into mp3Path using ffmpeg, overwriting
// any existing file.
func ToMP3(ctx context.Context, binary, wavPath, mp3Path string) error {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if strings.TrimSpace(wavPath) == "" || strings.TrimSpace(mp3Path) == "" {
		return errors.New("mp3 encode: empty path")
	}

	cmd := exec.CommandContext(ctx, binary,
		"-v", "error",
		"-i", wavPath,
		"-c:a", "libmp3lame",
		"-b:a", MP3Bitrate,
		"-y", mp3Path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("mp3 encode: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
