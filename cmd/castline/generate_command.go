package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"castline/internal/config"
	"castline/internal/pipeline"
	"castline/internal/runs"
	"castline/internal/script"
	"castline/internal/stt"
	"castline/internal/tts"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var sessionID string
	var skipEncode bool

	cmd := &cobra.Command{
		Use:   "generate <script-file>",
		Short: "Generate a podcast episode from a dialogue script",
		Long: `Generate synthesizes both speaker tracks from a 「label」-tagged dialogue
script, aligns utterance boundaries against the recognized transcript,
assembles the conversation in script order, and writes the MP3 and timed
transcript to the output directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if len(cfg.TTS.Command) == 0 {
				return fmt.Errorf("tts.command is not configured; run `castline config init` and point it at a synthesis bridge")
			}
			if len(cfg.STT.Command) == 0 {
				return fmt.Errorf("stt.command is not configured; run `castline config init` and point it at a recognition bridge")
			}

			scriptPath, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(scriptPath)
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}
			utterances, err := script.NewParser().Parse(string(raw))
			if err != nil {
				return err
			}

			lock, err := runs.AcquireLock(cfg.Paths.DataDir)
			if err != nil {
				return err
			}
			defer lock.Release()

			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return ctx.withStore(func(store *runs.Store) error {
				opts := []pipeline.Option{
					pipeline.WithStore(store),
					pipeline.WithScriptPath(scriptPath),
				}
				if sessionID != "" {
					opts = append(opts, pipeline.WithSessionID(sessionID))
				}
				if skipEncode {
					opts = append(opts, pipeline.WithoutEncoding())
				}

				g := pipeline.New(cfg,
					tts.CommandBackend{Argv: cfg.TTS.Command, SampleRate: cfg.TTS.SampleRate},
					stt.CommandBackend{Argv: cfg.STT.Command},
					logger, opts...)

				result, err := g.Generate(runCtx, utterances)
				if err != nil {
					return fmt.Errorf("run %s: %w", g.SessionID(), err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Session %s complete\n", result.SessionID)
				if result.MP3Path != "" {
					fmt.Fprintf(out, "  audio:      %s\n", result.MP3Path)
				} else {
					fmt.Fprintf(out, "  audio:      %s\n", result.MergedWAVPath)
				}
				fmt.Fprintf(out, "  transcript: %s\n", result.TranscriptPath)
				fmt.Fprintf(out, "  utterances: %d (%d host, %d guest)\n",
					len(result.Timeline), len(result.HostSegments), len(result.GuestSegments))
				fmt.Fprintf(out, "  backend:    %d calls, %d rate limited, %d retries\n",
					result.Stats.APICalls, result.Stats.RateLimitHits, result.Stats.Retries)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session id to use instead of a generated one")
	cmd.Flags().BoolVar(&skipEncode, "skip-encode", false, "Skip MP3 encoding and keep the merged WAV as the final artifact")
	return cmd
}
