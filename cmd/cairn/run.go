package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	cairn "github.com/CaymanFreeman/Cairn"
	"github.com/CaymanFreeman/Cairn/backend"
	"github.com/CaymanFreeman/Cairn/backend/headless"
	"github.com/CaymanFreeman/Cairn/gpucore"
	"github.com/CaymanFreeman/Cairn/window"
)

func newRunCommand(c *cli) *cobra.Command {
	var (
		backendName  string
		scenarioPath string
		frames       uint64
		latency      int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the orchestrator against a headless window",
		Long: `Run opens a headless window, binds it to the selected backend and ticks
the orchestrator until the frame limit, a scripted close, a fatal error or
an interrupt. A scenario file scripts window events and GPU faults by tick.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name := c.cfg.Backend
			if backendName != "" {
				name = backendName
			}
			if name == "" {
				name = backend.BackendHeadless
			}
			if name == backend.BackendHeadless && latency > 0 {
				headless.Register(headless.WithLatency(latency))
				defer headless.Register()
			}
			opts := c.cfg.Options()
			if frames > 0 {
				opts = append(opts, cairn.WithMaxFrames(frames))
			}

			var win *window.Headless
			var player *window.Player
			var inst gpucore.Instance
			if scenarioPath != "" {
				s, err := window.LoadScenario(scenarioPath)
				if err != nil {
					return err
				}
				win = s.Window()
				player = window.NewPlayer(s, win, func(st window.Step) error {
					h, ok := inst.(*headless.Instance)
					if !ok {
						return fmt.Errorf("fault %s needs the %s backend", st.Fault, backend.BackendHeadless)
					}
					return h.Inject(string(st.Fault), st.Reason)
				})
			} else {
				win = window.NewHeadless(int(c.cfg.Width), int(c.cfg.Height))
			}

			factory := func() (gpucore.Instance, error) {
				i, err := backend.Open(name)
				inst = i
				return i, err
			}
			log := c.log.With("backend", name)

			var app *cairn.App
			var scriptErr error
			if player != nil {
				opts = append(opts, cairn.WithTickHook(func(tick uint64) {
					if scriptErr != nil {
						return
					}
					if err := player.Advance(tick); err != nil {
						scriptErr = err
						log.Error("scenario step failed", "tick", tick, "err", err)
						app.Shutdown()
					}
				}))
			}
			app = cairn.NewApp(win, factory, opts...)

			win.Open()
			w, h := win.Size()
			log.Info("running", "size", fmt.Sprintf("%dx%d", w, h), "scenario", scenarioPath)
			err := app.Run(cmd.Context())
			printStats(cmd.OutOrStdout(), app.Stats())
			if err != nil {
				return err
			}
			return scriptErr
		},
	}

	cmd.Flags().StringVar(&backendName, "backend", "", "backend name; overrides the config (default headless)")
	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "YAML scenario of window events and faults")
	cmd.Flags().Uint64Var(&frames, "frames", 0, "stop after this many presented frames")
	cmd.Flags().IntVar(&latency, "latency", 0, "headless backend: submissions kept in flight before the oldest completes")
	return cmd
}

func printStats(w io.Writer, s cairn.Stats) {
	fmt.Fprintf(w, "frames     %d\n", s.Frames)
	fmt.Fprintf(w, "ticks      %d (suppressed %d, skipped %d)\n", s.Ticks, s.Suppressed, s.Skipped)
	fmt.Fprintf(w, "timeouts   %d\n", s.Timeouts)
	fmt.Fprintf(w, "outdated   %d\n", s.Outdated)
	fmt.Fprintf(w, "suboptimal %d\n", s.Suboptimal)
	fmt.Fprintf(w, "lost       %d\n", s.Lost)
	fmt.Fprintf(w, "resizes    %d\n", s.Resizes)
	fmt.Fprintf(w, "resumes    %d\n", s.Resumes)
}
