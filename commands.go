package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/echoflaresat/orrery/chime"
	"github.com/echoflaresat/orrery/display"
	"github.com/echoflaresat/orrery/orbit"
	"github.com/echoflaresat/orrery/render"
	"github.com/echoflaresat/orrery/scene"
	"github.com/echoflaresat/orrery/texture"
)

const (
	chimeFreq     = 880.0
	chimeDuration = 120 * time.Millisecond
)

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "orrery",
		Short:         "Animated Sun, Moon, planets and lunar nodes around a fixed Earth",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Config file (yaml, toml or json)")
	pf.Int("width", 640, "Output width in pixels")
	pf.Int("height", 480, "Output height in pixels")
	pf.Int("supersample", 1, "Supersampling factor (higher is slower but smoother)")
	pf.Int("workers", 0, "Render workers (0 = one per CPU)")
	pf.String("textures", "renders", "Directory holding the body textures")
	pf.Int("stars", scene.DefaultOptions().StarCount, "Number of background stars")
	pf.Bool("labels", false, "Show body names from the start")
	pf.String("epoch", "", `Start from the sky at this RFC3339 time, or "now"`)
	pf.Bool("chime", false, "Play a tone when the Moon crosses a node")
	pf.BoolP("verbose", "v", false, "Debug logging")

	window := &cobra.Command{
		Use:   "window",
		Short: "Animate in a desktop window (space pause, L labels, arrows orbit, Esc quit)",
		Args:  cobra.NoArgs,
	}
	window.Flags().Int("scale", 1, "Window pixels per rendered pixel")
	window.Flags().Int("tps", 60, "Display refreshes per second")
	window.RunE = func(cmd *cobra.Command, _ []string) error {
		st, err := loadSettings(cmd.Flags(), configFile)
		if err != nil {
			return err
		}
		return run(cmd.Context(), st, func(s *scene.Scene, r *render.Renderer) backend {
			w := display.NewWindow(r, s)
			w.Scale = st.Scale
			return windowBackend{w: w, tps: st.TPS}
		})
	}

	frames := &cobra.Command{
		Use:   "frames",
		Short: "Write the animation as numbered PNG files",
		Args:  cobra.NoArgs,
	}
	frames.Flags().String("out", "frames", "Output directory")
	frames.Flags().Uint64("frames", 120, "Number of frames to write (0 = until interrupted)")
	frames.Flags().Float64("rate", 0, "Frames per second (0 = as fast as possible)")
	frames.RunE = func(cmd *cobra.Command, _ []string) error {
		st, err := loadSettings(cmd.Flags(), configFile)
		if err != nil {
			return err
		}
		return run(cmd.Context(), st, func(s *scene.Scene, r *render.Renderer) backend {
			return &display.Headless{Renderer: r, Scene: s, Dir: st.Out, Frames: st.Frames, Rate: st.Rate}
		})
	}

	term := &cobra.Command{
		Use:   "term",
		Short: "Animate a top-down view in the terminal (space pause, l labels, q quit)",
		Args:  cobra.NoArgs,
	}
	term.Flags().Float64("rate", 30, "Frames per second")
	term.RunE = func(cmd *cobra.Command, _ []string) error {
		st, err := loadSettings(cmd.Flags(), configFile)
		if err != nil {
			return err
		}
		return run(cmd.Context(), st, func(s *scene.Scene, _ *render.Renderer) backend {
			t := display.NewTerminal(s, orbit.DefaultConfig())
			t.Rate = st.Rate
			return t
		})
	}

	montage := &cobra.Command{
		Use:   "montage <cols>x<rows> <output> <tile>...",
		Short: "Tile rendered frames into one contact sheet",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := loadSettings(cmd.Flags(), configFile)
			if err != nil {
				return err
			}
			setupLogging(st.Verbose)

			cols, rows, err := parseLayout(args[0])
			if err != nil {
				return err
			}
			sheet, err := render.Montage(cols, rows, args[2:])
			if err != nil {
				return err
			}
			slog.Info("creating montage", "path", args[1], "cols", cols, "rows", rows)
			return render.Save(args[1], sheet)
		},
	}

	root.AddCommand(window, frames, term, montage)
	return root
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// backend presents frames and drives the loop that presents through it.
type backend interface {
	orbit.Presenter
	Run(ctx context.Context, loop *orbit.Loop) error
}

type windowBackend struct {
	w   *display.Window
	tps int
}

func (b windowBackend) Present(ctx context.Context, f orbit.Frame) error { return b.w.Present(ctx, f) }
func (b windowBackend) Run(ctx context.Context, loop *orbit.Loop) error {
	return b.w.Run(ctx, loop, b.tps)
}

// run builds the scene, renderer and loop shared by every animated mode.
func run(ctx context.Context, st settings, newBackend func(*scene.Scene, *render.Renderer) backend) error {
	setupLogging(st.Verbose)

	opts := scene.DefaultOptions()
	opts.StarCount = st.Stars
	s, err := scene.New(opts)
	if err != nil {
		return err
	}
	s.SetLabelsVisible(st.Labels)

	textures := texture.NewLibrary(st.Textures)
	defer func() {
		if err := textures.Close(); err != nil {
			slog.Warn("closing textures", "error", err)
		}
	}()

	r := &render.Renderer{
		Theme:       render.DefaultTheme(),
		Width:       st.Width,
		Height:      st.Height,
		Supersample: st.Supersample,
		Workers:     st.Workers,
		Textures:    textures,
	}

	b := newBackend(s, r)
	var presenter orbit.Presenter = b
	if st.Chime {
		sp, err := chime.NewSpeaker(chimeFreq, chimeDuration)
		if err != nil {
			// non-fatal, the animation runs without sound
			slog.Warn("audio initialization failed", "error", err)
		} else {
			defer sp.Close()
			presenter = chime.Wrap(b, sp)
		}
	}

	cfg := orbit.DefaultConfig()
	var loopOpts []orbit.Option
	epoch, ok, err := parseEpoch(st.Epoch)
	if err != nil {
		return err
	}
	if ok {
		state := cfg.StateAt(epoch)
		slog.Info("seeded from epoch", "time", epoch.Format(time.RFC3339), "state", fmt.Sprintf("%+v", state))
		loopOpts = append(loopOpts, orbit.WithState(state))
	}

	loop, err := orbit.NewLoop(cfg, s.Targets(), presenter, loopOpts...)
	if err != nil {
		return err
	}
	return b.Run(ctx, loop)
}
