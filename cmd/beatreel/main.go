package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/keagan/beatreel/internal/config"
	"github.com/keagan/beatreel/internal/effects"
	"github.com/keagan/beatreel/internal/imagegen"
	"github.com/keagan/beatreel/internal/logging"
	"github.com/keagan/beatreel/internal/pipeline"
	"github.com/keagan/beatreel/internal/scene"
	"github.com/keagan/beatreel/pkg/util"
)

var (
	cfgFile string
	verbose bool
	jsonLog bool

	cliLog = zerolog.Nop()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "beatreel",
	Short: "beatreel - music-driven vertical video generator",
	Long:  "Renders particle, pattern and light backgrounds that follow a track's energy, and stitches stills into slideshows.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(logging.Options{Verbose: verbose, JSON: jsonLog})
		cliLog = logging.WithComponent("cli")

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./beatreel.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json", false, "log as JSON lines")

	rootCmd.AddCommand(musicCmd)
	rootCmd.AddCommand(frameCmd)
	rootCmd.AddCommand(slideshowCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(listCmd)
}

var musicOpts struct {
	output    string
	theme     string
	duration  string
	framesDir string
	seed      uint64
	volumeDB  float64
}

var musicCmd = &cobra.Command{
	Use:   "music [audio file]",
	Short: "Render a background that follows the energy of a track",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		if cmd.Flags().Changed("seed") {
			cfg.Video.Seed = musicOpts.seed
		}

		themeName := cfg.Video.Theme
		if musicOpts.theme != "" {
			themeName = musicOpts.theme
		}
		theme, err := scene.ParseTheme(themeName)
		if err != nil {
			return err
		}

		var limit float64
		if musicOpts.duration != "" {
			d, err := util.ParseTimestamp(musicOpts.duration)
			if err != nil {
				return fmt.Errorf("invalid --duration: %w", err)
			}
			limit = d.Seconds()
		}

		output := musicOpts.output
		if output == "" {
			output = util.ReplaceExt(args[0], "-reel.mp4")
		}

		pipe, err := pipeline.New(log.Logger, cfg)
		if err != nil {
			return err
		}

		res, err := pipe.MusicVideo(cmd.Context(), args[0], pipeline.MusicOptions{
			Output:    output,
			Theme:     theme,
			Duration:  limit,
			FramesDir: musicOpts.framesDir,
			VolumeDB:  musicOpts.volumeDB,
		})
		if err != nil {
			return err
		}

		cliLog.Info().
			Str("output", res.Output).
			Int("frames", res.Frames).
			Int("sync_points", res.SyncPoints).
			Uint64("seed", res.Seed).
			Dur("elapsed", res.Elapsed).
			Msg("music video complete")
		return nil
	},
}

var frameOpts struct {
	output   string
	energy   float64
	progress float64
	seed     uint64
}

var frameCmd = &cobra.Command{
	Use:   "frame [effect]",
	Short: "Render a single preview frame of an effect as PNG",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		opts := pipeline.RendererOptions(cfg)
		if cmd.Flags().Changed("seed") {
			opts.Seed = frameOpts.seed
		}

		renderer, err := scene.NewRenderer(log.Logger, opts)
		if err != nil {
			return err
		}

		f, err := renderer.Preview(args[0], frameOpts.energy, frameOpts.progress)
		if err != nil {
			return err
		}

		output := frameOpts.output
		if output == "" {
			output = args[0] + ".png"
		}
		if err := scene.WritePNG(output, f); err != nil {
			return err
		}

		cliLog.Info().
			Str("effect", args[0]).
			Str("output", output).
			Uint64("seed", renderer.Seed()).
			Msg("preview written")
		return nil
	},
}

var slideshowOpts struct {
	output             string
	images             []string
	prompts            []string
	style              string
	audio              string
	transition         string
	still              float64
	transitionDuration float64
	volumeDB           float64
}

var slideshowCmd = &cobra.Command{
	Use:   "slideshow",
	Short: "Join images or generated scenes with transitions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		transition := cfg.Video.Transition
		if slideshowOpts.transition != "" {
			kind, err := effects.ParseTransition(slideshowOpts.transition)
			if err != nil {
				return err
			}
			transition = kind
		}

		var style imagegen.Style
		if slideshowOpts.style != "" {
			s, err := imagegen.ParseStyle(slideshowOpts.style)
			if err != nil {
				return err
			}
			style = s
		}

		pipe, err := pipeline.New(log.Logger, cfg)
		if err != nil {
			return err
		}

		res, err := pipe.Slideshow(cmd.Context(), pipeline.SlideshowOptions{
			Output:             slideshowOpts.output,
			Images:             slideshowOpts.images,
			Prompts:            slideshowOpts.prompts,
			Style:              style,
			Audio:              slideshowOpts.audio,
			StillDuration:      slideshowOpts.still,
			Transition:         transition,
			TransitionDuration: slideshowOpts.transitionDuration,
			VolumeDB:           slideshowOpts.volumeDB,
		})
		if err != nil {
			return err
		}

		cliLog.Info().
			Str("output", res.Output).
			Int("frames", res.Frames).
			Dur("elapsed", res.Elapsed).
			Msg("slideshow complete")
		return nil
	},
}

var joinOpts struct {
	output   string
	reencode bool
}

var joinCmd = &cobra.Command{
	Use:   "join [videos...]",
	Short: "Concatenate rendered reels",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pipe, err := pipeline.New(log.Logger, config.FromContext(cmd.Context()))
		if err != nil {
			return err
		}
		if err := pipe.Join(cmd.Context(), args, joinOpts.output, joinOpts.reencode); err != nil {
			return err
		}
		cliLog.Info().Int("inputs", len(args)).Str("output", joinOpts.output).Msg("join complete")
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := config.FromContext(cmd.Context()).YAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configSaveCmd = &cobra.Command{
	Use:   "save [path]",
	Short: "Write the effective configuration to a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "beatreel.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.FromContext(cmd.Context()).Save(path); err != nil {
			return err
		}
		cliLog.Info().Str("path", path).Msg("config saved")
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:       "list [themes|effects|styles|transitions]",
	Short:     "List available resources",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"themes", "effects", "styles", "transitions"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var names []string
		switch args[0] {
		case "themes":
			for _, t := range scene.Themes() {
				names = append(names, string(t))
			}
		case "effects":
			names = scene.PreviewEffects()
		case "styles":
			for _, s := range imagegen.Styles() {
				names = append(names, string(s))
			}
		case "transitions":
			names = []string{effects.TransitionFade.String(), effects.TransitionWipe.String()}
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
		return nil
	},
}

func init() {
	musicCmd.Flags().StringVarP(&musicOpts.output, "output", "o", "", "output video (default: <track>-reel.mp4)")
	musicCmd.Flags().StringVarP(&musicOpts.theme, "theme", "t", "", "visual theme (default from config)")
	musicCmd.Flags().StringVar(&musicOpts.duration, "duration", "", "render at most this long (SS, MM:SS or HH:MM:SS.mmm)")
	musicCmd.Flags().StringVar(&musicOpts.framesDir, "frames-dir", "", "also write every frame as PNG here")
	musicCmd.Flags().Uint64Var(&musicOpts.seed, "seed", 0, "random seed")
	musicCmd.Flags().Float64Var(&musicOpts.volumeDB, "volume-db", 0, "track gain in dB")

	frameCmd.Flags().StringVarP(&frameOpts.output, "output", "o", "", "output PNG (default: <effect>.png)")
	frameCmd.Flags().Float64VarP(&frameOpts.energy, "energy", "e", 0.8, "energy level")
	frameCmd.Flags().Float64Var(&frameOpts.progress, "progress", 0.5, "transition time in seconds of a 1s transition")
	frameCmd.Flags().Uint64Var(&frameOpts.seed, "seed", 0, "random seed")

	slideshowCmd.Flags().StringVarP(&slideshowOpts.output, "output", "o", "slideshow.mp4", "output video")
	slideshowCmd.Flags().StringSliceVarP(&slideshowOpts.images, "image", "i", nil, "image files, in order")
	slideshowCmd.Flags().StringArrayVarP(&slideshowOpts.prompts, "prompt", "p", nil, "scene descriptions to generate")
	slideshowCmd.Flags().StringVar(&slideshowOpts.style, "style", "", "image style for prompts (default from config)")
	slideshowCmd.Flags().StringVar(&slideshowOpts.audio, "audio", "", "audio track to lay underneath")
	slideshowCmd.Flags().StringVar(&slideshowOpts.transition, "transition", "", "fade or wipe (default from config)")
	slideshowCmd.Flags().Float64Var(&slideshowOpts.still, "still", 0, "seconds each still is held")
	slideshowCmd.Flags().Float64Var(&slideshowOpts.transitionDuration, "transition-duration", 0, "transition length in seconds")
	slideshowCmd.Flags().Float64Var(&slideshowOpts.volumeDB, "volume-db", 0, "audio gain in dB")

	joinCmd.Flags().StringVarP(&joinOpts.output, "output", "o", "joined.mp4", "output video")
	joinCmd.Flags().BoolVar(&joinOpts.reencode, "reencode", false, "re-encode instead of stream copy")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSaveCmd)
}
