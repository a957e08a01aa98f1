package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andresmejia3/labelfix/internal/config"
	"github.com/andresmejia3/labelfix/internal/display"
	"github.com/andresmejia3/labelfix/internal/hdf"
	"github.com/andresmejia3/labelfix/internal/labels"
	"github.com/andresmejia3/labelfix/internal/session"
	"github.com/andresmejia3/labelfix/internal/utils"
	"github.com/andresmejia3/labelfix/internal/video"
)

// Version is the application version.
const Version = "0.1.0"

// cfgPath is the optional YAML config with marker defaults.
var cfgPath string

var rootCmd = &cobra.Command{
	Use:     "labelfix <labelfile> <videofile> [color] [size] [thickness]",
	Short:   "Interactive keypoint label correction for pose-estimation output",
	Version: Version, // This enables the --version flag
	Long: `labelfix overlays predicted keypoint markers on video frames and lets you
click to correct mislabeled points.

Corrections are written back to <labelfile base>_Fixed.h5 after every edit;
on exit (ESC) a MATLAB-structure file <labelfile base>.mat is written too.

Controls:
  left click   set the active keypoint on the current frame (hold the button
               to paint while stepping frames)
  , / .        previous / next frame
  [ / ]        previous / next keypoint (wraps around)
  sliders      jump to a frame or keypoint directly
  ESC          save, export and exit`,
	Args: cobra.RangeArgs(2, 5),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runEdit(cmd.Context(), args)
	},
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// This tells Cobra not to print the version in the help text, which is cleaner.
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "YAML file with marker defaults (also read from $LABELFIX_CONFIG)")
}

// runEdit validates all inputs, then builds and runs the edit session.
// Nothing heavy (video handle, window) is opened until validation passed, so
// a bad argument exits before any window appears and before any file is
// written.
func runEdit(ctx context.Context, args []string) error {
	labelPath, videoPath := args[0], args[1]

	// 1. Resolve the marker style: config-file defaults, positional overrides
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	style, err := resolveStyle(cfg.Marker, args[2:])
	if err != nil {
		return err
	}

	// 2. Check both input files up front
	if err := checkInputFiles(labelPath, videoPath); err != nil {
		return err
	}

	// 3. Load the label table into memory
	store := hdf.NewFileStore()
	table, err := store.Load(labelPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "🏷️  Loaded %d keypoints over %d frames from %s\n",
		len(table.Keypoints()), table.Frames(), labelPath)

	// 4. Open the video
	source, err := video.Open(videoPath)
	if err != nil {
		return err
	}

	// 5. Window slider ranges follow the clamped navigable frame count
	frames := table.Frames()
	if source.FrameCount() < frames {
		frames = source.FrameCount()
	}
	canvas, err := display.NewWindow(labelPath, frames, len(table.Keypoints()))
	if err != nil {
		source.Close()
		return err
	}

	sess, err := session.New(session.Params{
		Table:     table,
		Source:    source,
		Canvas:    canvas,
		Store:     store,
		Exporter:  store,
		Style:     style,
		FixedPath: utils.FixedLabelPath(labelPath),
		MATPath:   utils.MATPath(labelPath),
	})
	if err != nil {
		canvas.Close()
		source.Close()
		return err
	}

	// Ctrl+C drains through the same path as ESC: flush, export, release.
	go func() {
		<-ctx.Done()
		sess.RequestStop()
	}()

	fmt.Fprintf(os.Stderr, "🎬 Editing %s (ESC saves and exits)\n", videoPath)

	// Run releases the window and the decoder on every exit path.
	return sess.Run()
}

// resolveStyle applies the optional positional overrides [color] [size]
// [thickness] on top of the configured defaults and validates the result.
func resolveStyle(style config.MarkerStyle, overrides []string) (config.MarkerStyle, error) {
	if len(overrides) > 0 {
		style.Color = overrides[0]
	}
	if len(overrides) > 1 {
		size, err := strconv.Atoi(overrides[1])
		if err != nil {
			return style, fmt.Errorf("%w: marker size %q is not an integer", labels.ErrInvalidConfig, overrides[1])
		}
		style.Size = size
	}
	if len(overrides) > 2 {
		thickness, err := strconv.Atoi(overrides[2])
		if err != nil {
			return style, fmt.Errorf("%w: marker thickness %q is not an integer", labels.ErrInvalidConfig, overrides[2])
		}
		style.Thickness = thickness
	}
	return style, style.Validate()
}

// checkInputFiles verifies existence and the expected file formats before
// anything is opened.
func checkInputFiles(labelPath, videoPath string) error {
	for _, p := range []string{labelPath, videoPath} {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s", labels.ErrMissingFile, p)
			}
			return fmt.Errorf("%w: %s: %v", labels.ErrInvalidInput, p, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%w: %s is a directory", labels.ErrInvalidInput, p)
		}
	}

	if ext := strings.ToLower(filepath.Ext(labelPath)); ext != ".h5" {
		return fmt.Errorf("%w: label file must be *.h5, got %s", labels.ErrInvalidInput, labelPath)
	}
	if ext := strings.ToLower(filepath.Ext(videoPath)); ext != ".avi" && ext != ".mp4" {
		return fmt.Errorf("%w: video file must be *.avi or *.mp4, got %s", labels.ErrInvalidInput, videoPath)
	}
	return nil
}
