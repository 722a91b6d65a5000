package main

import (
	"os"
	"path/filepath"

	"github.com/ayusman/signcam/internal/config"
	"github.com/ayusman/signcam/internal/log"
	"github.com/spf13/cobra"
)

// Version is the application version.
const Version = "0.1.0"

// options binds the persistent flags. Values start from the environment
// overlaid on the defaults; flags given on the command line win.
type options struct {
	cfg config.Config
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "signcam",
		Short:         "Real-time sign language recognition from a webcam",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecognizer(cmd, opts.cfg)
		},
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	f := root.PersistentFlags()
	f.IntVar(&opts.cfg.CameraID, "camera", opts.cfg.CameraID, "camera device index")
	f.StringVar(&opts.cfg.ModelPath, "model", opts.cfg.ModelPath, "path to the ONNX classifier")
	f.StringVar(&opts.cfg.DatasetPath, "dataset", opts.cfg.DatasetPath, "path to the .npz dataset holding the training labels")
	f.StringVar(&opts.cfg.LabelsKey, "labels-key", opts.cfg.LabelsKey, "array name of the labels inside the dataset")
	f.StringVar(&opts.cfg.DBPath, "db", opts.cfg.DBPath, "SQLite database for sessions and predictions")
	f.StringVar(&opts.cfg.PluginDir, "plugins", opts.cfg.PluginDir, "directory scanned for plugins")
	f.StringVar(&opts.cfg.ServeAddr, "serve", opts.cfg.ServeAddr, "address for the preview server, empty to disable")
	f.StringVar(&opts.cfg.WebDir, "web", findWebDir(), "static files served by the preview server")
	f.StringVar(&opts.cfg.LogLevel, "log-level", opts.cfg.LogLevel, "log level: debug, info, warn, error")
	f.Float64Var(&opts.cfg.MinDetectionConfidence, "min-confidence", opts.cfg.MinDetectionConfidence, "minimum hand detection confidence")
	f.IntVar(&opts.cfg.MaxHands, "max-hands", opts.cfg.MaxHands, "maximum number of hands per frame")
	f.BoolVar(&opts.cfg.StaticImageMode, "static-image-mode", opts.cfg.StaticImageMode, "detect hands independently in every frame")

	root.AddCommand(newLabelsCmd(opts), newHistoryCmd(opts))
	return root
}

// resolve overlays the environment onto the defaults, then reapplies every
// flag the user set explicitly.
func (o *options) resolve(cmd *cobra.Command) error {
	flags := o.cfg
	env, err := config.FromEnv(config.Default())
	if err != nil {
		return err
	}
	if env.WebDir == "" {
		env.WebDir = flags.WebDir
	}

	set := func(name string, apply func()) {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
	set("camera", func() { env.CameraID = flags.CameraID })
	set("model", func() { env.ModelPath = flags.ModelPath })
	set("dataset", func() { env.DatasetPath = flags.DatasetPath })
	set("labels-key", func() { env.LabelsKey = flags.LabelsKey })
	set("db", func() { env.DBPath = flags.DBPath })
	set("plugins", func() { env.PluginDir = flags.PluginDir })
	set("serve", func() { env.ServeAddr = flags.ServeAddr })
	set("web", func() { env.WebDir = flags.WebDir })
	set("log-level", func() { env.LogLevel = flags.LogLevel })
	set("min-confidence", func() { env.MinDetectionConfidence = flags.MinDetectionConfidence })
	set("max-hands", func() { env.MaxHands = flags.MaxHands })
	set("static-image-mode", func() { env.StaticImageMode = flags.StaticImageMode })

	o.cfg = env
	log.Init(o.cfg.LogLevel)
	return nil
}

// findWebDir searches for the web directory in common locations.
// It checks "web", "../web", "../../web" and ~/.signcam/web, returning the
// first that exists or "" if none does.
func findWebDir() string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	homeWeb := filepath.Join(home, ".signcam", "web")
	if info, err := os.Stat(homeWeb); err == nil && info.IsDir() {
		return homeWeb
	}
	return ""
}
