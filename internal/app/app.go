// Package app wires the camera, the recognizer and the optional outputs
// into a running sign recognition session.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/signcam/internal/capture"
	"github.com/ayusman/signcam/internal/classifier"
	"github.com/ayusman/signcam/internal/config"
	"github.com/ayusman/signcam/internal/dataset"
	"github.com/ayusman/signcam/internal/detector"
	"github.com/ayusman/signcam/internal/gesture"
	"github.com/ayusman/signcam/internal/log"
	"github.com/ayusman/signcam/internal/overlay"
	"github.com/ayusman/signcam/internal/plugin"
	"github.com/ayusman/signcam/internal/recognizer"
	"github.com/ayusman/signcam/internal/server"
	"github.com/ayusman/signcam/internal/store"
)

// Options configures an App. Collaborators left nil are built from Config;
// those supplied are owned by the App from then on and released by Close.
type Options struct {
	Config config.Config

	Store      *store.Store
	Detector   detector.Detector
	Classifier classifier.Classifier
	Labels     *gesture.LabelEncoder
	Camera     capture.Camera
	// NewDisplay creates the display. It is called from Run so that the
	// window belongs to the calling goroutine.
	NewDisplay func() capture.Display
}

// App is a configured recognizer ready to run.
type App struct {
	cfg        config.Config
	store      *store.Store
	detector   detector.Detector
	classifier classifier.Classifier
	labels     *gesture.LabelEncoder
	recognizer *recognizer.Recognizer
	plugins    *plugin.Manager
	dispatcher *plugin.Dispatcher
	hub        *server.Hub
	preds      *server.PredictionsHandler
	camera     capture.Camera
	newDisplay func() capture.Display
}

// LoadLabels fits the label encoder from the dataset's label array. Integer
// arrays are ordered by value, string arrays lexically.
func LoadLabels(cfg config.Config) (*gesture.LabelEncoder, error) {
	raw, err := dataset.LoadLabels(cfg.DatasetPath, cfg.LabelsKey)
	if err != nil {
		return nil, fmt.Errorf("load dataset labels: %w", err)
	}
	fit := gesture.FitLabels
	if raw.Numeric {
		fit = gesture.FitNumericLabels
	}
	labels, err := fit(raw.Values)
	if err != nil {
		return nil, fmt.Errorf("fit labels: %w", err)
	}
	return labels, nil
}

// New loads the labels and the model and prepares every output. Any failure
// here is fatal: nothing has been started and everything opened so far is
// released.
func New(opts Options) (a *App, err error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a = &App{
		cfg:        cfg,
		store:      opts.Store,
		detector:   opts.Detector,
		classifier: opts.Classifier,
		labels:     opts.Labels,
		camera:     opts.Camera,
		newDisplay: opts.NewDisplay,
	}
	defer func() {
		if err != nil {
			a.Close()
			a = nil
		}
	}()

	if a.labels == nil {
		if a.labels, err = LoadLabels(cfg); err != nil {
			return a, err
		}
	}
	log.Info("labels loaded", "classes", a.labels.Len())

	if a.store == nil {
		if a.store, err = store.New(cfg.DBPath); err != nil {
			return a, fmt.Errorf("open store: %w", err)
		}
	}
	changed, err := a.store.Labels().Sync(a.labels.Classes())
	if err != nil {
		return a, fmt.Errorf("sync labels: %w", err)
	}
	if changed {
		log.Warn("label ordering differs from the previous run; predictions from older sessions used another mapping")
	}

	if a.classifier == nil {
		onnx, err := classifier.NewONNX(classifier.ONNXConfig{
			ModelPath:  cfg.ModelPath,
			InputSize:  gesture.FeatureLength,
			NumClasses: a.labels.Len(),
		})
		if err != nil {
			return a, fmt.Errorf("load model: %w", err)
		}
		a.classifier = onnx
	}

	if a.detector == nil {
		dcfg := detector.DefaultConfig()
		dcfg.StaticImageMode = cfg.StaticImageMode
		dcfg.MaxHands = cfg.MaxHands
		dcfg.MinConfidence = cfg.MinDetectionConfidence
		mp, err := detector.NewMediaPipeDetector(dcfg)
		if err != nil {
			return a, fmt.Errorf("hand detector: %w", err)
		}
		a.detector = mp
	}

	a.recognizer, err = recognizer.New(recognizer.Config{
		Detector:   a.detector,
		Classifier: a.classifier,
		Labels:     a.labels,
		Style:      overlay.DefaultStyle(),
		BoxOffset:  cfg.BoxOffset,
	})
	if err != nil {
		return a, err
	}

	a.plugins = plugin.NewManager(cfg.PluginDir)
	if err := a.plugins.Discover(); err != nil {
		log.Warn("plugin discovery failed", "dir", cfg.PluginDir, "err", err)
	}
	if subs := a.plugins.Subscribers(plugin.ActionRecognized); len(subs) > 0 {
		a.dispatcher = plugin.NewDispatcher(a.plugins, plugin.NewExecutor(cfg.HookTimeoutMs), plugin.DefaultQueueSize)
		log.Info("plugins enabled", "count", len(subs))
	}

	if cfg.ServeAddr != "" {
		a.hub = server.NewHub()
		a.preds = server.NewPredictionsHandler()
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(capture.DefaultOptions(cfg.CameraID))
	}
	if a.newDisplay == nil {
		name := cfg.WindowName
		a.newDisplay = func() capture.Display { return capture.NewWindow(name) }
	}

	return a, nil
}

// Run records a session and drives the capture loop until it stops. It
// blocks and must be called from the main goroutine when a HighGUI window is
// used.
func (a *App) Run(ctx context.Context) error {
	session := &store.Session{CameraID: a.cfg.CameraID, ModelPath: a.cfg.ModelPath}
	if err := a.store.Sessions().Create(session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	log.Info("session started", "session", session.ID, "camera", a.cfg.CameraID)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverDone := make(chan error, 1)
	if a.hub != nil {
		srv := server.New(server.Config{
			StaticDir:   a.cfg.WebDir,
			Store:       a.store,
			Hub:         a.hub,
			Predictions: a.preds,
		})
		go func() { serverDone <- srv.Run(ctx, a.cfg.ServeAddr) }()
	} else {
		serverDone <- nil
	}

	loop, err := NewCaptureLoop(LoopConfig{
		Camera:     a.camera,
		Display:    a.newDisplay(),
		Processor:  a.recognizer,
		Observer:   a.recorder(session.ID),
		QuitKey:    a.cfg.QuitKey,
		KeyDelayMs: a.cfg.KeyDelayMs,
	})
	if err != nil {
		return err
	}

	summary, runErr := loop.Run(ctx)

	if err := a.store.Sessions().End(session.ID, summary.Frames); err != nil {
		log.Warn("ending session failed", "session", session.ID, "err", err)
	}
	log.Info("session ended", "session", session.ID, "frames", summary.Frames, "reason", summary.Reason.String())

	cancel()
	if err := <-serverDone; err != nil {
		log.Warn("preview server stopped with error", "err", err)
	}
	return runErr
}

func (a *App) recorder(sessionID string) *Recorder {
	cfg := RecorderConfig{
		SessionID:   sessionID,
		Predictions: a.store.Predictions(),
	}
	if a.hub != nil {
		cfg.Frames = a.hub
		cfg.Broadcaster = a.preds
	}
	if a.dispatcher != nil {
		cfg.Plugins = a.dispatcher
	}
	return NewRecorder(cfg)
}

// Labels returns the fitted label encoder.
func (a *App) Labels() *gesture.LabelEncoder {
	return a.labels
}

// Store returns the application's store.
func (a *App) Store() *store.Store {
	return a.store
}

// Close releases everything New acquired.
func (a *App) Close() error {
	var errs []error

	if a.dispatcher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		a.dispatcher.Close(ctx)
		cancel()
	}
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close detector: %w", err))
		}
	}
	if a.classifier != nil {
		if err := a.classifier.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close classifier: %w", err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	return errors.Join(errs...)
}
