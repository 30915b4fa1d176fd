// Command yolodecode replays raw Tiny YOLOv2 output tensors through the
// detection controller and prints the surviving predictions as JSON lines.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-yolo/controller"
	"github.com/nvr-ai/go-yolo/images"
	"github.com/nvr-ai/go-yolo/models"
	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/util"
)

type outputPrediction struct {
	Label      string      `json:"label"`
	ClassIndex int         `json:"class_index"`
	Score      float32     `json:"score"`
	Rect       images.Rect `json:"rect"`
}

type outputFrame struct {
	Frame       int                `json:"frame"`
	ElapsedMS   float64            `json:"elapsed_ms"`
	FPS         float64            `json:"fps"`
	Error       string             `json:"error,omitempty"`
	Predictions []outputPrediction `json:"predictions"`
}

func main() {
	var (
		configFile  = flag.String("config", "", "Path to YAML decoder configuration file")
		modelName   = flag.String("model", string(model.ModelNameTinyYOLOv2COCO), "Preset model name when -config is not given")
		tensorPath  = flag.String("tensors", "", "Path to a frame-N.bin tensor dump or a directory of them")
		maxInFlight = flag.Int64("max-in-flight", 0, "Concurrent detection cycles (0 uses the config or default)")
		interval    = flag.Duration("interval", 33*time.Millisecond, "Delay between frames; 0 processes every frame synchronously")
		metricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
		classNames  = flag.String("classes", "", "Comma-separated class names to print, e.g. person,dog (default all)")
		verbose     = flag.Bool("v", false, "Enable debug logging")
	)
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if *tensorPath == "" {
		log.Fatal("Tensor path is required (-tensors)")
	}

	fileCfg := &FileConfig{Model: model.Name(*modelName)}
	if *configFile != "" {
		var err error
		fileCfg, err = LoadConfig(*configFile)
		if err != nil {
			log.WithError(err).Fatal("Failed to load config")
		}
	}
	if *maxInFlight > 0 {
		fileCfg.MaxInFlight = *maxInFlight
	}
	if *classNames != "" {
		fileCfg.Classes = strings.Split(*classNames, ",")
	}

	decoderCfg, family, err := fileCfg.Resolve()
	if err != nil {
		log.WithError(err).Fatal("Invalid decoder configuration")
	}

	detector, err := models.NewModelWithConfig(fileCfg.Model, family, decoderCfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to create model")
	}

	frames, err := loadFrames(*tensorPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load tensors")
	}
	log.WithFields(logrus.Fields{
		"model":   fileCfg.Model,
		"labels":  family,
		"frames":  len(frames),
		"grid":    []int{decoderCfg.GridW, decoderCfg.GridH},
		"anchors": len(decoderCfg.Anchors),
		"layout":  decoderCfg.Layout,
	}).Info("Decoding tensors")

	metrics := controller.NewMetrics()
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			log.WithField("addr", *metricsAddr).Info("Serving metrics")
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.WithError(err).Error("Metrics server stopped")
			}
		}()
	}

	classes := models.DefaultClassManager()
	filter, err := resolveClassFilter(classes, family, fileCfg.Classes)
	if err != nil {
		log.WithError(err).Fatal("Invalid class filter")
	}

	out := newPrinter(os.Stdout, log, classes, family, filter)
	ctrl, err := controller.New(controller.Options{
		Detector:    detector,
		MaxInFlight: fileCfg.MaxInFlight,
		Logger:      log,
		Metrics:     metrics,
		Sink:        out.print,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create controller")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dropped := 0
	for _, f := range frames {
		if ctx.Err() != nil {
			break
		}
		frame := controller.Frame{ID: f.Frame, Tensor: f.Data, Timestamp: time.Now()}

		if *interval <= 0 {
			out.print(ctrl.Process(ctx, frame))
			continue
		}
		if !ctrl.Submit(ctx, frame) {
			dropped++
		}
		select {
		case <-ctx.Done():
		case <-time.After(*interval):
		}
	}
	ctrl.Wait()

	log.WithFields(logrus.Fields{
		"frames":  len(frames),
		"dropped": dropped,
	}).Info("Done")
}

func loadFrames(path string) ([]util.TensorFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return util.LoadDirectoryTensorFiles(path)
	}

	data, err := util.LoadTensorFile(path)
	if err != nil {
		return nil, err
	}
	return []util.TensorFile{{Path: filepath.Clean(path), Data: data}}, nil
}

// printer serializes results from concurrent cycles onto one writer.
type printer struct {
	mu      sync.Mutex
	enc     *json.Encoder
	log     *logrus.Logger
	classes *models.ClassManager
	family  model.Family
	filter  classFilter
}

func newPrinter(w io.Writer, log *logrus.Logger, classes *models.ClassManager, family model.Family, filter classFilter) *printer {
	return &printer{enc: json.NewEncoder(w), log: log, classes: classes, family: family, filter: filter}
}

func (p *printer) print(r controller.Result) {
	frame := outputFrame{
		Frame:       r.FrameID,
		ElapsedMS:   float64(r.Elapsed.Microseconds()) / 1000,
		FPS:         r.FPS,
		Predictions: make([]outputPrediction, 0, len(r.Predictions)),
	}
	if r.Err != nil {
		frame.Error = r.Err.Error()
	}
	for _, pred := range r.Predictions {
		if !p.filter.keep(pred.ClassIndex) {
			continue
		}
		frame.Predictions = append(frame.Predictions, outputPrediction{
			Label:      p.classes.Label(p.family, pred.ClassIndex),
			ClassIndex: pred.ClassIndex,
			Score:      pred.Score,
			Rect:       pred.Rect,
		})
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enc.Encode(frame); err != nil {
		p.log.WithFields(logrus.Fields{
			"frame": r.FrameID,
			"error": err,
		}).Error("Failed to write predictions")
	}
}
