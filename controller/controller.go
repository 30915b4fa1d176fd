// Package controller - This file contains the controller for routing output tensors through a detector.
package controller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/nvr-ai/go-yolo/models/postprocess"
)

// DefaultMaxInFlight is the number of detection cycles allowed to run at once
// when Options.MaxInFlight is not set.
const DefaultMaxInFlight = 2

// ErrNoDetector is returned by New when Options.Detector is nil.
var ErrNoDetector = errors.New("controller requires a detector")

// Frame is one raw model output tensor waiting to be decoded.
type Frame struct {
	ID        int
	Tensor    []float32
	Timestamp time.Time
}

// Result is the outcome of one detection cycle.
//
// When Err is set Predictions is empty: the frame shows nothing and the
// controller carries on with the next frame.
type Result struct {
	FrameID     int
	Predictions []postprocess.Prediction
	Elapsed     time.Duration
	FPS         float64
	Err         error
}

// Detector is an interface for a detector.
type Detector interface {
	PostProcess(output []float32) ([]postprocess.Prediction, error)
}

// Options configures a Controller.
type Options struct {
	// Detector turns a tensor into predictions. Required.
	Detector Detector
	// MaxInFlight bounds concurrent cycles started by Submit.
	MaxInFlight int64
	// Logger defaults to logrus.StandardLogger().
	Logger *logrus.Logger
	// Metrics defaults to a fresh NewMetrics().
	Metrics *Metrics
	// Sink receives the result of every cycle started by Submit. It may be
	// called from several goroutines at once.
	Sink func(Result)
}

// Controller drives detection cycles with a counting admission gate: at most
// MaxInFlight cycles run at once and frames arriving while every slot is busy
// are dropped instead of queued.
type Controller struct {
	detector    Detector
	gate        *semaphore.Weighted
	maxInFlight int64
	inFlight    atomic.Int64
	wg          sync.WaitGroup
	log         *logrus.Logger
	metrics     *Metrics
	sink        func(Result)
	fps         *fpsCounter
}

// New creates a controller.
//
// Arguments:
//   - opts: The controller options.
//
// Returns:
//   - *Controller: The controller.
//   - error: ErrNoDetector if opts.Detector is nil.
func New(opts Options) (*Controller, error) {
	if opts.Detector == nil {
		return nil, ErrNoDetector
	}
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = DefaultMaxInFlight
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}

	return &Controller{
		detector:    opts.Detector,
		gate:        semaphore.NewWeighted(opts.MaxInFlight),
		maxInFlight: opts.MaxInFlight,
		log:         opts.Logger,
		metrics:     opts.Metrics,
		sink:        opts.Sink,
		fps:         newFPSCounter(time.Now()),
	}, nil
}

// Submit starts a detection cycle for frame in the background if a slot is
// free. It never blocks.
//
// Returns:
//   - true if the frame was admitted, false if it was dropped.
func (c *Controller) Submit(ctx context.Context, frame Frame) bool {
	c.metrics.FramesSubmitted.Inc()

	if !c.gate.TryAcquire(1) {
		c.metrics.FramesDropped.Inc()
		c.log.WithFields(logrus.Fields{
			"frame":     frame.ID,
			"in_flight": c.inFlight.Load(),
		}).Debug("dropping frame, all detection slots busy")
		return false
	}

	c.inFlight.Add(1)
	c.metrics.InFlight.Inc()
	c.wg.Add(1)

	go func() {
		defer func() {
			c.inFlight.Add(-1)
			c.metrics.InFlight.Dec()
			c.gate.Release(1)
			c.wg.Done()
		}()

		result := c.Process(ctx, frame)
		if c.sink != nil {
			c.sink(result)
		}
	}()

	return true
}

// Process runs one detection cycle synchronously, bypassing the gate.
//
// Errors from the detector and a done ctx are logged, counted as failed and
// returned in Result.Err; they never leave the controller in a stuck state.
func (c *Controller) Process(ctx context.Context, frame Frame) Result {
	if err := ctx.Err(); err != nil {
		c.metrics.FramesFailed.Inc()
		c.log.WithFields(logrus.Fields{
			"frame": frame.ID,
			"error": err,
		}).Debug("skipping frame, context done")
		return Result{FrameID: frame.ID, Err: err}
	}

	start := time.Now()
	predictions, err := c.detector.PostProcess(frame.Tensor)
	elapsed := time.Since(start)
	c.metrics.CycleSeconds.Observe(elapsed.Seconds())

	if err != nil {
		c.metrics.FramesFailed.Inc()
		c.log.WithFields(logrus.Fields{
			"frame": frame.ID,
			"error": err,
		}).Warn("detection cycle failed, showing nothing for frame")
		return Result{FrameID: frame.ID, Elapsed: elapsed, Err: err}
	}

	fps := c.fps.tick(time.Now())
	c.metrics.FramesProcessed.Inc()
	c.metrics.FPS.Set(fps)

	c.log.WithFields(logrus.Fields{
		"frame":       frame.ID,
		"predictions": len(predictions),
		"elapsed":     elapsed,
	}).Debug("detection cycle complete")

	return Result{
		FrameID:     frame.ID,
		Predictions: predictions,
		Elapsed:     elapsed,
		FPS:         fps,
	}
}

// Wait blocks until every cycle started by Submit has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// InFlight returns the number of cycles started by Submit that are running.
func (c *Controller) InFlight() int64 {
	return c.inFlight.Load()
}

// MaxInFlight returns the size of the admission gate.
func (c *Controller) MaxInFlight() int64 {
	return c.maxInFlight
}

// Metrics returns the controller's metrics.
func (c *Controller) Metrics() *Metrics {
	return c.metrics
}
