package pipeline

import (
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ironsheep/hydrangea-counter/internal/config"
	"github.com/ironsheep/hydrangea-counter/internal/detection"
	"github.com/ironsheep/hydrangea-counter/internal/imaging"
)

// Artifact names, in the order they are written.
const (
	ArtifactOriginal     = "1_original.png"
	ArtifactFiltered     = "2_filtered.png"
	ArtifactSegmentation = "3_segmentation.png"
	ArtifactBinary       = "4_binary.png"
	ArtifactCount        = "5_count.png"
)

// Result summarizes one run.
type Result struct {
	RunID     uuid.UUID          `json:"run_id"`
	Width     int                `json:"width"`
	Height    int                `json:"height"`
	Count     int                `json:"count"`
	Detected  int                `json:"detected"`
	Circles   []detection.Circle `json:"circles"`
	Band      Band               `json:"band"`
	Artifacts []string           `json:"artifacts"`
}

// Pipeline runs the four counting stages with a fixed configuration.
// It holds no per-run state, so one Pipeline may serve many runs.
type Pipeline struct {
	cfg config.Config
	log zerolog.Logger
}

// New validates cfg and returns a Pipeline.
func New(cfg config.Config, log zerolog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &Pipeline{cfg: cfg, log: log}, nil
}

// Config returns the configuration the pipeline runs with.
func (p *Pipeline) Config() config.Config {
	return p.cfg
}

// Run loads the image at path and processes it. Input errors are reported
// before anything is written to sink.
func (p *Pipeline) Run(path string, sink ArtifactSink) (*Result, error) {
	if path == "" {
		return nil, ErrNoInput
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}
	return p.Process(img, sink)
}

// Process runs suppression, segmentation, refinement and counting on img and
// then writes the five artifacts to sink in order. If a write fails, the
// artifacts already written are kept and the error is returned.
func (p *Pipeline) Process(img image.Image, sink ArtifactSink) (*Result, error) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, ErrEmptyImage
	}

	runID := uuid.New()
	log := p.log.With().Str("run_id", runID.String()).Logger()
	log.Info().Int("width", b.Dx()).Int("height", b.Dy()).Msg("run started")

	original := imaging.Normalize(img)

	start := time.Now()
	filtered := Suppress(original, p.cfg)
	log.Debug().Str("stage", "suppress").Dur("elapsed", time.Since(start)).
		Int("pixels", b.Dx()*b.Dy()).Msg("stage complete")

	start = time.Now()
	seg, err := Segment(filtered, p.cfg)
	if err != nil {
		return nil, errors.Wrap(err, "segmentation failed")
	}
	log.Debug().Str("stage", "segment").Dur("elapsed", time.Since(start)).
		Int("colors", seg.Colors).Int("iterations", seg.Iterations).
		Floats64("means", seg.Means[:]).Int("floral", seg.Floral).Msg("stage complete")

	start = time.Now()
	binary := Refine(seg.Mask, p.cfg)
	log.Debug().Str("stage", "refine").Dur("elapsed", time.Since(start)).
		Int("on", imaging.CountOn(binary)).Msg("stage complete")

	start = time.Now()
	counted, err := Count(binary, original, p.cfg)
	if err != nil {
		return nil, errors.Wrap(err, "counting failed")
	}
	log.Debug().Str("stage", "count").Dur("elapsed", time.Since(start)).
		Int("detected", counted.Detected).Int("accepted", counted.Count).
		Int("min_radius", counted.Band.MinRadius).Int("max_radius", counted.Band.MaxRadius).
		Msg("stage complete")

	res := &Result{
		RunID:     runID,
		Width:     b.Dx(),
		Height:    b.Dy(),
		Count:     counted.Count,
		Detected:  counted.Detected,
		Circles:   counted.Circles,
		Band:      counted.Band,
		Artifacts: make([]string, 0, 5),
	}

	artifacts := []struct {
		name string
		img  image.Image
	}{
		{ArtifactOriginal, original},
		{ArtifactFiltered, filtered},
		{ArtifactSegmentation, seg.Mask},
		{ArtifactBinary, binary},
		{ArtifactCount, counted.Annotated},
	}
	for _, a := range artifacts {
		loc, err := sink.Save(a.name, a.img)
		if err != nil {
			return res, errors.Wrapf(err, "failed to write artifact %s", a.name)
		}
		res.Artifacts = append(res.Artifacts, loc)
	}

	log.Info().Int("count", res.Count).Msg("run complete")
	return res, nil
}
