package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Observation is the outcome of one successful sample cycle.
type Observation struct {
	Cycle     string
	Surface   Surface
	Payload   ImagePayload
	Luminance float64
}

// Sampler performs a single resolve, capture and estimate pass.
type Sampler struct {
	surfaces  SurfaceResolver
	source    ScreenshotSource
	estimator LuminanceEstimator
}

// NewSampler wires the three collaborators of a sample cycle.
func NewSampler(surfaces SurfaceResolver, source ScreenshotSource, estimator LuminanceEstimator) *Sampler {
	return &Sampler{
		surfaces:  surfaces,
		source:    source,
		estimator: estimator,
	}
}

// SampleOnce returns nil when nothing could be sampled. It never retries and
// never lets a collaborator panic escape.
func (s *Sampler) SampleOnce(ctx context.Context) (obs *Observation) {
	cycle := uuid.NewString()

	defer func() {
		if p := recover(); p != nil {
			log.Error().
				Str("cycle", cycle).
				Interface("panic", p).
				Msg("sample cycle panicked")
			obs = nil
		}
	}()

	surface, ok, err := s.surfaces.ActiveSurface(ctx)
	if err != nil {
		log.Warn().Err(err).Str("cycle", cycle).Msg("failed to resolve active surface")
		return nil
	}
	if !ok {
		log.Debug().Str("cycle", cycle).Msg("no active surface")
		return nil
	}

	payload, err := s.source.Capture(ctx)
	if err != nil {
		log.Warn().Err(err).Str("cycle", cycle).Str("source", surface.Identity).Msg("failed to capture screenshot")
		return nil
	}
	if err := payload.Validate(MIMETypePNG); err != nil {
		log.Warn().Err(err).Str("cycle", cycle).Str("source", surface.Identity).Msg("discarding malformed capture")
		return nil
	}

	luminance, err := s.estimator.EstimateLuminance(payload)
	if err != nil {
		log.Warn().Err(err).Str("cycle", cycle).Msg("failed to estimate luminance")
		return nil
	}

	return &Observation{
		Cycle:     cycle,
		Surface:   surface,
		Payload:   payload,
		Luminance: luminance,
	}
}
