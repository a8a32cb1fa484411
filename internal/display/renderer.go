package display

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fkcurrie/ws2818-matrix/internal/types"
)

// Scene draws one frame per step
type Scene interface {
	// Step draws and commits the next frame
	Step(m types.Matrix) error
}

// Renderer handles the display rendering loop
type Renderer struct {
	interval time.Duration
	log      zerolog.Logger

	mu     sync.RWMutex
	matrix types.Matrix
	scene  Scene
	frames int
}

// NewRenderer creates a new renderer instance
func NewRenderer(interval time.Duration, log zerolog.Logger) *Renderer {
	return &Renderer{
		interval: interval,
		log:      log,
	}
}

// SetMatrix sets the matrix to render to
func (r *Renderer) SetMatrix(matrix types.Matrix) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matrix = matrix
}

// SetScene sets what to draw
func (r *Renderer) SetScene(scene Scene) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scene = scene
}

// Frames returns how many frames have been committed
func (r *Renderer) Frames() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frames
}

// Start blanks the matrix, draws the first frame and then one frame per
// interval until ctx is done. Commit is not cancellable, so a frame in
// flight always completes.
func (r *Renderer) Start(ctx context.Context) error {
	if r.interval <= 0 {
		return fmt.Errorf("invalid interval %v", r.interval)
	}
	if err := r.blank(); err != nil {
		return err
	}
	if err := r.render(); err != nil {
		r.log.Error().Err(err).Msg("failed to render")
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.render(); err != nil {
				r.log.Error().Err(err).Msg("failed to render")
			}
		}
	}
}

func (r *Renderer) blank() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.matrix == nil {
		return fmt.Errorf("no matrix")
	}
	r.matrix.Clear()
	if err := r.matrix.Commit(); err != nil {
		return fmt.Errorf("failed to blank matrix: %w", err)
	}
	return nil
}

// render draws the current scene to the matrix
func (r *Renderer) render() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.matrix == nil || r.scene == nil {
		return nil
	}
	if err := r.scene.Step(r.matrix); err != nil {
		return err
	}
	r.frames++
	r.log.Debug().Int("frame", r.frames).Msg("frame committed")
	return nil
}
