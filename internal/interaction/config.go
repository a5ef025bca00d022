package interaction

import "github.com/weiawesome/wes-io-canvas/internal/domain"

// Config tunes gesture recognition. Distances ending in Px are screen
// pixels; sizes are board units.
type Config struct {
	DragThresholdPx    float64
	HandleRadiusPx     float64
	MinElementSize     float64
	DefaultElementSize float64
	ZoomStep           float64
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		DragThresholdPx:    4,
		HandleRadiusPx:     8,
		MinElementSize:     domain.DefaultElementSize,
		DefaultElementSize: domain.DefaultElementSize,
		ZoomStep:           1.1,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DragThresholdPx <= 0 {
		c.DragThresholdPx = d.DragThresholdPx
	}
	if c.HandleRadiusPx <= 0 {
		c.HandleRadiusPx = d.HandleRadiusPx
	}
	if c.MinElementSize <= 0 {
		c.MinElementSize = d.MinElementSize
	}
	if c.DefaultElementSize <= 0 {
		c.DefaultElementSize = d.DefaultElementSize
	}
	if c.ZoomStep <= 1 {
		c.ZoomStep = d.ZoomStep
	}
	return c
}
