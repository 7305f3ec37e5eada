package core

// RuntimeConfig contains platform settings passed to the simulation driver.
type RuntimeConfig struct {
	ScreenW  int     // Screen width in characters
	ScreenH  int     // Screen height in characters
	TickRate int     // Frames per second requested from the terminal loop
	MaxDelta float64 // Upper bound on a single frame delta, seconds
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		MaxDelta: 0.05,
	}
}
