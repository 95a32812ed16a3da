package models

import "time"

// MaxFPS is the upper bound of the frame-rate estimate.
const MaxFPS = 60.0

// Sample is one timestamped frame-rate / memory estimate.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	FPS       float64   `json:"fps"`
	MemoryMB  float64   `json:"memory_mb"`
}

// Metrics summarises a sample window.
type Metrics struct {
	AvgMemory     float64 `json:"avg_memory"`
	AvgFPS        float64 `json:"avg_fps"`
	CurrentMemory float64 `json:"current_memory"`
	CurrentFPS    float64 `json:"current_fps"`
}
