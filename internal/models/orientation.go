package models

// Orientation is the denoised attitude in whole degrees.
type Orientation struct {
	Pitch   int `json:"pitch"`
	Roll    int `json:"roll"`
	Heading int `json:"heading"` // 0-359
}
