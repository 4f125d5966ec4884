package model

import "math"

// ChopperParams holds the read filtering and trimming settings passed to chopper.
type ChopperParams struct {
	Quality   int // Minimum average Phred quality
	MaxQual   int // Maximum average Phred quality
	MinLength int
	MaxLength int
	HeadCrop  int // Bases trimmed from the read start
	TailCrop  int // Bases trimmed from the read end
	Threads   int
}

// DefaultChopperParams returns chopper's pass-through defaults.
func DefaultChopperParams() ChopperParams {
	return ChopperParams{
		Quality:   0,
		MaxQual:   1000,
		MinLength: 1,
		MaxLength: math.MaxInt32,
		HeadCrop:  0,
		TailCrop:  0,
		Threads:   4,
	}
}

// Tab is one entry of a visualization landing page.
type Tab struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}
