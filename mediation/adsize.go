package mediation

import (
	"fmt"
	"math"
)

// AdSize is a requested or rendered ad size in density-independent pixels.
type AdSize struct {
	Width  int `json:"w"`
	Height int `json:"h"`
}

// Standard banner sizes understood by mediation hosts.
var (
	Banner          = AdSize{Width: 320, Height: 50}
	LargeBanner     = AdSize{Width: 320, Height: 100}
	MediumRectangle = AdSize{Width: 300, Height: 250}
	FullBanner      = AdSize{Width: 468, Height: 60}
	Leaderboard     = AdSize{Width: 728, Height: 90}
	WideSkyscraper  = AdSize{Width: 160, Height: 600}
)

func (s AdSize) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// IsValid reports whether both dimensions are positive.
func (s AdSize) IsValid() bool {
	return s.Width > 0 && s.Height > 0
}

// WidthInPixels converts the width to physical pixels for the given rendering context.
func (s AdSize) WidthInPixels(rc RenderContext) int {
	return int(math.Round(float64(s.Width) * rc.density()))
}

// HeightInPixels converts the height to physical pixels for the given rendering context.
func (s AdSize) HeightInPixels(rc RenderContext) int {
	return int(math.Round(float64(s.Height) * rc.density()))
}

// RenderContext describes the host surface an ad will be rendered into.
type RenderContext struct {
	// Density is the ratio of physical pixels to density-independent pixels.
	Density float64 `json:"density"`
	// PackageName identifies the host application.
	PackageName string `json:"package_name"`
}

func (rc RenderContext) density() float64 {
	if rc.Density <= 0 {
		return 1
	}
	return rc.Density
}
