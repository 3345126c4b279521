package line

import "github.com/prebid/prebid-mediation/mediation"

// isSizeMatch reports whether a loaded view has exactly the requested logical size.
// FiveAd scales creatives to the requested width, so a differing height means the
// network served a creative with another aspect ratio.
func isSizeMatch(view mediation.View, requested mediation.AdSize) bool {
	return view.LogicalWidth() == requested.Width && view.LogicalHeight() == requested.Height
}
