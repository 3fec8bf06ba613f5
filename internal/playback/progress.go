package playback

import "github.com/samvera-app/samvera-stories/internal/domain"

// ProgressBars maps the active item's progress onto one fill percentage per
// item: items already played are full, the active one carries the live
// progress, upcoming ones are empty. Pure function, no side effects.
func ProgressBars(items []domain.StoryItem, activeIndex int, progress float64) []float64 {
	bars := make([]float64, len(items))
	for i := range items {
		switch {
		case i < activeIndex:
			bars[i] = 100
		case i == activeIndex:
			bars[i] = clampPercent(progress)
		default:
			bars[i] = 0
		}
	}
	return bars
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
