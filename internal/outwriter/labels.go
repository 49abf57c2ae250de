package outwriter

import (
	"github.com/fatih/color"

	"nps-insights-go/internal/types"
)

const (
	ExcellentValue = "Excellent"
	GoodValue      = "Good"
	PoorValue      = "Poor"
	CriticalValue  = "Critical"
	NoDataValue    = "-"
)

var (
	excellentColor = color.New(color.FgGreen, color.Bold)
	goodColor      = color.New(color.FgCyan)
	poorColor      = color.New(color.FgYellow)
	criticalColor  = color.New(color.FgRed, color.Bold)
)

// PlainLabel buckets an NPS score for display.
func PlainLabel(r types.NpsResult) string {
	switch {
	case r.NoData:
		return NoDataValue
	case r.Score >= 50:
		return ExcellentValue
	case r.Score >= 0:
		return GoodValue
	case r.Score >= -50:
		return PoorValue
	default:
		return CriticalValue
	}
}

func ColorLabel(r types.NpsResult) string {
	text := PlainLabel(r)
	switch text {
	case ExcellentValue:
		return excellentColor.Sprint(text)
	case GoodValue:
		return goodColor.Sprint(text)
	case PoorValue:
		return poorColor.Sprint(text)
	case CriticalValue:
		return criticalColor.Sprint(text)
	default:
		return text
	}
}
