package report

import (
	"strings"

	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/types"

	"github.com/dustin/go-humanize"
)

// EmptyLabel is shown for directories that hold no bytes.
const EmptyLabel = "Empty"

// MaxDecimalPlaces is the highest precision FormatSize renders.
const MaxDecimalPlaces = 9

var sizeUnits = []struct {
	label string
	mag   float64
}{
	{"TB", 1 << 40},
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// FormatSize renders a size for display. Zero bytes renders as EmptyLabel,
// sizes that are unknown or missing render as "" and are left to the display layer.
func FormatSize(size types.Size, decimals int) string {
	n, ok := size.Value()
	if !ok {
		return ""
	}
	if n == 0 {
		return EmptyLabel
	}

	decimals = clampDecimals(decimals)
	format := "#,###."
	if decimals > 0 {
		format += strings.Repeat("#", decimals)
	}

	for _, unit := range sizeUnits {
		if float64(n) >= unit.mag {
			return humanize.FormatFloat(format, float64(n)/unit.mag) + " " + unit.label
		}
	}
	return humanize.FormatFloat(format, float64(n)) + " B"
}

func clampDecimals(decimals int) int {
	if decimals < 0 {
		return 0
	}
	if decimals > MaxDecimalPlaces {
		return MaxDecimalPlaces
	}
	return decimals
}

// ApplyFriendlySizes fills SizeFriendly on every row from its Size.
func ApplyFriendlySizes(rows []types.Row, decimals int) []types.Row {
	for i := range rows {
		rows[i].SizeFriendly = FormatSize(rows[i].Size, decimals)
	}
	return rows
}
