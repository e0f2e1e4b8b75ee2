package render

// UnknownColor fills nodes without a region.
const UnknownColor = "#D3D3D3"

// palette is indexed by a region's position in the graph legend.
var palette = []string{
	"#97C2FC", // blue
	"#FFD966", // yellow
	"#FB7E81", // red
	"#7BE141", // green
	"#AD85E4", // purple
	"#FFA807", // orange
	"#6E6EFD", // indigo
	"#EB7DF4", // pink
	"#C2FABC", // mint
	"#76D7EA", // cyan
}

// RegionColor returns the fill color for the region at legend index i.
// Negative indexes (regions missing from the legend) get [UnknownColor].
func RegionColor(i int) string {
	if i < 0 {
		return UnknownColor
	}
	return palette[i%len(palette)]
}
