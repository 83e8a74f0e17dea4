package chart

// Palette is the fixed series palette. Chart series and cluster cards both
// pick their colour with ColorFor so a cluster looks the same everywhere.
var Palette = [10]string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEEAD",
	"#D4A5A5", "#9B59B6", "#3498DB", "#E67E22", "#2ECC71",
}

// ColorFor returns the palette colour of a cluster index.
func ColorFor(cluster int) string {
	i := cluster % len(Palette)
	if i < 0 {
		i += len(Palette)
	}
	return Palette[i]
}
