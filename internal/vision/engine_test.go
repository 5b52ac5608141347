package vision

import (
	"image"
	"testing"
)

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		maxEdge       int
		want          image.Point
	}{
		{"already within bounds", 100, 80, 256, image.Pt(100, 80)},
		{"wide landscape", 1000, 500, 250, image.Pt(250, 125)},
		{"tall portrait", 500, 1000, 250, image.Pt(125, 250)},
		{"square", 512, 512, 256, image.Pt(256, 256)},
		{"extreme aspect never collapses", 10000, 2, 100, image.Pt(100, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fitWithin(tt.width, tt.height, tt.maxEdge)
			if got != tt.want {
				t.Errorf("fitWithin(%d, %d, %d) = %v, want %v",
					tt.width, tt.height, tt.maxEdge, got, tt.want)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	e := &Engine{outDir: "/out"}
	tests := []struct {
		source string
		suffix string
		want   string
	}{
		{"/data/photo.png", "thumb", "/out/photo_thumb.png"},
		{"/data/scan.jpeg", "gray", "/out/scan_gray.jpeg"},
		{"/data/noext", "thumb", "/out/noext_thumb.png"},
	}
	for _, tt := range tests {
		if got := e.outputPath(tt.source, tt.suffix); got != tt.want {
			t.Errorf("outputPath(%q, %q) = %q, want %q", tt.source, tt.suffix, got, tt.want)
		}
	}
}
