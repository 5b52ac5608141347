// Package vision runs image tasks on the OpenCV stack: thumbnails for
// creator jobs and grayscale preprocessing for downstream engines.
package vision

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"

	"github.com/josephwere/NeuroEdge/internal/logger"
)

// defaultMaxEdge is the thumbnail bound used when the caller passes 0.
const defaultMaxEdge = 256

type Engine struct {
	outDir string
	log    logger.Logger
}

// NewEngine writes results into outDir, creating it when absent.
func NewEngine(outDir string, log logger.Logger) (*Engine, error) {
	if strings.TrimSpace(outDir) == "" {
		outDir = filepath.Join(os.TempDir(), "neuroedge-vision")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create output dir %q: %w", outDir, err)
	}
	return &Engine{outDir: outDir, log: log}, nil
}

// Thumbnail scales the image down so its longest edge is maxEdge,
// preserving aspect ratio, and returns the written file path. Images
// already within bounds are copied unscaled.
func (e *Engine) Thumbnail(ctx context.Context, sourcePath string, maxEdge int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if maxEdge <= 0 {
		maxEdge = defaultMaxEdge
	}

	src, err := newMatFromFile(sourcePath, gocv.IMReadColor)
	if err != nil {
		return "", err
	}
	defer src.Close()

	target := fitWithin(src.Cols(), src.Rows(), maxEdge)
	dst := newEmptyMat()
	defer dst.Close()

	gocv.Resize(*src.Raw(), dst.Raw(), image.Pt(target.X, target.Y), 0, 0, gocv.InterpolationArea)

	outPath := e.outputPath(sourcePath, "thumb")
	if ok := gocv.IMWrite(outPath, *dst.Raw()); !ok {
		return "", fmt.Errorf("could not write thumbnail %q", outPath)
	}

	e.log.Debug("VisionEngine", "thumbnail written", map[string]interface{}{
		"source": sourcePath,
		"output": outPath,
		"width":  target.X,
		"height": target.Y,
	})
	return outPath, nil
}

// Grayscale converts the image to single-channel gray and returns the
// written file path.
func (e *Engine) Grayscale(ctx context.Context, sourcePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := newMatFromFile(sourcePath, gocv.IMReadColor)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst := newEmptyMat()
	defer dst.Close()
	gocv.CvtColor(*src.Raw(), dst.Raw(), gocv.ColorBGRToGray)

	outPath := e.outputPath(sourcePath, "gray")
	if ok := gocv.IMWrite(outPath, *dst.Raw()); !ok {
		return "", fmt.Errorf("could not write grayscale image %q", outPath)
	}
	return outPath, nil
}

// MemoryStats reports native allocation pressure in a transport-friendly
// shape for the kernel's health endpoint.
func (e *Engine) MemoryStats() map[string]int64 {
	stats := CurrentMemoryStats()
	return map[string]int64{
		"allocated":    stats.Allocated,
		"released":     stats.Released,
		"active_mats":  stats.ActiveMats,
		"active_bytes": stats.ActiveBytes,
	}
}

func (e *Engine) outputPath(sourcePath, suffix string) string {
	base := filepath.Base(sourcePath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".png"
	}
	return filepath.Join(e.outDir, fmt.Sprintf("%s_%s%s", stem, suffix, ext))
}

// fitWithin computes the scaled size whose longest edge is at most
// maxEdge, never upscaling and never collapsing a dimension to zero.
func fitWithin(width, height, maxEdge int) image.Point {
	if width <= maxEdge && height <= maxEdge {
		return image.Pt(width, height)
	}
	var scale float64
	if width >= height {
		scale = float64(maxEdge) / float64(width)
	} else {
		scale = float64(maxEdge) / float64(height)
	}
	w := int(float64(width) * scale)
	h := int(float64(height) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return image.Pt(w, h)
}
