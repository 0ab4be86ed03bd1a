// Package annotate draws detection bounding boxes and labels onto an image.
//
// Two color modes exist. Without a prompt color map the box color follows a
// red-to-green gradient over the batch's score range. With a color map each
// detection renders in its prompt's base color scaled by its own score, so
// full confidence is the pure base color and low confidence fades to black.
package annotate

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/menta2k/agentic-detect/pkg/imageio"
	"github.com/menta2k/agentic-detect/pkg/types"
)

// stroke is the rectangle outline width in pixels.
const stroke = 3

// Label placement relative to the box's top-left corner.
const (
	labelOffsetX = 2
	labelOffsetY = -15
)

// Annotator renders detections onto a copy of the source image.
type Annotator struct {
	quality int
}

// New creates an Annotator with the default JPEG output quality.
func New() *Annotator {
	return NewWithQuality(imageio.DefaultQuality)
}

// NewWithQuality creates an Annotator with an explicit JPEG output quality.
func NewWithQuality(quality int) *Annotator {
	if quality < 1 || quality > 100 {
		quality = imageio.DefaultQuality
	}
	return &Annotator{quality: quality}
}

// Annotate decodes src, draws the batch and re-encodes to JPEG. A nil
// colors map selects the gradient mode. An empty batch returns the decoded,
// channel-normalized image unchanged. Detections without exactly four box
// coordinates are skipped.
func (a *Annotator) Annotate(src []byte, batch types.DetectionBatch, colors types.ColorMap) ([]byte, error) {
	img, err := imageio.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode source image: %w", err)
	}

	// Clone to NRGBA so drawing has a known layout and the JPEG re-encode
	// succeeds regardless of the source color model (alpha sources included).
	canvas := imaging.Clone(img)

	sorted := append(types.DetectionBatch(nil), batch...)
	sorted.SortByScore()

	if colors == nil {
		drawGradient(canvas, sorted)
	} else {
		drawMapped(canvas, sorted, colors)
	}

	return imageio.EncodeJPEG(canvas, a.quality)
}

// drawGradient renders the batch with colors interpolated from red (lowest
// score in the batch) to green (highest). When every score is equal the
// normalized score is 1 and everything renders green.
func drawGradient(canvas *image.NRGBA, batch types.DetectionBatch) {
	if len(batch) == 0 {
		return
	}
	minScore, maxScore := batch[0].Score, batch[0].Score
	for _, det := range batch[1:] {
		if det.Score < minScore {
			minScore = det.Score
		}
		if det.Score > maxScore {
			maxScore = det.Score
		}
	}

	for _, det := range batch {
		if !det.ValidBox() {
			continue
		}
		norm := 1.0
		if maxScore > minScore {
			norm = (det.Score - minScore) / (maxScore - minScore)
		}
		c := color.NRGBA{
			R: clampChannel(255 * (1 - norm)),
			G: clampChannel(255 * norm),
			B: 0,
			A: 255,
		}
		drawDetection(canvas, det, c)
	}
}

// drawMapped renders each detection in its prompt's base color scaled
// channel-wise by the detection's own score. Scores outside [0,1] are not
// clamped; the resulting channels are.
func drawMapped(canvas *image.NRGBA, batch types.DetectionBatch, colors types.ColorMap) {
	for _, det := range batch {
		if !det.ValidBox() {
			continue
		}
		base, ok := colors[det.Label]
		if !ok {
			// label the API returned does not match a submitted prompt;
			// render on the white base so the box is still visible
			base = types.RGB{R: 255, G: 255, B: 255}
		}
		c := color.NRGBA{
			R: clampChannel(float64(base.R) * det.Score),
			G: clampChannel(float64(base.G) * det.Score),
			B: clampChannel(float64(base.B) * det.Score),
			A: 255,
		}
		drawDetection(canvas, det, c)
	}
}

func drawDetection(canvas *image.NRGBA, det types.Detection, c color.NRGBA) {
	x0 := round(det.BoundingBox[0])
	y0 := round(det.BoundingBox[1])
	x1 := round(det.BoundingBox[2])
	y1 := round(det.BoundingBox[3])

	drawRect(canvas, x0, y0, x1, y1, c)
	drawLabel(canvas, x0+labelOffsetX, y0+labelOffsetY,
		fmt.Sprintf("%s (%.2f)", det.Label, det.Score), c)
}

// drawRect draws an unfilled rectangle outline, stroke pixels wide, growing
// inward from the given edges. Out-of-bounds segments are clipped by the
// line drawers.
func drawRect(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	for s := 0; s < stroke; s++ {
		drawHLine(img, y0+s, x0, x1, c)
		drawHLine(img, y1-1-s, x0, x1, c)
		drawVLine(img, x0+s, y0, y1, c)
		drawVLine(img, x1-1-s, y0, y1, c)
	}
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}

// drawLabel draws text with its top-left corner at (x, y). The drawer clips
// against the canvas bounds on its own.
func drawLabel(img *image.NRGBA, x, y int, text string, c color.NRGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}
	d.DrawString(text)
}

func clampChannel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func round(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}
