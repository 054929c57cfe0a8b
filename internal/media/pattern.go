package media

// Synthetic source producing SMPTE-style colour bars with a white marker
// column that advances one pixel per frame. Used for demos and tests, where
// the content of frame n must be predictable.
//
// Example source spec: "pattern:"

// Bar colours, B,G,R.
var barColors = [8][3]uint8{
	{0xff, 0xff, 0xff}, // white
	{0x00, 0xff, 0xff}, // yellow
	{0xff, 0xff, 0x00}, // cyan
	{0x00, 0xff, 0x00}, // green
	{0xff, 0x00, 0xff}, // magenta
	{0x00, 0x00, 0xff}, // red
	{0xff, 0x00, 0x00}, // blue
	{0x00, 0x00, 0x00}, // black
}

type PatternSource struct {
	size

	// Number of frames delivered so far.
	count int

	// If non-nil, AcquireFrame fails with this error once count reaches
	// FailAfter. Lets tests simulate a camera dropping out.
	FailAfter *int
}

func NewPatternSource() *PatternSource {
	return &PatternSource{}
}

func (src *PatternSource) AcquireFrame(dst *Image) error {
	if err := src.check(dst); err != nil {
		return err
	}
	if src.FailAfter != nil && src.count >= *src.FailAfter {
		return ErrNoFrame
	}
	FillPattern(dst, src.count)
	src.count++
	return nil
}

// Count returns the number of frames delivered.
func (src *PatternSource) Count() int {
	return src.count
}

func (src *PatternSource) Close() error {
	return nil
}

// FillPattern draws frame n of the test pattern into img.
func FillPattern(img *Image, n int) {
	barWidth := (img.Width + len(barColors) - 1) / len(barColors)
	marker := n % img.Width
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			c := barColors[x/barWidth]
			if x == marker {
				c = [3]uint8{0xff, 0xff, 0xff}
			}
			img.SetBGR(x, y, c[0], c[1], c[2])
		}
	}
}

func init() {
	RegisterSourceType("pattern", func(string) (FrameSource, error) {
		return NewPatternSource(), nil
	})
}
