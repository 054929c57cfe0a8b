package media

import (
	"image"
	"image/color"
)

// BytesPerPixel of an Image. Pixels are stored B,G,R, the byte order cameras
// and most capture libraries hand out.
const BytesPerPixel = 3

// Image is a packed 8-bit BGR raster, row-major with no padding between rows.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*BytesPerPixel),
	}
}

// Size is the number of pixel bytes.
func (img *Image) Size() int {
	return img.Width * img.Height * BytesPerPixel
}

func (img *Image) offset(x, y int) int {
	return (y*img.Width + x) * BytesPerPixel
}

// BGR returns the colour components of pixel (x, y).
func (img *Image) BGR(x, y int) (b, g, r uint8) {
	i := img.offset(x, y)
	return img.Pix[i], img.Pix[i+1], img.Pix[i+2]
}

func (img *Image) SetBGR(x, y int, b, g, r uint8) {
	i := img.offset(x, y)
	img.Pix[i], img.Pix[i+1], img.Pix[i+2] = b, g, r
}

// RGBA converts to a standard library image, for codecs.
func (img *Image) RGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		src := img.Pix[img.offset(0, y):img.offset(0, y+1)]
		dst := out.Pix[y*out.Stride : y*out.Stride+img.Width*4]
		for i, j := 0, 0; i < len(src); i, j = i+3, j+4 {
			dst[j] = src[i+2]
			dst[j+1] = src[i+1]
			dst[j+2] = src[i]
			dst[j+3] = 0xff
		}
	}
	return out
}

// SetFrom copies any image.Image into img, which must have the same bounds
// size.
func (img *Image) SetFrom(src image.Image) error {
	b := src.Bounds()
	if b.Dx() != img.Width || b.Dy() != img.Height {
		return errSizeMismatch
	}
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			c := color.RGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			img.SetBGR(x, y, c.B, c.G, c.R)
		}
	}
	return nil
}
