package media

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// DecodePPM reads a binary (P6) NetPBM image with a maximum value of 255.
// Comment lines in the header are returned without their leading '#'.
func DecodePPM(r io.Reader) (*Image, []string, error) {
	br := bufio.NewReader(r)

	var comments []string
	var fields []int
	magic := ""
	for len(fields) < 3 {
		tok, isComment, err := ppmToken(br)
		if err != nil {
			return nil, comments, errors.Wrap(err, "ppm header")
		}
		if isComment {
			comments = append(comments, tok)
			continue
		}
		if magic == "" {
			if tok != "P6" {
				return nil, comments, errors.Errorf("ppm: bad magic %q", tok)
			}
			magic = tok
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil || n <= 0 {
			return nil, comments, errors.Errorf("ppm: bad header field %q", tok)
		}
		fields = append(fields, n)
	}
	if fields[2] != 255 {
		return nil, comments, errors.Wrapf(errBadPixelFormat, "maxval %d", fields[2])
	}

	img := NewImage(fields[0], fields[1])
	rgb := make([]byte, img.Size())
	if _, err := io.ReadFull(br, rgb); err != nil {
		return nil, comments, errors.Wrap(err, "ppm pixels")
	}
	for i := 0; i < len(rgb); i += 3 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2] = rgb[i+2], rgb[i+1], rgb[i]
	}
	return img, comments, nil
}

// ppmToken returns the next whitespace-delimited header token, or the text of
// a comment line. Exactly one whitespace byte after the final header field is
// consumed, as the format requires.
func ppmToken(br *bufio.Reader) (tok string, isComment bool, err error) {
	var b []byte
	for {
		c, err := br.ReadByte()
		if err != nil {
			return "", false, err
		}
		switch {
		case c == '#' && len(b) == 0:
			line, err := br.ReadString('\n')
			if err != nil {
				return "", false, err
			}
			return line[:len(line)-1], true, nil
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			if len(b) > 0 {
				return string(b), false, nil
			}
		default:
			b = append(b, c)
		}
	}
}

// Replays a directory of PPM files, in name order, looping at the end.
//
// Example source spec: "ppm:/var/lib/framecast/capture_ppm"
type ppmDirSource struct {
	size

	files []string
	next  int
}

func openPPMDir(dir string) (FrameSource, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.ppm"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.Errorf("no .ppm files in %s", dir)
	}
	sort.Strings(files)
	return &ppmDirSource{files: files}, nil
}

func (src *ppmDirSource) AcquireFrame(dst *Image) error {
	if err := src.check(dst); err != nil {
		return err
	}

	name := src.files[src.next]
	src.next = (src.next + 1) % len(src.files)

	f, err := os.Open(name)
	if err != nil {
		return errors.Wrap(ErrNoFrame, err.Error())
	}
	defer f.Close()

	img, _, err := DecodePPM(f)
	if err != nil {
		return errors.Wrapf(ErrNoFrame, "%s: %v", name, err)
	}
	if img.Width != dst.Width || img.Height != dst.Height {
		return errors.Wrapf(errSizeMismatch, "%s is %dx%d", name, img.Width, img.Height)
	}
	copy(dst.Pix, img.Pix)
	return nil
}

func (src *ppmDirSource) Close() error {
	return nil
}

func init() {
	RegisterSourceType("ppm", openPPMDir)
}
