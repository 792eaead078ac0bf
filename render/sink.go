package render

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/kovidgoyal/trivector/layout"
	"github.com/kovidgoyal/trivector/staircase"
)

// Sink presents stimuli by writing each one as a still image into Dir and,
// when Animation is set, appending it as a frame.
type Sink struct {
	Dir        string
	Format     Format
	Plates     []layout.Plate
	Shader     Shader
	Width      int
	Height     int
	Animation  *Animation
	FrameDelay time.Duration

	count int
}

const (
	DefaultSize       = 512
	DefaultFrameDelay = 750 * time.Millisecond
)

func NewSink(dir string, format Format, plates []layout.Plate, shader Shader) *Sink {
	return &Sink{Dir: dir, Format: format, Plates: plates, Shader: shader, Width: DefaultSize, Height: DefaultSize, FrameDelay: DefaultFrameDelay}
}

// Count is the number of stimuli presented so far.
func (s *Sink) Count() int { return s.count }

func (s *Sink) filename(st staircase.Stimulus) string {
	return filepath.Join(s.Dir, fmt.Sprintf("trial-%04d-axis%d-%s.%s", s.count, st.Axis, st.Direction, s.Format.Ext()))
}

func (s *Sink) Present(st staircase.Stimulus) error {
	shader := s.Shader
	if shader == nil {
		shader = Flat{}
	}
	img, err := Rasterize(s.Plates, st, shader, s.Width, s.Height)
	if err != nil {
		return err
	}
	if s.Dir != "" {
		if err = write_still(s.filename(st), img, s.Format); err != nil {
			return err
		}
	}
	if s.Animation != nil {
		s.Animation.Add(img, s.FrameDelay)
	}
	s.count++
	return nil
}

func write_still(path string, img image.Image, format Format) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Encode(f, img, format)
}
