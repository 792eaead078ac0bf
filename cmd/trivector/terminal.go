package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/kovidgoyal/trivector/layout"
	"github.com/kovidgoyal/trivector/render"
	"github.com/kovidgoyal/trivector/staircase"
)

var ErrAborted = errors.New("test aborted by the subject")

// half is drawn in every cell, the foreground colouring the top pixel and
// the background the bottom one.
const half = '▀'

// Terminal shows stimuli in a terminal, two pixels per character cell, and
// reads answers from the arrow keys. It is both the StimulusSink and the
// ResponseSource of an interactive session.
type Terminal struct {
	screen  tcell.Screen
	plates  []layout.Plate
	shader  render.Shader
	events  chan tcell.Event
	done    chan struct{}
	closing sync.Once
	current staircase.Stimulus
	shown   bool
	trials  int
}

func NewTerminal(plates []layout.Plate, shader render.Shader) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err = screen.Init(); err != nil {
		return nil, err
	}
	return new_terminal(screen, plates, shader), nil
}

// new_terminal takes over an initialised screen.
func new_terminal(screen tcell.Screen, plates []layout.Plate, shader render.Shader) *Terminal {
	t := &Terminal{screen: screen, plates: plates, shader: shader, events: make(chan tcell.Event, 16), done: make(chan struct{})}
	go t.poll()
	return t
}

// poll forwards screen events until the screen is finalised or the terminal
// closed, whichever comes first.
func (t *Terminal) poll() {
	defer close(t.events)
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case t.events <- ev:
		case <-t.done:
			return
		}
	}
}

// Close restores the terminal. It may be called more than once.
func (t *Terminal) Close() {
	t.closing.Do(func() {
		close(t.done)
		t.screen.Fini()
	})
}

func (t *Terminal) Present(st staircase.Stimulus) error {
	t.current, t.shown = st, true
	t.trials++
	return t.draw()
}

func (t *Terminal) draw() error {
	t.screen.Clear()
	w, h := t.screen.Size()
	rows := h - 1
	if w > 0 && rows > 0 && t.shown {
		img, err := render.Rasterize(t.plates, t.current, t.shader, w, rows*2)
		if err != nil {
			return err
		}
		for y := range rows {
			for x := range w {
				top, bottom := img.PixelAt(x, 2*y), img.PixelAt(x, 2*y+1)
				style := tcell.StyleDefault.Foreground(cell_color(top)).Background(cell_color(bottom))
				t.screen.SetContent(x, y, half, nil, style)
			}
		}
	}
	if h > 0 {
		status := fmt.Sprintf(" trial %d  arrows: answer  esc: quit", t.trials)
		style := tcell.StyleDefault.Foreground(tcell.ColorGray)
		for x, r := range []rune(status) {
			if x >= w {
				break
			}
			t.screen.SetContent(x, h-1, r, nil, style)
		}
	}
	t.screen.Show()
	return nil
}

func cell_color(p render.Pixel) tcell.Color {
	return tcell.NewRGBColor(int32(p.R), int32(p.G), int32(p.B))
}

// direction_for_key maps arrow keys and the vi movement keys to directions.
func direction_for_key(ev *tcell.EventKey) (layout.Direction, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return layout.Up, true
	case tcell.KeyLeft:
		return layout.Left, true
	case tcell.KeyDown:
		return layout.Down, true
	case tcell.KeyRight:
		return layout.Right, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'k':
			return layout.Up, true
		case 'h':
			return layout.Left, true
		case 'j':
			return layout.Down, true
		case 'l':
			return layout.Right, true
		}
	}
	return 0, false
}

// Await blocks until a direction key is pressed. Escape and Ctrl-C abort
// with ErrAborted, resizes redraw the current stimulus.
func (t *Terminal) Await(ctx context.Context, st staircase.Stimulus) (staircase.Direction, error) {
	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case ev, ok := <-t.events:
			if !ok {
				return 0, ErrAborted
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
					return 0, ErrAborted
				}
				if d, ok := direction_for_key(ev); ok {
					return d, nil
				}
			case *tcell.EventResize:
				t.screen.Sync()
				if err := t.draw(); err != nil {
					return 0, err
				}
			}
		}
	}
}
