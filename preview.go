package contextfree

import (
	"image"
	"image/color"

	"gioui.org/app"
	"gioui.org/io/key"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
)

// PreviewWindow shows the canvas being expanded in a live Gio window,
// refreshed from a channel of snapshots produced by a PreviewBackend.
type PreviewWindow struct {
	width, height int
	title         string
	frames        <-chan image.Image
	current       image.Image
}

// NewPreviewWindow creates a preview window of the given pixel size,
// fed by frames until the channel is closed.
func NewPreviewWindow(width, height int, frames <-chan image.Image) *PreviewWindow {
	return &PreviewWindow{width: width, height: height, title: "Expanding...", frames: frames}
}

// Run opens the window and blocks until the window is closed. When the
// frame channel is closed it retitles the window and keeps showing the
// last frame. cmd/cfdg runs it on its own goroutine while app.Main()
// holds the main thread.
func (p *PreviewWindow) Run() error {
	w := new(app.Window)
	w.Option(
		app.Title(p.title),
		app.Size(unit.Dp(p.width), unit.Dp(p.height)),
	)
	w.Perform(system.ActionCenter)

	var ops op.Ops
	for {
		select {
		case img, ok := <-p.frames:
			if !ok {
				w.Option(app.Title("Done"))
				p.frames = nil
				continue
			}
			p.current = img
			w.Invalidate()
		default:
			switch e := w.Event().(type) {
			case app.FrameEvent:
				gtx := app.NewContext(&ops, e)
				for {
					event, ok := gtx.Event(key.Filter{Name: key.NameEscape})
					if !ok {
						break
					}
					if ke, ok := event.(key.Event); ok && ke.Name == key.NameEscape {
						w.Perform(system.ActionClose)
					}
				}
				p.draw(gtx)
				e.Frame(gtx.Ops)
			case app.DestroyEvent:
				return e.Err
			}
		}
	}
}

func (p *PreviewWindow) draw(gtx layout.Context) {
	paint.FillShape(gtx.Ops, color.NRGBA{A: 0xff},
		clip.Rect{Max: gtx.Constraints.Max}.Op())

	if p.current == nil {
		return
	}
	src := paint.NewImageOp(p.current)
	src.Add(gtx.Ops)
	widget.Image{Src: src, Fit: widget.Contain}.Layout(gtx)
}

// PreviewBackend wraps a Backend and publishes a copy of its pixel
// buffer on Tick so a PreviewWindow can display it while the engine is
// still expanding. Snapper must return a deep copy safe to hand to the
// GUI goroutine.
type PreviewBackend struct {
	Backend
	Frames  chan image.Image
	Snapper func() image.Image
	every   int
}

// NewPreviewBackend wraps back, sending a snapshot from snap every
// `every` generations (every<=0 means every generation).
func NewPreviewBackend(back Backend, snap func() image.Image, every int) *PreviewBackend {
	if every <= 0 {
		every = 1
	}
	return &PreviewBackend{Backend: back, Frames: make(chan image.Image, 1), Snapper: snap, every: every}
}

func (p *PreviewBackend) Tick(generation, shapeCount int) error {
	if err := p.Backend.Tick(generation, shapeCount); err != nil {
		return err
	}
	if generation%p.every != 0 {
		return nil
	}
	select {
	case p.Frames <- p.Snapper():
	default:
	}
	return nil
}

// Close signals the preview window that no further frames will arrive.
func (p *PreviewBackend) Close() { close(p.Frames) }
