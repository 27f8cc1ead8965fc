package editor

import "github.com/matzehuels/bteditor/pkg/scene"

// Viewport returns the camera of the active tree.
func (e *Editor) Viewport() scene.Viewport { return e.scene.Viewport() }

// Zoom sets the zoom scale.
func (e *Editor) Zoom(factor float64) {
	v := e.scene.Viewport()
	v.Zoom = factor
	e.scene.SetViewport(v)
}

// Pan moves the camera by (dx, dy).
func (e *Editor) Pan(dx, dy float64) {
	v := e.scene.Viewport()
	v.X += dx
	v.Y += dy
	e.scene.SetViewport(v)
}

// SetCamera moves the camera to (x, y).
func (e *Editor) SetCamera(x, y float64) {
	v := e.scene.Viewport()
	v.X, v.Y = x, y
	e.scene.SetViewport(v)
}

// Center moves the camera to the middle of the canvas.
func (e *Editor) Center() { e.session.Center() }

// ZoomIn raises the zoom by one step, up to the configured maximum.
func (e *Editor) ZoomIn() {
	e.Zoom(clip(e.scene.Viewport().Zoom+e.opts.ZoomStep, e.opts.ZoomMin, e.opts.ZoomMax))
}

// ZoomOut lowers the zoom by one step, down to the configured minimum.
func (e *Editor) ZoomOut() {
	e.Zoom(clip(e.scene.Viewport().Zoom-e.opts.ZoomStep, e.opts.ZoomMin, e.opts.ZoomMax))
}

func clip(v, lo, hi float64) float64 { return max(lo, min(v, hi)) }
