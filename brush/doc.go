// Package brush turns timestamped, pressure-tagged pointer samples into
// rendered stamps.
//
// An Engine owns the live stroke. It smooths raw input, spaces stamps
// along the smoothed path and modulates each stamp by pressure. Stamps are
// drawn with Render into an Overlay, a scratch coverage buffer that is kept
// apart from any layer until the caller blits it with Overlay.ApplyTo.
// Cancelling a stroke therefore only needs Overlay.Clear.
//
//	eng, _ := brush.NewEngine(brush.DefaultSettings())
//	ov, _ := brush.NewOverlay(w, h)
//	ov.Begin(eng.Settings())
//	eng.StartStroke(p0, 0.5, t0)
//	eng.AddPoint(p1, 0.7, t1)
//	eng.Render(ov)
//	eng.EndStroke()
//	eng.Render(ov)
//	ov.ApplyTo(layerSurface)
package brush
