// Package stitch is the drawing and compositing core of a garment design
// studio.
//
// # Overview
//
// A Document owns everything a design session edits: an ordered stack of
// raster layers, the brush engine and its live stroke overlay, a linear
// undo history, the gesture recognizer, and the viewport that maps screen
// space onto the canvas. Finished designs are exported at print
// resolution by the export package.
//
// # Quick Start
//
//	doc, err := stitch.New(2400, 3200)
//	if err != nil {
//	    return err
//	}
//	doc.StartStroke(geom.V(100, 100), 0.8, time.Now())
//	doc.AddPoint(geom.V(180, 140), 0.9, time.Now())
//	doc.EndStroke()
//
//	preset, _ := export.LookupPreset("tee-front")
//	job := doc.Export(ctx, preset, export.PrintOptions{Bake: true}, export.FileSink{Dir: "out"})
//	res, err := job.Wait(ctx)
//
// # Input
//
// UI shells feed pointer and touch events through HandleEvent and call
// Tick on a timer so holds are recognized without new input. Drawing
// events become brush strokes, two-finger motion drives the viewport, and
// taps and holds map to undo, redo and clearing the active layer.
//
// # Pixels
//
// Layer pixels are premultiplied 8-bit RGBA. Every blend mode works on
// premultiplied values; see package blend.
//
// # History
//
// Each finished operation commits exactly one snapshot: a stroke end, a
// structural layer change or a property change. Pointer samples inside a
// stroke never reach history. Snapshots share layer pixels copy-on-write.
//
// # Concurrency
//
// A Document is not safe for concurrent use. Exports run on immutable
// snapshots and may proceed while the document keeps changing.
package stitch
