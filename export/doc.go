// Package export renders document composites into print deliverables.
//
// ExportRaster resamples a composite to an exact pixel size and encodes it.
// ExportPrintReady works from a frozen layer.Snapshot and a physical
// Preset: it adds edge-extended bleed, checks blend modes and colors for
// print safety, and emits a specification document as JSON and as a PDF
// sheet next to the raster. Both outputs come from the same snapshot, so
// edits made while an export runs never leak into it.
//
// Start runs ExportPrintReady in the background and hands the files to a
// Sink. Jobs are cancelled through their context and never touch the
// document they were started from.
//
// Requests that exceed the surface pixel budget do not fail. They produce
// a visibly marked placeholder raster with Result.Placeholder set.
package export
