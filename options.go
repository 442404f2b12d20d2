package stitch

import (
	"github.com/gogpu/stitch/brush"
	"github.com/gogpu/stitch/gesture"
)

// Option configures a Document during creation.
//
// Example:
//
//	doc, err := stitch.New(2400, 3200,
//	    stitch.WithHistoryLimit(50),
//	    stitch.WithTool(gesture.ToolHand))
type Option func(*options)

type options struct {
	brush        brush.Settings
	historyLimit int
	thumbW       int
	thumbH       int
	gesture      gesture.Config
	tool         gesture.Tool
	listener     func(Change)
}

func defaultOptions() options {
	return options{
		brush:        brush.DefaultSettings(),
		historyLimit: DefaultHistoryLimit,
		gesture:      gesture.DefaultConfig(),
		tool:         gesture.ToolBrush,
	}
}

// WithBrush sets the initial brush settings.
func WithBrush(s brush.Settings) Option {
	return func(o *options) {
		o.brush = s
	}
}

// WithHistoryLimit caps the number of undo steps. Zero or less keeps
// every step.
func WithHistoryLimit(n int) Option {
	return func(o *options) {
		o.historyLimit = n
	}
}

// WithThumbnailSize sets the bounding box of layer thumbnails.
func WithThumbnailSize(w, h int) Option {
	return func(o *options) {
		o.thumbW, o.thumbH = w, h
	}
}

// WithGestureConfig replaces the gesture thresholds.
func WithGestureConfig(c gesture.Config) Option {
	return func(o *options) {
		o.gesture = c
	}
}

// WithTool sets the initial tool.
func WithTool(t gesture.Tool) Option {
	return func(o *options) {
		o.tool = t
	}
}

// WithChangeListener registers fn to be called after every change to the
// document. fn runs synchronously on the caller's goroutine.
func WithChangeListener(fn func(Change)) Option {
	return func(o *options) {
		o.listener = fn
	}
}
