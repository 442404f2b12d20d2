package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/stitch/internal/logging"
	"github.com/gogpu/stitch/layer"
)

// Sink receives finished export files. Implementations own storage paths,
// retries and authentication.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) error
}

// FileSink writes files into a directory, creating it on first use.
type FileSink struct {
	Dir string
}

// Put writes data to Dir/name. Names are reduced to their base element.
func (s FileSink) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	base := filepath.Base(name)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return fmt.Errorf("export: invalid file name %q", name)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir, base), data, 0o644); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// Job is a print-ready export running in the background.
type Job struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	res *PrintResult
	err error
}

// Start exports snap in a new goroutine and stores the raster, spec JSON
// and spec sheet in sink, which may be nil. The snapshot is immutable, so
// the caller may keep editing its document meanwhile.
func Start(ctx context.Context, snap *layer.Snapshot, preset Preset, opts PrintOptions, sink Sink) *Job {
	ctx, cancel := context.WithCancel(ctx)
	j := &Job{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(j.done)
		defer cancel()
		res, err := ExportPrintReady(ctx, snap, preset, opts)
		if err == nil && sink != nil {
			err = store(ctx, sink, res, preset)
		}
		if err != nil {
			logging.Logger().Warn("export job failed", slog.String("preset", preset.Name), slog.String("error", err.Error()))
		}
		j.mu.Lock()
		j.res, j.err = res, err
		j.mu.Unlock()
	}()
	return j
}

func store(ctx context.Context, sink Sink, res *PrintResult, preset Preset) error {
	base := fileBase(preset.Name, res.Spec.ID)
	files := map[string][]byte{
		base + res.Raster.Format.Ext(): res.Raster.Data,
		base + ".spec.json":            res.SpecJSON,
		base + ".spec.pdf":             res.SpecPDF,
	}
	g, gctx := errgroup.WithContext(ctx)
	for name, data := range files {
		g.Go(func() error {
			return sink.Put(gctx, name, data)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	res.Files = []string{base + res.Raster.Format.Ext(), base + ".spec.json", base + ".spec.pdf"}
	return nil
}

// fileBase builds a file-system friendly stem from a preset name and id.
func fileBase(name, id string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteByte('-')
		}
	}
	stem := strings.TrimSuffix(b.String(), "-")
	if stem == "" {
		stem = "export"
	}
	if len(id) > 8 {
		id = id[:8]
	}
	return stem + "-" + id
}

// Done is closed when the job finishes.
func (j *Job) Done() <-chan struct{} { return j.done }

// Cancel stops the job. It is safe to call more than once.
func (j *Job) Cancel() { j.cancel() }

// Wait blocks until the job finishes or ctx ends.
func (j *Job) Wait(ctx context.Context) (*PrintResult, error) {
	select {
	case <-j.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.res, j.err
}

// Cancelled reports whether err came from cancelling the job.
func Cancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
