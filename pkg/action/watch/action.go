package watch

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/numeron/brick/pkg/action/generate"
	"github.com/numeron/brick/pkg/options"
)

// DefaultDebounce is how long the watcher waits for more events before
// running a pass.
const DefaultDebounce = 300 * time.Millisecond

// PassFunc runs one generation pass.
type PassFunc func(ctx context.Context, log *zap.Logger, opts *options.Options) (*generate.Result, error)

// Watcher regenerates units whenever a Go source file of a watched package
// changes.
type Watcher struct {
	log      *zap.Logger
	opts     options.Options
	debounce time.Duration
	pass     PassFunc

	// Passes receives the result of every pass after the first. May be nil.
	Passes chan<- *generate.Result
}

func New(log *zap.Logger, opts *options.Options, debounce time.Duration) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{log: log, opts: *opts, debounce: debounce, pass: generate.Run}
}

// Run does a full pass, then watches the loaded package directories and
// runs an incremental pass with the changed files after each quiet period.
// It returns when ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	res, err := w.pass(ctx, w.log, &w.opts)
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create fsnotify watcher")
	}
	defer fsw.Close()

	watched := map[string]bool{}
	watch := func(dirs []string) {
		for _, d := range dirs {
			if watched[d] {
				continue
			}
			if err := fsw.Add(d); err != nil {
				w.log.Warn("cannot watch directory", zap.String("dir", d), zap.Error(err))
				continue
			}
			watched[d] = true
		}
	}
	watch(res.Dirs)
	w.log.Info("watching", zap.Int("dirs", len(watched)))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	pending := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("source changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			pending[event.Name] = true
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for f := range pending {
				changed = append(changed, f)
			}
			sort.Strings(changed)
			clear(pending)

			opts := w.opts
			opts.Incremental = true
			opts.Changes = options.ChangesExplicit
			opts.Changed = changed
			res, err := w.pass(ctx, w.log, &opts)
			if err != nil {
				w.log.Error("generation failed", zap.Error(err))
				continue
			}
			watch(res.Dirs)
			if w.Passes != nil {
				select {
				case w.Passes <- res:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

// relevant keeps writes, creations, removals and renames of hand-written
// Go files.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
		return false
	}
	return !strings.HasSuffix(name, w.opts.FileSuffix)
}
