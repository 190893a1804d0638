// Package watcher reports data files that land in a directory.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Op is the kind of change reported for a file.
type Op int

const (
	// Ready means the file was created or written and has been quiet for the settle period.
	Ready Op = iota
	Removed
)

func (o Op) String() string {
	if o == Removed {
		return "removed"
	}
	return "ready"
}

// Event is a settled change to a watched file.
type Event struct {
	Path string
	Op   Op
}

// Watcher wraps fsnotify with an extension filter and write settling.
type Watcher struct {
	watcher    *fsnotify.Watcher
	extensions []string
	settle     time.Duration
	log        zerolog.Logger
}

// New creates a watcher for files with the given extensions (e.g. ".csv").
// A file is reported once no create or write event has touched it for settle.
func New(extensions []string, settle time.Duration, logger *zerolog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if len(extensions) == 0 {
		extensions = []string{".csv", ".tsv", ".txt", ".json", ".xlsx", ".parquet"}
	}
	if settle <= 0 {
		settle = 500 * time.Millisecond
	}
	out := &Watcher{watcher: w, extensions: extensions, settle: settle, log: zerolog.Nop()}
	if logger != nil {
		out.log = *logger
	}
	return out, nil
}

// Watch starts monitoring dir. The channel closes when ctx is done or the
// watcher is closed.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan Event, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}
	events := make(chan Event, 100)

	go func() {
		defer close(events)
		tick := time.NewTicker(w.settle / 2)
		defer tick.Stop()
		pending := map[string]time.Time{}

		emit := func(ev Event) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !w.isWatchedExtension(event.Name) {
					continue
				}
				switch {
				case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
					pending[event.Name] = time.Now()
				case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
					delete(pending, event.Name)
					if !emit(Event{Path: event.Name, Op: Removed}) {
						return
					}
				}
			case now := <-tick.C:
				for path, last := range pending {
					if now.Sub(last) < w.settle {
						continue
					}
					delete(pending, path)
					if !emit(Event{Path: path, Op: Ready}) {
						return
					}
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.log.Warn().Err(err).Msg("watch error")
			}
		}
	}()

	return events, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) isWatchedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
