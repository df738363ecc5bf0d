package hotreload

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DefaultDebounce collapses an editor's burst of writes into one reload.
const DefaultDebounce = time.Second

// Watcher watches a single file and delivers its content once writes have
// been quiet for the debounce window. Only the newest content is kept.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	content  chan []byte
	closeCh  chan struct{}
	done     chan struct{}
	once     sync.Once
}

// NewWatcher starts watching path. The parent directory is watched so that
// editors which save by rename are noticed too.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("hotreload: %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("hotreload: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("hotreload: watch %s: %w", path, err)
	}

	watcher := &Watcher{
		watcher:  w,
		path:     abs,
		debounce: debounce,
		content:  make(chan []byte, 1),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Path() string {
	return w.path
}

// Poll returns new content if a debounced change is ready. It never blocks.
func (w *Watcher) Poll() ([]byte, bool) {
	select {
	case b := <-w.content:
		return b, true
	default:
		return nil, false
	}
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)
		case <-timer.C:
			b, err := os.ReadFile(w.path)
			if err != nil {
				log.Warn().Err(err).Str("path", w.path).Msg("hotreload: read changed file")
				continue
			}
			w.deliver(b)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Str("path", w.path).Msg("hotreload: watcher error")
		case <-w.closeCh:
			return
		}
	}
}

// deliver replaces any content the render loop has not picked up yet.
func (w *Watcher) deliver(b []byte) {
	select {
	case <-w.content:
	default:
	}
	select {
	case w.content <- b:
	default:
	}
}
