// Package watch re-runs generation when model files under the source roots
// change.
package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/conduit-lang/xgen/internal/sources"
)

// DefaultDebounce is the quiet period before accumulated changes are
// delivered
const DefaultDebounce = 100 * time.Millisecond

// Options configure a FileWatcher
type Options struct {
	Roots    []string
	Matcher  *sources.Matcher
	Debounce time.Duration
	Logger   *zap.Logger
}

// FileWatcher monitors the source roots and triggers a callback with the
// changed files
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	roots     []string
	matcher   *sources.Matcher
	logger    *zap.Logger
	onChange  func([]string) error
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewFileWatcher creates a watcher calling onChange for every debounced
// batch of changes
func NewFileWatcher(opts Options, onChange func([]string) error) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	matcher := opts.Matcher
	if matcher == nil {
		if matcher, err = sources.NewMatcher(nil, nil); err != nil {
			watcher.Close()
			return nil, err
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw := &FileWatcher{
		watcher:   watcher,
		debouncer: NewDebouncer(debounce),
		roots:     opts.Roots,
		matcher:   matcher,
		logger:    logger,
		onChange:  onChange,
		stopChan:  make(chan struct{}),
	}

	fw.debouncer.SetCallback(func(files []string) {
		if err := fw.onChange(files); err != nil {
			fw.logger.Error("handling file changes failed", zap.Error(err))
		}
	})

	return fw, nil
}

// Start adds every directory under the roots and begins watching. Roots
// that do not exist are skipped.
func (fw *FileWatcher) Start() error {
	for _, root := range fw.roots {
		if _, err := os.Stat(root); err != nil {
			fw.logger.Debug("source root not found, not watching", zap.String("root", root))
			continue
		}
		if err := fw.addTree(root); err != nil {
			return err
		}
	}

	fw.wg.Add(1)
	go fw.watch()

	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		close(fw.stopChan)
		fw.wg.Wait()
		fw.debouncer.Stop()
		err = fw.watcher.Close()
	})
	return err
}

func (fw *FileWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if rel, ok := fw.relative(path); ok && rel != "." && fw.ignored(rel) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", path, err)
		}
		fw.logger.Debug("watching directory", zap.String("dir", path))
		return nil
	})
}

func (fw *FileWatcher) watch() {
	defer fw.wg.Done()

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handle(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watch error", zap.Error(err))

		case <-fw.stopChan:
			return
		}
	}
}

func (fw *FileWatcher) handle(event fsnotify.Event) {
	rel, ok := fw.relative(event.Name)
	if !ok || fw.ignored(rel) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := fw.addTree(event.Name); err != nil {
				fw.logger.Warn("failed to watch new directory", zap.Error(err))
			}
			return
		}
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if !fw.matcher.Included(event.Name) {
		return
	}

	fw.logger.Debug("file changed", zap.String("file", event.Name), zap.Stringer("op", event.Op))
	fw.debouncer.Add(event.Name)
}

// relative returns path relative to the root containing it
func (fw *FileWatcher) relative(path string) (string, bool) {
	for _, root := range fw.roots {
		rel, err := filepath.Rel(root, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return rel, true
		}
	}
	return "", false
}

func (fw *FileWatcher) ignored(rel string) bool {
	if strings.HasPrefix(filepath.Base(rel), ".") {
		return true
	}
	return fw.matcher.Excluded(rel)
}
