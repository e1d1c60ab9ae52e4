package internal

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settleDelay lets a burst of writes to the same file land before it is read.
const settleDelay = 100 * time.Millisecond

var errAlreadyWatching = errors.New("already watching")

// IsDocumentFile reports whether path names a YAML document.
func IsDocumentFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// StartWatching lowers documents under dirs again every time they are
// written. onReport receives the outcome of every run.
func (e *Engine) StartWatching(dirs []string, onReport func(*Report, error)) error {
	if e.isWatching.Load() {
		return errAlreadyWatching
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	for _, dir := range dirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			watcher.Close()
			return err
		}
	}

	e.watcher = watcher
	e.watchDirs = dirs
	e.onReport = onReport
	e.isWatching.Store(true)
	e.logger.Info("watching for changes", zap.Strings("dirs", dirs))

	go e.watchLoop()
	return nil
}

// StopWatching stops the watcher started by StartWatching.
func (e *Engine) StopWatching() error {
	if !e.isWatching.Swap(false) {
		e.logger.Debug("not watching")
		return nil
	}
	return e.watcher.Close()
}

func (e *Engine) watchLoop() {
	for e.isWatching.Load() {
		select {
		case event, ok := <-e.watcher.Events:
			if !ok {
				return
			}
			e.handleFileEvent(event)
		case err, ok := <-e.watcher.Errors:
			if !ok {
				return
			}
			e.logger.Error("watch error", zap.Error(err))
		}
	}
}

func (e *Engine) handleFileEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	if !IsDocumentFile(event.Name) {
		return
	}

	time.Sleep(settleDelay)
	report, err := e.Run(event.Name)
	if err != nil {
		e.logger.Error("failed to lower document", zap.String("file", event.Name), zap.Error(err))
	} else {
		e.logger.Info("lowered document on change",
			zap.String("file", event.Name),
			zap.Int("rewritten", len(report.Rewrites)),
		)
	}
	if e.onReport != nil {
		e.onReport(report, err)
	}
}
