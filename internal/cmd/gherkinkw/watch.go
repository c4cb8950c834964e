package gherkinkw

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/xoro/robotframework-gherkin-parser/internal/cli"
	"github.com/xoro/robotframework-gherkin-parser/internal/filekind"
)

// debounceDelay batches bursts of filesystem events into one rerun.
const debounceDelay = 250 * time.Millisecond

// runWatch executes run once, then reruns it whenever a keyword or
// feature file under root changes, until ctx is cancelled.
func runWatch(ctx context.Context, root string, stderr io.Writer, run func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, dir := range watchDirs(root) {
		if err := watcher.Add(dir); err != nil {
			log.Printf("watch: %s: %v", dir, err)
		}
	}

	rerun := func() {
		if err := run(); err != nil {
			var code cli.ExitCodeError
			if !errors.As(err, &code) {
				cli.Writef(stderr, "gherkinkw: %v\n", err)
			}
		}
	}
	rerun()

	debounce := time.NewTimer(time.Hour)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !hiddenDir(ev.Name) {
					if err := watcher.Add(ev.Name); err != nil {
						log.Printf("watch: %s: %v", ev.Name, err)
					}
				}
			}
			if relevantChange(ev.Name) {
				debounce.Reset(debounceDelay)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch: %v", err)

		case <-debounce.C:
			rerun()
		}
	}
}

// watchDirs returns root and every non-hidden subdirectory.
func watchDirs(root string) []string {
	dirs := []string{root}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() || path == root {
			return nil
		}
		if hiddenDir(path) {
			return fs.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs
}

// relevantChange reports whether a change to path can affect query
// results.
func relevantChange(path string) bool {
	return filekind.Detect(path) != filekind.KindUnknown
}

func hiddenDir(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
