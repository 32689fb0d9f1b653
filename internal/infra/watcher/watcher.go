package watcher

import (
	"context"
	"log"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher tails a set of directories and forwards new screenshot files to
// Events. Non-screenshot files are dropped here so the pipeline never sees
// them.
type Watcher struct {
	Dirs   []string
	Events chan string

	fs *fsnotify.Watcher
}

func New(dirs []string) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{Dirs: dirs, Events: make(chan string, 64), fs: fs}
	for _, d := range dirs {
		if err := fs.Add(d); err != nil {
			fs.Close()
			return nil, err
		}
		log.Printf("watcher: watching dir=%s", d)
	}
	return w, nil
}

// Run pumps filesystem events until ctx is done. Create and Write both count:
// screenshot tools differ in whether the file appears atomically or grows in
// place, and the pipeline dedups repeats downstream.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fs.Close()
	defer close(w.Events)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !IsScreenshotFile(ev.Name) {
				continue
			}
			select {
			case w.Events <- ev.Name:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: error=%v", err)
		}
	}
}

var screenshotExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
}

var screenshotNames = []*regexp.Regexp{
	regexp.MustCompile(`^screenshot`),
	regexp.MustCompile(`^screen shot`),
	regexp.MustCompile(`^screen_shot`),
	regexp.MustCompile(`^capture`),
	regexp.MustCompile(`^screen_recording`),
	regexp.MustCompile(`^screen recording`),
	regexp.MustCompile(`^cleanshot`),
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2} at \d`), // macOS "2026-08-30 at 14.05.12"
}

// IsScreenshotFile applies the capture-tool naming heuristic. Dotfiles and
// editors' temp files never match.
func IsScreenshotFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if !screenshotExts[strings.ToLower(filepath.Ext(base))] {
		return false
	}
	name := strings.ToLower(base)
	for _, re := range screenshotNames {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
