// SPDX-License-Identifier: GPL-2.0-or-later

package cvar

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"gokart/conlog"
)

// LoadYAML sets cvars from a flat "name: value" document. Unknown names
// are an error, nothing is set in that case.
func (r *Registry) LoadYAML(rd io.Reader) error {
	var doc map[string]yaml.Node
	if err := yaml.NewDecoder(rd).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrap(err, "cvar: decode config")
	}
	names := make([]string, 0, len(doc))
	for n := range doc {
		names = append(names, n)
	}
	sort.Strings(names)

	type pending struct {
		cv *Cvar
		v  string
	}
	var set []pending
	for _, n := range names {
		node := doc[n]
		if node.Kind != yaml.ScalarNode {
			return errors.Errorf("cvar: %s (line %d): value must be a scalar", n, node.Line)
		}
		cv, ok := r.Get(n)
		if !ok {
			return errors.Errorf("cvar: %s (line %d): unknown variable", n, node.Line)
		}
		set = append(set, pending{cv, node.Value})
	}
	for _, p := range set {
		p.cv.SetByString(p.v)
	}
	return nil
}

// LoadFile is LoadYAML on the named file.
func (r *Registry) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "cvar: open config")
	}
	defer f.Close()
	if err := r.LoadYAML(f); err != nil {
		return errors.Wrap(err, path)
	}
	return nil
}

// WriteYAML writes all archive cvars that differ from their default.
func (r *Registry) WriteYAML(w io.Writer) error {
	for _, cv := range r.All() {
		if !cv.Archive() || cv.String() == cv.defaultValue {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s: %q\n", cv.Name(), cv.String()); err != nil {
			return errors.Wrap(err, "cvar: write config")
		}
	}
	return nil
}

const debounce = 100 * time.Millisecond

// Watcher reloads a config file into a registry whenever it changes.
// Reload results are delivered on Events (the path) and Errors.
type Watcher struct {
	watcher *fsnotify.Watcher
	reg     *Registry
	path    string
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// Watch starts watching path. The directory is watched rather than the
// file so editors that replace the file on save are still seen.
func Watch(path string, reg *Registry) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "cvar: watch")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = fw.Close()
		return nil, errors.Wrap(err, "cvar: watch")
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, errors.Wrap(err, "cvar: watch")
	}
	w := &Watcher{
		watcher: fw,
		reg:     reg,
		path:    abs,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.Events)
	defer close(w.Errors)
	// reload once the file has been quiet for the debounce interval
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			timer.Reset(debounce)
		case <-timer.C:
			if err := w.reg.LoadFile(w.path); err != nil {
				conlog.Warnf("config reload: %v", err)
				w.send(err)
				continue
			}
			conlog.DPrintf("config reloaded from %s", w.path)
			select {
			case w.Events <- w.path:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.send(err)
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) send(err error) {
	select {
	case w.Errors <- err:
	case <-w.closeCh:
	default:
	}
}
