package viewer

import (
	"log"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vitrinelabs/vitrine/internal/editor"
)

// watchAssets reloads every open preview when files under dir change, so
// stylesheet edits show up without restarting. Development convenience
// only; production runs without an assets dir.
func watchAssets(dir string, sessions *editor.Manager) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("VIEWER: asset watch unavailable: %v", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		log.Printf("VIEWER: cannot watch %s: %v", dir, err)
		return
	}
	log.Printf("VIEWER: watching %s for asset changes", dir)

	// Editors save in bursts; coalesce events before reloading.
	var pending *time.Timer
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(200*time.Millisecond, func() {
				log.Printf("VIEWER: assets changed, reloading previews")
				reloadAll(sessions)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("VIEWER: asset watch error: %v", err)
		}
	}
}

func reloadAll(sessions *editor.Manager) {
	if sessions == nil {
		return
	}
	sessions.Each(func(sh *editor.Shell) {
		sess := sh.Session()
		_ = sess.Reload(sh.Working(), sess.Viewport())
	})
}
