// Package daemon wires together the sampler, notes store, file watcher,
// and dispatcher into one running process, holding the data directory's
// exclusive lock for the process's lifetime.
package daemon

import (
	"fmt"
	"log"

	"github.com/gofrs/flock"

	"github.com/noted-app/noted/internal/config"
	"github.com/noted-app/noted/internal/dispatcher"
	"github.com/noted-app/noted/internal/exitcode"
	"github.com/noted-app/noted/internal/logstore"
	"github.com/noted-app/noted/internal/notes"
	"github.com/noted-app/noted/internal/platform"
	"github.com/noted-app/noted/internal/sampler"
	"github.com/noted-app/noted/internal/watcher"
)

// Daemon owns the running process's lifetime: the data-directory lock,
// the three append-only logs, and the sampler/notes/watcher/dispatcher
// quartet.
type Daemon struct {
	config *config.Config
	logger *log.Logger
	lock   *flock.Flock

	Sampler    *sampler.Sampler
	Notes      *notes.Store
	Watcher    *watcher.Pool
	Dispatcher *dispatcher.Dispatcher
}

// New constructs a Daemon from cfg, acquiring the data directory's
// exclusive lock and replaying the notes log. It does not start any
// goroutines; call Start for that.
func New(cfg *config.Config, logger *log.Logger) (*Daemon, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, exitcode.DataDir(cfg.DataPath, err)
	}

	fileLock := flock.New(cfg.LockPath())
	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, exitcode.Wrap(exitcode.ErrDataDir, "acquiring data-dir lock", err)
	}
	if !locked {
		return nil, exitcode.AlreadyRunning(cfg.DataPath)
	}

	appsLog := logstore.New[sampler.WindowSession](cfg.AppsLogPath())
	notesLog := logstore.New[notes.Note](cfg.NotesLogPath())
	filesLog := logstore.New[watcher.Event](cfg.FilesLogPath())

	noteStore := notes.New(notesLog, logger)
	if skipped, err := noteStore.Load(); err != nil {
		fileLock.Unlock()
		return nil, exitcode.Wrap(exitcode.ErrCorruptedLog, "loading notes log", err)
	} else if skipped > 0 {
		logger.Printf("daemon: skipped %d malformed lines replaying notes log", skipped)
	}

	s := sampler.New(platform.NoFocuser{}, platform.NewProcessLookuper(), cfg.SamplerPeriod, appsLog, logger)
	s.Apply(sampler.WithIgnoreList(sampler.NewDefaultIgnoreList("noted")))

	// The watcher needs the dispatcher to satisfy watcher.Dispatcher, and
	// the dispatcher needs the watcher pool to stop it on shutdown; build
	// the dispatcher first and wire its watcher reference in afterward.
	disp := dispatcher.New(s, noteStore, nil, logger)
	pool := watcher.New(cfg.WatcherPaths, cfg.FilesLogPath(), cfg.CommentIdentifier, filesLog, disp, logger)
	disp.SetWatcher(pool)

	return &Daemon{
		config:     cfg,
		logger:     logger,
		lock:       fileLock,
		Sampler:    s,
		Notes:      noteStore,
		Watcher:    pool,
		Dispatcher: disp,
	}, nil
}

// Start launches the sampler, watcher pool, and dispatcher goroutines.
func (d *Daemon) Start() {
	go d.Sampler.Run()
	d.Watcher.Start()
	go d.Dispatcher.Run()
}

// Wait blocks until the dispatcher has fully shut down (i.e. until
// something calls d.Dispatcher.Quit()).
func (d *Daemon) Wait() {
	d.Dispatcher.Wait()
}

// Close releases the data-directory lock. Call after Wait returns.
func (d *Daemon) Close() error {
	if err := d.lock.Unlock(); err != nil {
		return fmt.Errorf("releasing data-dir lock: %w", err)
	}
	return nil
}

// DataPath returns the data directory this daemon is running against.
func (d *Daemon) DataPath() string {
	return d.config.DataPath
}
