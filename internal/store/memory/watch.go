package memory

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rjeczalik/notify"
)

// Run watches the data file backing this store and reloads the catalog when
// the file is changed by something other than this process (for example, a
// user hand-editing the JSON). Writes made by the store itself are
// recognised by their checksum and ignored.
//
// Run blocks until the context is cancelled.
func (s *Store) Run(ctx context.Context) error {
	if s.file == nil {
		return errors.New("cannot watch a memory store which has no data file")
	}

	path, err := filepath.Abs(s.file.path)
	if err != nil {
		return err
	}

	// Watch the directory rather than the file: persisting renames a
	// new file over the old one, which would orphan a file watch.
	events := make(chan notify.EventInfo, 8)
	if err := notify.Watch(filepath.Dir(path), events, notify.Write, notify.Create, notify.Rename); err != nil {
		return fmt.Errorf("failed to watch data file %s: %w", path, err)
	}
	defer notify.Stop(events)

	log.Infof("Watching %s for external modifications\n", path)
	for {
		select {
		case ev := <-events:
			if ev.Path() != path {
				continue
			}

			s.reloadFromFile()
		case <-ctx.Done():
			return nil
		}
	}
}

// reloadFromFile installs the contents of the data file if they differ
// from what the store last wrote. The read and swap happen under the write
// lock so no transaction can commit in between. Counters in the file are
// not trusted: the reloaded catalog is reconciled and, if anything needed
// correcting, written back.
func (s *Store) reloadFromFile() {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.file.reloadIfChanged()
	if err != nil {
		log.Warnf("Data file changed but could not be reloaded, keeping current catalog: %v\n", err)
		return
	}
	if next == nil {
		return
	}

	if corrected := next.reconcile(); corrected > 0 {
		log.Warnf("Reloaded data file had %d inconsistent record(s), corrected\n", corrected)
		if err := s.file.save(next); err != nil {
			log.Warnf("Failed to write corrected catalog back to data file: %v\n", err)
		}
	}

	s.state = next
	log.Infof("Reloaded catalog after external modification (%d movies)\n", len(next.movies))
}
