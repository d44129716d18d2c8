package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Journal records the rewrites of a single run. The run row is only written
// once the first rewrite happens, so runs that changed nothing leave no trace.
type Journal struct {
	store   *Store
	run     Run
	created bool
	now     func() time.Time
}

// NewJournal starts a new run with a random ID.
func NewJournal(st *Store, prefix, command string) *Journal {
	now := time.Now
	return &Journal{
		store: st,
		run: Run{
			ID:        uuid.NewString(),
			StartedAt: now(),
			Prefix:    prefix,
			Command:   command,
		},
		now: now,
	}
}

// RunID returns the ID of the run being recorded.
func (j *Journal) RunID() string {
	return j.run.ID
}

// RecordRewrite stores one rewritten shebang.
func (j *Journal) RecordRewrite(path, oldLine, newLine string) error {
	if !j.created {
		if err := j.store.InsertRun(&j.run); err != nil {
			return fmt.Errorf("failed to start run: %w", err)
		}
		j.created = true
	}

	_, err := j.store.InsertRewrite(&Rewrite{
		RunID:       j.run.ID,
		Path:        path,
		OldLine:     oldLine,
		NewLine:     newLine,
		RewrittenAt: j.now(),
	})
	return err
}
