// Package persistence provides the append-only JSONL journal backing a
// simulation session. Events are written one per line in commit order and
// never rewritten; a session is rebuilt by replaying the whole file.
package persistence

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/bivex/loreSystem-sub001/internal/engine"
)

// Journal handles append-only storage of the event log.
type Journal struct {
	file *os.File
}

// Open opens or creates the journal file at path for appending.
func Open(path string) (*Journal, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return &Journal{file: file}, nil
}

// Append marshals one committed event onto the log and syncs.
func (j *Journal) Append(evt engine.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	if _, err := j.file.Write(append(data, '\n')); err != nil {
		return err
	}
	return j.file.Sync()
}

// Load replays every journaled line back into an event slice.
func (j *Journal) Load() ([]engine.Event, error) {
	if _, err := j.file.Seek(0, 0); err != nil {
		return nil, err
	}

	var events []engine.Event
	scanner := bufio.NewScanner(j.file)
	for scanner.Scan() {
		var evt engine.Event
		if err := json.Unmarshal(scanner.Bytes(), &evt); err != nil {
			return nil, fmt.Errorf("failed to decode journal line: %w", err)
		}
		events = append(events, evt)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// Close handles safe shutdown.
func (j *Journal) Close() error {
	return j.file.Close()
}
