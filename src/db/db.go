// Package db implements the persistent build database: a single-writer,
// mailbox-serialised store of target -> last BuildResult, backed by an
// append-only, checksummed log file so that a corrupted tail record is
// tolerated (best-effort recovery to the previous consistent prefix)
// rather than failing the whole load.
package db

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/xake-build/xake/src/cli/logging"
	"github.com/xake-build/xake/src/core"
)

var log = logging.Log

// DefaultFileName is the conventional name of the build database file,
// always placed directly under the project root.
const DefaultFileName = ".xake"

type request struct {
	fn func()
}

// DB is the persistent build database. Construct with Open; all exported
// methods are safe for concurrent use — they're serialised through an
// internal single-writer goroutine (the "mailbox"), so reads are always
// consistent with the in-memory map and writes are strictly ordered.
type DB struct {
	path    string
	file    *os.File
	entries map[string]core.BuildResult
	mailbox chan request
	done    chan struct{}
}

// Open loads the database at <projectRoot>/.xake, or starts an empty one
// if the file doesn't exist. A corrupt or truncated file keeps the records
// before the first bad one and logs a warning rather than failing the run;
// a file that cannot be read at all gives an empty database.
func Open(projectRoot string) *DB {
	path := projectRoot + string(os.PathSeparator) + DefaultFileName
	entries, err := load(path)
	if err != nil {
		log.Warning("Build database at %s could not be fully read, continuing with %d recovered entries: %s", path, len(entries), err)
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Warning("Could not open build database at %s for writing, running without persistence: %s", path, err)
	}
	d := &DB{
		path:    path,
		file:    file,
		entries: entries,
		mailbox: make(chan request),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *DB) run() {
	for req := range d.mailbox {
		req.fn()
	}
	close(d.done)
}

// call sends fn to the mailbox goroutine and blocks until it has run.
func (d *DB) call(fn func()) {
	done := make(chan struct{})
	d.mailbox <- request{fn: func() {
		fn()
		close(done)
	}}
	<-done
}

// Get returns the last-persisted BuildResult for target, if any.
func (d *DB) Get(target core.Target) (result core.BuildResult, ok bool) {
	d.call(func() {
		result, ok = d.entries[target.String()]
	})
	return
}

// Put persists result as the latest BuildResult for its target, both in
// memory and appended to the on-disk log.
func (d *DB) Put(result core.BuildResult) error {
	var err error
	d.call(func() {
		d.entries[result.Target.String()] = result
		if d.file != nil {
			err = appendRecord(d.file, result)
		}
	})
	return err
}

// CloseAndFlush flushes and closes the underlying file and stops the
// mailbox goroutine. The DB must not be used afterwards.
func (d *DB) CloseAndFlush() error {
	close(d.mailbox)
	<-d.done
	if d.file == nil {
		return nil
	}
	if err := d.file.Sync(); err != nil {
		return err
	}
	return d.file.Close()
}

// appendRecord writes one checksummed, length-prefixed gob record.
func appendRecord(w io.Writer, result core.BuildResult) error {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(result); err != nil {
		return err
	}
	checksum := xxhash.Sum64(payload.Bytes())
	header := make([]byte, 16)
	binary.BigEndian.PutUint64(header[0:8], checksum)
	binary.BigEndian.PutUint32(header[8:12], uint32(payload.Len()))
	if _, err := w.Write(header[:12]); err != nil {
		return err
	}
	_, err := w.Write(payload.Bytes())
	return err
}

// load replays the log at path, returning as many valid entries as it can
// recover. A truncated or checksum-mismatched trailing record stops replay
// at that point without discarding everything read so far; a non-EOF error
// is returned alongside whatever was recovered.
func load(path string) (map[string]core.BuildResult, error) {
	entries := map[string]core.BuildResult{}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return entries, err
	}
	defer file.Close()

	for {
		header := make([]byte, 12)
		if _, err := io.ReadFull(file, header); err != nil {
			if err == io.EOF {
				return entries, nil
			}
			return entries, fmt.Errorf("truncated record header: %w", err)
		}
		checksum := binary.BigEndian.Uint64(header[0:8])
		length := binary.BigEndian.Uint32(header[8:12])
		payload := make([]byte, length)
		if _, err := io.ReadFull(file, payload); err != nil {
			return entries, fmt.Errorf("truncated record payload: %w", err)
		}
		if xxhash.Sum64(payload) != checksum {
			return entries, fmt.Errorf("checksum mismatch, stopping recovery at previous consistent record")
		}
		var result core.BuildResult
		if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&result); err != nil {
			return entries, fmt.Errorf("malformed record: %w", err)
		}
		entries[result.Target.String()] = result
	}
}
