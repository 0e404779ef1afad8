// Package jsonl reads and writes line-delimited JSON records: one object per
// line, no enclosing array.
package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/listingmatch/backend/internal/domain"
)

// DropFunc is told about every line that could not be decoded. line is 1-based.
type DropFunc func(line int, err error)

// validator is implemented by records that reject structurally valid JSON.
type validator interface {
	Validate() error
}

var errNotObject = errors.New("line is not a JSON object")

// ReadRecords decodes every line of r into a T, in input order.
//
// Malformed lines are dropped and reported to drop (which may be nil); they never
// fail the read. A line is malformed when it is not a JSON object, does not decode
// into T, or decodes into a T whose Validate method returns an error. For
// domain.Product and domain.Listing that last case means an empty product_name
// or title. Blank lines are skipped without being reported. Only a failure
// of r itself is returned, wrapped in domain.ErrSourceUnreadable.
func ReadRecords[T any](r io.Reader, drop DropFunc) ([]T, domain.LoadStats, error) {
	var (
		records []T
		stats   domain.LoadStats
	)

	br := bufio.NewReader(r)
	lineNo := 0
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			lineNo++
			if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
				stats.Lines++
				rec, decErr := decodeLine[T](trimmed)
				if decErr != nil {
					stats.Dropped++
					if drop != nil {
						drop(lineNo, decErr)
					}
				} else {
					records = append(records, rec)
				}
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("%w: after line %d: %v", domain.ErrSourceUnreadable, lineNo, err)
		}
	}

	return records, stats, nil
}

func decodeLine[T any](line []byte) (T, error) {
	var rec T
	if line[0] != '{' {
		return rec, errNotObject
	}
	if err := json.Unmarshal(line, &rec); err != nil {
		return rec, err
	}
	if v, ok := any(rec).(validator); ok {
		if err := v.Validate(); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// WriteRecords encodes records to w, one JSON object per line, in order.
//
// Every record is encoded before anything is written, so a record that cannot be
// serialized fails the whole write with domain.ErrSerialization and leaves w
// untouched. Write failures are wrapped in domain.ErrSinkUnwritable.
func WriteRecords[T any](w io.Writer, records []T) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("%w: record %d: %v", domain.ErrSerialization, i, err)
		}
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSinkUnwritable, err)
	}
	return nil
}

// WriteFile writes records to path through a temporary file in the same
// directory that is renamed into place on success. A failed write never leaves a
// partial file at path.
func WriteFile[T any](path string, records []T) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSinkUnwritable, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = WriteRecords(tmp, records); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSinkUnwritable, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSinkUnwritable, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSinkUnwritable, err)
	}
	return nil
}
