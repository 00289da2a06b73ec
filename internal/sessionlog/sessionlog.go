// Package sessionlog appends one JSON object per conversation turn to a JSON
// Lines file and reads those records back.
package sessionlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// TimestampLayout is local time without a zone, microsecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Record is one line of the conversation log.
type Record struct {
	Timestamp  string `json:"timestamp" yaml:"timestamp"`
	ModelID    string `json:"model_id" yaml:"model_id"`
	ModelName  string `json:"model_name" yaml:"model_name"`
	Question   string `json:"question" yaml:"question"`
	StatusCode int    `json:"status_code" yaml:"status_code"`
	Response   string `json:"response" yaml:"response"`
}

// Logger appends records to a file. The file is opened and closed on every
// call, so nothing is buffered between turns.
type Logger struct {
	path string
	now  func() time.Time
}

// New returns a Logger for path. The file is created on the first Append.
func New(path string) *Logger {
	return &Logger{path: path, now: time.Now}
}

// Path returns the log file location.
func (l *Logger) Path() string {
	return l.path
}

// Append writes one record stamped with the current local time.
func (l *Logger) Append(question string, statusCode int, response, modelID, modelName string) error {
	return l.write(Record{
		Timestamp:  l.now().Format(TimestampLayout),
		ModelID:    modelID,
		ModelName:  modelName,
		Question:   question,
		StatusCode: statusCode,
		Response:   response,
	})
}

func (l *Logger) write(rec Record) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encode terminates the object with '\n'.
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("sessionlog: encode: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("sessionlog: open %s: %w", l.path, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("sessionlog: write %s: %w", l.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("sessionlog: close %s: %w", l.path, err)
	}
	return nil
}

// ReadResult is the content of a log file. Lines that do not decode are
// counted in Skipped rather than failing the read.
type ReadResult struct {
	Records []Record
	Skipped int
}

// Read loads every record from path. A missing file yields an empty result.
func Read(path string) (ReadResult, error) {
	var res ReadResult
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return res, nil
		}
		return res, fmt.Errorf("sessionlog: open %s: %w", path, err)
	}
	defer f.Close()

	// Records have no size limit, so lines are read whole rather than scanned.
	r := bufio.NewReader(f)
	for {
		raw, readErr := r.ReadBytes('\n')
		if line := bytes.TrimSpace(raw); len(line) > 0 {
			var rec Record
			if err := json.Unmarshal(line, &rec); err != nil {
				res.Skipped++
			} else {
				res.Records = append(res.Records, rec)
			}
		}
		if readErr == io.EOF {
			return res, nil
		}
		if readErr != nil {
			return res, fmt.Errorf("sessionlog: read %s: %w", path, readErr)
		}
	}
}

// Tail returns the last n records, or all of them when n <= 0.
func Tail(records []Record, n int) []Record {
	if n <= 0 || n >= len(records) {
		return records
	}
	return records[len(records)-n:]
}
