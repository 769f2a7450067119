package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

type flusher interface {
	Flush()
}

// CSVStream writes CSV records to an io.Writer as they are produced. The
// header row is held back until the first record or Close, so nothing reaches
// the destination before the caller has data (or knows there is none).
type CSVStream struct {
	writer     *csv.Writer
	dst        io.Writer
	headers    []string
	flushEvery int
	pending    int
	rows       int
	started    bool
}

// NewCSVStream returns a stream that writes headers and rows to w. Rows are
// pushed to w every flushEvery records; values below 1 flush each row.
func NewCSVStream(w io.Writer, headers []string, flushEvery int) (*CSVStream, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	if flushEvery < 1 {
		flushEvery = 1
	}
	return &CSVStream{writer: csv.NewWriter(w), dst: w, headers: headers, flushEvery: flushEvery}, nil
}

func (s *CSVStream) start() error {
	if s.started {
		return nil
	}
	s.started = true
	if err := s.writer.Write(s.headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	return nil
}

// Write appends one record, emitting the header row first if needed.
func (s *CSVStream) Write(record []string) error {
	if err := s.start(); err != nil {
		return err
	}
	if err := s.writer.Write(record); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	s.rows++
	s.pending++
	if s.pending >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

// Flush pushes buffered records to the destination, flushing it too when it
// supports that (http.ResponseWriter does).
func (s *CSVStream) Flush() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	s.pending = 0
	if f, ok := s.dst.(flusher); ok {
		f.Flush()
	}
	return nil
}

// Close completes the document. An empty stream still yields the header row.
func (s *CSVStream) Close() error {
	if err := s.start(); err != nil {
		return err
	}
	return s.Flush()
}

// Started reports whether any bytes were handed to the destination writer.
func (s *CSVStream) Started() bool {
	return s.started
}

// Rows returns the number of data records written.
func (s *CSVStream) Rows() int {
	return s.rows
}
