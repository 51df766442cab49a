// Package csvsource reads the article, user and comment record streams from
// a directory of UTF-8 CSV files.
package csvsource

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"newsdesk/internal/observability/logging"
	"newsdesk/internal/usecase/populate"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Source implements populate.RecordSource over a data directory.
type Source struct {
	Dir string
}

func New(dir string) *Source {
	return &Source{Dir: dir}
}

func (s *Source) Articles(ctx context.Context) ([]populate.Record, error) {
	return s.read(ctx, populate.StreamArticles)
}

func (s *Source) Users(ctx context.Context) ([]populate.Record, error) {
	return s.read(ctx, populate.StreamUsers)
}

func (s *Source) Comments(ctx context.Context) ([]populate.Record, error) {
	return s.read(ctx, populate.StreamComments)
}

func (s *Source) read(ctx context.Context, stream string) ([]populate.Record, error) {
	path := filepath.Join(s.Dir, stream)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", stream, err)
	}
	defer func() { _ = f.Close() }()

	records, err := ReadRecords(ctx, stream, f)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug("csv stream read",
		slog.String("path", path),
		slog.Int("records", len(records)))
	return records, nil
}

// ReadRecords parses r as CSV. A leading byte-order mark is dropped, the
// header row is skipped, every field is trimmed of surrounding whitespace
// and rows may carry a varying number of fields.
func ReadRecords(ctx context.Context, stream string, r io.Reader) ([]populate.Record, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && string(head) == string(utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var records []populate.Record
	header := true
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w: %w", stream, populate.ErrMalformedRecord, err)
		}
		if header {
			header = false
			continue
		}
		line, _ := cr.FieldPos(0)
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		records = append(records, populate.Record{Stream: stream, Line: line, Fields: fields})
	}
	return records, nil
}
