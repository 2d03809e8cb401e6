package discovery

import (
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var csvHeader = []string{
	"Name", "Sex", "Handle", "Platform", "Follower Count",
	"Contact", "Engagement", "Niche", "Notes", "Status",
}

var handleSplitPattern = regexp.MustCompile(`[ ,]+`)

// Sheet appends discovered influencers to a CSV file and remembers every
// handle already written, across runs, so repeated discovery sessions never
// pitch the same creator twice.
type Sheet struct {
	path    string
	handles map[string]struct{}
}

// OpenSheet loads the handles already present in path. A missing file is a
// fresh sheet, not an error.
func OpenSheet(path string) (*Sheet, error) {
	s := &Sheet{path: path, handles: make(map[string]struct{})}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	handleCol := -1
	for i, rec := range records {
		if i == 0 {
			for col, name := range rec {
				if name == "Handle" {
					handleCol = col
				}
			}
			continue
		}
		if handleCol < 0 || handleCol >= len(rec) {
			continue
		}
		for _, h := range handleSplitPattern.Split(rec[handleCol], -1) {
			if key := normalizeHandle(h); key != "" {
				s.handles[key] = struct{}{}
			}
		}
	}
	return s, nil
}

// Seen reports whether a handle or channel title was already written.
func (s *Sheet) Seen(handleOrTitle string) bool {
	_, ok := s.handles[normalizeHandle(handleOrTitle)]
	return ok
}

// Append writes one influencer row, creating the file with a header row on
// first write.
func (s *Sheet) Append(inf Influencer) error {
	_, statErr := os.Stat(s.path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(csvHeader); err != nil {
			return err
		}
	}
	row := []string{
		inf.Name, inf.Sex, inf.Handle, inf.Platform, inf.FollowerCount,
		inf.Contact, inf.Engagement, inf.Niche, inf.Notes, inf.Status,
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}

	if key := normalizeHandle(inf.Handle); key != "" {
		s.handles[key] = struct{}{}
	}
	return nil
}

// Len reports how many distinct handles the sheet knows about.
func (s *Sheet) Len() int { return len(s.handles) }

// Path returns the backing file path.
func (s *Sheet) Path() string { return s.path }

func normalizeHandle(h string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(h), "@"))
}
