package client

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ActivitySummary holds job counts per queue state.
type ActivitySummary struct {
	Active    int `json:"active" yaml:"active"`
	Queued    int `json:"queued" yaml:"queued"`
	Scheduled int `json:"scheduled" yaml:"scheduled"`
	Failed    int `json:"failed" yaml:"failed"`
	Completed int `json:"completed" yaml:"completed"`
	OutOfSync int `json:"outOfSync" yaml:"outOfSync"`
}

// ValidateActivity decodes an activity record, rejecting missing or negative counts.
func ValidateActivity(raw []byte) (*ActivitySummary, error) {
	var fields struct {
		Active    *int `json:"active"`
		Queued    *int `json:"queued"`
		Scheduled *int `json:"scheduled"`
		Failed    *int `json:"failed"`
		Completed *int `json:"completed"`
		OutOfSync *int `json:"outOfSync"`
	}

	if isNull(raw) {
		return nil, fmt.Errorf("activity record is null")
	}

	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode activity: %w", err)
	}

	counts := map[string]*int{
		"active":    fields.Active,
		"queued":    fields.Queued,
		"scheduled": fields.Scheduled,
		"failed":    fields.Failed,
		"completed": fields.Completed,
		"outOfSync": fields.OutOfSync,
	}

	var missing, negative []string

	for name, value := range counts {
		switch {
		case value == nil:
			missing = append(missing, name)
		case *value < 0:
			negative = append(negative, name)
		}
	}

	sort.Strings(missing)
	sort.Strings(negative)

	if len(missing) > 0 {
		return nil, fmt.Errorf("activity record missing %s", strings.Join(missing, ", "))
	}

	if len(negative) > 0 {
		return nil, fmt.Errorf("activity record has negative %s", strings.Join(negative, ", "))
	}

	return &ActivitySummary{
		Active:    *fields.Active,
		Queued:    *fields.Queued,
		Scheduled: *fields.Scheduled,
		Failed:    *fields.Failed,
		Completed: *fields.Completed,
		OutOfSync: *fields.OutOfSync,
	}, nil
}

// HistoryEntry is one completed chapter download.
type HistoryEntry struct {
	ID        string    `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	FileName  string    `json:"fileName" yaml:"fileName"`
	Size      int64     `json:"size" yaml:"size"`
	Chapter   Chapter   `json:"chapter" yaml:"chapter"`
	Manga     Manga     `json:"manga" yaml:"manga"`
}

// UnmarshalJSON accepts numeric ids as well as strings.
func (e *HistoryEntry) UnmarshalJSON(data []byte) error {
	type plain HistoryEntry

	var aux struct {
		plain
		ID json.RawMessage `json:"id"`
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*e = HistoryEntry(aux.plain)

	id, err := decodeID(aux.ID)
	if err != nil {
		return fmt.Errorf("decode history id: %w", err)
	}

	e.ID = id

	return nil
}

// Chapter identifies a chapter within its manga. Index is zero-based.
type Chapter struct {
	Index int `json:"index" yaml:"index"`
}

// Manga is the series a chapter belongs to.
type Manga struct {
	Title    string   `json:"title" yaml:"title"`
	Metadata Metadata `json:"metadata" yaml:"metadata"`
}

// Metadata carries presentation details for a manga.
type Metadata struct {
	Cover string `json:"cover" yaml:"cover"`
}

// Library is the server's library record. Only its presence matters to the
// dashboard; the fields are kept for logging.
type Library struct {
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// UnmarshalJSON accepts numeric ids as well as strings.
func (l *Library) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID   json.RawMessage `json:"id"`
		Path string          `json:"path"`
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	id, err := decodeID(aux.ID)
	if err != nil {
		return fmt.Errorf("decode library id: %w", err)
	}

	l.ID = id
	l.Path = aux.Path

	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}

	return n.String(), nil
}
