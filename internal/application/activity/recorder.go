// Package activity turns record change events into activity log entries and
// serves the log.
package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/agencyos/backend/internal/domain/activity"
	"github.com/agencyos/backend/internal/domain/shared"
	"github.com/sergi/go-diff/diffmatchpatch"
	"go.uber.org/zap"
)

// Recorder is an event handler appending one entry per record change
type Recorder struct {
	repo   activity.Repository
	logger *zap.Logger
}

// NewRecorder creates a recorder writing to repo
func NewRecorder(repo activity.Repository, logger *zap.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger.Named("activity")}
}

// EventTypes lists the record change events
func (r *Recorder) EventTypes() []string {
	return []string{
		activity.EventTypeRecordCreated,
		activity.EventTypeRecordUpdated,
		activity.EventTypeRecordTransitioned,
		activity.EventTypeRecordsReset,
	}
}

// Handle records ev. Events of other shapes are ignored.
func (r *Recorder) Handle(ctx context.Context, ev shared.DomainEvent) error {
	change, ok := ev.(*activity.RecordChanged)
	if !ok {
		return nil
	}
	entry := activity.Entry{
		ID:         change.EventID().String(),
		Module:     change.Module,
		RecordID:   change.RecordID,
		Kind:       change.Kind(),
		FromStatus: change.FromStatus,
		ToStatus:   change.ToStatus,
		Patch:      Patch(change.Before, change.After),
		Actor:      change.Actor,
		At:         change.OccurredAt().UTC().Truncate(time.Millisecond),
	}
	return r.repo.Append(ctx, entry)
}

// Patch renders a line diff between two JSON documents, one changed line per
// output line prefixed with "-" or "+". Equal documents yield "".
func Patch(before, after json.RawMessage) string {
	a, b := indent(before), indent(after)
	if a == b {
		return ""
	}

	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(prefix)
			out.WriteString(strings.TrimSuffix(line, "\n"))
			out.WriteByte('\n')
		}
	}
	return out.String()
}

func indent(doc json.RawMessage) string {
	if len(doc) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, doc, "", "  "); err != nil {
		return string(doc) + "\n"
	}
	buf.WriteByte('\n')
	return buf.String()
}

var _ shared.EventHandler = (*Recorder)(nil)
