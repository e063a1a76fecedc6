package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Todo is the persisted todo record. JSON field names are shared with the
// command-line client and must not change.
type Todo struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title" validate:"required"`
	Content      string    `json:"content"`
	Done         bool      `json:"done"`
	Priority     int64     `json:"priority"`
	CreationDate Timestamp `json:"creation_date"`
	DueDate      Timestamp `json:"due_date"`
	FinishDate   Timestamp `json:"finish_date"`
}

// Timestamp is an instant with second resolution. It travels as an integer
// number of seconds since the Unix epoch.
type Timestamp struct {
	time.Time
}

// Epoch marks a todo that has not been finished.
var Epoch = Unix(0)

// Unix returns the Timestamp for sec seconds since the epoch, in UTC.
func Unix(sec int64) Timestamp {
	return Timestamp{Time: time.Unix(sec, 0).UTC()}
}

// At truncates t to whole seconds.
func At(t time.Time) Timestamp {
	return Unix(t.Unix())
}

// Seconds returns the epoch seconds. The zero Timestamp counts as the epoch.
func (t Timestamp) Seconds() int64 {
	if t.Time.IsZero() {
		return 0
	}
	return t.Time.Unix()
}

// IsEpoch reports whether t is the "not finished" sentinel.
func (t Timestamp) IsEpoch() bool { return t.Seconds() == 0 }

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, t.Seconds(), 10), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Epoch
		return nil
	}
	var sec int64
	if err := json.Unmarshal(data, &sec); err != nil {
		return err
	}
	*t = Unix(sec)
	return nil
}

// Apply merges an update payload onto the stored record.
//
//	field          | taken from
//	---------------+-----------------------------
//	id             | existing (path id)
//	creation_date  | existing (write-once)
//	title          | payload
//	content        | payload
//	done           | payload
//	priority       | payload
//	due_date       | payload
//	finish_date    | payload
//
// There is no partial update: every mutable field is overwritten, including
// with zero values.
func Apply(existing, payload Todo) Todo {
	merged := payload
	merged.ID = existing.ID
	merged.CreationDate = existing.CreationDate
	return merged
}

// SettleFinish sets next.FinishDate for a transition away from prevDone:
// false to true stamps now, true to false resets to the epoch, and anything
// else keeps next.FinishDate as supplied.
func SettleFinish(prevDone bool, next Todo, now time.Time) Todo {
	switch {
	case !prevDone && next.Done:
		next.FinishDate = At(now)
	case prevDone && !next.Done:
		next.FinishDate = Epoch
	}
	return next
}

// Toggled returns cur with done inverted and finish_date settled accordingly.
func Toggled(cur Todo, now time.Time) Todo {
	next := cur
	next.Done = !cur.Done
	return SettleFinish(cur.Done, next, now)
}
