package task

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/antopolskiy/taskboard/internal/clierr"
	"github.com/antopolskiy/taskboard/internal/date"
)

// Record is a loosely-typed task as found in hand-edited files and
// imported documents: keys may be snake_case or camelCase, enums may use
// aliases, and numbers may arrive as strings.
type Record map[string]any

// get returns the first present value among keys, compared after dropping
// case, underscores, and hyphens.
func (r Record) get(keys ...string) (any, bool) {
	for _, want := range keys {
		want = foldKey(want)
		for k, v := range r {
			if foldKey(k) == want && v != nil {
				return v, true
			}
		}
	}
	return nil, false
}

func foldKey(k string) string {
	return strings.NewReplacer("_", "", "-", "").Replace(strings.ToLower(k))
}

// Normalize converts a record to the canonical Task. Missing status and
// priority default to todo and medium; negative time is clamped to zero.
// Unknown enum values and malformed fields are errors.
func Normalize(r Record) (*Task, error) {
	t := &Task{Status: StatusTodo, Priority: PriorityMedium}
	var err error

	t.ID = r.str("id")
	t.ProjectID = r.str("project_id", "project")
	t.Title = r.str("title", "name")
	t.Description = r.str("description", "body")

	if v, ok := r.get("status"); ok {
		if t.Status, err = ParseStatus(fmt.Sprint(v)); err != nil {
			return nil, err
		}
	}
	if v, ok := r.get("priority"); ok {
		if t.Priority, err = normalizePriority(v); err != nil {
			return nil, err
		}
	}
	if t.Position, err = r.intField("position", "order"); err != nil {
		return nil, err
	}
	if t.TimeSpentMinutes, err = r.intField("time_spent_minutes", "time_spent"); err != nil {
		return nil, err
	}
	t.TimeSpentMinutes = max(t.TimeSpentMinutes, 0)
	if t.EstimatedHours, err = r.floatField("estimated_hours"); err != nil {
		return nil, err
	}
	t.Tags = r.tags()

	if t.DueDate, err = r.dateField("due_date", "due"); err != nil {
		return nil, err
	}
	for _, f := range []struct {
		dst  **time.Time
		keys []string
	}{
		{&t.TimerStartTime, []string{"timer_start_time"}},
		{&t.StartedAt, []string{"started_at"}},
		{&t.CompletedAt, []string{"completed_at"}},
	} {
		if *f.dst, err = r.timeField(f.keys...); err != nil {
			return nil, err
		}
	}
	created, err := r.timeField("created_at", "created")
	if err != nil {
		return nil, err
	}
	if created != nil {
		t.CreatedAt = *created
	}
	updated, err := r.timeField("updated_at", "updated")
	if err != nil {
		return nil, err
	}
	if updated != nil {
		t.UpdatedAt = *updated
	}
	return t, nil
}

func (r Record) str(keys ...string) string {
	v, ok := r.get(keys...)
	if !ok {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func normalizePriority(v any) (Priority, error) {
	if n, ok := number(v); ok {
		rank := int(math.Round(n))
		rank = max(0, min(rank, len(Priorities)-1))
		return Priorities[rank], nil
	}
	s := strings.ToLower(strings.TrimSpace(fmt.Sprint(v)))
	switch s {
	case "urgent", "critical":
		return PriorityHigh, nil
	case "normal":
		return PriorityMedium, nil
	}
	return ParsePriority(s)
}

func (r Record) intField(keys ...string) (int, error) {
	v, ok := r.get(keys...)
	if !ok {
		return 0, nil
	}
	n, ok := number(v)
	if !ok {
		return 0, invalidField(keys[0], v)
	}
	return int(n), nil
}

func (r Record) floatField(keys ...string) (float64, error) {
	v, ok := r.get(keys...)
	if !ok {
		return 0, nil
	}
	n, ok := number(v)
	if !ok {
		return 0, invalidField(keys[0], v)
	}
	return n, nil
}

// number accepts the numeric shapes YAML and JSON decoders produce, plus
// numeric strings.
func number(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

func (r Record) tags() []string {
	v, ok := r.get("tags", "labels")
	if !ok {
		return nil
	}
	var out []string
	switch x := v.(type) {
	case []any:
		for _, e := range x {
			if s := strings.TrimSpace(fmt.Sprint(e)); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, x...)
	case string:
		for _, s := range strings.Split(x, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func (r Record) dateField(keys ...string) (*date.Date, error) {
	v, ok := r.get(keys...)
	if !ok {
		return nil, nil
	}
	switch x := v.(type) {
	case time.Time:
		d := date.New(x.Year(), x.Month(), x.Day())
		return &d, nil
	case string:
		if x == "" {
			return nil, nil
		}
		if len(x) > len(date.Layout) {
			x = x[:len(date.Layout)]
		}
		d, err := date.Parse(x)
		if err != nil {
			return nil, ValidateDate(keys[0], x, err)
		}
		return &d, nil
	}
	return nil, invalidField(keys[0], v)
}

// timeField accepts time values, RFC 3339 strings, and Unix milliseconds.
func (r Record) timeField(keys ...string) (*time.Time, error) {
	v, ok := r.get(keys...)
	if !ok {
		return nil, nil
	}
	switch x := v.(type) {
	case time.Time:
		return &x, nil
	case string:
		if x == "" {
			return nil, nil
		}
		ts, err := time.Parse(time.RFC3339Nano, x)
		if err != nil {
			return nil, clierr.Newf(clierr.InvalidDate, "invalid %s timestamp %q", keys[0], x).
				WithDetails(map[string]any{"field": keys[0], "input": x})
		}
		return &ts, nil
	}
	if n, ok := number(v); ok {
		ts := time.UnixMilli(int64(n)).UTC()
		return &ts, nil
	}
	return nil, invalidField(keys[0], v)
}

func invalidField(field string, v any) *clierr.Error {
	return clierr.Newf(clierr.InvalidInput, "invalid value for %s: %v", field, v).
		WithDetails(map[string]any{"field": field})
}
