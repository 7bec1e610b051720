package importer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/starford/raido/internal/models"
)

// Placeholders substituted for absent scalar fields.
const (
	PlaceholderTitle  = "Untitled"
	PlaceholderClient = "Unassigned"
)

// Column layouts. Export writes exactly these headers; import maps columns
// by header name so reordered files still round-trip.
var (
	NoteHeader      = []string{"id", "title", "client", "date", "meeting_type", "pre_notes_html", "content_html", "next_steps_html", "next_tasks_json", "created_at", "updated_at"}
	QuickNoteHeader = []string{"id", "title", "client", "date", "content_html", "created_at", "updated_at"}
	TaskHeader      = []string{"id", "title", "client", "bucket", "order", "done", "created_at"}
)

// Defaults supplies the values substituted for absent row fields.
type Defaults struct {
	Now   func() time.Time
	NewID func() string
}

// row is one decoded CSV record with header-based field access.
type row struct {
	cols map[string]int
	rec  []string
}

func (r row) get(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.rec) {
		return ""
	}
	return r.rec[i]
}

func readRows(r io.Reader) ([]row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("importer: read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[h] = i
	}

	var out []row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("importer: read row: %w", err)
		}
		out = append(out, row{cols: cols, rec: rec})
	}
}

func (d Defaults) id(raw string) string {
	if raw != "" {
		return raw
	}
	return d.NewID()
}

func (d Defaults) title(raw string) string {
	if raw != "" {
		return raw
	}
	return PlaceholderTitle
}

func (d Defaults) client(raw string) string {
	if raw != "" {
		return raw
	}
	return PlaceholderClient
}

func (d Defaults) date(raw string) string {
	if raw != "" {
		return raw
	}
	return d.Now().Format("2006-01-02")
}

func (d Defaults) timestamp(raw string) time.Time {
	if raw != "" {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return t
		}
	}
	return d.Now()
}

// DecodeNotes decodes a note CSV batch, defaulting every absent field.
func DecodeNotes(r io.Reader, d Defaults) ([]models.Note, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	out := make([]models.Note, 0, len(rows))
	for _, rw := range rows {
		mt := models.MeetingType(rw.get("meeting_type"))
		if mt != models.MeetingClient && mt != models.MeetingInternal {
			mt = models.MeetingClient
		}
		var tasks []models.ChecklistItem
		if raw := rw.get("next_tasks_json"); raw != "" {
			// Defective JSON degrades to an empty checklist.
			_ = json.Unmarshal([]byte(raw), &tasks)
		}
		out = append(out, models.Note{
			ID:            d.id(rw.get("id")),
			Title:         d.title(rw.get("title")),
			Client:        d.client(rw.get("client")),
			Date:          d.date(rw.get("date")),
			MeetingType:   mt,
			PreNotesHTML:  rw.get("pre_notes_html"),
			ContentHTML:   rw.get("content_html"),
			NextStepsHTML: rw.get("next_steps_html"),
			NextTasks:     tasks,
			CreatedAt:     d.timestamp(rw.get("created_at")),
			UpdatedAt:     d.timestamp(rw.get("updated_at")),
		})
	}
	return out, nil
}

// DecodeQuickNotes decodes a quick-note CSV batch.
func DecodeQuickNotes(r io.Reader, d Defaults) ([]models.QuickNote, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	out := make([]models.QuickNote, 0, len(rows))
	for _, rw := range rows {
		out = append(out, models.QuickNote{
			ID:          d.id(rw.get("id")),
			Title:       d.title(rw.get("title")),
			Client:      d.client(rw.get("client")),
			Date:        d.date(rw.get("date")),
			ContentHTML: rw.get("content_html"),
			CreatedAt:   d.timestamp(rw.get("created_at")),
			UpdatedAt:   d.timestamp(rw.get("updated_at")),
		})
	}
	return out, nil
}

// DecodeTasks decodes a task CSV batch.
func DecodeTasks(r io.Reader, d Defaults) ([]models.Task, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	out := make([]models.Task, 0, len(rows))
	for _, rw := range rows {
		bucket := models.Bucket(rw.get("bucket"))
		switch bucket {
		case models.BucketToday, models.BucketWeek, models.BucketNone:
		default:
			bucket = models.BucketNone
		}
		var order *int
		if raw := rw.get("order"); raw != "" {
			if v, err := strconv.Atoi(raw); err == nil {
				order = &v
			}
		}
		out = append(out, models.Task{
			ID:        d.id(rw.get("id")),
			Title:     d.title(rw.get("title")),
			Client:    d.client(rw.get("client")),
			Bucket:    bucket,
			Order:     order,
			Done:      rw.get("done") == "true",
			CreatedAt: d.timestamp(rw.get("created_at")),
		})
	}
	return out, nil
}

// EncodeNotes writes notes as CSV with the canonical header. Round-trip
// through DecodeNotes is exact for every field.
func EncodeNotes(w io.Writer, notes []models.Note) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(NoteHeader); err != nil {
		return fmt.Errorf("importer: write header: %w", err)
	}
	for _, n := range notes {
		tasksJSON := ""
		if len(n.NextTasks) > 0 {
			b, err := json.Marshal(n.NextTasks)
			if err != nil {
				return fmt.Errorf("importer: encode checklist: %w", err)
			}
			tasksJSON = string(b)
		}
		rec := []string{
			n.ID, n.Title, n.Client, n.Date, string(n.MeetingType),
			n.PreNotesHTML, n.ContentHTML, n.NextStepsHTML, tasksJSON,
			n.CreatedAt.Format(time.RFC3339Nano), n.UpdatedAt.Format(time.RFC3339Nano),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("importer: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeQuickNotes writes quick notes as CSV.
func EncodeQuickNotes(w io.Writer, notes []models.QuickNote) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(QuickNoteHeader); err != nil {
		return fmt.Errorf("importer: write header: %w", err)
	}
	for _, n := range notes {
		rec := []string{
			n.ID, n.Title, n.Client, n.Date, n.ContentHTML,
			n.CreatedAt.Format(time.RFC3339Nano), n.UpdatedAt.Format(time.RFC3339Nano),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("importer: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeTasks writes tasks as CSV.
func EncodeTasks(w io.Writer, tasks []models.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TaskHeader); err != nil {
		return fmt.Errorf("importer: write header: %w", err)
	}
	for _, t := range tasks {
		order := ""
		if t.Order != nil {
			order = strconv.Itoa(*t.Order)
		}
		rec := []string{
			t.ID, t.Title, t.Client, string(t.Bucket), order,
			strconv.FormatBool(t.Done), t.CreatedAt.Format(time.RFC3339Nano),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("importer: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
