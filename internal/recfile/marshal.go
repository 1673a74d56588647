package recfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dkazmin/macroplay/internal/event"
)

// Event type tags on disk.
const (
	typeMoveRelative = "move_relative"
	typeClick        = "click"
	typeScroll       = "scroll"
)

// mouseRecord is the on-disk shape shared by the three pointer variants.
// Unused fields are omitted per variant; pointers distinguish an absent
// field from a legitimate zero.
type mouseRecord struct {
	Type      string  `json:"type"`
	Button    string  `json:"button,omitempty"`
	Pressed   *bool   `json:"pressed,omitempty"`
	DX        *int    `json:"dx,omitempty"`
	DY        *int    `json:"dy,omitempty"`
	Timestamp float64 `json:"timestamp"`
}

type keyRecord struct {
	Type      string  `json:"type"`
	Key       string  `json:"key"`
	Timestamp float64 `json:"timestamp"`
}

type metadataRecord struct {
	ID            string `json:"id,omitempty"`
	MouseCount    int    `json:"mouse_events_count"`
	KeyboardCount int    `json:"keyboard_events_count"`
	RecordingMode string `json:"recording_mode"`
}

type fileRecord struct {
	MouseEvents    *[]mouseRecord  `json:"mouse_events"`
	KeyboardEvents *[]keyRecord    `json:"keyboard_events"`
	TotalDuration  *float64        `json:"total_duration"`
	RecordDate     string          `json:"record_date,omitempty"`
	Metadata       *metadataRecord `json:"metadata,omitempty"`
}

func encodePointer(p event.Pointer) (mouseRecord, error) {
	switch e := p.(type) {
	case event.MoveRelative:
		dx, dy := e.DX, e.DY
		return mouseRecord{Type: typeMoveRelative, DX: &dx, DY: &dy, Timestamp: e.T}, nil
	case event.Click:
		pressed := e.Pressed
		return mouseRecord{Type: typeClick, Button: string(e.Button), Pressed: &pressed, Timestamp: e.T}, nil
	case event.Scroll:
		dx, dy := e.DX, e.DY
		return mouseRecord{Type: typeScroll, DX: &dx, DY: &dy, Timestamp: e.T}, nil
	default:
		return mouseRecord{}, fmt.Errorf("unknown pointer event type %T", p)
	}
}

func decodePointer(path string, rec mouseRecord) (event.Pointer, error) {
	if rec.Timestamp < 0 {
		return nil, corrupt(path, fmt.Sprintf("negative timestamp %v", rec.Timestamp), nil)
	}
	switch rec.Type {
	case typeMoveRelative:
		if rec.DX == nil || rec.DY == nil {
			return nil, corrupt(path, "move_relative event missing dx/dy", nil)
		}
		return event.MoveRelative{DX: *rec.DX, DY: *rec.DY, T: rec.Timestamp}, nil
	case typeClick:
		if rec.Pressed == nil {
			return nil, corrupt(path, "click event missing pressed", nil)
		}
		b := event.Button(rec.Button)
		if !b.Valid() {
			return nil, corrupt(path, fmt.Sprintf("click event has unknown button %q", rec.Button), nil)
		}
		return event.Click{Button: b, Pressed: *rec.Pressed, T: rec.Timestamp}, nil
	case typeScroll:
		if rec.DX == nil || rec.DY == nil {
			return nil, corrupt(path, "scroll event missing dx/dy", nil)
		}
		return event.Scroll{DX: *rec.DX, DY: *rec.DY, T: rec.Timestamp}, nil
	default:
		return nil, corrupt(path, fmt.Sprintf("unknown mouse event type %q", rec.Type), nil)
	}
}

func decodeKey(path string, rec keyRecord) (event.Key, error) {
	if rec.Timestamp < 0 {
		return event.Key{}, corrupt(path, fmt.Sprintf("negative timestamp %v", rec.Timestamp), nil)
	}
	kind := event.KeyKind(rec.Type)
	if kind != event.KeyPress && kind != event.KeyRelease {
		return event.Key{}, corrupt(path, fmt.Sprintf("unknown keyboard event type %q", rec.Type), nil)
	}
	if rec.Key == "" {
		return event.Key{}, corrupt(path, "keyboard event missing key", nil)
	}
	return event.Key{Kind: kind, Name: rec.Key, T: rec.Timestamp}, nil
}

// Save writes a recording to path, creating the destination directory if
// absent.
func Save(rec *event.Recording, path string) error {
	mouse := make([]mouseRecord, 0, len(rec.Pointer))
	for _, p := range rec.Pointer {
		mr, err := encodePointer(p)
		if err != nil {
			return fmt.Errorf("encode recording: %w", err)
		}
		mouse = append(mouse, mr)
	}
	keys := make([]keyRecord, 0, len(rec.Keys))
	for _, k := range rec.Keys {
		keys = append(keys, keyRecord{Type: string(k.Kind), Key: k.Name, Timestamp: k.T})
	}

	duration := rec.TotalDuration
	file := fileRecord{
		MouseEvents:    &mouse,
		KeyboardEvents: &keys,
		TotalDuration:  &duration,
		RecordDate:     rec.RecordedAt.Format(time.RFC3339),
		Metadata: &metadataRecord{
			ID:            rec.ID,
			MouseCount:    len(mouse),
			KeyboardCount: len(keys),
			RecordingMode: rec.Mode,
		},
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("encode recording: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create recording directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write recording: %w", err)
	}
	return nil
}

// Load reads a recording from path. A missing file is a NOT_FOUND StoreError;
// unparseable content or missing required fields is a CORRUPT StoreError.
func Load(path string) (*event.Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(path, err)
		}
		return nil, fmt.Errorf("read recording: %w", err)
	}

	var file fileRecord
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, corrupt(path, "invalid JSON", err)
	}
	if file.MouseEvents == nil {
		return nil, corrupt(path, "missing mouse_events", nil)
	}
	if file.KeyboardEvents == nil {
		return nil, corrupt(path, "missing keyboard_events", nil)
	}
	if file.TotalDuration == nil {
		return nil, corrupt(path, "missing total_duration", nil)
	}

	rec := &event.Recording{
		Pointer:       make([]event.Pointer, 0, len(*file.MouseEvents)),
		Keys:          make([]event.Key, 0, len(*file.KeyboardEvents)),
		TotalDuration: *file.TotalDuration,
		Mode:          event.Mode,
	}
	for _, mr := range *file.MouseEvents {
		p, err := decodePointer(path, mr)
		if err != nil {
			return nil, err
		}
		rec.Pointer = append(rec.Pointer, p)
	}
	for _, kr := range *file.KeyboardEvents {
		k, err := decodeKey(path, kr)
		if err != nil {
			return nil, err
		}
		rec.Keys = append(rec.Keys, k)
	}

	if file.RecordDate != "" {
		t, err := time.Parse(time.RFC3339, file.RecordDate)
		if err != nil {
			return nil, corrupt(path, "invalid record_date", err)
		}
		rec.RecordedAt = t
	}
	if file.Metadata != nil {
		rec.ID = file.Metadata.ID
		if file.Metadata.RecordingMode != "" {
			rec.Mode = file.Metadata.RecordingMode
		}
	}
	return rec, nil
}
