package store

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DefaultKey is the key the session text is saved under.
const DefaultKey = "advanced_text_autosave"

// Record is the persisted session state.
type Record struct {
	Text string
}

// Store loads and saves a Record.
type Store interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, rec Record) error
}

// MarshalRecord encodes rec as {"text": ...}.
func MarshalRecord(rec Record) ([]byte, error) {
	return sjson.SetBytes([]byte(`{}`), "text", rec.Text)
}

// UnmarshalRecord decodes data produced by MarshalRecord. Unknown fields are
// ignored; a missing text field decodes as empty text.
func UnmarshalRecord(data []byte) (Record, error) {
	if !gjson.ValidBytes(data) {
		return Record{}, fmt.Errorf("%w: malformed JSON", ErrInvalidRecord)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Record{}, fmt.Errorf("%w: want object, got %s", ErrInvalidRecord, root.Type)
	}
	text := root.Get("text")
	if text.Exists() && text.Type != gjson.String {
		return Record{}, fmt.Errorf("%w: text is %s", ErrInvalidRecord, text.Type)
	}
	return Record{Text: text.String()}, nil
}
