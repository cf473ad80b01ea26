package database

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
)

// DocumentStore loads and saves whole JSON documents keyed by a logical name.
// There are no partial updates: every Save replaces the full document.
type DocumentStore interface {
	// Load decodes the named document into out. When the document does not
	// exist yet, def is persisted and decoded into out instead.
	Load(ctx context.Context, name string, out any, def any) error
	Save(ctx context.Context, name string, v any) error
}

var documentName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

func validateName(name string) error {
	if !documentName.MatchString(name) {
		return fmt.Errorf("invalid document name %q", name)
	}
	return nil
}

// assign resets out and copies def into it through a JSON round trip, so
// callers never share the default value they passed in.
func assign(out, def any) error {
	if rv := reflect.ValueOf(out); rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv.Elem().Set(reflect.Zero(rv.Elem().Type()))
	}
	b, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("encode default: %w", err)
	}
	return json.Unmarshal(b, out)
}

// decodeOrDefault decodes raw into out, falling back to def when raw is not a
// valid document. Reports whether the fallback was used.
func decodeOrDefault(raw []byte, out, def any) (bool, error) {
	if err := json.Unmarshal(raw, out); err == nil {
		return false, nil
	}
	return true, assign(out, def)
}
