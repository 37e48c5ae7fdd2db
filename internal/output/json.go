package output

import (
	"encoding/json"
	"io"

	"github.com/covarr-net/smdp/internal/analysis"
)

// JSONWriter writes results as indented JSON objects.
type JSONWriter struct {
	enc *json.Encoder
}

// NewJSONWriter creates a new JSON writer.
func NewJSONWriter(w io.Writer) *JSONWriter {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return &JSONWriter{enc: enc}
}

// Write encodes one result.
func (jw *JSONWriter) Write(res *analysis.Result) error {
	return jw.enc.Encode(res)
}

// Flush is a no-op; the encoder writes through.
func (jw *JSONWriter) Flush() error {
	return nil
}
