// SPDX-License-Identifier: EPL-2.0

package regions

import (
	"io"

	"github.com/fxamacker/cbor/v2"
)

// Record is the region shape exchanged with the persistence layer.
type Record struct {
	ID     string   `json:"id" cbor:"id"`
	Start  float64  `json:"start" cbor:"start"`
	End    float64  `json:"end" cbor:"end"`
	Labels []string `json:"labels,omitempty" cbor:"labels,omitempty"`
	Color  string   `json:"color,omitempty" cbor:"color,omitempty"`
}

// Options converts the record back into creation options.
func (rec Record) Options() Options {
	return Options{ID: rec.ID, Start: rec.Start, End: rec.End, Labels: rec.Labels, Color: rec.Color}
}

// Encode writes records as one CBOR array.
func Encode(w io.Writer, recs []Record) error {
	return cbor.NewEncoder(w).Encode(recs)
}

func Decode(r io.Reader) ([]Record, error) {
	var recs []Record
	if err := cbor.NewDecoder(r).Decode(&recs); err != nil {
		return nil, err
	}
	return recs, nil
}
