// Package features turns a URL, and opportunistically its HTML, into the
// fixed 10-value vector the classifier is trained on.
package features

import "fmt"

const (
	NumLexical    = 5
	NumStructural = 5
	NumFeatures   = NumLexical + NumStructural
)

// Vector is the feature contract shared by training and serving. Positions
// never move; a failed fetch zero-fills the structural half instead of
// shortening the vector.
type Vector [NumFeatures]float64

// Lexical holds features 1-5, computed from the URL string alone.
type Lexical [NumLexical]float64

// Structural holds features 6-10, computed from page markup.
type Structural [NumStructural]float64

// Names lists the features in vector order.
var Names = [NumFeatures]string{
	"url_length",
	"dot_count",
	"has_at_symbol",
	"is_https",
	"is_ip_host",
	"form_count",
	"password_input_count",
	"iframe_count",
	"external_link_count",
	"suspicious_script_flag",
}

// Combine lays lexical then structural features out as one Vector.
func Combine(lex Lexical, st Structural) Vector {
	var v Vector
	copy(v[:NumLexical], lex[:])
	copy(v[NumLexical:], st[:])
	return v
}

// FromSlice converts a slice of exactly NumFeatures values.
func FromSlice(xs []float64) (Vector, error) {
	var v Vector
	if len(xs) != NumFeatures {
		return v, fmt.Errorf("feature vector has %d values, want %d", len(xs), NumFeatures)
	}
	copy(v[:], xs)
	return v, nil
}

// Slice returns the values as a fresh slice.
func (v Vector) Slice() []float64 {
	out := make([]float64, NumFeatures)
	copy(out, v[:])
	return out
}

// Map keys the values by feature name.
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, NumFeatures)
	for i, name := range Names {
		m[name] = v[i]
	}
	return m
}

// ColumnName is the tabular column for position i (0-based): feature_1..feature_10.
func ColumnName(i int) string {
	return fmt.Sprintf("feature_%d", i+1)
}
