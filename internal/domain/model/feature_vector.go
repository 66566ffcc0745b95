package model

// FeatureVector is the ordered numeric input of the classifier. It is built
// by the feature preparer and cannot be edited afterwards.
type FeatureVector struct {
	schemaVersion string
	names         []string
	values        []float64
}

// NewFeatureVector copies values into a new vector tagged with the schema
// version and feature names it was built against.
func NewFeatureVector(schemaVersion string, names []string, values []float64) FeatureVector {
	v := make([]float64, len(values))
	copy(v, values)
	n := make([]string, len(names))
	copy(n, names)
	return FeatureVector{schemaVersion: schemaVersion, names: n, values: v}
}

// SchemaVersion returns the version of the schema that produced the vector.
func (v FeatureVector) SchemaVersion() string { return v.schemaVersion }

// Len returns the vector width.
func (v FeatureVector) Len() int { return len(v.values) }

// At returns the i-th value.
func (v FeatureVector) At(i int) float64 { return v.values[i] }

// Name returns the i-th feature name, or "" if the vector carries no names.
func (v FeatureVector) Name(i int) string {
	if i < 0 || i >= len(v.names) {
		return ""
	}
	return v.names[i]
}

// Values returns a copy of the values.
func (v FeatureVector) Values() []float64 {
	out := make([]float64, len(v.values))
	copy(out, v.values)
	return out
}

// Names returns a copy of the feature names.
func (v FeatureVector) Names() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

// Equal reports whether both vectors carry the same schema and bit-identical values.
func (v FeatureVector) Equal(other FeatureVector) bool {
	if v.schemaVersion != other.schemaVersion || len(v.values) != len(other.values) {
		return false
	}
	for i := range v.values {
		if v.values[i] != other.values[i] {
			return false
		}
	}
	return true
}
