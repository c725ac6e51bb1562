package cv

// ScoreReport is the outcome of comparing two profiles. Composite is the weighted
// sum of the per-field scores, rounded to three decimals; fields absent from both
// profiles have no entry in Fields.
type ScoreReport struct {
	Composite float64           `json:"composite"`
	Fields    map[Field]float64 `json:"fields"`
}

// Score returns the similarity computed for f and whether f was scored.
func (r ScoreReport) Score(f Field) (float64, bool) {
	s, ok := r.Fields[f]
	return s, ok
}

// ScoredFields returns the scored fields in canonical order.
func (r ScoreReport) ScoredFields() []Field {
	out := make([]Field, 0, len(r.Fields))
	for _, f := range canonicalFields {
		if _, ok := r.Fields[f]; ok {
			out = append(out, f)
		}
	}
	return out
}
