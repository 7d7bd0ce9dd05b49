package items

import "math"

// FieldEvaluation is the validator's judgement of one normalized field.
type FieldEvaluation struct {
	SourceColumns []string `json:"source_columns"`
	SourceValue   string   `json:"source_value"`
	JSONValue     string   `json:"json_value"`
	FieldScore    float64  `json:"field_score"`
	Comment       string   `json:"comment"`
}

type RecordEvaluation struct {
	Index        int                        `json:"index"`
	SourceRow    string                     `json:"source_row"`
	OverallScore float64                    `json:"overall_score"`
	Fields       map[string]FieldEvaluation `json:"fields"`
}

func ClampScore(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Finalize clamps field scores, clears comments on perfect scores and sets
// OverallScore to the arithmetic mean of the field scores.
func (r *RecordEvaluation) Finalize() {
	if r == nil {
		return
	}
	if len(r.Fields) == 0 {
		r.OverallScore = 0
		return
	}
	sum := 0.0
	for name, f := range r.Fields {
		f.FieldScore = ClampScore(f.FieldScore)
		if f.FieldScore == 1 {
			f.Comment = ""
		}
		if f.SourceColumns == nil {
			f.SourceColumns = []string{}
		}
		r.Fields[name] = f
		sum += f.FieldScore
	}
	r.OverallScore = sum / float64(len(r.Fields))
}

// Record rebuilds the normalized record from the evaluated json values.
func (r RecordEvaluation) Record() NormalizedRecord {
	out := make(NormalizedRecord, len(r.Fields))
	for name, f := range r.Fields {
		out[name] = f.JSONValue
	}
	return out.Normalize()
}
