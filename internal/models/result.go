package models

const (
	ResultCapable    = "CAPABLE"
	ResultNotCapable = "NOT CAPABLE"
)

// FacetResult is the (facet, verdict, detail) triple for one check
type FacetResult struct {
	Facet   Facet   `json:"facet"`
	Verdict Verdict `json:"verdict"`
	Detail  string  `json:"detail"`
}

// Passed reports whether the facet passed
func (r FacetResult) Passed() bool {
	return r.Verdict == VerdictPass
}

// EvaluationResult is the aggregate of a single evaluation pass. It is built once
// and not mutated afterwards.
type EvaluationResult struct {
	Facets       []FacetResult  `json:"facets"`
	Failing      []string       `json:"failing"`
	Overall      OverallVerdict `json:"overall"`
	ReturnCode   int            `json:"return_code"`
	ReturnResult string         `json:"return_result"`
	ReturnReason string         `json:"return_reason"`
	Logging      string         `json:"logging"`
}

// Compatible reports whether every facet passed
func (r *EvaluationResult) Compatible() bool {
	return r.Overall == Compatible
}

// Verdict returns the verdict recorded for a facet
func (r *EvaluationResult) Verdict(f Facet) Verdict {
	for _, fr := range r.Facets {
		if fr.Facet == f {
			return fr.Verdict
		}
	}
	return VerdictFail
}

// Document is the compact record consumed by fleet management
type Document struct {
	ReturnCode   int    `json:"returnCode"`
	ReturnReason string `json:"returnReason"`
	Logging      string `json:"logging"`
	ReturnResult string `json:"returnResult"`
}
