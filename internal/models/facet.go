package models

// Facet is one of the seven hardware/firmware dimensions being checked
type Facet int

const (
	FacetProcessor Facet = iota
	FacetMemory
	FacetStorage
	FacetGraphics
	FacetSecureBoot
	FacetTPM
	FacetOSVersion
)

// Facets lists every facet in evaluation order
var Facets = []Facet{
	FacetProcessor,
	FacetMemory,
	FacetStorage,
	FacetGraphics,
	FacetSecureBoot,
	FacetTPM,
	FacetOSVersion,
}

var facetNames = map[Facet][2]string{
	FacetProcessor:  {"Processor", "Processor"},
	FacetMemory:     {"Memory", "Memory"},
	FacetStorage:    {"Storage", "Storage"},
	FacetGraphics:   {"Graphics", "Graphics"},
	FacetSecureBoot: {"SecureBoot", "Secure Boot"},
	FacetTPM:        {"TPM", "TPM"},
	FacetOSVersion:  {"OSVersion", "OS Version"},
}

// Name returns the facet identifier, e.g. "SecureBoot"
func (f Facet) Name() string {
	if n, ok := facetNames[f]; ok {
		return n[0]
	}
	return "Unknown"
}

// DisplayName returns the human readable name, e.g. "Secure Boot"
func (f Facet) DisplayName() string {
	if n, ok := facetNames[f]; ok {
		return n[1]
	}
	return "Unknown"
}

func (f Facet) String() string {
	return f.Name()
}

// MarshalText encodes the facet by its identifier
func (f Facet) MarshalText() ([]byte, error) {
	return []byte(f.Name()), nil
}

// Verdict is the PASS/FAIL outcome of a single facet
type Verdict string

const (
	VerdictPass Verdict = "PASS"
	VerdictFail Verdict = "FAIL"
)

// VerdictOf maps a predicate outcome to a verdict
func VerdictOf(pass bool) Verdict {
	if pass {
		return VerdictPass
	}
	return VerdictFail
}

// OverallVerdict is derived from all facet verdicts
type OverallVerdict string

const (
	Compatible    OverallVerdict = "COMPATIBLE"
	NotCompatible OverallVerdict = "NOT_COMPATIBLE"
)
