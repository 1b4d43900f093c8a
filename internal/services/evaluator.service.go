package services

import (
	"fmt"
	"strconv"
	"strings"

	"readiness/internal/models"
)

// Minimum requirements. These are fixed by the upgrade and not configurable.
const (
	MinClockSpeedGHz = 1.0
	MinLogicalCores  = 2
	MinMemoryGB      = 4
	MinFreeStorageGB = 64
	RequiredTPM      = "2.0"
	MinOSVersion     = "10.0.19041"
	MinOSBuild       = 19041
)

const (
	unknownGraphics   = "Unknown"
	tpmMissingDetail  = "Not Found or Not 2.0"
	tpmMissingLogging = "NotFoundOrNot2.0"
	secureBootOff     = "UEFI/Secure Boot not enabled"
	unknownOSVersion  = "Unknown"
)

// Evaluate applies the per-facet predicates to facts and aggregates the
// verdicts. It is a pure function of facts.
func Evaluate(facts models.HostFacts) *models.EvaluationResult {
	results := []models.FacetResult{
		EvaluateProcessor(facts.Processor),
		EvaluateMemory(facts.Memory),
		EvaluateStorage(facts.Storage),
		EvaluateGraphics(facts.Graphics),
		EvaluateSecureBoot(facts.SecureBoot),
		EvaluateTPM(facts.TPM),
		EvaluateOSVersion(facts.OSVersion),
	}

	failing := []string{}
	for _, r := range results {
		if !r.Passed() {
			failing = append(failing, r.Facet.DisplayName())
		}
	}

	result := &models.EvaluationResult{
		Facets:       results,
		Failing:      failing,
		ReturnReason: ReturnReason(failing),
		Logging:      BuildLogging(facts, results),
	}
	if len(failing) == 0 {
		result.Overall = models.Compatible
		result.ReturnCode = 0
		result.ReturnResult = models.ResultCapable
	} else {
		result.Overall = models.NotCompatible
		result.ReturnCode = 1
		result.ReturnResult = models.ResultNotCapable
	}
	return result
}

// ReturnReason joins failing display names, each followed by ", "
func ReturnReason(failing []string) string {
	var b strings.Builder
	for _, name := range failing {
		b.WriteString(name)
		b.WriteString(", ")
	}
	return b.String()
}

// EvaluateProcessor passes with a clock of at least 1 GHz and 2 logical cores
func EvaluateProcessor(p *models.ProcessorInfo) models.FacetResult {
	var info models.ProcessorInfo
	if p != nil {
		info = *p
	}
	ghz := info.ClockSpeedGHz()
	pass := p != nil && ghz >= MinClockSpeedGHz && info.LogicalCores >= MinLogicalCores
	return models.FacetResult{
		Facet:   models.FacetProcessor,
		Verdict: models.VerdictOf(pass),
		Detail:  fmt.Sprintf("%s GHz, %d Cores", FormatNumber(ghz), info.LogicalCores),
	}
}

// EvaluateMemory passes with at least 4 GB installed
func EvaluateMemory(m *models.MemoryInfo) models.FacetResult {
	var gb float64
	if m != nil {
		gb = m.TotalGB()
	}
	return models.FacetResult{
		Facet:   models.FacetMemory,
		Verdict: models.VerdictOf(m != nil && gb >= MinMemoryGB),
		Detail:  FormatNumber(gb) + " GB",
	}
}

// EvaluateStorage passes with at least 64 GB free on the system volume
func EvaluateStorage(s *models.StorageInfo) models.FacetResult {
	var gb float64
	if s != nil {
		gb = s.FreeGB()
	}
	return models.FacetResult{
		Facet:   models.FacetStorage,
		Verdict: models.VerdictOf(s != nil && gb >= MinFreeStorageGB),
		Detail:  FormatNumber(gb) + " GB free",
	}
}

// EvaluateGraphics only checks that a display adapter is enumerable
func EvaluateGraphics(g *models.GraphicsInfo) models.FacetResult {
	detail := unknownGraphics
	if g != nil && g.Name != "" {
		detail = g.Name
	}
	return models.FacetResult{
		Facet:   models.FacetGraphics,
		Verdict: models.VerdictOf(g != nil),
		Detail:  detail,
	}
}

// EvaluateSecureBoot passes when the state query succeeded and reports true
func EvaluateSecureBoot(s *models.SecureBootInfo) models.FacetResult {
	pass := s != nil && s.Enabled
	detail := secureBootOff
	if pass {
		detail = "Enabled"
	}
	return models.FacetResult{
		Facet:   models.FacetSecureBoot,
		Verdict: models.VerdictOf(pass),
		Detail:  detail,
	}
}

// EvaluateTPM passes when a TPM is present and its version contains "2.0"
func EvaluateTPM(t *models.TPMInfo) models.FacetResult {
	detail := tpmMissingDetail
	if t != nil && t.SpecVersion != "" {
		detail = t.SpecVersion
	}
	return models.FacetResult{
		Facet:   models.FacetTPM,
		Verdict: models.VerdictOf(t != nil && strings.Contains(t.SpecVersion, RequiredTPM)),
		Detail:  detail,
	}
}

// EvaluateOSVersion compares the version string lexically and the build numerically
func EvaluateOSVersion(o *models.OSVersionInfo) models.FacetResult {
	version, build := osVersionParts(o)
	pass := o != nil && o.Version >= MinOSVersion && o.Build >= MinOSBuild
	return models.FacetResult{
		Facet:   models.FacetOSVersion,
		Verdict: models.VerdictOf(pass),
		Detail:  fmt.Sprintf("Windows %s Build %d", version, build),
	}
}

// BuildLogging renders the fixed-order logging string of the result document
func BuildLogging(facts models.HostFacts, results []models.FacetResult) string {
	verdicts := make(map[models.Facet]models.Verdict, len(results))
	for _, r := range results {
		verdicts[r.Facet] = r.Verdict
	}

	var (
		storageGB float64
		memoryGB  float64
		proc      models.ProcessorInfo
		graphics  = unknownGraphics
		tpm       = tpmMissingLogging
		boot      = "NotEnabled"
	)
	if facts.Storage != nil {
		storageGB = facts.Storage.FreeGB()
	}
	if facts.Memory != nil {
		memoryGB = facts.Memory.TotalGB()
	}
	if facts.Processor != nil {
		proc = *facts.Processor
	}
	if facts.Graphics != nil && facts.Graphics.Name != "" {
		graphics = facts.Graphics.Name
	}
	if facts.TPM != nil && facts.TPM.SpecVersion != "" {
		tpm = facts.TPM.SpecVersion
	}
	if facts.SecureBoot != nil && facts.SecureBoot.Enabled {
		boot = "Enabled"
	}
	osVersion, osBuild := osVersionParts(facts.OSVersion)

	var b strings.Builder
	fmt.Fprintf(&b, "Storage: FreeSpace=%sGB. %s; ", FormatNumber(storageGB), verdicts[models.FacetStorage])
	fmt.Fprintf(&b, "Memory: %sGB. %s; ", FormatNumber(memoryGB), verdicts[models.FacetMemory])
	fmt.Fprintf(&b, "TPM: %s. %s; ", tpm, verdicts[models.FacetTPM])
	fmt.Fprintf(&b, "Processor: {AddressWidth=%d; MaxClockSpeed=%d; NumberOfLogicalCores=%d; Manufacturer=%s; Caption=%s; }. %s; ",
		proc.AddressWidth, proc.MaxClockSpeedMHz, proc.LogicalCores, proc.Manufacturer, proc.Caption, verdicts[models.FacetProcessor])
	fmt.Fprintf(&b, "SecureBoot: %s. %s; ", boot, verdicts[models.FacetSecureBoot])
	fmt.Fprintf(&b, "OSVersion: Windows %s %d. %s; ", osVersion, osBuild, verdicts[models.FacetOSVersion])
	fmt.Fprintf(&b, "Graphics: %s. %s;", graphics, verdicts[models.FacetGraphics])
	return b.String()
}

// FormatNumber prints a rounded value with at most two decimals and no
// trailing zeros: 4 -> "4", 23.9 -> "23.9", 1.65 -> "1.65"
func FormatNumber(v float64) string {
	return strconv.FormatFloat(models.Round2(v), 'f', -1, 64)
}

func osVersionParts(o *models.OSVersionInfo) (string, int) {
	if o == nil || o.Version == "" {
		return unknownOSVersion, 0
	}
	return o.Version, o.Build
}
