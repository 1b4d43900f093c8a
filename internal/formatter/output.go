package formatter

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"readiness/internal/models"
	"readiness/internal/services"

	"github.com/fatih/color"
)

const separatorWidth = 50

// DisplayResults prints the console report: banner, one line per facet,
// overall status and the JSON document
func DisplayResults(w io.Writer, result *models.EvaluationResult) error {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)

	cyan.Fprintln(w, "Windows 11 Compatibility Check")
	fmt.Fprintln(w, strings.Repeat("=", separatorWidth))

	for _, fr := range result.Facets {
		tag := green.Sprint("[PASS]")
		if !fr.Passed() {
			tag = red.Sprint("[FAIL]")
		}
		fmt.Fprintf(w, "%s %s: %s\n", tag, fr.Facet.DisplayName(), fr.Detail)
	}

	fmt.Fprintln(w, strings.Repeat("-", separatorWidth))
	if result.Compatible() {
		green.Fprintln(w, "Overall Status: COMPATIBLE")
	} else {
		red.Fprintln(w, "Overall Status: NOT COMPATIBLE")
		fmt.Fprintf(w, "Failing checks: %s\n", color.YellowString(strings.Join(result.Failing, ", ")))
	}
	fmt.Fprintln(w)

	return services.EncodeDocument(w, services.NewDocument(result))
}

// DisplayDocument prints only the JSON document, for scripted callers
func DisplayDocument(w io.Writer, result *models.EvaluationResult) error {
	return services.EncodeDocument(w, services.NewDocument(result))
}

// Pause blocks until a line (or EOF) is read from r
func Pause(w io.Writer, r io.Reader) {
	fmt.Fprint(w, color.HiBlackString("Press Enter to exit..."))
	bufio.NewReader(r).ReadString('\n')
	fmt.Fprintln(w)
}
