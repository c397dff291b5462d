package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/raysh454/phishscan/internal/scoring"
)

// CLIArgs are the command-line arguments of the predict command.
type CLIArgs struct {
	// URL is the address to score. It must carry a scheme and host.
	URL string

	// JSON prints the full result as JSON instead of the text report.
	JSON bool

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns CLIArgs. Use in tests by passing
// arbitrary slices. The function is deterministic and does not read os.Args.
func ParseArgs(args []string) (*CLIArgs, error) {
	fs := flag.NewFlagSet("phishscan", flag.ContinueOnError)
	var (
		url     = fs.String("url", "", "URL to scan (required)")
		jsonOut = fs.Bool("json", false, "Print the result as JSON")
	)

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if strings.TrimSpace(*url) == "" {
		return nil, fmt.Errorf("missing required --url argument")
	}

	return &CLIArgs{
		URL:     strings.TrimSpace(*url),
		JSON:    *jsonOut,
		RawArgs: args,
	}, nil
}

// PrintResult writes the verdict for res. The text report is:
//
//	URL: <url>
//	Score (phishing prob): <score, 2dp>
//	Label: <LABEL>
//	Explanation: <explanation>
func PrintResult(w io.Writer, args *CLIArgs, res *scoring.Result) error {
	if args.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	label := strings.ToUpper(res.Label)
	if res.Label == scoring.LabelPhishing {
		label = color.New(color.FgRed, color.Bold).Sprint(label)
	} else {
		label = color.New(color.FgGreen).Sprint(label)
	}

	_, err := fmt.Fprintf(w, "URL: %s\nScore (phishing prob): %.2f\nLabel: %s\nExplanation: %s\n",
		args.URL, res.Score, label, res.Explanation)
	return err
}
