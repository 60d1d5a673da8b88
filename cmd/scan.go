package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Juggy247/Security-Scanner-Project/ml"
	"github.com/Juggy247/Security-Scanner-Project/scanner"
)

var scanJSON bool
var scanEnhanced bool

var scanCmd = &cobra.Command{
	Use:   "scan URL",
	Short: "Run a one-off assessment of a URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		s, err := buildScanner(store)
		if err != nil {
			return err
		}

		report := s.Scan(ctx, args[0])
		if !report.Success {
			if scanJSON {
				return printJSON(report)
			}
			color.Red("scan failed: %s", report.Error)
			return fmt.Errorf("scan failed")
		}

		if scanEnhanced {
			return printEnhanced(cmd, args[0], report)
		}

		verdict := scanner.ComputeVerdict(report)
		if scanJSON {
			return printJSON(struct {
				Report  *scanner.Report `json:"report"`
				Verdict scanner.Verdict `json:"verdict"`
			}{report, verdict})
		}

		printVerdict(verdict)
		return nil
	},
}

func init() {
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "emit the full report as JSON")
	scanCmd.Flags().BoolVar(&scanEnhanced, "enhanced", false, "fuse the heuristic verdict with the classifier")
}

func printEnhanced(cmd *cobra.Command, url string, report *scanner.Report) error {
	probability := ml.TraditionalScore(scanner.ComputeVerdict(report).Label)
	if classifier := buildClassifier(); classifier != nil {
		p, err := classifier.Predict(cmd.Context(), ml.ExtractFeatures(url, report))
		if err != nil {
			color.Yellow("classifier unavailable, using heuristic score: %v", err)
		} else {
			probability = p
		}
	}

	enhanced := ml.EnhanceVerdict(report, probability, viper.GetFloat64("ml.weight"))
	if scanJSON {
		return printJSON(struct {
			Report  *scanner.Report    `json:"report"`
			Verdict ml.EnhancedVerdict `json:"verdict"`
		}{report, enhanced})
	}

	verdictColor(enhanced.Label).Printf("%s\n", enhanced.Label)
	fmt.Println(enhanced.Message)
	fmt.Printf("combined score: %.2f (heuristic %.2f, classifier %.2f, agree=%v, confidence=%s)\n",
		enhanced.CombinedScore, enhanced.TraditionalScore, enhanced.MLScore,
		enhanced.MethodsAgree, enhanced.ConfidenceLevel)
	printIssueTable(enhanced.Issues, enhanced.TotalIssues)
	return nil
}

func printVerdict(v scanner.Verdict) {
	verdictColor(v.Label).Printf("%s\n", v.Label)
	fmt.Println(v.Message)
	printIssueTable(v.Issues, v.TotalIssues)
}

func printIssueTable(issues map[scanner.Severity][]scanner.Issue, total int) {
	fmt.Printf("issues: %d\n", total)
	for _, sev := range []scanner.Severity{
		scanner.SeverityCritical, scanner.SeverityHigh,
		scanner.SeverityMedium, scanner.SeverityLow,
	} {
		for _, issue := range issues[sev] {
			severityColor(sev).Printf("  [%s] ", sev)
			fmt.Printf("%s: %s\n", issue.Description, issue.Risk)
		}
	}
}

func verdictColor(label scanner.VerdictLabel) *color.Color {
	switch label {
	case scanner.VerdictSuspicious:
		return color.New(color.FgRed, color.Bold)
	case scanner.VerdictPotentiallySuspicious:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgGreen, color.Bold)
	}
}

func severityColor(sev scanner.Severity) *color.Color {
	switch sev {
	case scanner.SeverityCritical:
		return color.New(color.FgRed, color.Bold)
	case scanner.SeverityHigh:
		return color.New(color.FgRed)
	case scanner.SeverityMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
