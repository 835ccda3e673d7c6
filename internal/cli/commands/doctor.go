package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/anosql/internal/cli/config"
	"github.com/leapstack-labs/anosql/internal/cli/output"
	"github.com/leapstack-labs/anosql/pkg/core"
	"github.com/leapstack-labs/anosql/pkg/queries"
)

// Health check statuses.
const (
	statusPass = "pass"
	statusWarn = "warn"
	statusFail = "error"
	statusSkip = "skip"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Offline bool // skip the database connection check
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run a project health check",
		Long: `Check an anosql project for problems.

The doctor command reports:
- Project summary (dialect, queries per kind)
- Health checks grouped by category (Config, Queries, Target)
- Health score (0-100)
- Recommendations for every failing check

It exits with an error when any check fails.`,
		Example: `  # Run health check
  anosql doctor

  # Skip the database connection
  anosql doctor --offline

  # Output as JSON
  anosql doctor -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			out := runDoctor(cmd.Context(), cmdCtx, opts)
			if err := renderDoctor(cmdCtx.Renderer, out); err != nil {
				return err
			}
			if n := out.failed(); n > 0 {
				return fmt.Errorf("%d health checks failed", n)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Offline, "offline", false, "Skip the database connection check")

	return cmd
}

// DoctorOutput is the structured output of the doctor command.
type DoctorOutput struct {
	Summary         ProjectSummary `json:"summary" yaml:"summary"`
	HealthChecks    []HealthCheck  `json:"health_checks" yaml:"health_checks"`
	Score           int            `json:"score" yaml:"score"`
	Recommendations []string       `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
}

// ProjectSummary contains project-level statistics.
type ProjectSummary struct {
	ConfigFile string `json:"config_file,omitempty" yaml:"config_file,omitempty"`
	Dialect    string `json:"dialect" yaml:"dialect"`
	Queries    int    `json:"queries" yaml:"queries"`
	Select     int    `json:"select" yaml:"select"`
	Mutate     int    `json:"mutate" yaml:"mutate"`
	AutoGen    int    `json:"autogen" yaml:"autogen"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Group   string   `json:"group" yaml:"group"`
	Status  string   `json:"status" yaml:"status"`
	Details []string `json:"details,omitempty" yaml:"details,omitempty"`
}

func (o *DoctorOutput) failed() int {
	n := 0
	for _, c := range o.HealthChecks {
		if c.Status == statusFail {
			n++
		}
	}
	return n
}

func runDoctor(ctx context.Context, cmdCtx *CommandContext, opts *DoctorOptions) *DoctorOutput {
	cfg := cmdCtx.Cfg
	out := &DoctorOutput{
		Summary: ProjectSummary{
			ConfigFile: config.GetConfigFileUsed(),
			Dialect:    cfg.Dialect,
		},
	}

	cfgCheck := HealthCheck{ID: "CF01", Name: "Configuration file", Group: "config", Status: statusPass}
	if out.Summary.ConfigFile == "" {
		cfgCheck.Status = statusWarn
		cfgCheck.Details = []string{"no anosql.yaml found, using defaults"}
	}
	out.HealthChecks = append(out.HealthChecks, cfgCheck)

	reg, err := cmdCtx.LoadRegistry()
	loadCheck := HealthCheck{ID: "QF01", Name: "Query files load", Group: "queries", Status: statusPass}
	if err != nil {
		loadCheck.Status = statusFail
		loadCheck.Details = []string{err.Error()}
	}
	out.HealthChecks = append(out.HealthChecks, loadCheck)

	docCheck := HealthCheck{ID: "QD01", Name: "Queries are documented", Group: "queries", Status: statusSkip}
	if reg != nil {
		summarizeQueries(&out.Summary, reg)
		docCheck.Status = statusPass
		for _, q := range reg.Queries() {
			if q.Doc == "" {
				docCheck.Details = append(docCheck.Details, q.Name+" has no documentation")
			}
		}
		if len(docCheck.Details) > 0 {
			docCheck.Status = statusWarn
		}
	}
	out.HealthChecks = append(out.HealthChecks, docCheck)

	dbCheck := HealthCheck{ID: "DB01", Name: "Database reachable", Group: "target", Status: statusSkip}
	if !opts.Offline {
		a, err := cmdCtx.OpenAdapter(ctx)
		if err != nil {
			dbCheck.Status = statusFail
			dbCheck.Details = []string{err.Error()}
		} else {
			_ = a.Close()
			dbCheck.Status = statusPass
		}
	}
	out.HealthChecks = append(out.HealthChecks, dbCheck)

	out.Score = calculateHealthScore(out.HealthChecks)
	out.Recommendations = generateRecommendations(out.HealthChecks)
	return out
}

func summarizeQueries(s *ProjectSummary, reg *queries.Registry) {
	s.Queries = reg.Len()
	for _, q := range reg.Queries() {
		switch q.Kind {
		case core.KindSelect:
			s.Select++
		case core.KindMutate:
			s.Mutate++
		case core.KindAutoGen:
			s.AutoGen++
		}
	}
}

// calculateHealthScore computes a health score from 0-100.
// A failed check costs 40 points; each warning detail costs 5.
func calculateHealthScore(checks []HealthCheck) int {
	score := 100
	for _, check := range checks {
		switch check.Status {
		case statusFail:
			score -= 40
		case statusWarn:
			score -= 5 * max(len(check.Details), 1)
		}
	}
	return max(score, 0)
}

// generateRecommendations returns one recommendation per check that did not pass.
func generateRecommendations(checks []HealthCheck) []string {
	var recommendations []string
	for _, check := range checks {
		if check.Status != statusWarn && check.Status != statusFail {
			continue
		}
		if rec := getRecommendation(check.ID); rec != "" {
			recommendations = append(recommendations, rec)
		}
	}
	return recommendations
}

// getRecommendation returns a recommendation for a specific check.
func getRecommendation(id string) string {
	switch id {
	case "CF01":
		return "Run 'anosql init' to create anosql.yaml"
	case "QF01":
		return "Run 'anosql check' to locate the failing block"
	case "QD01":
		return "Add a comment line under each '-- name:' annotation"
	case "DB01":
		return "Verify the target settings in anosql.yaml or pass --dsn"
	default:
		return ""
	}
}

func renderDoctor(r *output.Renderer, out *DoctorOutput) error {
	if ok, err := r.Structured(out); ok {
		return err
	}
	if r.EffectiveMode() == output.ModeMarkdown {
		renderDoctorMarkdown(r, out)
		return nil
	}
	renderDoctorText(r, out)
	return nil
}

func statusIcon(r *output.Renderer, status string) string {
	styles := r.Styles()
	switch status {
	case statusWarn:
		return styles.Warning.Render("!")
	case statusFail:
		return styles.Error.Render("✗")
	case statusSkip:
		return styles.Muted.Render("-")
	default:
		return styles.Success.Render("✓")
	}
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) {
	styles := r.Styles()

	r.Println(styles.Header.Render("anosql Project Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Println("")

	r.Println(styles.Bold.Render("Project Summary"))
	if out.Summary.ConfigFile != "" {
		r.Printf("   Config: %s\n", out.Summary.ConfigFile)
	}
	r.Printf("   Dialect: %s | Queries: %d (select %d, mutate %d, autogen %d)\n",
		out.Summary.Dialect, out.Summary.Queries, out.Summary.Select, out.Summary.Mutate, out.Summary.AutoGen)
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Bold.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}
		r.Printf("   %s %s: %s\n", statusIcon(r, check.Status), check.ID, check.Name)
		for i, detail := range check.Details {
			if i >= 3 {
				r.Println(styles.Muted.Render(fmt.Sprintf("       ... and %d more", len(check.Details)-3)))
				break
			}
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}
	r.Println("")

	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))

	if len(out.Recommendations) > 0 {
		r.Println("")
		r.Println(styles.Bold.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
	}
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) {
	r.Header(1, "anosql Project Health Report")

	r.Println(output.FormatHeader(2, "Project Summary"))
	r.Println("")
	if out.Summary.ConfigFile != "" {
		r.Println(output.FormatKeyValue("Config", out.Summary.ConfigFile))
	}
	r.Println(output.FormatKeyValue("Dialect", out.Summary.Dialect))
	r.Println(output.FormatKeyValue("Queries", fmt.Sprintf("%d (select %d, mutate %d, autogen %d)",
		out.Summary.Queries, out.Summary.Select, out.Summary.Mutate, out.Summary.AutoGen)))
	r.Println("")

	r.Println(output.FormatHeader(2, "Health Checks"))
	r.Println("")
	rows := make([][]any, 0, len(out.HealthChecks))
	for _, check := range out.HealthChecks {
		rows = append(rows, []any{check.ID, check.Name, check.Group, check.Status, strings.Join(check.Details, "; ")})
	}
	r.Table([]string{"id", "check", "group", "status", "details"}, rows)
	r.Println("")

	r.Println(output.FormatKeyValue("Health Score", fmt.Sprintf("%d/100", out.Score)))

	if len(out.Recommendations) > 0 {
		r.Println("")
		r.Println(output.FormatHeader(2, "Recommendations"))
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
	}
}
