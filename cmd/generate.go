package cmd

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/abhisek/intellistudy/internal/plan"
	"github.com/abhisek/intellistudy/internal/planclient"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a study plan from your notes",
	Long: `Upload notes (and optionally past questions) to the plan service.

By default the service returns a plan as text, which is stored until you
run "intellistudy structure". With --direct the service returns a
structured plan that replaces the current one right away.`,
	Example: "  intellistudy generate --days 5 --hours 3 --notes chapter1.pdf --notes chapter2.docx",
	RunE:    runGenerate,
}

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Turn the pending text plan into a structured study plan",
	RunE:  runStructure,
}

func init() {
	generateCmd.Flags().Int("days", 7, "Number of study days (1-7)")
	generateCmd.Flags().Int("hours", 2, "Study hours per day (1-24)")
	generateCmd.Flags().StringArray("notes", nil, "Notes file (.pdf, .docx, .txt); repeatable")
	generateCmd.Flags().StringArray("questions", nil, "Past questions file; repeatable")
	generateCmd.Flags().Bool("direct", false, "Ask for a structured plan in one step")
	_ = generateCmd.MarkFlagRequired("notes")
}

func newPlanClient() *planclient.Client {
	return planclient.New(cfg.BackendURL,
		planclient.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		planclient.WithLogger(logger),
	)
}

func loadFiles(paths []string) ([]planclient.File, error) {
	files := make([]planclient.File, 0, len(paths))
	for _, p := range paths {
		f, err := planclient.LoadFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	days, _ := cmd.Flags().GetInt("days")
	hours, _ := cmd.Flags().GetInt("hours")
	notePaths, _ := cmd.Flags().GetStringArray("notes")
	questionPaths, _ := cmd.Flags().GetStringArray("questions")
	direct, _ := cmd.Flags().GetBool("direct")

	notes, err := loadFiles(notePaths)
	if err != nil {
		return err
	}
	questions, err := loadFiles(questionPaths)
	if err != nil {
		return err
	}
	req := planclient.GenerateRequest{Days: days, HoursPerDay: hours, Notes: notes, Questions: questions}
	if err := req.Validate(); err != nil {
		return err
	}

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	client := newPlanClient()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Generating a %d-day plan from %d file(s)...\n", days, len(notes)+len(questions))

	if direct {
		p, err := client.Upload(ctx, req)
		if err != nil {
			return fmt.Errorf("generate plan: %w", err)
		}
		e.plans.Set(ctx, p)
		printPlanSaved(cmd, p)
		return nil
	}

	raw, err := client.Preview(ctx, req)
	if err != nil {
		return fmt.Errorf("generate plan: %w", err)
	}
	e.plans.SetRawPlan(ctx, raw)
	fmt.Fprintln(out)
	fmt.Fprintln(out, raw)
	fmt.Fprintln(out)
	fmt.Fprintln(out, `Run "intellistudy structure" to turn this into your study plan.`)
	return nil
}

func runStructure(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	raw, ok := e.plans.RawPlan()
	if !ok {
		return errors.New(`no pending plan text; run "intellistudy generate" first`)
	}

	p, err := newPlanClient().Structure(ctx, raw)
	if err != nil {
		return fmt.Errorf("structure plan: %w", err)
	}
	// Set also drops the pending raw text.
	e.plans.Set(ctx, p)
	printPlanSaved(cmd, p)
	return nil
}

func printPlanSaved(cmd *cobra.Command, p *plan.StudyPlan) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Saved plan: %s\n", p.OverallGoal)
	fmt.Fprintf(out, "%d day(s), %d formula(s), %d key concept(s)\n",
		len(p.DailyBreakdown), len(p.KeyFormulas), len(p.KeyConcepts))
	fmt.Fprintln(out, `Run "intellistudy" to start studying.`)
}
