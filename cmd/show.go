package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/intellistudy/internal/formulas"
	"github.com/abhisek/intellistudy/internal/session"
	"github.com/abhisek/intellistudy/internal/tasktree"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the study plan with completion marks",
	RunE:  runShow,
}

var gotoCmd = &cobra.Command{
	Use:     "goto <task-id>",
	Short:   "Show the day and topic a task id points to",
	Example: "  intellistudy goto day-2-topic-3\n  intellistudy goto day-1-summary",
	Args:    cobra.ExactArgs(1),
	RunE:    runGoto,
}

func init() {
	showCmd.Flags().Bool("formulas", false, "List key formulas and concepts instead of the outline")
	showCmd.Flags().Bool("json", false, "Print the plan as JSON")
}

func openSession(cmd *cobra.Command) (*env, *session.Session, error) {
	e, err := openEnv(cmd)
	if err != nil {
		return nil, nil, err
	}
	sess, err := newSession(cmd, e)
	if err != nil {
		e.Close()
		return nil, nil, err
	}
	return e, sess, nil
}

func runShow(cmd *cobra.Command, _ []string) error {
	e, sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	out := cmd.OutOrStdout()
	if !sess.HasPlan() {
		fmt.Fprintln(out, "No study plan yet.")
		if _, ok := e.plans.RawPlan(); ok {
			fmt.Fprintln(out, `A generated plan is waiting; run "intellistudy structure" to use it.`)
		} else {
			fmt.Fprintln(out, `Run "intellistudy generate --notes <file>" to create one.`)
		}
		return nil
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(sess.Plan())
	}
	if onlyFormulas, _ := cmd.Flags().GetBool("formulas"); onlyFormulas {
		printFormulas(out, sess.Formulas())
		return nil
	}
	printOutline(out, sess)
	return nil
}

func printOutline(out io.Writer, sess *session.Session) {
	sum := sess.Summary()
	fmt.Fprintln(out, sum.Goal)
	fmt.Fprintf(out, "Progress: %d/%d tasks (%.0f%%)\n", sum.Done, sum.Total, sum.Fraction*100)
	fmt.Fprintln(out, strings.Repeat("─", 60))

	for i, day := range sess.Tree() {
		done, total := tasktree.Progress(day.Children)
		fmt.Fprintf(out, "%s  (%d/%d)\n", day.Label, done, total)
		for _, leaf := range day.Children {
			mark := " "
			if leaf.Completed {
				mark = "x"
			}
			priority := ""
			if leaf.Item != nil && leaf.Item.Priority != "" {
				priority = "  [" + string(leaf.Item.Priority) + "]"
			}
			fmt.Fprintf(out, "  [%s] %-20s %s%s\n", mark, leaf.ID, leaf.Label, priority)
		}
		if i < len(sess.Tree())-1 {
			fmt.Fprintln(out)
		}
	}
}

func printFormulas(out io.Writer, items []formulas.Item) {
	if len(items) == 0 {
		fmt.Fprintln(out, "No formulas or key concepts in this plan.")
		return
	}
	fs, concepts := formulas.Split(items)
	if len(fs) > 0 {
		fmt.Fprintln(out, "Formulas")
		fmt.Fprintln(out, strings.Repeat("─", 60))
		for _, f := range fs {
			fmt.Fprintf(out, "%s\n", f.Name)
			if f.Equation != "" {
				fmt.Fprintf(out, "  %s\n", f.Equation)
			}
			if f.Description != "" {
				fmt.Fprintf(out, "  %s\n", f.Description)
			}
			for _, k := range slices.Sorted(maps.Keys(f.Variables)) {
				fmt.Fprintf(out, "    %s: %s\n", k, f.Variables[k])
			}
			for _, ex := range f.Examples {
				fmt.Fprintf(out, "    e.g. %s\n", ex)
			}
		}
	}
	if len(concepts) > 0 {
		if len(fs) > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, "Key concepts")
		fmt.Fprintln(out, strings.Repeat("─", 60))
		for _, c := range concepts {
			fmt.Fprintf(out, "%s\n", c.Name)
			if c.Description != "" {
				fmt.Fprintf(out, "  %s\n", c.Description)
			}
		}
	}
}

func runGoto(cmd *cobra.Command, args []string) error {
	e, sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	if !sess.HasPlan() {
		return fmt.Errorf("no study plan loaded")
	}
	if !sess.Select(args[0]) {
		return fmt.Errorf("%q is not a task id (expected day-N, day-N-topic-M or day-N-summary)", args[0])
	}

	out := cmd.OutOrStdout()
	nav := sess.Navigator()
	day, _ := nav.CurrentDay()
	fmt.Fprintf(out, "Day %d", sess.Plan().Label(nav.DayIndex()))
	if day.FocusArea != "" {
		fmt.Fprintf(out, ": %s", day.FocusArea)
	}
	fmt.Fprintln(out)
	if topic, ok := nav.CurrentTopic(); ok {
		fmt.Fprintf(out, "Topic: %s (%s)\n", topic.Topic, sess.ActiveID())
		if topic.Details != "" {
			fmt.Fprintf(out, "  %s\n", topic.Details)
		}
	} else {
		fmt.Fprintln(out, "No topics scheduled for this day.")
	}
	return nil
}
