package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/abhisek/intellistudy/internal/chat"
	"github.com/abhisek/intellistudy/internal/session"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the tutor about a topic of your plan",
	Long: `Ask one question about the current topic. By default the first topic of
the first day is used; pick another with --task.`,
	Example: `  intellistudy ask "Why does entropy increase?"
  intellistudy ask --task day-2-topic-1 "Give me a practice problem"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("task", "", "Task id to ask about (e.g. day-1-topic-2)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	printer := &replyPrinter{out: cmd.OutOrStdout()}
	var sess *session.Session
	sess, err = newSession(cmd, e, chat.WithOnChange(func() {
		if sess != nil {
			printer.update(sess.Chat().Transcript())
		}
	}))
	if err != nil {
		return err
	}

	if task, _ := cmd.Flags().GetString("task"); task != "" {
		if !sess.HasPlan() {
			return fmt.Errorf("no study plan loaded")
		}
		if !sess.Select(task) {
			return fmt.Errorf("%q is not a task id", task)
		}
	}

	printer.start(len(sess.Chat().Transcript()))
	if err := sess.Ask(cmd.Context(), strings.Join(args, " ")); err != nil {
		return err
	}
	printer.finish()

	if msgs := sess.Chat().Transcript(); len(msgs) > 0 && msgs[len(msgs)-1].IsError {
		return fmt.Errorf("the tutor could not answer")
	}
	return nil
}

// replyPrinter writes the assistant reply of one send as it grows.
type replyPrinter struct {
	out io.Writer

	mu      sync.Mutex
	index   int // transcript index of the reply
	printed string
}

// start records the transcript length before the send: the user message
// lands at n and the reply at n+1.
func (p *replyPrinter) start(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.index = n + 1
	p.printed = ""
}

func (p *replyPrinter) update(msgs []chat.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.index <= 0 || p.index >= len(msgs) {
		return
	}
	m := msgs[p.index]
	if m.Sender != chat.SenderAI || (m.IsStreaming && m.Text == chat.ThinkingText) {
		return
	}
	if rest, ok := strings.CutPrefix(m.Text, p.printed); ok {
		fmt.Fprint(p.out, rest)
	} else {
		// The reply was replaced rather than extended.
		fmt.Fprint(p.out, "\n"+m.Text)
	}
	p.printed = m.Text
}

func (p *replyPrinter) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.printed != "" {
		fmt.Fprintln(p.out)
	}
}
