package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"visaexpert/internal/fact"
	"visaexpert/internal/session"
)

// runDemo drives an interactive text dialogue over a loaded catalogue,
// the operator-facing equivalent of the MCP tool surface in
// cmd/engine-server — useful for trying out a catalogue change without
// an MCP client.
func runDemo(args []string) error {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a YAML configuration file (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, cat, err := loadConfigAndCatalogue(*configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	sess := session.New(cat)
	scanner := bufio.NewScanner(os.Stdin)

	q, err := sess.Start(ctx)
	if err != nil {
		return err
	}

	fmt.Println("visaexpert demo — answer each question with yes / no / unknown, or 'back' / 'restart' / 'quit'")

	for {
		if q.IsComplete && !q.HasQuestion {
			printDiagnosis(ctx, sess)
			return nil
		}

		fmt.Printf("\n? %s\n> ", q.Question)
		if !scanner.Scan() {
			return nil
		}
		input := strings.ToLower(strings.TrimSpace(scanner.Text()))

		switch input {
		case "quit", "exit":
			return nil
		case "restart":
			q, err = sess.Restart(ctx)
			if err != nil {
				fmt.Printf("error: %v\n", err)
			}
			continue
		case "back":
			back, err := sess.Back(ctx, 1)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			q = &session.QuestionView{
				Question:    back.CurrentQuestion,
				HasQuestion: back.HasCurrentQuestion,
				RuleStatus:  back.RuleStatus,
			}
			continue
		}

		answer, ok := fact.ParseAnswer(input)
		if !ok {
			fmt.Println("please answer yes, no, or unknown (or back/restart/quit)")
			continue
		}

		result, err := sess.Answer(ctx, q.Question, answer)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		q = &session.QuestionView{
			Question:    result.NextQuestion,
			HasQuestion: result.HasNextQuestion,
			RuleStatus:  result.RuleStatus,
			IsComplete:  result.IsComplete,
		}
		if result.IsComplete {
			printResult(result.Diagnosis)
			return nil
		}
	}
}

func printDiagnosis(ctx context.Context, sess *session.Session) {
	view, err := sess.State(ctx)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	printResult(view.Diagnosis)
}

func printResult(diag *session.DiagnosisResult) {
	if diag == nil {
		fmt.Println("no diagnosis available")
		return
	}
	fmt.Println("\n=== diagnosis ===")
	if len(diag.Applicable) == 0 {
		fmt.Println("applicable visas: none")
	}
	for _, v := range diag.Applicable {
		fmt.Printf("applicable: %s (%s)\n", v.VisaType, v.Action)
	}
	for _, v := range diag.Conditional {
		fmt.Printf("conditional: %s (%s) — pending: %v\n", v.VisaType, v.Action, v.UnknownConditions)
	}
	if len(diag.UnknownConditions) > 0 {
		fmt.Printf("unanswered (unknown): %v\n", diag.UnknownConditions)
	}
}
