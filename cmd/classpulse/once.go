// File path: cmd/classpulse/once.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/classpulse/classpulse/internal/model"
	"github.com/classpulse/classpulse/internal/pipeline"
)

// runOnce executes a single batch from a roster file and prints a
// colorized summary to stdout.
func runOnce(ctx context.Context, runner *pipeline.Runner, rosterPath string, prefs *model.Preferences) error {
	trimmed := strings.TrimSpace(rosterPath)
	if trimmed == "" {
		return fmt.Errorf("-roster is required with -once")
	}
	data, err := os.ReadFile(trimmed)
	if err != nil {
		return fmt.Errorf("read roster: %w", err)
	}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("roster is not valid JSON: %w", err)
	}

	report, err := runner.Run(ctx, raw, prefs)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	bold.Printf("Run %s (%s provider)\n\n", report.RunID, report.Provider)

	for _, e := range report.InputErrors {
		color.Red("rejected: %s", e)
	}
	if len(report.InputErrors) > 0 {
		fmt.Println()
	}

	for _, student := range report.Students {
		source := color.GreenString("ai")
		if student.UsedFallback {
			source = color.YellowString("fallback")
		}
		risk := color.GreenString(string(student.RiskLevel))
		switch student.RiskLevel {
		case "medium":
			risk = color.YellowString(string(student.RiskLevel))
		case "high":
			risk = color.RedString(string(student.RiskLevel))
		}
		fmt.Printf("%-24s risk=%s source=%s\n", student.StudentName, risk, source)
	}

	if report.Class != nil {
		fmt.Println()
		bold.Println("Class summary")
		fmt.Printf("average=%.2f attention=%d source=%s\n",
			report.Class.Summary.ClassAverage,
			len(report.Class.Summary.AttentionNeeded),
			sourceLabel(report.Class.UsedFallback))
	}
	return nil
}

func sourceLabel(usedFallback bool) string {
	if usedFallback {
		return color.YellowString("fallback")
	}
	return color.GreenString("ai")
}
