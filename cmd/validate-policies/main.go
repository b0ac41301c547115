package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go2gg/edge/dunning"
	"github.com/go2gg/edge/ratelimit"
)

/* validate-policies - Standalone CLI tool to validate the rate limit policy file and the dunning schedule
 * Usage: go run cmd/validate-policies/main.go [-policies policies.yaml] [-schedule dunning.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	policiesFile := flag.String("policies", "", "rate limit policy YAML file")
	scheduleFile := flag.String("schedule", "", "dunning schedule YAML file")
	flag.Parse()

	os.Exit(run(os.Stdout, os.Stderr, *policiesFile, *scheduleFile))
}

func run(stdout, stderr io.Writer, policiesFile, scheduleFile string) int {
	if policiesFile == "" && scheduleFile == "" {
		fmt.Fprintln(stderr, "nothing to validate: pass -policies and/or -schedule")
		return 1
	}

	failed := false
	if policiesFile != "" {
		if err := validatePolicies(stdout, policiesFile); err != nil {
			fmt.Fprintf(stderr, "VALIDATION FAILED: %s\n\nError: %v\n", policiesFile, err)
			failed = true
		}
	}
	if scheduleFile != "" {
		if err := validateSchedule(stdout, scheduleFile); err != nil {
			fmt.Fprintf(stderr, "VALIDATION FAILED: %s\n\nError: %v\n", scheduleFile, err)
			failed = true
		}
	}
	if failed {
		return 1
	}

	fmt.Fprintln(stdout, "\nAll files are valid!")
	return 0
}

func validatePolicies(out io.Writer, path string) error {
	fmt.Fprintf(out, "Validating policy file: %s\n", path)
	fmt.Fprintln(out, strings.Repeat("-", 50))

	// the API preset here is a placeholder; the service builds it from configuration
	policies := ratelimit.DefaultPolicies(100, time.Minute)
	if err := policies.LoadFile(path); err != nil {
		return err
	}

	names := policies.Names()
	fmt.Fprintf(out, "VALIDATION PASSED\n\nLoaded %d polic(ies):\n", len(names))
	for i, name := range names {
		p, err := policies.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d. %-16s %d requests / %ds\n", i+1, name, p.Limit, p.WindowSeconds())
	}
	fmt.Fprintln(out)
	return nil
}

func validateSchedule(out io.Writer, path string) error {
	fmt.Fprintf(out, "Validating dunning schedule: %s\n", path)
	fmt.Fprintln(out, strings.Repeat("-", 50))

	s, err := dunning.LoadSchedule(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "VALIDATION PASSED\n\n")
	fmt.Fprintf(out, "   Reminder days:     %v\n", s.ReminderDays)
	fmt.Fprintf(out, "   Final warning day: %d\n", s.FinalWarningDay)
	fmt.Fprintf(out, "   Grace period:      %d days\n", s.GracePeriodDays)
	return nil
}
