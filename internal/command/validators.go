// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/ifctrack/ifctrack/internal/differ"
	"github.com/ifctrack/ifctrack/internal/ifc"
	"github.com/ifctrack/ifctrack/internal/report"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// GlobalFlagsValidator checks flag combinations that a single flag validator
// cannot see.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	if c.Bool("color") && c.String("output") != "text" {
		return fmt.Errorf("--color only applies to text output")
	}
	return nil
}

func OutputValidator(value any) error {
	var validOutputFlagValues = []string{"text", "json", "raw", "yaml"}
	valid := false
	for _, v := range validOutputFlagValues {
		if v == value {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("must be one of %v", validOutputFlagValues)
	}
	return nil
}

// FormatValidator accepts a comma-separated list of report formats.
func FormatValidator(value any) error {
	s, _ := value.(string)
	return report.ValidateFormats(splitList(s))
}

// AssignValidator accepts the attribution strategies.
func AssignValidator(value any) error {
	valid := []string{assignRandom, assignHistory}
	if !slices.Contains(valid, value.(string)) {
		return fmt.Errorf("must be one of %v", valid)
	}
	return nil
}

// CategoryValidator accepts IFC classes known to the schema table.
func CategoryValidator(value any) error {
	s, _ := value.(string)
	if !ifc.Known(s) {
		return fmt.Errorf("unknown IFC class %q", s)
	}
	return nil
}

// CompareValidator accepts anything differ.ParseExtractor does.
func CompareValidator(value any) error {
	s, _ := value.(string)
	_, err := differ.ParseExtractor(s)
	return err
}

// splitList splits a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
