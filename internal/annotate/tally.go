// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package annotate

import (
	"fmt"
	"io"

	"github.com/ifctrack/ifctrack/internal/differ"
)

// Count is the success and failure count of one change kind.
type Count struct {
	Success int
	Failed  int
}

// Tally aggregates outcomes per change kind.
type Tally map[differ.Kind]Count

// Summarize counts outcomes.
func Summarize(outcomes []Outcome) Tally {
	t := Tally{}
	for _, o := range outcomes {
		c := t[o.Kind]
		if o.OK() {
			c.Success++
		} else {
			c.Failed++
		}
		t[o.Kind] = c
	}
	return t
}

// Total sums every kind.
func (t Tally) Total() Count {
	var total Count
	for _, c := range t {
		total.Success += c.Success
		total.Failed += c.Failed
	}
	return total
}

// Write prints the detailed report.
func (t Tally) Write(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "----- DETAILED REPORT -----"); err != nil {
		return err
	}
	for _, k := range []differ.Kind{differ.Added, differ.Modified, differ.Deleted} {
		c := t[k]
		if _, err := fmt.Fprintf(w, "%s elements: %d successful, %d failed\n", k, c.Success, c.Failed); err != nil {
			return err
		}
	}
	total := t.Total()
	_, err := fmt.Fprintf(w, "Total: %d successful, %d failed\n", total.Success, total.Failed)
	return err
}
