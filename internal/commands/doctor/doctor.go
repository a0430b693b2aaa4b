// Package doctor implements the health checks behind `hookbot doctor`.
package doctor

import (
	"context"
	"fmt"
)

// Status is the outcome of a single check item.
type Status int

const (
	StatusPass Status = iota
	StatusWarn
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name in JSON reports.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "pass":
		*s = StatusPass
	case "warn":
		*s = StatusWarn
	case "fail":
		*s = StatusFail
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}

// CheckItem is one line of a check result.
type CheckItem struct {
	Label  string `json:"label"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`

	// Fixable items are resolved by rerunning with --fix.
	Fixable bool `json:"fixable,omitempty"`
}

func pass(label, detail string) CheckItem {
	return CheckItem{Label: label, Status: StatusPass, Detail: detail}
}

func warn(label, detail string) CheckItem {
	return CheckItem{Label: label, Status: StatusWarn, Detail: detail}
}

func fail(label, detail string) CheckItem {
	return CheckItem{Label: label, Status: StatusFail, Detail: detail}
}

// Result groups the items produced by one check.
type Result struct {
	Name  string      `json:"name"`
	Items []CheckItem `json:"items"`
}

// Check is a single diagnostic.
type Check interface {
	Name() string
	Run(ctx context.Context) Result
}

// Counts tallies item statuses across a report.
type Counts struct {
	Passed  int `json:"passed"`
	Warned  int `json:"warned"`
	Failed  int `json:"failed"`
	Fixable int `json:"fixable"`
}

// Report is the outcome of a doctor run.
type Report struct {
	Healthy bool     `json:"healthy"`
	Summary Counts   `json:"summary"`
	Checks  []Result `json:"checks"`
}

// Run executes checks in order and builds the report. A cancelled context
// stops before the next check.
func Run(ctx context.Context, checks []Check) Report {
	var r Report

	for _, check := range checks {
		if ctx.Err() != nil {
			r.Checks = append(r.Checks, Result{
				Name:  check.Name(),
				Items: []CheckItem{fail("Skipped", ctx.Err().Error())},
			})
			continue
		}
		r.Checks = append(r.Checks, check.Run(ctx))
	}

	for _, res := range r.Checks {
		for _, item := range res.Items {
			switch item.Status {
			case StatusPass:
				r.Summary.Passed++
			case StatusWarn:
				r.Summary.Warned++
			case StatusFail:
				r.Summary.Failed++
			}
			if item.Fixable && item.Status != StatusPass {
				r.Summary.Fixable++
			}
		}
	}

	r.Healthy = r.Summary.Failed == 0
	return r
}

// ExitCode is 1 when any item failed. Warnings, fixable or not, keep the
// run successful so doctor can gate deploys on hard failures only.
func (r Report) ExitCode() int {
	if r.Healthy {
		return 0
	}
	return 1
}
