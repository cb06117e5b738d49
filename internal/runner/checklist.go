package runner

import (
	"fmt"
	"strings"

	"github.com/santif/monthly-close/internal/domain"
)

// summarize appends the OK/Review checklist and, when nothing needs
// review, the manual follow-up steps. Any Review item withholds the
// manual steps: a human resolves the findings first.
func (r *Runner) summarize(run *domain.RunArtifact) {
	run.Checklist = append(run.Checklist, gateItem(run.Gate))
	run.Checklist = append(run.Checklist, rateItem(run.Rate))
	run.Checklist = append(run.Checklist, amountsItem(run))
	run.Checklist = append(run.Checklist, documentsItem(run.Documents))
	run.Checklist = append(run.Checklist, stepsItem(run.Steps))

	if !run.NeedsReview() {
		run.ManualSteps = manualSteps(run)
	}
}

func gateItem(g domain.GateDecision) domain.ChecklistItem {
	item := domain.ChecklistItem{Item: "closing window", Status: domain.CheckOK}
	if g.Overridden {
		item.Status = domain.CheckReview
		item.Detail = "gate overridden: " + g.Reason
	}
	return item
}

func rateItem(rate *domain.RateQuote) domain.ChecklistItem {
	item := domain.ChecklistItem{Item: "exchange rate", Status: domain.CheckOK}
	if rate == nil {
		item.Status = domain.CheckReview
		item.Detail = "no rate resolved"
		return item
	}
	item.Detail = fmt.Sprintf("%s (%s)", rate.Value.StringFixed(2), rate.Source)
	return item
}

func amountsItem(run *domain.RunArtifact) domain.ChecklistItem {
	item := domain.ChecklistItem{Item: "amounts", Status: domain.CheckOK}
	var findings []string
	for _, b := range run.Blocked {
		findings = append(findings, b.Entity+": blocked")
	}
	for _, a := range run.Amounts {
		if a.HistoryUnavailable {
			findings = append(findings, a.Entity+": history unavailable")
		}
	}
	if len(findings) > 0 {
		item.Status = domain.CheckReview
		item.Detail = strings.Join(findings, "; ")
	}
	return item
}

func documentsItem(docs []domain.Document) domain.ChecklistItem {
	item := domain.ChecklistItem{Item: "documents", Status: domain.CheckOK}
	var findings []string
	for _, doc := range docs {
		switch doc.Status {
		case domain.MatchMissing:
			findings = append(findings, doc.Name+": unmatched")
		case domain.MatchAmbiguous:
			findings = append(findings, fmt.Sprintf("%s: ambiguous (%s)", doc.Name, strings.Join(doc.Candidates, ", ")))
		}
	}
	if len(findings) > 0 {
		item.Status = domain.CheckReview
		item.Detail = strings.Join(findings, "; ")
	}
	return item
}

func stepsItem(steps []domain.ExecutionStep) domain.ChecklistItem {
	item := domain.ChecklistItem{Item: "steps", Status: domain.CheckOK}
	var findings []string
	for _, s := range steps {
		switch s.Status {
		case domain.StatusError, domain.StatusPartial:
			findings = append(findings, fmt.Sprintf("%s/%s: %s", s.Entity, s.Kind, s.Status))
		}
	}
	if len(findings) > 0 {
		item.Status = domain.CheckReview
		item.Detail = strings.Join(findings, "; ")
	}
	return item
}

// manualSteps lists what stays human even on a clean run.
func manualSteps(run *domain.RunArtifact) []string {
	steps := []string{
		"Issue any missing invoices for the period",
	}
	if len(run.Messages) > 0 {
		steps = append(steps, "Send the staged messages to each entity")
	}
	for _, s := range run.Steps {
		if s.Status == domain.StatusPending {
			steps = append(steps, "Apply the staged payloads recorded in the artifact")
			break
		}
	}
	steps = append(steps, "Verify the period in the debt registry after sending")
	return steps
}
