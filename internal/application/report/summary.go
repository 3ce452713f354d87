// Package report builds the dashboard summary across the record modules.
package report

import (
	"context"
	"sort"
	"time"

	"github.com/agencyos/backend/internal/application/records"
	"github.com/agencyos/backend/internal/domain/crm"
	"github.com/agencyos/backend/internal/domain/delivery"
	"github.com/agencyos/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DateLayout is the calendar date format records use
const DateLayout = "2006-01-02"

// TaxWindow is how far ahead tax filings count as due soon
const TaxWindow = 30 * 24 * time.Hour

// Source exposes the current records of one module
type Source[T any] interface {
	Records() []T
}

// Summarizer lists the modules whose brand counts feed the summary
type Summarizer interface {
	Modules() []records.Module
}

// StageValue is the open pipeline value of one stage
type StageValue struct {
	Stage string          `json:"stage"`
	Count int             `json:"count"`
	Value decimal.Decimal `json:"value"`
}

// PipelineSummary covers open leads and closed outcomes
type PipelineSummary struct {
	OpenValue decimal.Decimal `json:"open_value"`
	ByStage   []StageValue    `json:"by_stage"`
	Won       int             `json:"won"`
	Lost      int             `json:"lost"`
	WinRate   decimal.Decimal `json:"win_rate"`
}

// Bucket is a count with its money total
type Bucket struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type InvoiceSummary struct {
	Outstanding Bucket `json:"outstanding"`
	Paid        Bucket `json:"paid"`
	Overdue     Bucket `json:"overdue"`
}

type PayoutSummary struct {
	Pending  Bucket `json:"pending"`
	Approved Bucket `json:"approved"`
}

// TaxSummary holds unfiled filings due inside the window, and those already
// past their due date
type TaxSummary struct {
	DueSoon Bucket `json:"due_soon"`
	Late    Bucket `json:"late"`
	Until   string `json:"until"`
}

type ProjectSummary struct {
	Active          int `json:"active"`
	AverageProgress int `json:"average_progress"`
}

// Summary is the dashboard payload
type Summary struct {
	GeneratedAt time.Time                  `json:"generated_at"`
	Pipeline    PipelineSummary            `json:"pipeline"`
	Invoices    InvoiceSummary             `json:"invoices"`
	Payouts     PayoutSummary              `json:"payouts"`
	Tax         TaxSummary                 `json:"tax"`
	Projects    ProjectSummary             `json:"projects"`
	Brands      map[string]int             `json:"brands"`
	Modules     map[string]records.Summary `json:"modules"`
}

// Service computes summaries from live module state
type Service struct {
	leads    Source[crm.Lead]
	invoices Source[finance.Invoice]
	payouts  Source[finance.Payout]
	tax      Source[finance.TaxFiling]
	projects Source[delivery.Project]
	modules  Summarizer
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithClock replaces the wall clock used for the tax window
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new Service. modules may be nil.
func NewService(
	leads Source[crm.Lead],
	invoices Source[finance.Invoice],
	payouts Source[finance.Payout],
	tax Source[finance.TaxFiling],
	projects Source[delivery.Project],
	modules Summarizer,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		leads:    leads,
		invoices: invoices,
		payouts:  payouts,
		tax:      tax,
		projects: projects,
		modules:  modules,
		logger:   logger.With(zap.String("service", "report")),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summary computes the dashboard totals
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := s.now()
	sum := &Summary{
		GeneratedAt: now.UTC(),
		Pipeline:    pipeline(s.leads.Records()),
		Invoices:    invoices(s.invoices.Records()),
		Payouts:     payouts(s.payouts.Records()),
		Tax:         s.taxDue(now),
		Projects:    projects(s.projects.Records()),
		Brands:      map[string]int{},
		Modules:     map[string]records.Summary{},
	}
	if s.modules != nil {
		for _, m := range s.modules.Modules() {
			ms := m.Summarize()
			sum.Modules[ms.Module] = ms
			for id, n := range ms.ByBrand {
				sum.Brands[id] += n
			}
		}
	}
	s.logger.Debug("summary computed",
		zap.String("open_value", sum.Pipeline.OpenValue.String()),
		zap.Int("active_projects", sum.Projects.Active))
	return sum, nil
}

func pipeline(leads []crm.Lead) PipelineSummary {
	out := PipelineSummary{OpenValue: decimal.Zero, WinRate: decimal.Zero}
	byStage := map[string]*StageValue{}
	for _, l := range leads {
		switch l.Stage {
		case crm.LeadStageWon:
			out.Won++
			continue
		case crm.LeadStageLost:
			out.Lost++
			continue
		}
		sv, ok := byStage[string(l.Stage)]
		if !ok {
			sv = &StageValue{Stage: string(l.Stage), Value: decimal.Zero}
			byStage[string(l.Stage)] = sv
		}
		sv.Count++
		sv.Value = sv.Value.Add(l.Value)
		out.OpenValue = out.OpenValue.Add(l.Value)
	}
	for _, stage := range crm.LeadLifecycle.Order {
		if sv, ok := byStage[stage]; ok {
			out.ByStage = append(out.ByStage, *sv)
			delete(byStage, stage)
		}
	}
	// stages outside the enum still count, after the known ones
	rest := make([]string, 0, len(byStage))
	for stage := range byStage {
		rest = append(rest, stage)
	}
	sort.Strings(rest)
	for _, stage := range rest {
		out.ByStage = append(out.ByStage, *byStage[stage])
	}
	if closed := out.Won + out.Lost; closed > 0 {
		out.WinRate = decimal.NewFromInt(int64(out.Won * 100)).
			Div(decimal.NewFromInt(int64(closed))).Round(1)
	}
	return out
}

func invoices(list []finance.Invoice) InvoiceSummary {
	out := InvoiceSummary{Outstanding: zeroBucket(), Paid: zeroBucket(), Overdue: zeroBucket()}
	for _, inv := range list {
		switch inv.Status {
		case finance.InvoiceStatusSent:
			out.Outstanding.add(inv.Amount)
		case finance.InvoiceStatusPaid:
			out.Paid.add(inv.Amount)
		case finance.InvoiceStatusOverdue:
			out.Overdue.add(inv.Amount)
		}
	}
	return out
}

func payouts(list []finance.Payout) PayoutSummary {
	out := PayoutSummary{Pending: zeroBucket(), Approved: zeroBucket()}
	for _, p := range list {
		switch p.Status {
		case finance.PayoutStatusPending:
			out.Pending.add(p.Amount)
		case finance.PayoutStatusApproved:
			out.Approved.add(p.Amount)
		}
	}
	return out
}

func (s *Service) taxDue(now time.Time) TaxSummary {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	until := today.Add(TaxWindow)
	out := TaxSummary{DueSoon: zeroBucket(), Late: zeroBucket(), Until: until.Format(DateLayout)}
	for _, f := range s.tax.Records() {
		if f.Settled() {
			continue
		}
		due, err := time.Parse(DateLayout, f.Due)
		if err != nil {
			s.logger.Warn("tax filing has no usable due date", zap.String("id", f.ID), zap.String("due", f.Due))
			continue
		}
		switch {
		case due.Before(today):
			out.Late.add(f.Amount)
		case !due.After(until):
			out.DueSoon.add(f.Amount)
		}
	}
	return out
}

func projects(list []delivery.Project) ProjectSummary {
	var out ProjectSummary
	total := 0
	for _, p := range list {
		if p.Stage == delivery.ProjectStageLaunched {
			continue
		}
		out.Active++
		total += delivery.ProjectLifecycle.Progress(string(p.Stage))
	}
	if out.Active > 0 {
		out.AverageProgress = total / out.Active
	}
	return out
}

func zeroBucket() Bucket {
	return Bucket{Amount: decimal.Zero}
}

func (b *Bucket) add(amount decimal.Decimal) {
	b.Count++
	b.Amount = b.Amount.Add(amount)
}
