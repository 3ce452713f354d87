// Package catalog assembles the fifteen record modules of the agency from
// their seeds and keeps them reachable by name.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/agencyos/backend/internal/application/records"
	"github.com/agencyos/backend/internal/domain/crm"
	"github.com/agencyos/backend/internal/domain/delivery"
	"github.com/agencyos/backend/internal/domain/finance"
	"github.com/agencyos/backend/internal/domain/legal"
	"github.com/agencyos/backend/internal/domain/ops"
	"github.com/agencyos/backend/internal/domain/shared/listing"
	"github.com/agencyos/backend/internal/domain/talent"
	"github.com/agencyos/backend/internal/infrastructure/seed"
	"go.uber.org/zap"
)

// Catalog holds every module service, typed, plus a registry of them erased
// for transports that address modules by name.
type Catalog struct {
	Leads       *records.Service[crm.Lead]
	Clients     *records.Service[crm.Client]
	Campaigns   *records.Service[crm.Campaign]
	Projects    *records.Service[delivery.Project]
	Tasks       *records.Service[delivery.Task]
	Content     *records.Service[delivery.ContentItem]
	Templates   *records.Service[delivery.Template]
	Invoices    *records.Service[finance.Invoice]
	Payouts     *records.Service[finance.Payout]
	Tax         *records.Service[finance.TaxFiling]
	Talent      *records.Service[talent.Freelancer]
	Contracts   *records.Service[legal.Contract]
	Policies    *records.Service[legal.Policy]
	Domains     *records.Service[ops.Domain]
	Credentials *records.Service[ops.Credential]

	Registry *records.Registry
	logger   *zap.Logger
}

// Build loads every module from src. sealer protects credential secrets and
// may be nil when no seed carries one.
func Build(src *seed.Source, sealer ops.Sealer, deps records.Deps) (*Catalog, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{Registry: records.NewRegistry(), logger: logger.With(zap.String("component", "catalog"))}

	var errs []error
	c.Leads = load(c, src, crm.LeadSchema(), deps, &errs)
	c.Clients = load(c, src, crm.ClientSchema(), deps, &errs)
	c.Campaigns = load(c, src, crm.CampaignSchema(), deps, &errs)
	c.Projects = load(c, src, delivery.ProjectSchema(), deps, &errs)
	c.Tasks = load(c, src, delivery.TaskSchema(), deps, &errs)
	c.Content = load(c, src, delivery.ContentSchema(), deps, &errs)
	c.Templates = load(c, src, delivery.TemplateSchema(), deps, &errs)
	c.Invoices = load(c, src, finance.InvoiceSchema(), deps, &errs)
	c.Payouts = load(c, src, finance.PayoutSchema(), deps, &errs)
	c.Tax = load(c, src, finance.TaxSchema(), deps, &errs)
	c.Talent = load(c, src, talent.FreelancerSchema(), deps, &errs)
	c.Contracts = load(c, src, legal.ContractSchema(), deps, &errs)
	c.Policies = load(c, src, legal.PolicySchema(), deps, &errs)
	c.Domains = load(c, src, ops.DomainSchema(), deps, &errs)
	c.Credentials = load(c, src, ops.CredentialSchema(sealer), deps, &errs)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	c.logger.Info("catalog built", zap.Strings("modules", c.Registry.Names()))
	return c, nil
}

func load[T listing.Record[T]](c *Catalog, src *seed.Source, schema *listing.Schema[T], deps records.Deps, errs *[]error) *records.Service[T] {
	rows, err := seed.Load[T](src, schema.Name)
	if err != nil {
		*errs = append(*errs, err)
		return nil
	}
	svc, err := records.NewSeeded(schema, rows, deps)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("module %s: %w", schema.Name, err))
		return nil
	}
	c.Registry.Register(records.AsModule(svc))
	return svc
}

// Restore hydrates every module from its latest snapshot.
func (c *Catalog) Restore(ctx context.Context) (int, error) {
	return c.Registry.Restore(ctx)
}

// Reload replaces a module's seed. It has the shape of seed.ReloadFunc so a
// seed watcher can drive it.
func (c *Catalog) Reload(ctx context.Context, module string, payload []byte) error {
	m, err := c.Registry.Get(module)
	if err != nil {
		return err
	}
	if err := m.Reseed(ctx, payload); err != nil {
		return fmt.Errorf("reseed %s: %w", module, err)
	}
	return nil
}
