package postgres

import (
	"context"
	"time"

	kpool "github.com/opre/ops/pkg/conn/db/postgres/pool"
	"github.com/opre/ops/pkg/domain"
	kcan "github.com/opre/ops/pkg/domain/can/db"
	ipg "github.com/opre/ops/pkg/domain/internal/db/postgres"
	"github.com/opre/ops/pkg/utils"
)

type pgCAN struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kcan.Interface {
	return &pgCAN{pool: pool}
}

func (c *pgCAN) Get(ctx context.Context, id int, fiscalYear int) (domain.CANDetail, error) {
	if fiscalYear == 0 {
		fiscalYear = domain.FiscalYear(time.Now())
	}

	can, err := ipg.GetCAN(ctx, c.pool, id, false)
	if err != nil {
		return domain.CANDetail{}, err
	}
	portfolio, err := ipg.GetPortfolio(ctx, c.pool, can.PortfolioId)
	if err != nil {
		return domain.CANDetail{}, err
	}
	budgets, err := ipg.FundingBudgets(ctx, c.pool, id, fiscalYear)
	if err != nil {
		return domain.CANDetail{}, err
	}
	received, err := ipg.FundingReceived(ctx, c.pool, id, fiscalYear)
	if err != nil {
		return domain.CANDetail{}, err
	}
	items, err := ipg.FindBudgetLineItems(ctx, c.pool, ipg.BudgetLineItemFilter{CanId: id}, false)
	if err != nil {
		return domain.CANDetail{}, err
	}
	fees, err := ipg.FeeSchedule(
		ctx, c.pool,
		utils.Map(items, func(b domain.BudgetLineItem) int { return b.AgreementId }),
	)
	if err != nil {
		return domain.CANDetail{}, err
	}

	return domain.CANDetail{
		CAN:             can,
		Portfolio:       portfolio,
		FundingBudgets:  budgets,
		FundingReceived: received,
		Summary:         domain.SummarizeCANFunding(id, fiscalYear, budgets, received, items, fees),
	}, nil
}

func (c *pgCAN) Create(ctx context.Context, actor int, can domain.CAN) (domain.CAN, error) {
	var created domain.CAN
	_, err := ipg.Run(
		ctx, c.pool,
		ipg.Op{Actor: actor, EventType: domain.CreateNewCAN, RequestId: domain.RequestIdOf(ctx)},
		func(ctx context.Context, rec *ipg.Recorder) (domain.EventDetails, error) {
			if err := can.Validate(); err != nil {
				return domain.EventDetails{}, err
			}
			nc, err := ipg.InsertCAN(ctx, rec.Tx(), can)
			if err != nil {
				return domain.EventDetails{}, err
			}
			if err := rec.New(ctx, domain.ClassCAN, nc.Id, nc); err != nil {
				return domain.EventDetails{}, err
			}
			created = nc
			return domain.EventDetails{CAN: &domain.CANEventDetails{CanId: nc.Id}}, nil
		},
	)
	if err != nil {
		return domain.CAN{}, err
	}
	return created, nil
}

func (c *pgCAN) Update(ctx context.Context, actor int, id int, patch domain.CANPatch) (domain.CAN, error) {
	var updated domain.CAN
	_, err := ipg.Run(
		ctx, c.pool,
		ipg.Op{Actor: actor, EventType: domain.UpdateCAN, RequestId: domain.RequestIdOf(ctx)},
		func(ctx context.Context, rec *ipg.Recorder) (domain.EventDetails, error) {
			if err := patch.Validate(); err != nil {
				return domain.EventDetails{}, err
			}
			tx := rec.Tx()
			current, err := ipg.GetCAN(ctx, tx, id, true)
			if err != nil {
				return domain.EventDetails{}, err
			}
			next := current.Apply(patch)

			details := &domain.CANEventDetails{CanId: id}
			if next.PortfolioId != current.PortfolioId {
				oldp, err := ipg.GetPortfolio(ctx, tx, current.PortfolioId)
				if err != nil {
					return domain.EventDetails{}, err
				}
				newp, err := ipg.GetPortfolio(ctx, tx, next.PortfolioId)
				if err != nil {
					return domain.EventDetails{}, err
				}
				details.OldPortfolio = oldp.Name
				details.NewPortfolio = newp.Name
			}

			if err := ipg.UpdateCAN(ctx, tx, next); err != nil {
				return domain.EventDetails{}, err
			}
			changes, err := rec.Updated(ctx, domain.ClassCAN, id, current, next)
			if err != nil {
				return domain.EventDetails{}, err
			}
			details.Changes = changes
			updated = next
			return domain.EventDetails{CAN: details}, nil
		},
	)
	if err != nil {
		return domain.CAN{}, err
	}
	return updated, nil
}

func (c *pgCAN) CreateFundingBudget(ctx context.Context, actor int, b domain.CANFundingBudget) (domain.CANFundingBudget, error) {
	var created domain.CANFundingBudget
	_, err := ipg.Run(
		ctx, c.pool,
		ipg.Op{Actor: actor, EventType: domain.CreateCANFundingBudget, RequestId: domain.RequestIdOf(ctx)},
		func(ctx context.Context, rec *ipg.Recorder) (domain.EventDetails, error) {
			if err := b.Validate(); err != nil {
				return domain.EventDetails{}, err
			}
			tx := rec.Tx()
			if _, err := ipg.GetCAN(ctx, tx, b.CanId, true); err != nil {
				return domain.EventDetails{}, err
			}
			nb, err := ipg.InsertFundingBudget(ctx, tx, b)
			if err != nil {
				return domain.EventDetails{}, err
			}
			if err := rec.New(ctx, domain.ClassCANFundingBudget, nb.Id, nb); err != nil {
				return domain.EventDetails{}, err
			}
			created = nb
			return domain.EventDetails{
				Funding: &domain.FundingEventDetails{
					Id: nb.Id, CanId: nb.CanId, FiscalYear: nb.FiscalYear, Amount: nb.Budget,
				},
			}, nil
		},
	)
	if err != nil {
		return domain.CANFundingBudget{}, err
	}
	return created, nil
}

func (c *pgCAN) UpdateFundingBudget(ctx context.Context, actor int, id int, patch domain.CANFundingBudgetPatch) (domain.CANFundingBudget, error) {
	var updated domain.CANFundingBudget
	_, err := ipg.Run(
		ctx, c.pool,
		ipg.Op{Actor: actor, EventType: domain.UpdateCANFundingBudget, RequestId: domain.RequestIdOf(ctx)},
		func(ctx context.Context, rec *ipg.Recorder) (domain.EventDetails, error) {
			if err := patch.Validate(); err != nil {
				return domain.EventDetails{}, err
			}
			tx := rec.Tx()
			current, err := ipg.GetFundingBudget(ctx, tx, id, true)
			if err != nil {
				return domain.EventDetails{}, err
			}
			next := current.Apply(patch)
			if err := ipg.UpdateFundingBudget(ctx, tx, next); err != nil {
				return domain.EventDetails{}, err
			}
			changes, err := rec.Updated(ctx, domain.ClassCANFundingBudget, id, current, next)
			if err != nil {
				return domain.EventDetails{}, err
			}
			updated = next
			return domain.EventDetails{
				Funding: &domain.FundingEventDetails{
					Id: id, CanId: next.CanId, FiscalYear: next.FiscalYear, Amount: next.Budget,
					Changes: changes,
				},
			}, nil
		},
	)
	if err != nil {
		return domain.CANFundingBudget{}, err
	}
	return updated, nil
}

func (c *pgCAN) CreateFundingReceived(ctx context.Context, actor int, r domain.CANFundingReceived) (domain.CANFundingReceived, error) {
	var created domain.CANFundingReceived
	_, err := ipg.Run(
		ctx, c.pool,
		ipg.Op{Actor: actor, EventType: domain.CreateCANFundingReceived, RequestId: domain.RequestIdOf(ctx)},
		func(ctx context.Context, rec *ipg.Recorder) (domain.EventDetails, error) {
			if err := r.Validate(); err != nil {
				return domain.EventDetails{}, err
			}
			tx := rec.Tx()
			if _, err := ipg.GetCAN(ctx, tx, r.CanId, true); err != nil {
				return domain.EventDetails{}, err
			}
			nr, err := ipg.InsertFundingReceived(ctx, tx, r)
			if err != nil {
				return domain.EventDetails{}, err
			}
			if err := rec.New(ctx, domain.ClassCANFundingReceived, nr.Id, nr); err != nil {
				return domain.EventDetails{}, err
			}
			created = nr
			return domain.EventDetails{
				Funding: &domain.FundingEventDetails{
					Id: nr.Id, CanId: nr.CanId, FiscalYear: nr.FiscalYear, Amount: nr.Funding,
				},
			}, nil
		},
	)
	if err != nil {
		return domain.CANFundingReceived{}, err
	}
	return created, nil
}
