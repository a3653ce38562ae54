package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	kpool "github.com/opre/ops/pkg/conn/db/postgres/pool"
	"github.com/opre/ops/pkg/domain"
	xepg "github.com/opre/ops/pkg/domain/errors/dberrors/postgres"
	xe "github.com/opre/ops/pkg/errors"
)

// GetUsers returns users by id. Unknown ids are not in the result.
func GetUsers(ctx context.Context, conn kpool.Queryer, ids []int) (map[int]domain.User, error) {
	rows, err := conn.Query(
		ctx,
		`
		select "id", "email", "full_name", "division_id", "roles"
		from "ops_user" where "id" = any($1)
		`,
		ids,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	users := map[int]domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users[u.Id] = u
	}
	return users, xe.Wrap(rows.Err())
}

// GetUser returns a user, or Missing.
func GetUser(ctx context.Context, conn kpool.Queryer, id int) (domain.User, error) {
	users, err := GetUsers(ctx, conn, []int{id})
	if err != nil {
		return domain.User{}, err
	}
	u, ok := users[id]
	if !ok {
		return domain.User{}, xe.Wrap(xepg.Missing{Table: "ops_user", Identity: fmt.Sprintf("id = %d", id)})
	}
	return u, nil
}

// UsersWithRoles returns ids of users holding any of the roles.
func UsersWithRoles(ctx context.Context, conn kpool.Queryer, roles []domain.Role) ([]int, error) {
	if len(roles) == 0 {
		return []int{}, nil
	}
	rows, err := conn.Query(
		ctx,
		`select "id" from "ops_user" where "roles" && $1 order by "id"`,
		Roles(roles),
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, xe.Wrap(err)
		}
		ids = append(ids, id)
	}
	return ids, xe.Wrap(rows.Err())
}

func scanUser(row pgx.Row) (domain.User, error) {
	u := domain.User{}
	var roles []string
	if err := row.Scan(&u.Id, &u.Email, &u.FullName, &u.DivisionId, &roles); err != nil {
		return domain.User{}, xe.Wrap(err)
	}
	rs, err := AsRoles(roles)
	if err != nil {
		return domain.User{}, xe.Wrap(err)
	}
	u.Roles = rs
	return u, nil
}

// DivisionOfCAN returns the division owning the CAN through its portfolio.
func DivisionOfCAN(ctx context.Context, conn kpool.Queryer, canId int) (domain.Division, error) {
	d := domain.Division{}
	err := conn.QueryRow(
		ctx,
		`
		select "d"."id", "d"."name", "d"."abbreviation",
			"d"."division_director_id", "d"."deputy_division_director_id"
		from "can" as "c"
		inner join "portfolio" as "p" on "p"."id" = "c"."portfolio_id"
		inner join "division" as "d" on "d"."id" = "p"."division_id"
		where "c"."id" = $1
		`,
		canId,
	).Scan(&d.Id, &d.Name, &d.Abbreviation, &d.DivisionDirectorId, &d.DeputyDivisionDirectorId)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Division{}, xe.Wrap(xepg.Missing{Table: "can", Identity: fmt.Sprintf("id = %d", canId)})
	}
	if err != nil {
		return domain.Division{}, xe.Wrap(err)
	}
	return d, nil
}

// GetPortfolio returns a portfolio, or Missing.
func GetPortfolio(ctx context.Context, conn kpool.Queryer, id int) (domain.Portfolio, error) {
	p := domain.Portfolio{}
	err := conn.QueryRow(
		ctx,
		`select "id", "name", "abbreviation", "division_id" from "portfolio" where "id" = $1`,
		id,
	).Scan(&p.Id, &p.Name, &p.Abbreviation, &p.DivisionId)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Portfolio{}, xe.Wrap(xepg.Missing{Table: "portfolio", Identity: fmt.Sprintf("id = %d", id)})
	}
	if err != nil {
		return domain.Portfolio{}, xe.Wrap(err)
	}
	return p, nil
}
