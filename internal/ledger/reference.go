package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/flipledger/flipledger/internal/model"
)

const accountColumns = `id, code, name, type, purpose, active, description`

func scanAccount(row interface{ Scan(...any) error }) (model.Account, error) {
	var a model.Account
	var active int
	if err := row.Scan(&a.ID, &a.Code, &a.Name, &a.Type, &a.Purpose, &active, &a.Description); err != nil {
		return model.Account{}, err
	}
	a.Active = active != 0
	return a, nil
}

// CreateAccount inserts an account and returns its ID.
func (s *SQLiteStore) CreateAccount(ctx context.Context, a model.Account) (int64, error) {
	if model.ClassifyCode(a.Code) == model.ClassUnknown {
		return 0, model.ValidationError{Field: "code", Description: fmt.Sprintf("%q has no known class prefix", a.Code)}
	}
	if a.Purpose == "" {
		a.Purpose = model.PurposeBusiness
	}
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO accounts (code, name, type, purpose, active, description)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		a.Code, a.Name, string(a.Type), string(a.Purpose), boolInt(a.Active), a.Description,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting account %s: %w", a.Code, err)
	}
	return id, nil
}

// AccountByCode looks up an account by its code.
func (s *SQLiteStore) AccountByCode(ctx context.Context, code string) (model.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE code = ?`, code))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, fmt.Errorf("account %s: %w", code, ErrNotFound)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("querying account %s: %w", code, err)
	}
	return a, nil
}

// AccountByID looks up an account by ID.
func (s *SQLiteStore) AccountByID(ctx context.Context, id int64) (model.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, fmt.Errorf("account #%d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("querying account #%d: %w", id, err)
	}
	return a, nil
}

// Accounts returns every account ordered by code.
func (s *SQLiteStore) Accounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateVendor inserts a vendor and returns its ID.
func (s *SQLiteStore) CreateVendor(ctx context.Context, name string) (int64, error) {
	return s.insertNamed(ctx, "vendors", name)
}

// CreateJob inserts an open job and returns its ID.
func (s *SQLiteStore) CreateJob(ctx context.Context, name string) (int64, error) {
	return s.insertNamed(ctx, "jobs", name)
}

// CreateInstaller inserts an installer and returns its ID.
func (s *SQLiteStore) CreateInstaller(ctx context.Context, name string) (int64, error) {
	return s.insertNamed(ctx, "installers", name)
}

// CreateRehabCategory inserts a rehab category and returns its ID.
func (s *SQLiteStore) CreateRehabCategory(ctx context.Context, name string) (int64, error) {
	return s.insertNamed(ctx, "rehab_categories", name)
}

// table is always a package constant.
func (s *SQLiteStore) insertNamed(ctx context.Context, table, name string) (int64, error) {
	if name == "" {
		return 0, model.ValidationError{Field: "name", Description: "required"}
	}
	var id int64
	err := s.db.QueryRowContext(ctx, `INSERT INTO `+table+` (name) VALUES (?) RETURNING id`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting into %s: %w", table, err)
	}
	return id, nil
}

// SetVendorActive toggles a vendor's active flag.
func (s *SQLiteStore) SetVendorActive(ctx context.Context, id int64, active bool) error {
	return s.setFlag(ctx, "vendors", "active", id, active)
}

// SetJobOpen opens or closes a job.
func (s *SQLiteStore) SetJobOpen(ctx context.Context, id int64, open bool) error {
	return s.setFlag(ctx, "jobs", "open", id, open)
}

// SetAccountActive toggles an account's active flag.
func (s *SQLiteStore) SetAccountActive(ctx context.Context, id int64, active bool) error {
	return s.setFlag(ctx, "accounts", "active", id, active)
}

func (s *SQLiteStore) setFlag(ctx context.Context, table, column string, id int64, v bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE `+table+` SET `+column+` = ? WHERE id = ?`, boolInt(v), id)
	if err != nil {
		return fmt.Errorf("updating %s #%d: %w", table, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s #%d: %w", table, id, ErrNotFound)
	}
	return nil
}

// ReferenceData returns active vendors, open jobs, active installers, active
// income/expense accounts and all rehab categories.
func (s *SQLiteStore) ReferenceData(ctx context.Context) (model.ReferenceData, error) {
	var ref model.ReferenceData

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM vendors WHERE active = 1 ORDER BY name`)
	if err != nil {
		return ref, fmt.Errorf("querying vendors: %w", err)
	}
	err = eachRow(rows, func(r *sql.Rows) error {
		v := model.Vendor{Active: true}
		if err := r.Scan(&v.ID, &v.Name); err != nil {
			return err
		}
		ref.Vendors = append(ref.Vendors, v)
		return nil
	})
	if err != nil {
		return ref, fmt.Errorf("reading vendors: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT id, name FROM jobs WHERE open = 1 ORDER BY name`)
	if err != nil {
		return ref, fmt.Errorf("querying jobs: %w", err)
	}
	err = eachRow(rows, func(r *sql.Rows) error {
		j := model.Job{Open: true}
		if err := r.Scan(&j.ID, &j.Name); err != nil {
			return err
		}
		ref.Jobs = append(ref.Jobs, j)
		return nil
	})
	if err != nil {
		return ref, fmt.Errorf("reading jobs: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT id, name FROM installers WHERE active = 1 ORDER BY name`)
	if err != nil {
		return ref, fmt.Errorf("querying installers: %w", err)
	}
	err = eachRow(rows, func(r *sql.Rows) error {
		in := model.Installer{Active: true}
		if err := r.Scan(&in.ID, &in.Name); err != nil {
			return err
		}
		ref.Installers = append(ref.Installers, in)
		return nil
	})
	if err != nil {
		return ref, fmt.Errorf("reading installers: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE active = 1 ORDER BY code`)
	if err != nil {
		return ref, fmt.Errorf("querying accounts: %w", err)
	}
	err = eachRow(rows, func(r *sql.Rows) error {
		a, err := scanAccount(r)
		if err != nil {
			return err
		}
		if a.Class().IsCategory() {
			ref.Accounts = append(ref.Accounts, a)
		}
		return nil
	})
	if err != nil {
		return ref, fmt.Errorf("reading accounts: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT id, name FROM rehab_categories ORDER BY name`)
	if err != nil {
		return ref, fmt.Errorf("querying rehab categories: %w", err)
	}
	err = eachRow(rows, func(r *sql.Rows) error {
		var c model.RehabCategory
		if err := r.Scan(&c.ID, &c.Name); err != nil {
			return err
		}
		ref.RehabCategories = append(ref.RehabCategories, c)
		return nil
	})
	if err != nil {
		return ref, fmt.Errorf("reading rehab categories: %w", err)
	}

	return ref, nil
}

func eachRow(rows *sql.Rows, fn func(*sql.Rows) error) error {
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
