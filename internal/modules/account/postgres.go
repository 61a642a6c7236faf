package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pharmakart/pharmacy-backend/internal/apperr"
	"github.com/pharmakart/pharmacy-backend/internal/database"
)

type postgresRepo struct{ db *sqlx.DB }

// NewPostgresRepository returns the PostgreSQL-backed account store.
func NewPostgresRepository(db *sqlx.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) RegisterManager(ctx context.Context, m *Manager, shopName string) (*Shop, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin registration: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO managers (phone, name, password_hash) VALUES ($1, $2, $3)`,
		m.Phone, m.Name, m.PasswordHash)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.New(apperr.Conflict, "phone number already exists")
		}
		return nil, fmt.Errorf("insert manager: %w", err)
	}

	shop := &Shop{Name: shopName, ManagerPhone: m.Phone}
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO shops (shopname, manager_phone) VALUES ($1, $2) RETURNING shop_id`,
		shop.Name, shop.ManagerPhone).Scan(&shop.ID)
	if err != nil {
		return nil, fmt.Errorf("insert first shop: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit registration: %w", err)
	}
	return shop, nil
}

func (r *postgresRepo) GetManager(ctx context.Context, phone string) (*Manager, error) {
	m := &Manager{}
	err := r.db.GetContext(ctx, m,
		`SELECT phone, name, password_hash FROM managers WHERE phone = $1`, phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "manager not found")
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *postgresRepo) UpdateManagerPassword(ctx context.Context, phone, hash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE managers SET password_hash = $1 WHERE phone = $2`, hash, phone)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "manager not found")
	}
	return nil
}

func (r *postgresRepo) PhoneInUse(ctx context.Context, phone string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
        SELECT EXISTS (
            SELECT 1 FROM managers WHERE phone = $1
            UNION ALL
            SELECT 1 FROM staff WHERE phone = $1
        )`, phone)
	return exists, err
}

func (r *postgresRepo) CreateShop(ctx context.Context, s *Shop) error {
	return r.db.QueryRowxContext(ctx,
		`INSERT INTO shops (shopname, manager_phone) VALUES ($1, $2) RETURNING shop_id`,
		s.Name, s.ManagerPhone).Scan(&s.ID)
}

func (r *postgresRepo) GetShop(ctx context.Context, id int64) (*Shop, error) {
	s := &Shop{}
	err := r.db.GetContext(ctx, s,
		`SELECT shop_id, shopname, manager_phone FROM shops WHERE shop_id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "shop not found")
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) ListShopsByManager(ctx context.Context, phone string) ([]*Shop, error) {
	var shops []*Shop
	err := r.db.SelectContext(ctx, &shops,
		`SELECT shop_id, shopname, manager_phone FROM shops WHERE manager_phone = $1 ORDER BY shop_id`, phone)
	return shops, err
}

func (r *postgresRepo) RenameShop(ctx context.Context, id int64, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE shops SET shopname = $1 WHERE shop_id = $2`, name, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "shop not found")
	}
	return nil
}

func (r *postgresRepo) DeleteShop(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shops WHERE shop_id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "shop not found")
	}
	return nil
}

func (r *postgresRepo) CreateStaff(ctx context.Context, st *Staff) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO staff (phone, name, password_hash, shop_id, is_active) VALUES ($1, $2, $3, $4, $5)`,
		st.Phone, st.Name, st.PasswordHash, st.ShopID, st.IsActive)
	if database.IsUniqueViolation(err) {
		return apperr.New(apperr.Conflict, "phone number already exists")
	}
	return err
}

func (r *postgresRepo) GetStaffByPhone(ctx context.Context, phone string) (*Staff, error) {
	st := &Staff{}
	err := r.db.GetContext(ctx, st,
		`SELECT phone, name, password_hash, shop_id, is_active FROM staff WHERE phone = $1`, phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "staff not found")
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (r *postgresRepo) GetStaffInShop(ctx context.Context, phone string, shopID int64) (*Staff, error) {
	st := &Staff{}
	err := r.db.GetContext(ctx, st,
		`SELECT phone, name, password_hash, shop_id, is_active FROM staff WHERE phone = $1 AND shop_id = $2`,
		phone, shopID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "staff not found")
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (r *postgresRepo) ListStaffByShop(ctx context.Context, shopID int64) ([]*Staff, error) {
	var staff []*Staff
	err := r.db.SelectContext(ctx, &staff,
		`SELECT phone, name, password_hash, shop_id, is_active FROM staff WHERE shop_id = $1 ORDER BY phone`,
		shopID)
	return staff, err
}

func (r *postgresRepo) UpdateStaffPassword(ctx context.Context, phone, hash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE staff SET password_hash = $1 WHERE phone = $2`, hash, phone)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "staff not found")
	}
	return nil
}

func (r *postgresRepo) DeleteStaff(ctx context.Context, phone string, shopID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM staff WHERE phone = $1 AND shop_id = $2`, phone, shopID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "staff not found")
	}
	return nil
}
