package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const userCols = `id, email, password_hash, name, role, gender, phone, date_of_birth,
	address, blood_group, allergies, specialty, bio, hospital, experience,
	license_number, consultation_fee, education, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.Gender, &u.Phone,
		&u.DateOfBirth, &u.Address, &u.BloodGroup, &u.Allergies, &u.Specialty, &u.Bio,
		&u.Hospital, &u.Experience, &u.LicenseNumber, &u.ConsultationFee, &u.Education,
		&u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return &u, err
}

func (r *repoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, name, role, gender, specialty)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.Gender, u.Specialty)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrUserExists
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email))
}

func (r *repoPG) Update(ctx context.Context, u *User) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET name=$2, gender=$3, phone=$4, date_of_birth=$5, address=$6,
			blood_group=$7, allergies=$8, specialty=$9, bio=$10, hospital=$11,
			experience=$12, license_number=$13, consultation_fee=$14, education=$15,
			updated_at=NOW()
		WHERE id = $1`,
		u.ID, u.Name, u.Gender, u.Phone, u.DateOfBirth, u.Address,
		u.BloodGroup, u.Allergies, u.Specialty, u.Bio, u.Hospital,
		u.Experience, u.LicenseNumber, u.ConsultationFee, u.Education)
	return err
}

func (r *repoPG) ListDoctors(ctx context.Context, specialty string, limit, offset int) ([]*User, int, error) {
	where := ` WHERE role = 'DOCTOR'`
	var args []interface{}
	if specialty != "" {
		where += ` AND specialty = $1`
		args = append(args, specialty)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userCols, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var doctors []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		doctors = append(doctors, u)
	}
	return doctors, total, rows.Err()
}
