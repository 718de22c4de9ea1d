package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/veydran/directorate/internal/model"
	"github.com/veydran/directorate/internal/rank"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userCols = `id, username, email, password_hash, rank, reports_to, hidden, credits, balance, created_at, updated_at`

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var reportsTo sql.NullString
	var hidden int

	err := scanner.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Rank,
		&reportsTo, &hidden, &u.Credits, &u.Balance, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}

	u.ReportsTo = idFromNull(reportsTo)
	u.Hidden = hidden != 0
	return &u, nil
}

func (s *UserStore) Create(username, email, passwordHash string, r rank.Rank, reportsTo *model.ID, hidden bool) (*model.User, error) {
	id := model.NewID()
	now := time.Now().UTC()

	var h int
	if hidden {
		h = 1
	}

	_, err := s.db.Exec(
		`INSERT INTO users (id, username, email, password_hash, rank, reports_to, hidden, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, username, email, passwordHash, r, nullID(reportsTo), h, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id model.ID) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
