package portfolio

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/areddy/alphaseeker/internal/domain"
)

const dateLayout = "2006-01-02"

// Repository persists holdings in SQLite, keyed by user. The ledger only
// models buys: exiting a position is a delete, and every derived series is
// recomputed from the current snapshot, so removed positions leave no
// residue in invested value.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a holdings repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Add inserts a holding for a user. Quantity must be positive.
func (r *Repository) Add(userEmail string, h domain.Holding) (domain.Holding, error) {
	if h.Quantity <= 0 {
		return domain.Holding{}, fmt.Errorf("quantity must be positive, got %v", h.Quantity)
	}
	if h.Ticker == "" {
		return domain.Holding{}, fmt.Errorf("ticker is required")
	}

	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.Source == "" {
		h.Source = domain.SourceManual
	}

	_, err := r.db.Exec(
		`INSERT INTO holdings (id, user_email, ticker, quantity, buy_price, buy_date, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		h.ID, userEmail, h.Ticker, h.Quantity, h.BuyPrice, h.BuyDate.Format(dateLayout), string(h.Source),
	)
	if err != nil {
		return domain.Holding{}, fmt.Errorf("failed to insert holding: %w", err)
	}

	return h, nil
}

// ForUser returns all holdings for a user, oldest buy first
func (r *Repository) ForUser(userEmail string) ([]domain.Holding, error) {
	rows, err := r.db.Query(
		`SELECT id, ticker, quantity, buy_price, buy_date, source
		 FROM holdings WHERE user_email = ? ORDER BY buy_date, ticker`,
		userEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	var holdings []domain.Holding
	for rows.Next() {
		var (
			h       domain.Holding
			buyDate string
			source  string
		)
		if err := rows.Scan(&h.ID, &h.Ticker, &h.Quantity, &h.BuyPrice, &buyDate, &source); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		h.BuyDate, err = time.Parse(dateLayout, buyDate)
		if err != nil {
			return nil, fmt.Errorf("bad buy_date %q: %w", buyDate, err)
		}
		h.Source = domain.HoldingSource(source)
		holdings = append(holdings, h)
	}

	return holdings, rows.Err()
}

// DeleteByTicker removes every holding of a ticker for a user.
// Returns the number of rows removed.
func (r *Repository) DeleteByTicker(userEmail, ticker string) (int64, error) {
	res, err := r.db.Exec(
		`DELETE FROM holdings WHERE user_email = ? AND ticker = ?`,
		userEmail, ticker,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete holdings: %w", err)
	}
	return res.RowsAffected()
}

// ReplaceBrokerHoldings swaps out every broker-sourced holding for a fresh
// batch inside one transaction. Manual entries are untouched.
func (r *Repository) ReplaceBrokerHoldings(userEmail string, fresh []domain.Holding) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM holdings WHERE user_email = ? AND source = ?`,
		userEmail, string(domain.SourceBroker),
	); err != nil {
		return 0, fmt.Errorf("failed to clear broker holdings: %w", err)
	}

	added := 0
	for _, h := range fresh {
		if h.Quantity <= 0 {
			continue
		}
		id := h.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := tx.Exec(
			`INSERT INTO holdings (id, user_email, ticker, quantity, buy_price, buy_date, source)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, userEmail, h.Ticker, h.Quantity, h.BuyPrice, h.BuyDate.Format(dateLayout), string(domain.SourceBroker),
		); err != nil {
			return 0, fmt.Errorf("failed to insert broker holding: %w", err)
		}
		added++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit broker sync: %w", err)
	}

	return added, nil
}
