package dbModel

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	Password  string    `db:"password"`
	CreatedAt time.Time `db:"created_at"`
}

type Portfolio struct {
	PortfolioID int64           `db:"portfolio_id"`
	UserID      int64           `db:"user_id"`
	Name        string          `db:"name"`
	Description sql.NullString  `db:"description"`
	CashBalance decimal.Decimal `db:"cash_balance"`
	IsDefault   bool            `db:"is_default"`
	CreatedAt   time.Time       `db:"created_at"`
}

type Position struct {
	PositionID  int64           `db:"position_id"`
	PortfolioID int64           `db:"portfolio_id"`
	Symbol      string          `db:"symbol"`
	Shares      decimal.Decimal `db:"shares"`
	AvgPrice    decimal.Decimal `db:"avg_price"`
	AddedAt     time.Time       `db:"added_at"`
}
