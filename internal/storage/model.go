package storage

import (
	"database/sql"
	"time"
)

type dbTransaction struct {
	ID       string
	Date     time.Time
	Time     string
	Title    string
	Amount   float64
	Category string
	Notes    sql.NullString
}
