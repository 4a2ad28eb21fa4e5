package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	appErrors "github.com/finledger/finance_ledger/customErrors"
	"github.com/finledger/finance_ledger/internal/contextutil"
	"github.com/finledger/finance_ledger/internal/ledger"
	"github.com/finledger/finance_ledger/logging"
	"github.com/go-sql-driver/mysql"
)

// --- INIT START --- //

func Init() (*sql.DB, error) {
	var db *sql.DB
	var err error
	var dbname string

	username := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASS")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	dbname = os.Getenv("DB_NAME")
	fullDsn := os.Getenv("FULL_DSN")

	if dbname == "" {
		dbname = "finance_ledger"
	}

	var adminDsn string
	if fullDsn != "" {
		parts := strings.Split(fullDsn, "/")
		adminDsn = strings.Join(parts[:len(parts)-1], "/") + "/"
	} else {
		if username == "" || password == "" || host == "" || port == "" {
			return nil, fmt.Errorf("missing required DB environment variables")
		}
		adminDsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/?parseTime=true", username, password, host, port)
	}

	logging.Logger.Info("Connecting to MySQL server for initialization...")
	adminDb, err := sql.Open("mysql", adminDsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open admin mysql handle: %v", err)
	}
	connected := false
	for i := 0; i < 15; i++ {
		if err := adminDb.Ping(); err == nil {
			connected = true
			break
		}
		logging.Logger.Warnf("Database not ready, retrying... (%d/15)", i+1)
		time.Sleep(3 * time.Second)
	}
	if !connected {
		return nil, fmt.Errorf("database unreachable after multiple attempts")
	}

	var dbnameExistence string
	checkDbnameExistQuery := "SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?"
	err = adminDb.QueryRow(checkDbnameExistQuery, dbname).Scan(&dbnameExistence)

	if err == sql.ErrNoRows {
		logging.Logger.Infof("Database '%s' does not exist, creating...", dbname)
		createDbSql := fmt.Sprintf("CREATE DATABASE `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_general_ci;", dbname)
		if _, err := adminDb.Exec(createDbSql); err != nil {
			adminDb.Close()
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	} else if err != nil {
		adminDb.Close()
		return nil, fmt.Errorf("failed to check database existence: %v", err)
	}

	adminDb.Close()

	var finalDsn string
	if fullDsn != "" {
		finalDsn = fullDsn
	} else {
		finalDsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", username, password, host, port, dbname)
	}

	logging.Logger.Info("Connecting to database...")
	db, err = sql.Open("mysql", finalDsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database handle: %v", err)
	}

	if _, err := db.Exec("SET time_zone = '+00:00'"); err != nil {
		logging.Logger.Warn("failed to set database timezone(UTC+0)")
	}

	logging.Logger.Info("Connected to database successfully")
	logging.Logger.Info("Running migrations...")

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	return db, nil
}

func runMigrations(db *sql.DB) error {
	migrationFiles, err := getMigrationFiles("db/migrations")
	if err != nil {
		return fmt.Errorf("failed to get migration files: %v", err)
	}

	lastAppliedMigration, err := getLastAppliedMigration(db)
	if err != nil {
		return fmt.Errorf("failed to get last applied migration name: %v", err)
	}

	newMigrations := filterNewMigrations(migrationFiles, lastAppliedMigration)

	if len(newMigrations) == 0 {
		logging.Logger.Info("no new migration")
		return nil
	}

	for _, migrationFile := range newMigrations {
		logging.Logger.Info("applying migration: ", migrationFile)
		migrationContent, err := os.ReadFile(filepath.Join("db/migrations/", migrationFile))
		if err != nil {
			return fmt.Errorf("failed to read this '%s' migration file, error: %v", migrationFile, err)
		}

		err = applyMigration(db, migrationFile, string(migrationContent))
		if err != nil {
			return fmt.Errorf("failed to apply this '%s' migration file, error: %v", migrationFile, err)
		}

	}

	logging.Logger.Info("all migrations applied successfully")
	return nil
}

func getMigrationFiles(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var migrationFiles []string
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".sql") {
			migrationFiles = append(migrationFiles, file.Name())
		}
	}

	sort.Strings(migrationFiles)
	return migrationFiles, nil
}

func getLastAppliedMigration(db *sql.DB) (string, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS migration (
        id INT AUTO_INCREMENT PRIMARY KEY,
        migration_name VARCHAR(255) NOT NULL UNIQUE,
        applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );`)

	if err != nil {
		return "", err
	}

	var lastMigration string
	err = db.QueryRow("SELECT migration_name FROM migration ORDER BY migration_name DESC LIMIT 1").Scan(&lastMigration)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return lastMigration, err
}

func filterNewMigrations(all []string, lastApplied string) []string {
	if lastApplied == "" {
		return all
	}

	var result []string
	for _, migration := range all {
		if migration > lastApplied {
			result = append(result, migration)
		}
	}
	return result
}

func applyMigration(db *sql.DB, name, sqlContent string) error {
	txn, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	statements := strings.Split(sqlContent, ";")

	for _, statement := range statements {
		trimmedStmt := strings.TrimSpace(statement)
		if trimmedStmt == "" {
			continue
		}

		if _, err := txn.Exec(trimmedStmt); err != nil {
			txn.Rollback()
			return fmt.Errorf("migration statement failed: %w\nStatement: %s", err, trimmedStmt)
		}
	}

	if _, err := txn.Exec("INSERT INTO migration (migration_name) VALUES (?)", name); err != nil {
		txn.Rollback()
		return fmt.Errorf("failed to record migration name: %w", err)
	}

	return txn.Commit()
}

// --- INIT END --- //

type MySQLStorage struct {
	db *sql.DB
}

func NewMySQLStorage(db *sql.DB) *MySQLStorage {
	return &MySQLStorage{db: db}
}

func (mySql *MySQLStorage) GetStorageType() string {
	return "mysql"
}

func NilToNullFloat64(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{Valid: false}
	}
	return sql.NullFloat64{Valid: true, Float64: *v}
}

func NilToNullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{Valid: true, String: *v}
}

func NilToNullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Valid: true, Time: *v}
}

func (mySql *MySQLStorage) SaveTransaction(ctx context.Context, t ledger.Transaction) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "INSERT INTO transaction (id, date, time, title, amount, category, notes) VALUES (?, ?, ?, ?, ?, ?, ?);"
	_, err := mySql.db.ExecContext(ctx, query, t.ID, t.Date, t.Time, t.Title, t.Amount, t.Category, t.Notes)
	if err != nil {
		if mysqlErr, ok := err.(*mysql.MySQLError); ok {
			if mysqlErr.Number == 1062 {
				logging.Logger.Errorf("[TraceID=%s] | duplicate transaction id in Storage.SaveTransaction() function | ID: %s", traceID, t.ID)
				return appErrors.ErrorResponse{
					Code:    appErrors.ErrInternal,
					Message: "Failed to save transaction, try again later.",
				}
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to save transaction in Storage.SaveTransaction() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to save transaction, try again later.",
		}
	}
	return nil
}

func (mySql *MySQLStorage) GetAllTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "SELECT id, date, time, title, amount, category, notes FROM transaction;"
	rows, err := mySql.db.QueryContext(ctx, query)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to get transactions in Storage.GetAllTransactions() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to get transactions, try again later.",
		}
	}

	return mySql.processTransactionRows(ctx, rows)
}

func (mySql *MySQLStorage) GetTransactionById(ctx context.Context, id string) (ledger.Transaction, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "SELECT id, date, time, title, amount, category, notes FROM transaction WHERE id = ?;"
	var dbT dbTransaction

	err := mySql.db.QueryRowContext(ctx, query, id).Scan(
		&dbT.ID,
		&dbT.Date,
		&dbT.Time,
		&dbT.Title,
		&dbT.Amount,
		&dbT.Category,
		&dbT.Notes,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.Transaction{}, appErrors.ErrorResponse{
				Code:    appErrors.ErrNotFound,
				Message: "Transaction not found",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to get transaction in Storage.GetTransactionById() function | Error: %v", traceID, err)
		return ledger.Transaction{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to get transaction, try again later.",
		}
	}

	return toLedgerTransaction(dbT), nil
}

func (mySql *MySQLStorage) UpdateTransaction(ctx context.Context, id string, fields ledger.UpdateTransactionFields) (ledger.Transaction, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	// Existence check first: COALESCE updates report zero affected rows
	// both for a missing id and for a no-op change.
	if _, err := mySql.GetTransactionById(ctx, id); err != nil {
		return ledger.Transaction{}, err
	}

	query := `UPDATE transaction
		SET date = COALESCE(?, date),
		    time = COALESCE(?, time),
		    title = COALESCE(?, title),
		    amount = COALESCE(?, amount),
		    category = COALESCE(?, category),
		    notes = COALESCE(?, notes)
		WHERE id = ?`
	_, err := mySql.db.ExecContext(ctx, query,
		NilToNullTime(fields.Date),
		NilToNullString(fields.Time),
		NilToNullString(fields.Title),
		NilToNullFloat64(fields.Amount),
		NilToNullString(fields.Category),
		NilToNullString(fields.Notes),
		id,
	)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to update transaction in Storage.UpdateTransaction() function | Error: %v", traceID, err)
		return ledger.Transaction{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to update transaction, try again later.",
		}
	}

	return mySql.GetTransactionById(ctx, id)
}

func (mySql *MySQLStorage) DeleteTransaction(ctx context.Context, id string) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "DELETE FROM transaction WHERE id = ?;"
	res, err := mySql.db.ExecContext(ctx, query, id)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to delete transaction in Storage.DeleteTransaction() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to delete transaction, try again later.",
		}
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to check affected rows in Storage.DeleteTransaction() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to delete transaction, try again later.",
		}
	}

	if rowsAffected == 0 {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrNotFound,
			Message: "Transaction not found",
		}
	}

	return nil
}

func (mySql *MySQLStorage) GetTransactionsByCategories(ctx context.Context, categories []string) ([]ledger.Transaction, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	if len(categories) == 0 {
		return []ledger.Transaction{}, nil
	}

	placeholders := strings.Repeat("?, ", len(categories)-1) + "?"
	query := fmt.Sprintf("SELECT id, date, time, title, amount, category, notes FROM transaction WHERE category IN (%s);", placeholders)

	args := make([]interface{}, len(categories))
	for i, category := range categories {
		args[i] = category
	}

	rows, err := mySql.db.QueryContext(ctx, query, args...)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to get transactions by categories in Storage.GetTransactionsByCategories() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to get transactions, try again later.",
		}
	}

	return mySql.processTransactionRows(ctx, rows)
}

func (mySql *MySQLStorage) processTransactionRows(ctx context.Context, rows *sql.Rows) ([]ledger.Transaction, error) {
	traceID := contextutil.TraceIDFromContext(ctx)
	defer rows.Close()

	var transactions []ledger.Transaction

	for rows.Next() {
		var dbT dbTransaction

		err := rows.Scan(&dbT.ID, &dbT.Date, &dbT.Time, &dbT.Title, &dbT.Amount, &dbT.Category, &dbT.Notes)
		if err != nil {
			logging.Logger.Errorf("[TraceID=%s] | failed to scan row in Storage.processTransactionRows() function | Error: %v", traceID, err)
			return nil, appErrors.ErrorResponse{
				Code:    appErrors.ErrInternal,
				Message: "Failed to get transactions, try again later.",
			}
		}

		transactions = append(transactions, toLedgerTransaction(dbT))
	}

	if err := rows.Err(); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | row iteration failed in Storage.processTransactionRows() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to get transactions, try again later.",
		}
	}

	return transactions, nil
}

func toLedgerTransaction(dbT dbTransaction) ledger.Transaction {
	return ledger.Transaction{
		ID:       dbT.ID,
		Date:     dbT.Date.UTC(),
		Time:     dbT.Time,
		Title:    dbT.Title,
		Amount:   dbT.Amount,
		Category: dbT.Category,
		Notes:    dbT.Notes.String,
	}
}
