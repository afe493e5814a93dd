package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"bank-ledger/domain"
)

const DefaultSnapshotTable = "ledger_snapshots"

type PostgresConfig struct {
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSchema   string
	Table      string
	MaxConns   int32
}

// PostgresSnapshotStore appends every snapshot as a new row; the row with
// the highest id is the latest.
type PostgresSnapshotStore struct {
	config  *PostgresConfig
	connStr string
	table   string
	pool    *pgxpool.Pool
	sb      sq.StatementBuilderType
	started *atomic.Bool
}

var _ SnapshotStore = (*PostgresSnapshotStore)(nil)

func NewPostgresSnapshotStore(config *PostgresConfig) *PostgresSnapshotStore {
	table := config.Table
	if table == "" {
		table = DefaultSnapshotTable
	}
	ident := pgx.Identifier{table}
	if config.DBSchema != "" {
		ident = pgx.Identifier{config.DBSchema, table}
	}

	return &PostgresSnapshotStore{
		config:  config,
		connStr: createConnectionString(config.DBHost, config.DBPort, config.DBName, config.DBUser, config.DBPassword),
		table:   ident.Sanitize(),
		sb:      sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		started: atomic.NewBool(false),
	}
}

// Start opens the connection pool and makes sure the snapshot table exists.
func (x *PostgresSnapshotStore) Start(ctx context.Context) error {
	if x.started.Load() {
		return nil
	}

	config, err := pgxpool.ParseConfig(x.connStr)
	if err != nil {
		return errors.Wrap(err, "failed to parse connection string")
	}
	if x.config.MaxConns > 0 {
		config.MaxConns = x.config.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return errors.Wrap(err, "failed to create the connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return errors.Wrap(err, "failed to ping the database connection")
	}

	if _, err := pool.Exec(ctx, x.schemaDDL()); err != nil {
		pool.Close()
		return errors.Wrapf(err, "failed to create table %s", x.table)
	}

	x.pool = pool
	x.started.Store(true)
	return nil
}

func (x *PostgresSnapshotStore) Stop() error {
	if !x.started.Load() {
		return nil
	}
	x.pool.Close()
	x.started.Store(false)
	return nil
}

func (x *PostgresSnapshotStore) SaveSnapshot(ctx context.Context, snapshot *domain.Snapshot) error {
	if !x.started.Load() {
		return errors.New("postgres snapshot store is not started")
	}
	if snapshot == nil {
		return errors.New("cannot save nil snapshot")
	}
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}

	query, args, err := x.sb.
		Insert(x.table).
		Columns(
			"format_version",
			"state",
			"account_count",
			"created_at").
		Values(
			snapshot.FormatVersion,
			string(snapshot.State),
			snapshot.AccountCount,
			snapshot.Timestamp,
		).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "failed to build insert statement")
	}

	tx, err := x.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "failed to insert snapshot of %d accounts", snapshot.AccountCount)
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit snapshot")
	}
	return nil
}

func (x *PostgresSnapshotStore) GetLatestSnapshot(ctx context.Context) (*domain.Snapshot, bool, error) {
	if !x.started.Load() {
		return nil, false, errors.New("postgres snapshot store is not started")
	}

	query, args, err := x.sb.
		Select(
			"format_version",
			"state",
			"account_count",
			"created_at").
		From(x.table).
		OrderBy("id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to build select statement")
	}

	var (
		snapshot domain.Snapshot
		state    []byte
	)
	err = x.pool.QueryRow(ctx, query, args...).Scan(&snapshot.FormatVersion, &state, &snapshot.AccountCount, &snapshot.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "failed to read latest snapshot")
	}

	snapshot.State = state
	snapshot.Timestamp = snapshot.Timestamp.UTC()
	return &snapshot, true, nil
}

func (x *PostgresSnapshotStore) schemaDDL() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id             BIGSERIAL PRIMARY KEY,
	format_version INT         NOT NULL,
	state          JSONB       NOT NULL,
	account_count  INT         NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`, x.table)
}

func createConnectionString(host string, port int, name, user string, password string) string {
	info := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable", host, port, user, name)
	if password != "" {
		info += fmt.Sprintf(" password=%s", password)
	}
	return info
}
