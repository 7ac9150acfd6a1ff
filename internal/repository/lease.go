package repository

import (
	"context"
	"database/sql"
	"hash/fnv"
)

// TickLease guards a worker kind's tick with a Postgres advisory lock, so at
// most one tick per kind runs at a time even across processes. Advisory
// locks are session-scoped, so each acquisition pins a single pooled
// connection until release; if the process dies mid-tick the server frees the
// lock with the session.
type TickLease struct {
	DB *sql.DB
}

// leaseKeySpace namespaces our advisory locks away from other users of the
// same database.
const leaseKeySpace = int32(0x77616c) // "wal"

func leaseKey(workerKind string) int32 {
	h := fnv.New32a()
	h.Write([]byte(workerKind))
	return int32(h.Sum32())
}

// TryAcquire attempts to take the lease for a worker kind without blocking.
// On success it returns a release func that must be called at tick end; on a
// busy lease it returns ok=false and a nil release.
func (l *TickLease) TryAcquire(ctx context.Context, workerKind string) (ok bool, release func() error, err error) {
	conn, err := l.DB.Conn(ctx)
	if err != nil {
		return false, nil, err
	}

	var acquired bool
	err = conn.QueryRowContext(ctx,
		`SELECT pg_try_advisory_lock($1, $2)`,
		leaseKeySpace, leaseKey(workerKind),
	).Scan(&acquired)
	if err != nil || !acquired {
		conn.Close()
		return false, nil, err
	}

	release = func() error {
		_, unlockErr := conn.ExecContext(context.Background(),
			`SELECT pg_advisory_unlock($1, $2)`,
			leaseKeySpace, leaseKey(workerKind),
		)
		closeErr := conn.Close()
		if unlockErr != nil {
			return unlockErr
		}
		return closeErr
	}
	return true, release, nil
}
