package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// LeaseGuard is a run guard backed by an expiring lease row.
// A holder that dies without releasing blocks others only until the lease expires.
type LeaseGuard struct {
	db     *sqlx.DB
	name   string
	holder string
	ttl    time.Duration
	now    func() time.Time
}

func NewLeaseGuard(db *sqlx.DB, name string, ttl time.Duration) *LeaseGuard {
	return &LeaseGuard{
		db:     db,
		name:   name,
		holder: uuid.NewString(),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TryAcquire takes the lease if it is free or expired.
func (g *LeaseGuard) TryAcquire(ctx context.Context) (bool, error) {
	now := g.now()
	query := g.db.Rebind(`INSERT INTO run_leases (name, holder, expires_at) VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET holder = excluded.holder, expires_at = excluded.expires_at
		WHERE run_leases.expires_at <= ?`)

	res, err := g.db.ExecContext(ctx, query, g.name, g.holder, now.Add(g.ttl).UnixMilli(), now.UnixMilli())
	if err != nil {
		return false, fmt.Errorf("error acquiring lease %q: %w", g.name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading lease %q result: %w", g.name, err)
	}
	return n == 1, nil
}

// Release drops the lease if this guard still holds it.
func (g *LeaseGuard) Release(ctx context.Context) error {
	query := g.db.Rebind(`DELETE FROM run_leases WHERE name = ? AND holder = ?`)
	if _, err := g.db.ExecContext(ctx, query, g.name, g.holder); err != nil {
		return fmt.Errorf("error releasing lease %q: %w", g.name, err)
	}
	return nil
}
