package mysql

import (
	"context"
	"errors"

	leaseDomain "rentbook-backend/internal/domain/lease"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LeaseRepository struct{ db *gorm.DB }

func NewLeaseRepository(db *gorm.DB) *LeaseRepository { return &LeaseRepository{db: db} }

func (r *LeaseRepository) Create(ctx context.Context, l *leaseDomain.Lease) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LeaseRepository) Save(ctx context.Context, l *leaseDomain.Lease) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LeaseRepository) GetByLeaseID(ctx context.Context, leaseID string) (*leaseDomain.Lease, error) {
	var out leaseDomain.Lease
	res := r.db.WithContext(ctx).Where("lease_id = ?", leaseID).First(&out)
	return &out, translateNotFound(res.Error, leaseDomain.ErrNotFound)
}

func (r *LeaseRepository) GetByLeaseIDForUpdate(ctx context.Context, leaseID string) (*leaseDomain.Lease, error) {
	var out leaseDomain.Lease
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("lease_id = ?", leaseID).
		First(&out)
	return &out, translateNotFound(res.Error, leaseDomain.ErrNotFound)
}

func (r *LeaseRepository) GetByRowID(ctx context.Context, rowID uint64) (*leaseDomain.Lease, error) {
	var out leaseDomain.Lease
	res := r.db.WithContext(ctx).Where("id = ?", rowID).First(&out)
	return &out, translateNotFound(res.Error, leaseDomain.ErrNotFound)
}

func (r *LeaseRepository) AppendStatusEvent(ctx context.Context, ev *leaseDomain.StatusEvent) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

func (r *LeaseRepository) ListStatusEvents(ctx context.Context, leaseRowID uint64) ([]leaseDomain.StatusEvent, error) {
	var out []leaseDomain.StatusEvent
	res := r.db.WithContext(ctx).
		Where("lease_id = ?", leaseRowID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

// translateNotFound maps gorm's record-not-found onto the domain sentinel so
// usecases never import gorm for error checks.
func translateNotFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
