package plan

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/karlseguin/ccache/v3"
)

// CachedRepository serves GetByID from an in-process cache. Writes go to the
// underlying repository and evict the cached entry.
type CachedRepository struct {
	Repository
	cache *ccache.Cache[*MembershipPlan]
	ttl   time.Duration
}

func NewCachedRepository(repo Repository, ttl time.Duration) *CachedRepository {
	return &CachedRepository{
		Repository: repo,
		cache:      ccache.New(ccache.Configure[*MembershipPlan]().MaxSize(500)),
		ttl:        ttl,
	}
}

func (r *CachedRepository) GetByID(ctx context.Context, id uuid.UUID) (*MembershipPlan, error) {
	key := id.String()
	if item := r.cache.Get(key); item != nil && !item.Expired() {
		p := *item.Value()
		return &p, nil
	}

	p, err := r.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cached := *p
	r.cache.Set(key, &cached, r.ttl)
	return p, nil
}

func (r *CachedRepository) Update(ctx context.Context, p *MembershipPlan) (*MembershipPlan, error) {
	updated, err := r.Repository.Update(ctx, p)
	r.cache.Delete(p.ID.String())
	return updated, err
}

func (r *CachedRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.Repository.Delete(ctx, id)
	r.cache.Delete(id.String())
	return err
}

func (r *CachedRepository) Stop() {
	r.cache.Stop()
}
