package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"edu-platform/internal/domain/model"
	"edu-platform/internal/domain/ports/repository"
	red "edu-platform/internal/infra/redis"
)

var _ repository.PackageRepository = (*packageRepoCacheDecorator)(nil)

// packageRepoCacheDecorator puts a Redis read-through cache in front of the
// package repo. Packages are read on every redemption and storefront view but
// change rarely; writes invalidate the affected keys.
type packageRepoCacheDecorator struct {
	inner repository.PackageRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewPackageRepoCacheDecorator(inner repository.PackageRepository, cache red.RedisClient, ttl time.Duration) repository.PackageRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &packageRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func packageKey(id string) string     { return fmt.Sprintf("package:%s", id) }
func packageGradeKey(g string) string { return fmt.Sprintf("packages:grade:%s", g) }

const packageListKey = "packages:all"

func (d *packageRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Package, error) {
	if val, err := d.cache.Get(ctx, packageKey(id)); err == nil {
		var pkg model.Package
		if json.Unmarshal([]byte(val), &pkg) == nil {
			return &pkg, nil
		}
	}
	pkg, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(pkg); err == nil {
		_ = d.cache.Set(ctx, packageKey(id), bytes, d.ttl)
	}
	return pkg, nil
}

func (d *packageRepoCacheDecorator) ListByGrade(ctx context.Context, tx repository.Tx, grade string) ([]*model.Package, error) {
	if val, err := d.cache.Get(ctx, packageGradeKey(grade)); err == nil {
		var pkgs []*model.Package
		if json.Unmarshal([]byte(val), &pkgs) == nil {
			return pkgs, nil
		}
	}
	pkgs, err := d.inner.ListByGrade(ctx, tx, grade)
	if err != nil {
		return nil, err
	}
	if len(pkgs) > 0 {
		if bytes, err := json.Marshal(pkgs); err == nil {
			_ = d.cache.Set(ctx, packageGradeKey(grade), bytes, d.ttl)
		}
	}
	return pkgs, nil
}

func (d *packageRepoCacheDecorator) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Package, error) {
	// Admin-only path; not worth caching.
	return d.inner.ListAll(ctx, tx)
}

func (d *packageRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, pkg *model.Package) error {
	d.invalidate(ctx, pkg.ID, pkg.Grade)
	return d.inner.Save(ctx, tx, pkg)
}

func (d *packageRepoCacheDecorator) Delete(ctx context.Context, tx repository.Tx, id string) error {
	if pkg, err := d.inner.FindByID(ctx, tx, id); err == nil {
		d.invalidate(ctx, pkg.ID, pkg.Grade)
	}
	return d.inner.Delete(ctx, tx, id)
}

func (d *packageRepoCacheDecorator) invalidate(ctx context.Context, id, grade string) {
	_ = d.cache.Del(ctx, packageKey(id), packageGradeKey(grade), packageListKey)
}
