package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/silvioaquino/Gestao-PDV/internal/model"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IdempotenciaRepository stores the first 2xx response for an
// Idempotency-Key. Status 0 marks a key reserved by a request still in flight.
type IdempotenciaRepository interface {
	// Buscar returns the stored response, or nil when the key is unknown,
	// expired or still reserved.
	Buscar(ctx context.Context, chave string) (*model.ChaveIdempotencia, error)
	// Reservar claims chave for the caller; false means another request holds it.
	Reservar(ctx context.Context, chave string, ttl time.Duration) (bool, error)
	Salvar(ctx context.Context, k *model.ChaveIdempotencia) error
	Liberar(ctx context.Context, chave string) error
	RemoverExpiradas(ctx context.Context) (int64, error)
}

// ── SQL ──────────────────────────────────────────────────────────────────────

type idempotenciaRepo struct {
	db    *gorm.DB
	agora func() time.Time
}

func NewIdempotenciaRepository(db *gorm.DB) IdempotenciaRepository {
	return &idempotenciaRepo{db: db, agora: func() time.Time { return time.Now().UTC() }}
}

func (r *idempotenciaRepo) Buscar(ctx context.Context, chave string) (*model.ChaveIdempotencia, error) {
	var k model.ChaveIdempotencia
	err := r.db.WithContext(ctx).
		Where("chave = ? AND status > 0 AND expira_em > ?", chave, r.agora()).
		First(&k).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &k, err
}

func (r *idempotenciaRepo) Reservar(ctx context.Context, chave string, ttl time.Duration) (bool, error) {
	db := r.db.WithContext(ctx)
	agora := r.agora()
	if err := db.Where("chave = ? AND expira_em <= ?", chave, agora).Delete(&model.ChaveIdempotencia{}).Error; err != nil {
		return false, err
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.ChaveIdempotencia{
		Chave:    chave,
		ExpiraEm: agora.Add(ttl),
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *idempotenciaRepo) Salvar(ctx context.Context, k *model.ChaveIdempotencia) error {
	return r.db.WithContext(ctx).Model(&model.ChaveIdempotencia{}).
		Where("chave = ?", k.Chave).
		Updates(map[string]any{
			"status":       k.Status,
			"content_type": k.ContentType,
			"corpo":        k.Corpo,
			"expira_em":    k.ExpiraEm.UTC(),
		}).Error
}

func (r *idempotenciaRepo) Liberar(ctx context.Context, chave string) error {
	return r.db.WithContext(ctx).Where("chave = ? AND status = 0", chave).Delete(&model.ChaveIdempotencia{}).Error
}

func (r *idempotenciaRepo) RemoverExpiradas(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("expira_em <= ?", r.agora()).Delete(&model.ChaveIdempotencia{})
	return res.RowsAffected, res.Error
}

// ── Redis ────────────────────────────────────────────────────────────────────

const idempotenciaPrefix = "idem:"

type redisIdempotenciaRepo struct{ rdb *redis.Client }

// NewRedisIdempotenciaRepository keeps keys as JSON strings; expiry is left
// to Redis TTLs.
func NewRedisIdempotenciaRepository(rdb *redis.Client) IdempotenciaRepository {
	return &redisIdempotenciaRepo{rdb: rdb}
}

func (r *redisIdempotenciaRepo) Buscar(ctx context.Context, chave string) (*model.ChaveIdempotencia, error) {
	raw, err := r.rdb.Get(ctx, idempotenciaPrefix+chave).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var k model.ChaveIdempotencia
	if err := json.Unmarshal(raw, &k); err != nil {
		return nil, err
	}
	if k.Status == 0 {
		return nil, nil
	}
	return &k, nil
}

func (r *redisIdempotenciaRepo) Reservar(ctx context.Context, chave string, ttl time.Duration) (bool, error) {
	marcador, err := json.Marshal(model.ChaveIdempotencia{Chave: chave})
	if err != nil {
		return false, err
	}
	return r.rdb.SetNX(ctx, idempotenciaPrefix+chave, marcador, ttl).Result()
}

func (r *redisIdempotenciaRepo) Salvar(ctx context.Context, k *model.ChaveIdempotencia) error {
	data, err := json.Marshal(k)
	if err != nil {
		return err
	}
	ttl := time.Until(k.ExpiraEm)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, idempotenciaPrefix+k.Chave, data, ttl).Err()
}

func (r *redisIdempotenciaRepo) Liberar(ctx context.Context, chave string) error {
	return r.rdb.Del(ctx, idempotenciaPrefix+chave).Err()
}

func (r *redisIdempotenciaRepo) RemoverExpiradas(context.Context) (int64, error) { return 0, nil }
