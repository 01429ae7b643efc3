package repository

import (
	"context"
	"errors"
	"time"

	"github.com/silvioaquino/Gestao-PDV/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSessaoNaoAberta is returned by FecharSessao when the row was not ABERTO.
var ErrSessaoNaoAberta = errors.New("repository: caixa não está aberto")

type CaixaRepository interface {
	CreateSessao(ctx context.Context, tx *gorm.DB, s *model.SessaoCaixa) error
	FindSessaoAberta(ctx context.Context, tx *gorm.DB) (*model.SessaoCaixa, error)
	FindSessaoByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.SessaoCaixa, error)
	// FindSessaoPorPeriodo returns the most recently opened session with
	// inicio <= data_abertura < fim.
	FindSessaoPorPeriodo(ctx context.Context, inicio, fim time.Time) (*model.SessaoCaixa, error)
	ListSessoes(ctx context.Context, page, limit int) ([]model.SessaoCaixa, int64, error)
	FecharSessao(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	CreateFechamento(ctx context.Context, tx *gorm.DB, f *model.FechamentoCaixa) error
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type caixaRepo struct{ db *gorm.DB }

func NewCaixaRepository(db *gorm.DB) CaixaRepository { return &caixaRepo{db: db} }

func (r *caixaRepo) DB() *gorm.DB { return r.db }

func (r *caixaRepo) CreateSessao(ctx context.Context, tx *gorm.DB, s *model.SessaoCaixa) error {
	return conn(ctx, r.db, tx).Create(s).Error
}

// bloquear reads the session row FOR UPDATE inside a transaction, so an entry
// being recorded and a close of the same session run one after the other.
// SQLite has no row locks; its single writer serializes them already.
func bloquear(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	q := conn(ctx, db, tx)
	if tx != nil {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func (r *caixaRepo) FindSessaoAberta(ctx context.Context, tx *gorm.DB) (*model.SessaoCaixa, error) {
	var s model.SessaoCaixa
	err := bloquear(ctx, r.db, tx).Where("status = ?", model.CaixaAberto).
		Order("data_abertura DESC").First(&s).Error
	return &s, err
}

func (r *caixaRepo) FindSessaoByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.SessaoCaixa, error) {
	var s model.SessaoCaixa
	err := bloquear(ctx, r.db, tx).Preload("Fechamento").First(&s, "id = ?", id).Error
	return &s, err
}

func (r *caixaRepo) FindSessaoPorPeriodo(ctx context.Context, inicio, fim time.Time) (*model.SessaoCaixa, error) {
	var s model.SessaoCaixa
	err := r.db.WithContext(ctx).Preload("Fechamento").
		Where("data_abertura >= ? AND data_abertura < ?", inicio.UTC(), fim.UTC()).
		Order("data_abertura DESC").
		First(&s).Error
	return &s, err
}

func (r *caixaRepo) ListSessoes(ctx context.Context, page, limit int) ([]model.SessaoCaixa, int64, error) {
	var sessoes []model.SessaoCaixa
	var total int64

	q := r.db.WithContext(ctx).Model(&model.SessaoCaixa{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Fechamento").
		Order("data_abertura DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&sessoes).Error
	return sessoes, total, err
}

// FecharSessao flips ABERTO to FECHADO. The WHERE on status makes a second
// concurrent close affect zero rows.
func (r *caixaRepo) FecharSessao(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := conn(ctx, r.db, tx).Model(&model.SessaoCaixa{}).
		Where("id = ? AND status = ?", id, model.CaixaAberto).
		Update("status", model.CaixaFechado)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSessaoNaoAberta
	}
	return nil
}

func (r *caixaRepo) CreateFechamento(ctx context.Context, tx *gorm.DB, f *model.FechamentoCaixa) error {
	return conn(ctx, r.db, tx).Create(f).Error
}
