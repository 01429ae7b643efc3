package repository

import (
	"context"

	"github.com/silvioaquino/Gestao-PDV/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── Vendas manuais ───────────────────────────────────────────────────────────

type VendaManualRepository interface {
	Create(ctx context.Context, tx *gorm.DB, v *model.VendaManual) error
	List(ctx context.Context, f Filtro) ([]model.VendaManual, error)
	ListBySessao(ctx context.Context, tx *gorm.DB, caixaID uuid.UUID) ([]model.VendaManual, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type vendaManualRepo struct{ db *gorm.DB }

func NewVendaManualRepository(db *gorm.DB) VendaManualRepository { return &vendaManualRepo{db: db} }

func (r *vendaManualRepo) Create(ctx context.Context, tx *gorm.DB, v *model.VendaManual) error {
	return conn(ctx, r.db, tx).Create(v).Error
}

func (r *vendaManualRepo) List(ctx context.Context, f Filtro) ([]model.VendaManual, error) {
	var out []model.VendaManual
	err := f.aplicar(r.db.WithContext(ctx)).Order("data_venda DESC").Find(&out).Error
	return out, err
}

func (r *vendaManualRepo) ListBySessao(ctx context.Context, tx *gorm.DB, caixaID uuid.UUID) ([]model.VendaManual, error) {
	var out []model.VendaManual
	err := conn(ctx, r.db, tx).Where("caixa_abertura_id = ?", caixaID).Order("data_venda ASC").Find(&out).Error
	return out, err
}

func (r *vendaManualRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &model.VendaManual{}, id)
}

// ── Retiradas ────────────────────────────────────────────────────────────────

type RetiradaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, r *model.Retirada) error
	List(ctx context.Context, f Filtro) ([]model.Retirada, error)
	ListBySessao(ctx context.Context, tx *gorm.DB, caixaID uuid.UUID) ([]model.Retirada, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type retiradaRepo struct{ db *gorm.DB }

func NewRetiradaRepository(db *gorm.DB) RetiradaRepository { return &retiradaRepo{db: db} }

func (r *retiradaRepo) Create(ctx context.Context, tx *gorm.DB, ret *model.Retirada) error {
	return conn(ctx, r.db, tx).Create(ret).Error
}

func (r *retiradaRepo) List(ctx context.Context, f Filtro) ([]model.Retirada, error) {
	var out []model.Retirada
	err := f.aplicar(r.db.WithContext(ctx)).Order("data_retirada DESC").Find(&out).Error
	return out, err
}

func (r *retiradaRepo) ListBySessao(ctx context.Context, tx *gorm.DB, caixaID uuid.UUID) ([]model.Retirada, error) {
	var out []model.Retirada
	err := conn(ctx, r.db, tx).Where("caixa_abertura_id = ?", caixaID).Order("data_retirada ASC").Find(&out).Error
	return out, err
}

func (r *retiradaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &model.Retirada{}, id)
}

func deleteByID(ctx context.Context, db *gorm.DB, v any, id uuid.UUID) error {
	res := db.WithContext(ctx).Delete(v, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
