package repository

import (
	"context"

	"github.com/silvioaquino/Gestao-PDV/internal/model"
	"github.com/silvioaquino/Gestao-PDV/internal/pagamento"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VendaRepository interface {
	// Create inserts the sale and its Produtos.
	Create(ctx context.Context, tx *gorm.DB, v *model.Venda) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venda, error)
	List(ctx context.Context, f Filtro) ([]model.Venda, error)
	ListBySessao(ctx context.Context, tx *gorm.DB, caixaID uuid.UUID) ([]model.Venda, error)
	UpdateTipoPagamento(ctx context.Context, id uuid.UUID, tipo pagamento.Tipo) error
	// Delete removes the sale and its Produtos in one transaction.
	Delete(ctx context.Context, id uuid.UUID) error
	DB() *gorm.DB
}

type vendaRepo struct{ db *gorm.DB }

func NewVendaRepository(db *gorm.DB) VendaRepository { return &vendaRepo{db: db} }

func (r *vendaRepo) DB() *gorm.DB { return r.db }

func (r *vendaRepo) Create(ctx context.Context, tx *gorm.DB, v *model.Venda) error {
	return conn(ctx, r.db, tx).Create(v).Error
}

func (r *vendaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venda, error) {
	var v model.Venda
	err := r.db.WithContext(ctx).Preload("Produtos").First(&v, "id = ?", id).Error
	return &v, err
}

func (r *vendaRepo) List(ctx context.Context, f Filtro) ([]model.Venda, error) {
	var vendas []model.Venda
	q := f.aplicar(r.db.WithContext(ctx).Model(&model.Venda{}))
	err := q.Preload("Produtos").Order("data_venda DESC").Find(&vendas).Error
	return vendas, err
}

func (r *vendaRepo) ListBySessao(ctx context.Context, tx *gorm.DB, caixaID uuid.UUID) ([]model.Venda, error) {
	var vendas []model.Venda
	err := conn(ctx, r.db, tx).Preload("Produtos").
		Where("caixa_abertura_id = ?", caixaID).
		Order("data_venda ASC").
		Find(&vendas).Error
	return vendas, err
}

func (r *vendaRepo) UpdateTipoPagamento(ctx context.Context, id uuid.UUID, tipo pagamento.Tipo) error {
	res := r.db.WithContext(ctx).Model(&model.Venda{}).Where("id = ?", id).Update("tipo_pagamento", tipo)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *vendaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("venda_id = ?", id).Delete(&model.ProdutoVenda{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Venda{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
