package infra

import (
	"fmt"
	"strings"
	"time"

	"github.com/silvioaquino/Gestao-PDV/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite:"

// NewDatabase opens a GORM connection and migrates the schema.
// DSNs starting with "sqlite:" use SQLite (single store, tests); anything else
// is handed to the PostgreSQL driver.
func NewDatabase(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}

	var dialector gorm.Dialector
	sqliteDSN, isSQLite := strings.CutPrefix(dsn, sqlitePrefix)
	if isSQLite {
		dialector = sqlite.Open(sqliteDSN)
	} else {
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if isSQLite {
		// SQLite serializes writers; one connection avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("sqlite pragma: %w", err)
		}
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates every table, then applies the PostgreSQL
// constraints AutoMigrate cannot express.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.SessaoCaixa{},
		&model.FechamentoCaixa{},
		&model.Venda{},
		&model.ProdutoVenda{},
		&model.VendaManual{},
		&model.Retirada{},
		&model.ChaveIdempotencia{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL; each statement checks pg_constraint
// first so re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	checks := []struct{ table, name, expr string }{
		{"vendas", "chk_vendas_valor_total", "valor_total > 0"},
		{"venda_manuais", "chk_venda_manuais_valor", "valor > 0"},
		{"retiradas", "chk_retiradas_valor", "valor > 0"},
		{"caixa_aberturas", "chk_caixa_aberturas_valor_inicial", "valor_inicial >= 0"},
		{"caixa_aberturas", "chk_caixa_aberturas_status", "status IN ('ABERTO', 'FECHADO')"},
	}
	for _, c := range checks {
		sql := fmt.Sprintf(`DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
    ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s);
  END IF;
END $$`, c.name, c.table, c.name, c.expr)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", c.name, err)
		}
	}
	return nil
}
