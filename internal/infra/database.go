package infra

import (
	"fmt"

	"siloshare/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx with pooled
// connections. Callers run RunMigrations separately so throwaway test
// databases and the server share one migration path.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// RunMigrations creates/updates all tables and applies SQL patches.
// Also used by integration tests against a throwaway database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Silo{},
		&model.Reserva{},
		&model.ReservaHistorico{},
		&model.CotacaoTransporte{},
		&model.Avaliacao{},
		&model.Mensagem{},
		&model.Contrato{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement uses IF NOT EXISTS semantics so re-running is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// The capacity invariant, enforced by the database as the last line
		// of defense behind the guarded UPDATEs in the silo repository.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_silos_capacidade') THEN
		    ALTER TABLE silos ADD CONSTRAINT chk_silos_capacidade
		        CHECK (capacidade_disponivel >= 0 AND capacidade_disponivel <= capacidade_total);
		  END IF;
		END $$`,
		// Partial index for the contract retry cron query.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_contratos_pending_retry') THEN
		    CREATE INDEX idx_contratos_pending_retry
		        ON contratos (next_retry_at)
		        WHERE status = 'erro' AND next_retry_at IS NOT NULL;
		  END IF;
		END $$`,
		// Partial indexes for the reservation scheduler scans.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_reservas_confirmadas_inicio') THEN
		    CREATE INDEX idx_reservas_confirmadas_inicio
		        ON reservas (data_inicio)
		        WHERE status = 'confirmada';
		  END IF;
		END $$`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_reservas_andamento_fim') THEN
		    CREATE INDEX idx_reservas_andamento_fim
		        ON reservas (data_fim)
		        WHERE status = 'em_andamento';
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("schema patch: %w", err)
		}
	}
	return nil
}
