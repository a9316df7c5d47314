package worker

// agenda_cron.go
// Background goroutine that advances reservation lifecycle on the calendar:
// confirmada → em_andamento once the storage period starts, and
// em_andamento → concluida once it ends. Transitions go through the same
// service path as user-initiated ones, so the audit trail and the guarded
// status flip apply here too.

import (
	"context"
	"time"

	"siloshare/internal/domain"
	"siloshare/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	agendaTickInterval = time.Minute
	agendaBatchSize    = 50
)

// ReservaTransicionador is the slice of the reservation service the
// scheduler needs. Declared here so the worker package never imports the
// service package.
type ReservaTransicionador interface {
	Iniciar(ctx context.Context, ator domain.Ator, id uuid.UUID) error
	Concluir(ctx context.Context, ator domain.Ator, id uuid.UUID) error
}

// AtorAgendador is the system identity recorded in the audit trail for
// calendar-driven transitions.
var AtorAgendador = domain.Ator{
	ID:    uuid.Nil,
	Nome:  "agendador",
	Papel: domain.PapelAdmin,
}

type AgendaCronConfig struct {
	ReservaRepo repository.ReservaRepository
	Servico     ReservaTransicionador
}

// StartAgendaCron launches the lifecycle scheduler. It ticks every minute,
// which bounds how late a reservation enters or leaves em_andamento.
func StartAgendaCron(ctx context.Context, cfg AgendaCronConfig) {
	go func() {
		ticker := time.NewTicker(agendaTickInterval)
		defer ticker.Stop()

		log.Info().Msg("agenda_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("agenda_cron: shutting down")
				return
			case <-ticker.C:
				processAgenda(ctx, cfg)
			}
		}
	}()
}

func processAgenda(ctx context.Context, cfg AgendaCronConfig) {
	now := time.Now()

	iniciando, err := cfg.ReservaRepo.ListConfirmadasIniciando(ctx, now, agendaBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("agenda_cron: failed to query reservas iniciando")
	} else {
		for i := range iniciando {
			id := iniciando[i].ID
			if err := cfg.Servico.Iniciar(ctx, AtorAgendador, id); err != nil {
				// A user may have advanced it between the scan and here;
				// the guarded flip reports that as ErrTransicaoInvalida.
				log.Warn().Err(err).Str("reserva_id", id.String()).Msg("agenda_cron: iniciar falhou")
				continue
			}
			log.Info().Str("reserva_id", id.String()).Msg("agenda_cron: reserva iniciada")
		}
	}

	vencidas, err := cfg.ReservaRepo.ListEmAndamentoVencidas(ctx, now, agendaBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("agenda_cron: failed to query reservas vencidas")
		return
	}
	for i := range vencidas {
		id := vencidas[i].ID
		if err := cfg.Servico.Concluir(ctx, AtorAgendador, id); err != nil {
			log.Warn().Err(err).Str("reserva_id", id.String()).Msg("agenda_cron: concluir falhou")
			continue
		}
		log.Info().Str("reserva_id", id.String()).Msg("agenda_cron: reserva concluida")
	}
}
