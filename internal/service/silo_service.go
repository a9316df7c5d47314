package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"siloshare/internal/domain"
	"siloshare/internal/dto"
	"siloshare/internal/model"
	"siloshare/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

const (
	siloCacheTTL    = 60 * time.Second
	siloCachePrefix = "cache:silos:"
)

// SiloService is the listing side of the marketplace: owners create and
// manage silos, admins moderate them, producers browse the public catalog.
type SiloService interface {
	Criar(ctx context.Context, ator domain.Ator, req dto.CriarSiloRequest) (*dto.SiloResponse, error)
	Atualizar(ctx context.Context, ator domain.Ator, id uuid.UUID, req dto.AtualizarSiloRequest) (*dto.SiloResponse, error)
	AjustarCapacidade(ctx context.Context, ator domain.Ator, id uuid.UUID, req dto.AjustarCapacidadeRequest) error
	Desativar(ctx context.Context, ator domain.Ator, id uuid.UUID) error

	ListarPublico(ctx context.Context, filter dto.SiloFilter) (*dto.SiloListResponse, error)
	Detalhes(ctx context.Context, id uuid.UUID) (*dto.SiloResponse, error)
	MeusSilos(ctx context.Context, ator domain.Ator) ([]dto.SiloResponse, error)

	// DefinirAprovacao is admin-only moderation.
	DefinirAprovacao(ctx context.Context, ator domain.Ator, id uuid.UUID, req dto.AprovacaoRequest) error
}

type siloService struct {
	repo repository.SiloRepository
	rdb  *redis.Client
}

func NewSiloService(repo repository.SiloRepository, rdb *redis.Client) SiloService {
	return &siloService{repo: repo, rdb: rdb}
}

func (s *siloService) Criar(ctx context.Context, ator domain.Ator, req dto.CriarSiloRequest) (*dto.SiloResponse, error) {
	if ator.Papel != domain.PapelProprietario && !ator.Admin() {
		return nil, domain.ErrAcessoNegado
	}

	silo := &model.Silo{
		ProprietarioID:      ator.ID,
		Nome:                req.Nome,
		Descricao:           req.Descricao,
		Cidade:              req.Cidade,
		Estado:              req.Estado,
		CapacidadeTotal:     req.CapacidadeTotal,
		PrecoPorToneladaMes: req.PrecoPorToneladaMes,
		TiposGraos:          datatypes.NewJSONSlice(req.TiposGraos),
		Fotos:               datatypes.NewJSONSlice(req.Fotos),
		Infraestrutura:      datatypes.NewJSONSlice(req.Infraestrutura),
		// New listings start with the full capacity free and wait for
		// admin approval before accepting reservations.
		StatusAprovacao: model.SiloPendente,
		Disponivel:      true,
		Ativo:           true,
	}
	silo.CapacidadeDisponivel = req.CapacidadeTotal

	if err := s.repo.Create(ctx, silo); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	return siloToResponse(silo), nil
}

func (s *siloService) Atualizar(ctx context.Context, ator domain.Ator, id uuid.UUID, req dto.AtualizarSiloRequest) (*dto.SiloResponse, error) {
	silo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if silo.ProprietarioID != ator.ID && !ator.Admin() {
		return nil, domain.ErrAcessoNegado
	}

	if req.Nome != nil {
		silo.Nome = *req.Nome
	}
	if req.Descricao != nil {
		silo.Descricao = req.Descricao
	}
	if req.PrecoPorToneladaMes != nil {
		// Existing reservations keep their creation-time ValorTotal;
		// the new price only affects future reservations.
		silo.PrecoPorToneladaMes = *req.PrecoPorToneladaMes
	}
	if req.TiposGraos != nil {
		silo.TiposGraos = datatypes.NewJSONSlice(req.TiposGraos)
	}
	if req.Fotos != nil {
		silo.Fotos = datatypes.NewJSONSlice(req.Fotos)
	}
	if req.Infraestrutura != nil {
		silo.Infraestrutura = datatypes.NewJSONSlice(req.Infraestrutura)
	}
	if req.Disponivel != nil {
		silo.Disponivel = *req.Disponivel
	}

	if err := s.repo.Update(ctx, silo); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	return siloToResponse(silo), nil
}

// AjustarCapacidade is the direct owner edit of free capacity (grain moved
// in or out outside the platform). The repository enforces
// 0 <= novoValor <= capacidade_total.
func (s *siloService) AjustarCapacidade(ctx context.Context, ator domain.Ator, id uuid.UUID, req dto.AjustarCapacidadeRequest) error {
	silo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if silo.ProprietarioID != ator.ID && !ator.Admin() {
		return domain.ErrAcessoNegado
	}
	if req.CapacidadeDisponivel.IsNegative() {
		return domain.ErrInvariante
	}
	if err := s.repo.AjustarDisponivel(ctx, id, req.CapacidadeDisponivel); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *siloService) Desativar(ctx context.Context, ator domain.Ator, id uuid.UUID) error {
	silo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if silo.ProprietarioID != ator.ID && !ator.Admin() {
		return domain.ErrAcessoNegado
	}
	if err := s.repo.Desativar(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

// ListarPublico serves the catalog with a short Redis cache in front.
// A cache miss or a Redis outage falls through to Postgres.
func (s *siloService) ListarPublico(ctx context.Context, filter dto.SiloFilter) (*dto.SiloListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	cacheKey := fmt.Sprintf("%s%s:%s:%s:%s:%d:%d", siloCachePrefix,
		filter.Cidade, filter.Estado, filter.TipoGrao, filter.CapacidadeMin, filter.Page, filter.Limit)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp dto.SiloListResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		}
	}

	silos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.SiloResponse, 0, len(silos))
	for i := range silos {
		items = append(items, *siloToResponse(&silos[i]))
	}
	resp := &dto.SiloListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}

	if s.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, data, siloCacheTTL).Err(); err != nil {
				log.Debug().Err(err).Msg("silo_service: cache set falhou")
			}
		}
	}
	return resp, nil
}

func (s *siloService) Detalhes(ctx context.Context, id uuid.UUID) (*dto.SiloResponse, error) {
	silo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return siloToResponse(silo), nil
}

func (s *siloService) MeusSilos(ctx context.Context, ator domain.Ator) ([]dto.SiloResponse, error) {
	silos, err := s.repo.ListByProprietario(ctx, ator.ID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.SiloResponse, 0, len(silos))
	for i := range silos {
		resp = append(resp, *siloToResponse(&silos[i]))
	}
	return resp, nil
}

func (s *siloService) DefinirAprovacao(ctx context.Context, ator domain.Ator, id uuid.UUID, req dto.AprovacaoRequest) error {
	if !ator.Admin() {
		return domain.ErrAcessoNegado
	}
	if err := s.repo.UpdateAprovacao(ctx, id, req.Status); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

// invalidateCache drops the catalog cache after any listing mutation.
func (s *siloService) invalidateCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	iter := s.rdb.Scan(ctx, 0, siloCachePrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			log.Debug().Err(err).Msg("silo_service: cache del falhou")
			return
		}
	}
}

func siloToResponse(m *model.Silo) *dto.SiloResponse {
	return &dto.SiloResponse{
		ID:                   m.ID.String(),
		ProprietarioID:       m.ProprietarioID.String(),
		Nome:                 m.Nome,
		Descricao:            m.Descricao,
		Cidade:               m.Cidade,
		Estado:               m.Estado,
		CapacidadeTotal:      m.CapacidadeTotal,
		CapacidadeDisponivel: m.CapacidadeDisponivel,
		PrecoPorToneladaMes:  m.PrecoPorToneladaMes,
		TiposGraos:           m.TiposGraos,
		Fotos:                m.Fotos,
		Infraestrutura:       m.Infraestrutura,
		StatusAprovacao:      m.StatusAprovacao,
		Disponivel:           m.Disponivel,
		MediaAvaliacao:       m.MediaAvaliacao,
		TotalAvaliacoes:      m.TotalAvaliacoes,
		CreatedAt:            m.CreatedAt.Format(time.RFC3339),
	}
}
