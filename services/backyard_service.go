package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"time"

	"github.com/glaucius/back-to-the-loop/models"
	"github.com/glaucius/back-to-the-loop/repositories"
	"github.com/glaucius/back-to-the-loop/storage"
)

type CreateBackyardInput struct {
	Nome          string     `json:"nome"`
	Descricao     *string    `json:"descricao,omitempty"`
	Endereco      *string    `json:"endereco,omitempty"`
	Cidade        *string    `json:"cidade,omitempty"`
	Estado        *string    `json:"estado,omitempty"`
	Pais          *string    `json:"pais,omitempty"`
	Capacidade    int        `json:"capacidade"`
	NumeroInicial int        `json:"numero_inicial"`
	DataEvento    *time.Time `json:"data_evento,omitempty"`
}

type UpdateBackyardInput struct {
	Nome          *string    `json:"nome,omitempty"`
	Descricao     *string    `json:"descricao,omitempty"`
	Endereco      *string    `json:"endereco,omitempty"`
	Cidade        *string    `json:"cidade,omitempty"`
	Estado        *string    `json:"estado,omitempty"`
	Pais          *string    `json:"pais,omitempty"`
	Capacidade    *int       `json:"capacidade,omitempty"`
	NumeroInicial *int       `json:"numero_inicial,omitempty"`
	Status        *string    `json:"status,omitempty"`
	DataEvento    *time.Time `json:"data_evento,omitempty"`
}

// Image kinds accepted by UploadImage, mapped to their storage columns.
const (
	BackyardImageProfile = "profile"
	BackyardImageLogo    = "logo"
)

// BackyardService covers backoffice CRUD for events. The race lifecycle
// itself (start, loops, finish) belongs to RaceService.
type BackyardService interface {
	Create(ctx context.Context, organizacaoID int, input CreateBackyardInput) (*models.Backyard, error)
	GetByID(ctx context.Context, id int) (*models.Backyard, error)
	List(ctx context.Context, filter repositories.ListBackyardsFilter) ([]models.Backyard, error)
	Update(ctx context.Context, id int, input UpdateBackyardInput) (*models.Backyard, error)
	UploadImage(ctx context.Context, id int, kind string, file io.Reader, contentType string) (*models.Backyard, error)
	Delete(ctx context.Context, id int) error
}

type backyardService struct {
	backyardRepo repositories.BackyardRepository
	loopRepo     repositories.LoopRepository
	uploader     storage.FileUploader
}

func NewBackyardService(
	backyardRepo repositories.BackyardRepository,
	loopRepo repositories.LoopRepository,
	uploader storage.FileUploader,
) BackyardService {
	return &backyardService{
		backyardRepo: backyardRepo,
		loopRepo:     loopRepo,
		uploader:     uploader,
	}
}

func validateBackyardInput(nome string, capacidade, numeroInicial int) error {
	if nome == "" {
		return ErrBackyardNameRequired
	}
	if capacidade <= 0 {
		return ErrInvalidCapacity
	}
	if numeroInicial <= 0 {
		return ErrInvalidNumeroInicial
	}
	return nil
}

func (s *backyardService) Create(ctx context.Context, organizacaoID int, input CreateBackyardInput) (*models.Backyard, error) {
	if err := validateBackyardInput(input.Nome, input.Capacidade, input.NumeroInicial); err != nil {
		return nil, err
	}

	backyard := &models.Backyard{
		Nome:          input.Nome,
		OrganizacaoID: organizacaoID,
		Descricao:     input.Descricao,
		Endereco:      input.Endereco,
		Cidade:        input.Cidade,
		Estado:        input.Estado,
		Pais:          input.Pais,
		Capacidade:    input.Capacidade,
		NumeroInicial: input.NumeroInicial,
		Status:        models.BackyardStatusPreparacao,
		DataEvento:    input.DataEvento,
	}
	if err := s.backyardRepo.Create(ctx, backyard); err != nil {
		return nil, err
	}
	return backyard, nil
}

func (s *backyardService) GetByID(ctx context.Context, id int) (*models.Backyard, error) {
	backyard, err := s.backyardRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapBackyardRepoError(err)
	}

	loops, err := s.loopRepo.ListByBackyard(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load loops for backyard %d: %w", id, err)
	}
	backyard.Loops = loops

	s.populateImageURLs(backyard)
	return backyard, nil
}

func (s *backyardService) List(ctx context.Context, filter repositories.ListBackyardsFilter) ([]models.Backyard, error) {
	backyards, err := s.backyardRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range backyards {
		s.populateImageURLs(&backyards[i])
	}
	return backyards, nil
}

// Update applies partial changes; a status change must follow the
// PREPARACAO→ATIVO→FINALIZADO machine (PAUSADO only from ATIVO).
func (s *backyardService) Update(ctx context.Context, id int, input UpdateBackyardInput) (*models.Backyard, error) {
	backyard, err := s.backyardRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapBackyardRepoError(err)
	}

	if input.Nome != nil {
		backyard.Nome = *input.Nome
	}
	if input.Descricao != nil {
		backyard.Descricao = input.Descricao
	}
	if input.Endereco != nil {
		backyard.Endereco = input.Endereco
	}
	if input.Cidade != nil {
		backyard.Cidade = input.Cidade
	}
	if input.Estado != nil {
		backyard.Estado = input.Estado
	}
	if input.Pais != nil {
		backyard.Pais = input.Pais
	}
	if input.Capacidade != nil {
		backyard.Capacidade = *input.Capacidade
	}
	if input.NumeroInicial != nil {
		backyard.NumeroInicial = *input.NumeroInicial
	}
	if input.DataEvento != nil {
		backyard.DataEvento = input.DataEvento
	}
	if input.Status != nil {
		next := models.BackyardStatus(*input.Status)
		if !next.Valid() {
			return nil, ErrInvalidStatus
		}
		if next != backyard.Status && !backyard.Status.CanTransitionTo(next) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, backyard.Status, next)
		}
		backyard.Status = next
	}

	if err := validateBackyardInput(backyard.Nome, backyard.Capacidade, backyard.NumeroInicial); err != nil {
		return nil, err
	}

	if err := s.backyardRepo.Update(ctx, backyard); err != nil {
		return nil, mapBackyardRepoError(err)
	}
	return backyard, nil
}

// UploadImage stores a profile picture or logo and records its key. The
// previous object of the same kind is removed from storage.
func (s *backyardService) UploadImage(ctx context.Context, id int, kind string, file io.Reader, contentType string) (*models.Backyard, error) {
	if s.uploader == nil {
		return nil, ErrValidationFailed
	}

	var column string
	var oldKey func(*models.Backyard) *string
	switch kind {
	case BackyardImageProfile:
		column = "profile_picture_key"
		oldKey = func(b *models.Backyard) *string { return b.ProfilePictureKey }
	case BackyardImageLogo:
		column = "logo_key"
		oldKey = func(b *models.Backyard) *string { return b.LogoKey }
	default:
		return nil, fmt.Errorf("%w: unknown image kind %q", ErrValidationFailed, kind)
	}

	backyard, err := s.backyardRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapBackyardRepoError(err)
	}

	ext := ".bin"
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		ext = exts[len(exts)-1]
	}
	key := fmt.Sprintf("backyards/%d/%s_%d%s", id, kind, time.Now().UnixNano(), ext)

	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload %s image for backyard %d: %w", kind, id, err)
	}

	if err := s.backyardRepo.UpdateImageKey(ctx, id, column, &key); err != nil {
		_ = s.uploader.Delete(ctx, key)
		return nil, mapBackyardRepoError(err)
	}

	if prev := oldKey(backyard); prev != nil && *prev != "" && *prev != key {
		_ = s.uploader.Delete(ctx, *prev)
	}

	switch kind {
	case BackyardImageProfile:
		backyard.ProfilePictureKey = &key
	case BackyardImageLogo:
		backyard.LogoKey = &key
	}
	s.populateImageURLs(backyard)
	return backyard, nil
}

func (s *backyardService) Delete(ctx context.Context, id int) error {
	backyard, err := s.backyardRepo.GetByID(ctx, nil, id)
	if err != nil {
		return mapBackyardRepoError(err)
	}

	// Stored images go with the row; a storage failure is not fatal here.
	if s.uploader != nil {
		for _, key := range []*string{backyard.ProfilePictureKey, backyard.LogoKey} {
			if key != nil && *key != "" {
				_ = s.uploader.Delete(ctx, *key)
			}
		}
	}

	if err := s.backyardRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrBackyardNotFound) {
			return ErrBackyardNotFound
		}
		return err
	}
	return nil
}

func (s *backyardService) populateImageURLs(b *models.Backyard) {
	if s.uploader == nil {
		return
	}
	if b.ProfilePictureKey != nil && *b.ProfilePictureKey != "" {
		if url := s.uploader.GetPublicURL(*b.ProfilePictureKey); url != "" {
			b.ProfilePictureURL = &url
		}
	}
	if b.LogoKey != nil && *b.LogoKey != "" {
		if url := s.uploader.GetPublicURL(*b.LogoKey); url != "" {
			b.LogoURL = &url
		}
	}
}
