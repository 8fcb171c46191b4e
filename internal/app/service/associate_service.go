package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"associados_api/internal/common"
	"associados_api/internal/domain/model"
	"associados_api/internal/domain/repository"
	"associados_api/internal/platform/config"
	"associados_api/internal/validation"
)

type AssociateService struct {
	associateRepo repository.AssociateRepository
}

func NewAssociateService(associateRepo repository.AssociateRepository) *AssociateService {
	return &AssociateService{associateRepo: associateRepo}
}

type CreateAssociateRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	CPF       string `json:"cpf"`
	Telephone string `json:"telephone"`
	City      string `json:"city"`
	State     string `json:"state"`
}

type UpdateAssociateRequest struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	CPF       *string `json:"cpf,omitempty"`
	Telephone *string `json:"telephone,omitempty"`
	City      *string `json:"city,omitempty"`
	State     *string `json:"state,omitempty"`
}

// AssociatePage is one stable-ordered page of associates plus the
// numbers the pagination envelope is built from.
type AssociatePage struct {
	Items    []model.Associate
	Total    int
	Page     int
	PerPage  int
	LastPage int
}

func (s *AssociateService) Create(ctx context.Context, req CreateAssociateRequest) (*model.Associate, error) {
	req.normalize()

	errs := validation.Errors{}
	s.checkName(errs, req.Name, true)
	s.checkTelephone(errs, req.Telephone, true)
	s.checkCity(errs, req.City, true)
	s.checkState(errs, req.State, true)
	if err := s.checkEmail(ctx, errs, req.Email, true, 0); err != nil {
		return nil, err
	}
	if err := s.checkCPF(ctx, errs, req.CPF, true, 0); err != nil {
		return nil, err
	}
	if !errs.Empty() {
		return nil, &common.ValidationError{Fields: errs}
	}

	associate := &model.Associate{
		Name:      req.Name,
		Email:     req.Email,
		CPF:       req.CPF,
		Telephone: req.Telephone,
		City:      req.City,
		State:     req.State,
	}
	if err := s.associateRepo.Create(ctx, associate); err != nil {
		return nil, err
	}

	log.Printf("New Associate registered: id=%d email=%s state=%s", associate.ID, associate.Email, associate.State)
	return associate, nil
}

func (s *AssociateService) GetAll(ctx context.Context, page, perPage int) (*AssociatePage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = config.AppConfig.DefaultPageSize
	}
	if perPage > config.AppConfig.MaxPageSize {
		perPage = config.AppConfig.MaxPageSize
	}

	total, err := s.associateRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count associates: %w", err)
	}

	items, err := s.associateRepo.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list associates: %w", err)
	}

	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}

	return &AssociatePage{
		Items:    items,
		Total:    total,
		Page:     page,
		PerPage:  perPage,
		LastPage: lastPage,
	}, nil
}

func (s *AssociateService) Update(ctx context.Context, id int64, req UpdateAssociateRequest) (*model.Associate, error) {
	req.normalize()

	errs := validation.Errors{}
	if req.Name != nil {
		s.checkName(errs, *req.Name, false)
	}
	if req.Telephone != nil {
		s.checkTelephone(errs, *req.Telephone, false)
	}
	if req.City != nil {
		s.checkCity(errs, *req.City, false)
	}
	if req.State != nil {
		s.checkState(errs, *req.State, false)
	}
	if req.Email != nil {
		if err := s.checkEmail(ctx, errs, *req.Email, false, id); err != nil {
			return nil, err
		}
	}
	if req.CPF != nil {
		if err := s.checkCPF(ctx, errs, *req.CPF, false, id); err != nil {
			return nil, err
		}
	}
	if !errs.Empty() {
		return nil, &common.ValidationError{Fields: errs}
	}

	associate, err := s.associateRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			log.Printf("Associate with id %d not found", id)
			return nil, &common.NotFoundError{Message: fmt.Sprintf("Associate with id %d not found", id)}
		}
		return nil, fmt.Errorf("failed to load associate: %w", err)
	}

	if req.Name != nil {
		associate.Name = *req.Name
	}
	if req.Email != nil {
		associate.Email = *req.Email
	}
	if req.CPF != nil {
		associate.CPF = *req.CPF
	}
	if req.Telephone != nil {
		associate.Telephone = *req.Telephone
	}
	if req.City != nil {
		associate.City = *req.City
	}
	if req.State != nil {
		associate.State = *req.State
	}

	if err := s.associateRepo.Update(ctx, associate); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, &common.NotFoundError{Message: fmt.Sprintf("Associate with id %d not found", id)}
		}
		return nil, err
	}

	log.Printf("Associate updated: id=%d", associate.ID)
	return associate, nil
}

func (s *AssociateService) Delete(ctx context.Context, id int64) error {
	if err := s.associateRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			log.Printf("Associate with id %d not found", id)
			return &common.NotFoundError{Message: fmt.Sprintf("Associate with id %d not found", id)}
		}
		return err
	}
	log.Printf("Associate deleted: id=%d", id)
	return nil
}

// normalize strips non-digits from cpf and telephone and upper-cases
// the state code before any rule runs.
func (r *CreateAssociateRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.CPF = validation.StripNonDigits(r.CPF)
	r.Telephone = validation.StripNonDigits(r.Telephone)
	r.City = strings.TrimSpace(r.City)
	r.State = strings.ToUpper(strings.TrimSpace(r.State))
}

func (r *UpdateAssociateRequest) normalize() {
	if r.Name != nil {
		*r.Name = strings.TrimSpace(*r.Name)
	}
	if r.Email != nil {
		*r.Email = strings.TrimSpace(*r.Email)
	}
	if r.CPF != nil {
		*r.CPF = validation.StripNonDigits(*r.CPF)
	}
	if r.Telephone != nil {
		*r.Telephone = validation.StripNonDigits(*r.Telephone)
	}
	if r.City != nil {
		*r.City = strings.TrimSpace(*r.City)
	}
	if r.State != nil {
		*r.State = strings.ToUpper(strings.TrimSpace(*r.State))
	}
}

func (s *AssociateService) checkName(errs validation.Errors, name string, required bool) {
	if name == "" {
		if required {
			errs.Add("name", "The name field is required.")
		}
		return
	}
	if len([]rune(name)) < 3 {
		errs.Add("name", "The name must be at least 3 characters.")
	} else if len([]rune(name)) > 255 {
		errs.Add("name", "The name must not be greater than 255 characters.")
	}
}

func (s *AssociateService) checkEmail(ctx context.Context, errs validation.Errors, email string, required bool, excludeID int64) error {
	if email == "" {
		if required {
			errs.Add("email", "The email field is required.")
		}
		return nil
	}
	if !validation.ValidEmail(email) {
		errs.Add("email", "The email must be a valid email address.")
		return nil
	}
	if len(email) > 255 {
		errs.Add("email", "The email must not be greater than 255 characters.")
		return nil
	}
	inUse, err := s.associateRepo.EmailInUse(ctx, email, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if inUse {
		errs.Add("email", "The email has already been taken.")
	}
	return nil
}

func (s *AssociateService) checkCPF(ctx context.Context, errs validation.Errors, cpf string, required bool, excludeID int64) error {
	if cpf == "" {
		if required {
			errs.Add("cpf", "The cpf field is required.")
		}
		return nil
	}
	if len(cpf) != 11 {
		errs.Add("cpf", "The cpf must be 11 characters.")
		return nil
	}
	if !validation.ValidCPF(cpf) {
		errs.Add("cpf", "The informed cpf is invalid.")
		return nil
	}
	inUse, err := s.associateRepo.CPFInUse(ctx, cpf, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check cpf uniqueness: %w", err)
	}
	if inUse {
		errs.Add("cpf", "CPF already in use.")
	}
	return nil
}

func (s *AssociateService) checkTelephone(errs validation.Errors, telephone string, required bool) {
	if telephone == "" {
		if required {
			errs.Add("telephone", "The telephone field is required.")
		}
		return
	}
	if len(telephone) < 10 {
		errs.Add("telephone", "The telephone must be at least 10 characters.")
	} else if len(telephone) > 15 {
		errs.Add("telephone", "The telephone must not be greater than 15 characters.")
	}
}

func (s *AssociateService) checkCity(errs validation.Errors, city string, required bool) {
	if city == "" {
		if required {
			errs.Add("city", "The city field is required.")
		}
		return
	}
	if len([]rune(city)) > 255 {
		errs.Add("city", "The city must not be greater than 255 characters.")
	}
}

func (s *AssociateService) checkState(errs validation.Errors, state string, required bool) {
	if state == "" {
		if required {
			errs.Add("state", "The state field is required.")
		}
		return
	}
	if len(state) != 2 {
		errs.Add("state", "The state must contain the 2 letter abbreviation (Ex: SP).")
		return
	}
	if !model.IsBrazilianState(state) {
		errs.Add("state", "The informed state is invalid. Use a valid abbreviation (ex: SP, RJ).")
	}
}
