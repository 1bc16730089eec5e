package service

import (
	"context"

	"minimarket/internal/apierror"
	"minimarket/internal/dto"
	"minimarket/internal/model"
	"minimarket/internal/repository"

	"github.com/google/uuid"
)

type ProveedorService interface {
	Crear(ctx context.Context, op model.Operador, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error)
	Listar(ctx context.Context) ([]dto.ProveedorResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error)
	Actualizar(ctx context.Context, op model.Operador, id uuid.UUID, req dto.ActualizarProveedorRequest) (*dto.ProveedorResponse, error)
	Desactivar(ctx context.Context, op model.Operador, id uuid.UUID) error
}

type proveedorService struct {
	repo repository.ProveedorRepository
}

func NewProveedorService(repo repository.ProveedorRepository) ProveedorService {
	return &proveedorService{repo: repo}
}

func (s *proveedorService) Crear(ctx context.Context, op model.Operador, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error) {
	if !op.EsAdministrador() {
		return nil, apierror.New(apierror.KindForbidden, "Solo un administrador puede crear proveedores")
	}
	p := model.Proveedor{
		Nombre:    req.Nombre,
		Contacto:  req.Contacto,
		Telefono:  req.Telefono,
		Email:     req.Email,
		Direccion: req.Direccion,
		Activo:    true,
	}
	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, err
	}
	return proveedorToResponse(&p), nil
}

func (s *proveedorService) Listar(ctx context.Context) ([]dto.ProveedorResponse, error) {
	proveedores, err := s.repo.ListActivos(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProveedorResponse, len(proveedores))
	for i := range proveedores {
		resp[i] = *proveedorToResponse(&proveedores[i])
	}
	return resp, nil
}

func (s *proveedorService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, apierror.KindNotFound, "Proveedor no encontrado")
	}
	return proveedorToResponse(p), nil
}

func (s *proveedorService) Actualizar(ctx context.Context, op model.Operador, id uuid.UUID, req dto.ActualizarProveedorRequest) (*dto.ProveedorResponse, error) {
	if !op.EsAdministrador() {
		return nil, apierror.New(apierror.KindForbidden, "Solo un administrador puede modificar proveedores")
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, apierror.KindNotFound, "Proveedor no encontrado")
	}
	if req.Nombre != nil {
		p.Nombre = *req.Nombre
	}
	if req.Contacto != nil {
		p.Contacto = req.Contacto
	}
	if req.Telefono != nil {
		p.Telefono = req.Telefono
	}
	if req.Email != nil {
		p.Email = req.Email
	}
	if req.Direccion != nil {
		p.Direccion = req.Direccion
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return proveedorToResponse(p), nil
}

func (s *proveedorService) Desactivar(ctx context.Context, op model.Operador, id uuid.UUID) error {
	if !op.EsAdministrador() {
		return apierror.New(apierror.KindForbidden, "Solo un administrador puede desactivar proveedores")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupErr(err, apierror.KindNotFound, "Proveedor no encontrado")
	}
	return s.repo.SoftDelete(ctx, id)
}

func proveedorToResponse(p *model.Proveedor) *dto.ProveedorResponse {
	return &dto.ProveedorResponse{
		ID:        p.ID.String(),
		Nombre:    p.Nombre,
		Contacto:  p.Contacto,
		Telefono:  p.Telefono,
		Email:     p.Email,
		Direccion: p.Direccion,
		Activo:    p.Activo,
	}
}
