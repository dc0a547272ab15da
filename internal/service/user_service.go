package service

import (
	"context"
	"time"

	"realtime-chat-be/internal/apperr"
	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/repository/specification"
	"realtime-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IUserService interface {
	Me(ctx context.Context, userID uuid.UUID) (*dto.UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserDTO, error)
	Search(ctx context.Context, query string, limit, offset int) ([]dto.UserDTO, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewUserService(uowFactory unitofwork.RepositoryFactory) IUserService {
	return &userService{
		uowFactory: uowFactory,
	}
}

func (s *userService) Me(ctx context.Context, userID uuid.UUID) (*dto.UserDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.ErrNotFound
	}

	return &dto.UserDTO{
		Id:       user.Id,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		Disabled: user.Disabled,
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.ErrNotFound
	}

	if req.Email != nil {
		taken, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: *req.Email})
		if err != nil {
			return nil, err
		}
		if taken != nil && taken.Id != userID {
			return nil, apperr.ErrUserExists
		}
		user.Email = req.Email
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	user.UpdatedAt = time.Now()

	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, err
	}

	return &dto.UserDTO{
		Id:       user.Id,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		Disabled: user.Disabled,
	}, nil
}

func (s *userService) Search(ctx context.Context, query string, limit, offset int) ([]dto.UserDTO, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	users, err := uow.UserRepository().SearchByUsername(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}

	result := make([]dto.UserDTO, 0, len(users))
	for _, u := range users {
		result = append(result, dto.UserDTO{
			Id:       u.Id,
			Username: u.Username,
			Email:    u.Email,
			FullName: u.FullName,
			Disabled: u.Disabled,
		})
	}
	return result, nil
}
