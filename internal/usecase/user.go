package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/entity"
)

type UserUseCase interface {
	Update(ctx context.Context, user *entity.User) (*entity.User, error)
}

type userService interface {
	SaveUser(ctx context.Context, user *entity.User) error
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
}

type userUseCase struct {
	userService userService
}

func NewUserUseCase(userService userService) UserUseCase {
	return &userUseCase{
		userService: userService,
	}
}

func (that *userUseCase) Update(ctx context.Context, user *entity.User) (*entity.User, error) {
	existingUser, err := that.userService.GetUserByEmail(ctx, user.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			if err = that.userService.SaveUser(ctx, user); err != nil {
				return nil, fmt.Errorf("failed to save user into storage: %w", err)
			}
			return user, nil
		}
		return nil, fmt.Errorf("failed to find user into storage: %w", err)
	}

	return existingUser, nil
}
