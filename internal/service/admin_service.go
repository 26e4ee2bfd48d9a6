package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"backoffice/internal/domain"
	"backoffice/internal/repository"
)

const minPasswordLen = 8

// AdminService управление пользователями бэк-офиса (без логина и сессий)
type AdminService struct {
	admins repository.AdminRepository
	tx     repository.TxManager
	opts   options
}

func NewAdminService(admins repository.AdminRepository, tx repository.TxManager, opts ...Option) *AdminService {
	return &AdminService{admins: admins, tx: tx, opts: buildOptions(opts)}
}

// AdminInput данные нового администратора
type AdminInput struct {
	FullName string
	UserName string
	Email    string
	Password string
	Phone    string
	Images   string
	Role     domain.AdminRole
	Active   *bool
}

// AdminUpdate частичное обновление; поле с nil не меняется
type AdminUpdate struct {
	FullName *string
	UserName *string
	Email    *string
	Password *string
	Phone    *string
	Images   *string
	Role     *domain.AdminRole
	Active   *bool
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return email, nil
}

func validRole(r domain.AdminRole) bool {
	return r == domain.AdminRoleAdmin || r == domain.AdminRoleSuperAdmin
}

func (s *AdminService) hash(password string) (string, error) {
	if len(password) < minPasswordLen {
		return "", fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (s *AdminService) Create(ctx context.Context, in AdminInput) (*domain.Admin, error) {
	a := domain.Admin{
		ID:       uuid.NewString(),
		FullName: strings.TrimSpace(in.FullName),
		UserName: strings.TrimSpace(in.UserName),
		Phone:    strings.TrimSpace(in.Phone),
		Images:   strings.TrimSpace(in.Images),
		Role:     in.Role,
		Active:   true,
	}
	if a.FullName == "" || a.UserName == "" {
		return nil, fmt.Errorf("%w: fullName and userName are required", ErrInvalidInput)
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	a.Email = email
	if a.Role == "" {
		a.Role = domain.AdminRoleAdmin
	}
	if !validRole(a.Role) {
		return nil, fmt.Errorf("%w: role %q", ErrInvalidInput, a.Role)
	}
	if in.Active != nil {
		a.Active = *in.Active
	}
	if a.PasswordHash, err = s.hash(in.Password); err != nil {
		return nil, err
	}
	if err := s.admins.Create(ctx, &a); err != nil {
		return nil, err
	}
	s.opts.log.Infof(ctx, "[Admins] created %s (%s)", a.ID, a.Role)
	return &a, nil
}

func (s *AdminService) Get(ctx context.Context, id string) (*domain.Admin, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.admins.GetByID(ctx, id)
}

// List ищет по имени, логину, email и телефону
func (s *AdminService) List(ctx context.Context, f repository.AdminFilter) ([]domain.Admin, error) {
	return s.admins.List(ctx, f)
}

func (s *AdminService) Update(ctx context.Context, id string, upd AdminUpdate) (*domain.Admin, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidInput
	}
	var updated *domain.Admin
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		a, err := s.admins.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if upd.FullName != nil {
			if a.FullName = strings.TrimSpace(*upd.FullName); a.FullName == "" {
				return fmt.Errorf("%w: fullName must not be empty", ErrInvalidInput)
			}
		}
		if upd.UserName != nil {
			if a.UserName = strings.TrimSpace(*upd.UserName); a.UserName == "" {
				return fmt.Errorf("%w: userName must not be empty", ErrInvalidInput)
			}
		}
		if upd.Email != nil {
			if a.Email, err = normalizeEmail(*upd.Email); err != nil {
				return err
			}
		}
		if upd.Phone != nil {
			a.Phone = strings.TrimSpace(*upd.Phone)
		}
		if upd.Images != nil {
			a.Images = strings.TrimSpace(*upd.Images)
		}
		if upd.Role != nil {
			if !validRole(*upd.Role) {
				return fmt.Errorf("%w: role %q", ErrInvalidInput, *upd.Role)
			}
			a.Role = *upd.Role
		}
		if upd.Active != nil {
			a.Active = *upd.Active
		}
		if upd.Password != nil {
			if a.PasswordHash, err = s.hash(*upd.Password); err != nil {
				return err
			}
		}
		if err := s.admins.Update(ctx, a); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CheckPassword сверяет пароль с сохранённым хэшем
func CheckPassword(a *domain.Admin, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}
