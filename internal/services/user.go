package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adaosilva/imoveis-backend/internal/data/repos"
	types "github.com/adaosilva/imoveis-backend/internal/domain"
	"github.com/adaosilva/imoveis-backend/internal/domain/audit"
	domainuser "github.com/adaosilva/imoveis-backend/internal/domain/user"
	"github.com/adaosilva/imoveis-backend/internal/pkg/ctxutil"
	"github.com/adaosilva/imoveis-backend/internal/pkg/dbctx"
	"github.com/adaosilva/imoveis-backend/internal/platform/apierr"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
	"github.com/adaosilva/imoveis-backend/internal/platform/textutil"
)

const minPasswordLength = 6

type CreateUserInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UserService interface {
	List(ctx context.Context) ([]*types.User, error)
	Create(ctx context.Context, in CreateUserInput) (*types.User, error)
	UpdateRole(ctx context.Context, userID uuid.UUID, role string) (*types.User, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	leadRepo repos.LeadRepo
	audit    AuditService
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, leadRepo repos.LeadRepo, audit AuditService) UserService {
	return &userService{
		db:       db,
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
		leadRepo: leadRepo,
		audit:    audit,
	}
}

func requireAdmin(ctx context.Context) (*ctxutil.RequestData, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Unauthorized("Could not validate credentials")
	}
	if !rd.IsAdmin() {
		return nil, apierr.Forbidden("Acesso negado")
	}
	return rd, nil
}

func (us *userService) List(ctx context.Context) ([]*types.User, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return us.userRepo.List(dbctx.Context{Ctx: ctx})
}

func (us *userService) Create(ctx context.Context, in CreateUserInput) (*types.User, error) {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	email := textutil.NormalizeEmail(in.Email)
	if !textutil.IsValidEmail(email) {
		return nil, apierr.Invalid("Email inválido")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apierr.Invalid(fmt.Sprintf("A senha deve ter pelo menos %d caracteres", minPasswordLength))
	}
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if role == "" {
		role = domainuser.RoleVendedor
	}
	if !domainuser.IsValidRole(role) {
		return nil, apierr.Invalid("Perfil inválido")
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var created *types.User
	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := us.userRepo.EmailExists(dbc, email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return apierr.Conflict("Email já cadastrado")
		}
		rows, err := us.userRepo.Create(dbc, []*types.User{{Email: email, PasswordHash: hash, Role: role}})
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		created = rows[0]
		return us.audit.Record(dbc, actor, AuditEntry{
			Action:       audit.ActionCreateUser,
			ResourceType: audit.ResourceUser,
			Details:      fmt.Sprintf("Novo usuário criado: %s (%s)", created.Email, created.Role),
			Changes:      map[string]any{"user_id": created.ID.String(), "role": created.Role},
		})
	})
	if err != nil {
		return nil, err
	}
	us.log.Info("user created", "user_id", created.ID.String(), "role", created.Role)
	return created, nil
}

func (us *userService) UpdateRole(ctx context.Context, userID uuid.UUID, role string) (*types.User, error) {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if !domainuser.IsValidRole(role) {
		return nil, apierr.Invalid("Perfil inválido")
	}
	if userID == actor.UserID && role != domainuser.RoleAdmin {
		return nil, apierr.Invalid("Você não pode remover seu próprio acesso de administrador")
	}

	var updated *types.User
	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		target, err := us.getUser(dbc, userID)
		if err != nil {
			return err
		}
		oldRole := target.Role
		if oldRole == role {
			updated = target
			return nil
		}
		if err := us.userRepo.UpdateRole(dbc, userID, role); err != nil {
			return fmt.Errorf("update role: %w", err)
		}
		target.Role = role
		updated = target
		return us.audit.Record(dbc, actor, AuditEntry{
			Action:       audit.ActionUpdateUserRole,
			ResourceType: audit.ResourceUser,
			Details:      fmt.Sprintf("Perfil de %s alterado de %s para %s", target.Email, oldRole, role),
			Changes:      map[string]any{"user_id": userID.String(), "old_role": oldRole, "new_role": role},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (us *userService) Delete(ctx context.Context, userID uuid.UUID) error {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return err
	}
	if userID == actor.UserID {
		return apierr.Invalid("Você não pode excluir sua própria conta")
	}
	return us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		target, err := us.getUser(dbc, userID)
		if err != nil {
			return err
		}
		unassigned, err := us.leadRepo.UnassignUser(dbc, userID)
		if err != nil {
			return fmt.Errorf("unassign leads: %w", err)
		}
		if err := us.userRepo.Delete(dbc, userID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		us.log.Info("user deleted", "user_id", userID.String(), "unassigned_leads", unassigned)
		return us.audit.Record(dbc, actor, AuditEntry{
			Action:       audit.ActionDeleteUser,
			ResourceType: audit.ResourceUser,
			Details:      fmt.Sprintf("Usuário excluído: %s", target.Email),
			Changes:      map[string]any{"user_id": userID.String(), "unassigned_leads": unassigned},
		})
	})
}

func (us *userService) getUser(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	found, err := us.userRepo.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, apierr.NotFound("Usuário não encontrado")
	}
	return found[0], nil
}
