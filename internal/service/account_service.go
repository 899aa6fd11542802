package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yourorg/taskmanager/internal/domain"
	"github.com/yourorg/taskmanager/pkg/pagination"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the work factor used for all stored password hashes
const bcryptCost = 11

// AccountService handles account lifecycle operations
type AccountService struct {
	store  domain.Store
	logger *slog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(store domain.Store, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		store:  store,
		logger: logger,
	}
}

// Create registers a new account with the USER role. The submitted password
// is stored only as a bcrypt hash.
func (s *AccountService) Create(ctx context.Context, req AccountCreateRequest) (*AccountResponse, error) {
	exists, err := s.store.Accounts().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.Duplicate("Account already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &domain.Account{
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}

	// the unique constraint settles concurrent registrations for one email
	if err := s.store.Accounts().Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("account created",
		slog.Int64("account_id", account.ID),
		slog.String("email", account.Email),
	)

	return toAccountResponse(account), nil
}

// GetCurrent resolves the caller's own account by identity
func (s *AccountService) GetCurrent(ctx context.Context, identity string) (*AccountResponse, error) {
	account, err := s.store.Accounts().GetByEmail(ctx, identity)
	if err != nil {
		return nil, err
	}
	return toAccountResponse(account), nil
}

// List returns one page of public account projections
func (s *AccountService) List(ctx context.Context, page pagination.Request) (*pagination.Page[*AccountResponse], error) {
	accounts, err := s.store.Accounts().List(ctx, page)
	if err != nil {
		return nil, err
	}
	return pagination.Map(accounts, toAccountResponse), nil
}

// Update overwrites the caller's own email and password, re-hashing the
// password.
func (s *AccountService) Update(ctx context.Context, identity string, req AccountCreateRequest) (*AccountResponse, error) {
	var resp *AccountResponse
	err := s.store.InTx(ctx, func(st domain.Store) error {
		account, err := st.Accounts().GetByEmail(ctx, identity)
		if err != nil {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		account.Email = req.Email
		account.PasswordHash = string(hash)

		if err := st.Accounts().Update(ctx, account); err != nil {
			return err
		}
		resp = toAccountResponse(account)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account updated", slog.Int64("account_id", resp.ID))
	return resp, nil
}

// DeleteByID removes an account and everything hanging off it. The caller's
// privilege is checked at the boundary.
func (s *AccountService) DeleteByID(ctx context.Context, id int64) error {
	err := s.store.InTx(ctx, func(st domain.Store) error {
		if _, err := st.Accounts().GetByID(ctx, id); err != nil {
			return err
		}
		return s.cascadeDelete(ctx, st, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("account deleted", slog.Int64("account_id", id))
	return nil
}

// DeleteOwn removes the caller's own account
func (s *AccountService) DeleteOwn(ctx context.Context, identity string) error {
	err := s.store.InTx(ctx, func(st domain.Store) error {
		account, err := st.Accounts().GetByEmail(ctx, identity)
		if err != nil {
			return err
		}
		return s.cascadeDelete(ctx, st, account.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("account deleted", slog.String("email", identity))
	return nil
}

// cascadeDelete enumerates and removes everything that references the
// account before deleting the account itself: comments it authored, issues
// it authored (with their comments), and its assignments.
func (s *AccountService) cascadeDelete(ctx context.Context, st domain.Store, id int64) error {
	if err := st.Comments().DeleteByAuthor(ctx, id); err != nil {
		return err
	}
	if err := st.Comments().DeleteByIssueAuthor(ctx, id); err != nil {
		return err
	}
	if err := st.Issues().DeleteByAuthor(ctx, id); err != nil {
		return err
	}
	if err := st.Issues().ClearAssignee(ctx, id); err != nil {
		return err
	}
	return st.Accounts().Delete(ctx, id)
}

// ResolveCredentials returns the account for an email, including the
// password hash, for the authentication subsystem to verify against.
func (s *AccountService) ResolveCredentials(ctx context.Context, email string) (*domain.Account, error) {
	return s.store.Accounts().GetByEmail(ctx, email)
}

// EnsureAdmin creates (or promotes) the account with the given email so an
// ADMIN credential always exists after startup.
func (s *AccountService) EnsureAdmin(ctx context.Context, email, password string) error {
	return s.store.InTx(ctx, func(st domain.Store) error {
		account, err := st.Accounts().GetByEmail(ctx, email)
		if err == nil {
			if account.Role == domain.RoleAdmin {
				return nil
			}
			account.Role = domain.RoleAdmin
			return st.Accounts().Update(ctx, account)
		}
		if !domain.IsNotFound(err) {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		return st.Accounts().Create(ctx, &domain.Account{
			Email:        email,
			PasswordHash: string(hash),
			Role:         domain.RoleAdmin,
		})
	})
}
