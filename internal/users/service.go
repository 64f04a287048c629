package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/mail"
	"strings"

	"github.com/plashmag/editorial/internal/activity"
	"github.com/plashmag/editorial/internal/auth"
	"github.com/plashmag/editorial/internal/hash"
	"github.com/plashmag/editorial/internal/models"
	"github.com/plashmag/editorial/internal/store"
)

const MinPasswordLength = 6

const DefaultListLimit = 50

type Store interface {
	Insert(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	EmailInUse(ctx context.Context, email string, excludingID uint) (bool, error)
	List(ctx context.Context, f store.Filters, limit, offset int) ([]models.User, error)
	CountByRole(ctx context.Context) (map[string]int64, error)
}

// Service layers account administration on the credential store with the
// same validation discipline the auth flow relies on.
type Service struct {
	Users    Store
	Activity *activity.Recorder
}

type CreateInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	SubRole  string
	Status   string
	Badges   []string
	Bio      string
}

// UpdateInput uses pointers so that only fields actually present in the
// request are applied.
type UpdateInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
	SubRole  *string
	Status   *string
	Badges   []string
	Bio      *string
}

// Create validates in fixed order: required fields, email syntax, duplicate
// email, password strength. The first violated rule wins.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.User, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, validationErr(CodeRequired, "", "name, email and password are required")
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !validEmail(email) {
		return nil, validationErr(CodeInvalidEmail, "email", "invalid email address")
	}

	inUse, err := s.Users.EmailInUse(ctx, email, 0)
	if err != nil {
		return nil, err
	}
	if inUse {
		return nil, validationErr(CodeEmailTaken, "email", "email is already in use")
	}

	if len(in.Password) < MinPasswordLength {
		return nil, validationErr(CodeWeakPassword, "password", "password must be at least 6 characters")
	}

	role := in.Role
	if role == "" {
		role = auth.RoleAthlete.String()
	}
	if _, ok := auth.ParseRole(role); !ok {
		return nil, validationErr(CodeInvalidRole, "role", "unknown role")
	}

	status := in.Status
	if status == "" {
		status = models.StatusActive
	}

	digest, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	badges := in.Badges
	if badges == nil {
		badges = []string{}
	}
	badgesJSON, err := json.Marshal(badges)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: digest,
		Role:         role,
		SubRole:      in.SubRole,
		Status:       status,
		Badges:       string(badgesJSON),
		Bio:          strings.TrimSpace(in.Bio),
	}
	if err := s.Users.Insert(ctx, user); err != nil {
		return nil, err
	}

	s.Activity.Record(ctx, activity.Event{
		UserID:     user.ID,
		Action:     "create",
		EntityType: "user",
		EntityID:   user.ID,
		Details:    "user created",
	})

	return user, nil
}

// Update applies only the whitelisted fields present in the input. An update
// with nothing to apply succeeds trivially.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) error {
	if _, err := s.Users.FindByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return validationErr(CodeNotFound, "", "user not found")
		}
		return err
	}

	fields := map[string]interface{}{}

	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if !validEmail(email) {
			return validationErr(CodeInvalidEmail, "email", "invalid email address")
		}
		inUse, err := s.Users.EmailInUse(ctx, email, id)
		if err != nil {
			return err
		}
		if inUse {
			return validationErr(CodeEmailTaken, "email", "email is already in use")
		}
		fields["email"] = email
	}
	if in.Role != nil {
		if _, ok := auth.ParseRole(*in.Role); !ok {
			return validationErr(CodeInvalidRole, "role", "unknown role")
		}
		fields["role"] = *in.Role
	}
	if in.SubRole != nil {
		fields["sub_role"] = *in.SubRole
	}
	if in.Status != nil {
		fields["status"] = *in.Status
	}
	if in.Badges != nil {
		badgesJSON, err := json.Marshal(in.Badges)
		if err != nil {
			return err
		}
		fields["badges"] = string(badgesJSON)
	}
	if in.Bio != nil {
		fields["bio"] = strings.TrimSpace(*in.Bio)
	}

	if in.Password != nil && *in.Password != "" {
		if len(*in.Password) < MinPasswordLength {
			return validationErr(CodeWeakPassword, "password", "password must be at least 6 characters")
		}
		digest, err := hash.HashPassword(*in.Password)
		if err != nil {
			return err
		}
		fields["password_hash"] = digest
	}

	if len(fields) == 0 {
		return nil
	}

	if err := s.Users.Update(ctx, id, fields); err != nil {
		return err
	}

	s.Activity.Record(ctx, activity.Event{
		UserID:     id,
		Action:     "update",
		EntityType: "user",
		EntityID:   id,
		Details:    "user updated",
	})

	return nil
}

// List returns users newest-first, bounded by limit and offset.
func (s *Service) List(ctx context.Context, f store.Filters, limit, offset int) ([]models.User, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.Users.List(ctx, f, limit, offset)
}

// Stats summarizes the account base for the admin dashboard.
func (s *Service) Stats(ctx context.Context) (map[string]int64, error) {
	return s.Users.CountByRole(ctx)
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	// Reject display-name forms; the login key is the bare address.
	return addr.Address == email
}
