package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"splitdine-admin.backend/internal/domain/entities"
	domainerrors "splitdine-admin.backend/internal/domain/errors"
	domainRepos "splitdine-admin.backend/internal/domain/repositories"
	"splitdine-admin.backend/pkg/crypto"
	"splitdine-admin.backend/pkg/utils"
)

var hashPassword = crypto.HashPasswordWithCost

// StaffDirectory registers onboarding personnel as users of a restaurant
type StaffDirectory struct {
	users      domainRepos.UserRepository
	bcryptCost int
}

// NewStaffDirectory creates a staff directory over the user store
func NewStaffDirectory(users domainRepos.UserRepository, bcryptCost int) *StaffDirectory {
	return &StaffDirectory{users: users, bcryptCost: bcryptCost}
}

// BulkRegister creates one user per personnel entry. Plain passwords are
// hashed and never leave this call.
func (d *StaffDirectory) BulkRegister(ctx context.Context, restaurantID int, personnel []entities.Personnel) ([]*entities.User, error) {
	now := time.Now()
	seen := make(map[string]bool, len(personnel))
	users := make([]*entities.User, 0, len(personnel))

	for _, p := range personnel {
		email := entities.NormalizeEmail(p.Email)
		if seen[email] {
			return nil, fmt.Errorf("staff %s: %w", email, domainerrors.ErrAlreadyExists)
		}
		seen[email] = true

		exists, err := d.users.EmailExists(ctx, email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("staff %s: %w", email, domainerrors.ErrAlreadyExists)
		}

		hash, err := hashPassword(p.Password, d.bcryptCost)
		if err != nil {
			return nil, err
		}

		role := entities.UserRoleStaff
		if p.Role == entities.PersonnelRoleManager {
			role = entities.UserRoleManager
		}

		users = append(users, &entities.User{
			ID:           utils.GenerateUUIDv7(),
			RestaurantID: restaurantID,
			FirstName:    strings.TrimSpace(p.FirstName),
			LastName:     strings.TrimSpace(p.LastName),
			Email:        email,
			Phone:        p.PhoneNumber(),
			PasswordHash: hash,
			Role:         role,
			CreatedAt:    now,
		})
	}

	if err := d.users.CreateMany(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}
