package service

import (
	"context"
	"errors"
	"strings"

	"courier-dispatch/internal/domain/driver"
	"courier-dispatch/internal/domain/user"
	"courier-dispatch/internal/ports"

	"golang.org/x/crypto/bcrypt"
)

// Signup registers a customer or driver account. Drivers also get a profile
// row created in the same transaction so they can go online immediately.
// Admin accounts are provisioned out of band, never through this endpoint.
func (service *dispatchService) Signup(ctx context.Context, in ports.SignupInput) (ports.SignupResult, error) {
	if in.Role == user.RoleAdmin {
		return ports.SignupResult{}, user.ErrRoleNotPermitted
	}
	if strings.TrimSpace(in.Password) == "" {
		return ports.SignupResult{}, user.ErrBadCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return ports.SignupResult{}, err
	}

	account, err := user.NewUser(in.Email, in.Role, string(hash), in.FirstName, in.LastName, in.Phone)
	if err != nil {
		return ports.SignupResult{}, err
	}

	err = service.uow.WithinTx(ctx, func(ctx context.Context) error {
		if err := service.users.CreateUser(ctx, account); err != nil {
			return err
		}

		if account.IsDriver() {
			profile, err := driver.NewProfile(account.ID, in.VehicleType, in.VehiclePlate)
			if err != nil {
				return err
			}
			return service.drivers.CreateProfile(ctx, profile)
		}
		return nil
	})
	if err != nil {
		service.logger.Error(ctx, "signup_failed", "Failed to register user", err, map[string]any{
			"email": account.Email,
			"role":  account.Role.String(),
		})
		return ports.SignupResult{}, err
	}

	service.logger.Info(ctx, "user_registered", "New user registered", map[string]any{
		"user_id": account.ID,
		"role":    account.Role.String(),
	})

	return ports.SignupResult{UserID: account.ID, Role: account.Role.String()}, nil
}

// Login verifies credentials and issues an access token. Wrong email and
// wrong password collapse into the same error so the endpoint does not leak
// which accounts exist.
func (service *dispatchService) Login(ctx context.Context, in ports.LoginInput) (ports.LoginResult, error) {
	var account *user.User
	var profile *driver.Profile

	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		found, err := service.users.GetByEmail(ctx, in.Email)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return user.ErrBadCredentials
			}
			return err
		}
		account = found

		if account.IsDriver() {
			p, err := service.drivers.GetByUserID(ctx, account.ID)
			if err != nil && !errors.Is(err, driver.ErrNotFound) {
				return err
			}
			profile = p
		}
		return nil
	})
	if err != nil {
		service.logger.Error(ctx, "login_failed", "Login attempt failed", err, map[string]any{
			"email": strings.ToLower(strings.TrimSpace(in.Email)),
		})
		return ports.LoginResult{}, err
	}

	// accounts created by the dispatcher have no password and cannot log in
	if account.PasswordHash == "" {
		return ports.LoginResult{}, user.ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(in.Password)); err != nil {
		return ports.LoginResult{}, user.ErrBadCredentials
	}

	token, claims, err := service.jwtMgr.IssueUserToken(account.ID, account.Role)
	if err != nil {
		return ports.LoginResult{}, err
	}

	out := ports.LoginResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		UserID:    account.ID,
		Name:      account.FullName(),
		Role:      account.Role.String(),
	}
	if profile != nil {
		view := newDriverView(account, profile)
		out.Driver = &view
	}

	service.logger.Info(ctx, "user_logged_in", "User logged in", map[string]any{
		"user_id": account.ID,
		"role":    account.Role.String(),
	})

	return out, nil
}

// newDriverView merges the account and profile rows into the wire form.
func newDriverView(account *user.User, profile *driver.Profile) ports.DriverView {
	return ports.DriverView{
		DriverID:         account.ID,
		Email:            account.Email,
		Name:             account.FullName(),
		IsOnline:         profile.IsOnline,
		CurrentLatitude:  profile.CurrentLatitude,
		CurrentLongitude: profile.CurrentLongitude,
		VehicleType:      profile.VehicleType,
		VehiclePlate:     profile.VehiclePlate,
		Rating:           profile.Rating,
		TotalDeliveries:  profile.TotalDeliveries,
	}
}
