package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/account-service/internal/dto"
	"github.com/ahmetcoskunkizilkaya/account-service/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/account-service/internal/models"
	"github.com/ahmetcoskunkizilkaya/account-service/internal/validation"
	"gorm.io/gorm"
)

const (
	msgProfileUpdated = "Updated successfully"
	profileFields     = "all fields are required (first_name, last_name, phone)"
	addressFields     = "required fields in address (line1, city, state, country, pincode)"
	newAddressFields  = "address doesn't exist; required fields (line1, city, state, country, pincode)"
	blankFields       = "fields cannot be empty"
)

type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// GetProfile returns the user with its address, when one exists.
func (s *ProfileService) GetProfile(ctx context.Context, user *models.User) (*dto.ProfileResponse, error) {
	addr, err := findAddress(s.db.WithContext(ctx), user.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewProfileResponse(user, addr), nil
}

// CompleteProfile is the one-time step that sets name and phone, and
// optionally a full address. It returns ErrProfileAlreadyCompleted without
// writing when the step has already run.
func (s *ProfileService) CompleteProfile(ctx context.Context, user *models.User, req *dto.CompleteProfileRequest) (resp *dto.ProfileResponse, err error) {
	defer func() {
		if !errors.Is(err, ErrProfileAlreadyCompleted) {
			metrics.RecordAuthEvent("profile_complete", err)
		}
	}()

	if user.ProfileCompleted() {
		return nil, ErrProfileAlreadyCompleted
	}

	req.Trim()
	var missing []string
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"first_name", req.FirstName},
		{"last_name", req.LastName},
		{"phone", req.Phone},
	} {
		if f.value == nil || *f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, invalidFields(profileFields, missing)
	}

	withAddress := !req.Address.Empty()
	if withAddress {
		if missing := req.Address.Missing(); len(missing) > 0 {
			return nil, invalidFields(addressFields, missing)
		}
	}

	if err := checkFormats(req); err != nil {
		return nil, err
	}

	phone := *req.Phone
	db := s.db.WithContext(ctx)
	taken, err := exists(db.Model(&models.User{}).Where("phone = ? AND id <> ?", phone, user.ID))
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrPhoneTaken
	}

	firstName := *req.FirstName
	lastName := *req.LastName

	var addr *models.Address
	err = db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
			"first_name": firstName,
			"last_name":  lastName,
			"phone":      phone,
		}).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrPhoneTaken
		}
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		if withAddress {
			addr, err = upsertAddress(tx, user.ID, req.Address)
			return err
		}
		addr, err = findAddress(tx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	user.FirstName = &firstName
	user.LastName = &lastName
	user.Phone = &phone
	slog.Info("profile completed", "user_id", user.ID, "action", "profile_complete")
	return dto.NewProfileResponse(user, addr), nil
}

// UpdateProfile applies a partial update to the user and address. A
// missing address can only be created from a payload carrying every required
// field.
func (s *ProfileService) UpdateProfile(ctx context.Context, user *models.User, req *dto.UpdateProfileRequest) (msg string, err error) {
	defer func() { metrics.RecordAuthEvent("profile_update", err) }()

	if user.Email == "" || !user.ProfileCompleted() {
		return "", ErrProfileIncomplete
	}
	if req.UserFieldsEmpty() && req.Address.Empty() {
		return "", ErrEmptyUpdate
	}

	req.Trim()
	updates := map[string]interface{}{}
	var blank []string
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"first_name", req.FirstName},
		{"last_name", req.LastName},
		{"email", req.Email},
		{"phone", req.Phone},
	} {
		if f.value == nil {
			continue
		}
		if *f.value == "" {
			blank = append(blank, f.name)
			continue
		}
		updates[f.name] = *f.value
	}
	if len(blank) > 0 {
		return "", invalidFields(blankFields, blank)
	}

	db := s.db.WithContext(ctx)
	if !req.Address.Empty() {
		existing, err := findAddress(db, user.ID)
		if err != nil {
			return "", err
		}
		if existing == nil {
			if missing := req.Address.Missing(); len(missing) > 0 {
				return "", invalidFields(newAddressFields, missing)
			}
		} else if empty := req.Address.Blank(); len(empty) > 0 {
			return "", invalidFields(blankFields, empty)
		}
	}

	if err := checkFormats(req); err != nil {
		return "", err
	}
	if email, ok := updates["email"].(string); ok && email != user.Email {
		taken, err := exists(db.Model(&models.User{}).Where("email = ? AND id <> ?", email, user.ID))
		if err != nil {
			return "", err
		}
		if taken {
			return "", ErrEmailTaken
		}
	}
	if phone, ok := updates["phone"].(string); ok && (user.Phone == nil || phone != *user.Phone) {
		taken, err := exists(db.Model(&models.User{}).Where("phone = ? AND id <> ?", phone, user.ID))
		if err != nil {
			return "", err
		}
		if taken {
			return "", ErrPhoneTaken
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if !req.Address.Empty() {
			if _, err := upsertAddress(tx, user.ID, req.Address); err != nil {
				return err
			}
		}

		if len(updates) == 0 {
			return nil
		}
		err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return newError(KindConflict, "email or phone number already in use")
		}
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	slog.Info("profile updated", "user_id", user.ID, "action", "profile_update")
	return msgProfileUpdated, nil
}

// checkFormats runs the format tags of a profile request and maps a failing
// field to its error.
func checkFormats(req interface{}) error {
	fields, err := validation.Struct(req)
	if err != nil {
		return err
	}
	for _, f := range fields {
		switch f {
		case "email":
			return ErrInvalidEmail
		case "phone":
			return ErrInvalidPhone
		}
	}
	if len(fields) > 0 {
		return invalidFields("invalid fields", fields)
	}
	return nil
}

func findAddress(db *gorm.DB, userID uint) (*models.Address, error) {
	var addr models.Address
	err := db.Where("user_id = ?", userID).First(&addr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load address: %w", err)
	}
	return &addr, nil
}

// upsertAddress updates the user's address in place, or creates it. Callers
// make sure in carries every required field when no address exists yet.
func upsertAddress(tx *gorm.DB, userID uint, in *dto.AddressInput) (*models.Address, error) {
	addr, err := findAddress(tx, userID)
	if err != nil {
		return nil, err
	}
	if addr == nil {
		addr = &models.Address{UserID: userID}
		in.Apply(addr)
		if err := tx.Create(addr).Error; err != nil {
			return nil, fmt.Errorf("failed to create address: %w", err)
		}
		return addr, nil
	}

	in.Apply(addr)
	err = tx.Model(&models.Address{}).Where("id = ?", addr.ID).Updates(map[string]interface{}{
		"line1":   addr.Line1,
		"city":    addr.City,
		"state":   addr.State,
		"country": addr.Country,
		"pincode": addr.Pincode,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}
	return addr, nil
}
