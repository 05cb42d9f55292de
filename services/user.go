package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Aman-ydav/CareSync-sub000/models"
	"github.com/Aman-ydav/CareSync-sub000/role"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	users UserStore
	cache Cache
	now   func() time.Time
}

func NewUserService(users UserStore, c Cache) *UserService {
	return &UserService{users: users, cache: c, now: time.Now}
}

/*
* Generate a bcrypt based on the password given
 */
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func validateHours(hours *models.ConsultationHours) error {
	if hours == nil {
		return nil
	}
	start, err := util.ParseClock(hours.Start)
	if err != nil {
		return err
	}
	end, err := util.ParseClock(hours.End)
	if err != nil {
		return err
	}
	if start >= end {
		return util.Validation(util.INVALID_CONSULTATION_HRS)
	}
	return nil
}

/*
* Admin only
* Validate consultation hours for doctors
* Keep only the attributes that belong to the user's role
* Hash the password and insert; a taken email is a conflict
 */
func (s *UserService) Create(ctx context.Context, requester role.Requester, in models.UserInput) (*models.User, error) {
	if !requester.IsAdmin() {
		return nil, util.Forbidden(util.ONLY_ADMIN)
	}
	if !in.Role.IsValid() {
		return nil, util.Validation(util.INVALID_ROLE)
	}
	if err := requireField(in.Name, util.NAME_REQUIRED); err != nil {
		return nil, err
	}
	now := s.now()
	user := &models.User{
		Name:       trimmed(in.Name),
		Email:      strings.ToLower(trimmed(in.Email)),
		Phone:      trimmed(in.Phone),
		Role:       in.Role,
		IsVerified: in.IsVerified,
		CreatedAt:  now,
		CreatedBy:  requester.ID,
		UpdatedAt:  now,
		UpdatedBy:  requester.ID,
	}
	switch in.Role {
	case role.DOCTOR:
		if err := validateHours(in.ConsultationHours); err != nil {
			return nil, err
		}
		user.Specialty = trimmed(in.Specialty)
		user.ConsultationHours = in.ConsultationHours
		user.ExperienceYears = in.ExperienceYears
	case role.PATIENT:
		user.BloodGroup = trimmed(in.BloodGroup)
		user.Allergies = in.Allergies
		user.EmergencyContact = in.EmergencyContact
		user.IsVerified = true
	default:
		user.IsVerified = true
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		log.Error().Err(err).Msg("Error from HashPassword")
		return nil, util.Internal(err)
	}
	user.Password = hash

	if err := s.users.InsertUser(ctx, user); err != nil {
		if errors.Is(err, util.ErrDuplicateKey) {
			return nil, util.Conflict(util.EMAIL_ALREADY_EXISTS)
		}
		log.Error().Err(err).Msg("Error from InsertUser")
		return nil, util.Internal(err)
	}
	log.Info().Str("user_id", user.ID.Hex()).Str("role", string(user.Role)).Msg("User created")
	return user, nil
}

// Get returns a profile to its owner or an admin; doctor profiles are visible to everyone.
func (s *UserService) Get(ctx context.Context, requester role.Requester, id string) (*models.User, error) {
	user, err := cacheThrough(ctx, s.cache, util.UserKey+id, func(ctx context.Context) (*models.User, error) {
		found, err := s.users.FindUserByID(ctx, id)
		if err != nil {
			return nil, storeError("FindUserByID", err, util.USER_NOT_FOUND)
		}
		return found, nil
	})
	if err != nil {
		return nil, err
	}
	if requester.IsAdmin() || requester.ID == id || user.Role == role.DOCTOR {
		return user, nil
	}
	return nil, util.Forbidden(util.ONLY_SELF_OR_ADMIN)
}

type ListDoctorsQuery struct {
	Specialty string `form:"specialty"`
	Page      int64  `form:"page"`
	Limit     int64  `form:"limit"`
}

// ListDoctors returns verified doctors; admins also see unverified ones.
func (s *UserService) ListDoctors(ctx context.Context, requester role.Requester, q ListDoctorsQuery) (util.Page[models.User], error) {
	page, limit, err := util.PageBounds(q.Page, q.Limit)
	if err != nil {
		return util.Page[models.User]{}, err
	}
	filter := models.UserFilter{
		Role:         role.DOCTOR,
		Specialty:    trimmed(q.Specialty),
		VerifiedOnly: !requester.IsAdmin(),
		Page:         page,
		Limit:        limit,
	}
	items, total, err := s.users.ListUsers(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("Error from ListUsers")
		return util.Page[models.User]{}, util.Internal(err)
	}
	return util.NewPage(items, total, page, limit), nil
}

/*
* Users edit their own profile, admins anyone's
* Doctor-only and patient-only fields are rejected on the other roles
 */
func (s *UserService) Update(ctx context.Context, requester role.Requester, id string, patch models.UserPatch) (*models.User, error) {
	if !requester.IsAdmin() && requester.ID != id {
		return nil, util.Forbidden(util.ONLY_SELF_OR_ADMIN)
	}
	user, err := s.users.FindUserByID(ctx, id)
	if err != nil {
		return nil, storeError("FindUserByID", err, util.USER_NOT_FOUND)
	}
	if err := applyUserPatch(user, patch); err != nil {
		return nil, err
	}
	user.UpdatedAt = s.now()
	user.UpdatedBy = requester.ID
	return s.save(ctx, user)
}

func applyUserPatch(u *models.User, patch models.UserPatch) error {
	doctorFields := patch.Specialty != nil || patch.ConsultationHours != nil || patch.ExperienceYears != nil
	patientFields := patch.BloodGroup != nil || patch.Allergies != nil || patch.EmergencyContact != nil
	if doctorFields && u.Role != role.DOCTOR {
		return util.Validation(util.DOCTOR_FIELDS_ONLY)
	}
	if patientFields && u.Role != role.PATIENT {
		return util.Validation(util.PATIENT_FIELDS_ONLY)
	}
	if patch.Name != nil {
		if err := requireField(*patch.Name, util.NAME_REQUIRED); err != nil {
			return err
		}
		u.Name = trimmed(*patch.Name)
	}
	setIfPresent(&u.Phone, patch.Phone)
	setIfPresent(&u.Specialty, patch.Specialty)
	setIfPresent(&u.BloodGroup, patch.BloodGroup)
	if patch.ConsultationHours != nil {
		if err := validateHours(patch.ConsultationHours); err != nil {
			return err
		}
		u.ConsultationHours = patch.ConsultationHours
	}
	if patch.ExperienceYears != nil {
		if *patch.ExperienceYears < 0 {
			return util.Validation(util.INVALID_EXPERIENCE)
		}
		u.ExperienceYears = *patch.ExperienceYears
	}
	if patch.Allergies != nil {
		u.Allergies = *patch.Allergies
	}
	if patch.EmergencyContact != nil {
		u.EmergencyContact = patch.EmergencyContact
	}
	return nil
}

// VerifyDoctor marks a doctor as verified so patients can book them.
func (s *UserService) VerifyDoctor(ctx context.Context, requester role.Requester, id string) (*models.User, error) {
	if !requester.IsAdmin() {
		return nil, util.Forbidden(util.ONLY_ADMIN)
	}
	user, err := s.users.FindUserByID(ctx, id)
	if err != nil {
		return nil, storeError("FindUserByID", err, util.USER_NOT_FOUND)
	}
	if user.Role != role.DOCTOR {
		return nil, util.Validation(util.NOT_A_DOCTOR)
	}
	user.IsVerified = true
	user.UpdatedAt = s.now()
	user.UpdatedBy = requester.ID
	return s.save(ctx, user)
}

func (s *UserService) save(ctx context.Context, user *models.User) (*models.User, error) {
	if err := s.users.ReplaceUser(ctx, user); err != nil {
		if errors.Is(err, util.ErrNoDocument) {
			return nil, util.Conflict(util.USER_CHANGED)
		}
		log.Error().Err(err).Msg("Error from ReplaceUser")
		return nil, util.Internal(err)
	}
	cacheInvalidate(ctx, s.cache, util.UserKey+user.ID.Hex())
	return user, nil
}
