package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Aman-ydav/CareSync-sub000/models"
	"github.com/Aman-ydav/CareSync-sub000/role"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/rs/zerolog/log"
)

var nonSlugChars = regexp.MustCompile(`[^\w-]+`)

// Slugify lowercases name, turns spaces into hyphens and drops everything but word characters and hyphens.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	return nonSlugChars.ReplaceAllString(slug, "")
}

type HospitalService struct {
	hospitals HospitalStore
	now       func() time.Time
}

func NewHospitalService(hospitals HospitalStore) *HospitalService {
	return &HospitalService{hospitals: hospitals, now: time.Now}
}

/*
* Derive the slug from the name
* While another hospital holds it, try name-1, name-2, ...
 */
func (s *HospitalService) uniqueSlug(ctx context.Context, name, excludeID string) (string, error) {
	base := Slugify(name)
	if base == "" {
		return "", util.Validation(util.INVALID_HOSPITAL_NAME)
	}
	candidate := base
	for i := 1; ; i++ {
		taken, err := s.hospitals.SlugTaken(ctx, candidate, excludeID)
		if err != nil {
			log.Error().Err(err).Msg("Error from SlugTaken")
			return "", util.Internal(err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *HospitalService) Create(ctx context.Context, requester role.Requester, in models.HospitalInput) (*models.Hospital, error) {
	if !requester.IsAdmin() {
		return nil, util.Forbidden(util.ONLY_ADMIN)
	}
	name := trimmed(in.Name)
	if err := requireField(name, util.HOSPITAL_NAME_REQUIRED); err != nil {
		return nil, err
	}
	slug, err := s.uniqueSlug(ctx, name, "")
	if err != nil {
		return nil, err
	}
	now := s.now()
	hospital := &models.Hospital{
		Name:      name,
		Slug:      slug,
		Address:   trimmed(in.Address),
		City:      trimmed(in.City),
		State:     trimmed(in.State),
		Country:   trimmed(in.Country),
		Phone:     trimmed(in.Phone),
		CreatedAt: now,
		CreatedBy: requester.ID,
		UpdatedAt: now,
		UpdatedBy: requester.ID,
	}
	if err := s.hospitals.InsertHospital(ctx, hospital); err != nil {
		if errors.Is(err, util.ErrDuplicateKey) {
			return nil, util.Conflict(util.HOSPITAL_ALREADY_EXISTS)
		}
		log.Error().Err(err).Msg("Error from InsertHospital")
		return nil, util.Internal(err)
	}
	return hospital, nil
}

/*
* Admin only
* Apply the allow-listed fields
* A rename re-derives the slug, ignoring the hospital's own current slug
 */
func (s *HospitalService) Update(ctx context.Context, requester role.Requester, id string, patch models.HospitalPatch) (*models.Hospital, error) {
	if !requester.IsAdmin() {
		return nil, util.Forbidden(util.ONLY_ADMIN)
	}
	hospital, err := s.hospitals.FindHospitalByID(ctx, id)
	if err != nil {
		return nil, storeError("FindHospitalByID", err, util.HOSPITAL_NOT_FOUND)
	}
	if patch.Name != nil {
		name := trimmed(*patch.Name)
		if err := requireField(name, util.HOSPITAL_NAME_REQUIRED); err != nil {
			return nil, err
		}
		if name != hospital.Name {
			slug, err := s.uniqueSlug(ctx, name, id)
			if err != nil {
				return nil, err
			}
			hospital.Name, hospital.Slug = name, slug
		}
	}
	setIfPresent(&hospital.Address, patch.Address)
	setIfPresent(&hospital.City, patch.City)
	setIfPresent(&hospital.State, patch.State)
	setIfPresent(&hospital.Country, patch.Country)
	setIfPresent(&hospital.Phone, patch.Phone)
	hospital.UpdatedAt = s.now()
	hospital.UpdatedBy = requester.ID

	if err := s.hospitals.ReplaceHospital(ctx, hospital); err != nil {
		switch {
		case errors.Is(err, util.ErrDuplicateKey):
			return nil, util.Conflict(util.HOSPITAL_ALREADY_EXISTS)
		case errors.Is(err, util.ErrNoDocument):
			return nil, util.Conflict(util.HOSPITAL_CHANGED)
		}
		log.Error().Err(err).Msg("Error from ReplaceHospital")
		return nil, util.Internal(err)
	}
	return hospital, nil
}

func setIfPresent(dst *string, value *string) {
	if value != nil {
		*dst = trimmed(*value)
	}
}

func (s *HospitalService) Get(ctx context.Context, id string) (*models.Hospital, error) {
	hospital, err := s.hospitals.FindHospitalByID(ctx, id)
	if err != nil {
		return nil, storeError("FindHospitalByID", err, util.HOSPITAL_NOT_FOUND)
	}
	return hospital, nil
}

func (s *HospitalService) GetBySlug(ctx context.Context, slug string) (*models.Hospital, error) {
	hospital, err := s.hospitals.FindHospitalBySlug(ctx, strings.ToLower(trimmed(slug)))
	if err != nil {
		return nil, storeError("FindHospitalBySlug", err, util.HOSPITAL_NOT_FOUND)
	}
	return hospital, nil
}

func (s *HospitalService) List(ctx context.Context, page, limit int64) (util.Page[models.Hospital], error) {
	page, limit, err := util.PageBounds(page, limit)
	if err != nil {
		return util.Page[models.Hospital]{}, err
	}
	items, total, err := s.hospitals.ListHospitals(ctx, page, limit)
	if err != nil {
		log.Error().Err(err).Msg("Error from ListHospitals")
		return util.Page[models.Hospital]{}, util.Internal(err)
	}
	return util.NewPage(items, total, page, limit), nil
}
