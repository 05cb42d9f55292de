package services

import (
	"context"
	"testing"

	"github.com/Aman-ydav/CareSync-sub000/models"
	"github.com/Aman-ydav/CareSync-sub000/role"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func doctorInput() models.UserInput {
	return models.UserInput{
		Name:              " Dr. Rivera ",
		Email:             "Rivera@CareSync.test",
		Password:          "s3cret-pass",
		Role:              role.DOCTOR,
		Specialty:         "Cardiology",
		ConsultationHours: &models.ConsultationHours{Start: "10:00", End: "14:00"},
		ExperienceYears:   8,
		BloodGroup:        "O+",
	}
}

func TestCreateUser(t *testing.T) {
	f := newFixture()
	svc := NewUserService(f.store, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, f.doctor, doctorInput())
	assert.True(t, util.IsKind(err, util.KindForbidden))

	user, err := svc.Create(ctx, f.admin, doctorInput())
	require.NoError(t, err)
	assert.Equal(t, "Dr. Rivera", user.Name)
	assert.Equal(t, "rivera@caresync.test", user.Email)
	assert.False(t, user.IsVerified)
	assert.Empty(t, user.BloodGroup)
	assert.Equal(t, f.admin.ID, user.CreatedBy)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("s3cret-pass")))

	_, err = svc.Create(ctx, f.admin, doctorInput())
	assert.True(t, util.IsKind(err, util.KindConflict))

	in := doctorInput()
	in.Email = "late@caresync.test"
	in.ConsultationHours = &models.ConsultationHours{Start: "18:00", End: "09:00"}
	_, err = svc.Create(ctx, f.admin, in)
	assert.True(t, util.IsKind(err, util.KindValidation))

	patient, err := svc.Create(ctx, f.admin, models.UserInput{
		Name:       "Sam",
		Email:      "sam@caresync.test",
		Password:   "another-pass",
		Role:       role.PATIENT,
		Specialty:  "ignored",
		BloodGroup: "AB-",
	})
	require.NoError(t, err)
	assert.True(t, patient.IsVerified)
	assert.Empty(t, patient.Specialty)
	assert.Equal(t, "AB-", patient.BloodGroup)
}

func TestGetUserVisibility(t *testing.T) {
	f := newFixture()
	svc := NewUserService(f.store, newMemCache())
	ctx := context.Background()

	_, err := svc.Get(ctx, f.patient, f.patient.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, f.patient, f.doctor.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, f.patient, f.other.ID)
	assert.True(t, util.IsKind(err, util.KindForbidden))
	_, err = svc.Get(ctx, f.admin, f.other.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, f.admin, "000000000000000000000000")
	assert.True(t, util.IsKind(err, util.KindNotFound))
}

func TestListDoctorsHidesUnverifiedFromNonAdmins(t *testing.T) {
	f := newFixture()
	svc := NewUserService(f.store, nil)
	ctx := context.Background()

	page, err := svc.ListDoctors(ctx, f.patient, ListDoctorsQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	for _, doctor := range page.Items {
		assert.True(t, doctor.IsVerified)
	}

	page, err = svc.ListDoctors(ctx, f.admin, ListDoctorsQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
}

func TestUpdateUser(t *testing.T) {
	f := newFixture()
	svc := NewUserService(f.store, newMemCache())
	ctx := context.Background()

	specialty := "Dermatology"
	_, err := svc.Update(ctx, f.patient, f.patient.ID, models.UserPatch{Specialty: &specialty})
	assert.True(t, util.IsKind(err, util.KindValidation))

	_, err = svc.Update(ctx, f.other, f.patient.ID, models.UserPatch{})
	assert.True(t, util.IsKind(err, util.KindForbidden))

	allergies := []string{"penicillin"}
	updated, err := svc.Update(ctx, f.patient, f.patient.ID, models.UserPatch{Allergies: &allergies})
	require.NoError(t, err)
	assert.Equal(t, allergies, updated.Allergies)

	blood := "A+"
	_, err = svc.Update(ctx, f.doctor, f.doctor.ID, models.UserPatch{BloodGroup: &blood})
	assert.True(t, util.IsKind(err, util.KindValidation))

	years := -1
	_, err = svc.Update(ctx, f.doctor, f.doctor.ID, models.UserPatch{ExperienceYears: &years})
	assert.True(t, util.IsKind(err, util.KindValidation))

	hours := &models.ConsultationHours{Start: "08:00", End: "12:00"}
	updated, err = svc.Update(ctx, f.admin, f.doctor.ID, models.UserPatch{ConsultationHours: hours, Specialty: &specialty})
	require.NoError(t, err)
	assert.Equal(t, "08:00", updated.HoursOrDefault().Start)
	assert.Equal(t, specialty, updated.Specialty)
	assert.Equal(t, f.admin.ID, updated.UpdatedBy)

	got, err := svc.Get(ctx, f.patient, f.doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, specialty, got.Specialty)
}

func TestVerifyDoctor(t *testing.T) {
	f := newFixture()
	svc := NewUserService(f.store, nil)
	ctx := context.Background()

	_, err := svc.VerifyDoctor(ctx, f.doctor, f.unverified.ID)
	assert.True(t, util.IsKind(err, util.KindForbidden))

	_, err = svc.VerifyDoctor(ctx, f.admin, f.patient.ID)
	assert.True(t, util.IsKind(err, util.KindValidation))

	verified, err := svc.VerifyDoctor(ctx, f.admin, f.unverified.ID)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)

	appointments := newAppointmentService(f)
	in := booking(f, "09:00")
	in.DoctorID = f.unverified.ID
	_, err = appointments.Create(ctx, f.patient, in)
	assert.NoError(t, err)
}

func TestVerifyDoctorKeepsConcurrentProfileEdit(t *testing.T) {
	f := newFixture()
	writer := NewUserService(f.store, nil)
	ctx := context.Background()

	specialty := "Neurology"
	after := &afterFind{hook: func() {
		_, err := writer.Update(ctx, f.unverified, f.unverified.ID, models.UserPatch{Specialty: &specialty})
		require.NoError(t, err)
	}}
	admin := NewUserService(&racingUsers{UserStore: f.store, after: after}, nil)

	_, err := admin.VerifyDoctor(ctx, f.admin, f.unverified.ID)
	assert.True(t, util.IsKind(err, util.KindConflict))
	assert.Equal(t, specialty, f.store.users[f.unverified.ID].Specialty)

	verified, err := admin.VerifyDoctor(ctx, f.admin, f.unverified.ID)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	assert.Equal(t, specialty, verified.Specialty)
}

func TestGetUserSeesProfileEditAfterCaching(t *testing.T) {
	f := newFixture()
	svc := NewUserService(f.store, newMemCache())
	ctx := context.Background()

	got, err := svc.Get(ctx, f.patient, f.doctor.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Specialty)

	specialty := "Cardiology"
	_, err = svc.Update(ctx, f.doctor, f.doctor.ID, models.UserPatch{Specialty: &specialty})
	require.NoError(t, err)

	got, err = svc.Get(ctx, f.patient, f.doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, specialty, got.Specialty)
}
