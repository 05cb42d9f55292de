package services

import (
	"time"
)

const defaultLockWait = 2 * time.Second

// Stores groups the persistence backends the services run on.
type Stores struct {
	Users         UserStore
	Appointments  AppointmentStore
	HealthRecords HealthRecordStore
	Hospitals     HospitalStore
	Stats         StatsStore
}

type Options struct {
	Cache              Cache
	Locker             SlotLocker
	Recorder           Recorder
	EnforceHoursForAll bool
	Assistant          ChatModel
	AssistantTimeout   time.Duration
}

type Services struct {
	Appointments  *AppointmentService
	HealthRecords *HealthRecordService
	Hospitals     *HospitalService
	Users         *UserService
	Stats         *StatsService
	Assistant     *AssistantService
}

// New wires every service. Without a Locker, slots are locked in-process.
func New(stores Stores, opts Options) *Services {
	locker := opts.Locker
	if locker == nil {
		locker = NewLocalLocker(defaultLockWait)
	}
	return &Services{
		Appointments: NewAppointmentService(stores.Appointments, stores.Users, locker,
			WithAppointmentCache(opts.Cache),
			WithRecorder(opts.Recorder),
			WithHoursForAll(opts.EnforceHoursForAll)),
		HealthRecords: NewHealthRecordService(stores.HealthRecords, stores.Users, stores.Appointments, opts.Cache),
		Hospitals:     NewHospitalService(stores.Hospitals),
		Users:         NewUserService(stores.Users, opts.Cache),
		Stats:         NewStatsService(stores.Stats),
		Assistant:     NewAssistantService(opts.Assistant, opts.AssistantTimeout),
	}
}
