package postgres_test

import (
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"

	"github.com/pageza/smartscheduler/internal/domain"
)

// newFixtureContractor builds a valid Contractor with randomized fields,
// following testutils.TestFixtures.CreateTestCustomer's faker-driven
// pattern.
func newFixtureContractor(opts ...func(*domain.Contractor)) *domain.Contractor {
	c := &domain.Contractor{
		ID: uuid.New(),
		Name: faker.Name(),
		BaseLocation: domain.GeoLocation{
			Latitude:  40.7128,
			Longitude: -74.0060,
			Address:   faker.Address().Address,
			IanaZone:  "America/New_York",
		},
		WorkingHours: []domain.WorkingHours{
			{DayOfWeek: domain.Monday, StartLocal: "09:00", EndLocal: "17:00", IanaZone: "America/New_York"},
		},
		Skills:        []string{"hvac"},
		Calendar:      domain.NewContractorCalendar(),
		Rating:        85,
		MaxJobsPerDay: 6,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newFixtureJob builds a valid Job with randomized fields.
func newFixtureJob(opts ...func(*domain.Job)) *domain.Job {
	window, _ := domain.NewTimeWindow(time.Now().UTC(), time.Now().UTC().Add(4*time.Hour))
	j := &domain.Job{
		ID:              uuid.New(),
		Type:            faker.Word(),
		DurationMinutes: 120,
		Location: domain.GeoLocation{
			Latitude:  40.7128,
			Longitude: -74.0060,
			Address:   faker.Address().Address,
			IanaZone:  "America/New_York",
		},
		ServiceWindow:  window,
		Priority:       domain.PriorityNormal,
		DesiredDate:    time.Now().UTC(),
		RequiredSkills: []string{"hvac"},
		Status:         domain.JobScheduled,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}
