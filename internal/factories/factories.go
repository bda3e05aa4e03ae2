// Package factories produces plausible fake driver and nurse updates for
// seeding dashboards and load testing.
package factories

import (
	"math/rand"
	"time"

	"github.com/Rk346278/real-time-ambulance/internal/models"
	"github.com/Rk346278/real-time-ambulance/internal/triage"
	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
)

var hospitals = []string{
	"City General Hospital",
	"St. Martha's Hospital",
	"Victoria Hospital",
	"Apollo Emergency Centre",
	"District Trauma Centre",
}

// complaints mixes phrases from every triage tier so seeded dashboards show
// the full range of severities.
var complaints = []string{
	"patient not breathing, no pulse",
	"suspected heart attack, chest tightness",
	"head trauma after road accident",
	"heavy bleeding from forearm",
	"seizure lasting two minutes",
	"shortness of breath, history of asthma",
	"closed fracture of left leg",
	"chest pain radiating to arm",
	"high fever for three days",
	"dizziness and vomiting",
	"small cut on hand",
	"mild allergic reaction",
	"patient alert and talking",
}

type Factory struct {
	fake faker.Faker
	now  func() time.Time
}

// New returns a factory drawing from a seeded source, so a seed reproduces
// the same records.
func New(seed int64) *Factory {
	return &Factory{
		fake: faker.NewWithSeed(rand.NewSource(seed)),
		now:  time.Now,
	}
}

// CreateDriverUpdate returns a trip from a street address to a hospital,
// created within the last window.
func (f *Factory) CreateDriverUpdate(window time.Duration) *models.DriverUpdate {
	return &models.DriverUpdate{
		ID:           cuid.New(),
		FromLocation: f.fake.Address().StreetAddress() + ", " + f.fake.Address().City(),
		ToLocation:   f.fake.RandomStringElement(hospitals),
		CreatedAt:    f.createdAt(window),
	}
}

// CreateNurseUpdate returns a patient record with the triage fields already
// derived from its notes.
func (f *Factory) CreateNurseUpdate(window time.Duration) *models.NurseUpdate {
	u := &models.NurseUpdate{
		ID:          cuid.New(),
		PatientName: f.fake.Person().Name(),
		Age:         f.fake.IntBetween(1, 95),
		Notes:       f.fake.RandomStringElement(complaints),
		CreatedAt:   f.createdAt(window),
	}
	triage.Apply(u)
	return u
}

func (f *Factory) CreateDriverUpdates(n int, window time.Duration) []*models.DriverUpdate {
	out := make([]*models.DriverUpdate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.CreateDriverUpdate(window))
	}
	return out
}

func (f *Factory) CreateNurseUpdates(n int, window time.Duration) []*models.NurseUpdate {
	out := make([]*models.NurseUpdate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.CreateNurseUpdate(window))
	}
	return out
}

func (f *Factory) createdAt(window time.Duration) time.Time {
	now := f.now().UTC()
	if window <= 0 {
		return now
	}
	return f.fake.Time().TimeBetween(now.Add(-window), now).UTC()
}
