package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheuspdias/managerclin-public-sub002/internal/dto"
	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
	appErrors "github.com/matheuspdias/managerclin-public-sub002/pkg/errors"
)

type stubScheduleReader struct {
	hours     map[int]*models.WorkingHours
	exception *models.ScheduleException
}

func (s *stubScheduleReader) FindForWeekday(_ context.Context, _, _ string, weekday int) (*models.WorkingHours, error) {
	if h, ok := s.hours[weekday]; ok {
		return h, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubScheduleReader) FindException(_ context.Context, _, _ string, _ time.Time) (*models.ScheduleException, error) {
	if s.exception == nil {
		return nil, sql.ErrNoRows
	}
	return s.exception, nil
}

type stubDayLister struct {
	practitioner []models.Appointment
	room         []models.Appointment
}

func (s *stubDayLister) ListForPractitionerOnDate(_ context.Context, _, _ string, _ time.Time, excludeID string) ([]models.Appointment, error) {
	return withoutID(s.practitioner, excludeID), nil
}

func (s *stubDayLister) ListForRoomOnDate(_ context.Context, _, _ string, _ time.Time, excludeID string) ([]models.Appointment, error) {
	return withoutID(s.room, excludeID), nil
}

func withoutID(appointments []models.Appointment, excludeID string) []models.Appointment {
	if excludeID == "" {
		return appointments
	}
	var out []models.Appointment
	for _, apt := range appointments {
		if apt.ID != excludeID {
			out = append(out, apt)
		}
	}
	return out
}

type stubServiceReader struct {
	service *models.Service
}

func (s *stubServiceReader) FindByID(_ context.Context, _, _ string) (*models.Service, error) {
	if s.service == nil {
		return nil, sql.ErrNoRows
	}
	return s.service, nil
}

func strPtr(v string) *string { return &v }

// monday is a date whose weekday is Monday.
var monday = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

func mondayEightToSix() *stubScheduleReader {
	return &stubScheduleReader{
		hours: map[int]*models.WorkingHours{
			int(time.Monday): {
				Weekday:    int(time.Monday),
				StartTime:  "08:00",
				EndTime:    "18:00",
				BreakStart: strPtr("12:00"),
				BreakEnd:   strPtr("13:00"),
			},
		},
	}
}

func newAvailability(schedule *stubScheduleReader, lister *stubDayLister, services *stubServiceReader) *AvailabilityService {
	if services == nil {
		services = &stubServiceReader{}
	}
	return NewAvailabilityService(schedule, lister, services, nil, 0, 30, nil)
}

func TestResolveWindowWeeklyFallback(t *testing.T) {
	svc := newAvailability(mondayEightToSix(), &stubDayLister{}, nil)

	window, err := svc.ResolveWindow(context.Background(), "co-1", "pr-1", monday)
	require.NoError(t, err)
	require.NotNil(t, window)
	assert.Equal(t, "08:00", window.Start)
	assert.Equal(t, "18:00", window.End)
	require.NotNil(t, window.BreakStart)
	assert.Equal(t, "12:00", *window.BreakStart)
}

func TestResolveWindowNoHoursConfigured(t *testing.T) {
	svc := newAvailability(&stubScheduleReader{hours: map[int]*models.WorkingHours{}}, &stubDayLister{}, nil)

	window, err := svc.ResolveWindow(context.Background(), "co-1", "pr-1", monday)
	require.NoError(t, err)
	assert.Nil(t, window)
}

func TestResolveWindowExceptionWinsOverWeekly(t *testing.T) {
	schedule := mondayEightToSix()
	schedule.exception = &models.ScheduleException{
		Date:        monday,
		IsAvailable: true,
		StartTime:   strPtr("14:00"),
		EndTime:     strPtr("17:00"),
	}
	svc := newAvailability(schedule, &stubDayLister{}, nil)

	window, err := svc.ResolveWindow(context.Background(), "co-1", "pr-1", monday)
	require.NoError(t, err)
	require.NotNil(t, window)
	assert.Equal(t, "14:00", window.Start)
	assert.Equal(t, "17:00", window.End)
	assert.Nil(t, window.BreakStart)
}

func TestResolveWindowDayOffBeatsWeekly(t *testing.T) {
	schedule := mondayEightToSix()
	schedule.exception = &models.ScheduleException{Date: monday, IsAvailable: false, Reason: "holiday"}
	svc := newAvailability(schedule, &stubDayLister{}, nil)

	window, err := svc.ResolveWindow(context.Background(), "co-1", "pr-1", monday)
	require.NoError(t, err)
	assert.Nil(t, window)
}

func existingNineToTen() []models.Appointment {
	return []models.Appointment{{
		ID:           "apt-1",
		StartTime:    "09:00",
		EndTime:      "10:00",
		CustomerName: "Ana Souza",
		ServiceName:  "Consulta",
	}}
}

func TestCheckConflictsOverlapDetected(t *testing.T) {
	svc := newAvailability(mondayEightToSix(), &stubDayLister{practitioner: existingNineToTen()}, nil)

	resp, err := svc.CheckConflicts(context.Background(), "co-1", dto.ConflictCheckRequest{
		PractitionerID: "pr-1",
		Date:           "2026-03-02",
		StartTime:      "09:30",
		EndTime:        "10:30",
	})
	require.NoError(t, err)
	assert.False(t, resp.Bookable)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, "apt-1", resp.Conflicts[0].AppointmentID)
	assert.Equal(t, models.ConflictPractitioner, resp.Conflicts[0].Dimension)
	assert.Equal(t, "Ana Souza", resp.Conflicts[0].CustomerName)
}

func TestCheckConflictsAdjacentIntervalsDoNotCollide(t *testing.T) {
	svc := newAvailability(mondayEightToSix(), &stubDayLister{practitioner: existingNineToTen()}, nil)

	// Half-open intervals: [09:00,10:00) and [10:00,10:30) touch but do not
	// overlap.
	resp, err := svc.CheckConflicts(context.Background(), "co-1", dto.ConflictCheckRequest{
		PractitionerID: "pr-1",
		Date:           "2026-03-02",
		StartTime:      "10:00",
		EndTime:        "10:30",
	})
	require.NoError(t, err)
	assert.True(t, resp.Bookable)
	assert.Empty(t, resp.Conflicts)
}

func TestCheckConflictsIgnoresBreakWindow(t *testing.T) {
	// The direct conflict probe does not consult the break window; only the
	// slot generator excludes breaks.
	svc := newAvailability(mondayEightToSix(), &stubDayLister{}, nil)

	resp, err := svc.CheckConflicts(context.Background(), "co-1", dto.ConflictCheckRequest{
		PractitionerID: "pr-1",
		Date:           "2026-03-02",
		StartTime:      "12:15",
		EndTime:        "12:45",
	})
	require.NoError(t, err)
	assert.True(t, resp.Bookable)
}

func TestCheckConflictsRoomIndependentOfPractitioner(t *testing.T) {
	lister := &stubDayLister{
		room: []models.Appointment{{
			ID:             "apt-2",
			PractitionerID: "pr-other",
			StartTime:      "09:00",
			EndTime:        "09:45",
			CustomerName:   "Bruno Lima",
			ServiceName:    "Limpeza",
		}},
	}
	svc := newAvailability(mondayEightToSix(), lister, nil)

	resp, err := svc.CheckConflicts(context.Background(), "co-1", dto.ConflictCheckRequest{
		PractitionerID: "pr-1",
		RoomID:         "rm-1",
		Date:           "2026-03-02",
		StartTime:      "09:30",
		EndTime:        "10:00",
	})
	require.NoError(t, err)
	assert.False(t, resp.Bookable)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, models.ConflictRoom, resp.Conflicts[0].Dimension)
}

func TestCheckConflictsExcludesAppointmentBeingEdited(t *testing.T) {
	svc := newAvailability(mondayEightToSix(), &stubDayLister{practitioner: existingNineToTen()}, nil)

	resp, err := svc.CheckConflicts(context.Background(), "co-1", dto.ConflictCheckRequest{
		PractitionerID: "pr-1",
		Date:           "2026-03-02",
		StartTime:      "09:00",
		EndTime:        "10:00",
		ExcludeID:      "apt-1",
	})
	require.NoError(t, err)
	assert.True(t, resp.Bookable)
}

func TestCheckConflictsRejectsInvertedRange(t *testing.T) {
	svc := newAvailability(mondayEightToSix(), &stubDayLister{}, nil)

	_, err := svc.CheckConflicts(context.Background(), "co-1", dto.ConflictCheckRequest{
		PractitionerID: "pr-1",
		Date:           "2026-03-02",
		StartTime:      "10:00",
		EndTime:        "10:00",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidTimeRange.Code, appErr.Code)
}

func TestGetAvailableSlotsSkipsBreakAndBookings(t *testing.T) {
	schedule := &stubScheduleReader{
		hours: map[int]*models.WorkingHours{
			int(time.Monday): {
				Weekday:    int(time.Monday),
				StartTime:  "08:00",
				EndTime:    "14:00",
				BreakStart: strPtr("12:00"),
				BreakEnd:   strPtr("13:00"),
			},
		},
	}
	lister := &stubDayLister{practitioner: existingNineToTen()}
	svc := newAvailability(schedule, lister, &stubServiceReader{service: &models.Service{ID: "sv-1", DurationMinutes: 60}})

	resp, err := svc.GetAvailableSlots(context.Background(), "co-1", "pr-1", "", "sv-1", monday)
	require.NoError(t, err)
	require.NotNil(t, resp.Window)
	// 08-09 free, 09-10 booked, 10-11 free, 11-12 free, 12-13 break, 13-14 free.
	want := []dto.Slot{
		{Start: "08:00", End: "09:00"},
		{Start: "10:00", End: "11:00"},
		{Start: "11:00", End: "12:00"},
		{Start: "13:00", End: "14:00"},
	}
	assert.Equal(t, want, resp.Slots)
}

func TestGetAvailableSlotsUnavailableDayIsEmpty(t *testing.T) {
	schedule := mondayEightToSix()
	schedule.exception = &models.ScheduleException{Date: monday, IsAvailable: false}
	svc := newAvailability(schedule, &stubDayLister{}, nil)

	resp, err := svc.GetAvailableSlots(context.Background(), "co-1", "pr-1", "", "", monday)
	require.NoError(t, err)
	assert.Nil(t, resp.Window)
	assert.Empty(t, resp.Slots)
}

func TestGetAvailableSlotsConsidersRoomOccupancy(t *testing.T) {
	schedule := &stubScheduleReader{
		hours: map[int]*models.WorkingHours{
			int(time.Monday): {Weekday: int(time.Monday), StartTime: "08:00", EndTime: "10:00"},
		},
	}
	lister := &stubDayLister{
		room: []models.Appointment{{ID: "apt-3", StartTime: "08:00", EndTime: "09:00"}},
	}
	svc := newAvailability(schedule, lister, nil)

	resp, err := svc.GetAvailableSlots(context.Background(), "co-1", "pr-1", "rm-1", "", monday)
	require.NoError(t, err)
	assert.Equal(t, []dto.Slot{{Start: "09:00", End: "09:30"}, {Start: "09:30", End: "10:00"}}, resp.Slots)
}

func TestGetAvailableSlotsNeverEmitsConflictingSlot(t *testing.T) {
	lister := &stubDayLister{practitioner: existingNineToTen()}
	svc := newAvailability(mondayEightToSix(), lister, nil)

	resp, err := svc.GetAvailableSlots(context.Background(), "co-1", "pr-1", "", "", monday)
	require.NoError(t, err)
	for _, slot := range resp.Slots {
		probe, err := svc.CheckConflicts(context.Background(), "co-1", dto.ConflictCheckRequest{
			PractitionerID: "pr-1",
			Date:           "2026-03-02",
			StartTime:      slot.Start,
			EndTime:        slot.End,
		})
		require.NoError(t, err)
		assert.True(t, probe.Bookable, "slot %s-%s collides with a booking", slot.Start, slot.End)
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "08:30", want: 510},
		{in: "23:59", want: 1439},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "nope", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseClock(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

type stubSlotCache struct {
	entries map[string][]byte
}

func newStubSlotCache() *stubSlotCache {
	return &stubSlotCache{entries: map[string][]byte{}}
}

func (s *stubSlotCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := s.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *stubSlotCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.entries[key] = raw
	return nil
}

func (s *stubSlotCache) DeleteByPattern(_ context.Context, pattern string) error {
	for key := range s.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(s.entries, key)
		}
	}
	return nil
}

func TestInvalidateDaySweepsRoomDimensionAcrossPractitioners(t *testing.T) {
	lister := &stubDayLister{}
	cache := newStubSlotCache()
	svc := NewAvailabilityService(mondayEightToSix(), lister, &stubServiceReader{}, cache, time.Minute, 30, nil)

	// practitioner B's slot listing for room-1 goes into the cache
	before, err := svc.GetAvailableSlots(context.Background(), "co-1", "pr-2", "room-1", "", monday)
	require.NoError(t, err)
	require.NotEmpty(t, before.Slots)

	// practitioner A books room-1; the room is now busy 09:00-10:00
	lister.room = []models.Appointment{{ID: "apt-1", StartTime: "09:00", EndTime: "10:00"}}
	svc.InvalidateDay(context.Background(), "co-1", "pr-1", "room-1", monday)

	after, err := svc.GetAvailableSlots(context.Background(), "co-1", "pr-2", "room-1", "", monday)
	require.NoError(t, err)
	assert.Len(t, after.Slots, len(before.Slots)-2)
	for _, slot := range after.Slots {
		assert.NotEqual(t, "09:00", slot.Start)
		assert.NotEqual(t, "09:30", slot.Start)
	}
}

func TestInvalidateDayDropsPractitionerEntries(t *testing.T) {
	lister := &stubDayLister{}
	cache := newStubSlotCache()
	svc := NewAvailabilityService(mondayEightToSix(), lister, &stubServiceReader{}, cache, time.Minute, 30, nil)

	_, err := svc.GetAvailableSlots(context.Background(), "co-1", "pr-1", "", "", monday)
	require.NoError(t, err)
	require.Len(t, cache.entries, 1)

	svc.InvalidateDay(context.Background(), "co-1", "pr-1", "", monday)
	assert.Empty(t, cache.entries)
}
