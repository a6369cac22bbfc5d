package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/skyward-dev/flightline-api/internal/dto"
	"github.com/skyward-dev/flightline-api/internal/models"
	appErrors "github.com/skyward-dev/flightline-api/pkg/errors"
)

type slotRepository interface {
	ListWeek(ctx context.Context, filter models.SlotFilter) ([]models.Slot, error)
	ReplaceWeek(ctx context.Context, courseID, studentID string, year, week int, slots []models.Slot) error
}

// AvailabilityServiceConfig tunes the week grid.
type AvailabilityServiceConfig struct {
	MaxLanes       int
	WeeksLookahead int
}

// AvailabilityService manages posted availability and computes the packed
// day x lane grid for the week view.
type AvailabilityService struct {
	slots     slotRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       AvailabilityServiceConfig
	now       func() time.Time
}

// NewAvailabilityService wires the availability dependencies.
func NewAvailabilityService(slots slotRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg AvailabilityServiceConfig) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxLanes <= 0 {
		cfg.MaxLanes = 6
	}
	if cfg.WeeksLookahead <= 0 {
		cfg.WeeksLookahead = 4
	}
	return &AvailabilityService{slots: slots, cache: cache, metrics: metrics, validator: validate, logger: logger, cfg: cfg, now: time.Now}
}

// PostWeek replaces a student's postings for one week. Intervals are
// validated here so the packer can assume well-formed input.
func (s *AvailabilityService) PostWeek(ctx context.Context, courseID, studentID string, req dto.PostAvailabilityRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}
	if weekStart := isoWeekStart(req.Year, req.Week); weekStart.After(s.now().UTC().AddDate(0, 0, 7*s.cfg.WeeksLookahead)) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("week %d/%d is beyond the %d-week posting window", req.Week, req.Year, s.cfg.WeeksLookahead))
	}
	for _, interval := range req.Slots {
		if !interval.StartAt.Before(interval.EndAt) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("slot starting %s must end after it starts", interval.StartAt.Format(time.RFC3339)))
		}
		year, week := interval.StartAt.ISOWeek()
		if year != req.Year || week != req.Week {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("slot starting %s falls outside week %d/%d", interval.StartAt.Format(time.RFC3339), req.Week, req.Year))
		}
	}

	slots := make([]models.Slot, 0, len(req.Slots))
	for _, interval := range req.Slots {
		slots = append(slots, models.Slot{
			StartAt: interval.StartAt,
			EndAt:   interval.EndAt,
			Status:  models.SlotStatusOpen,
		})
	}

	if err := s.slots.ReplaceWeek(ctx, courseID, studentID, req.Year, req.Week, slots); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save week postings")
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, fmt.Sprintf("roster:%s:*", courseID))
		_ = s.cache.Invalidate(ctx, fmt.Sprintf("grid:%s:*", courseID))
	}
	s.metrics.RecordPostingsReplaced()
	s.logger.Info("week postings replaced",
		zap.String("course_id", courseID),
		zap.String("student_id", studentID),
		zap.Int("year", req.Year),
		zap.Int("week", req.Week),
		zap.Int("slots", len(slots)),
	)
	return nil
}

// WeekGrid returns the packed lane layout for one course week.
func (s *AvailabilityService) WeekGrid(ctx context.Context, courseID string, year, week int) (*dto.WeekGridResponse, error) {
	if week < 1 || week > 53 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "week must be between 1 and 53")
	}

	cacheKey := fmt.Sprintf("grid:%s:%d:%d", courseID, year, week)
	if s.cache != nil {
		var cached dto.WeekGridResponse
		hit, _ := s.cache.Get(ctx, cacheKey, &cached)
		s.metrics.RecordCacheOperation(hit)
		if hit {
			return &cached, nil
		}
	}

	queryStart := time.Now()
	slots, err := s.slots.ListWeek(ctx, models.SlotFilter{CourseID: courseID, Year: year, Week: week})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load week slots")
	}
	s.metrics.ObserveDBQuery("slots_week", time.Since(queryStart))

	resp := buildWeekGrid(courseID, year, week, slots, s.cfg.MaxLanes)
	s.metrics.ObserveGridLanes(resp.MaxLanes)

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, resp, 0)
	}
	return resp, nil
}

// buildWeekGrid packs every weekday and tracks the week-wide lane
// watermark, clamped to the configured ceiling.
func buildWeekGrid(courseID string, year, week int, slots []models.Slot, maxLanesCeiling int) *dto.WeekGridResponse {
	monday := isoWeekStart(year, week)
	byDay := make([][]models.Slot, 7)
	for _, slot := range slots {
		day := int(slot.StartAt.Weekday()+6) % 7 // Monday = 0
		byDay[day] = append(byDay[day], slot)
	}

	resp := &dto.WeekGridResponse{CourseID: courseID, Year: year, Week: week}
	maxLanes := 0
	for day := 0; day < 7; day++ {
		lanes := packDay(byDay[day])
		if len(lanes) > maxLanes {
			maxLanes = len(lanes)
		}
		lanes = clampLanes(lanes, maxLanesCeiling)
		resp.Days = append(resp.Days, dto.DayLanes{
			Weekday: day + 1,
			Date:    monday.AddDate(0, 0, day),
			Lanes:   lanes,
		})
	}
	if maxLanes > maxLanesCeiling {
		maxLanes = maxLanesCeiling
	}
	resp.MaxLanes = maxLanes
	return resp
}

// packDay assigns each slot, in arrival order, to the lowest-index lane
// where it conflicts with nothing already placed there. Arrival order is
// owner-major (roster order, then chronological per student), never a
// global sort by start time: a student's own postings chain within a lane,
// which the week view relies on. The trade-off is that packing is not
// minimal - a later slot can miss an earlier lane a global algorithm would
// have found.
func packDay(slots []models.Slot) [][]models.Slot {
	var lanes [][]models.Slot
	var lastPlaced models.Slot
	for _, slot := range slots {
		placed := false
		for i := range lanes {
			if laneAccepts(lanes[i], slot, lastPlaced) {
				lanes[i] = append(lanes[i], slot)
				placed = true
				break
			}
		}
		if !placed {
			lanes = append(lanes, []models.Slot{slot})
		}
		// Only the most recently placed slot's owner feeds the same-owner
		// exemption, not every owner present in the lane.
		lastPlaced = slot
	}
	return lanes
}

func laneAccepts(lane []models.Slot, candidate, lastPlaced models.Slot) bool {
	for _, existing := range lane {
		if existing.Overlaps(candidate) && !candidate.SameOwner(lastPlaced) {
			return false
		}
	}
	return true
}

// clampLanes folds lanes beyond the ceiling into the last visible lane.
// Overflow is a presentation degradation, not an error.
func clampLanes(lanes [][]models.Slot, ceiling int) [][]models.Slot {
	if ceiling <= 0 || len(lanes) <= ceiling {
		return lanes
	}
	clamped := lanes[:ceiling]
	last := ceiling - 1
	for _, lane := range lanes[ceiling:] {
		clamped[last] = append(clamped[last], lane...)
	}
	return clamped
}

// isoWeekStart returns the Monday of the given ISO week.
func isoWeekStart(year, week int) time.Time {
	t := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	for t.Weekday() != time.Monday {
		t = t.AddDate(0, 0, -1)
	}
	return t.AddDate(0, 0, (week-1)*7)
}
