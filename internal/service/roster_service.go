package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/skyward-dev/flightline-api/internal/dto"
	"github.com/skyward-dev/flightline-api/internal/models"
	appErrors "github.com/skyward-dev/flightline-api/pkg/errors"
)

type rosterStudentRepository interface {
	ListWithSignals(ctx context.Context, courseID string, filter models.RosterFilter) ([]models.StudentWithSignals, error)
}

// RosterServiceConfig tunes roster presentation.
type RosterServiceConfig struct {
	PostingWaitDays  int
	OnHoldPeriodDays int
	CacheTTL         time.Duration
}

// RosterService ranks the course roster so instructors see who to book next.
type RosterService struct {
	students rosterStudentRepository
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      RosterServiceConfig
}

// NewRosterService wires the roster dependencies.
func NewRosterService(students rosterStudentRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg RosterServiceConfig) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PostingWaitDays <= 0 {
		cfg.PostingWaitDays = 7
	}
	if cfg.OnHoldPeriodDays <= 0 {
		cfg.OnHoldPeriodDays = 30
	}
	return &RosterService{students: students, cache: cache, metrics: metrics, logger: logger, cfg: cfg}
}

// Rank returns the roster segment ordered by the requested strategy.
func (s *RosterService) Rank(ctx context.Context, courseID string, strategy models.RankStrategy, filter models.RosterFilter) (*dto.RosterResponse, error) {
	if filter == "" {
		filter = models.RosterFilterActive
	}
	if !filter.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown roster filter %q", filter))
	}
	switch strategy {
	case "":
		strategy = models.RankByAvailability
	case models.RankByScore, models.RankByAvailability:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown rank strategy %q", strategy))
	}

	cacheKey := fmt.Sprintf("roster:%s:%s:%s", courseID, strategy, filter)
	if s.cache != nil {
		var cached dto.RosterResponse
		hit, _ := s.cache.Get(ctx, cacheKey, &cached)
		s.metrics.RecordCacheOperation(hit)
		if hit {
			return &cached, nil
		}
	}

	queryStart := time.Now()
	students, err := s.students.ListWithSignals(ctx, courseID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	s.metrics.ObserveDBQuery("roster_signals", time.Since(queryStart))

	var ordered []models.StudentWithSignals
	switch {
	case filter == models.RosterFilterGraduates:
		// Graduates bypass the signal ranking entirely.
		ordered = rankGraduates(students)
	case strategy == models.RankByScore:
		ordered = rankByScore(students)
	default:
		ordered = rankByAvailability(students)
	}

	resp := &dto.RosterResponse{
		CourseID: courseID,
		Strategy: strategy,
		Filter:   filter,
		Students: make([]dto.RankedStudent, 0, len(ordered)),
	}
	for i, student := range ordered {
		ranked := dto.RankedStudent{
			StudentWithSignals: student,
			Rank:               i + 1,
		}
		if filter != models.RosterFilterGraduates {
			// Display hints only; neither alert ever reorders the roster.
			ranked.WaitAlert = student.RecencyDays > s.cfg.PostingWaitDays
			ranked.OnHoldCandidate = student.RecencyDays > s.cfg.OnHoldPeriodDays
		}
		resp.Students = append(resp.Students, ranked)
	}
	if filter != models.RosterFilterGraduates {
		resp.AverageWaitDays = averageWaitDays(ordered)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, resp, s.cfg.CacheTTL)
	}
	return resp, nil
}

// rankByScore orders purely by the composite score, highest first.
// Stable sort keeps enrolment order among equal scores.
func rankByScore(students []models.StudentWithSignals) []models.StudentWithSignals {
	ordered := append([]models.StudentWithSignals(nil), students...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})
	return ordered
}

// rankByAvailability splits the roster into three buckets and concatenates
// them: students who are ready to book now, students who finished their
// prep but cannot be booked yet, and everyone still working through
// lessons. Each bucket is sorted by how long the student has waited.
func rankByAvailability(students []models.StudentWithSignals) []models.StudentWithSignals {
	var ready, blocked, learning []models.StudentWithSignals
	for _, student := range students {
		switch {
		case student.LessonsComplete && student.SlotCount >= 1 && !student.HasActiveBooking:
			ready = append(ready, student)
		case student.LessonsComplete:
			blocked = append(blocked, student)
		default:
			learning = append(learning, student)
		}
	}

	sort.SliceStable(ready, func(i, j int) bool {
		if ready[i].RecencyDays != ready[j].RecencyDays {
			return ready[i].RecencyDays > ready[j].RecencyDays
		}
		return ready[i].SlotCount > ready[j].SlotCount
	})
	byRecency(blocked)
	byRecency(learning)

	ordered := make([]models.StudentWithSignals, 0, len(students))
	ordered = append(ordered, ready...)
	ordered = append(ordered, blocked...)
	ordered = append(ordered, learning...)
	return ordered
}

func byRecency(students []models.StudentWithSignals) {
	sort.SliceStable(students, func(i, j int) bool {
		return students[i].RecencyDays > students[j].RecencyDays
	})
}

// rankGraduates orders by graduation date, most recent first.
func rankGraduates(students []models.StudentWithSignals) []models.StudentWithSignals {
	ordered := append([]models.StudentWithSignals(nil), students...)
	sort.SliceStable(ordered, func(i, j int) bool {
		gi, gj := ordered[i].GraduatedAt, ordered[j].GraduatedAt
		if gi == nil {
			return false
		}
		if gj == nil {
			return true
		}
		return gi.After(*gj)
	})
	return ordered
}

// averageWaitDays is the mean recency rounded up. An empty roster waits
// zero days.
func averageWaitDays(students []models.StudentWithSignals) int {
	if len(students) == 0 {
		return 0
	}
	total := 0
	for _, student := range students {
		total += student.RecencyDays
	}
	return int(math.Ceil(float64(total) / float64(len(students))))
}
