package simulate

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
)

// profile shapes the features generated for a subject.
type profile int

const (
	profileRested profile = iota
	profileStrained
	profileBurnout
	profileCount
)

// Features mirrors the check-in feature object on the wire.
type Features struct {
	StudyHours         float64 `json:"study_hours"`
	SleepHours         float64 `json:"sleep_hours"`
	MoodLevel          int     `json:"mood_level"`
	AssignmentPressure int     `json:"assignment_pressure"`
	StudyConsistency   int     `json:"study_consistency"`
	PerformanceTrend   int     `json:"performance_trend"`
}

// CheckIn is one generated submission.
type CheckIn struct {
	SubjectID    string   `json:"subject_id"`
	SubmissionID string   `json:"submission_id"`
	Features     Features `json:"features"`
}

// Generator produces reproducible subjects and check-ins for a seed.
type Generator struct {
	rng *rand.Rand
}

// rngReader feeds uuid generation from the seeded source so ids repeat
// across runs with the same seed.
type rngReader struct {
	rng *rand.Rand
}

func (r rngReader) Read(p []byte) (int, error) {
	var buf [8]byte
	for i := 0; i < len(p); i += len(buf) {
		binary.LittleEndian.PutUint64(buf[:], r.rng.Uint64())
		copy(p[i:], buf[:])
	}
	return len(p), nil
}

// NewGenerator returns a generator seeded with seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// SubjectIDs returns n distinct subject ids.
func (g *Generator) SubjectIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("sim-%04d-%s", i, g.uuid()[:8])
	}
	return ids
}

// CheckIns generates perSubject check-ins for every subject. Each subject
// keeps one profile for the whole run.
func (g *Generator) CheckIns(subjects []string, perSubject int) []CheckIn {
	out := make([]CheckIn, 0, len(subjects)*perSubject)
	for _, id := range subjects {
		p := profile(g.rng.IntN(int(profileCount)))
		for range perSubject {
			out = append(out, CheckIn{
				SubjectID:    id,
				SubmissionID: g.uuid(),
				Features:     g.features(p),
			})
		}
	}
	return out
}

func (g *Generator) uuid() string {
	// rngReader never fails, so neither does this.
	return uuid.Must(uuid.NewRandomFromReader(rngReader{rng: g.rng})).String()
}

func (g *Generator) features(p profile) Features {
	switch p {
	case profileBurnout:
		return Features{
			StudyHours:         g.hours(7, 12),
			SleepHours:         g.hours(3, 5.9),
			MoodLevel:          g.scale(1, 4),
			AssignmentPressure: g.scale(8, 10),
			StudyConsistency:   g.scale(1, 4),
			PerformanceTrend:   -1,
		}
	case profileStrained:
		return Features{
			StudyHours:         g.hours(5, 8),
			SleepHours:         g.hours(5, 7),
			MoodLevel:          g.scale(3, 6),
			AssignmentPressure: g.scale(5, 8),
			StudyConsistency:   g.scale(4, 7),
			PerformanceTrend:   g.rng.IntN(2) - 1,
		}
	default:
		return Features{
			StudyHours:         g.hours(2, 5),
			SleepHours:         g.hours(7, 9),
			MoodLevel:          g.scale(7, 10),
			AssignmentPressure: g.scale(1, 5),
			StudyConsistency:   g.scale(6, 10),
			PerformanceTrend:   g.rng.IntN(2),
		}
	}
}

// hours returns a value in [lo, hi] rounded to one decimal.
func (g *Generator) hours(lo, hi float64) float64 {
	return math.Round((lo+g.rng.Float64()*(hi-lo))*10) / 10
}

// scale returns an integer in [lo, hi].
func (g *Generator) scale(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}
