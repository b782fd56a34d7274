// Package eval measures coverage, explainability, auditability, relevance, fairness and latency
// of generated insights across many users.
package eval

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/ternarybob/spendsense/internal/interfaces"
	"github.com/ternarybob/spendsense/internal/personas"
	"github.com/ternarybob/spendsense/internal/recommend"
)

// Targets
const (
	TargetCoverage       = 100.0
	TargetExplainability = 100.0
	TargetAuditability   = 100.0
	TargetRelevance      = 3.0
	TargetLatency        = 5 * time.Second

	MinSignalCategories  = 3
	MaxPersonaShare      = 50.0
	MinNormalizedEntropy = 0.5
	MaxUnderrepresented  = 2
)

// UserResult is the per-user outcome of an evaluation
type UserResult struct {
	UserID          string               `json:"user_id"`
	WindowDays      int                  `json:"window_days"`
	Success         bool                 `json:"success"`
	Error           string               `json:"error,omitempty"`
	Latency         time.Duration        `json:"latency_ns"`
	Persona         personas.PersonaType `json:"persona,omitempty"`
	Confidence      float64              `json:"confidence,omitempty"`
	SignalCount     int                  `json:"signal_count"`
	EducationCount  int                  `json:"education_count"`
	OfferCount      int                  `json:"offer_count"`
	CompleteTraces  int                  `json:"complete_traces"`
	RelevanceScores []int                `json:"relevance_scores,omitempty"`
}

// Metrics accumulates evaluation counters. Safe for concurrent use.
type Metrics struct {
	mu sync.Mutex

	totalUsers           int
	totalRecommendations int
	coveredUsers         int
	explainedRecs        int
	completeTraces       int
	latencies            []time.Duration
	relevanceScores      []int
	personaCounts        map[personas.PersonaType]int
	errors               map[string]string
	users                []UserResult
}

// NewMetrics creates an empty metrics container
func NewMetrics() *Metrics {
	return &Metrics{
		personaCounts: map[personas.PersonaType]int{},
		errors:        map[string]string{},
	}
}

// Record adds one successful run
func (m *Metrics) Record(record *interfaces.InsightRecord, latency time.Duration) UserResult {
	result := record.Result
	user := UserResult{
		UserID:         record.UserID,
		WindowDays:     record.WindowDays,
		Success:        true,
		Latency:        latency,
		Persona:        result.PersonaType,
		Confidence:     result.Confidence,
		SignalCount:    result.Signals.CategoriesWithData(),
		EducationCount: len(result.Recommendations),
		OfferCount:     len(result.Offers),
	}

	explained := 0
	for _, rec := range result.Recommendations {
		if explainable(rec.Rationale) {
			explained++
		}
		if auditable(rec.PersonaType, rec.Rationale, rec.Content.ID) {
			user.CompleteTraces++
		}
		user.RelevanceScores = append(user.RelevanceScores, rec.RelevanceScore)
	}
	for _, offer := range result.Offers {
		if explainable(offer.Rationale) {
			explained++
		}
		if auditable(offer.PersonaType, offer.Rationale, offer.Offer.ID) {
			user.CompleteTraces++
		}
		user.RelevanceScores = append(user.RelevanceScores, offer.RelevanceScore)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalUsers++
	m.totalRecommendations += user.EducationCount + user.OfferCount
	if user.Persona.Valid() && user.SignalCount >= MinSignalCategories {
		m.coveredUsers++
	}
	m.explainedRecs += explained
	m.completeTraces += user.CompleteTraces
	m.latencies = append(m.latencies, latency)
	m.relevanceScores = append(m.relevanceScores, user.RelevanceScores...)
	m.personaCounts[user.Persona]++
	m.users = append(m.users, user)

	return user
}

// RecordError adds one failed run
func (m *Metrics) RecordError(userID string, windowDays int, err error, latency time.Duration) UserResult {
	user := UserResult{
		UserID:     userID,
		WindowDays: windowDays,
		Error:      err.Error(),
		Latency:    latency,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalUsers++
	m.errors[userID] = err.Error()
	m.users = append(m.users, user)
	return user
}

func explainable(r recommend.Rationale) bool {
	return r.Explanation != "" && len(r.Citations) > 0
}

func auditable(persona personas.PersonaType, r recommend.Rationale, id string) bool {
	return persona != "" && r.Confidence > 0 && r.Explanation != "" && len(r.Citations) > 0 && id != ""
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// Coverage is the share of users with a persona and at least three signal categories with data
func (m *Metrics) Coverage() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return percent(m.coveredUsers, m.totalUsers)
}

// Explainability is the share of recommendations with an explanation and at least one citation
func (m *Metrics) Explainability() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return percent(m.explainedRecs, m.totalRecommendations)
}

// Auditability is the share of recommendations with a complete decision trace
func (m *Metrics) Auditability() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return percent(m.completeTraces, m.totalRecommendations)
}

// LatencyStats summarizes run latency
type LatencyStats struct {
	Avg time.Duration `json:"avg"`
	Min time.Duration `json:"min"`
	Max time.Duration `json:"max"`
	P50 time.Duration `json:"p50"`
	P95 time.Duration `json:"p95"`
	P99 time.Duration `json:"p99"`
}

// Latency returns latency statistics. p95 and p99 fall back to the maximum for small samples.
func (m *Metrics) Latency() LatencyStats {
	m.mu.Lock()
	sorted := append([]time.Duration(nil), m.latencies...)
	m.mu.Unlock()

	n := len(sorted)
	if n == 0 {
		return LatencyStats{}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, d := range sorted {
		total += d
	}

	stats := LatencyStats{
		Avg: total / time.Duration(n),
		Min: sorted[0],
		Max: sorted[n-1],
		P95: sorted[n-1],
		P99: sorted[n-1],
	}
	if n%2 == 1 {
		stats.P50 = sorted[n/2]
	} else {
		stats.P50 = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	if n >= 20 {
		stats.P95 = sorted[int(float64(n)*0.95)]
	}
	if n >= 100 {
		stats.P99 = sorted[int(float64(n)*0.99)]
	}
	return stats
}

// RelevanceStats summarizes relevance scores on the 1-5 scale
type RelevanceStats struct {
	Avg          float64     `json:"avg"`
	Min          int         `json:"min"`
	Max          int         `json:"max"`
	Distribution map[int]int `json:"distribution"`
}

// Relevance returns relevance statistics
func (m *Metrics) Relevance() RelevanceStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := RelevanceStats{Distribution: map[int]int{}}
	if len(m.relevanceScores) == 0 {
		return stats
	}

	stats.Min = m.relevanceScores[0]
	stats.Max = m.relevanceScores[0]
	total := 0
	for _, s := range m.relevanceScores {
		total += s
		stats.Distribution[s]++
		if s < stats.Min {
			stats.Min = s
		}
		if s > stats.Max {
			stats.Max = s
		}
	}
	stats.Avg = float64(total) / float64(len(m.relevanceScores))
	return stats
}

// FairnessStats describes how evenly personas are assigned
type FairnessStats struct {
	IsFair             bool                             `json:"is_fair"`
	MaxPersonaShare    float64                          `json:"max_persona_share"`
	Entropy            float64                          `json:"entropy"`
	NormalizedEntropy  float64                          `json:"normalized_entropy"`
	Underrepresented   []personas.PersonaType           `json:"underrepresented"`
	PersonaPercentages map[personas.PersonaType]float64 `json:"persona_percentages"`
}

// Fairness computes persona share and distribution entropy over successful runs.
// The balanced fallback is never counted as underrepresented.
func (m *Metrics) Fairness() FairnessStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := FairnessStats{
		Underrepresented:   []personas.PersonaType{},
		PersonaPercentages: map[personas.PersonaType]float64{},
	}

	assigned := 0
	for _, c := range m.personaCounts {
		assigned += c
	}
	if assigned == 0 {
		return stats
	}

	for p, c := range m.personaCounts {
		share := percent(c, assigned)
		stats.PersonaPercentages[p] = share
		if share > stats.MaxPersonaShare {
			stats.MaxPersonaShare = share
		}
		if c > 0 {
			prob := float64(c) / float64(assigned)
			stats.Entropy -= prob * math.Log2(prob)
		}
	}

	if len(m.personaCounts) > 1 {
		stats.NormalizedEntropy = stats.Entropy / math.Log2(float64(len(m.personaCounts)))
	}

	for _, p := range personas.All() {
		if p == personas.Balanced {
			continue
		}
		if m.personaCounts[p] == 0 {
			stats.Underrepresented = append(stats.Underrepresented, p)
		}
	}

	stats.IsFair = stats.MaxPersonaShare <= MaxPersonaShare &&
		len(stats.Underrepresented) <= MaxUnderrepresented &&
		stats.NormalizedEntropy >= MinNormalizedEntropy
	return stats
}

// ErrorCount returns the number of failed runs
func (m *Metrics) ErrorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errors)
}

// Users returns per-user results ordered by user ID
func (m *Metrics) Users() []UserResult {
	m.mu.Lock()
	users := append([]UserResult(nil), m.users...)
	m.mu.Unlock()

	sort.SliceStable(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })
	return users
}

// PassesTargets reports whether every quality target is met
func (m *Metrics) PassesTargets() bool {
	return m.Coverage() >= TargetCoverage &&
		m.Explainability() >= TargetExplainability &&
		m.Auditability() >= TargetAuditability &&
		m.Relevance().Avg >= TargetRelevance &&
		m.Latency().Avg < TargetLatency
}
