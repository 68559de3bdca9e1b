package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// JobStatus represents the state of an analysis job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusValidating JobStatus = "validating"
	StatusParsing    JobStatus = "parsing"
	StatusScoring    JobStatus = "scoring"
	StatusRanking    JobStatus = "ranking"
	StatusRefining   JobStatus = "refining"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks the state of a single analysis request.
type Job struct {
	mu sync.Mutex

	ID      string `json:"job_id"`
	Persona string `json:"persona"`
	Task    string `json:"task"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	documents []InputDocument
	result    *Result
	errors    []string
}

// Progress tracks per-run counters.
type Progress struct {
	TotalDocuments   int      `json:"total_documents"`
	SkippedDocuments int      `json:"skipped_documents"`
	RankedSections   int      `json:"ranked_sections"`
	Subsections      int      `json:"subsections"`
	Errors           []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// IncrSkipped counts a skipped document.
func (j *Job) IncrSkipped() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.SkippedDocuments++
	j.UpdatedAt = time.Now()
}

// SetDocuments attaches the raw input documents for processing.
func (j *Job) SetDocuments(docs []InputDocument) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.documents = docs
	j.Progress.TotalDocuments = len(docs)
}

// Documents returns the raw input documents.
func (j *Job) Documents() []InputDocument {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.documents
}

// SetResult records the completed analysis and its counts.
func (j *Job) SetResult(result *Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = result
	if result != nil {
		j.Progress.RankedSections = len(result.ExtractedSections)
		j.Progress.Subsections = len(result.SubsectionAnalysis)
	}
	j.UpdatedAt = time.Now()
}

// Result returns the completed analysis, or nil.
func (j *Job) Result() *Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	Persona  string    `json:"persona"`
	Task     string    `json:"task"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:      j.ID,
		Persona: j.Persona,
		Task:    j.Task,
		Status:  j.Status,
		Phase:   j.Phase,
		Progress: Progress{
			TotalDocuments:   j.Progress.TotalDocuments,
			SkippedDocuments: j.Progress.SkippedDocuments,
			RankedSections:   j.Progress.RankedSections,
			Subsections:      j.Progress.Subsections,
			Errors:           errs,
		},
	}
}

// NewJobID derives a job id from the request and submission time.
func NewJobID(persona, task string) string {
	return ContentHashHex([]byte(fmt.Sprintf("%s-%s-%d", persona, task, time.Now().UnixNano())))[:20]
}

// ContentHashHex computes SHA-256 of content and returns a hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
