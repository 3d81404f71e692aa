package schedule

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aatumaykin/hive/internal/logger"
)

// ErrJobNotFound is returned when a job id does not exist or is owned by a
// different agent.
var ErrJobNotFound = errors.New("job not found")

// Store provides persistent storage for scheduled jobs.
// Jobs are stored in JSONL format, one job per line. All mutations are
// atomic with respect to the file: the full collection is written to a
// temporary file and renamed into place.
type Store struct {
	mu       sync.Mutex
	filePath string
	logger   *logger.Logger

	// everRead is set after the first successful load. An unreadable file
	// is treated as an empty collection only before that point; afterwards
	// it fails the operation instead of silently losing jobs.
	everRead bool
}

// NewStore creates a new Store persisting to the given file path.
func NewStore(filePath string, log *logger.Logger) *Store {
	return &Store{
		filePath: filePath,
		logger:   log,
	}
}

// Load reads all jobs from the store file.
// A missing file yields an empty collection.
func (s *Store) Load() ([]Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() ([]Job, error) {
	file, err := os.Open(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.everRead = true
			return []Job{}, nil
		}
		if !s.everRead {
			s.logger.Warn("schedule store unreadable at bootstrap, starting empty",
				logger.Field{Key: "file", Value: s.filePath},
				logger.Field{Key: "error", Value: err})
			return []Job{}, nil
		}
		return nil, fmt.Errorf("failed to open schedule store: %w", err)
	}
	defer file.Close()

	var jobs []Job
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" {
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(line), &job); err != nil {
			if !s.everRead {
				s.logger.Warn("skipping corrupt schedule record at bootstrap",
					logger.Field{Key: "line", Value: lineNum},
					logger.Field{Key: "error", Value: err})
				continue
			}
			return nil, fmt.Errorf("corrupt schedule record at line %d: %w", lineNum, err)
		}
		jobs = append(jobs, job)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read schedule store: %w", err)
	}

	s.everRead = true
	if jobs == nil {
		jobs = []Job{}
	}
	return jobs, nil
}

// saveLocked writes the full job collection atomically.
func (s *Store) saveLocked(jobs []Job) error {
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create schedule store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".schedules-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	writer := bufio.NewWriter(tmp)
	for _, job := range jobs {
		data, err := json.Marshal(job)
		if err != nil {
			tmp.Close()
			return fmt.Errorf("failed to marshal job %s: %w", job.ID, err)
		}
		if _, err := writer.Write(append(data, '\n')); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write job %s: %w", job.ID, err)
		}
	}
	if err := writer.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush schedule store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.filePath); err != nil {
		return fmt.Errorf("failed to replace schedule store: %w", err)
	}
	return nil
}

// AddParams holds the parameters for creating a job.
type AddParams struct {
	AgentName       string
	Task            string
	Kind            Kind
	IntervalMinutes int
	Cron            string
	ChannelID       string
}

// Add creates a new job, computes its first run and persists it.
func (s *Store) Add(p AddParams) (Job, error) {
	if p.Task == "" {
		return Job{}, fmt.Errorf("task text is required")
	}
	switch p.Kind {
	case KindInterval:
		if p.IntervalMinutes <= 0 {
			return Job{}, fmt.Errorf("interval_minutes must be a positive integer")
		}
		p.Cron = ""
	case KindCron:
		if err := ValidateCron(p.Cron); err != nil {
			return Job{}, err
		}
		p.IntervalMinutes = 0
	default:
		return Job{}, fmt.Errorf("unknown schedule kind: %s", p.Kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.loadLocked()
	if err != nil {
		return Job{}, err
	}

	job := Job{
		ID:              uuid.NewString(),
		AgentName:       p.AgentName,
		Task:            p.Task,
		Kind:            p.Kind,
		IntervalMinutes: p.IntervalMinutes,
		Cron:            p.Cron,
		ChannelID:       p.ChannelID,
		NextRun:         ComputeNextRun(p.Kind, p.IntervalMinutes, p.Cron, time.Now()),
	}

	jobs = append(jobs, job)
	if err := s.saveLocked(jobs); err != nil {
		return Job{}, err
	}

	s.logger.Info("scheduled job added",
		logger.Field{Key: "job_id", Value: job.ID},
		logger.Field{Key: "agent", Value: job.AgentName},
		logger.Field{Key: "kind", Value: string(job.Kind)},
		logger.Field{Key: "next_run", Value: job.NextRun})

	return job, nil
}

// List returns the jobs for the given agent, or all jobs when agentName is
// empty.
func (s *Store) List(agentName string) ([]Job, error) {
	jobs, err := s.Load()
	if err != nil {
		return nil, err
	}
	if agentName == "" {
		return jobs, nil
	}

	filtered := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		if job.AgentName == agentName {
			filtered = append(filtered, job)
		}
	}
	return filtered, nil
}

// Remove deletes a job by id. When agentName is non-empty, only a job owned
// by that agent is removed. Returns ErrJobNotFound when nothing matched.
func (s *Store) Remove(jobID, agentName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.loadLocked()
	if err != nil {
		return err
	}

	remaining := make([]Job, 0, len(jobs))
	removed := false
	for _, job := range jobs {
		if job.ID == jobID && (agentName == "" || job.AgentName == agentName) {
			removed = true
			continue
		}
		remaining = append(remaining, job)
	}

	if !removed {
		return ErrJobNotFound
	}

	return s.saveLocked(remaining)
}

// Update replaces the stored record for the given job id.
func (s *Store) Update(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.loadLocked()
	if err != nil {
		return err
	}

	found := false
	for i := range jobs {
		if jobs[i].ID == job.ID {
			jobs[i] = job
			found = true
			break
		}
	}
	if !found {
		return ErrJobNotFound
	}

	return s.saveLocked(jobs)
}
