package entities

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrJobNotFound  = errors.New("job not found")
	ErrTaskNotFound = errors.New("task not found")
	ErrEmptyAddress = errors.New("job address is required")
	ErrEmptyTitle   = errors.New("task title is required")
	ErrNoTasks      = errors.New("job has no tasks")
)

// Task represents a single logged work item within a Job. JSON tags
// match the persisted document format, which predates this codebase.
type Task struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	EstimatedTime string    `json:"estimatedTime"`
	Materials     []string  `json:"materials"`
	Tools         []string  `json:"tools"`
	ImageURLs     []string  `json:"imageUrls"`
	IsCompleted   bool      `json:"isCompleted"`
	CreatedAt     int64     `json:"createdAt"`

	// LegacyImageURL is the pre-migration single-photo field. It is
	// only populated when decoding old documents and is cleared by the
	// schema migration.
	LegacyImageURL string `json:"imageUrl,omitempty"`
}

// Job represents a work site / project, identified by its address.
type Job struct {
	ID         uuid.UUID `json:"id"`
	Address    string    `json:"address"`
	ClientName string    `json:"clientName,omitempty"`
	Tasks      []*Task   `json:"tasks"`
	CreatedAt  int64     `json:"createdAt"`
	UpdatedAt  int64     `json:"updatedAt"`
}

// NewJob constructs a Job with a fresh id and an empty task list.
func NewJob(address, clientName string) *Job {
	now := time.Now().UnixMilli()
	return &Job{
		ID:         uuid.New(),
		Address:    address,
		ClientName: clientName,
		Tasks:      []*Task{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewTask constructs a Task with a fresh id. Materials and tools are
// the already-split item lists.
func NewTask(title, estimatedTime, description string, materials, tools, imageURLs []string) *Task {
	if materials == nil {
		materials = []string{}
	}
	if tools == nil {
		tools = []string{}
	}
	if imageURLs == nil {
		imageURLs = []string{}
	}
	return &Task{
		ID:            uuid.New(),
		Title:         title,
		Description:   description,
		EstimatedTime: estimatedTime,
		Materials:     materials,
		Tools:         tools,
		ImageURLs:     imageURLs,
		IsCompleted:   false,
		CreatedAt:     time.Now().UnixMilli(),
	}
}

// FindTask returns the task with the given id, or ErrTaskNotFound.
func (j *Job) FindTask(taskID uuid.UUID) (*Task, error) {
	for _, t := range j.Tasks {
		if t.ID == taskID {
			return t, nil
		}
	}
	return nil, ErrTaskNotFound
}

// SplitItems turns a comma-delimited raw input into a list of items:
// each segment is trimmed and empty segments are dropped. Order and
// duplicates are preserved.
func SplitItems(raw string) []string {
	items := []string{}
	for _, part := range strings.Split(raw, ",") {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}
