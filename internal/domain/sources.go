package domain

import "time"

// JobPosting is the read-only view of a job offer exposed to ingestion.
type JobPosting struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	Location       string    `json:"location"`
	EmploymentType string    `json:"employment_type"`
	SalaryRange    string    `json:"salary_range"`
	Description    string    `json:"description"`
	Culture        string    `json:"culture"`
	Benefits       string    `json:"benefits"`
	Skills         []string  `json:"skills"`
	Tags           []string  `json:"tags"`
	PublishedAt    time.Time `json:"published_at"`
}

// CompanyProfile is the read-only view of a company exposed to ingestion.
type CompanyProfile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Industry    string    `json:"industry"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Culture     string    `json:"culture"`
	Benefits    string    `json:"benefits"`
	Tags        []string  `json:"tags"`
	PublishedAt time.Time `json:"published_at"`
}

// LearningResource is the read-only view of a course or article exposed
// to ingestion.
type LearningResource struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Provider    string    `json:"provider"`
	SkillLevel  string    `json:"skill_level"`
	Summary     string    `json:"summary"`
	Content     string    `json:"content"`
	Tags        []string  `json:"tags"`
	PublishedAt time.Time `json:"published_at"`
}

// FAQEntry is the read-only view of a FAQ item exposed to ingestion.
type FAQEntry struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	UpdatedAt time.Time `json:"updated_at"`
}
