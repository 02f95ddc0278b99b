// Package seed loads starter users, learning paths and assessments from YAML.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"skillup-go/internal/models"
	"skillup-go/internal/repository"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type User struct {
	Email     string      `yaml:"email"`
	Password  string      `yaml:"password"`
	FirstName string      `yaml:"first_name"`
	LastName  string      `yaml:"last_name"`
	Role      models.Role `yaml:"role"`
}

type Content struct {
	Title           string `yaml:"title"`
	Type            string `yaml:"type"`
	Body            string `yaml:"body,omitempty"`
	URL             string `yaml:"url,omitempty"`
	DurationMinutes int    `yaml:"duration_minutes"`
}

type Question struct {
	Text        string   `yaml:"text"`
	Type        string   `yaml:"type"`
	Options     []string `yaml:"options"`
	Answer      string   `yaml:"answer"`
	Explanation string   `yaml:"explanation,omitempty"`
	Points      int      `yaml:"points"`
}

type Assessment struct {
	Title        string     `yaml:"title"`
	Description  string     `yaml:"description"`
	Type         string     `yaml:"type"`
	TimeLimit    int        `yaml:"time_limit"`
	PassingScore int        `yaml:"passing_score"`
	Questions    []Question `yaml:"questions"`
}

type LearningPath struct {
	Title          string            `yaml:"title"`
	Description    string            `yaml:"description"`
	Category       string            `yaml:"category"`
	Difficulty     models.Difficulty `yaml:"difficulty"`
	EstimatedHours int               `yaml:"estimated_hours"`
	Tags           []string          `yaml:"tags"`
	Price          int               `yaml:"price"`
	Published      bool              `yaml:"published"`
	Creator        string            `yaml:"creator"` // email of a seeded or existing user
	Contents       []Content         `yaml:"contents"`
	Assessments    []Assessment      `yaml:"assessments"`
}

// File is the layout of the seed YAML.
type File struct {
	Users         []User         `yaml:"users"`
	LearningPaths []LearningPath `yaml:"learning_paths"`
	Assessments   []Assessment   `yaml:"assessments"`
}

// Load reads and parses a seed file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal seed YAML: %w", err)
	}
	return &f, nil
}

// Apply inserts whatever in f is not already present. Users match by email,
// learning paths and standalone assessments by title.
func Apply(ctx context.Context, store *repository.Store, f *File, log *zap.Logger) error {
	uow := store.UnitOfWork()
	for _, u := range f.Users {
		exists, err := uow.Users.ExistsByEmail(ctx, u.Email)
		if err != nil {
			return fmt.Errorf("check user %s: %w", u.Email, err)
		}
		if exists {
			continue
		}
		hashed, err := models.HashPassword(u.Password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.Email, err)
		}
		role := u.Role
		if !role.Valid() {
			role = models.RoleStudent
		}
		uow.Users.Add(&models.User{
			Email:     strings.ToLower(strings.TrimSpace(u.Email)),
			Password:  hashed,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Role:      role,
			IsActive:  true,
		})
		log.Info("Seeding user", zap.String("email", u.Email), zap.String("role", string(role)))
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	for _, p := range f.LearningPaths {
		if err := applyPath(ctx, uow, p, log); err != nil {
			return err
		}
	}
	for _, a := range f.Assessments {
		if err := applyAssessment(ctx, uow, a, nil, log); err != nil {
			return err
		}
	}
	return nil
}

func applyPath(ctx context.Context, uow *repository.UnitOfWork, p LearningPath, log *zap.Logger) error {
	n, err := uow.LearningPaths.Count(ctx, "title = ?", p.Title)
	if err != nil {
		return fmt.Errorf("check learning path %q: %w", p.Title, err)
	}
	if n > 0 {
		return nil
	}
	creator, err := uow.Users.GetByEmail(ctx, p.Creator)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("learning path %q: creator %s does not exist", p.Title, p.Creator)
	}
	if err != nil {
		return fmt.Errorf("load creator %s: %w", p.Creator, err)
	}

	path := &models.LearningPath{
		Title:          p.Title,
		Description:    p.Description,
		Category:       p.Category,
		Difficulty:     p.Difficulty,
		EstimatedHours: p.EstimatedHours,
		Tags:           models.StringList(p.Tags),
		Price:          p.Price,
		IsPublished:    p.Published && len(p.Contents) > 0,
		IsActive:       true,
		CreatorID:      creator.ID,
	}
	uow.LearningPaths.Add(path)
	if err := uow.SaveChanges(ctx); err != nil {
		return fmt.Errorf("seed learning path %q: %w", p.Title, err)
	}
	for i, c := range p.Contents {
		uow.Contents.Add(&models.Content{
			LearningPathID:  path.ID,
			Title:           c.Title,
			ContentType:     c.Type,
			Body:            c.Body,
			URL:             c.URL,
			OrderIndex:      i + 1,
			DurationMinutes: c.DurationMinutes,
			IsPublished:     true,
		})
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return fmt.Errorf("seed content for %q: %w", p.Title, err)
	}
	log.Info("Seeded learning path", zap.String("title", p.Title), zap.Int("contents", len(p.Contents)))

	for _, a := range p.Assessments {
		if err := applyAssessment(ctx, uow, a, &path.ID, log); err != nil {
			return err
		}
	}
	return nil
}

func applyAssessment(ctx context.Context, uow *repository.UnitOfWork, a Assessment, learningPathID *uint, log *zap.Logger) error {
	n, err := uow.Assessments.Count(ctx, "title = ?", a.Title)
	if err != nil {
		return fmt.Errorf("check assessment %q: %w", a.Title, err)
	}
	if n > 0 {
		return nil
	}
	assessment := &models.Assessment{
		Title:          a.Title,
		Description:    a.Description,
		AssessmentType: a.Type,
		TimeLimit:      a.TimeLimit,
		PassingScore:   a.PassingScore,
		LearningPathID: learningPathID,
		IsActive:       true,
	}
	for _, q := range a.Questions {
		assessment.MaxScore += q.Points
	}
	uow.Assessments.Add(assessment)
	if err := uow.SaveChanges(ctx); err != nil {
		return fmt.Errorf("seed assessment %q: %w", a.Title, err)
	}
	for i, q := range a.Questions {
		uow.Questions.Add(&models.Question{
			AssessmentID:  assessment.ID,
			QuestionText:  q.Text,
			QuestionType:  q.Type,
			Options:       models.StringList(q.Options),
			CorrectAnswer: q.Answer,
			Explanation:   q.Explanation,
			Points:        q.Points,
			OrderIndex:    i + 1,
		})
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return fmt.Errorf("seed questions for %q: %w", a.Title, err)
	}
	log.Info("Seeded assessment", zap.String("title", a.Title), zap.Int("questions", len(a.Questions)))
	return nil
}
