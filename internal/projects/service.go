package projects

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"

	"islaapp-backend/internal/shared/storage/object"
	"islaapp-backend/internal/shared/telemetry"
)

const maxSlugAttempts = 1000

type Service struct {
	Repo  Repo
	Store object.Store
	Now   func() time.Time
}

func NewService(repo Repo, store object.Store) *Service {
	return &Service{Repo: repo, Store: store, Now: time.Now}
}

// Create scaffolds a starter for the input, reserves a unique slug and writes
// every file to the object store.
func (s *Service) Create(ctx context.Context, in CreateInput, createdBy string) (Project, error) {
	brief, err := in.validate()
	if err != nil {
		return Project{}, err
	}
	brief.CreatedAt = s.Now().UTC()

	files, err := Scaffold(brief)
	if err != nil {
		return Project{}, err
	}

	p := Project{
		ID:          uuid.NewString(),
		ProjectName: brief.ProjectName,
		Owner:       brief.Owner,
		Template:    brief.Template,
		Stack:       brief.Stack,
		Target:      brief.Target,
		Features:    brief.Features,
		Files:       sortedPaths(files),
		PreviewPath: previewPath(files),
		CreatedBy:   createdBy,
		CreatedAt:   brief.CreatedAt,
	}
	if err := s.reserve(ctx, &p, slugify(brief.ProjectName)); err != nil {
		return Project{}, err
	}

	for _, rel := range p.Files {
		key := objectKey(p.Slug, rel)
		if _, err := s.Store.Put(ctx, key, contentType(rel), bytes.NewReader(files[rel])); err != nil {
			telemetry.Error("projects.write_failed", map[string]any{"slug": p.Slug, "key": key, "error": err})
			return Project{}, fmt.Errorf("write %s: %w", key, err)
		}
	}

	telemetry.Info("projects.created", map[string]any{
		"slug":  p.Slug,
		"stack": p.Stack,
		"files": len(p.Files),
	})
	return p, nil
}

// reserve stores the record under base, or base-2, base-3, ... when taken.
func (s *Service) reserve(ctx context.Context, p *Project, base string) error {
	suffix := 1
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		candidate := base
		if suffix > 1 {
			candidate = base + "-" + strconv.Itoa(suffix)
		}
		suffix++

		exists, err := s.Repo.SlugExists(ctx, candidate)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		p.Slug = candidate
		err = s.Repo.Create(ctx, *p)
		if errors.Is(err, ErrConflict) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w: no free slug for %q", ErrConflict, base)
}

func (s *Service) List(ctx context.Context, limit int) ([]Project, error) {
	return s.Repo.List(ctx, limit)
}

// OpenFile streams one generated file of a project.
func (s *Service) OpenFile(ctx context.Context, slug, rel string) (io.ReadCloser, string, error) {
	p, err := s.Repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, "", err
	}
	clean, err := object.CleanKey(rel)
	if err != nil {
		return nil, "", ErrNotFound
	}
	if !containsPath(p.Files, clean) {
		return nil, "", ErrNotFound
	}
	rc, err := s.Store.Open(ctx, objectKey(p.Slug, clean))
	if errors.Is(err, object.ErrNotFound) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return rc, contentType(clean), nil
}

func containsPath(files []string, rel string) bool {
	for _, f := range files {
		if f == rel {
			return true
		}
	}
	return false
}

var contentTypes = map[string]string{
	".html":    "text/html; charset=utf-8",
	".css":     "text/css; charset=utf-8",
	".js":      "text/javascript; charset=utf-8",
	".jsx":     "text/javascript; charset=utf-8",
	".json":    "application/json",
	".md":      "text/markdown; charset=utf-8",
	".prisma":  "text/plain; charset=utf-8",
	".example": "text/plain; charset=utf-8",
}

func contentType(rel string) string {
	ext := path.Ext(rel)
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "text/plain; charset=utf-8"
}
