package projects

import (
	"strings"
	"time"

	"islaapp-backend/internal/shared/util"
)

const defaultSlug = "new-project"

// Project is a generated starter stored under projects/<slug>/ in the object store.
type Project struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	ProjectName string    `json:"projectName"`
	Owner       string    `json:"owner"`
	Template    string    `json:"template"`
	Stack       string    `json:"stack"`
	Target      string    `json:"target"`
	Features    []string  `json:"features"`
	Files       []string  `json:"files"`
	PreviewPath string    `json:"previewPath"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateInput is the raw scaffold request.
type CreateInput struct {
	ProjectName string
	Owner       string
	Template    string
	Stack       string
	Target      string
	Features    []string
}

func (in CreateInput) validate() (Brief, error) {
	b := Brief{
		ProjectName: strings.TrimSpace(in.ProjectName),
		Owner:       strings.TrimSpace(in.Owner),
		Template:    strings.TrimSpace(in.Template),
		Stack:       strings.TrimSpace(in.Stack),
		Target:      strings.TrimSpace(in.Target),
	}
	switch {
	case b.ProjectName == "":
		return Brief{}, invalid("projectName is required")
	case b.Owner == "":
		return Brief{}, invalid("owner is required")
	case b.Template == "":
		return Brief{}, invalid("template is required")
	case b.Stack == "":
		return Brief{}, invalid("stack is required")
	case b.Target == "":
		return Brief{}, invalid("target is required")
	case len(in.Features) == 0:
		return Brief{}, invalid("features must be a non-empty array")
	}
	for _, f := range in.Features {
		f = strings.TrimSpace(f)
		if f == "" {
			return Brief{}, invalid("features must contain non-empty strings")
		}
		b.Features = append(b.Features, f)
	}
	return b, nil
}

func slugify(name string) string {
	return util.Slugify(strings.TrimSpace(name), defaultSlug)
}

// objectKey is where a project file lives in the object store.
func objectKey(slug, rel string) string {
	return "projects/" + slug + "/" + rel
}
