package projects

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"text/template"
	"time"

	"islaapp-backend/internal/requirements"
)

//go:embed all:templates
var templateFS embed.FS

const (
	templateRoot   = "templates"
	templateSuffix = ".tmpl"
	briefFile      = "project-brief.json"
)

// stackLayout is the starter directory and README commands for one stack.
type stackLayout struct {
	dir      string
	commands []string
}

var layouts = map[string]stackLayout{
	requirements.StackStatic: {
		dir: "static",
		commands: []string{
			"Open `index.html` in your browser for a static preview.",
			"Edit `app.js` for app behavior.",
			"Edit `styles.css` for UI changes.",
		},
	},
	requirements.StackReactSupabase: {
		dir: "react-supabase",
		commands: []string{
			"Run `npm install`.",
			"Copy `.env.example` to `.env` and set Supabase keys.",
			"Run `npm run dev`.",
		},
	},
	requirements.StackNextPostgres: {
		dir: "next-postgres",
		commands: []string{
			"Run `npm install`.",
			"Copy `.env.example` to `.env` and set DATABASE_URL.",
			"Run `npm run dev`.",
			"Run `npx prisma migrate dev --name init` after configuring DB.",
		},
	},
	requirements.StackNodeReact: {
		dir: "node-react",
		commands: []string{
			"In `api/`, run `npm install && npm run dev`.",
			"In `web/`, run `npm install && npm run dev`.",
			"Use `http://127.0.0.1:3001/api/health` to test API.",
		},
	},
}

var templateFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
}

// Brief is the scaffold input after validation.
type Brief struct {
	ProjectName string    `json:"projectName"`
	Owner       string    `json:"owner"`
	Template    string    `json:"template"`
	Stack       string    `json:"stack"`
	Target      string    `json:"target"`
	Features    []string  `json:"features"`
	CreatedAt   time.Time `json:"createdAt"`
}

type scaffoldData struct {
	Brief
	PackageName string
	Commands    []string
}

// layoutFor returns the starter for stack; unknown stacks get the static starter.
func layoutFor(stack string) stackLayout {
	if l, ok := layouts[requirements.MatchOption(stack, requirements.StackOptions)]; ok {
		return l
	}
	return layouts[requirements.StackStatic]
}

// Scaffold renders the starter files for a brief, keyed by relative path.
func Scaffold(b Brief) (map[string][]byte, error) {
	layout := layoutFor(b.Stack)
	data := scaffoldData{
		Brief:       b,
		PackageName: slugify(b.ProjectName),
		Commands:    layout.commands,
	}

	files := make(map[string][]byte)
	for _, dir := range []string{"common", layout.dir} {
		if err := renderDir(path.Join(templateRoot, dir), data, files); err != nil {
			return nil, err
		}
	}

	brief, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, err
	}
	files[briefFile] = append(brief, '\n')
	return files, nil
}

func renderDir(root string, data scaffoldData, out map[string][]byte) error {
	return fs.WalkDir(templateFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		raw, err := templateFS.ReadFile(p)
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(p, root+"/")
		if !strings.HasSuffix(rel, templateSuffix) {
			out[rel] = raw
			return nil
		}

		rel = strings.TrimSuffix(rel, templateSuffix)
		tmpl, err := template.New(rel).Funcs(templateFuncs).Parse(string(raw))
		if err != nil {
			return fmt.Errorf("parse scaffold template %s: %w", p, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return fmt.Errorf("render scaffold template %s: %w", p, err)
		}
		out[rel] = buf.Bytes()
		return nil
	})
}

// sortedPaths lists file paths in lexical order.
func sortedPaths(files map[string][]byte) []string {
	out := make([]string, 0, len(files))
	for p := range files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// previewPath is the entry HTML file a browser can open, if the starter has one.
func previewPath(files map[string][]byte) string {
	for _, candidate := range []string{"index.html", "web/index.html"} {
		if _, ok := files[candidate]; ok {
			return candidate
		}
	}
	return ""
}
