package rendering

import (
	"bytes"
	"embed"
	"fmt"
	"hash/fnv"
	"html/template"
	"io"
	"os"
	"sort"

	"github.com/jonathan/claimhound/internal/fsutil"
	"github.com/jonathan/claimhound/internal/types"
)

//go:embed templates/highlight.html.tmpl
var templateFS embed.FS

const defaultTemplate = "templates/highlight.html.tmpl"

// paletteSize is the number of .cN colour classes the template defines.
const paletteSize = 8

// Options configures the highlight view.
type Options struct {
	Title string
	// TemplatePath overrides the embedded template when set.
	TemplatePath string
}

// TemplateData is the value passed to the HTML template.
type TemplateData struct {
	Title      string
	ClaimCount int
	Posts      []PostView
}

// PostView is one post with its body split into plain and highlighted segments.
type PostView struct {
	ID        string
	Author    string
	Handle    string
	CreatedAt string
	URL       string
	Segments  []Segment
	Claims    []ClaimView
}

// Segment is a run of post text. Highlighted segments belong to one claim.
type Segment struct {
	Text       string
	Highlight  bool
	Class      string
	ColorClass string
	Index      int
}

// ClaimView is the list entry shown under a post.
type ClaimView struct {
	Index         int
	Class         string
	ColorClass    string
	Text          string
	Status        types.AlignmentStatus
	Location      string
	Prediction    string
	Justification string
}

// Render writes the highlight view of claims to w.
func Render(w io.Writer, claims []types.Claim, opts Options) error {
	tmpl, err := parseTemplate(opts.TemplatePath)
	if err != nil {
		return err
	}

	title := opts.Title
	if title == "" {
		title = "Extracted Claims"
	}
	data := TemplateData{
		Title:      title,
		ClaimCount: len(claims),
		Posts:      BuildViews(claims),
	}

	// Render into a buffer so a failing template never leaves half a page.
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return &TemplateError{Message: "failed to execute template", Cause: err}
	}
	if _, err := buf.WriteTo(w); err != nil {
		return &RenderError{Message: "failed to write output", Cause: err}
	}
	return nil
}

// RenderFile writes the highlight view to path, replacing it atomically.
func RenderFile(path string, claims []types.Claim, opts Options) error {
	var buf bytes.Buffer
	if err := Render(&buf, claims, opts); err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return &RenderError{Message: fmt.Sprintf("failed to write %s", path), Cause: err}
	}
	return nil
}

func parseTemplate(templatePath string) (*template.Template, error) {
	if templatePath == "" {
		tmpl, err := template.ParseFS(templateFS, defaultTemplate)
		if err != nil {
			return nil, &TemplateError{Message: "failed to parse embedded template", Cause: err}
		}
		return tmpl, nil
	}

	content, err := os.ReadFile(templatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &TemplateError{
				Message: fmt.Sprintf("template file not found: %s", templatePath),
				Cause:   err,
			}
		}
		return nil, &TemplateError{
			Message: fmt.Sprintf("failed to read template file: %s", templatePath),
			Cause:   err,
		}
	}

	tmpl, err := template.New("highlight").Parse(string(content))
	if err != nil {
		return nil, &TemplateError{Message: "failed to parse template", Cause: err}
	}
	return tmpl, nil
}

// BuildViews groups claims by post, in order of first appearance. Posts are
// keyed by ID, or by body text when the ID is empty.
func BuildViews(claims []types.Claim) []PostView {
	var (
		views []PostView
		group = make(map[string]int)
		owned = make(map[int][]types.Claim)
	)
	for _, c := range claims {
		key := "id:" + c.Post.ID
		if c.Post.ID == "" {
			key = "text:" + c.Post.Text
		}
		i, ok := group[key]
		if !ok {
			i = len(views)
			group[key] = i
			views = append(views, PostView{
				ID:        c.Post.ID,
				Author:    c.Post.Author,
				Handle:    c.Post.Handle,
				CreatedAt: c.Post.CreatedAt,
				URL:       c.Post.URL,
			})
		}
		owned[i] = append(owned[i], c)
	}

	for i := range views {
		postClaims := owned[i]
		views[i].Segments = Segments(postClaims[0].Post.Text, postClaims)
		for n, c := range postClaims {
			views[i].Claims = append(views[i].Claims, ClaimView{
				Index:         n + 1,
				Class:         c.Class,
				ColorClass:    ColorClass(c.Class),
				Text:          c.Text,
				Status:        c.AlignmentStatus,
				Location:      c.Location,
				Prediction:    c.Prediction,
				Justification: c.Justification,
			})
		}
	}
	return views
}

type mark struct {
	start, end int
	claim      int // 1-based position within the post
	class      string
}

// Segments splits body at the aligned claim intervals. Offsets are in
// characters, not bytes. Unaligned claims are not highlighted, and a span
// overlapping an earlier one is left unhighlighted.
func Segments(body string, claims []types.Claim) []Segment {
	runes := []rune(body)

	var marks []mark
	for n, c := range claims {
		if !c.Aligned() || c.Post.Text != body {
			continue
		}
		iv := c.EffectiveInterval()
		if iv.Start == iv.End {
			continue
		}
		marks = append(marks, mark{start: iv.Start, end: iv.End, claim: n + 1, class: c.Class})
	}
	sort.SliceStable(marks, func(i, j int) bool { return marks[i].start < marks[j].start })

	var segments []Segment
	cursor := 0
	for _, m := range marks {
		if m.start < cursor {
			continue
		}
		if m.start > cursor {
			segments = append(segments, Segment{Text: string(runes[cursor:m.start])})
		}
		segments = append(segments, Segment{
			Text:       string(runes[m.start:m.end]),
			Highlight:  true,
			Class:      m.class,
			ColorClass: ColorClass(m.class),
			Index:      m.claim,
		})
		cursor = m.end
	}
	if cursor < len(runes) {
		segments = append(segments, Segment{Text: string(runes[cursor:])})
	}
	return segments
}

// ColorClass maps a claim class to one of the template's colour classes.
// The mapping is stable across runs.
func ColorClass(class string) string {
	h := fnv.New32a()
	h.Write([]byte(class)) //nolint:errcheck
	return fmt.Sprintf("c%d", h.Sum32()%paletteSize)
}
