package curation

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BaSui01/memcurator/curation/anchor"
	"github.com/BaSui01/memcurator/curation/filter"
	"github.com/BaSui01/memcurator/types"
)

// Section categories used for anchor IDs.
const (
	CategoryOverview = "summary"
	CategoryFiles    = "implementation"
	CategoryDecision = "decision"
	CategoryOutcome  = "outcome"
	CategoryTriggers = "triggers"
)

// Section is one anchored part of a rendered document.
type Section struct {
	Title    string `json:"title" yaml:"title"`
	Category string `json:"category" yaml:"category"`
	AnchorID string `json:"anchor_id" yaml:"anchor_id"`
}

// Document is the curated memory artifact of one transcript.
type Document struct {
	ID           string        `json:"id"`
	CreatedAt    time.Time     `json:"created_at"`
	Title        string        `json:"title"`
	Summary      types.Summary `json:"summary"`
	Sections     []Section     `json:"sections"`
	Markdown     string        `json:"markdown"`
	QualityScore int           `json:"quality_score"`
	LowQuality   bool          `json:"low_quality"`
	Stats        filter.Stats  `json:"stats"`
	MessageCount int           `json:"message_count"`
	TokenCount   int           `json:"token_count"`
}

// AnchorIDs returns the section anchors in render order.
func (d *Document) AnchorIDs() []string {
	ids := make([]string, len(d.Sections))
	for i, s := range d.Sections {
		ids[i] = s.AnchorID
	}
	return ids
}

// SectionText returns the markdown between the anchor markers of id.
func (d *Document) SectionText(id string) (string, bool) {
	start := anchorOpen(id)
	i := strings.Index(d.Markdown, start)
	if i < 0 {
		return "", false
	}
	rest := d.Markdown[i+len(start):]
	j := strings.Index(rest, anchorClose(id))
	if j < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:j]), true
}

func anchorOpen(id string) string  { return "<!-- anchor:" + id + " -->" }
func anchorClose(id string) string { return "<!-- /anchor:" + id + " -->" }

// frontMatter is the YAML header of a rendered document.
type frontMatter struct {
	ID             string    `yaml:"id"`
	CreatedAt      time.Time `yaml:"created_at"`
	Task           string    `yaml:"task"`
	QualityScore   int       `yaml:"quality_score"`
	LowQuality     bool      `yaml:"low_quality,omitempty"`
	TriggerPhrases []string  `yaml:"trigger_phrases,flow"`
	Anchors        []Section `yaml:"anchors"`
}

const frontMatterDelimiter = "---"

// renderer writes one document; its registry scopes anchor uniqueness.
type renderer struct {
	registry *anchor.Registry
	doc      *Document
	body     strings.Builder
}

func (r *renderer) section(title, category string, write func(b *strings.Builder)) {
	id := r.registry.Next(title, category, anchor.WithContext(r.doc.ID))
	r.doc.Sections = append(r.doc.Sections, Section{Title: title, Category: category, AnchorID: id})

	b := &r.body
	b.WriteString(anchorOpen(id))
	fmt.Fprintf(b, "\n<a id=\"%s\"></a>\n\n## %s\n\n", id, title)
	write(b)
	b.WriteString("\n")
	b.WriteString(anchorClose(id))
	b.WriteString("\n\n")
}

// render fills Sections and Markdown of doc.
func render(doc *Document, registry *anchor.Registry) error {
	r := &renderer{registry: registry, doc: doc}
	s := doc.Summary

	fmt.Fprintf(&r.body, "# %s\n\n", doc.Title)

	r.section("Overview", CategoryOverview, func(b *strings.Builder) {
		fmt.Fprintf(b, "**Task:** %s\n\n**Solution:** %s\n\n", s.Task, s.Solution)
		fmt.Fprintf(b, "_Quality: %d/100_\n", doc.QualityScore)
		if doc.LowQuality {
			b.WriteString("\n> Low-quality transcript: little unique or technical content survived filtering.\n")
		}
	})

	if len(s.FilesCreated)+len(s.FilesModified) > 0 {
		r.section("Files", CategoryFiles, func(b *strings.Builder) {
			writeFileList(b, "Created", s.FilesCreated)
			writeFileList(b, "Modified", s.FilesModified)
		})
	}

	if len(s.Decisions) > 0 {
		r.section("Decisions", CategoryDecision, func(b *strings.Builder) {
			for _, d := range s.Decisions {
				if d.Question != "" {
					fmt.Fprintf(b, "- **%s** %s\n", d.Question, d.Choice)
					continue
				}
				fmt.Fprintf(b, "- %s\n", d.Choice)
			}
		})
	}

	r.section("Outcomes", CategoryOutcome, func(b *strings.Builder) {
		for _, o := range s.Outcomes {
			fmt.Fprintf(b, "- %s\n", o)
		}
	})

	if len(s.TriggerPhrases) > 0 {
		r.section("Trigger Phrases", CategoryTriggers, func(b *strings.Builder) {
			b.WriteString(strings.Join(s.TriggerPhrases, ", "))
			b.WriteString("\n")
		})
	}

	fm, err := yaml.Marshal(frontMatter{
		ID:             doc.ID,
		CreatedAt:      doc.CreatedAt,
		Task:           s.Task,
		QualityScore:   doc.QualityScore,
		LowQuality:     doc.LowQuality,
		TriggerPhrases: s.TriggerPhrases,
		Anchors:        doc.Sections,
	})
	if err != nil {
		return fmt.Errorf("marshal front matter: %w", err)
	}

	var out strings.Builder
	out.WriteString(frontMatterDelimiter + "\n")
	out.Write(fm)
	out.WriteString(frontMatterDelimiter + "\n\n")
	out.WriteString(strings.TrimRight(r.body.String(), "\n"))
	out.WriteString("\n")
	doc.Markdown = out.String()
	return nil
}

func writeFileList(b *strings.Builder, label string, files []types.FileChangeRecord) {
	if len(files) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", label)
	for _, f := range files {
		if f.Action == types.FileDeleted {
			fmt.Fprintf(b, "- `%s` (deleted)\n", f.Path)
			continue
		}
		fmt.Fprintf(b, "- `%s` - %s\n", f.Path, f.Description)
	}
	b.WriteString("\n")
}
