package summary

import (
	"fmt"
	"strings"

	"github.com/BaSui01/memcurator/types"
)

// FormatSummaryAsMarkdown 按字段顺序渲染摘要，空列表省略
func FormatSummaryAsMarkdown(s types.Summary) string {
	var b strings.Builder
	b.WriteString("## Implementation Summary\n\n")
	fmt.Fprintf(&b, "**Task:** %s\n\n", s.Task)
	fmt.Fprintf(&b, "**Solution:** %s\n", s.Solution)

	writeFiles(&b, "Files Created", s.FilesCreated)
	writeFiles(&b, "Files Modified", s.FilesModified)

	if len(s.Decisions) > 0 {
		b.WriteString("\n### Decisions\n\n")
		for _, d := range s.Decisions {
			if d.Question != "" {
				fmt.Fprintf(&b, "- **Q:** %s\n  **A:** %s\n", d.Question, d.Choice)
			} else {
				fmt.Fprintf(&b, "- %s\n", d.Choice)
			}
		}
	}

	if len(s.Outcomes) > 0 {
		b.WriteString("\n### Outcomes\n\n")
		for _, o := range s.Outcomes {
			fmt.Fprintf(&b, "- %s\n", o)
		}
	}

	if len(s.TriggerPhrases) > 0 {
		b.WriteString("\n### Trigger Phrases\n\n")
		b.WriteString(strings.Join(s.TriggerPhrases, ", "))
		b.WriteString("\n")
	}
	return b.String()
}

func writeFiles(b *strings.Builder, title string, files []types.FileChangeRecord) {
	if len(files) == 0 {
		return
	}
	fmt.Fprintf(b, "\n### %s\n\n", title)
	for _, f := range files {
		if f.Action == types.FileDeleted {
			fmt.Fprintf(b, "- `%s` (deleted) - %s\n", f.Path, f.Description)
			continue
		}
		fmt.Fprintf(b, "- `%s` - %s\n", f.Path, f.Description)
	}
}
