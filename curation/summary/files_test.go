package summary

import (
	"testing"

	"github.com/BaSui01/memcurator/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFileChanges_MergeUpgradesAction(t *testing.T) {
	msgs := []types.Message{
		types.NewAssistantMessage("I modified utils.js to tidy imports"),
		types.NewAssistantMessage("Created utils.js with new helper"),
	}

	recs := ExtractFileChanges(msgs, nil)

	require.Len(t, recs, 1)
	assert.Equal(t, "utils.js", recs[0].Path)
	assert.Equal(t, types.FileCreated, recs[0].Action)
	assert.Equal(t, 2, recs[0].Mentions)
	assert.Equal(t, "Tidy imports", recs[0].Description, "longest real description wins")
}

func TestExtractFileChanges_SkipsReadAndNonImplementation(t *testing.T) {
	msgs := []types.Message{
		types.NewUserMessage("Please look at server.go"),
		types.NewAssistantMessage("Created main.go after I read config.go"),
	}

	recs := ExtractFileChanges(msgs, nil)

	require.Len(t, recs, 1)
	assert.Equal(t, "main.go", recs[0].Path)
	assert.Equal(t, types.FileCreated, recs[0].Action)
}

func TestExtractFileChanges_Actions(t *testing.T) {
	recs := ExtractFileChanges([]types.Message{
		types.NewAssistantMessage("Removed legacy.py because it is unused"),
		types.NewAssistantMessage("Updated /Users/alice/project/src/app.ts to add retries"),
	}, nil)

	require.Len(t, recs, 2)
	assert.Equal(t, "legacy.py", recs[0].Path)
	assert.Equal(t, types.FileDeleted, recs[0].Action)
	assert.Equal(t, "project/src/app.ts", recs[1].Path)
	assert.Equal(t, types.FileModified, recs[1].Action)
	assert.Equal(t, "Add retries", recs[1].Description)
}

func TestExtractFileChanges_FallbackDescription(t *testing.T) {
	recs := ExtractFileChanges([]types.Message{
		types.NewAssistantMessage("Updated user-service.ts"),
	}, nil)

	require.Len(t, recs, 1)
	assert.Equal(t, "Updated user service", recs[0].Description)
}

func TestExtractFileChanges_IgnoresURLs(t *testing.T) {
	recs := ExtractFileChanges([]types.Message{
		types.NewAssistantMessage("Updated docs at https://example.com/guide.html today"),
	}, nil)
	assert.Empty(t, recs)
}

func TestExtractFileChanges_Observations(t *testing.T) {
	msgs := []types.Message{
		types.NewAssistantMessage("Created main.go with the entrypoint"),
	}
	obs := []types.Observation{
		{Files: []string{"main.go", "/home/bob/repo/handler.go"}},
	}

	recs := ExtractFileChanges(msgs, obs)

	require.Len(t, recs, 2)
	assert.Equal(t, types.FileCreated, recs[0].Action, "observations never override")
	assert.Equal(t, "The entrypoint", recs[0].Description)
	assert.Equal(t, 1, recs[0].Mentions)
	assert.Equal(t, "repo/handler.go", recs[1].Path)
	assert.Equal(t, types.FileModified, recs[1].Action)
	assert.Equal(t, "Updated handler", recs[1].Description)
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "src/a.go", NormalizePath("./src/a.go"))
	assert.Equal(t, "x/b.go", NormalizePath("~/x/b.go"))
	assert.Equal(t, "p/c.go", NormalizePath("/home/bob/p/c.go"))
	assert.Equal(t, "p/d.go", NormalizePath("`/Users/al/p/d.go`"))
}

func TestHumanizeFilename(t *testing.T) {
	assert.Equal(t, "user service", humanizeFilename("user-service.ts"))
	assert.Equal(t, "parse config", humanizeFilename("pkg/parseConfig.go"))
	assert.Equal(t, "readme", humanizeFilename("README.md"))
}
