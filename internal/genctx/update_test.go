package genctx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"genforge/internal/plan"
	"genforge/internal/symbol"
)

func TestUpdate_MarksCompletedAndIndexes(t *testing.T) {
	b := NewBuilder(symbol.NewScanIndexer(0))
	ctx, err := b.Build(testPlan(), "", nil, "")
	require.NoError(t, err)

	content := "class User:\n    pass\n\ndef make_user():\n    pass\n"
	next := b.Update(ctx, "models.py", content)
	require.NotSame(t, ctx, next)
	require.Same(t, ctx.Session, next.Session, "session record is shared across context versions")

	entry, ok := next.Session.Entry("models.py")
	require.True(t, ok)
	require.Equal(t, StatusCompleted, entry.Status)
	require.Equal(t, content, entry.Content)

	require.Equal(t, "models", next.ProjectIndex["User"])
	require.Equal(t, "models", next.ProjectIndex["make_user"])
	require.NotContains(t, ctx.ProjectIndex, "User", "previous index must stay untouched")
}

func TestUpdate_IndexMonotonicity(t *testing.T) {
	b := NewBuilder(symbol.NewScanIndexer(0))
	ctx, err := b.Build(testPlan(), "", map[string]string{
		"legacy.py": "class Legacy:\n    pass\n\nclass User:\n    pass\n",
	}, "/project")
	require.NoError(t, err)
	require.Equal(t, "legacy", ctx.ProjectIndex["User"])

	next := b.Update(ctx, "models.py", "class User:\n    pass\n")
	for sym := range ctx.ProjectIndex {
		require.Contains(t, next.ProjectIndex, sym)
	}
	require.Equal(t, "models", next.ProjectIndex["User"], "redefinition: last write wins")
	require.Equal(t, "legacy", next.ProjectIndex["Legacy"])
}

func TestUpdate_ExtractionFailureKeepsStaleIndex(t *testing.T) {
	idx := &fakeIndexer{tree: map[string]string{"Engine": "core.engine"}}
	b := NewBuilder(idx)
	ctx, err := b.Build(testPlan(), "", nil, "/project")
	require.NoError(t, err)

	idx.err = errors.New("bad content")
	next := b.Update(ctx, "models.py", "whatever")
	require.Same(t, ctx, next, "failed update returns the original context")

	entry, ok := ctx.Session.Entry("models.py")
	require.True(t, ok)
	require.Equal(t, StatusCompleted, entry.Status, "completion is recorded before indexing")
}

func TestUpdate_NonSourceArtifact(t *testing.T) {
	b := NewBuilder(symbol.NewScanIndexer(0))
	p := plan.GenerationPlan{Files: []plan.ArtifactSpec{{Filename: "README.md", Purpose: "docs"}}}
	ctx, err := b.Build(p, "", nil, "")
	require.NoError(t, err)

	next := b.Update(ctx, "README.md", "# readme")
	require.NotSame(t, ctx, next)
	require.Empty(t, next.ProjectIndex)
	entry, _ := next.Session.Entry("README.md")
	require.Equal(t, StatusCompleted, entry.Status)
}
