package finder

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/viewfinder/internal/config"
	vferrors "github.com/conneroisu/viewfinder/internal/errors"
	"github.com/conneroisu/viewfinder/internal/routes"
	"github.com/conneroisu/viewfinder/internal/testutils"
	"github.com/conneroisu/viewfinder/internal/types"
)

func newTestFinder(t *testing.T, views map[string]string, configure func(*config.Config), opts ...Option) *Finder {
	t.Helper()
	fs := testutils.CreateMemProject(t)
	testutils.WriteViews(t, fs, testutils.MemRoot, views)
	return newFinderOn(t, fs, configure, opts...)
}

func newFinderOn(t *testing.T, fs afero.Fs, configure func(*config.Config), opts ...Option) *Finder {
	t.Helper()
	cfg := testutils.CreateTestConfig(testutils.MemRoot)
	if configure != nil {
		configure(cfg)
	}
	return New(fs, cfg, opts...)
}

func flatMode(cfg *config.Config) { cfg.Resolve.Embed = false }

func TestFindTemplateEndToEnd(t *testing.T) {
	f := newTestFinder(t, map[string]string{
		"users/show.html.erb":     `<%= render "shared/header" %>`,
		"shared/_header.html.erb": `<p>Hi</p>`,
	}, nil)

	result, err := f.FindTemplate(context.Background(), "users/show")
	require.NoError(t, err)

	expected := "\n<!-- BEGIN TEMPLATE: users/show.html.erb -->\n" +
		"\n<!-- BEGIN PARTIAL: shared/_header.html.erb -->\n" +
		"<p>Hi</p>" +
		"\n<!-- END PARTIAL: shared/_header.html.erb -->\n" +
		"\n<!-- END TEMPLATE: users/show.html.erb -->\n"
	assert.Equal(t, expected, result.String())
	assert.Empty(t, result.Diagnostics)
	assert.Equal(t, []string{"users/show.html.erb", "shared/_header.html.erb"}, result.Touched)

	require.Len(t, result.Entries, 1)
	assert.Equal(t, "users/show.html.erb", result.Entries[0].Path)
	assert.Equal(t, int64(len(`<%= render "shared/header" %>`)), result.Entries[0].Size)
}

func TestInlineLocalsAndNesting(t *testing.T) {
	f := newTestFinder(t, testutils.StandardViews, nil)

	result, err := f.FindTemplate(context.Background(), "users/show")
	require.NoError(t, err)

	out := result.String()
	assert.Contains(t, out, "<!-- BEGIN PARTIAL: users/_details.html.erb, locals: { user: @user } -->")
	assert.Contains(t, out, "<!-- END PARTIAL: users/_details.html.erb -->")
	assert.Contains(t, out, "<!-- BEGIN PARTIAL: users/_avatar.html.erb -->")
	assert.Contains(t, out, `<img src="avatar.png">`)
	assert.NotContains(t, out, "render")

	// The avatar sits inside the details partial
	detailsBegin := strings.Index(out, "BEGIN PARTIAL: users/_details")
	avatarBegin := strings.Index(out, "BEGIN PARTIAL: users/_avatar")
	detailsEnd := strings.Index(out, "END PARTIAL: users/_details")
	assert.Less(t, detailsBegin, avatarBegin)
	assert.Less(t, avatarBegin, detailsEnd)
}

func TestFlatCollectOrder(t *testing.T) {
	f := newTestFinder(t, testutils.StandardViews, flatMode)

	result, err := f.FindTemplate(context.Background(), "users/show")
	require.NoError(t, err)

	paths := make([]string, len(result.Entries))
	depths := make([]int, len(result.Entries))
	for i, e := range result.Entries {
		paths[i] = e.Path
		depths[i] = e.Depth
	}
	assert.Equal(t, []string{
		"users/show.html.erb",
		"shared/_header.html.erb",
		"users/_details.html.erb",
		"users/_avatar.html.erb",
	}, paths)
	assert.Equal(t, []int{0, 1, 1, 2}, depths)

	for _, e := range result.Entries {
		assert.True(t, strings.HasPrefix(e.Text, "\n<!-- BEGIN TEMPLATE: "+e.Path+" -->\n"))
	}
	// Flat mode leaves render tags in place
	assert.Contains(t, result.String(), `<%= render "shared/header" %>`)
}

func TestSelfReferenceTerminates(t *testing.T) {
	views := map[string]string{
		"users/show.html.erb":  `<%= render "loop" %>`,
		"users/_loop.html.erb": `loop<%= render "loop" %>`,
	}

	t.Run("inline", func(t *testing.T) {
		result, err := newTestFinder(t, views, nil).FindTemplate(context.Background(), "users/show")
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(result.String(), "BEGIN PARTIAL: users/_loop.html.erb"))
		assert.Equal(t, []string{"users/show.html.erb", "users/_loop.html.erb"}, result.Touched)
	})

	t.Run("flat", func(t *testing.T) {
		result, err := newTestFinder(t, views, flatMode).FindTemplate(context.Background(), "users/show")
		require.NoError(t, err)
		assert.Len(t, result.Entries, 2)
	})
}

func TestMutualCycleTerminates(t *testing.T) {
	views := map[string]string{
		"pages/home.html.erb": `<%= render "a" %>`,
		"pages/_a.html.erb":   `A<%= render "b" %>`,
		"pages/_b.html.erb":   `B<%= render "a" %>`,
	}

	for _, embed := range []bool{true, false} {
		f := newTestFinder(t, views, func(cfg *config.Config) { cfg.Resolve.Embed = embed })
		result, err := f.FindTemplate(context.Background(), "pages/home")
		require.NoError(t, err)
		assert.ElementsMatch(t,
			[]string{"pages/home.html.erb", "pages/_a.html.erb", "pages/_b.html.erb"},
			result.Touched)
	}
}

func TestRepeatedPartialExpandedOnce(t *testing.T) {
	views := map[string]string{
		"users/index.html.erb": `<%= render "row" %><%= render "row" %>`,
		"users/_row.html.erb":  `<tr></tr>`,
	}

	inline, err := newTestFinder(t, views, nil).FindTemplate(context.Background(), "users/index")
	require.NoError(t, err)
	out := inline.String()
	assert.Equal(t, 1, strings.Count(out, "BEGIN PARTIAL: users/_row.html.erb"))
	assert.Equal(t, 1, strings.Count(out, "<tr></tr>"))
	assert.NotContains(t, out, "render")
	assert.Empty(t, inline.Diagnostics)

	flat, err := newTestFinder(t, views, flatMode).FindTemplate(context.Background(), "users/index")
	require.NoError(t, err)
	assert.Len(t, flat.Entries, 2)
}

func TestUnresolvedReference(t *testing.T) {
	views := map[string]string{
		"users/show.html.erb": `<h1>x</h1><%= render "missing" %>`,
	}

	t.Run("inline keeps the tag", func(t *testing.T) {
		result, err := newTestFinder(t, views, nil).FindTemplate(context.Background(), "users/show")
		require.NoError(t, err)

		assert.Contains(t, result.String(), `<%= render "missing" %>`)
		require.Len(t, result.Diagnostics, 1)
		d := result.Diagnostics[0]
		assert.Equal(t, types.DiagnosticUnresolvedReference, d.Kind)
		assert.Equal(t, "missing", d.Target)
		assert.Equal(t, "users/show.html.erb", d.Template)
		assert.Equal(t, "Warning: Could not find partial: missing", d.String())
	})

	t.Run("flat skips it", func(t *testing.T) {
		result, err := newTestFinder(t, views, flatMode).FindTemplate(context.Background(), "users/show")
		require.NoError(t, err)

		assert.Len(t, result.Entries, 1)
		require.Len(t, result.Diagnostics, 1)
		assert.Equal(t, types.DiagnosticUnresolvedReference, result.Diagnostics[0].Kind)
	})
}

func TestAbsoluteAndRelativeReferences(t *testing.T) {
	f := newTestFinder(t, map[string]string{
		"users/show.html.erb":     `<%= render "shared/header" %><%= render "header" %>`,
		"shared/_header.html.erb": `shared`,
		"users/_header.html.erb":  `local`,
	}, nil)

	result, err := f.FindTemplate(context.Background(), "users/show")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"users/show.html.erb",
		"shared/_header.html.erb",
		"users/_header.html.erb",
	}, result.Touched)

	out := result.String()
	assert.Less(t, strings.Index(out, "shared"), strings.Index(out, "local"))
}

func TestNameNormalizationAndExtensionPriority(t *testing.T) {
	f := newTestFinder(t, map[string]string{
		"users/show.html.erb":    `<%= render "__avatar" %><%= render "/row" %><%= render "_row" %>`,
		"users/_avatar.html.erb": `avatar`,
		"users/_row.erb":         `plain`,
		"users/_row.html.erb":    `html`,
		"_row.html.erb":          `root row`,
	}, flatMode)

	result, err := f.FindTemplate(context.Background(), "users/show")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"users/show.html.erb",
		"users/_avatar.html.erb",
		"_row.html.erb",
		"users/_row.html.erb",
	}, result.Touched)
	assert.Empty(t, result.Diagnostics)
}

func TestInlineAndFlatTouchSameFiles(t *testing.T) {
	inline, err := newTestFinder(t, testutils.StandardViews, nil).FindTemplate(context.Background(), "users/show")
	require.NoError(t, err)
	flat, err := newTestFinder(t, testutils.StandardViews, flatMode).FindTemplate(context.Background(), "users/show")
	require.NoError(t, err)

	flatPaths := make([]string, len(flat.Entries))
	for i, e := range flat.Entries {
		flatPaths[i] = e.Path
	}
	assert.ElementsMatch(t, inline.Touched, flatPaths)
	assert.ElementsMatch(t, inline.Touched, flat.Touched)
}

func TestPartialsDisabled(t *testing.T) {
	f := newTestFinder(t, testutils.StandardViews, func(cfg *config.Config) {
		cfg.Resolve.Partials = false
	})

	result, err := f.FindTemplate(context.Background(), "users/show")
	require.NoError(t, err)

	require.Len(t, result.Entries, 1)
	assert.Equal(t, []string{"users/show.html.erb"}, result.Touched)
	assert.Contains(t, result.String(), `<%= render "shared/header" %>`)
	assert.NotContains(t, result.String(), "BEGIN PARTIAL")
}

func TestTemplateNotFound(t *testing.T) {
	f := newTestFinder(t, testutils.StandardViews, nil)

	result, err := f.FindTemplate(context.Background(), "users/edit")
	require.NoError(t, err)

	assert.True(t, result.Empty())
	assert.Equal(t, "", result.String())
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, types.DiagnosticTemplateNotFound, result.Diagnostics[0].Kind)
}

func TestFindDispatch(t *testing.T) {
	table, err := routes.ParseYAML([]byte(testutils.StandardRoutes))
	require.NoError(t, err)
	f := newTestFinder(t, testutils.StandardViews, nil, WithRoutes(table))

	t.Run("project relative template path", func(t *testing.T) {
		result, err := f.Find(context.Background(), "app/views/users/index.html.erb")
		require.NoError(t, err)
		require.Len(t, result.Entries, 1)
		assert.Equal(t, "users/index.html.erb", result.Entries[0].Path)
		assert.Contains(t, result.String(), "BEGIN PARTIAL: users/_row.erb")
	})

	t.Run("route helper", func(t *testing.T) {
		result, err := f.Find(context.Background(), "user_path")
		require.NoError(t, err)
		require.Len(t, result.Entries, 1)
		assert.Equal(t, "users/show.html.erb", result.Entries[0].Path)
	})

	t.Run("route without a view", func(t *testing.T) {
		result, err := f.Find(context.Background(), "admin_users_url")
		require.NoError(t, err)
		assert.True(t, result.Empty())
		require.Len(t, result.Diagnostics, 1)
		assert.Equal(t, types.DiagnosticTemplateNotFound, result.Diagnostics[0].Kind)
	})

	t.Run("view identifier", func(t *testing.T) {
		result, err := f.Find(context.Background(), "users/show")
		require.NoError(t, err)
		require.Len(t, result.Entries, 1)
		assert.Equal(t, "users/show.html.erb", result.Entries[0].Path)
	})

	t.Run("absolute path inside the project", func(t *testing.T) {
		result, err := f.Find(context.Background(), filepath.Join(testutils.MemRoot, "app", "views", "users", "show.html.erb"))
		require.NoError(t, err)
		require.Len(t, result.Entries, 1)
		assert.Equal(t, "users/show.html.erb", result.Entries[0].Path)
	})

	t.Run("unknown route", func(t *testing.T) {
		result, err := f.Find(context.Background(), "nope_path")
		require.NoError(t, err)
		assert.True(t, result.Empty())
		require.Len(t, result.Diagnostics, 1)
		assert.Equal(t, types.DiagnosticUnresolvedRoute, result.Diagnostics[0].Kind)
	})
}

func TestFindRejectsPathsOutsideProject(t *testing.T) {
	fs := testutils.CreateMemProject(t)
	testutils.WriteViews(t, fs, testutils.MemRoot, testutils.StandardViews)
	require.NoError(t, afero.WriteFile(fs, "/etc/hosts", []byte("127.0.0.1 localhost"), 0644))
	f := newFinderOn(t, fs, nil)

	for _, input := range []string{"/etc/hosts", "../etc/hosts", "app/../../etc/hosts"} {
		t.Run(input, func(t *testing.T) {
			result, err := f.Find(context.Background(), input)
			require.NoError(t, err)
			assert.True(t, result.Empty())
			assert.Empty(t, result.Touched)
			assert.NotContains(t, result.String(), "localhost")
			require.Len(t, result.Diagnostics, 1)

			result, err = f.FindTemplate(context.Background(), input)
			require.NoError(t, err)
			assert.True(t, result.Empty())
			require.Len(t, result.Diagnostics, 1)
			assert.Equal(t, types.DiagnosticTemplateNotFound, result.Diagnostics[0].Kind)
		})
	}
}

func TestFindRouteNamespace(t *testing.T) {
	table, err := routes.ParseYAML([]byte(testutils.StandardRoutes))
	require.NoError(t, err)
	f := newTestFinder(t, testutils.StandardViews, func(cfg *config.Config) {
		cfg.Resolve.Namespace = "admin"
	}, WithRoutes(table))

	result, err := f.FindRoute(context.Background(), "users")
	require.NoError(t, err)
	assert.True(t, result.Empty())
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, types.DiagnosticUnresolvedRoute, result.Diagnostics[0].Kind)
}

func TestFindRouteWithoutTable(t *testing.T) {
	f := newTestFinder(t, testutils.StandardViews, nil)

	result, err := f.FindRoute(context.Background(), "users")
	require.NoError(t, err)
	assert.True(t, result.Empty())
}

// failingFs fails to open one path while still reporting it exists.
type failingFs struct {
	afero.Fs
	fail string
}

func (f failingFs) Open(name string) (afero.File, error) {
	if filepath.Clean(name) == f.fail {
		return nil, errors.New("permission denied")
	}
	return f.Fs.Open(name)
}

func TestReadFailureDropsBranch(t *testing.T) {
	mem := testutils.CreateMemProject(t)
	testutils.WriteViews(t, mem, testutils.MemRoot, testutils.StandardViews)
	broken := filepath.Join(testutils.MemRoot, "app", "views", "users", "_details.html.erb")
	fs := failingFs{Fs: mem, fail: broken}

	for _, embed := range []bool{true, false} {
		f := newFinderOn(t, fs, func(cfg *config.Config) { cfg.Resolve.Embed = embed })

		result, err := f.FindTemplate(context.Background(), "users/show")
		require.NoError(t, err)

		out := result.String()
		assert.Contains(t, out, "<p>Hi</p>", "embed=%v", embed)
		assert.NotContains(t, out, "BEGIN PARTIAL: users/_details")
		assert.NotContains(t, out, "BEGIN TEMPLATE: users/_details")
		assert.NotContains(t, out, "users/_avatar")

		require.Len(t, result.Diagnostics, 1)
		assert.Equal(t, types.DiagnosticReadFailure, result.Diagnostics[0].Kind)
		assert.Equal(t, "users/_details.html.erb", result.Diagnostics[0].Target)
	}
}

func TestReadFailureOnRoot(t *testing.T) {
	mem := testutils.CreateMemProject(t)
	testutils.WriteViews(t, mem, testutils.MemRoot, testutils.StandardViews)
	fs := failingFs{Fs: mem, fail: filepath.Join(testutils.MemRoot, "app", "views", "users", "show.html.erb")}

	result, err := newFinderOn(t, fs, nil).FindTemplate(context.Background(), "users/show")
	require.NoError(t, err)
	assert.True(t, result.Empty())
	assert.Len(t, result.Diagnostics, 1)
}

func TestMaxDepth(t *testing.T) {
	views := map[string]string{
		"pages/home.html.erb": `<%= render "a" %>`,
		"pages/_a.html.erb":   `<%= render "b" %>`,
		"pages/_b.html.erb":   `<%= render "c" %>`,
		"pages/_c.html.erb":   `c`,
	}

	for _, embed := range []bool{true, false} {
		f := newTestFinder(t, views, func(cfg *config.Config) {
			cfg.Resolve.Embed = embed
			cfg.Resolve.MaxDepth = 2
		})

		_, err := f.FindTemplate(context.Background(), "pages/home")
		require.Error(t, err, "embed=%v", embed)
		assert.True(t, errors.Is(err, vferrors.ErrMaxDepthExceeded))

		f = newTestFinder(t, views, func(cfg *config.Config) {
			cfg.Resolve.Embed = embed
			cfg.Resolve.MaxDepth = 3
		})
		_, err = f.FindTemplate(context.Background(), "pages/home")
		assert.NoError(t, err, "embed=%v", embed)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, embed := range []bool{true, false} {
		f := newTestFinder(t, testutils.StandardViews, func(cfg *config.Config) { cfg.Resolve.Embed = embed })
		_, err := f.FindTemplate(ctx, "users/show")
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestConcurrentCallsAreIndependent(t *testing.T) {
	f := newTestFinder(t, testutils.StandardViews, nil)

	want, err := f.FindTemplate(context.Background(), "users/show")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := f.FindTemplate(context.Background(), "users/show")
			if err == nil {
				results[i] = r.String()
			}
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want.String(), got)
	}
}

func TestWithOptionsOverridesConfig(t *testing.T) {
	f := newTestFinder(t, testutils.StandardViews, nil, WithOptions(Options{Partials: true, Embed: false}))

	assert.Equal(t, config.DefaultMaxDepth, f.Options().MaxDepth)
	result, err := f.FindTemplate(context.Background(), "users/show")
	require.NoError(t, err)
	assert.Len(t, result.Entries, 4)
}
