package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/viewfinder/internal/config"
)

// MemRoot is the project root used by in-memory test projects.
const MemRoot = "/app"

// projectDirs are created in every test project.
var projectDirs = []string{
	"app/views/layouts",
	"app/views/shared",
	"app/views/users",
	"config",
}

// CreateTempProject creates an on-disk project skeleton with a
// config/application.rb marker and returns its root.
func CreateTempProject(t testing.TB) string {
	tempDir := t.TempDir()

	for _, dir := range projectDirs {
		err := os.MkdirAll(filepath.Join(tempDir, dir), 0755)
		require.NoError(t, err)
	}
	err := os.WriteFile(filepath.Join(tempDir, "config", "application.rb"), []byte("module App; end\n"), 0644)
	require.NoError(t, err)

	return tempDir
}

// CreateMemProject creates the same skeleton on an in-memory filesystem
// rooted at MemRoot.
func CreateMemProject(t testing.TB) afero.Fs {
	fs := afero.NewMemMapFs()
	for _, dir := range projectDirs {
		require.NoError(t, fs.MkdirAll(filepath.Join(MemRoot, dir), 0755))
	}
	require.NoError(t, afero.WriteFile(fs, filepath.Join(MemRoot, "config", "application.rb"), []byte("module App; end\n"), 0644))
	return fs
}

// WriteView writes a file below root/app/views. rel is a slash path such as
// "users/show.html.erb".
func WriteView(t testing.TB, fs afero.Fs, root, rel, content string) string {
	path := filepath.Join(root, "app", "views", filepath.FromSlash(rel))
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	return path
}

// WriteViews writes every entry of views below root/app/views.
func WriteViews(t testing.TB, fs afero.Fs, root string, views map[string]string) {
	for rel, content := range views {
		WriteView(t, fs, root, rel, content)
	}
}

// CreateTestConfig creates a configuration for a project at projectDir with
// every option at its default.
func CreateTestConfig(projectDir string) *config.Config {
	return &config.Config{
		Root: projectDir,
		Views: config.ViewsConfig{
			Path:       "app/views",
			Extensions: append([]string(nil), config.DefaultExtensions...),
		},
		Resolve: config.ResolveConfig{
			Partials: true,
			Embed:    true,
			MaxDepth: config.DefaultMaxDepth,
		},
		Routes: config.RoutesConfig{
			File: "config/routes.yml",
		},
		Output: config.OutputConfig{Format: "text"},
		Log:    config.LogConfig{Level: "warn", Format: "text"},
	}
}

// StandardViews is a small view tree exercising relative, absolute and
// nested partials.
var StandardViews = map[string]string{
	"users/show.html.erb": `<h1>User</h1>
<%= render "shared/header" %>
<%= render "details", locals: { user: @user } %>`,
	"users/_details.html.erb": `<dl>
<%= render partial: "avatar" %>
</dl>`,
	"users/_avatar.html.erb":   `<img src="avatar.png">`,
	"shared/_header.html.erb":  `<p>Hi</p>`,
	"users/index.html.erb":     `<%= render "row" %>`,
	"users/_row.erb":           `<tr></tr>`,
	"layouts/application.html.erb": `<html>
<body>
<%= yield %>
</body>
</html>`,
}

// StandardRoutes is a YAML route table matching StandardViews.
const StandardRoutes = `routes:
  - name: user
    verb: GET
    path: /users/:id
    controller: users
    action: show
  - name: users
    verb: GET
    path: /users
    controller: users
    action: index
  - name: admin_users
    verb: GET
    path: /admin/users
    controller: admin/users
    action: index
`

// WaitForFileChange waits for a file to be modified (useful for testing file watchers)
func WaitForFileChange(
	t *testing.T,
	filePath string,
	originalModTime time.Time,
	timeout time.Duration,
) {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		info, err := os.Stat(filePath)
		if err == nil && info.ModTime().After(originalModTime) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("File %s was not modified within %v", filePath, timeout)
}
