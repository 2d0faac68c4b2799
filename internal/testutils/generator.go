package testutils

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ViewGenerator writes synthetic view trees below root/app/views for
// benchmarks and stress tests. Each Generate method returns the identifier
// of the top-level template it wrote.
type ViewGenerator struct {
	fs   afero.Fs
	root string
}

// NewViewGenerator creates a generator for the project at root.
func NewViewGenerator(fs afero.Fs, root string) *ViewGenerator {
	return &ViewGenerator{fs: fs, root: root}
}

func (g *ViewGenerator) write(rel, content string) error {
	p := filepath.Join(g.root, "app", "views", filepath.FromSlash(rel))
	if err := g.fs.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}
	return afero.WriteFile(g.fs, p, []byte(content), 0644)
}

func render(name string) string {
	return fmt.Sprintf("<%%= render %q %%>\n", name)
}

// GenerateChain writes chain/show rendering a line of depth nested partials.
func (g *ViewGenerator) GenerateChain(depth int) (string, error) {
	if err := g.write("chain/show.html.erb", "<main>\n"+render("p1")+"</main>"); err != nil {
		return "", err
	}
	for i := 1; i <= depth; i++ {
		body := fmt.Sprintf("<div class=\"level-%d\">\n", i)
		if i < depth {
			body += render(fmt.Sprintf("p%d", i+1))
		}
		body += "</div>"
		if err := g.write(fmt.Sprintf("chain/_p%d.html.erb", i), body); err != nil {
			return "", err
		}
	}
	return "chain/show", nil
}

// GenerateDoubledChain writes doubled/show over depth nested partials where
// every level renders the next one twice.
func (g *ViewGenerator) GenerateDoubledChain(depth int) (string, error) {
	if err := g.write("doubled/show.html.erb", render("d1")+render("d1")); err != nil {
		return "", err
	}
	for i := 1; i <= depth; i++ {
		body := fmt.Sprintf("<div class=\"level-%d\">\n", i)
		if i < depth {
			next := fmt.Sprintf("d%d", i+1)
			body += render(next) + render(next)
		}
		body += "</div>"
		if err := g.write(fmt.Sprintf("doubled/_d%d.html.erb", i), body); err != nil {
			return "", err
		}
	}
	return "doubled/show", nil
}

// GenerateFanOut writes fan/show rendering width sibling partials, spread
// across relative and absolute references.
func (g *ViewGenerator) GenerateFanOut(width int) (string, error) {
	var b strings.Builder
	b.WriteString("<ul>\n")
	for i := 0; i < width; i++ {
		name := fmt.Sprintf("item%d", i)
		if i%2 == 1 {
			name = path.Join("fan", name)
		}
		b.WriteString(render(name))
		if err := g.write(fmt.Sprintf("fan/_item%d.html.erb", i), fmt.Sprintf("<li>%d</li>", i)); err != nil {
			return "", err
		}
	}
	b.WriteString("</ul>")

	if err := g.write("fan/show.html.erb", b.String()); err != nil {
		return "", err
	}
	return "fan/show", nil
}

// GenerateDiamond writes diamond/show over levels layers of two partials,
// each rendering both partials of the next layer. There are 2^levels paths
// to the last layer while only 2*levels files exist.
func (g *ViewGenerator) GenerateDiamond(levels int) (string, error) {
	layer := func(n int) string {
		if n > levels {
			return ""
		}
		return render(fmt.Sprintf("l%da", n)) + render(fmt.Sprintf("l%db", n))
	}

	if err := g.write("diamond/show.html.erb", layer(1)); err != nil {
		return "", err
	}
	for n := 1; n <= levels; n++ {
		for _, side := range []string{"a", "b"} {
			body := fmt.Sprintf("<span>%d%s</span>\n", n, side) + layer(n+1)
			if err := g.write(fmt.Sprintf("diamond/_l%d%s.html.erb", n, side), body); err != nil {
				return "", err
			}
		}
	}
	return "diamond/show", nil
}

// GenerateCycle writes cycle/show rendering the first of n partials that
// render each other in a ring.
func (g *ViewGenerator) GenerateCycle(n int) (string, error) {
	if err := g.write("cycle/show.html.erb", render("r0")); err != nil {
		return "", err
	}
	for i := 0; i < n; i++ {
		body := fmt.Sprintf("<b>%d</b>\n", i) + render(fmt.Sprintf("r%d", (i+1)%n))
		if err := g.write(fmt.Sprintf("cycle/_r%d.html.erb", i), body); err != nil {
			return "", err
		}
	}
	return "cycle/show", nil
}
