// Package docs holds the user manual, one markdown file per topic.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.md
var files embed.FS

// index is the topic listing every other topic.
const index = "readme"

// Topic returns the markdown content of a topic.
func Topic(name string) (string, error) {
	content, err := files.ReadFile(name + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found: %w", name, err)
	}
	return string(content), nil
}

// Topics returns the names of all the topics but the index, sorted.
func Topics() []string {
	paths, _ := fs.Glob(files, "*.md")
	var names []string
	for _, p := range paths {
		name := strings.TrimSuffix(p, ".md")
		if name != index {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Render concatenates the given topics. No topic means the index, and "*"
// stands for every topic.
func Render(names ...string) (string, error) {
	if len(names) == 0 {
		names = []string{index}
	}
	var b strings.Builder
	for _, name := range names {
		expanded := []string{name}
		if name == "*" {
			expanded = Topics()
		}
		for _, n := range expanded {
			content, err := Topic(n)
			if err != nil {
				return "", err
			}
			b.WriteString(content)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}
