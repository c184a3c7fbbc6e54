package islet

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/livefir/islet/internal/markup"
)

// NameAttr declares a component's name on its root element
const NameAttr = "@name"

// Component is a parsed template. Source holds the markup of the root
// element, which is parsed again for every render.
type Component struct {
	// Name is the declared name; empty for anonymous components, which are
	// addressable by TagName only
	Name    string
	TagName string
	Source  string

	// Script is the body of the root's embedded <script>
	Script string
	// GlobalScript is the top-level script of the file the component came from
	GlobalScript string

	// Behavior constructs the implementation object for a render. Its fields
	// and methods are visible to expressions after the render data.
	Behavior func() any

	// File is the path the component was read from, if any
	File string

	// origin is the full text the component was parsed from, used to
	// locate errors
	origin string
}

// Binder is implemented by behavior instances that want the render scope
// before the component is rendered
type Binder interface {
	Bind(Scope)
}

// DisplayName returns Name, or TagName for anonymous components
func (c *Component) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.TagName
}

func (c *Component) text() string {
	if c.origin != "" {
		return c.origin
	}
	return c.Source
}

// Parse splits a template file into one Component per top-level element.
// Top-level <script> elements become the GlobalScript of every component.
func Parse(src string) ([]*Component, error) {
	doc := markup.Parse(src)

	var globals []string
	var roots []*markup.Node
	for _, n := range doc.Children {
		if n.Type != markup.ElementNode {
			continue
		}
		if n.Tag == "script" {
			globals = append(globals, strings.TrimSpace(markup.RenderChildren(n)))
			continue
		}
		roots = append(roots, n)
	}
	global := strings.Join(globals, "\n")

	components := make([]*Component, 0, len(roots))
	for _, root := range roots {
		c := &Component{
			TagName:      root.Tag,
			GlobalScript: global,
			origin:       src,
		}

		if name, ok := root.Attrs.Get(NameAttr); ok {
			if markup.IsStandardTag(name) {
				line, col := locate(src, NameAttr+`="`+name)
				if line == 0 {
					line, col = locate(src, name)
				}
				return nil, &NameCollisionError{Name: name, Line: line, Column: col}
			}
			c.Name = name
			root.Attrs.Delete(NameAttr)
		}

		for _, child := range root.Elements() {
			if child.Tag == "script" && !child.Attrs.Has("src") {
				c.Script = strings.TrimSpace(markup.RenderChildren(child))
				child.Removed = true
				break
			}
		}
		root.Excise()

		c.Source = markup.Render(root)
		components = append(components, c)
	}
	return components, nil
}

// Resolve finds the component for tag in deps: a declared name match first,
// then a tag name match. Earlier entries win, so deps is a priority order.
func Resolve(tag string, deps []*Component) *Component {
	for _, c := range deps {
		if c.Name != "" && strings.EqualFold(c.Name, tag) {
			return c
		}
	}
	for _, c := range deps {
		if strings.EqualFold(c.TagName, tag) {
			return c
		}
	}
	return nil
}

// Library is an ordered dependency list
type Library []*Component

// Resolve finds the component for tag, see Resolve
func (l Library) Resolve(tag string) *Component {
	return Resolve(tag, l)
}

// Names lists the declared or tag names in order
func (l Library) Names() []string {
	names := make([]string, len(l))
	for i, c := range l {
		names[i] = c.DisplayName()
	}
	return names
}

// ParseFiles parses every file in order into one library
func ParseFiles(paths ...string) (Library, error) {
	var lib Library
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		components, err := parseFile(path, string(data))
		if err != nil {
			return nil, err
		}
		lib = append(lib, components...)
	}
	return lib, nil
}

// ParseFS parses the files of fsys matching pattern, in lexical order
func ParseFS(fsys fs.FS, pattern string) (Library, error) {
	paths, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	var lib Library
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		components, err := parseFile(path, string(data))
		if err != nil {
			return nil, err
		}
		lib = append(lib, components...)
	}
	return lib, nil
}

func parseFile(path, src string) ([]*Component, error) {
	components, err := Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, c := range components {
		c.File = path
	}
	return components, nil
}
