package islet

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/livefir/islet/internal/eval"
	"github.com/livefir/islet/internal/markup"
	"github.com/livefir/islet/internal/rewrite"
)

// PayloadType is the type of the script element carrying an island's props
const PayloadType = "application/json"

// islandAttr reports whether an attribute stays on the island element
// instead of going into its payload
func islandAttr(name string) bool {
	return name == "id" || name == "class" || strings.HasPrefix(name, "data-")
}

// island turns an unresolved custom tag into a hydration island. id, class
// and data-* stay on the element; every other attribute is evaluated into a
// JSON payload the client mounts the component with. Handlers are dropped
// and the children are replaced by the payload script.
func (r *renderer) island(n *markup.Node, scope eval.Scope) error {
	payload := map[string]any{}
	for _, a := range n.Attrs.List() {
		if strings.HasPrefix(a.Key, "@") {
			n.Attrs.Delete(a.Key)
			continue
		}
		name, v, err := r.attrValue(a, scope)
		if err != nil {
			return err
		}

		if !islandAttr(name) {
			n.Attrs.Delete(a.Key)
			payload[name] = v
			continue
		}
		if a.Key == name && !rewrite.HasExpr(a.Val) {
			continue
		}
		s := strings.TrimSpace(eval.JoinParts(v))
		if !eval.Visible(v) || s == "" {
			n.Attrs.Delete(a.Key)
			continue
		}
		n.Attrs.Rename(a.Key, name, s)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("island %s in %s: %w", n.Tag, r.comp.DisplayName(), err)
	}
	script := markup.NewElement("script")
	script.Attrs.Set("type", PayloadType)
	script.AppendChild(markup.NewText(string(data)))
	n.SetChildren([]*markup.Node{script})

	if m := r.config.Metrics; m != nil {
		m.IncrementIsland()
	}
	r.config.logf("island %s in %s: %d props", n.Tag, r.comp.DisplayName(), len(payload))
	return nil
}
