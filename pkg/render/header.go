package render

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// HeaderItem is a contribution to the page head. Items with the same token
// are rendered once; an empty token disables de-duplication.
type HeaderItem interface {
	Token() string
	Script() string
	DomReady() bool
}

type scriptItem struct {
	token    string
	script   string
	domReady bool
}

func (s scriptItem) Token() string  { return s.token }
func (s scriptItem) Script() string { return s.script }
func (s scriptItem) DomReady() bool { return s.domReady }

// OnDomReady wraps script so it runs once the DOM is ready. The script text is
// its own token.
func OnDomReady(script string) HeaderItem {
	return scriptItem{token: script, script: script, domReady: true}
}

// JavaScript is a script that runs as soon as the head is parsed. Token may be
// empty.
func JavaScript(script, token string) HeaderItem {
	return scriptItem{token: token, script: script}
}

// Response is the sink widget fields render into.
type Response interface {
	Render(item HeaderItem)
}

// Head is a Response that keeps items in arrival order. It is safe for
// concurrent use.
type Head struct {
	mu    sync.Mutex
	items []HeaderItem
	seen  map[string]struct{}
}

var _ Response = (*Head)(nil)

// NewHead returns an empty collector.
func NewHead() *Head {
	return &Head{seen: make(map[string]struct{})}
}

// Render records item unless an item with the same token was already seen.
func (h *Head) Render(item HeaderItem) {
	if h == nil || item == nil || strings.TrimSpace(item.Script()) == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.seen == nil {
		h.seen = make(map[string]struct{})
	}
	if token := item.Token(); token != "" {
		if _, exists := h.seen[token]; exists {
			return
		}
		h.seen[token] = struct{}{}
	}
	h.items = append(h.items, item)
}

// Items returns a copy of the recorded items.
func (h *Head) Items() []HeaderItem {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]HeaderItem(nil), h.items...)
}

// Len reports the number of recorded items.
func (h *Head) Len() int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.items)
}

// Scripts joins immediate scripts first, then a single jQuery ready block
// holding every on-DOM-ready script in arrival order.
func (h *Head) Scripts() string {
	items := h.Items()
	if len(items) == 0 {
		return ""
	}

	var immediate, ready []string
	for _, item := range items {
		script := strings.TrimSpace(item.Script())
		if item.DomReady() {
			ready = append(ready, script)
			continue
		}
		immediate = append(immediate, script)
	}

	var b strings.Builder
	for _, script := range immediate {
		b.WriteString(script)
		b.WriteString("\n")
	}
	if len(ready) > 0 {
		b.WriteString("jQuery(function(){\n")
		for _, script := range ready {
			b.WriteString(script)
			b.WriteString("\n")
		}
		b.WriteString("});\n")
	}
	return b.String()
}

// WriteTo writes the collected scripts inside one script element. Nothing is
// written when the collector is empty.
func (h *Head) WriteTo(w io.Writer) (int64, error) {
	scripts := h.Scripts()
	if scripts == "" {
		return 0, nil
	}
	n, err := fmt.Fprintf(w, "<script type=\"text/javascript\">\n%s</script>\n", scripts)
	return int64(n), err
}
