package transport

// Navigation records where the page should go next. It satisfies the auth
// gate's navigator and is returned to the browser inside the envelope.
type Navigation struct {
	Target  string `json:"redirect,omitempty"`
	Refresh bool   `json:"reload,omitempty"`

	redirects int
}

func (n *Navigation) Redirect(target string) {
	n.Target = target
	n.redirects++
}

func (n *Navigation) Reload() {
	n.Refresh = true
}

// Redirects counts Redirect calls.
func (n *Navigation) Redirects() int {
	return n.redirects
}

// Empty reports whether no navigation was requested.
func (n *Navigation) Empty() bool {
	return n.Target == "" && !n.Refresh
}
