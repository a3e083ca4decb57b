// Package refs tracks identified geometries and xlink:href placeholders
// during one decode session and binds them together on request.
package refs

import (
	"fmt"
	"strings"

	"github.com/beetlebugorg/gml/internal/geometry"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// ErrDuplicateID indicates two geometries with the same identifier in one
// document.
type ErrDuplicateID struct {
	ID string
}

func (e *ErrDuplicateID) Error() string {
	return fmt.Sprintf("duplicate geometry id %q", e.ID)
}

// ErrUnresolvedReferences lists every identifier that was referenced but
// never defined. Each identifier appears once, in order of first use.
type ErrUnresolvedReferences struct {
	IDs []string
}

func (e *ErrUnresolvedReferences) Error() string {
	return fmt.Sprintf("unresolved references: %s", strings.Join(e.IDs, ", "))
}

type check struct {
	run  func() error
	refs []*geometry.Reference
}

func (c check) ready() bool {
	for _, r := range c.refs {
		if !r.Resolved() {
			return false
		}
	}
	return true
}

// Context is the resolution state of one decode session. It is not safe for
// concurrent use; each decoder owns its own Context.
type Context struct {
	ids      map[string]geometry.Geometry
	order    []string
	remote   map[string]geometry.Geometry
	local    []*geometry.Reference
	external []*geometry.Reference
	deferred []check
	log      logrus.FieldLogger
}

// NewContext returns an empty context. A nil logger uses the logrus
// standard logger.
func NewContext(log logrus.FieldLogger) *Context {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Context{
		ids:    make(map[string]geometry.Geometry),
		remote: make(map[string]geometry.Geometry),
		log:    log,
	}
}

// Register records g under id. Registering a second geometry under the same
// id fails with *ErrDuplicateID.
func (c *Context) Register(id string, g geometry.Geometry) error {
	if id == "" {
		return nil
	}
	if prev, ok := c.ids[id]; ok {
		if prev != g {
			return &ErrDuplicateID{ID: id}
		}
		return nil
	}
	c.ids[id] = g
	c.order = append(c.order, id)
	return nil
}

// Checkpoint is the extent of a context at one moment.
type Checkpoint struct {
	ids, local, external, deferred int
}

// Checkpoint records the current registrations, references and deferred
// checks.
func (c *Context) Checkpoint() Checkpoint {
	return Checkpoint{ids: len(c.order), local: len(c.local), external: len(c.external), deferred: len(c.deferred)}
}

// Rollback forgets everything added since cp. It must not span a resolve
// call.
func (c *Context) Rollback(cp Checkpoint) {
	for _, id := range c.order[cp.ids:] {
		delete(c.ids, id)
	}
	c.order = c.order[:cp.ids]
	c.local = c.local[:cp.local]
	c.external = c.external[:cp.external]
	c.deferred = c.deferred[:cp.deferred]
}

// Lookup returns the geometry registered under id.
func (c *Context) Lookup(id string) (geometry.Geometry, bool) {
	g, ok := c.ids[id]
	return g, ok
}

// IDs returns the number of registered identifiers.
func (c *Context) IDs() int { return len(c.ids) }

// RequestReference returns a placeholder for href. Local references
// ("#id") are bound by ResolveLocalRefs, all others by ResolveRemoteRefs.
func (c *Context) RequestReference(href string, expected geometry.Family) (*geometry.Reference, error) {
	r, err := geometry.NewReference(href, expected)
	if err != nil {
		return nil, err
	}
	if r.IsLocal() {
		c.local = append(c.local, r)
	} else {
		c.external = append(c.external, r)
	}
	return r, nil
}

// Defer queues a validation that needs the given references bound. It runs
// during the first resolve call after which all of them are resolved. A
// check with no references runs on the next resolve call.
func (c *Context) Defer(run func() error, refs ...*geometry.Reference) {
	c.deferred = append(c.deferred, check{run: run, refs: refs})
}

// ResolveLocalRefs binds every pending local reference to the geometry
// registered under its fragment, then runs the deferred checks that became
// ready. All missing identifiers are reported together in one
// *ErrUnresolvedReferences. It may be called any number of times.
func (c *Context) ResolveLocalRefs() error {
	var missing []string
	seen := map[string]bool{}
	bound := 0
	for _, r := range c.local {
		if r.Resolved() {
			continue
		}
		g, ok := c.ids[r.Fragment]
		if !ok {
			if !seen[r.Fragment] {
				seen[r.Fragment] = true
				missing = append(missing, r.Fragment)
			}
			continue
		}
		if err := r.Bind(g); err != nil {
			return errors.Wrapf(err, "resolving %q", r.Href)
		}
		bound++
	}
	c.log.WithFields(logrus.Fields{
		"bound":      bound,
		"unresolved": len(missing),
		"remote":     len(c.external),
	}).Debug("resolved local references")

	if len(missing) > 0 {
		return &ErrUnresolvedReferences{IDs: missing}
	}
	return c.runDeferred()
}

// RemoteRefs returns the references that point into other documents and are
// still unresolved.
func (c *Context) RemoteRefs() []*geometry.Reference {
	var out []*geometry.Reference
	for _, r := range c.external {
		if !r.Resolved() {
			out = append(out, r)
		}
	}
	return out
}

// RegisterRemote records a geometry fetched from another document.
func (c *Context) RegisterRemote(location, id string, g geometry.Geometry) {
	c.remote[location+"#"+id] = g
}

// ResolveRemoteRefs binds remote references to the geometries registered
// with RegisterRemote and runs the deferred checks that became ready.
// Missing targets are reported by href.
func (c *Context) ResolveRemoteRefs() error {
	var missing []string
	seen := map[string]bool{}
	for _, r := range c.external {
		if r.Resolved() {
			continue
		}
		g, ok := c.remote[r.Location+"#"+r.Fragment]
		if !ok {
			if !seen[r.Href] {
				seen[r.Href] = true
				missing = append(missing, r.Href)
			}
			continue
		}
		if err := r.Bind(g); err != nil {
			return errors.Wrapf(err, "resolving %q", r.Href)
		}
	}
	if len(missing) > 0 {
		return &ErrUnresolvedReferences{IDs: missing}
	}
	return c.runDeferred()
}

func (c *Context) runDeferred() error {
	var pending []check
	var first error
	for _, chk := range c.deferred {
		if !chk.ready() {
			pending = append(pending, chk)
			continue
		}
		if err := chk.run(); err != nil {
			pending = append(pending, chk)
			if first == nil {
				first = err
			}
		}
	}
	c.deferred = pending
	return first
}
