// SPDX-License-Identifier: MPL-2.0

// Package registrytest provides an in-memory registry for tests.
package registrytest

import (
	"context"
	"maps"
	"path"
	"slices"
	"sync"

	"github.com/cruxland/crux/internal/fingerprint"
	"github.com/cruxland/crux/internal/registry"
)

type (
	// Call records one invocation of a Memory method.
	Call struct {
		Method    string
		Alias     string
		Tag       string
		ScriptRef string
	}

	// Memory is a registry.Registry kept in process memory. Scripts are
	// addressed by content fingerprint, aliases enforce single ownership
	// and tags are immutable once released.
	Memory struct {
		mu      sync.Mutex
		scripts map[string][]byte
		aliases map[string]*registry.Alias
		secrets map[uint64]string
		calls   []Call

		// ListErr, UploadErr, RequestErr and ReleaseErr, when set, are
		// returned by the matching method before any state changes.
		ListErr    error
		UploadErr  error
		RequestErr error
		ReleaseErr error
	}
)

var _ registry.Registry = (*Memory)(nil)

// New returns an empty Memory registry.
func New() *Memory {
	return &Memory{
		scripts: make(map[string][]byte),
		aliases: make(map[string]*registry.Alias),
		secrets: make(map[uint64]string),
	}
}

// AddUser registers a user with its secret. Users that were never added are
// accepted with any secret.
func (m *Memory) AddUser(id registry.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[id.User] = id.Secret
}

// Seed installs an alias snapshot directly, bypassing ownership checks.
func (m *Memory) Seed(a registry.Alias) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := registry.Alias{Name: a.Name, Owner: a.Owner, Tags: maps.Clone(a.Tags)}
	if cp.Tags == nil {
		cp.Tags = map[string]string{}
	}
	m.aliases[a.Name] = &cp
}

// Alias returns a copy of the named alias.
func (m *Memory) Alias(name string) (registry.Alias, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.aliases[name]
	if !ok {
		return registry.Alias{}, false
	}
	return registry.Alias{Name: a.Name, Owner: a.Owner, Tags: maps.Clone(a.Tags)}, true
}

// Script returns stored content by reference.
func (m *Memory) Script(ref string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.scripts[ref]
	return b, ok
}

// Calls returns the recorded invocations in order.
func (m *Memory) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// Count returns how many times method was invoked.
func (m *Memory) Count(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// List implements registry.Registry.
func (m *Memory) List(_ context.Context, user uint64) ([]registry.Alias, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: "List"})
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	var out []registry.Alias
	for _, name := range slices.Sorted(maps.Keys(m.aliases)) {
		a := m.aliases[name]
		if a.Owner != user {
			continue
		}
		out = append(out, registry.Alias{Name: a.Name, Owner: a.Owner, Tags: maps.Clone(a.Tags)})
	}
	return out, nil
}

// Upload implements registry.Registry.
func (m *Memory) Upload(_ context.Context, name string, content []byte) (registry.UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: "Upload"})
	if m.UploadErr != nil {
		return registry.UploadResult{}, m.UploadErr
	}

	ref := fingerprint.Of(content) + path.Ext(name)
	if _, ok := m.scripts[ref]; ok {
		return registry.UploadResult{Created: false, ScriptRef: ref}, nil
	}
	m.scripts[ref] = slices.Clone(content)
	return registry.UploadResult{Created: true, ScriptRef: ref}, nil
}

// Request implements registry.Registry.
func (m *Memory) Request(_ context.Context, id registry.Identity, alias string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: "Request", Alias: alias})
	if m.RequestErr != nil {
		return m.RequestErr
	}
	if err := m.authenticate(id, "request alias"); err != nil {
		return err
	}
	if _, ok := m.aliases[alias]; ok {
		return &registry.Error{Op: "request alias", Kind: registry.ErrorKindAliasExists, Message: "Alias already exists", Status: 400}
	}
	m.aliases[alias] = &registry.Alias{Name: alias, Owner: id.User, Tags: map[string]string{}}
	return nil
}

// Release implements registry.Registry.
func (m *Memory) Release(_ context.Context, id registry.Identity, alias, tag, scriptRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: "Release", Alias: alias, Tag: tag, ScriptRef: scriptRef})
	if m.ReleaseErr != nil {
		return m.ReleaseErr
	}
	if err := m.authenticate(id, "release tag"); err != nil {
		return err
	}

	a, ok := m.aliases[alias]
	if !ok {
		return &registry.Error{Op: "release tag", Kind: registry.ErrorKindRejected, Message: "Alias does not exist", Status: 404}
	}
	if a.Owner != id.User {
		return &registry.Error{Op: "release tag", Kind: registry.ErrorKindRejected, Message: "You do not own this alias", Status: 403}
	}
	if _, ok := a.Tags[tag]; ok {
		return &registry.Error{Op: "release tag", Kind: registry.ErrorKindConflict, Message: "Tag already exists", Status: 409}
	}
	if _, ok := m.scripts[scriptRef]; !ok {
		return &registry.Error{Op: "release tag", Kind: registry.ErrorKindRejected, Message: "Script does not exist", Status: 404}
	}
	a.Tags[tag] = scriptRef
	return nil
}

// PutScript stores content under ref without recording a call, so tests can
// seed scripts that existing tags point to.
func (m *Memory) PutScript(ref string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[ref] = slices.Clone(content)
}

func (m *Memory) authenticate(id registry.Identity, op string) error {
	secret, known := m.secrets[id.User]
	if known && secret != id.Secret {
		return &registry.Error{Op: op, Kind: registry.ErrorKindRejected, Message: "Invalid credentials", Status: 401}
	}
	return nil
}
