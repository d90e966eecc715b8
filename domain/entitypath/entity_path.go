// Package entitypath models locations inside the mounted namespace of a
// browsing session.
//
// An EntityPath is a value: every operation returns a new instance and never
// mutates the receiver. Its canonical form is
//
//	sessions/{sessionID}/mount[/{segment}...]
//
// and its route form is the canonical form prefixed with a slash.
package entitypath

import (
	"fmt"
	"strings"

	"storage-browser/errors"
)

const (
	sessionsSegment = "sessions"
	mountSegment    = "mount"
	separator       = "/"
)

type EntityPath struct {
	sessionID string
	segments  []string
}

// Root returns the root-level path of a session.
func Root(sessionID string) (EntityPath, error) {
	if err := validateSessionID(sessionID); err != nil {
		return EntityPath{}, err
	}
	return EntityPath{sessionID: sessionID}, nil
}

// New builds a path from already split segments. Every segment is validated.
func New(sessionID string, segments ...string) (EntityPath, error) {
	if err := validateSessionID(sessionID); err != nil {
		return EntityPath{}, err
	}
	for _, s := range segments {
		if err := validateSegment(s); err != nil {
			return EntityPath{}, err
		}
	}
	return EntityPath{sessionID: sessionID, segments: clone(segments)}, nil
}

// FromRoute builds a path from the route parameters of the browser.
// An empty or "/" mount is the session root.
func FromRoute(sessionID, mount string) (EntityPath, error) {
	segments, err := ParseMount(mount)
	if err != nil {
		return EntityPath{}, err
	}
	return New(sessionID, segments...)
}

// ParseMount splits a mount-relative path ("a/b/c") into segments.
// Empty components are dropped; a leading or trailing slash is rejected.
func ParseMount(mount string) ([]string, error) {
	if mount == "" || mount == separator {
		return nil, nil
	}
	if strings.HasPrefix(mount, separator) || strings.HasSuffix(mount, separator) {
		return nil, fmt.Errorf("%w: mount %q must not start or end with a slash", errors.ErrPathParse, mount)
	}
	var segments []string
	for _, part := range strings.Split(mount, separator) {
		if part == "" {
			continue
		}
		if err := validateSegment(part); err != nil {
			return nil, err
		}
		segments = append(segments, part)
	}
	return segments, nil
}

// FromString parses the canonical form.
func FromString(s string) (EntityPath, error) {
	if strings.HasPrefix(s, separator) || strings.HasSuffix(s, separator) {
		return EntityPath{}, fmt.Errorf("%w: %q must not start or end with a slash", errors.ErrPathParse, s)
	}
	parts := strings.Split(s, separator)
	if len(parts) < 3 || parts[0] != sessionsSegment {
		return EntityPath{}, fmt.Errorf("%w: %q must start with %q", errors.ErrPathParse, s, sessionsSegment+"/{id}/"+mountSegment)
	}
	if parts[2] != mountSegment {
		return EntityPath{}, fmt.Errorf("%w: %q has no %q segment", errors.ErrPathParse, s, mountSegment)
	}
	for _, part := range parts[3:] {
		if part == "" {
			return EntityPath{}, fmt.Errorf("%w: %q contains an empty segment", errors.ErrPathParse, s)
		}
	}
	return New(parts[1], parts[3:]...)
}

// FromRoutePath parses the route form ("/sessions/{id}/mount/...").
func FromRoutePath(p string) (EntityPath, error) {
	if !strings.HasPrefix(p, separator) {
		return EntityPath{}, fmt.Errorf("%w: route %q must start with a slash", errors.ErrPathParse, p)
	}
	return FromString(strings.TrimPrefix(p, separator))
}

func (p EntityPath) SessionID() string { return p.sessionID }

// Segments returns a copy of the path components.
func (p EntityPath) Segments() []string { return clone(p.segments) }

func (p EntityPath) Depth() int { return len(p.segments) }

func (p EntityPath) IsRoot() bool { return len(p.segments) == 0 }

// MountPath is the mount-relative form, empty for the root.
func (p EntityPath) MountPath() string { return strings.Join(p.segments, separator) }

func (p EntityPath) String() string {
	base := sessionsSegment + separator + p.sessionID + separator + mountSegment
	if p.IsRoot() {
		return base
	}
	return base + separator + p.MountPath()
}

func (p EntityPath) RoutePath() string { return separator + p.String() }

// Name is the last segment.
func (p EntityPath) Name() (string, error) {
	if p.IsRoot() {
		return "", fmt.Errorf("%w: root has no name", errors.ErrRootPath)
	}
	return p.segments[len(p.segments)-1], nil
}

func (p EntityPath) Parent() (EntityPath, error) {
	if p.IsRoot() {
		return EntityPath{}, fmt.Errorf("%w: root has no parent", errors.ErrRootPath)
	}
	return EntityPath{sessionID: p.sessionID, segments: clone(p.segments[:len(p.segments)-1])}, nil
}

// Join returns the child named name.
func (p EntityPath) Join(name string) (EntityPath, error) {
	if err := validateName(name); err != nil {
		return EntityPath{}, err
	}
	return EntityPath{sessionID: p.sessionID, segments: append(clone(p.segments), name)}, nil
}

// RenameTo keeps the parent and replaces the last segment.
func (p EntityPath) RenameTo(name string) (EntityPath, error) {
	if p.IsRoot() {
		return EntityPath{}, fmt.Errorf("%w: cannot rename root", errors.ErrRootPath)
	}
	if err := validateName(name); err != nil {
		return EntityPath{}, err
	}
	segments := clone(p.segments)
	segments[len(segments)-1] = name
	return EntityPath{sessionID: p.sessionID, segments: segments}, nil
}

// MoveTo keeps the name and places it under newParent.
func (p EntityPath) MoveTo(newParent EntityPath) (EntityPath, error) {
	name, err := p.Name()
	if err != nil {
		return EntityPath{}, err
	}
	if newParent.sessionID != p.sessionID {
		return EntityPath{}, fmt.Errorf("%w: %s belongs to another session", errors.ErrInvalidMove, newParent)
	}
	if newParent.Equals(p) || newParent.IsDescendantOf(p) {
		return EntityPath{}, fmt.Errorf("%w: cannot move %s into itself", errors.ErrInvalidMove, p)
	}
	return newParent.Join(name)
}

// IsDescendantOf is strict: a path is never its own descendant.
func (p EntityPath) IsDescendantOf(other EntityPath) bool {
	return strings.HasPrefix(p.String(), other.String()+separator)
}

func (p EntityPath) IsAncestorOf(other EntityPath) bool {
	return other.IsDescendantOf(p)
}

func (p EntityPath) Equals(other EntityPath) bool {
	return p.String() == other.String()
}

func validateSessionID(id string) error {
	if strings.TrimSpace(id) == "" || strings.Contains(id, separator) {
		return fmt.Errorf("%w: invalid session id %q", errors.ErrPathParse, id)
	}
	return nil
}

func validateSegment(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: empty segment", errors.ErrPathParse)
	}
	if strings.Contains(s, separator) {
		return fmt.Errorf("%w: segment %q contains a slash", errors.ErrPathParse, s)
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is empty", errors.ErrInvalidName)
	}
	if strings.Contains(name, separator) {
		return fmt.Errorf("%w: %q contains a slash", errors.ErrInvalidName, name)
	}
	return nil
}

func clone(segments []string) []string {
	if len(segments) == 0 {
		return nil
	}
	out := make([]string, len(segments))
	copy(out, segments)
	return out
}
