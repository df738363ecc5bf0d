// Package hotreload swaps compiled assets at runtime when their source files
// change, without stalling or breaking playback.
package hotreload

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Source hands over new source content. Poll must not block.
type Source interface {
	Poll() ([]byte, bool)
}

// Compiler turns source into a usable value and frees replaced ones.
type Compiler[T any] interface {
	Compile(src []byte) (T, error)
	Release(T)
}

// CompileError is returned by Poll when new content did not compile. The
// previous value stays active.
type CompileError struct {
	Name string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("hotreload: %s: %v", e.Name, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// Coordinator holds the active compiled value for one watched source and is
// polled once per frame from the render loop.
type Coordinator[T any] struct {
	name     string
	source   Source
	compiler Compiler[T]
	active   T
	reloads  int
}

func NewCoordinator[T any](name string, initial T, source Source, compiler Compiler[T]) *Coordinator[T] {
	return &Coordinator[T]{name: name, source: source, compiler: compiler, active: initial}
}

func (c *Coordinator[T]) Active() T {
	return c.active
}

// Reloads counts successful swaps.
func (c *Coordinator[T]) Reloads() int {
	return c.reloads
}

// Poll checks for new content and recompiles it. A failed compile is logged
// and returned; it never replaces the active value.
func (c *Coordinator[T]) Poll() (bool, error) {
	if c == nil || c.source == nil {
		return false, nil
	}
	src, ok := c.source.Poll()
	if !ok {
		return false, nil
	}

	next, err := c.compiler.Compile(src)
	if err != nil {
		log.Warn().Str("source", c.name).Msgf("compile failed, keeping previous version:\n%v", err)
		return false, &CompileError{Name: c.name, Err: err}
	}

	old := c.active
	c.active = next
	c.reloads++
	c.compiler.Release(old)
	log.Info().Str("source", c.name).Int("reloads", c.reloads).Msg("reloaded")
	return true, nil
}
