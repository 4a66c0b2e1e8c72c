package engine

import (
	"sync"

	"github.com/gad-lang/loom"
)

type cacheKey struct {
	path    string
	cleanws string
}

// ProgramCache reuses compiled programs across jobs; a program is immutable
// and safe to share, so one entry serves any number of emission runs.
type ProgramCache struct {
	mu       sync.RWMutex
	programs map[cacheKey]*loom.Program
}

func NewProgramCache() *ProgramCache {
	return &ProgramCache{
		programs: make(map[cacheKey]*loom.Program),
	}
}

func (c *ProgramCache) Get(path string, cleanWhitespace *bool) (*loom.Program, error) {
	key := cacheKey{path: path}
	if cleanWhitespace != nil {
		if *cleanWhitespace {
			key.cleanws = "on"
		} else {
			key.cleanws = "off"
		}
	}

	c.mu.RLock()
	if prog, ok := c.programs[key]; ok {
		c.mu.RUnlock()
		return prog, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if prog, ok := c.programs[key]; ok {
		return prog, nil
	}

	opts := loom.DefaultOptions
	opts.CleanWhitespace = cleanWhitespace
	prog, err := loom.CompileFile(path, opts)
	if err != nil {
		return nil, err
	}

	c.programs[key] = prog
	return prog, nil
}

func (c *ProgramCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.programs = make(map[cacheKey]*loom.Program)
}
