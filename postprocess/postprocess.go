// Package postprocess transforms generated content after emission and
// before it is written to disk: formatting, import fixing, validation.
package postprocess

import "fmt"

// Processor transforms the content of one generated file. Implementations
// must be stateless and safe for concurrent use; a processor that does not
// apply to a file type returns the content unchanged.
type Processor interface {
	ProcessContent(filePath string, content []byte) ([]byte, error)
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(filePath string, content []byte) ([]byte, error)

func (f ProcessorFunc) ProcessContent(filePath string, content []byte) ([]byte, error) {
	return f(filePath, content)
}

// Chain applies processors in the order they were added. A failing processor
// stops the chain.
type Chain struct {
	processors []Processor
}

func NewChain(processors ...Processor) *Chain {
	return &Chain{processors: processors}
}

func (c *Chain) Add(p Processor) {
	c.processors = append(c.processors, p)
}

func (c *Chain) AddFunc(fn func(filePath string, content []byte) ([]byte, error)) {
	c.processors = append(c.processors, ProcessorFunc(fn))
}

func (c *Chain) HasProcessors() bool {
	return len(c.processors) > 0
}

func (c *Chain) Process(filePath string, content []byte) ([]byte, error) {
	result := content
	for i, p := range c.processors {
		processed, err := p.ProcessContent(filePath, result)
		if err != nil {
			return nil, fmt.Errorf("processor %d failed for %s: %w", i, filePath, err)
		}
		result = processed
	}
	return result, nil
}
