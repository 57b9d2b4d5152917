package oracle

import "context"

// Shape is the JSON shape a caller expects back.
type Shape int

const (
	// ShapeObject expects a JSON object.
	ShapeObject Shape = iota
	// ShapeList expects a JSON array.
	ShapeList
	// ShapeAny accepts any JSON document.
	ShapeAny
	// ShapeText returns the raw text without parsing.
	ShapeText
)

func (s Shape) String() string {
	switch s {
	case ShapeObject:
		return "object"
	case ShapeList:
		return "list"
	case ShapeAny:
		return "any"
	case ShapeText:
		return "text"
	default:
		return "unknown"
	}
}

// CallOptions configures a single oracle call.
type CallOptions struct {
	Step        string
	Expect      Shape
	Temperature *float64
}

// Option mutates CallOptions.
type Option func(*CallOptions)

// WithStep names the pipeline step issuing the call.
func WithStep(step string) Option {
	return func(o *CallOptions) { o.Step = step }
}

// Expect sets the expected response shape.
func Expect(shape Shape) Option {
	return func(o *CallOptions) { o.Expect = shape }
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *CallOptions) { o.Temperature = &t }
}

// ResolveOptions applies opts over the defaults.
func ResolveOptions(opts []Option) CallOptions {
	resolved := CallOptions{Expect: ShapeObject}
	for _, opt := range opts {
		if opt != nil {
			opt(&resolved)
		}
	}
	return resolved
}

// Oracle is a remote model that answers prompts.
type Oracle interface {
	GenerateFromText(ctx context.Context, prompt string, opts ...Option) (Value, error)
	GenerateFromImageAndText(ctx context.Context, imagePath, prompt string, opts ...Option) (Value, error)
}
