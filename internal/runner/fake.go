package runner

import (
	"context"
	"strings"
)

// Fake is a scripted Runner for tests. Responses are looked up by the
// space-joined argument vector; unknown commands succeed with empty output.
type Fake struct {
	// Responses maps a space-joined argv to the result it should produce.
	Responses map[string]*Result

	// Errors maps a space-joined argv to an error returned instead of a result.
	Errors map[string]error

	// Calls records every argv passed to Run, in order.
	Calls [][]string
}

// NewFake creates an empty fake runner.
func NewFake() *Fake {
	return &Fake{
		Responses: make(map[string]*Result),
		Errors:    make(map[string]error),
	}
}

// On registers the result returned for argv.
func (f *Fake) On(argv []string, result *Result) *Fake {
	f.Responses[strings.Join(argv, " ")] = result
	return f
}

// Fail registers an error returned for argv.
func (f *Fake) Fail(argv []string, err error) *Fake {
	f.Errors[strings.Join(argv, " ")] = err
	return f
}

// Run records the call and returns the scripted response.
func (f *Fake) Run(ctx context.Context, argv []string) (*Result, error) {
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}
	f.Calls = append(f.Calls, append([]string(nil), argv...))

	key := strings.Join(argv, " ")
	if err, ok := f.Errors[key]; ok {
		return nil, err
	}
	if res, ok := f.Responses[key]; ok {
		copied := *res
		return &copied, nil
	}
	return &Result{}, nil
}
