package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Validate loads one document and, unless MergeOnly is set, resolves it.
// Factories run during validation; they are expected to be side-effect
// free until their results are used.
func (s Service) Validate(ctx context.Context, req ValidateRequest) (ValidateResult, error) {
	if strings.TrimSpace(req.Load.Path) == "" && req.Load.Text == "" && req.Load.Value == nil {
		return ValidateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("a document path, text or value is required")
	}
	loaded, err := s.Load(ctx, req.Load)
	if err != nil {
		return ValidateResult{}, err
	}
	result := ValidateResult{Sources: len(loaded.Sources)}
	if req.MergeOnly {
		return result, nil
	}
	resolved, err := s.Resolve(ctx, ResolveRequest{Tree: loaded.Tree})
	if err != nil {
		return ValidateResult{}, err
	}
	result.Resolved = true
	result.Constructed = resolved.Constructed
	return result, nil
}
