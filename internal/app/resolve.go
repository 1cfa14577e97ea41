package app

import (
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"github.com/andreypopp/configure/internal/core"
	"github.com/andreypopp/configure/internal/types"
)

// Resolve resolves a loaded tree into values.
func (s Service) Resolve(ctx context.Context, req ResolveRequest) (ResolveResult, error) {
	if req.Tree == nil {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("configuration tree is required")
	}
	run := core.NewResolver(s.Importer).Begin(ctx, req.Tree)
	value, err := run.Resolve("")
	if err != nil {
		return ResolveResult{}, err
	}
	values, ok := value.(*types.Mapping)
	if !ok {
		return ResolveResult{}, types.NewError(types.KindSyntax, "configuration root did not resolve to a mapping")
	}
	log.Ctx(ctx).Debug().
		Int("keys", values.Len()).
		Int("constructed", run.Constructed()).
		Msg("configuration resolved")
	return ResolveResult{Values: values, Constructed: run.Constructed()}, nil
}
