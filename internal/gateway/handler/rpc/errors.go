package rpc

import (
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"codemorph/internal/gateway/repository/artifact"
	"codemorph/internal/gateway/repository/session"
	"codemorph/internal/gateway/service/morph"
	"codemorph/internal/llm"
)

func toConnectError(err error) error {
	var te *llm.TransformError
	switch {
	case errors.Is(err, morph.ErrPrecondition):
		return connect.NewError(connect.CodeInvalidArgument, errors.New(morph.PreconditionMessage))
	case errors.Is(err, morph.ErrUnsupportedFile),
		errors.Is(err, morph.ErrInvalidLanguage),
		errors.Is(err, morph.ErrInvalidGoal),
		errors.Is(err, morph.ErrInvalidTarget),
		errors.Is(err, artifact.ErrInvalidKey):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, morph.ErrBusy):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, session.ErrNotFound), errors.Is(err, artifact.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.As(err, &te):
		// Only the user-facing text leaves the process.
		return connect.NewError(connect.CodeUnavailable, errors.New(te.Error()))
	default:
		return connect.NewError(connect.CodeInternal, fmt.Errorf("morph service failed: %w", err))
	}
}
