package main

import "github.com/viant/coderag/errs"

// Exit codes for the CLI.
const (
	ExitSuccess       = 0
	ExitInvalidArg    = 2
	ExitFetchFailure  = 3
	ExitParseFailure  = 4
	ExitIndexUnreach  = 5
	ExitQueryFailed   = 6
)

// exitCodeFor maps the error taxonomy onto the CLI's exit
// codes. Kinds with no dedicated code (Internal, NotFound, Timeout) fall
// back to the exit code of the op category they occurred in.
func exitCodeFor(kind errs.Kind, fallback int) int {
	switch kind {
	case errs.InvalidInput:
		return ExitInvalidArg
	case errs.FetchFailed:
		return ExitFetchFailure
	case errs.ParseFailed:
		return ExitParseFailure
	case errs.IndexUnavailable:
		return ExitIndexUnreach
	default:
		return fallback
	}
}
