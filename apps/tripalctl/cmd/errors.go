package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	sdkerrors "github.com/quatton/qtripal/pkg/qsdk/qerr"
)

// exitIfSdkError inspects errors returned from the SDK and emits user-friendly
// guidance on stderr. It returns the process exit code.
func exitIfSdkError(err error) int {
	if err == nil {
		return 0
	}
	switch {
	case sdkerrors.IsCode(err, sdkerrors.CodeUnauthorized):
		fmt.Fprintf(os.Stderr, "authentication required: run 'tripalctl auth login' (%v)\n", err)
	case sdkerrors.IsCode(err, sdkerrors.CodeInvalidArgument):
		fmt.Fprintf(os.Stderr, "invalid arguments: %v\n", err)
	case sdkerrors.IsCode(err, sdkerrors.CodeUnsupported):
		fmt.Fprintf(os.Stderr, "not supported by this site: %v (check --tripal-version)\n", err)
	case sdkerrors.IsCode(err, sdkerrors.CodeSubmissionFailed):
		fmt.Fprintf(os.Stderr, "the site did not accept the job: %v\n", err)
	case sdkerrors.IsCode(err, sdkerrors.CodeTransport):
		fmt.Fprintf(os.Stderr, "could not reach the site: %v (check --base-url)\n", err)
	case errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintf(os.Stderr, "timed out: %v; the job keeps running on the site\n", err)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return 1
}
