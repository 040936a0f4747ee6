// Package cliout maps the store's error taxonomy onto imgfscmd process
// exit codes and formats JSON/text command output.
package cliout

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/prasoul/imgfs/internal/ferrors"
)

// Exit codes. imgfscmd returns ExitSuccess on a clean run and a
// kind-specific non-zero code otherwise, so scripts can branch on
// failure class without parsing stderr text.
const (
	ExitSuccess            = 0
	ExitInvalidArgument    = 1
	ExitNotEnoughArguments = 2
	ExitInvalidCommand     = 3
	ExitInvalidImgID       = 4
	ExitImageNotFound      = 5
	ExitDuplicateID        = 6
	ExitFull               = 7
	ExitIO                 = 8
	ExitCodecFailure       = 9
	ExitRuntime            = 10
)

var exitCodes = map[ferrors.Kind]int{
	ferrors.InvalidArgument:    ExitInvalidArgument,
	ferrors.NotEnoughArguments: ExitNotEnoughArguments,
	ferrors.InvalidCommand:     ExitInvalidCommand,
	ferrors.InvalidImgID:       ExitInvalidImgID,
	ferrors.ImageNotFound:      ExitImageNotFound,
	ferrors.DuplicateID:        ExitDuplicateID,
	ferrors.Full:               ExitFull,
	ferrors.MaxFiles:           ExitInvalidArgument,
	ferrors.Resolutions:        ExitInvalidArgument,
	ferrors.IO:                 ExitIO,
	ferrors.OutOfMemory:        ExitRuntime,
	ferrors.CodecFailure:       ExitCodecFailure,
	ferrors.Threading:          ExitRuntime,
	ferrors.Runtime:            ExitRuntime,
}

// ExitCodeFor returns the process exit code that corresponds to err's
// ferrors.Kind, or ExitRuntime for an error of unrecognized kind.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if code, ok := exitCodes[ferrors.KindOf(err)]; ok {
		return code
	}
	return ExitRuntime
}

var (
	flagJSON    bool
	flagVerbose bool
)

// SetFlags is called from the root command's PersistentPreRun to
// propagate global output flags down to the command implementations.
func SetFlags(jsonMode, verbose bool) {
	flagJSON = jsonMode
	flagVerbose = verbose
}

// IsJSON reports whether --json output mode is active.
func IsJSON() bool { return flagJSON }

// IsVerbose reports whether --verbose logging is active.
func IsVerbose() bool { return flagVerbose }

// PrintJSON marshals v as indented JSON to w.
func PrintJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// PrintError writes a JSON error envelope naming err's kind and message.
func PrintError(w io.Writer, err error) error {
	return PrintJSON(w, map[string]string{
		"kind":    string(ferrors.KindOf(err)),
		"message": err.Error(),
	})
}
