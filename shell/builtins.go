package shell

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrCdRequiresOneArg is returned when cd is invoked with any argument
// count other than exactly one.
var ErrCdRequiresOneArg = errors.New("shell: cd requires exactly one argument")

// builtinCd changes the Executor's tracked working directory. Unlike
// os.Chdir, it never touches the process-wide working directory, so
// multiple Executors can run concurrently with independent cwds.
//
// A failed cd sets the pipeline's exit code to 1, the same as any other
// failed command — the teaching course's original left the exit code
// unchanged on a failed cd, which this implementation treats as an
// inconsistency rather than a behavior worth preserving.
func builtinCd(ex *Executor, args []string) (int, error) {
	if len(args) != 1 {
		return 1, ErrCdRequiresOneArg
	}
	target := args[0]
	if !filepath.IsAbs(target) {
		target = filepath.Join(ex.Dir, target)
	}
	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		if err == nil {
			err = errors.New("shell: cd: not a directory")
		}
		return 1, err
	}
	ex.Dir = target
	return 0, nil
}
