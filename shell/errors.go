package shell

import "errors"

// Sentinel errors returned by Parser.PopNext when a command line's
// structure is invalid. They name the same defects the teaching course's
// parser_error enum distinguished, one sentinel per case instead of one
// shared enum.
var (
	ErrPipeWithNoLeftArg          = errors.New("shell: pipe with no left-hand command")
	ErrPipeWithLeftArgNotACommand = errors.New("shell: pipe follows something other than a command")
	ErrAndWithNoLeftArg           = errors.New("shell: && with no left-hand command")
	ErrAndWithLeftArgNotACommand  = errors.New("shell: && follows something other than a command")
	ErrOrWithNoLeftArg            = errors.New("shell: || with no left-hand command")
	ErrOrWithLeftArgNotACommand   = errors.New("shell: || follows something other than a command")
	ErrOutputRedirectBadArg       = errors.New("shell: redirection operator not followed by a filename")
	ErrTooLateArguments           = errors.New("shell: unexpected tokens after redirection or background marker")

	// ErrEndsNotWithACommand is returned by Parser.PopNext when a line ends
	// with |, && or || and no command after it, and by Parser.Close when
	// input ends mid-statement: some tokens were parsed but no terminating
	// newline ever arrived, so the line can never be completed.
	ErrEndsNotWithACommand = errors.New("shell: input ends without completing the current command")
)
