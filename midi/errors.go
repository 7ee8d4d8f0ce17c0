package midi

import (
	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

// Error kinds for load failures
const (
	KindIO     ftag.Kind = "io_failure"
	KindFormat ftag.Kind = "format_failure"
)

// IsIO reports whether err is a missing or unreadable file
func IsIO(err error) bool {
	return err != nil && ftag.Get(err) == KindIO
}

// IsFormat reports whether err is a corrupt file or an unsupported division type
func IsFormat(err error) bool {
	return err != nil && ftag.Get(err) == KindFormat
}

// Issue returns the user-facing message for a load failure
func Issue(err error) string {
	if err == nil {
		return ""
	}
	if issue := fmsg.GetIssue(err); issue != "" {
		return issue
	}
	chain := fault.Flatten(err)
	if len(chain) > 0 {
		return chain[0].Message
	}
	return err.Error()
}
