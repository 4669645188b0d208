package lexicon

import "errors"

// ErrUnsupportedRole is returned for a role identifier with no lexicon.
var ErrUnsupportedRole = errors.New("unsupported role")
