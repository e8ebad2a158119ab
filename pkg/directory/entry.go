package directory

import (
	"strconv"

	"github.com/go-ldap/ldap/v3"
)

// Entry is a directory entry as a closed attribute mapping. Missing
// attributes are an explicit absent result, never a lookup panic.
type Entry struct {
	DN    string
	attrs map[string][]string
}

func entryFromLDAP(e *ldap.Entry) Entry {
	attrs := make(map[string][]string, len(e.Attributes))
	for _, a := range e.Attributes {
		attrs[a.Name] = a.Values
	}
	return Entry{DN: e.DN, attrs: attrs}
}

// Value returns the first value of the named attribute.
func (e Entry) Value(name string) (string, bool) {
	vs, ok := e.attrs[name]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Values returns all values of the named attribute, nil when absent.
func (e Entry) Values(name string) []string {
	return e.attrs[name]
}

// Uint32 parses the named attribute as an unsigned integer, used for bit-flag
// attributes such as userAccountControl.
func (e Entry) Uint32(name string) (uint32, bool) {
	v, ok := e.Value(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}
