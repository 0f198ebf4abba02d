package routetable

import "strings"

const wildcardSuffix = "/*"

// isWildcardKey reports whether a registered topic key is a suffix-wildcard
// key (ends in "/*").
func isWildcardKey(key string) bool {
	return strings.HasSuffix(key, wildcardSuffix)
}

// topicMatch implements §6's topic match syntax: exact match by default; a
// registered key ending in "/*" matches any incoming topic whose prefix
// equals the key with "/*" stripped. "a/b/*" matches "a/b", "a/b/c", and
// "a/b/anything" — but not "a/bc" (the boundary after the stripped prefix
// must be the end of the topic or a '/').
func topicMatch(incoming, registeredKey string) bool {
	if !isWildcardKey(registeredKey) {
		return incoming == registeredKey
	}
	prefix := strings.TrimSuffix(registeredKey, wildcardSuffix)
	if incoming == prefix {
		return true
	}
	return strings.HasPrefix(incoming, prefix+"/")
}
