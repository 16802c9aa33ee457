package skills

// resolution is what GetSkill does for a given cache state
type resolution int

const (
	// resolveNotFound answers "not found" without touching the filesystem
	resolveNotFound resolution = iota
	// resolveRescan runs a full scan and retries the lookup once
	resolveRescan
	// resolveReload re-reads the file and replaces the cached entry
	resolveReload
	// resolveReadContent trusts cached metadata and only reads the body
	resolveReadContent
)

func (r resolution) String() string {
	switch r {
	case resolveNotFound:
		return "not_found"
	case resolveRescan:
		return "rescan"
	case resolveReload:
		return "reload"
	case resolveReadContent:
		return "read_content"
	default:
		return "unknown"
	}
}

// resolve maps {presence, staleness, modification} to an action. modified is
// ignored for unknown IDs and stale is ignored for known ones.
func resolve(known, stale, modified bool) resolution {
	switch {
	case !known && !stale:
		return resolveNotFound
	case !known:
		return resolveRescan
	case modified:
		return resolveReload
	default:
		return resolveReadContent
	}
}
