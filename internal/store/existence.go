package store

// CheckExistingAll is the existence checker of spec.md §4.6: it fans a
// per-file existence probe out over every backing file, joins, and
// aggregates with AND — the result is true only if every single file
// already holds a database. This matches check_existing_fsm_t's
// `is_ok = is_ok && ok` in the original source (its own comment says
// "check if any of the files seem to contain existing databases", but
// the aggregation it actually performs is all-of, which is also what
// spec.md §4.6 spells out: "success = all OK").
func CheckExistingAll(paths []string) (bool, error) {
	found := make([]bool, len(paths))
	errs := Fanout(len(paths), func(i int) error {
		ok, err := CheckExisting(paths[i])
		found[i] = ok
		return err
	})
	if err := firstErr(errs); err != nil {
		return false, err
	}
	for _, ok := range found {
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
