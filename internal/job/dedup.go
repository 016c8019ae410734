package job

// FilterNew drops records whose id is already present in knownIDs. Pure set
// difference: input order is preserved and repeated application with the same
// snapshot yields the same result.
func FilterNew(records Records, knownIDs map[string]struct{}) Records {
	fresh := make(Records, 0, len(records))
	for _, record := range records {
		if _, ok := knownIDs[record.ID]; ok {
			continue
		}
		fresh = append(fresh, record)
	}
	return fresh
}
