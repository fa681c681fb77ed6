package domain

// Join inner-joins yearly rows to coordinate rows on RegionName == ZIP.
// A yearly row joins against every coordinate row sharing its ZIP, so
// duplicate map entries multiply rows exactly like a relational inner join.
// Yearly rows whose ZIP has no coordinates cannot be placed in space and
// are excluded; the count of such rows is returned for observability.
// Output preserves yearly-table order for determinism.
func Join(yearly YearlyTable, coords []CoordinateRecord) (joined []JoinedRecord, unmatched int) {
	byZIP := make(map[string][]CoordinateRecord, len(coords))
	for _, c := range coords {
		byZIP[c.ZIP] = append(byZIP[c.ZIP], c)
	}

	for _, rec := range yearly.Records {
		matches, ok := byZIP[rec.RegionName]
		if !ok {
			unmatched++
			continue
		}
		for _, c := range matches {
			joined = append(joined, JoinedRecord{
				Lat:    c.Lat,
				Lon:    c.Lon,
				Values: rec.Values,
			})
		}
	}
	return joined, unmatched
}
