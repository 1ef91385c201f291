package postgres

// SQL queries for datapoint storage operations.

const (
	// querySaveDataPoint inserts one sample. Exactly one of value_int and
	// value_dbl is non-NULL, preserving the sample's numeric domain.
	// ON CONFLICT DO NOTHING returns no rows (sql.ErrNoRows) for a
	// duplicate (metric, ts, tags) sample.
	querySaveDataPoint = `
		INSERT INTO datapoints (
			metric, ts, value_int, value_dbl, tags, ingested_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (metric, ts, tags) DO NOTHING
		RETURNING id
	`

	// queryRetrieveRange fetches all samples of one metric in
	// [start, end), across every tag set, in timestamp order. The
	// downsampler relies on this ordering to bucket in a single pass.
	queryRetrieveRange = `
		SELECT ts, value_int, value_dbl
		FROM datapoints
		WHERE metric = $1 AND ts >= $2 AND ts < $3
		ORDER BY ts ASC
	`
)
