package alerts

import "time"

const (
	// BucketCount is the number of histogram buckets in the 24-hour window.
	BucketCount = 48

	// BucketWidth is the span of a single histogram bucket.
	BucketWidth = 30 * time.Minute
)

// Bucket is one 30-minute slice of the 24-hour alert histogram. A bucket
// covers the half-open span (Start, Start+BucketWidth] in unix seconds.
type Bucket struct {
	Start      int64               `json:"start"`
	BySeverity [SeverityLevels]int `json:"bySeverity"`
	Total      int                 `json:"total"`
}

// Bucketize derives the fixed 48-bucket histogram from a record list. The
// window covers the 24 hours ending at now, buckets in chronological order
// with the most recent bucket last. Each record inside the window adds its
// occurrence count (not 1) to the matching bucket's severity counter and
// total; records outside the window or with an invalid severity are ignored.
// Pure and side-effect-free, cheap enough to recompute on every render.
func Bucketize(records []Record, now time.Time) [BucketCount]Bucket {
	var buckets [BucketCount]Bucket

	end := now.Unix()
	width := int64(BucketWidth / time.Second)
	start := end - int64(BucketCount)*width

	for i := range buckets {
		buckets[i].Start = start + int64(i)*width
	}

	for _, rec := range records {
		if rec.LastSeenAt <= start || rec.LastSeenAt > end {
			continue
		}
		if !rec.Severity.Valid() {
			continue
		}
		idx := int((rec.LastSeenAt - start - 1) / width)
		buckets[idx].BySeverity[rec.Severity] += rec.OccurrenceCount
		buckets[idx].Total += rec.OccurrenceCount
	}

	return buckets
}
