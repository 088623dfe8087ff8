package gradebook

import "bytes"

// Format describes the delimited-text dialect of an uploaded gradebook.
type Format struct {
	Delimiter rune
	Quote     rune
}

const detectSampleSize = 2048

// DetectFormat infers the field delimiter from the first line of the file.
// Uploads come from different locales and spreadsheet exports, so either
// comma or semicolon may appear; guessing wrong corrupts every downstream
// column, which is why detection runs once on the raw bytes before any
// structural parsing. Semicolon wins only when strictly more frequent than
// comma in the sample; ties and unreadable input fall back to comma.
func DetectFormat(data []byte) Format {
	sample := data
	if len(sample) > detectSampleSize {
		sample = sample[:detectSampleSize]
	}
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		sample = sample[:i]
	}

	commas := bytes.Count(sample, []byte{','})
	semicolons := bytes.Count(sample, []byte{';'})

	delimiter := ','
	if semicolons > commas {
		delimiter = ';'
	}

	return Format{Delimiter: delimiter, Quote: '"'}
}
