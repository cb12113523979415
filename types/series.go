package types

// SeriesRecord is the per-series metadata the classifier works on.
type SeriesRecord struct {
	SeriesID          string
	ProtocolName      string
	SeriesDescription string
	ImageType         []string
	IsDerived         bool
	RepetitionTime    float64 // seconds

	// Optional provenance, filled in when records come from DICOM files.
	SeriesInstanceUID string
	SeriesNumber      int
	NumFiles          int
}

// HasImageType reports whether token is one of the image type values. This is
// set membership, not a substring test: "M" does not match "MOSAIC".
func (s *SeriesRecord) HasImageType(token string) bool {
	for _, v := range s.ImageType {
		if v == token {
			return true
		}
	}
	return false
}
