// Package seqinfo builds the per-series records the classifier consumes from
// a directory of DICOM files.
package seqinfo

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/caio-sobreiro/bidsheuristic/types"
)

// Instance is the series-level header of a single DICOM file.
type Instance struct {
	Path              string
	SeriesInstanceUID string
	SeriesNumber      int
	ProtocolName      string
	SeriesDescription string
	ImageType         []string
	RepetitionTime    float64 // seconds
}

// FromDataset extracts the series-level attributes of one file. Datasets
// without a SeriesInstanceUID are rejected.
func FromDataset(ds dicom.Dataset) (Instance, error) {
	inst := Instance{
		SeriesInstanceUID: firstString(ds, tag.SeriesInstanceUID),
		ProtocolName:      firstString(ds, tag.ProtocolName),
		SeriesDescription: firstString(ds, tag.SeriesDescription),
		ImageType:         stringsOf(ds, tag.ImageType),
	}
	if inst.SeriesInstanceUID == "" {
		return Instance{}, fmt.Errorf("seqinfo: dataset has no SeriesInstanceUID")
	}

	if n := firstString(ds, tag.SeriesNumber); n != "" {
		v, err := strconv.Atoi(n)
		if err != nil {
			return Instance{}, fmt.Errorf("seqinfo: bad SeriesNumber %q: %w", n, err)
		}
		inst.SeriesNumber = v
	}

	// RepetitionTime is stored in milliseconds.
	if tr := firstString(ds, tag.RepetitionTime); tr != "" {
		v, err := strconv.ParseFloat(tr, 64)
		if err != nil {
			return Instance{}, fmt.Errorf("seqinfo: bad RepetitionTime %q: %w", tr, err)
		}
		inst.RepetitionTime = v / 1000
	}
	return inst, nil
}

// SeriesID returns the identifier handed to the conversion engine.
func (i Instance) SeriesID() string {
	return fmt.Sprintf("%d-%s", i.SeriesNumber, i.ProtocolName)
}

// Group collapses instances into one record per SeriesInstanceUID, taking
// the attributes of the first file seen, ordered by series number. Series
// sharing a number keep the order they were first seen in.
func Group(instances []Instance) []types.SeriesRecord {
	index := make(map[string]int)
	var records []types.SeriesRecord
	for _, inst := range instances {
		if i, ok := index[inst.SeriesInstanceUID]; ok {
			records[i].NumFiles++
			continue
		}
		index[inst.SeriesInstanceUID] = len(records)
		records = append(records, types.SeriesRecord{
			SeriesID:          inst.SeriesID(),
			ProtocolName:      inst.ProtocolName,
			SeriesDescription: inst.SeriesDescription,
			ImageType:         append([]string(nil), inst.ImageType...),
			IsDerived:         isDerived(inst.ImageType),
			RepetitionTime:    inst.RepetitionTime,
			SeriesInstanceUID: inst.SeriesInstanceUID,
			SeriesNumber:      inst.SeriesNumber,
			NumFiles:          1,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].SeriesNumber < records[j].SeriesNumber
	})
	return records
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger overrides the logger used by the scanner.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// Scanner walks a directory tree and reads DICOM headers.
type Scanner struct {
	logger *slog.Logger
	parse  func(path string) (dicom.Dataset, error)
}

// NewScanner creates a scanner that skips pixel data while parsing.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{parse: parseHeader}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func parseHeader(path string) (dicom.Dataset, error) {
	return dicom.ParseFile(path, nil, dicom.SkipPixelData())
}

// ScanDir reads every file under root. Files that are not DICOM, or lack a
// SeriesInstanceUID, are skipped.
func (s *Scanner) ScanDir(ctx context.Context, root string) ([]types.SeriesRecord, error) {
	var (
		instances []Instance
		total     int64
		skipped   int
	)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ds, err := s.parse(path)
		if err != nil {
			skipped++
			s.logger.DebugContext(ctx, "Skipping unreadable file", "path", path, "error", err)
			return nil
		}
		inst, err := FromDataset(ds)
		if err != nil {
			skipped++
			s.logger.DebugContext(ctx, "Skipping file without series attributes", "path", path, "error", err)
			return nil
		}
		inst.Path = path
		instances = append(instances, inst)

		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	records := Group(instances)
	s.logger.InfoContext(ctx, "DICOM scan complete",
		"root", root,
		"files", len(instances),
		"skipped", skipped,
		"series", len(records),
		"size", humanize.Bytes(uint64(total)))
	return records, nil
}

// ScanDir scans root with a default scanner.
func ScanDir(ctx context.Context, root string) ([]types.SeriesRecord, error) {
	return NewScanner().ScanDir(ctx, root)
}

func isDerived(imageType []string) bool {
	for _, v := range imageType {
		if strings.EqualFold(v, "DERIVED") {
			return true
		}
	}
	return false
}

func firstString(ds dicom.Dataset, t tag.Tag) string {
	values := stringsOf(ds, t)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// stringsOf returns the values of an element as trimmed strings, or nil if the
// element is absent.
func stringsOf(ds dicom.Dataset, t tag.Tag) []string {
	el, err := ds.FindElementByTag(t)
	if err != nil || el.Value == nil {
		return nil
	}

	var out []string
	switch el.Value.ValueType() {
	case dicom.Strings:
		values, _ := el.Value.GetValue().([]string)
		for _, v := range values {
			out = append(out, strings.TrimRight(strings.TrimSpace(v), "\x00"))
		}
	case dicom.Ints:
		values, _ := el.Value.GetValue().([]int)
		for _, v := range values {
			out = append(out, strconv.Itoa(v))
		}
	case dicom.Floats:
		values, _ := el.Value.GetValue().([]float64)
		for _, v := range values {
			out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	return out
}
