// Package seedfile loads raw events from local seed or crawl dumps, either a
// single JSON array or newline-delimited JSON, optionally gzipped
package seedfile

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"strings"

	"touchgrass/internal/core/normalize"
	perr "touchgrass/internal/platform/errors"
	"touchgrass/internal/platform/logger"
	pipedom "touchgrass/internal/services/pipeline/domain"
)

const (
	// Source is the default provenance tag for seed batches
	Source = "seed-data"

	maxScanTokenSize = 8 * 1024 * 1024
)

// Load reads a whole seed file into a pipeline batch
// The file extension decides gzip, the first byte decides array vs NDJSON
func Load(path, source string, st normalize.SourceType) (pipedom.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return pipedom.Batch{}, perr.Wrapf(err, perr.ErrorCodeNotFound, "seedfile open %s failed", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return pipedom.Batch{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "seedfile gzip %s failed", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}
	return Read(r, source, st)
}

// Read decodes raw events from r into a pipeline batch
// Malformed NDJSON lines are skipped with a warning, a malformed array is an
// error since partial array decodes are not trustworthy
func Read(r io.Reader, source string, st normalize.SourceType) (pipedom.Batch, error) {
	if source == "" {
		source = Source
	}
	batch := pipedom.Batch{Source: source, SourceType: st}

	br := bufio.NewReader(r)
	first, err := firstByte(br)
	if err != nil {
		if err == io.EOF {
			return batch, nil
		}
		return pipedom.Batch{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "seedfile read failed")
	}

	if first == '[' {
		if err := json.NewDecoder(br).Decode(&batch.RawEvents); err != nil {
			return pipedom.Batch{}, perr.Wrapf(err, perr.ErrorCodeValidation, "seedfile array decode failed")
		}
		return batch, nil
	}

	// NDJSON, one raw event per line
	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 64*1024), maxScanTokenSize)
	skipped := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !json.Valid([]byte(line)) {
			skipped++
			continue
		}
		batch.RawEvents = append(batch.RawEvents, json.RawMessage(line))
	}
	if err := sc.Err(); err != nil {
		return pipedom.Batch{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "seedfile scan failed")
	}
	if skipped > 0 {
		logger.Named("seedfile").Warn().Int("skipped", skipped).Msg("seedfile skipped malformed lines")
	}
	return batch, nil
}

// firstByte peeks past leading whitespace without consuming the payload
func firstByte(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			if _, err := br.ReadByte(); err != nil {
				return 0, err
			}
		default:
			return b[0], nil
		}
	}
}
