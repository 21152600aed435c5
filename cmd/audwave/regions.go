// SPDX-License-Identifier: EPL-2.0

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ik5/audwave/decoder"
	"github.com/ik5/audwave/regions"
)

type RegionsListCmd struct {
	File string `arg:"" type:"existingfile" help:"Region file (.json or .cbor)."`
}

func (c *RegionsListCmd) Run(g *Globals) error {
	recs, err := readRegions(c.File)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}

type RegionsExportCmd struct {
	Src     string `arg:"" help:"File path or URL."`
	Regions string `required:"" type:"existingfile" help:"Region file (.json or .cbor)."`
	ID      string `required:"" help:"Region to export."`
	Out     string `short:"o" type:"path" help:"WAV to write; defaults to <id>.wav."`
	Rate    int    `help:"Output rate; 0 keeps the decoded rate."`
}

func (c *RegionsExportCmd) Run(g *Globals) error {
	recs, err := readRegions(c.Regions)
	if err != nil {
		return err
	}

	opts := g.cfg.Options(c.Src, g.log)
	opts.Regions = recs
	// no speaker here, so there is no output context to decode for
	opts.Backend = decoder.BackendStream

	w, err := load(g, opts)
	if err != nil {
		return err
	}
	defer w.Destroy()

	out := c.Out
	if out == "" {
		out = c.ID + ".wav"
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	defer f.Close()

	if err := w.ExportRegion(c.ID, f, c.Rate); err != nil {
		return err
	}
	g.log.Info().Str("region", c.ID).Str("out", out).Msg("exported")
	return nil
}

// readRegions reads a JSON or, by extension, CBOR region file.
func readRegions(path string) ([]regions.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".cbor") {
		recs, err := regions.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return recs, nil
	}

	var recs []regions.Record
	if err := json.NewDecoder(f).Decode(&recs); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return recs, nil
}
