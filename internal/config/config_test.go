// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMergesOverDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("t_low: 0.4\nmax_pairs_per_record: 50\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.4, cfg.TLow)
	assert.Equal(t, 50, cfg.MaxPairsPerRecord)
	assert.Equal(t, Default().FPRAlpha, cfg.FPRAlpha, "unset fields keep the default")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("t_low: [not a float\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	cfg := Default()
	low := 0.9
	cfg.TLow = 0.95
	cfg.THigh = &low
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsMismatchedLSHParams(t *testing.T) {
	cfg := Default()
	cfg.LSHParams.B = 3
	cfg.LSHParams.R = 5
	cfg.LSHParams.H = 128
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownBlocker(t *testing.T) {
	cfg := Default()
	cfg.CandidateBlockers = []string{"not_a_real_blocker"}
	assert.Error(t, cfg.Validate())
}

func TestHashIsStableAndSensitiveToChange(t *testing.T) {
	a := Default()
	b := Default()
	assert.Equal(t, a.Hash(), b.Hash())

	b.TLow = 0.5
	assert.NotEqual(t, a.Hash(), b.Hash())
}
