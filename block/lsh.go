// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package block

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/refdedupe/dedupe/internal/config"
	"github.com/refdedupe/dedupe/internal/model"
)

// shingles returns the set of overlapping k-character shingles of s.
// Strings shorter than k produce a single shingle equal to s itself.
func shingles(s string, k int) map[string]bool {
	r := []rune(s)
	set := make(map[string]bool)
	if len(r) <= k {
		if len(r) > 0 {
			set[string(r)] = true
		}
		return set
	}
	for i := 0; i+k <= len(r); i++ {
		set[string(r[i:i+k])] = true
	}
	return set
}

// minHashSignature computes the H-permutation MinHash signature of a
// shingle set, using H independent hash functions derived from a fixed
// seed so signatures are reproducible across platforms and runs.
func minHashSignature(set map[string]bool, params config.LSHParams) []uint64 {
	sig := make([]uint64, params.H)
	for i := range sig {
		sig[i] = ^uint64(0)
	}
	if len(set) == 0 {
		return sig
	}
	for s := range set {
		base := fnv1a64(s, params.Seed)
		for i := 0; i < params.H; i++ {
			h := permute(base, uint64(i), params.Seed)
			if h < sig[i] {
				sig[i] = h
			}
		}
	}
	return sig
}

// fnv1a64 is a seeded FNV-1a hash, the base hash each of the H permutations
// derives from.
func fnv1a64(s string, seed uint64) uint64 {
	const prime = 1099511628211
	h := 1469598103934665603 ^ seed
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	return h
}

// permute derives the i-th of H independent hash functions from a base hash
// by mixing in i and the configured seed, avoiding the need for H separate
// hash function implementations.
func permute(base, i, seed uint64) uint64 {
	x := base ^ (i*0x9E3779B97F4A7C15 + seed)
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}

// bandKeys splits a MinHash signature into b bands of r rows each,
// returning one key per band: the band's rows are packed into a bitset and
// the key is that bitset's string form, so two records share a band key
// exactly when their rows in that band are equal.
func bandKeys(sig []uint64, params config.LSHParams) []string {
	keys := make([]string, params.B)
	for band := 0; band < params.B; band++ {
		bs := bitset.New(uint(params.R * 64))
		for row := 0; row < params.R; row++ {
			v := sig[band*params.R+row]
			for bit := 0; bit < 64; bit++ {
				if v&(1<<uint(bit)) != 0 {
					bs.Set(uint(row*64 + bit))
				}
			}
		}
		keys[band] = bs.String()
	}
	return keys
}

// byLSH groups records by banded MinHash signature collisions over
// title+venue shingles, emitting a candidate pair whenever any band's key
// collides between two records (§4.2). Records with neither a title nor a
// venue are skipped.
func byLSH(records []model.CanonicalRecord, params config.LSHParams) ([]model.CandidatePair, *Coverage) {
	cov := newCoverage()
	// bucket maps "band:key" -> ids sharing that band key, so the union
	// pass below only compares within a bucket, keeping cost sub-quadratic.
	buckets := make(map[string][]string)
	for _, r := range records {
		text := ""
		if r.Title != nil {
			text += *r.Title
		}
		if r.Venue != nil {
			text += " " + *r.Venue
		}
		if text == "" {
			cov.SkippedRecords++
			continue
		}
		sig := minHashSignature(shingles(text, params.K), params)
		for band, key := range bandKeys(sig, params) {
			bucketKey := string(rune(band)) + "\x00" + key
			buckets[bucketKey] = append(buckets[bucketKey], r.ID)
		}
		cov.RecordsCovered[r.ID] = true
	}
	seen := make(map[[2]string]bool)
	var pairs []model.CandidatePair
	for _, ids := range buckets {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				p := model.NewPair(ids[i], ids[j], model.BlockerLSH)
				if seen[p.Key()] {
					continue
				}
				seen[p.Key()] = true
				pairs = append(pairs, p)
			}
		}
	}
	cov.PairsEmitted = len(pairs)
	return pairs, cov
}
