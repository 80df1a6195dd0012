// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package distsqlplan

import (
	"sort"

	"github.com/ricdong/presto-sub000/pkg/sql/opt/physical"
)

// preferenceScore ranks how well actual properties meet a preference. Scores
// compare lexicographically: a candidate whose very first desired local
// property comes for free beats one that merely matches more later entries,
// and the global distribution wish breaks ties between those.
type preferenceScore struct {
	firstLocalSatisfied bool
	globalSatisfied     bool
	matchCount          int
}

func scorePreference(
	actual physical.ActualProperties, preferred physical.PreferredProperties,
) preferenceScore {
	var s preferenceScore
	match := physical.MatchLocal(actual.Local, preferred.Local)
	count := physical.SatisfiedCount(match)
	s.matchCount = count
	s.firstLocalSatisfied = len(preferred.Local) == 0 || count > 0
	if preferred.Global == nil {
		s.globalSatisfied = true
	} else {
		s.globalSatisfied = preferred.Global.Satisfies(actual.Partitioning)
	}
	return s
}

// betterThan reports whether s strictly beats other.
func (s preferenceScore) betterThan(other preferenceScore) bool {
	if s.firstLocalSatisfied != other.firstLocalSatisfied {
		return s.firstLocalSatisfied
	}
	if s.globalSatisfied != other.globalSatisfied {
		return s.globalSatisfied
	}
	return s.matchCount > other.matchCount
}

// sortByPreference stably orders candidates so the best-scoring ones come
// first. Equal scores keep their original (provider preference) order.
func sortByPreference(
	candidates []layoutCandidate, preferred physical.PreferredProperties,
) {
	type scored struct {
		cand  layoutCandidate
		score preferenceScore
	}
	entries := make([]scored, len(candidates))
	for i := range candidates {
		entries[i] = scored{candidates[i], scorePreference(candidates[i].props, preferred)}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].score.betterThan(entries[j].score)
	})
	for i := range entries {
		candidates[i] = entries[i].cand
	}
}
