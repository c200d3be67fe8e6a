package service

import (
	"bytes"
	"cmp"
	"slices"

	"github.com/google/uuid"
)

// Scope selects which standings take part in a ranking.
type Scope struct {
	department *string
}

func GlobalScope() Scope {
	return Scope{}
}

func DepartmentScope(department string) Scope {
	return Scope{department: &department}
}

func (s Scope) Name() string {
	if s.department == nil {
		return "global"
	}
	return "department"
}

// Includes reports whether st belongs to the scope. Users without a
// department are never part of a department scope.
func (s Scope) Includes(st Standing) bool {
	if s.department == nil {
		return true
	}
	return st.Department != nil && *st.Department == *s.department
}

// Standing is one user's scored activity.
type Standing struct {
	UserID     uuid.UUID
	Name       string
	AvatarURL  *string
	Department *string
	Counters   Counters
	Score      int
}

type RankedEntry struct {
	Rank int
	Standing
}

// Rank orders the standings in scope by score, highest first, breaking ties
// by user id. Ranks are 1-based and sequential, so tied scores still get
// distinct ranks. The input is not modified.
func Rank(standings []Standing, scope Scope) []RankedEntry {
	ranked := make([]RankedEntry, 0, len(standings))
	for _, st := range standings {
		if scope.Includes(st) {
			ranked = append(ranked, RankedEntry{Standing: st})
		}
	}

	slices.SortFunc(ranked, func(a, b RankedEntry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return bytes.Compare(a.UserID[:], b.UserID[:])
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
