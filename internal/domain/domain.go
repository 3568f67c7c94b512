// Package domain holds the persisted models of the bootcamp directory.
//
// Bootcamp.AverageCost and Bootcamp.AverageRating are rollups derived from the
// bootcamp's courses and reviews. They are written only by the rollup maintainer in
// internal/data/aggregates; other writers must leave them alone.
package domain

const (
	RoleUser      = "user"
	RolePublisher = "publisher"
	RoleAdmin     = "admin"
)

const (
	SkillBeginner     = "beginner"
	SkillIntermediate = "intermediate"
	SkillAdvanced     = "advanced"
)

var Careers = []string{
	"Web Development",
	"Mobile Development",
	"UI/UX",
	"Data Science",
	"Business",
	"Other",
}

func IsValidCareer(c string) bool {
	for _, known := range Careers {
		if c == known {
			return true
		}
	}
	return false
}

func IsValidSkill(s string) bool {
	switch s {
	case SkillBeginner, SkillIntermediate, SkillAdvanced:
		return true
	default:
		return false
	}
}

// IsRegistrableRole reports whether a role may be chosen at sign-up.
func IsRegistrableRole(r string) bool {
	return r == RoleUser || r == RolePublisher
}
