package aggregates

import (
	domainagg "github.com/yungbote/devcamper-backend/internal/domain/aggregates"
)

// BootcampAverageCost keeps bootcamps.average_cost at the mean course tuition rounded up
// to the nearest multiple of ten.
var BootcampAverageCost = RollupDefinition{
	Name:        "bootcamp.average_cost",
	ChildTable:  "courses",
	ChildFK:     "bootcamp_id",
	ChildValue:  "tuition",
	ParentTable: "bootcamps",
	ParentKey:   "id",
	ParentField: "average_cost",
	Func:        domainagg.MeanCeilToTen,
}

// BootcampAverageRating keeps bootcamps.average_rating at the mean review rating.
var BootcampAverageRating = RollupDefinition{
	Name:        "bootcamp.average_rating",
	ChildTable:  "reviews",
	ChildFK:     "bootcamp_id",
	ChildValue:  "rating",
	ParentTable: "bootcamps",
	ParentKey:   "id",
	ParentField: "average_rating",
	Func:        domainagg.MeanRounded(1),
}

// BootcampRollups bundles the maintainers the bootcamp write paths trigger.
type BootcampRollups struct {
	AverageCost   domainagg.RollupMaintainer
	AverageRating domainagg.RollupMaintainer
}

func NewBootcampRollups(deps RollupDeps) (*BootcampRollups, error) {
	cost, err := NewRollupMaintainer(deps, BootcampAverageCost)
	if err != nil {
		return nil, err
	}
	rating, err := NewRollupMaintainer(deps, BootcampAverageRating)
	if err != nil {
		return nil, err
	}
	return &BootcampRollups{AverageCost: cost, AverageRating: rating}, nil
}
