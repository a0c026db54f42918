package mockdata

import "time"

// DailyCount is the number of pizzas delivered on one day.
type DailyCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// CrustCount splits a day's pizzas by crust type.
type CrustCount struct {
	Date    time.Time `json:"date"`
	Stuffed int       `json:"stuffed"`
	Normal  int       `json:"normal"`
}

// demandRange is the [Base, Base+Spread) pizzas sold on a weekday.
type demandRange struct {
	Base   float64
	Spread float64
}

// weekdayDemand follows the pizzeria's week: closed on Tuesdays, busiest on weekends.
var weekdayDemand = map[time.Weekday]demandRange{
	time.Sunday:    {Base: 80, Spread: 30},
	time.Monday:    {Base: 30},
	time.Tuesday:   {},
	time.Wednesday: {Base: 25, Spread: 20},
	time.Thursday:  {Base: 45, Spread: 20},
	time.Friday:    {Base: 70, Spread: 20},
	time.Saturday:  {Base: 80, Spread: 30},
}

// Crust shares. Monday is stuffed-crust promotion day.
const (
	stuffedShare       = 0.3
	stuffedShareMonday = 0.7
)

// DailyThroughput generates delivered pizzas per day for the days ending on end (inclusive).
func (g *Generator) DailyThroughput(end time.Time, days int) []DailyCount {
	end = end.In(g.loc)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, g.loc)

	out := make([]DailyCount, 0, days)

	for i := days - 1; i >= 0; i-- {
		date := last.AddDate(0, 0, -i)
		demand := weekdayDemand[date.Weekday()]

		count := demand.Base
		if demand.Spread > 0 {
			count += g.rng.Float64() * demand.Spread
		}

		out = append(out, DailyCount{Date: date, Count: roundInt(count)})
	}

	return out
}

// CrustSplit divides each day's throughput into stuffed and normal crust pizzas.
func CrustSplit(days []DailyCount) []CrustCount {
	out := make([]CrustCount, len(days))

	for i, d := range days {
		share := stuffedShare
		if d.Date.Weekday() == time.Monday {
			share = stuffedShareMonday
		}

		stuffed := roundInt(float64(d.Count) * share)

		out[i] = CrustCount{Date: d.Date, Stuffed: stuffed, Normal: d.Count - stuffed}
	}

	return out
}
