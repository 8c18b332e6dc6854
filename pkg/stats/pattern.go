package stats

import (
	"sort"
	"time"

	"iganalyzer/pkg/post"
)

// WeekdayNames are indexed Monday = 0
var WeekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeekdayBucket counts posts on one day of the week
type WeekdayBucket struct {
	Weekday int    `json:"weekday"`
	Name    string `json:"name"`
	Posts   int    `json:"posts"`
}

// HourBucket counts posts in one hour of the day
type HourBucket struct {
	Hour  int `json:"hour"`
	Posts int `json:"posts"`
}

// MonthBucket counts posts in one calendar month
type MonthBucket struct {
	Period   string `json:"period"`
	Posts    int    `json:"posts"`
	AvgLikes Metric `json:"avg_likes"`
}

// PostingPattern is the time distribution of a record set
type PostingPattern struct {
	Timezone          string          `json:"timezone"`
	ByWeekday         []WeekdayBucket `json:"by_weekday"`
	ByHour            []HourBucket    `json:"by_hour"`
	Heatmap           [][]int         `json:"heatmap"`
	ByMonth           []MonthBucket   `json:"by_month"`
	MostActiveWeekday *int            `json:"most_active_weekday"`
	MostActiveHour    *int            `json:"most_active_hour"`
}

// MaxFilledMonths is the longest first-to-last span, in months, whose empty
// months are listed in by_month. Longer spans list only months with posts.
const MaxFilledMonths = 1200

func monthSpan(first, last time.Time) int {
	return (last.Year()-first.Year())*12 + int(last.Month()) - int(first.Month()) + 1
}

// Weekday converts a time.Weekday to the Monday = 0 convention
func Weekday(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// Pattern buckets records by weekday, hour and month in opts.Location
func Pattern(records []post.Record, opts Options) PostingPattern {
	loc := opts.location()

	p := PostingPattern{
		Timezone:  loc.String(),
		ByWeekday: make([]WeekdayBucket, 7),
		ByHour:    make([]HourBucket, 24),
		Heatmap:   make([][]int, 7),
		ByMonth:   []MonthBucket{},
	}
	for d := range p.ByWeekday {
		p.ByWeekday[d] = WeekdayBucket{Weekday: d, Name: WeekdayNames[d]}
		p.Heatmap[d] = make([]int, 24)
	}
	for h := range p.ByHour {
		p.ByHour[h] = HourBucket{Hour: h}
	}
	if len(records) == 0 {
		return p
	}

	type monthAcc struct {
		month time.Time
		posts int
		likes []int64
	}
	months := make(map[string]*monthAcc)
	var first, last time.Time

	for i, r := range records {
		t := r.TakenAt.In(loc)
		d, h := Weekday(t.Weekday()), t.Hour()
		p.ByWeekday[d].Posts++
		p.ByHour[h].Posts++
		p.Heatmap[d][h]++

		month := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		if i == 0 || month.Before(first) {
			first = month
		}
		if i == 0 || month.After(last) {
			last = month
		}

		key := month.Format("2006-01")
		acc, ok := months[key]
		if !ok {
			acc = &monthAcc{month: month}
			months[key] = acc
		}
		acc.posts++
		if r.Likes.Available {
			acc.likes = append(acc.likes, r.Likes.Value)
		}
	}

	if monthSpan(first, last) > MaxFilledMonths {
		accs := make([]*monthAcc, 0, len(months))
		for _, acc := range months {
			accs = append(accs, acc)
		}
		sort.Slice(accs, func(i, j int) bool { return accs[i].month.Before(accs[j].month) })
		for _, acc := range accs {
			p.ByMonth = append(p.ByMonth, MonthBucket{
				Period:   acc.month.Format("2006-01"),
				Posts:    acc.posts,
				AvgLikes: mean(acc.likes),
			})
		}
	} else {
		for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
			key := m.Format("2006-01")
			bucket := MonthBucket{Period: key}
			if acc, ok := months[key]; ok {
				bucket.Posts = acc.posts
				bucket.AvgLikes = mean(acc.likes)
			}
			p.ByMonth = append(p.ByMonth, bucket)
		}
	}

	weekday := busiest(len(p.ByWeekday), func(i int) int { return p.ByWeekday[i].Posts })
	hour := busiest(len(p.ByHour), func(i int) int { return p.ByHour[i].Posts })
	p.MostActiveWeekday = &weekday
	p.MostActiveHour = &hour

	return p
}

// busiest returns the index with the highest count, lowest index on ties
func busiest(n int, count func(int) int) int {
	best := 0
	for i := 1; i < n; i++ {
		if count(i) > count(best) {
			best = i
		}
	}
	return best
}
