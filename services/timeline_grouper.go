package services

import (
	"fmt"
	"sort"
	"time"
	"visa_flow_app_go/models"
)

// Smart-date bucket keys, in emission order
const (
	BucketToday     = "today"
	BucketYesterday = "yesterday"
	BucketThisWeek  = "this_week"
	BucketThisMonth = "this_month"
	BucketThisYear  = "this_year"
)

// ActivityGroup is one date bucket of a timeline page
type ActivityGroup struct {
	Key        string            `json:"key"`
	Label      string            `json:"label"`
	Date       time.Time         `json:"date"`
	Activities []models.Activity `json:"activities"`
}

// GroupBySmartDate buckets an already-sorted activity page into date groups
// for display. Buckets are evaluated in priority order against now:
// same day, previous day, current ISO week, current month, current year,
// then by four-digit year. Input order is preserved within each bucket and
// empty buckets are omitted.
func GroupBySmartDate(activities []models.Activity, now time.Time) []ActivityGroup {
	groups := make(map[string]*ActivityGroup)
	var yearKeys []string

	for _, activity := range activities {
		key, label := bucketFor(activity.CreatedAt, now)
		group, ok := groups[key]
		if !ok {
			group = &ActivityGroup{Key: key, Label: label, Date: activity.CreatedAt}
			groups[key] = group
			if key != BucketToday && key != BucketYesterday && key != BucketThisWeek &&
				key != BucketThisMonth && key != BucketThisYear {
				yearKeys = append(yearKeys, key)
			}
		}
		group.Activities = append(group.Activities, activity)
	}

	// Fixed emission order; year buckets follow, newest first regardless
	// of input order
	sort.Sort(sort.Reverse(sort.StringSlice(yearKeys)))
	ordered := []string{BucketToday, BucketYesterday, BucketThisWeek, BucketThisMonth, BucketThisYear}
	ordered = append(ordered, yearKeys...)

	result := make([]ActivityGroup, 0, len(groups))
	for _, key := range ordered {
		if group, ok := groups[key]; ok {
			result = append(result, *group)
		}
	}
	return result
}

// bucketFor resolves the smart-date bucket for one instant
func bucketFor(t, now time.Time) (key string, label string) {
	t = t.In(now.Location())

	if sameDay(t, now) {
		return BucketToday, "Today"
	}
	if sameDay(t, now.AddDate(0, 0, -1)) {
		return BucketYesterday, "Yesterday"
	}

	tYear, tWeek := t.ISOWeek()
	nowYear, nowWeek := now.ISOWeek()
	if tYear == nowYear && tWeek == nowWeek {
		return BucketThisWeek, "This Week"
	}

	if t.Year() == now.Year() && t.Month() == now.Month() {
		return BucketThisMonth, "This Month"
	}
	if t.Year() == now.Year() {
		return BucketThisYear, "This Year"
	}

	year := fmt.Sprintf("%d", t.Year())
	return year, year
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
